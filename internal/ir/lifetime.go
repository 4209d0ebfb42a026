package ir

// NextUseInfo is the per-instruction annotation spec.md §4.4 describes:
// for each operand Value read by an instruction, the index (within the
// same block) of that value's next read, or -1 if this is its last use
// in the block. Keyed by Instruction.ID within the owning block.
type NextUseInfo struct {
	Operand1Next int
	Operand2Next int
	// ResultDeadHere is true when the instruction's own Result is never
	// read again in this block (it dies the instant it's produced,
	// e.g. a value only used to feed a single immediately-following
	// instruction that the DAG optimizer later folds away).
	ResultDeadHere bool
}

// AnalyzeNextUse performs a backward per-block liveness scan, per
// spec.md §4.4, and returns each block's annotation table indexed by
// instruction ID. Purely intra-block: spec.md's non-goals exclude
// global (inter-block) liveness analysis.
func AnalyzeNextUse(fn *Function) map[*BasicBlock][]NextUseInfo {
	result := make(map[*BasicBlock][]NextUseInfo, len(fn.Blocks))
	for _, b := range fn.Blocks {
		result[b] = analyzeBlockNextUse(b)
	}
	return result
}

func analyzeBlockNextUse(b *BasicBlock) []NextUseInfo {
	infos := make([]NextUseInfo, len(b.Instructions))

	// nextUseOf[valueID] = index of the next instruction (scanning
	// forward from here) that reads valueID; rebuilt incrementally as
	// the backward scan proceeds.
	nextUseOf := map[int]int{}

	for i := len(b.Instructions) - 1; i >= 0; i-- {
		in := b.Instructions[i]

		info := NextUseInfo{Operand1Next: -1, Operand2Next: -1}
		if in.Op1 != nil {
			if n, ok := nextUseOf[in.Op1.ID]; ok {
				info.Operand1Next = n
			}
		}
		if in.Op2 != nil {
			if n, ok := nextUseOf[in.Op2.ID]; ok {
				info.Operand2Next = n
			}
		}
		if in.Result != nil {
			_, used := nextUseOf[in.Result.ID]
			info.ResultDeadHere = !used
			delete(nextUseOf, in.Result.ID)
		}
		infos[i] = info

		if in.Op1 != nil {
			nextUseOf[in.Op1.ID] = i
		}
		if in.Op2 != nil {
			nextUseOf[in.Op2.ID] = i
		}
	}

	// Anything still live at the top of the block (read by some
	// instruction but never (re)defined before that read) is recorded
	// on the block itself, keyed by value id, so a caller can tell
	// which values must already be live on entry.
	for id, idx := range nextUseOf {
		b.NextUse[id] = idx
	}

	return infos
}

// Per-block DAG-based local optimizer: value numbering / common
// subexpression elimination plus a dead-instruction sweep, scoped to a
// single basic block per spec.md §4.5 (global, inter-block optimization
// remains an explicit non-goal). Grounded on the teacher's
// internal/ir/optimizations.go CommonSubexpressionElimination and
// DeadCodeElimination passes (optimizeBlock/replaceValue/
// markUsedValues shape), replacing their SSA-value-id equality test
// with a DAG key built from opcode+operand identity, since this IR has
// no SSA form to key on.
package ir

import "fmt"

// dagKey identifies a pure computation by opcode and operand identity,
// so that two instructions computing `a+b` from the same `a` and `b`
// Values collapse to one node in the block's DAG.
type dagKey struct {
	op       Opcode
	op1, op2 int
	disp     int
}

func keyFor(in *Instruction) (dagKey, bool) {
	if !in.Op.hasSideEffect() && in.Result != nil {
		op1, op2 := 0, 0
		if in.Op1 != nil {
			op1 = in.Op1.ID
		}
		if in.Op2 != nil {
			op2 = in.Op2.ID
		}
		if in.Op.commutative() && op1 > op2 {
			op1, op2 = op2, op1
		}
		return dagKey{op: in.Op, op1: op1, op2: op2, disp: in.Disp}, true
	}
	return dagKey{}, false
}

// OptimizeBlock runs one pass of local value numbering over b: each
// instruction whose (opcode, operands) key already appears earlier in
// the block is rewritten to reuse the earlier Result, and the
// now-redundant instruction's Result is freed back to pool. Locals,
// globals, and params are never targets of this substitution — only an
// InstrResult.
func OptimizeBlock(pool *Pool, b *BasicBlock) {
	seen := map[dagKey]*Value{}
	replacement := map[int]*Value{}

	kept := b.Instructions[:0:0]
	for _, in := range b.Instructions {
		rewriteOperands(in, replacement)

		key, ok := keyFor(in)
		if ok && in.Result != nil && in.Result.Kind == InstrResult {
			if existing, found := seen[key]; found {
				replacement[in.Result.ID] = existing
				pool.FreeValue(in.Result)
				continue // drop the redundant instruction entirely
			}
			seen[key] = in.Result
		}
		kept = append(kept, in)
	}
	b.Instructions = kept
	reindex(b)
}

func rewriteOperands(in *Instruction, replacement map[int]*Value) {
	if in.Op1 != nil {
		if r, ok := replacement[in.Op1.ID]; ok {
			in.Op1 = r
		}
	}
	if in.Op2 != nil {
		if r, ok := replacement[in.Op2.ID]; ok {
			in.Op2 = r
		}
	}
}

func reindex(b *BasicBlock) {
	for i, in := range b.Instructions {
		in.ID = i
	}
}

// EliminateDeadInstructions removes any non-side-effecting instruction
// whose Result the next-use analysis (uses, one entry per instruction,
// from AnalyzeNextUse) says is dead at the point it's produced.
// InstrResult values never survive a block boundary in this IR, since
// spec.md's non-SSA locals are the only cross-block-live storage, so
// per spec.md §4.5 a value id is only written back (kept) when it is
// still live out of the point it's computed — exactly what
// NextUseInfo.ResultDeadHere reports.
func EliminateDeadInstructions(pool *Pool, b *BasicBlock, uses []NextUseInfo) {
	kept := b.Instructions[:0:0]
	for i, in := range b.Instructions {
		if in.Op.hasSideEffect() {
			kept = append(kept, in)
			continue
		}
		if in.Result == nil {
			kept = append(kept, in)
			continue
		}
		dead := in.Result.Kind == InstrResult && i < len(uses) && uses[i].ResultDeadHere
		if dead {
			pool.FreeValue(in.Result)
			continue
		}
		kept = append(kept, in)
	}
	b.Instructions = kept
	reindex(b)
}

// OptimizeFunction runs the local optimizer over every block of fn: CSE
// first, then a fresh AnalyzeNextUse pass over the CSE'd block (whose
// instruction indices the CSE pass may have shifted), with DCE
// consulting that next-use table per spec.md §4.5 rather than
// re-deriving its own from-scratch liveness scan.
func OptimizeFunction(pool *Pool, fn *Function) {
	for _, b := range fn.Blocks {
		OptimizeBlock(pool, b)
	}
	uses := AnalyzeNextUse(fn)
	for _, b := range fn.Blocks {
		EliminateDeadInstructions(pool, b, uses[b])
	}
}

// Stats summarizes one OptimizeFunction run, surfaced by the CLI's
// `-dump-ir` mode so a user can see the local optimizer's effect.
type Stats struct {
	InstructionsBefore int
	InstructionsAfter  int
}

func (s Stats) String() string {
	return fmt.Sprintf("%d -> %d instructions", s.InstructionsBefore, s.InstructionsAfter)
}

// OptimizeFunctionCounted is OptimizeFunction plus before/after
// instruction counts, used by tests asserting the optimizer is
// idempotent and strictly non-increasing.
func OptimizeFunctionCounted(pool *Pool, fn *Function) Stats {
	before := countInstructions(fn)
	OptimizeFunction(pool, fn)
	after := countInstructions(fn)
	return Stats{InstructionsBefore: before, InstructionsAfter: after}
}

func countInstructions(fn *Function) int {
	n := 0
	for _, b := range fn.Blocks {
		n += len(b.Instructions)
	}
	return n
}

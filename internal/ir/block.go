package ir

// BasicBlock is a maximal straight-line instruction sequence ending in
// exactly one terminator, per spec.md §3. Blocks chain in program
// (lexical) order via Next, independent of the control-flow edges
// carried by each terminator's Target/TargetIdx.
type BasicBlock struct {
	ID           int
	Func         *Function
	Label        Label
	Instructions []*Instruction

	Next *BasicBlock // lexically following block, or nil for a function's last block

	// NextUse is filled in by the per-block next-use analyzer
	// (spec.md §4.4) and is keyed by Value.ID.
	NextUse map[int]int // value id -> index of the first instruction in this block that reads it, only for values read before any definition in the block
}

// NewBlock creates an empty block with the given label, owned by fn.
func NewBlock(fn *Function, id int, label Label) *BasicBlock {
	return &BasicBlock{ID: id, Func: fn, Label: label, NextUse: map[int]int{}}
}

// Append adds an instruction to the block and returns it, assigning its
// ID and back-pointer.
func (b *BasicBlock) Append(in *Instruction) *Instruction {
	in.ID = len(b.Instructions)
	in.block = b
	b.Instructions = append(b.Instructions, in)
	return in
}

// Terminator returns the block's final instruction, or nil if the block
// is still being built and has not yet received one.
func (b *BasicBlock) Terminator() *Instruction {
	if n := len(b.Instructions); n > 0 && b.Instructions[n-1].Op.IsTerminator() {
		return b.Instructions[n-1]
	}
	return nil
}

// IsTerminated reports whether the block already ends in a terminator,
// consulted by the builder before appending further instructions (a
// block may not receive instructions after its terminator, per spec.md
// §3's block invariant).
func (b *BasicBlock) IsTerminated() bool {
	return b.Terminator() != nil
}

package ir

import (
	"fmt"
	"strings"
)

// Instruction is a single three-address operation: an opcode, up to
// two Value operands, an optional Result, and the handful of
// class-specific extra fields (displacement, target Label/block,
// callee symbol, case spelling) spec.md §2 lists per format class.
// Every Instruction belongs to exactly one BasicBlock.
type Instruction struct {
	ID     int
	Op     Opcode
	Result *Value
	Op1    *Value
	Op2    *Value

	Disp int // RRN displacement, or RLN/FR argument count

	Target    *Label // LR/BN/BRN/BRRN branch target
	TargetIdx int     // destination block index, set once blocks are finalized

	Callee     string // FR callee symbol
	CaseLabel  string // case-value spelling on a switch's BRRN dispatch branch (display only)

	block *BasicBlock
}

// Block returns the owning BasicBlock.
func (in *Instruction) Block() *BasicBlock { return in.block }

// Operands returns every Value this instruction reads, in evaluation
// order, used by the next-use analyzer and the DAG optimizer.
func (in *Instruction) Operands() []*Value {
	var ops []*Value
	if in.Op1 != nil {
		ops = append(ops, in.Op1)
	}
	if in.Op2 != nil {
		ops = append(ops, in.Op2)
	}
	return ops
}

// String renders the instruction the way spec.md §6's dump format
// expects: `result = op op1, op2` for value-producing instructions,
// bare `op op1, op2` otherwise.
func (in *Instruction) String() string {
	var b strings.Builder
	if in.Result != nil {
		fmt.Fprintf(&b, "%s = ", in.Result)
	}
	b.WriteString(in.Op.Name())
	var args []string
	if in.Op1 != nil {
		args = append(args, in.Op1.String())
	}
	if in.Op2 != nil {
		args = append(args, in.Op2.String())
	}
	switch in.Op.Class() {
	case ClassRN, ClassRRN:
		args = append(args, fmt.Sprintf("%d", in.Disp))
	case ClassRLN:
		args = append(args, fmt.Sprintf("%d", in.Disp))
	}
	if in.Target != nil {
		args = append(args, in.Target.String())
	}
	if in.Callee != "" {
		args = append(args, in.Callee)
	}
	if in.CaseLabel != "" {
		args = append(args, in.CaseLabel)
	}
	if len(args) > 0 {
		b.WriteString(" ")
		b.WriteString(strings.Join(args, ", "))
	}
	return b.String()
}

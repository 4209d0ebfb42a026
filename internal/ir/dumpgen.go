package ir

import (
	"fmt"
	"strings"
)

// DumpCallbacks is the one concrete Callbacks implementation this repo
// ships (spec.md treats real back ends as pluggable and external): a
// text emitter that reproduces spec.md §6's dump format by dispatching
// through Generate itself, so the generator driver's per-format-class
// dispatch is exercised by real output rather than only by test
// doubles. Grounded on the teacher's internal/ir Printer, replacing its
// EVM-opcode text table with this IR's own Instruction.String().
type DumpCallbacks struct {
	out      strings.Builder
	curBlock *BasicBlock
}

// NewDumpCallbacks creates an empty dump emitter.
func NewDumpCallbacks() *DumpCallbacks { return &DumpCallbacks{} }

// String returns the accumulated dump text.
func (d *DumpCallbacks) String() string { return d.out.String() }

func (d *DumpCallbacks) Begin(m *Module) {}
func (d *DumpCallbacks) End(m *Module)   {}

func (d *DumpCallbacks) ExternDecl(e *Extern) {
	fmt.Fprintf(&d.out, "extern %s %%%s\n", e.ReturnType, e.Name)
}

func (d *DumpCallbacks) GlobalDecl(v *Value) {
	fmt.Fprintf(&d.out, "global %s %%%s\n", v.Type, v.Name)
}

func (d *DumpCallbacks) FunctionBegin(fn *Function) {
	fmt.Fprintf(&d.out, "function %s %s\n{\n", fn.Name, fn.ReturnType)
	d.curBlock = nil
}

func (d *DumpCallbacks) FunctionEnd(fn *Function) {
	d.closeBlock()
	d.out.WriteString("}\n")
}

func (d *DumpCallbacks) closeBlock() {
	if d.curBlock != nil {
		d.out.WriteString("  }\n")
		d.curBlock = nil
	}
}

// openBlock starts a new "  block <label>\n  {\n" group whenever an
// instruction's owning block differs from the one currently open,
// matching spec.md §6's nested block braces.
func (d *DumpCallbacks) openBlock(in *Instruction) {
	if in.Block() == d.curBlock {
		return
	}
	d.closeBlock()
	d.curBlock = in.Block()
	fmt.Fprintf(&d.out, "  block %s\n  {\n", d.curBlock.Label)
}

func (d *DumpCallbacks) line(in *Instruction) {
	d.openBlock(in)
	fmt.Fprintf(&d.out, "    %s\n", in)
}

func (d *DumpCallbacks) GenN(in *Instruction)    { d.line(in) }
func (d *DumpCallbacks) GenRN(in *Instruction)   { d.line(in) }
func (d *DumpCallbacks) GenRR(in *Instruction)   { d.line(in) }
func (d *DumpCallbacks) GenRRN(in *Instruction)  { d.line(in) }
func (d *DumpCallbacks) GenRRR(in *Instruction)  { d.line(in) }
func (d *DumpCallbacks) GenLR(in *Instruction)   { d.line(in) }
func (d *DumpCallbacks) GenRLN(in *Instruction)  { d.line(in) }
func (d *DumpCallbacks) GenSL(in *Instruction)   { d.line(in) }
func (d *DumpCallbacks) GenBN(in *Instruction)   { d.line(in) }
func (d *DumpCallbacks) GenBRN(in *Instruction)  { d.line(in) }
func (d *DumpCallbacks) GenBRRN(in *Instruction) { d.line(in) }
func (d *DumpCallbacks) GenFR(in *Instruction)   { d.line(in) }

// Dump renders m in the spec.md §6 textual form.
func Dump(m *Module) string {
	d := NewDumpCallbacks()
	Generate(m, d)
	return d.String()
}

// CountingCallbacks records the sequence of callback invocations
// (by name) instead of producing text, so a test can assert spec.md
// §8's determinism property: lowering the same AST and generating
// twice must invoke the same callback sequence both times.
type CountingCallbacks struct {
	Calls []string
}

func (c *CountingCallbacks) record(name string) { c.Calls = append(c.Calls, name) }

func (c *CountingCallbacks) Begin(m *Module)        { c.record("begin") }
func (c *CountingCallbacks) End(m *Module)          { c.record("end") }
func (c *CountingCallbacks) ExternDecl(e *Extern)   { c.record("extern:" + e.Name) }
func (c *CountingCallbacks) GlobalDecl(v *Value)    { c.record("global:" + v.Name) }
func (c *CountingCallbacks) FunctionBegin(fn *Function) {
	c.record("function_begin:" + fn.Name)
}
func (c *CountingCallbacks) FunctionEnd(fn *Function) { c.record("function_end:" + fn.Name) }

func (c *CountingCallbacks) GenN(in *Instruction)    { c.record("N:" + in.Op.Name()) }
func (c *CountingCallbacks) GenRN(in *Instruction)   { c.record("RN:" + in.Op.Name()) }
func (c *CountingCallbacks) GenRR(in *Instruction)   { c.record("RR:" + in.Op.Name()) }
func (c *CountingCallbacks) GenRRN(in *Instruction)  { c.record("RRN:" + in.Op.Name()) }
func (c *CountingCallbacks) GenRRR(in *Instruction)  { c.record("RRR:" + in.Op.Name()) }
func (c *CountingCallbacks) GenLR(in *Instruction)   { c.record("LR:" + in.Op.Name()) }
func (c *CountingCallbacks) GenRLN(in *Instruction)  { c.record("RLN:" + in.Op.Name()) }
func (c *CountingCallbacks) GenSL(in *Instruction)   { c.record("SL:" + in.Op.Name()) }
func (c *CountingCallbacks) GenBN(in *Instruction)   { c.record("BN:" + in.Op.Name()) }
func (c *CountingCallbacks) GenBRN(in *Instruction)  { c.record("BRN:" + in.Op.Name()) }
func (c *CountingCallbacks) GenBRRN(in *Instruction) { c.record("BRRN:" + in.Op.Name()) }
func (c *CountingCallbacks) GenFR(in *Instruction)   { c.record("FR:" + in.Op.Name()) }

// Generator driver: walks a built Module and dispatches each
// instruction to a callback chosen by its opcode's FormatClass, per
// spec.md §4.6. Grounded on the teacher's internal/ir Printer walk
// (Module -> Function -> Block -> Instruction) plus the function-
// pointer-table dispatch spec.md §9's "Generator dispatch" design note
// asks for, reimplemented here as a single type switch on FormatClass
// rather than a table of function pointers, since Go has no first-class
// opcode-indexed jump table idiom the rest of the corpus reaches for.
package ir

import (
	"fmt"

	"ducc/internal/types"
)

// Callbacks is the back end's dispatch surface: one method per
// FormatClass plus the module- and function-bracketing hooks spec.md
// §4.6 lists. Every Gen* method receives the raw *Instruction; a real
// back end decodes its operands via DecodeRValue/DecodeLValue rather
// than reading Value ids directly, matching spec.md's "never raw value
// ids" rule for the callback surface.
type Callbacks interface {
	Begin(m *Module)
	End(m *Module)
	ExternDecl(e *Extern)
	GlobalDecl(v *Value)

	FunctionBegin(fn *Function)
	FunctionEnd(fn *Function)

	GenN(in *Instruction)
	GenRN(in *Instruction)
	GenRR(in *Instruction)
	GenRRN(in *Instruction)
	GenRRR(in *Instruction)
	GenLR(in *Instruction)
	GenRLN(in *Instruction)
	GenSL(in *Instruction)
	GenBN(in *Instruction)
	GenBRN(in *Instruction)
	GenBRRN(in *Instruction)
	GenFR(in *Instruction)
}

// Generate drives cb over m in the fixed order spec.md §4.6 requires:
// begin; each extern; each global; each function (bracketed by
// FunctionBegin/FunctionEnd, with every instruction of every block
// dispatched to its format-class callback, in block order); end.
// Generate only reads m; per spec.md §5 the generator never mutates
// the module it is handed.
func Generate(m *Module, cb Callbacks) {
	cb.Begin(m)
	for _, e := range m.Externs {
		cb.ExternDecl(e)
	}
	for _, g := range m.Globals {
		cb.GlobalDecl(g)
	}
	for _, fn := range m.Functions {
		cb.FunctionBegin(fn)
		for _, blk := range fn.Blocks {
			for _, in := range blk.Instructions {
				dispatch(cb, in)
			}
		}
		cb.FunctionEnd(fn)
	}
	cb.End(m)
}

// dispatch is the "single match on opcode... decodes via format class"
// driver spec.md §9 describes.
func dispatch(cb Callbacks, in *Instruction) {
	switch in.Op.Class() {
	case ClassN:
		cb.GenN(in)
	case ClassRN:
		cb.GenRN(in)
	case ClassRR:
		cb.GenRR(in)
	case ClassRRN:
		cb.GenRRN(in)
	case ClassRRR:
		cb.GenRRR(in)
	case ClassLR:
		cb.GenLR(in)
	case ClassRLN:
		cb.GenRLN(in)
	case ClassSL:
		cb.GenSL(in)
	case ClassBN:
		cb.GenBN(in)
	case ClassBRN:
		cb.GenBRN(in)
	case ClassBRRN:
		cb.GenBRRN(in)
	case ClassFR:
		cb.GenFR(in)
	default:
		panic(unreachable("instruction %s has no known format class", in.Op.Name()))
	}
}

// RValue is the decoded callback-surface form of a readable operand,
// per the GLOSSARY: an immediate or a temp holding an instruction
// result. Backends never see the underlying Value or its pool id.
type RValue struct {
	Kind   Kind
	Int    int64
	Float  float64
	Str    string
	Type   types.Type
	TempID int
}

func (r RValue) String() string {
	switch r.Kind {
	case ConstInt:
		return fmt.Sprintf("%d", r.Int)
	case ConstFloat:
		return fmt.Sprintf("%g", r.Float)
	case ConstString:
		return fmt.Sprintf("%q", r.Str)
	default:
		return fmt.Sprintf("%%%d", r.TempID)
	}
}

// LValue is the decoded callback-surface form of an addressable
// operand: a local slot, a parameter slot, or a global, each carrying
// the displacement spec.md §6 says decoding must preserve.
type LValue struct {
	Kind       Kind
	Type       types.Type
	Displ      int
	ParamIndex int
	Name       string
}

func (l LValue) String() string {
	switch l.Kind {
	case Local:
		return fmt.Sprintf("(%d)", l.Displ)
	case Param:
		return fmt.Sprintf("arg%d", l.ParamIndex)
	default:
		return l.Name
	}
}

// DecodeRValue converts a pool Value into the rvalue surface type.
// v.Kind must be one of ConstInt/ConstFloat/ConstString/InstrResult,
// per spec.md §4.6's decoding contract.
func DecodeRValue(v *Value) RValue {
	return RValue{Kind: v.Kind, Int: v.IntVal, Float: v.FloatVal, Str: v.StrVal, Type: v.Type, TempID: v.ID}
}

// DecodeLValue converts a pool Value into the lvalue surface type.
// v.Kind must be one of Local/Param/Global.
func DecodeLValue(v *Value) LValue {
	return LValue{Kind: v.Kind, Type: v.Type, Displ: v.Displ, ParamIndex: v.Index, Name: v.Name}
}

// IsLValueKind reports whether a Value's Kind decodes through
// DecodeLValue rather than DecodeRValue, per spec.md §4.6's
// "Local/Param/Global decode to lvalues" rule.
func IsLValueKind(k Kind) bool {
	return k == Local || k == Param || k == Global
}

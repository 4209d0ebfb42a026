package ir

import (
	"fmt"

	"github.com/iancoleman/strcase"
)

// LabelKind names why a block boundary exists, matching the kinds
// spec.md's dump format (§6) expects to see printed beside a block's
// entry (BEGIN0, THEN1, ELSE1, END1, BEGIN_CYCLE2, ...).
type LabelKind int

const (
	LabelBegin LabelKind = iota
	LabelThen
	LabelElse
	LabelEnd
	LabelBeginCycle
	LabelNext
	LabelAnd
	LabelOr
	LabelCase
)

// goName is the Go-spelled identifier strcase derives the dump's
// assembler-style SCREAMING_SNAKE token from (BeginCycle -> BEGIN_CYCLE).
func (k LabelKind) goName() string {
	switch k {
	case LabelBegin:
		return "Begin"
	case LabelThen:
		return "Then"
	case LabelElse:
		return "Else"
	case LabelEnd:
		return "End"
	case LabelBeginCycle:
		return "BeginCycle"
	case LabelNext:
		return "Next"
	case LabelAnd:
		return "And"
	case LabelOr:
		return "Or"
	case LabelCase:
		return "Case"
	default:
		return "Label"
	}
}

func (k LabelKind) String() string {
	return strcase.ToScreamingSnake(k.goName())
}

// Label identifies a BasicBlock by the construct that created it
// (spec.md §3's block/function model) plus a per-function serial
// number, so two blocks of the same kind in one function still print
// distinct names (THEN1, THEN2, ...).
type Label struct {
	Kind LabelKind
	Seq  int
}

func (l Label) String() string {
	return fmt.Sprintf("%s%d", l.Kind, l.Seq)
}

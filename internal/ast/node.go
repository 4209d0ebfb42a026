// Package ast defines the typed syntax tree spec.md treats as an
// external, already-parsed collaborator. Grounded on the teacher's
// internal/ast/node.go Node interface + Position pair, generalized from
// Kanso's contract/storage/event node kinds to the C-like language's
// declarations, statements, and expressions.
package ast

import "ducc/internal/types"

// Position identifies a source location for diagnostics.
type Position struct {
	Line   int
	Column int
}

// Node is implemented by every AST node. Children exposes the
// navigation surface spec.md §6 requires of its AST collaborator: child
// count and child-by-index, without committing to a concrete node kind.
type Node interface {
	Pos() Position
	Children() []Node
	String() string
}

// Base is embedded by every concrete node to supply Pos().
type Base struct {
	Position Position
}

func (b Base) Pos() Position { return b.Position }

// Typed is embedded by expression nodes that carry a resolved type once
// internal/semantic has annotated them. The IR builder reads Type()
// directly and never re-derives it.
type Typed struct {
	ResolvedType types.Type
}

func (t Typed) Type() types.Type { return t.ResolvedType }

package ast

import "ducc/internal/types"

// Program is the root node: a translation unit's ordered top-level
// declarations, matching spec.md §4.1's "single translation unit"
// framing (one Program lowers to one ir.Module).
type Program struct {
	Base
	Decls []Decl
}

func (p *Program) Children() []Node {
	cs := make([]Node, len(p.Decls))
	for i, d := range p.Decls {
		cs[i] = d
	}
	return cs
}
func (p *Program) String() string { return "Program" }

// Decl is implemented by every top-level declaration kind.
type Decl interface {
	Node
	declNode()
}

// Param is a function parameter: name plus declared type.
type Param struct {
	Name string
	Type types.Type
}

// FunctionDecl declares a function with a body (Compound may be nil for
// a prototype-only declaration, which lowers to nothing — only
// ExternDecl produces a spec.md "extern" entry).
type FunctionDecl struct {
	Base
	Name       string
	Params     []Param
	ReturnType types.Type
	Body       *CompoundStmt
}

func (*FunctionDecl) declNode() {}
func (f *FunctionDecl) Children() []Node {
	if f.Body == nil {
		return nil
	}
	return []Node{f.Body}
}
func (f *FunctionDecl) String() string { return "FunctionDecl(" + f.Name + ")" }

// ExternDecl declares a function defined elsewhere, lowering to
// spec.md's Module.externs entry.
type ExternDecl struct {
	Base
	Name       string
	Params     []Param
	ReturnType types.Type
}

func (*ExternDecl) declNode()          {}
func (e *ExternDecl) Children() []Node { return nil }
func (e *ExternDecl) String() string   { return "ExternDecl(" + e.Name + ")" }

// GlobalVarDecl declares a file-scope variable, lowering to spec.md's
// Module.globals entry.
type GlobalVarDecl struct {
	Base
	Name string
	Type types.Type
	Init Expr // may be nil
}

func (*GlobalVarDecl) declNode() {}
func (g *GlobalVarDecl) Children() []Node {
	if g.Init == nil {
		return nil
	}
	return []Node{g.Init}
}
func (g *GlobalVarDecl) String() string { return "GlobalVarDecl(" + g.Name + ")" }

// StructDecl declares a structure tag, consumed by internal/types'
// registry rather than the IR builder directly.
type StructDecl struct {
	Base
	Name    string
	Members []types.Member
}

func (*StructDecl) declNode()          {}
func (s *StructDecl) Children() []Node { return nil }
func (s *StructDecl) String() string   { return "StructDecl(" + s.Name + ")" }

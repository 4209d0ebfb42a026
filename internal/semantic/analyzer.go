// Package semantic performs the minimal declare-and-annotate pass the
// IR builder depends on: it resolves every Ident to a local/parameter/
// global/function binding and stamps a resolved types.Type onto every
// expression node. Grounded on the teacher's internal/semantic/
// analyzer.go + context.go ContextRegistry shape, narrowed from
// Kanso's storage/event/import semantics down to plain C-like
// declare-before-use scoping — spec.md §7.3 treats this pass's output
// as already-verified and the IR builder never re-checks it.
package semantic

import (
	"fmt"

	"ducc/internal/ast"
	"ducc/internal/types"
)

// Error reports a single semantic-analysis failure.
type Error struct {
	Pos     ast.Position
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

// scope is one lexical block's name->type bindings, chained to its
// parent for shadowing lookups.
type scope struct {
	parent *scope
	vars   map[string]types.Type
	kinds  map[string]ast.IdentKind
	idx    map[string]int
}

func newScope(parent *scope) *scope {
	return &scope{parent: parent, vars: map[string]types.Type{}, kinds: map[string]ast.IdentKind{}, idx: map[string]int{}}
}

func (s *scope) declare(name string, t types.Type, kind ast.IdentKind, index int) {
	s.vars[name] = t
	s.kinds[name] = kind
	s.idx[name] = index
}

func (s *scope) lookup(name string) (types.Type, ast.IdentKind, int, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if t, ok := cur.vars[name]; ok {
			return t, cur.kinds[name], cur.idx[name], true
		}
	}
	return nil, 0, 0, false
}

// Analyzer walks a Program and annotates it in place.
type Analyzer struct {
	reg       *types.Registry
	globals   *scope
	functions map[string]types.Function
	errs      []error
	curReturn types.Type
}

// New creates an Analyzer sharing reg with the parser that produced the
// program (so structure tags resolve consistently).
func New(reg *types.Registry) *Analyzer {
	return &Analyzer{reg: reg, globals: newScope(nil), functions: map[string]types.Function{}}
}

// Errors returns every error found during Analyze.
func (a *Analyzer) Errors() []error { return a.errs }

func (a *Analyzer) errorf(pos ast.Position, format string, args ...any) {
	a.errs = append(a.errs, &Error{Pos: pos, Message: fmt.Sprintf(format, args...)})
}

// Analyze declares every top-level name and annotates every function
// body. It returns the accumulated errors (nil if none).
func (a *Analyzer) Analyze(prog *ast.Program) []error {
	for _, d := range prog.Decls {
		a.declareTopLevel(d)
	}
	for _, d := range prog.Decls {
		if fn, ok := d.(*ast.FunctionDecl); ok && fn.Body != nil {
			a.checkFunction(fn)
		}
	}
	return a.errs
}

func (a *Analyzer) declareTopLevel(d ast.Decl) {
	switch n := d.(type) {
	case *ast.FunctionDecl:
		params := make([]types.Type, len(n.Params))
		for i, p := range n.Params {
			params[i] = p.Type
		}
		a.functions[n.Name] = types.Function{Params: params, Return: n.ReturnType}
	case *ast.ExternDecl:
		params := make([]types.Type, len(n.Params))
		for i, p := range n.Params {
			params[i] = p.Type
		}
		a.functions[n.Name] = types.Function{Params: params, Return: n.ReturnType}
	case *ast.GlobalVarDecl:
		a.globals.declare(n.Name, n.Type, ast.IdentGlobal, 0)
		if n.Init != nil {
			a.checkExpr(n.Init, a.globals)
		}
	case *ast.StructDecl:
		// already registered into the shared types.Registry by the parser
	}
}

func (a *Analyzer) checkFunction(fn *ast.FunctionDecl) {
	s := newScope(a.globals)
	for i, p := range fn.Params {
		s.declare(p.Name, p.Type, ast.IdentParam, i)
	}
	a.curReturn = fn.ReturnType
	a.checkStmt(fn.Body, s)
}

func (a *Analyzer) checkStmt(stmt ast.Stmt, s *scope) {
	switch n := stmt.(type) {
	case *ast.CompoundStmt:
		inner := newScope(s)
		for _, st := range n.Stmts {
			a.checkStmt(st, inner)
		}
	case *ast.VarDeclStmt:
		s.declare(n.Name, n.Type, ast.IdentLocal, 0)
		if n.Init != nil {
			a.checkExpr(n.Init, s)
		}
	case *ast.ExprStmt:
		a.checkExpr(n.Expr, s)
	case *ast.IfStmt:
		a.checkExpr(n.Cond, s)
		a.checkStmt(n.Then, s)
		if n.Else != nil {
			a.checkStmt(n.Else, s)
		}
	case *ast.WhileStmt:
		a.checkExpr(n.Cond, s)
		a.checkStmt(n.Body, s)
	case *ast.DoWhileStmt:
		a.checkStmt(n.Body, s)
		a.checkExpr(n.Cond, s)
	case *ast.ForStmt:
		inner := newScope(s)
		if n.Init != nil {
			a.checkStmt(n.Init, inner)
		}
		if n.Cond != nil {
			a.checkExpr(n.Cond, inner)
		}
		if n.Post != nil {
			a.checkExpr(n.Post, inner)
		}
		a.checkStmt(n.Body, inner)
	case *ast.SwitchStmt:
		a.checkExpr(n.Tag, s)
		for _, c := range n.Cases {
			if c.Value != nil {
				a.checkExpr(c.Value, s)
			}
			inner := newScope(s)
			for _, st := range c.Stmts {
				a.checkStmt(st, inner)
			}
		}
	case *ast.ReturnStmt:
		if n.Value != nil {
			a.checkExpr(n.Value, s)
		}
	case *ast.BreakStmt, *ast.ContinueStmt:
		// nothing to annotate
	}
}

func (a *Analyzer) checkExpr(e ast.Expr, s *scope) types.Type {
	switch n := e.(type) {
	case *ast.IntLit:
		n.ResolvedType = types.Int32
	case *ast.FloatLit:
		n.ResolvedType = types.Float64
	case *ast.CharLit:
		n.ResolvedType = types.Char
	case *ast.StringLit:
		n.ResolvedType = types.Pointer{Elem: types.Char}
	case *ast.Ident:
		if t, kind, idx, ok := s.lookup(n.Name); ok {
			n.ResolvedType = t
			n.Kind = kind
			n.Index = idx
		} else if fn, ok := a.functions[n.Name]; ok {
			n.ResolvedType = fn
			n.Kind = ast.IdentFunction
		} else {
			a.errorf(n.Pos(), "undeclared identifier %q", n.Name)
			n.ResolvedType = types.VoidT
		}
	case *ast.BinaryExpr:
		lt := a.checkExpr(n.Left, s)
		rt := a.checkExpr(n.Right, s)
		n.ResolvedType = resultType(n.Op, lt, rt)
	case *ast.UnaryExpr:
		ot := a.checkExpr(n.Operand, s)
		switch n.Op {
		case ast.OpAddr:
			n.ResolvedType = types.Pointer{Elem: ot}
		case ast.OpDeref:
			if pt, ok := ot.(types.Pointer); ok {
				n.ResolvedType = pt.Elem
			} else {
				n.ResolvedType = types.VoidT
			}
		default:
			n.ResolvedType = ot
		}
	case *ast.IncDecExpr:
		n.ResolvedType = a.checkExpr(n.Operand, s)
	case *ast.AssignExpr:
		a.checkExpr(n.Target, s)
		n.ResolvedType = a.checkExpr(n.Value, s)
	case *ast.CallExpr:
		a.checkExpr(n.Callee, s)
		for _, arg := range n.Args {
			a.checkExpr(arg, s)
		}
		if fn, ok := n.Callee.ResolvedType.(types.Function); ok {
			n.ResolvedType = fn.Return
		} else {
			n.ResolvedType = types.VoidT
		}
	case *ast.SubscriptExpr:
		at := a.checkExpr(n.Array, s)
		a.checkExpr(n.Index, s)
		switch t := at.(type) {
		case types.Array:
			n.ResolvedType = t.Elem
		case types.Pointer:
			n.ResolvedType = t.Elem
		default:
			n.ResolvedType = types.VoidT
		}
	case *ast.MemberExpr:
		bt := a.checkExpr(n.Object, s)
		if n.Arrow {
			if pt, ok := bt.(types.Pointer); ok {
				bt = pt.Elem
			}
		}
		if st, ok := bt.(types.Structure); ok {
			if mt := st.MemberType(mustIndex(st, n.Field)); mt != nil {
				n.ResolvedType = mt
			} else {
				a.errorf(n.Pos(), "structure %s has no member %q", st.Name, n.Field)
				n.ResolvedType = types.VoidT
			}
		} else {
			a.errorf(n.Pos(), "member access on non-structure type")
			n.ResolvedType = types.VoidT
		}
	case *ast.CastExpr:
		a.checkExpr(n.Operand, s)
		n.ResolvedType = n.TargetType
	case *ast.TernaryExpr:
		a.checkExpr(n.Cond, s)
		tt := a.checkExpr(n.Then, s)
		a.checkExpr(n.Else, s)
		n.ResolvedType = tt
	}
	return e.Type()
}

func mustIndex(s types.Structure, field string) int {
	if i, ok := s.MemberIndex(field); ok {
		return i
	}
	return -1
}

// resultType implements C's usual-arithmetic-conversion rule narrowed to
// this language's scalar set: float beats int, wider int beats
// narrower, relational/logical operators always yield int32 (the
// language's boolean representation).
func resultType(op ast.BinaryOp, l, r types.Type) types.Type {
	switch op {
	case ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe, ast.OpEq, ast.OpNe, ast.OpLAnd, ast.OpLOr:
		return types.Int32
	}
	if l.IsFloating() || r.IsFloating() {
		return types.Float64
	}
	if li, ok := l.(types.Integer); ok {
		if ri, ok := r.(types.Integer); ok && ri.Bits > li.Bits {
			return ri
		}
		return li
	}
	return l
}

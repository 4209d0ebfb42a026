package ir_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"ducc/internal/ast"
	"ducc/internal/ir"
	"ducc/internal/types"
)

func intLit(n int64) *ast.IntLit {
	return &ast.IntLit{Typed: ast.Typed{ResolvedType: types.Int32}, Value: n}
}

func program(decls ...ast.Decl) *ast.Program {
	return &ast.Program{Decls: decls}
}

func fn(name string, params []ast.Param, ret types.Type, stmts ...ast.Stmt) *ast.FunctionDecl {
	return &ast.FunctionDecl{
		Name:       name,
		Params:     params,
		ReturnType: ret,
		Body:       &ast.CompoundStmt{Stmts: stmts},
	}
}

func ret(e ast.Expr) *ast.ReturnStmt { return &ast.ReturnStmt{Value: e} }

// Scenario 1 from spec.md §8: `int f(){ return 2 + 3; }` lowers to one
// block with two constants, an add, and a return.
func TestBuildLiteralAddition(t *testing.T) {
	prog := program(fn("f", nil, types.Int32, ret(&ast.BinaryExpr{
		Typed: ast.Typed{ResolvedType: types.Int32},
		Op:    ast.OpAdd,
		Left:  intLit(2),
		Right: intLit(3),
	})))

	m, errs := ir.Build(prog)
	require.Empty(t, errs)
	require.Len(t, m.Functions, 1)

	f := m.Functions[0]
	require.Len(t, f.Blocks, 1)
	insns := f.Blocks[0].Instructions
	require.Len(t, insns, 2)
	require.Equal(t, ir.OpAdd, insns[0].Op)
	require.Equal(t, int64(2), insns[0].Op1.IntVal)
	require.Equal(t, int64(3), insns[0].Op2.IntVal)
	require.Equal(t, ir.OpRetVal, insns[1].Op)
	require.Equal(t, insns[0].Result, insns[1].Op1)
}

// Scenario 4: a function calling g(1); h(1,2,3); g(1); is non-leaf with
// max call arity 3.
func TestBuildCallArityTracking(t *testing.T) {
	call := func(name string, argc int) *ast.ExprStmt {
		args := make([]ast.Expr, argc)
		for i := range args {
			args[i] = intLit(1)
		}
		return &ast.ExprStmt{Expr: &ast.CallExpr{
			Typed:  ast.Typed{ResolvedType: types.VoidT},
			Callee: &ast.Ident{Name: name, Kind: ast.IdentFunction, Typed: ast.Typed{ResolvedType: types.Function{Return: types.VoidT}}},
			Args:   args,
		}}
	}

	prog := program(
		&ast.ExternDecl{Name: "g", Params: []ast.Param{{Name: "x", Type: types.Int32}}, ReturnType: types.VoidT},
		&ast.ExternDecl{Name: "h", Params: []ast.Param{{Name: "a", Type: types.Int32}, {Name: "b", Type: types.Int32}, {Name: "c", Type: types.Int32}}, ReturnType: types.VoidT},
		fn("f", nil, types.VoidT, call("g", 1), call("h", 3), call("g", 1)),
	)

	m, errs := ir.Build(prog)
	require.Empty(t, errs)
	require.Len(t, m.Externs, 2)

	f := m.Functions[0]
	require.False(t, f.IsLeaf)
	require.Equal(t, 3, f.MaxCallArguments)
}

// Scenario 5: two occurrences of ConstInt(7) in the same function share
// one Value id.
func TestBuildConstantDedup(t *testing.T) {
	prog := program(fn("f", nil, types.Int32,
		&ast.ExprStmt{Expr: &ast.BinaryExpr{Typed: ast.Typed{ResolvedType: types.Int32}, Op: ast.OpAdd, Left: intLit(7), Right: intLit(7)}},
		ret(intLit(7)),
	))

	m, errs := ir.Build(prog)
	require.Empty(t, errs)

	f := m.Functions[0]
	add := f.Blocks[0].Instructions[0]
	require.Same(t, add.Op1, add.Op2)
	retInsn := f.Blocks[0].Instructions[len(f.Blocks[0].Instructions)-1]
	require.Same(t, add.Op1, retInsn.Op1)
}

// Scenario 6: `int a; float b;` with word size 4 yields local_size=8,
// allocas at displacements 0 and 4.
func TestBuildLocalOffsetAccumulation(t *testing.T) {
	prog := program(fn("f", nil, types.VoidT,
		&ast.VarDeclStmt{Name: "a", Type: types.Int32},
		&ast.VarDeclStmt{Name: "b", Type: types.Float64},
	))

	m, errs := ir.Build(prog)
	require.Empty(t, errs)

	f := m.Functions[0]
	require.Equal(t, 8, f.LocalSize)
	require.Len(t, f.Locals, 2)
	require.Equal(t, 0, f.Locals[0].Displ)
	require.Equal(t, 4, f.Locals[1].Displ)

	allocas := 0
	for _, in := range f.Blocks[0].Instructions {
		if in.Op == ir.OpAllocLocal {
			allocas++
		}
	}
	require.Equal(t, 2, allocas)
}

// Boundary: an empty function body still gets an entry block whose only
// instruction is ret_void.
func TestBuildEmptyFunctionBody(t *testing.T) {
	prog := program(fn("f", nil, types.VoidT))

	m, errs := ir.Build(prog)
	require.Empty(t, errs)

	f := m.Functions[0]
	require.Len(t, f.Blocks, 1)
	require.Len(t, f.Blocks[0].Instructions, 1)
	require.Equal(t, ir.OpRetVoid, f.Blocks[0].Instructions[0].Op)
}

// Boundary: a single-arm if without an else emits no else block; the
// condition branch targets the end block directly.
func TestBuildIfWithoutElse(t *testing.T) {
	prog := program(fn("f", nil, types.VoidT,
		&ast.IfStmt{
			Cond: intLit(1),
			Then: &ast.CompoundStmt{},
		},
	))

	m, errs := ir.Build(prog)
	require.Empty(t, errs)

	f := m.Functions[0]
	// blocks: cond(entry), then, end
	require.Len(t, f.Blocks, 3)
	branch := f.Blocks[0].Instructions[len(f.Blocks[0].Instructions)-1]
	require.Equal(t, ir.OpBranchZero, branch.Op)
	require.Equal(t, f.Blocks[2].ID, branch.TargetIdx) // falls straight to end, no else block
}

func TestModuleValidateRejectsUnterminatedBlock(t *testing.T) {
	m := ir.NewModule()
	f := ir.NewFunction("f", types.VoidT)
	b := f.AddBlock(f.NextLabel(ir.LabelBegin))
	b.Append(&ir.Instruction{Op: ir.OpNop})
	m.AddFunction(f)

	err := m.Validate()
	require.Error(t, err)
}

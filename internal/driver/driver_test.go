package driver_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"ducc/internal/ast"
	"ducc/internal/driver"
	"ducc/internal/types"
)

func unitReturning(name string, n int64) driver.Unit {
	return driver.Unit{
		Name: name,
		Prog: &ast.Program{Decls: []ast.Decl{
			&ast.FunctionDecl{
				Name:       name,
				ReturnType: types.Int32,
				Body: &ast.CompoundStmt{Stmts: []ast.Stmt{
					&ast.ReturnStmt{Value: &ast.IntLit{Typed: ast.Typed{ResolvedType: types.Int32}, Value: n}},
				}},
			},
		}},
	}
}

func TestCompileAllBuildsEveryUnitIndependently(t *testing.T) {
	units := []driver.Unit{
		unitReturning("a", 1),
		unitReturning("b", 2),
		unitReturning("c", 3),
	}

	results := driver.CompileAll(units)
	require.Len(t, results, 3)
	require.Equal(t, 0, driver.TotalErrors(results))

	for i, r := range results {
		require.Equal(t, units[i].Name, r.Name)
		require.NotNil(t, r.Module)
		require.Len(t, r.Module.Functions, 1)
	}

	dumps := driver.DumpAll(results)
	require.Len(t, dumps, 3)
	require.Contains(t, dumps["a"], "function a int32")
}

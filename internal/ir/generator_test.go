package ir_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"ducc/internal/ir"
	"ducc/internal/types"
)

func buildSmallModule() *ir.Module {
	m := ir.NewModule()
	m.AddExtern("puts", []types.Type{types.Pointer{Elem: types.Char}}, types.Int32)
	m.AddGlobal("counter", types.Int32)

	fn := ir.NewFunction("f", types.Int32)
	pool := m.Values
	b := fn.AddBlock(fn.NextLabel(ir.LabelBegin))
	two := pool.InternInt(2, types.Int32)
	three := pool.InternInt(3, types.Int32)
	sum := pool.AllocInstrResult(types.Int32, b.ID, 0)
	b.Append(&ir.Instruction{Op: ir.OpAdd, Result: sum, Op1: two, Op2: three})
	b.Append(&ir.Instruction{Op: ir.OpRetVal, Op1: sum})
	m.AddFunction(fn)

	return m
}

// spec.md §8's determinism law: generating the same module twice must
// invoke the same callback sequence both times.
func TestGenerateIsDeterministic(t *testing.T) {
	m := buildSmallModule()

	c1 := &ir.CountingCallbacks{}
	ir.Generate(m, c1)

	c2 := &ir.CountingCallbacks{}
	ir.Generate(m, c2)

	require.Equal(t, c1.Calls, c2.Calls)
	require.Equal(t, []string{
		"begin",
		"extern:puts",
		"global:counter",
		"function_begin:f",
		"RRR:add",
		"RR:ret_val",
		"function_end:f",
		"end",
	}, c1.Calls)
}

func TestDumpProducesOneBlockPerFunction(t *testing.T) {
	m := buildSmallModule()
	out := ir.Dump(m)

	require.Contains(t, out, "extern int32 %puts")
	require.Contains(t, out, "global int32 %counter")
	require.Contains(t, out, "function f int32")
	require.Contains(t, out, "add")
	require.Contains(t, out, "ret_val")
	require.Equal(t, 1, strings.Count(out, "  block "))
}

func TestDecodeRValueAndLValue(t *testing.T) {
	pool := ir.NewPool()
	c := pool.InternInt(42, types.Int32)
	rv := ir.DecodeRValue(c)
	require.Equal(t, ir.ConstInt, rv.Kind)
	require.Equal(t, int64(42), rv.Int)

	local := pool.NewLocal("x", types.Int32)
	local.Displ = 4
	lv := ir.DecodeLValue(local)
	require.Equal(t, ir.Local, lv.Kind)
	require.Equal(t, 4, lv.Displ)

	require.True(t, ir.IsLValueKind(ir.Local))
	require.True(t, ir.IsLValueKind(ir.Param))
	require.True(t, ir.IsLValueKind(ir.Global))
	require.False(t, ir.IsLValueKind(ir.ConstInt))
	require.False(t, ir.IsLValueKind(ir.InstrResult))
}

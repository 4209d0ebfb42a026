package ir_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"ducc/internal/ir"
	"ducc/internal/types"
)

// Builds a block computing: t1 = a+b; t2 = a+c; ret t2 (t2 reads a a
// second time, t1's result is never read again).
func buildNextUseFixture() (*ir.Function, *ir.BasicBlock) {
	fn := ir.NewFunction("f", types.Int32)
	b := fn.AddBlock(fn.NextLabel(ir.LabelBegin))
	pool := ir.NewPool()

	a := pool.NewParam("a", 0, types.Int32)
	c := pool.NewParam("c", 1, types.Int32)
	bb := pool.NewParam("b", 2, types.Int32)

	t1 := pool.AllocInstrResult(types.Int32, b.ID, 0)
	b.Append(&ir.Instruction{Op: ir.OpAdd, Result: t1, Op1: a, Op2: bb})

	t2 := pool.AllocInstrResult(types.Int32, b.ID, 1)
	b.Append(&ir.Instruction{Op: ir.OpAdd, Result: t2, Op1: a, Op2: c})

	b.Append(&ir.Instruction{Op: ir.OpRetVal, Op1: t2})

	return fn, b
}

func TestAnalyzeNextUseFindsSmallestSubsequentRead(t *testing.T) {
	fn, b := buildNextUseFixture()
	infos := ir.AnalyzeNextUse(fn)[b]

	require.Equal(t, 1, infos[0].Operand1Next, "a's first read (index 0) is next read again at index 1")
	require.True(t, infos[0].ResultDeadHere, "t1 is never read again in this block")

	require.Equal(t, -1, infos[1].Operand1Next, "a's read at index 1 has no further read in this block")
	require.False(t, infos[1].ResultDeadHere, "t2 is read by the ret")

	require.Equal(t, -1, infos[2].Operand1Next)
}

func TestAnalyzeNextUseRecordsLiveInAtBlockTop(t *testing.T) {
	fn, b := buildNextUseFixture()
	ir.AnalyzeNextUse(fn)

	// 'a' is read at instruction index 0 and again at index 1; nothing
	// reads it before index 0, so it is live-in to the block at index 0.
	aParam := fn.Blocks[0].Instructions[0].Op1
	idx, ok := b.NextUse[aParam.ID]
	require.True(t, ok)
	require.Equal(t, 0, idx)
}

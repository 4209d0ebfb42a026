package ir_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"ducc/internal/ir"
	"ducc/internal/types"
)

// t1 = a+b; t2 = a+b; ret t2 — the second add is a pure redundant
// recomputation of the first and must collapse to one instruction.
func buildCSEFixture() (*ir.Pool, *ir.Function, *ir.BasicBlock) {
	pool := ir.NewPool()
	fn := ir.NewFunction("f", types.Int32)
	b := fn.AddBlock(fn.NextLabel(ir.LabelBegin))

	a := pool.NewParam("a", 0, types.Int32)
	bb := pool.NewParam("b", 1, types.Int32)

	t1 := pool.AllocInstrResult(types.Int32, b.ID, 0)
	b.Append(&ir.Instruction{Op: ir.OpAdd, Result: t1, Op1: a, Op2: bb})

	t2 := pool.AllocInstrResult(types.Int32, b.ID, 1)
	b.Append(&ir.Instruction{Op: ir.OpAdd, Result: t2, Op1: a, Op2: bb})

	b.Append(&ir.Instruction{Op: ir.OpRetVal, Op1: t2})

	return pool, fn, b
}

func TestOptimizeBlockCollapsesRedundantComputation(t *testing.T) {
	pool, _, b := buildCSEFixture()
	ir.OptimizeBlock(pool, b)

	require.Len(t, b.Instructions, 2, "the redundant add is dropped")
	require.Equal(t, ir.OpAdd, b.Instructions[0].Op)
	require.Equal(t, ir.OpRetVal, b.Instructions[1].Op)
	require.Same(t, b.Instructions[0].Result, b.Instructions[1].Op1, "ret now reads the first add's result directly")
}

func TestOptimizeFunctionIsIdempotent(t *testing.T) {
	pool, fn, _ := buildCSEFixture()
	first := ir.OptimizeFunctionCounted(pool, fn)
	second := ir.OptimizeFunctionCounted(pool, fn)

	require.Equal(t, first.InstructionsAfter, second.InstructionsBefore)
	require.Equal(t, second.InstructionsBefore, second.InstructionsAfter)
}

// A commutative opcode (add) must key the same regardless of operand
// order, so a+b and b+a collapse too.
func TestOptimizeBlockTreatsCommutativeOperandsAsEqual(t *testing.T) {
	pool := ir.NewPool()
	fn := ir.NewFunction("f", types.Int32)
	b := fn.AddBlock(fn.NextLabel(ir.LabelBegin))

	a := pool.NewParam("a", 0, types.Int32)
	bb := pool.NewParam("b", 1, types.Int32)

	t1 := pool.AllocInstrResult(types.Int32, b.ID, 0)
	b.Append(&ir.Instruction{Op: ir.OpAdd, Result: t1, Op1: a, Op2: bb})
	t2 := pool.AllocInstrResult(types.Int32, b.ID, 1)
	b.Append(&ir.Instruction{Op: ir.OpAdd, Result: t2, Op1: bb, Op2: a})
	b.Append(&ir.Instruction{Op: ir.OpRetVal, Op1: t2})

	ir.OptimizeBlock(pool, b)
	require.Len(t, b.Instructions, 2)
}

// store/call/push/alloca/jump/label-equivalent instructions must never
// be shared even if their operands are identical, since they carry side
// effects (spec.md §4.5).
func TestOptimizeBlockNeverSharesSideEffectingInstructions(t *testing.T) {
	pool := ir.NewPool()
	fn := ir.NewFunction("f", types.VoidT)
	b := fn.AddBlock(fn.NextLabel(ir.LabelBegin))

	ptr := pool.NewLocal("p", types.Pointer{Elem: types.Int32})
	val := pool.InternInt(1, types.Int32)
	b.Append(&ir.Instruction{Op: ir.OpStoreOff, Op1: ptr, Op2: val, Disp: 0})
	b.Append(&ir.Instruction{Op: ir.OpStoreOff, Op1: ptr, Op2: val, Disp: 0})
	b.Append(&ir.Instruction{Op: ir.OpRetVoid})

	ir.OptimizeBlock(pool, b)
	require.Len(t, b.Instructions, 3, "both stores must survive")
}

func TestEliminateDeadInstructionsDropsUnreadResult(t *testing.T) {
	pool := ir.NewPool()
	fn := ir.NewFunction("f", types.VoidT)
	b := fn.AddBlock(fn.NextLabel(ir.LabelBegin))

	a := pool.NewParam("a", 0, types.Int32)
	one := pool.InternInt(1, types.Int32)
	dead := pool.AllocInstrResult(types.Int32, b.ID, 0)
	b.Append(&ir.Instruction{Op: ir.OpAdd, Result: dead, Op1: a, Op2: one})
	b.Append(&ir.Instruction{Op: ir.OpRetVoid})

	uses := ir.AnalyzeNextUse(fn)[b]
	ir.EliminateDeadInstructions(pool, b, uses)
	require.Len(t, b.Instructions, 1)
	require.Equal(t, ir.OpRetVoid, b.Instructions[0].Op)
}

// Builder lowers an internal/ast.Program into an ir.Module, per spec.md
// §4.2. Grounded on the teacher's internal/ir/builder.go state-machine
// shape (currentFunc/currentBlock/valueCounter-style running state,
// buildExpression/buildStatement dispatch, buildBinaryOp/buildCall
// helpers), with the EVM/storage-specific lowering rules (storage
// slots, Sethi-Ullman stack scheduling, SSA phi placement) replaced by
// the C-like three-address lowering spec.md §4.2 specifies: flat
// per-block instruction sequences, no SSA, and direct reuse of a named
// variable's Value across every assignment to it instead of creating a
// new definition per write.
package ir

import (
	"fmt"

	"ducc/internal/ast"
	"ducc/internal/types"
)

// Builder holds the running state of one Module's construction. A
// Builder is single-use: call Build once, then discard it.
type Builder struct {
	module *Module

	fn    *Function
	block *BasicBlock

	locals map[string]*Value // current function's name -> Value
	params map[string]*Value

	breakTargets    []*BasicBlock
	continueTargets []*BasicBlock

	errs []error
}

// NewBuilder creates a Builder that will populate a fresh Module.
func NewBuilder() *Builder {
	return &Builder{module: NewModule()}
}

// Errors returns every error accumulated while building.
func (b *Builder) Errors() []error { return b.errs }

func (b *Builder) fail(err error) {
	b.errs = append(b.errs, err)
}

// Build lowers prog into a Module. It returns the Module built so far
// even on error, so callers can still inspect partial output.
func Build(prog *ast.Program) (*Module, []error) {
	b := NewBuilder()
	for _, d := range prog.Decls {
		b.buildTopLevel(d)
	}
	if err := b.module.Validate(); err != nil {
		b.fail(err)
	}
	return b.module, b.errs
}

func (b *Builder) buildTopLevel(d ast.Decl) {
	switch n := d.(type) {
	case *ast.ExternDecl:
		params := make([]types.Type, len(n.Params))
		for i, p := range n.Params {
			params[i] = p.Type
		}
		b.module.AddExtern(n.Name, params, n.ReturnType)
	case *ast.GlobalVarDecl:
		b.module.AddGlobal(n.Name, n.Type)
	case *ast.StructDecl:
		// structure layout already lives in the shared types.Registry
	case *ast.FunctionDecl:
		if n.Body != nil {
			b.buildFunction(n)
		}
	}
}

func (b *Builder) buildFunction(n *ast.FunctionDecl) {
	fn := NewFunction(n.Name, n.ReturnType)
	b.fn = fn
	b.locals = map[string]*Value{}
	b.params = map[string]*Value{}

	for i, p := range n.Params {
		v := b.module.Values.NewParam(p.Name, i, p.Type)
		fn.Params = append(fn.Params, v)
		b.params[p.Name] = v
	}

	b.block = fn.AddBlock(fn.NextLabel(LabelBegin))
	b.buildCompound(n.Body)

	if !b.block.IsTerminated() {
		b.emitReturn(nil)
	}

	b.module.AddFunction(fn)
}

// resolveIdent returns the Value bound to a simple name: a current-
// function local, a parameter, or a module global, in that shadowing
// order (locals were declared after params, matching internal/semantic's
// scope chain).
func (b *Builder) resolveIdent(name string) (*Value, bool) {
	if v, ok := b.locals[name]; ok {
		return v, true
	}
	if v, ok := b.params[name]; ok {
		return v, true
	}
	return b.module.Global(name)
}

// declareLocal reserves a frame slot for name and emits the alloca
// instruction spec.md §2 requires ("alloca size → lvalue"), so the
// dump and generator driver see the allocation explicitly instead of
// inferring it from LocalSize bookkeeping alone.
func (b *Builder) declareLocal(name string, t types.Type) *Value {
	v := b.module.Values.NewLocal(name, t)
	b.locals[name] = v
	b.fn.AddLocal(v)
	b.emit(&Instruction{Op: OpAllocLocal, Result: v, Disp: t.SizeInWords() * types.WordSize})
	return v
}

func (b *Builder) newResult(t types.Type) *Value {
	return b.module.Values.AllocInstrResult(t, b.block.ID, len(b.block.Instructions))
}

func (b *Builder) emit(in *Instruction) *Instruction {
	return b.block.Append(in)
}

// --- statements ---

func (b *Builder) buildCompound(c *ast.CompoundStmt) {
	for _, s := range c.Stmts {
		if b.block.IsTerminated() {
			return // unreachable code after a terminator; nothing further to lower
		}
		b.buildStmt(s)
	}
}

func (b *Builder) buildStmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.CompoundStmt:
		b.buildCompound(n)
	case *ast.VarDeclStmt:
		v := b.declareLocal(n.Name, n.Type)
		if n.Init != nil {
			switch n.Type.(type) {
			case types.Structure, types.Array:
				// spec.md §9: array/structure initialisation is a stub.
				b.fail(unsupported("structure/array initializer"))
				return
			}
			val := b.buildExpr(n.Init)
			b.emit(&Instruction{Op: OpMove, Result: v, Op1: val})
		}
	case *ast.ExprStmt:
		b.buildExpr(n.Expr)
	case *ast.IfStmt:
		b.buildIf(n)
	case *ast.WhileStmt:
		b.buildWhile(n)
	case *ast.DoWhileStmt:
		b.buildDoWhile(n)
	case *ast.ForStmt:
		b.buildFor(n)
	case *ast.SwitchStmt:
		b.buildSwitch(n)
	case *ast.BreakStmt:
		b.buildBreak()
	case *ast.ContinueStmt:
		b.buildContinue()
	case *ast.ReturnStmt:
		if n.Value != nil {
			b.emitReturn(b.buildExpr(n.Value))
		} else {
			b.emitReturn(nil)
		}
	default:
		b.fail(unsupported("statement kind %T", s))
	}
}

func (b *Builder) emitReturn(v *Value) {
	if v == nil {
		b.emit(&Instruction{Op: OpRetVoid})
		return
	}
	b.emit(&Instruction{Op: OpRetVal, Op1: v})
}

func (b *Builder) buildIf(n *ast.IfStmt) {
	cond := b.buildExpr(n.Cond)
	thenLabel := b.fn.NextLabel(LabelThen)
	endLabel := b.fn.NextLabel(LabelEnd)

	thenBlock := b.fn.AddBlock(thenLabel)
	br := b.emit(&Instruction{Op: OpBranchZero, Op1: cond, TargetIdx: -1}) // patched below once else/end exist

	var elseBlock *BasicBlock
	if n.Else != nil {
		elseBlock = b.fn.AddBlock(b.fn.NextLabel(LabelElse))
	}
	endBlock := b.fn.AddBlock(endLabel)

	// The conditional branch instruction was appended to the current
	// block before elseBlock/endBlock were created; patch its target now
	// that we know where to jump on a false condition.
	if elseBlock != nil {
		br.TargetIdx = elseBlock.ID
	} else {
		br.TargetIdx = endBlock.ID
	}

	b.block = thenBlock
	b.buildStmt(n.Then)
	if !b.block.IsTerminated() {
		b.emit(&Instruction{Op: OpGoto, TargetIdx: endBlock.ID})
	}

	if elseBlock != nil {
		b.block = elseBlock
		b.buildStmt(n.Else)
		if !b.block.IsTerminated() {
			b.emit(&Instruction{Op: OpGoto, TargetIdx: endBlock.ID})
		}
	}

	b.block = endBlock
}

func (b *Builder) buildWhile(n *ast.WhileStmt) {
	condLabel := b.fn.NextLabel(LabelBeginCycle)
	condBlock := b.fn.AddBlock(condLabel)
	b.emit(&Instruction{Op: OpGoto, TargetIdx: condBlock.ID})

	b.block = condBlock
	cond := b.buildExpr(n.Cond)

	bodyBlock := b.fn.AddBlock(b.fn.NextLabel(LabelThen))
	endBlock := b.fn.AddBlock(b.fn.NextLabel(LabelEnd))
	b.emit(&Instruction{Op: OpBranchZero, Op1: cond, TargetIdx: endBlock.ID})

	b.breakTargets = append(b.breakTargets, endBlock)
	b.continueTargets = append(b.continueTargets, condBlock)

	b.block = bodyBlock
	b.buildStmt(n.Body)
	if !b.block.IsTerminated() {
		b.emit(&Instruction{Op: OpGoto, TargetIdx: condBlock.ID})
	}

	b.breakTargets = b.breakTargets[:len(b.breakTargets)-1]
	b.continueTargets = b.continueTargets[:len(b.continueTargets)-1]

	b.block = endBlock
}

func (b *Builder) buildDoWhile(n *ast.DoWhileStmt) {
	bodyBlock := b.fn.AddBlock(b.fn.NextLabel(LabelBeginCycle))
	b.emit(&Instruction{Op: OpGoto, TargetIdx: bodyBlock.ID})

	// The condition (continue target) and end (break target) blocks exist
	// before the body is lowered, so break/continue inside it can jump.
	condBlock := b.fn.AddBlock(b.fn.NextLabel(LabelNext))
	endBlock := b.fn.AddBlock(b.fn.NextLabel(LabelEnd))

	b.breakTargets = append(b.breakTargets, endBlock)
	b.continueTargets = append(b.continueTargets, condBlock)

	b.block = bodyBlock
	b.buildStmt(n.Body)
	if !b.block.IsTerminated() {
		b.emit(&Instruction{Op: OpGoto, TargetIdx: condBlock.ID})
	}

	b.block = condBlock
	cond := b.buildExpr(n.Cond)
	br := b.emit(&Instruction{Op: OpBranchNZero, Op1: cond, TargetIdx: bodyBlock.ID})
	br.Disp = endBlock.ID // fallthrough target on false

	b.breakTargets = b.breakTargets[:len(b.breakTargets)-1]
	b.continueTargets = b.continueTargets[:len(b.continueTargets)-1]

	b.block = endBlock
}

func (b *Builder) buildFor(n *ast.ForStmt) {
	if n.Init != nil {
		b.buildStmt(n.Init)
	}
	condBlock := b.fn.AddBlock(b.fn.NextLabel(LabelBeginCycle))
	b.emit(&Instruction{Op: OpGoto, TargetIdx: condBlock.ID})

	b.block = condBlock
	var cond *Value
	if n.Cond != nil {
		cond = b.buildExpr(n.Cond)
	}

	bodyBlock := b.fn.AddBlock(b.fn.NextLabel(LabelThen))
	postLabel := b.fn.NextLabel(LabelNext)
	endBlock := b.fn.AddBlock(b.fn.NextLabel(LabelEnd))

	if cond != nil {
		b.emit(&Instruction{Op: OpBranchZero, Op1: cond, TargetIdx: endBlock.ID})
	} else {
		b.emit(&Instruction{Op: OpGoto, TargetIdx: bodyBlock.ID})
	}

	b.breakTargets = append(b.breakTargets, endBlock)

	b.block = bodyBlock
	postBlock := b.fn.AddBlock(postLabel)
	b.continueTargets = append(b.continueTargets, postBlock)
	b.buildStmt(n.Body)
	if !b.block.IsTerminated() {
		b.emit(&Instruction{Op: OpGoto, TargetIdx: postBlock.ID})
	}

	b.block = postBlock
	if n.Post != nil {
		b.buildExpr(n.Post)
	}
	b.emit(&Instruction{Op: OpGoto, TargetIdx: condBlock.ID})

	b.breakTargets = b.breakTargets[:len(b.breakTargets)-1]
	b.continueTargets = b.continueTargets[:len(b.continueTargets)-1]

	b.block = endBlock
}

func (b *Builder) buildSwitch(n *ast.SwitchStmt) {
	tag := b.buildExpr(n.Tag)
	endBlock := b.fn.AddBlock(b.fn.NextLabel(LabelEnd))
	b.breakTargets = append(b.breakTargets, endBlock)

	var defaultIdx = -1
	caseBlocks := make([]*BasicBlock, len(n.Cases))
	for i, c := range n.Cases {
		caseBlocks[i] = b.fn.AddBlock(b.fn.NextLabel(LabelCase))
		if c.IsDefault {
			defaultIdx = i
		}
	}

	dispatchBlock := b.block
	for i, c := range n.Cases {
		if c.IsDefault {
			continue
		}
		caseVal := b.buildExpr(c.Value)
		b.block = dispatchBlock
		b.emit(&Instruction{Op: OpBranchEq, Op1: tag, Op2: caseVal, TargetIdx: caseBlocks[i].ID, CaseLabel: c.Value.String()})
	}
	b.block = dispatchBlock
	if defaultIdx >= 0 {
		b.emit(&Instruction{Op: OpGoto, TargetIdx: caseBlocks[defaultIdx].ID})
	} else {
		b.emit(&Instruction{Op: OpGoto, TargetIdx: endBlock.ID})
	}

	for i, c := range n.Cases {
		b.block = caseBlocks[i]
		for _, st := range c.Stmts {
			if b.block.IsTerminated() {
				break
			}
			b.buildStmt(st)
		}
		if !b.block.IsTerminated() {
			next := endBlock.ID
			if i+1 < len(caseBlocks) {
				next = caseBlocks[i+1].ID
			}
			b.emit(&Instruction{Op: OpGoto, TargetIdx: next})
		}
	}

	b.breakTargets = b.breakTargets[:len(b.breakTargets)-1]
	b.block = endBlock
}

func (b *Builder) buildBreak() {
	if len(b.breakTargets) == 0 {
		b.fail(unreachable("break outside any loop or switch"))
		return
	}
	target := b.breakTargets[len(b.breakTargets)-1]
	b.emit(&Instruction{Op: OpGoto, TargetIdx: target.ID})
}

func (b *Builder) buildContinue() {
	if len(b.continueTargets) == 0 {
		b.fail(unreachable("continue outside any loop"))
		return
	}
	target := b.continueTargets[len(b.continueTargets)-1]
	b.emit(&Instruction{Op: OpGoto, TargetIdx: target.ID})
}

// --- expressions ---

func (b *Builder) buildExpr(e ast.Expr) *Value {
	switch n := e.(type) {
	case *ast.IntLit:
		return b.module.Values.InternInt(n.Value, n.Type())
	case *ast.FloatLit:
		return b.module.Values.InternFloat(n.Value, n.Type())
	case *ast.CharLit:
		return b.module.Values.InternInt(int64(n.Value), n.Type())
	case *ast.StringLit:
		return b.module.Values.InternString(n.Value)
	case *ast.Ident:
		if v, ok := b.resolveIdent(n.Name); ok {
			return v
		}
		b.fail(unreachable("identifier %q not bound (should have been caught by semantic analysis)", n.Name))
		return b.module.Values.InternInt(0, types.Int32)
	case *ast.BinaryExpr:
		return b.buildBinary(n)
	case *ast.UnaryExpr:
		return b.buildUnary(n)
	case *ast.IncDecExpr:
		return b.buildIncDec(n)
	case *ast.AssignExpr:
		return b.buildAssign(n)
	case *ast.CallExpr:
		return b.buildCall(n)
	case *ast.SubscriptExpr:
		addr := b.lowerElementAddr(n)
		res := b.newResult(n.Type())
		b.emit(&Instruction{Op: OpLoadOff, Result: res, Op1: addr, Disp: 0})
		return res
	case *ast.MemberExpr:
		addr, off := b.lowerMemberAddr(n)
		res := b.newResult(n.Type())
		b.emit(&Instruction{Op: OpLoadOff, Result: res, Op1: addr, Disp: off})
		return res
	case *ast.CastExpr:
		val := b.buildExpr(n.Operand)
		res := b.newResult(n.TargetType)
		b.emit(&Instruction{Op: OpCast, Result: res, Op1: val})
		return res
	case *ast.TernaryExpr:
		return b.buildTernary(n)
	default:
		b.fail(unsupported("expression kind %T", e))
		return b.module.Values.InternInt(0, types.Int32)
	}
}

func (b *Builder) buildBinary(n *ast.BinaryExpr) *Value {
	switch n.Op {
	case ast.OpLAnd:
		return b.buildShortCircuit(n, true)
	case ast.OpLOr:
		return b.buildShortCircuit(n, false)
	}

	lhs := b.buildExpr(n.Left)

	if isRelational(n.Op) {
		rhs := b.buildExpr(n.Right)
		if n.Op == ast.OpLt && lhs.Type.IsInteger() && rhs.Type.IsInteger() {
			res := b.newResult(n.Type())
			b.emit(&Instruction{Op: OpSlt, Result: res, Op1: lhs, Op2: rhs})
			return res
		}
		return b.buildRelationalViaBranch(n.Op, lhs, rhs, n.Type())
	}

	rhs := b.buildExpr(n.Right)
	res := b.newResult(n.Type())
	b.emit(&Instruction{Op: arithOpcode(n.Op), Result: res, Op1: lhs, Op2: rhs})
	return res
}

func isRelational(op ast.BinaryOp) bool {
	switch op {
	case ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe, ast.OpEq, ast.OpNe:
		return true
	}
	return false
}

func arithOpcode(op ast.BinaryOp) Opcode {
	switch op {
	case ast.OpAdd:
		return OpAdd
	case ast.OpSub:
		return OpSub
	case ast.OpMul:
		return OpMul
	case ast.OpDiv:
		return OpDiv
	case ast.OpMod:
		return OpMod
	case ast.OpBitAnd:
		return OpAnd
	case ast.OpBitOr:
		return OpOr
	case ast.OpBitXor:
		return OpXor
	case ast.OpShl:
		return OpShl
	case ast.OpShr:
		return OpShr
	}
	return OpNop
}

func branchOpcode(op ast.BinaryOp) Opcode {
	switch op {
	case ast.OpLt:
		return OpBranchLt
	case ast.OpLe:
		return OpBranchLe
	case ast.OpGt:
		return OpBranchGt
	case ast.OpGe:
		return OpBranchGe
	case ast.OpEq:
		return OpBranchEq
	case ast.OpNe:
		return OpBranchNe
	}
	return OpNop
}

// buildRelationalViaBranch lowers a general relational comparison as
// the two-label branch-and-move sequence spec.md §4.2 describes for the
// general case (see DESIGN.md: only integer `<` gets the single-
// instruction `slt` fast path).
func (b *Builder) buildRelationalViaBranch(op ast.BinaryOp, lhs, rhs *Value, t types.Type) *Value {
	res := b.declareLocal(tempName(b), t)
	b.emit(&Instruction{Op: OpMove, Result: res, Op1: b.module.Values.InternInt(1, t)})

	trueBlock := b.fn.AddBlock(b.fn.NextLabel(LabelThen))
	endBlock := b.fn.AddBlock(b.fn.NextLabel(LabelEnd))

	condBlock := b.fn.Blocks[trueBlock.ID-1]
	b.block = condBlock
	b.emit(&Instruction{Op: branchOpcode(op), Op1: lhs, Op2: rhs, TargetIdx: trueBlock.ID})
	falseSetBlock := b.fn.AddBlock(b.fn.NextLabel(LabelElse))
	condBlock.Instructions[len(condBlock.Instructions)-1].Disp = falseSetBlock.ID

	b.block = falseSetBlock
	b.emit(&Instruction{Op: OpMove, Result: res, Op1: b.module.Values.InternInt(0, t)})
	b.emit(&Instruction{Op: OpGoto, TargetIdx: endBlock.ID})

	b.block = trueBlock
	b.emit(&Instruction{Op: OpGoto, TargetIdx: endBlock.ID})

	b.block = endBlock
	return res
}

var tempCounter int

func tempName(b *Builder) string {
	tempCounter++
	return fmt.Sprintf("$t%d", tempCounter)
}

// buildShortCircuit lowers && (isAnd == true) and || via an And/Or-
// labeled right-operand block plus End-labeled short-result and join
// blocks: the right operand is only
// evaluated when the left doesn't already decide the result.
func (b *Builder) buildShortCircuit(n *ast.BinaryExpr, isAnd bool) *Value {
	res := b.declareLocal(tempName(b), n.Type())
	lhs := b.buildExpr(n.Left)

	var kind LabelKind
	if isAnd {
		kind = LabelAnd
	} else {
		kind = LabelOr
	}
	rhsBlock := b.fn.AddBlock(b.fn.NextLabel(kind))
	shortBlock := b.fn.AddBlock(b.fn.NextLabel(LabelEnd))
	endBlock := b.fn.AddBlock(b.fn.NextLabel(LabelEnd))

	if isAnd {
		b.emit(&Instruction{Op: OpBranchZero, Op1: lhs, TargetIdx: shortBlock.ID})
	} else {
		b.emit(&Instruction{Op: OpBranchNZero, Op1: lhs, TargetIdx: shortBlock.ID})
	}
	b.block.Instructions[len(b.block.Instructions)-1].Disp = rhsBlock.ID

	b.block = rhsBlock
	rhs := b.buildExpr(n.Right)
	b.emit(&Instruction{Op: OpMove, Result: res, Op1: rhs})
	b.emit(&Instruction{Op: OpGoto, TargetIdx: endBlock.ID})

	b.block = shortBlock
	shortVal := int64(0)
	if !isAnd {
		shortVal = 1
	}
	b.emit(&Instruction{Op: OpMove, Result: res, Op1: b.module.Values.InternInt(shortVal, n.Type())})
	b.emit(&Instruction{Op: OpGoto, TargetIdx: endBlock.ID})

	b.block = endBlock
	return res
}

func (b *Builder) buildUnary(n *ast.UnaryExpr) *Value {
	switch n.Op {
	case ast.OpAddr:
		target := n.Operand
		if id, ok := target.(*ast.Ident); ok {
			if v, ok := b.resolveIdent(id.Name); ok {
				return v // the local/global Value already stands for its own address here
			}
		}
		b.fail(unsupported("address-of on non-lvalue"))
		return b.module.Values.InternInt(0, n.Type())
	case ast.OpDeref:
		// spec.md §4.2/§9: indirection lvalue is marked unimplemented
		// and flagged fatally, not lowered.
		b.fail(unsupported("indirection lvalue (*ptr)"))
		return b.module.Values.InternInt(0, n.Type())
	}
	val := b.buildExpr(n.Operand)
	res := b.newResult(n.Type())
	switch n.Op {
	case ast.OpNeg:
		b.emit(&Instruction{Op: OpNeg, Result: res, Op1: val})
	case ast.OpNot:
		b.emit(&Instruction{Op: OpNot, Result: res, Op1: val})
	case ast.OpBitNot:
		b.emit(&Instruction{Op: OpBitNot, Result: res, Op1: val})
	default:
		b.fail(unsupported("unary operator %q", n.Op))
	}
	return res
}

func (b *Builder) buildIncDec(n *ast.IncDecExpr) *Value {
	old := b.buildExpr(n.Operand)
	one := b.module.Values.InternInt(1, old.Type)
	updated := b.newResult(old.Type)
	op := OpAdd
	if !n.Inc {
		op = OpSub
	}
	b.emit(&Instruction{Op: op, Result: updated, Op1: old, Op2: one})
	b.storeLValue(n.Operand, updated)
	if n.Prefix {
		return updated
	}
	return old
}

func (b *Builder) buildAssign(n *ast.AssignExpr) *Value {
	switch n.Type().(type) {
	case types.Structure, types.Array:
		// spec.md §9: "Structure assignment and array initialisation
		// are stubs" — no member-wise/element-wise copy exists, so
		// this fails fatally instead of emitting a single-word move
		// that would silently copy a handle rather than the value.
		b.fail(unsupported("structure/array assignment"))
		return b.module.Values.InternInt(0, n.Type())
	}
	val := b.buildExpr(n.Value)
	if n.Op != "" {
		cur := b.buildExpr(n.Target)
		combined := b.newResult(n.Type())
		b.emit(&Instruction{Op: arithOpcode(n.Op), Result: combined, Op1: cur, Op2: val})
		val = combined
	}
	b.storeLValue(n.Target, val)
	return val
}

// storeLValue writes val into the storage target names. Plain
// identifiers reuse their own Value as the Move destination (this
// language's non-SSA locals are mutable in place); subscript/member
// targets compute an address and emit a memory store.
func (b *Builder) storeLValue(target ast.Expr, val *Value) {
	switch t := target.(type) {
	case *ast.Ident:
		if v, ok := b.resolveIdent(t.Name); ok {
			b.emit(&Instruction{Op: OpMove, Result: v, Op1: val})
			return
		}
		b.fail(unreachable("assignment to unbound identifier %q", t.Name))
	case *ast.SubscriptExpr:
		addr := b.lowerElementAddr(t)
		b.emit(&Instruction{Op: OpStoreOff, Op1: addr, Op2: val, Disp: 0})
	case *ast.MemberExpr:
		addr, off := b.lowerMemberAddr(t)
		b.emit(&Instruction{Op: OpStoreOff, Op1: addr, Op2: val, Disp: off})
	case *ast.UnaryExpr:
		if t.Op == ast.OpDeref {
			// spec.md §4.2/§9: indirection lvalue is marked
			// unimplemented and flagged fatally, not lowered.
			b.fail(unsupported("indirection lvalue (*ptr)"))
			return
		}
		b.fail(unsupported("assignment target %T", target))
	default:
		b.fail(unsupported("assignment target %T", target))
	}
}

// lowerElementAddr computes the byte address of arr[index], scaling the
// index by the element's word size.
func (b *Builder) lowerElementAddr(n *ast.SubscriptExpr) *Value {
	base := b.buildExpr(n.Array)
	index := b.buildExpr(n.Index)
	elemType := n.Type()
	scale := b.module.Values.InternInt(int64(elemType.SizeInWords()*types.WordSize), types.Int32)
	scaled := b.newResult(types.Int32)
	b.emit(&Instruction{Op: OpMul, Result: scaled, Op1: index, Op2: scale})
	addr := b.newResult(types.Pointer{Elem: elemType})
	b.emit(&Instruction{Op: OpAdd, Result: addr, Op1: base, Op2: scaled})
	return addr
}

// lowerMemberAddr computes the base address to load/store a structure
// member through, plus the member's fixed byte offset.
func (b *Builder) lowerMemberAddr(n *ast.MemberExpr) (*Value, int) {
	if n.Arrow {
		// spec.md §4.2/§9: arrow-member lvalue is marked unimplemented
		// and flagged fatally, not lowered.
		b.fail(unsupported("arrow-member lvalue (ptr->field)"))
		return b.module.Values.InternInt(0, types.Int32), 0
	}
	var base *Value
	var structType types.Type
	if id, ok := n.Object.(*ast.Ident); ok {
		if v, ok := b.resolveIdent(id.Name); ok {
			base = v
			structType = v.Type
		}
	} else {
		inner, off := b.lowerMemberAddrGeneric(n.Object)
		base = inner
		structType = n.Object.Type()
		_ = off
	}
	off := 0
	if st, ok := structType.(types.Structure); ok {
		if o, ok := st.MemberOffset(n.Field); ok {
			off = o
		} else {
			b.fail(unreachable("member %q not found on %s (should have been caught by semantic analysis)", n.Field, st.Name))
		}
	}
	return base, off
}

func (b *Builder) lowerMemberAddrGeneric(e ast.Expr) (*Value, int) {
	if m, ok := e.(*ast.MemberExpr); ok {
		return b.lowerMemberAddr(m)
	}
	return b.buildExpr(e), 0
}

func (b *Builder) buildCall(n *ast.CallExpr) *Value {
	args := make([]*Value, len(n.Args))
	for i, a := range n.Args {
		args[i] = b.buildExpr(a)
	}
	for _, a := range args {
		b.emit(&Instruction{Op: OpPush, Op1: a})
	}
	b.fn.NoteCall(len(args))

	var res *Value
	if !n.Type().IsVoid() {
		res = b.newResult(n.Type())
	}
	b.emit(&Instruction{Op: OpCall, Result: res, Callee: n.Callee.Name, Disp: len(args)})
	if res == nil {
		return b.module.Values.InternInt(0, types.VoidT)
	}
	return res
}

func (b *Builder) buildTernary(n *ast.TernaryExpr) *Value {
	cond := b.buildExpr(n.Cond)
	res := b.declareLocal(tempName(b), n.Type())

	thenBlock := b.fn.AddBlock(b.fn.NextLabel(LabelThen))
	elseBlock := b.fn.AddBlock(b.fn.NextLabel(LabelElse))
	endBlock := b.fn.AddBlock(b.fn.NextLabel(LabelEnd))

	condBlock := b.fn.Blocks[thenBlock.ID-1]
	b.block = condBlock
	b.emit(&Instruction{Op: OpBranchZero, Op1: cond, TargetIdx: elseBlock.ID})
	condBlock.Instructions[len(condBlock.Instructions)-1].Disp = thenBlock.ID

	b.block = thenBlock
	thenVal := b.buildExpr(n.Then)
	b.emit(&Instruction{Op: OpMove, Result: res, Op1: thenVal})
	b.emit(&Instruction{Op: OpGoto, TargetIdx: endBlock.ID})

	b.block = elseBlock
	elseVal := b.buildExpr(n.Else)
	b.emit(&Instruction{Op: OpMove, Result: res, Op1: elseVal})
	b.emit(&Instruction{Op: OpGoto, TargetIdx: endBlock.ID})

	b.block = endBlock
	return res
}

package parser

import (
	"strconv"

	"ducc/internal/ast"
	"ducc/token"
)

// Precedence levels for the Pratt expression parser, grounded on the
// teacher's internal/parser/parser_pratt.go precedence-climbing scheme,
// extended with the C operator set's full ladder down to the comma-free
// assignment level.
type precedence int

const (
	lowest precedence = iota
	assignPrec
	ternaryPrec
	logicalOrPrec
	logicalAndPrec
	bitOrPrec
	bitXorPrec
	bitAndPrec
	equalityPrec
	relationalPrec
	shiftPrec
	additivePrec
	multiplicativePrec
	unaryPrec
	postfixPrec
)

var binPrecedence = map[token.TokenType]precedence{
	token.OR_OR:   logicalOrPrec,
	token.AND_AND: logicalAndPrec,
	token.PIPE:    bitOrPrec,
	token.CARET:   bitXorPrec,
	token.AMP:     bitAndPrec,
	token.EQ:      equalityPrec,
	token.NOT_EQ:  equalityPrec,
	token.LT:      relationalPrec,
	token.LT_EQ:   relationalPrec,
	token.GT:      relationalPrec,
	token.GT_EQ:   relationalPrec,
	token.SHL:     shiftPrec,
	token.SHR:     shiftPrec,
	token.PLUS:    additivePrec,
	token.MINUS:   additivePrec,
	token.ASTERISK: multiplicativePrec,
	token.SLASH:   multiplicativePrec,
	token.PERCENT: multiplicativePrec,
}

var binOps = map[token.TokenType]ast.BinaryOp{
	token.OR_OR:    ast.OpLOr,
	token.AND_AND:  ast.OpLAnd,
	token.PIPE:     ast.OpBitOr,
	token.CARET:    ast.OpBitXor,
	token.AMP:      ast.OpBitAnd,
	token.EQ:       ast.OpEq,
	token.NOT_EQ:   ast.OpNe,
	token.LT:       ast.OpLt,
	token.LT_EQ:    ast.OpLe,
	token.GT:       ast.OpGt,
	token.GT_EQ:    ast.OpGe,
	token.SHL:      ast.OpShl,
	token.SHR:      ast.OpShr,
	token.PLUS:     ast.OpAdd,
	token.MINUS:    ast.OpSub,
	token.ASTERISK: ast.OpMul,
	token.SLASH:    ast.OpDiv,
	token.PERCENT:  ast.OpMod,
}

var compoundAssignOps = map[token.TokenType]ast.BinaryOp{
	token.PLUS_ASSIGN:    ast.OpAdd,
	token.MINUS_ASSIGN:   ast.OpSub,
	token.STAR_ASSIGN:    ast.OpMul,
	token.SLASH_ASSIGN:   ast.OpDiv,
	token.PERCENT_ASSIGN: ast.OpMod,
}

func (p *Parser) peekPrecedence() precedence {
	if pr, ok := binPrecedence[p.cur.Type]; ok {
		return pr
	}
	return lowest
}

// parseExpr parses an expression whose binary operators bind tighter
// than minPrec, implementing assignment (right-associative, lowest
// precedence above comma) and the ternary conditional ahead of the
// binary-operator climb.
func (p *Parser) parseExpr(minPrec precedence) ast.Expr {
	left := p.parseUnary()

	// assignment: only valid when left is an lvalue-shaped expression;
	// the semantic pass is responsible for rejecting non-lvalue targets.
	if minPrec <= assignPrec {
		if p.cur.Type == token.ASSIGN {
			pos := p.pos()
			p.next()
			val := p.parseExpr(assignPrec)
			return &ast.AssignExpr{Base: ast.Base{Position: pos}, Target: left, Value: val}
		}
		if op, ok := compoundAssignOps[p.cur.Type]; ok {
			pos := p.pos()
			p.next()
			val := p.parseExpr(assignPrec)
			return &ast.AssignExpr{Base: ast.Base{Position: pos}, Target: left, Op: op, Value: val}
		}
	}

	for {
		pr := p.peekPrecedence()
		if pr <= minPrec || pr == lowest {
			break
		}
		op := binOps[p.cur.Type]
		pos := p.pos()
		p.next()
		right := p.parseExpr(pr)
		left = &ast.BinaryExpr{Base: ast.Base{Position: pos}, Op: op, Left: left, Right: right}
	}

	if minPrec <= ternaryPrec && p.cur.Type == token.QUESTION {
		pos := p.pos()
		p.next()
		then := p.parseExpr(lowest)
		p.expect(token.COLON)
		els := p.parseExpr(ternaryPrec)
		return &ast.TernaryExpr{Base: ast.Base{Position: pos}, Cond: left, Then: then, Else: els}
	}

	return left
}

func (p *Parser) parseUnary() ast.Expr {
	pos := p.pos()
	switch p.cur.Type {
	case token.MINUS:
		p.next()
		return &ast.UnaryExpr{Base: ast.Base{Position: pos}, Op: ast.OpNeg, Operand: p.parseUnary()}
	case token.BANG:
		p.next()
		return &ast.UnaryExpr{Base: ast.Base{Position: pos}, Op: ast.OpNot, Operand: p.parseUnary()}
	case token.TILDE:
		p.next()
		return &ast.UnaryExpr{Base: ast.Base{Position: pos}, Op: ast.OpBitNot, Operand: p.parseUnary()}
	case token.AMP:
		p.next()
		return &ast.UnaryExpr{Base: ast.Base{Position: pos}, Op: ast.OpAddr, Operand: p.parseUnary()}
	case token.ASTERISK:
		p.next()
		return &ast.UnaryExpr{Base: ast.Base{Position: pos}, Op: ast.OpDeref, Operand: p.parseUnary()}
	case token.PLUS_PLUS:
		p.next()
		return &ast.IncDecExpr{Base: ast.Base{Position: pos}, Operand: p.parseUnary(), Inc: true, Prefix: true}
	case token.MINUS_MINUS:
		p.next()
		return &ast.IncDecExpr{Base: ast.Base{Position: pos}, Operand: p.parseUnary(), Inc: false, Prefix: true}
	case token.LPAREN:
		if p.isCastAhead() {
			p.next()
			t := p.parseType()
			p.expect(token.RPAREN)
			return &ast.CastExpr{Base: ast.Base{Position: pos}, TargetType: t, Operand: p.parseUnary()}
		}
	}
	return p.parsePostfix(p.parsePrimary())
}

// isCastAhead reports whether the parenthesized expression starting at
// the current '(' token is actually a cast, i.e. its contents are a
// type name rather than an expression.
func (p *Parser) isCastAhead() bool {
	switch p.peek.Type {
	case token.KW_INT, token.KW_LONG, token.KW_FLOAT, token.KW_CHAR, token.KW_VOID:
		return true
	case token.IDENT:
		return p.reg.IsStructure(p.peek.Literal)
	}
	return false
}

func (p *Parser) parsePostfix(e ast.Expr) ast.Expr {
	for {
		pos := p.pos()
		switch p.cur.Type {
		case token.LBRACKET:
			p.next()
			idx := p.parseExpr(lowest)
			p.expect(token.RBRACKET)
			e = &ast.SubscriptExpr{Base: ast.Base{Position: pos}, Array: e, Index: idx}
		case token.DOT:
			p.next()
			name := p.expect(token.IDENT).Literal
			e = &ast.MemberExpr{Base: ast.Base{Position: pos}, Object: e, Field: name}
		case token.ARROW:
			p.next()
			name := p.expect(token.IDENT).Literal
			e = &ast.MemberExpr{Base: ast.Base{Position: pos}, Object: e, Field: name, Arrow: true}
		case token.LPAREN:
			if id, ok := e.(*ast.Ident); ok {
				p.next()
				var args []ast.Expr
				for p.cur.Type != token.RPAREN {
					args = append(args, p.parseExpr(assignPrec+1))
					if p.cur.Type == token.COMMA {
						p.next()
					}
				}
				p.expect(token.RPAREN)
				id.Kind = ast.IdentFunction
				e = &ast.CallExpr{Base: ast.Base{Position: pos}, Callee: id, Args: args}
			} else {
				return e
			}
		case token.PLUS_PLUS:
			p.next()
			e = &ast.IncDecExpr{Base: ast.Base{Position: pos}, Operand: e, Inc: true, Prefix: false}
		case token.MINUS_MINUS:
			p.next()
			e = &ast.IncDecExpr{Base: ast.Base{Position: pos}, Operand: e, Inc: false, Prefix: false}
		default:
			return e
		}
	}
}

func (p *Parser) parsePrimary() ast.Expr {
	pos := p.pos()
	switch p.cur.Type {
	case token.INT_LIT:
		v, _ := strconv.ParseInt(p.cur.Literal, 10, 64)
		lit := &ast.IntLit{Base: ast.Base{Position: pos}, Value: v}
		p.next()
		return lit
	case token.FLOAT_LIT:
		v, _ := strconv.ParseFloat(p.cur.Literal, 64)
		lit := &ast.FloatLit{Base: ast.Base{Position: pos}, Value: v}
		p.next()
		return lit
	case token.CHAR_LIT:
		r := []rune(p.cur.Literal)
		var v rune
		if len(r) > 0 {
			v = r[0]
		}
		lit := &ast.CharLit{Base: ast.Base{Position: pos}, Value: v}
		p.next()
		return lit
	case token.STRING_LIT:
		lit := &ast.StringLit{Base: ast.Base{Position: pos}, Value: p.cur.Literal}
		p.next()
		return lit
	case token.IDENT:
		id := &ast.Ident{Base: ast.Base{Position: pos}, Name: p.cur.Literal}
		p.next()
		return id
	case token.LPAREN:
		p.next()
		e := p.parseExpr(lowest)
		p.expect(token.RPAREN)
		return e
	default:
		p.errorf("unexpected token %s in expression", p.cur.Type)
		p.next()
		return &ast.IntLit{Base: ast.Base{Position: pos}, Value: 0}
	}
}

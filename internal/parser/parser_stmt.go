package parser

import (
	"ducc/internal/ast"
	"ducc/token"
)

func (p *Parser) parseCompoundStmt() *ast.CompoundStmt {
	pos := p.pos()
	p.expect(token.LBRACE)
	c := &ast.CompoundStmt{Base: ast.Base{Position: pos}}
	for p.cur.Type != token.RBRACE && p.cur.Type != token.EOF {
		c.Stmts = append(c.Stmts, p.parseStmt())
	}
	p.expect(token.RBRACE)
	return c
}

func (p *Parser) parseStmt() ast.Stmt {
	switch p.cur.Type {
	case token.LBRACE:
		return p.parseCompoundStmt()
	case token.KW_IF:
		return p.parseIfStmt()
	case token.KW_WHILE:
		return p.parseWhileStmt()
	case token.KW_DO:
		return p.parseDoWhileStmt()
	case token.KW_FOR:
		return p.parseForStmt()
	case token.KW_SWITCH:
		return p.parseSwitchStmt()
	case token.KW_BREAK:
		pos := p.pos()
		p.next()
		p.expect(token.SEMICOLON)
		return &ast.BreakStmt{Base: ast.Base{Position: pos}}
	case token.KW_CONTINUE:
		pos := p.pos()
		p.next()
		p.expect(token.SEMICOLON)
		return &ast.ContinueStmt{Base: ast.Base{Position: pos}}
	case token.KW_RETURN:
		return p.parseReturnStmt()
	default:
		if p.isTypeStart() {
			return p.parseVarDeclStmt()
		}
		return p.parseExprStmt()
	}
}

func (p *Parser) parseIfStmt() ast.Stmt {
	pos := p.pos()
	p.next()
	p.expect(token.LPAREN)
	cond := p.parseExpr(lowest)
	p.expect(token.RPAREN)
	then := p.parseStmt()
	var els ast.Stmt
	if p.cur.Type == token.KW_ELSE {
		p.next()
		els = p.parseStmt()
	}
	return &ast.IfStmt{Base: ast.Base{Position: pos}, Cond: cond, Then: then, Else: els}
}

func (p *Parser) parseWhileStmt() ast.Stmt {
	pos := p.pos()
	p.next()
	p.expect(token.LPAREN)
	cond := p.parseExpr(lowest)
	p.expect(token.RPAREN)
	body := p.parseStmt()
	return &ast.WhileStmt{Base: ast.Base{Position: pos}, Cond: cond, Body: body}
}

func (p *Parser) parseDoWhileStmt() ast.Stmt {
	pos := p.pos()
	p.next()
	body := p.parseStmt()
	p.expect(token.KW_WHILE)
	p.expect(token.LPAREN)
	cond := p.parseExpr(lowest)
	p.expect(token.RPAREN)
	p.expect(token.SEMICOLON)
	return &ast.DoWhileStmt{Base: ast.Base{Position: pos}, Body: body, Cond: cond}
}

func (p *Parser) parseForStmt() ast.Stmt {
	pos := p.pos()
	p.next()
	p.expect(token.LPAREN)

	var init ast.Stmt
	if p.cur.Type != token.SEMICOLON {
		if p.isTypeStart() {
			init = p.parseVarDeclStmt()
		} else {
			init = p.parseExprStmt()
		}
	} else {
		p.expect(token.SEMICOLON)
	}

	var cond ast.Expr
	if p.cur.Type != token.SEMICOLON {
		cond = p.parseExpr(lowest)
	}
	p.expect(token.SEMICOLON)

	var post ast.Expr
	if p.cur.Type != token.RPAREN {
		post = p.parseExpr(lowest)
	}
	p.expect(token.RPAREN)

	body := p.parseStmt()
	return &ast.ForStmt{Base: ast.Base{Position: pos}, Init: init, Cond: cond, Post: post, Body: body}
}

func (p *Parser) parseSwitchStmt() ast.Stmt {
	pos := p.pos()
	p.next()
	p.expect(token.LPAREN)
	tag := p.parseExpr(lowest)
	p.expect(token.RPAREN)
	p.expect(token.LBRACE)

	s := &ast.SwitchStmt{Base: ast.Base{Position: pos}, Tag: tag}
	for p.cur.Type != token.RBRACE && p.cur.Type != token.EOF {
		cpos := p.pos()
		c := &ast.CaseClause{Base: ast.Base{Position: cpos}}
		if p.cur.Type == token.KW_DEFAULT {
			p.next()
			c.IsDefault = true
		} else {
			p.expect(token.KW_CASE)
			c.Value = p.parseExpr(lowest)
		}
		p.expect(token.COLON)
		for p.cur.Type != token.KW_CASE && p.cur.Type != token.KW_DEFAULT && p.cur.Type != token.RBRACE {
			c.Stmts = append(c.Stmts, p.parseStmt())
		}
		s.Cases = append(s.Cases, c)
	}
	p.expect(token.RBRACE)
	return s
}

func (p *Parser) parseReturnStmt() ast.Stmt {
	pos := p.pos()
	p.next()
	var val ast.Expr
	if p.cur.Type != token.SEMICOLON {
		val = p.parseExpr(lowest)
	}
	p.expect(token.SEMICOLON)
	return &ast.ReturnStmt{Base: ast.Base{Position: pos}, Value: val}
}

func (p *Parser) parseVarDeclStmt() ast.Stmt {
	pos := p.pos()
	t := p.parseType()
	name := p.expect(token.IDENT).Literal
	var init ast.Expr
	if p.cur.Type == token.ASSIGN {
		p.next()
		init = p.parseExpr(lowest)
	}
	p.expect(token.SEMICOLON)
	return &ast.VarDeclStmt{Base: ast.Base{Position: pos}, Name: name, Type: t, Init: init}
}

func (p *Parser) parseExprStmt() ast.Stmt {
	pos := p.pos()
	e := p.parseExpr(lowest)
	p.expect(token.SEMICOLON)
	return &ast.ExprStmt{Base: ast.Base{Position: pos}, Expr: e}
}

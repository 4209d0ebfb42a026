// Package parser builds an internal/ast tree from a token stream,
// grounded on the teacher's internal/parser/parser_pratt.go precedence
// climbing and parser_function.go/parser_struct.go declaration parsing,
// generalized from Kanso's contract-only grammar to full C-like
// declarations, statements, and expressions.
package parser

import (
	"fmt"

	"github.com/pkg/errors"

	"ducc/internal/ast"
	"ducc/internal/lexer"
	"ducc/internal/types"
	"ducc/token"
)

// Parser is a recursive-descent parser with a Pratt expression core.
type Parser struct {
	l    *lexer.Lexer
	reg  *types.Registry
	cur  token.Token
	peek token.Token
	errs []error
}

// New creates a Parser over source, resolving type names against reg.
func New(source string, reg *types.Registry) *Parser {
	p := &Parser{l: lexer.New(source), reg: reg}
	p.next()
	p.next()
	return p
}

func (p *Parser) next() {
	p.cur = p.peek
	p.peek = p.l.NextToken()
}

func (p *Parser) pos() ast.Position { return ast.Position{Line: p.cur.Line, Column: p.cur.Column} }

func (p *Parser) errorf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	p.errs = append(p.errs, errors.Errorf("%d:%d: %s", p.cur.Line, p.cur.Column, msg))
}

func (p *Parser) expect(t token.TokenType) token.Token {
	tok := p.cur
	if p.cur.Type != t {
		p.errorf("expected %s, got %s (%q)", t, p.cur.Type, p.cur.Literal)
	}
	p.next()
	return tok
}

// Errors returns every parse error accumulated so far.
func (p *Parser) Errors() []error { return p.errs }

// ParseProgram parses a full translation unit.
func (p *Parser) ParseProgram() (*ast.Program, error) {
	prog := &ast.Program{}
	for p.cur.Type != token.EOF {
		d := p.parseTopLevelDecl()
		if d != nil {
			prog.Decls = append(prog.Decls, d)
		} else {
			p.next()
		}
	}
	if len(p.errs) > 0 {
		return prog, errors.Wrap(p.errs[0], "parse error")
	}
	return prog, nil
}

func (p *Parser) parseTopLevelDecl() ast.Decl {
	switch p.cur.Type {
	case token.KW_STRUCT:
		return p.parseStructDecl()
	case token.KW_EXTERN:
		p.next()
		return p.parseFunctionOrGlobal(true)
	default:
		if p.isTypeStart() {
			return p.parseFunctionOrGlobal(false)
		}
		p.errorf("unexpected token %s at top level", p.cur.Type)
		return nil
	}
}

func (p *Parser) isTypeStart() bool {
	switch p.cur.Type {
	case token.KW_INT, token.KW_LONG, token.KW_FLOAT, token.KW_CHAR, token.KW_VOID:
		return true
	case token.IDENT:
		return p.reg.IsStructure(p.cur.Literal)
	}
	return false
}

// parseType consumes a base type name plus any trailing '*' pointer
// suffixes. Array suffixes ('[' N ']') are not parsed here or anywhere
// else in a declaration.
func (p *Parser) parseType() types.Type {
	var t types.Type
	switch p.cur.Type {
	case token.KW_INT:
		t = types.Int32
	case token.KW_LONG:
		t = types.Int64
	case token.KW_FLOAT:
		t = types.Float64
	case token.KW_CHAR:
		t = types.Char
	case token.KW_VOID:
		t = types.VoidT
	case token.IDENT:
		if st, ok := p.reg.Lookup(p.cur.Literal); ok {
			t = st
		} else {
			p.errorf("unknown type name %q", p.cur.Literal)
			t = types.VoidT
		}
	default:
		p.errorf("expected a type, got %s", p.cur.Type)
		t = types.VoidT
	}
	p.next()
	for p.cur.Type == token.ASTERISK {
		p.next()
		t = types.Pointer{Elem: t}
	}
	return t
}

func (p *Parser) parseStructDecl() ast.Decl {
	pos := p.pos()
	p.next() // 'struct'
	name := p.expect(token.IDENT).Literal
	p.expect(token.LBRACE)
	var members []types.Member
	for p.cur.Type != token.RBRACE && p.cur.Type != token.EOF {
		mt := p.parseType()
		mname := p.expect(token.IDENT).Literal
		members = append(members, types.Member{Name: mname, Type: mt})
		p.expect(token.SEMICOLON)
	}
	p.expect(token.RBRACE)
	p.expect(token.SEMICOLON)
	p.reg.DeclareStructure(name, members)
	return &ast.StructDecl{Base: ast.Base{Position: pos}, Name: name, Members: members}
}

func (p *Parser) parseFunctionOrGlobal(extern bool) ast.Decl {
	pos := p.pos()
	retType := p.parseType()
	name := p.expect(token.IDENT).Literal

	if p.cur.Type == token.LPAREN {
		p.next()
		var params []ast.Param
		for p.cur.Type != token.RPAREN {
			pt := p.parseType()
			pname := p.expect(token.IDENT).Literal
			params = append(params, ast.Param{Name: pname, Type: pt})
			if p.cur.Type == token.COMMA {
				p.next()
			}
		}
		p.expect(token.RPAREN)

		if extern || p.cur.Type == token.SEMICOLON {
			p.expect(token.SEMICOLON)
			return &ast.ExternDecl{Name: name, Params: params, ReturnType: retType}
		}

		body := p.parseCompoundStmt()
		fn := &ast.FunctionDecl{Name: name, Params: params, ReturnType: retType, Body: body}
		fn.Position = pos
		return fn
	}

	// global variable
	var init ast.Expr
	if p.cur.Type == token.ASSIGN {
		p.next()
		init = p.parseExpr(lowest)
	}
	p.expect(token.SEMICOLON)
	return &ast.GlobalVarDecl{Name: name, Type: retType, Init: init}
}

package lsp

import (
	"fmt"

	"ducc/internal/ast"
)

// SemanticToken represents a single LSP semantic token entry
// Line and StartChar are 0-based positions
// TokenType is an index into the semanticTokenTypes array
// TokenModifiers is a bitmask based on semanticTokenModifiers
type SemanticToken struct {
	Line           uint32
	StartChar      uint32
	Length         uint32
	TokenType      int // index into semanticTokenTypes
	TokenModifiers int // bitmask
}

// collectSemanticTokens walks prog's declaration tree and emits one
// token per declaration name and per identifier/literal expression,
// generalized from the teacher's grammar-node-specific walk
// (walkModule/walkFunctionBlock/walkExpr) to a single recursive pass
// over ast.Node's Children(), since the C-like AST exposes that
// generic navigation surface instead of one struct shape per
// production.
func collectSemanticTokens(prog *ast.Program) []SemanticToken {
	if prog == nil {
		return nil
	}
	var tokens []SemanticToken
	for _, d := range prog.Decls {
		tokens = append(tokens, walkDecl(d)...)
	}
	return tokens
}

func walkDecl(d ast.Decl) []SemanticToken {
	var tokens []SemanticToken
	switch n := d.(type) {
	case *ast.FunctionDecl:
		tokens = append(tokens, declToken(n.Pos(), n.Name, "function", 1))
		if n.Body != nil {
			tokens = append(tokens, walkNode(n.Body)...)
		}
	case *ast.ExternDecl:
		tokens = append(tokens, declToken(n.Pos(), n.Name, "function", 0))
	case *ast.GlobalVarDecl:
		tokens = append(tokens, declToken(n.Pos(), n.Name, "variable", 1))
		if n.Init != nil {
			tokens = append(tokens, walkNode(n.Init)...)
		}
	case *ast.StructDecl:
		tokens = append(tokens, declToken(n.Pos(), n.Name, "type", 1))
	}
	return tokens
}

// walkNode recurses over the generic Node tree, emitting a token for
// every Ident and literal it finds along the way.
func walkNode(n ast.Node) []SemanticToken {
	if n == nil {
		return nil
	}
	var tokens []SemanticToken
	switch v := n.(type) {
	case *ast.Ident:
		tokens = append(tokens, identToken(v))
	case *ast.IntLit:
		tokens = append(tokens, numberToken(v.Pos(), fmt.Sprintf("%d", v.Value)))
	case *ast.FloatLit:
		tokens = append(tokens, numberToken(v.Pos(), fmt.Sprintf("%g", v.Value)))
	}
	for _, c := range n.Children() {
		tokens = append(tokens, walkNode(c)...)
	}
	return tokens
}

func identToken(id *ast.Ident) SemanticToken {
	switch id.Kind {
	case ast.IdentFunction:
		return declToken(id.Pos(), id.Name, "function", 0)
	case ast.IdentParam:
		return declToken(id.Pos(), id.Name, "parameter", 0)
	default:
		return declToken(id.Pos(), id.Name, "variable", 0)
	}
}

func numberToken(pos ast.Position, text string) SemanticToken {
	return declToken(pos, text, "number", 0)
}

func declToken(pos ast.Position, name, tokenType string, decl int) SemanticToken {
	return SemanticToken{
		Line:           uint32(pos.Line - 1),
		StartChar:      uint32(pos.Column - 1),
		Length:         uint32(len(name)),
		TokenType:      indexOf(tokenType, SemanticTokenTypes),
		TokenModifiers: decl << indexOf("declaration", SemanticTokenModifiers),
	}
}

// indexOf returns the index of a string in a list, or -1 if not found
func indexOf(target string, list []string) int {
	for i, v := range list {
		if v == target {
			return i
		}
	}
	return -1
}

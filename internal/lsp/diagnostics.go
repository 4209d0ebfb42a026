package lsp

import (
	protocol "github.com/tliron/glsp/protocol_3_16"

	"ducc/internal/ast"
	"ducc/internal/semantic"
)

// parseDiagnostic builds a single diagnostic for a parse failure. The
// hand-written recursive-descent parser (internal/parser) reports
// failures as plain errors with no attached position, unlike the
// teacher's participle-based parser.ParseError/ScanError pair, so the
// best this can do is anchor the message at the document's first line.
func parseDiagnostic(err error) []protocol.Diagnostic {
	return []protocol.Diagnostic{{
		Range:    zeroRange(),
		Severity: ptrSeverity(protocol.DiagnosticSeverityError),
		Source:   ptrString("ducc-parser"),
		Message:  err.Error(),
	}}
}

// semanticDiagnostics converts internal/semantic's positioned errors
// into LSP diagnostics, one per error.
func semanticDiagnostics(errs []error) []protocol.Diagnostic {
	diagnostics := make([]protocol.Diagnostic, 0, len(errs))
	for _, err := range errs {
		se, ok := err.(*semantic.Error)
		if !ok {
			diagnostics = append(diagnostics, protocol.Diagnostic{
				Range:    zeroRange(),
				Severity: ptrSeverity(protocol.DiagnosticSeverityError),
				Source:   ptrString("ducc-semantic"),
				Message:  err.Error(),
			})
			continue
		}
		diagnostics = append(diagnostics, protocol.Diagnostic{
			Range:    posRange(se.Pos),
			Severity: ptrSeverity(protocol.DiagnosticSeverityError),
			Source:   ptrString("ducc-semantic"),
			Message:  se.Message,
		})
	}
	return diagnostics
}

// buildDiagnostics converts internal/ir's builder errors, which carry
// no source position (the builder trusts the already-checked AST and
// only fails on internal invariants), into diagnostics anchored at the
// document start.
func buildDiagnostics(errs []error) []protocol.Diagnostic {
	diagnostics := make([]protocol.Diagnostic, 0, len(errs))
	for _, err := range errs {
		diagnostics = append(diagnostics, protocol.Diagnostic{
			Range:    zeroRange(),
			Severity: ptrSeverity(protocol.DiagnosticSeverityError),
			Source:   ptrString("ducc-ir"),
			Message:  err.Error(),
		})
	}
	return diagnostics
}

func posRange(pos ast.Position) protocol.Range {
	line := uint32(0)
	if pos.Line > 0 {
		line = uint32(pos.Line - 1)
	}
	col := uint32(0)
	if pos.Column > 0 {
		col = uint32(pos.Column - 1)
	}
	return protocol.Range{
		Start: protocol.Position{Line: line, Character: col},
		End:   protocol.Position{Line: line, Character: col + 1},
	}
}

func zeroRange() protocol.Range {
	return protocol.Range{
		Start: protocol.Position{Line: 0, Character: 0},
		End:   protocol.Position{Line: 0, Character: 1},
	}
}

func ptrSeverity(s protocol.DiagnosticSeverity) *protocol.DiagnosticSeverity {
	return &s
}

func ptrString(s string) *string {
	return &s
}

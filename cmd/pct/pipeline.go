package main

import (
	"fmt"
	"os"

	"goa.design/pct/ast"
	"goa.design/pct/diag"
	"goa.design/pct/lexer"
	"goa.design/pct/lower"
	"goa.design/pct/semantic"
	"goa.design/pct/sexpr"
)

// frontEnd runs source text through the lexer, reader and lowerer. Lowering
// warnings are returned alongside the module; any failure is fatal to the
// compilation.
func frontEnd(source string) (*ast.Module, []diag.Diagnostic, error) {
	toks, err := lexer.Tokenize(source)
	if err != nil {
		return nil, nil, fmt.Errorf("lexer error: %w", err)
	}
	exprs, err := sexpr.Read(toks)
	if err != nil {
		return nil, nil, fmt.Errorf("parse error: %w", err)
	}
	if len(exprs) == 0 {
		return nil, nil, fmt.Errorf("no top-level expressions found")
	}
	lw := lower.New()
	m, err := lw.Module(exprs[0])
	if err != nil {
		return nil, nil, fmt.Errorf("lowering error: %w", err)
	}
	return m, lw.Diagnostics, nil
}

// analyze runs the semantic passes and renders all diagnostics to stderr.
// It reports the number of errors and warnings found.
func analyze(source string, m *ast.Module, lowering []diag.Diagnostic) (errs, warns int) {
	diags := append(append([]diag.Diagnostic{}, lowering...), semantic.Analyze(m)...)
	if len(diags) > 0 {
		fmt.Fprint(os.Stderr, diag.Format(source, diags))
	}
	return diag.CountErrors(diags), diag.CountWarnings(diags)
}

func readSource(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %q: %w", path, err)
	}
	return string(data), nil
}

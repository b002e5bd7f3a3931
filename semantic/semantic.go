// Package semantic runs the analysis passes over a lowered module: name
// resolution, effect checking and totality checking. Passes collect
// diagnostics without halting; callers decide whether errors abort code
// generation.
package semantic

import (
	"goa.design/pct/ast"
	"goa.design/pct/diag"
)

// Analyze runs every pass in order (resolve, effects, totality) and returns
// the combined diagnostics.
func Analyze(m *ast.Module) []diag.Diagnostic {
	var diags []diag.Diagnostic
	diags = append(diags, ResolveNames(m)...)
	diags = append(diags, CheckEffects(m)...)
	diags = append(diags, CheckTotality(m)...)
	return diags
}

package semantic

import (
	"goa.design/pct/ast"
	"goa.design/pct/diag"
)

// CheckTotality inspects every match inside functions marked :total true.
// A match without a catch-all arm (wildcard or lone variable) must pair an
// ok-tagged arm with at least one non-ok constructor or keyword arm; this
// heuristic catches the common "forgot the error branch" mistake without a
// full coverage solver. The pass only ever warns.
func CheckTotality(m *ast.Module) []diag.Diagnostic {
	var diags []diag.Diagnostic
	for _, fn := range m.Functions {
		if !fn.Total {
			continue
		}
		diags = append(diags, checkExprTotality(fn.Body, fn.Name)...)
	}
	return diags
}

func checkExprTotality(e ast.Expr, fnName string) []diag.Diagnostic {
	var diags []diag.Diagnostic
	switch ex := e.(type) {
	case *ast.Match:
		hasCatchAll := false
		for _, arm := range ex.Arms {
			if isCatchAll(arm.Pattern) {
				hasCatchAll = true
				break
			}
		}
		if !hasCatchAll {
			var tags []string
			for _, arm := range ex.Arms {
				if tag, ok := patternTag(arm.Pattern); ok {
					tags = append(tags, tag)
				}
			}
			hasOk := false
			hasNonOk := false
			for _, tag := range tags {
				if tag == "ok" {
					hasOk = true
				} else {
					hasNonOk = true
				}
			}
			if !hasOk || !hasNonOk {
				span := ex.Span
				diags = append(diags, diag.Warningf(&span,
					"match in '%s' may not be exhaustive: matched %v", fnName, tags))
			}
		}
		for _, arm := range ex.Arms {
			diags = append(diags, checkExprTotality(arm.Body, fnName)...)
		}
	case *ast.Let:
		for _, b := range ex.Bindings {
			diags = append(diags, checkExprTotality(b.Value, fnName)...)
		}
		diags = append(diags, checkExprTotality(ex.Body, fnName)...)
	case *ast.IfExpr:
		diags = append(diags, checkExprTotality(ex.Cond, fnName)...)
		diags = append(diags, checkExprTotality(ex.Then, fnName)...)
		diags = append(diags, checkExprTotality(ex.Else, fnName)...)
	case *ast.Call:
		for _, arg := range ex.Args {
			diags = append(diags, checkExprTotality(arg, fnName)...)
		}
	case *ast.OkExpr:
		diags = append(diags, checkExprTotality(ex.Value, fnName)...)
	case *ast.ErrExpr:
		diags = append(diags, checkExprTotality(ex.Payload, fnName)...)
	case *ast.FieldAccess:
		diags = append(diags, checkExprTotality(ex.Base, fnName)...)
	case *ast.MapLit:
		for _, entry := range ex.Entries {
			diags = append(diags, checkExprTotality(entry.Value, fnName)...)
		}
	}
	return diags
}

func isCatchAll(p ast.Pattern) bool {
	switch p.(type) {
	case *ast.WildcardPat, *ast.VarPat:
		return true
	}
	return false
}

func patternTag(p ast.Pattern) (string, bool) {
	switch pt := p.(type) {
	case *ast.ConstructorPat:
		return pt.Name, true
	case *ast.KeywordPat:
		return pt.Name, true
	}
	return "", false
}

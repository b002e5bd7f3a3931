package semantic

import (
	"sort"

	"goa.design/pct/ast"
	"goa.design/pct/diag"
)

// effectUse is a single (kind, target) pair used by a body.
type effectUse struct {
	kind   ast.EffectKind
	target string
}

// CheckEffects compares each function's declared effects against the effects
// inferred from its body. Reads are inferred from calls to query/get/lookup
// whose first argument references a store; writes from any call whose callee
// ends in '!' with a store reference first argument. Sends effects are
// declared but not yet inferred from call patterns; inferSends is the hook
// for when they are.
func CheckEffects(m *ast.Module) []diag.Diagnostic {
	var diags []diag.Diagnostic

	sets := make(map[string]map[effectUse]bool, len(m.EffectSets))
	for _, es := range m.EffectSets {
		set := make(map[effectUse]bool, len(es.Effects))
		for _, eff := range es.Effects {
			set[effectUse{kind: eff.Kind, target: eff.Target}] = true
		}
		sets[es.Name] = set
	}

	for _, fn := range m.Functions {
		allowed := make(map[effectUse]bool)
		for _, name := range fn.Effects {
			for use := range sets[name] {
				allowed[use] = true
			}
		}

		used := make(map[effectUse]bool)
		collectUsedEffects(fn.Body, used)
		inferSends(fn.Body, used)

		// Report in a deterministic order.
		for _, use := range sortedUses(used) {
			if !allowed[use] {
				span := fn.Span
				diags = append(diags, diag.Errorf(&span,
					"function '%s' performs %s on '%s' but does not declare that effect",
					fn.Name, use.kind, use.target))
			}
		}
	}
	return diags
}

func collectUsedEffects(e ast.Expr, used map[effectUse]bool) {
	switch ex := e.(type) {
	case *ast.Call:
		switch {
		case ex.Callee == "query" || ex.Callee == "get" || ex.Callee == "lookup":
			if target, ok := firstRefArg(ex.Args); ok {
				used[effectUse{kind: ast.Reads, target: target}] = true
			}
		case len(ex.Callee) > 0 && ex.Callee[len(ex.Callee)-1] == '!':
			if target, ok := firstRefArg(ex.Args); ok {
				used[effectUse{kind: ast.Writes, target: target}] = true
			}
		}
		for _, arg := range ex.Args {
			collectUsedEffects(arg, used)
		}
	case *ast.Let:
		for _, b := range ex.Bindings {
			collectUsedEffects(b.Value, used)
		}
		collectUsedEffects(ex.Body, used)
	case *ast.Match:
		collectUsedEffects(ex.Scrutinee, used)
		for _, arm := range ex.Arms {
			collectUsedEffects(arm.Body, used)
		}
	case *ast.IfExpr:
		collectUsedEffects(ex.Cond, used)
		collectUsedEffects(ex.Then, used)
		collectUsedEffects(ex.Else, used)
	case *ast.FieldAccess:
		collectUsedEffects(ex.Base, used)
	case *ast.OkExpr:
		collectUsedEffects(ex.Value, used)
	case *ast.ErrExpr:
		collectUsedEffects(ex.Payload, used)
	case *ast.MapLit:
		for _, entry := range ex.Entries {
			collectUsedEffects(entry.Value, used)
		}
	}
}

// inferSends is the placeholder for Sends inference. No call pattern is
// recognized yet; the pass accepts declared-but-unused Sends effects.
func inferSends(ast.Expr, map[effectUse]bool) {}

func firstRefArg(args []ast.Expr) (string, bool) {
	if len(args) == 0 {
		return "", false
	}
	ref, ok := args[0].(*ast.Ref)
	if !ok {
		return "", false
	}
	return ref.Name, true
}

func sortedUses(used map[effectUse]bool) []effectUse {
	uses := make([]effectUse, 0, len(used))
	for use := range used {
		uses = append(uses, use)
	}
	sort.Slice(uses, func(i, j int) bool {
		if uses[i].target != uses[j].target {
			return uses[i].target < uses[j].target
		}
		return uses[i].kind < uses[j].kind
	})
	return uses
}

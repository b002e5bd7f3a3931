package semantic

import (
	"goa.design/pct/ast"
	"goa.design/pct/diag"
	"goa.design/pct/token"
)

// builtinTypes is the fixed set of type names the language provides.
var builtinTypes = map[string]bool{
	"UUID":            true,
	"String":          true,
	"Int":             true,
	"Bool":            true,
	"Unit":            true,
	"ValidationError": true,
}

// SymbolTable indexes the module's declarations by name.
type SymbolTable struct {
	Types      map[string]*ast.TypeDef
	EffectSets map[string]*ast.EffectSetDef
	Functions  map[string]*ast.FnDef
	Stores     map[string]bool
}

// BuildSymbolTable registers every declaration of the module. Store names are
// the targets referenced by any effect.
func BuildSymbolTable(m *ast.Module) *SymbolTable {
	st := &SymbolTable{
		Types:      make(map[string]*ast.TypeDef),
		EffectSets: make(map[string]*ast.EffectSetDef),
		Functions:  make(map[string]*ast.FnDef),
		Stores:     make(map[string]bool),
	}
	for _, td := range m.Types {
		st.Types[td.Name] = td
	}
	for _, es := range m.EffectSets {
		st.EffectSets[es.Name] = es
		for _, eff := range es.Effects {
			st.Stores[eff.Target] = true
		}
	}
	for _, fn := range m.Functions {
		st.Functions[fn.Name] = fn
	}
	return st
}

// ResolveNames checks every function's effect-set references (errors), type
// references in signatures (warnings) and body references against the lexical
// scope (warnings). The language is deliberately permissive pending a full
// type checker, so unresolved expression references never abort compilation.
func ResolveNames(m *ast.Module) []diag.Diagnostic {
	var diags []diag.Diagnostic
	st := BuildSymbolTable(m)

	diags = append(diags, checkDuplicates(m)...)

	for _, fn := range m.Functions {
		hasOk := false
		for _, v := range fn.Returns.Variants {
			if v.Ok {
				hasOk = true
			}
		}
		if !hasOk {
			span := fn.Returns.Span
			diags = append(diags, diag.Warningf(&span,
				"function '%s' declares no ok variant in its return union", fn.Name))
		}
		for _, effName := range fn.Effects {
			if _, ok := st.EffectSets[effName]; !ok {
				span := fn.Span
				diags = append(diags, diag.Errorf(&span,
					"function '%s' references unknown effect set '%s'", fn.Name, effName))
			}
		}

		for _, p := range fn.Params {
			diags = append(diags, checkTypeRef(p.Type, st, fn.Name)...)
		}
		for _, v := range fn.Returns.Variants {
			if v.Ok {
				diags = append(diags, checkTypeRef(v.Type, st, fn.Name)...)
			} else {
				diags = append(diags, checkTypeRef(v.Payload, st, fn.Name)...)
			}
		}

		scope := make(map[string]bool)
		for _, p := range fn.Params {
			scope[p.Name] = true
		}
		diags = append(diags, checkExprRefs(fn.Body, st, scope, fn.Name)...)
	}
	return diags
}

// checkDuplicates reports duplicate declaration names and duplicate fields
// within a type. Duplicates never abort lowering; they surface as warnings.
func checkDuplicates(m *ast.Module) []diag.Diagnostic {
	var diags []diag.Diagnostic
	report := func(kind, name string, span token.Span) {
		diags = append(diags, diag.Warningf(&span, "duplicate %s '%s'", kind, name))
	}

	seenTypes := make(map[string]bool)
	for _, td := range m.Types {
		if seenTypes[td.Name] {
			report("type", td.Name, td.Span)
		}
		seenTypes[td.Name] = true

		seenFields := make(map[string]bool)
		for _, f := range td.Fields {
			if seenFields[f.Name] {
				report("field", td.Name+"."+f.Name, f.Span)
			}
			seenFields[f.Name] = true
		}
	}
	seenSets := make(map[string]bool)
	for _, es := range m.EffectSets {
		if seenSets[es.Name] {
			report("effect set", es.Name, es.Span)
		}
		seenSets[es.Name] = true
	}
	seenFns := make(map[string]bool)
	for _, fn := range m.Functions {
		if seenFns[fn.Name] {
			report("function", fn.Name, fn.Span)
		}
		seenFns[fn.Name] = true
	}
	return diags
}

func checkTypeRef(t ast.TypeExpr, st *SymbolTable, context string) []diag.Diagnostic {
	var diags []diag.Diagnostic
	switch tt := t.(type) {
	case *ast.NamedType:
		if !builtinTypes[tt.Name] {
			if _, ok := st.Types[tt.Name]; !ok {
				diags = append(diags, diag.Warningf(nil,
					"in '%s': type '%s' is not defined in this module", context, tt.Name))
			}
		}
	case *ast.MapType:
		for _, f := range tt.Fields {
			diags = append(diags, checkTypeRef(f.Type, st, context)...)
		}
	case *ast.ListType:
		diags = append(diags, checkTypeRef(tt.Elem, st, context)...)
	case *ast.UnionType:
		for _, v := range tt.Variants {
			if v.Ok {
				diags = append(diags, checkTypeRef(v.Type, st, context)...)
			} else {
				diags = append(diags, checkTypeRef(v.Payload, st, context)...)
			}
		}
	case *ast.EnumType:
	}
	return diags
}

// checkExprRefs walks e with a lexical scope. Let bindings extend the scope
// left to right; each match arm sees pattern bindings in its own cloned scope
// so siblings never observe one another's variables.
func checkExprRefs(e ast.Expr, st *SymbolTable, scope map[string]bool, context string) []diag.Diagnostic {
	var diags []diag.Diagnostic
	switch ex := e.(type) {
	case *ast.Let:
		for _, b := range ex.Bindings {
			diags = append(diags, checkExprRefs(b.Value, st, scope, context)...)
			scope[b.Name] = true
		}
		diags = append(diags, checkExprRefs(ex.Body, st, scope, context)...)
	case *ast.Match:
		diags = append(diags, checkExprRefs(ex.Scrutinee, st, scope, context)...)
		for _, arm := range ex.Arms {
			armScope := make(map[string]bool, len(scope))
			for k := range scope {
				armScope[k] = true
			}
			collectPatternBindings(arm.Pattern, armScope)
			diags = append(diags, checkExprRefs(arm.Body, st, armScope, context)...)
		}
	case *ast.IfExpr:
		diags = append(diags, checkExprRefs(ex.Cond, st, scope, context)...)
		diags = append(diags, checkExprRefs(ex.Then, st, scope, context)...)
		diags = append(diags, checkExprRefs(ex.Else, st, scope, context)...)
	case *ast.Call:
		for _, arg := range ex.Args {
			diags = append(diags, checkExprRefs(arg, st, scope, context)...)
		}
	case *ast.FieldAccess:
		diags = append(diags, checkExprRefs(ex.Base, st, scope, context)...)
	case *ast.OkExpr:
		diags = append(diags, checkExprRefs(ex.Value, st, scope, context)...)
	case *ast.ErrExpr:
		diags = append(diags, checkExprRefs(ex.Payload, st, scope, context)...)
	case *ast.MapLit:
		for _, entry := range ex.Entries {
			diags = append(diags, checkExprRefs(entry.Value, st, scope, context)...)
		}
	case *ast.Ref:
		if !scope[ex.Name] && !isResolvableName(ex.Name, st) {
			span := ex.Span
			diags = append(diags, diag.Warningf(&span,
				"in '%s': unresolved reference '%s'", context, ex.Name))
		}
	}
	return diags
}

// isResolvableName accepts module declarations, store names and a small set
// of ambient names the evaluator provides.
func isResolvableName(name string, st *SymbolTable) bool {
	if st.Stores[name] {
		return true
	}
	if _, ok := st.Types[name]; ok {
		return true
	}
	if _, ok := st.Functions[name]; ok {
		return true
	}
	return builtinTypes[name]
}

func collectPatternBindings(p ast.Pattern, scope map[string]bool) {
	switch pt := p.(type) {
	case *ast.VarPat:
		scope[pt.Name] = true
	case *ast.ConstructorPat:
		for _, arg := range pt.Args {
			collectPatternBindings(arg, scope)
		}
	}
}

package codegen

import (
	"fmt"
	"strings"

	"goa.design/pct/ast"
	"goa.design/pct/codegen/naming"
)

// RuntimeGenerator emits code built on the shared goa.design/pct/runtime
// package: generic stores derived from effect sets, input records for
// Map-typed parameters, and constructors that mint generated identifiers.
type RuntimeGenerator struct{}

// NewRuntimeGenerator returns the runtime-aware generator.
func NewRuntimeGenerator() *RuntimeGenerator { return &RuntimeGenerator{} }

// Generate renders the whole module.
func (g *RuntimeGenerator) Generate(m *ast.Module) string {
	e := &emitter{}
	header(e, m)
	e.line("")
	e.line("import (")
	e.indent++
	e.line(`"fmt"`)
	e.line("")
	e.line(`"goa.design/pct/runtime"`)
	e.indent--
	e.line(")")

	for _, td := range m.Types {
		e.line("")
		g.typeDef(e, td)
	}
	for _, fn := range m.Functions {
		g.inputStruct(e, fn)
	}
	for _, fn := range m.Functions {
		e.line("")
		g.resultUnion(e, fn)
	}
	for _, fn := range m.Functions {
		e.line("")
		g.function(e, fn, m)
	}
	return e.String()
}

func (g *RuntimeGenerator) typeDef(e *emitter, td *ast.TypeDef) {
	if len(td.Invariants) > 0 {
		e.linef("// %s", td.Name)
		e.line("//")
		e.line("// Invariants:")
		for _, inv := range td.Invariants {
			e.linef("//   - %s", inv.Raw)
		}
	}
	e.linef("type %s struct {", td.Name)
	e.indent++
	for _, f := range td.Fields {
		e.linef("%s %s `json:%q`", naming.ToPascal(f.Name), goType(f.Type, "runtime."), naming.ToSnake(f.Name))
	}
	e.indent--
	e.line("}")

	hasID := false
	for _, f := range td.Fields {
		if f.Name == "id" {
			hasID = true
		}
	}
	if hasID {
		e.line("")
		e.linef("// ID implements runtime.HasID.")
		e.linef("func (x %s) ID() string { return x.Id }", td.Name)

		var unique []*ast.FieldDef
		for _, f := range td.Fields {
			if f.UniqueWithin != "" {
				unique = append(unique, f)
			}
		}
		e.line("")
		e.line("// UniqueFields implements runtime.HasUniqueFields.")
		e.linef("func (x %s) UniqueFields() []runtime.UniqueField {", td.Name)
		e.indent++
		if len(unique) == 0 {
			e.line("return nil")
		} else {
			parts := make([]string, len(unique))
			for i, f := range unique {
				value := "x." + naming.ToPascal(f.Name)
				if goType(f.Type, "runtime.") != "string" {
					value = fmt.Sprintf("fmt.Sprint(%s)", value)
				}
				parts[i] = fmt.Sprintf("{Name: %q, Value: %s}", f.Name, value)
			}
			e.linef("return []runtime.UniqueField{%s}", strings.Join(parts, ", "))
		}
		e.indent--
		e.line("}")
	}

	// Validate on instances.
	e.line("")
	e.line("// Validate checks the declared field constraints.")
	e.linef("func (x %s) Validate() []runtime.ValidationError {", td.Name)
	e.indent++
	e.line("var errs []runtime.ValidationError")
	for _, f := range td.Fields {
		g.lenChecks(e, "x."+naming.ToPascal(f.Name), f)
	}
	e.line("return errs")
	e.indent--
	e.line("}")

	// ValidateInput mirrors Validate over the create-input record, skipping
	// generated fields.
	inputName := "Create" + td.Name + "Input"
	var nonGenerated []*ast.FieldDef
	for _, f := range td.Fields {
		if !f.Generated {
			nonGenerated = append(nonGenerated, f)
		}
	}
	if len(nonGenerated) > 0 {
		e.line("")
		e.linef("// Validate%sInput checks the declared constraints on a create input.", td.Name)
		e.linef("func Validate%sInput(input %s) []runtime.ValidationError {", td.Name, inputName)
		e.indent++
		e.line("var errs []runtime.ValidationError")
		for _, f := range nonGenerated {
			g.lenChecks(e, "input."+naming.ToPascal(f.Name), f)
		}
		e.line("return errs")
		e.indent--
		e.line("}")
	}

	// FromInput constructor; generated fields receive defaults and UUID
	// fields a freshly minted identifier.
	e.line("")
	e.linef("// %sFromInput builds a %s from a create input, populating generated fields.", td.Name, td.Name)
	e.linef("func %sFromInput(input %s) %s {", td.Name, inputName, td.Name)
	e.indent++
	e.linef("return %s{", td.Name)
	e.indent++
	for _, f := range td.Fields {
		field := naming.ToPascal(f.Name)
		if f.Generated {
			if nt, ok := f.Type.(*ast.NamedType); ok && nt.Name == "UUID" {
				e.linef("%s: runtime.NewID(),", field)
			} else {
				e.linef("// %s left at its zero value", field)
			}
			continue
		}
		e.linef("%s: input.%s,", field, field)
	}
	e.indent--
	e.line("}")
	e.indent--
	e.line("}")
}

func (g *RuntimeGenerator) lenChecks(e *emitter, expr string, f *ast.FieldDef) {
	if f.MinLen != nil {
		e.linef("if len(%s) < %d { errs = append(errs, runtime.ValidationError{Field: %q, Message: \"must be at least %d characters\"}) }",
			expr, *f.MinLen, f.Name, *f.MinLen)
	}
	if f.MaxLen != nil {
		e.linef("if len(%s) > %d { errs = append(errs, runtime.ValidationError{Field: %q, Message: \"must be at most %d characters\"}) }",
			expr, *f.MaxLen, f.Name, *f.MaxLen)
	}
}

// inputStruct emits one public record per Map-typed parameter.
func (g *RuntimeGenerator) inputStruct(e *emitter, fn *ast.FnDef) {
	for _, p := range fn.Params {
		mt, ok := p.Type.(*ast.MapType)
		if !ok {
			continue
		}
		e.line("")
		e.linef("// %s is the decoded payload of %s.", inputStructName(fn), fn.Name)
		e.linef("type %s struct {", inputStructName(fn))
		e.indent++
		for _, f := range mt.Fields {
			e.linef("%s %s `json:%q`", naming.ToPascal(f.Name), goType(f.Type, "runtime."), naming.ToSnake(f.Name))
		}
		e.indent--
		e.line("}")
	}
}

func (g *RuntimeGenerator) resultUnion(e *emitter, fn *ast.FnDef) {
	name := resultName(fn)
	if fn.Total {
		e.line("// Total: this function handles all cases exhaustively")
	}
	e.linef("// %s is the result union of %s.", name, fn.Name)
	e.linef("type %s interface {", name)
	e.indent++
	e.line("// HTTPStatus returns the HTTP status mapped to the variant.")
	e.line("HTTPStatus() int")
	e.line("fmt.Stringer")
	e.linef("is%s()", name)
	e.indent--
	e.line("}")

	base := Generator{}
	for _, v := range fn.Returns.Variants {
		e.line("")
		g.runtimeVariant(e, &base, fn, v)
	}
}

// runtimeVariant emits one variant struct; map payload fields resolve their
// types against the function params, so an identifier bound from a raw UUID
// parameter surfaces as a string.
func (g *RuntimeGenerator) runtimeVariant(e *emitter, base *Generator, fn *ast.FnDef, v *ast.Variant) {
	if mt, ok := v.Payload.(*ast.MapType); ok && !v.Ok && !ast.IsUnit(v.Payload) {
		name := variantName(fn, v)
		status := httpStatus(v)
		e.linef("// %s is the %q variant (HTTP %d).", name, v.Tag, status)
		e.linef("type %s struct {", name)
		e.indent++
		for _, f := range mt.Fields {
			e.linef("%s %s", naming.ToPascal(f.Name), g.resolvePayloadFieldType(fn, f))
		}
		e.indent--
		e.line("}")
		rn := resultName(fn)
		e.line("")
		e.linef("func (%s) is%s() {}", name, rn)
		e.linef("func (%s) HTTPStatus() int { return %d }", name, status)
		e.linef("func (%s) String() string { return \"Error: %s\" }", name, v.Tag)
		return
	}
	base.variantStruct(e, fn, v, "runtime.")
}

// resolvePayloadFieldType resolves a payload field whose declared type names
// a variable rather than a type: built-in type names map directly, then a
// name matching a parameter takes that parameter's type (raw UUID params are
// strings), otherwise the declared expression is rendered as is. Fields of
// module types are not consulted.
func (g *RuntimeGenerator) resolvePayloadFieldType(fn *ast.FnDef, f ast.MapTypeField) string {
	if nt, ok := f.Type.(*ast.NamedType); ok {
		switch nt.Name {
		case "UUID", "String":
			return "string"
		case "Int":
			return "int64"
		case "Bool":
			return "bool"
		}
		for _, p := range fn.Params {
			if p.Name == nt.Name {
				if pn, ok := p.Type.(*ast.NamedType); ok && pn.Name == "UUID" {
					return "string"
				}
				return goType(p.Type, "runtime.")
			}
		}
	}
	return goType(f.Type, "runtime.")
}

func (g *RuntimeGenerator) function(e *emitter, fn *ast.FnDef, m *ast.Module) {
	fnDocComment(e, fn, m)

	stores := storeDeps(fn, m)
	storeParams := make(map[string]string, len(stores))
	var params []string
	for _, dep := range stores {
		name := "store"
		if len(stores) > 1 {
			name = naming.ToCamel(dep.typeName) + "Store"
		}
		storeParams[dep.typeName] = name
		// Any Writes effect promotes the dependency from the read-only
		// contract to the full store.
		contract := "runtime.ReadStore"
		if dep.writes {
			contract = "runtime.Store"
		}
		params = append(params, fmt.Sprintf("%s %s[%s]", name, contract, dep.typeName))
	}
	for _, p := range fn.Params {
		params = append(params, fmt.Sprintf("%s %s", naming.ToSnake(p.Name), g.paramType(fn, p)))
	}

	e.linef("func %s(%s) %s {", naming.ToPascal(fn.Name), strings.Join(params, ", "), resultName(fn))
	e.indent++
	fx := newFnCtx(e, fn, m, &v2Target{}, storeParams)
	fx.emitBody(fn.Body)
	e.indent--
	e.line("}")
}

// paramType maps a parameter type: Map params use the generated input record
// and UUID params arrive as raw strings validated at the boundary.
func (g *RuntimeGenerator) paramType(fn *ast.FnDef, p *ast.ParamDef) string {
	switch tt := p.Type.(type) {
	case *ast.MapType:
		return inputStructName(fn)
	case *ast.NamedType:
		if tt.Name == "UUID" {
			return "string"
		}
	}
	return goType(p.Type, "runtime.")
}

// storeDep is one store dependency derived from a function's effect sets.
type storeDep struct {
	typeName string
	writes   bool
}

// storeDeps collects the deduplicated store dependencies of fn. Sends
// effects do not map to stores. Any Writes effect marks the dependency
// writable.
func storeDeps(fn *ast.FnDef, m *ast.Module) []storeDep {
	var deps []storeDep
	for _, effName := range fn.Effects {
		for _, es := range m.EffectSets {
			if es.Name != effName {
				continue
			}
			for _, eff := range es.Effects {
				if eff.Kind == ast.Sends {
					continue
				}
				typeName := naming.StoreType(eff.Target)
				writes := eff.Kind == ast.Writes
				found := false
				for i := range deps {
					if deps[i].typeName == typeName {
						deps[i].writes = deps[i].writes || writes
						found = true
					}
				}
				if !found {
					deps = append(deps, storeDep{typeName: typeName, writes: writes})
				}
			}
		}
	}
	return deps
}

// v2Target renders calls against the runtime package and generated
// constructors.
type v2Target struct{}

func (t *v2Target) errTagCheck(errVar, tag string) (string, bool) {
	if tag == "unique-violation" {
		return fmt.Sprintf("runtime.IsUniqueViolation(%s)", errVar), true
	}
	return fmt.Sprintf("%s != nil /* :%s */", errVar, tag), true
}

func (t *v2Target) renderCall(fx *fnCtx, callee string, args []ast.Expr) (string, callShape) {
	clean := strings.NewReplacer("?", "", "!", "").Replace(callee)
	switch clean {
	case "validate-uuid", "validate_uuid":
		return fmt.Sprintf("runtime.ValidateUUID(%s)", inlineArgs(fx, args)), shapeValueErr
	case "query", "get", "lookup":
		store := t.storeParam(fx, args)
		return fmt.Sprintf("%s.QueryByID(%s)", store, t.queryID(fx, args)), shapeValueOK
	case "insert":
		store := t.storeParam(fx, args)
		arg := ""
		if len(args) > 1 {
			arg = fx.inline(args[1])
		}
		return fmt.Sprintf("%s.Insert(%s)", store, arg), shapeValueErr
	case "build":
		if typeName, ok := firstRef(args); ok {
			arg := ""
			if len(args) > 1 {
				arg = fx.inline(args[1])
			}
			return fmt.Sprintf("%sFromInput(%s)", typeName, arg), shapeSingle
		}
	case "validate-against", "validate_against":
		if typeName, ok := firstRef(args); ok {
			arg := ""
			if len(args) > 1 {
				arg = fx.inline(args[1])
			}
			return fmt.Sprintf("Validate%sInput(%s)", typeName, arg), shapeSingle
		}
	case "non-empty", "non_empty":
		return fmt.Sprintf("runtime.NonEmpty(%s)", inlineArgs(fx, args)), shapeSingle
	}
	if strings.HasSuffix(callee, "!") {
		// Unrecognized mutation: treated as a store write on the target.
		if _, ok := firstRef(args); ok {
			store := t.storeParam(fx, args)
			arg := ""
			if len(args) > 1 {
				arg = fx.inline(args[1])
			}
			return fmt.Sprintf("%s.Insert(%s)", store, arg), shapeValueErr
		}
	}
	return fmt.Sprintf("%s(%s)", naming.ToSnake(clean), inlineArgs(fx, args)), shapeSingle
}

// storeParam resolves the store parameter name referenced by a call's first
// argument.
func (t *v2Target) storeParam(fx *fnCtx, args []ast.Expr) string {
	if target, ok := firstRef(args); ok {
		if name, ok := fx.stores[naming.StoreType(target)]; ok {
			return name
		}
	}
	return "store"
}

// queryID extracts the id value from a query's map argument:
// query(store, {id: v}) becomes store.QueryByID(v).
func (t *v2Target) queryID(fx *fnCtx, args []ast.Expr) string {
	if len(args) < 2 {
		return `""`
	}
	if ml, ok := args[1].(*ast.MapLit); ok {
		for _, entry := range ml.Entries {
			if entry.Key == "id" {
				return fx.inline(entry.Value)
			}
		}
	}
	return fx.inline(args[1])
}

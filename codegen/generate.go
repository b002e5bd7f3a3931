package codegen

import (
	"fmt"
	"strings"

	"goa.design/pct/ast"
	"goa.design/pct/codegen/naming"
)

// Generator is the self-contained generator: it emits annotated Go source
// modeling the module's types, effect contracts and result unions without
// depending on the shared runtime package.
type Generator struct{}

// NewGenerator returns the self-contained generator.
func NewGenerator() *Generator { return &Generator{} }

// Generate renders the whole module.
func (g *Generator) Generate(m *ast.Module) string {
	e := &emitter{}
	header(e, m)
	e.line("")
	e.line(`import "fmt"`)

	for _, td := range m.Types {
		e.line("")
		g.typeDef(e, td)
	}
	for _, es := range m.EffectSets {
		e.line("")
		g.effectInterface(e, es)
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

func (g *Generator) typeDef(e *emitter, td *ast.TypeDef) {
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
		var notes []string
		if f.Immutable {
			notes = append(notes, "immutable")
		}
		if f.Generated {
			notes = append(notes, "generated")
		}
		if f.MinLen != nil {
			notes = append(notes, fmt.Sprintf("min_len: %d", *f.MinLen))
		}
		if f.MaxLen != nil {
			notes = append(notes, fmt.Sprintf("max_len: %d", *f.MaxLen))
		}
		if f.Format != "" {
			notes = append(notes, "format: "+f.Format)
		}
		if f.UniqueWithin != "" {
			notes = append(notes, "unique_within: "+f.UniqueWithin)
		}
		if len(notes) > 0 {
			e.linef("// %s", strings.Join(notes, ", "))
		}
		e.linef("%s %s", naming.ToPascal(f.Name), goType(f.Type, ""))
	}
	e.indent--
	e.line("}")

	e.line("")
	e.line("// Validate checks the declared field constraints.")
	e.linef("func (x %s) Validate() []string {", td.Name)
	e.indent++
	e.line("var errs []string")
	for _, f := range td.Fields {
		field := naming.ToPascal(f.Name)
		if f.MinLen != nil {
			e.linef("if len(x.%s) < %d { errs = append(errs, \"%s must be at least %d characters\") }",
				field, *f.MinLen, f.Name, *f.MinLen)
		}
		if f.MaxLen != nil {
			e.linef("if len(x.%s) > %d { errs = append(errs, \"%s must be at most %d characters\") }",
				field, *f.MaxLen, f.Name, *f.MaxLen)
		}
	}
	e.line("return errs")
	e.indent--
	e.line("}")
}

// effectInterface emits one interface per effect set with one abstract
// operation per effect, keyed on the target name.
func (g *Generator) effectInterface(e *emitter, es *ast.EffectSetDef) {
	e.linef("// %s declares the effects of effect set %q: %s.",
		naming.ToPascal(es.Name), es.Name, effectDoc(es))
	e.linef("type %s interface {", naming.ToPascal(es.Name))
	e.indent++
	for _, eff := range es.Effects {
		target := naming.ToPascal(eff.Target)
		switch eff.Kind {
		case ast.Reads:
			e.linef("Query%s(query %sQuery) (%sItem, bool)", target, target, target)
		case ast.Writes:
			e.linef("Insert%s(item %sItem) (%sItem, error)", target, target, target)
		case ast.Sends:
			e.linef("Send%s(payload []byte)", target)
		}
	}
	e.indent--
	e.line("}")
}

// resultUnion emits the tagged result sum of a function: an interface with
// an HTTPStatus accessor and one variant struct per Ok/Err arm.
func (g *Generator) resultUnion(e *emitter, fn *ast.FnDef) {
	name := resultName(fn)
	if fn.Provenance != nil && fn.Provenance.Req != "" {
		e.linef("// Spec: %s", fn.Provenance.Req)
	}
	if fn.Total {
		e.line("// Total: this function handles all cases exhaustively")
	}
	if fn.LatencyBudget != nil {
		e.linef("// Latency budget: %s", fn.LatencyBudget)
	}
	if len(fn.CalledBy) > 0 {
		e.linef("// Called by: %s", strings.Join(fn.CalledBy, ", "))
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

	for _, v := range fn.Returns.Variants {
		e.line("")
		g.variantStruct(e, fn, v, "")
	}
}

// variantStruct emits one variant's struct, marker, HTTPStatus and String
// methods. qualifier prefixes runtime types for the runtime generator.
func (g *Generator) variantStruct(e *emitter, fn *ast.FnDef, v *ast.Variant, qualifier string) {
	name := variantName(fn, v)
	status := httpStatus(v)
	e.linef("// %s is the %q variant (HTTP %d).", name, v.VariantTag(), status)

	switch {
	case v.Ok:
		e.linef("type %s struct{ Value %s }", name, goType(v.Type, qualifier))
	case ast.IsUnit(v.Payload):
		e.linef("type %s struct{}", name)
	default:
		if mt, ok := v.Payload.(*ast.MapType); ok {
			e.linef("type %s struct {", name)
			e.indent++
			for _, f := range mt.Fields {
				e.linef("%s %s", naming.ToPascal(f.Name), g.payloadFieldType(fn, f, qualifier))
			}
			e.indent--
			e.line("}")
		} else {
			e.linef("type %s struct{ Value %s }", name, goType(v.Payload, qualifier))
		}
	}

	rn := resultName(fn)
	e.line("")
	e.linef("func (%s) is%s() {}", name, rn)
	e.linef("func (%s) HTTPStatus() int { return %d }", name, status)
	if v.Ok {
		e.linef("func (r %s) String() string { return fmt.Sprintf(\"Ok: %%v\", r.Value) }", name)
	} else if ast.IsUnit(v.Payload) {
		e.linef("func (%s) String() string { return \"Error: %s\" }", name, v.Tag)
	} else if _, ok := v.Payload.(*ast.MapType); ok {
		e.linef("func (%s) String() string { return \"Error: %s\" }", name, v.Tag)
	} else {
		e.linef("func (r %s) String() string { return fmt.Sprintf(\"Error(%s): %%v\", r.Value) }", name, v.Tag)
	}
}

// payloadFieldType resolves a map payload field's Go type. The
// self-contained generator renders the declared expression verbatim.
func (g *Generator) payloadFieldType(_ *ast.FnDef, f ast.MapTypeField, qualifier string) string {
	return goType(f.Type, qualifier)
}

func (g *Generator) function(e *emitter, fn *ast.FnDef, m *ast.Module) {
	fnDocComment(e, fn, m)

	var params []string
	if len(fn.Effects) > 0 {
		bounds := make([]string, len(fn.Effects))
		for i, name := range fn.Effects {
			bounds[i] = naming.ToPascal(name)
		}
		params = append(params, fmt.Sprintf("ctx interface{ %s }", strings.Join(bounds, "; ")))
	}
	for _, p := range fn.Params {
		params = append(params, fmt.Sprintf("%s %s", naming.ToSnake(p.Name), goType(p.Type, "")))
	}

	e.linef("func %s(%s) %s {", naming.ToPascal(fn.Name), strings.Join(params, ", "), resultName(fn))
	e.indent++
	fx := newFnCtx(e, fn, m, (*v1Target)(g), nil)
	fx.emitBody(fn.Body)
	e.indent--
	e.line("}")
}

// v1Target renders calls against the per-effect-set context interfaces.
type v1Target Generator

func (t *v1Target) errTagCheck(errVar, tag string) (string, bool) {
	return fmt.Sprintf("%s != nil /* :%s */", errVar, tag), false
}

func (t *v1Target) renderCall(fx *fnCtx, callee string, args []ast.Expr) (string, callShape) {
	switch {
	case callee == "query" || callee == "get" || callee == "lookup":
		if target, ok := firstRef(args); ok {
			return fmt.Sprintf("ctx.Query%s(%s)", naming.ToPascal(target), t.queryArg(fx, target, args)), shapeValueOK
		}
	case strings.HasSuffix(callee, "!"):
		if target, ok := firstRef(args); ok {
			arg := ""
			if len(args) > 1 {
				arg = fx.inline(args[1])
			}
			return fmt.Sprintf("ctx.Insert%s(%s)", naming.ToPascal(target), arg), shapeValueErr
		}
	case callee == "validate-uuid" || callee == "validate_uuid":
		return fmt.Sprintf("validate_uuid(%s)", inlineArgs(fx, args)), shapeValueErr
	}
	return fmt.Sprintf("%s(%s)", naming.ToSnake(callee), inlineArgs(fx, args)), shapeSingle
}

// queryArg renders the query map argument as the target's query struct.
func (t *v1Target) queryArg(fx *fnCtx, target string, args []ast.Expr) string {
	if len(args) < 2 {
		return ""
	}
	ml, ok := args[1].(*ast.MapLit)
	if !ok {
		return fx.inline(args[1])
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%sQuery{", naming.ToPascal(target))
	for i, entry := range ml.Entries {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s: %s", naming.ToPascal(entry.Key), fx.inline(entry.Value))
	}
	b.WriteString("}")
	return b.String()
}

func firstRef(args []ast.Expr) (string, bool) {
	if len(args) == 0 {
		return "", false
	}
	ref, ok := args[0].(*ast.Ref)
	if !ok {
		return "", false
	}
	return ref.Name, true
}

func inlineArgs(fx *fnCtx, args []ast.Expr) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = fx.inline(a)
	}
	return strings.Join(parts, ", ")
}

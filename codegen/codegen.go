// Package codegen emits Go source from a lowered module. Two generators
// share the expression translator: Generator produces self-contained
// annotated source modeling the module's types and result unions, and
// RuntimeGenerator produces runtime-aware code built on the shared
// goa.design/pct/runtime store contract. Both are single-pass string emitters
// and are deterministic: equal modules produce byte-identical output.
//
// Codegen performs no semantic checks; it assumes a module that passed the
// semantic passes.
package codegen

import (
	"fmt"
	"strings"

	"goa.design/pct/ast"
	"goa.design/pct/codegen/naming"
)

// emitter is a line-oriented writer parameterized by an indentation depth.
type emitter struct {
	out    strings.Builder
	indent int
}

func (e *emitter) line(s string) {
	if s == "" {
		e.out.WriteByte('\n')
		return
	}
	e.writeIndent()
	e.out.WriteString(s)
	e.out.WriteByte('\n')
}

func (e *emitter) linef(format string, args ...any) {
	e.line(fmt.Sprintf(format, args...))
}

func (e *emitter) writeIndent() {
	for i := 0; i < e.indent; i++ {
		e.out.WriteByte('\t')
	}
}

func (e *emitter) String() string { return e.out.String() }

// header emits the generated-file banner and package clause shared by both
// generators.
func header(e *emitter, m *ast.Module) {
	e.linef("// Code generated from pct module %s. DO NOT EDIT.", m.Name)
	meta := false
	comment := func(format string, args ...any) {
		if !meta {
			e.line("//")
			meta = true
		}
		e.linef(format, args...)
	}
	if m.Version != nil {
		comment("// Version: %d", *m.Version)
	}
	if m.Provenance != nil {
		if m.Provenance.Req != "" {
			comment("// Spec: %s", m.Provenance.Req)
		}
		if m.Provenance.Author != "" {
			comment("// Author: %s", m.Provenance.Author)
		}
	}
	e.linef("package %s", PackageName(m))
}

// PackageName derives the generated package name from the module name.
func PackageName(m *ast.Module) string {
	return naming.SanitizeToken(m.Name, "generated")
}

// resultName is the name of a function's result union type.
func resultName(fn *ast.FnDef) string {
	return naming.ToPascal(fn.Name) + "Result"
}

// variantName is the concrete type name of one result variant.
func variantName(fn *ast.FnDef, v *ast.Variant) string {
	if v.Ok {
		return naming.ToPascal(fn.Name) + "Ok"
	}
	return naming.ToPascal(fn.Name) + naming.ToPascal(v.Tag)
}

// inputStructName is the name of the input record generated for a function
// with a Map-typed parameter.
func inputStructName(fn *ast.FnDef) string {
	return naming.ToPascal(fn.Name) + "Input"
}

// httpStatus returns the declared status or the default (200 for Ok, 500 for
// Err).
func httpStatus(v *ast.Variant) int64 {
	if v.HTTPStatus != nil {
		return *v.HTTPStatus
	}
	if v.Ok {
		return 200
	}
	return 500
}

// goType renders a type expression as Go source. UUIDs travel as canonical
// strings; the runtime validates and mints them. qualifier prefixes
// runtime-provided type names ("runtime." in the runtime generator, empty in
// the self-contained one).
func goType(t ast.TypeExpr, qualifier string) string {
	switch tt := t.(type) {
	case *ast.NamedType:
		switch tt.Name {
		case "UUID", "String":
			return "string"
		case "Int":
			return "int64"
		case "Bool":
			return "bool"
		case "Unit":
			return "struct{}"
		case "ValidationError":
			return qualifier + "ValidationError"
		default:
			return tt.Name
		}
	case *ast.MapType:
		var b strings.Builder
		b.WriteString("struct{ ")
		for i, f := range tt.Fields {
			if i > 0 {
				b.WriteString("; ")
			}
			fmt.Fprintf(&b, "%s %s", naming.ToPascal(f.Name), goType(f.Type, qualifier))
		}
		b.WriteString(" }")
		return b.String()
	case *ast.ListType:
		return "[]" + goType(tt.Elem, qualifier)
	case *ast.UnionType:
		return "UnionType"
	case *ast.EnumType:
		return fmt.Sprintf("string /* enum: %s */", strings.Join(tt.Tags, " | "))
	}
	return "any"
}

// effectDoc renders an effect set's contents for doc comments, e.g.
// "Reads(user-store)".
func effectDoc(es *ast.EffectSetDef) string {
	parts := make([]string, len(es.Effects))
	for i, eff := range es.Effects {
		parts[i] = fmt.Sprintf("%s(%s)", eff.Kind, eff.Target)
	}
	return strings.Join(parts, ", ")
}

// fnEffectsDoc renders a function's declared effect sets with their
// contents, e.g. "db-read: [Reads(user-store)]; http-respond: [...]".
func fnEffectsDoc(fn *ast.FnDef, m *ast.Module) string {
	var parts []string
	for _, name := range fn.Effects {
		for _, es := range m.EffectSets {
			if es.Name == name {
				parts = append(parts, fmt.Sprintf("%s: [%s]", name, effectDoc(es)))
			}
		}
	}
	return strings.Join(parts, "; ")
}

// fnDocComment emits the shared provenance/metadata doc comment block above a
// generated function.
func fnDocComment(e *emitter, fn *ast.FnDef, m *ast.Module) {
	e.linef("// %s implements %s.", naming.ToPascal(fn.Name), fn.Name)
	if fn.Provenance != nil {
		if fn.Provenance.Req != "" {
			e.linef("// Spec: %s", fn.Provenance.Req)
		}
		if len(fn.Provenance.Tests) > 0 {
			e.linef("// Tests: %s", strings.Join(fn.Provenance.Tests, ", "))
		}
	}
	if len(fn.CalledBy) > 0 {
		e.linef("// Called by: %s", strings.Join(fn.CalledBy, ", "))
	}
	if fn.LatencyBudget != nil {
		e.linef("// Latency budget: %s", fn.LatencyBudget)
	}
	if fn.Total {
		e.line("// Total: handles all declared variants exhaustively")
	}
	if doc := fnEffectsDoc(fn, m); doc != "" {
		e.linef("// Effects: %s", doc)
	}
}

// findVariant returns the declared Err variant with the given tag.
func findVariant(fn *ast.FnDef, tag string) *ast.Variant {
	for _, v := range fn.Returns.Variants {
		if !v.Ok && v.Tag == tag {
			return v
		}
	}
	return nil
}

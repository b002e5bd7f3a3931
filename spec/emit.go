package spec

import (
	"fmt"
	"strings"
)

// Emitter renders a Doc as pct source text for exactly one module. The
// output is guaranteed to lex, read and lower through the front end; the
// generate command round-trips it before writing.
type Emitter struct {
	out     strings.Builder
	indent  int
	midline bool
}

// NewEmitter returns a fresh emitter.
func NewEmitter() *Emitter { return &Emitter{} }

// Emit renders the document.
func (e *Emitter) Emit(doc *Doc) string {
	e.emitModule(doc)
	return e.out.String()
}

// ModuleName derives the module name by slugifying the title.
func ModuleName(title string) string {
	slug := strings.ToLower(strings.ReplaceAll(title, " ", "-"))
	var b strings.Builder
	for _, r := range slug {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// StoreName lowercases the primary type's name into an effect target:
// "User" becomes "user-store".
func StoreName(doc *Doc) string {
	if len(doc.DomainTypes) == 0 {
		return "data-store"
	}
	return strings.ToLower(doc.DomainTypes[0].Name) + "-store"
}

func (e *Emitter) emitModule(doc *Doc) {
	moduleName := ModuleName(doc.Title)
	storeName := StoreName(doc)

	e.write(fmt.Sprintf("(module %s", moduleName))
	e.indent += 2
	e.newline()

	e.write(fmt.Sprintf(":provenance {req: %q, author: \"agent:pct-generate\", created: %q}",
		doc.SpecID, generatedAt))
	e.newline()
	e.write(":version 1")
	e.newline()

	for _, dt := range doc.DomainTypes {
		e.emitTypeDef(dt, storeName)
		e.newline()
	}

	e.emitEffectSets(doc, storeName)

	allTotal := doc.AllTotal()
	for i := range doc.Endpoints {
		e.emitEndpointFn(&doc.Endpoints[i], doc, storeName, allTotal)
	}

	e.indent -= 2
	e.append(")")
	e.newline()
}

// generatedAt is the fixed provenance timestamp; the compiler is a pure
// transformer and keeps its output reproducible.
const generatedAt = "2026-01-01T00:00:00Z"

func (e *Emitter) emitTypeDef(dt DomainType, storeName string) {
	e.newline()
	e.write(fmt.Sprintf("(type %s", dt.Name))
	e.indent += 2
	e.newline()

	if invariants := buildInvariants(dt.Fields); len(invariants) > 0 {
		e.write(fmt.Sprintf(":invariants [%s]", strings.Join(invariants, " ")))
		e.newline()
	}

	for i, f := range dt.Fields {
		e.emitField(f, storeName)
		if i+1 < len(dt.Fields) {
			e.newline()
		}
	}

	e.indent -= 2
	e.append(")")
}

func fieldTypeName(t FieldType) string {
	switch t.Kind {
	case StringField:
		return "String"
	case UuidField:
		return "UUID"
	case IntField:
		return "Int"
	case BoolField:
		return "Bool"
	default:
		if t.Raw == "" {
			return "String"
		}
		return t.Raw
	}
}

func (e *Emitter) emitField(f FieldSpec, storeName string) {
	parts := []string{fmt.Sprintf("(field %s %s", f.Name, fieldTypeName(f.Type))}
	if f.Immutable {
		parts = append(parts, ":immutable")
	}
	if f.AutoGenerated {
		parts = append(parts, ":generated")
	}
	if f.MinLen != nil {
		parts = append(parts, fmt.Sprintf(":min-len %d", *f.MinLen))
	}
	if f.MaxLen != nil {
		parts = append(parts, fmt.Sprintf(":max-len %d", *f.MaxLen))
	}
	if f.Format != "" {
		parts = append(parts, ":format :"+f.Format)
	}
	if f.Unique {
		parts = append(parts, ":unique-within "+storeName)
	}
	e.write(strings.Join(parts, " ") + ")")
}

// buildInvariants derives invariant clauses from field constraints: a
// non-zero minimum length yields a strlen predicate and an email format a
// regex match.
func buildInvariants(fields []FieldSpec) []string {
	var invariants []string
	for _, f := range fields {
		if f.MinLen != nil && *f.MinLen > 0 {
			invariants = append(invariants, fmt.Sprintf("(> (strlen %s) 0)", f.Name))
		}
		if f.Format == "email" {
			invariants = append(invariants, fmt.Sprintf(`(matches %s #/.+@.+\..+/)`, f.Name))
		}
	}
	return invariants
}

func (e *Emitter) emitEffectSets(doc *Doc, storeName string) {
	hasRead, hasWrite := false, false
	for _, ep := range doc.Endpoints {
		for _, c := range ep.Constraints {
			switch c.Kind {
			case ReadOnly:
				hasRead = true
			case Write:
				hasWrite = true
			}
		}
		// Infer from the input source when constraints are silent.
		if !ep.HasConstraint(ReadOnly) && !ep.HasConstraint(Write) {
			switch ep.Input.Source {
			case URLSource:
				hasRead = true
			case BodySource:
				hasWrite = true
			}
		}
	}

	if hasRead {
		e.newline()
		e.write(fmt.Sprintf("(effect-set db-read    [:reads  %s])", storeName))
	}
	if hasWrite {
		e.newline()
		e.write(fmt.Sprintf("(effect-set db-write   [:writes %s :reads %s])", storeName, storeName))
	}
	if hasRead || hasWrite {
		e.newline()
		e.write("(effect-set http-respond [:sends http-response])")
	}
}

func (e *Emitter) emitEndpointFn(ep *Endpoint, doc *Doc, storeName string, allTotal bool) {
	e.newline()
	e.newline()
	e.write(fmt.Sprintf("(fn %s", ep.Name))
	e.indent += 2
	e.newline()

	e.write(fmt.Sprintf(":provenance {req: %q}", doc.SpecID))
	e.newline()

	isReadOnly := ep.HasConstraint(ReadOnly) ||
		(ep.Input.Source == URLSource && !ep.HasConstraint(Write))
	isWrite := ep.HasConstraint(Write) || ep.Input.Source == BodySource

	effects := "[http-respond]"
	switch {
	case isWrite:
		effects = "[db-write http-respond]"
	case isReadOnly:
		effects = "[db-read http-respond]"
	}
	e.write(":effects    " + effects)
	e.newline()

	if allTotal {
		e.write(":total      true")
		e.newline()
	}
	for _, c := range ep.Constraints {
		if c.Kind == MaxResponseTime {
			e.write(":latency-budget " + c.Value)
			e.newline()
		}
	}
	for _, c := range ep.Constraints {
		if c.Kind == Idempotent {
			e.write(fmt.Sprintf(":idempotency-key (hash (. input %s))", c.Value))
			e.newline()
		}
	}
	if deps := doc.Traceability.KnownDependencies; len(deps) > 0 {
		handlers := make([]string, len(deps))
		for i, d := range deps {
			handlers[i] = d + "/handle-request"
		}
		e.write(fmt.Sprintf(":called-by  [%s]", strings.Join(handlers, " ")))
		e.newline()
	}

	primaryType := "Entity"
	if len(doc.DomainTypes) > 0 {
		primaryType = doc.DomainTypes[0].Name
	}

	if isReadOnly || ep.Input.Source == URLSource {
		e.emitURLParam()
	} else {
		e.emitBodyParam(doc)
	}
	e.newline()

	e.emitReturns(ep, primaryType)
	e.newline()

	e.newline()
	if isReadOnly || ep.Input.Source == URLSource {
		e.emitReadBody(storeName)
	} else {
		e.emitWriteBody(storeName, primaryType, ep)
	}

	e.indent -= 2
	e.append(")")
}

func (e *Emitter) emitURLParam() {
	e.write("(param id UUID")
	e.indent += 2
	e.newline()
	e.write(":source http-path-param")
	e.newline()
	e.write(":validated-at boundary)")
	e.indent -= 2
}

func (e *Emitter) emitBodyParam(doc *Doc) {
	fields := ""
	if len(doc.DomainTypes) > 0 {
		var parts []string
		for _, f := range doc.DomainTypes[0].Fields {
			if f.AutoGenerated || f.Immutable {
				continue
			}
			parts = append(parts, fmt.Sprintf(":%s %s", f.Name, fieldTypeName(f.Type)))
		}
		fields = strings.Join(parts, " ")
	}

	e.write(fmt.Sprintf("(param input {%s}", fields))
	e.indent += 2
	e.newline()
	e.write(":source http-body")
	e.newline()
	e.write(":content-type :json")
	e.newline()
	e.write(":validated-at boundary)")
	e.indent -= 2
}

func (e *Emitter) emitReturns(ep *Endpoint, primaryType string) {
	e.write("(returns (union")
	e.indent += 2

	for _, out := range ep.Outputs {
		e.newline()
		http := ""
		if out.HTTPStatus != nil {
			http = fmt.Sprintf(" :http %d", *out.HTTPStatus)
		}
		if out.IsSuccess {
			e.write(fmt.Sprintf("(ok   %s%s  :serialize :json)", primaryType, http))
		} else {
			tag := labelToTag(out.Label)
			e.write(fmt.Sprintf("(err  :%s %s%s)", tag, tagToPayload(tag), http))
		}
	}

	e.indent -= 2
	e.append("))")
}

// emitReadBody emits the canned read path: validate the id, then query.
func (e *Emitter) emitReadBody(storeName string) {
	e.write("(let [validated-id (validate-uuid id)]")
	e.indent += 2
	e.newline()
	e.write("(match validated-id")
	e.indent += 2
	e.newline()
	e.write("(err _)    (err :invalid-id {:id id})")
	e.newline()
	e.write(fmt.Sprintf("(ok  uuid) (match (query %s {:id uuid})", storeName))
	e.indent += 2
	e.newline()
	e.write("(none)   (err :not-found {:id uuid})")
	e.newline()
	e.write("(some u) (ok u))))")
	e.indent -= 6
}

// emitWriteBody emits the canned write path: validate the input, then
// insert.
func (e *Emitter) emitWriteBody(storeName, primaryType string, ep *Endpoint) {
	e.write(fmt.Sprintf("(let [errors (validate-against %s input)]", primaryType))
	e.indent += 2
	e.newline()
	e.write("(if (non-empty? errors)")
	e.indent += 2
	e.newline()
	e.write("(err :validation-failed errors)")
	e.newline()

	uniqueField := findUniqueField(ep)

	e.write(fmt.Sprintf("(match (insert! %s (build %s input))", storeName, primaryType))
	e.indent += 2
	e.newline()
	if uniqueField != "" {
		e.write(fmt.Sprintf("(err :unique-violation) (err :duplicate-%s {:%s (. input %s)})",
			uniqueField, uniqueField, uniqueField))
	} else {
		e.write("(err :unique-violation) (err :duplicate {:input input})")
	}
	e.newline()
	e.write("(ok entity)             (ok entity))))")
	e.indent -= 6
}

// findUniqueField derives the duplicate field from a "duplicate X" output
// label.
func findUniqueField(ep *Endpoint) string {
	for _, out := range ep.Outputs {
		if strings.HasPrefix(strings.ToLower(out.Label), "duplicate") {
			parts := strings.SplitN(out.Label, " ", 2)
			if len(parts) > 1 {
				return strings.ReplaceAll(strings.ToLower(parts[1]), " ", "-")
			}
		}
	}
	return ""
}

func labelToTag(label string) string {
	slug := strings.ToLower(strings.ReplaceAll(label, " ", "-"))
	var b strings.Builder
	for _, r := range slug {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func tagToPayload(tag string) string {
	switch {
	case strings.Contains(tag, "not-found") || strings.Contains(tag, "invalid"):
		return "{:id id}"
	case strings.Contains(tag, "duplicate"):
		field := strings.TrimPrefix(tag, "duplicate-")
		if field == tag {
			field = "field"
		}
		return fmt.Sprintf("{:%s (. input %s)}", field, field)
	case strings.Contains(tag, "validation"):
		return "(list ValidationError)"
	default:
		return "{}"
	}
}

// write appends indented text; the indent is applied only at the start of a
// line.
func (e *Emitter) write(s string) {
	if !e.midline {
		e.out.WriteString(strings.Repeat(" ", e.indent))
		e.midline = true
	}
	e.out.WriteString(s)
}

// append writes without indentation, for closing parens on the same line.
func (e *Emitter) append(s string) {
	e.midline = true
	e.out.WriteString(s)
}

func (e *Emitter) newline() {
	e.out.WriteByte('\n')
	e.midline = false
}

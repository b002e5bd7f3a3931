// Package ast defines the typed module representation produced by lowering.
// Every node carries the span of the form it was lowered from and is immutable
// once built: the semantic passes only read the tree and the generators only
// read the tree and emit text.
package ast

import (
	"fmt"

	"goa.design/pct/token"
)

type (
	// Module is a single top-level unit of the language; one file holds one
	// module.
	Module struct {
		Name          string
		Provenance    *Provenance
		Version       *int64
		ParentVersion *int64
		Delta         *Delta
		Types         []*TypeDef
		EffectSets    []*EffectSetDef
		Functions     []*FnDef
		// Extra holds unknown top-level keyword/value pairs, preserved
		// verbatim as meta values.
		Extra []Meta
		Span  token.Span
	}

	// Provenance links a module or function back to its specification
	// document, author and tests.
	Provenance struct {
		Req     string
		Author  string
		Created string
		Tests   []string
		Extra   []Meta
		Span    token.Span
	}

	// Delta records what changed between a module and its parent version.
	Delta struct {
		Operation   string
		Target      string
		Description string
		Span        token.Span
	}

	// TypeDef is a named record type with invariants.
	TypeDef struct {
		Name string
		// Invariants are preserved verbatim as canonical S-expression text.
		Invariants []Invariant
		Fields     []*FieldDef
		Extra      []Meta
		Span       token.Span
	}

	// Invariant is a predicate expression attached to a type, carried as text
	// to the generated artifacts.
	Invariant struct {
		Raw  string
		Span token.Span
	}

	// FieldDef is a single field of a type definition.
	FieldDef struct {
		Name         string
		Type         TypeExpr
		Immutable    bool
		Generated    bool
		MinLen       *int64
		MaxLen       *int64
		Format       string
		UniqueWithin string
		Extra        []Meta
		Span         token.Span
	}

	// EffectSetDef is a named bundle of effects that functions cite to
	// declare what they touch.
	EffectSetDef struct {
		Name    string
		Effects []Effect
		Span    token.Span
	}

	// Effect is a single (kind, target) pair.
	Effect struct {
		Kind   EffectKind
		Target string
	}

	// EffectKind is the kind of an effect.
	EffectKind int

	// FnDef is an effect-annotated function whose return type is a union of
	// success and error variants.
	FnDef struct {
		Name           string
		Provenance     *Provenance
		Effects        []string // names of effect sets
		Total          bool
		LatencyBudget  *Duration
		CalledBy       []string
		IdempotencyKey Expr
		Params         []*ParamDef
		Returns        *ReturnsDef
		Body           Expr
		Extra          []Meta
		Span           token.Span
	}

	// Duration is a duration literal value.
	Duration struct {
		Value int64
		Unit  token.DurationUnit
	}

	// ParamDef is a function parameter.
	ParamDef struct {
		Name        string
		Type        TypeExpr
		Source      string
		ContentType string
		ValidatedAt string
		Extra       []Meta
		Span        token.Span
	}

	// ReturnsDef is a function's declared return, a union of variants.
	ReturnsDef struct {
		Variants []*Variant
		Span     token.Span
	}

	// Variant is one arm of a result union: either Ok or Err.
	Variant struct {
		// Ok is true for the success variant; Err fields are zero then.
		Ok bool

		// Type is the success payload type (Ok variants).
		Type TypeExpr
		// Serialize is the optional serialization tag (Ok variants).
		Serialize string

		// Tag is the symbolic error name, e.g. "not-found" (Err variants).
		Tag string
		// Payload is the error payload type; Unit means no data.
		Payload TypeExpr

		// HTTPStatus is nil when not declared.
		HTTPStatus *int64
		Extra      []Meta
		Span       token.Span
	}

	// Meta is a preserved unknown keyword/value pair.
	Meta struct {
		Key   string
		Value MetaValue
	}
)

const (
	Reads EffectKind = iota
	Writes
	Sends
)

func (k EffectKind) String() string {
	switch k {
	case Reads:
		return "Reads"
	case Writes:
		return "Writes"
	case Sends:
		return "Sends"
	}
	return fmt.Sprintf("EffectKind(%d)", int(k))
}

func (d Duration) String() string { return fmt.Sprintf("%d%s", d.Value, d.Unit) }

// VariantTag returns "ok" for the success variant and the error tag
// otherwise.
func (v *Variant) VariantTag() string {
	if v.Ok {
		return "ok"
	}
	return v.Tag
}

// TypeExpr is the closed sum of type expressions.
type TypeExpr interface{ isTypeExpr() }

type (
	// NamedType references a built-in or module type by name.
	NamedType struct{ Name string }

	// MapType is an inline record: ordered (field name, type) pairs.
	MapType struct{ Fields []MapTypeField }

	// MapTypeField is one field of a MapType.
	MapTypeField struct {
		Name string
		Type TypeExpr
	}

	// ListType is a homogeneous list.
	ListType struct{ Elem TypeExpr }

	// UnionType is an inline union of variants.
	UnionType struct{ Variants []*Variant }

	// EnumType is a closed set of keyword tags.
	EnumType struct{ Tags []string }
)

func (*NamedType) isTypeExpr() {}
func (*MapType) isTypeExpr()   {}
func (*ListType) isTypeExpr()  {}
func (*UnionType) isTypeExpr() {}
func (*EnumType) isTypeExpr()  {}

// Unit is the conventional payload type of error variants without data.
func Unit() TypeExpr { return &NamedType{Name: "Unit"} }

// IsUnit reports whether t is the Unit named type.
func IsUnit(t TypeExpr) bool {
	n, ok := t.(*NamedType)
	return ok && n.Name == "Unit"
}

// Expr is the closed sum of body expressions. Every expression carries its
// source span.
type Expr interface {
	isExpr()
	ExprSpan() token.Span
}

type (
	// Ref is a symbol reference.
	Ref struct {
		Name string
		Span token.Span
	}

	// KeywordLit is a keyword literal.
	KeywordLit struct {
		Name string
		Span token.Span
	}

	// StringLit is a string literal.
	StringLit struct {
		Value string
		Span  token.Span
	}

	// IntLit is an integer literal.
	IntLit struct {
		Value int64
		Span  token.Span
	}

	// BoolLit is a boolean literal.
	BoolLit struct {
		Value bool
		Span  token.Span
	}

	// Let is "(let [name value ...] body)". Bindings extend scope left to
	// right.
	Let struct {
		Bindings []Binding
		Body     Expr
		Span     token.Span
	}

	// Binding is a single let binding.
	Binding struct {
		Name  string
		Value Expr
	}

	// Match is "(match scrutinee pattern body ...)".
	Match struct {
		Scrutinee Expr
		Arms      []*MatchArm
		Span      token.Span
	}

	// MatchArm pairs a pattern with its body.
	MatchArm struct {
		Pattern Pattern
		Body    Expr
		Span    token.Span
	}

	// IfExpr is "(if cond then else)".
	IfExpr struct {
		Cond Expr
		Then Expr
		Else Expr
		Span token.Span
	}

	// Call is "(callee args...)".
	Call struct {
		Callee string
		Args   []Expr
		Span   token.Span
	}

	// FieldAccess is "(. base field)".
	FieldAccess struct {
		Base  Expr
		Field string
		Span  token.Span
	}

	// OkExpr is "(ok value)".
	OkExpr struct {
		Value Expr
		Span  token.Span
	}

	// ErrExpr is "(err :tag payload)".
	ErrExpr struct {
		Tag     string
		Payload Expr
		Span    token.Span
	}

	// MapLit is "{:key value ...}" in expression position.
	MapLit struct {
		Entries []MapLitEntry
		Span    token.Span
	}

	// MapLitEntry is one key/value pair of a map literal.
	MapLitEntry struct {
		Key   string
		Value Expr
	}

	// WildcardExpr is "_" in expression position.
	WildcardExpr struct {
		Span token.Span
	}
)

func (e *Ref) isExpr()          {}
func (e *KeywordLit) isExpr()   {}
func (e *StringLit) isExpr()    {}
func (e *IntLit) isExpr()       {}
func (e *BoolLit) isExpr()      {}
func (e *Let) isExpr()          {}
func (e *Match) isExpr()        {}
func (e *IfExpr) isExpr()       {}
func (e *Call) isExpr()         {}
func (e *FieldAccess) isExpr()  {}
func (e *OkExpr) isExpr()       {}
func (e *ErrExpr) isExpr()      {}
func (e *MapLit) isExpr()       {}
func (e *WildcardExpr) isExpr() {}

func (e *Ref) ExprSpan() token.Span          { return e.Span }
func (e *KeywordLit) ExprSpan() token.Span   { return e.Span }
func (e *StringLit) ExprSpan() token.Span    { return e.Span }
func (e *IntLit) ExprSpan() token.Span       { return e.Span }
func (e *BoolLit) ExprSpan() token.Span      { return e.Span }
func (e *Let) ExprSpan() token.Span          { return e.Span }
func (e *Match) ExprSpan() token.Span        { return e.Span }
func (e *IfExpr) ExprSpan() token.Span       { return e.Span }
func (e *Call) ExprSpan() token.Span         { return e.Span }
func (e *FieldAccess) ExprSpan() token.Span  { return e.Span }
func (e *OkExpr) ExprSpan() token.Span       { return e.Span }
func (e *ErrExpr) ExprSpan() token.Span      { return e.Span }
func (e *MapLit) ExprSpan() token.Span       { return e.Span }
func (e *WildcardExpr) ExprSpan() token.Span { return e.Span }

// Pattern is the closed sum of match patterns.
type Pattern interface{ isPattern() }

type (
	// WildcardPat is "_".
	WildcardPat struct{ Span token.Span }

	// VarPat binds the scrutinee to a name.
	VarPat struct {
		Name string
		Span token.Span
	}

	// KeywordPat matches a keyword tag such as ":not-found".
	KeywordPat struct {
		Name string
		Span token.Span
	}

	// ConstructorPat matches "(ok x)", "(err tag)", "(some x)", "(none)" and
	// user constructors.
	ConstructorPat struct {
		Name string
		Args []Pattern
		Span token.Span
	}
)

func (*WildcardPat) isPattern()    {}
func (*VarPat) isPattern()         {}
func (*KeywordPat) isPattern()     {}
func (*ConstructorPat) isPattern() {}

// MetaValue is the catch-all value of preserved unknown metadata.
type MetaValue interface{ isMetaValue() }

type (
	// MetaString is a string meta value.
	MetaString struct{ Value string }
	// MetaInt is an integer meta value.
	MetaInt struct{ Value int64 }
	// MetaBool is a boolean meta value.
	MetaBool struct{ Value bool }
	// MetaSymbol is a symbol meta value.
	MetaSymbol struct{ Value string }
	// MetaKeyword is a keyword meta value.
	MetaKeyword struct{ Value string }
	// MetaDuration is a duration meta value.
	MetaDuration struct{ Value Duration }
	// MetaList is an ordered list of meta values.
	MetaList struct{ Items []MetaValue }
	// MetaMap is an ordered map of meta values.
	MetaMap struct{ Entries []Meta }
	// MetaExpr is a lowered expression meta value.
	MetaExpr struct{ Value Expr }
)

func (*MetaString) isMetaValue()   {}
func (*MetaInt) isMetaValue()      {}
func (*MetaBool) isMetaValue()     {}
func (*MetaSymbol) isMetaValue()   {}
func (*MetaKeyword) isMetaValue()  {}
func (*MetaDuration) isMetaValue() {}
func (*MetaList) isMetaValue()     {}
func (*MetaMap) isMetaValue()      {}
func (*MetaExpr) isMetaValue()     {}

// Package sexpr defines the generic S-expression concrete syntax tree read
// from the token stream, together with the canonical printer used to capture
// invariant expressions verbatim. The CST carries no semantic knowledge; it is
// just balanced structure with typed atoms.
package sexpr

import (
	"fmt"
	"strings"

	"goa.design/pct/token"
)

type (
	// Kind discriminates the CST node kinds.
	Kind int

	// SExpr is a CST node. Exactly one of the payload fields is meaningful
	// for a given Kind.
	SExpr struct {
		Kind Kind
		Span token.Span

		// List and Vector children, in source order.
		Items []*SExpr
		// Map entries, in source order. Duplicate keys are retained.
		Entries []Entry
		// Atom payload.
		Atom Atom
	}

	// Entry is a single key/value pair of a Map node.
	Entry struct {
		Key   *SExpr
		Value *SExpr
	}

	// AtomKind discriminates the scalar atom kinds.
	AtomKind int

	// Atom is the payload of an atom node.
	Atom struct {
		Kind AtomKind

		Text     string
		Int      int64
		Bool     bool
		Duration int64
		Unit     token.DurationUnit
	}
)

const (
	List Kind = iota
	Vector
	Map
	AtomNode
)

const (
	SymbolAtom AtomKind = iota
	KeywordAtom
	StringAtom
	IntAtom
	BoolAtom
	DurationAtom
	RegexAtom
)

// Symbol returns the symbol text and true when s is a symbol atom.
func (s *SExpr) Symbol() (string, bool) {
	if s.Kind == AtomNode && s.Atom.Kind == SymbolAtom {
		return s.Atom.Text, true
	}
	return "", false
}

// Keyword returns the keyword name (without colon) and true when s is a
// keyword atom.
func (s *SExpr) Keyword() (string, bool) {
	if s.Kind == AtomNode && s.Atom.Kind == KeywordAtom {
		return s.Atom.Text, true
	}
	return "", false
}

// StringValue returns the string value and true when s is a string atom.
func (s *SExpr) StringValue() (string, bool) {
	if s.Kind == AtomNode && s.Atom.Kind == StringAtom {
		return s.Atom.Text, true
	}
	return "", false
}

// Int returns the integer value and true when s is an integer atom.
func (s *SExpr) Int() (int64, bool) {
	if s.Kind == AtomNode && s.Atom.Kind == IntAtom {
		return s.Atom.Int, true
	}
	return 0, false
}

// Bool returns the boolean value and true when s is a boolean atom.
func (s *SExpr) Bool() (bool, bool) {
	if s.Kind == AtomNode && s.Atom.Kind == BoolAtom {
		return s.Atom.Bool, true
	}
	return false, false
}

// ListItems returns the children and true when s is a paren list.
func (s *SExpr) ListItems() ([]*SExpr, bool) {
	if s.Kind == List {
		return s.Items, true
	}
	return nil, false
}

// VectorItems returns the children and true when s is a square vector.
func (s *SExpr) VectorItems() ([]*SExpr, bool) {
	if s.Kind == Vector {
		return s.Items, true
	}
	return nil, false
}

// MapEntries returns the entries and true when s is a brace map.
func (s *SExpr) MapEntries() ([]Entry, bool) {
	if s.Kind == Map {
		return s.Entries, true
	}
	return nil, false
}

// Head returns the head symbol of a list node, or "" when s is not a list or
// its first child is not a symbol.
func (s *SExpr) Head() string {
	if items, ok := s.ListItems(); ok && len(items) > 0 {
		if sym, ok := items[0].Symbol(); ok {
			return sym
		}
	}
	return ""
}

// Format renders the node back to source text with canonical spacing: lists
// as "(a b c)", vectors as "[a b c]" and maps as "{k: v, k: v}". Formatting
// then re-reading an atom-free tree yields a structurally equal tree.
func Format(s *SExpr) string {
	var b strings.Builder
	format(&b, s)
	return b.String()
}

func format(b *strings.Builder, s *SExpr) {
	switch s.Kind {
	case List:
		b.WriteByte('(')
		for i, it := range s.Items {
			if i > 0 {
				b.WriteByte(' ')
			}
			format(b, it)
		}
		b.WriteByte(')')
	case Vector:
		b.WriteByte('[')
		for i, it := range s.Items {
			if i > 0 {
				b.WriteByte(' ')
			}
			format(b, it)
		}
		b.WriteByte(']')
	case Map:
		b.WriteByte('{')
		for i, e := range s.Entries {
			if i > 0 {
				b.WriteString(", ")
			}
			format(b, e.Key)
			b.WriteString(": ")
			format(b, e.Value)
		}
		b.WriteByte('}')
	case AtomNode:
		switch s.Atom.Kind {
		case SymbolAtom:
			b.WriteString(s.Atom.Text)
		case KeywordAtom:
			b.WriteByte(':')
			b.WriteString(s.Atom.Text)
		case StringAtom:
			fmt.Fprintf(b, "%q", s.Atom.Text)
		case IntAtom:
			fmt.Fprintf(b, "%d", s.Atom.Int)
		case BoolAtom:
			fmt.Fprintf(b, "%t", s.Atom.Bool)
		case DurationAtom:
			fmt.Fprintf(b, "%d%s", s.Atom.Duration, s.Atom.Unit)
		case RegexAtom:
			b.WriteString("#/")
			b.WriteString(s.Atom.Text)
			b.WriteByte('/')
		}
	}
}

// Equal reports structural equality of two trees, ignoring spans.
func Equal(a, b *SExpr) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case List, Vector:
		if len(a.Items) != len(b.Items) {
			return false
		}
		for i := range a.Items {
			if !Equal(a.Items[i], b.Items[i]) {
				return false
			}
		}
		return true
	case Map:
		if len(a.Entries) != len(b.Entries) {
			return false
		}
		for i := range a.Entries {
			if !Equal(a.Entries[i].Key, b.Entries[i].Key) || !Equal(a.Entries[i].Value, b.Entries[i].Value) {
				return false
			}
		}
		return true
	default:
		return a.Atom == b.Atom
	}
}

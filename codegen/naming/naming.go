package naming

import (
	"strings"
	"unicode"

	"goa.design/goa/v3/codegen"
)

// ToSnake converts a kebab-case spec identifier into a snake_case target
// identifier. The '?' and '!' markers are stripped and '-' and '/' map to
// '_', so "non-empty?" becomes "non_empty" and "api-router/handle-request"
// becomes "api_router_handle_request".
func ToSnake(name string) string {
	r := strings.NewReplacer("-", "_", "/", "_", "?", "", "!", "")
	return r.Replace(name)
}

// ToPascal converts a kebab-case spec identifier into a PascalCase type
// name, splitting on '-', '_' and '/' and stripping '?' and '!'.
func ToPascal(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '-' || r == '_' || r == '/'
	})
	var b strings.Builder
	for _, part := range parts {
		part = strings.NewReplacer("?", "", "!", "").Replace(part)
		if part == "" {
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(strings.ToLower(part[1:]))
	}
	return b.String()
}

// ToCamel is ToPascal with a lowercase first segment, for unexported
// identifiers in generated code.
func ToCamel(name string) string {
	p := ToPascal(name)
	if p == "" {
		return p
	}
	return strings.ToLower(p[:1]) + p[1:]
}

// ToTitle converts a slug into space-separated Title Case for display:
// "email-address" becomes "Email Address".
func ToTitle(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '-' || r == '_'
	})
	for i, part := range parts {
		r := []rune(part)
		if len(r) > 0 {
			r[0] = unicode.ToUpper(r[0])
		}
		parts[i] = string(r)
	}
	return strings.Join(parts, " ")
}

// SanitizeToken converts an arbitrary string into a filesystem-safe token.
// It is used to derive deterministic file and package fragments from module
// names.
//
// The returned token:
//   - is lower snake_case
//   - contains only [a-z0-9_]
//   - never starts/ends with '_' and never contains repeated "__"
//
// When the sanitized result is empty, SanitizeToken returns fallback.
func SanitizeToken(name, fallback string) string {
	s := strings.ToLower(codegen.SnakeCase(name))
	s = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			return r
		}
		return '_'
	}, s)
	s = strings.Trim(s, "_")
	for strings.Contains(s, "__") {
		s = strings.ReplaceAll(s, "__", "_")
	}
	if s == "" {
		return fallback
	}
	return s
}

// StoreType derives a store's element type name from an effect target by
// stripping a trailing "-store" or "_store" segment and Pascal-casing what
// remains. A target without the suffix is used verbatim.
func StoreType(target string) string {
	name := target
	if s, ok := strings.CutSuffix(name, "-store"); ok {
		name = s
	} else if s, ok := strings.CutSuffix(name, "_store"); ok {
		name = s
	}
	return ToPascal(name)
}

// Pluralize forms the plural used in scaffold routes. English-only: it
// appends "s".
func Pluralize(s string) string { return s + "s" }

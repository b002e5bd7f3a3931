// Package diag defines the uniform diagnostic record shared by the lowerer
// and the semantic passes, and renders diagnostics against the source text.
package diag

import (
	"fmt"
	"strings"

	"goa.design/pct/token"
)

type (
	// Severity is the diagnostic severity.
	Severity int

	// Diagnostic is a single error or warning. Span is nil when the
	// diagnostic has no source anchor.
	Diagnostic struct {
		Severity Severity
		Message  string
		Span     *token.Span
	}
)

const (
	Error Severity = iota
	Warning
)

func (s Severity) String() string {
	if s == Error {
		return "error"
	}
	return "warning"
}

// Errorf builds an error diagnostic. Pass a nil span when there is no anchor.
func Errorf(span *token.Span, format string, args ...any) Diagnostic {
	return Diagnostic{Severity: Error, Message: fmt.Sprintf(format, args...), Span: span}
}

// Warningf builds a warning diagnostic.
func Warningf(span *token.Span, format string, args ...any) Diagnostic {
	return Diagnostic{Severity: Warning, Message: fmt.Sprintf(format, args...), Span: span}
}

// CountErrors returns the number of error-severity diagnostics.
func CountErrors(diags []Diagnostic) int {
	n := 0
	for _, d := range diags {
		if d.Severity == Error {
			n++
		}
	}
	return n
}

// CountWarnings returns the number of warning-severity diagnostics.
func CountWarnings(diags []Diagnostic) int {
	n := 0
	for _, d := range diags {
		if d.Severity == Warning {
			n++
		}
	}
	return n
}

// Format renders diagnostics against the source. Spanned diagnostics resolve
// their byte offset to a 1-based line and column and print the offending
// source line with a caret.
func Format(source string, diags []Diagnostic) string {
	var b strings.Builder
	for _, d := range diags {
		if d.Span == nil {
			fmt.Fprintf(&b, "%s: %s\n", d.Severity, d.Message)
			continue
		}
		line, col := lineCol(source, d.Span.Start)
		fmt.Fprintf(&b, "<input>:%d:%d: %s: %s\n", line, col, d.Severity, d.Message)
		if src, ok := sourceLine(source, line); ok {
			fmt.Fprintf(&b, "  | %s\n", src)
			fmt.Fprintf(&b, "  | %s^\n", strings.Repeat(" ", col-1))
		}
	}
	return b.String()
}

// lineCol resolves a byte offset to a 1-based line and column by linear scan.
func lineCol(source string, offset int) (line, col int) {
	line, col = 1, 1
	for i := 0; i < len(source) && i < offset; i++ {
		if source[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}

func sourceLine(source string, line int) (string, bool) {
	lines := strings.Split(source, "\n")
	if line < 1 || line > len(lines) {
		return "", false
	}
	return lines[line-1], true
}

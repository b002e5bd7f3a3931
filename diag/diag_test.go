package diag

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"goa.design/pct/token"
)

func TestFormatWithSpan(t *testing.T) {
	source := "(module m\n  (bogus))\n"
	span := token.NewSpan(12, 19)
	out := Format(source, []Diagnostic{Warningf(&span, "unknown top-level form 'bogus'")})
	assert.Contains(t, out, "<input>:2:3: warning: unknown top-level form 'bogus'")
	assert.Contains(t, out, "  | (bogus))")
	assert.Contains(t, out, "  |   ^")
}

func TestFormatWithoutSpan(t *testing.T) {
	out := Format("", []Diagnostic{Errorf(nil, "boom")})
	assert.Equal(t, "error: boom\n", out)
}

func TestCounts(t *testing.T) {
	diags := []Diagnostic{
		Errorf(nil, "e1"),
		Warningf(nil, "w1"),
		Warningf(nil, "w2"),
	}
	assert.Equal(t, 1, CountErrors(diags))
	assert.Equal(t, 2, CountWarnings(diags))
}

func TestLineColResolution(t *testing.T) {
	src := "ab\ncd\nef"
	line, col := lineCol(src, 0)
	assert.Equal(t, 1, line)
	assert.Equal(t, 1, col)
	line, col = lineCol(src, 4)
	assert.Equal(t, 2, line)
	assert.Equal(t, 2, col)
	line, col = lineCol(src, 6)
	assert.Equal(t, 3, line)
	assert.Equal(t, 1, col)
}

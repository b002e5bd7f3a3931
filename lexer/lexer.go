// Package lexer turns pct source text into a token stream. The lexer is
// byte-oriented: every token carries a half-open byte span into the source so
// diagnostics can point back at the offending text.
package lexer

import (
	"fmt"
	"strconv"
	"unicode/utf8"

	"goa.design/pct/token"
)

// Lexer scans a single source text. The zero value is not usable; construct
// with New.
type Lexer struct {
	src []byte
	pos int
}

// New returns a lexer over src.
func New(src string) *Lexer {
	return &Lexer{src: []byte(src)}
}

// Tokenize scans the entire source and returns the token stream terminated by
// an EOF token. The first lexical failure aborts the scan.
func Tokenize(src string) ([]token.Token, error) {
	return New(src).Tokenize()
}

// Tokenize scans the entire source.
func (l *Lexer) Tokenize() ([]token.Token, error) {
	var toks []token.Token
	for {
		l.skipSpaceAndComments()
		if l.pos >= len(l.src) {
			toks = append(toks, token.Token{Kind: token.EOF, Span: token.NewSpan(l.pos, l.pos)})
			return toks, nil
		}
		t, err := l.next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, t)
	}
}

// skipSpaceAndComments advances past ASCII whitespace and ";;" line comments.
func (l *Lexer) skipSpaceAndComments() {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f':
			l.pos++
		case c == ';' && l.pos+1 < len(l.src) && l.src[l.pos+1] == ';':
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.pos++
			}
		default:
			return
		}
	}
}

func (l *Lexer) next() (token.Token, error) {
	start := l.pos
	c := l.src[l.pos]

	single := func(k token.Kind) (token.Token, error) {
		l.pos++
		return token.Token{Kind: k, Span: token.NewSpan(start, l.pos)}, nil
	}

	switch {
	case c == '(':
		return single(token.LParen)
	case c == ')':
		return single(token.RParen)
	case c == '[':
		return single(token.LBracket)
	case c == ']':
		return single(token.RBracket)
	case c == '{':
		return single(token.LBrace)
	case c == '}':
		return single(token.RBrace)
	case c == ',':
		return single(token.Comma)
	case c == '"':
		return l.lexString()
	case c == ':':
		return l.lexKeywordOrColon()
	case c == '#':
		return l.lexRegex()
	case c >= '0' && c <= '9':
		return l.lexNumberOrDuration()
	case c == '-' && l.pos+1 < len(l.src) && isDigit(l.src[l.pos+1]):
		return l.lexNumberOrDuration()
	case isSymbolStart(c):
		return l.lexSymbol()
	}
	r, _ := utf8.DecodeRune(l.src[l.pos:])
	return token.Token{}, fmt.Errorf("unexpected character %q at byte %d", r, l.pos)
}

func (l *Lexer) lexString() (token.Token, error) {
	start := l.pos
	l.pos++ // opening quote
	var buf []byte
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch c {
		case '"':
			l.pos++
			return token.Token{Kind: token.String, Span: token.NewSpan(start, l.pos), Text: string(buf)}, nil
		case '\\':
			l.pos++
			if l.pos >= len(l.src) {
				return token.Token{}, fmt.Errorf("unterminated string escape at byte %d", start)
			}
			switch l.src[l.pos] {
			case '"':
				buf = append(buf, '"')
			case '\\':
				buf = append(buf, '\\')
			case 'n':
				buf = append(buf, '\n')
			case 't':
				buf = append(buf, '\t')
			case 'r':
				buf = append(buf, '\r')
			default:
				return token.Token{}, fmt.Errorf("unknown escape '\\%c' at byte %d", l.src[l.pos], l.pos)
			}
			l.pos++
		default:
			buf = append(buf, c)
			l.pos++
		}
	}
	return token.Token{}, fmt.Errorf("unterminated string starting at byte %d", start)
}

// lexKeywordOrColon scans a ':'. A symbol-start character immediately after
// makes it a keyword token; otherwise it is the standalone map separator.
func (l *Lexer) lexKeywordOrColon() (token.Token, error) {
	start := l.pos
	l.pos++
	if l.pos >= len(l.src) || !isSymbolStart(l.src[l.pos]) {
		return token.Token{Kind: token.Colon, Span: token.NewSpan(start, l.pos)}, nil
	}
	symStart := l.pos
	for l.pos < len(l.src) && isSymbolCont(l.src[l.pos]) {
		l.pos++
	}
	return token.Token{
		Kind: token.Keyword,
		Span: token.NewSpan(start, l.pos),
		Text: string(l.src[symStart:l.pos]),
	}, nil
}

// lexRegex scans "#/pattern/". A backslash escapes a following slash; any
// other backslash is kept verbatim along with the next character.
func (l *Lexer) lexRegex() (token.Token, error) {
	start := l.pos
	if l.pos+1 >= len(l.src) || l.src[l.pos+1] != '/' {
		return token.Token{}, fmt.Errorf("unexpected '#' at byte %d", start)
	}
	l.pos += 2
	var buf []byte
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == '/':
			l.pos++
			return token.Token{Kind: token.Regex, Span: token.NewSpan(start, l.pos), Text: string(buf)}, nil
		case c == '\\' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '/':
			buf = append(buf, '/')
			l.pos += 2
		case c == '\\':
			buf = append(buf, '\\')
			l.pos++
			if l.pos < len(l.src) {
				buf = append(buf, l.src[l.pos])
				l.pos++
			}
		default:
			buf = append(buf, c)
			l.pos++
		}
	}
	return token.Token{}, fmt.Errorf("unterminated regex literal starting at byte %d", start)
}

// lexNumberOrDuration scans an optionally signed digit run. A unit suffix in
// {ms, s, m, h} commits to a duration literal only when the character after
// the suffix is not a symbol continuation, so "10m" is a duration while
// "10max" is an integer followed by a symbol.
func (l *Lexer) lexNumberOrDuration() (token.Token, error) {
	start := l.pos
	if l.src[l.pos] == '-' {
		l.pos++
	}
	numStart := l.pos
	for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
		l.pos++
	}
	if l.pos == numStart {
		return token.Token{}, fmt.Errorf("expected digit after '-' at byte %d", start)
	}
	numText := string(l.src[numStart:l.pos])

	duration := func(unit token.DurationUnit, width int) (token.Token, error) {
		v, err := strconv.ParseInt(numText, 10, 64)
		if err != nil {
			return token.Token{}, fmt.Errorf("invalid duration number %q at byte %d", numText, start)
		}
		l.pos += width
		return token.Token{
			Kind:     token.Duration,
			Span:     token.NewSpan(start, l.pos),
			Duration: v,
			Unit:     unit,
		}, nil
	}

	if l.pos+1 < len(l.src) && l.src[l.pos] == 'm' && l.src[l.pos+1] == 's' {
		if l.pos+2 >= len(l.src) || !isSymbolCont(l.src[l.pos+2]) {
			return duration(token.Millis, 2)
		}
	}
	if l.pos < len(l.src) {
		after := byte(0)
		if l.pos+1 < len(l.src) {
			after = l.src[l.pos+1]
		}
		switch l.src[l.pos] {
		case 's':
			if after == 0 || !isSymbolCont(after) {
				return duration(token.Seconds, 1)
			}
		case 'm':
			if after == 0 || !isSymbolCont(after) {
				return duration(token.Minutes, 1)
			}
		case 'h':
			if after == 0 || !isSymbolCont(after) {
				return duration(token.Hours, 1)
			}
		}
	}

	full := string(l.src[start:l.pos])
	v, err := strconv.ParseInt(full, 10, 64)
	if err != nil {
		return token.Token{}, fmt.Errorf("invalid integer %q at byte %d", full, start)
	}
	return token.Token{Kind: token.Int, Span: token.NewSpan(start, l.pos), Int: v}, nil
}

func (l *Lexer) lexSymbol() (token.Token, error) {
	start := l.pos
	for l.pos < len(l.src) && isSymbolCont(l.src[l.pos]) {
		l.pos++
	}
	text := string(l.src[start:l.pos])
	span := token.NewSpan(start, l.pos)
	switch text {
	case "true":
		return token.Token{Kind: token.Bool, Span: span, Bool: true}, nil
	case "false":
		return token.Token{Kind: token.Bool, Span: span, Bool: false}, nil
	}
	return token.Token{Kind: token.Symbol, Span: span, Text: text}, nil
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isSymbolStart(c byte) bool {
	if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
		return true
	}
	switch c {
	case '_', '-', '+', '*', '/', '!', '?', '>', '<', '=', '.':
		return true
	}
	return false
}

func isSymbolCont(c byte) bool { return isSymbolStart(c) || isDigit(c) }

package sexpr

import (
	"fmt"

	"goa.design/pct/token"
)

// Reader is a recursive-descent reader over a token stream. It never looks
// ahead more than one token.
type Reader struct {
	toks []token.Token
	pos  int
}

// NewReader returns a reader over toks.
func NewReader(toks []token.Token) *Reader {
	return &Reader{toks: toks}
}

// Read tokenizes nothing itself; it consumes all top-level S-expressions from
// the stream handed to NewReader.
func Read(toks []token.Token) ([]*SExpr, error) {
	return NewReader(toks).ReadProgram()
}

// ReadProgram reads every top-level expression up to EOF.
func (r *Reader) ReadProgram() ([]*SExpr, error) {
	var exprs []*SExpr
	for !r.atEOF() {
		e, err := r.readSExpr()
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, e)
	}
	return exprs, nil
}

func (r *Reader) readSExpr() (*SExpr, error) {
	switch r.peek().Kind {
	case token.LParen:
		return r.readSeq(token.LParen, token.RParen, List)
	case token.LBracket:
		return r.readSeq(token.LBracket, token.RBracket, Vector)
	case token.LBrace:
		return r.readMap()
	case token.RParen, token.RBracket, token.RBrace:
		return nil, fmt.Errorf("unexpected closing delimiter at byte %d", r.peek().Span.Start)
	case token.EOF:
		return nil, fmt.Errorf("unexpected end of input")
	default:
		return r.readAtom()
	}
}

func (r *Reader) readSeq(open, closing token.Kind, kind Kind) (*SExpr, error) {
	start := r.peek().Span.Start
	if _, err := r.expect(open); err != nil {
		return nil, err
	}
	var items []*SExpr
	for !r.check(closing) && !r.atEOF() {
		it, err := r.readSExpr()
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	end, err := r.expect(closing)
	if err != nil {
		return nil, err
	}
	return &SExpr{Kind: kind, Span: token.NewSpan(start, end.Span.End), Items: items}, nil
}

// readMap reads "{k v ...}". An optional ':' between key and value and an
// optional ',' between pairs are accepted and discarded.
func (r *Reader) readMap() (*SExpr, error) {
	start := r.peek().Span.Start
	if _, err := r.expect(token.LBrace); err != nil {
		return nil, err
	}
	var entries []Entry
	for !r.check(token.RBrace) && !r.atEOF() {
		key, err := r.readSExpr()
		if err != nil {
			return nil, err
		}
		if r.check(token.Colon) {
			r.advance()
		}
		val, err := r.readSExpr()
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{Key: key, Value: val})
		if r.check(token.Comma) {
			r.advance()
		}
	}
	end, err := r.expect(token.RBrace)
	if err != nil {
		return nil, err
	}
	return &SExpr{Kind: Map, Span: token.NewSpan(start, end.Span.End), Entries: entries}, nil
}

func (r *Reader) readAtom() (*SExpr, error) {
	t := r.advance()
	atom := Atom{}
	switch t.Kind {
	case token.Symbol:
		atom = Atom{Kind: SymbolAtom, Text: t.Text}
	case token.Keyword:
		atom = Atom{Kind: KeywordAtom, Text: t.Text}
	case token.String:
		atom = Atom{Kind: StringAtom, Text: t.Text}
	case token.Int:
		atom = Atom{Kind: IntAtom, Int: t.Int}
	case token.Bool:
		atom = Atom{Kind: BoolAtom, Bool: t.Bool}
	case token.Duration:
		atom = Atom{Kind: DurationAtom, Duration: t.Duration, Unit: t.Unit}
	case token.Regex:
		atom = Atom{Kind: RegexAtom, Text: t.Text}
	default:
		return nil, fmt.Errorf("unexpected %s at byte %d", t.Kind, t.Span.Start)
	}
	return &SExpr{Kind: AtomNode, Span: t.Span, Atom: atom}, nil
}

func (r *Reader) peek() token.Token {
	if r.pos < len(r.toks) {
		return r.toks[r.pos]
	}
	return token.Token{Kind: token.EOF}
}

func (r *Reader) check(k token.Kind) bool { return r.peek().Kind == k }

func (r *Reader) atEOF() bool { return r.pos >= len(r.toks) || r.peek().Kind == token.EOF }

func (r *Reader) advance() token.Token {
	t := r.peek()
	if r.pos < len(r.toks) {
		r.pos++
	}
	return t
}

func (r *Reader) expect(k token.Kind) (token.Token, error) {
	if !r.check(k) {
		return token.Token{}, fmt.Errorf("expected %s, got %s at byte %d", k, r.peek().Kind, r.peek().Span.Start)
	}
	return r.advance(), nil
}

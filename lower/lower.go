// Package lower interprets the generic S-expression tree as a typed module.
// Lowering walks each recognized form alternating between positional children
// and keyword/value pairs; unknown keywords are preserved verbatim in the
// form's extras and unknown top-level heads produce warnings. Any wrong form
// shape fails the lowering of the whole module with a message and a span.
package lower

import (
	"fmt"

	"goa.design/pct/ast"
	"goa.design/pct/diag"
	"goa.design/pct/sexpr"
	"goa.design/pct/token"
)

// Lowerer accumulates warnings while lowering a single module.
type Lowerer struct {
	// Diagnostics collects non-fatal warnings emitted during lowering.
	Diagnostics []diag.Diagnostic
}

// New returns a fresh lowerer.
func New() *Lowerer {
	return &Lowerer{}
}

// Module lowers a top-level "(module ...)" form.
func (lw *Lowerer) Module(s *sexpr.SExpr) (*ast.Module, error) {
	items, ok := s.ListItems()
	if !ok {
		return nil, fmt.Errorf("expected module to be a list")
	}
	if len(items) == 0 || !isSymbol(items[0], "module") {
		return nil, fmt.Errorf("expected (module ...)")
	}
	if len(items) < 2 {
		return nil, fmt.Errorf("expected module name")
	}
	name, ok := items[1].Symbol()
	if !ok {
		return nil, fmt.Errorf("expected module name")
	}

	m := &ast.Module{Name: name, Span: s.Span}

	i := 2
	for i < len(items) {
		if kw, ok := items[i].Keyword(); ok {
			i++
			if i >= len(items) {
				break
			}
			val := items[i]
			switch kw {
			case "provenance":
				p, err := lw.provenance(val)
				if err != nil {
					return nil, err
				}
				m.Provenance = p
			case "version":
				if n, ok := val.Int(); ok {
					m.Version = &n
				}
			case "parent-version":
				if n, ok := val.Int(); ok {
					m.ParentVersion = &n
				}
			case "delta":
				d, err := lw.delta(val)
				if err != nil {
					return nil, err
				}
				m.Delta = d
			default:
				m.Extra = append(m.Extra, ast.Meta{Key: kw, Value: lw.meta(val)})
			}
			i++
			continue
		}
		if _, ok := items[i].ListItems(); ok {
			switch items[i].Head() {
			case "type":
				td, err := lw.typeDef(items[i])
				if err != nil {
					return nil, err
				}
				m.Types = append(m.Types, td)
			case "effect-set":
				es, err := lw.effectSet(items[i])
				if err != nil {
					return nil, err
				}
				m.EffectSets = append(m.EffectSets, es)
			case "fn":
				fn, err := lw.fnDef(items[i])
				if err != nil {
					return nil, err
				}
				m.Functions = append(m.Functions, fn)
			default:
				span := items[i].Span
				lw.Diagnostics = append(lw.Diagnostics, diag.Warningf(&span,
					"unknown top-level form '%s'", items[i].Head()))
			}
		}
		i++
	}
	return m, nil
}

func (lw *Lowerer) provenance(s *sexpr.SExpr) (*ast.Provenance, error) {
	entries, ok := s.MapEntries()
	if !ok {
		return nil, fmt.Errorf("expected provenance to be a map")
	}
	p := &ast.Provenance{Span: s.Span}
	for _, e := range entries {
		key, ok := keyName(e.Key)
		if !ok {
			return nil, fmt.Errorf("expected provenance key to be a symbol or keyword")
		}
		switch key {
		case "req":
			p.Req, _ = e.Value.StringValue()
		case "author":
			p.Author, _ = e.Value.StringValue()
		case "created":
			p.Created, _ = e.Value.StringValue()
		case "test", "tests":
			if items, ok := e.Value.VectorItems(); ok {
				for _, it := range items {
					if str, ok := it.StringValue(); ok {
						p.Tests = append(p.Tests, str)
					}
				}
			}
		default:
			p.Extra = append(p.Extra, ast.Meta{Key: key, Value: lw.meta(e.Value)})
		}
	}
	return p, nil
}

func (lw *Lowerer) delta(s *sexpr.SExpr) (*ast.Delta, error) {
	items, ok := s.ListItems()
	if !ok {
		return nil, fmt.Errorf("expected delta to be a list")
	}
	d := &ast.Delta{Operation: "unknown", Span: s.Span}
	if len(items) > 0 {
		if sym, ok := items[0].Symbol(); ok {
			d.Operation = sym
		}
	}
	if len(items) > 1 {
		d.Target, _ = items[1].Symbol()
	}
	if len(items) > 2 {
		d.Description, _ = items[2].StringValue()
	}
	return d, nil
}

func (lw *Lowerer) typeDef(s *sexpr.SExpr) (*ast.TypeDef, error) {
	items, _ := s.ListItems()
	if len(items) < 2 {
		return nil, fmt.Errorf("expected type name")
	}
	name, ok := items[1].Symbol()
	if !ok {
		return nil, fmt.Errorf("expected type name")
	}
	td := &ast.TypeDef{Name: name, Span: s.Span}

	i := 2
	for i < len(items) {
		if kw, ok := items[i].Keyword(); ok {
			i++
			if i >= len(items) {
				break
			}
			switch kw {
			case "invariants":
				if invs, ok := items[i].VectorItems(); ok {
					for _, inv := range invs {
						td.Invariants = append(td.Invariants, ast.Invariant{
							Raw:  sexpr.Format(inv),
							Span: inv.Span,
						})
					}
				}
			default:
				td.Extra = append(td.Extra, ast.Meta{Key: kw, Value: lw.meta(items[i])})
			}
			i++
			continue
		}
		if items[i].Head() == "field" {
			f, err := lw.fieldDef(items[i])
			if err != nil {
				return nil, err
			}
			td.Fields = append(td.Fields, f)
		}
		i++
	}
	return td, nil
}

// fieldDef lowers "(field name Type ...)". Flag keywords (:immutable,
// :generated) take no value; value keywords consume the following item. An
// unknown keyword is treated as a flag when the next item is another keyword.
func (lw *Lowerer) fieldDef(s *sexpr.SExpr) (*ast.FieldDef, error) {
	items, _ := s.ListItems()
	if len(items) < 2 {
		return nil, fmt.Errorf("expected field name")
	}
	name, ok := items[1].Symbol()
	if !ok {
		return nil, fmt.Errorf("expected field name")
	}
	if len(items) < 3 {
		return nil, fmt.Errorf("expected field type")
	}
	typ, err := lw.typeExpr(items[2])
	if err != nil {
		return nil, err
	}
	f := &ast.FieldDef{Name: name, Type: typ, Span: s.Span}

	i := 3
	for i < len(items) {
		kw, ok := items[i].Keyword()
		if !ok {
			i++
			continue
		}
		switch kw {
		case "immutable":
			f.Immutable = true
			i++
		case "generated":
			f.Generated = true
			i++
		case "min-len":
			i++
			if i < len(items) {
				if n, ok := items[i].Int(); ok {
					f.MinLen = &n
				}
			}
			i++
		case "max-len":
			i++
			if i < len(items) {
				if n, ok := items[i].Int(); ok {
					f.MaxLen = &n
				}
			}
			i++
		case "format":
			i++
			if i < len(items) {
				f.Format, _ = items[i].Keyword()
			}
			i++
		case "unique-within":
			i++
			if i < len(items) {
				f.UniqueWithin, _ = items[i].Symbol()
			}
			i++
		default:
			// A pairing value before the next keyword makes it a value
			// keyword; otherwise it is a flag.
			if i+1 < len(items) && !isKeyword(items[i+1]) {
				i++
				f.Extra = append(f.Extra, ast.Meta{Key: kw, Value: lw.meta(items[i])})
				i++
			} else {
				f.Extra = append(f.Extra, ast.Meta{Key: kw, Value: &ast.MetaBool{Value: true}})
				i++
			}
		}
	}
	return f, nil
}

func (lw *Lowerer) typeExpr(s *sexpr.SExpr) (ast.TypeExpr, error) {
	if name, ok := s.Symbol(); ok {
		return &ast.NamedType{Name: name}, nil
	}
	if entries, ok := s.MapEntries(); ok {
		mt := &ast.MapType{}
		for _, e := range entries {
			key, ok := keyName(e.Key)
			if !ok {
				return nil, fmt.Errorf("expected map type key")
			}
			vt, err := lw.typeExpr(e.Value)
			if err != nil {
				return nil, err
			}
			mt.Fields = append(mt.Fields, ast.MapTypeField{Name: key, Type: vt})
		}
		return mt, nil
	}
	if items, ok := s.ListItems(); ok {
		head := s.Head()
		switch head {
		case "":
			return nil, fmt.Errorf("expected type expression")
		case "list":
			if len(items) < 2 {
				return nil, fmt.Errorf("expected list element type")
			}
			elem, err := lw.typeExpr(items[1])
			if err != nil {
				return nil, err
			}
			return &ast.ListType{Elem: elem}, nil
		case "union":
			ut := &ast.UnionType{}
			for _, it := range items[1:] {
				v, err := lw.variant(it)
				if err != nil {
					return nil, err
				}
				ut.Variants = append(ut.Variants, v)
			}
			return ut, nil
		case "enum":
			et := &ast.EnumType{}
			for _, it := range items[1:] {
				if kw, ok := it.Keyword(); ok {
					et.Tags = append(et.Tags, kw)
				}
			}
			return et, nil
		default:
			return &ast.NamedType{Name: head}, nil
		}
	}
	return nil, fmt.Errorf("unexpected type expression")
}

func (lw *Lowerer) effectSet(s *sexpr.SExpr) (*ast.EffectSetDef, error) {
	items, _ := s.ListItems()
	if len(items) < 2 {
		return nil, fmt.Errorf("expected effect-set name")
	}
	name, ok := items[1].Symbol()
	if !ok {
		return nil, fmt.Errorf("expected effect-set name")
	}
	es := &ast.EffectSetDef{Name: name, Span: s.Span}

	if len(items) > 2 {
		if effects, ok := items[2].VectorItems(); ok {
			j := 0
			for j < len(effects) {
				kw, ok := effects[j].Keyword()
				if !ok {
					j++
					continue
				}
				var kind ast.EffectKind
				switch kw {
				case "reads":
					kind = ast.Reads
				case "writes":
					kind = ast.Writes
				case "sends":
					kind = ast.Sends
				default:
					j++
					continue
				}
				j++
				if j < len(effects) {
					if target, ok := effects[j].Symbol(); ok {
						es.Effects = append(es.Effects, ast.Effect{Kind: kind, Target: target})
					}
				}
				j++
			}
		}
	}
	return es, nil
}

func (lw *Lowerer) fnDef(s *sexpr.SExpr) (*ast.FnDef, error) {
	items, _ := s.ListItems()
	if len(items) < 2 {
		return nil, fmt.Errorf("expected function name")
	}
	name, ok := items[1].Symbol()
	if !ok {
		return nil, fmt.Errorf("expected function name")
	}
	fn := &ast.FnDef{Name: name, Span: s.Span}

	i := 2
	for i < len(items) {
		if kw, ok := items[i].Keyword(); ok {
			i++
			if i >= len(items) {
				break
			}
			val := items[i]
			switch kw {
			case "provenance":
				p, err := lw.provenance(val)
				if err != nil {
					return nil, err
				}
				fn.Provenance = p
			case "effects":
				if names, ok := val.VectorItems(); ok {
					for _, it := range names {
						if sym, ok := it.Symbol(); ok {
							fn.Effects = append(fn.Effects, sym)
						}
					}
				}
			case "total":
				if b, ok := val.Bool(); ok {
					fn.Total = b
				}
			case "latency-budget":
				if val.Kind == sexpr.AtomNode && val.Atom.Kind == sexpr.DurationAtom {
					fn.LatencyBudget = &ast.Duration{Value: val.Atom.Duration, Unit: val.Atom.Unit}
				}
			case "called-by":
				if callers, ok := val.VectorItems(); ok {
					for _, it := range callers {
						if sym, ok := it.Symbol(); ok {
							fn.CalledBy = append(fn.CalledBy, sym)
						}
					}
				}
			case "idempotency-key":
				e, err := lw.expr(val)
				if err != nil {
					return nil, err
				}
				fn.IdempotencyKey = e
			default:
				fn.Extra = append(fn.Extra, ast.Meta{Key: kw, Value: lw.meta(val)})
			}
			i++
			continue
		}
		if _, ok := items[i].ListItems(); ok {
			switch items[i].Head() {
			case "param":
				p, err := lw.paramDef(items[i])
				if err != nil {
					return nil, err
				}
				fn.Params = append(fn.Params, p)
			case "returns":
				r, err := lw.returnsDef(items[i])
				if err != nil {
					return nil, err
				}
				fn.Returns = r
			default:
				body, err := lw.expr(items[i])
				if err != nil {
					return nil, err
				}
				fn.Body = body
			}
		}
		i++
	}

	if fn.Returns == nil {
		return nil, fmt.Errorf("expected (returns ...) in function '%s'", name)
	}
	if fn.Body == nil {
		return nil, fmt.Errorf("expected body expression in function '%s'", name)
	}
	return fn, nil
}

func (lw *Lowerer) paramDef(s *sexpr.SExpr) (*ast.ParamDef, error) {
	items, _ := s.ListItems()
	if len(items) < 2 {
		return nil, fmt.Errorf("expected param name")
	}
	name, ok := items[1].Symbol()
	if !ok {
		return nil, fmt.Errorf("expected param name")
	}
	if len(items) < 3 {
		return nil, fmt.Errorf("expected param type")
	}
	typ, err := lw.typeExpr(items[2])
	if err != nil {
		return nil, err
	}
	p := &ast.ParamDef{Name: name, Type: typ, Span: s.Span}

	i := 3
	for i < len(items) {
		kw, ok := items[i].Keyword()
		if !ok {
			i++
			continue
		}
		i++
		if i >= len(items) {
			break
		}
		val := items[i]
		switch kw {
		case "source":
			if sym, ok := val.Symbol(); ok {
				p.Source = sym
			} else if k, ok := val.Keyword(); ok {
				p.Source = k
			}
		case "content-type":
			p.ContentType, _ = val.Keyword()
		case "validated-at":
			p.ValidatedAt, _ = val.Symbol()
		default:
			p.Extra = append(p.Extra, ast.Meta{Key: kw, Value: lw.meta(val)})
		}
		i++
	}
	return p, nil
}

func (lw *Lowerer) returnsDef(s *sexpr.SExpr) (*ast.ReturnsDef, error) {
	items, _ := s.ListItems()
	if len(items) < 2 {
		return nil, fmt.Errorf("expected (returns (union ...))")
	}
	unionItems, ok := items[1].ListItems()
	if !ok {
		return nil, fmt.Errorf("expected union in returns")
	}
	if items[1].Head() != "union" {
		return nil, fmt.Errorf("expected (union ...) in returns")
	}
	r := &ast.ReturnsDef{Span: s.Span}
	for _, it := range unionItems[1:] {
		v, err := lw.variant(it)
		if err != nil {
			return nil, err
		}
		r.Variants = append(r.Variants, v)
	}
	return r, nil
}

func (lw *Lowerer) variant(s *sexpr.SExpr) (*ast.Variant, error) {
	items, ok := s.ListItems()
	if !ok {
		return nil, fmt.Errorf("expected variant to be a list")
	}
	head := s.Head()
	switch head {
	case "ok":
		if len(items) < 2 {
			return nil, fmt.Errorf("expected ok type")
		}
		typ, err := lw.typeExpr(items[1])
		if err != nil {
			return nil, err
		}
		v := &ast.Variant{Ok: true, Type: typ, Span: s.Span}
		i := 2
		for i < len(items) {
			kw, ok := items[i].Keyword()
			if !ok {
				i++
				continue
			}
			i++
			if i >= len(items) {
				break
			}
			switch kw {
			case "http":
				if n, ok := items[i].Int(); ok {
					v.HTTPStatus = &n
				}
			case "serialize":
				v.Serialize, _ = items[i].Keyword()
			default:
				v.Extra = append(v.Extra, ast.Meta{Key: kw, Value: lw.meta(items[i])})
			}
			i++
		}
		return v, nil

	case "err":
		if len(items) < 2 {
			return nil, fmt.Errorf("expected error tag keyword")
		}
		tag, ok := items[1].Keyword()
		if !ok {
			return nil, fmt.Errorf("expected error tag keyword")
		}
		v := &ast.Variant{Tag: tag, Payload: ast.Unit(), Span: s.Span}
		i := 2
		// The first non-keyword item after the tag is the payload.
		if i < len(items) && !isKeyword(items[i]) {
			payload, err := lw.typeExpr(items[i])
			if err != nil {
				return nil, err
			}
			v.Payload = payload
			i++
		}
		for i < len(items) {
			kw, ok := items[i].Keyword()
			if !ok {
				i++
				continue
			}
			i++
			if i >= len(items) {
				break
			}
			switch kw {
			case "http":
				if n, ok := items[i].Int(); ok {
					v.HTTPStatus = &n
				}
			default:
				v.Extra = append(v.Extra, ast.Meta{Key: kw, Value: lw.meta(items[i])})
			}
			i++
		}
		return v, nil
	}
	return nil, fmt.Errorf("expected 'ok' or 'err' variant, got '%s'", head)
}

func (lw *Lowerer) expr(s *sexpr.SExpr) (ast.Expr, error) {
	switch s.Kind {
	case sexpr.AtomNode:
		switch s.Atom.Kind {
		case sexpr.SymbolAtom:
			if s.Atom.Text == "_" {
				return &ast.WildcardExpr{Span: s.Span}, nil
			}
			return &ast.Ref{Name: s.Atom.Text, Span: s.Span}, nil
		case sexpr.KeywordAtom:
			return &ast.KeywordLit{Name: s.Atom.Text, Span: s.Span}, nil
		case sexpr.StringAtom:
			return &ast.StringLit{Value: s.Atom.Text, Span: s.Span}, nil
		case sexpr.IntAtom:
			return &ast.IntLit{Value: s.Atom.Int, Span: s.Span}, nil
		case sexpr.BoolAtom:
			return &ast.BoolLit{Value: s.Atom.Bool, Span: s.Span}, nil
		}
		return nil, fmt.Errorf("unexpected expression form")

	case sexpr.Map:
		ml := &ast.MapLit{Span: s.Span}
		for _, e := range s.Entries {
			key, ok := keyName(e.Key)
			if !ok {
				return nil, fmt.Errorf("expected map key to be symbol or keyword")
			}
			val, err := lw.expr(e.Value)
			if err != nil {
				return nil, err
			}
			ml.Entries = append(ml.Entries, ast.MapLitEntry{Key: key, Value: val})
		}
		return ml, nil

	case sexpr.List:
		items := s.Items
		if len(items) == 0 {
			return nil, fmt.Errorf("unexpected empty list in expression")
		}
		head, ok := items[0].Symbol()
		if !ok {
			return nil, fmt.Errorf("expected symbol at head of expression")
		}
		switch head {
		case "let":
			return lw.letExpr(items, s.Span)
		case "match":
			return lw.matchExpr(items, s.Span)
		case "if":
			return lw.ifExpr(items, s.Span)
		case ".":
			if len(items) != 3 {
				return nil, fmt.Errorf("expected (. expr field)")
			}
			base, err := lw.expr(items[1])
			if err != nil {
				return nil, err
			}
			field, ok := items[2].Symbol()
			if !ok {
				return nil, fmt.Errorf("expected field name")
			}
			return &ast.FieldAccess{Base: base, Field: field, Span: s.Span}, nil
		case "ok":
			var inner ast.Expr = &ast.Ref{Name: "Unit", Span: s.Span}
			if len(items) > 1 {
				e, err := lw.expr(items[1])
				if err != nil {
					return nil, err
				}
				inner = e
			}
			return &ast.OkExpr{Value: inner, Span: s.Span}, nil
		case "err":
			if len(items) < 2 {
				return nil, fmt.Errorf("expected error tag")
			}
			tag, ok := items[1].Keyword()
			if !ok {
				return nil, fmt.Errorf("expected error tag")
			}
			var payload ast.Expr = &ast.Ref{Name: "Unit", Span: s.Span}
			if len(items) > 2 {
				e, err := lw.expr(items[2])
				if err != nil {
					return nil, err
				}
				payload = e
			}
			return &ast.ErrExpr{Tag: tag, Payload: payload, Span: s.Span}, nil
		default:
			call := &ast.Call{Callee: head, Span: s.Span}
			for _, it := range items[1:] {
				arg, err := lw.expr(it)
				if err != nil {
					return nil, err
				}
				call.Args = append(call.Args, arg)
			}
			return call, nil
		}
	}
	return nil, fmt.Errorf("unexpected expression form")
}

func (lw *Lowerer) letExpr(items []*sexpr.SExpr, span token.Span) (ast.Expr, error) {
	if len(items) < 3 {
		return nil, fmt.Errorf("let requires bindings and body")
	}
	bindingItems, ok := items[1].VectorItems()
	if !ok {
		return nil, fmt.Errorf("expected let bindings to be a vector")
	}
	let := &ast.Let{Span: span}
	for j := 0; j+1 < len(bindingItems); j += 2 {
		name, ok := bindingItems[j].Symbol()
		if !ok {
			return nil, fmt.Errorf("expected binding name")
		}
		val, err := lw.expr(bindingItems[j+1])
		if err != nil {
			return nil, err
		}
		let.Bindings = append(let.Bindings, ast.Binding{Name: name, Value: val})
	}
	body, err := lw.expr(items[2])
	if err != nil {
		return nil, err
	}
	let.Body = body
	return let, nil
}

func (lw *Lowerer) matchExpr(items []*sexpr.SExpr, span token.Span) (ast.Expr, error) {
	if len(items) < 4 {
		return nil, fmt.Errorf("match requires expression and at least one arm")
	}
	scrut, err := lw.expr(items[1])
	if err != nil {
		return nil, err
	}
	m := &ast.Match{Scrutinee: scrut, Span: span}
	for j := 2; j+1 < len(items); j += 2 {
		pat, err := lw.pattern(items[j])
		if err != nil {
			return nil, err
		}
		body, err := lw.expr(items[j+1])
		if err != nil {
			return nil, err
		}
		m.Arms = append(m.Arms, &ast.MatchArm{
			Pattern: pat,
			Body:    body,
			Span:    token.NewSpan(items[j].Span.Start, items[j+1].Span.End),
		})
	}
	return m, nil
}

func (lw *Lowerer) ifExpr(items []*sexpr.SExpr, span token.Span) (ast.Expr, error) {
	if len(items) != 4 {
		return nil, fmt.Errorf("if requires condition, then, and else branches")
	}
	cond, err := lw.expr(items[1])
	if err != nil {
		return nil, err
	}
	then, err := lw.expr(items[2])
	if err != nil {
		return nil, err
	}
	els, err := lw.expr(items[3])
	if err != nil {
		return nil, err
	}
	return &ast.IfExpr{Cond: cond, Then: then, Else: els, Span: span}, nil
}

func (lw *Lowerer) pattern(s *sexpr.SExpr) (ast.Pattern, error) {
	switch s.Kind {
	case sexpr.AtomNode:
		switch s.Atom.Kind {
		case sexpr.SymbolAtom:
			if s.Atom.Text == "_" {
				return &ast.WildcardPat{Span: s.Span}, nil
			}
			return &ast.VarPat{Name: s.Atom.Text, Span: s.Span}, nil
		case sexpr.KeywordAtom:
			return &ast.KeywordPat{Name: s.Atom.Text, Span: s.Span}, nil
		}
	case sexpr.List:
		if len(s.Items) == 0 {
			return nil, fmt.Errorf("unexpected empty pattern")
		}
		name, ok := s.Items[0].Symbol()
		if !ok {
			return nil, fmt.Errorf("expected constructor name in pattern")
		}
		cp := &ast.ConstructorPat{Name: name, Span: s.Span}
		for _, it := range s.Items[1:] {
			arg, err := lw.pattern(it)
			if err != nil {
				return nil, err
			}
			cp.Args = append(cp.Args, arg)
		}
		return cp, nil
	}
	return nil, fmt.Errorf("unexpected pattern form")
}

// meta converts an arbitrary S-expression into a preserved meta value.
func (lw *Lowerer) meta(s *sexpr.SExpr) ast.MetaValue {
	switch s.Kind {
	case sexpr.AtomNode:
		switch s.Atom.Kind {
		case sexpr.StringAtom:
			return &ast.MetaString{Value: s.Atom.Text}
		case sexpr.IntAtom:
			return &ast.MetaInt{Value: s.Atom.Int}
		case sexpr.BoolAtom:
			return &ast.MetaBool{Value: s.Atom.Bool}
		case sexpr.SymbolAtom:
			return &ast.MetaSymbol{Value: s.Atom.Text}
		case sexpr.KeywordAtom:
			return &ast.MetaKeyword{Value: s.Atom.Text}
		case sexpr.DurationAtom:
			return &ast.MetaDuration{Value: ast.Duration{Value: s.Atom.Duration, Unit: s.Atom.Unit}}
		case sexpr.RegexAtom:
			return &ast.MetaString{Value: s.Atom.Text}
		}
	case sexpr.Vector:
		ml := &ast.MetaList{}
		for _, it := range s.Items {
			ml.Items = append(ml.Items, lw.meta(it))
		}
		return ml
	case sexpr.Map:
		mm := &ast.MetaMap{}
		for _, e := range s.Entries {
			key, ok := keyName(e.Key)
			if !ok {
				key = "?"
			}
			mm.Entries = append(mm.Entries, ast.Meta{Key: key, Value: lw.meta(e.Value)})
		}
		return mm
	case sexpr.List:
		if e, err := New().expr(s); err == nil {
			return &ast.MetaExpr{Value: e}
		}
		ml := &ast.MetaList{}
		for _, it := range s.Items {
			ml.Items = append(ml.Items, lw.meta(it))
		}
		return ml
	}
	return &ast.MetaBool{Value: true}
}

func isSymbol(s *sexpr.SExpr, name string) bool {
	sym, ok := s.Symbol()
	return ok && sym == name
}

func isKeyword(s *sexpr.SExpr) bool {
	_, ok := s.Keyword()
	return ok
}

func keyName(s *sexpr.SExpr) (string, bool) {
	if sym, ok := s.Symbol(); ok {
		return sym, true
	}
	if kw, ok := s.Keyword(); ok {
		return kw, true
	}
	return "", false
}

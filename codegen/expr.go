package codegen

import (
	"fmt"
	"strings"

	"goa.design/pct/ast"
	"goa.design/pct/codegen/naming"
)

// callShape is the value arity a translated call produces.
type callShape int

const (
	// shapeSingle is a plain single-value call.
	shapeSingle callShape = iota
	// shapeValueErr is a (T, error) call, matched by ok/err arms.
	shapeValueErr
	// shapeValueOK is a (T, bool) call, matched by some/none arms.
	shapeValueOK
)

// genTarget abstracts the two generators' call surfaces so the statement
// translator is shared between them.
type genTarget interface {
	// renderCall renders a call expression and reports its value shape.
	renderCall(fx *fnCtx, callee string, args []ast.Expr) (string, callShape)
	// errTagCheck renders the condition recognizing a keyword-tagged store
	// error, and reports whether an unmodeled-variant panic must follow.
	errTagCheck(errVar, tag string) (string, bool)
}

// fnCtx is the per-function translation state.
type fnCtx struct {
	e      *emitter
	fn     *ast.FnDef
	m      *ast.Module
	target genTarget
	// stores maps a store element type name to its parameter name. Empty for
	// the self-contained generator.
	stores map[string]string
	// bindings records let bindings that produced multi-value assignments.
	bindings map[string]multiBinding
	// used tracks emitted variable names for uniquing.
	used map[string]bool
}

type multiBinding struct {
	valueVar string
	extraVar string // error or ok variable
	shape    callShape
}

func newFnCtx(e *emitter, fn *ast.FnDef, m *ast.Module, target genTarget, stores map[string]string) *fnCtx {
	fx := &fnCtx{
		e:        e,
		fn:       fn,
		m:        m,
		target:   target,
		stores:   stores,
		bindings: make(map[string]multiBinding),
		used:     make(map[string]bool),
	}
	for _, p := range fn.Params {
		fx.used[naming.ToSnake(p.Name)] = true
	}
	return fx
}

// fresh reserves a variable name, suffixing a counter on collision.
func (fx *fnCtx) fresh(base string) string {
	if !fx.used[base] {
		fx.used[base] = true
		return base
	}
	for i := 2; ; i++ {
		name := fmt.Sprintf("%s%d", base, i)
		if !fx.used[name] {
			fx.used[name] = true
			return name
		}
	}
}

// emitBody translates an expression in statement position. Leaf expressions
// become return statements, so every translated path exits the function.
func (fx *fnCtx) emitBody(e ast.Expr) {
	switch ex := e.(type) {
	case *ast.Let:
		for _, b := range ex.Bindings {
			fx.emitBinding(b)
		}
		fx.emitBody(ex.Body)
	case *ast.IfExpr:
		fx.e.linef("if %s {", fx.inline(ex.Cond))
		fx.e.indent++
		fx.emitBody(ex.Then)
		fx.e.indent--
		fx.e.line("}")
		fx.emitBody(ex.Else)
	case *ast.Match:
		fx.emitMatch(ex)
	default:
		fx.e.linef("return %s", fx.inline(e))
	}
}

func (fx *fnCtx) emitBinding(b ast.Binding) {
	name := fx.fresh(naming.ToSnake(b.Name))
	if call, ok := b.Value.(*ast.Call); ok {
		rendered, shape := fx.target.renderCall(fx, call.Callee, call.Args)
		switch shape {
		case shapeValueErr:
			errVar := fx.fresh(name + "Err")
			fx.e.linef("%s, %s := %s", name, errVar, rendered)
			fx.bindings[b.Name] = multiBinding{valueVar: name, extraVar: errVar, shape: shape}
			return
		case shapeValueOK:
			okVar := fx.fresh(name + "OK")
			fx.e.linef("%s, %s := %s", name, okVar, rendered)
			fx.bindings[b.Name] = multiBinding{valueVar: name, extraVar: okVar, shape: shape}
			return
		default:
			fx.e.linef("%s := %s", name, rendered)
			return
		}
	}
	fx.e.linef("%s := %s", name, fx.inline(b.Value))
}

// matchShape classifies a match by its arm patterns.
type matchShape int

const (
	matchGeneric matchShape = iota
	matchResult             // ok / err constructor arms
	matchOption             // some / none constructor arms
	matchKeyword            // keyword arms
	matchCatchAll
)

func classify(m *ast.Match) matchShape {
	hasOkErr, hasSomeNone, hasKeyword, hasOther := false, false, false, false
	for _, arm := range m.Arms {
		switch p := arm.Pattern.(type) {
		case *ast.ConstructorPat:
			switch p.Name {
			case "ok", "err":
				hasOkErr = true
			case "some", "none":
				hasSomeNone = true
			default:
				hasOther = true
			}
		case *ast.KeywordPat:
			hasKeyword = true
		}
	}
	switch {
	case hasOkErr && !hasSomeNone && !hasOther && !hasKeyword:
		return matchResult
	case hasSomeNone && !hasOkErr && !hasOther && !hasKeyword:
		return matchOption
	case hasKeyword && !hasOkErr && !hasSomeNone && !hasOther:
		return matchKeyword
	case !hasOkErr && !hasSomeNone && !hasKeyword && !hasOther:
		return matchCatchAll
	}
	return matchGeneric
}

func (fx *fnCtx) emitMatch(m *ast.Match) {
	switch classify(m) {
	case matchResult:
		fx.emitResultMatch(m)
	case matchOption:
		fx.emitOptionMatch(m)
	case matchKeyword:
		fx.emitKeywordMatch(m)
	case matchCatchAll:
		arm := m.Arms[0]
		if v, ok := arm.Pattern.(*ast.VarPat); ok {
			fx.e.linef("%s := %s", fx.fresh(naming.ToSnake(v.Name)), fx.inline(m.Scrutinee))
		}
		fx.emitBody(arm.Body)
	default:
		fx.emitGenericMatch(m)
	}
}

// scrutineeVars renders the scrutinee of a multi-value match and returns the
// value and extra (error or ok) variable names, emitting the assignment when
// the scrutinee is not an already-bound reference.
func (fx *fnCtx) scrutineeVars(m *ast.Match, preferred string, wantOK bool) (string, string) {
	if ref, ok := m.Scrutinee.(*ast.Ref); ok {
		if mb, ok := fx.bindings[ref.Name]; ok {
			return mb.valueVar, mb.extraVar
		}
	}
	rendered := ""
	if call, ok := m.Scrutinee.(*ast.Call); ok {
		rendered, _ = fx.target.renderCall(fx, call.Callee, call.Args)
	} else {
		rendered = fx.inline(m.Scrutinee)
	}
	val := fx.fresh(preferred)
	var extra string
	if wantOK {
		extra = fx.fresh("ok")
	} else {
		extra = fx.fresh(val + "Err")
	}
	fx.e.linef("%s, %s := %s", val, extra, rendered)
	return val, extra
}

// emitResultMatch lowers ok/err arms onto a (T, error) value. A keyword err
// pattern matches a tagged store error and forces an unmodeled-variant panic
// arm to keep the emitted branch exhaustive.
func (fx *fnCtx) emitResultMatch(m *ast.Match) {
	var okArm, errArm *ast.MatchArm
	for _, arm := range m.Arms {
		p, ok := arm.Pattern.(*ast.ConstructorPat)
		if !ok {
			continue
		}
		switch p.Name {
		case "ok":
			if okArm == nil {
				okArm = arm
			}
		case "err":
			if errArm == nil {
				errArm = arm
			}
		}
	}

	preferred := "v"
	if okArm != nil {
		if name, ok := constructorBinding(okArm.Pattern); ok {
			preferred = naming.ToSnake(name)
		}
	}
	val, errVar := fx.scrutineeVars(m, preferred, false)

	if errArm != nil {
		fx.e.linef("if %s != nil {", errVar)
		fx.e.indent++
		kw, hasKw := errKeyword(errArm.Pattern)
		if hasKw {
			cond, needsPanic := fx.target.errTagCheck(errVar, kw)
			fx.e.linef("if %s {", cond)
			fx.e.indent++
			fx.emitBody(errArm.Body)
			fx.e.indent--
			fx.e.line("}")
			if needsPanic {
				fx.e.linef("panic(fmt.Sprintf(\"unexpected store error: %%v\", %s))", errVar)
			}
		} else {
			if name, ok := constructorBinding(errArm.Pattern); ok {
				bound := naming.ToSnake(name)
				if bound != errVar {
					fx.e.linef("%s := %s", fx.fresh(bound), errVar)
				}
			}
			fx.emitBody(errArm.Body)
		}
		fx.e.indent--
		fx.e.line("}")
	}

	if okArm != nil {
		if name, ok := constructorBinding(okArm.Pattern); ok {
			bound := naming.ToSnake(name)
			if bound != val {
				fx.e.linef("%s := %s", fx.fresh(bound), val)
				val = bound
			}
		}
		fx.emitBody(okArm.Body)
	} else {
		fx.e.linef("panic(fmt.Sprintf(\"unhandled result: %%v\", %s))", val)
	}
}

// emitOptionMatch lowers some/none arms onto a (T, bool) value.
func (fx *fnCtx) emitOptionMatch(m *ast.Match) {
	var someArm, noneArm *ast.MatchArm
	for _, arm := range m.Arms {
		p, ok := arm.Pattern.(*ast.ConstructorPat)
		if !ok {
			continue
		}
		switch p.Name {
		case "some":
			if someArm == nil {
				someArm = arm
			}
		case "none":
			if noneArm == nil {
				noneArm = arm
			}
		}
	}

	preferred := "item"
	if someArm != nil {
		if name, ok := constructorBinding(someArm.Pattern); ok {
			preferred = naming.ToSnake(name)
		}
	}
	val, okVar := fx.scrutineeVars(m, preferred, true)

	if noneArm != nil {
		fx.e.linef("if !%s {", okVar)
		fx.e.indent++
		fx.emitBody(noneArm.Body)
		fx.e.indent--
		fx.e.line("}")
	}
	if someArm != nil {
		if name, ok := constructorBinding(someArm.Pattern); ok {
			bound := naming.ToSnake(name)
			if bound != val {
				fx.e.linef("%s := %s", fx.fresh(bound), val)
			}
		}
		fx.emitBody(someArm.Body)
	} else {
		fx.e.linef("panic(fmt.Sprintf(\"unhandled value: %%v\", %s))", val)
	}
}

// emitKeywordMatch lowers keyword arms to a switch on the scrutinee value.
func (fx *fnCtx) emitKeywordMatch(m *ast.Match) {
	fx.e.linef("switch %s {", fx.inline(m.Scrutinee))
	for _, arm := range m.Arms {
		switch p := arm.Pattern.(type) {
		case *ast.KeywordPat:
			fx.e.linef("case %q:", p.Name)
		default:
			fx.e.line("default:")
		}
		fx.e.indent++
		fx.emitBody(arm.Body)
		fx.e.indent--
	}
	if !hasCatchAllArm(m) {
		fx.e.line("default:")
		fx.e.indent++
		fx.e.linef("panic(fmt.Sprintf(\"unhandled tag: %%v\", %s))", fx.inline(m.Scrutinee))
		fx.e.indent--
	}
	fx.e.line("}")
}

// emitGenericMatch is the fallback for arm shapes the translator does not
// model: every arm is emitted as an unconditional case, so the first arm is
// always taken; arm patterns are not tested.
func (fx *fnCtx) emitGenericMatch(m *ast.Match) {
	val := fx.fresh("scrutinee")
	fx.e.linef("%s := %s", val, fx.inline(m.Scrutinee))
	fx.e.linef("_ = %s", val)
	fx.e.line("switch {")
	for i, arm := range m.Arms {
		fx.e.linef("case true: // arm %d", i)
		fx.e.indent++
		fx.emitBody(arm.Body)
		fx.e.indent--
	}
	fx.e.line("}")
	fx.e.linef("panic(\"non-exhaustive match\")")
}

func hasCatchAllArm(m *ast.Match) bool {
	for _, arm := range m.Arms {
		switch arm.Pattern.(type) {
		case *ast.WildcardPat, *ast.VarPat:
			return true
		}
	}
	return false
}

// constructorBinding returns the variable bound by a single-argument
// constructor pattern like (ok x) or (some u).
func constructorBinding(p ast.Pattern) (string, bool) {
	cp, ok := p.(*ast.ConstructorPat)
	if !ok || len(cp.Args) == 0 {
		return "", false
	}
	v, ok := cp.Args[0].(*ast.VarPat)
	if !ok {
		return "", false
	}
	return v.Name, true
}

// errKeyword returns the keyword tag of an (err :tag) pattern.
func errKeyword(p ast.Pattern) (string, bool) {
	cp, ok := p.(*ast.ConstructorPat)
	if !ok || len(cp.Args) == 0 {
		return "", false
	}
	kw, ok := cp.Args[0].(*ast.KeywordPat)
	if !ok {
		return "", false
	}
	return kw.Name, true
}

// inline renders an expression in value position.
func (fx *fnCtx) inline(e ast.Expr) string {
	switch ex := e.(type) {
	case *ast.Ref:
		if mb, ok := fx.bindings[ex.Name]; ok {
			return mb.valueVar
		}
		return naming.ToSnake(ex.Name)
	case *ast.KeywordLit:
		return fmt.Sprintf("%q", ex.Name)
	case *ast.StringLit:
		return fmt.Sprintf("%q", ex.Value)
	case *ast.IntLit:
		return fmt.Sprintf("%d", ex.Value)
	case *ast.BoolLit:
		return fmt.Sprintf("%t", ex.Value)
	case *ast.WildcardExpr:
		return "_"
	case *ast.OkExpr:
		return fx.okValue(ex)
	case *ast.ErrExpr:
		return fx.errValue(ex)
	case *ast.Call:
		rendered, _ := fx.target.renderCall(fx, ex.Callee, ex.Args)
		return rendered
	case *ast.FieldAccess:
		return fx.inline(ex.Base) + "." + naming.ToPascal(ex.Field)
	case *ast.MapLit:
		var b strings.Builder
		b.WriteString("map[string]any{")
		for i, entry := range ex.Entries {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%q: %s", entry.Key, fx.inline(entry.Value))
		}
		b.WriteString("}")
		return b.String()
	case *ast.Let, *ast.Match, *ast.IfExpr:
		// Statement-only forms in value position become a self-invoked
		// closure whose leaves return.
		sub := &emitter{indent: fx.e.indent + 1}
		subCtx := *fx
		subCtx.e = sub
		subCtx.emitBody(e)
		var b strings.Builder
		b.WriteString("func() any {\n")
		b.WriteString(sub.String())
		b.WriteString(strings.Repeat("\t", fx.e.indent))
		b.WriteString("}()")
		return b.String()
	}
	return "nil"
}

// okValue renders an (ok value) constructor using the enclosing function's
// result type.
func (fx *fnCtx) okValue(ex *ast.OkExpr) string {
	name := naming.ToPascal(fx.fn.Name) + "Ok"
	if ref, ok := ex.Value.(*ast.Ref); ok && ref.Name == "Unit" {
		return name + "{}"
	}
	return fmt.Sprintf("%s{Value: %s}", name, fx.inline(ex.Value))
}

// errValue renders an (err :tag payload) constructor. Map payloads declared
// on the variant become named fields.
func (fx *fnCtx) errValue(ex *ast.ErrExpr) string {
	name := naming.ToPascal(fx.fn.Name) + naming.ToPascal(ex.Tag)
	decl := findVariant(fx.fn, ex.Tag)
	if ref, ok := ex.Payload.(*ast.Ref); ok && ref.Name == "Unit" {
		return name + "{}"
	}
	if decl != nil && ast.IsUnit(decl.Payload) {
		return name + "{}"
	}
	if decl != nil {
		if _, ok := decl.Payload.(*ast.MapType); ok {
			if ml, ok := ex.Payload.(*ast.MapLit); ok {
				var b strings.Builder
				b.WriteString(name + "{")
				for i, entry := range ml.Entries {
					if i > 0 {
						b.WriteString(", ")
					}
					fmt.Fprintf(&b, "%s: %s", naming.ToPascal(entry.Key), fx.inline(entry.Value))
				}
				b.WriteString("}")
				return b.String()
			}
		}
	}
	return fmt.Sprintf("%s{Value: %s}", name, fx.inline(ex.Payload))
}

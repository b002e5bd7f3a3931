package lower

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goa.design/pct/ast"
	"goa.design/pct/lexer"
	"goa.design/pct/sexpr"
)

func lowerModule(t *testing.T, input string) (*ast.Module, *Lowerer) {
	t.Helper()
	toks, err := lexer.Tokenize(input)
	require.NoError(t, err)
	exprs, err := sexpr.Read(toks)
	require.NoError(t, err)
	require.NotEmpty(t, exprs)
	lw := New()
	m, err := lw.Module(exprs[0])
	require.NoError(t, err)
	return m, lw
}

const fullExample = `;; user service module
(module user-service
  :provenance {req: "SPEC-2024-0042", author: "agent", created: "2024-03-01", test: ["TEST-1" "TEST-2"]}
  :version 7
  :parent-version 6
  :delta (narrowed create-user "tightened validation")

  (type User
    :invariants [(> (strlen name) 0) (matches email #/.+@.+\..+/)]
    (field id UUID :immutable :generated)
    (field name String :min-len 1 :max-len 200)
    (field email String :format :email :unique-within user-store))

  (effect-set db-read  [:reads user-store])
  (effect-set db-write [:writes user-store :reads user-store])
  (effect-set http-respond [:sends http-response])

  (fn get-user-by-id
    :provenance {req: "SPEC-2024-0042"}
    :effects [db-read http-respond]
    :total true
    :latency-budget 50ms
    :called-by [api-router/handle-request]
    (param id UUID :source http-path-param :validated-at boundary)
    (returns (union
      (ok User :http 200 :serialize :json)
      (err :not-found {:id id} :http 404)
      (err :invalid-id {:id id} :http 400)))
    (let [validated-id (validate-uuid id)]
      (match validated-id
        (err _)   (err :invalid-id {:id id})
        (ok uuid) (match (query user-store {:id uuid})
          (none)   (err :not-found {:id uuid})
          (some u) (ok u)))))

  (fn create-user
    :effects [db-write http-respond]
    :total true
    :idempotency-key (hash (. input email))
    (param input {:name String :email String} :source http-body :content-type :json :validated-at boundary)
    (returns (union
      (ok User :http 201)
      (err :validation-failed (list ValidationError) :http 422)
      (err :duplicate-email {:email String} :http 409)))
    (let [errors (validate-against User input)]
      (if (non-empty? errors)
        (err :validation-failed errors)
        (match (insert! user-store (build User input))
          (err :unique-violation) (err :duplicate-email {:email (. input email)})
          (ok entity)             (ok entity))))))`

func TestLowerMinimalModule(t *testing.T) {
	m, lw := lowerModule(t, "(module test-mod :version 1)")
	assert.Equal(t, "test-mod", m.Name)
	require.NotNil(t, m.Version)
	assert.Equal(t, int64(1), *m.Version)
	assert.Empty(t, m.Types)
	assert.Empty(t, m.EffectSets)
	assert.Empty(t, m.Functions)
	assert.Empty(t, lw.Diagnostics)
}

func TestLowerTypeDef(t *testing.T) {
	m, _ := lowerModule(t,
		"(module test :version 1 (type User (field id UUID :immutable :generated) (field name String :min-len 1)))")
	require.Len(t, m.Types, 1)
	td := m.Types[0]
	assert.Equal(t, "User", td.Name)
	require.Len(t, td.Fields, 2)
	assert.Equal(t, "id", td.Fields[0].Name)
	assert.True(t, td.Fields[0].Immutable)
	assert.True(t, td.Fields[0].Generated)
	assert.Equal(t, "name", td.Fields[1].Name)
	require.NotNil(t, td.Fields[1].MinLen)
	assert.Equal(t, int64(1), *td.Fields[1].MinLen)
}

func TestLowerInvariantsVerbatim(t *testing.T) {
	m, _ := lowerModule(t,
		`(module test (type User :invariants [(> (strlen name) 0) (matches email #/.+@.+\..+/)] (field name String)))`)
	require.Len(t, m.Types, 1)
	require.Len(t, m.Types[0].Invariants, 2)
	assert.Equal(t, "(> (strlen name) 0)", m.Types[0].Invariants[0].Raw)
	assert.Equal(t, `(matches email #/.+@.+\..+/)`, m.Types[0].Invariants[1].Raw)
}

func TestLowerEffectSet(t *testing.T) {
	m, _ := lowerModule(t, "(module test :version 1 (effect-set db-read [:reads user-store]))")
	require.Len(t, m.EffectSets, 1)
	es := m.EffectSets[0]
	assert.Equal(t, "db-read", es.Name)
	require.Len(t, es.Effects, 1)
	assert.Equal(t, ast.Reads, es.Effects[0].Kind)
	assert.Equal(t, "user-store", es.Effects[0].Target)
}

func TestLowerSimpleFn(t *testing.T) {
	m, _ := lowerModule(t, `(module test :version 1
		(fn get-thing
			:effects [db-read]
			:total true
			:latency-budget 50ms
			(param id UUID :source http-path-param)
			(returns (union
				(ok Thing :http 200)
				(err :not-found {:id id} :http 404)))
			(ok id)))`)
	require.Len(t, m.Functions, 1)
	fn := m.Functions[0]
	assert.Equal(t, "get-thing", fn.Name)
	assert.Equal(t, []string{"db-read"}, fn.Effects)
	assert.True(t, fn.Total)
	require.NotNil(t, fn.LatencyBudget)
	assert.Equal(t, "50ms", fn.LatencyBudget.String())
	require.Len(t, fn.Params, 1)
	assert.Equal(t, "id", fn.Params[0].Name)
	assert.Equal(t, "http-path-param", fn.Params[0].Source)
	require.Len(t, fn.Returns.Variants, 2)
	assert.True(t, fn.Returns.Variants[0].Ok)
	assert.Equal(t, "not-found", fn.Returns.Variants[1].Tag)
}

func TestLowerErrVariantDefaultsToUnit(t *testing.T) {
	m, _ := lowerModule(t, `(module test
		(fn f :effects []
			(param id UUID)
			(returns (union (ok UUID :http 200) (err :gone :http 410)))
			(ok id)))`)
	v := m.Functions[0].Returns.Variants[1]
	assert.True(t, ast.IsUnit(v.Payload))
	require.NotNil(t, v.HTTPStatus)
	assert.Equal(t, int64(410), *v.HTTPStatus)
}

func TestLowerUnknownTopLevelFormWarns(t *testing.T) {
	m, lw := lowerModule(t, "(module test :version 1 (mystery a b))")
	assert.Empty(t, m.Types)
	require.Len(t, lw.Diagnostics, 1)
	assert.Equal(t, "unknown top-level form 'mystery'", lw.Diagnostics[0].Message)
	assert.NotNil(t, lw.Diagnostics[0].Span)
}

func TestLowerUnknownKeywordPreserved(t *testing.T) {
	m, _ := lowerModule(t, `(module test :owner "platform" :version 2)`)
	require.NotNil(t, m.Version)
	require.Len(t, m.Extra, 1)
	assert.Equal(t, "owner", m.Extra[0].Key)
	ms, ok := m.Extra[0].Value.(*ast.MetaString)
	require.True(t, ok)
	assert.Equal(t, "platform", ms.Value)
}

func TestLowerReturnsRequiresUnion(t *testing.T) {
	toks, err := lexer.Tokenize(`(module test (fn f :effects [] (param id UUID) (returns (ok UUID)) (ok id)))`)
	require.NoError(t, err)
	exprs, err := sexpr.Read(toks)
	require.NoError(t, err)
	_, err = New().Module(exprs[0])
	require.Error(t, err)
	assert.Contains(t, err.Error(), "union")
}

func TestLowerLetBindingsMustBeVector(t *testing.T) {
	toks, err := lexer.Tokenize(`(module test (fn f :effects [] (param id UUID)
		(returns (union (ok UUID))) (let (x 1) x)))`)
	require.NoError(t, err)
	exprs, err := sexpr.Read(toks)
	require.NoError(t, err)
	_, err = New().Module(exprs[0])
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vector")
}

func TestLowerFullExample(t *testing.T) {
	m, lw := lowerModule(t, fullExample)
	assert.Empty(t, lw.Diagnostics)

	assert.Equal(t, "user-service", m.Name)
	require.NotNil(t, m.Version)
	assert.Equal(t, int64(7), *m.Version)
	require.NotNil(t, m.ParentVersion)
	assert.Equal(t, int64(6), *m.ParentVersion)
	require.NotNil(t, m.Provenance)
	assert.Equal(t, "SPEC-2024-0042", m.Provenance.Req)
	assert.Equal(t, []string{"TEST-1", "TEST-2"}, m.Provenance.Tests)
	require.NotNil(t, m.Delta)
	assert.Equal(t, "narrowed", m.Delta.Operation)
	assert.Equal(t, "create-user", m.Delta.Target)

	require.Len(t, m.Types, 1)
	assert.Len(t, m.Types[0].Fields, 3)
	assert.Len(t, m.Types[0].Invariants, 2)
	assert.Equal(t, "user-store", m.Types[0].Fields[2].UniqueWithin)
	assert.Equal(t, "email", m.Types[0].Fields[2].Format)

	assert.Len(t, m.EffectSets, 3)

	require.Len(t, m.Functions, 2)
	get := m.Functions[0]
	assert.Equal(t, "get-user-by-id", get.Name)
	assert.True(t, get.Total)
	assert.Equal(t, []string{"db-read", "http-respond"}, get.Effects)
	assert.Len(t, get.Returns.Variants, 3)
	assert.Equal(t, []string{"api-router/handle-request"}, get.CalledBy)

	create := m.Functions[1]
	assert.Equal(t, "create-user", create.Name)
	assert.NotNil(t, create.IdempotencyKey)
	require.Len(t, create.Params, 1)
	mt, ok := create.Params[0].Type.(*ast.MapType)
	require.True(t, ok)
	assert.Len(t, mt.Fields, 2)
	assert.Equal(t, "json", create.Params[0].ContentType)
}

func TestLowerIdempotence(t *testing.T) {
	toks, err := lexer.Tokenize(fullExample)
	require.NoError(t, err)
	exprs, err := sexpr.Read(toks)
	require.NoError(t, err)
	m1, err := New().Module(exprs[0])
	require.NoError(t, err)
	m2, err := New().Module(exprs[0])
	require.NoError(t, err)
	assert.Equal(t, m1, m2)
}

func TestLowerBodyExpressions(t *testing.T) {
	m, _ := lowerModule(t, fullExample)
	body := m.Functions[0].Body
	let, ok := body.(*ast.Let)
	require.True(t, ok)
	require.Len(t, let.Bindings, 1)
	assert.Equal(t, "validated-id", let.Bindings[0].Name)
	match, ok := let.Body.(*ast.Match)
	require.True(t, ok)
	require.Len(t, match.Arms, 2)
	first, ok := match.Arms[0].Pattern.(*ast.ConstructorPat)
	require.True(t, ok)
	assert.Equal(t, "err", first.Name)
	require.Len(t, first.Args, 1)
	_, ok = first.Args[0].(*ast.WildcardPat)
	assert.True(t, ok)
}

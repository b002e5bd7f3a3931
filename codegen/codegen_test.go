package codegen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goa.design/pct/ast"
	"goa.design/pct/lexer"
	"goa.design/pct/lower"
	"goa.design/pct/sexpr"
)

const moduleSource = `(module user-service
  :provenance {req: "SPEC-2024-0042", author: "agent"}
  :version 7

  (type User
    :invariants [(> (strlen name) 0)]
    (field id UUID :immutable :generated)
    (field name String :min-len 1 :max-len 200)
    (field email String :format :email :unique-within user-store))

  (effect-set db-read  [:reads user-store])
  (effect-set db-write [:writes user-store :reads user-store])
  (effect-set http-respond [:sends http-response])

  (fn get-user-by-id
    :effects [db-read http-respond]
    :total true
    :latency-budget 50ms
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
    (param input {:name String :email String} :source http-body :content-type :json)
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

func compile(t *testing.T, src string) *ast.Module {
	t.Helper()
	toks, err := lexer.Tokenize(src)
	require.NoError(t, err)
	exprs, err := sexpr.Read(toks)
	require.NoError(t, err)
	m, err := lower.New().Module(exprs[0])
	require.NoError(t, err)
	return m
}

func TestGenerateHeaderOnlyModule(t *testing.T) {
	m := compile(t, "(module m :version 1)")
	out := NewGenerator().Generate(m)
	assert.Contains(t, out, "// Code generated from pct module m. DO NOT EDIT.")
	assert.Contains(t, out, "// Version: 1")
	assert.Contains(t, out, "package m")
	assert.NotContains(t, out, "type ")
}

func TestGenerateStruct(t *testing.T) {
	m := compile(t, "(module test :version 1 (type User (field id UUID :immutable) (field name String :min-len 1 :max-len 200)))")
	out := NewGenerator().Generate(m)
	assert.Contains(t, out, "type User struct {")
	assert.Contains(t, out, "Id string")
	assert.Contains(t, out, "Name string")
	assert.Contains(t, out, "func (x User) Validate() []string {")
	assert.Contains(t, out, "if len(x.Name) < 1")
	assert.Contains(t, out, "if len(x.Name) > 200")
}

func TestGenerateEffectInterface(t *testing.T) {
	m := compile(t, "(module test :version 1 (effect-set db-read [:reads user-store]))")
	out := NewGenerator().Generate(m)
	assert.Contains(t, out, "type DbRead interface {")
	assert.Contains(t, out, "QueryUserStore(query UserStoreQuery) (UserStoreItem, bool)")
}

func TestGenerateSendEffect(t *testing.T) {
	m := compile(t, "(module test (effect-set http-respond [:sends http-response]))")
	out := NewGenerator().Generate(m)
	assert.Contains(t, out, "type HttpRespond interface {")
	assert.Contains(t, out, "SendHttpResponse(payload []byte)")
}

func TestGenerateResultUnion(t *testing.T) {
	m := compile(t, `(module test :version 1
		(fn get-thing
			:effects []
			:total true
			(param id UUID)
			(returns (union
				(ok UUID :http 200)
				(err :not-found {:id id} :http 404)))
			(ok id)))`)
	out := NewGenerator().Generate(m)
	assert.Contains(t, out, "type GetThingResult interface {")
	assert.Contains(t, out, "HTTPStatus() int")
	assert.Contains(t, out, "type GetThingOk struct{ Value string }")
	assert.Contains(t, out, "type GetThingNotFound struct {")
	assert.Contains(t, out, "func (GetThingOk) HTTPStatus() int { return 200 }")
	assert.Contains(t, out, "func (GetThingNotFound) HTTPStatus() int { return 404 }")
}

func TestGenerateDefaultStatuses(t *testing.T) {
	m := compile(t, `(module test
		(fn f :effects []
			(param id UUID)
			(returns (union (ok UUID) (err :oops)))
			(ok id)))`)
	out := NewGenerator().Generate(m)
	assert.Contains(t, out, "func (FOk) HTTPStatus() int { return 200 }")
	assert.Contains(t, out, "func (FOops) HTTPStatus() int { return 500 }")
}

func TestGenerateFunctionSignature(t *testing.T) {
	m := compile(t, moduleSource)
	out := NewGenerator().Generate(m)
	assert.Contains(t, out, "func GetUserById(ctx interface{ DbRead; HttpRespond }, id string) GetUserByIdResult {")
	assert.Contains(t, out, "func CreateUser(ctx interface{ DbWrite; HttpRespond }, input struct{ Name string; Email string }) CreateUserResult {")
}

func TestGenerateDeterminism(t *testing.T) {
	m1 := compile(t, moduleSource)
	m2 := compile(t, moduleSource)
	assert.Equal(t, NewGenerator().Generate(m1), NewGenerator().Generate(m2))
	assert.Equal(t, NewRuntimeGenerator().Generate(m1), NewRuntimeGenerator().Generate(m2))
}

func TestRuntimeHeaderImports(t *testing.T) {
	m := compile(t, "(module test :version 1)")
	out := NewRuntimeGenerator().Generate(m)
	assert.Contains(t, out, `"goa.design/pct/runtime"`)
	assert.Contains(t, out, `"fmt"`)
}

func TestRuntimeTypeImpls(t *testing.T) {
	m := compile(t, moduleSource)
	out := NewRuntimeGenerator().Generate(m)
	assert.Contains(t, out, "func (x User) ID() string { return x.Id }")
	assert.Contains(t, out, "func (x User) UniqueFields() []runtime.UniqueField {")
	assert.Contains(t, out, `{Name: "email", Value: x.Email}`)
	assert.Contains(t, out, "func (x User) Validate() []runtime.ValidationError {")
	assert.Contains(t, out, "func ValidateUserInput(input CreateUserInput) []runtime.ValidationError {")
}

func TestRuntimeFromInputMintsUUID(t *testing.T) {
	m := compile(t, moduleSource)
	out := NewRuntimeGenerator().Generate(m)
	assert.Contains(t, out, "func UserFromInput(input CreateUserInput) User {")
	assert.Contains(t, out, "Id: runtime.NewID(),")
	assert.Contains(t, out, "Name: input.Name,")
}

func TestRuntimeInputStruct(t *testing.T) {
	m := compile(t, moduleSource)
	out := NewRuntimeGenerator().Generate(m)
	assert.Contains(t, out, "type CreateUserInput struct {")
	assert.Contains(t, out, "Name string `json:\"name\"`")
	assert.Contains(t, out, "Email string `json:\"email\"`")
}

func TestRuntimeStoreParams(t *testing.T) {
	m := compile(t, moduleSource)
	out := NewRuntimeGenerator().Generate(m)
	// A read-only dependency takes the narrower contract; any Writes effect
	// promotes it to the full store.
	assert.Contains(t, out, "func GetUserById(store runtime.ReadStore[User], id string) GetUserByIdResult {")
	assert.Contains(t, out, "func CreateUser(store runtime.Store[User], input CreateUserInput) CreateUserResult {")
}

func TestRuntimeWritesPromoteStoreContract(t *testing.T) {
	m := compile(t, `(module test :version 1
		(type Item (field id UUID :immutable :generated) (field name String))
		(effect-set item-read  [:reads item-store])
		(effect-set item-write [:writes item-store])
		(fn list-item
			:effects [item-read]
			(param id UUID :source http-path-param)
			(returns (union (ok Item :http 200) (err :not-found {:id id} :http 404)))
			(match (query item-store {:id id})
				(none)   (err :not-found {:id id})
				(some i) (ok i)))
		(fn save-item
			:effects [item-read item-write]
			(param input {:name String})
			(returns (union (ok Item :http 201)))
			(match (insert! item-store (build Item input))
				(err :unique-violation) (err :duplicate {:name (. input name)})
				(ok entity)             (ok entity))))`)
	out := NewRuntimeGenerator().Generate(m)
	assert.Contains(t, out, "func ListItem(store runtime.ReadStore[Item], id string) ListItemResult {")
	// The read and write effects reference the same store; the write wins.
	assert.Contains(t, out, "func SaveItem(store runtime.Store[Item], input SaveItemInput) SaveItemResult {")
	assert.NotContains(t, out, "ReadStore[Item], input")
}

func TestRuntimeBuiltinRewrites(t *testing.T) {
	m := compile(t, moduleSource)
	out := NewRuntimeGenerator().Generate(m)
	assert.Contains(t, out, "runtime.ValidateUUID(id)")
	assert.Contains(t, out, "store.QueryByID(uuid)")
	assert.Contains(t, out, "store.Insert(UserFromInput(input))")
	assert.Contains(t, out, "ValidateUserInput(input)")
	assert.Contains(t, out, "runtime.NonEmpty(errors)")
}

func TestRuntimeErrCatchAllPanics(t *testing.T) {
	m := compile(t, moduleSource)
	out := NewRuntimeGenerator().Generate(m)
	assert.Contains(t, out, "runtime.IsUniqueViolation(")
	assert.Contains(t, out, `panic(fmt.Sprintf("unexpected store error: %v"`)
}

func TestRuntimeMapPayloadVariants(t *testing.T) {
	m := compile(t, moduleSource)
	out := NewRuntimeGenerator().Generate(m)
	// {:id id} resolves id against the raw UUID param, surfacing a string.
	assert.Contains(t, out, "type GetUserByIdNotFound struct {")
	assert.Contains(t, out, "Id string")
	assert.Contains(t, out, "GetUserByIdNotFound{Id: uuid}")
	assert.Contains(t, out, "CreateUserDuplicateEmail{Email: input.Email}")
}

func TestRuntimeReadBodyShape(t *testing.T) {
	m := compile(t, moduleSource)
	out := NewRuntimeGenerator().Generate(m)
	assert.Contains(t, out, "validated_id, validated_idErr := runtime.ValidateUUID(id)")
	assert.Contains(t, out, "if validated_idErr != nil {")
	assert.Contains(t, out, "return GetUserByIdInvalidId{Id: id}")
	assert.Contains(t, out, "if !ok {")
	assert.Contains(t, out, "return GetUserByIdOk{Value: u}")
}

func TestGeneratedOutputBalancedBraces(t *testing.T) {
	m := compile(t, moduleSource)
	for _, out := range []string{NewGenerator().Generate(m), NewRuntimeGenerator().Generate(m)} {
		assert.Equal(t, strings.Count(out, "{"), strings.Count(out, "}"))
	}
}

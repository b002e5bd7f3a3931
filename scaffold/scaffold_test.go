package scaffold

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goa.design/pct/ast"
	"goa.design/pct/lexer"
	"goa.design/pct/lower"
	"goa.design/pct/sexpr"
)

const moduleSource = `(module user-service
  :version 7

  (type User
    (field id UUID :immutable :generated)
    (field name String :min-len 1 :max-len 200)
    (field email String :format :email :unique-within user-store))

  (effect-set db-read  [:reads user-store])
  (effect-set db-write [:writes user-store :reads user-store])
  (effect-set http-respond [:sends http-response])

  (fn get-user-by-id
    :effects [db-read http-respond]
    :total true
    (param id UUID :source http-path-param :validated-at boundary)
    (returns (union
      (ok User :http 200)
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

func loadModule(t *testing.T, src string) *ast.Module {
	t.Helper()
	toks, err := lexer.Tokenize(src)
	require.NoError(t, err)
	exprs, err := sexpr.Read(toks)
	require.NoError(t, err)
	m, err := lower.New().Module(exprs[0])
	require.NoError(t, err)
	return m
}

func findRoute(table *RouteTable, kind RouteKind) *Route {
	for i := range table.Routes {
		if table.Routes[i].Kind == kind {
			return &table.Routes[i]
		}
	}
	return nil
}

func TestCollectStores(t *testing.T) {
	table := Analyze(loadModule(t, moduleSource))
	require.Len(t, table.Stores, 1)
	s := table.Stores[0]
	assert.Equal(t, "User", s.TypeName)
	assert.Equal(t, "users", s.Plural)
	assert.Equal(t, "user", s.Singular)
	assert.True(t, s.NeedsMut)
}

func TestImplicitRoutes(t *testing.T) {
	table := Analyze(loadModule(t, `(module test :version 1
		(type User (field id UUID :immutable :generated) (field name String))
		(effect-set db-read [:reads user-store]))`))
	assert.Equal(t, "test", table.ModuleName)

	list := findRoute(table, ListRoute)
	require.NotNil(t, list)
	assert.Equal(t, "/users", list.Path)
	assert.Equal(t, "/api/users", list.APIPath)

	newForm := findRoute(table, NewFormRoute)
	require.NotNil(t, newForm)
	assert.Equal(t, "/users/new", newForm.Path)

	del := findRoute(table, DeleteRoute)
	require.NotNil(t, del)
	assert.Equal(t, "/users/{id}/delete", del.Path)
	assert.Equal(t, POST, del.Method)
}

func TestShowRoute(t *testing.T) {
	table := Analyze(loadModule(t, moduleSource))
	show := findRoute(table, ShowRoute)
	require.NotNil(t, show)
	assert.Equal(t, "/users/{id}", show.Path)
	assert.Equal(t, GET, show.Method)
	assert.Equal(t, "/api/users/{id}", show.APIPath)
	require.NotNil(t, show.Function)
	assert.Equal(t, "GetUserById", show.Function.FnName)
	assert.Len(t, show.Function.Variants, 3)
}

func TestCreateRoute(t *testing.T) {
	table := Analyze(loadModule(t, moduleSource))
	create := findRoute(table, CreateRoute)
	require.NotNil(t, create)
	assert.Equal(t, "/users", create.Path)
	assert.Equal(t, POST, create.Method)
	assert.Equal(t, "/api/users", create.APIPath)
	require.NotNil(t, create.Function)
	assert.Equal(t, "CreateUser", create.Function.FnName)
	assert.Equal(t, "CreateUserInput", create.Function.InputStruct)
	assert.Len(t, create.FormFields, 2)
}

func TestFormFieldInference(t *testing.T) {
	table := Analyze(loadModule(t, moduleSource))
	newForm := findRoute(table, NewFormRoute)
	require.NotNil(t, newForm)
	require.Len(t, newForm.FormFields, 2)
	assert.Equal(t, "name", newForm.FormFields[0].Name)
	assert.Equal(t, "text", newForm.FormFields[0].InputType)
	require.NotNil(t, newForm.FormFields[0].MinLen)
	assert.Equal(t, int64(1), *newForm.FormFields[0].MinLen)
	assert.Equal(t, "email", newForm.FormFields[1].Name)
	assert.Equal(t, "email", newForm.FormFields[1].InputType)
}

func TestRouteVariants(t *testing.T) {
	table := Analyze(loadModule(t, moduleSource))
	show := findRoute(table, ShowRoute)
	require.NotNil(t, show)
	vs := show.Function.Variants

	assert.True(t, vs[0].IsOk)
	assert.Equal(t, int64(200), vs[0].HTTPStatus)
	assert.Equal(t, TypePayload, vs[0].Payload.Kind)
	assert.Equal(t, "User", vs[0].Payload.Type)

	assert.False(t, vs[1].IsOk)
	assert.Equal(t, "not-found", vs[1].Tag)
	assert.Equal(t, int64(404), vs[1].HTTPStatus)
	assert.Equal(t, "GetUserByIdNotFound", vs[1].TypeName)
	assert.Equal(t, MapPayload, vs[1].Payload.Kind)
}

func TestScaffoldProducesAllFiles(t *testing.T) {
	out := Scaffold(loadModule(t, moduleSource))
	assert.NotEmpty(t, out.GoMod)
	assert.NotEmpty(t, out.MainGo)
	assert.NotEmpty(t, out.Handlers)
	assert.NotEmpty(t, out.HTML)
	assert.Contains(t, out.ModuleIndex, "package user_service")
	assert.Equal(t, filepath.Join("gen", "user_service"), out.DomainDir)
}

func TestManifestContents(t *testing.T) {
	out := Scaffold(loadModule(t, moduleSource))
	assert.Contains(t, out.GoMod, "module user-service-web")
	assert.Contains(t, out.GoMod, "goa.design/pct")
}

func TestMainWiresRoutesAndState(t *testing.T) {
	out := Scaffold(loadModule(t, moduleSource))
	assert.Contains(t, out.MainGo, "type appState struct {")
	assert.Contains(t, out.MainGo, "userMu    sync.Mutex")
	assert.Contains(t, out.MainGo, "userStore *runtime.InMemoryStore[domain.User]")
	assert.Contains(t, out.MainGo, `mux.HandleFunc("GET /users", app.listUsers)`)
	assert.Contains(t, out.MainGo, `mux.HandleFunc("GET /users/{id}", app.showUser)`)
	assert.Contains(t, out.MainGo, `mux.HandleFunc("POST /users", app.createUserHandler)`)
	assert.Contains(t, out.MainGo, `mux.HandleFunc("POST /users/{id}/delete", app.deleteUser)`)
	assert.Contains(t, out.MainGo, `mux.HandleFunc("GET /api/users", app.apiListUsers)`)
	assert.Contains(t, out.MainGo, `mux.HandleFunc("POST /api/users", app.apiCreateUser)`)
	assert.Contains(t, out.MainGo, `mux.HandleFunc("GET /api/users/{id}", app.apiGetUser)`)
	assert.Contains(t, out.MainGo, "User Service listening on http://localhost:3000")
}

func TestHandlersLockPerInvocation(t *testing.T) {
	out := Scaffold(loadModule(t, moduleSource))
	assert.Contains(t, out.Handlers, "func (s *appState) listUsers(")
	assert.Contains(t, out.Handlers, "func (s *appState) showUser(")
	assert.Contains(t, out.Handlers, "func (s *appState) createUserHandler(")
	assert.Contains(t, out.Handlers, "s.userMu.Lock()")
	assert.Contains(t, out.Handlers, "defer s.userMu.Unlock()")
	assert.Contains(t, out.Handlers, "domain.GetUserById(s.userStore, id)")
	assert.Contains(t, out.Handlers, "domain.CreateUser(s.userStore, input)")
	assert.Contains(t, out.Handlers, "case domain.CreateUserDuplicateEmail:")
	assert.Contains(t, out.Handlers, "w.WriteHeader(res.HTTPStatus())")
}

func TestHTMLHelpers(t *testing.T) {
	out := Scaffold(loadModule(t, moduleSource))
	assert.Contains(t, out.HTML, "func htmlPage(")
	assert.Contains(t, out.HTML, "func htmlNav(")
	assert.Contains(t, out.HTML, "func htmlTable(")
	assert.Contains(t, out.HTML, "func htmlForm(")
	assert.Contains(t, out.HTML, "func htmlAlert(")
	assert.Contains(t, out.HTML, "https://cdn.tailwindcss.com")
	assert.Contains(t, out.HTML, "New User")
}

func TestWriteToDisk(t *testing.T) {
	dir := t.TempDir()
	out := Scaffold(loadModule(t, moduleSource))
	require.NoError(t, out.Write(context.Background(), dir))

	for _, f := range []string{"go.mod", "main.go", "handlers.go", "html.go", filepath.Join("gen", "user_service", "doc.go")} {
		_, err := os.Stat(filepath.Join(dir, f))
		assert.NoError(t, err, f)
	}
}

func TestWriteSkipsExistingManifest(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte("# custom\n"), 0o644))

	out := Scaffold(loadModule(t, moduleSource))
	require.NoError(t, out.Write(context.Background(), dir))

	content, err := os.ReadFile(filepath.Join(dir, "go.mod"))
	require.NoError(t, err)
	assert.Equal(t, "# custom\n", string(content))
}

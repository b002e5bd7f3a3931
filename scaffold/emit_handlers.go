package scaffold

import (
	"fmt"
	"strings"

	"goa.design/pct/codegen/naming"
)

// emitHandlers renders the handlers file: HTML handlers that lock the
// route's store for the duration of the invocation and render pages through
// the shared helpers, plus JSON siblings that map each result variant to its
// HTTP status.
func emitHandlers(table *RouteTable) string {
	var w lineWriter

	w.line("package main")
	w.line("")
	w.line("import (")
	w.indent++
	w.line(`"encoding/json"`)
	w.line(`"fmt"`)
	w.line(`"net/http"`)
	w.line("")
	w.linef("domain %q", domainImport(table))
	w.indent--
	w.line(")")

	w.line("")
	w.line("// ─── HTML handlers ───")
	for _, r := range table.Routes {
		w.line("")
		switch r.Kind {
		case ListRoute:
			emitListHandler(&w, r, table)
		case NewFormRoute:
			emitNewFormHandler(&w, r, table)
		case CreateRoute:
			emitCreateHandler(&w, r, table)
		case ShowRoute:
			emitShowHandler(&w, r, table)
		case DeleteRoute:
			emitDeleteHandler(&w, r, table)
		}
	}

	w.line("")
	w.line("// ─── JSON API handlers ───")
	for _, r := range table.Routes {
		if r.APIHandlerName == "" {
			continue
		}
		w.line("")
		switch r.Kind {
		case ListRoute:
			emitAPIListHandler(&w, r, table)
		case CreateRoute:
			emitAPICreateHandler(&w, r, table)
		case ShowRoute:
			emitAPIShowHandler(&w, r, table)
		}
	}

	return w.String()
}

// storeOf returns the StoreInfo backing a route.
func storeOf(r Route, table *RouteTable) StoreInfo {
	for _, s := range table.Stores {
		if s.TypeName == r.StoreType {
			return s
		}
	}
	return StoreInfo{TypeName: r.StoreType, Singular: strings.ToLower(r.StoreType), Plural: strings.ToLower(r.StoreType) + "s"}
}

// lockStore emits the lock-for-the-invocation preamble.
func lockStore(w *lineWriter, store StoreInfo) {
	w.linef("s.%sMu.Lock()", store.Singular)
	w.linef("defer s.%sMu.Unlock()", store.Singular)
}

func emitListHandler(w *lineWriter, r Route, table *RouteTable) {
	store := storeOf(r, table)
	title := naming.ToTitle(store.Plural)
	display := table.DisplayFields[store.TypeName]

	w.linef("func (s *appState) %s(w http.ResponseWriter, _ *http.Request) {", r.HandlerName)
	w.indent++
	lockStore(w, store)
	w.linef("items := s.%sStore.ListAll()", store.Singular)
	w.line("")
	w.line("rows := make([][]string, 0, len(items))")
	w.line("for _, item := range items {")
	w.indent++
	w.line("rows = append(rows, []string{")
	w.indent++
	w.linef("fmt.Sprintf(`<a href=\"/%s/%%s\" class=\"text-indigo-600 hover:text-indigo-800\">%%.8s</a>`, item.Id, item.Id),", store.Plural)
	for _, f := range display {
		w.linef("item.%s,", f)
	}
	w.linef("fmt.Sprintf(`<form method=\"POST\" action=\"/%s/%%s/delete\" class=\"inline\"><button type=\"submit\" class=\"text-red-600 hover:text-red-800 text-sm\">Delete</button></form>`, item.Id),", store.Plural)
	w.indent--
	w.line("})")
	w.indent--
	w.line("}")
	w.line("")

	headers := []string{`"ID"`}
	for _, f := range display {
		headers = append(headers, fmt.Sprintf("%q", naming.ToTitle(naming.ToSnake(f))))
	}
	headers = append(headers, `"Actions"`)

	w.line("var body string")
	w.line("if len(items) == 0 {")
	w.indent++
	w.linef("body = `<h1 class=\"text-2xl font-bold mb-6\">%s</h1><p class=\"text-gray-500\">No %s yet. <a href=\"/%s/new\" class=\"text-indigo-600 hover:underline\">Create one</a>.</p>`",
		title, store.Plural, store.Plural)
	w.indent--
	w.line("} else {")
	w.indent++
	w.linef("body = fmt.Sprintf(`<h1 class=\"text-2xl font-bold mb-6\">%s (%%d)</h1>%%s`, len(items), htmlTable([]string{%s}, rows))",
		title, strings.Join(headers, ", "))
	w.indent--
	w.line("}")
	w.line("")
	w.line(`w.Header().Set("Content-Type", "text/html; charset=utf-8")`)
	w.linef("fmt.Fprint(w, htmlPage(%q, body))", title)
	w.indent--
	w.line("}")
}

func emitNewFormHandler(w *lineWriter, r Route, table *RouteTable) {
	store := storeOf(r, table)
	title := naming.ToTitle(store.Singular)

	fields := make([]string, len(r.FormFields))
	for i, f := range r.FormFields {
		fields[i] = fmt.Sprintf("{%q, %q, %q}", f.Name, f.Label, f.InputType)
	}

	w.linef("func (s *appState) %s(w http.ResponseWriter, _ *http.Request) {", r.HandlerName)
	w.indent++
	w.linef("body := fmt.Sprintf(`<h1 class=\"text-2xl font-bold mb-6\">Create %s</h1>%%s`, htmlForm(%q, []formField{%s}))",
		title, "/"+store.Plural, strings.Join(fields, ", "))
	w.line(`w.Header().Set("Content-Type", "text/html; charset=utf-8")`)
	w.linef("fmt.Fprint(w, htmlPage(%q, body))", "New "+title)
	w.indent--
	w.line("}")
}

func emitCreateHandler(w *lineWriter, r Route, table *RouteTable) {
	store := storeOf(r, table)
	fn := r.Function
	if fn == nil || fn.InputStruct == "" {
		return
	}

	w.linef("func (s *appState) %s(w http.ResponseWriter, r *http.Request) {", r.HandlerName)
	w.indent++
	w.line("if err := r.ParseForm(); err != nil {")
	w.indent++
	w.line(`http.Error(w, "bad form", http.StatusBadRequest)`)
	w.line("return")
	w.indent--
	w.line("}")
	w.linef("input := domain.%s{", fn.InputStruct)
	w.indent++
	for _, f := range r.FormFields {
		w.linef("%s: r.FormValue(%q),", naming.ToPascal(f.Name), f.Name)
	}
	w.indent--
	w.line("}")
	w.line("")
	lockStore(w, store)
	w.linef("result := domain.%s(s.%sStore, input)", fn.FnName, store.Singular)
	w.line("")
	w.line("switch res := result.(type) {")
	for _, v := range fn.Variants {
		if v.IsOk {
			w.linef("case domain.%s:", v.TypeName)
			w.indent++
			if v.Payload.Kind == TypePayload {
				w.linef("http.Redirect(w, r, fmt.Sprintf(\"/%s/%%s?created=1\", res.Value.Id), http.StatusSeeOther)", store.Plural)
			} else {
				w.linef("_ = res")
				w.linef("http.Redirect(w, r, %q, http.StatusSeeOther)", "/"+store.Plural)
			}
			w.indent--
			continue
		}
		w.linef("case domain.%s:", v.TypeName)
		w.indent++
		w.line("w.WriteHeader(res.HTTPStatus())")
		w.linef("body := htmlAlert(\"error\", fmt.Sprintf(%q, res))", v.Tag+": %v")
		w.linef("fmt.Fprint(w, htmlPage(%q, body))", "Error")
		w.indent--
	}
	w.line("default:")
	w.indent++
	w.line(`http.Error(w, "unexpected result", http.StatusInternalServerError)`)
	w.indent--
	w.line("}")
	w.indent--
	w.line("}")
}

func emitShowHandler(w *lineWriter, r Route, table *RouteTable) {
	store := storeOf(r, table)
	fn := r.Function
	if fn == nil {
		return
	}
	display := table.DisplayFields[store.TypeName]
	title := naming.ToTitle(store.Singular)

	w.linef("func (s *appState) %s(w http.ResponseWriter, r *http.Request) {", r.HandlerName)
	w.indent++
	w.line(`id := r.PathValue("id")`)
	lockStore(w, store)
	w.linef("result := domain.%s(s.%sStore, id)", fn.FnName, store.Singular)
	w.line("")
	w.line("switch res := result.(type) {")
	for _, v := range fn.Variants {
		w.linef("case domain.%s:", v.TypeName)
		w.indent++
		if v.IsOk {
			w.line("rows := [][]string{")
			w.indent++
			w.line(`{"ID", res.Value.Id},`)
			for _, f := range display {
				w.linef("{%q, res.Value.%s},", naming.ToTitle(naming.ToSnake(f)), f)
			}
			w.indent--
			w.line("}")
			w.linef("body := fmt.Sprintf(`<h1 class=\"text-2xl font-bold mb-6\">%s</h1>%%s`, htmlTable([]string{\"Field\", \"Value\"}, rows))", title)
			w.line(`w.Header().Set("Content-Type", "text/html; charset=utf-8")`)
			w.linef("fmt.Fprint(w, htmlPage(%q, body))", title)
		} else {
			w.line("w.WriteHeader(res.HTTPStatus())")
			w.linef("body := htmlAlert(\"error\", fmt.Sprintf(%q, res))", v.Tag+": %v")
			w.linef("fmt.Fprint(w, htmlPage(%q, body))", "Error")
		}
		w.indent--
	}
	w.line("default:")
	w.indent++
	w.line(`http.Error(w, "unexpected result", http.StatusInternalServerError)`)
	w.indent--
	w.line("}")
	w.indent--
	w.line("}")
}

func emitDeleteHandler(w *lineWriter, r Route, table *RouteTable) {
	store := storeOf(r, table)

	w.linef("func (s *appState) %s(w http.ResponseWriter, r *http.Request) {", r.HandlerName)
	w.indent++
	w.line(`id := r.PathValue("id")`)
	lockStore(w, store)
	w.linef("s.%sStore.Delete(id)", store.Singular)
	w.linef("http.Redirect(w, r, %q, http.StatusSeeOther)", "/"+store.Plural)
	w.indent--
	w.line("}")
}

func emitAPIListHandler(w *lineWriter, r Route, table *RouteTable) {
	store := storeOf(r, table)

	w.linef("func (s *appState) %s(w http.ResponseWriter, _ *http.Request) {", r.APIHandlerName)
	w.indent++
	lockStore(w, store)
	w.line(`w.Header().Set("Content-Type", "application/json")`)
	w.linef("_ = json.NewEncoder(w).Encode(s.%sStore.ListAll())", store.Singular)
	w.indent--
	w.line("}")
}

func emitAPICreateHandler(w *lineWriter, r Route, table *RouteTable) {
	store := storeOf(r, table)
	fn := r.Function
	if fn == nil || fn.InputStruct == "" {
		return
	}

	w.linef("func (s *appState) %s(w http.ResponseWriter, r *http.Request) {", r.APIHandlerName)
	w.indent++
	w.linef("var input domain.%s", fn.InputStruct)
	w.line("if err := json.NewDecoder(r.Body).Decode(&input); err != nil {")
	w.indent++
	w.line(`http.Error(w, "invalid JSON body", http.StatusBadRequest)`)
	w.line("return")
	w.indent--
	w.line("}")
	lockStore(w, store)
	w.linef("result := domain.%s(s.%sStore, input)", fn.FnName, store.Singular)
	emitAPIResultSwitch(w, fn)
	w.indent--
	w.line("}")
}

func emitAPIShowHandler(w *lineWriter, r Route, table *RouteTable) {
	store := storeOf(r, table)
	fn := r.Function
	if fn == nil {
		return
	}

	w.linef("func (s *appState) %s(w http.ResponseWriter, r *http.Request) {", r.APIHandlerName)
	w.indent++
	w.line(`id := r.PathValue("id")`)
	lockStore(w, store)
	w.linef("result := domain.%s(s.%sStore, id)", fn.FnName, store.Singular)
	emitAPIResultSwitch(w, fn)
	w.indent--
	w.line("}")
}

// emitAPIResultSwitch maps each result variant to its HTTP status and a JSON
// body: the payload for Ok, an error object for Err.
func emitAPIResultSwitch(w *lineWriter, fn *FnRoute) {
	w.line("")
	w.line(`w.Header().Set("Content-Type", "application/json")`)
	w.line("switch res := result.(type) {")
	for _, v := range fn.Variants {
		w.linef("case domain.%s:", v.TypeName)
		w.indent++
		w.line("w.WriteHeader(res.HTTPStatus())")
		if v.IsOk {
			w.line("_ = json.NewEncoder(w).Encode(res.Value)")
		} else {
			switch v.Payload.Kind {
			case UnitPayload:
				w.linef("_ = json.NewEncoder(w).Encode(map[string]any{\"error\": %q})", v.Tag)
			default:
				w.linef("_ = json.NewEncoder(w).Encode(map[string]any{\"error\": %q, \"detail\": fmt.Sprintf(\"%%v\", res)})", v.Tag)
			}
		}
		w.indent--
	}
	w.line("default:")
	w.indent++
	w.line(`http.Error(w, "unexpected result", http.StatusInternalServerError)`)
	w.indent--
	w.line("}")
}

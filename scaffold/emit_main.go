package scaffold

import (
	"goa.design/pct/codegen/naming"
)

// emitMain renders the generated project's entry point: the shared
// application state with one in-memory store and one mutex per store, and
// the route mux.
func emitMain(table *RouteTable) string {
	var w lineWriter

	w.linef("// Command %s serves the scaffolded web application.", webModule(table))
	w.line("package main")
	w.line("")
	w.line("import (")
	w.indent++
	w.line(`"log"`)
	w.line(`"net/http"`)
	w.line(`"sync"`)
	w.line("")
	w.line(`"goa.design/pct/runtime"`)
	w.line("")
	w.linef("domain %q", domainImport(table))
	w.indent--
	w.line(")")
	w.line("")

	// AppState: one store and one lock per store type. Handlers hold the
	// lock for the duration of one invocation.
	w.line("type appState struct {")
	w.indent++
	for _, store := range table.Stores {
		w.linef("%sMu    sync.Mutex", store.Singular)
		w.linef("%sStore *runtime.InMemoryStore[domain.%s]", store.Singular, store.TypeName)
	}
	w.indent--
	w.line("}")
	w.line("")

	w.line("func main() {")
	w.indent++
	w.line("app := &appState{")
	w.indent++
	for _, store := range table.Stores {
		w.linef("%sStore: runtime.NewInMemoryStore[domain.%s](),", store.Singular, store.TypeName)
	}
	w.indent--
	w.line("}")
	w.line("")
	w.line("mux := http.NewServeMux()")

	// Root shows the first list page.
	for _, r := range table.Routes {
		if r.Kind == ListRoute {
			w.linef(`mux.HandleFunc("GET /{$}", app.%s)`, r.HandlerName)
			break
		}
	}
	for _, r := range table.Routes {
		w.linef("mux.HandleFunc(%q, app.%s)", r.Method.String()+" "+r.Path, r.HandlerName)
	}
	for _, r := range table.Routes {
		if r.APIPath == "" || r.APIHandlerName == "" {
			continue
		}
		w.linef("mux.HandleFunc(%q, app.%s)", r.Method.String()+" "+r.APIPath, r.APIHandlerName)
	}
	w.line("")
	w.linef(`log.Println("%s listening on http://localhost:3000")`, naming.ToTitle(table.ModuleName))
	w.linef(`log.Fatal(http.ListenAndServe(":3000", mux))`)
	w.indent--
	w.line("}")

	return w.String()
}

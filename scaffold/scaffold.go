package scaffold

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"goa.design/clue/log"

	"goa.design/pct/ast"
)

// Output holds every generated scaffold file.
type Output struct {
	GoMod    string
	MainGo   string
	Handlers string
	HTML     string
	// ModuleIndex is the doc file exposing the generated domain package.
	ModuleIndex string
	// DomainDir is the relative directory the domain code belongs in,
	// e.g. "gen/user_service".
	DomainDir string
}

// Scaffold analyzes the module and renders all scaffold files.
func Scaffold(m *ast.Module) *Output {
	table := Analyze(m)
	return &Output{
		GoMod:       emitManifest(table),
		MainGo:      emitMain(table),
		Handlers:    emitHandlers(table),
		HTML:        emitHTML(table),
		ModuleIndex: emitModuleIndex(table),
		DomainDir:   filepath.Join("gen", table.ModuleName),
	}
}

// Write writes the scaffold under dir. An existing go.mod is never
// overwritten, preserving user edits; every other file is rewritten
// unconditionally.
func (o *Output) Write(ctx context.Context, dir string) error {
	domainDir := filepath.Join(dir, o.DomainDir)
	if err := os.MkdirAll(domainDir, 0o755); err != nil {
		return fmt.Errorf("create scaffold directories: %w", err)
	}

	goModPath := filepath.Join(dir, "go.mod")
	if _, err := os.Stat(goModPath); err == nil {
		log.Printf(ctx, "skipped %s (already exists)", goModPath)
	} else {
		if err := os.WriteFile(goModPath, []byte(o.GoMod), 0o644); err != nil {
			return fmt.Errorf("write go.mod: %w", err)
		}
		log.Printf(ctx, "created %s", goModPath)
	}

	files := []struct {
		path    string
		content string
	}{
		{filepath.Join(dir, "main.go"), o.MainGo},
		{filepath.Join(dir, "handlers.go"), o.Handlers},
		{filepath.Join(dir, "html.go"), o.HTML},
		{filepath.Join(domainDir, "doc.go"), o.ModuleIndex},
	}
	for _, f := range files {
		if err := os.WriteFile(f.path, []byte(f.content), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", f.path, err)
		}
		log.Printf(ctx, "created %s", f.path)
	}
	return nil
}

// lineWriter is the indentation-aware writer shared by the emitters.
type lineWriter struct {
	out    strings.Builder
	indent int
}

func (w *lineWriter) line(s string) {
	if s == "" {
		w.out.WriteByte('\n')
		return
	}
	for i := 0; i < w.indent; i++ {
		w.out.WriteByte('\t')
	}
	w.out.WriteString(s)
	w.out.WriteByte('\n')
}

func (w *lineWriter) linef(format string, args ...any) {
	w.line(fmt.Sprintf(format, args...))
}

func (w *lineWriter) String() string { return w.out.String() }

// webModule is the generated project's module path: the kebab module name
// with a "-web" suffix.
func webModule(table *RouteTable) string {
	return strings.ReplaceAll(table.ModuleName, "_", "-") + "-web"
}

// domainImport is the import path of the generated domain package inside the
// scaffold module.
func domainImport(table *RouteTable) string {
	return webModule(table) + "/gen/" + table.ModuleName
}

// emitManifest renders the go.mod of the generated project.
func emitManifest(table *RouteTable) string {
	return fmt.Sprintf(`module %s

go 1.25.5

require goa.design/pct v0.1.0
`, webModule(table))
}

// emitModuleIndex renders the doc file of the generated domain package; the
// compile step writes the domain source next to it.
func emitModuleIndex(table *RouteTable) string {
	var w lineWriter
	w.linef("// Package %s contains the domain model compiled from the %s module.",
		table.ModuleName, strings.ReplaceAll(table.ModuleName, "_", "-"))
	w.line("// Run pct compile --runtime to regenerate it.")
	w.linef("package %s", table.ModuleName)
	return w.String()
}

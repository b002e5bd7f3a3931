package scaffold

import (
	"fmt"
	"strings"

	"goa.design/pct/codegen/naming"
)

// emitHTML renders the shared HTML helper file. The markup is a fixed
// Tailwind-over-CDN theme parameterized with the app title and nav links.
func emitHTML(table *RouteTable) string {
	appTitle := naming.ToTitle(table.ModuleName)

	var links []string
	for _, store := range table.Stores {
		links = append(links, fmt.Sprintf("{%q, %q}", "/", naming.ToTitle(store.Plural)))
		links = append(links, fmt.Sprintf("{%q, %q}", "/"+store.Plural+"/new", "New "+naming.ToTitle(store.Singular)))
	}

	var w lineWriter
	w.line("package main")
	w.line("")
	w.line("import (")
	w.indent++
	w.line(`"fmt"`)
	w.line(`"strings"`)
	w.indent--
	w.line(")")
	w.line("")
	w.line("type navLink struct {")
	w.indent++
	w.line("href  string")
	w.line("label string")
	w.indent--
	w.line("}")
	w.line("")
	w.line("type formField struct {")
	w.indent++
	w.line("name      string")
	w.line("label     string")
	w.line("inputType string")
	w.indent--
	w.line("}")
	w.line("")
	w.linef("var navLinks = []navLink{%s}", strings.Join(links, ", "))
	w.line("")

	w.line("// htmlPage wraps body content in a full HTML page with the Tailwind CDN.")
	w.line("func htmlPage(title, body string) string {")
	w.indent++
	w.line("return fmt.Sprintf(`<!DOCTYPE html>")
	w.line(`<html lang="en">`)
	w.line("<head>")
	w.line(`    <meta charset="UTF-8">`)
	w.line(`    <meta name="viewport" content="width=device-width, initial-scale=1.0">`)
	w.linef("    <title>%%s - %s</title>", appTitle)
	w.line(`    <script src="https://cdn.tailwindcss.com"></script>`)
	w.line("</head>")
	w.line(`<body class="bg-gray-50 min-h-screen">`)
	w.line("    %s")
	w.line(`    <main class="max-w-4xl mx-auto py-8 px-4">`)
	w.line("        %s")
	w.line("    </main>")
	w.line("</body>")
	w.linef("</html>`, title, htmlNav(%q, navLinks), body)", appTitle)
	w.indent--
	w.line("}")
	w.line("")

	w.line("// htmlNav renders the top navigation bar.")
	w.line("func htmlNav(title string, links []navLink) string {")
	w.indent++
	w.line("var items strings.Builder")
	w.line("for _, l := range links {")
	w.indent++
	w.line("fmt.Fprintf(&items, `<a href=%q class=\"text-gray-300 hover:text-white px-3 py-2 text-sm font-medium\">%s</a>`, l.href, l.label)")
	w.indent--
	w.line("}")
	w.line("return fmt.Sprintf(`<nav class=\"bg-gray-800\">")
	w.line(`    <div class="max-w-4xl mx-auto px-4 py-3 flex items-center justify-between">`)
	w.line(`        <span class="text-white font-bold text-lg">%s</span>`)
	w.line(`        <div class="flex space-x-4">%s</div>`)
	w.line("    </div>")
	w.line("</nav>`, title, items.String())")
	w.indent--
	w.line("}")
	w.line("")

	w.line("// htmlTable renders a Tailwind-styled table.")
	w.line("func htmlTable(headers []string, rows [][]string) string {")
	w.indent++
	w.line("var head strings.Builder")
	w.line("for _, h := range headers {")
	w.indent++
	w.line("fmt.Fprintf(&head, `<th class=\"px-6 py-3 text-left text-xs font-medium text-gray-500 uppercase tracking-wider\">%s</th>`, h)")
	w.indent--
	w.line("}")
	w.line("var body strings.Builder")
	w.line("for _, row := range rows {")
	w.indent++
	w.line("body.WriteString(`<tr class=\"hover:bg-gray-50\">`)")
	w.line("for _, cell := range row {")
	w.indent++
	w.line("fmt.Fprintf(&body, `<td class=\"px-6 py-4 whitespace-nowrap text-sm text-gray-900\">%s</td>`, cell)")
	w.indent--
	w.line("}")
	w.line("body.WriteString(`</tr>`)")
	w.indent--
	w.line("}")
	w.line("return fmt.Sprintf(`<div class=\"overflow-hidden shadow ring-1 ring-black ring-opacity-5 rounded-lg\">")
	w.line(`    <table class="min-w-full divide-y divide-gray-300">`)
	w.line(`        <thead class="bg-gray-50"><tr>%s</tr></thead>`)
	w.line(`        <tbody class="divide-y divide-gray-200 bg-white">%s</tbody>`)
	w.line("    </table>")
	w.line("</div>`, head.String(), body.String())")
	w.indent--
	w.line("}")
	w.line("")

	w.line("// htmlForm renders a Tailwind-styled POST form.")
	w.line("func htmlForm(action string, fields []formField) string {")
	w.indent++
	w.line("var inputs strings.Builder")
	w.line("for _, f := range fields {")
	w.indent++
	w.line("fmt.Fprintf(&inputs, `<div class=\"mb-4\">")
	w.line(`    <label for=%q class="block text-sm font-medium text-gray-700 mb-1">%s</label>`)
	w.line("    <input type=%q name=%q id=%q")
	w.line(`        class="block w-full rounded-md border-gray-300 shadow-sm focus:border-indigo-500 focus:ring-indigo-500 sm:text-sm px-3 py-2 border"`)
	w.line("        required>")
	w.line("</div>`, f.name, f.label, f.inputType, f.name, f.name)")
	w.indent--
	w.line("}")
	w.line("return fmt.Sprintf(`<form method=\"POST\" action=%q class=\"bg-white shadow rounded-lg p-6 max-w-md\">")
	w.line("    %s")
	w.line(`    <button type="submit"`)
	w.line(`        class="w-full bg-indigo-600 text-white py-2 px-4 rounded-md hover:bg-indigo-700 focus:outline-none focus:ring-2 focus:ring-indigo-500 focus:ring-offset-2 font-medium">`)
	w.line("        Submit")
	w.line("    </button>")
	w.line("</form>`, action, inputs.String())")
	w.indent--
	w.line("}")
	w.line("")

	w.line("// htmlAlert renders a success/error alert box.")
	w.line("func htmlAlert(kind, message string) string {")
	w.indent++
	w.line("bg, border, text := \"bg-blue-50\", \"border-blue-400\", \"text-blue-700\"")
	w.line("switch kind {")
	w.line(`case "success":`)
	w.indent++
	w.line("bg, border, text = \"bg-green-50\", \"border-green-400\", \"text-green-700\"")
	w.indent--
	w.line(`case "error":`)
	w.indent++
	w.line("bg, border, text = \"bg-red-50\", \"border-red-400\", \"text-red-700\"")
	w.indent--
	w.line(`case "warning":`)
	w.indent++
	w.line("bg, border, text = \"bg-yellow-50\", \"border-yellow-400\", \"text-yellow-700\"")
	w.indent--
	w.line("}")
	w.line("return fmt.Sprintf(`<div class=\"%s border-l-4 %s p-4 mb-4\"><p class=\"%s\">%s</p></div>`, bg, border, text, message)")
	w.indent--
	w.line("}")

	return w.String()
}

// Package scaffold synthesizes a small web-service project from a module:
// route analysis derives a RESTful route table from the module's effect sets
// and return-variant metadata, and the emitters turn the table into a
// package manifest, entry point, handlers, HTML helpers and a module index
// exposing the generated domain code.
package scaffold

import (
	"strings"

	"goa.design/pct/ast"
	"goa.design/pct/codegen/naming"
)

type (
	// HTTPMethod is the method of a route.
	HTTPMethod int

	// RouteKind is the REST role of a route.
	RouteKind int

	// StoreInfo describes one store type extracted from the effect sets.
	StoreInfo struct {
		TypeName string // "User"
		Plural   string // "users"
		Singular string // "user"
		// NeedsMut is true when any effect writes to the store.
		NeedsMut bool
	}

	// FormField describes one HTML form input.
	FormField struct {
		Name      string // "name", "email"
		Label     string // "Name", "Email"
		InputType string // "text", "email", "number", "checkbox"
		// MinLen and MaxLen are carried for documentation only.
		MinLen   *int64
		MaxLen   *int64
		Required bool
	}

	// FnRoute is the metadata of a function-backed route.
	FnRoute struct {
		// FnName is the generated Go function name, e.g. "GetUserById".
		FnName string
		// ResultName is the generated result union name.
		ResultName string
		// InputStruct is the generated input record name, when the function
		// takes a Map-typed parameter.
		InputStruct string
		Variants    []RouteVariant
	}

	// RouteVariant is one return variant with its HTTP metadata.
	RouteVariant struct {
		IsOk bool
		// Tag is the error tag; empty for Ok.
		Tag string
		// TypeName is the generated variant struct name, e.g.
		// "GetUserByIdNotFound".
		TypeName   string
		HTTPStatus int64
		Payload    Payload
	}

	// PayloadKind discriminates variant payloads.
	PayloadKind int

	// Payload describes a variant's payload shape.
	Payload struct {
		Kind PayloadKind
		// Type is the payload type name for TypePayload and the element type
		// for ListPayload.
		Type string
		// Fields holds (Go field name, Go type) pairs for MapPayload.
		Fields []PayloadField
	}

	// PayloadField is one named field of a map payload.
	PayloadField struct {
		Name string
		Type string
	}

	// Route is a single route of the generated web app.
	Route struct {
		Kind   RouteKind
		Method HTTPMethod
		Path   string // "/users/{id}"
		// APIPath is the JSON sibling path, when one exists.
		APIPath string
		// HandlerName is the generated handler method name.
		HandlerName string
		// APIHandlerName is the JSON sibling handler, when one exists.
		APIHandlerName string
		// Function is set for create and show routes.
		Function *FnRoute
		// StoreType is the backing store's element type name.
		StoreType  string
		FormFields []FormField
	}

	// RouteTable is the complete analysis of a module.
	RouteTable struct {
		// ModuleName is the snake_case module identifier.
		ModuleName string
		Stores     []StoreInfo
		Routes     []Route
		// DisplayFields are the Go field names shown in list and show pages,
		// keyed by store type name.
		DisplayFields map[string][]string
	}
)

const (
	GET HTTPMethod = iota
	POST
)

const (
	ListRoute RouteKind = iota
	NewFormRoute
	CreateRoute
	ShowRoute
	DeleteRoute
)

func (m HTTPMethod) String() string {
	if m == POST {
		return "POST"
	}
	return "GET"
}

// Analyze derives the route table from a module.
func Analyze(m *ast.Module) *RouteTable {
	table := &RouteTable{
		ModuleName:    naming.SanitizeToken(m.Name, "generated"),
		Stores:        collectStores(m),
		DisplayFields: make(map[string][]string),
	}

	for _, td := range m.Types {
		table.DisplayFields[td.Name] = displayFields(td)
	}

	// Implicit routes per store: list, new-form, delete.
	for _, store := range table.Stores {
		table.Routes = append(table.Routes,
			Route{
				Kind:           ListRoute,
				Method:         GET,
				Path:           "/" + store.Plural,
				APIPath:        "/api/" + store.Plural,
				HandlerName:    "list" + naming.ToPascal(store.Plural),
				APIHandlerName: "apiList" + naming.ToPascal(store.Plural),
				StoreType:      store.TypeName,
			},
			Route{
				Kind:        NewFormRoute,
				Method:      GET,
				Path:        "/" + store.Plural + "/new",
				HandlerName: "new" + store.TypeName + "Form",
				StoreType:   store.TypeName,
			},
			Route{
				Kind:        DeleteRoute,
				Method:      POST,
				Path:        "/" + store.Plural + "/{id}/delete",
				HandlerName: "delete" + store.TypeName,
				StoreType:   store.TypeName,
			},
		)
	}

	for _, fn := range m.Functions {
		table.Routes = append(table.Routes, analyzeFunction(fn, m, table.Stores)...)
	}

	// Populate form fields of new-form routes from the type definitions.
	for i := range table.Routes {
		r := &table.Routes[i]
		if r.Kind != NewFormRoute {
			continue
		}
		for _, td := range m.Types {
			if td.Name == r.StoreType {
				r.FormFields = typeFormFields(td)
			}
		}
	}

	return table
}

func analyzeFunction(fn *ast.FnDef, m *ast.Module, stores []StoreInfo) []Route {
	fnRoute := &FnRoute{
		FnName:     naming.ToPascal(fn.Name),
		ResultName: naming.ToPascal(fn.Name) + "Result",
	}
	for _, p := range fn.Params {
		if _, ok := p.Type.(*ast.MapType); ok {
			fnRoute.InputStruct = naming.ToPascal(fn.Name) + "Input"
		}
	}
	for _, v := range fn.Returns.Variants {
		fnRoute.Variants = append(fnRoute.Variants, routeVariant(fn, v))
	}

	store := fnStore(fn, m, stores)
	if store == nil {
		return nil
	}

	if fnHasWrites(fn, m) && fnRoute.InputStruct != "" {
		return []Route{{
			Kind:           CreateRoute,
			Method:         POST,
			Path:           "/" + store.Plural,
			APIPath:        "/api/" + store.Plural,
			HandlerName:    "create" + store.TypeName + "Handler",
			APIHandlerName: "apiCreate" + store.TypeName,
			Function:       fnRoute,
			StoreType:      store.TypeName,
			FormFields:     fnFormFields(fn, m),
		}}
	}

	if hasUUIDPathParam(fn) {
		return []Route{{
			Kind:           ShowRoute,
			Method:         GET,
			Path:           "/" + store.Plural + "/{id}",
			APIPath:        "/api/" + store.Plural + "/{id}",
			HandlerName:    "show" + store.TypeName,
			APIHandlerName: "apiGet" + store.TypeName,
			Function:       fnRoute,
			StoreType:      store.TypeName,
		}}
	}
	return nil
}

func routeVariant(fn *ast.FnDef, v *ast.Variant) RouteVariant {
	rv := RouteVariant{IsOk: v.Ok}
	if v.Ok {
		rv.TypeName = naming.ToPascal(fn.Name) + "Ok"
		rv.HTTPStatus = 200
		if v.HTTPStatus != nil {
			rv.HTTPStatus = *v.HTTPStatus
		}
		rv.Payload = payloadOf(v.Type)
		return rv
	}
	rv.Tag = v.Tag
	rv.TypeName = naming.ToPascal(fn.Name) + naming.ToPascal(v.Tag)
	rv.HTTPStatus = 500
	if v.HTTPStatus != nil {
		rv.HTTPStatus = *v.HTTPStatus
	}
	rv.Payload = payloadOf(v.Payload)
	return rv
}

const (
	TypePayload PayloadKind = iota
	MapPayload
	ListPayload
	UnitPayload
)

func payloadOf(t ast.TypeExpr) Payload {
	switch tt := t.(type) {
	case *ast.NamedType:
		if tt.Name == "Unit" {
			return Payload{Kind: UnitPayload}
		}
		return Payload{Kind: TypePayload, Type: tt.Name}
	case *ast.MapType:
		p := Payload{Kind: MapPayload}
		for _, f := range tt.Fields {
			p.Fields = append(p.Fields, PayloadField{
				Name: naming.ToPascal(f.Name),
				Type: simpleGoType(f.Type),
			})
		}
		return p
	case *ast.ListType:
		return Payload{Kind: ListPayload, Type: simpleGoType(tt.Elem)}
	}
	return Payload{Kind: UnitPayload}
}

func simpleGoType(t ast.TypeExpr) string {
	switch tt := t.(type) {
	case *ast.NamedType:
		switch tt.Name {
		case "UUID", "String":
			return "string"
		case "Int":
			return "int64"
		case "Bool":
			return "bool"
		default:
			return tt.Name
		}
	case *ast.ListType:
		return "[]" + simpleGoType(tt.Elem)
	}
	return "string"
}

// collectStores gathers the deduplicated stores referenced by any effect;
// Sends targets do not map to stores.
func collectStores(m *ast.Module) []StoreInfo {
	var stores []StoreInfo
	for _, es := range m.EffectSets {
		for _, eff := range es.Effects {
			if eff.Kind == ast.Sends {
				continue
			}
			typeName := naming.StoreType(eff.Target)
			writes := eff.Kind == ast.Writes
			found := false
			for i := range stores {
				if stores[i].TypeName == typeName {
					stores[i].NeedsMut = stores[i].NeedsMut || writes
					found = true
				}
			}
			if !found {
				singular := strings.ToLower(typeName)
				stores = append(stores, StoreInfo{
					TypeName: typeName,
					Singular: singular,
					Plural:   naming.Pluralize(singular),
					NeedsMut: writes,
				})
			}
		}
	}
	return stores
}

func fnHasWrites(fn *ast.FnDef, m *ast.Module) bool {
	for _, effName := range fn.Effects {
		for _, es := range m.EffectSets {
			if es.Name != effName {
				continue
			}
			for _, eff := range es.Effects {
				if eff.Kind == ast.Writes {
					return true
				}
			}
		}
	}
	return false
}

func fnStore(fn *ast.FnDef, m *ast.Module, stores []StoreInfo) *StoreInfo {
	for _, effName := range fn.Effects {
		for _, es := range m.EffectSets {
			if es.Name != effName {
				continue
			}
			for _, eff := range es.Effects {
				if eff.Kind == ast.Sends {
					continue
				}
				typeName := naming.StoreType(eff.Target)
				for i := range stores {
					if stores[i].TypeName == typeName {
						return &stores[i]
					}
				}
			}
		}
	}
	return nil
}

func hasUUIDPathParam(fn *ast.FnDef) bool {
	for _, p := range fn.Params {
		if nt, ok := p.Type.(*ast.NamedType); ok && nt.Name == "UUID" && p.Source == "http-path-param" {
			return true
		}
	}
	return false
}

// typeFormFields derives form inputs from a type definition, skipping
// generated and immutable fields.
func typeFormFields(td *ast.TypeDef) []FormField {
	var fields []FormField
	for _, f := range td.Fields {
		if f.Generated || f.Immutable {
			continue
		}
		fields = append(fields, FormField{
			Name:      naming.ToSnake(f.Name),
			Label:     naming.ToTitle(f.Name),
			InputType: inputType(f.Type, f.Format),
			MinLen:    f.MinLen,
			MaxLen:    f.MaxLen,
			Required:  true,
		})
	}
	return fields
}

// fnFormFields derives form inputs from a function's Map-typed parameter,
// pulling length and format constraints from the module's type definitions.
func fnFormFields(fn *ast.FnDef, m *ast.Module) []FormField {
	_, mt := mapParamOf(fn)
	if mt == nil {
		return nil
	}
	var fields []FormField
	for _, f := range mt.Fields {
		minLen, maxLen, format := fieldConstraints(f.Name, m)
		fields = append(fields, FormField{
			Name:      naming.ToSnake(f.Name),
			Label:     naming.ToTitle(f.Name),
			InputType: inputType(f.Type, format),
			MinLen:    minLen,
			MaxLen:    maxLen,
			Required:  true,
		})
	}
	return fields
}

func mapParamOf(fn *ast.FnDef) (*ast.ParamDef, *ast.MapType) {
	for _, p := range fn.Params {
		if mt, ok := p.Type.(*ast.MapType); ok {
			return p, mt
		}
	}
	return nil, nil
}

func fieldConstraints(name string, m *ast.Module) (*int64, *int64, string) {
	for _, td := range m.Types {
		for _, f := range td.Fields {
			if f.Name == name {
				return f.MinLen, f.MaxLen, f.Format
			}
		}
	}
	return nil, nil, ""
}

// inputType maps a field to its HTML input type: email format wins, Int
// becomes number and Bool a checkbox; everything else is text.
func inputType(t ast.TypeExpr, format string) string {
	if format == "email" {
		return "email"
	}
	if nt, ok := t.(*ast.NamedType); ok {
		switch nt.Name {
		case "Int":
			return "number"
		case "Bool":
			return "checkbox"
		}
	}
	return "text"
}

// displayFields selects the string-valued, non-generated fields shown in
// list and show pages.
func displayFields(td *ast.TypeDef) []string {
	var fields []string
	for _, f := range td.Fields {
		if f.Generated {
			continue
		}
		if nt, ok := f.Type.(*ast.NamedType); ok && (nt.Name == "String") {
			fields = append(fields, naming.ToPascal(f.Name))
		}
	}
	return fields
}

package spec

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseDoc lowers a parsed YAML value into a typed Doc. The top level must
// be a mapping.
func ParseDoc(yaml Value) (*Doc, error) {
	if yaml.Kind != MappingValue {
		return nil, fmt.Errorf("expected top-level YAML mapping")
	}

	doc := &Doc{
		SpecID: yaml.GetScalar("spec"),
		Title:  yaml.GetScalar("title"),
		Owner:  yaml.GetScalar("owner"),
	}

	var err error
	if doc.DomainTypes, err = parseDomain(yaml); err != nil {
		return nil, err
	}
	if doc.Endpoints, err = parseEndpoints(yaml); err != nil {
		return nil, err
	}
	doc.Quality = parseQuality(yaml)
	doc.Traceability = parseTraceability(yaml)
	return doc, nil
}

func parseDomain(yaml Value) ([]DomainType, error) {
	domain, ok := yaml.Get("domain")
	if !ok {
		return nil, nil
	}
	if domain.Kind != MappingValue {
		return nil, fmt.Errorf("'domain' must be a mapping")
	}
	var types []DomainType
	for _, pair := range domain.Pairs {
		fields, err := parseFields(pair.Value)
		if err != nil {
			return nil, err
		}
		types = append(types, DomainType{Name: pair.Key, Fields: fields})
	}
	return types, nil
}

func parseFields(typeVal Value) ([]FieldSpec, error) {
	fieldsVal, ok := typeVal.Get("fields")
	if !ok {
		return nil, nil
	}
	if fieldsVal.Kind != SequenceValue {
		return nil, fmt.Errorf("'fields' must be a sequence")
	}
	var fields []FieldSpec
	for _, item := range fieldsVal.Items {
		if item.Kind != MappingValue {
			return nil, fmt.Errorf("each field must be a key: descriptor mapping")
		}
		if len(item.Pairs) == 0 {
			continue
		}
		name := item.Pairs[0].Key
		descriptor := ""
		if item.Pairs[0].Value.Kind == ScalarValue {
			descriptor = item.Pairs[0].Value.Scalar
		}
		fields = append(fields, ParseFieldDescriptor(name, descriptor))
	}
	return fields, nil
}

// ParseFieldDescriptor splits a natural-language descriptor like
// "required, string, 1-200 chars" on commas and classifies each token.
func ParseFieldDescriptor(name, descriptor string) FieldSpec {
	f := FieldSpec{Name: name, Type: FieldType{Kind: UnknownField}}

	for _, rawPart := range strings.Split(descriptor, ",") {
		rawPart = strings.TrimSpace(rawPart)
		part := strings.ToLower(rawPart)
		switch {
		case part == "required":
			f.Required = true
		case part == "string":
			f.Type = FieldType{Kind: StringField}
		case part == "uuid":
			f.Type = FieldType{Kind: UuidField}
		case part == "int" || part == "integer":
			f.Type = FieldType{Kind: IntField}
		case part == "bool" || part == "boolean":
			f.Type = FieldType{Kind: BoolField}
		case part == "unique":
			f.Unique = true
		case part == "auto-generated":
			f.AutoGenerated = true
		case part == "immutable":
			f.Immutable = true
		case strings.Contains(part, "email") && strings.Contains(part, "format"):
			f.Format = "email"
		case strings.Contains(part, "chars") || strings.Contains(part, "len"):
			parseLengthConstraint(part, &f)
		case part != "":
			if f.Type.Kind == UnknownField && f.Type.Raw == "" {
				f.Type = FieldType{Kind: UnknownField, Raw: rawPart}
			}
		}
	}

	// auto-generated with no stated type defaults to UUID.
	if f.AutoGenerated && f.Type.Kind == UnknownField && f.Type.Raw == "" {
		f.Type = FieldType{Kind: UuidField}
	}
	return f
}

// parseLengthConstraint handles "1-200 chars", "min 1" and "max 200".
func parseLengthConstraint(part string, f *FieldSpec) {
	var nums []int
	for _, tok := range strings.FieldsFunc(part, func(r rune) bool {
		return r < '0' || r > '9'
	}) {
		if n, err := strconv.Atoi(tok); err == nil {
			nums = append(nums, n)
		}
	}
	switch {
	case len(nums) == 2:
		f.MinLen = &nums[0]
		f.MaxLen = &nums[1]
	case len(nums) == 1:
		if strings.Contains(part, "min") {
			f.MinLen = &nums[0]
		} else {
			f.MaxLen = &nums[0]
		}
	}
}

func parseEndpoints(yaml Value) ([]Endpoint, error) {
	endpoints, ok := yaml.Get("endpoints")
	if !ok {
		return nil, nil
	}
	if endpoints.Kind != MappingValue {
		return nil, fmt.Errorf("'endpoints' must be a mapping")
	}
	var result []Endpoint
	for _, pair := range endpoints.Pairs {
		outputs, err := parseOutputs(pair.Value)
		if err != nil {
			return nil, err
		}
		result = append(result, Endpoint{
			Name:        pair.Key,
			Description: pair.Value.GetScalar("description"),
			Input:       parseInputSpec(pair.Value.GetScalar("input")),
			Outputs:     outputs,
			Constraints: parseConstraints(pair.Value),
		})
	}
	return result, nil
}

// parseInputSpec classifies an input description as URL- or body-sourced by
// keyword search.
func parseInputSpec(input string) InputSpec {
	lower := strings.ToLower(input)
	source := UnknownSource
	switch {
	case strings.Contains(lower, "url") || strings.Contains(lower, "path"):
		source = URLSource
	case strings.Contains(lower, "body") || strings.Contains(lower, "json") || strings.Contains(lower, "payload"):
		source = BodySource
	}
	return InputSpec{Description: input, Source: source}
}

func parseOutputs(epVal Value) ([]OutputSpec, error) {
	outputsVal, ok := epVal.Get("outputs")
	if !ok {
		return nil, nil
	}
	if outputsVal.Kind != SequenceValue {
		return nil, fmt.Errorf("'outputs' must be a sequence")
	}
	var outputs []OutputSpec
	for _, item := range outputsVal.Items {
		if item.Kind != MappingValue {
			return nil, fmt.Errorf("each output must be a key: descriptor mapping")
		}
		if len(item.Pairs) == 0 {
			continue
		}
		label := item.Pairs[0].Key
		desc := ""
		if item.Pairs[0].Value.Kind == ScalarValue {
			desc = item.Pairs[0].Value.Scalar
		}
		lower := strings.ToLower(label)
		outputs = append(outputs, OutputSpec{
			Label:       label,
			Description: desc,
			HTTPStatus:  extractHTTPStatus(desc),
			IsSuccess: strings.Contains(lower, "success") ||
				strings.Contains(lower, "ok") ||
				strings.Contains(lower, "created"),
		})
	}
	return outputs, nil
}

// extractHTTPStatus pulls a status from a trailing "(NNN)" in a description.
func extractHTTPStatus(desc string) *int {
	start := strings.LastIndex(desc, "(")
	end := strings.LastIndex(desc, ")")
	if start < 0 || end <= start {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(desc[start+1 : end]))
	if err != nil {
		return nil
	}
	return &n
}

func parseConstraints(epVal Value) []Constraint {
	constraintsVal, ok := epVal.Get("constraints")
	if !ok || constraintsVal.Kind != SequenceValue {
		return nil
	}
	var constraints []Constraint
	for _, item := range constraintsVal.Items {
		switch item.Kind {
		case ScalarValue:
			lower := strings.ToLower(item.Scalar)
			switch {
			case lower == "read-only" || lower == "readonly":
				constraints = append(constraints, Constraint{Kind: ReadOnly})
			case lower == "write" || strings.Contains(lower, "read-write"):
				constraints = append(constraints, Constraint{Kind: Write})
			default:
				constraints = append(constraints, Constraint{Kind: OtherConstraint, Value: item.Scalar})
			}
		case MappingValue:
			for _, pair := range item.Pairs {
				lowerKey := strings.ToLower(pair.Key)
				val := ""
				if pair.Value.Kind == ScalarValue {
					val = pair.Value.Scalar
				}
				switch {
				case strings.Contains(lowerKey, "max response time") || strings.Contains(lowerKey, "latency"):
					constraints = append(constraints, Constraint{Kind: MaxResponseTime, Value: val})
				case strings.Contains(lowerKey, "idempotent"):
					constraints = append(constraints, Constraint{Kind: Idempotent, Value: val})
				case lowerKey == "read-only" || lowerKey == "readonly":
					constraints = append(constraints, Constraint{Kind: ReadOnly})
				case lowerKey == "write":
					constraints = append(constraints, Constraint{Kind: Write})
				default:
					constraints = append(constraints, Constraint{
						Kind:  OtherConstraint,
						Value: fmt.Sprintf("%s: %s", pair.Key, val),
					})
				}
			}
		}
	}
	return constraints
}

func parseQuality(yaml Value) []QualityRule {
	qualityVal, ok := yaml.Get("quality")
	if !ok || qualityVal.Kind != SequenceValue {
		return nil
	}
	var rules []QualityRule
	for _, item := range qualityVal.Items {
		s := ""
		if item.Kind == ScalarValue {
			s = item.Scalar
		}
		lower := strings.ToLower(s)
		if strings.Contains(lower, "total") && strings.Contains(lower, "function") {
			rules = append(rules, QualityRule{Kind: AllFunctionsTotal, Raw: s})
		} else {
			rules = append(rules, QualityRule{Kind: OtherQualityRule, Raw: s})
		}
	}
	return rules
}

func parseTraceability(yaml Value) Traceability {
	trace, ok := yaml.Get("traceability")
	if !ok {
		return Traceability{}
	}
	deps := trace.GetScalar("known dependencies")
	if deps == "" {
		return Traceability{}
	}
	var known []string
	for _, d := range strings.Split(deps, ",") {
		if d = strings.TrimSpace(d); d != "" {
			known = append(known, d)
		}
	}
	return Traceability{KnownDependencies: known}
}

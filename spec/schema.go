package spec

import (
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// docSchema is the structural contract of the spec document. Validation runs
// after YAML parsing and before lowering; violations are advisory, matching
// the best-effort posture of the rest of the generate path.
const docSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["spec", "title", "owner"],
  "properties": {
    "spec": {"type": "string", "minLength": 1},
    "title": {"type": "string", "minLength": 1},
    "owner": {"type": "string", "minLength": 1},
    "domain": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "properties": {
          "fields": {"type": "array", "items": {"type": "object"}}
        }
      }
    },
    "endpoints": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "properties": {
          "description": {"type": "string"},
          "input": {"type": "string"},
          "outputs": {"type": "array"},
          "constraints": {"type": "array"}
        }
      }
    },
    "quality": {"type": "array", "items": {"type": "string"}},
    "traceability": {"type": "object"}
  }
}`

// ValidateDoc checks the parsed YAML value against the document schema and
// returns one message per violation. Parsing proceeds regardless; callers
// surface the messages as warnings.
func ValidateDoc(yaml Value) ([]string, error) {
	compiler := jsonschema.NewCompiler()
	schemaDoc, err := jsonschema.UnmarshalJSON(strings.NewReader(docSchema))
	if err != nil {
		return nil, fmt.Errorf("parse document schema: %w", err)
	}
	if err := compiler.AddResource("spec.schema.json", schemaDoc); err != nil {
		return nil, fmt.Errorf("register document schema: %w", err)
	}
	schema, err := compiler.Compile("spec.schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile document schema: %w", err)
	}

	if err := schema.Validate(toAny(yaml)); err != nil {
		ve, ok := err.(*jsonschema.ValidationError)
		if !ok {
			return []string{err.Error()}, nil
		}
		return flattenCauses(ve), nil
	}
	return nil, nil
}

// toAny converts a YAML value into the plain Go shape jsonschema validates.
func toAny(v Value) any {
	switch v.Kind {
	case MappingValue:
		m := make(map[string]any, len(v.Pairs))
		for _, p := range v.Pairs {
			m[p.Key] = toAny(p.Value)
		}
		return m
	case SequenceValue:
		items := make([]any, len(v.Items))
		for i, it := range v.Items {
			items[i] = toAny(it)
		}
		return items
	default:
		return v.Scalar
	}
}

func flattenCauses(ve *jsonschema.ValidationError) []string {
	if len(ve.Causes) == 0 {
		return []string{ve.Error()}
	}
	var msgs []string
	for _, c := range ve.Causes {
		msgs = append(msgs, flattenCauses(c)...)
	}
	return msgs
}

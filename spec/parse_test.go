package spec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseDoc(t *testing.T, input string) *Doc {
	t.Helper()
	yaml := parseYAML(t, input)
	doc, err := ParseDoc(yaml)
	require.NoError(t, err)
	return doc
}

func TestParseFieldRequiredStringWithLength(t *testing.T) {
	f := ParseFieldDescriptor("name", "required, string, 1-200 chars")
	assert.True(t, f.Required)
	assert.Equal(t, StringField, f.Type.Kind)
	require.NotNil(t, f.MinLen)
	require.NotNil(t, f.MaxLen)
	assert.Equal(t, 1, *f.MinLen)
	assert.Equal(t, 200, *f.MaxLen)
}

func TestParseFieldEmailFormatUnique(t *testing.T) {
	f := ParseFieldDescriptor("email", "required, email format, unique")
	assert.True(t, f.Required)
	assert.Equal(t, "email", f.Format)
	assert.True(t, f.Unique)
}

func TestParseFieldAutoGeneratedImmutable(t *testing.T) {
	f := ParseFieldDescriptor("id", "auto-generated, immutable")
	assert.True(t, f.AutoGenerated)
	assert.True(t, f.Immutable)
	assert.Equal(t, UuidField, f.Type.Kind)
}

func TestParseFieldMinOnly(t *testing.T) {
	f := ParseFieldDescriptor("name", "string, min 1 chars")
	require.NotNil(t, f.MinLen)
	assert.Equal(t, 1, *f.MinLen)
	assert.Nil(t, f.MaxLen)
}

func TestParseMinimalDoc(t *testing.T) {
	doc := parseDoc(t, "spec: SPEC-001\ntitle: \"Test\"\nowner: test-team\n")
	assert.Equal(t, "SPEC-001", doc.SpecID)
	assert.Equal(t, "Test", doc.Title)
	assert.Equal(t, "test-team", doc.Owner)
}

func TestParseTopLevelMustBeMapping(t *testing.T) {
	yaml := parseYAML(t, "- a\n- b\n")
	_, err := ParseDoc(yaml)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "top-level YAML mapping")
}

func TestParseDomainTypes(t *testing.T) {
	doc := parseDoc(t, `spec: SPEC-001
title: test
owner: team
domain:
  User:
    fields:
      - name: required, string, 1-200 chars
      - id: auto-generated, immutable
`)
	require.Len(t, doc.DomainTypes, 1)
	dt := doc.DomainTypes[0]
	assert.Equal(t, "User", dt.Name)
	require.Len(t, dt.Fields, 2)
	assert.Equal(t, "name", dt.Fields[0].Name)
	assert.True(t, dt.Fields[0].Required)
	assert.True(t, dt.Fields[1].AutoGenerated)
}

func TestParseEndpointWithOutputs(t *testing.T) {
	doc := parseDoc(t, `spec: SPEC-001
title: test
owner: team
endpoints:
  get-user:
    description: "Returns a user by ID"
    input: user id (from URL)
    outputs:
      - success: the user found (200)
      - not found: when the ID doesn't exist (404)
    constraints:
      - read-only
`)
	require.Len(t, doc.Endpoints, 1)
	ep := doc.Endpoints[0]
	assert.Equal(t, "get-user", ep.Name)
	assert.Equal(t, URLSource, ep.Input.Source)
	require.Len(t, ep.Outputs, 2)
	require.NotNil(t, ep.Outputs[0].HTTPStatus)
	assert.Equal(t, 200, *ep.Outputs[0].HTTPStatus)
	assert.True(t, ep.Outputs[0].IsSuccess)
	require.NotNil(t, ep.Outputs[1].HTTPStatus)
	assert.Equal(t, 404, *ep.Outputs[1].HTTPStatus)
	assert.False(t, ep.Outputs[1].IsSuccess)
	assert.True(t, ep.HasConstraint(ReadOnly))
}

func TestParseMaxResponseTime(t *testing.T) {
	doc := parseDoc(t, `spec: SPEC-001
title: test
owner: team
endpoints:
  get-user:
    description: test
    input: id
    constraints:
      - max response time: 50ms
`)
	ep := doc.Endpoints[0]
	require.Len(t, ep.Constraints, 1)
	assert.Equal(t, MaxResponseTime, ep.Constraints[0].Kind)
	assert.Equal(t, "50ms", ep.Constraints[0].Value)
}

func TestParseQualityRules(t *testing.T) {
	doc := parseDoc(t, "spec: SPEC-001\ntitle: test\nowner: team\nquality:\n  - all functions must be total\n")
	require.Len(t, doc.Quality, 1)
	assert.Equal(t, AllFunctionsTotal, doc.Quality[0].Kind)
	assert.True(t, doc.AllTotal())
}

func TestParseTraceability(t *testing.T) {
	doc := parseDoc(t, "spec: SPEC-001\ntitle: test\nowner: team\ntraceability:\n  known dependencies: api-router, admin-panel\n")
	assert.Equal(t, []string{"api-router", "admin-panel"}, doc.Traceability.KnownDependencies)
}

func TestExtractHTTPStatus(t *testing.T) {
	cases := map[string]*int{
		"the user found (200)": intp(200),
		"not found (404)":      intp(404),
		"created (201)":        intp(201),
		"no status":            nil,
	}
	for desc, want := range cases {
		got := extractHTTPStatus(desc)
		if want == nil {
			assert.Nil(t, got, desc)
		} else {
			require.NotNil(t, got, desc)
			assert.Equal(t, *want, *got, desc)
		}
	}
}

func intp(n int) *int { return &n }

func TestParseInputSourceDetection(t *testing.T) {
	assert.Equal(t, URLSource, parseInputSpec("user id (from URL)").Source)
	assert.Equal(t, BodySource, parseInputSpec("user data (from body)").Source)
	assert.Equal(t, UnknownSource, parseInputSpec("something").Source)
}

func TestValidateDocAccepts(t *testing.T) {
	yaml := parseYAML(t, "spec: SPEC-001\ntitle: test\nowner: team\n")
	msgs, err := ValidateDoc(yaml)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestValidateDocReportsMissingKeys(t *testing.T) {
	yaml := parseYAML(t, "title: test\n")
	msgs, err := ValidateDoc(yaml)
	require.NoError(t, err)
	assert.NotEmpty(t, msgs)
}

package spec

type (
	// Doc is the typed specification document lowered from YAML.
	Doc struct {
		SpecID       string
		Title        string
		Owner        string
		DomainTypes  []DomainType
		Endpoints    []Endpoint
		Quality      []QualityRule
		Traceability Traceability
	}

	// DomainType is a domain type with its fields, in document order.
	DomainType struct {
		Name   string
		Fields []FieldSpec
	}

	// FieldSpec is a field descriptor parsed from a natural-language
	// comma-separated string.
	FieldSpec struct {
		Name          string
		Required      bool
		Type          FieldType
		MinLen        *int
		MaxLen        *int
		Format        string
		Unique        bool
		AutoGenerated bool
		Immutable     bool
	}

	// FieldType is the recognized field type set.
	FieldType struct {
		// Kind is one of String, Uuid, Int, Bool or Unknown.
		Kind FieldTypeKind
		// Raw carries the unrecognized descriptor for Unknown.
		Raw string
	}

	// FieldTypeKind discriminates FieldType.
	FieldTypeKind int

	// Endpoint is one endpoint specification.
	Endpoint struct {
		Name        string
		Description string
		Input       InputSpec
		Outputs     []OutputSpec
		Constraints []Constraint
	}

	// InputSpec describes where endpoint input comes from.
	InputSpec struct {
		Description string
		Source      InputSource
	}

	// InputSource is the classified source of input data.
	InputSource int

	// OutputSpec is one output variant of an endpoint. The HTTP status is
	// parsed from a trailing "(NNN)" in the description.
	OutputSpec struct {
		Label       string
		Description string
		HTTPStatus  *int
		IsSuccess   bool
	}

	// Constraint is one endpoint constraint.
	Constraint struct {
		Kind ConstraintKind
		// Value carries the response time for MaxResponseTime, the field for
		// Idempotent and the raw text for Other.
		Value string
	}

	// ConstraintKind discriminates Constraint.
	ConstraintKind int

	// QualityRule is one whole-spec quality rule.
	QualityRule struct {
		Kind QualityRuleKind
		Raw  string
	}

	// QualityRuleKind discriminates QualityRule.
	QualityRuleKind int

	// Traceability carries the spec's known dependencies.
	Traceability struct {
		KnownDependencies []string
	}
)

const (
	StringField FieldTypeKind = iota
	UuidField
	IntField
	BoolField
	UnknownField
)

const (
	URLSource InputSource = iota
	BodySource
	UnknownSource
)

const (
	ReadOnly ConstraintKind = iota
	Write
	MaxResponseTime
	Idempotent
	OtherConstraint
)

const (
	AllFunctionsTotal QualityRuleKind = iota
	OtherQualityRule
)

// HasConstraint reports whether the endpoint declares the given constraint
// kind.
func (e Endpoint) HasConstraint(kind ConstraintKind) bool {
	for _, c := range e.Constraints {
		if c.Kind == kind {
			return true
		}
	}
	return false
}

// AllTotal reports whether the quality rules require every function to be
// total.
func (d *Doc) AllTotal() bool {
	for _, q := range d.Quality {
		if q.Kind == AllFunctionsTotal {
			return true
		}
	}
	return false
}

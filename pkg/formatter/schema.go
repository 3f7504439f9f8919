package formatter

import (
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// SchemaPrefix marks an endpoint description as carrying a JSON Schema to
// validate responses against, e.g. "schema: {\"type\":\"object\",...}".
// This is the supplemented, non-fatal response annotation: it never blocks
// a request or fails a load test, it only adds commentary to ResponseView.
const SchemaPrefix = "schema:"

// SchemaFromDescription extracts the schema document from an endpoint
// description using the "schema:" prefix convention, if present.
func SchemaFromDescription(description string) (string, bool) {
	trimmed := strings.TrimSpace(description)
	if !strings.HasPrefix(trimmed, SchemaPrefix) {
		return "", false
	}
	return strings.TrimSpace(strings.TrimPrefix(trimmed, SchemaPrefix)), true
}

// ValidateAgainstSchema checks body against the given JSON Schema document,
// returning the list of human-readable validation errors (empty if valid).
// A malformed schema or body is reported as a single error string rather
// than surfaced as a request-blocking failure: this annotation is always
// best-effort.
func ValidateAgainstSchema(schemaDoc string, body []byte) []string {
	schemaLoader := gojsonschema.NewStringLoader(schemaDoc)
	docLoader := gojsonschema.NewBytesLoader(body)

	result, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		return []string{"schema validation error: " + err.Error()}
	}
	if result.Valid() {
		return nil
	}

	errs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		errs = append(errs, e.String())
	}
	return errs
}

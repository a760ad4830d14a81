// Package validation checks worker input variables against JSON schemas.
package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Summary joins all errors as "field: message" pairs.
func (r *ValidationResult) Summary() string {
	parts := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		parts = append(parts, fmt.Sprintf("%s: %s", e.Field, e.Message))
	}
	return strings.Join(parts, "; ")
}

// Schema is a compiled JSON schema, safe for concurrent use.
type Schema struct {
	compiled *gojsonschema.Schema
}

// Compile parses a JSON schema document.
func Compile(schemaJSON string) (*Schema, error) {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Schema{compiled: compiled}, nil
}

// MustCompile is Compile for package-level schemas.
func MustCompile(schemaJSON string) *Schema {
	s, err := Compile(schemaJSON)
	if err != nil {
		panic(err)
	}
	return s
}

// Validate checks a decoded document (maps, slices, scalars) against the schema.
func (s *Schema) Validate(document interface{}) (*ValidationResult, error) {
	result, err := s.compiled.Validate(gojsonschema.NewGoLoader(document))
	if err != nil {
		return nil, fmt.Errorf("validate document: %w", err)
	}
	return toResult(result), nil
}

// ValidateInput compiles schema on the fly; prefer Compile for hot paths.
func ValidateInput(input map[string]interface{}, schema map[string]interface{}) (*ValidationResult, error) {
	result, err := gojsonschema.Validate(gojsonschema.NewGoLoader(schema), gojsonschema.NewGoLoader(input))
	if err != nil {
		return nil, fmt.Errorf("validate input: %w", err)
	}
	return toResult(result), nil
}

func toResult(result *gojsonschema.Result) *ValidationResult {
	out := &ValidationResult{Valid: result.Valid()}
	for _, re := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   re.Field(),
			Message: re.Description(),
			Code:    strings.ToUpper(re.Type()),
		})
	}
	return out
}

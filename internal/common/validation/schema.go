// Package validation checks job variables against JSON schemas before a worker acts on them.
package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"accelerator-portal/internal/common/errors"
)

// Schema is a compiled JSON schema. Compile once per worker, reuse per job.
type Schema struct {
	name   string
	schema *gojsonschema.Schema
}

// MustCompile compiles a JSON schema document and panics if it is malformed.
// Schemas are package constants, so a bad one is a programming error.
func MustCompile(name, document string) *Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(document))
	if err != nil {
		panic(fmt.Sprintf("schema %s: %v", name, err))
	}
	return &Schema{name: name, schema: s}
}

// Validate checks raw job variables. The first violation (ordered by field) is returned as
// a *errors.ValidationError so the job handler throws it without retries.
func (s *Schema) Validate(variables string) error {
	if strings.TrimSpace(variables) == "" {
		variables = "{}"
	}

	result, err := s.schema.Validate(gojsonschema.NewStringLoader(variables))
	if err != nil {
		return errors.NewValidationError("", fmt.Sprintf("variables are not valid JSON: %v", err))
	}
	if result.Valid() {
		return nil
	}

	violations := result.Errors()
	sort.Slice(violations, func(i, j int) bool {
		return violations[i].Field() < violations[j].Field()
	})

	first := violations[0]
	field := first.Field()
	if field == "(root)" {
		if prop, ok := first.Details()["property"].(string); ok {
			field = prop
		}
	}

	reasons := make([]string, 0, len(violations))
	for _, v := range violations {
		reasons = append(reasons, v.String())
	}

	return errors.NewValidationError(field, strings.Join(reasons, "; "))
}

// Package schema implements the declarative field framework used to validate
// untyped JSON payloads: a Schema is an ordered set of named Fields, and one
// validation pass either produces typed Values or an accumulated list of
// human-readable field errors.
package schema

import (
	"fmt"
	"time"
)

type namedField struct {
	name  string
	field Field
}

// Schema is an ordered mapping of field name to field descriptor.
// Validation walks fields in declaration order so error lists are stable.
type Schema struct {
	fields []namedField
}

func New() *Schema {
	return &Schema{}
}

// Add registers a field under the given name and returns the schema for chaining.
func (s *Schema) Add(name string, f Field) *Schema {
	s.fields = append(s.fields, namedField{name: name, field: f})
	return s
}

// Validate applies every field of the schema against the payload. All fields
// are checked in one pass; errors accumulate rather than short-circuit.
// Values holds the typed result for every field that cleaned successfully to
// a non-empty value, so cross-field rules can run even when other fields
// failed. Unknown payload keys are ignored.
func (s *Schema) Validate(payload map[string]any) (Values, []string) {
	values := make(Values, len(s.fields))
	var errs []string
	for _, nf := range s.fields {
		cleaned, err := nf.field.Clean(payload[nf.name])
		if err != nil {
			errs = append(errs, fmt.Sprintf("Field: %s. %s", nf.name, err))
			continue
		}
		if cleaned != nil {
			values[nf.name] = cleaned
		}
	}
	return values, errs
}

// Values is the typed result of a validation pass. A key is present exactly
// when the corresponding field carried a non-empty value, so presence checks
// double as the "not null" test for combination rules (gender 0 counts as
// present).
type Values map[string]any

// Has reports whether the field carried a non-empty value.
func (v Values) Has(name string) bool {
	_, ok := v[name]
	return ok
}

// String returns the field as a string, or "" when absent.
func (v Values) String(name string) string {
	s, _ := v[name].(string)
	return s
}

// Int returns the field as an int and whether it was present.
func (v Values) Int(name string) (int, bool) {
	n, ok := v[name].(int)
	return n, ok
}

// Time returns the field as a time.Time and whether it was present.
func (v Values) Time(name string) (time.Time, bool) {
	t, ok := v[name].(time.Time)
	return t, ok
}

// Ints returns the field as an int slice, or nil when absent.
func (v Values) Ints(name string) []int {
	ids, _ := v[name].([]int)
	return ids
}

// Map returns the field as a JSON object, or nil when absent.
func (v Values) Map(name string) map[string]any {
	m, _ := v[name].(map[string]any)
	return m
}

package model

import (
	"fmt"
	"strings"
)

// ValidationError reports every invalid field of a request at once, so
// clients fix a form in one round trip.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid fields: %s", strings.Join(e.Fields, ", "))
}

// FieldCollector accumulates invalid field names during request
// validation. The zero value is ready to use.
type FieldCollector struct {
	fields []string
}

// Add records an invalid field.
func (c *FieldCollector) Add(field string) {
	c.fields = append(c.fields, field)
}

// Err returns a ValidationError listing the collected fields, or nil when
// everything validated.
func (c *FieldCollector) Err() error {
	if len(c.fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: c.fields}
}

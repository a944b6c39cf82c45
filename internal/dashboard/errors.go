package dashboard

import (
	"fmt"
	"strings"
)

// NotFoundError reports a missing dashboard or chart.
type NotFoundError struct {
	Kind string // "dashboard" or "chart"
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Name)
}

// DuplicateNameError reports a create or duplicate attempt with a name that
// is already registered.
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("dashboard name %q already exists", e.Name)
}

// MalformedInputError reports an import payload that could not be parsed.
// The store is left untouched when this is returned.
type MalformedInputError struct {
	Err error
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("malformed import payload: %v", e.Err)
}

func (e *MalformedInputError) Unwrap() error { return e.Err }

// InvalidSpecError reports a chart spec rejected at construction.
type InvalidSpecError struct {
	Reasons []string
}

func (e *InvalidSpecError) Error() string {
	return "invalid chart spec: " + strings.Join(e.Reasons, "; ")
}

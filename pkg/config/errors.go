package config

import "fmt"

// ValidationError reports a structurally invalid graph or fault document:
// missing required fields, an empty node name, a node with neither loop nor
// subscribe, or an empty subscribe list. Raised before any graph wiring is
// attempted. Unknown fields and malformed ranges never reach this check —
// the strict YAML decoder rejects them first.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation: %s: %s", e.Field, e.Reason)
}

func newValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

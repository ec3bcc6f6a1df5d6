package reconcile

import (
	"errors"
	"fmt"
)

// ErrNoSources is returned when a run is started without any source table.
var ErrNoSources = errors.New("no source tables to reconcile")

// SchemaError reports a required column that is absent from a source table.
// It is fatal for the run: downstream joins assume the column exists.
type SchemaError struct {
	Source string
	Column string
}

func (e *SchemaError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("column not found: %q", e.Column)
	}
	return fmt.Sprintf("source %s: column not found: %q", e.Source, e.Column)
}

// IsSchemaError reports whether err wraps a *SchemaError.
func IsSchemaError(err error) bool {
	var se *SchemaError
	return errors.As(err, &se)
}

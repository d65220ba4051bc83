package diagnostic

import (
	"fmt"
	"strings"
)

// SchemaError reports that a run cannot continue because the source does not
// carry the fields a stage needs. It is fatal to the run.
type SchemaError struct {
	// Rule names the check that failed (e.g. "pivot-columns").
	Rule string
	// Fields lists the field names involved.
	Fields []string
	// Rows and Columns describe the dataset shape at the failing stage.
	Rows    int
	Columns int
	// Detail is a human-readable explanation.
	Detail string
}

// Error implements error.
func (e *SchemaError) Error() string {
	var b strings.Builder

	fmt.Fprintf(&b, "schema error [%s]: %s", e.Rule, e.Detail)
	fmt.Fprintf(&b, " (dataset %d rows x %d columns", e.Rows, e.Columns)

	if len(e.Fields) > 0 {
		fmt.Fprintf(&b, "; fields: %s", strings.Join(e.Fields, ", "))
	}

	b.WriteString(")")

	return b.String()
}

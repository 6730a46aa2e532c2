package domain

import (
	"fmt"
	"strings"
)

// SchemaError reports required columns that could not be located in an input
// table. The message includes the detected headers so the uploader can see
// what the file actually contained.
type SchemaError struct {
	Source  string   // which input failed, e.g. "site coordinates" or "attendance export"
	Missing []string // logical field names that could not be resolved
	Headers []string // headers detected in the input
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: missing required columns: %s (detected columns: %s)",
		e.Source,
		strings.Join(e.Missing, ", "),
		strings.Join(e.Headers, ", "))
}

// EmptyRegistryError means a site coordinates source parsed but yielded no
// usable rows after filtering.
type EmptyRegistryError struct {
	Source string
}

func (e *EmptyRegistryError) Error() string {
	return fmt.Sprintf("%s: no valid site rows found; make sure latitude/longitude cells are numeric", e.Source)
}

// Package diag defines the tagged diagnostic type shared by the validator,
// mapping engine and builder. Diagnostics carry a category plus structured
// context so callers can assert on fields instead of message substrings.
package diag

import "fmt"

// Category classifies a diagnostic by the pipeline stage that produced it.
type Category string

const (
	CategoryParse      Category = "parse"
	CategoryValidation Category = "validation"
	CategoryMapping    Category = "mapping"
	CategoryUnit       Category = "unit"
	CategoryCreation   Category = "creation"
	CategoryProperty   Category = "property"
	CategoryConnection Category = "connection"
)

// Diagnostic is a single error or warning with structured context.
// Entity names the kind of entity involved (e.g. "LayoutObject"), ID its
// identifier, and Ref an identifier it references, when relevant.
type Diagnostic struct {
	Category Category `json:"category"`
	Entity   string   `json:"entity,omitempty"`
	ID       string   `json:"id,omitempty"`
	Ref      string   `json:"ref,omitempty"`
	Message  string   `json:"message"`
}

// Error implements the error interface.
func (d Diagnostic) Error() string {
	return d.Message
}

// New creates a diagnostic with a formatted message.
func New(cat Category, entity, id, ref, format string, args ...any) Diagnostic {
	return Diagnostic{
		Category: cat,
		Entity:   entity,
		ID:       id,
		Ref:      ref,
		Message:  fmt.Sprintf(format, args...),
	}
}

// Messages flattens a diagnostic list into its message strings.
func Messages(ds []Diagnostic) []string {
	if len(ds) == 0 {
		return nil
	}
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.Message
	}
	return out
}

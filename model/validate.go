package model

import "github.com/factory-layout/interpreter/diag"

// ValidationResult aggregates every referential-integrity violation found in
// a document. Validation is exhaustive: all problems are reported together
// rather than stopping at the first.
type ValidationResult struct {
	Errors   []diag.Diagnostic `json:"errors,omitempty"`
	Warnings []diag.Diagnostic `json:"warnings,omitempty"`
}

// IsValid reports whether the document passed validation. Warnings never
// affect validity.
func (v *ValidationResult) IsValid() bool {
	return len(v.Errors) == 0
}

func (v *ValidationResult) addError(d diag.Diagnostic) {
	v.Errors = append(v.Errors, d)
}

func (v *ValidationResult) addWarning(d diag.Diagnostic) {
	v.Warnings = append(v.Warnings, d)
}

// Validate checks a parsed document for completeness and referential
// integrity. It is a pure function: the document is not mutated. Downstream
// stages assume a document that failed validation is never presented to them.
func Validate(doc *Document) *ValidationResult {
	result := &ValidationResult{}

	if doc.Header.Identifier == "" {
		result.addError(diag.New(diag.CategoryValidation, "Document", "", "",
			"Missing document identifier"))
	}
	if doc.ResourceCount() == 0 {
		result.addError(diag.New(diag.CategoryValidation, "Document", doc.Header.Identifier, "",
			"No resources defined"))
	}

	for _, lo := range doc.LayoutObjects() {
		if _, ok := doc.Resource(lo.AssociatedResourceID); !ok {
			result.addError(diag.New(diag.CategoryValidation, "LayoutObject", lo.Identifier, lo.AssociatedResourceID,
				"LayoutObject '%s' references unknown resource '%s'", lo.Identifier, lo.AssociatedResourceID))
		}
	}

	if doc.Layout != nil {
		for _, p := range doc.Layout.Placements() {
			if _, ok := doc.LayoutObject(p.LayoutElementID); !ok {
				result.addError(diag.New(diag.CategoryValidation, "Placement", p.LayoutElementID, p.LayoutElementID,
					"Placement references unknown layout object '%s'", p.LayoutElementID))
			}
		}
	}

	for _, c := range doc.Connections() {
		if _, ok := doc.Resource(c.FromResourceID); !ok {
			result.addError(diag.New(diag.CategoryValidation, "Connection", c.Identifier, c.FromResourceID,
				"Connection '%s' references unknown source resource '%s'", c.Identifier, c.FromResourceID))
		}
		if _, ok := doc.Resource(c.ToResourceID); !ok {
			result.addError(diag.New(diag.CategoryValidation, "Connection", c.Identifier, c.ToResourceID,
				"Connection '%s' references unknown target resource '%s'", c.Identifier, c.ToResourceID))
		}
	}

	// Resources without a layout object are legal (purely logical resources)
	// but worth flagging.
	withLayout := make(map[string]bool, len(doc.LayoutObjects()))
	for _, lo := range doc.LayoutObjects() {
		withLayout[lo.AssociatedResourceID] = true
	}
	for _, r := range doc.Resources() {
		if !withLayout[r.Identifier] {
			result.addWarning(diag.New(diag.CategoryValidation, "Resource", r.Identifier, "",
				"Resource '%s' has no associated layout object", r.Identifier))
		}
	}

	return result
}

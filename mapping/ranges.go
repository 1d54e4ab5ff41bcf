package mapping

import "fmt"

// RangeValidator checks coerced numeric values against the configured
// per-property bounds.
type RangeValidator struct {
	ranges map[string][2]float64
}

// NewRangeValidator builds a validator over the rule table's validation
// section.
func NewRangeValidator(rules ValidationRules) *RangeValidator {
	return &RangeValidator{ranges: rules.Ranges}
}

// Check returns an error when a bound is configured for the property and the
// value falls outside it. Properties without bounds always pass.
func (v *RangeValidator) Check(propName string, value float64) error {
	bounds, ok := v.ranges[propName]
	if !ok {
		return nil
	}
	if value < bounds[0] || value > bounds[1] {
		return fmt.Errorf("%s value %v outside valid range [%v, %v]",
			propName, value, bounds[0], bounds[1])
	}
	return nil
}

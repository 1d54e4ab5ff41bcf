package model

import "strconv"

// Property is a named value attached to a resource. Values are stored as the
// raw document text; numeric access is best-effort because properties are
// frequently descriptive strings.
type Property struct {
	Name  string `json:"name"`
	Value string `json:"value"`
	Unit  string `json:"unit,omitempty"`
}

// NumericValue converts the value to a float. The bool reports whether the
// conversion succeeded; it never panics or errors.
func (p Property) NumericValue() (float64, bool) {
	v, err := strconv.ParseFloat(p.Value, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// IntValue converts the value to an int, accepting float notation.
func (p Property) IntValue() (int, bool) {
	if v, err := strconv.Atoi(p.Value); err == nil {
		return v, true
	}
	f, ok := p.NumericValue()
	if !ok {
		return 0, false
	}
	return int(f), true
}

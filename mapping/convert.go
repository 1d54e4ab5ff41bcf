package mapping

// UnitConverter applies table-driven multiplicative unit conversions. A
// conversion category declares a base unit and per-unit multipliers into it.
type UnitConverter struct {
	tables map[string]ConversionTable
}

// NewUnitConverter builds a converter over the rule table's conversion
// section.
func NewUnitConverter(tables map[string]ConversionTable) *UnitConverter {
	return &UnitConverter{tables: tables}
}

// Convert converts a value from the given unit into the category's base
// unit. The bool reports whether the unit was recognized: true when a
// multiplier applied or the value was already in the base unit, false when
// the category or unit is unknown and the value passed through unchanged.
// Callers surface the unrecognized case as a warning.
func (c *UnitConverter) Convert(value float64, fromUnit, category string) (float64, bool) {
	table, ok := c.tables[category]
	if !ok {
		return value, false
	}
	if fromUnit == table.BaseUnit {
		return value, true
	}
	multiplier, ok := table.Conversions[fromUnit]
	if !ok {
		return value, false
	}
	return value * multiplier, true
}

// FromBase converts a base-unit value back into the given unit, the inverse
// of Convert. Unknown categories or units pass through unchanged.
func (c *UnitConverter) FromBase(value float64, toUnit, category string) (float64, bool) {
	table, ok := c.tables[category]
	if !ok {
		return value, false
	}
	if toUnit == table.BaseUnit {
		return value, true
	}
	multiplier, ok := table.Conversions[toUnit]
	if !ok || multiplier == 0 {
		return value, false
	}
	return value / multiplier, true
}

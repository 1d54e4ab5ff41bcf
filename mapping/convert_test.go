package mapping

import (
	"math"
	"testing"
)

func testTables() map[string]ConversionTable {
	return map[string]ConversionTable{
		"time": {
			BaseUnit: "second",
			Conversions: map[string]float64{
				"minute": 60,
				"hour":   3600,
			},
		},
		"length": {
			BaseUnit: "meter",
			Conversions: map[string]float64{
				"millimeter": 0.001,
			},
		},
	}
}

func TestConvert(t *testing.T) {
	c := NewUnitConverter(testTables())

	if v, ok := c.Convert(2, "minute", "time"); !ok || v != 120 {
		t.Errorf("expected 120 recognized, got %v (ok=%v)", v, ok)
	}
	if v, ok := c.Convert(500, "millimeter", "length"); !ok || v != 0.5 {
		t.Errorf("expected 0.5 recognized, got %v (ok=%v)", v, ok)
	}
}

func TestConvertBaseUnitIdentity(t *testing.T) {
	c := NewUnitConverter(testTables())
	if v, ok := c.Convert(42, "second", "time"); !ok || v != 42 {
		t.Errorf("base unit must pass through recognized, got %v (ok=%v)", v, ok)
	}
}

func TestConvertUnrecognized(t *testing.T) {
	c := NewUnitConverter(testTables())

	// Unknown unit within a known category.
	if v, ok := c.Convert(7, "fortnight", "time"); ok || v != 7 {
		t.Errorf("expected unrecognized pass-through, got %v (ok=%v)", v, ok)
	}
	// Unknown category.
	if v, ok := c.Convert(7, "second", "velocity"); ok || v != 7 {
		t.Errorf("expected unrecognized pass-through, got %v (ok=%v)", v, ok)
	}
}

func TestFromBaseRoundTrip(t *testing.T) {
	c := NewUnitConverter(testTables())

	base, ok := c.Convert(90, "minute", "time")
	if !ok {
		t.Fatal("conversion not recognized")
	}
	back, ok := c.FromBase(base, "minute", "time")
	if !ok {
		t.Fatal("inverse conversion not recognized")
	}
	if math.Abs(back-90) > 1e-9 {
		t.Errorf("round trip drifted: %v", back)
	}
}

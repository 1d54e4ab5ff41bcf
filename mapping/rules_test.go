package mapping

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rulesYAML = `
resource_mappings:
  machine:
    template: Station
    alias: workstation
    properties:
      ProcessingTime:
        target: ProcTime
        data_type: positive_float
        unit_conversion: time
      Capacity:
        data_type: int
      Label: {}
    required_properties: [Speed]
    default_properties:
      Speed: 0.2
  conveyor:
    template: Line
unit_conversions:
  time:
    base_unit: second
    conversions:
      minute: 60
property_validation:
  ranges:
    Capacity: [1, 100]
settings:
  model_frame: .Models.Frame
  user_objects: .UserObjects
  templates:
    Station: .Library.Station
  naming:
    case_handling: lower
    invalid_chars: [" "]
error_handling:
  on_creation_error: error_and_stop
  on_property_error: warn_and_continue
`

func TestLoadRules(t *testing.T) {
	table, err := LoadRules(strings.NewReader(rulesYAML))
	require.NoError(t, err)

	rule, ok := table.ResourceMappings["machine"]
	require.True(t, ok)
	assert.Equal(t, "Station", rule.Template)
	assert.Equal(t, []string{"Speed"}, rule.RequiredProperties)
	assert.Equal(t, 0.2, rule.DefaultProperties["Speed"])

	// Property rules keep their declaration order.
	assert.Equal(t, []string{"ProcessingTime", "Capacity", "Label"}, rule.Properties.Names())

	pt, ok := rule.Properties.Rule("ProcessingTime")
	require.True(t, ok)
	assert.Equal(t, "ProcTime", pt.Target)
	assert.Equal(t, "positive_float", pt.DataType)
	assert.Equal(t, "time", pt.UnitConversion)

	assert.Equal(t, [2]float64{1, 100}, table.PropertyValidation.Ranges["Capacity"])
	assert.Equal(t, "error_and_stop", table.ErrorHandling.OnCreationError)
}

func TestLoadRulesRejectsInvalidYAML(t *testing.T) {
	_, err := LoadRules(strings.NewReader("resource_mappings: [broken"))
	assert.Error(t, err)
}

func TestRuleForCaseAndAlias(t *testing.T) {
	table, err := LoadRules(strings.NewReader(rulesYAML))
	require.NoError(t, err)

	for _, typ := range []string{"machine", "Machine", "MACHINE"} {
		rule, ok := table.RuleFor(typ)
		require.True(t, ok, "lookup failed for %q", typ)
		assert.Equal(t, "Station", rule.Template)
	}

	// Alias indirection.
	rule, ok := table.RuleFor("Workstation")
	require.True(t, ok)
	assert.Equal(t, "Station", rule.Template)

	_, ok = table.RuleFor("robot")
	assert.False(t, ok)
}

func TestTemplatePath(t *testing.T) {
	table, err := LoadRules(strings.NewReader(rulesYAML))
	require.NoError(t, err)

	// Pinned template.
	assert.Equal(t, ".Library.Station", table.Settings.TemplatePath("Station"))
	// Unpinned templates fall back to the user-objects scope.
	assert.Equal(t, ".UserObjects.Line", table.Settings.TemplatePath("Line"))

	empty := Settings{}
	assert.Equal(t, ".UserObjects.Line", empty.TemplatePath("Line"))
}

func TestPropertyRulesSetKeepsOrder(t *testing.T) {
	var rules PropertyRules
	rules.Set("b", PropertyRule{DataType: "int"})
	rules.Set("a", PropertyRule{})
	rules.Set("b", PropertyRule{DataType: "float"}) // replace keeps position

	assert.Equal(t, []string{"b", "a"}, rules.Names())
	r, ok := rules.Rule("b")
	require.True(t, ok)
	assert.Equal(t, "float", r.DataType)
}

package mapping

import (
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/factory-layout/interpreter/diag"
	"github.com/factory-layout/interpreter/model"
)

// Engine maps a validated document onto backend object mappings. An engine
// instance is scoped to one pipeline run: material-unit label assignment is
// deduplicated per run and stable within it.
type Engine struct {
	rules     *RuleTable
	converter *UnitConverter
	ranges    *RangeValidator
	sanitizer *NameSanitizer
	log       *zap.Logger

	materialUnits map[string]string // product type -> generated part label
	muOrder       []string
	nextMULetter  rune
}

// NewEngine creates an engine over a rule table. A nil logger disables
// logging.
func NewEngine(rules *RuleTable, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		rules:         rules,
		converter:     NewUnitConverter(rules.UnitConversions),
		ranges:        NewRangeValidator(rules.PropertyValidation),
		sanitizer:     NewNameSanitizer(rules.Settings.Naming),
		log:           log,
		materialUnits: make(map[string]string),
		nextMULetter:  'A',
	}
}

// Sanitizer exposes the engine's name sanitizer for callers that need the
// same naming rules (the builder's fallback naming path).
func (e *Engine) Sanitizer() *NameSanitizer { return e.sanitizer }

// MaterialUnits returns the product-type to part-label assignments made so
// far, in a fresh map.
func (e *Engine) MaterialUnits() map[string]string {
	out := make(map[string]string, len(e.materialUnits))
	for k, v := range e.materialUnits {
		out[k] = v
	}
	return out
}

// Map produces one object mapping per layout object whose resource resolves
// to a rule-table entry. Unmapped resource types are tolerated and skipped;
// the result may hold fewer objects than the document has resources.
func (e *Engine) Map(doc *model.Document) *Set {
	set := NewSet()

	for _, lo := range doc.LayoutObjects() {
		resource, ok := doc.Resource(lo.AssociatedResourceID)
		if !ok {
			// Validation guarantees this for gated pipelines; tolerate direct use.
			continue
		}

		rule, ok := e.rules.RuleFor(resource.ResourceType)
		if !ok {
			e.log.Warn("no mapping rule for resource type",
				zap.String("resourceType", resource.ResourceType),
				zap.String("resource", resource.Identifier))
			continue
		}

		m := &ObjectMapping{
			ResourceID:   resource.Identifier,
			ResourceName: resource.Name,
			ResourceType: resource.ResourceType,
			Template:     rule.Template,
		}

		placement, _ := doc.Placement(lo.Identifier)
		e.mapBasicProperties(m, resource, placement)
		e.mapRuleProperties(m, resource, rule)
		e.applyRequiredProperties(m, resource, rule)

		set.Add(m)
	}

	return set
}

// mapBasicProperties emits position, rotation and the sanitized object name.
func (e *Engine) mapBasicProperties(m *ObjectMapping, resource *model.Resource, placement *model.Placement) {
	if placement == nil {
		m.AddWarning(diag.New(diag.CategoryMapping, "Resource", resource.Identifier, "",
			"No placement information found"))
	} else {
		pos := placement.Position
		m.AddProperty(PropCoordinate, []float64{pos.X, pos.Y, pos.Z}, KindList)

		if placement.Rotation != nil {
			rot := placement.Rotation
			// Always the 4-element [angle, axisX, axisY, axisZ] form, even
			// when the axis came from defaults.
			m.AddProperty(PropRotation, []float64{rot.Angle, rot.AxisX, rot.AxisY, rot.AxisZ}, KindList)
		}
	}

	m.AddProperty(PropName, e.sanitizer.Sanitize(resource.Name), KindString)
}

func (e *Engine) mapRuleProperties(m *ObjectMapping, resource *model.Resource, rule *ResourceRule) {
	for _, srcName := range rule.Properties.Names() {
		propRule, _ := rule.Properties.Rule(srcName)
		e.mapSingleProperty(m, resource, srcName, propRule)
	}
}

func (e *Engine) mapSingleProperty(m *ObjectMapping, resource *model.Resource, srcName string, rule PropertyRule) {
	prop, ok := resource.Property(srcName)
	if !ok {
		// Optional per rule: absent source properties are simply skipped.
		return
	}

	if rule.SpecialHandler != "" {
		e.handleSpecialProperty(m, prop, rule.SpecialHandler)
		return
	}

	target := rule.Target
	if target == "" {
		target = srcName
	}
	dataType := rule.DataType
	if dataType == "" {
		dataType = "string"
	}

	raw := prop.Value
	if rule.UnitConversion != "" && prop.Unit != "" {
		if n, err := strconv.ParseFloat(raw, 64); err == nil {
			converted, recognized := e.converter.Convert(n, prop.Unit, rule.UnitConversion)
			if !recognized {
				m.AddWarning(diag.New(diag.CategoryUnit, "Property", srcName, prop.Unit,
					"no conversion from unit '%s' in category '%s' for '%s'; value passed through",
					prop.Unit, rule.UnitConversion, srcName))
			}
			raw = strconv.FormatFloat(converted, 'g', -1, 64)
		}
	}

	value, kind := coerce(raw, dataType)

	if f, isNumeric := numericValue(value); isNumeric {
		if strings.HasPrefix(dataType, "positive_") && f < 0 {
			m.AddError(diag.New(diag.CategoryMapping, "Property", srcName, "",
				"Invalid value for %s: expected %s, got %v", srcName, dataType, f))
			return
		}
		if err := e.ranges.Check(srcName, f); err != nil {
			m.AddError(diag.New(diag.CategoryMapping, "Property", srcName, "", "%s", err.Error()))
			return
		}
	}

	m.AddProperty(target, value, kind)
}

// applyRequiredProperties fills missing required properties from the
// configured defaults, or records a mapping error when no default exists.
func (e *Engine) applyRequiredProperties(m *ObjectMapping, resource *model.Resource, rule *ResourceRule) {
	for _, required := range rule.RequiredProperties {
		if _, ok := resource.Property(required); ok {
			continue
		}

		defaultValue, ok := rule.DefaultProperties[required]
		if !ok {
			m.AddError(diag.New(diag.CategoryMapping, "Property", required, "",
				"Required property '%s' not found and no default available", required))
			continue
		}

		target := required
		if propRule, ok := rule.Properties.Rule(required); ok && propRule.Target != "" {
			target = propRule.Target
		}
		m.AddProperty(target, defaultValue, KindFloat)
		m.AddWarning(diag.New(diag.CategoryMapping, "Property", required, "",
			"Using default value for required property '%s': %v", required, defaultValue))
	}
}

// handleSpecialProperty dispatches named special handlers. Handlers bypass
// the generic path and keep cross-entity bookkeeping on the engine.
func (e *Engine) handleSpecialProperty(m *ObjectMapping, prop model.Property, handler string) {
	switch handler {
	case "assign_material_unit":
		e.assignMaterialUnit(m, prop)
	default:
		m.AddWarning(diag.New(diag.CategoryMapping, "Property", prop.Name, "",
			"Unknown special handler: %s", handler))
	}
}

// assignMaterialUnit assigns one generated part label per distinct product
// type, in first-seen order ("PartA", "PartB", ...). Repeated lookups of the
// same product type are stable within the run.
func (e *Engine) assignMaterialUnit(m *ObjectMapping, prop model.Property) {
	productType := prop.Value

	label, ok := e.materialUnits[productType]
	if !ok {
		label = "Part" + string(e.nextMULetter)
		e.materialUnits[productType] = label
		e.muOrder = append(e.muOrder, productType)
		e.nextMULetter++
	}

	m.AddProperty(PropPath, label, KindMaterialUnit)
	m.Properties = append(m.Properties, MappedProperty{
		Name:  PropMUInfo,
		Value: label,
		Kind:  KindSpecial,
		Meta: map[string]string{
			"product_type": productType,
			"mu_name":      label,
		},
	})
}

// coerce converts a raw string to the rule's declared data type. Parse
// failures default to the type's zero value; coercion never raises.
func coerce(raw, dataType string) (any, Kind) {
	switch dataType {
	case "int", "positive_int":
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, KindInt
		}
		return int(f), KindInt
	case "float", "positive_float":
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0.0, KindFloat
		}
		return f, KindFloat
	default:
		return raw, KindString
	}
}

func numericValue(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

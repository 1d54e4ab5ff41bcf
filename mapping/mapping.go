package mapping

import "github.com/factory-layout/interpreter/diag"

// Kind classifies a mapped property value for the builder. Material-unit and
// special properties bypass the generic property-setting path.
type Kind string

const (
	KindString       Kind = "string"
	KindInt          Kind = "int"
	KindFloat        Kind = "float"
	KindList         Kind = "list"
	KindMaterialUnit Kind = "material_unit"
	KindSpecial      Kind = "special"
)

// Standard target property names emitted by the engine.
const (
	PropName       = "name"
	PropCoordinate = "Coordinate3D"
	PropRotation   = "_3D.Rotation"
	PropPath       = "Path"
	PropMUInfo     = "_material_unit_info"
)

// MappedProperty is one target property of an object mapping. Meta carries
// handler bookkeeping for special kinds.
type MappedProperty struct {
	Name  string            `json:"name"`
	Value any               `json:"value"`
	Kind  Kind              `json:"kind"`
	Meta  map[string]string `json:"meta,omitempty"`
}

// ObjectMapping is the per-resource output of the engine: the target template
// plus the ordered property values, with any local diagnostics. Mapping-level
// problems live here and never abort the engine.
type ObjectMapping struct {
	ResourceID   string            `json:"resourceId"`
	ResourceName string            `json:"resourceName"`
	ResourceType string            `json:"resourceType"`
	Template     string            `json:"template"`
	Properties   []MappedProperty  `json:"properties"`
	Errors       []diag.Diagnostic `json:"errors,omitempty"`
	Warnings     []diag.Diagnostic `json:"warnings,omitempty"`
}

// AddProperty appends a property, preserving application order.
func (m *ObjectMapping) AddProperty(name string, value any, kind Kind) {
	m.Properties = append(m.Properties, MappedProperty{Name: name, Value: value, Kind: kind})
}

// Property returns the first property with the given name.
func (m *ObjectMapping) Property(name string) (MappedProperty, bool) {
	for _, p := range m.Properties {
		if p.Name == name {
			return p, true
		}
	}
	return MappedProperty{}, false
}

// ObjectName returns the sanitized target object name carried in the mapped
// "name" property, or "" when absent.
func (m *ObjectMapping) ObjectName() string {
	p, ok := m.Property(PropName)
	if !ok {
		return ""
	}
	name, _ := p.Value.(string)
	return name
}

// AddError records a mapping-level error.
func (m *ObjectMapping) AddError(d diag.Diagnostic) {
	m.Errors = append(m.Errors, d)
}

// AddWarning records a mapping-level warning.
func (m *ObjectMapping) AddWarning(d diag.Diagnostic) {
	m.Warnings = append(m.Warnings, d)
}

// Set holds object mappings keyed by resource identifier while preserving
// document order; the orchestrator depends on stable iteration for
// deterministic object naming.
type Set struct {
	order []string
	byID  map[string]*ObjectMapping
}

// NewSet creates an empty mapping set.
func NewSet() *Set {
	return &Set{byID: make(map[string]*ObjectMapping)}
}

// Add registers a mapping, replacing any earlier mapping for the same
// resource while keeping its position.
func (s *Set) Add(m *ObjectMapping) {
	if _, exists := s.byID[m.ResourceID]; !exists {
		s.order = append(s.order, m.ResourceID)
	}
	s.byID[m.ResourceID] = m
}

// Get returns the mapping for a resource identifier.
func (s *Set) Get(resourceID string) (*ObjectMapping, bool) {
	m, ok := s.byID[resourceID]
	return m, ok
}

// All returns the mappings in document order.
func (s *Set) All() []*ObjectMapping {
	out := make([]*ObjectMapping, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out
}

// Len reports the number of mappings.
func (s *Set) Len() int { return len(s.order) }

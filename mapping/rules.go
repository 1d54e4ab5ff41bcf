// Package mapping transforms the document model into backend-ready object
// mappings using a declarative, externally supplied rule table. Per-object
// problems degrade to diagnostics attached to the individual mapping; one bad
// resource never blocks the others.
package mapping

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// RuleTable is the external mapping configuration: per-resource-type rules
// plus the global unit-conversion, validation, naming and backend settings.
type RuleTable struct {
	ResourceMappings   map[string]*ResourceRule   `yaml:"resource_mappings"`
	UnitConversions    map[string]ConversionTable `yaml:"unit_conversions"`
	PropertyValidation ValidationRules            `yaml:"property_validation"`
	Settings           Settings                   `yaml:"settings"`
	MaterialUnits      MaterialUnitConfig         `yaml:"material_units"`
	ErrorHandling      ErrorHandling              `yaml:"error_handling"`
}

// ResourceRule maps one resource type onto a backend template with its
// property translations.
type ResourceRule struct {
	Template           string             `yaml:"template"`
	Alias              string             `yaml:"alias,omitempty"`
	Properties         PropertyRules      `yaml:"properties"`
	RequiredProperties []string           `yaml:"required_properties"`
	DefaultProperties  map[string]float64 `yaml:"default_properties"`
}

// PropertyRule describes the translation of one source property.
type PropertyRule struct {
	Target         string `yaml:"target,omitempty"` // defaults to the source name
	DataType       string `yaml:"data_type,omitempty"`
	UnitConversion string `yaml:"unit_conversion,omitempty"`
	SpecialHandler string `yaml:"special_handler,omitempty"`
}

// PropertyRules is an order-preserving map of source property name to rule.
// Mapped properties must be applied in the order the table declares them, so
// the YAML mapping order is kept instead of decoding into a Go map.
type PropertyRules struct {
	order []string
	rules map[string]PropertyRule
}

// UnmarshalYAML decodes a YAML mapping while recording key order.
func (p *PropertyRules) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("properties: expected mapping, got %v", node.Kind)
	}
	p.rules = make(map[string]PropertyRule, len(node.Content)/2)
	p.order = p.order[:0]
	for i := 0; i+1 < len(node.Content); i += 2 {
		var key string
		if err := node.Content[i].Decode(&key); err != nil {
			return err
		}
		var rule PropertyRule
		if err := node.Content[i+1].Decode(&rule); err != nil {
			return err
		}
		p.order = append(p.order, key)
		p.rules[key] = rule
	}
	return nil
}

// Names returns the source property names in declaration order.
func (p PropertyRules) Names() []string { return p.order }

// Rule returns the rule for a source property name.
func (p PropertyRules) Rule(name string) (PropertyRule, bool) {
	r, ok := p.rules[name]
	return r, ok
}

// set is a test helper path for building tables in code.
func (p *PropertyRules) set(name string, rule PropertyRule) {
	if p.rules == nil {
		p.rules = make(map[string]PropertyRule)
	}
	if _, exists := p.rules[name]; !exists {
		p.order = append(p.order, name)
	}
	p.rules[name] = rule
}

// Set adds or replaces a property rule, preserving first-insertion order.
func (p *PropertyRules) Set(name string, rule PropertyRule) { p.set(name, rule) }

// ConversionTable declares multiplicative conversions into one base unit.
type ConversionTable struct {
	BaseUnit    string             `yaml:"base_unit"`
	Conversions map[string]float64 `yaml:"conversions"`
}

// ValidationRules holds numeric range bounds keyed by source property name.
type ValidationRules struct {
	Ranges map[string][2]float64 `yaml:"ranges"`
}

// NamingConfig controls the name sanitizer.
type NamingConfig struct {
	CaseHandling    string   `yaml:"case_handling"` // upper | lower | preserve
	InvalidChars    []string `yaml:"invalid_chars"`
	ReplacementChar string   `yaml:"replacement_char"`
	MaxLength       int      `yaml:"max_length"`
	DigitPrefix     string   `yaml:"digit_prefix"`
}

// Settings carries the backend object paths and naming rules.
type Settings struct {
	ModelFrame  string            `yaml:"model_frame"`
	Connector   string            `yaml:"connector"`
	UserObjects string            `yaml:"user_objects"`
	Templates   map[string]string `yaml:"templates"`
	Naming      NamingConfig      `yaml:"naming"`
}

// TemplatePath resolves a template name to a backend path, falling back to
// the user-objects scope for templates the table does not pin explicitly.
func (s Settings) TemplatePath(name string) string {
	if path, ok := s.Templates[name]; ok {
		return path
	}
	userObjects := s.UserObjects
	if userObjects == "" {
		userObjects = ".UserObjects"
	}
	return userObjects + "." + name
}

// MaterialUnitConfig locates the template used for derived part objects.
type MaterialUnitConfig struct {
	TemplatePath string `yaml:"template_path"`
}

// ErrorHandling holds the per-category policy mode names
// (error_and_stop | warn_and_continue | ignore).
type ErrorHandling struct {
	OnCreationError   string `yaml:"on_creation_error"`
	OnPropertyError   string `yaml:"on_property_error"`
	OnConnectionError string `yaml:"on_connection_error"`
}

// LoadRules parses a rule table from a reader.
func LoadRules(r io.Reader) (*RuleTable, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var table RuleTable
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("failed to parse mapping rules: %w", err)
	}
	return &table, nil
}

// LoadRulesFile parses a rule table from a file path.
func LoadRulesFile(path string) (*RuleTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadRules(f)
}

// RuleFor resolves the rule for a resource type, case-insensitively, with one
// level of alias indirection: when the literal type is not a direct key, a
// rule whose alias equals the type serves instead.
func (t *RuleTable) RuleFor(resourceType string) (*ResourceRule, bool) {
	key := strings.ToLower(resourceType)
	if rule, ok := t.ResourceMappings[key]; ok {
		return rule, true
	}
	for _, rule := range t.ResourceMappings {
		if strings.ToLower(rule.Alias) == key && rule.Alias != "" {
			return rule, true
		}
	}
	return nil, false
}

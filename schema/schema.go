// Package schema holds the declarative description of where each semantic
// field lives inside the source markup tree. The configuration is external
// data (YAML) and is the contract between the upstream document producer and
// this module; nothing about the document layout is hard-coded in the parser.
//
// Paths are slash-separated element names matched against local names only
// (namespace prefixes in the document are ignored). A leading "//" searches
// all descendants instead of direct children, e.g.
// "//Resource" or "ResourceInformation/Resource".
package schema

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the root of a schema configuration file, holding one or more
// named schemas.
type Config struct {
	Schemas map[string]*Schema `yaml:"schemas"`
}

// Schema describes one document dialect.
type Schema struct {
	Header        Section        `yaml:"header"`
	Resources     Resources      `yaml:"resources"`
	LayoutObjects LayoutObjects  `yaml:"layout_objects"`
	Layout        Layout         `yaml:"layout"`
	PartTypes     Section        `yaml:"part_types"`
}

// Section locates a repeated or singular element and its per-entity fields.
// Field values are paths relative to the located element.
type Section struct {
	Path   string            `yaml:"path"`
	Fields map[string]string `yaml:"fields"`
}

// Field returns the configured path for a field name, or "" when the schema
// does not map it. Missing optional fields are not an error.
func (s Section) Field(name string) string {
	return s.Fields[name]
}

// Resources locates resource elements plus their nested property and
// connection elements.
type Resources struct {
	Path        string            `yaml:"path"`
	Fields      map[string]string `yaml:"fields"`
	Properties  Section           `yaml:"properties"`
	Connections Section           `yaml:"connections"`
}

// Field returns the configured path for a resource field.
func (r Resources) Field(name string) string { return r.Fields[name] }

// Boundary locates the dimension fields of a boundary element.
type Boundary struct {
	Width  string `yaml:"width"`
	Depth  string `yaml:"depth"`
	Height string `yaml:"height"`
	Unit   string `yaml:"unit"`
}

// Empty reports whether no boundary extraction is configured.
func (b Boundary) Empty() bool {
	return b.Width == "" && b.Depth == "" && b.Height == "" && b.Unit == ""
}

// LayoutObjects locates layout object elements and their boundaries.
type LayoutObjects struct {
	Path     string            `yaml:"path"`
	Fields   map[string]string `yaml:"fields"`
	Boundary Boundary          `yaml:"boundary"`
}

// Field returns the configured path for a layout object field.
func (l LayoutObjects) Field(name string) string { return l.Fields[name] }

// Layout locates the layout section with its placements.
type Layout struct {
	Path       string            `yaml:"path"`
	Fields     map[string]string `yaml:"fields"`
	Boundary   Boundary          `yaml:"boundary"`
	Placements Section           `yaml:"placements"`
}

// Field returns the configured path for a layout field.
func (l Layout) Field(name string) string { return l.Fields[name] }

// Load parses a schema configuration from a reader.
func Load(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse schema config: %w", err)
	}
	return &cfg, nil
}

// LoadFile parses a schema configuration from a file path.
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

// Schema returns the named schema or an error listing what is available.
func (c *Config) Schema(name string) (*Schema, error) {
	s, ok := c.Schemas[name]
	if !ok {
		return nil, fmt.Errorf("schema %q not found in configuration", name)
	}
	return s, nil
}

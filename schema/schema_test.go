package schema

import (
	"strings"
	"testing"
)

const sampleConfig = `
schemas:
  cmsd_v1:
    header:
      path: DataSection/Header
      fields:
        document_identifier: Identifier
        time_unit: DefaultUnits/Time
    resources:
      path: //Resource
      fields:
        identifier: Identifier
      properties:
        path: Property
        fields:
          name: Name
          value: Value
      connections:
        path: Connection
        fields:
          to_resource_id: ToResource
    layout_objects:
      path: //LayoutObject
      fields:
        identifier: Identifier
      boundary:
        width: Boundary/Width
        depth: Boundary/Depth
    layout:
      path: //Layout
      placements:
        path: Placement
        fields:
          layout_element_id: LayoutElement
  minimal:
    header:
      path: Head
`

func TestLoadConfig(t *testing.T) {
	cfg, err := Load(strings.NewReader(sampleConfig))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(cfg.Schemas) != 2 {
		t.Fatalf("expected 2 schemas, got %d", len(cfg.Schemas))
	}

	s, err := cfg.Schema("cmsd_v1")
	if err != nil {
		t.Fatal(err)
	}
	if s.Header.Path != "DataSection/Header" {
		t.Errorf("unexpected header path: %s", s.Header.Path)
	}
	if got := s.Header.Field("document_identifier"); got != "Identifier" {
		t.Errorf("unexpected field path: %s", got)
	}
	// Unmapped optional fields read as empty paths.
	if got := s.Header.Field("weight_unit"); got != "" {
		t.Errorf("expected empty path for unmapped field, got %q", got)
	}

	if s.Resources.Properties.Field("value") != "Value" {
		t.Error("nested properties section not loaded")
	}
	if s.Resources.Connections.Field("to_resource_id") != "ToResource" {
		t.Error("nested connections section not loaded")
	}
	if s.LayoutObjects.Boundary.Empty() {
		t.Error("expected configured boundary")
	}
	if !s.Layout.Boundary.Empty() {
		t.Error("expected empty layout boundary")
	}
}

func TestSchemaLookupUnknown(t *testing.T) {
	cfg, err := Load(strings.NewReader(sampleConfig))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := cfg.Schema("nope"); err == nil {
		t.Error("expected error for unknown schema name")
	}
}

func TestLoadRejectsInvalidYAML(t *testing.T) {
	if _, err := Load(strings.NewReader("schemas: [not, a, map")); err == nil {
		t.Error("expected error for malformed configuration")
	}
}

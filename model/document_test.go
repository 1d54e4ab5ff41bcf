package model

import "testing"

func TestPropertyNumericCoercion(t *testing.T) {
	p := Property{Name: "speed", Value: "1.5"}
	if v, ok := p.NumericValue(); !ok || v != 1.5 {
		t.Errorf("expected 1.5, got %v (ok=%v)", v, ok)
	}

	p = Property{Name: "status", Value: "running"}
	if _, ok := p.NumericValue(); ok {
		t.Error("expected numeric coercion of text to fail silently")
	}
	if _, ok := p.IntValue(); ok {
		t.Error("expected int coercion of text to fail silently")
	}

	p = Property{Name: "count", Value: "3.9"}
	if v, ok := p.IntValue(); !ok || v != 3 {
		t.Errorf("expected int 3 from float notation, got %v (ok=%v)", v, ok)
	}
}

func TestResourcePropertyLookupCaseInsensitive(t *testing.T) {
	r := &Resource{Identifier: "res1", Name: "Press"}
	r.SetProperties([]Property{
		{Name: "ProcessingTime", Value: "12", Unit: "second"},
		{Name: "Capacity", Value: "5"},
	})

	for _, name := range []string{"processingtime", "ProcessingTime", "PROCESSINGTIME"} {
		p, ok := r.Property(name)
		if !ok {
			t.Fatalf("property lookup failed for %q", name)
		}
		if p.Value != "12" {
			t.Errorf("expected value 12, got %s", p.Value)
		}
	}

	if v := r.PropertyValue("missing"); v != "" {
		t.Errorf("expected empty value for missing property, got %q", v)
	}
}

func TestDocumentPreservesOrder(t *testing.T) {
	doc := NewDocument(Header{Identifier: "doc1"})

	ids := []string{"m3", "m1", "m2"}
	for _, id := range ids {
		doc.AddResource(&Resource{Identifier: id})
	}

	resources := doc.Resources()
	if len(resources) != 3 {
		t.Fatalf("expected 3 resources, got %d", len(resources))
	}
	for i, id := range ids {
		if resources[i].Identifier != id {
			t.Errorf("position %d: expected %s, got %s", i, id, resources[i].Identifier)
		}
	}

	if _, ok := doc.Resource("m2"); !ok {
		t.Error("lookup by identifier failed")
	}
}

func TestDocumentUnitDefaults(t *testing.T) {
	doc := NewDocument(Header{Identifier: "doc1"})
	if doc.Header.TimeUnit != "second" || doc.Header.LengthUnit != "meter" || doc.Header.WeightUnit != "kilogram" {
		t.Errorf("unexpected unit defaults: %+v", doc.Header)
	}
}

func TestResolveConnectionsPreservesDuplicates(t *testing.T) {
	doc := NewDocument(Header{Identifier: "doc1"})
	doc.AddResource(&Resource{Identifier: "a"})
	doc.AddResource(&Resource{Identifier: "b"})

	doc.AddConnection(&Connection{Identifier: "c1", FromResourceID: "a", ToResourceID: "b"})
	doc.AddConnection(&Connection{Identifier: "c2", FromResourceID: "a", ToResourceID: "b"})
	doc.AddConnection(&Connection{Identifier: "c3", FromResourceID: "a", ToResourceID: "ghost"})

	doc.ResolveConnections()

	a, _ := doc.Resource("a")
	if len(a.Connections) != 3 {
		t.Fatalf("expected 3 outgoing connections, got %d", len(a.Connections))
	}
	if a.Connections[0] != "b" || a.Connections[1] != "b" || a.Connections[2] != "ghost" {
		t.Errorf("unexpected connection order: %v", a.Connections)
	}
}

func TestLayoutPlacements(t *testing.T) {
	layout := &Layout{Identifier: "main"}
	layout.AddPlacement(&Placement{LayoutElementID: "lo2", Position: Position{X: 2}})
	layout.AddPlacement(&Placement{LayoutElementID: "lo1", Position: Position{X: 1}})

	if p, ok := layout.Placement("lo1"); !ok || p.Position.X != 1 {
		t.Error("placement lookup failed")
	}

	placements := layout.Placements()
	if len(placements) != 2 || placements[0].LayoutElementID != "lo2" {
		t.Errorf("unexpected placement order: %v", placements)
	}
}

func TestNewBoundaryDefaults(t *testing.T) {
	b := NewBoundary(2, 3, 0, "")
	if b.Height != 1.0 || b.Unit != "meter" {
		t.Errorf("expected defaults height=1 unit=meter, got %+v", b)
	}
}

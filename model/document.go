// Package model defines the intermediate representation of a factory-layout
// document: resources, their spatial placements, inter-resource connections
// and part types, normalized out of the source markup by the parser and
// consumed by the validator and the mapping engine.
//
// The Document owns all child entities. Children never hold references back
// to the document; lookups go through Document accessors, keeping the whole
// structure an acyclic tree of owned values.
package model

import "strings"

// Resource is a logical entity in the source layout (machine, conveyor,
// source, sink). Connections lists target resource identifiers in document
// order and is populated by ResolveConnections after parsing, never during
// it, so forward references are harmless.
type Resource struct {
	Identifier              string     `json:"identifier"`
	ResourceType            string     `json:"resourceType"`
	Name                    string     `json:"name"`
	Description             string     `json:"description,omitempty"`
	CurrentStatus           string     `json:"currentStatus,omitempty"`
	ResourceClassIdentifier string     `json:"resourceClassIdentifier,omitempty"`
	Properties              []Property `json:"properties,omitempty"`
	Connections             []string   `json:"connections,omitempty"`

	// Lower-cased name index, built once when properties are attached.
	propIndex map[string]int
}

// SetProperties attaches the property list and builds the case-insensitive
// lookup index. Later duplicates of the same folded name win, matching the
// last-write semantics of the source document.
func (r *Resource) SetProperties(props []Property) {
	r.Properties = props
	r.propIndex = make(map[string]int, len(props))
	for i, p := range props {
		r.propIndex[strings.ToLower(p.Name)] = i
	}
}

// Property returns the property with the given name, case-insensitively.
func (r *Resource) Property(name string) (Property, bool) {
	i, ok := r.propIndex[strings.ToLower(name)]
	if !ok {
		return Property{}, false
	}
	return r.Properties[i], true
}

// PropertyValue returns the raw value of a property, or "" if absent.
func (r *Resource) PropertyValue(name string) string {
	p, ok := r.Property(name)
	if !ok {
		return ""
	}
	return p.Value
}

// Connection is a directed link between two resources. Multiple connections
// between the same pair are allowed and preserved in document order.
type Connection struct {
	Identifier     string `json:"identifier"`
	FromResourceID string `json:"fromResourceId"`
	ToResourceID   string `json:"toResourceId"`
	Description    string `json:"description,omitempty"`
}

// LayoutObject is the physical counterpart of a resource. The referenced
// resource is not guaranteed to exist until validation has passed.
type LayoutObject struct {
	Identifier           string    `json:"identifier"`
	AssociatedResourceID string    `json:"associatedResourceId"`
	Boundary             *Boundary `json:"boundary,omitempty"`
}

// Placement is the spatial pose of a layout object.
type Placement struct {
	LayoutElementID string    `json:"layoutElementId"`
	Position        Position  `json:"position"`
	Rotation        *Rotation `json:"rotation,omitempty"`
}

// Layout is the overall plan: a boundary plus placements keyed by layout
// element identifier.
type Layout struct {
	Identifier  string    `json:"identifier"`
	Description string    `json:"description,omitempty"`
	Boundary    *Boundary `json:"boundary,omitempty"`

	placements map[string]*Placement
	order      []string
}

// AddPlacement registers a placement, replacing any earlier one for the same
// layout element.
func (l *Layout) AddPlacement(p *Placement) {
	if l.placements == nil {
		l.placements = make(map[string]*Placement)
	}
	if _, exists := l.placements[p.LayoutElementID]; !exists {
		l.order = append(l.order, p.LayoutElementID)
	}
	l.placements[p.LayoutElementID] = p
}

// Placement returns the placement for a layout element identifier.
func (l *Layout) Placement(layoutElementID string) (*Placement, bool) {
	p, ok := l.placements[layoutElementID]
	return p, ok
}

// Placements returns all placements in document order.
func (l *Layout) Placements() []*Placement {
	out := make([]*Placement, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, l.placements[id])
	}
	return out
}

// PartType is a product type, independent of resources.
type PartType struct {
	Identifier  string    `json:"identifier"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Weight      *float64  `json:"weight,omitempty"`
	Dimensions  *Boundary `json:"dimensions,omitempty"`
}

// Header carries the document metadata and unit defaults.
type Header struct {
	Identifier   string `json:"identifier"`
	Description  string `json:"description,omitempty"`
	Version      string `json:"version,omitempty"`
	CreationTime string `json:"creationTime,omitempty"`
	TimeUnit     string `json:"timeUnit"`
	LengthUnit   string `json:"lengthUnit"`
	WeightUnit   string `json:"weightUnit"`
}

// Document is the root aggregate. Collections preserve document order while
// offering O(1) identifier lookup; downstream stages depend on both.
type Document struct {
	Header Header  `json:"header"`
	Layout *Layout `json:"layout,omitempty"`

	resources     map[string]*Resource
	resourceOrder []string

	layoutObjects map[string]*LayoutObject
	loOrder       []string

	partTypes map[string]*PartType
	ptOrder   []string

	connections []*Connection
}

// NewDocument creates an empty document with the given header, applying the
// standard unit defaults where the header leaves them blank.
func NewDocument(h Header) *Document {
	if h.TimeUnit == "" {
		h.TimeUnit = "second"
	}
	if h.LengthUnit == "" {
		h.LengthUnit = "meter"
	}
	if h.WeightUnit == "" {
		h.WeightUnit = "kilogram"
	}
	return &Document{
		Header:        h,
		resources:     make(map[string]*Resource),
		layoutObjects: make(map[string]*LayoutObject),
		partTypes:     make(map[string]*PartType),
	}
}

// AddResource registers a resource. A repeated identifier replaces the
// earlier entry but keeps its position.
func (d *Document) AddResource(r *Resource) {
	if _, exists := d.resources[r.Identifier]; !exists {
		d.resourceOrder = append(d.resourceOrder, r.Identifier)
	}
	d.resources[r.Identifier] = r
}

// Resource returns a resource by identifier.
func (d *Document) Resource(id string) (*Resource, bool) {
	r, ok := d.resources[id]
	return r, ok
}

// Resources returns all resources in document order.
func (d *Document) Resources() []*Resource {
	out := make([]*Resource, 0, len(d.resourceOrder))
	for _, id := range d.resourceOrder {
		out = append(out, d.resources[id])
	}
	return out
}

// ResourceCount reports the number of resources.
func (d *Document) ResourceCount() int { return len(d.resources) }

// AddLayoutObject registers a layout object.
func (d *Document) AddLayoutObject(lo *LayoutObject) {
	if _, exists := d.layoutObjects[lo.Identifier]; !exists {
		d.loOrder = append(d.loOrder, lo.Identifier)
	}
	d.layoutObjects[lo.Identifier] = lo
}

// LayoutObject returns a layout object by identifier.
func (d *Document) LayoutObject(id string) (*LayoutObject, bool) {
	lo, ok := d.layoutObjects[id]
	return lo, ok
}

// LayoutObjects returns all layout objects in document order.
func (d *Document) LayoutObjects() []*LayoutObject {
	out := make([]*LayoutObject, 0, len(d.loOrder))
	for _, id := range d.loOrder {
		out = append(out, d.layoutObjects[id])
	}
	return out
}

// AddPartType registers a part type.
func (d *Document) AddPartType(pt *PartType) {
	if _, exists := d.partTypes[pt.Identifier]; !exists {
		d.ptOrder = append(d.ptOrder, pt.Identifier)
	}
	d.partTypes[pt.Identifier] = pt
}

// PartType returns a part type by identifier.
func (d *Document) PartType(id string) (*PartType, bool) {
	pt, ok := d.partTypes[id]
	return pt, ok
}

// PartTypes returns all part types in document order.
func (d *Document) PartTypes() []*PartType {
	out := make([]*PartType, 0, len(d.ptOrder))
	for _, id := range d.ptOrder {
		out = append(out, d.partTypes[id])
	}
	return out
}

// AddConnection appends a connection. Duplicates are preserved: repeated
// connections in the source must survive in document order.
func (d *Document) AddConnection(c *Connection) {
	d.connections = append(d.connections, c)
}

// Connections returns all connections in document order.
func (d *Document) Connections() []*Connection {
	return d.connections
}

// Placement returns the placement for a layout element, if a layout exists.
func (d *Document) Placement(layoutElementID string) (*Placement, bool) {
	if d.Layout == nil {
		return nil, false
	}
	return d.Layout.Placement(layoutElementID)
}

// ResolveConnections populates each resource's outgoing connection list from
// the parsed connections. Called once by the parser after all sections are
// in; connections referencing unknown resources are left for the validator.
func (d *Document) ResolveConnections() {
	for _, c := range d.connections {
		if r, ok := d.resources[c.FromResourceID]; ok {
			r.Connections = append(r.Connections, c.ToResourceID)
		}
	}
}

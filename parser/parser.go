// Package parser turns source layout markup into the normalized document
// model. Extraction is driven entirely by an external schema configuration;
// the parser knows the semantics of each field, not its location.
package parser

import (
	"fmt"
	"io"
	"strconv"

	"go.uber.org/zap"

	"github.com/factory-layout/interpreter/model"
	"github.com/factory-layout/interpreter/schema"
)

// ParseError marks a fatal parse failure: malformed markup or a document the
// schema cannot locate required sections in. Entity-level problems never
// produce a ParseError; those entities are skipped with a logged warning.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("parse failed: %s", e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Parser extracts documents according to a schema configuration.
type Parser struct {
	log *zap.Logger
}

// New creates a parser. A nil logger disables logging.
func New(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log}
}

// Parse decodes markup from r and extracts a document per the schema.
func (p *Parser) Parse(r io.Reader, s *schema.Schema) (*model.Document, error) {
	root, err := DecodeTree(r)
	if err != nil {
		return nil, &ParseError{Reason: "cannot decode document", Err: err}
	}
	return p.ParseTree(root, s)
}

// ParseTree extracts a document from an already-decoded tree.
func (p *Parser) ParseTree(root *Node, s *schema.Schema) (*model.Document, error) {
	header, err := p.parseHeader(root, s.Header)
	if err != nil {
		return nil, err
	}

	doc := model.NewDocument(header)

	p.parseResources(root, s.Resources, doc)
	p.parseConnections(root, s.Resources, doc)
	p.parseLayoutObjects(root, s.LayoutObjects, doc)
	doc.Layout = p.parseLayout(root, s.Layout)
	p.parsePartTypes(root, s.PartTypes, doc)

	doc.ResolveConnections()

	return doc, nil
}

func (p *Parser) parseHeader(root *Node, cfg schema.Section) (model.Header, error) {
	elem := root
	if cfg.Path != "" {
		elem = root.Find(cfg.Path)
	}
	if elem == nil {
		return model.Header{}, &ParseError{Reason: fmt.Sprintf("header section %q not found", cfg.Path)}
	}

	return model.Header{
		Identifier:   elem.TextAt(cfg.Field("document_identifier")),
		Description:  elem.TextAt(cfg.Field("description")),
		Version:      elem.TextAt(cfg.Field("version")),
		CreationTime: elem.TextAt(cfg.Field("creation_time")),
		TimeUnit:     elem.TextAt(cfg.Field("time_unit")),
		LengthUnit:   elem.TextAt(cfg.Field("length_unit")),
		WeightUnit:   elem.TextAt(cfg.Field("weight_unit")),
	}, nil
}

func (p *Parser) parseResources(root *Node, cfg schema.Resources, doc *model.Document) {
	for _, elem := range root.FindAll(cfg.Path) {
		identifier := elem.TextAt(cfg.Field("identifier"))
		if identifier == "" {
			p.log.Warn("skipping resource with no identifier")
			continue
		}

		r := &model.Resource{
			Identifier:              identifier,
			ResourceType:            elem.TextAt(cfg.Field("resource_type")),
			Name:                    elem.TextAt(cfg.Field("name")),
			Description:             elem.TextAt(cfg.Field("description")),
			CurrentStatus:           elem.TextAt(cfg.Field("current_status")),
			ResourceClassIdentifier: elem.TextAt(cfg.Field("resource_class_identifier")),
		}
		r.SetProperties(p.parseProperties(elem, cfg.Properties))

		doc.AddResource(r)
	}
}

func (p *Parser) parseProperties(elem *Node, cfg schema.Section) []model.Property {
	if cfg.Path == "" {
		return nil
	}

	var props []model.Property
	for _, pe := range elem.FindAll(cfg.Path) {
		name := pe.TextAt(cfg.Field("name"))
		value := pe.TextAt(cfg.Field("value"))
		if name == "" || value == "" {
			continue
		}
		props = append(props, model.Property{
			Name:  name,
			Value: value,
			Unit:  pe.TextAt(cfg.Field("unit")),
		})
	}
	return props
}

// parseConnections scans each resource element for nested connection
// references. Repeated connections are preserved in document order; the
// mapping and orchestration stages depend on order stability.
func (p *Parser) parseConnections(root *Node, cfg schema.Resources, doc *model.Document) {
	if cfg.Connections.Path == "" {
		return
	}

	for _, elem := range root.FindAll(cfg.Path) {
		from := elem.TextAt(cfg.Field("identifier"))
		if from == "" {
			continue
		}

		for _, ce := range elem.FindAll(cfg.Connections.Path) {
			to := ce.TextAt(cfg.Connections.Field("to_resource_id"))
			if to == "" {
				p.log.Warn("skipping connection with no target resource",
					zap.String("from", from))
				continue
			}
			identifier := ce.TextAt(cfg.Connections.Field("identifier"))
			if identifier == "" {
				identifier = fmt.Sprintf("conn_%s_to_%s", from, to)
			}
			doc.AddConnection(&model.Connection{
				Identifier:     identifier,
				FromResourceID: from,
				ToResourceID:   to,
				Description:    ce.TextAt(cfg.Connections.Field("description")),
			})
		}
	}
}

func (p *Parser) parseLayoutObjects(root *Node, cfg schema.LayoutObjects, doc *model.Document) {
	if cfg.Path == "" {
		return
	}

	for _, elem := range root.FindAll(cfg.Path) {
		identifier := elem.TextAt(cfg.Field("identifier"))
		resourceID := elem.TextAt(cfg.Field("associated_resource_id"))
		if identifier == "" || resourceID == "" {
			p.log.Warn("skipping layout object with missing identifier or resource reference")
			continue
		}

		doc.AddLayoutObject(&model.LayoutObject{
			Identifier:           identifier,
			AssociatedResourceID: resourceID,
			Boundary:             p.parseBoundary(elem, cfg.Boundary),
		})
	}
}

// parseBoundary extracts dimensions. A boundary without both width and depth
// is meaningless and is omitted entirely.
func (p *Parser) parseBoundary(elem *Node, cfg schema.Boundary) *model.Boundary {
	if cfg.Empty() {
		return nil
	}

	width, wok := floatAt(elem, cfg.Width)
	depth, dok := floatAt(elem, cfg.Depth)
	if !wok || !dok {
		return nil
	}

	height, _ := floatAt(elem, cfg.Height)
	b := model.NewBoundary(width, depth, height, elem.TextAt(cfg.Unit))
	return &b
}

func (p *Parser) parseLayout(root *Node, cfg schema.Layout) *model.Layout {
	if cfg.Path == "" {
		return nil
	}
	elem := root.Find(cfg.Path)
	if elem == nil {
		return nil
	}

	identifier := elem.TextAt(cfg.Field("identifier"))
	if identifier == "" {
		identifier = "main_layout"
	}

	layout := &model.Layout{
		Identifier:  identifier,
		Description: elem.TextAt(cfg.Field("description")),
		Boundary:    p.parseBoundary(elem, cfg.Boundary),
	}

	p.parsePlacements(elem, cfg.Placements, layout)
	return layout
}

func (p *Parser) parsePlacements(elem *Node, cfg schema.Section, layout *model.Layout) {
	if cfg.Path == "" {
		return
	}

	for _, pe := range elem.FindAll(cfg.Path) {
		layoutElementID := pe.TextAt(cfg.Field("layout_element_id"))
		if layoutElementID == "" {
			continue
		}

		// A placement without both x and y is meaningless.
		x, xok := floatAt(pe, cfg.Field("position_x"))
		y, yok := floatAt(pe, cfg.Field("position_y"))
		if !xok || !yok {
			p.log.Warn("skipping placement with invalid position",
				zap.String("layoutElementId", layoutElementID))
			continue
		}
		z, _ := floatAt(pe, cfg.Field("position_z"))

		placement := &model.Placement{
			LayoutElementID: layoutElementID,
			Position:        model.Position{X: x, Y: y, Z: z},
		}

		if angle, ok := floatAt(pe, cfg.Field("rotation_angle")); ok {
			rot := model.NewRotation(angle)
			if ax, ok := floatAt(pe, cfg.Field("rotation_axis_x")); ok {
				rot.AxisX = ax
			}
			if ay, ok := floatAt(pe, cfg.Field("rotation_axis_y")); ok {
				rot.AxisY = ay
			}
			if az, ok := floatAt(pe, cfg.Field("rotation_axis_z")); ok {
				rot.AxisZ = az
			}
			placement.Rotation = &rot
		}

		layout.AddPlacement(placement)
	}
}

func (p *Parser) parsePartTypes(root *Node, cfg schema.Section, doc *model.Document) {
	if cfg.Path == "" {
		return
	}

	for _, elem := range root.FindAll(cfg.Path) {
		identifier := elem.TextAt(cfg.Field("identifier"))
		if identifier == "" {
			p.log.Warn("skipping part type with no identifier")
			continue
		}

		name := elem.TextAt(cfg.Field("name"))
		if name == "" {
			name = identifier
		}

		pt := &model.PartType{
			Identifier:  identifier,
			Name:        name,
			Description: elem.TextAt(cfg.Field("description")),
		}
		if w, ok := floatAt(elem, cfg.Field("weight")); ok {
			pt.Weight = &w
		}
		if width, wok := floatAt(elem, cfg.Field("width")); wok {
			if depth, dok := floatAt(elem, cfg.Field("depth")); dok {
				height, _ := floatAt(elem, cfg.Field("height"))
				b := model.NewBoundary(width, depth, height, "")
				pt.Dimensions = &b
			}
		}

		doc.AddPartType(pt)
	}
}

// floatAt parses the text at a path as a float. Absent or unparsable values
// read as not-ok rather than failing the parse.
func floatAt(elem *Node, path string) (float64, bool) {
	text := elem.TextAt(path)
	if text == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

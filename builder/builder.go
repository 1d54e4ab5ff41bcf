// Package builder drives object mappings and document connections through a
// backend. It is written once against the backend capability set and never
// branches on which implementation is active.
package builder

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/factory-layout/interpreter/backend"
	"github.com/factory-layout/interpreter/diag"
	"github.com/factory-layout/interpreter/mapping"
	"github.com/factory-layout/interpreter/model"
)

// Stats counts the effects and problems of one run.
type Stats struct {
	ObjectsCreated     int `json:"objectsCreated"`
	ConnectionsCreated int `json:"connectionsCreated"`
	Errors             int `json:"errors"`
	Warnings           int `json:"warnings"`
}

// Builder orchestrates object and connection creation for one pipeline run.
// Not safe for concurrent use; each run owns its builder.
type Builder struct {
	backend  backend.Backend
	settings mapping.Settings
	muConfig mapping.MaterialUnitConfig
	policy   ErrorPolicy
	sanitize *mapping.NameSanitizer
	log      *zap.Logger

	created       map[string]backend.Handle
	createdOrder  []string
	connections   [][2]string
	materialUnits map[string]backend.Handle

	frame     backend.Handle
	connector backend.Handle

	stats    Stats
	errs     []diag.Diagnostic
	warnings []diag.Diagnostic
}

// New creates a builder over a backend, taking settings, material-unit
// config and the error policy from the rule table. A nil logger disables
// logging.
func New(be backend.Backend, rules *mapping.RuleTable, log *zap.Logger) *Builder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Builder{
		backend:       be,
		settings:      rules.Settings,
		muConfig:      rules.MaterialUnits,
		policy:        PolicyFromRules(rules.ErrorHandling),
		sanitize:      mapping.NewNameSanitizer(rules.Settings.Naming),
		log:           log,
		created:       make(map[string]backend.Handle),
		materialUnits: make(map[string]backend.Handle),
	}
}

// WithPolicy overrides the error policy. Returns the builder for chaining.
func (b *Builder) WithPolicy(p ErrorPolicy) *Builder {
	b.policy = p
	return b
}

// Stats returns a copy of the current counters.
func (b *Builder) Stats() Stats { return b.stats }

// Errors returns the accumulated error diagnostics.
func (b *Builder) Errors() []diag.Diagnostic { return b.errs }

// Warnings returns the accumulated warning diagnostics.
func (b *Builder) Warnings() []diag.Diagnostic { return b.warnings }

// Created returns the handle registry of successfully created objects.
func (b *Builder) Created() map[string]backend.Handle {
	out := make(map[string]backend.Handle, len(b.created))
	for k, v := range b.created {
		out[k] = v
	}
	return out
}

// CreateObjects derives one backend object per mapping, in mapping order.
// A failed object aborts only itself unless the creation policy says stop.
func (b *Builder) CreateObjects(set *mapping.Set) (map[string]backend.Handle, error) {
	b.log.Info("creating objects", zap.Int("mappings", set.Len()))

	for _, m := range set.All() {
		obj, err := b.createObject(m)
		if err != nil {
			// Policy said stop: propagate before touching later mappings.
			return b.Created(), err
		}
		if obj == nil {
			continue
		}
		b.created[m.ResourceID] = obj
		b.createdOrder = append(b.createdOrder, m.ResourceID)
		b.stats.ObjectsCreated++
		b.log.Debug("created object",
			zap.String("resource", m.ResourceID),
			zap.String("path", obj.Path()))
	}

	return b.Created(), nil
}

// createObject handles a single mapping. A nil handle with nil error means
// the object was skipped under a continue policy.
func (b *Builder) createObject(m *mapping.ObjectMapping) (backend.Handle, error) {
	if m.Template == "" {
		d := diag.New(diag.CategoryCreation, "Resource", m.ResourceID, "",
			"No template specified for '%s'", m.ResourceName)
		m.AddError(d)
		return nil, b.handleError(b.policy.Creation, d)
	}

	frame, err := b.modelFrame()
	if err != nil {
		d := diag.New(diag.CategoryCreation, "Resource", m.ResourceID, b.settings.ModelFrame,
			"Model frame unavailable: %v", err)
		m.AddError(d)
		return nil, b.handleError(b.policy.Creation, d)
	}

	templatePath := b.settings.TemplatePath(m.Template)
	template, err := b.backend.Resolve(templatePath)
	if err != nil {
		d := diag.New(diag.CategoryCreation, "Resource", m.ResourceID, templatePath,
			"Template '%s' not found: %v", m.Template, err)
		m.AddError(d)
		return nil, b.handleError(b.policy.Creation, d)
	}

	name := m.ObjectName()
	if name == "" {
		name = b.sanitize.Sanitize(m.ResourceName)
	}

	obj, err := b.backend.Derive(template, frame, name)
	if err != nil {
		d := diag.New(diag.CategoryCreation, "Resource", m.ResourceID, templatePath,
			"Failed to create object '%s': %v", name, err)
		m.AddError(d)
		return nil, b.handleError(b.policy.Creation, d)
	}

	if err := b.applyProperties(obj, m); err != nil {
		return nil, err
	}

	return obj, nil
}

// applyProperties sets every mapped property in declared order. The "name"
// property was consumed by Derive and is skipped to avoid double-setting;
// per-property failures never abort the remaining properties.
func (b *Builder) applyProperties(obj backend.Handle, m *mapping.ObjectMapping) error {
	for _, p := range m.Properties {
		switch {
		case p.Name == mapping.PropName:
			continue
		case p.Kind == mapping.KindSpecial:
			continue
		case p.Kind == mapping.KindMaterialUnit:
			if err := b.assignMaterialUnit(obj, m, p); err != nil {
				return err
			}
		default:
			if err := b.backend.SetProperty(obj, p.Name, p.Value); err != nil {
				d := diag.New(diag.CategoryProperty, "Resource", m.ResourceID, p.Name,
					"Failed to set property %s: %v", p.Name, err)
				m.AddError(d)
				if stop := b.handleError(b.policy.Property, d); stop != nil {
					return stop
				}
			}
		}
	}
	return nil
}

// assignMaterialUnit derives (or reuses) the part object named by the label
// and assigns it to the property.
func (b *Builder) assignMaterialUnit(obj backend.Handle, m *mapping.ObjectMapping, p mapping.MappedProperty) error {
	label, _ := p.Value.(string)
	mu, err := b.materialUnit(label)
	if err != nil {
		d := diag.New(diag.CategoryProperty, "Resource", m.ResourceID, label,
			"Failed to assign material unit '%s': %v", label, err)
		m.AddError(d)
		return b.handleError(b.policy.Property, d)
	}

	if err := b.backend.SetProperty(obj, p.Name, mu); err != nil {
		d := diag.New(diag.CategoryProperty, "Resource", m.ResourceID, p.Name,
			"Failed to set property %s: %v", p.Name, err)
		m.AddError(d)
		return b.handleError(b.policy.Property, d)
	}
	return nil
}

// materialUnit returns the part object for a label, deriving it on first use
// under the user-objects scope.
func (b *Builder) materialUnit(label string) (backend.Handle, error) {
	if mu, ok := b.materialUnits[label]; ok {
		return mu, nil
	}

	templatePath := b.muConfig.TemplatePath
	if templatePath == "" {
		templatePath = b.userObjectsPath() + ".Part"
	}
	template, err := b.backend.Resolve(templatePath)
	if err != nil {
		return nil, err
	}
	scope, err := b.backend.Resolve(b.userObjectsPath())
	if err != nil {
		return nil, err
	}
	mu, err := b.backend.Derive(template, scope, label)
	if err != nil {
		return nil, err
	}

	b.materialUnits[label] = mu
	b.log.Debug("created material unit", zap.String("label", label))
	return mu, nil
}

// CreateConnections links created objects following the document's
// connection list, in document order. Connections with a missing endpoint
// are skipped with a warning; backend failures follow the connection policy.
func (b *Builder) CreateConnections(doc *model.Document) ([][2]string, error) {
	conns := doc.Connections()
	b.log.Info("creating connections", zap.Int("connections", len(conns)))

	connector, err := b.connectorHandle()
	if err != nil {
		d := diag.New(diag.CategoryConnection, "Connector", b.settings.Connector, "",
			"Connector unavailable: %v", err)
		if stop := b.handleError(b.policy.Connection, d); stop != nil {
			return b.connections, stop
		}
		return b.connections, nil
	}

	for _, c := range conns {
		from, ok := b.created[c.FromResourceID]
		if !ok {
			b.warn(diag.New(diag.CategoryConnection, "Connection", c.Identifier, c.FromResourceID,
				"Source object '%s' not found for connection", c.FromResourceID))
			continue
		}
		to, ok := b.created[c.ToResourceID]
		if !ok {
			b.warn(diag.New(diag.CategoryConnection, "Connection", c.Identifier, c.ToResourceID,
				"Target object '%s' not found for connection", c.ToResourceID))
			continue
		}

		if err := b.backend.Connect(connector, from, to); err != nil {
			d := diag.New(diag.CategoryConnection, "Connection", c.Identifier, "",
				"Failed to create connection %s -> %s: %v", c.FromResourceID, c.ToResourceID, err)
			if stop := b.handleError(b.policy.Connection, d); stop != nil {
				return b.connections, stop
			}
			continue
		}

		b.connections = append(b.connections, [2]string{c.FromResourceID, c.ToResourceID})
		b.stats.ConnectionsCreated++
	}

	return b.connections, nil
}

// ValidateCreated is the final pure pass: created objects without a single
// incident connection are reported as warnings, never errors, since
// legitimately terminal or initial objects exist.
func (b *Builder) ValidateCreated() []diag.Diagnostic {
	connected := make(map[string]bool, len(b.connections)*2)
	for _, pair := range b.connections {
		connected[pair[0]] = true
		connected[pair[1]] = true
	}

	var issues []diag.Diagnostic
	for _, id := range b.createdOrder {
		if !connected[id] {
			issues = append(issues, diag.New(diag.CategoryConnection, "Resource", id, "",
				"Object '%s' has no connections", id))
		}
	}
	return issues
}

func (b *Builder) userObjectsPath() string {
	if b.settings.UserObjects != "" {
		return b.settings.UserObjects
	}
	return ".UserObjects"
}

func (b *Builder) modelFrame() (backend.Handle, error) {
	if b.frame != nil {
		return b.frame, nil
	}
	path := b.settings.ModelFrame
	if path == "" {
		path = ".Models.Model"
	}
	frame, err := b.backend.Resolve(path)
	if err != nil {
		return nil, err
	}
	b.frame = frame
	return frame, nil
}

func (b *Builder) connectorHandle() (backend.Handle, error) {
	if b.connector != nil {
		return b.connector, nil
	}
	path := b.settings.Connector
	if path == "" {
		path = ".MaterialFlow.Connector"
	}
	connector, err := b.backend.Resolve(path)
	if err != nil {
		return nil, err
	}
	b.connector = connector
	return connector, nil
}

// handleError applies the policy mode for a category. A non-nil return means
// the caller must stop and propagate.
func (b *Builder) handleError(mode Mode, d diag.Diagnostic) error {
	b.stats.Errors++
	b.errs = append(b.errs, d)

	switch mode {
	case ErrorAndStop:
		return fmt.Errorf("%s error: %w", d.Category, d)
	case WarnAndContinue:
		b.log.Error(d.Message,
			zap.String("category", string(d.Category)),
			zap.String("entity", d.Entity),
			zap.String("id", d.ID))
	case Ignore:
	}
	return nil
}

func (b *Builder) warn(d diag.Diagnostic) {
	b.stats.Warnings++
	b.warnings = append(b.warnings, d)
	b.log.Warn(d.Message,
		zap.String("category", string(d.Category)),
		zap.String("id", d.ID))
}

// Package pipeline runs the full compilation: parse, validate, map, create
// objects, create connections, post-validate. Stages are strictly
// sequential; each run owns its document, mappings and created-object
// registry, so nothing is shared across runs.
package pipeline

import (
	"errors"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/factory-layout/interpreter/backend"
	"github.com/factory-layout/interpreter/builder"
	"github.com/factory-layout/interpreter/diag"
	"github.com/factory-layout/interpreter/mapping"
	"github.com/factory-layout/interpreter/model"
	"github.com/factory-layout/interpreter/parser"
	"github.com/factory-layout/interpreter/schema"
)

// ErrValidationFailed gates the pipeline: the document did not pass
// referential-integrity validation and no mapping was attempted. The Report
// still carries the full validation result.
var ErrValidationFailed = errors.New("document validation failed")

// Timings records per-stage durations, as reported to the caller.
type Timings struct {
	Parse    time.Duration `json:"parse"`
	Mapping  time.Duration `json:"mapping"`
	Creation time.Duration `json:"creation"`
	Total    time.Duration `json:"total"`
}

// Report is the structured run result consumed by the caller.
type Report struct {
	RunID         string                  `json:"runId"`
	Validation    *model.ValidationResult `json:"validation,omitempty"`
	Resources     int                     `json:"resources"`
	LayoutObjects int                     `json:"layoutObjects"`
	Mappings      int                     `json:"mappings"`
	Stats         builder.Stats           `json:"stats"`
	Created       map[string]string       `json:"created,omitempty"`
	Connections   [][2]string             `json:"connections,omitempty"`
	PostIssues    []diag.Diagnostic       `json:"postIssues,omitempty"`
	MaterialUnits map[string]string       `json:"materialUnits,omitempty"`
	Timings       Timings                 `json:"timings"`
}

// Interpreter binds a schema, a rule table and a backend into a reusable
// pipeline. All configuration is explicit; there is no process-wide state.
type Interpreter struct {
	schema *schema.Schema
	rules  *mapping.RuleTable
	be     backend.Backend
	log    *zap.Logger
}

// New creates an interpreter. A nil logger disables logging.
func New(s *schema.Schema, rules *mapping.RuleTable, be backend.Backend, log *zap.Logger) *Interpreter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Interpreter{schema: s, rules: rules, be: be, log: log}
}

// Run compiles one document. A run either completes, stops at validation
// failure (ErrValidationFailed), or stops at an error_and_stop policy
// trigger; there is no mid-run cancellation.
func (i *Interpreter) Run(r io.Reader) (*Report, error) {
	report := &Report{RunID: uuid.NewString()}
	log := i.log.With(zap.String("run", report.RunID))
	start := time.Now()
	defer func() { report.Timings.Total = time.Since(start) }()

	parseStart := time.Now()
	doc, err := parser.New(log).Parse(r, i.schema)
	if err != nil {
		return report, err
	}
	report.Timings.Parse = time.Since(parseStart)
	report.Resources = doc.ResourceCount()
	report.LayoutObjects = len(doc.LayoutObjects())
	log.Info("document parsed",
		zap.Int("resources", report.Resources),
		zap.Int("layoutObjects", report.LayoutObjects),
		zap.Int("connections", len(doc.Connections())))

	report.Validation = model.Validate(doc)
	if !report.Validation.IsValid() {
		log.Error("validation failed",
			zap.Int("errors", len(report.Validation.Errors)),
			zap.Int("warnings", len(report.Validation.Warnings)))
		return report, ErrValidationFailed
	}

	mapStart := time.Now()
	engine := mapping.NewEngine(i.rules, log)
	set := engine.Map(doc)
	report.Timings.Mapping = time.Since(mapStart)
	report.Mappings = set.Len()
	log.Info("mappings created", zap.Int("mappings", set.Len()))

	createStart := time.Now()
	b := builder.New(i.be, i.rules, log)
	if _, err := b.CreateObjects(set); err != nil {
		i.finish(report, b, engine, createStart)
		return report, err
	}
	conns, err := b.CreateConnections(doc)
	report.Connections = conns
	if err != nil {
		i.finish(report, b, engine, createStart)
		return report, err
	}

	i.finish(report, b, engine, createStart)
	report.PostIssues = b.ValidateCreated()
	log.Info("run complete",
		zap.Int("objectsCreated", report.Stats.ObjectsCreated),
		zap.Int("connectionsCreated", report.Stats.ConnectionsCreated),
		zap.Int("errors", report.Stats.Errors),
		zap.Int("warnings", report.Stats.Warnings))

	return report, nil
}

func (i *Interpreter) finish(report *Report, b *builder.Builder, engine *mapping.Engine, createStart time.Time) {
	report.Timings.Creation = time.Since(createStart)
	report.Stats = b.Stats()
	report.MaterialUnits = engine.MaterialUnits()

	created := b.Created()
	if len(created) > 0 {
		report.Created = make(map[string]string, len(created))
		for id, h := range created {
			report.Created[id] = h.Path()
		}
	}
}

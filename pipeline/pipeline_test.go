package pipeline

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/factory-layout/interpreter/backend"
	"github.com/factory-layout/interpreter/mapping"
	"github.com/factory-layout/interpreter/parser"
	"github.com/factory-layout/interpreter/schema"
)

const pipelineSchema = `
schemas:
  test:
    header:
      path: Header
      fields:
        document_identifier: Identifier
    resources:
      path: //Resource
      fields:
        identifier: Identifier
        resource_type: ResourceType
        name: Name
      properties:
        path: Property
        fields:
          name: Name
          value: Value
          unit: Unit
      connections:
        path: Connection
        fields:
          to_resource_id: ToResource
    layout_objects:
      path: //LayoutObject
      fields:
        identifier: Identifier
        associated_resource_id: AssociatedResource
    layout:
      path: //Layout
      placements:
        path: Placement
        fields:
          layout_element_id: LayoutElement
          position_x: Position/X
          position_y: Position/Y
`

const pipelineRules = `
resource_mappings:
  source:
    template: Source
    properties:
      ProductType:
        special_handler: assign_material_unit
  machine:
    template: Station
    properties:
      ProcessingTime:
        target: ProcTime
        data_type: float
        unit_conversion: time
  sink:
    template: Drain
unit_conversions:
  time:
    base_unit: second
    conversions:
      minute: 60
settings:
  model_frame: .Models.Model
  connector: .MaterialFlow.Connector
  user_objects: .UserObjects
  templates:
    Source: .MaterialFlow.Source
    Station: .MaterialFlow.Station
    Drain: .MaterialFlow.Drain
  naming:
    case_handling: lower
    invalid_chars: [" "]
error_handling:
  on_creation_error: error_and_stop
`

const pipelineDocument = `<?xml version="1.0"?>
<FactoryLayout>
  <Header><Identifier>line-1</Identifier></Header>
  <Resources>
    <Resource>
      <Identifier>src1</Identifier>
      <ResourceType>source</ResourceType>
      <Name>Infeed</Name>
      <Property><Name>ProductType</Name><Value>widget</Value></Property>
      <Connection><ToResource>m1</ToResource></Connection>
    </Resource>
    <Resource>
      <Identifier>m1</Identifier>
      <ResourceType>machine</ResourceType>
      <Name>Press 1</Name>
      <Property><Name>ProcessingTime</Name><Value>2</Value><Unit>minute</Unit></Property>
      <Connection><ToResource>snk1</ToResource></Connection>
    </Resource>
    <Resource>
      <Identifier>snk1</Identifier>
      <ResourceType>sink</ResourceType>
      <Name>Outfeed</Name>
    </Resource>
  </Resources>
  <LayoutObjects>
    <LayoutObject><Identifier>lo_src1</Identifier><AssociatedResource>src1</AssociatedResource></LayoutObject>
    <LayoutObject><Identifier>lo_m1</Identifier><AssociatedResource>m1</AssociatedResource></LayoutObject>
    <LayoutObject><Identifier>lo_snk1</Identifier><AssociatedResource>snk1</AssociatedResource></LayoutObject>
  </LayoutObjects>
  <Layout>
    <Placement><LayoutElement>lo_src1</LayoutElement><Position><X>0</X><Y>0</Y></Position></Placement>
    <Placement><LayoutElement>lo_m1</LayoutElement><Position><X>4</X><Y>0</Y></Position></Placement>
    <Placement><LayoutElement>lo_snk1</LayoutElement><Position><X>8</X><Y>0</Y></Position></Placement>
  </Layout>
</FactoryLayout>`

func pipelineFixtures(t *testing.T) (*schema.Schema, *mapping.RuleTable) {
	t.Helper()
	cfg, err := schema.Load(strings.NewReader(pipelineSchema))
	require.NoError(t, err)
	s, err := cfg.Schema("test")
	require.NoError(t, err)
	rules, err := mapping.LoadRules(strings.NewReader(pipelineRules))
	require.NoError(t, err)
	return s, rules
}

func pipelineBackend() *backend.InProc {
	be := backend.NewInProc()
	be.Seed(".Models.Model", "Frame")
	be.Seed(".MaterialFlow.Source", "Source")
	be.Seed(".MaterialFlow.Station", "Station")
	be.Seed(".MaterialFlow.Drain", "Drain")
	be.Seed(".MaterialFlow.Connector", "Connector")
	be.Seed(".UserObjects", "Folder")
	be.Seed(".UserObjects.Part", "Part")
	return be
}

func TestRun(t *testing.T) {
	s, rules := pipelineFixtures(t)
	be := pipelineBackend()

	report, err := New(s, rules, be, nil).Run(strings.NewReader(pipelineDocument))
	require.NoError(t, err)
	require.NotNil(t, report)

	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, 3, report.Resources)
	assert.Equal(t, 3, report.LayoutObjects)
	assert.Equal(t, 3, report.Mappings)
	assert.True(t, report.Validation.IsValid())

	assert.Equal(t, 3, report.Stats.ObjectsCreated)
	assert.Equal(t, 2, report.Stats.ConnectionsCreated)
	assert.Equal(t, 0, report.Stats.Errors)
	assert.Equal(t, [][2]string{{"src1", "m1"}, {"m1", "snk1"}}, report.Connections)
	assert.Empty(t, report.PostIssues)
	assert.Equal(t, map[string]string{"widget": "PartA"}, report.MaterialUnits)
	assert.Equal(t, map[string]string{
		"src1": ".Models.Model.infeed",
		"m1":   ".Models.Model.press_1",
		"snk1": ".Models.Model.outfeed",
	}, report.Created)

	// Objects land under the model frame with sanitized names.
	assert.True(t, be.Exists(".Models.Model.infeed"))
	assert.True(t, be.Exists(".Models.Model.press_1"))
	assert.True(t, be.Exists(".Models.Model.outfeed"))

	// The converted property value reached the backend.
	v, ok := be.PropertyOf(".Models.Model.press_1", "ProcTime")
	require.True(t, ok)
	assert.Equal(t, 120.0, v)

	// Material flow follows the document connections.
	require.Len(t, be.Links(), 2)
	assert.Equal(t, backend.Link{From: ".Models.Model.infeed", To: ".Models.Model.press_1"}, be.Links()[0])

	// The part object exists and is assigned to the source.
	assert.True(t, be.Exists(".UserObjects.PartA"))
	part, ok := be.PropertyOf(".Models.Model.infeed", "Path")
	require.True(t, ok)
	assert.Equal(t, ".UserObjects.PartA", part)
}

func TestRunValidationGate(t *testing.T) {
	s, rules := pipelineFixtures(t)
	be := pipelineBackend()

	// A connection to an unknown resource fails referential validation.
	broken := strings.Replace(pipelineDocument,
		"<ToResource>snk1</ToResource>", "<ToResource>nowhere</ToResource>", 1)

	report, err := New(s, rules, be, nil).Run(strings.NewReader(broken))
	require.ErrorIs(t, err, ErrValidationFailed)
	require.NotNil(t, report)

	// The report still carries the validation detail, but nothing was built.
	require.NotNil(t, report.Validation)
	assert.False(t, report.Validation.IsValid())
	assert.NotEmpty(t, report.Validation.Errors)
	assert.Equal(t, 0, report.Mappings)
	assert.Equal(t, 0, report.Stats.ObjectsCreated)
	assert.False(t, be.Exists(".Models.Model.infeed"))
}

func TestRunParseFailure(t *testing.T) {
	s, rules := pipelineFixtures(t)

	_, err := New(s, rules, pipelineBackend(), nil).Run(strings.NewReader("<FactoryLayout/>"))
	require.Error(t, err)
	var perr *parser.ParseError
	assert.True(t, errors.As(err, &perr))
}

func TestRunCreationStop(t *testing.T) {
	s, rules := pipelineFixtures(t)

	// No templates seeded: the first creation fails and the configured
	// error_and_stop policy aborts the run.
	be := backend.NewInProc()
	be.Seed(".Models.Model", "Frame")

	report, err := New(s, rules, be, nil).Run(strings.NewReader(pipelineDocument))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrValidationFailed)
	require.NotNil(t, report)
	assert.Equal(t, 0, report.Stats.ObjectsCreated)
	assert.Equal(t, 1, report.Stats.Errors)
}

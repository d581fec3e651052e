package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/caflow/caflow/pkg/collaborators"
	"github.com/caflow/caflow/pkg/models"
	"github.com/caflow/caflow/pkg/protocol"
	"github.com/caflow/caflow/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFactory struct {
	nodeType models.NodeType
	handler  protocol.Handler
}

func (f stubFactory) Type() models.NodeType             { return f.nodeType }
func (f stubFactory) Create() (protocol.Handler, error) { return f.handler, nil }

func newTestEngine(t *testing.T, extra ...protocol.HandlerFactory) *Engine {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := registry.NewRegistry(logger)
	registry.RegisterDefaults(reg, collaborators.NewSimulated(logger))

	for _, factory := range extra {
		reg.Register(factory)
	}

	return NewEngine(logger, reg, nil, nil)
}

func simpleNode(id string, nodeType models.NodeType, config map[string]any) models.WorkflowNode {
	return models.WorkflowNode{
		ID:   id,
		Type: nodeType,
		Data: models.NodeData{Label: id, Config: config},
	}
}

func TestExecute_FullPipeline(t *testing.T) {
	engine := newTestEngine(t)

	workflow := &models.Workflow{
		ID:   "wf-1",
		Name: "ITR Pipeline",
		Nodes: []models.WorkflowNode{
			simpleNode("intake", models.NodeTypeClientIntake, nil),
			simpleNode("tax", models.NodeTypeTaxCalculator, nil),
			simpleNode("report", models.NodeTypeReportGenerator, map[string]any{"reportType": "tax_summary"}),
		},
		Connections: []models.Connection{
			{ID: "c1", SourceNodeID: "intake", TargetNodeID: "tax"},
			{ID: "c2", SourceNodeID: "tax", TargetNodeID: "report"},
		},
	}

	ectx, err := engine.Execute(t.Context(), workflow, "user-1", map[string]any{
		"name":                      "Asha Mehta",
		"email":                     "asha@example.com",
		"pan":                       "ABCDE1234F",
		models.DataKeyFinancialData: models.FinancialData{Revenue: 800000, Expenses: 100000},
	})
	require.NoError(t, err)
	require.NotNil(t, ectx)

	assert.Equal(t, models.ExecutionStatusCompleted, ectx.CurrentStatus())
	assert.False(t, ectx.EndTime.IsZero())

	calc, ok := ectx.Data[models.DataKeyTaxCalculation].(models.TaxCalculation)
	require.True(t, ok)
	assert.InDelta(t, 700000.0, calc.TaxableIncome, 0.001)
	assert.InDelta(t, 54600.0, calc.TotalTax, 0.001)

	report, ok := ectx.Data[models.DataKeyReport].(models.Report)
	require.True(t, ok)
	assert.Equal(t, "Tax Summary Report", report.Type)
	require.NotNil(t, report.TaxCalculation)
	assert.InDelta(t, 700000.0, report.TaxCalculation.TaxableIncome, 0.001)
}

func TestExecute_ComplianceFindingsDoNotFailTheRun(t *testing.T) {
	engine := newTestEngine(t)

	workflow := &models.Workflow{
		ID:   "wf-2",
		Name: "Compliance",
		Nodes: []models.WorkflowNode{
			simpleNode("intake", models.NodeTypeClientIntake, nil),
			simpleNode("check", models.NodeTypeComplianceChecker, nil),
		},
		Connections: []models.Connection{
			{ID: "c1", SourceNodeID: "intake", TargetNodeID: "check"},
		},
	}

	ectx, err := engine.Execute(t.Context(), workflow, "user-1", map[string]any{
		"name":  "Asha Mehta",
		"email": "asha@example.com",
		"pan":   "INVALID",
	})
	require.NoError(t, err)

	assert.Equal(t, models.ExecutionStatusCompleted, ectx.CurrentStatus())

	checks, ok := ectx.Data[models.DataKeyComplianceChecks].([]models.ComplianceCheck)
	require.True(t, ok)
	require.Len(t, checks, 1)
	assert.Equal(t, "PAN_INVALID", checks[0].Type)
}

func TestExecute_NoEntryPoint(t *testing.T) {
	engine := newTestEngine(t)

	node := simpleNode("tax", models.NodeTypeTaxCalculator, nil)
	node.Data.Inputs = []models.Port{{ID: "in", Label: "In", DataType: models.DataTypeFinancialData}}

	workflow := &models.Workflow{ID: "wf-3", Name: "No Entry", Nodes: []models.WorkflowNode{node}}

	ectx, err := engine.Execute(t.Context(), workflow, "user-1", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoEntryPoint))
	require.NotNil(t, ectx)
	assert.Equal(t, models.ExecutionStatusFailed, ectx.CurrentStatus())
}

func TestExecute_CyclicGraph(t *testing.T) {
	engine := newTestEngine(t)

	workflow := &models.Workflow{
		ID:   "wf-4",
		Name: "Cycle",
		Nodes: []models.WorkflowNode{
			simpleNode("a", models.NodeTypeDelay, nil),
			simpleNode("b", models.NodeTypeDelay, nil),
		},
		Connections: []models.Connection{
			{ID: "c1", SourceNodeID: "a", TargetNodeID: "b"},
			{ID: "c2", SourceNodeID: "b", TargetNodeID: "a"},
		},
	}

	ectx, err := engine.Execute(t.Context(), workflow, "user-1", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCyclicGraph))
	assert.Equal(t, models.ExecutionStatusFailed, ectx.CurrentStatus())
}

func TestExecute_FailFastStopsDownstreamNodes(t *testing.T) {
	boom := stubFactory{
		nodeType: models.NodeType("boom"),
		handler: protocol.HandlerFunc(func(ctx context.Context, ectx *models.ExecutionContext, node *models.WorkflowNode) error {
			return errors.New("boom")
		}),
	}
	engine := newTestEngine(t, boom)

	workflow := &models.Workflow{
		ID:   "wf-5",
		Name: "Fail Fast",
		Nodes: []models.WorkflowNode{
			simpleNode("first", models.NodeType("boom"), nil),
			simpleNode("intake", models.NodeTypeClientIntake, nil),
		},
		Connections: []models.Connection{
			{ID: "c1", SourceNodeID: "first", TargetNodeID: "intake"},
		},
	}

	ectx, err := engine.Execute(t.Context(), workflow, "user-1", map[string]any{
		"name": "Asha", "email": "asha@example.com", "pan": "ABCDE1234F",
	})
	require.Error(t, err)
	assert.Equal(t, models.ExecutionStatusFailed, ectx.CurrentStatus())
	assert.NotContains(t, ectx.Data, models.DataKeyClient)
}

func TestExecute_RetriesFlakyNode(t *testing.T) {
	calls := 0
	flaky := stubFactory{
		nodeType: models.NodeType("flaky"),
		handler: protocol.HandlerFunc(func(ctx context.Context, ectx *models.ExecutionContext, node *models.WorkflowNode) error {
			calls++
			if calls < 3 {
				return errors.New("transient")
			}

			return nil
		}),
	}
	engine := newTestEngine(t, flaky)

	workflow := &models.Workflow{
		ID:   "wf-6",
		Name: "Retry",
		Nodes: []models.WorkflowNode{
			simpleNode("flaky", models.NodeType("flaky"), map[string]any{
				"retry_attempts":   2,
				"retry_backoff_ms": 1,
			}),
		},
	}

	ectx, err := engine.Execute(t.Context(), workflow, "user-1", nil)
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionStatusCompleted, ectx.CurrentStatus())
	assert.Equal(t, 3, calls)
}

func TestExecute_RetryBudgetExhausted(t *testing.T) {
	calls := 0
	broken := stubFactory{
		nodeType: models.NodeType("broken"),
		handler: protocol.HandlerFunc(func(ctx context.Context, ectx *models.ExecutionContext, node *models.WorkflowNode) error {
			calls++

			return errors.New("still broken")
		}),
	}
	engine := newTestEngine(t, broken)

	workflow := &models.Workflow{
		ID:   "wf-7",
		Name: "Retry Exhausted",
		Nodes: []models.WorkflowNode{
			simpleNode("broken", models.NodeType("broken"), map[string]any{
				"retry_attempts":   1,
				"retry_backoff_ms": 1,
			}),
		},
	}

	_, err := engine.Execute(t.Context(), workflow, "user-1", nil)
	require.Error(t, err)
	assert.Equal(t, 2, calls)
}

func TestCancelExecution_StopsInFlightRun(t *testing.T) {
	started := make(chan struct{})
	pause := stubFactory{
		nodeType: models.NodeType("pause"),
		handler: protocol.HandlerFunc(func(ctx context.Context, ectx *models.ExecutionContext, node *models.WorkflowNode) error {
			close(started)
			<-ctx.Done()

			return nil
		}),
	}
	engine := newTestEngine(t, pause)

	workflow := &models.Workflow{
		ID:   "wf-8",
		Name: "Cancel",
		Nodes: []models.WorkflowNode{
			simpleNode("pause", models.NodeType("pause"), nil),
			simpleNode("never", models.NodeTypeClientIntake, nil),
		},
		Connections: []models.Connection{
			{ID: "c1", SourceNodeID: "pause", TargetNodeID: "never"},
		},
	}

	done := make(chan struct{})

	var (
		ectx *models.ExecutionContext
		err  error
	)

	go func() {
		defer close(done)

		ectx, err = engine.Execute(context.Background(), workflow, "user-1", nil)
	}()

	<-started

	active := engine.ActiveExecutions()
	require.Len(t, active, 1)
	assert.True(t, engine.CancelExecution(active[0].ExecutionID))

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("execution did not stop after cancellation")
	}

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrExecutionCancelled))
	assert.Equal(t, models.ExecutionStatusCancelled, ectx.CurrentStatus())
	assert.NotContains(t, ectx.Data, models.DataKeyClient)
}

func TestCancelExecution_UnknownID(t *testing.T) {
	engine := newTestEngine(t)

	assert.False(t, engine.CancelExecution("exec_missing"))
}

func TestExecute_RecordsLifecycleLogs(t *testing.T) {
	engine := newTestEngine(t)

	workflow := &models.Workflow{
		ID:    "wf-9",
		Name:  "Logs",
		Nodes: []models.WorkflowNode{simpleNode("delay", models.NodeTypeDelay, map[string]any{"duration": 0})},
	}

	ectx, err := engine.Execute(t.Context(), workflow, "user-1", nil)
	require.NoError(t, err)

	require.NotEmpty(t, ectx.Logs)
	assert.Contains(t, ectx.Logs[0].Message, "Starting workflow execution")
	assert.Contains(t, ectx.Logs[len(ectx.Logs)-1].Message, "completed successfully")
}

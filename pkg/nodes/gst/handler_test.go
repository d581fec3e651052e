package gst

import (
	"errors"
	"testing"

	"github.com/caflow/caflow/pkg/models"
	"github.com/caflow/caflow/pkg/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, config map[string]any, data map[string]any) (*models.ExecutionContext, error) {
	t.Helper()

	ectx := models.NewExecutionContext("wf", "exec", "user", data)
	node := &models.WorkflowNode{
		ID:   "gst-1",
		Type: models.NodeTypeGSTProcessor,
		Data: models.NodeData{Label: "GST", Config: config},
	}

	return ectx, (&Handler{}).Execute(t.Context(), ectx, node)
}

func TestHandler_MissingFinancialData(t *testing.T) {
	_, err := execute(t, nil, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, protocol.ErrMissingInput))
}

func TestHandler_IntraStateSplitsEvenly(t *testing.T) {
	ectx, err := execute(t, map[string]any{}, map[string]any{
		models.DataKeyFinancialData: models.FinancialData{Revenue: 1000000},
	})
	require.NoError(t, err)

	calc, ok := ectx.Data[models.DataKeyGSTCalculation].(models.GSTCalculation)
	require.True(t, ok)
	assert.InDelta(t, 0.18, calc.GSTRate, 0.001)
	assert.InDelta(t, 180000.0, calc.GSTAmount, 0.001)
	assert.InDelta(t, 90000.0, calc.CGST, 0.001)
	assert.InDelta(t, 90000.0, calc.SGST, 0.001)
	assert.Zero(t, calc.IGST)
}

func TestHandler_InterstateUsesIGST(t *testing.T) {
	ectx, err := execute(t, map[string]any{"interstate": true}, map[string]any{
		models.DataKeyFinancialData: models.FinancialData{Revenue: 500000},
	})
	require.NoError(t, err)

	calc := ectx.Data[models.DataKeyGSTCalculation].(models.GSTCalculation)
	assert.InDelta(t, 90000.0, calc.IGST, 0.001)
	assert.Zero(t, calc.CGST)
	assert.Zero(t, calc.SGST)
}

func TestHandler_CustomRate(t *testing.T) {
	ectx, err := execute(t, map[string]any{"gstRate": 0.05}, map[string]any{
		models.DataKeyFinancialData: models.FinancialData{Revenue: 200000},
	})
	require.NoError(t, err)

	calc := ectx.Data[models.DataKeyGSTCalculation].(models.GSTCalculation)
	assert.InDelta(t, 10000.0, calc.GSTAmount, 0.001)
}

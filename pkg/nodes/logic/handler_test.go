package logic

import (
	"context"
	"testing"
	"time"

	"github.com/caflow/caflow/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConditionHandler_RecordsResultPerNode(t *testing.T) {
	ectx := models.NewExecutionContext("wf", "exec", "user", map[string]any{
		"revenue": 900000.0,
	})
	node := &models.WorkflowNode{
		ID:   "cond-1",
		Type: models.NodeTypeCondition,
		Data: models.NodeData{Label: "Condition", Config: map[string]any{
			"field":    "revenue",
			"operator": "greater_than",
			"value":    500000,
		}},
	}

	require.NoError(t, (&ConditionHandler{}).Execute(t.Context(), ectx, node))
	assert.Equal(t, true, ectx.Data["condition_cond-1"])
}

func TestConditionHandler_RejectsUnknownOperator(t *testing.T) {
	ectx := models.NewExecutionContext("wf", "exec", "user", nil)
	node := &models.WorkflowNode{
		ID:   "cond-1",
		Type: models.NodeTypeCondition,
		Data: models.NodeData{Label: "Condition", Config: map[string]any{
			"field":    "revenue",
			"operator": "resembles",
		}},
	}

	assert.Error(t, (&ConditionHandler{}).Execute(t.Context(), ectx, node))
}

func TestLoopHandler_BoundedIteration(t *testing.T) {
	ectx := models.NewExecutionContext("wf", "exec", "user", map[string]any{
		"items": []any{"a", "b", "c", "d"},
	})
	node := &models.WorkflowNode{
		ID:   "loop-1",
		Type: models.NodeTypeLoop,
		Data: models.NodeData{Label: "Loop", Config: map[string]any{"maxIterations": 2}},
	}

	require.NoError(t, (&LoopHandler{}).Execute(t.Context(), ectx, node))

	result := ectx.Data["loop_loop-1"].(map[string]any)
	assert.Equal(t, 2, result["count"])
	assert.Equal(t, true, result["truncated"])
}

func TestDelayHandler_HonorsCancellation(t *testing.T) {
	ectx := models.NewExecutionContext("wf", "exec", "user", nil)
	node := &models.WorkflowNode{
		ID:   "delay-1",
		Type: models.NodeTypeDelay,
		Data: models.NodeData{Label: "Delay", Config: map[string]any{"duration": 10, "unit": "seconds"}},
	}

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	start := time.Now()
	err := (&DelayHandler{}).Execute(ctx, ectx, node)
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}

func TestTransformerHandler_Operations(t *testing.T) {
	ectx := models.NewExecutionContext("wf", "exec", "user", map[string]any{
		"amount": 1000.0,
		"name":   "asha",
	})
	node := &models.WorkflowNode{
		ID:   "transform-1",
		Type: models.NodeTypeDataTransformer,
		Data: models.NodeData{Label: "Transform", Config: map[string]any{
			"transformations": []any{
				map[string]any{"sourceField": "amount", "targetField": "amountCopy", "operation": "copy"},
				map[string]any{"sourceField": "amount", "targetField": "amountFormatted", "operation": "format", "value": "currency"},
				map[string]any{"sourceField": "amount", "targetField": "amountWithGST", "operation": "calculate", "value": "multiply 1.18"},
				map[string]any{"sourceField": "name", "targetField": "nameUpper", "operation": "format", "value": "uppercase"},
			},
		}},
	}

	require.NoError(t, (&TransformerHandler{}).Execute(t.Context(), ectx, node))

	assert.Equal(t, 1000.0, ectx.Data["amountCopy"])
	assert.Equal(t, "₹1000.00", ectx.Data["amountFormatted"])
	assert.InDelta(t, 1180.0, ectx.Data["amountWithGST"].(float64), 0.001)
	assert.Equal(t, "ASHA", ectx.Data["nameUpper"])
}

func TestTransformerHandler_UnknownOperation(t *testing.T) {
	ectx := models.NewExecutionContext("wf", "exec", "user", nil)
	node := &models.WorkflowNode{
		ID:   "transform-1",
		Type: models.NodeTypeDataTransformer,
		Data: models.NodeData{Label: "Transform", Config: map[string]any{
			"transformations": []any{
				map[string]any{"sourceField": "a", "targetField": "b", "operation": "explode"},
			},
		}},
	}

	assert.Error(t, (&TransformerHandler{}).Execute(t.Context(), ectx, node))
}

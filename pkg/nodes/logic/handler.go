// Package logic provides control-flow node handlers (condition, loop, delay,
// data transformer).
package logic

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/caflow/caflow/pkg/models"
	"github.com/caflow/caflow/pkg/protocol"
)

// ConditionHandler evaluates the node's condition expression against the
// context data and records the boolean result under condition_<nodeID>.
type ConditionHandler struct{}

func (h *ConditionHandler) Execute(_ context.Context, ectx *models.ExecutionContext, node *models.WorkflowNode) error {
	expr, err := models.ParseConditionExpression(node.Data.Config)
	if err != nil {
		return fmt.Errorf("node %s: %w", node.ID, err)
	}

	result, err := expr.Evaluate(ectx.Data)
	if err != nil {
		return fmt.Errorf("node %s: %w", node.ID, err)
	}

	ectx.Data["condition_"+node.ID] = result
	ectx.AppendLog(models.LogLevelInfo,
		fmt.Sprintf("Condition %s %s evaluated to %t", expr.Field, expr.Operator, result), nil)

	return nil
}

// LoopHandler iterates once over the configured collection field, bounded by
// maxIterations. It does not re-enter downstream nodes per item; it produces
// the visited items and count for downstream consumption.
type LoopHandler struct{}

func (h *LoopHandler) Execute(_ context.Context, ectx *models.ExecutionContext, node *models.WorkflowNode) error {
	field := stringOr(node.Data.Config, "iterationField", "items")

	maxIterations := 100
	if v, ok := intValue(node.Data.Config["maxIterations"]); ok && v > 0 {
		maxIterations = v
	}

	collection, _ := ectx.Data[field].([]any)

	visited := make([]any, 0, len(collection))
	for i, item := range collection {
		if i >= maxIterations {
			break
		}

		visited = append(visited, item)
	}

	ectx.Data["loop_"+node.ID] = map[string]any{
		"items":     visited,
		"count":     len(visited),
		"truncated": len(collection) > len(visited),
	}
	ectx.AppendLog(models.LogLevelInfo,
		fmt.Sprintf("Loop visited %d of %d items from %s", len(visited), len(collection), field), nil)

	return nil
}

// DelayHandler pauses execution for the configured duration, aborting early
// when the run context is cancelled.
type DelayHandler struct{}

func (h *DelayHandler) Execute(ctx context.Context, ectx *models.ExecutionContext, node *models.WorkflowNode) error {
	duration := delayDuration(node.Data.Config)

	timer := time.NewTimer(duration)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
	}

	ectx.AppendLog(models.LogLevelInfo, fmt.Sprintf("Delayed execution by %s", duration), nil)

	return nil
}

func delayDuration(config map[string]any) time.Duration {
	amount := 5.0
	if v, ok := floatValue(config["duration"]); ok && v >= 0 {
		amount = v
	}

	switch stringOr(config, "unit", "seconds") {
	case "minutes":
		return time.Duration(amount * float64(time.Minute))
	case "hours":
		return time.Duration(amount * float64(time.Hour))
	case "days":
		return time.Duration(amount * 24 * float64(time.Hour))
	default:
		return time.Duration(amount * float64(time.Second))
	}
}

// TransformerHandler applies the configured field transformations to the
// context data in order.
type TransformerHandler struct{}

func (h *TransformerHandler) Execute(_ context.Context, ectx *models.ExecutionContext, node *models.WorkflowNode) error {
	transformations, _ := node.Data.Config["transformations"].([]any)

	applied := 0

	for _, raw := range transformations {
		transform, ok := raw.(map[string]any)
		if !ok {
			continue
		}

		sourceField, _ := transform["sourceField"].(string)
		targetField, _ := transform["targetField"].(string)
		operation, _ := transform["operation"].(string)
		value, _ := transform["value"].(string)

		if sourceField == "" || targetField == "" {
			continue
		}

		switch operation {
		case "copy":
			ectx.Data[targetField] = ectx.Data[sourceField]
		case "format":
			ectx.Data[targetField] = formatValue(ectx.Data[sourceField], value)
		case "calculate":
			ectx.Data[targetField] = calculateValue(ectx.Data[sourceField], value)
		default:
			return fmt.Errorf("node %s: unknown transformation operation %q", node.ID, operation)
		}

		applied++
	}

	ectx.AppendLog(models.LogLevelInfo, fmt.Sprintf("Applied %d transformations", applied), nil)

	return nil
}

func formatValue(value any, format string) any {
	switch format {
	case "currency":
		if n, ok := floatValue(value); ok {
			return fmt.Sprintf("₹%.2f", n)
		}

		return value
	case "date":
		if t, ok := value.(time.Time); ok {
			return t.Format("02/01/2006")
		}

		if s, ok := value.(string); ok {
			if t, err := time.Parse(time.RFC3339, s); err == nil {
				return t.Format("02/01/2006")
			}
		}

		return value
	case "uppercase":
		return strings.ToUpper(fmt.Sprintf("%v", value))
	case "lowercase":
		return strings.ToLower(fmt.Sprintf("%v", value))
	default:
		return value
	}
}

// calculateValue applies an "op operand" expression, e.g. "multiply 1.18".
func calculateValue(value any, operation string) any {
	n, ok := floatValue(value)
	if !ok {
		return value
	}

	parts := strings.Fields(operation)
	if len(parts) != 2 {
		return value
	}

	operand, ok := floatValue(parts[1])
	if !ok {
		return value
	}

	switch parts[0] {
	case "add":
		return n + operand
	case "subtract":
		return n - operand
	case "multiply":
		return n * operand
	case "divide":
		if operand == 0 {
			return value
		}

		return n / operand
	case "percentage":
		return (n * operand) / 100
	default:
		return value
	}
}

func stringOr(config map[string]any, key, fallback string) string {
	if v, ok := config[key].(string); ok && v != "" {
		return v
	}

	return fallback
}

func floatValue(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		var f float64
		if _, err := fmt.Sscanf(n, "%g", &f); err == nil {
			return f, true
		}

		return 0, false
	default:
		return 0, false
	}
}

func intValue(v any) (int, bool) {
	f, ok := floatValue(v)

	return int(f), ok
}

// ConditionFactory creates condition handlers.
type ConditionFactory struct{}

func (f *ConditionFactory) Type() models.NodeType { return models.NodeTypeCondition }

func (f *ConditionFactory) Create() (protocol.Handler, error) { return &ConditionHandler{}, nil }

// NewConditionFactory creates a new factory instance.
func NewConditionFactory() protocol.HandlerFactory { return &ConditionFactory{} }

// LoopFactory creates loop handlers.
type LoopFactory struct{}

func (f *LoopFactory) Type() models.NodeType { return models.NodeTypeLoop }

func (f *LoopFactory) Create() (protocol.Handler, error) { return &LoopHandler{}, nil }

// NewLoopFactory creates a new factory instance.
func NewLoopFactory() protocol.HandlerFactory { return &LoopFactory{} }

// DelayFactory creates delay handlers.
type DelayFactory struct{}

func (f *DelayFactory) Type() models.NodeType { return models.NodeTypeDelay }

func (f *DelayFactory) Create() (protocol.Handler, error) { return &DelayHandler{}, nil }

// NewDelayFactory creates a new factory instance.
func NewDelayFactory() protocol.HandlerFactory { return &DelayFactory{} }

// TransformerFactory creates data transformer handlers.
type TransformerFactory struct{}

func (f *TransformerFactory) Type() models.NodeType { return models.NodeTypeDataTransformer }

func (f *TransformerFactory) Create() (protocol.Handler, error) { return &TransformerHandler{}, nil }

// NewTransformerFactory creates a new factory instance.
func NewTransformerFactory() protocol.HandlerFactory { return &TransformerFactory{} }

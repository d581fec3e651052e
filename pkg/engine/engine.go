// Package engine executes workflow graphs node by node in dependency order.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/caflow/caflow/pkg/eventbus"
	"github.com/caflow/caflow/pkg/events"
	"github.com/caflow/caflow/pkg/models"
	"github.com/caflow/caflow/pkg/otelhelper"
	"github.com/caflow/caflow/pkg/registry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var (
	// ErrNoEntryPoint is returned for graphs where no node qualifies as a
	// starting point.
	ErrNoEntryPoint = errors.New("workflow has no entry point")

	// ErrCyclicGraph is returned when the dependency order cannot be
	// established. Validation catches cycles earlier; the engine still
	// guards because it accepts workflows from any caller.
	ErrCyclicGraph = errors.New("workflow contains a dependency cycle")

	// ErrExecutionCancelled is returned when a run is cancelled between
	// nodes.
	ErrExecutionCancelled = errors.New("execution cancelled")
)

type execution struct {
	ectx   *models.ExecutionContext
	cancel context.CancelFunc
}

// Engine runs workflows. It is safe for concurrent use; each run gets its own
// execution context and goroutine-local state.
type Engine struct {
	logger    *slog.Logger
	registry  *registry.Registry
	publisher eventbus.EventPublisher
	tracer    trace.Tracer

	mu       sync.Mutex
	inflight map[string]*execution
}

// NewEngine creates an engine. The publisher and tracer may be nil; lifecycle
// events and spans are then skipped.
func NewEngine(logger *slog.Logger, reg *registry.Registry, publisher eventbus.EventPublisher, tracer trace.Tracer) *Engine {
	return &Engine{
		logger:    logger.With("module", "engine"),
		registry:  reg,
		publisher: publisher,
		tracer:    tracer,
		inflight:  make(map[string]*execution),
	}
}

// Execute runs the workflow to completion and returns the execution context.
// The context is returned even when the run fails or is cancelled; its status
// and logs describe what happened.
func (e *Engine) Execute(ctx context.Context, workflow *models.Workflow, userID string, initialData map[string]any) (*models.ExecutionContext, error) {
	executionID := "exec_" + uuid.New().String()
	ectx := models.NewExecutionContext(workflow.ID, executionID, userID, initialData)

	if e.tracer != nil {
		var span trace.Span

		ctx, span = otelhelper.StartSpan(ctx, e.tracer, "engine.execute",
			attribute.String(otelhelper.WorkflowIDKey, workflow.ID),
			attribute.String(otelhelper.ExecutionIDKey, executionID),
		)
		defer span.End()
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	e.track(executionID, ectx, cancel)
	defer e.untrack(executionID)

	ectx.AppendLog(models.LogLevelInfo, fmt.Sprintf("Starting workflow execution: %s", workflow.Name), nil)

	if err := e.run(runCtx, workflow, ectx); err != nil {
		return ectx, err
	}

	return ectx, nil
}

func (e *Engine) run(ctx context.Context, workflow *models.Workflow, ectx *models.ExecutionContext) error {
	entries := entryNodes(workflow)
	if len(entries) == 0 {
		ectx.SetStatus(models.ExecutionStatusFailed)
		ectx.EndTime = time.Now().UTC()
		ectx.AppendLog(models.LogLevelError, "No entry point nodes found", nil)

		return fmt.Errorf("workflow %s: %w", workflow.ID, ErrNoEntryPoint)
	}

	order, err := executionOrder(workflow)
	if err != nil {
		ectx.SetStatus(models.ExecutionStatusFailed)
		ectx.EndTime = time.Now().UTC()
		ectx.AppendLog(models.LogLevelError, "Could not determine execution order", nil)

		return fmt.Errorf("workflow %s: %w", workflow.ID, err)
	}

	ectx.SetStatus(models.ExecutionStatusRunning)
	e.publish(ctx, ectx, events.WorkflowExecutionStarted{
		BaseEvent:   e.baseEvent(events.WorkflowExecutionStartedEvent, ectx),
		UserID:      ectx.UserID,
		InitialData: ectx.Data,
	})

	for _, nodeID := range order {
		if ectx.CurrentStatus() == models.ExecutionStatusCancelled {
			ectx.EndTime = time.Now().UTC()
			ectx.AppendLog(models.LogLevelInfo, "Workflow execution cancelled", nil)
			e.publish(ctx, ectx, events.WorkflowExecutionCancelled{
				BaseEvent: e.baseEvent(events.WorkflowExecutionCancelledEvent, ectx),
			})

			return fmt.Errorf("workflow %s: %w", workflow.ID, ErrExecutionCancelled)
		}

		if err := ctx.Err(); err != nil {
			ectx.SetStatus(models.ExecutionStatusCancelled)
			ectx.EndTime = time.Now().UTC()
			ectx.AppendLog(models.LogLevelInfo, "Workflow execution cancelled", nil)
			e.publish(ctx, ectx, events.WorkflowExecutionCancelled{
				BaseEvent: e.baseEvent(events.WorkflowExecutionCancelledEvent, ectx),
			})

			return fmt.Errorf("workflow %s: %w", workflow.ID, ErrExecutionCancelled)
		}

		node := workflow.NodeByID(nodeID)
		if node == nil {
			continue
		}

		if err := e.executeNode(ctx, ectx, node); err != nil {
			ectx.SetStatus(models.ExecutionStatusFailed)
			ectx.EndTime = time.Now().UTC()
			ectx.AppendLog(models.LogLevelError, fmt.Sprintf("Workflow execution failed: %s", err), nil)
			e.publish(ctx, ectx, events.WorkflowExecutionFailed{
				BaseEvent: e.baseEvent(events.WorkflowExecutionFailedEvent, ectx),
				NodeID:    node.ID,
				Error:     err.Error(),
				Duration:  ectx.Duration(),
			})

			return err
		}
	}

	ectx.SetStatus(models.ExecutionStatusCompleted)
	ectx.EndTime = time.Now().UTC()
	ectx.CurrentNodeID = ""
	ectx.AppendLog(models.LogLevelInfo, "Workflow execution completed successfully", nil)
	e.publish(ctx, ectx, events.WorkflowExecutionCompleted{
		BaseEvent: e.baseEvent(events.WorkflowExecutionCompletedEvent, ectx),
		Duration:  ectx.Duration(),
	})

	return nil
}

// executeNode dispatches one node through its registered handler, retrying
// per the node's retry configuration.
func (e *Engine) executeNode(ctx context.Context, ectx *models.ExecutionContext, node *models.WorkflowNode) error {
	ectx.CurrentNodeID = node.ID
	ectx.AppendLog(models.LogLevelInfo, fmt.Sprintf("Executing node: %s", node.Data.Label), nil)

	if e.tracer != nil {
		var span trace.Span

		ctx, span = otelhelper.StartSpan(ctx, e.tracer, "engine.node",
			attribute.String(otelhelper.NodeIDKey, node.ID),
			attribute.String(otelhelper.NodeTypeKey, string(node.Type)),
		)
		defer span.End()
	}

	e.publish(ctx, ectx, events.NodeExecutionStarted{
		BaseEvent: e.baseEvent(events.NodeExecutionStartedEvent, ectx),
		NodeID:    node.ID,
		NodeType:  string(node.Type),
	})

	handler, err := e.registry.CreateHandler(node.Type)
	if err != nil {
		return fmt.Errorf("node %s: %w", node.ID, err)
	}

	attempts := 1 + retryAttempts(node)
	backoff := retryBackoff(node)
	started := time.Now()

	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = handler.Execute(ctx, ectx, node)
		if lastErr == nil {
			break
		}

		if errors.Is(lastErr, context.Canceled) || errors.Is(lastErr, context.DeadlineExceeded) {
			break
		}

		if attempt < attempts {
			ectx.AppendLog(models.LogLevelWarning,
				fmt.Sprintf("Node attempt %d/%d failed, retrying: %s", attempt, attempts, lastErr), nil)

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}
	}

	if lastErr != nil {
		ectx.AppendLog(models.LogLevelError,
			fmt.Sprintf("Node execution failed: %s - %s", node.Data.Label, lastErr), nil)
		e.publish(ctx, ectx, events.NodeExecutionFailed{
			BaseEvent: e.baseEvent(events.NodeExecutionFailedEvent, ectx),
			NodeID:    node.ID,
			NodeType:  string(node.Type),
			Error:     lastErr.Error(),
			Attempts:  attempts,
		})

		return lastErr
	}

	ectx.AppendLog(models.LogLevelInfo, fmt.Sprintf("Node executed successfully: %s", node.Data.Label), nil)
	e.publish(ctx, ectx, events.NodeExecutionFinished{
		BaseEvent: e.baseEvent(events.NodeExecutionFinishedEvent, ectx),
		NodeID:    node.ID,
		NodeType:  string(node.Type),
		Duration:  time.Since(started),
	})

	return nil
}

// CancelExecution flips an in-flight run to cancelled. It reports false when
// the execution is unknown or already terminal.
func (e *Engine) CancelExecution(executionID string) bool {
	e.mu.Lock()
	exec, ok := e.inflight[executionID]
	e.mu.Unlock()

	if !ok {
		return false
	}

	if !exec.ectx.SetStatus(models.ExecutionStatusCancelled) {
		return false
	}

	exec.cancel()

	return true
}

// ActiveExecutions returns the contexts of currently running executions.
func (e *Engine) ActiveExecutions() []*models.ExecutionContext {
	e.mu.Lock()
	defer e.mu.Unlock()

	active := make([]*models.ExecutionContext, 0, len(e.inflight))

	for _, exec := range e.inflight {
		if exec.ectx.CurrentStatus() == models.ExecutionStatusRunning {
			active = append(active, exec.ectx)
		}
	}

	return active
}

func (e *Engine) track(executionID string, ectx *models.ExecutionContext, cancel context.CancelFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.inflight[executionID] = &execution{ectx: ectx, cancel: cancel}
}

func (e *Engine) untrack(executionID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	delete(e.inflight, executionID)
}

func (e *Engine) baseEvent(eventType events.EventType, ectx *models.ExecutionContext) events.BaseEvent {
	return events.BaseEvent{
		ID:          uuid.New().String(),
		Type:        eventType,
		Timestamp:   time.Now().UTC(),
		WorkflowID:  ectx.WorkflowID,
		ExecutionID: ectx.ExecutionID,
	}
}

func (e *Engine) publish(ctx context.Context, ectx *models.ExecutionContext, event eventbus.Event) {
	if e.publisher == nil {
		return
	}

	if err := e.publisher.Publish(ctx, ectx.WorkflowID, event); err != nil {
		e.logger.WarnContext(ctx, "Failed to publish event",
			"event_type", event.GetType(), "execution_id", ectx.ExecutionID, "error", err)
	}
}

// entryNodes returns the nodes a run can start from: nodes declaring no input
// ports, plus trigger nodes.
func entryNodes(workflow *models.Workflow) []*models.WorkflowNode {
	var entries []*models.WorkflowNode

	for i := range workflow.Nodes {
		node := &workflow.Nodes[i]
		if len(node.Data.Inputs) == 0 || node.Type.IsTriggerType() {
			entries = append(entries, node)
		}
	}

	return entries
}

// executionOrder produces a dependency-first ordering via post-order DFS over
// incoming connections. The recursion stack doubles as a cycle guard.
func executionOrder(workflow *models.Workflow) ([]string, error) {
	visited := make(map[string]bool, len(workflow.Nodes))
	onStack := make(map[string]bool, len(workflow.Nodes))
	order := make([]string, 0, len(workflow.Nodes))

	var visit func(nodeID string) error

	visit = func(nodeID string) error {
		if onStack[nodeID] {
			return ErrCyclicGraph
		}

		if visited[nodeID] {
			return nil
		}

		visited[nodeID] = true
		onStack[nodeID] = true

		for _, conn := range workflow.IncomingConnections(nodeID) {
			if workflow.NodeByID(conn.SourceNodeID) == nil {
				continue
			}

			if err := visit(conn.SourceNodeID); err != nil {
				return err
			}
		}

		onStack[nodeID] = false
		order = append(order, nodeID)

		return nil
	}

	for _, node := range workflow.Nodes {
		if err := visit(node.ID); err != nil {
			return nil, err
		}
	}

	return order, nil
}

func retryAttempts(node *models.WorkflowNode) int {
	switch v := node.Data.Config["retry_attempts"].(type) {
	case int:
		if v > 0 {
			return v
		}
	case float64:
		if v > 0 {
			return int(v)
		}
	}

	return 0
}

func retryBackoff(node *models.WorkflowNode) time.Duration {
	switch v := node.Data.Config["retry_backoff_ms"].(type) {
	case int:
		if v > 0 {
			return time.Duration(v) * time.Millisecond
		}
	case float64:
		if v > 0 {
			return time.Duration(v) * time.Millisecond
		}
	}

	return 100 * time.Millisecond
}

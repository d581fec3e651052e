package models

import (
	"sync"
	"time"
)

// ExecutionStatus is the lifecycle state of one workflow run. All terminal
// states are final; there is no resumption.
type ExecutionStatus string

const (
	ExecutionStatusPending   ExecutionStatus = "pending"
	ExecutionStatusRunning   ExecutionStatus = "running"
	ExecutionStatusCompleted ExecutionStatus = "completed"
	ExecutionStatusFailed    ExecutionStatus = "failed"
	ExecutionStatusCancelled ExecutionStatus = "cancelled"
)

// IsTerminal reports whether the status permits no further transitions.
func (s ExecutionStatus) IsTerminal() bool {
	return s == ExecutionStatusCompleted || s == ExecutionStatusFailed || s == ExecutionStatusCancelled
}

// LogLevel classifies execution log entries.
type LogLevel string

const (
	LogLevelInfo    LogLevel = "info"
	LogLevelWarning LogLevel = "warning"
	LogLevelError   LogLevel = "error"
)

// ExecutionLog is one append-only audit trail entry owned by an execution.
type ExecutionLog struct {
	Timestamp time.Time      `json:"timestamp"`
	NodeID    string         `json:"nodeId"`
	Level     LogLevel       `json:"level"`
	Message   string         `json:"message"`
	Data      map[string]any `json:"data,omitempty"`
}

// ExecutionContext is the mutable run state of one workflow execution. Data is
// a shared scratch space keyed by semantic field names (client, financialData,
// taxCalculation, ...) that node handlers read and write in topological order.
// A context is owned by a single execution goroutine; the status field alone
// may be flipped to cancelled from outside, hence the mutex.
type ExecutionContext struct {
	WorkflowID    string          `json:"workflowId"`
	ExecutionID   string          `json:"executionId"`
	UserID        string          `json:"userId"`
	StartTime     time.Time       `json:"startTime"`
	EndTime       time.Time       `json:"endTime,omitzero"`
	CurrentNodeID string          `json:"currentNodeId,omitempty"`
	Data          map[string]any  `json:"data"`
	Logs          []ExecutionLog  `json:"logs"`
	Status        ExecutionStatus `json:"status"`

	mu sync.Mutex
}

// NewExecutionContext creates a pending context seeded with a copy of the
// initial data.
func NewExecutionContext(workflowID, executionID, userID string, initialData map[string]any) *ExecutionContext {
	data := make(map[string]any, len(initialData))
	for k, v := range initialData {
		data[k] = v
	}

	return &ExecutionContext{
		WorkflowID:  workflowID,
		ExecutionID: executionID,
		UserID:      userID,
		StartTime:   time.Now().UTC(),
		Data:        data,
		Logs:        make([]ExecutionLog, 0),
		Status:      ExecutionStatusPending,
	}
}

// AppendLog records a log entry attributed to the current node, or "system"
// when no node is active.
func (c *ExecutionContext) AppendLog(level LogLevel, message string, data map[string]any) {
	nodeID := c.CurrentNodeID
	if nodeID == "" {
		nodeID = "system"
	}

	c.Logs = append(c.Logs, ExecutionLog{
		Timestamp: time.Now().UTC(),
		NodeID:    nodeID,
		Level:     level,
		Message:   message,
		Data:      data,
	})
}

// SetStatus transitions the status. Transitions out of a terminal state are
// ignored so a late cancellation cannot overwrite a completed run.
func (c *ExecutionContext) SetStatus(status ExecutionStatus) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.Status.IsTerminal() {
		return false
	}

	c.Status = status

	return true
}

// CurrentStatus returns the status under the context's lock.
func (c *ExecutionContext) CurrentStatus() ExecutionStatus {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.Status
}

// Duration returns how long the execution ran, falling back to time since
// start for in-flight runs.
func (c *ExecutionContext) Duration() time.Duration {
	if c.EndTime.IsZero() {
		return time.Since(c.StartTime)
	}

	return c.EndTime.Sub(c.StartTime)
}

// Package protocol defines the interfaces and contracts for node handlers and
// external collaborator services.
package protocol

import (
	"context"

	"github.com/caflow/caflow/pkg/models"
)

// Handler executes one node's work against the shared execution context. A
// handler is a function of (node config, context data) that mutates the data
// bag; it must not assume anything about sibling ordering beyond what the
// connection graph guarantees.
type Handler interface {
	// Execute runs the node. Returning an error fails the whole run.
	Execute(ctx context.Context, ectx *models.ExecutionContext, node *models.WorkflowNode) error
}

// HandlerFunc adapts a plain function to the Handler interface.
type HandlerFunc func(ctx context.Context, ectx *models.ExecutionContext, node *models.WorkflowNode) error

func (f HandlerFunc) Execute(ctx context.Context, ectx *models.ExecutionContext, node *models.WorkflowNode) error {
	return f(ctx, ectx, node)
}

// HandlerFactory creates handler instances and provides metadata about the
// node type it serves.
type HandlerFactory interface {
	// Type returns the node type this factory serves.
	Type() models.NodeType

	// Create creates a handler instance. The same handler may be reused
	// across executions; handlers must be stateless.
	Create() (Handler, error)
}

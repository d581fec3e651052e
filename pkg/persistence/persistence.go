// Package persistence provides the data storage abstraction layer for
// workflows and execution history.
package persistence

import (
	"context"

	"github.com/caflow/caflow/pkg/models"
)

// WorkflowRepository stores workflow definitions.
type WorkflowRepository interface {
	Workflows(ctx context.Context) ([]*models.Workflow, error)
	WorkflowByID(ctx context.Context, id string) (*models.Workflow, error)
	SaveWorkflow(ctx context.Context, workflow *models.Workflow) error
	DeleteWorkflow(ctx context.Context, id string) error
	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}

// ExecutionRepository stores finished and in-flight execution contexts.
type ExecutionRepository interface {
	Executions(ctx context.Context) ([]*models.ExecutionContext, error)
	ExecutionByID(ctx context.Context, id string) (*models.ExecutionContext, error)
	ExecutionsByWorkflow(ctx context.Context, workflowID string) ([]*models.ExecutionContext, error)
	SaveExecution(ctx context.Context, ectx *models.ExecutionContext) error
	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}

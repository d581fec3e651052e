// Package memory provides an in-memory persistence implementation for
// development and tests.
package memory

import (
	"context"
	"sync"

	"github.com/caflow/caflow/pkg/models"
	"github.com/caflow/caflow/pkg/persistence"
)

// Persistence keeps workflows and executions in maps guarded by a RWMutex.
// Workflows are deep-copied on the way in and out so callers cannot mutate
// stored state.
type Persistence struct {
	mu         sync.RWMutex
	workflows  map[string]*models.Workflow
	executions map[string]*models.ExecutionContext
}

func NewPersistence() *Persistence {
	return &Persistence{
		workflows:  make(map[string]*models.Workflow),
		executions: make(map[string]*models.ExecutionContext),
	}
}

func (p *Persistence) Workflows(_ context.Context) ([]*models.Workflow, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	workflows := make([]*models.Workflow, 0, len(p.workflows))
	for _, w := range p.workflows {
		workflows = append(workflows, w.Clone())
	}

	return workflows, nil
}

func (p *Persistence) WorkflowByID(_ context.Context, id string) (*models.Workflow, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	w, ok := p.workflows[id]
	if !ok {
		return nil, persistence.NewWorkflowError("WorkflowByID", id, persistence.ErrWorkflowNotFound)
	}

	return w.Clone(), nil
}

func (p *Persistence) SaveWorkflow(_ context.Context, workflow *models.Workflow) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.workflows[workflow.ID] = workflow.Clone()

	return nil
}

func (p *Persistence) DeleteWorkflow(_ context.Context, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.workflows[id]; !ok {
		return persistence.NewWorkflowError("DeleteWorkflow", id, persistence.ErrWorkflowNotFound)
	}

	delete(p.workflows, id)

	return nil
}

func (p *Persistence) Executions(_ context.Context) ([]*models.ExecutionContext, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	executions := make([]*models.ExecutionContext, 0, len(p.executions))
	for _, e := range p.executions {
		executions = append(executions, e)
	}

	return executions, nil
}

func (p *Persistence) ExecutionByID(_ context.Context, id string) (*models.ExecutionContext, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	e, ok := p.executions[id]
	if !ok {
		return nil, persistence.NewExecutionError("ExecutionByID", id, persistence.ErrExecutionNotFound)
	}

	return e, nil
}

func (p *Persistence) ExecutionsByWorkflow(_ context.Context, workflowID string) ([]*models.ExecutionContext, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var executions []*models.ExecutionContext

	for _, e := range p.executions {
		if e.WorkflowID == workflowID {
			executions = append(executions, e)
		}
	}

	return executions, nil
}

func (p *Persistence) SaveExecution(_ context.Context, ectx *models.ExecutionContext) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.executions[ectx.ExecutionID] = ectx

	return nil
}

func (p *Persistence) HealthCheck(_ context.Context) error { return nil }

func (p *Persistence) Close(_ context.Context) error { return nil }

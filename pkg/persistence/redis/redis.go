// Package redis provides a Redis-backed execution history repository.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/caflow/caflow/pkg/models"
	"github.com/caflow/caflow/pkg/persistence"
	goredis "github.com/redis/go-redis/v9"
)

const (
	executionKeyPrefix  = "caflow:execution:"
	workflowIndexPrefix = "caflow:workflow:"
	executionIndex      = "caflow:executions"
)

// ExecutionRepository stores execution contexts as JSON values keyed by
// execution ID, with per-workflow and global index sets for listing.
type ExecutionRepository struct {
	client *goredis.Client
	ttl    time.Duration
}

// NewExecutionRepository creates a repository on the given client. A zero ttl
// keeps history forever.
func NewExecutionRepository(client *goredis.Client, ttl time.Duration) *ExecutionRepository {
	return &ExecutionRepository{client: client, ttl: ttl}
}

func (r *ExecutionRepository) SaveExecution(ctx context.Context, ectx *models.ExecutionContext) error {
	payload, err := json.Marshal(ectx)
	if err != nil {
		return persistence.NewExecutionError("SaveExecution", ectx.ExecutionID, err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, executionKeyPrefix+ectx.ExecutionID, payload, r.ttl)
	pipe.SAdd(ctx, executionIndex, ectx.ExecutionID)
	pipe.SAdd(ctx, workflowIndexPrefix+ectx.WorkflowID+":executions", ectx.ExecutionID)

	if _, err := pipe.Exec(ctx); err != nil {
		return persistence.NewExecutionError("SaveExecution", ectx.ExecutionID, err)
	}

	return nil
}

func (r *ExecutionRepository) ExecutionByID(ctx context.Context, id string) (*models.ExecutionContext, error) {
	payload, err := r.client.Get(ctx, executionKeyPrefix+id).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, persistence.NewExecutionError("ExecutionByID", id, persistence.ErrExecutionNotFound)
	}

	if err != nil {
		return nil, persistence.NewExecutionError("ExecutionByID", id, err)
	}

	var ectx models.ExecutionContext
	if err := json.Unmarshal(payload, &ectx); err != nil {
		return nil, persistence.NewExecutionError("ExecutionByID", id, err)
	}

	return &ectx, nil
}

func (r *ExecutionRepository) Executions(ctx context.Context) ([]*models.ExecutionContext, error) {
	ids, err := r.client.SMembers(ctx, executionIndex).Result()
	if err != nil {
		return nil, persistence.NewExecutionError("Executions", "", err)
	}

	return r.collect(ctx, ids)
}

func (r *ExecutionRepository) ExecutionsByWorkflow(ctx context.Context, workflowID string) ([]*models.ExecutionContext, error) {
	ids, err := r.client.SMembers(ctx, workflowIndexPrefix+workflowID+":executions").Result()
	if err != nil {
		return nil, persistence.NewExecutionError("ExecutionsByWorkflow", workflowID, err)
	}

	return r.collect(ctx, ids)
}

// collect fetches each indexed execution, skipping entries that expired out
// from under their index.
func (r *ExecutionRepository) collect(ctx context.Context, ids []string) ([]*models.ExecutionContext, error) {
	executions := make([]*models.ExecutionContext, 0, len(ids))

	for _, id := range ids {
		ectx, err := r.ExecutionByID(ctx, id)
		if persistence.IsExecutionNotFound(err) {
			continue
		}

		if err != nil {
			return nil, err
		}

		executions = append(executions, ectx)
	}

	return executions, nil
}

func (r *ExecutionRepository) HealthCheck(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *ExecutionRepository) Close(_ context.Context) error {
	return r.client.Close()
}

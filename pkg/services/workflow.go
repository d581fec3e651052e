package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caflow/caflow/pkg/models"
	"github.com/caflow/caflow/pkg/persistence"
	"github.com/caflow/caflow/pkg/templates"
	"github.com/caflow/caflow/pkg/validation"
	"github.com/google/uuid"
	"github.com/xeipuuv/gojsonschema"
)

var (
	// ErrWorkflowNotFound is returned when a workflow is not found.
	ErrWorkflowNotFound = persistence.ErrWorkflowNotFound

	// ErrExecutionNotFound is returned when an execution is not found.
	ErrExecutionNotFound = persistence.ErrExecutionNotFound
)

// Executor runs workflows. Satisfied by engine.Engine.
type Executor interface {
	Execute(ctx context.Context, workflow *models.Workflow, userID string, initialData map[string]any) (*models.ExecutionContext, error)
	CancelExecution(executionID string) bool
}

// workflowImportSchema gates imported JSON before it is unmarshalled into a
// workflow. Structural validation still runs afterwards; the schema rejects
// payloads that are not even shaped like a workflow.
const workflowImportSchema = `{
	"type": "object",
	"required": ["name", "nodes", "connections"],
	"properties": {
		"name": {"type": "string", "minLength": 1},
		"description": {"type": "string"},
		"nodes": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["id", "type"],
				"properties": {
					"id": {"type": "string"},
					"type": {"type": "string"}
				}
			}
		},
		"connections": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["sourceNodeId", "targetNodeId"],
				"properties": {
					"sourceNodeId": {"type": "string"},
					"targetNodeId": {"type": "string"}
				}
			}
		},
		"tags": {"type": "array", "items": {"type": "string"}}
	}
}`

// WorkflowAnalysis summarizes the shape and cost of a workflow graph.
type WorkflowAnalysis struct {
	NodeCount              int    `json:"nodeCount"`
	ConnectionCount        int    `json:"connectionCount"`
	EntryPoints            int    `json:"entryPoints"`
	ExitPoints             int    `json:"exitPoints"`
	EstimatedExecutionTime int    `json:"estimatedExecutionTime"` // seconds
	Complexity             string `json:"complexity"`
}

// WorkflowStats aggregates catalog-wide workflow and execution counters.
type WorkflowStats struct {
	TotalWorkflows       int           `json:"totalWorkflows"`
	ActiveWorkflows      int           `json:"activeWorkflows"`
	TotalExecutions      int           `json:"totalExecutions"`
	SuccessfulExecutions int           `json:"successfulExecutions"`
	FailedExecutions     int           `json:"failedExecutions"`
	AverageExecutionTime time.Duration `json:"averageExecutionTime"`
}

// TemplateCustomizations overrides template fields when instantiating.
type TemplateCustomizations struct {
	Name        string
	Description string
	CreatedBy   string
}

// Workflow is the stateless workflow service. All state lives behind the
// injected repositories and the executor.
type Workflow struct {
	logger     *slog.Logger
	workflows  persistence.WorkflowRepository
	executions persistence.ExecutionRepository
	executor   Executor
}

// NewWorkflow creates a new workflow service.
func NewWorkflow(logger *slog.Logger, workflows persistence.WorkflowRepository, executions persistence.ExecutionRepository, executor Executor) *Workflow {
	return &Workflow{
		logger:     logger.With("module", "services"),
		workflows:  workflows,
		executions: executions,
		executor:   executor,
	}
}

// HealthCheck checks the health of the persistence layer.
func (s *Workflow) HealthCheck(ctx context.Context) (string, bool) {
	if s.workflows == nil {
		return "Persistence layer not initialized", false
	}

	if err := s.workflows.HealthCheck(ctx); err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// CreateWorkflow validates and stores a new workflow.
func (s *Workflow) CreateWorkflow(ctx context.Context, workflow *models.Workflow) (*models.Workflow, error) {
	if workflow == nil {
		return nil, ErrWorkflowNil
	}

	if result := validation.Validate(workflow); !result.IsValid {
		return nil, NewValidationError("CreateWorkflow", "WORKFLOW_INVALID",
			strings.Join(result.Errors, "; "), ErrInvalidWorkflow)
	}

	created := workflow.Clone()
	if created.ID == "" {
		created.ID = uuid.New().String()
	}

	now := time.Now().UTC()
	created.CreatedAt = now
	created.UpdatedAt = now

	if err := s.workflows.SaveWorkflow(ctx, created); err != nil {
		return nil, fmt.Errorf("failed to save workflow: %w", err)
	}

	s.logger.InfoContext(ctx, "Workflow created", "workflow_id", created.ID, "name", created.Name)

	return created, nil
}

// UpdateWorkflow validates and replaces an existing workflow.
func (s *Workflow) UpdateWorkflow(ctx context.Context, workflow *models.Workflow) (*models.Workflow, error) {
	if workflow == nil {
		return nil, ErrWorkflowNil
	}

	if _, err := s.workflows.WorkflowByID(ctx, workflow.ID); err != nil {
		return nil, err
	}

	if result := validation.Validate(workflow); !result.IsValid {
		return nil, NewValidationError("UpdateWorkflow", "WORKFLOW_INVALID",
			strings.Join(result.Errors, "; "), ErrInvalidWorkflow)
	}

	updated := workflow.Clone()
	updated.UpdatedAt = time.Now().UTC()

	if err := s.workflows.SaveWorkflow(ctx, updated); err != nil {
		return nil, fmt.Errorf("failed to update workflow: %w", err)
	}

	return updated, nil
}

// DeleteWorkflow removes a workflow.
func (s *Workflow) DeleteWorkflow(ctx context.Context, id string) error {
	return s.workflows.DeleteWorkflow(ctx, id)
}

// Workflow returns one workflow by id.
func (s *Workflow) Workflow(ctx context.Context, id string) (*models.Workflow, error) {
	return s.workflows.WorkflowByID(ctx, id)
}

// Workflows returns every stored workflow.
func (s *Workflow) Workflows(ctx context.Context) ([]*models.Workflow, error) {
	return s.workflows.Workflows(ctx)
}

// SearchWorkflows matches stored workflows by name, description or tag.
func (s *Workflow) SearchWorkflows(ctx context.Context, query string) ([]*models.Workflow, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrInvalidQuery
	}

	all, err := s.workflows.Workflows(ctx)
	if err != nil {
		return nil, err
	}

	query = strings.ToLower(query)

	var matched []*models.Workflow

	for _, w := range all {
		if strings.Contains(strings.ToLower(w.Name), query) ||
			strings.Contains(strings.ToLower(w.Description), query) ||
			tagMatches(w.Tags, query) {
			matched = append(matched, w)
		}
	}

	return matched, nil
}

func tagMatches(tags []string, query string) bool {
	for _, tag := range tags {
		if strings.Contains(strings.ToLower(tag), query) {
			return true
		}
	}

	return false
}

// Templates returns the built-in template catalog.
func (s *Workflow) Templates() []models.WorkflowTemplate {
	return templates.All()
}

// TemplatesByCategory returns catalog templates in a category.
func (s *Workflow) TemplatesByCategory(category models.TemplateCategory) []models.WorkflowTemplate {
	return templates.ByCategory(category)
}

// TemplatesByComplexity returns catalog templates at a complexity level.
func (s *Workflow) TemplatesByComplexity(complexity models.TemplateComplexity) []models.WorkflowTemplate {
	return templates.ByComplexity(complexity)
}

// SearchTemplates matches catalog templates by name or description.
func (s *Workflow) SearchTemplates(query string) []models.WorkflowTemplate {
	return templates.Search(query)
}

// CreateWorkflowFromTemplate instantiates a catalog template into a stored,
// inactive workflow.
func (s *Workflow) CreateWorkflowFromTemplate(ctx context.Context, templateID string, customizations TemplateCustomizations) (*models.Workflow, error) {
	template, ok := templates.ByID(templateID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, templateID)
	}

	workflow := template.Workflow.Clone()
	workflow.ID = uuid.New().String()
	workflow.Name = template.Workflow.Name + " (Copy)"
	workflow.IsActive = false
	workflow.CreatedBy = "current-user"

	now := time.Now().UTC()
	workflow.CreatedAt = now
	workflow.UpdatedAt = now

	if customizations.Name != "" {
		workflow.Name = customizations.Name
	}

	if customizations.Description != "" {
		workflow.Description = customizations.Description
	}

	if customizations.CreatedBy != "" {
		workflow.CreatedBy = customizations.CreatedBy
	}

	if err := s.workflows.SaveWorkflow(ctx, workflow); err != nil {
		return nil, fmt.Errorf("failed to save workflow from template: %w", err)
	}

	s.logger.InfoContext(ctx, "Workflow created from template",
		"workflow_id", workflow.ID, "template_id", templateID)

	return workflow, nil
}

// ExecuteWorkflow runs a stored, active workflow and records the execution.
func (s *Workflow) ExecuteWorkflow(ctx context.Context, workflowID, userID string, initialData map[string]any) (*models.ExecutionContext, error) {
	workflow, err := s.workflows.WorkflowByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	if !workflow.IsActive {
		return nil, fmt.Errorf("%w: %s", ErrWorkflowInactive, workflow.Name)
	}

	ectx, execErr := s.executor.Execute(ctx, workflow, userID, initialData)

	if ectx != nil {
		if err := s.executions.SaveExecution(ctx, ectx); err != nil {
			s.logger.WarnContext(ctx, "Failed to persist execution",
				"execution_id", ectx.ExecutionID, "error", err)
		}
	}

	return ectx, execErr
}

// ExecuteTemplate runs a catalog template directly on an ephemeral workflow,
// without storing the workflow.
func (s *Workflow) ExecuteTemplate(ctx context.Context, templateID, userID string, initialData map[string]any) (*models.ExecutionContext, error) {
	template, ok := templates.ByID(templateID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, templateID)
	}

	workflow := template.Workflow.Clone()
	workflow.ID = "temp_" + uuid.New().String()
	workflow.IsActive = true

	ectx, execErr := s.executor.Execute(ctx, workflow, userID, initialData)

	if ectx != nil {
		if err := s.executions.SaveExecution(ctx, ectx); err != nil {
			s.logger.WarnContext(ctx, "Failed to persist execution",
				"execution_id", ectx.ExecutionID, "error", err)
		}
	}

	return ectx, execErr
}

// CancelExecution cancels an in-flight execution.
func (s *Workflow) CancelExecution(executionID string) bool {
	return s.executor.CancelExecution(executionID)
}

// Executions returns every recorded execution.
func (s *Workflow) Executions(ctx context.Context) ([]*models.ExecutionContext, error) {
	return s.executions.Executions(ctx)
}

// Execution returns one recorded execution by id.
func (s *Workflow) Execution(ctx context.Context, executionID string) (*models.ExecutionContext, error) {
	return s.executions.ExecutionByID(ctx, executionID)
}

// ExecutionHistory returns the recorded executions of a workflow.
func (s *Workflow) ExecutionHistory(ctx context.Context, workflowID string) ([]*models.ExecutionContext, error) {
	return s.executions.ExecutionsByWorkflow(ctx, workflowID)
}

// CloneWorkflow copies a stored workflow into a new, inactive workflow.
func (s *Workflow) CloneWorkflow(ctx context.Context, workflowID, newName string) (*models.Workflow, error) {
	original, err := s.workflows.WorkflowByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	cloned := original.Clone()
	cloned.ID = uuid.New().String()
	cloned.IsActive = false

	now := time.Now().UTC()
	cloned.CreatedAt = now
	cloned.UpdatedAt = now

	if newName != "" {
		cloned.Name = newName
	} else {
		cloned.Name = original.Name + " (Copy)"
	}

	if err := s.workflows.SaveWorkflow(ctx, cloned); err != nil {
		return nil, fmt.Errorf("failed to save cloned workflow: %w", err)
	}

	return cloned, nil
}

// ExportWorkflow serializes a stored workflow to indented JSON.
func (s *Workflow) ExportWorkflow(ctx context.Context, workflowID string) (string, error) {
	workflow, err := s.workflows.WorkflowByID(ctx, workflowID)
	if err != nil {
		return "", err
	}

	payload, err := json.MarshalIndent(workflow, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to serialize workflow: %w", err)
	}

	return string(payload), nil
}

// ImportWorkflow parses exported JSON into a fresh, inactive workflow owned
// by the importing user. The payload passes a JSON schema gate and full
// structural validation before it is stored.
func (s *Workflow) ImportWorkflow(ctx context.Context, workflowJSON, userID string) (*models.Workflow, error) {
	schemaResult, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(workflowImportSchema),
		gojsonschema.NewStringLoader(workflowJSON),
	)
	if err != nil {
		return nil, NewValidationError("ImportWorkflow", "IMPORT_MALFORMED", err.Error(), ErrInvalidImport)
	}

	if !schemaResult.Valid() {
		messages := make([]string, 0, len(schemaResult.Errors()))
		for _, desc := range schemaResult.Errors() {
			messages = append(messages, desc.String())
		}

		return nil, NewValidationError("ImportWorkflow", "IMPORT_SCHEMA",
			strings.Join(messages, "; "), ErrInvalidImport)
	}

	var workflow models.Workflow
	if err := json.Unmarshal([]byte(workflowJSON), &workflow); err != nil {
		return nil, NewValidationError("ImportWorkflow", "IMPORT_MALFORMED", err.Error(), ErrInvalidImport)
	}

	workflow.ID = uuid.New().String()
	workflow.CreatedBy = userID
	workflow.IsActive = false

	now := time.Now().UTC()
	workflow.CreatedAt = now
	workflow.UpdatedAt = now

	if result := validation.Validate(&workflow); !result.IsValid {
		return nil, NewValidationError("ImportWorkflow", "WORKFLOW_INVALID",
			strings.Join(result.Errors, "; "), ErrInvalidWorkflow)
	}

	if err := s.workflows.SaveWorkflow(ctx, &workflow); err != nil {
		return nil, fmt.Errorf("failed to save imported workflow: %w", err)
	}

	return &workflow, nil
}

// ValidateWorkflow runs structural validation without storing anything.
func (s *Workflow) ValidateWorkflow(workflow *models.Workflow) validation.Result {
	return validation.Validate(workflow)
}

// AnalyzeWorkflow summarizes a workflow's shape, estimated run time and
// complexity.
func (s *Workflow) AnalyzeWorkflow(workflow *models.Workflow) WorkflowAnalysis {
	nodeCount := len(workflow.Nodes)
	connectionCount := len(workflow.Connections)

	hasIncoming := make(map[string]bool, connectionCount)
	hasOutgoing := make(map[string]bool, connectionCount)

	for _, conn := range workflow.Connections {
		hasIncoming[conn.TargetNodeID] = true
		hasOutgoing[conn.SourceNodeID] = true
	}

	entryPoints := 0
	exitPoints := 0

	for _, node := range workflow.Nodes {
		if !hasIncoming[node.ID] {
			entryPoints++
		}

		if !hasOutgoing[node.ID] {
			exitPoints++
		}
	}

	complexity := "simple"

	switch {
	case nodeCount > 10 || connectionCount > 15:
		complexity = "complex"
	case nodeCount > 5 || connectionCount > 8:
		complexity = "moderate"
	}

	return WorkflowAnalysis{
		NodeCount:              nodeCount,
		ConnectionCount:        connectionCount,
		EntryPoints:            entryPoints,
		ExitPoints:             exitPoints,
		EstimatedExecutionTime: nodeCount * 30,
		Complexity:             complexity,
	}
}

// Stats aggregates counters across all workflows and recorded executions.
func (s *Workflow) Stats(ctx context.Context) (*WorkflowStats, error) {
	workflows, err := s.workflows.Workflows(ctx)
	if err != nil {
		return nil, err
	}

	executions, err := s.executions.Executions(ctx)
	if err != nil {
		return nil, err
	}

	stats := &WorkflowStats{
		TotalWorkflows:  len(workflows),
		TotalExecutions: len(executions),
	}

	for _, w := range workflows {
		if w.IsActive {
			stats.ActiveWorkflows++
		}
	}

	var completedTotal time.Duration

	for _, e := range executions {
		switch e.CurrentStatus() {
		case models.ExecutionStatusCompleted:
			stats.SuccessfulExecutions++
			completedTotal += e.Duration()
		case models.ExecutionStatusFailed:
			stats.FailedExecutions++
		}
	}

	if stats.SuccessfulExecutions > 0 {
		stats.AverageExecutionTime = completedTotal / time.Duration(stats.SuccessfulExecutions)
	}

	return stats, nil
}

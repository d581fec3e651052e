// Package web provides HTTP request and response types for the workflow API.
package web

import "github.com/caflow/caflow/pkg/models"

// CreateWorkflowRequest represents the request body for creating a workflow.
type CreateWorkflowRequest struct {
	Name        string                `json:"name"        validate:"required,min=3"`
	Description string                `json:"description"`
	Nodes       []models.WorkflowNode `json:"nodes"       validate:"required,min=1,dive"`
	Connections []models.Connection   `json:"connections"`
	CreatedBy   string                `json:"createdBy"   validate:"required"`
	IsActive    bool                  `json:"isActive"`
	Tags        []string              `json:"tags"`
}

// ToWorkflow converts the request into a workflow model.
func (r *CreateWorkflowRequest) ToWorkflow() *models.Workflow {
	return &models.Workflow{
		Name:        r.Name,
		Description: r.Description,
		Nodes:       r.Nodes,
		Connections: r.Connections,
		CreatedBy:   r.CreatedBy,
		IsActive:    r.IsActive,
		Tags:        r.Tags,
	}
}

// UpdateWorkflowRequest represents the request body for replacing a workflow.
type UpdateWorkflowRequest struct {
	Name        string                `json:"name"        validate:"required,min=3"`
	Description string                `json:"description"`
	Nodes       []models.WorkflowNode `json:"nodes"       validate:"required,min=1,dive"`
	Connections []models.Connection   `json:"connections"`
	IsActive    bool                  `json:"isActive"`
	Tags        []string              `json:"tags"`
}

// ExecuteRequest carries the initial data seeding a run.
type ExecuteRequest struct {
	UserID      string         `json:"userId"`
	InitialData map[string]any `json:"initialData"`
}

// InstantiateTemplateRequest customizes a template instantiation.
type InstantiateTemplateRequest struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	CreatedBy   string `json:"createdBy,omitempty"`
}

// CloneWorkflowRequest names the clone of a workflow.
type CloneWorkflowRequest struct {
	Name string `json:"name,omitempty"`
}

// ImportWorkflowRequest carries an exported workflow document.
type ImportWorkflowRequest struct {
	Workflow string `json:"workflow" validate:"required"`
	UserID   string `json:"userId"   validate:"required"`
}

// NodeTypeResponse describes one catalog node type for palette rendering.
type NodeTypeResponse struct {
	Type     models.NodeType     `json:"type"`
	Category models.NodeCategory `json:"category"`
	Data     models.NodeData     `json:"data"`
}

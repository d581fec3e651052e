// Package web provides HTTP handlers and REST API endpoints for workflow
// management.
package web

import (
	"encoding/json"
	"net/http"

	"github.com/caflow/caflow/pkg/models"
	"github.com/caflow/caflow/pkg/registry"
	"github.com/caflow/caflow/pkg/services"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

type APIHandlers struct {
	workflowService *services.Workflow
	validator       *validator.Validate
	registry        *registry.Registry
}

func NewAPIHandlers(
	workflowService *services.Workflow,
	validate *validator.Validate,
	reg *registry.Registry,
) *APIHandlers {
	return &APIHandlers{
		workflowService: workflowService,
		validator:       validate,
		registry:        reg,
	}
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	repositoryCheck, repOk := h.workflowService.HealthCheck(c.Context())

	status := "unhealthy"
	httpStatus := http.StatusInternalServerError

	if repOk {
		status = "healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status": status,
		"checkers": fiber.Map{
			"persistence": repositoryCheck,
		},
	})
}

func (h *APIHandlers) GetWorkflows(c fiber.Ctx) error {
	if query := c.Query("q"); query != "" {
		workflows, err := h.workflowService.SearchWorkflows(c.Context(), query)
		if err != nil {
			return handleServiceError(c, err)
		}

		return c.JSON(fiber.Map{"workflows": workflows})
	}

	workflows, err := h.workflowService.Workflows(c.Context())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{"workflows": workflows})
}

func (h *APIHandlers) GetWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	workflow, err := h.workflowService.Workflow(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(workflow)
}

func (h *APIHandlers) CreateWorkflow(c fiber.Ctx) error {
	var req CreateWorkflowRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return badRequest(c, "Invalid request body: "+err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return badRequest(c, "Validation failed: "+err.Error())
	}

	workflow, err := h.workflowService.CreateWorkflow(c.Context(), req.ToWorkflow())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(workflow)
}

func (h *APIHandlers) UpdateWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	var req UpdateWorkflowRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return badRequest(c, "Invalid request body: "+err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return badRequest(c, "Validation failed: "+err.Error())
	}

	existing, err := h.workflowService.Workflow(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	existing.Name = req.Name
	existing.Description = req.Description
	existing.Nodes = req.Nodes
	existing.Connections = req.Connections
	existing.IsActive = req.IsActive
	existing.Tags = req.Tags

	updated, err := h.workflowService.UpdateWorkflow(c.Context(), existing)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(updated)
}

func (h *APIHandlers) DeleteWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	if err := h.workflowService.DeleteWorkflow(c.Context(), id); err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) ExecuteWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	var req ExecuteRequest
	if len(c.Body()) > 0 {
		if err := json.Unmarshal(c.Body(), &req); err != nil {
			return badRequest(c, "Invalid request body: "+err.Error())
		}
	}

	ectx, err := h.workflowService.ExecuteWorkflow(c.Context(), id, req.UserID, req.InitialData)
	if err != nil && ectx == nil {
		return handleServiceError(c, err)
	}

	// Failed runs still return the execution context; the status and logs
	// carry the failure detail.
	return c.JSON(ectx)
}

func (h *APIHandlers) ValidateWorkflow(c fiber.Ctx) error {
	var workflow models.Workflow
	if err := json.Unmarshal(c.Body(), &workflow); err != nil {
		return badRequest(c, "Invalid request body: "+err.Error())
	}

	return c.JSON(h.workflowService.ValidateWorkflow(&workflow))
}

func (h *APIHandlers) AnalyzeWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	workflow, err := h.workflowService.Workflow(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(h.workflowService.AnalyzeWorkflow(workflow))
}

func (h *APIHandlers) CloneWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	var req CloneWorkflowRequest
	if len(c.Body()) > 0 {
		if err := json.Unmarshal(c.Body(), &req); err != nil {
			return badRequest(c, "Invalid request body: "+err.Error())
		}
	}

	cloned, err := h.workflowService.CloneWorkflow(c.Context(), id, req.Name)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(cloned)
}

func (h *APIHandlers) ExportWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	payload, err := h.workflowService.ExportWorkflow(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	return c.SendString(payload)
}

func (h *APIHandlers) ImportWorkflow(c fiber.Ctx) error {
	var req ImportWorkflowRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return badRequest(c, "Invalid request body: "+err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return badRequest(c, "Validation failed: "+err.Error())
	}

	workflow, err := h.workflowService.ImportWorkflow(c.Context(), req.Workflow, req.UserID)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(workflow)
}

func (h *APIHandlers) GetExecutions(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	executions, err := h.workflowService.ExecutionHistory(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{"executions": executions})
}

func (h *APIHandlers) GetAllExecutions(c fiber.Ctx) error {
	executions, err := h.workflowService.Executions(c.Context())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{"executions": executions})
}

func (h *APIHandlers) GetExecution(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Execution ID is required")
	}

	ectx, err := h.workflowService.Execution(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(ectx)
}

func (h *APIHandlers) CancelExecution(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Execution ID is required")
	}

	if !h.workflowService.CancelExecution(id) {
		return notFound(c, "No cancellable execution with that ID")
	}

	return c.JSON(fiber.Map{"cancelled": true})
}

func (h *APIHandlers) GetTemplates(c fiber.Ctx) error {
	if category := c.Query("category"); category != "" {
		matched := h.workflowService.TemplatesByCategory(models.TemplateCategory(category))

		return c.JSON(fiber.Map{"templates": matched})
	}

	if complexity := c.Query("complexity"); complexity != "" {
		matched := h.workflowService.TemplatesByComplexity(models.TemplateComplexity(complexity))

		return c.JSON(fiber.Map{"templates": matched})
	}

	if query := c.Query("q"); query != "" {
		return c.JSON(fiber.Map{"templates": h.workflowService.SearchTemplates(query)})
	}

	return c.JSON(fiber.Map{"templates": h.workflowService.Templates()})
}

func (h *APIHandlers) InstantiateTemplate(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Template ID is required")
	}

	var req InstantiateTemplateRequest
	if len(c.Body()) > 0 {
		if err := json.Unmarshal(c.Body(), &req); err != nil {
			return badRequest(c, "Invalid request body: "+err.Error())
		}
	}

	workflow, err := h.workflowService.CreateWorkflowFromTemplate(c.Context(), id, services.TemplateCustomizations{
		Name:        req.Name,
		Description: req.Description,
		CreatedBy:   req.CreatedBy,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(workflow)
}

func (h *APIHandlers) ExecuteTemplate(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Template ID is required")
	}

	var req ExecuteRequest
	if len(c.Body()) > 0 {
		if err := json.Unmarshal(c.Body(), &req); err != nil {
			return badRequest(c, "Invalid request body: "+err.Error())
		}
	}

	ectx, err := h.workflowService.ExecuteTemplate(c.Context(), id, req.UserID, req.InitialData)
	if err != nil && ectx == nil {
		return handleServiceError(c, err)
	}

	return c.JSON(ectx)
}

func (h *APIHandlers) GetNodeTypes(c fiber.Ctx) error {
	types := registry.Types()
	response := make([]NodeTypeResponse, 0, len(types))

	for _, t := range types {
		data, err := registry.Definition(t)
		if err != nil {
			continue
		}

		response = append(response, NodeTypeResponse{
			Type:     t,
			Category: registry.Category(t),
			Data:     data,
		})
	}

	return c.JSON(fiber.Map{"nodeTypes": response})
}

func (h *APIHandlers) GetNodeType(c fiber.Ctx) error {
	nodeType := models.NodeType(c.Params("type"))

	data, err := registry.Definition(nodeType)
	if err != nil {
		return notFound(c, "Unknown node type")
	}

	return c.JSON(NodeTypeResponse{
		Type:     nodeType,
		Category: registry.Category(nodeType),
		Data:     data,
	})
}

func (h *APIHandlers) GetStats(c fiber.Ctx) error {
	stats, err := h.workflowService.Stats(c.Context())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(stats)
}

// Package main provides the caflow API server implementation.
package main

import (
	"log/slog"
	"strconv"

	"github.com/caflow/caflow/pkg/engine"
	"github.com/caflow/caflow/pkg/eventbus"
	"github.com/caflow/caflow/pkg/persistence"
	"github.com/caflow/caflow/pkg/registry"
	"github.com/caflow/caflow/pkg/services"
	"github.com/caflow/caflow/pkg/web"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"go.opentelemetry.io/otel/trace"
)

type API struct {
	logger     *slog.Logger
	workflows  persistence.WorkflowRepository
	executions persistence.ExecutionRepository
	registry   *registry.Registry
	eventBus   eventbus.EventBus
	tracer     trace.Tracer
	validate   *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	workflows persistence.WorkflowRepository,
	executions persistence.ExecutionRepository,
	reg *registry.Registry,
	eventBus eventbus.EventBus,
	tracer trace.Tracer,
) *API {
	return &API{
		logger:     logger,
		workflows:  workflows,
		executions: executions,
		registry:   reg,
		eventBus:   eventBus,
		tracer:     tracer,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	eng := engine.NewEngine(a.logger, a.registry, a.eventBus, a.tracer)
	workflowService := services.NewWorkflow(a.logger, a.workflows, a.executions, eng)

	handlers := web.NewAPIHandlers(workflowService, a.validate, a.registry)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("caflow API")
	})

	w := app.Group("/workflows")
	w.Get("/", handlers.GetWorkflows)
	w.Post("/", handlers.CreateWorkflow)
	w.Post("/validate", handlers.ValidateWorkflow)
	w.Post("/import", handlers.ImportWorkflow)
	w.Get("/:id", handlers.GetWorkflow)
	w.Patch("/:id", handlers.UpdateWorkflow)
	w.Delete("/:id", handlers.DeleteWorkflow)
	w.Post("/:id/execute", handlers.ExecuteWorkflow)
	w.Post("/:id/clone", handlers.CloneWorkflow)
	w.Get("/:id/export", handlers.ExportWorkflow)
	w.Get("/:id/executions", handlers.GetExecutions)
	w.Get("/:id/analysis", handlers.AnalyzeWorkflow)

	t := app.Group("/templates")
	t.Get("/", handlers.GetTemplates)
	t.Post("/:id/instantiate", handlers.InstantiateTemplate)
	t.Post("/:id/execute", handlers.ExecuteTemplate)

	e := app.Group("/executions")
	e.Get("/", handlers.GetAllExecutions)
	e.Get("/:id", handlers.GetExecution)
	e.Post("/:id/cancel", handlers.CancelExecution)

	n := app.Group("/node-types")
	n.Get("/", handlers.GetNodeTypes)
	n.Get("/:type", handlers.GetNodeType)

	app.Get("/stats", handlers.GetStats)
	app.Get("/health", handlers.HealthCheck)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	return app.Listen(":" + strconv.Itoa(port))
}

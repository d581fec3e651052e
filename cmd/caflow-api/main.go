package main

import (
	"context"
	"os"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/caflow/caflow/pkg/channels/gochannel"
	"github.com/caflow/caflow/pkg/channels/kafka"
	"github.com/caflow/caflow/pkg/collaborators"
	"github.com/caflow/caflow/pkg/eventbus"
	"github.com/caflow/caflow/pkg/log"
	"github.com/caflow/caflow/pkg/otelhelper"
	"github.com/caflow/caflow/pkg/persistence"
	"github.com/caflow/caflow/pkg/persistence/memory"
	redisrepo "github.com/caflow/caflow/pkg/persistence/redis"
	"github.com/caflow/caflow/pkg/registry"
	goredis "github.com/redis/go-redis/v9"
	cli "github.com/urfave/cli/v3"
	"go.opentelemetry.io/otel/trace"
)

const defaultPort = 9091

func main() {
	logger := log.WithModule("api")

	cmd := &cli.Command{
		Name:                  "caflow-api",
		Usage:                 "Create, manage and execute CA practice workflows",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus backend (gochannel, kafka)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS"),
			},
			&cli.StringFlag{
				Name:    "redis-url",
				Usage:   "Redis connection URL for execution history (in-memory when empty)",
				Sources: cli.EnvVars("REDIS_URL"),
			},
			&cli.BoolFlag{
				Name:    "tracing",
				Usage:   "Enable OpenTelemetry tracing via OTLP",
				Sources: cli.EnvVars("TRACING_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			logger.InfoContext(ctx, "Initializing caflow API")

			reg := registry.NewRegistry(logger)
			registry.RegisterDefaults(reg, collaborators.NewSimulated(logger))

			eventBus, err := newEventBus(command.String("event-bus"))
			if err != nil {
				return err
			}

			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			store := memory.NewPersistence()

			var executions persistence.ExecutionRepository = store

			if redisURL := command.String("redis-url"); redisURL != "" {
				opts, err := goredis.ParseURL(redisURL)
				if err != nil {
					return err
				}

				executions = redisrepo.NewExecutionRepository(goredis.NewClient(opts), 30*24*time.Hour)
			}

			var tracer trace.Tracer

			if command.Bool("tracing") {
				tracer, err = otelhelper.NewTracer(ctx, "caflow-api")
				if err != nil {
					return err
				}
			}

			api := NewAPI(logger, store, executions, reg, eventBus, tracer)

			if err := api.Start(command.Int("port")); err != nil {
				logger.ErrorContext(ctx, "Failed to start API server", "error", err)

				return err
			}

			return nil
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		logger.Error("caflow API terminated", "error", err)
		os.Exit(1)
	}
}

func newEventBus(backend string) (eventbus.EventBus, error) {
	watermillLogger := watermill.NewStdLogger(false, false)

	if backend == "kafka" {
		pub, sub, err := kafka.CreateChannel(watermillLogger, "caflow-api")
		if err != nil {
			return nil, err
		}

		return eventbus.NewWatermillEventBus(pub, sub), nil
	}

	pub, sub, err := gochannel.CreateChannel(watermillLogger)
	if err != nil {
		return nil, err
	}

	return eventbus.NewWatermillEventBus(pub, sub), nil
}

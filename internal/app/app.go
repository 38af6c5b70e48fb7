// Package app assembles the ticket desk from configuration.
package app

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/deskline/ticket-desk/internal/api/http"
	"github.com/deskline/ticket-desk/internal/api/http/handlers"
	"github.com/deskline/ticket-desk/internal/clock"
	"github.com/deskline/ticket-desk/internal/config"
	"github.com/deskline/ticket-desk/internal/events"
	"github.com/deskline/ticket-desk/internal/identity"
	"github.com/deskline/ticket-desk/internal/observability"
	"github.com/deskline/ticket-desk/internal/persistence"
	"github.com/deskline/ticket-desk/internal/repository"
	"github.com/deskline/ticket-desk/internal/seed"
	"github.com/deskline/ticket-desk/internal/service"
	"github.com/deskline/ticket-desk/internal/worker"
)

const eventQueueSize = 256

// App holds the wired services and the HTTP server.
type App struct {
	Fiber     *fiber.App
	Tickets   *service.TicketService
	Search    *service.SearchService
	Customers *service.CustomerService
	Directory *service.DirectoryService
	Metrics   *observability.Metrics

	logger   *zap.Logger
	postgres *persistence.Postgres
	redis    *persistence.Redis
	events   *worker.EventWorker
}

// New connects the optional backends, builds the services and registers
// the HTTP routes. Without POSTGRES_DSN the directory lives in memory;
// without REDIS_ADDR events are only logged.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &App{logger: logger, Metrics: observability.NewMetrics()}

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	a.postgres = pg

	var (
		customers  repository.CustomerRepository
		agents     repository.AgentRepository
		categories repository.CategoryRepository
	)
	if pool := pg.PoolHandle(); pool != nil {
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pool, cfg.Postgres.MigrationsDir, logger); err != nil {
				a.Close()
				return nil, fmt.Errorf("run migrations: %w", err)
			}
		}
		customers = repository.NewCustomerRepository(pool)
		agents = repository.NewAgentRepository(pool)
		categories = repository.NewCategoryRepository(pool)
	} else {
		customers = repository.NewMemoryCustomerRepository()
		agents = repository.NewMemoryAgentRepository()
		categories = repository.NewMemoryCategoryRepository()
	}

	dispatcher := events.NewInMemoryDispatcher()
	worker.StartNotificationWorker(service.NewNotificationService(dispatcher, logger))

	a.redis = persistence.NewRedis(ctx, cfg.Redis, logger)
	if a.redis != nil && cfg.Redis.PublishEvents {
		forwarder := events.NewRedisForwarder(a.redis.Client, cfg.Redis.EventsChannel)
		a.events = worker.NewEventWorker(forwarder.Forward, eventQueueSize, logger)
		a.events.Start(ctx)
		dispatcher.SubscribeAll(a.events.Enqueue)
		logger.Info("forwarding ticket events", zap.String("channel", forwarder.Channel()))
	}

	tickets := repository.NewTicketRepository()
	a.Tickets = service.NewTicketService(service.TicketDependencies{
		TicketRepo: tickets,
		AgentRepo:  agents,
		Numbers:    identity.NewNumberGenerator(cfg.Tickets.NumberPrefix),
		Clock:      clock.NewSystem(),
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	a.Search = service.NewSearchService(tickets)
	a.Customers = service.NewCustomerService(customers, logger)
	a.Directory = service.NewDirectoryService(agents, categories)

	if cfg.Tickets.SeedSampleData {
		if _, err := seed.Load(ctx, seed.Directory{
			Customers:  a.Customers,
			Agents:     agents,
			Categories: categories,
		}, logger); err != nil {
			a.Close()
			return nil, fmt.Errorf("seed sample data: %w", err)
		}
	}

	a.Fiber = fiber.New(fiber.Config{AppName: cfg.App.Name, DisableStartupMessage: true})
	httptransport.RegisterMiddlewares(a.Fiber, logger, a.Metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(a.Fiber, httptransport.RouteConfig{
		Health:    handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, a.readinessChecks(), a.Metrics),
		Tickets:   handlers.NewTicketsHandler(a.Tickets, a.Search),
		Customers: handlers.NewCustomersHandler(a.Customers),
		Directory: handlers.NewDirectoryHandler(a.Directory),
	})
	return a, nil
}

func (a *App) readinessChecks() map[string]handlers.Pinger {
	checks := map[string]handlers.Pinger{}
	if a.postgres.PoolHandle() != nil {
		checks["postgres"] = a.postgres
	}
	if a.redis != nil {
		checks["redis"] = a.redis
	}
	return checks
}

// Close flushes queued events and releases backend connections.
func (a *App) Close() {
	if a.events != nil {
		a.events.Stop()
	}
	a.redis.Close()
	a.postgres.Close()
}

package app

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/Kira-Projects/teleton/internal/backend"
	"github.com/Kira-Projects/teleton/internal/common"
	"github.com/Kira-Projects/teleton/internal/handlers"
	"github.com/Kira-Projects/teleton/internal/httpclient"
	"github.com/Kira-Projects/teleton/internal/interfaces"
	"github.com/Kira-Projects/teleton/internal/jobs/monitor"
	"github.com/Kira-Projects/teleton/internal/services/admin"
	"github.com/Kira-Projects/teleton/internal/services/chat"
	"github.com/Kira-Projects/teleton/internal/services/events"
	"github.com/Kira-Projects/teleton/internal/services/scheduler"
	"github.com/Kira-Projects/teleton/internal/services/status"
	"github.com/Kira-Projects/teleton/internal/storage/badger"
)

// RefreshQueriesJob is the scheduler job that reloads unanswered queries
const RefreshQueriesJob = "refresh_unanswered_queries"

// App holds all application components and dependencies
type App struct {
	Config         *common.Config
	Logger         arbor.ILogger
	ctx            context.Context
	cancelCtx      context.CancelFunc
	StorageManager interfaces.StorageManager

	// Event-driven services
	EventService     interfaces.EventService
	SchedulerService interfaces.SchedulerService

	// Backend-facing services
	BackendClient *backend.Client
	StatusService *status.Service
	AdminService  *admin.Service
	ChatService   *chat.Service

	// HTTP handlers
	APIHandler       *handlers.APIHandler
	StatusHandler    *handlers.StatusHandler
	AdminHandler     *handlers.AdminHandler
	ChatHandler      *handlers.ChatHandler
	SchedulerHandler *handlers.SchedulerHandler
	WSHandler        *handlers.WebSocketHandler
	PageHandler      *handlers.PageHandler
}

// New wires every component. Background work begins with Start.
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}
	app.ctx, app.cancelCtx = context.WithCancel(context.Background())

	if err := app.initDatabase(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	app.EventService = events.NewService(app.Logger)

	if err := app.initServices(); err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	if err := app.initHandlers(); err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to initialize handlers: %w", err)
	}

	logger.Info().
		Bool("monitor_enabled", cfg.Monitor.Enabled).
		Str("queries_refresh", cfg.Scheduler.QueriesRefresh).
		Msg("Application initialization complete")

	return app, nil
}

// initDatabase initializes the storage layer (Badger)
func (a *App) initDatabase() error {
	storageManager, err := badger.NewManager(a.Logger, &a.Config.Storage.Badger)
	if err != nil {
		return fmt.Errorf("failed to create storage manager: %w", err)
	}

	a.StorageManager = storageManager
	a.Logger.Debug().
		Str("storage", "badger").
		Str("path", a.Config.Storage.Badger.Path).
		Msg("Storage layer initialized")

	return nil
}

// initServices initializes all business services in dependency order
func (a *App) initServices() error {
	httpClient := httpclient.NewDefaultHTTPClient(a.Config.BackendTimeout())

	clientOpts := []backend.ClientOption{
		backend.WithHTTPClient(httpClient),
		backend.WithLogger(a.Logger),
	}
	if a.Config.Backend.RateLimit > 0 {
		clientOpts = append(clientOpts, backend.WithRateLimit(a.Config.Backend.RateLimit))
	}
	a.BackendClient = backend.NewClient(a.Config.Backend.RESTAPI, clientOpts...)

	a.StatusService = status.NewService(
		monitor.NewPoller(httpClient, a.Logger),
		a.EventService,
		a.StorageManager.GenerationStorage(),
		status.Options{
			Endpoint:         a.Config.StatusEndpoint(),
			Interval:         a.Config.MonitorInterval(),
			FailureThreshold: a.Config.Monitor.FailureThreshold,
		},
		a.Logger,
	)

	a.AdminService = admin.NewService(a.BackendClient, a.EventService, a.Logger)
	if err := a.AdminService.SubscribeToGenerationEvents(); err != nil {
		return err
	}

	a.ChatService = chat.NewService(
		a.BackendClient,
		a.Config.ReplyPollInterval(),
		a.Config.ReplyTimeout(),
		a.Logger,
	)

	a.SchedulerService = scheduler.NewService(a.Logger)
	if a.Config.Scheduler.QueriesRefresh != "" {
		err := a.SchedulerService.RegisterJob(
			RefreshQueriesJob,
			a.Config.Scheduler.QueriesRefresh,
			"Reload unanswered chat queries from the backend",
			func(ctx context.Context) error {
				_, err := a.AdminService.RefreshUnansweredQueries(ctx)
				return err
			},
		)
		if err != nil {
			return fmt.Errorf("failed to register %s job: %w", RefreshQueriesJob, err)
		}
	}

	return nil
}

// initHandlers initializes all HTTP handlers
func (a *App) initHandlers() error {
	a.APIHandler = handlers.NewAPIHandler(a.Logger)
	a.StatusHandler = handlers.NewStatusHandler(a.StatusService, a.Logger)
	a.AdminHandler = handlers.NewAdminHandler(a.AdminService, a.Logger)
	a.ChatHandler = handlers.NewChatHandler(a.ChatService, a.ctx, a.Logger)
	a.SchedulerHandler = handlers.NewSchedulerHandler(a.SchedulerService, a.Logger)

	a.WSHandler = handlers.NewWebSocketHandler(a.EventService, a.StatusService, a.Logger, &a.Config.WebSocket)
	if err := a.WSHandler.SubscribeToEvents(); err != nil {
		return fmt.Errorf("failed to subscribe WebSocket handler to events: %w", err)
	}
	a.Logger.Debug().
		Int("allowed_events", len(a.Config.WebSocket.AllowedEvents)).
		Int("throttle_intervals", len(a.Config.WebSocket.ThrottleIntervals)).
		Msg("WebSocket handler subscribed to events")

	a.PageHandler = handlers.NewPageHandler(a.StatusService, a.AdminService, a.Config.Backend.MailsAPIURL, a.Logger)

	return nil
}

// Start begins status monitoring and scheduled jobs
func (a *App) Start() error {
	if a.Config.Monitor.Enabled {
		if err := a.StatusService.Start(a.ctx); err != nil {
			return err
		}
	} else {
		a.Logger.Info().Msg("Knowledge-base status monitoring disabled")
	}

	if err := a.SchedulerService.Start(a.ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	return nil
}

// Close stops background work and releases storage
func (a *App) Close() error {
	if a.cancelCtx != nil {
		a.Logger.Info().Msg("Cancelling background goroutines")
		a.cancelCtx()
	}

	if a.StatusService != nil {
		a.StatusService.Stop()
		a.Logger.Info().Msg("Status monitor stopped")
	}

	if a.SchedulerService != nil {
		if err := a.SchedulerService.Stop(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to stop scheduler service")
		}
	}

	if a.ChatService != nil {
		a.ChatService.Close()
	}

	if a.WSHandler != nil {
		a.WSHandler.Close()
	}

	if a.EventService != nil {
		if err := a.EventService.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close event service")
		}
	}

	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
		a.Logger.Info().Msg("Storage closed")
	}

	return nil
}

package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vadim/chat-pulse/internal/config"
	httpcontroller "github.com/vadim/chat-pulse/internal/controller/http"
	"github.com/vadim/chat-pulse/internal/database"
	"github.com/vadim/chat-pulse/internal/domain/chat/dao"
	"github.com/vadim/chat-pulse/internal/domain/chat/entity"
	"github.com/vadim/chat-pulse/internal/domain/chat/policy"
	"github.com/vadim/chat-pulse/internal/domain/chat/render"
	"github.com/vadim/chat-pulse/internal/domain/chat/scheduler"
	"github.com/vadim/chat-pulse/internal/domain/chat/service"
	"github.com/vadim/chat-pulse/internal/httpx/upstream/telegram"
	"github.com/vadim/chat-pulse/internal/logging"
	"github.com/vadim/chat-pulse/internal/storage"
)

// App is the main application container
type App struct {
	cfg        config.Config
	httpServer *http.Server
	router     *chi.Mux
	logger     *slog.Logger
	logCloser  func() error

	pg *pgxpool.Pool

	chatService *service.Service
	chatPolicy  *policy.Policy

	// Scheduler for background history refresh
	scheduler *scheduler.Scheduler
}

// NewApp creates and initializes the application
func NewApp(ctx context.Context, cfg config.Config) (*App, error) {
	logger, logCloser, err := logging.New(logging.Config{
		Dir:      cfg.Logging.Dir,
		MaxFiles: cfg.Logging.MaxFiles,
		Level:    cfg.Logging.Level,
	})
	if err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}

	// Initialize router with middleware
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.Timeout(30 * time.Second))

	app := &App{
		cfg:       cfg,
		router:    r,
		logger:    logger,
		logCloser: logCloser,
	}

	// Initialize infrastructure
	if err := app.initInfrastructure(ctx); err != nil {
		return nil, fmt.Errorf("initializing infrastructure: %w", err)
	}

	// Initialize domain layers
	if err := app.initDomains(ctx); err != nil {
		return nil, fmt.Errorf("initializing domains: %w", err)
	}

	// Register routes
	app.registerRoutes()

	// Initialize HTTP server
	app.httpServer = &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      app.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Initialize scheduler
	if cfg.Scheduler.Enabled {
		app.scheduler = scheduler.New(app.chatService, scheduler.Config{
			Interval:   cfg.Scheduler.Interval,
			SyncAge:    cfg.Scheduler.SyncAge,
			BatchSize:  cfg.Scheduler.BatchSize,
			MaxRetries: cfg.Scheduler.MaxRetries,
		}, logger)
	}

	return app, nil
}

// initInfrastructure initializes infrastructure components. The Postgres
// cache is optional: without a DSN the service pulls full histories from the
// gateway on every request.
func (a *App) initInfrastructure(ctx context.Context) error {
	if a.cfg.Database.PostgresDSN == "" {
		a.logger.Warn("no database configured, running without history cache")
		return nil
	}

	pool, err := database.NewPostgresPool(ctx, a.cfg.Database)
	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}
	a.pg = pool

	return nil
}

// initDomains initializes domain layers (DAO, Service, Policy)
func (a *App) initDomains(ctx context.Context) error {
	locale, err := render.ParseLocale(a.cfg.Report.Language)
	if err != nil {
		return fmt.Errorf("parsing report language: %w", err)
	}

	tgClient := telegram.New(
		a.cfg.Telegram.BotToken,
		telegram.WithBaseURL(a.cfg.Telegram.BaseURL),
	)
	tg := &telegramAdapter{client: tgClient}

	var exports service.ExportStorage
	if a.cfg.S3.Enabled {
		s3Storage, err := storage.NewS3Storage(storage.S3Config{
			Endpoint:        a.cfg.S3.Endpoint,
			AccessKeyID:     a.cfg.S3.AccessKeyID,
			SecretAccessKey: a.cfg.S3.SecretAccessKey,
			Bucket:          a.cfg.S3.Bucket,
			Region:          a.cfg.S3.Region,
			PublicURL:       a.cfg.S3.PublicURL,
		})
		if err != nil {
			return fmt.Errorf("initializing export storage: %w", err)
		}
		exports = s3Storage
	}

	if a.pg != nil {
		msgRepo := dao.NewMessagePostgres(a.pg)
		syncRepo := dao.NewChatSyncPostgres(a.pg)
		a.chatService = service.NewWithRepo(tg, msgRepo, syncRepo, exports, a.logger)
	} else {
		a.chatService = service.New(tg, a.logger)
	}

	a.chatPolicy = policy.New(a.chatService, &messengerAdapter{client: tgClient}, policy.Config{
		OwnerID:     a.cfg.Telegram.OwnerID,
		OwnerChatID: a.cfg.Telegram.OwnerChatID,
		SendToChat:  a.cfg.Report.SendToChat,
		Locale:      locale,
	}, a.logger)

	return nil
}

// registerRoutes registers all HTTP routes
func (a *App) registerRoutes() {
	// Health check
	a.router.Get("/healthz", a.healthHandler)
	a.router.Get("/readyz", a.readyHandler)

	// Swagger UI documentation
	swaggerHandler := httpcontroller.NewSwaggerHandler("Chat-Pulse API", OpenAPISpec)
	swaggerHandler.RegisterRoutes(a.router)

	// Bot API webhook
	webhookHandler := httpcontroller.NewWebhookHandler(a.chatPolicy, a.logger)
	webhookHandler.RegisterRoutes(a.router)

	// API v1
	a.router.Route("/api/v1", func(r chi.Router) {
		chatHandler := httpcontroller.NewChatHandler(a.chatPolicy)
		chatHandler.RegisterRoutes(r)
	})
}

// healthHandler handles health check requests
func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// readyHandler handles readiness check requests
func (a *App) readyHandler(w http.ResponseWriter, r *http.Request) {
	if a.pg != nil {
		if err := a.pg.Ping(r.Context()); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"database unavailable"}`))
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}

// Run starts the application and blocks until shutdown signal
func (a *App) Run(ctx context.Context) error {
	// Start scheduler if enabled
	if a.scheduler != nil {
		a.scheduler.Start(ctx)
	}

	// Channel to receive errors from server
	errCh := make(chan error, 1)

	// Start HTTP server in goroutine
	go func() {
		a.logger.Info("starting HTTP server", "addr", a.cfg.Server.Address())
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		a.logger.Info("received shutdown signal", "signal", sig.String())
	case <-ctx.Done():
		a.logger.Info("context cancelled")
	}

	// Graceful shutdown
	return a.Shutdown(context.Background())
}

// Shutdown gracefully shuts down the application
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down...")

	// Stop scheduler
	if a.scheduler != nil {
		a.scheduler.Stop()
	}

	// Shutdown HTTP server with timeout
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down HTTP server: %w", err)
	}

	if a.pg != nil {
		a.pg.Close()
	}

	a.logger.Info("shutdown complete")

	if a.logCloser != nil {
		return a.logCloser()
	}
	return nil
}

// telegramAdapter adapts telegram.Client to service.TelegramClient
type telegramAdapter struct {
	client *telegram.Client
}

func (a *telegramAdapter) GetChatHistory(ctx context.Context, chatID string, limit int, offsetID int64) (*service.HistoryPage, error) {
	page, err := a.client.GetChatHistory(ctx, chatID, limit, offsetID)
	if err != nil {
		return nil, err
	}
	return &service.HistoryPage{
		Messages:     page.Messages,
		NextOffsetID: page.NextOffsetID,
		HasMore:      page.HasMore,
	}, nil
}

func (a *telegramAdapter) GetChat(ctx context.Context, chatID string) (*entity.User, error) {
	return a.client.GetChat(ctx, chatID)
}

// messengerAdapter adapts telegram.Client to policy.Messenger
type messengerAdapter struct {
	client *telegram.Client
}

func (a *messengerAdapter) SendMessage(ctx context.Context, chatID, text string) (*policy.SentMessage, error) {
	sent, err := a.client.SendMessage(ctx, chatID, text)
	if err != nil {
		return nil, err
	}
	return &policy.SentMessage{MessageID: sent.MessageID}, nil
}

func (a *messengerAdapter) EditMessageText(ctx context.Context, chatID string, messageID int64, text string) error {
	return a.client.EditMessageText(ctx, chatID, messageID, text)
}

func (a *messengerAdapter) DeleteMessage(ctx context.Context, chatID string, messageID int64) error {
	return a.client.DeleteMessage(ctx, chatID, messageID)
}

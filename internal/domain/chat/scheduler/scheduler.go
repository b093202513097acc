package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// ChatSyncer defines the interface for refreshing cached chat histories
type ChatSyncer interface {
	SyncHistory(ctx context.Context, chatID string) error
	GetChatsNeedingSync(ctx context.Context, olderThan time.Duration, limit int) ([]string, error)
	IncrementSyncRetryCount(ctx context.Context, chatID string, lastError string, maxRetries int) error
	ResetSyncRetryCount(ctx context.Context, chatID string) error
}

// Scheduler handles periodic background refresh of cached chat histories
type Scheduler struct {
	syncer     ChatSyncer
	interval   time.Duration
	syncAge    time.Duration // How old sync status can be before refreshing
	batchSize  int           // How many chats to sync per run
	maxRetries int
	logger     *slog.Logger
	stopCh     chan struct{}
	cancel     context.CancelFunc // Cancel function to stop in-flight operations
	wg         sync.WaitGroup
	running    bool
	mu         sync.Mutex
}

// Config holds configuration for the chat sync scheduler
type Config struct {
	Interval   time.Duration
	SyncAge    time.Duration
	BatchSize  int
	MaxRetries int
}

// New creates a new chat sync scheduler
func New(syncer ChatSyncer, cfg Config, logger *slog.Logger) *Scheduler {
	if cfg.Interval == 0 {
		cfg.Interval = 10 * time.Minute
	}
	if cfg.SyncAge == 0 {
		cfg.SyncAge = 30 * time.Minute
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 5
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}

	return &Scheduler{
		syncer:     syncer,
		interval:   cfg.Interval,
		syncAge:    cfg.SyncAge,
		batchSize:  cfg.BatchSize,
		maxRetries: cfg.MaxRetries,
		logger:     logger,
		stopCh:     make(chan struct{}),
	}
}

// Start starts the scheduler
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true

	// Create a cancellable context for in-flight operations
	ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	s.logger.Info("chat sync scheduler started", "interval", s.interval, "sync_age", s.syncAge)

	s.wg.Add(1)
	go s.run(ctx)
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	cancel := s.cancel
	s.mu.Unlock()

	// Cancel in-flight operations (HTTP requests, etc.)
	if cancel != nil {
		cancel()
	}

	close(s.stopCh)
	s.wg.Wait()
	s.logger.Info("chat sync scheduler stopped")
}

// run is the main scheduler loop
func (s *Scheduler) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Run after a short delay on start (to let the app initialize)
	select {
	case <-time.After(15 * time.Second):
		s.process(ctx)
	case <-s.stopCh:
		return
	case <-ctx.Done():
		return
	}

	for {
		select {
		case <-ticker.C:
			s.process(ctx)
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

// process refreshes the histories of chats whose cache has gone stale
func (s *Scheduler) process(ctx context.Context) {
	s.logger.Debug("checking for chats needing history sync")

	chatIDs, err := s.syncer.GetChatsNeedingSync(ctx, s.syncAge, s.batchSize)
	if err != nil {
		s.logger.Error("failed to get chats needing sync", "error", err)
		return
	}

	if len(chatIDs) == 0 {
		s.logger.Debug("no chats need history sync")
		return
	}

	s.logger.Info("syncing chat histories", "count", len(chatIDs))

	for _, chatID := range chatIDs {
		// Check if context is cancelled
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := s.syncer.SyncHistory(ctx, chatID); err != nil {
			s.logger.Error("failed to sync chat history", "chat_id", chatID, "error", err)
			if retryErr := s.syncer.IncrementSyncRetryCount(ctx, chatID, err.Error(), s.maxRetries); retryErr != nil {
				s.logger.Error("failed to record sync failure", "chat_id", chatID, "error", retryErr)
			}
			continue
		}

		if err := s.syncer.ResetSyncRetryCount(ctx, chatID); err != nil {
			s.logger.Error("failed to reset retry count", "chat_id", chatID, "error", err)
		}
		s.logger.Debug("synced chat history", "chat_id", chatID)
	}
}

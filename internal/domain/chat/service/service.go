package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/vadim/chat-pulse/internal/domain/chat/analysis"
	"github.com/vadim/chat-pulse/internal/domain/chat/dao"
	"github.com/vadim/chat-pulse/internal/domain/chat/entity"
	"github.com/vadim/chat-pulse/internal/storage"
)

// TelegramClient defines the interface for upstream chat gateway operations
type TelegramClient interface {
	GetChatHistory(ctx context.Context, chatID string, limit int, offsetID int64) (*HistoryPage, error)
	GetChat(ctx context.Context, chatID string) (*entity.User, error)
}

// HistoryPage is one retrieved page of chat history, newest first
type HistoryPage struct {
	Messages     []entity.Message
	NextOffsetID int64
	HasMore      bool
}

// MessageRepository defines the interface for the message cache
type MessageRepository interface {
	Upsert(ctx context.Context, msg *entity.Message) error
	UpsertBatch(ctx context.Context, msgs []entity.Message) error
	GetAllByChatID(ctx context.Context, chatID string) ([]entity.Message, error)
	Count(ctx context.Context, chatID string) (int64, error)
}

// ChatSyncRepository defines sync status tracking for chats
type ChatSyncRepository interface {
	GetSyncStatus(ctx context.Context, chatID string) (*dao.ChatSyncStatus, error)
	UpdateSyncStatus(ctx context.Context, status *dao.ChatSyncStatus) error
	GetChatsNeedingSync(ctx context.Context, olderThan time.Duration, limit int) ([]string, error)
	IncrementRetryCount(ctx context.Context, chatID string, lastError string, maxRetries int) error
	ResetRetryCount(ctx context.Context, chatID string) error
}

// ExportStorage defines the interface for history export archiving
type ExportStorage interface {
	UploadExport(ctx context.Context, chatID string, data []byte) (*storage.ExportOutput, error)
}

// Service handles chat analytics business logic
type Service struct {
	tg         TelegramClient
	msgRepo    MessageRepository
	syncRepo   ChatSyncRepository
	exports    ExportStorage
	logger     *slog.Logger
	syncMaxAge time.Duration
	pageSize   int
}

// New creates a chat analytics service without a cache: every analysis pulls
// the full history straight from the gateway
func New(tg TelegramClient, logger *slog.Logger) *Service {
	return &Service{
		tg:         tg,
		logger:     logger,
		syncMaxAge: 5 * time.Minute,
		pageSize:   100,
	}
}

// NewWithRepo creates a service backed by the Postgres message cache
func NewWithRepo(
	tg TelegramClient,
	msgRepo MessageRepository,
	syncRepo ChatSyncRepository,
	exports ExportStorage,
	logger *slog.Logger,
) *Service {
	return &Service{
		tg:         tg,
		msgRepo:    msgRepo,
		syncRepo:   syncRepo,
		exports:    exports,
		logger:     logger,
		syncMaxAge: 5 * time.Minute,
		pageSize:   100,
	}
}

// GetStatisticsInput represents input for computing chat statistics
type GetStatisticsInput struct {
	ChatID string
}

// GetStatistics materializes the full history batch for a chat and runs the
// analytics engine over it. A stale or missing cache is refreshed from the
// gateway first; a failed refresh falls back to cached data when any exists,
// and surfaces a retrieval error otherwise. The engine's
// entity.ErrInsufficientData passes through untouched.
func (s *Service) GetStatistics(ctx context.Context, in GetStatisticsInput) (*analysis.Result, error) {
	messages, err := s.materializeHistory(ctx, in.ChatID)
	if err != nil {
		return nil, err
	}

	return analysis.Analyze(messages)
}

// materializeHistory returns the full message batch for a chat, newest first
func (s *Service) materializeHistory(ctx context.Context, chatID string) ([]entity.Message, error) {
	// No cache configured: pull everything from the gateway, like the
	// one-shot retrieval the engine was designed around
	if s.msgRepo == nil || s.syncRepo == nil {
		return s.fetchFullHistory(ctx, chatID)
	}

	status, err := s.syncRepo.GetSyncStatus(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("getting sync status: %w", err)
	}

	needsSync := status == nil || time.Since(status.LastSyncedAt) > s.syncMaxAge
	if needsSync {
		if err := s.SyncHistory(ctx, chatID); err != nil {
			count, _ := s.msgRepo.Count(ctx, chatID)
			if count == 0 {
				return nil, fmt.Errorf("retrieving chat history: %w", err)
			}
			s.logger.Warn("history sync failed, using cached data",
				"chat_id", chatID, "error", err)
		}
	}

	messages, err := s.msgRepo.GetAllByChatID(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("loading cached history: %w", err)
	}

	return messages, nil
}

// fetchFullHistory pages through the gateway until the history is exhausted
func (s *Service) fetchFullHistory(ctx context.Context, chatID string) ([]entity.Message, error) {
	var all []entity.Message
	var offsetID int64

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		page, err := s.tg.GetChatHistory(ctx, chatID, s.pageSize, offsetID)
		if err != nil {
			return nil, fmt.Errorf("fetching history: %w", err)
		}

		all = append(all, page.Messages...)

		if !page.HasMore || page.NextOffsetID == 0 {
			break
		}
		offsetID = page.NextOffsetID
	}

	return all, nil
}

// SyncHistory pulls the chat's history from the gateway into the cache,
// saving each page incrementally and asynchronously
func (s *Service) SyncHistory(ctx context.Context, chatID string) error {
	if s.msgRepo == nil || s.syncRepo == nil {
		return fmt.Errorf("repository required for sync")
	}

	var wg sync.WaitGroup
	errCh := make(chan error, 1)
	var offsetID, newestID int64

	for {
		// Check context cancellation
		select {
		case <-ctx.Done():
			wg.Wait()
			return ctx.Err()
		default:
		}

		// Check for async save errors
		select {
		case err := <-errCh:
			wg.Wait()
			return fmt.Errorf("async save failed: %w", err)
		default:
		}

		page, err := s.tg.GetChatHistory(ctx, chatID, s.pageSize, offsetID)
		if err != nil {
			wg.Wait()
			return fmt.Errorf("fetching history: %w", err)
		}

		if len(page.Messages) > 0 {
			if newestID == 0 {
				newestID = page.Messages[0].ID
			}

			messages := make([]entity.Message, len(page.Messages))
			copy(messages, page.Messages)

			wg.Add(1)
			go func(msgs []entity.Message) {
				defer wg.Done()
				if err := s.msgRepo.UpsertBatch(ctx, msgs); err != nil {
					select {
					case errCh <- err:
					default:
					}
				}
			}(messages)
		}

		if !page.HasMore || page.NextOffsetID == 0 {
			break
		}
		offsetID = page.NextOffsetID
	}

	wg.Wait()

	select {
	case err := <-errCh:
		return fmt.Errorf("async save failed: %w", err)
	default:
	}

	if err := s.syncRepo.UpdateSyncStatus(ctx, &dao.ChatSyncStatus{
		ChatID:          chatID,
		LastSyncedAt:    time.Now(),
		NewestMessageID: newestID,
		SyncComplete:    true,
	}); err != nil {
		return fmt.Errorf("updating sync status: %w", err)
	}

	return nil
}

// GetChatsNeedingSync returns chats due for a background re-sync
func (s *Service) GetChatsNeedingSync(ctx context.Context, olderThan time.Duration, limit int) ([]string, error) {
	if s.syncRepo == nil {
		return nil, fmt.Errorf("repository required")
	}
	return s.syncRepo.GetChatsNeedingSync(ctx, olderThan, limit)
}

// IncrementSyncRetryCount increments the retry count after a failed sync
func (s *Service) IncrementSyncRetryCount(ctx context.Context, chatID string, lastError string, maxRetries int) error {
	if s.syncRepo == nil {
		return nil
	}
	return s.syncRepo.IncrementRetryCount(ctx, chatID, lastError, maxRetries)
}

// ResetSyncRetryCount resets the retry count after a successful sync
func (s *Service) ResetSyncRetryCount(ctx context.Context, chatID string) error {
	if s.syncRepo == nil {
		return nil
	}
	return s.syncRepo.ResetRetryCount(ctx, chatID)
}

// ResolveNames maps sender ids to display names via the gateway. Resolution
// is best effort: ids that fail to resolve are simply absent from the map.
func (s *Service) ResolveNames(ctx context.Context, userIDs []string) map[string]string {
	names := make(map[string]string, len(userIDs))
	for _, id := range userIDs {
		user, err := s.tg.GetChat(ctx, id)
		if err != nil {
			s.logger.Warn("resolving display name failed", "user_id", id, "error", err)
			continue
		}
		names[id] = user.DisplayName()
	}
	return names
}

// ExportHistory serializes the cached history of a chat and archives it in
// object storage. Raw messages only: computed statistics are never persisted.
func (s *Service) ExportHistory(ctx context.Context, chatID string) (*storage.ExportOutput, error) {
	if s.exports == nil {
		return nil, fmt.Errorf("export storage required")
	}

	messages, err := s.materializeHistory(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if len(messages) == 0 {
		return nil, entity.ErrEmptyHistory
	}

	data, err := json.Marshal(messages)
	if err != nil {
		return nil, fmt.Errorf("serializing history: %w", err)
	}

	out, err := s.exports.UploadExport(ctx, chatID, data)
	if err != nil {
		return nil, fmt.Errorf("archiving history: %w", err)
	}

	return out, nil
}

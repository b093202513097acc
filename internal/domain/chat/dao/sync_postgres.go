package dao

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ChatSyncStatus tracks history sync state per chat
type ChatSyncStatus struct {
	ChatID          string
	LastSyncedAt    time.Time
	NewestMessageID int64
	SyncComplete    bool
	RetryCount      int
	Failed          bool
	LastError       string
}

// ChatSyncPostgres implements the chat sync status repository
type ChatSyncPostgres struct {
	pool *pgxpool.Pool
}

// NewChatSyncPostgres creates a new chat sync status repository
func NewChatSyncPostgres(pool *pgxpool.Pool) *ChatSyncPostgres {
	return &ChatSyncPostgres{pool: pool}
}

// GetSyncStatus retrieves sync status for a chat, nil when never synced
func (r *ChatSyncPostgres) GetSyncStatus(ctx context.Context, chatID string) (*ChatSyncStatus, error) {
	query := `
		SELECT chat_id, last_synced_at, newest_message_id, sync_complete, retry_count, failed, last_error
		FROM chat_sync_status
		WHERE chat_id = $1
	`

	var status ChatSyncStatus
	var lastError *string

	err := r.pool.QueryRow(ctx, query, chatID).Scan(
		&status.ChatID,
		&status.LastSyncedAt,
		&status.NewestMessageID,
		&status.SyncComplete,
		&status.RetryCount,
		&status.Failed,
		&lastError,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting chat sync status: %w", err)
	}

	if lastError != nil {
		status.LastError = *lastError
	}

	return &status, nil
}

// UpdateSyncStatus updates or inserts sync status for a chat
func (r *ChatSyncPostgres) UpdateSyncStatus(ctx context.Context, status *ChatSyncStatus) error {
	query := `
		INSERT INTO chat_sync_status (chat_id, last_synced_at, newest_message_id, sync_complete, retry_count, failed, last_error)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (chat_id) DO UPDATE SET
			last_synced_at = EXCLUDED.last_synced_at,
			newest_message_id = EXCLUDED.newest_message_id,
			sync_complete = EXCLUDED.sync_complete,
			retry_count = EXCLUDED.retry_count,
			failed = EXCLUDED.failed,
			last_error = EXCLUDED.last_error
	`

	var lastError *string
	if status.LastError != "" {
		lastError = &status.LastError
	}

	_, err := r.pool.Exec(ctx, query,
		status.ChatID,
		status.LastSyncedAt,
		status.NewestMessageID,
		status.SyncComplete,
		status.RetryCount,
		status.Failed,
		lastError,
	)
	if err != nil {
		return fmt.Errorf("updating chat sync status: %w", err)
	}

	return nil
}

// GetChatsNeedingSync returns chats whose sync status is older than the given
// age, excluding chats marked failed, limited to the given batch size
func (r *ChatSyncPostgres) GetChatsNeedingSync(ctx context.Context, olderThan time.Duration, limit int) ([]string, error) {
	query := `
		SELECT chat_id
		FROM chat_sync_status
		WHERE last_synced_at < $1 AND NOT failed
		ORDER BY last_synced_at ASC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, time.Now().Add(-olderThan), limit)
	if err != nil {
		return nil, fmt.Errorf("querying chats needing sync: %w", err)
	}
	defer rows.Close()

	var chatIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning chat id: %w", err)
		}
		chatIDs = append(chatIDs, id)
	}

	return chatIDs, nil
}

// IncrementRetryCount bumps the retry counter after a failed sync and marks
// the chat failed once maxRetries is reached
func (r *ChatSyncPostgres) IncrementRetryCount(ctx context.Context, chatID string, lastError string, maxRetries int) error {
	query := `
		INSERT INTO chat_sync_status (chat_id, last_synced_at, newest_message_id, sync_complete, retry_count, failed, last_error)
		VALUES ($1, $2, 0, false, 1, false, $3)
		ON CONFLICT (chat_id) DO UPDATE SET
			retry_count = chat_sync_status.retry_count + 1,
			failed = chat_sync_status.retry_count + 1 >= $4,
			last_error = EXCLUDED.last_error
	`

	_, err := r.pool.Exec(ctx, query, chatID, time.Now(), lastError, maxRetries)
	if err != nil {
		return fmt.Errorf("incrementing retry count: %w", err)
	}

	return nil
}

// ResetRetryCount clears failure bookkeeping after a successful sync
func (r *ChatSyncPostgres) ResetRetryCount(ctx context.Context, chatID string) error {
	query := `
		UPDATE chat_sync_status
		SET retry_count = 0, failed = false, last_error = NULL
		WHERE chat_id = $1
	`

	_, err := r.pool.Exec(ctx, query, chatID)
	if err != nil {
		return fmt.Errorf("resetting retry count: %w", err)
	}

	return nil
}

package dao

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vadim/chat-pulse/internal/domain/chat/entity"
)

// MessagePostgres implements the chat message cache for PostgreSQL
type MessagePostgres struct {
	pool *pgxpool.Pool
}

// NewMessagePostgres creates a new PostgreSQL message repository
func NewMessagePostgres(pool *pgxpool.Pool) *MessagePostgres {
	return &MessagePostgres{pool: pool}
}

const upsertMessageQuery = `
	INSERT INTO chat_messages (
		id, chat_id, sender_id, message_type, text, caption, timestamp, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (chat_id, id) DO UPDATE SET
		text = EXCLUDED.text,
		caption = EXCLUDED.caption
`

// Upsert inserts or updates a single message
func (r *MessagePostgres) Upsert(ctx context.Context, msg *entity.Message) error {
	_, err := r.pool.Exec(ctx, upsertMessageQuery,
		msg.ID,
		msg.ChatID,
		msg.SenderID,
		msg.Type,
		msg.Text,
		msg.Caption,
		msg.Timestamp,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("upserting message: %w", err)
	}

	return nil
}

// UpsertBatch inserts or updates one retrieved history page
func (r *MessagePostgres) UpsertBatch(ctx context.Context, msgs []entity.Message) error {
	if len(msgs) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	now := time.Now()
	for _, msg := range msgs {
		batch.Queue(upsertMessageQuery,
			msg.ID,
			msg.ChatID,
			msg.SenderID,
			msg.Type,
			msg.Text,
			msg.Caption,
			msg.Timestamp,
			now,
		)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range msgs {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("executing batch upsert: %w", err)
		}
	}

	return nil
}

// GetAllByChatID retrieves the full cached history of a chat, newest first.
// The analytics engine needs the whole batch, so there is no pagination here.
func (r *MessagePostgres) GetAllByChatID(ctx context.Context, chatID string) ([]entity.Message, error) {
	query := `
		SELECT id, chat_id, sender_id, message_type, text, caption, timestamp, created_at
		FROM chat_messages
		WHERE chat_id = $1
		ORDER BY timestamp DESC, id DESC
	`

	rows, err := r.pool.Query(ctx, query, chatID)
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}
	defer rows.Close()

	var messages []entity.Message
	for rows.Next() {
		var msg entity.Message
		err := rows.Scan(
			&msg.ID,
			&msg.ChatID,
			&msg.SenderID,
			&msg.Type,
			&msg.Text,
			&msg.Caption,
			&msg.Timestamp,
			&msg.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning message row: %w", err)
		}
		messages = append(messages, msg)
	}

	return messages, nil
}

// Count returns the number of cached messages for a chat
func (r *MessagePostgres) Count(ctx context.Context, chatID string) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM chat_messages WHERE chat_id = $1", chatID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting messages: %w", err)
	}
	return count, nil
}

// DeleteByChatID drops the cached history of a chat
func (r *MessagePostgres) DeleteByChatID(ctx context.Context, chatID string) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM chat_messages WHERE chat_id = $1", chatID)
	if err != nil {
		return fmt.Errorf("deleting messages: %w", err)
	}
	return nil
}

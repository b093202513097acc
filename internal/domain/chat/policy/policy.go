package policy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/vadim/chat-pulse/internal/domain/chat/analysis"
	"github.com/vadim/chat-pulse/internal/domain/chat/entity"
	"github.com/vadim/chat-pulse/internal/domain/chat/render"
	"github.com/vadim/chat-pulse/internal/domain/chat/service"
	"github.com/vadim/chat-pulse/internal/storage"
)

// StatsService defines the interface for the chat analytics service
type StatsService interface {
	GetStatistics(ctx context.Context, in service.GetStatisticsInput) (*analysis.Result, error)
	SyncHistory(ctx context.Context, chatID string) error
	ResolveNames(ctx context.Context, userIDs []string) map[string]string
	ExportHistory(ctx context.Context, chatID string) (*storage.ExportOutput, error)
}

// Messenger delivers report messages to the gateway
type Messenger interface {
	SendMessage(ctx context.Context, chatID, text string) (*SentMessage, error)
	EditMessageText(ctx context.Context, chatID string, messageID int64, text string) error
	DeleteMessage(ctx context.Context, chatID string, messageID int64) error
}

// SentMessage acknowledges a delivered message
type SentMessage struct {
	MessageID int64
}

// Config holds the policy's authorization and delivery settings. Everything
// is request-scoped state passed in at construction: no process globals.
type Config struct {
	// OwnerID is the only identity allowed to trigger any operation
	OwnerID string
	// OwnerChatID is the owner's private chat, the delivery target when
	// SendToChat is off
	OwnerChatID string
	// SendToChat delivers the report into the analyzed chat itself
	SendToChat bool
	Locale     render.Locale
}

// Policy gates chat analytics operations behind the single authorized
// identity and drives report delivery
type Policy struct {
	svc    StatsService
	msgr   Messenger
	cfg    Config
	logger *slog.Logger
}

// New creates a new chat analytics policy
func New(svc StatsService, msgr Messenger, cfg Config, logger *slog.Logger) *Policy {
	return &Policy{
		svc:    svc,
		msgr:   msgr,
		cfg:    cfg,
		logger: logger,
	}
}

// authorize admits only the configured owner
func (p *Policy) authorize(userID string) error {
	if userID != p.cfg.OwnerID {
		return entity.ErrUnauthorized
	}
	return nil
}

// GetStatisticsInput represents input for computing statistics
type GetStatisticsInput struct {
	ChatID           string
	RequestingUserID string
}

// GetStatistics computes the analytics result for a chat
func (p *Policy) GetStatistics(ctx context.Context, in GetStatisticsInput) (*analysis.Result, error) {
	if err := p.authorize(in.RequestingUserID); err != nil {
		return nil, err
	}

	return p.svc.GetStatistics(ctx, service.GetStatisticsInput{ChatID: in.ChatID})
}

// PublishReportInput represents input for producing and delivering a report
type PublishReportInput struct {
	ChatID           string
	RequestingUserID string
	// TriggerMessageID is the command message to clean up, 0 when the
	// request did not come from a chat command
	TriggerMessageID int64
}

// PublishReport posts a placeholder to the delivery target, computes the
// statistics, renders the localized report and edits the placeholder in
// place. On insufficient data the placeholder becomes a localized notice and
// entity.ErrInsufficientData is returned to the caller.
func (p *Policy) PublishReport(ctx context.Context, in PublishReportInput) error {
	if err := p.authorize(in.RequestingUserID); err != nil {
		return err
	}

	dest := in.ChatID
	if !p.cfg.SendToChat {
		dest = p.cfg.OwnerChatID
	}

	if in.TriggerMessageID != 0 {
		// Best effort: a stale trigger message is cosmetic only
		if err := p.msgr.DeleteMessage(ctx, in.ChatID, in.TriggerMessageID); err != nil {
			p.logger.Warn("deleting trigger message failed",
				"chat_id", in.ChatID, "message_id", in.TriggerMessageID, "error", err)
		}
	}

	placeholder, err := p.msgr.SendMessage(ctx, dest, render.Placeholder(p.cfg.Locale))
	if err != nil {
		return fmt.Errorf("posting placeholder: %w", err)
	}

	started := time.Now()
	result, err := p.svc.GetStatistics(ctx, service.GetStatisticsInput{ChatID: in.ChatID})
	if err != nil {
		notice := render.Failed(p.cfg.Locale)
		if errors.Is(err, entity.ErrInsufficientData) {
			notice = render.InsufficientData(p.cfg.Locale)
		}
		if editErr := p.msgr.EditMessageText(ctx, dest, placeholder.MessageID, notice); editErr != nil {
			p.logger.Warn("editing placeholder with notice failed", "error", editErr)
		}
		return err
	}

	names := p.svc.ResolveNames(ctx, []string{result.UserA.UserID, result.UserB.UserID})
	report := render.Report(result, names, p.cfg.Locale)

	if err := p.msgr.EditMessageText(ctx, dest, placeholder.MessageID, report); err != nil {
		return fmt.Errorf("delivering report: %w", err)
	}

	p.logger.Info("report delivered",
		"chat_id", in.ChatID, "destination", dest,
		"total_messages", result.TotalMessages, "took", time.Since(started))

	return nil
}

// SyncHistoryInput represents input for a manual history sync
type SyncHistoryInput struct {
	ChatID           string
	RequestingUserID string
}

// SyncHistory manually refreshes the cached history of a chat
func (p *Policy) SyncHistory(ctx context.Context, in SyncHistoryInput) error {
	if err := p.authorize(in.RequestingUserID); err != nil {
		return err
	}
	return p.svc.SyncHistory(ctx, in.ChatID)
}

// ExportHistoryInput represents input for archiving a chat's history
type ExportHistoryInput struct {
	ChatID           string
	RequestingUserID string
}

// ExportHistory archives the chat's raw history to object storage
func (p *Policy) ExportHistory(ctx context.Context, in ExportHistoryInput) (*storage.ExportOutput, error) {
	if err := p.authorize(in.RequestingUserID); err != nil {
		return nil, err
	}
	return p.svc.ExportHistory(ctx, in.ChatID)
}

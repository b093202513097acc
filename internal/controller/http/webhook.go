package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/vadim/chat-pulse/internal/domain/chat/entity"
	"github.com/vadim/chat-pulse/internal/domain/chat/policy"
	"github.com/vadim/chat-pulse/internal/httpx/response"
	"github.com/vadim/chat-pulse/internal/httpx/upstream/telegram"
)

const statsCommand = "/stats"

// WebhookHandler receives Bot API updates and turns the stats command into a
// report delivery
type WebhookHandler struct {
	policy ChatPolicy
	logger *slog.Logger
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(p ChatPolicy, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{policy: p, logger: logger}
}

// RegisterRoutes registers the webhook route
func (h *WebhookHandler) RegisterRoutes(r chi.Router) {
	r.Post("/telegram/webhook", h.HandleUpdate())
}

// HandleUpdate handles POST /telegram/webhook. The gateway retries failed
// deliveries, so processing errors still answer 200: a report that cannot be
// produced now will not succeed on redelivery either.
func (h *WebhookHandler) HandleUpdate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var update telegram.Update
		if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
			response.BadRequest(w, "invalid JSON")
			return
		}

		msg := update.Message
		if msg == nil || msg.From == nil || !isStatsCommand(msg.Text) {
			response.OK(w, map[string]bool{"ok": true})
			return
		}

		in := policy.PublishReportInput{
			ChatID:           strconv.FormatInt(msg.Chat.ID, 10),
			RequestingUserID: strconv.FormatInt(msg.From.ID, 10),
			TriggerMessageID: msg.MessageID,
		}

		if err := h.policy.PublishReport(r.Context(), in); err != nil {
			switch {
			case errors.Is(err, entity.ErrUnauthorized):
				// Silently ignore strangers; the command is owner-only
				h.logger.Debug("stats command from unauthorized user",
					"user_id", in.RequestingUserID, "chat_id", in.ChatID)
			case errors.Is(err, entity.ErrInsufficientData):
				h.logger.Info("stats command on chat with insufficient data", "chat_id", in.ChatID)
			default:
				h.logger.Error("publishing report failed", "chat_id", in.ChatID, "error", err)
			}
		}

		response.OK(w, map[string]bool{"ok": true})
	}
}

// isStatsCommand matches "/stats" and its bot-addressed form "/stats@botname"
func isStatsCommand(text string) bool {
	cmd, _, _ := strings.Cut(strings.TrimSpace(text), " ")
	cmd, _, _ = strings.Cut(cmd, "@")
	return cmd == statsCommand
}

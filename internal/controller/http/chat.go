package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vadim/chat-pulse/internal/domain/chat/analysis"
	"github.com/vadim/chat-pulse/internal/domain/chat/entity"
	"github.com/vadim/chat-pulse/internal/domain/chat/policy"
	"github.com/vadim/chat-pulse/internal/httpx/response"
	"github.com/vadim/chat-pulse/internal/storage"
)

// ChatPolicy defines the interface for chat analytics operations
type ChatPolicy interface {
	GetStatistics(ctx context.Context, in policy.GetStatisticsInput) (*analysis.Result, error)
	PublishReport(ctx context.Context, in policy.PublishReportInput) error
	SyncHistory(ctx context.Context, in policy.SyncHistoryInput) error
	ExportHistory(ctx context.Context, in policy.ExportHistoryInput) (*storage.ExportOutput, error)
}

// ChatHandler handles HTTP requests for chat analytics
type ChatHandler struct {
	policy ChatPolicy
}

// NewChatHandler creates a new chat analytics handler
func NewChatHandler(p ChatPolicy) *ChatHandler {
	return &ChatHandler{policy: p}
}

// RegisterRoutes registers chat analytics routes
func (h *ChatHandler) RegisterRoutes(r chi.Router) {
	r.Route("/chats/{chatId}", func(r chi.Router) {
		// Computed statistics as JSON
		r.Get("/statistics", h.GetStatistics())

		// Render and deliver the report into the chat / owner's DM
		r.Post("/report", h.PublishReport())

		// Force a history re-sync
		r.Post("/sync", h.SyncHistory())

		// Archive raw history to object storage
		r.Post("/export", h.ExportHistory())
	})
}

// GetStatistics handles GET /chats/{chatId}/statistics
func (h *ChatHandler) GetStatistics() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		chatID := chi.URLParam(r, "chatId")
		userID := r.URL.Query().Get("user_id")
		if userID == "" {
			response.BadRequest(w, "user_id is required")
			return
		}

		result, err := h.policy.GetStatistics(r.Context(), policy.GetStatisticsInput{
			ChatID:           chatID,
			RequestingUserID: userID,
		})
		if err != nil {
			handleChatError(w, err)
			return
		}

		response.OK(w, result)
	}
}

// PublishReport handles POST /chats/{chatId}/report
func (h *ChatHandler) PublishReport() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		chatID := chi.URLParam(r, "chatId")
		userID := r.URL.Query().Get("user_id")
		if userID == "" {
			response.BadRequest(w, "user_id is required")
			return
		}

		err := h.policy.PublishReport(r.Context(), policy.PublishReportInput{
			ChatID:           chatID,
			RequestingUserID: userID,
		})
		if err != nil {
			handleChatError(w, err)
			return
		}

		response.JSON(w, http.StatusAccepted, map[string]string{"status": "delivered"})
	}
}

// SyncHistory handles POST /chats/{chatId}/sync
func (h *ChatHandler) SyncHistory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		chatID := chi.URLParam(r, "chatId")
		userID := r.URL.Query().Get("user_id")
		if userID == "" {
			response.BadRequest(w, "user_id is required")
			return
		}

		err := h.policy.SyncHistory(r.Context(), policy.SyncHistoryInput{
			ChatID:           chatID,
			RequestingUserID: userID,
		})
		if err != nil {
			handleChatError(w, err)
			return
		}

		response.NoContent(w)
	}
}

// ExportHistory handles POST /chats/{chatId}/export
func (h *ChatHandler) ExportHistory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		chatID := chi.URLParam(r, "chatId")
		userID := r.URL.Query().Get("user_id")
		if userID == "" {
			response.BadRequest(w, "user_id is required")
			return
		}

		out, err := h.policy.ExportHistory(r.Context(), policy.ExportHistoryInput{
			ChatID:           chatID,
			RequestingUserID: userID,
		})
		if err != nil {
			handleChatError(w, err)
			return
		}

		response.Created(w, out)
	}
}

func handleChatError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entity.ErrUnauthorized):
		response.Forbidden(w, err.Error())
	case errors.Is(err, entity.ErrInsufficientData):
		response.UnprocessableEntity(w, err.Error())
	case errors.Is(err, entity.ErrChatNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, entity.ErrEmptyHistory):
		response.UnprocessableEntity(w, err.Error())
	default:
		response.InternalError(w, "internal server error")
	}
}

package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/markaz/report-assistant/internal/entity"
	"github.com/markaz/report-assistant/internal/pkg/logger"
	"github.com/markaz/report-assistant/internal/pkg/response"
	"github.com/markaz/report-assistant/internal/pkg/sse"
	usecasechat "github.com/markaz/report-assistant/internal/usecase/chat"
	"go.uber.org/zap"
)

type Handler struct {
	usecase ChatUsecase
}

func NewHandler(usecase ChatUsecase) *Handler {
	return &Handler{
		usecase: usecase,
	}
}

// CreateSession handles POST /sessions - start a new conversation
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "CreateSession")

	session, err := h.usecase.StartSession(ctx)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Created(w, entity.CreateSessionResponse{SessionID: session.ID})
}

// GetSession handles GET /sessions/{id} - fetch the transcript
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	ctx := logger.AddFields(r.Context(),
		zap.String("session_id", sessionID),
		zap.String("action", "GetSession"),
	)

	session, err := h.usecase.GetSession(ctx, sessionID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, toSessionDTO(session))
}

// Ask handles POST /sessions/{id}/messages - one question, one answer
func (h *Handler) Ask(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	ctx := logger.AddFields(r.Context(),
		zap.String("session_id", sessionID),
		zap.String("action", "Ask"),
	)

	var req entity.AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctxzap.Error(ctx, "failed to decode request body", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctxzap.Info(ctx, "processing question", zap.Int("question_length", len(req.Question)))

	answer, err := h.usecase.Ask(ctx, sessionID, &req)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "question answered",
		zap.Int("passage_count", len(answer.Passages)),
		zap.Bool("chart", answer.Chart != nil),
	)

	response.Success(w, toAskResponse(answer))
}

// AskStream handles POST /sessions/{id}/messages/stream - SSE answer stream.
// Events: "context" (retrieved passages), "delta" (answer fragments),
// "done" (the full response), "error".
func (h *Handler) AskStream(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	ctx := logger.AddFields(r.Context(),
		zap.String("session_id", sessionID),
		zap.String("action", "AskStream"),
	)

	var req entity.AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctxzap.Error(ctx, "failed to decode request body", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		response.Error(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	sse.SetupHeaders(w)

	handler := usecasechat.StreamHandler{
		OnPassages: func(passages []entity.Passage) error {
			return sse.SendEvent(w, flusher, "context", toPassageDTOs(passages))
		},
		OnDelta: func(delta string) error {
			return sse.SendEvent(w, flusher, "delta", map[string]string{"content": delta})
		},
	}

	answer, err := h.usecase.AskStream(ctx, sessionID, &req, handler)
	if err != nil {
		ctxzap.Error(ctx, "streaming ask failed", zap.Error(err))
		_ = sse.SendEvent(w, flusher, "error", entity.ErrorResponse{
			Error:   "stream failed",
			Message: userMessage(err),
		})
		return
	}

	_ = sse.SendEvent(w, flusher, "done", toAskResponse(answer))
}

// ClearSession handles DELETE /sessions/{id} - destroy the conversation
func (h *Handler) ClearSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	ctx := logger.AddFields(r.Context(),
		zap.String("session_id", sessionID),
		zap.String("action", "ClearSession"),
	)

	if err := h.usecase.ClearSession(ctx, sessionID); err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.NoContent(w)
}

func (h *Handler) handleUsecaseError(ctx context.Context, w http.ResponseWriter, err error) {
	ctxzap.Error(ctx, "request failed", zap.Error(err))

	switch {
	case errors.Is(err, entity.ErrSessionNotFound), errors.Is(err, entity.ErrSessionExpired):
		response.Error(w, http.StatusNotFound, "session not found")
	case errors.Is(err, entity.ErrMissingField), errors.Is(err, entity.ErrInvalidParameter):
		response.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, entity.ErrUpstreamQuota):
		response.Error(w, http.StatusServiceUnavailable, userMessage(err))
	case errors.Is(err, entity.ErrUpstreamUnavailable), errors.Is(err, entity.ErrMalformedResponse):
		response.Error(w, http.StatusBadGateway, userMessage(err))
	default:
		response.Error(w, http.StatusInternalServerError, "internal server error")
	}
}

// userMessage turns an upstream failure into the degraded-answer message
// shown to the user instead of a crash or a raw error dump.
func userMessage(err error) string {
	switch {
	case errors.Is(err, entity.ErrUpstreamQuota):
		return "The assistant is temporarily over its usage quota. Please try again in a few minutes."
	case errors.Is(err, entity.ErrUpstreamUnavailable):
		return "The assistant could not reach the language model. Please try again."
	case errors.Is(err, entity.ErrMalformedResponse):
		return "The assistant received an unexpected reply from the language model. Please try again."
	default:
		return "The assistant could not answer this question. Please try again."
	}
}

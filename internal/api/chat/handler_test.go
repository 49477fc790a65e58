package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/markaz/report-assistant/internal/entity"
	usecasechat "github.com/markaz/report-assistant/internal/usecase/chat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUsecase struct {
	session *entity.Session
	answer  *entity.Answer
	err     error
}

func (s *stubUsecase) StartSession(context.Context) (*entity.Session, error) {
	return s.session, s.err
}

func (s *stubUsecase) GetSession(context.Context, string) (*entity.Session, error) {
	return s.session, s.err
}

func (s *stubUsecase) ClearSession(context.Context, string) error {
	return s.err
}

func (s *stubUsecase) Ask(context.Context, string, *entity.AskRequest) (*entity.Answer, error) {
	return s.answer, s.err
}

func (s *stubUsecase) AskStream(_ context.Context, _ string, _ *entity.AskRequest, handler usecasechat.StreamHandler) (*entity.Answer, error) {
	if s.err != nil {
		return nil, s.err
	}
	if handler.OnPassages != nil {
		if err := handler.OnPassages(s.answer.Passages); err != nil {
			return nil, err
		}
	}
	if handler.OnDelta != nil {
		if err := handler.OnDelta(s.answer.Text); err != nil {
			return nil, err
		}
	}
	return s.answer, nil
}

func newTestRouter(uc ChatUsecase) http.Handler {
	r := chi.NewRouter()
	RegisterRoutes(r, NewHandler(uc))
	return r
}

func TestCreateSessionHandler(t *testing.T) {
	router := newTestRouter(&stubUsecase{session: &entity.Session{ID: "abc-123"}})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/sessions", nil))

	require.Equal(t, http.StatusCreated, rec.Code)

	var body entity.CreateSessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "abc-123", body.SessionID)
}

func TestGetSessionHandler(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		router := newTestRouter(&stubUsecase{session: &entity.Session{
			ID: "abc-123",
			Messages: []entity.Message{
				{Role: entity.RoleUser, Content: "hello"},
			},
		}})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sessions/abc-123", nil))

		require.Equal(t, http.StatusOK, rec.Code)

		var body entity.SessionDTO
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "abc-123", body.ID)
		require.Len(t, body.Messages, 1)
		assert.Equal(t, "hello", body.Messages[0].Content)
	})

	t.Run("unknown session", func(t *testing.T) {
		router := newTestRouter(&stubUsecase{err: entity.ErrSessionNotFound})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sessions/missing", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestAskHandler(t *testing.T) {
	t.Run("answers", func(t *testing.T) {
		router := newTestRouter(&stubUsecase{answer: &entity.Answer{
			Text: "Rents rose 3%.",
			Passages: []entity.Passage{
				{Text: "Rental rates rose 3%.", Score: 0.92, Source: "report.pdf", PageNumbers: "12"},
			},
		}})

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/sessions/abc/messages",
			strings.NewReader(`{"question":"How did rents change?"}`))
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var body entity.AskResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "Rents rose 3%.", body.Answer)
		require.Len(t, body.Passages, 1)
		assert.Equal(t, "report.pdf - p. 12", body.Passages[0].Source)
		assert.Nil(t, body.Chart)
	})

	t.Run("chart answer", func(t *testing.T) {
		router := newTestRouter(&stubUsecase{answer: &entity.Answer{
			Text: "Generated bar chart with 2 data points",
			Chart: &entity.ChartSpec{
				Type:       entity.ChartBar,
				Categories: []string{"Commercial", "Residential"},
				Values:     []float64{1250.5, 890.25},
			},
		}})

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/sessions/abc/messages",
			strings.NewReader(`{"question":"draw a bar chart of credit by sector"}`))
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var body entity.AskResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.NotNil(t, body.Chart)
		assert.Equal(t, entity.ChartBar, body.Chart.Type)
	})

	t.Run("invalid body", func(t *testing.T) {
		router := newTestRouter(&stubUsecase{})

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/sessions/abc/messages", strings.NewReader("{not json"))
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing question", func(t *testing.T) {
		router := newTestRouter(&stubUsecase{err: entity.ErrMissingField})

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/sessions/abc/messages", strings.NewReader(`{}`))
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("quota exhausted degrades", func(t *testing.T) {
		router := newTestRouter(&stubUsecase{err: entity.ErrUpstreamQuota})

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/sessions/abc/messages",
			strings.NewReader(`{"question":"anything"}`))
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusServiceUnavailable, rec.Code)

		var body entity.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Contains(t, body.Message, "usage quota")
	})

	t.Run("upstream unreachable", func(t *testing.T) {
		router := newTestRouter(&stubUsecase{err: entity.ErrUpstreamUnavailable})

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/sessions/abc/messages",
			strings.NewReader(`{"question":"anything"}`))
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})
}

func TestAskStreamHandler(t *testing.T) {
	t.Run("streams context delta done", func(t *testing.T) {
		router := newTestRouter(&stubUsecase{answer: &entity.Answer{
			Text: "Rents rose 3%.",
			Passages: []entity.Passage{
				{Text: "Rental rates rose 3%.", Score: 0.92, Source: "report.pdf"},
			},
		}})

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/sessions/abc/messages/stream",
			strings.NewReader(`{"question":"How did rents change?"}`))
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

		body := rec.Body.String()
		assert.Contains(t, body, "event: context\n")
		assert.Contains(t, body, "event: delta\n")
		assert.Contains(t, body, `"content":"Rents rose 3%."`)
		assert.Contains(t, body, "event: done\n")
	})

	t.Run("pipeline failure becomes error event", func(t *testing.T) {
		router := newTestRouter(&stubUsecase{err: entity.ErrUpstreamUnavailable})

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/sessions/abc/messages/stream",
			strings.NewReader(`{"question":"How did rents change?"}`))
		router.ServeHTTP(rec, req)

		body := rec.Body.String()
		assert.Contains(t, body, "event: error\n")
		assert.Contains(t, body, "could not reach the language model")
	})
}

func TestClearSessionHandler(t *testing.T) {
	t.Run("deleted", func(t *testing.T) {
		router := newTestRouter(&stubUsecase{})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/sessions/abc", nil))

		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("unknown session", func(t *testing.T) {
		router := newTestRouter(&stubUsecase{err: entity.ErrSessionNotFound})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/sessions/abc", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

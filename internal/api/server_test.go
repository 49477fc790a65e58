package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	chatapi "github.com/markaz/report-assistant/internal/api/chat"
	"github.com/markaz/report-assistant/internal/api/middleware"
	"github.com/markaz/report-assistant/internal/entity"
	usecasechat "github.com/markaz/report-assistant/internal/usecase/chat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type noopUsecase struct{}

func (noopUsecase) StartSession(context.Context) (*entity.Session, error) {
	return &entity.Session{ID: "abc-123"}, nil
}

func (noopUsecase) GetSession(context.Context, string) (*entity.Session, error) {
	return &entity.Session{ID: "abc-123"}, nil
}

func (noopUsecase) ClearSession(context.Context, string) error { return nil }

func (noopUsecase) Ask(context.Context, string, *entity.AskRequest) (*entity.Answer, error) {
	return &entity.Answer{Text: "ok"}, nil
}

func (noopUsecase) AskStream(context.Context, string, *entity.AskRequest, usecasechat.StreamHandler) (*entity.Answer, error) {
	return &entity.Answer{Text: "ok"}, nil
}

func newTestServer(t *testing.T, cfg RouterConfig) http.Handler {
	t.Helper()
	return SetupRouter(chatapi.NewHandler(noopUsecase{}), cfg, zap.NewNop())
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestServer(t, RouterConfig{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
}

func TestAccessGate(t *testing.T) {
	t.Run("enforced without password", func(t *testing.T) {
		router := newTestServer(t, RouterConfig{AccessPassword: "secret", EnforceAuth: true})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/sessions", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("enforced with wrong password", func(t *testing.T) {
		router := newTestServer(t, RouterConfig{AccessPassword: "secret", EnforceAuth: true})

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/sessions", nil)
		req.Header.Set(middleware.AccessPasswordHeader, "wrong")
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("enforced with correct password", func(t *testing.T) {
		router := newTestServer(t, RouterConfig{AccessPassword: "secret", EnforceAuth: true})

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/sessions", nil)
		req.Header.Set(middleware.AccessPasswordHeader, "secret")
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("health stays open in production", func(t *testing.T) {
		router := newTestServer(t, RouterConfig{AccessPassword: "secret", EnforceAuth: true})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("not enforced outside production", func(t *testing.T) {
		router := newTestServer(t, RouterConfig{EnforceAuth: false})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/sessions", nil))

		assert.Equal(t, http.StatusCreated, rec.Code)
	})
}

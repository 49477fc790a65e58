package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type echoBody struct {
	Value string `json:"value"`
}

func TestDoRequest(t *testing.T) {
	t.Run("round trips JSON", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

			var in echoBody
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			json.NewEncoder(w).Encode(echoBody{Value: in.Value + "-echoed"})
		}))
		defer srv.Close()

		c := NewConnector(&ConnectorConfig{BaseURL: srv.URL, Logger: zap.NewNop()})

		var out echoBody
		err := c.DoRequest(context.Background(), http.MethodPost, "/echo", &echoBody{Value: "hi"}, &out)
		require.NoError(t, err)
		assert.Equal(t, "hi-echoed", out.Value)
	})

	t.Run("non-2xx becomes HTTPError", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			fmt.Fprint(w, "slow down")
		}))
		defer srv.Close()

		c := NewConnector(&ConnectorConfig{BaseURL: srv.URL, Logger: zap.NewNop()})

		err := c.DoRequest(context.Background(), http.MethodGet, "/", nil, nil)

		var httpErr *HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusTooManyRequests, httpErr.StatusCode)
		assert.Contains(t, httpErr.Message, "slow down")
	})

	t.Run("connection failure becomes NetworkError", func(t *testing.T) {
		c := NewConnector(&ConnectorConfig{BaseURL: "http://127.0.0.1:1", Logger: zap.NewNop()},
			WithRequestTimeout(time.Second))

		err := c.DoRequest(context.Background(), http.MethodGet, "/", nil, nil)

		var netErr *NetworkError
		assert.ErrorAs(t, err, &netErr)
	})

	t.Run("auth header attached", func(t *testing.T) {
		var got string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = r.Header.Get("api-key")
		}))
		defer srv.Close()

		c := NewConnector(&ConnectorConfig{BaseURL: srv.URL, Logger: zap.NewNop()},
			WithAuthHeader("api-key", "secret"))

		require.NoError(t, c.DoRequest(context.Background(), http.MethodGet, "/", nil, nil))
		assert.Equal(t, "secret", got)
	})

	t.Run("bearer token attached", func(t *testing.T) {
		var got string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = r.Header.Get("Authorization")
		}))
		defer srv.Close()

		c := NewConnector(&ConnectorConfig{BaseURL: srv.URL, Logger: zap.NewNop()},
			WithAuthToken("secret"))

		require.NoError(t, c.DoRequest(context.Background(), http.MethodGet, "/", nil, nil))
		assert.Equal(t, "Bearer secret", got)
	})
}

func TestDoStreamRequest(t *testing.T) {
	t.Run("caller reads the body incrementally", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, "chunk-1\nchunk-2\n")
		}))
		defer srv.Close()

		c := NewConnector(&ConnectorConfig{BaseURL: srv.URL, Logger: zap.NewNop()})

		body, err := c.DoStreamRequest(context.Background(), http.MethodGet, "/", nil)
		require.NoError(t, err)
		defer body.Close()

		data, err := io.ReadAll(body)
		require.NoError(t, err)
		assert.Equal(t, "chunk-1\nchunk-2\n", string(data))
	})

	t.Run("non-2xx drained into HTTPError", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, "boom")
		}))
		defer srv.Close()

		c := NewConnector(&ConnectorConfig{BaseURL: srv.URL, Logger: zap.NewNop()})

		_, err := c.DoStreamRequest(context.Background(), http.MethodGet, "/", nil)

		var httpErr *HTTPError
		require.True(t, errors.As(err, &httpErr))
		assert.Equal(t, http.StatusInternalServerError, httpErr.StatusCode)
		assert.Equal(t, "boom", httpErr.Message)
	})
}

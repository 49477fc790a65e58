package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/markaz/report-assistant/internal/pkg/response"
)

// AccessPasswordHeader carries the shared access credential. It gates use
// of the deployed assistant and is distinct from the upstream API key.
const AccessPasswordHeader = "X-Access-Password"

// AccessPassword rejects requests whose credential is absent or mismatched
// before any model or retriever work happens. With enforce=false (non
// production environments) it is a no-op.
func AccessPassword(password string, enforce bool) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !enforce {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			provided := r.Header.Get(AccessPasswordHeader)
			if subtle.ConstantTimeCompare([]byte(provided), []byte(password)) != 1 {
				ctxzap.Warn(r.Context(), "rejected request with missing or incorrect access password")
				response.Error(w, http.StatusUnauthorized, "incorrect password")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

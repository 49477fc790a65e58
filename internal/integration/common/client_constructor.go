package common

import (
	"github.com/markaz/report-assistant/internal/config"
	pkgHTTP "github.com/markaz/report-assistant/pkg/http"
	"go.uber.org/zap"
)

// NewBaseConnector builds the shared outbound HTTP connector. The auth
// header name is caller-supplied because vendors disagree on it (Azure
// OpenAI uses "api-key", the OpenAI platform uses "Authorization").
func NewBaseConnector(cfg config.HTTPClientConfig, baseURL, authHeader, authValue string, logger *zap.Logger) *pkgHTTP.Connector {
	connCfg := &pkgHTTP.ConnectorConfig{
		Logger:  logger,
		BaseURL: baseURL,
	}

	return pkgHTTP.NewConnector(
		connCfg,
		pkgHTTP.WithRequestTimeout(cfg.RequestTimeout),
		pkgHTTP.WithConnClientTimeout(cfg.ConnTimeout),
		pkgHTTP.WithClientKeepAlive(cfg.KeepAlive),
		pkgHTTP.WithIdleConnTimeout(cfg.IdleConnTimeout),
		pkgHTTP.WithResponseHeaderTimeout(cfg.ResponseHeaderTimeout),
		pkgHTTP.WithRequestLogging(),
		pkgHTTP.WithAuthHeader(authHeader, authValue),
	)
}

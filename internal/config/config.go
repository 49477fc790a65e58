package config

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	pkgRetry "github.com/markaz/report-assistant/internal/pkg/retry"
)

// Config holds the application configuration. It is loaded once at startup
// and read-only thereafter.
type Config struct {
	// Server configuration. The hosting platform injects PORT.
	Port string `env:"PORT" envDefault:"8080"`

	// Azure OpenAI configuration
	AzureOpenAICfg AzureOpenAIConfig

	// Passage index location (single local SQLite file)
	DBPath string `env:"DB_PATH" envDefault:"data/report.db"`

	// Deployment environment; the access gate is enforced in production
	Environment    string `env:"ENVIRONMENT" envDefault:"development"`
	AccessPassword string `env:"ACCESS_PASSWORD"`

	// Retrieval and composer tuning
	RetrievalCfg RetrievalConfig

	// Session state
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"24h"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile  string `env:"LOG_FILE"`

	// Mock configuration: answer from canned data instead of the live API
	EnableMocks bool `env:"ENABLE_MOCKS" envDefault:"false"`
}

// AzureOpenAIConfig carries the upstream model credentials and deployment
// names. Endpoint and key are required; their absence fails startup with the
// missing names listed, mirroring the documented troubleshooting contract.
type AzureOpenAIConfig struct {
	HTTPClientConfig
	APIKey              string               `env:"AZURE_OPENAI_API_KEY"`
	Endpoint            string               `env:"AZURE_OPENAI_ENDPOINT"`
	APIVersion          string               `env:"AZURE_OPENAI_API_VERSION" envDefault:"2024-02-15-preview"`
	DeploymentName      string               `env:"AZURE_OPENAI_DEPLOYMENT_NAME" envDefault:"gpt-4o"`
	EmbeddingDeployment string               `env:"AZURE_OPENAI_EMBEDDING_DEPLOYMENT_NAME" envDefault:"text-embedding-3-small"`
	Retry               pkgRetry.RetryConfig `envPrefix:"AZURE_OPENAI_RETRY_"`
}

// RetrievalConfig tunes the retriever and composer.
type RetrievalConfig struct {
	TopK               int     `env:"RETRIEVAL_TOP_K" envDefault:"5"`
	Temperature        float64 `env:"COMPLETION_TEMPERATURE" envDefault:"0.7"`
	MaxAnswerTokens    int     `env:"COMPLETION_MAX_TOKENS" envDefault:"300"`
	HistoryTokenBudget int     `env:"HISTORY_TOKEN_BUDGET" envDefault:"3000"`
}

// HTTPClientConfig tunes the outbound HTTP client.
type HTTPClientConfig struct {
	RequestTimeout        time.Duration `env:"HTTP_TIMEOUT" envDefault:"60s"`
	ConnTimeout           time.Duration `env:"HTTP_CONN_TIMEOUT" envDefault:"10s"`
	KeepAlive             time.Duration `env:"HTTP_KEEP_ALIVE" envDefault:"90s"`
	IdleConnTimeout       time.Duration `env:"HTTP_IDLE_CONN_TIMEOUT" envDefault:"90s"`
	ResponseHeaderTimeout time.Duration `env:"HTTP_RESPONSE_HEADER_TIMEOUT" envDefault:"30s"`
}

func LoadConfig() (*Config, error) {
	envFlag := flag.String("env", "local", "Environment file to load (local, prod, or custom)")
	flag.Parse()

	return load(*envFlag)
}

// load is split from LoadConfig so tests can bypass flag parsing.
func load(environment string) (*Config, error) {
	envFile := getEnvFile(environment)
	// Try to load env file, but don't fail if it's missing.
	// In containerized/prod environments variables are usually set externally.
	if err := godotenv.Load(envFile); err != nil {
		fmt.Printf("Warning: could not load %s file (this is ok if env vars are set externally): %v\n", envFile, err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// IsProduction reports whether the access gate must be enforced.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func validateConfig(cfg *Config) error {
	var missing []string
	if cfg.AzureOpenAICfg.APIKey == "" {
		missing = append(missing, "AZURE_OPENAI_API_KEY")
	}
	if cfg.AzureOpenAICfg.Endpoint == "" {
		missing = append(missing, "AZURE_OPENAI_ENDPOINT")
	}
	if !cfg.EnableMocks && len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	if cfg.IsProduction() && cfg.AccessPassword == "" {
		return fmt.Errorf("ACCESS_PASSWORD must be set when ENVIRONMENT=production")
	}

	if cfg.DBPath == "" {
		return fmt.Errorf("DB_PATH must not be empty")
	}

	if cfg.RetrievalCfg.TopK < 1 || cfg.RetrievalCfg.TopK > 50 {
		return fmt.Errorf("RETRIEVAL_TOP_K must be between 1 and 50, got %d", cfg.RetrievalCfg.TopK)
	}

	if cfg.RetrievalCfg.MaxAnswerTokens < 1 {
		return fmt.Errorf("COMPLETION_MAX_TOKENS must be positive, got %d", cfg.RetrievalCfg.MaxAnswerTokens)
	}

	if cfg.RetrievalCfg.HistoryTokenBudget < 100 {
		return fmt.Errorf("HISTORY_TOKEN_BUDGET must be at least 100, got %d", cfg.RetrievalCfg.HistoryTokenBudget)
	}

	return nil
}

func getEnvFile(environment string) string {
	switch environment {
	case "prod", "production":
		return ".env.prod"
	case "local", "dev", "development":
		return ".env.local"
	default:
		return fmt.Sprintf(".env.%s", environment)
	}
}

package builder

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/markaz/report-assistant/internal/api"
	chatapi "github.com/markaz/report-assistant/internal/api/chat"
	"github.com/markaz/report-assistant/internal/config"
	"github.com/markaz/report-assistant/internal/integration/azureopenai"
	"github.com/markaz/report-assistant/internal/pkg/validator"
	"github.com/markaz/report-assistant/internal/repository"
	"github.com/markaz/report-assistant/internal/usecase/chat"
	"go.uber.org/zap"
)

func Build() (*App, error) {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupLogger(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	logger.Info("Building application",
		zap.String("environment", cfg.Environment),
		zap.String("port", cfg.Port),
		zap.String("db_path", cfg.DBPath),
	)

	// Open the passage database
	db, err := repository.OpenDatabase(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open passage database: %w", err)
	}

	// Run database migrations
	logger.Info("Running database migrations")
	if err := repository.RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("Database migrations completed successfully")

	// Initialize repositories
	passageRepo := repository.NewPassageSQLite(db)
	if err := passageRepo.LoadIndex(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("load passage index: %w", err)
	}
	logger.Info("Passage index loaded", zap.Int("passage_count", passageRepo.Count()))

	sessionRepo := repository.NewSessionCache(cfg.SessionTTL)
	logger.Info("Repositories initialized")

	// Initialize the model connector (with mock support)
	var modelConnector chat.ModelConnector
	if cfg.EnableMocks {
		logger.Info("Using mock connector for the model service")
		modelConnector = azureopenai.NewMockConnector(logger)
	} else {
		logger.Info("Using Azure OpenAI connector",
			zap.String("deployment", cfg.AzureOpenAICfg.DeploymentName),
			zap.String("embedding_deployment", cfg.AzureOpenAICfg.EmbeddingDeployment),
		)
		modelConnector = azureopenai.NewConnector(cfg.AzureOpenAICfg, logger)
	}

	// Initialize the use case
	chatUC := chat.NewUsecase(
		sessionRepo,
		passageRepo,
		modelConnector,
		validator.NewValidator(),
		cfg.RetrievalCfg,
		logger,
	)
	logger.Info("Use case initialized")

	// Setup API handler and router
	chatHandler := chatapi.NewHandler(chatUC)
	router := api.SetupRouter(chatHandler, api.RouterConfig{
		AccessPassword: cfg.AccessPassword,
		EnforceAuth:    cfg.IsProduction(),
	}, logger)
	logger.Info("HTTP router configured")

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second, // streaming answers hold the response open
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("Application built successfully",
		zap.String("environment", cfg.Environment),
	)

	return &App{
		server: server,
		db:     db,
		logger: logger,
	}, nil
}

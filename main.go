package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver for database/sql (migrations)
	"go.uber.org/zap"

	"github.com/usecasehq/usecase-engine/pkg/agent"
	"github.com/usecasehq/usecase-engine/pkg/config"
	"github.com/usecasehq/usecase-engine/pkg/database"
	"github.com/usecasehq/usecase-engine/pkg/extraction"
	"github.com/usecasehq/usecase-engine/pkg/handlers"
	"github.com/usecasehq/usecase-engine/pkg/llm"
	mcpserver "github.com/usecasehq/usecase-engine/pkg/mcp"
	"github.com/usecasehq/usecase-engine/pkg/middleware"
	"github.com/usecasehq/usecase-engine/pkg/repositories"
	"github.com/usecasehq/usecase-engine/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	var logger *zap.Logger
	if cfg.Env == "local" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()

	db, err := database.NewConnection(ctx, &database.Config{
		URL:            cfg.Database.ConnectionString(),
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	sqlDB, err := sql.Open("pgx", cfg.Database.ConnectionString())
	if err != nil {
		logger.Fatal("Failed to open migration connection", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	_ = sqlDB.Close()

	// Repositories and transaction manager.
	tx := database.NewTxManager(db)
	useCaseRepo := repositories.NewUseCaseRepository()
	industryRepo := repositories.NewIndustryRepository()
	companyRepo := repositories.NewCompanyRepository()
	personRepo := repositories.NewPersonRepository()
	userRepo := repositories.NewUserRepository()
	messageRepo := repositories.NewAgentMessageRepository()

	// Services.
	useCaseService := services.NewUseCaseService(useCaseRepo, industryRepo, companyRepo, personRepo, tx, logger.Named("usecases"))
	userService := services.NewUserService(userRepo, tx, logger.Named("users"))

	// Model client, tool dispatcher, agent loop.
	chatClient, err := llm.NewChatClient(&llm.Config{
		Provider: cfg.LLM.Provider,
		Endpoint: cfg.LLM.Endpoint,
		Model:    cfg.LLM.Model,
		APIKey:   cfg.LLM.APIKey,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to create LLM client", zap.Error(err))
	}

	// Completion usage records go to the application log; the sink is
	// pluggable so a database-backed one can replace it.
	recorder := llm.NewAsyncRecorder(func(ctx context.Context, rec *llm.CompletionRecord) error {
		logger.Info("Completion round",
			zap.String("model", rec.Model),
			zap.Int("round", rec.Round),
			zap.Int("tool_calls", rec.ToolCallCount),
			zap.Int("total_tokens", rec.TotalTokens),
			zap.Int("duration_ms", rec.DurationMs))
		return nil
	}, logger, 100)
	defer recorder.Close()

	dispatcher := agent.NewDispatcher(useCaseService, logger)
	catalog := agent.Catalog()
	agentLoop := agent.New(chatClient, dispatcher, catalog, agent.Options{
		MaxRounds:   cfg.Agent.MaxRounds,
		Temperature: cfg.Agent.Temperature,
		Recorder:    recorder,
	}, logger)

	chatService := services.NewChatService(agentLoop, messageRepo, tx, logger.Named("chat"))
	processor := extraction.NewProcessor(chatClient, agentLoop, logger)

	// MCP surface sharing the dispatcher.
	mcpSrv := mcpserver.NewServer("usecase-engine", cfg.Version, logger.Named("mcp"))
	if err := mcpSrv.RegisterCatalog(catalog, dispatcher); err != nil {
		logger.Fatal("Failed to register MCP catalog", zap.Error(err))
	}

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, db.Pool, chatClient.GetModel(), logger).RegisterRoutes(mux)
	handlers.NewChatHandler(chatService, logger.Named("chat")).RegisterRoutes(mux)
	handlers.NewUserHandler(userService, logger.Named("users")).RegisterRoutes(mux)
	handlers.NewTranscriptHandler(processor, logger.Named("transcripts")).RegisterRoutes(mux)
	mux.Handle("/mcp", mcpSrv.NewStreamableHTTPServer())

	handler := middleware.RequestLogger(logger)(
		middleware.ResolveUser(userRepo, tx, logger)(mux))

	addr := cfg.BindAddr + ":" + cfg.Port
	logger.Info("Starting usecase-engine",
		zap.String("addr", addr),
		zap.String("version", cfg.Version),
		zap.String("model", chatClient.GetModel()))

	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}

package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/prepdesk/prepdesk/internal/api"
	"github.com/prepdesk/prepdesk/internal/config"
	"github.com/prepdesk/prepdesk/internal/evaluate"
	"github.com/prepdesk/prepdesk/internal/llm"
	"github.com/prepdesk/prepdesk/internal/questiongen"
	"github.com/prepdesk/prepdesk/internal/store"
	"github.com/prepdesk/prepdesk/internal/workspace"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the practice server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func runServe(cmd *cobra.Command) error {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if cfg.IsDevelopment() {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		slog.SetDefault(logger)
	}

	dsn := cfg.DB
	if flagDSN, _ := cmd.Flags().GetString("db"); flagDSN != "" {
		dsn = flagDSN
	}
	if dsn == "" {
		dsn, err = store.DefaultDBPath()
		if err != nil {
			slog.Error("Failed to resolve database path", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Starting server", "addr", cfg.Addr, "dev", cfg.IsDevelopment())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, err := store.Open(ctx, dsn)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close repository", "error", closeErr)
		}
	}()

	if err := repo.Ping(ctx); err != nil {
		slog.Error("Database health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database connected")

	provider, err := buildProvider(ctx, cfg, repo)
	if err != nil {
		slog.Error("Failed to initialize LLM provider", "error", err)
		os.Exit(1)
	}
	slog.Info("LLM provider ready", "model", provider.ModelID())

	ws := workspace.New(repo,
		questiongen.New(provider, questiongen.DefaultConfig()),
		evaluate.New(provider, evaluate.DefaultConfig()),
		logger)

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      api.NewHandler(ws, cfg.DefaultUser).Routes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // streaming endpoints manage their own deadlines
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
	return nil
}

// buildProvider assembles the LLM provider from explicit env config,
// falling back to API key discovery. Development runs without any key
// get the mock provider so the server still starts; AI calls fail
// until a key is configured.
func buildProvider(ctx context.Context, cfg *config.Config, events store.LLMEventRepo) (llm.Provider, error) {
	llmCfg := llm.ConfigFromEnv()
	if err := llmCfg.Validate(); err != nil {
		discovered, ok := llm.DiscoverConfig()
		if !ok {
			if cfg.IsDevelopment() {
				slog.Warn("No LLM API key configured, using mock provider; AI requests will fail")
				llmCfg.Provider = "mock"
				return llm.NewProvider(ctx, llmCfg, events)
			}
			return nil, err
		}
		llmCfg = discovered
	}
	return llm.NewProvider(ctx, llmCfg, events)
}

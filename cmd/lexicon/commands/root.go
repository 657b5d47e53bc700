// Package commands implements the lexicon CLI. The root command runs the
// HTTP server; the index subcommand populates the database from a directory
// of PDF files.
package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/abiiranathan/lexicon-sub000/internal/logger"
	"github.com/abiiranathan/lexicon-sub000/pkg/ai"
	"github.com/abiiranathan/lexicon-sub000/pkg/api"
	"github.com/abiiranathan/lexicon-sub000/pkg/api/handlers"
	"github.com/abiiranathan/lexicon-sub000/pkg/cache"
	"github.com/abiiranathan/lexicon-sub000/pkg/config"
	"github.com/abiiranathan/lexicon-sub000/pkg/metrics"
	"github.com/abiiranathan/lexicon-sub000/pkg/store/postgres"
)

var rootCmd = &cobra.Command{
	Use:   "lexicon",
	Short: "Full-text PDF search service",
	Long: `lexicon indexes directories of PDF files into PostgreSQL full-text
search and serves ranked search, page text, file listings and rendered pages
over HTTP. With a Gemini API key configured it adds an LLM answer summary to
corpus-wide searches.`,
	SilenceUsage: true,
	RunE:         runServer,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.Flags().IntP("port", "p", 8080, "HTTP listen port")
	rootCmd.Flags().StringP("addr", "a", "", "listen address (default all interfaces)")
	rootCmd.PersistentFlags().StringP("pgconn", "c", "", "Postgres connection string (overrides PGCONN)")
}

// loadConfig reads the environment configuration and applies the flags the
// user actually set, then validates the result.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("port") {
		cfg.Port, _ = cmd.Flags().GetInt("port")
	}
	if cmd.Flags().Changed("addr") {
		cfg.Addr, _ = cmd.Flags().GetString("addr")
	}
	if pgconn, _ := cmd.Flags().GetString("pgconn"); pgconn != "" {
		cfg.PGConn = pgconn
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}); err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}
	return cfg, nil
}

func runServer(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Metrics {
		metrics.InitRegistry()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := postgres.Connect(ctx, postgres.Config{ConnString: cfg.PGConn})
	if err != nil {
		return err
	}
	defer store.Close()

	responseCache := cache.New(cfg.Cache.Capacity, cfg.Cache.TTL,
		cache.WithMetrics(metrics.NewCacheMetrics("response")))

	var summarizer handlers.Summarizer
	if cfg.AIEnabled() {
		summarizer = ai.NewClient(cfg.Gemini.APIKey, cfg.Gemini.Model)
		logger.Info("ai summaries enabled", "model", cfg.Gemini.Model)
	} else {
		logger.Info("ai summaries disabled: no GEMINI_API_KEY")
	}

	h := handlers.New(store, responseCache, summarizer)
	server := api.NewServer(api.Config{Addr: cfg.Addr, Port: cfg.Port}, h, metrics.NewHTTPMetrics())
	return server.Start(ctx)
}

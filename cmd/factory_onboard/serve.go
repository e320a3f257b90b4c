package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/factory-onboarding/internal/db"
	"github.com/jonathan/factory-onboarding/internal/onboarding"
	"github.com/jonathan/factory-onboarding/internal/server"
	"github.com/jonathan/factory-onboarding/internal/server/ratelimit"
)

var (
	serveAddr      string
	serveDBURL     string
	serveAPIKey    string
	serveMaxPasses int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server exposing onboarding over REST and server-sent events.
When a database URL is configured, runs and their stage artifacts are stored and
the /runs endpoints are enabled.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Address to listen on (default :8080)")
	serveCmd.Flags().StringVar(&serveDBURL, "db-url", "", "PostgreSQL URL (falls back to "+databaseURLEnv+")")
	serveCmd.Flags().StringVar(&serveAPIKey, "api-key", "", "Gemini API key (overrides "+apiKeyEnv+")")
	serveCmd.Flags().IntVar(&serveMaxPasses, "max-passes", server.DefaultMaxPasses, "Upper bound on passes per request")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadSettings()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.ListenAddr = serveAddr
	}

	apiKey, err := resolveAPIKey(serveAPIKey, cfg)
	if err != nil {
		return err
	}
	caller, closeClient, err := newStructuredCaller(ctx, cfg, apiKey)
	if err != nil {
		return err
	}
	defer func() { _ = closeClient() }()

	opts := onboarding.Options{
		Caller:      caller,
		Logger:      logger,
		MaxParallel: cfg.MaxParallel,
	}
	limits, err := ratelimit.LoadConfig()
	if err != nil {
		return err
	}
	srvCfg := server.Config{
		Addr:      cfg.ListenAddr,
		Logger:    logger,
		RateLimit: limits,
		MaxPasses: serveMaxPasses,
	}

	if dbURL := resolveDatabaseURL(serveDBURL, cfg); dbURL != "" {
		database, err := db.Connect(ctx, dbURL)
		if err != nil {
			return err
		}
		defer database.Close()
		if err := database.Migrate(ctx); err != nil {
			return err
		}
		opts.Sink = database
		srvCfg.Store = database
	} else {
		logger.Warn("no database configured; runs will not be stored")
	}

	service, err := onboarding.NewService(opts)
	if err != nil {
		return err
	}
	srvCfg.Service = service

	srv, err := server.New(srvCfg)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	logger.Info("serving", zap.String("addr", cfg.ListenAddr), zap.Bool("store", srvCfg.Store != nil))
	return srv.Start(ctx)
}

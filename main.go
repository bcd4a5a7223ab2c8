package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	clerk "github.com/clerk/clerk-sdk-go/v2"

	"pillarsAPI/internal/config"
	"pillarsAPI/internal/logger"
	"pillarsAPI/internal/migration"
	"pillarsAPI/internal/predictor"
	"pillarsAPI/internal/store"
	"pillarsAPI/internal/store/postgres"
	"pillarsAPI/internal/store/sqlite"
	"pillarsAPI/middleware"
	"pillarsAPI/services"
)

var CLI struct {
	EnvFile string `help:"Optional .env file to load before reading the environment." default:".env" type:"path"`

	Serve   ServeCmd   `cmd:"" help:"Run the HTTP API." default:"1"`
	Migrate MigrateCmd `cmd:"" help:"Apply pending schema migrations and exit."`
}

type ServeCmd struct {
	Migrate bool `help:"Apply pending migrations before listening."`
}

type MigrateCmd struct{}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name("pillars"),
		kong.Description("Habit, wellness and friendship API"),
		kong.UsageOnError(),
	)

	if !config.LoadDotEnv(CLI.EnvFile) {
		fmt.Fprintln(os.Stderr, "No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(logger.Config{Level: cfg.LogLevel, File: cfg.LogFile}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	if err := kctx.Run(cfg); err != nil {
		logger.Fatal("Exiting", "err", err)
	}
}

func (c *MigrateCmd) Run(cfg *config.Config) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	return migrate(ctx, st)
}

func (c *ServeCmd) Run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	st, err := openStore(startCtx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		logger.Info("Closing database connection...")
		st.Close()
	}()

	if c.Migrate {
		if err := migrate(startCtx, st); err != nil {
			return err
		}
	} else if err := migration.NewRunner(st).ValidateVersion(startCtx); err != nil {
		return fmt.Errorf("%w (run the migrate command)", err)
	}

	verify := middleware.HS256Verifier([]byte(cfg.JWTSecret))
	if cfg.AuthMode == config.AuthModeClerk {
		clerk.SetKey(cfg.ClerkSecretKey)
		verify = middleware.ClerkVerifier
		logger.Info("Clerk initialized successfully")
	}

	var p predictor.Predictor = predictor.Disabled{}
	if cfg.PredictorEnabled() {
		p = predictor.NewOpenAI(predictor.Config{
			APIKey:  cfg.OpenAIKey,
			Model:   cfg.OpenAIModel,
			BaseURL: cfg.OpenAIBaseURL,
			Timeout: cfg.PredictorTimeout,
			RPS:     cfg.PredictorRPS,
		})
	} else {
		logger.Warn("OPENAI_API_KEY not set, predictions are disabled")
	}

	services.InitPrometheus()
	middleware.InitPrometheus()

	if cfg.ClerkWebhookSecret == "" && cfg.WebhookAllowUnsigned {
		logger.Warn("WEBHOOK_ALLOW_UNSIGNED is set, accepting unsigned webhook deliveries")
	}

	server := http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      newRouter(st, cfg, verify, p),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: cfg.PredictorTimeout + 15*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("error starting server: %w", err)
	case <-ctx.Done():
		logger.Info("Got shutdown signal")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "err", err)
	}

	logger.Info("Server shutdown complete")
	return nil
}

func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	driver, dsn, err := cfg.Database()
	if err != nil {
		return nil, err
	}

	switch driver {
	case "postgres":
		return postgres.Open(ctx, dsn)
	case "sqlite":
		return sqlite.Open(ctx, dsn)
	}
	return nil, fmt.Errorf("unsupported database driver %q", driver)
}

func migrate(ctx context.Context, st store.Store) error {
	applied, err := migration.NewRunner(st).ApplyMigrations(ctx, func(msg string) {
		logger.Info(msg)
	})
	if err != nil {
		return err
	}
	logger.Info("Migrations finished", "applied", applied)
	return nil
}

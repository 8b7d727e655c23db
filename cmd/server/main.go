// Command main is the entry point for the SocialHub backend server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"socialhub/internal/bootstrap"
	"socialhub/internal/config"
	"socialhub/internal/middleware"
	"socialhub/internal/observability"
	"socialhub/internal/server"
)

// @title SocialHub API
// @version 1.0
// @description Social network API with feeds, bookmarks, follows, claps, comments and notifications
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@socialhub.dev

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8375
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	middleware.ConfigureLogger(cfg.Env, os.Stdout)

	shutdownTracing, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:    "socialhub-api",
		ServiceVersion: "1.0.0",
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SamplerRatio:   cfg.TracingSampleRatio,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}

	ctx := context.Background()
	deps, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{ApplySchema: true})
	if err != nil {
		return err
	}

	srv, err := server.NewServerWithDeps(cfg, deps)
	if err != nil {
		_ = bootstrap.Close(deps)
		return fmt.Errorf("failed to create server: %w", err)
	}

	listenErr := make(chan error, 1)
	go func() {
		listenErr <- srv.Start()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case sig := <-sigChan:
		middleware.Logger.Info("Shutting down server...", slog.String("signal", sig.String()))
	case runErr = <-listenErr:
		if runErr != nil {
			runErr = fmt.Errorf("server stopped: %w", runErr)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		runErr = errors.Join(runErr, fmt.Errorf("server shutdown: %w", err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		runErr = errors.Join(runErr, fmt.Errorf("tracing shutdown: %w", err))
	}
	return runErr
}

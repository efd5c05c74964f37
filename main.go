package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/samandartukhtayev/rawsock-users/config"
	"github.com/samandartukhtayev/rawsock-users/database"
	"github.com/samandartukhtayev/rawsock-users/handler"
	"github.com/samandartukhtayev/rawsock-users/logging"
	"github.com/samandartukhtayev/rawsock-users/metrics"
	"github.com/samandartukhtayev/rawsock-users/repository"
	"github.com/samandartukhtayev/rawsock-users/router"
	"github.com/samandartukhtayev/rawsock-users/server"
)

const serviceName = "users"

// app wires the process together. connect and listen are swapped out in tests.
type app struct {
	connect func(ctx context.Context, cfg *config.Config) (database.Connector, error)
	listen  func(network, addr string) (net.Listener, error)
}

func main() {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}

	cfg, err := config.Load(envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(os.Stdout, serviceName, cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = app{connect: database.New, listen: net.Listen}.run(ctx, cfg, logger)
	stop()
	if err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

// run prepares the schema, binds the listener and serves until ctx is done.
// Nothing is bound when the schema cannot be prepared.
func (a app) run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	connector, err := a.connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := connector.Close(); err != nil {
			logger.Warn("failed to close database", "error", err)
		}
	}()

	repo := repository.NewUserRepository(connector)

	if err := repo.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("error setting the database: %w", err)
	}
	logger.Info("database ready", "pool", cfg.Pool, "driver", cfg.Driver)

	ln, err := a.listen("tcp", cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.ListenAddr, err)
	}

	m := metrics.New()
	if cfg.MetricsAddr != "" {
		go func() {
			if err := m.Serve(ctx, cfg.MetricsAddr); err != nil {
				logger.Error("metrics endpoint stopped", "addr", cfg.MetricsAddr, "error", err)
			}
		}()
		logger.Info("metrics listening", "addr", cfg.MetricsAddr)
	}

	h := handler.NewUserHandler(repo, logger, handler.Options{
		DistinctInputErrors: cfg.DistinctInputErrors,
	})
	r := router.NewUserRouter(cfg.Namespace, h)

	return server.New(cfg, r, m, logger).Serve(ctx, ln)
}

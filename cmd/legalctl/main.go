package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/kirillkom/legal-assistant/internal/bootstrap"
	"github.com/kirillkom/legal-assistant/internal/config"
	"github.com/kirillkom/legal-assistant/internal/observability/logging"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd(loadServices)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

func loadServices(ctx context.Context, logLevel string) (services, func(), error) {
	cfg := config.Load()
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	slog.SetDefault(logging.NewJSONLoggerTo(os.Stderr, "legalctl", cfg.LogLevel))

	app, err := bootstrap.New(ctx, cfg, nil)
	if err != nil {
		return services{}, nil, err
	}
	return services{ingest: app.IngestUC, query: app.QueryUC}, app.Close, nil
}

package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/InQaaaaGit/userpet_api.git/internal/app"
	"github.com/InQaaaaGit/userpet_api.git/internal/buildinfo"
	"github.com/InQaaaaGit/userpet_api.git/internal/config"
	"github.com/InQaaaaGit/userpet_api.git/internal/server"
)

// Значения задаются при сборке:
//
//	go build -ldflags "-X main.buildVersion=v1.0.0 -X main.buildDate=$(date +%F) -X main.buildCommit=$(git rev-parse --short HEAD)"
var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	ctx, stop := server.SignalContext(context.Background())
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		stop()
		log.Fatalf("Server error: %v", err)
	}
}

// run загружает конфигурацию, создает приложение и блокируется до отмены ctx
func run(ctx context.Context, args []string, stdout io.Writer) error {
	info := buildinfo.NewInfo(buildVersion, buildDate, buildCommit)
	if err := info.Print(stdout); err != nil {
		return fmt.Errorf("error printing build info: %w", err)
	}

	cfg, err := config.Load(args)
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	logger, err := server.NewLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() {
		// Sync для stdout/stderr может вернуть ошибку, ее некуда вернуть
		_ = logger.Sync()
	}()

	logger.Info("Starting userpet API", info.Fields()...)
	logger.Info("Upstream configuration",
		zap.String("user_api", cfg.UserAPIURL),
		zap.String("image_api", cfg.ImageAPIURL),
		zap.Duration("timeout", cfg.UpstreamTimeout),
		zap.Int("default_count", cfg.DefaultCount),
		zap.Int("min_count", cfg.MinCount),
		zap.Int("max_count", cfg.MaxCount))

	application := app.NewApp(cfg, logger)
	return server.NewHTTPServer(application.GetServer(), cfg, logger).Start(ctx)
}

// Команда linkadmin запускает HTTP сервер консоли управления ссылками пользователей.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/InQaaaaGit/link_admin.git/internal/app"
	"github.com/InQaaaaGit/link_admin.git/internal/buildinfo"
	"github.com/InQaaaaGit/link_admin.git/internal/config"
	"github.com/InQaaaaGit/link_admin.git/internal/server"
	"go.uber.org/zap"
)

// Задаются при сборке: go build -ldflags "-X main.buildVersion=v1.0.0 ..."
var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		log.Fatalf("linkadmin: %v", err)
	}
}

func run(ctx context.Context, args []string) error {
	cfg, err := config.NewConfig(args)
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	logger, cleanup, err := server.InitLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer cleanup()

	info := buildinfo.NewInfo(buildVersion, buildDate, buildCommit)
	logger.Info("Starting link admin", info.Fields()...)

	application, err := app.NewApp(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("error creating application: %w", err)
	}
	defer func() {
		if err := application.Close(); err != nil {
			logger.Error("Error closing storage", zap.Error(err))
		}
	}()

	if err := application.Run(ctx); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	logger.Info("Server stopped")
	return nil
}

// Package server предоставляет общую функциональность для запуска HTTP сервера.
// Пакет инкапсулирует инициализацию конфигурации и логгера, запуск и плавную остановку сервера.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Starter интерфейс для запуска сервера
type Starter interface {
	Start() error
}

// HTTPServer представляет HTTP сервер с общей логикой запуска и остановки
type HTTPServer struct {
	server          *http.Server
	shutdownTimeout time.Duration
	logger          *zap.Logger
}

// NewHTTPServer создает новый HTTP сервер
func NewHTTPServer(server *http.Server, shutdownTimeout time.Duration, logger *zap.Logger) *HTTPServer {
	return &HTTPServer{
		server:          server,
		shutdownTimeout: shutdownTimeout,
		logger:          logger,
	}
}

// Start запускает HTTP сервер на адресе из его конфигурации
func (s *HTTPServer) Start() error {
	s.logger.Info("Starting HTTP server", zap.String("address", s.server.Addr))
	return s.server.ListenAndServe()
}

// Serve обслуживает запросы на уже открытом listener
func (s *HTTPServer) Serve(l net.Listener) error {
	s.logger.Info("Starting HTTP server", zap.String("address", l.Addr().String()))
	return s.server.Serve(l)
}

// Run запускает сервер и останавливает его при отмене ctx.
// Ожидающие запросы получают shutdownTimeout на завершение.
func (s *HTTPServer) Run(ctx context.Context, l net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		var err error
		if l != nil {
			err = s.Serve(l)
		} else {
			err = s.Start()
		}
		errCh <- err
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// InitLogger инициализирует production логгер с уровнем level и функцию для синхронизации
func InitLogger(level string) (*zap.Logger, func(), error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, nil, fmt.Errorf("parse log level %q: %w", level, err)
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = lvl
	logger, err := zcfg.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("build logger: %w", err)
	}

	cleanup := func() {
		if err := logger.Sync(); err != nil {
			log.Printf("Error syncing logger: %v", err)
		}
	}
	return logger, cleanup, nil
}

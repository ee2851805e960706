// Package app содержит основную структуру приложения и логику инициализации.
// Связывает хранилище, сервис, сессии, обработчики и маршруты в один HTTP сервер.
package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/InQaaaaGit/link_admin.git/internal/config"
	"github.com/InQaaaaGit/link_admin.git/internal/handler"
	"github.com/InQaaaaGit/link_admin.git/internal/middleware"
	"github.com/InQaaaaGit/link_admin.git/internal/server"
	"github.com/InQaaaaGit/link_admin.git/internal/service"
	"github.com/InQaaaaGit/link_admin.git/internal/session"
	"github.com/InQaaaaGit/link_admin.git/internal/storage"
	"github.com/InQaaaaGit/link_admin.git/internal/web"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// App представляет консоль управления ссылками.
// Инкапсулирует конфигурацию, HTTP роутер, логгер, хранилище и обработчики запросов.
type App struct {
	config  *config.Config      // Конфигурация приложения
	router  *chi.Mux            // HTTP роутер для обработки запросов
	logger  *zap.Logger         // Логгер для записи событий приложения
	handler *handler.Handler    // Обработчики HTTP запросов
	guard   *session.Guard      // Проверка учетных данных и cookie
	storage storage.UserStorage // Хранилище пользователей
}

// NewApp создает приложение и подключается к хранилищу, выбранному по конфигурации.
// Ошибка подключения к хранилищу возвращается вызывающему, который должен завершить процесс.
func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	store, err := NewStorage(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("error creating storage: %w", err)
	}

	app, err := NewAppWithStorage(cfg, store, logger)
	if err != nil {
		if closeErr := store.Close(); closeErr != nil {
			logger.Error("Error closing storage", zap.Error(closeErr))
		}
		return nil, err
	}
	return app, nil
}

// NewAppWithStorage создает приложение поверх готового хранилища
func NewAppWithStorage(cfg *config.Config, store storage.UserStorage, logger *zap.Logger) (*App, error) {
	pages, err := web.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("error creating renderer: %w", err)
	}

	guard := session.NewGuard(
		session.Credentials{Username: cfg.AdminUser, Password: cfg.AdminPassword},
		session.WithTTL(cfg.SessionTTL),
		session.WithSigningSecret([]byte(cfg.SessionSecret)),
	)
	userService := service.NewUserService(store, logger)

	a := &App{
		config:  cfg,
		router:  chi.NewRouter(),
		logger:  logger,
		handler: handler.NewHandler(userService, guard, pages, cfg, logger),
		guard:   guard,
		storage: store,
	}
	a.setupRoutes()
	return a, nil
}

// setupRoutes регистрирует middleware и маршруты.
// API требует сессию, все прочие GET-запросы отдают страницу входа или список.
func (a *App) setupRoutes() {
	a.router.Use(chimiddleware.RequestID)
	a.router.Use(middleware.LoggerMiddleware(a.logger))
	a.router.Use(chimiddleware.Recoverer)
	a.router.Use(middleware.GzipMiddleware)

	a.router.Get("/ping", a.handler.HandlePing)
	a.router.Handle("/static/*", http.StripPrefix("/static", web.StaticHandler()))

	a.router.Post("/login", a.handler.HandleLogin)
	a.router.Post("/logout", a.handler.HandleLogout)

	prefix := strings.TrimRight(a.config.APIPrefix, "/")
	a.router.Group(func(r chi.Router) {
		r.Use(middleware.RequireSession(a.guard, a.logger))
		r.Get(prefix+"/users", a.handler.HandleListUsers)
		r.Post(prefix+"/users/{username}", a.handler.HandleUpdateUser)
	})

	a.router.Get("/*", a.handler.HandlePage)
}

// Router возвращает HTTP обработчик приложения
func (a *App) Router() http.Handler {
	return a.router
}

// GetServer создает и возвращает настроенный HTTP сервер.
func (a *App) GetServer() *http.Server {
	return &http.Server{
		Addr:              a.config.ServerAddress,
		Handler:           a.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

// Run запускает HTTP сервер и блокируется до отмены ctx или ошибки сервера.
func (a *App) Run(ctx context.Context) error {
	srv := server.NewHTTPServer(a.GetServer(), a.config.ShutdownTimeout, a.logger)
	return srv.Run(ctx, nil)
}

// Close освобождает хранилище. Вызывается после остановки сервера.
func (a *App) Close() error {
	return a.storage.Close()
}

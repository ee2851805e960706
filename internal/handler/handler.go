// Package handler содержит HTTP-обработчики консоли: вход и выход администратора,
// список пользователей, замену блоков ссылок и вывод страниц.
package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/InQaaaaGit/link_admin.git/internal/config"
	"github.com/InQaaaaGit/link_admin.git/internal/dashboard"
	"github.com/InQaaaaGit/link_admin.git/internal/models"
	"github.com/InQaaaaGit/link_admin.git/internal/service"
	"github.com/InQaaaaGit/link_admin.git/internal/session"
	"github.com/InQaaaaGit/link_admin.git/internal/storage"
	"github.com/InQaaaaGit/link_admin.git/internal/web"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	contentTypeJSON = "application/json"
	contentTypeHTML = "text/html; charset=utf-8"

	loginSuccessMessage       = "Login successful"
	invalidCredentialsMessage = "Invalid credentials"
	invalidRequestMessage     = "Invalid request body"
	logoutMessage             = "Logged out"
	fetchErrorMessage         = "Error fetching data from database."
	invalidMappingsMessage    = "linkMappings must be an array."
	userNotFoundMessage       = "User not found."
	userUpdatedMessage        = "User updated successfully."
	updateErrorMessage        = "Error updating data in database."
	internalErrorMessage      = "Internal server error"
)

// maxBodySize ограничение на размер тела запроса
const maxBodySize = 1 << 20

// Authenticator проверяет учетные данные и cookie сессии
type Authenticator interface {
	Login(username, password string) (session.Session, error)
	Logout() session.Session
	FromRequest(r *http.Request) bool
}

// PageRenderer выводит HTML-страницы консоли
type PageRenderer interface {
	Login(w io.Writer, page web.LoginPage) error
	Dashboard(w io.Writer, page web.DashboardPage) error
}

type Handler struct {
	service service.UserService
	auth    Authenticator
	pages   PageRenderer
	cfg     *config.Config
	logger  *zap.Logger
}

func NewHandler(service service.UserService, auth Authenticator, pages PageRenderer, cfg *config.Config, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		auth:    auth,
		pages:   pages,
		cfg:     cfg,
		logger:  logger,
	}
}

// HandleLogin обрабатывает POST /login
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(&req); err != nil {
		h.logger.Info("Invalid login request body", zap.Error(err))
		h.writeMessage(w, http.StatusBadRequest, invalidRequestMessage)
		return
	}

	sess, err := h.auth.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, session.ErrInvalidCredentials) {
			h.logger.Info("Login rejected", zap.String("username", req.Username))
			h.writeMessage(w, http.StatusUnauthorized, invalidCredentialsMessage)
			return
		}
		h.logger.Error("Error issuing session", zap.Error(err))
		h.writeMessage(w, http.StatusInternalServerError, internalErrorMessage)
		return
	}

	http.SetCookie(w, sess.Cookie())
	h.logger.Info("Admin logged in")
	h.writeMessage(w, http.StatusOK, loginSuccessMessage)
}

// HandleLogout обрабатывает POST /logout. Наличие сессии не проверяется.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, h.auth.Logout().Cookie())
	h.writeMessage(w, http.StatusOK, logoutMessage)
}

// HandleListUsers обрабатывает GET {prefix}/users
func (h *Handler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		h.logger.Error("Error fetching users", zap.Error(err))
		h.writeMessage(w, http.StatusInternalServerError, fetchErrorMessage)
		return
	}
	if users == nil {
		users = []models.User{}
	}
	h.writeJSON(w, http.StatusOK, users)
}

// HandleUpdateUser обрабатывает POST {prefix}/users/{username}: полностью заменяет linkMappings
func (h *Handler) HandleUpdateUser(w http.ResponseWriter, r *http.Request) {
	username, err := usernameParam(r)
	if err != nil || username == "" {
		h.writeMessage(w, http.StatusNotFound, userNotFoundMessage)
		return
	}

	var req models.UpdateLinkMappingsRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(&req); err != nil {
		h.logger.Info("Invalid update request body", zap.String("username", username), zap.Error(err))
		h.writeMessage(w, http.StatusBadRequest, invalidMappingsMessage)
		return
	}

	err = h.service.UpdateLinkMappings(r.Context(), username, req.LinkMappings)
	switch {
	case err == nil:
		h.writeMessage(w, http.StatusOK, userUpdatedMessage)
	case errors.Is(err, service.ErrInvalidLinkMappings):
		h.writeMessage(w, http.StatusBadRequest, invalidMappingsMessage)
	case errors.Is(err, storage.ErrUserNotFound):
		h.writeMessage(w, http.StatusNotFound, userNotFoundMessage)
	default:
		h.logger.Error("Error updating user", zap.String("username", username), zap.Error(err))
		h.writeMessage(w, http.StatusInternalServerError, updateErrorMessage)
	}
}

// HandlePage обрабатывает все остальные GET-запросы: страница со списком при действующей
// сессии, страница входа без нее. Параметры q и page задают поиск и номер страницы.
func (h *Handler) HandlePage(w http.ResponseWriter, r *http.Request) {
	var (
		buf bytes.Buffer
		err error
	)

	if !h.auth.FromRequest(r) {
		err = h.pages.Login(&buf, web.LoginPage{APIPrefix: h.cfg.APIPrefix})
	} else {
		result := dashboard.LoadUsers(r.Context(), h.service)
		if result.Failed() {
			h.logger.Error("Error loading dashboard users", zap.Error(result.Err))
		}

		query := r.URL.Query()
		page, convErr := strconv.Atoi(query.Get("page"))
		if convErr != nil {
			page = 1
		}
		state := dashboard.NewState(result.Users).Search(query.Get("q")).GoTo(page)
		err = h.pages.Dashboard(&buf, web.NewDashboardPage(h.cfg.APIPrefix, result, dashboard.BuildView(state)))
	}

	if err != nil {
		h.logger.Error("Error rendering page", zap.String("path", r.URL.Path), zap.Error(err))
		http.Error(w, internalErrorMessage, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentTypeHTML)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.Error("Error writing page", zap.Error(err))
	}
}

// usernameParam достает username из пути. chi сопоставляет по RawPath, если он задан,
// и тогда параметр нужно раскодировать.
func usernameParam(r *http.Request) (string, error) {
	param := chi.URLParam(r, "username")
	if r.URL.RawPath == "" {
		return param, nil
	}
	return url.PathUnescape(param)
}

func (h *Handler) writeMessage(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, models.MessageResponse{Message: message})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Error encoding response", zap.Error(err))
	}
}

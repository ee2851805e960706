// Package client предоставляет HTTP-клиент для API консоли управления ссылками.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/InQaaaaGit/link_admin.git/internal/models"
	"github.com/go-resty/resty/v2"
)

// ErrUnauthorized соответствует ответу 401: сессии нет или учетные данные неверны
var ErrUnauthorized = errors.New("unauthorized")

// APIError ответ API с кодом не из диапазона 2xx
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("api error: status %d: %s", e.StatusCode, e.Message)
}

// Is позволяет сравнивать ответ 401 с ErrUnauthorized через errors.Is
func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}

// Client обращается к API консоли. Cookie сессии хранится в cookie jar клиента.
type Client struct {
	http      *resty.Client
	apiPrefix string
}

// Option настраивает Client
type Option func(*Client)

// WithTimeout задает таймаут HTTP-запросов
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.http.SetTimeout(timeout)
	}
}

// New создает клиента для сервера baseURL с префиксом API apiPrefix
func New(baseURL, apiPrefix string, opts ...Option) *Client {
	c := &Client{
		http:      resty.New().SetBaseURL(strings.TrimRight(baseURL, "/")),
		apiPrefix: "/" + strings.Trim(apiPrefix, "/"),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.http.SetHeader("Accept", "application/json")
	return c
}

// Login выполняет вход администратора
func (c *Client) Login(ctx context.Context, username, password string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(models.LoginRequest{Username: username, Password: password}).
		SetError(&models.MessageResponse{}).
		Post("/login")
	return checkResponse(resp, err)
}

// Logout очищает cookie сессии
func (c *Client) Logout(ctx context.Context) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetError(&models.MessageResponse{}).
		Post("/logout")
	return checkResponse(resp, err)
}

// ListUsers возвращает всех пользователей, кроме администратора, как их отдает сервер
func (c *Client) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&users).
		SetError(&models.MessageResponse{}).
		Get(c.apiPrefix + "/users")
	if err := checkResponse(resp, err); err != nil {
		return nil, err
	}
	return users, nil
}

// SaveLinkMappings полностью заменяет блоки ссылок пользователя
func (c *Client) SaveLinkMappings(ctx context.Context, username string, mappings []models.LinkMapping) error {
	if mappings == nil {
		mappings = []models.LinkMapping{}
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("username", username).
		SetBody(map[string][]models.LinkMapping{"linkMappings": mappings}).
		SetError(&models.MessageResponse{}).
		Post(c.apiPrefix + "/users/{username}")
	return checkResponse(resp, err)
}

func checkResponse(resp *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	if !resp.IsError() {
		return nil
	}

	apiErr := &APIError{StatusCode: resp.StatusCode()}
	if msg, ok := resp.Error().(*models.MessageResponse); ok && msg != nil {
		apiErr.Message = msg.Message
	}
	return apiErr
}

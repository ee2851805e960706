package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/InQaaaaGit/link_admin.git/internal/models"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeMessage(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(models.MessageResponse{Message: msg})
}

// newTestServer поднимает минимальный API с cookie-сессией
func newTestServer(t *testing.T, saved map[string][]models.LinkMapping) *httptest.Server {
	t.Helper()

	authorized := func(r *http.Request) bool {
		c, err := r.Cookie("auth_token")
		return err == nil && c.Value == "logged_in"
	}

	r := chi.NewRouter()
	r.Post("/login", func(w http.ResponseWriter, r *http.Request) {
		var req models.LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Username != "admin" || req.Password != "secret" {
			writeMessage(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "auth_token", Value: "logged_in", Path: "/"})
		writeMessage(w, http.StatusOK, "Login successful")
	})
	r.Post("/logout", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "auth_token", Value: "", Path: "/", MaxAge: -1})
		writeMessage(w, http.StatusOK, "Logged out")
	})
	r.Get("/api/users", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(r) {
			writeMessage(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]models.User{
			{ID: "1", Username: "alice", Preferences: &models.Preferences{LinkMappings: []models.LinkMapping{{Links: "a"}}}},
			{ID: "2", Username: "bob"},
		})
	})
	r.Post("/api/users/{username}", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(r) {
			writeMessage(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		username := chi.URLParam(r, "username")
		if username == "ghost" {
			writeMessage(w, http.StatusNotFound, "User not found.")
			return
		}
		var body struct {
			LinkMappings []models.LinkMapping `json:"linkMappings"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		saved[username] = body.LinkMappings
		writeMessage(w, http.StatusOK, "User updated successfully.")
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_Flow(t *testing.T) {
	saved := make(map[string][]models.LinkMapping)
	srv := newTestServer(t, saved)
	c := New(srv.URL, "api", WithTimeout(5*time.Second))
	ctx := context.Background()

	_, err := c.ListUsers(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)

	require.NoError(t, c.Login(ctx, "admin", "secret"))

	users, err := c.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].Username)
	assert.True(t, users[0].HasMappings())
	assert.False(t, users[1].HasMappings())

	require.NoError(t, c.SaveLinkMappings(ctx, "bob", []models.LinkMapping{{Links: "x"}, {Links: ""}}))
	assert.Equal(t, []models.LinkMapping{{Links: "x"}, {Links: ""}}, saved["bob"])

	require.NoError(t, c.SaveLinkMappings(ctx, "alice", nil))
	assert.NotNil(t, saved["alice"])
	assert.Empty(t, saved["alice"])

	require.NoError(t, c.Logout(ctx))
	_, err = c.ListUsers(ctx)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestClient_Errors(t *testing.T) {
	srv := newTestServer(t, make(map[string][]models.LinkMapping))
	ctx := context.Background()

	tests := []struct {
		name       string
		call       func(c *Client) error
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "wrong password",
			call:       func(c *Client) error { return c.Login(ctx, "admin", "nope") },
			wantStatus: http.StatusUnauthorized,
			wantMsg:    "Invalid credentials",
		},
		{
			name: "unknown user",
			call: func(c *Client) error {
				if err := c.Login(ctx, "admin", "secret"); err != nil {
					return err
				}
				return c.SaveLinkMappings(ctx, "ghost", []models.LinkMapping{{Links: "a"}})
			},
			wantStatus: http.StatusNotFound,
			wantMsg:    "User not found.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call(New(srv.URL, "/api/"))

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.wantStatus, apiErr.StatusCode)
			assert.Equal(t, tt.wantMsg, apiErr.Message)
			assert.Contains(t, apiErr.Error(), tt.wantMsg)
		})
	}
}

func TestClient_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	err := New(url, "/api", WithTimeout(time.Second)).Login(context.Background(), "admin", "secret")

	require.Error(t, err)
	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
	assert.NotErrorIs(t, err, ErrUnauthorized)
}

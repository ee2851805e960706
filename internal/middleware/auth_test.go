package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// mockSessionChecker реализует SessionChecker для тестов
type mockSessionChecker struct {
	fromRequestFunc func(r *http.Request) bool
}

func (m *mockSessionChecker) FromRequest(r *http.Request) bool {
	if m.fromRequestFunc != nil {
		return m.fromRequestFunc(r)
	}
	return false
}

func TestRequireSession(t *testing.T) {
	tests := []struct {
		name       string
		cookie     *http.Cookie
		wantStatus int
		wantBody   string
	}{
		{
			name:       "valid session",
			cookie:     &http.Cookie{Name: "auth_token", Value: "logged_in"},
			wantStatus: http.StatusOK,
			wantBody:   "users",
		},
		{
			name:       "wrong cookie value",
			cookie:     &http.Cookie{Name: "auth_token", Value: "nope"},
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"message":"Unauthorized"}` + "\n",
		},
		{
			name:       "no cookie",
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"message":"Unauthorized"}` + "\n",
		},
	}

	checker := &mockSessionChecker{fromRequestFunc: func(r *http.Request) bool {
		c, err := r.Cookie("auth_token")
		return err == nil && c.Value == "logged_in"
	}}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("users"))
	})
	handler := RequireSession(checker, zap.NewNop())(next)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantBody, w.Body.String())
		})
	}
}

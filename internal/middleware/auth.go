package middleware

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

const unauthorizedMessage = "Unauthorized"

// SessionChecker проверяет cookie сессии в запросе
type SessionChecker interface {
	FromRequest(r *http.Request) bool
}

// RequireSession пропускает запрос дальше только при действующей сессии.
// Иначе отвечает 401 {"message":"Unauthorized"}.
func RequireSession(checker SessionChecker, logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if checker.FromRequest(r) {
				next.ServeHTTP(w, r)
				return
			}

			logger.Debug("Request without valid session",
				zap.String("path", r.URL.Path),
				zap.String("method", r.Method))

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			if err := json.NewEncoder(w).Encode(map[string]string{"message": unauthorizedMessage}); err != nil {
				logger.Error("Error writing unauthorized response", zap.Error(err))
			}
		})
	}
}

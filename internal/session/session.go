// Package session реализует защиту консоли: вход администратора, выход и проверку cookie.
//
// По умолчанию сессия представлена фиксированным значением cookie ("logged_in").
// Если задан секрет, вместо него выдается подписанный JWT; интерфейс Guard при этом не меняется.
package session

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"time"
)

const (
	// CookieName имя cookie, в которой хранится сессия
	CookieName = "auth_token"
	// SentinelValue значение cookie, означающее "вход выполнен"
	SentinelValue = "logged_in"
	// DefaultTTL время жизни сессии по умолчанию
	DefaultTTL = time.Hour
)

// ErrInvalidCredentials возвращается при неверной паре логин/пароль.
// Ошибка не сообщает, какое именно поле не совпало.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Credentials учетные данные администратора
type Credentials struct {
	Username string
	Password string
}

// Session выданная или очищенная сессия
type Session struct {
	Token  string
	MaxAge time.Duration
}

// Cookie строит cookie для ответа. Нулевой MaxAge означает удаление cookie.
func (s Session) Cookie() *http.Cookie {
	cookie := &http.Cookie{
		Name:     CookieName,
		Value:    s.Token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if s.MaxAge > 0 {
		cookie.MaxAge = int(s.MaxAge / time.Second)
		cookie.Expires = time.Now().Add(s.MaxAge)
	} else {
		cookie.MaxAge = -1
		cookie.Expires = time.Unix(0, 0)
	}
	return cookie
}

// tokenIssuer выдает и проверяет значения cookie
type tokenIssuer interface {
	Issue(subject string, ttl time.Duration) (string, error)
	Verify(token string) bool
}

// Guard проверяет учетные данные и cookie сессии
type Guard struct {
	creds  Credentials
	ttl    time.Duration
	tokens tokenIssuer
}

// Option настраивает Guard
type Option func(*Guard)

// WithTTL задает время жизни сессии
func WithTTL(ttl time.Duration) Option {
	return func(g *Guard) {
		if ttl > 0 {
			g.ttl = ttl
		}
	}
}

// WithSigningSecret включает выдачу подписанных JWT вместо фиксированного значения
func WithSigningSecret(secret []byte) Option {
	return func(g *Guard) {
		if len(secret) > 0 {
			g.tokens = newSignedTokens(secret)
		}
	}
}

// NewGuard создает Guard для указанных учетных данных
func NewGuard(creds Credentials, opts ...Option) *Guard {
	g := &Guard{
		creds:  creds,
		ttl:    DefaultTTL,
		tokens: sentinelTokens{},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Login сравнивает оба поля с учетными данными администратора с учетом регистра
func (g *Guard) Login(username, password string) (Session, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(g.creds.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(g.creds.Password)) == 1
	if !userOK || !passOK {
		return Session{}, ErrInvalidCredentials
	}

	token, err := g.tokens.Issue(g.creds.Username, g.ttl)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: token, MaxAge: g.ttl}, nil
}

// Logout возвращает пустую сессию, которая очищает cookie
func (g *Guard) Logout() Session {
	return Session{}
}

// IsAuthenticated проверяет значение cookie
func (g *Guard) IsAuthenticated(cookieValue string) bool {
	if cookieValue == "" {
		return false
	}
	return g.tokens.Verify(cookieValue)
}

// FromRequest проверяет cookie сессии в запросе
func (g *Guard) FromRequest(r *http.Request) bool {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return false
	}
	return g.IsAuthenticated(cookie.Value)
}

type sentinelTokens struct{}

func (sentinelTokens) Issue(string, time.Duration) (string, error) {
	return SentinelValue, nil
}

func (sentinelTokens) Verify(token string) bool {
	return token == SentinelValue
}

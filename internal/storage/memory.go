package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/InQaaaaGit/link_admin.git/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MemoryStorage реализует UserStorage с использованием памяти.
// Порядок выдачи совпадает с порядком добавления пользователей.
type MemoryStorage struct {
	mu     sync.RWMutex
	order  []string
	users  map[string]models.User
	logger *zap.Logger
}

// NewMemoryStorage создает новый экземпляр MemoryStorage
func NewMemoryStorage(logger *zap.Logger) *MemoryStorage {
	return &MemoryStorage{
		users:  make(map[string]models.User),
		logger: logger,
	}
}

// PutUser добавляет или заменяет документ пользователя.
// Новому документу без ID присваивается UUID, у существующего ID сохраняется.
func (ms *MemoryStorage) PutUser(ctx context.Context, user models.User) error {
	if user.Username == "" {
		return ErrEmptyUsername
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	existing, exists := ms.users[user.Username]
	if !exists {
		ms.order = append(ms.order, user.Username)
	}
	if user.ID == "" {
		user.ID = existing.ID
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	ms.users[user.Username] = cloneUser(user)
	return nil
}

// ListUsers возвращает всех пользователей, кроме exclude
func (ms *MemoryStorage) ListUsers(ctx context.Context, exclude string) ([]models.User, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	result := make([]models.User, 0, len(ms.order))
	for _, username := range ms.order {
		if username == exclude {
			continue
		}
		result = append(result, cloneUser(ms.users[username]))
	}
	return result, nil
}

// SetLinkMappings заменяет блоки ссылок пользователя
func (ms *MemoryStorage) SetLinkMappings(ctx context.Context, username string, mappings []models.LinkMapping) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	user, exists := ms.users[username]
	if !exists {
		return ErrUserNotFound
	}
	ms.users[username] = user.WithMappings(normalizeMappings(mappings))
	return nil
}

// CheckConnection проверяет доступность хранилища
func (ms *MemoryStorage) CheckConnection(ctx context.Context) error {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	if ms.users == nil {
		return fmt.Errorf("storage is not initialized")
	}
	return nil
}

// Close ничего не делает для хранилища в памяти
func (ms *MemoryStorage) Close() error {
	return nil
}

func cloneUser(user models.User) models.User {
	if user.Preferences == nil {
		return user
	}
	return user.WithMappings(user.Preferences.LinkMappings)
}

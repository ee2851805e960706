package storage

import (
	"context"

	"github.com/InQaaaaGit/link_admin.git/internal/models"
)

// UserStorage интерфейс для хранилища документов пользователей
type UserStorage interface {
	// ListUsers возвращает всех пользователей, кроме exclude, в проекции username + linkMappings.
	// Пользователи без блоков ссылок тоже возвращаются.
	ListUsers(ctx context.Context, exclude string) ([]models.User, error)

	// SetLinkMappings полностью заменяет preferences.linkMappings пользователя username.
	// Возвращает ErrUserNotFound, если документ не найден.
	SetLinkMappings(ctx context.Context, username string, mappings []models.LinkMapping) error

	// Close освобождает соединение с хранилищем
	Close() error
}

// DatabaseChecker интерфейс для проверки соединения с базой данных
type DatabaseChecker interface {
	// CheckConnection проверяет соединение с базой данных
	CheckConnection(ctx context.Context) error
}

// UserSeeder реализуют хранилища, в которые можно добавить пользователя напрямую.
// Пользователи создаются вне консоли, поэтому API этим не пользуется.
type UserSeeder interface {
	PutUser(ctx context.Context, user models.User) error
}

// normalizeMappings гарантирует, что сохраняется пустой массив, а не null
func normalizeMappings(mappings []models.LinkMapping) []models.LinkMapping {
	if mappings == nil {
		return []models.LinkMapping{}
	}
	cp := make([]models.LinkMapping, len(mappings))
	copy(cp, mappings)
	return cp
}

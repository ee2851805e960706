package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/InQaaaaGit/link_admin.git/internal/models"
	"github.com/InQaaaaGit/link_admin.git/internal/storage"
	"go.uber.org/zap"
)

// ErrInvalidLinkMappings возвращается, если linkMappings отсутствует или не является массивом
var ErrInvalidLinkMappings = errors.New("linkMappings must be an array")

// UserService определяет интерфейс сервиса для работы с пользователями консоли
type UserService interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateLinkMappings(ctx context.Context, username string, raw json.RawMessage) error
	CheckConnection(ctx context.Context) error
}

// UserServiceImpl реализует UserService поверх UserStorage
type UserServiceImpl struct {
	storage storage.UserStorage
	logger  *zap.Logger
}

// NewUserService создает новый экземпляр UserService
func NewUserService(store storage.UserStorage, logger *zap.Logger) *UserServiceImpl {
	return &UserServiceImpl{
		storage: store,
		logger:  logger,
	}
}

// ListUsers возвращает всех пользователей, кроме администратора
func (s *UserServiceImpl) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.storage.ListUsers(ctx, models.AdminUsername)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// UpdateLinkMappings проверяет, что raw является массивом, и полностью заменяет блоки ссылок.
// Учетная запись администратора через консоль не редактируется и считается ненайденной.
func (s *UserServiceImpl) UpdateLinkMappings(ctx context.Context, username string, raw json.RawMessage) error {
	mappings, err := ParseLinkMappings(raw)
	if err != nil {
		return err
	}

	if username == models.AdminUsername {
		return storage.ErrUserNotFound
	}

	if err := s.storage.SetLinkMappings(ctx, username, mappings); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return err
		}
		return fmt.Errorf("update linkMappings of %q: %w", username, err)
	}

	s.logger.Info("Link mappings replaced",
		zap.String("username", username),
		zap.Int("blocks", len(mappings)))
	return nil
}

// CheckConnection проверяет соединение с хранилищем, если оно это поддерживает
func (s *UserServiceImpl) CheckConnection(ctx context.Context) error {
	checker, ok := s.storage.(storage.DatabaseChecker)
	if !ok {
		return nil
	}
	return checker.CheckConnection(ctx)
}

// ParseLinkMappings разбирает значение поля linkMappings.
// Проверяется только то, что это JSON-массив объектов; содержимое links не валидируется.
func ParseLinkMappings(raw json.RawMessage) ([]models.LinkMapping, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, ErrInvalidLinkMappings
	}

	mappings := make([]models.LinkMapping, 0)
	if err := json.Unmarshal(trimmed, &mappings); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLinkMappings, err)
	}
	return mappings, nil
}

package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/InQaaaaGit/link_admin.git/internal/models"
	"go.uber.org/zap"
)

// UserRecord представляет запись в файловом хранилище.
// Файл является журналом: каждая строка содержит полный документ пользователя,
// при загрузке побеждает последняя запись для данного username.
type UserRecord struct {
	Username    string              `json:"username"`
	Preferences *models.Preferences `json:"preferences,omitempty"`
}

// FileStorage implements UserStorage using an append-only JSON lines file
type FileStorage struct {
	filePath string
	order    []string
	users    map[string]models.User
	mutex    sync.RWMutex
	file     *os.File
	logger   *zap.Logger
}

// NewFileStorage creates a new FileStorage instance
func NewFileStorage(filePath string, logger *zap.Logger) (*FileStorage, error) {
	file, err := os.OpenFile(filePath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}

	fs := &FileStorage{
		filePath: filePath,
		file:     file,
		users:    make(map[string]models.User),
		logger:   logger,
	}

	if err := fs.loadFromFile(); err != nil {
		if closeErr := file.Close(); closeErr != nil {
			logger.Error("Error closing file after load failure", zap.Error(closeErr))
		}
		return nil, err
	}

	logger.Info("File storage loaded", zap.String("path", filePath), zap.Int("users", len(fs.order)))
	return fs, nil
}

// loadFromFile loads data from the file
func (fs *FileStorage) loadFromFile() error {
	fs.mutex.Lock()
	defer fs.mutex.Unlock()

	if _, err := fs.file.Seek(0, 0); err != nil {
		return fmt.Errorf("error seeking to file start: %w", err)
	}

	decoder := json.NewDecoder(fs.file)
	for decoder.More() {
		var record UserRecord
		if err := decoder.Decode(&record); err != nil {
			return fmt.Errorf("error decoding record: %w", err)
		}
		if record.Username == "" {
			fs.logger.Warn("Skipping record without username")
			continue
		}
		fs.apply(record)
	}

	return nil
}

// apply кладет запись в память; вызывается под блокировкой
func (fs *FileStorage) apply(record UserRecord) {
	if _, exists := fs.users[record.Username]; !exists {
		fs.order = append(fs.order, record.Username)
	}
	fs.users[record.Username] = cloneUser(models.User{
		Username:    record.Username,
		Preferences: record.Preferences,
	})
}

// appendRecord дописывает запись в конец журнала; вызывается под блокировкой
func (fs *FileStorage) appendRecord(record UserRecord) error {
	if fs.file == nil {
		return fmt.Errorf("file is not open")
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("error marshaling user record: %w", err)
	}

	if _, err := fs.file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("error writing to file: %w", err)
	}
	return nil
}

// PutUser добавляет или заменяет документ пользователя
func (fs *FileStorage) PutUser(ctx context.Context, user models.User) error {
	if user.Username == "" {
		return ErrEmptyUsername
	}

	fs.mutex.Lock()
	defer fs.mutex.Unlock()

	record := UserRecord{Username: user.Username, Preferences: user.Preferences}
	if err := fs.appendRecord(record); err != nil {
		return err
	}
	fs.apply(record)
	return nil
}

// ListUsers возвращает всех пользователей, кроме exclude, в порядке первого появления в файле
func (fs *FileStorage) ListUsers(ctx context.Context, exclude string) ([]models.User, error) {
	fs.mutex.RLock()
	defer fs.mutex.RUnlock()

	result := make([]models.User, 0, len(fs.order))
	for _, username := range fs.order {
		if username == exclude {
			continue
		}
		result = append(result, cloneUser(fs.users[username]))
	}
	return result, nil
}

// SetLinkMappings дописывает новую версию документа с замененными блоками ссылок
func (fs *FileStorage) SetLinkMappings(ctx context.Context, username string, mappings []models.LinkMapping) error {
	fs.mutex.Lock()
	defer fs.mutex.Unlock()

	user, exists := fs.users[username]
	if !exists {
		return ErrUserNotFound
	}

	updated := user.WithMappings(normalizeMappings(mappings))
	record := UserRecord{Username: updated.Username, Preferences: updated.Preferences}
	if err := fs.appendRecord(record); err != nil {
		return err
	}
	fs.users[username] = updated
	return nil
}

// Compact перезаписывает журнал так, чтобы на каждого пользователя осталась одна строка
func (fs *FileStorage) Compact() error {
	fs.mutex.Lock()
	defer fs.mutex.Unlock()

	return fs.rewriteFile()
}

// rewriteFile перезаписывает файл с текущими данными из памяти
func (fs *FileStorage) rewriteFile() error {
	if fs.file != nil {
		if err := fs.file.Close(); err != nil {
			return fmt.Errorf("error closing file: %w", err)
		}
		fs.file = nil
	}

	file, err := os.OpenFile(fs.filePath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("error opening file for rewrite: %w", err)
	}

	encoder := json.NewEncoder(file)
	for _, username := range fs.order {
		user := fs.users[username]
		if err := encoder.Encode(UserRecord{Username: user.Username, Preferences: user.Preferences}); err != nil {
			file.Close()
			return fmt.Errorf("error writing record: %w", err)
		}
	}

	if err := file.Close(); err != nil {
		return fmt.Errorf("error closing rewritten file: %w", err)
	}

	fs.file, err = os.OpenFile(fs.filePath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("error reopening file: %w", err)
	}

	return nil
}

// CheckConnection проверяет доступность файла
func (fs *FileStorage) CheckConnection(ctx context.Context) error {
	fs.mutex.RLock()
	defer fs.mutex.RUnlock()

	if fs.file == nil {
		return fmt.Errorf("file is not open")
	}

	return nil
}

// Close закрывает файл
func (fs *FileStorage) Close() error {
	fs.mutex.Lock()
	defer fs.mutex.Unlock()

	if fs.file != nil {
		if err := fs.file.Sync(); err != nil {
			fs.logger.Error("Error syncing file before close", zap.Error(err))
		}

		if err := fs.file.Close(); err != nil {
			return fmt.Errorf("error closing file: %w", err)
		}
		fs.file = nil
	}

	return nil
}

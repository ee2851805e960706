package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/InQaaaaGit/link_admin.git/internal/models"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

// PostgresStorage реализует UserStorage поверх PostgreSQL.
// Документ пользователя хранится в колонке preferences типа JSONB.
type PostgresStorage struct {
	db     *sql.DB
	table  string
	logger *zap.Logger
}

// NewPostgresStorage создает новый экземпляр PostgresStorage
func NewPostgresStorage(ctx context.Context, dsn, table string, logger *zap.Logger) (*PostgresStorage, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("database connection error: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logger.Error("Failed to close DB connection after ping error", zap.Error(closeErr))
		}
		return nil, fmt.Errorf("database connection check error: %w", err)
	}

	ps := &PostgresStorage{
		db:     db,
		table:  pq.QuoteIdentifier(table),
		logger: logger,
	}

	createTableSQL := `CREATE TABLE IF NOT EXISTS ` + ps.table + ` (` +
		`id BIGSERIAL PRIMARY KEY,` +
		`username TEXT NOT NULL UNIQUE,` +
		`preferences JSONB` +
		`)`
	if _, err := db.ExecContext(ctx, createTableSQL); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logger.Error("Failed to close DB connection after table creation error", zap.Error(closeErr))
		}
		return nil, describePQError("table creation error", err)
	}

	return ps, nil
}

// ListUsers возвращает пользователей в порядке создания записей
func (ps *PostgresStorage) ListUsers(ctx context.Context, exclude string) ([]models.User, error) {
	query := `SELECT id, username, preferences IS NOT NULL, preferences -> 'linkMappings' ` +
		`FROM ` + ps.table + ` WHERE username <> $1 ORDER BY id`

	rows, err := ps.db.QueryContext(ctx, query, exclude)
	if err != nil {
		return nil, describePQError("list users error", err)
	}
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		var (
			id             int64
			user           models.User
			hasPreferences bool
			rawMappings    []byte
		)
		if err := rows.Scan(&id, &user.Username, &hasPreferences, &rawMappings); err != nil {
			return nil, fmt.Errorf("scan user row error: %w", err)
		}
		user.ID = strconv.FormatInt(id, 10)

		if hasPreferences {
			user.Preferences = &models.Preferences{}
			if rawMappings != nil {
				if err := json.Unmarshal(rawMappings, &user.Preferences.LinkMappings); err != nil {
					return nil, fmt.Errorf("decode linkMappings of %q: %w", user.Username, err)
				}
			}
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, describePQError("iterate users error", err)
	}

	return users, nil
}

// SetLinkMappings заменяет preferences.linkMappings одним UPDATE
func (ps *PostgresStorage) SetLinkMappings(ctx context.Context, username string, mappings []models.LinkMapping) error {
	payload, err := json.Marshal(normalizeMappings(mappings))
	if err != nil {
		return fmt.Errorf("encode linkMappings: %w", err)
	}

	query := `UPDATE ` + ps.table + ` SET preferences = ` +
		`jsonb_set(COALESCE(preferences, '{}'::jsonb), '{linkMappings}', $2::jsonb, true) ` +
		`WHERE username = $1`

	result, err := ps.db.ExecContext(ctx, query, username, string(payload))
	if err != nil {
		return describePQError("update linkMappings error", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if affected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// PutUser вставляет документ пользователя или заменяет его preferences
func (ps *PostgresStorage) PutUser(ctx context.Context, user models.User) error {
	if user.Username == "" {
		return ErrEmptyUsername
	}

	var preferences any
	if user.Preferences != nil {
		data, err := json.Marshal(user.Preferences)
		if err != nil {
			return fmt.Errorf("encode preferences: %w", err)
		}
		preferences = string(data)
	}

	query := `INSERT INTO ` + ps.table + ` (username, preferences) VALUES ($1, $2::jsonb) ` +
		`ON CONFLICT (username) DO UPDATE SET preferences = EXCLUDED.preferences`
	if _, err := ps.db.ExecContext(ctx, query, user.Username, preferences); err != nil {
		return describePQError("put user error", err)
	}
	return nil
}

// Close закрывает соединение с базой данных
func (ps *PostgresStorage) Close() error {
	return ps.db.Close()
}

// CheckConnection проверяет соединение с базой данных
func (ps *PostgresStorage) CheckConnection(ctx context.Context) error {
	return ps.db.PingContext(ctx)
}

// describePQError добавляет к ошибке код состояния PostgreSQL, если он есть
func describePQError(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return fmt.Errorf("%s: %s (%s): %w", op, pqErr.Code.Name(), pqErr.Code, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

package storage

import (
	"context"
	"testing"

	"github.com/InQaaaaGit/link_admin.git/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func seedUser(username string, links ...string) models.User {
	user := models.User{Username: username}
	if links == nil {
		return user
	}
	mappings := make([]models.LinkMapping, 0, len(links))
	for _, l := range links {
		mappings = append(mappings, models.LinkMapping{Links: l})
	}
	return user.WithMappings(mappings)
}

func TestMemoryStorage_ListUsers(t *testing.T) {
	storage := NewMemoryStorage(zap.NewNop())
	ctx := context.Background()

	require.NoError(t, storage.PutUser(ctx, seedUser("bob", "https://b.com")))
	require.NoError(t, storage.PutUser(ctx, seedUser(models.AdminUsername, "https://admin.com")))
	require.NoError(t, storage.PutUser(ctx, seedUser("carol")))

	users, err := storage.ListUsers(ctx, models.AdminUsername)
	require.NoError(t, err)
	require.Len(t, users, 2)

	// Порядок добавления сохраняется, пользователи без ссылок тоже возвращаются
	assert.Equal(t, "bob", users[0].Username)
	assert.Equal(t, "carol", users[1].Username)
	assert.Nil(t, users[1].Preferences)
}

func TestMemoryStorage_SetLinkMappings(t *testing.T) {
	storage := NewMemoryStorage(zap.NewNop())
	ctx := context.Background()

	require.NoError(t, storage.PutUser(ctx, seedUser("bob", "https://old.com", "https://older.com")))

	err := storage.SetLinkMappings(ctx, "bob", []models.LinkMapping{{Links: "https://new.com"}})
	require.NoError(t, err)

	users, err := storage.ListUsers(ctx, models.AdminUsername)
	require.NoError(t, err)
	assert.Equal(t, []models.LinkMapping{{Links: "https://new.com"}}, users[0].Mappings())

	// Пустой список полностью стирает прежние блоки
	require.NoError(t, storage.SetLinkMappings(ctx, "bob", nil))
	users, err = storage.ListUsers(ctx, models.AdminUsername)
	require.NoError(t, err)
	assert.NotNil(t, users[0].Mappings())
	assert.Empty(t, users[0].Mappings())
}

func TestMemoryStorage_SetLinkMappingsUnknownUser(t *testing.T) {
	storage := NewMemoryStorage(zap.NewNop())

	err := storage.SetLinkMappings(context.Background(), "alice", []models.LinkMapping{{Links: "https://a.com"}})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestMemoryStorage_ReturnsCopies(t *testing.T) {
	storage := NewMemoryStorage(zap.NewNop())
	ctx := context.Background()
	require.NoError(t, storage.PutUser(ctx, seedUser("bob", "https://b.com")))

	users, err := storage.ListUsers(ctx, "")
	require.NoError(t, err)
	users[0].Preferences.LinkMappings[0].Links = "mutated"

	again, err := storage.ListUsers(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "https://b.com", again[0].Mappings()[0].Links)
}

func TestMemoryStorage_PutUserEmptyUsername(t *testing.T) {
	storage := NewMemoryStorage(zap.NewNop())
	assert.ErrorIs(t, storage.PutUser(context.Background(), models.User{}), ErrEmptyUsername)
}

func TestMemoryStorage_CheckConnection(t *testing.T) {
	storage := NewMemoryStorage(zap.NewNop())
	assert.NoError(t, storage.CheckConnection(context.Background()))
	assert.NoError(t, storage.Close())
}

func TestMemoryStorage_AssignsID(t *testing.T) {
	storage := NewMemoryStorage(zap.NewNop())
	ctx := context.Background()

	require.NoError(t, storage.PutUser(ctx, seedUser("bob")))
	require.NoError(t, storage.PutUser(ctx, models.User{ID: "fixed", Username: "carol"}))

	users, err := storage.ListUsers(ctx, "")
	require.NoError(t, err)
	firstID := users[0].ID
	assert.NotEmpty(t, firstID)
	assert.Equal(t, "fixed", users[1].ID)

	// Повторная запись документа сохраняет его ID
	require.NoError(t, storage.PutUser(ctx, seedUser("bob", "https://b.com")))
	users, err = storage.ListUsers(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, firstID, users[0].ID)
}

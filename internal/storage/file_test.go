package storage

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/InQaaaaGit/link_admin.git/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func createTempFile(t *testing.T) string {
	tempDir := t.TempDir()
	return filepath.Join(tempDir, "test_users.json")
}

func countLines(t *testing.T, path string) int {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	lines := 0
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines++
	}
	require.NoError(t, scanner.Err())
	return lines
}

func TestFileStorage_LoadsExistingFile(t *testing.T) {
	tempFile := createTempFile(t)
	content := `{"username":"bob","preferences":{"linkMappings":[{"links":"https://b.com"}]}}
{"username":"admin","preferences":{"linkMappings":[{"links":"https://admin.com"}]}}
{"username":"carol"}
{"username":"bob","preferences":{"linkMappings":[{"links":"https://b2.com"}]}}
`
	require.NoError(t, os.WriteFile(tempFile, []byte(content), 0644))

	storage, err := NewFileStorage(tempFile, zap.NewNop())
	require.NoError(t, err)
	defer storage.Close()

	users, err := storage.ListUsers(context.Background(), models.AdminUsername)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "bob", users[0].Username)
	assert.Equal(t, "https://b2.com", users[0].Mappings()[0].Links)
	assert.Equal(t, "carol", users[1].Username)
}

func TestFileStorage_InvalidFile(t *testing.T) {
	tempFile := createTempFile(t)
	require.NoError(t, os.WriteFile(tempFile, []byte(`{"username": broken`), 0644))

	_, err := NewFileStorage(tempFile, zap.NewNop())
	assert.Error(t, err)
}

func TestFileStorage_Persistence(t *testing.T) {
	logger := zap.NewNop()
	tempFile := createTempFile(t)
	ctx := context.Background()

	storage, err := NewFileStorage(tempFile, logger)
	require.NoError(t, err)
	require.NoError(t, storage.PutUser(ctx, seedUser("bob", "https://b.com")))
	require.NoError(t, storage.SetLinkMappings(ctx, "bob", []models.LinkMapping{{Links: "a"}, {Links: "b"}}))
	require.NoError(t, storage.Close())

	reopened, err := NewFileStorage(tempFile, logger)
	require.NoError(t, err)
	defer reopened.Close()

	users, err := reopened.ListUsers(ctx, models.AdminUsername)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, []models.LinkMapping{{Links: "a"}, {Links: "b"}}, users[0].Mappings())
}

func TestFileStorage_SetLinkMappingsUnknownUser(t *testing.T) {
	storage, err := NewFileStorage(createTempFile(t), zap.NewNop())
	require.NoError(t, err)
	defer storage.Close()

	err = storage.SetLinkMappings(context.Background(), "alice", nil)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestFileStorage_Compact(t *testing.T) {
	tempFile := createTempFile(t)
	ctx := context.Background()

	storage, err := NewFileStorage(tempFile, zap.NewNop())
	require.NoError(t, err)
	defer storage.Close()

	require.NoError(t, storage.PutUser(ctx, seedUser("bob", "1")))
	require.NoError(t, storage.PutUser(ctx, seedUser("carol", "2")))
	require.NoError(t, storage.SetLinkMappings(ctx, "bob", []models.LinkMapping{{Links: "3"}}))
	assert.Equal(t, 3, countLines(t, tempFile))

	require.NoError(t, storage.Compact())
	assert.Equal(t, 2, countLines(t, tempFile))

	// После сжатия запись продолжает работать
	require.NoError(t, storage.SetLinkMappings(ctx, "carol", []models.LinkMapping{{Links: "4"}}))
	assert.Equal(t, 3, countLines(t, tempFile))
	assert.NoError(t, storage.CheckConnection(ctx))
}

func TestFileStorage_ClosedFile(t *testing.T) {
	storage, err := NewFileStorage(createTempFile(t), zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, storage.Close())

	assert.Error(t, storage.CheckConnection(context.Background()))
	assert.Error(t, storage.PutUser(context.Background(), seedUser("bob")))
}

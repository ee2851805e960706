package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRun_StopsOnCancel(t *testing.T) {
	t.Setenv("ADMIN_USER", "admin")
	t.Setenv("ADMIN_PASSWORD", "secret")
	t.Setenv("LOG_LEVEL", "error")

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	err := run(ctx, []string{"-a", "127.0.0.1:0"})

	assert.NoError(t, err)
}

func TestRun_InvalidConfig(t *testing.T) {
	t.Setenv("ADMIN_USER", "")
	t.Setenv("ADMIN_PASSWORD", "")

	err := run(context.Background(), nil)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "error loading config")
}

func TestRun_StorageUnavailable(t *testing.T) {
	t.Setenv("ADMIN_USER", "admin")
	t.Setenv("ADMIN_PASSWORD", "secret")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("FILE_STORAGE_PATH", t.TempDir()+"/missing-dir/users.jsonl")

	err := run(context.Background(), []string{"-a", "127.0.0.1:0"})

	assert.Error(t, err)
}

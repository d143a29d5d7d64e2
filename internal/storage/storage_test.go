package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iridescentding/memoq-tickets-system/internal/config"
)

func TestNewFromConfig(t *testing.T) {
	backend, err := NewFromConfig(config.StorageConfig{Backend: "local", LocalDir: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &LocalDisk{}, backend)

	// Empty selects the local default.
	_, err = NewFromConfig(config.StorageConfig{LocalDir: t.TempDir()})
	assert.NoError(t, err)

	_, err = NewFromConfig(config.StorageConfig{Backend: "s3"})
	assert.Error(t, err)
}

func TestLocalDiskSaveAndDelete(t *testing.T) {
	dir := t.TempDir()
	backend, err := NewFromConfig(config.StorageConfig{LocalDir: dir, BaseURL: "/files"})
	require.NoError(t, err)

	key := "tickets/10/report.txt"
	require.NoError(t, backend.Save(context.Background(), key, strings.NewReader("contents")))

	raw, err := os.ReadFile(filepath.Join(dir, "tickets", "10", "report.txt"))
	require.NoError(t, err)
	assert.Equal(t, "contents", string(raw))

	assert.Equal(t, "/files/tickets/10/report.txt", backend.URLFor(key))

	require.NoError(t, backend.Delete(context.Background(), key))
	_, err = os.Stat(filepath.Join(dir, "tickets", "10", "report.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestLocalDiskValidate(t *testing.T) {
	backend := &LocalDisk{maxSize: 100}

	tests := []struct {
		name     string
		fileName string
		size     int64
		wantErr  bool
	}{
		{"ok", "report.pdf", 50, false},
		{"at limit", "report.pdf", 100, false},
		{"over limit", "report.pdf", 101, true},
		{"empty name", "  ", 50, true},
		{"zero size", "report.pdf", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := backend.Validate(tt.fileName, tt.size)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

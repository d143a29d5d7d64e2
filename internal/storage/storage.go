// Package storage abstracts attachment file storage behind a single
// capability so backends are selected at process start by configuration,
// never by call-site branching.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/iridescentding/memoq-tickets-system/internal/config"
)

// Backend is the attachment storage capability.
type Backend interface {
	Save(ctx context.Context, key string, r io.Reader) error
	URLFor(key string) string
	Delete(ctx context.Context, key string) error
	Validate(fileName string, sizeBytes int64) error
}

// NewFromConfig constructs the configured backend once, at startup.
func NewFromConfig(cfg config.StorageConfig) (Backend, error) {
	switch cfg.Backend {
	case "", "local":
		return &LocalDisk{dir: cfg.LocalDir, baseURL: cfg.BaseURL, maxSize: cfg.MaxSizeBytes}, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// LocalDisk stores attachments on the local filesystem.
type LocalDisk struct {
	dir     string
	baseURL string
	maxSize int64
}

func (l *LocalDisk) Save(ctx context.Context, key string, r io.Reader) error {
	path := filepath.Join(l.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(f, r)
	return err
}

func (l *LocalDisk) URLFor(key string) string {
	return strings.TrimRight(l.baseURL, "/") + "/" + strings.TrimLeft(key, "/")
}

func (l *LocalDisk) Delete(ctx context.Context, key string) error {
	return os.Remove(filepath.Join(l.dir, filepath.FromSlash(key)))
}

func (l *LocalDisk) Validate(fileName string, sizeBytes int64) error {
	if strings.TrimSpace(fileName) == "" {
		return fmt.Errorf("file name required")
	}
	if sizeBytes <= 0 {
		return fmt.Errorf("file size must be positive")
	}
	if l.maxSize > 0 && sizeBytes > l.maxSize {
		return fmt.Errorf("file exceeds maximum size of %d bytes", l.maxSize)
	}
	return nil
}

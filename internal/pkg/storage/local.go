package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalBackend writes files into a directory served under a URL prefix.
type LocalBackend struct {
	dir    string
	prefix string
}

// NewLocalBackend creates dir if needed.
func NewLocalBackend(dir, publicPrefix string) (*LocalBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalBackend{dir: dir, prefix: strings.TrimRight(publicPrefix, "/")}, nil
}

// Dir is the directory files are written to.
func (b *LocalBackend) Dir() string { return b.dir }

func (b *LocalBackend) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(b.dir, key), data, 0o644); err != nil {
		return "", err
	}
	return b.prefix + "/" + key, nil
}

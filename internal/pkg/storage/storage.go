// Package storage validates and persists uploaded files (resumes, profile
// photos, report proofs) on local disk or S3.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"
)

// Kind names an upload slot with its own policy.
type Kind string

const (
	KindResume Kind = "resume"
	KindPhoto  Kind = "photo"
	KindProof  Kind = "proof"
)

var (
	// ErrTooLarge is returned when a file exceeds its policy size.
	ErrTooLarge = errors.New("file too large")
	// ErrUnsupportedType is returned when a file's content is not allowed.
	ErrUnsupportedType = errors.New("unsupported file type")
)

// Policy limits what a Kind accepts.
type Policy struct {
	MaxBytes int64
	// Types maps accepted sniffed content types to the extension stored.
	Types map[string]string
}

// Policies holds the upload rules per kind.
var Policies = map[Kind]Policy{
	KindResume: {
		MaxBytes: 5 << 20,
		Types: map[string]string{
			"application/pdf": ".pdf",
			"image/jpeg":      ".jpg",
			"image/png":       ".png",
		},
	},
	KindPhoto: {
		MaxBytes: 2 << 20,
		Types: map[string]string{
			"image/jpeg": ".jpg",
			"image/png":  ".png",
			"image/webp": ".webp",
		},
	},
	KindProof: {
		MaxBytes: 10 << 20,
		Types: map[string]string{
			"image/jpeg": ".jpg",
			"image/png":  ".png",
			"image/webp": ".webp",
			"video/mp4":  ".mp4",
			"video/webm": ".webm",
		},
	},
}

// File is an upload as received from a client.
type File struct {
	Name string
	Body io.Reader
}

// Backend writes validated bytes under key and returns the public reference.
type Backend interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
}

// Manager applies policies and names files before handing them to a Backend.
type Manager struct {
	backend Backend
	now     func() time.Time
}

// NewManager wraps backend.
func NewManager(backend Backend) *Manager {
	return &Manager{backend: backend, now: time.Now}
}

// Save validates f against kind's policy and stores it as
// "<unix-ms>-<uuid><ext>". It returns the stored file's public reference.
func (m *Manager) Save(ctx context.Context, kind Kind, f File) (string, error) {
	policy, ok := Policies[kind]
	if !ok {
		return "", fmt.Errorf("unknown upload kind %q", kind)
	}
	data, err := io.ReadAll(io.LimitReader(f.Body, policy.MaxBytes+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > policy.MaxBytes {
		return "", fmt.Errorf("%w: %s limit is %d MB", ErrTooLarge, kind, policy.MaxBytes>>20)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty file", ErrUnsupportedType)
	}

	contentType := sniff(data)
	ext, ok := policy.Types[contentType]
	if !ok {
		return "", fmt.Errorf("%w: %s does not accept %s", ErrUnsupportedType, kind, contentType)
	}
	if contentType == "application/pdf" {
		if _, err := pdf.NewReader(bytes.NewReader(data), int64(len(data))); err != nil {
			return "", fmt.Errorf("%w: unreadable pdf", ErrUnsupportedType)
		}
	}
	if orig := strings.ToLower(filepath.Ext(f.Name)); orig == ".jpeg" && ext == ".jpg" {
		ext = orig
	}

	key := fmt.Sprintf("%d-%s%s", m.now().UnixMilli(), uuid.NewString(), ext)
	ref, err := m.backend.Put(ctx, key, contentType, data)
	if err != nil {
		return "", fmt.Errorf("store upload: %w", err)
	}
	return ref, nil
}

func sniff(data []byte) string {
	ct := http.DetectContentType(data)
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = ct[:i]
	}
	return strings.TrimSpace(ct)
}

// Package service holds the JobLink workflows: registration and login,
// admin moderation, and the job and application lifecycle.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/Aman-1206/Joblink/internal/pkg/notify"
	"github.com/Aman-1206/Joblink/internal/pkg/storage"
	"github.com/Aman-1206/Joblink/internal/store"

	"golang.org/x/crypto/bcrypt"
)

// TokenIssuer signs session tokens.
type TokenIssuer interface {
	Issue(userID uint, role string) (string, error)
}

// Cooldown throttles code requests per email.
type Cooldown interface {
	Hit(ctx context.Context, key string) (bool, error)
	Reset(ctx context.Context, key string) error
}

// Uploader stores an uploaded file and returns its public reference.
type Uploader interface {
	Save(ctx context.Context, kind storage.Kind, f storage.File) (string, error)
}

// Deps wires a Service. Store and Tokens are required.
type Deps struct {
	Store    store.Store
	Tokens   TokenIssuer
	Sender   notify.CodeSender
	Cooldown Cooldown
	Uploader Uploader
	Logger   *slog.Logger

	// CodeTTL is how long a registration code stays valid. Defaults to 10m.
	CodeTTL time.Duration
	// HashCost is the bcrypt cost. Defaults to bcrypt.DefaultCost.
	HashCost int
}

// Service implements every workflow over one store.
type Service struct {
	store    store.Store
	tokens   TokenIssuer
	sender   notify.CodeSender
	cooldown Cooldown
	uploader Uploader
	logger   *slog.Logger
	codeTTL  time.Duration
	hashCost int
	now      func() time.Time
}

// New builds a Service from deps.
func New(deps Deps) *Service {
	ttl := deps.CodeTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	cost := deps.HashCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Service{
		store:    deps.Store,
		tokens:   deps.Tokens,
		sender:   deps.Sender,
		cooldown: deps.Cooldown,
		uploader: deps.Uploader,
		logger:   deps.Logger,
		codeTTL:  ttl,
		hashCost: cost,
		now:      time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// normalizeQuery prepares a search term for matches.
func normalizeQuery(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}

// matches reports whether any field contains q, ignoring case. An empty q
// matches everything.
func matches(q string, fields ...string) bool {
	if q == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

func filter[T any](rows []T, q string, fields func(T) []string) []T {
	q = normalizeQuery(q)
	if q == "" {
		return rows
	}
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		if matches(q, fields(r)...) {
			out = append(out, r)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// uploadErr turns storage policy failures into validation errors.
func uploadErr(err error) error {
	if errors.Is(err, storage.ErrTooLarge) || errors.Is(err, storage.ErrUnsupportedType) {
		return Validation(err.Error())
	}
	return err
}

func (s *Service) save(ctx context.Context, kind storage.Kind, f *storage.File) (string, error) {
	if f == nil {
		return "", nil
	}
	if s.uploader == nil {
		return "", errors.New("file uploads are not configured")
	}
	ref, err := s.uploader.Save(ctx, kind, *f)
	if err != nil {
		return "", uploadErr(err)
	}
	return ref, nil
}

package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"

	"github.com/Aman-1206/Joblink/internal/model"
	"github.com/Aman-1206/Joblink/internal/pkg/metrics"
	"github.com/Aman-1206/Joblink/internal/pkg/storage"
	"github.com/Aman-1206/Joblink/internal/store"

	"golang.org/x/crypto/bcrypt"
)

// Profile is the optional signup data a client supplies.
type Profile struct {
	FullName    string `json:"fullName,omitempty"`
	Phone       string `json:"phone,omitempty"`
	CompanyName string `json:"companyName,omitempty"`
	GSTNumber   string `json:"gstNumber,omitempty"`
}

// orElse fills empty fields of p from fallback.
func (p Profile) orElse(fallback Profile) Profile {
	return Profile{
		FullName:    firstNonEmpty(p.FullName, fallback.FullName),
		Phone:       firstNonEmpty(p.Phone, fallback.Phone),
		CompanyName: firstNonEmpty(p.CompanyName, fallback.CompanyName),
		GSTNumber:   firstNonEmpty(p.GSTNumber, fallback.GSTNumber),
	}
}

// AuthResult is the outcome of a registration or login. Pending results
// carry neither user nor token.
type AuthResult struct {
	User    *model.User
	Token   string
	Pending bool
}

// VerifyInput is a code-verified registration request.
type VerifyInput struct {
	Email    string
	Code     string
	Password string
	Role     string
	Profile  Profile
}

// RequestCode emails a fresh six digit registration code to email,
// replacing any earlier code. profile, when given, is stored with the code
// and used for fields the verification request leaves empty.
func (s *Service) RequestCode(ctx context.Context, email, role string, profile *Profile) error {
	email = normalizeEmail(email)
	if email == "" || role == "" {
		return Validation("Email and role required")
	}
	if role != model.RoleStudent && role != model.RoleHR {
		return ErrInvalidRole
	}

	taken, err := s.store.EmailTaken(ctx, email)
	if err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	if taken {
		return ErrAlreadyRegistered
	}

	if s.cooldown != nil {
		ok, err := s.cooldown.Hit(ctx, email)
		if err != nil {
			if s.logger != nil {
				s.logger.Warn("code cooldown check failed", slog.String("email", email), slog.String("error", err.Error()))
			}
		} else if !ok {
			return ErrTooManyRequests
		}
	}

	code, err := generateCode(6)
	if err != nil {
		return fmt.Errorf("generate code: %w", err)
	}
	row := &model.OneTimeCode{
		Email:     email,
		Code:      code,
		Role:      role,
		ExpiresAt: s.now().Add(s.codeTTL),
	}
	if profile != nil {
		payload, err := json.Marshal(profile)
		if err != nil {
			return fmt.Errorf("encode profile: %w", err)
		}
		row.Payload = string(payload)
	}
	if err := s.store.ReplaceCode(ctx, row); err != nil {
		return fmt.Errorf("store code: %w", err)
	}

	if s.sender == nil {
		metrics.CodeDeliveriesTotal.WithLabelValues("failed").Inc()
		return ErrDelivery
	}
	if err := s.sender.SendCode(ctx, email, code, role); err != nil {
		metrics.CodeDeliveriesTotal.WithLabelValues("failed").Inc()
		if s.cooldown != nil {
			_ = s.cooldown.Reset(ctx, email)
		}
		if s.logger != nil {
			s.logger.Warn("send verification code failed", slog.String("email", email), slog.String("error", err.Error()))
		}
		return ErrDelivery
	}
	metrics.CodeDeliveriesTotal.WithLabelValues("sent").Inc()
	if s.logger != nil {
		s.logger.Info("verification code sent", slog.String("email", email), slog.String("role", role))
	}
	return nil
}

// VerifyAndRegister consumes a registration code and creates the account.
// HR signups on an unknown domain produce a pending result.
func (s *Service) VerifyAndRegister(ctx context.Context, in VerifyInput) (*AuthResult, error) {
	email := normalizeEmail(in.Email)
	code := strings.TrimSpace(in.Code)
	if email == "" || code == "" || in.Password == "" {
		return nil, Validation("Email, OTP and password required")
	}
	role := in.Role
	if role == "" {
		role = model.RoleStudent
	}
	if role != model.RoleStudent && role != model.RoleHR {
		return nil, ErrInvalidRole
	}

	row, err := s.store.LatestCode(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrCodeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load code: %w", err)
	}
	if row.Code != code {
		return nil, ErrCodeMismatch
	}
	if row.Expired(s.now()) {
		if err := s.store.DeleteCodes(ctx, email); err != nil {
			return nil, fmt.Errorf("delete expired code: %w", err)
		}
		return nil, ErrCodeExpired
	}
	if row.Role != role {
		return nil, ErrRoleMismatch
	}
	if err := s.store.DeleteCodes(ctx, email); err != nil {
		return nil, fmt.Errorf("delete code: %w", err)
	}

	profile := in.Profile
	if row.Payload != "" {
		var stored Profile
		if err := json.Unmarshal([]byte(row.Payload), &stored); err == nil {
			profile = profile.orElse(stored)
		} else if s.logger != nil {
			s.logger.Warn("ignore malformed code payload", slog.String("email", email), slog.String("error", err.Error()))
		}
	}

	hash, err := s.hash(in.Password)
	if err != nil {
		return nil, err
	}
	if role == model.RoleStudent {
		return s.registerStudent(ctx, email, hash, profile)
	}
	return s.resolveHRSignup(ctx, email, hash, profile)
}

// RegisterStudent creates an active student without a code step.
func (s *Service) RegisterStudent(ctx context.Context, email, password string, profile Profile) (*AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, Validation("Email and password required")
	}
	hash, err := s.hash(password)
	if err != nil {
		return nil, err
	}
	return s.registerStudent(ctx, email, hash, profile)
}

// RegisterHR registers an HR account without a code step, following the
// same domain rules as VerifyAndRegister.
func (s *Service) RegisterHR(ctx context.Context, email, password string, profile Profile) (*AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, Validation("Email and password required")
	}
	hash, err := s.hash(password)
	if err != nil {
		return nil, err
	}
	return s.resolveHRSignup(ctx, email, hash, profile)
}

func (s *Service) registerStudent(ctx context.Context, email, hash string, p Profile) (*AuthResult, error) {
	u := &model.User{
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleStudent,
		Status:       model.StatusActive,
		FullName:     p.FullName,
		Phone:        p.Phone,
	}
	if err := s.insertUser(ctx, u); err != nil {
		return nil, err
	}
	metrics.RegistrationsTotal.WithLabelValues(model.RoleStudent, model.StatusActive).Inc()
	return s.authResult(u)
}

// resolveHRSignup decides between an active HR account and a pending
// approval. An allowlisted email domain activates the account under the
// domain's company name; any other domain queues it for an admin.
func (s *Service) resolveHRSignup(ctx context.Context, email, hash string, p Profile) (*AuthResult, error) {
	d, err := s.store.DomainByName(ctx, emailDomain(email))
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("lookup domain: %w", err)
	}

	if d != nil {
		u := &model.User{
			Email:        email,
			PasswordHash: hash,
			Role:         model.RoleHR,
			Status:       model.StatusActive,
			FullName:     p.FullName,
			Phone:        p.Phone,
			CompanyName:  d.CompanyName,
			GSTNumber:    p.GSTNumber,
		}
		if err := s.insertUser(ctx, u); err != nil {
			return nil, err
		}
		metrics.RegistrationsTotal.WithLabelValues(model.RoleHR, model.StatusActive).Inc()
		if s.logger != nil {
			s.logger.Info("hr auto-approved", slog.String("email", email), slog.String("company", d.CompanyName))
		}
		return s.authResult(u)
	}

	pending := &model.PendingHrApproval{
		Email:        email,
		PasswordHash: hash,
		FullName:     p.FullName,
		Phone:        p.Phone,
		CompanyName:  p.CompanyName,
		GSTNumber:    p.GSTNumber,
	}
	err = s.store.Tx(ctx, func(tx store.Store) error {
		if _, err := tx.UserByEmail(ctx, email); err == nil {
			return ErrAlreadyRegistered
		} else if !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("check user: %w", err)
		}
		if err := tx.CreatePending(ctx, pending); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				return ErrAlreadyRegistered
			}
			return fmt.Errorf("create pending: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.RegistrationsTotal.WithLabelValues(model.RoleHR, model.StatusPending).Inc()
	if s.logger != nil {
		s.logger.Info("hr signup pending approval", slog.String("email", email))
	}
	return &AuthResult{Pending: true}, nil
}

// insertUser creates u unless the email belongs to a user or pending signup.
func (s *Service) insertUser(ctx context.Context, u *model.User) error {
	return s.store.Tx(ctx, func(tx store.Store) error {
		taken, err := tx.EmailTaken(ctx, u.Email)
		if err != nil {
			return fmt.Errorf("check email: %w", err)
		}
		if taken {
			return ErrAlreadyRegistered
		}
		if err := tx.CreateUser(ctx, u); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				return ErrAlreadyRegistered
			}
			return fmt.Errorf("create user: %w", err)
		}
		return nil
	})
}

// Login checks credentials and issues a token. When role is given the
// account must have that role.
func (s *Service) Login(ctx context.Context, email, password, role string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, Validation("Email and password required")
	}
	u, err := s.store.UserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	if role != "" && u.Role != role {
		return nil, Auth("Please login as " + u.Role)
	}
	if err := checkStatus(u); err != nil {
		return nil, err
	}
	if s.logger != nil {
		s.logger.Info("user logged in", slog.String("email", email), slog.String("role", u.Role))
	}
	return s.authResult(u)
}

func checkStatus(u *model.User) error {
	switch {
	case u.Status == model.StatusRejected:
		return ErrAccountRejected
	case u.Status == model.StatusPending && u.Role == model.RoleHR:
		return ErrAccountPending
	}
	return nil
}

// Me returns the caller's account.
func (s *Service) Me(ctx context.Context, userID uint) (*model.User, error) {
	u, err := s.store.UserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	return u, nil
}

// UpdateProfile changes the caller's name and phone. Nil fields are kept.
func (s *Service) UpdateProfile(ctx context.Context, userID uint, fullName, phone *string) (*model.User, error) {
	err := s.store.UpdateProfile(ctx, userID, store.ProfileUpdate{FullName: fullName, Phone: phone})
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return s.Me(ctx, userID)
}

// SetProfilePhoto stores photo and points the caller's profile at it.
func (s *Service) SetProfilePhoto(ctx context.Context, userID uint, photo storage.File) (*model.User, error) {
	if _, err := s.Me(ctx, userID); err != nil {
		return nil, err
	}
	ref, err := s.save(ctx, storage.KindPhoto, &photo)
	if err != nil {
		return nil, err
	}
	if err := s.store.UpdateProfile(ctx, userID, store.ProfileUpdate{ProfilePhoto: &ref}); err != nil {
		return nil, fmt.Errorf("update photo: %w", err)
	}
	return s.Me(ctx, userID)
}

// LoginExternal signs in a user authenticated by an identity provider.
// It links an existing account by email, then by external id, and
// otherwise creates an active student.
func (s *Service) LoginExternal(ctx context.Context, externalID, email, name string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if externalID == "" || email == "" {
		return nil, Validation("No email from identity provider")
	}

	u, err := s.store.UserByEmail(ctx, email)
	switch {
	case err == nil:
		if u.ExternalID == nil || *u.ExternalID != externalID {
			if err := s.store.UpdateProfile(ctx, u.ID, store.ProfileUpdate{ExternalID: &externalID}); err != nil {
				return nil, fmt.Errorf("link external id: %w", err)
			}
		}
	case errors.Is(err, store.ErrNotFound):
		u, err = s.store.UserByExternalID(ctx, externalID)
		if errors.Is(err, store.ErrNotFound) {
			return s.createExternalStudent(ctx, externalID, email, name)
		}
		if err != nil {
			return nil, fmt.Errorf("load user by external id: %w", err)
		}
	default:
		return nil, fmt.Errorf("load user: %w", err)
	}

	if err := checkStatus(u); err != nil {
		return nil, err
	}
	return s.authResult(u)
}

func (s *Service) createExternalStudent(ctx context.Context, externalID, email, name string) (*AuthResult, error) {
	secret := make([]byte, 24)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("generate password: %w", err)
	}
	hash, err := s.hash(hex.EncodeToString(secret))
	if err != nil {
		return nil, err
	}
	ext := externalID
	u := &model.User{
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleStudent,
		Status:       model.StatusActive,
		FullName:     name,
		ExternalID:   &ext,
	}
	if err := s.insertUser(ctx, u); err != nil {
		return nil, err
	}
	metrics.RegistrationsTotal.WithLabelValues(model.RoleStudent, "external").Inc()
	return s.authResult(u)
}

func (s *Service) authResult(u *model.User) (*AuthResult, error) {
	tok, err := s.tokens.Issue(u.ID, u.Role)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &AuthResult{User: u, Token: tok}, nil
}

func (s *Service) hash(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

// emailDomain returns the lowercase part after "@", or "" when email has
// no single "@".
func emailDomain(email string) string {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return ""
	}
	return strings.ToLower(parts[1])
}

// generateCode returns n uniformly random decimal digits.
func generateCode(n int) (string, error) {
	if n <= 0 || n > 18 {
		return "", fmt.Errorf("invalid code length %d", n)
	}
	limit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
	v, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", n, v.Int64()), nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Aman-1206/Joblink/internal/model"
	"github.com/Aman-1206/Joblink/internal/pkg/metrics"
	"github.com/Aman-1206/Joblink/internal/store"
)

// ApprovePending turns a pending HR signup into an active HR account.
//
// The pending row is locked for the duration of the transaction. If a user
// with the same email already exists the stale pending row is still
// removed and ErrAlreadyRegistered is returned.
func (s *Service) ApprovePending(ctx context.Context, id uint) (*model.User, error) {
	var (
		created  *model.User
		existing bool
	)
	err := s.store.Tx(ctx, func(tx store.Store) error {
		p, err := tx.PendingByID(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			return ErrRequestNotFound
		}
		if err != nil {
			return fmt.Errorf("load pending: %w", err)
		}

		if _, err := tx.UserByEmail(ctx, p.Email); err == nil {
			existing = true
			return tx.DeletePending(ctx, p.ID)
		} else if !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("check user: %w", err)
		}

		u := &model.User{
			Email:        p.Email,
			PasswordHash: p.PasswordHash,
			Role:         model.RoleHR,
			Status:       model.StatusActive,
			FullName:     p.FullName,
			Phone:        p.Phone,
			CompanyName:  p.CompanyName,
			GSTNumber:    p.GSTNumber,
		}
		if err := tx.CreateUser(ctx, u); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				return ErrAlreadyRegistered
			}
			return fmt.Errorf("create hr: %w", err)
		}
		if err := tx.DeletePending(ctx, p.ID); err != nil {
			return fmt.Errorf("delete pending: %w", err)
		}
		created = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	if existing {
		if s.logger != nil {
			s.logger.Warn("pending hr already registered, request removed", slog.Int("pending_id", int(id)))
		}
		return nil, ErrAlreadyRegistered
	}
	metrics.ModerationActionsTotal.WithLabelValues("approve").Inc()
	if s.logger != nil {
		s.logger.Info("hr approved", slog.String("email", created.Email), slog.Int("user_id", int(created.ID)))
	}
	return created, nil
}

// RejectPending discards a pending HR signup.
func (s *Service) RejectPending(ctx context.Context, id uint) error {
	err := s.store.DeletePending(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrRequestNotFound
	}
	if err != nil {
		return fmt.Errorf("delete pending: %w", err)
	}
	metrics.ModerationActionsTotal.WithLabelValues("reject").Inc()
	return nil
}

// DeleteJob removes a job with its applications, reports and bookmarks.
// A non-zero ownerID restricts the delete to that HR user's jobs.
func (s *Service) DeleteJob(ctx context.Context, jobID, ownerID uint) error {
	err := s.store.Tx(ctx, func(tx store.Store) error {
		j, err := tx.JobByID(ctx, jobID)
		if errors.Is(err, store.ErrNotFound) {
			return ErrJobNotFound
		}
		if err != nil {
			return fmt.Errorf("load job: %w", err)
		}
		if ownerID != 0 && j.HRID != ownerID {
			return ErrJobNotFound
		}
		if err := tx.DeleteJob(ctx, jobID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrJobNotFound
			}
			return fmt.Errorf("delete job: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if ownerID == 0 {
		metrics.ModerationActionsTotal.WithLabelValues("delete_job").Inc()
	}
	if s.logger != nil {
		s.logger.Info("job deleted", slog.Int("job_id", int(jobID)), slog.Int("owner_id", int(ownerID)))
	}
	return nil
}

// DismissReport deletes a report without touching the job.
func (s *Service) DismissReport(ctx context.Context, id uint) error {
	err := s.store.DeleteReport(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrReportNotFound
	}
	if err != nil {
		return fmt.Errorf("delete report: %w", err)
	}
	metrics.ModerationActionsTotal.WithLabelValues("dismiss_report").Inc()
	return nil
}

// NormalizeDomain trims, lowercases and strips a leading "www.".
func NormalizeDomain(domain string) string {
	d := strings.ToLower(strings.TrimSpace(domain))
	return strings.TrimPrefix(d, "www.")
}

// AddDomain puts a company domain on the HR allowlist.
func (s *Service) AddDomain(ctx context.Context, domain, companyName string) (*model.CompanyDomain, error) {
	domain = NormalizeDomain(domain)
	companyName = strings.TrimSpace(companyName)
	if domain == "" || companyName == "" {
		return nil, Validation("Domain and company name required")
	}
	d := &model.CompanyDomain{Domain: domain, CompanyName: companyName}
	if err := s.store.CreateDomain(ctx, d); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrDuplicateDomain
		}
		return nil, fmt.Errorf("create domain: %w", err)
	}
	metrics.ModerationActionsTotal.WithLabelValues("add_domain").Inc()
	return d, nil
}

// ListDomains returns the allowlist ordered by company name.
func (s *Service) ListDomains(ctx context.Context) ([]model.CompanyDomain, error) {
	domains, err := s.store.ListDomains(ctx)
	if err != nil {
		return nil, fmt.Errorf("list domains: %w", err)
	}
	return domains, nil
}

// AddAdmin creates another active admin account.
func (s *Service) AddAdmin(ctx context.Context, email, password, fullName string) (*model.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, Validation("Email and password required")
	}
	hash, err := s.hash(password)
	if err != nil {
		return nil, err
	}
	u := &model.User{
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleAdmin,
		Status:       model.StatusActive,
		FullName:     firstNonEmpty(strings.TrimSpace(fullName), "Admin"),
	}
	if err := s.insertUser(ctx, u); err != nil {
		return nil, err
	}
	metrics.ModerationActionsTotal.WithLabelValues("add_admin").Inc()
	return u, nil
}

// ListPending returns pending HR signups, newest first.
func (s *Service) ListPending(ctx context.Context, q string) ([]model.PendingHrApproval, error) {
	rows, err := s.store.ListPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pending: %w", err)
	}
	return filter(rows, q, func(p model.PendingHrApproval) []string {
		return []string{p.Email, p.FullName, p.CompanyName, p.GSTNumber}
	}), nil
}

// VerifyGST marks an HR account's GST number as verified.
func (s *Service) VerifyGST(ctx context.Context, hrID uint) error {
	u, err := s.store.UserByID(ctx, hrID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrHRNotFound
	}
	if err != nil {
		return fmt.Errorf("load hr: %w", err)
	}
	if u.Role != model.RoleHR {
		return ErrHRNotFound
	}
	verified := true
	if err := s.store.UpdateProfile(ctx, hrID, store.ProfileUpdate{GSTVerified: &verified}); err != nil {
		return fmt.Errorf("verify gst: %w", err)
	}
	metrics.ModerationActionsTotal.WithLabelValues("verify_gst").Inc()
	return nil
}

// Analytics returns the admin dashboard counters.
func (s *Service) Analytics(ctx context.Context) (*model.Analytics, error) {
	a, err := s.store.Analytics(ctx)
	if err != nil {
		return nil, fmt.Errorf("analytics: %w", err)
	}
	return a, nil
}

// ListAllJobs returns every job with owner details for admins.
func (s *Service) ListAllJobs(ctx context.Context, q string) ([]model.JobView, error) {
	rows, err := s.store.ListJobs(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return filter(rows, q, func(j model.JobView) []string {
		return []string{j.Title, firstNonEmpty(j.CompanyName, j.HRCompany), j.HREmail, j.Location}
	}), nil
}

// ListReports returns every report with job and reporter details.
func (s *Service) ListReports(ctx context.Context) ([]model.ReportView, error) {
	rows, err := s.store.ListReports(ctx)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return rows, nil
}

// ListHRs returns HR accounts matching q.
func (s *Service) ListHRs(ctx context.Context, q string) ([]model.User, error) {
	rows, err := s.store.ListUsers(ctx, model.RoleHR)
	if err != nil {
		return nil, fmt.Errorf("list hrs: %w", err)
	}
	return filter(rows, q, func(u model.User) []string {
		return []string{u.Email, u.FullName, u.CompanyName, u.GSTNumber}
	}), nil
}

// ListStudents returns student accounts matching q.
func (s *Service) ListStudents(ctx context.Context, q string) ([]model.User, error) {
	rows, err := s.store.ListUsers(ctx, model.RoleStudent)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return filter(rows, q, func(u model.User) []string {
		return []string{u.Email, u.FullName}
	}), nil
}

// ListCompanies returns HR counts per company matching q.
func (s *Service) ListCompanies(ctx context.Context, q string) ([]model.CompanySummary, error) {
	rows, err := s.store.CompanySummaries(ctx)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	return filter(rows, q, func(c model.CompanySummary) []string {
		return []string{c.CompanyName}
	}), nil
}

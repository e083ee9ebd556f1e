// Package store persists accounts, jobs and everything hanging off them.
//
// Two backends implement Store: a gorm backend for MySQL or PostgreSQL and
// an in-memory backend for local runs and tests. Both enforce the same
// unique keys and report violations as ErrDuplicate.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Aman-1206/Joblink/internal/config"
	"github.com/Aman-1206/Joblink/internal/model"
)

var (
	// ErrNotFound is returned when a looked-up or deleted row does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a write violates a unique key.
	ErrDuplicate = errors.New("duplicate record")
)

// ProfileUpdate carries the mutable user fields. Nil fields are left as is.
type ProfileUpdate struct {
	FullName     *string
	Phone        *string
	ProfilePhoto *string
	GSTVerified  *bool
	ExternalID   *string
}

// JobUpdate carries the mutable job fields. Nil fields are left as is.
type JobUpdate struct {
	Title       *string
	Description *string
	CompanyName *string
	Location    *string
	Type        *string
}

// ApplicantFilter narrows applicant listings to one HR user's jobs and
// optionally one job.
type ApplicantFilter struct {
	HRID  uint
	JobID uint
}

// Store is the persistence contract used by the service layer.
type Store interface {
	// Tx runs fn against a transactional view of the store. Writes made
	// through the view are committed when fn returns nil and discarded
	// otherwise.
	Tx(ctx context.Context, fn func(Store) error) error

	CreateUser(ctx context.Context, u *model.User) error
	UserByID(ctx context.Context, id uint) (*model.User, error)
	UserByEmail(ctx context.Context, email string) (*model.User, error)
	UserByExternalID(ctx context.Context, externalID string) (*model.User, error)
	UpdateProfile(ctx context.Context, id uint, upd ProfileUpdate) error
	// EmailTaken reports whether email belongs to a user or a pending signup.
	EmailTaken(ctx context.Context, email string) (bool, error)
	ListUsers(ctx context.Context, role string) ([]model.User, error)
	CompanySummaries(ctx context.Context) ([]model.CompanySummary, error)
	Analytics(ctx context.Context) (*model.Analytics, error)

	CreatePending(ctx context.Context, p *model.PendingHrApproval) error
	// PendingByID locks the row when called inside Tx on backends that
	// support row locks.
	PendingByID(ctx context.Context, id uint) (*model.PendingHrApproval, error)
	ListPending(ctx context.Context) ([]model.PendingHrApproval, error)
	DeletePending(ctx context.Context, id uint) error

	// ReplaceCode deletes every code for c.Email and inserts c.
	ReplaceCode(ctx context.Context, c *model.OneTimeCode) error
	LatestCode(ctx context.Context, email string) (*model.OneTimeCode, error)
	DeleteCodes(ctx context.Context, email string) error
	// PurgeExpiredCodes deletes codes that expired before now and returns
	// how many were removed.
	PurgeExpiredCodes(ctx context.Context, now time.Time) (int64, error)

	DomainByName(ctx context.Context, domain string) (*model.CompanyDomain, error)
	ListDomains(ctx context.Context) ([]model.CompanyDomain, error)
	CreateDomain(ctx context.Context, d *model.CompanyDomain) error

	CreateJob(ctx context.Context, j *model.Job) error
	JobByID(ctx context.Context, id uint) (*model.Job, error)
	JobViewByID(ctx context.Context, id uint) (*model.JobView, error)
	// ListJobs lists every job, or only hrID's jobs when hrID is non-zero.
	ListJobs(ctx context.Context, hrID uint) ([]model.JobView, error)
	UpdateJob(ctx context.Context, id uint, upd JobUpdate) error
	// DeleteJob removes the job with its applications and reports.
	DeleteJob(ctx context.Context, id uint) error

	CreateApplication(ctx context.Context, a *model.Application) error
	ApplicationByID(ctx context.Context, id uint) (*model.Application, error)
	ApplicationExists(ctx context.Context, jobID, userID uint) (bool, error)
	UpdateApplicationStatus(ctx context.Context, id uint, status string) error
	DeleteApplication(ctx context.Context, id uint) error
	ApplicationsByUser(ctx context.Context, userID uint) ([]model.MyApplication, error)
	Applicants(ctx context.Context, f ApplicantFilter) ([]model.Applicant, error)

	CreateReport(ctx context.Context, r *model.JobReport) error
	ListReports(ctx context.Context) ([]model.ReportView, error)
	DeleteReport(ctx context.Context, id uint) error

	SaveJob(ctx context.Context, s *model.SavedJob) error
	UnsaveJob(ctx context.Context, userID, jobID uint) error
	SavedJobIDs(ctx context.Context, userID uint) ([]uint, error)
	SavedJobs(ctx context.Context, userID uint) ([]model.JobView, error)
}

// Open builds the store selected by cfg.Driver and migrates its schema.
func Open(cfg config.DatabaseConfig, logger *slog.Logger) (Store, error) {
	switch cfg.Driver {
	case "memory":
		if logger != nil {
			logger.Warn("using in-memory store, data is lost on restart")
		}
		return NewMemory(), nil
	case "mysql", "postgres", "":
		s, err := OpenGorm(cfg)
		if err != nil {
			return nil, err
		}
		if err := s.Migrate(); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

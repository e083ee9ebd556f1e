package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Aman-1206/Joblink/internal/model"
	"github.com/Aman-1206/Joblink/internal/pkg/metrics"
	"github.com/Aman-1206/Joblink/internal/pkg/storage"
	"github.com/Aman-1206/Joblink/internal/store"
)

const defaultJobType = "Full-time"

// JobInput is the body of a job post.
type JobInput struct {
	Title       string
	Description string
	CompanyName string
	Location    string
	Type        string
}

// ApplyInput is a student's application. Resume is optional.
type ApplyInput struct {
	JobID       uint
	CoverLetter string
	Resume      *storage.File
}

// ReportInput flags a job. Proof is optional.
type ReportInput struct {
	JobID  uint
	Reason string
	Proof  *storage.File
}

func publicView(j model.JobView) model.JobView {
	j.HREmail = ""
	return j
}

// ListJobs returns every job, newest first.
func (s *Service) ListJobs(ctx context.Context) ([]model.JobView, error) {
	rows, err := s.store.ListJobs(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	for i := range rows {
		rows[i] = publicView(rows[i])
	}
	return rows, nil
}

// GetJob returns one job.
func (s *Service) GetJob(ctx context.Context, id uint) (*model.JobView, error) {
	j, err := s.store.JobViewByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load job: %w", err)
	}
	v := publicView(*j)
	return &v, nil
}

// MyJobs returns hrID's jobs matching q.
func (s *Service) MyJobs(ctx context.Context, hrID uint, q string) ([]model.JobView, error) {
	rows, err := s.store.ListJobs(ctx, hrID)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return filter(rows, q, func(j model.JobView) []string {
		return []string{j.Title, j.CompanyName, j.Location, j.Type}
	}), nil
}

// CreateJob posts a job owned by hrID. The company name falls back to the
// HR profile and then to "Company".
func (s *Service) CreateJob(ctx context.Context, hrID uint, in JobInput) (*model.Job, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, Validation("Title required")
	}
	hr, err := s.store.UserByID(ctx, hrID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load hr: %w", err)
	}
	j := &model.Job{
		HRID:        hrID,
		Title:       title,
		Description: in.Description,
		CompanyName: firstNonEmpty(strings.TrimSpace(in.CompanyName), hr.CompanyName, "Company"),
		Location:    in.Location,
		Type:        firstNonEmpty(strings.TrimSpace(in.Type), defaultJobType),
	}
	if err := s.store.CreateJob(ctx, j); err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}
	if s.logger != nil {
		s.logger.Info("job created", slog.Int("job_id", int(j.ID)), slog.Int("hr_id", int(hrID)))
	}
	return j, nil
}

// UpdateJob applies a partial update to a job owned by hrID.
func (s *Service) UpdateJob(ctx context.Context, hrID, jobID uint, upd store.JobUpdate) (*model.Job, error) {
	if _, err := s.ownedJob(ctx, hrID, jobID); err != nil {
		return nil, err
	}
	if upd.Title != nil && strings.TrimSpace(*upd.Title) == "" {
		return nil, Validation("Title required")
	}
	if err := s.store.UpdateJob(ctx, jobID, upd); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("update job: %w", err)
	}
	j, err := s.store.JobByID(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("reload job: %w", err)
	}
	return j, nil
}

func (s *Service) ownedJob(ctx context.Context, hrID, jobID uint) (*model.Job, error) {
	j, err := s.store.JobByID(ctx, jobID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load job: %w", err)
	}
	if j.HRID != hrID {
		return nil, ErrJobNotFound
	}
	return j, nil
}

func (s *Service) requireStudent(ctx context.Context, userID uint, denied error) error {
	u, err := s.store.UserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}
	if u.Role != model.RoleStudent {
		return denied
	}
	return nil
}

// Apply records a student's application. The resume is stored only after
// every other check has passed.
func (s *Service) Apply(ctx context.Context, studentID uint, in ApplyInput) (*model.Application, error) {
	if in.JobID == 0 {
		return nil, Validation("Job ID required")
	}
	if err := s.requireStudent(ctx, studentID, ErrStudentsOnlyApply); err != nil {
		return nil, err
	}
	if _, err := s.store.JobByID(ctx, in.JobID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("load job: %w", err)
	}
	exists, err := s.store.ApplicationExists(ctx, in.JobID, studentID)
	if err != nil {
		return nil, fmt.Errorf("check application: %w", err)
	}
	if exists {
		return nil, ErrAlreadyApplied
	}

	resume, err := s.save(ctx, storage.KindResume, in.Resume)
	if err != nil {
		return nil, err
	}
	a := &model.Application{
		JobID:       in.JobID,
		UserID:      studentID,
		ResumePath:  resume,
		CoverLetter: in.CoverLetter,
		Status:      model.ApplicationPending,
	}
	if err := s.store.CreateApplication(ctx, a); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrAlreadyApplied
		}
		return nil, fmt.Errorf("create application: %w", err)
	}
	metrics.ApplicationActionsTotal.WithLabelValues("apply").Inc()
	return a, nil
}

// Withdraw deletes the caller's own application.
func (s *Service) Withdraw(ctx context.Context, applicationID, callerID uint) error {
	a, err := s.store.ApplicationByID(ctx, applicationID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrApplicationMissing
	}
	if err != nil {
		return fmt.Errorf("load application: %w", err)
	}
	if a.UserID != callerID {
		return ErrRoleForbidden
	}
	if err := s.store.DeleteApplication(ctx, applicationID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrApplicationMissing
		}
		return fmt.Errorf("delete application: %w", err)
	}
	metrics.ApplicationActionsTotal.WithLabelValues("withdraw").Inc()
	return nil
}

// UpdateStatus sets the status of an application on one of hrID's jobs.
func (s *Service) UpdateStatus(ctx context.Context, applicationID, hrID uint, status string) (*model.Application, error) {
	if !model.ValidApplicationStatus(status) {
		return nil, ErrInvalidStatus
	}
	a, err := s.store.ApplicationByID(ctx, applicationID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrApplicationMissing
	}
	if err != nil {
		return nil, fmt.Errorf("load application: %w", err)
	}
	if _, err := s.ownedJob(ctx, hrID, a.JobID); err != nil {
		if errors.Is(err, ErrJobNotFound) {
			return nil, ErrApplicationMissing
		}
		return nil, err
	}
	if err := s.store.UpdateApplicationStatus(ctx, applicationID, status); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrApplicationMissing
		}
		return nil, fmt.Errorf("update status: %w", err)
	}
	a.Status = status
	metrics.ApplicationActionsTotal.WithLabelValues("status_" + status).Inc()
	return a, nil
}

// Report flags a job for admins. Reports are never merged.
func (s *Service) Report(ctx context.Context, studentID uint, in ReportInput) (*model.JobReport, error) {
	if in.JobID == 0 {
		return nil, Validation("Job ID required")
	}
	if err := s.requireStudent(ctx, studentID, ErrStudentsOnlyReport); err != nil {
		return nil, err
	}
	if _, err := s.store.JobByID(ctx, in.JobID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("load job: %w", err)
	}
	proof, err := s.save(ctx, storage.KindProof, in.Proof)
	if err != nil {
		return nil, err
	}
	r := &model.JobReport{JobID: in.JobID, UserID: studentID, Reason: in.Reason, ProofPath: proof}
	if err := s.store.CreateReport(ctx, r); err != nil {
		return nil, fmt.Errorf("create report: %w", err)
	}
	metrics.ApplicationActionsTotal.WithLabelValues("report").Inc()
	if s.logger != nil {
		s.logger.Info("job reported", slog.Int("job_id", int(in.JobID)), slog.Int("user_id", int(studentID)))
	}
	return r, nil
}

// MyApplications returns the student's applications with job details.
func (s *Service) MyApplications(ctx context.Context, studentID uint) ([]model.MyApplication, error) {
	rows, err := s.store.ApplicationsByUser(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	return rows, nil
}

// AllApplicants returns applicants across all of hrID's jobs.
func (s *Service) AllApplicants(ctx context.Context, hrID uint, q string) ([]model.Applicant, error) {
	rows, err := s.store.Applicants(ctx, store.ApplicantFilter{HRID: hrID})
	if err != nil {
		return nil, fmt.Errorf("list applicants: %w", err)
	}
	return filter(rows, q, func(a model.Applicant) []string {
		return []string{a.FullName, a.Email, a.JobTitle, a.CompanyName}
	}), nil
}

// JobApplications returns applicants for one of hrID's jobs.
func (s *Service) JobApplications(ctx context.Context, hrID, jobID uint, q string) ([]model.Applicant, error) {
	if _, err := s.ownedJob(ctx, hrID, jobID); err != nil {
		return nil, err
	}
	rows, err := s.store.Applicants(ctx, store.ApplicantFilter{HRID: hrID, JobID: jobID})
	if err != nil {
		return nil, fmt.Errorf("list applicants: %w", err)
	}
	return filter(rows, q, func(a model.Applicant) []string {
		return []string{a.FullName, a.Email, a.CoverLetter}
	}), nil
}

// SaveJob bookmarks a job. Saving twice is not an error.
func (s *Service) SaveJob(ctx context.Context, userID, jobID uint) error {
	if _, err := s.store.JobByID(ctx, jobID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrJobNotFound
		}
		return fmt.Errorf("load job: %w", err)
	}
	err := s.store.SaveJob(ctx, &model.SavedJob{UserID: userID, JobID: jobID})
	if err != nil && !errors.Is(err, store.ErrDuplicate) {
		return fmt.Errorf("save job: %w", err)
	}
	return nil
}

// UnsaveJob removes a bookmark if present.
func (s *Service) UnsaveJob(ctx context.Context, userID, jobID uint) error {
	err := s.store.UnsaveJob(ctx, userID, jobID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("unsave job: %w", err)
	}
	return nil
}

// SavedJobIDs returns the ids of the user's bookmarked jobs.
func (s *Service) SavedJobIDs(ctx context.Context, userID uint) ([]uint, error) {
	ids, err := s.store.SavedJobIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list saved: %w", err)
	}
	return ids, nil
}

// SavedJobs returns the user's bookmarked jobs matching q.
func (s *Service) SavedJobs(ctx context.Context, userID uint, q string) ([]model.JobView, error) {
	rows, err := s.store.SavedJobs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list saved: %w", err)
	}
	for i := range rows {
		rows[i] = publicView(rows[i])
	}
	return filter(rows, q, func(j model.JobView) []string {
		return []string{j.Title, firstNonEmpty(j.HRCompany, j.CompanyName), j.Location, j.Type}
	}), nil
}

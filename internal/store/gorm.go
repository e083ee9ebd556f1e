package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Aman-1206/Joblink/internal/config"
	"github.com/Aman-1206/Joblink/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormLogger "gorm.io/gorm/logger"
)

// GormStore implements Store on a relational database through gorm.
type GormStore struct {
	db   *gorm.DB
	inTx bool
}

// OpenGorm connects to the database named by cfg.
func OpenGorm(cfg config.DatabaseConfig) (*GormStore, error) {
	var dialector gorm.Dialector
	switch strings.ToLower(cfg.Driver) {
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		dialector = mysql.Open(cfg.DSN)
	}
	return NewGorm(dialector)
}

// NewGorm opens a store over an arbitrary gorm dialector.
func NewGorm(dialector gorm.Dialector) (*GormStore, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 gormLogger.Default.LogMode(gormLogger.Silent),
		TranslateError:         true,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return &GormStore{db: db}, nil
}

// Migrate creates or updates every table.
func (s *GormStore) Migrate() error {
	return s.db.AutoMigrate(
		&model.User{},
		&model.PendingHrApproval{},
		&model.CompanyDomain{},
		&model.OneTimeCode{},
		&model.Job{},
		&model.Application{},
		&model.SavedJob{},
		&model.JobReport{},
	)
}

// Ping checks the database connection.
func (s *GormStore) Ping(ctx context.Context) error {
	var one int
	return s.db.WithContext(ctx).Raw("SELECT 1").Scan(&one).Error
}

// Close releases the connection pool.
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Tx runs fn inside a database transaction. Nested calls reuse the outer one.
func (s *GormStore) Tx(ctx context.Context, fn func(Store) error) error {
	if s.inTx {
		return fn(s)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx, inTx: true})
	})
}

func mapErr(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s: %w", op, ErrDuplicate)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func affected(op string, res *gorm.DB) error {
	if res.Error != nil {
		return mapErr(op, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// updated treats zero affected rows as success when the row still exists.
// MySQL counts changed rows, so an update to identical values reports zero.
func updated(op string, res *gorm.DB, exists func() error) error {
	if res.Error != nil {
		return mapErr(op, res.Error)
	}
	if res.RowsAffected == 0 {
		return exists()
	}
	return nil
}

func (s *GormStore) CreateUser(ctx context.Context, u *model.User) error {
	return mapErr("create user", s.db.WithContext(ctx).Create(u).Error)
}

func (s *GormStore) UserByID(ctx context.Context, id uint) (*model.User, error) {
	var u model.User
	if err := s.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, mapErr("get user", err)
	}
	return &u, nil
}

func (s *GormStore) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, mapErr("get user by email", err)
	}
	return &u, nil
}

func (s *GormStore) UserByExternalID(ctx context.Context, externalID string) (*model.User, error) {
	var u model.User
	if err := s.db.WithContext(ctx).Where("external_id = ?", externalID).First(&u).Error; err != nil {
		return nil, mapErr("get user by external id", err)
	}
	return &u, nil
}

func (s *GormStore) UpdateProfile(ctx context.Context, id uint, upd ProfileUpdate) error {
	updates := map[string]interface{}{}
	if upd.FullName != nil {
		updates["full_name"] = *upd.FullName
	}
	if upd.Phone != nil {
		updates["phone"] = *upd.Phone
	}
	if upd.ProfilePhoto != nil {
		updates["profile_photo"] = *upd.ProfilePhoto
	}
	if upd.GSTVerified != nil {
		updates["gst_verified"] = *upd.GSTVerified
	}
	if upd.ExternalID != nil {
		updates["external_id"] = *upd.ExternalID
	}
	if len(updates) == 0 {
		_, err := s.UserByID(ctx, id)
		return err
	}
	res := s.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(updates)
	return updated("update user", res, func() error {
		_, err := s.UserByID(ctx, id)
		return err
	})
}

func (s *GormStore) EmailTaken(ctx context.Context, email string) (bool, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&model.User{}).Where("email = ?", email).Count(&n).Error; err != nil {
		return false, mapErr("count users", err)
	}
	if n > 0 {
		return true, nil
	}
	if err := s.db.WithContext(ctx).Model(&model.PendingHrApproval{}).Where("email = ?", email).Count(&n).Error; err != nil {
		return false, mapErr("count pending", err)
	}
	return n > 0, nil
}

func (s *GormStore) ListUsers(ctx context.Context, role string) ([]model.User, error) {
	users := []model.User{}
	err := s.db.WithContext(ctx).Where("role = ?", role).Order("created_at DESC, id DESC").Find(&users).Error
	if err != nil {
		return nil, mapErr("list users", err)
	}
	return users, nil
}

func (s *GormStore) CompanySummaries(ctx context.Context) ([]model.CompanySummary, error) {
	rows := []model.CompanySummary{}
	err := s.db.WithContext(ctx).Model(&model.User{}).
		Select("company_name, COUNT(*) AS hr_count").
		Where("role = ? AND company_name IS NOT NULL AND company_name <> ''", model.RoleHR).
		Group("company_name").
		Order("company_name").
		Scan(&rows).Error
	if err != nil {
		return nil, mapErr("company summaries", err)
	}
	return rows, nil
}

func (s *GormStore) Analytics(ctx context.Context) (*model.Analytics, error) {
	var a model.Analytics
	db := s.db.WithContext(ctx)
	if err := db.Model(&model.User{}).
		Where("role = ? AND company_name IS NOT NULL AND company_name <> ''", model.RoleHR).
		Distinct("company_name").Count(&a.Companies).Error; err != nil {
		return nil, mapErr("count companies", err)
	}
	roleCounts := []struct {
		role string
		dst  *int64
	}{
		{model.RoleHR, &a.HRCount},
		{model.RoleStudent, &a.StudentCount},
		{model.RoleAdmin, &a.AdminCount},
	}
	for _, rc := range roleCounts {
		if err := db.Model(&model.User{}).Where("role = ?", rc.role).Count(rc.dst).Error; err != nil {
			return nil, mapErr("count "+rc.role, err)
		}
	}
	if err := db.Model(&model.Job{}).Count(&a.JobCount).Error; err != nil {
		return nil, mapErr("count jobs", err)
	}
	return &a, nil
}

func (s *GormStore) CreatePending(ctx context.Context, p *model.PendingHrApproval) error {
	return mapErr("create pending", s.db.WithContext(ctx).Create(p).Error)
}

func (s *GormStore) PendingByID(ctx context.Context, id uint) (*model.PendingHrApproval, error) {
	var p model.PendingHrApproval
	q := s.db.WithContext(ctx)
	if s.inTx {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := q.First(&p, id).Error; err != nil {
		return nil, mapErr("get pending", err)
	}
	return &p, nil
}

func (s *GormStore) ListPending(ctx context.Context) ([]model.PendingHrApproval, error) {
	rows := []model.PendingHrApproval{}
	if err := s.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&rows).Error; err != nil {
		return nil, mapErr("list pending", err)
	}
	return rows, nil
}

func (s *GormStore) DeletePending(ctx context.Context, id uint) error {
	return affected("delete pending", s.db.WithContext(ctx).Delete(&model.PendingHrApproval{}, id))
}

func (s *GormStore) ReplaceCode(ctx context.Context, c *model.OneTimeCode) error {
	return s.Tx(ctx, func(tx Store) error {
		g := tx.(*GormStore)
		if err := g.db.WithContext(ctx).Where("email = ?", c.Email).Delete(&model.OneTimeCode{}).Error; err != nil {
			return mapErr("delete codes", err)
		}
		return mapErr("create code", g.db.WithContext(ctx).Create(c).Error)
	})
}

func (s *GormStore) LatestCode(ctx context.Context, email string) (*model.OneTimeCode, error) {
	var c model.OneTimeCode
	err := s.db.WithContext(ctx).Where("email = ?", email).Order("id DESC").First(&c).Error
	if err != nil {
		return nil, mapErr("get code", err)
	}
	return &c, nil
}

func (s *GormStore) DeleteCodes(ctx context.Context, email string) error {
	return mapErr("delete codes", s.db.WithContext(ctx).Where("email = ?", email).Delete(&model.OneTimeCode{}).Error)
}

func (s *GormStore) PurgeExpiredCodes(ctx context.Context, now time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Where("expires_at < ?", now).Delete(&model.OneTimeCode{})
	if res.Error != nil {
		return 0, mapErr("purge codes", res.Error)
	}
	return res.RowsAffected, nil
}

func (s *GormStore) DomainByName(ctx context.Context, domain string) (*model.CompanyDomain, error) {
	var d model.CompanyDomain
	if err := s.db.WithContext(ctx).Where("domain = ?", domain).First(&d).Error; err != nil {
		return nil, mapErr("get domain", err)
	}
	return &d, nil
}

func (s *GormStore) ListDomains(ctx context.Context) ([]model.CompanyDomain, error) {
	rows := []model.CompanyDomain{}
	if err := s.db.WithContext(ctx).Order("domain").Find(&rows).Error; err != nil {
		return nil, mapErr("list domains", err)
	}
	return rows, nil
}

func (s *GormStore) CreateDomain(ctx context.Context, d *model.CompanyDomain) error {
	return mapErr("create domain", s.db.WithContext(ctx).Create(d).Error)
}

func (s *GormStore) CreateJob(ctx context.Context, j *model.Job) error {
	return mapErr("create job", s.db.WithContext(ctx).Create(j).Error)
}

func (s *GormStore) JobByID(ctx context.Context, id uint) (*model.Job, error) {
	var j model.Job
	if err := s.db.WithContext(ctx).First(&j, id).Error; err != nil {
		return nil, mapErr("get job", err)
	}
	return &j, nil
}

func (s *GormStore) jobViews(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Table("jobs").
		Select("jobs.*, COALESCE(u.company_name, '') AS hr_company, COALESCE(u.email, '') AS hr_email, " +
			"(SELECT COUNT(*) FROM applications a WHERE a.job_id = jobs.id) AS application_count").
		Joins("LEFT JOIN users u ON u.id = jobs.hr_id")
}

func (s *GormStore) JobViewByID(ctx context.Context, id uint) (*model.JobView, error) {
	rows := []model.JobView{}
	if err := s.jobViews(ctx).Where("jobs.id = ?", id).Limit(1).Scan(&rows).Error; err != nil {
		return nil, mapErr("get job view", err)
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return &rows[0], nil
}

func (s *GormStore) ListJobs(ctx context.Context, hrID uint) ([]model.JobView, error) {
	rows := []model.JobView{}
	q := s.jobViews(ctx)
	if hrID != 0 {
		q = q.Where("jobs.hr_id = ?", hrID)
	}
	if err := q.Order("jobs.created_at DESC, jobs.id DESC").Scan(&rows).Error; err != nil {
		return nil, mapErr("list jobs", err)
	}
	return rows, nil
}

func (s *GormStore) UpdateJob(ctx context.Context, id uint, upd JobUpdate) error {
	updates := map[string]interface{}{}
	if upd.Title != nil {
		updates["title"] = *upd.Title
	}
	if upd.Description != nil {
		updates["description"] = *upd.Description
	}
	if upd.CompanyName != nil {
		updates["company_name"] = *upd.CompanyName
	}
	if upd.Location != nil {
		updates["location"] = *upd.Location
	}
	if upd.Type != nil {
		updates["type"] = *upd.Type
	}
	if len(updates) == 0 {
		_, err := s.JobByID(ctx, id)
		return err
	}
	res := s.db.WithContext(ctx).Model(&model.Job{}).Where("id = ?", id).Updates(updates)
	return updated("update job", res, func() error {
		_, err := s.JobByID(ctx, id)
		return err
	})
}

func (s *GormStore) DeleteJob(ctx context.Context, id uint) error {
	return s.Tx(ctx, func(tx Store) error {
		db := tx.(*GormStore).db.WithContext(ctx)
		if err := db.Where("job_id = ?", id).Delete(&model.Application{}).Error; err != nil {
			return mapErr("delete job applications", err)
		}
		if err := db.Where("job_id = ?", id).Delete(&model.JobReport{}).Error; err != nil {
			return mapErr("delete job reports", err)
		}
		if err := db.Where("job_id = ?", id).Delete(&model.SavedJob{}).Error; err != nil {
			return mapErr("delete saved jobs", err)
		}
		return affected("delete job", db.Delete(&model.Job{}, id))
	})
}

func (s *GormStore) CreateApplication(ctx context.Context, a *model.Application) error {
	return mapErr("create application", s.db.WithContext(ctx).Create(a).Error)
}

func (s *GormStore) ApplicationByID(ctx context.Context, id uint) (*model.Application, error) {
	var a model.Application
	if err := s.db.WithContext(ctx).First(&a, id).Error; err != nil {
		return nil, mapErr("get application", err)
	}
	return &a, nil
}

func (s *GormStore) ApplicationExists(ctx context.Context, jobID, userID uint) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&model.Application{}).
		Where("job_id = ? AND user_id = ?", jobID, userID).Count(&n).Error
	if err != nil {
		return false, mapErr("count applications", err)
	}
	return n > 0, nil
}

func (s *GormStore) UpdateApplicationStatus(ctx context.Context, id uint, status string) error {
	res := s.db.WithContext(ctx).Model(&model.Application{}).Where("id = ?", id).Update("status", status)
	return updated("update application", res, func() error {
		_, err := s.ApplicationByID(ctx, id)
		return err
	})
}

func (s *GormStore) DeleteApplication(ctx context.Context, id uint) error {
	return affected("delete application", s.db.WithContext(ctx).Delete(&model.Application{}, id))
}

func (s *GormStore) ApplicationsByUser(ctx context.Context, userID uint) ([]model.MyApplication, error) {
	rows := []model.MyApplication{}
	err := s.db.WithContext(ctx).Table("applications").
		Select("applications.*, jobs.title AS title, jobs.company_name AS company_name, jobs.created_at AS job_created").
		Joins("JOIN jobs ON jobs.id = applications.job_id").
		Where("applications.user_id = ?", userID).
		Order("applications.created_at DESC, applications.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, mapErr("list my applications", err)
	}
	return rows, nil
}

func (s *GormStore) Applicants(ctx context.Context, f ApplicantFilter) ([]model.Applicant, error) {
	rows := []model.Applicant{}
	q := s.db.WithContext(ctx).Table("applications").
		Select("applications.id, applications.job_id, applications.status, applications.cover_letter, " +
			"applications.resume_path, applications.created_at, COALESCE(u.full_name, '') AS full_name, " +
			"u.email AS email, jobs.title AS job_title, jobs.company_name AS company_name").
		Joins("JOIN jobs ON jobs.id = applications.job_id").
		Joins("JOIN users u ON u.id = applications.user_id").
		Where("jobs.hr_id = ?", f.HRID)
	if f.JobID != 0 {
		q = q.Where("applications.job_id = ?", f.JobID)
	}
	if err := q.Order("applications.created_at DESC, applications.id DESC").Scan(&rows).Error; err != nil {
		return nil, mapErr("list applicants", err)
	}
	return rows, nil
}

func (s *GormStore) CreateReport(ctx context.Context, r *model.JobReport) error {
	return mapErr("create report", s.db.WithContext(ctx).Create(r).Error)
}

func (s *GormStore) ListReports(ctx context.Context) ([]model.ReportView, error) {
	rows := []model.ReportView{}
	err := s.db.WithContext(ctx).Table("job_reports").
		Select("job_reports.*, COALESCE(jobs.title, '') AS job_title, COALESCE(jobs.company_name, '') AS company_name, " +
			"COALESCE(jobs.hr_id, 0) AS hr_id, COALESCE(r.full_name, '') AS reporter_name, COALESCE(r.email, '') AS reporter_email, " +
			"COALESCE(h.email, '') AS hr_email, COALESCE(h.full_name, '') AS hr_name, COALESCE(h.company_name, '') AS hr_company").
		Joins("LEFT JOIN jobs ON jobs.id = job_reports.job_id").
		Joins("LEFT JOIN users r ON r.id = job_reports.user_id").
		Joins("LEFT JOIN users h ON h.id = jobs.hr_id").
		Order("job_reports.created_at DESC, job_reports.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, mapErr("list reports", err)
	}
	return rows, nil
}

func (s *GormStore) DeleteReport(ctx context.Context, id uint) error {
	return affected("delete report", s.db.WithContext(ctx).Delete(&model.JobReport{}, id))
}

func (s *GormStore) SaveJob(ctx context.Context, sj *model.SavedJob) error {
	return mapErr("save job", s.db.WithContext(ctx).Create(sj).Error)
}

func (s *GormStore) UnsaveJob(ctx context.Context, userID, jobID uint) error {
	err := s.db.WithContext(ctx).Where("user_id = ? AND job_id = ?", userID, jobID).Delete(&model.SavedJob{}).Error
	return mapErr("unsave job", err)
}

func (s *GormStore) SavedJobIDs(ctx context.Context, userID uint) ([]uint, error) {
	ids := []uint{}
	err := s.db.WithContext(ctx).Model(&model.SavedJob{}).Where("user_id = ?", userID).Pluck("job_id", &ids).Error
	if err != nil {
		return nil, mapErr("list saved ids", err)
	}
	return ids, nil
}

func (s *GormStore) SavedJobs(ctx context.Context, userID uint) ([]model.JobView, error) {
	rows := []model.JobView{}
	err := s.jobViews(ctx).
		Joins("JOIN saved_jobs s ON s.job_id = jobs.id").
		Where("s.user_id = ?", userID).
		Order("s.created_at DESC, s.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, mapErr("list saved jobs", err)
	}
	return rows, nil
}

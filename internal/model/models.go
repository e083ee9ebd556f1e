package model

import (
	"time"
)

// Application statuses.
const (
	ApplicationPending  = "pending"
	ApplicationAccepted = "accepted"
	ApplicationRejected = "rejected"
)

// ValidApplicationStatus reports whether s is one of the three application
// states. Any state may move to any other.
func ValidApplicationStatus(s string) bool {
	switch s {
	case ApplicationPending, ApplicationAccepted, ApplicationRejected:
		return true
	}
	return false
}

// Job is a listing posted by an HR user.
type Job struct {
	ID          uint      `gorm:"primaryKey" json:"id"`                           // job ID
	HRID        uint      `gorm:"column:hr_id;index;not null" json:"hr_id"`       // owning HR user
	Title       string    `gorm:"type:varchar(255);not null" json:"title"`        // title
	Description string    `gorm:"type:text" json:"description"`                   // body
	CompanyName string    `gorm:"type:varchar(191);not null" json:"company_name"` // company shown on listing
	Location    string    `gorm:"type:varchar(191)" json:"location"`              // location
	Type        string    `gorm:"type:varchar(64)" json:"type"`                   // Full-time / Internship / ...
	CreatedAt   time.Time `json:"created_at"`                                     // posted time
}

// Application is a student's application to a job.
//
// (JobID, UserID) is unique: a student applies to a job at most once until
// the application is withdrawn.
type Application struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	JobID       uint      `gorm:"uniqueIndex:idx_applications_job_user;not null" json:"job_id"`
	UserID      uint      `gorm:"uniqueIndex:idx_applications_job_user;index;not null" json:"user_id"`
	ResumePath  string    `json:"resume_path,omitempty"`
	CoverLetter string    `gorm:"type:text" json:"cover_letter"`
	Status      string    `gorm:"type:varchar(16);default:pending;not null" json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// SavedJob is a student's bookmark.
type SavedJob struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex:idx_saved_jobs_user_job;not null" json:"user_id"`
	JobID     uint      `gorm:"uniqueIndex:idx_saved_jobs_user_job;not null" json:"job_id"`
	CreatedAt time.Time `json:"created_at"`
}

// JobReport flags a job for admin review. Reports are not de-duplicated.
type JobReport struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	JobID     uint      `gorm:"index;not null" json:"job_id"`
	UserID    uint      `gorm:"not null" json:"user_id"`
	Reason    string    `gorm:"type:text" json:"reason"`
	ProofPath string    `json:"proof_path,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// JobView is a job joined with its owner and application count.
type JobView struct {
	Job
	HRCompany        string `gorm:"column:hr_company" json:"hr_company"`
	HREmail          string `gorm:"column:hr_email" json:"hr_email,omitempty"`
	ApplicationCount int64  `gorm:"column:application_count" json:"application_count"`
}

// MyApplication is a student's application with job details.
type MyApplication struct {
	Application
	Title      string    `gorm:"column:title" json:"title"`
	Company    string    `gorm:"column:company_name" json:"company_name"`
	JobCreated time.Time `gorm:"column:job_created" json:"job_created"`
}

// Applicant is an application as seen by the owning HR user.
type Applicant struct {
	ID          uint      `json:"id"`
	JobID       uint      `json:"job_id"`
	Status      string    `json:"status"`
	CoverLetter string    `json:"cover_letter,omitempty"`
	ResumePath  string    `json:"resume_path,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	FullName    string    `json:"full_name"`
	Email       string    `json:"email"`
	JobTitle    string    `json:"job_title"`
	CompanyName string    `json:"company_name"`
}

// ReportView is a report joined with the job, the reporter and the job owner.
type ReportView struct {
	JobReport
	JobTitle      string `gorm:"column:job_title" json:"job_title"`
	CompanyName   string `gorm:"column:company_name" json:"company_name"`
	HRID          uint   `gorm:"column:hr_id" json:"hr_id"`
	ReporterName  string `gorm:"column:reporter_name" json:"reporter_name"`
	ReporterEmail string `gorm:"column:reporter_email" json:"reporter_email"`
	HREmail       string `gorm:"column:hr_email" json:"hr_email"`
	HRName        string `gorm:"column:hr_name" json:"hr_name"`
	HRCompany     string `gorm:"column:hr_company" json:"hr_company"`
}

// CompanySummary counts HR accounts per company.
type CompanySummary struct {
	CompanyName string `gorm:"column:company_name" json:"company_name"`
	HRCount     int64  `gorm:"column:hr_count" json:"hr_count"`
}

// Analytics holds admin dashboard counters.
type Analytics struct {
	Companies    int64 `json:"companies"`
	HRCount      int64 `json:"hrCount"`
	StudentCount int64 `json:"studentCount"`
	JobCount     int64 `json:"jobCount"`
	AdminCount   int64 `json:"adminCount"`
}

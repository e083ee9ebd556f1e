package model

import "time"

// Roles.
const (
	RoleStudent = "student"
	RoleHR      = "hr"
	RoleAdmin   = "admin"
)

// Account statuses.
const (
	StatusActive   = "active"
	StatusPending  = "pending"
	StatusRejected = "rejected"
)

// User is a registered account.
//
// Role is fixed at creation. Status "pending" is only meaningful for HR
// accounts; approved HR signups are created directly as active users.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`                                   // user ID
	Email        string    `gorm:"type:varchar(191);uniqueIndex;not null" json:"email"`    // email (unique)
	PasswordHash string    `gorm:"not null" json:"-"`                                      // bcrypt hash
	Role         string    `gorm:"type:varchar(16);index;not null" json:"role"`            // student / hr / admin
	Status       string    `gorm:"type:varchar(16);default:active;not null" json:"status"` // active / pending / rejected
	FullName     string    `gorm:"type:varchar(191)" json:"full_name"`                     // display name
	Phone        string    `gorm:"type:varchar(32)" json:"phone,omitempty"`                // contact phone
	CompanyName  string    `gorm:"type:varchar(191)" json:"company_name,omitempty"`        // HR company
	ProfilePhoto string    `json:"profile_photo,omitempty"`                                // upload reference
	GSTNumber    string    `gorm:"type:varchar(32)" json:"gst_number,omitempty"`           // HR tax id
	GSTVerified  bool      `gorm:"default:false" json:"gst_verified"`                      // set by admin
	ExternalID   *string   `gorm:"type:varchar(191);uniqueIndex" json:"-"`                 // federated login id
	CreatedAt    time.Time `json:"created_at"`                                             // created time
}

// PendingHrApproval is an HR signup waiting for an admin decision because
// its email domain is not on the allowlist.
type PendingHrApproval struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"type:varchar(191);uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	FullName     string    `gorm:"type:varchar(191)" json:"full_name"`
	Phone        string    `gorm:"type:varchar(32)" json:"phone"`
	CompanyName  string    `gorm:"type:varchar(191)" json:"company_name"`
	GSTNumber    string    `gorm:"type:varchar(32)" json:"gst_number"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName keeps the table name used by existing deployments.
func (PendingHrApproval) TableName() string { return "hr_pending_approvals" }

// CompanyDomain maps an email domain to a trusted company name.
type CompanyDomain struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Domain      string `gorm:"type:varchar(191);uniqueIndex;not null" json:"domain"` // lowercase, no "www."
	CompanyName string `gorm:"type:varchar(191);not null" json:"company_name"`
}

// OneTimeCode is an emailed registration code.
type OneTimeCode struct {
	ID        uint      `gorm:"primaryKey"`
	Email     string    `gorm:"type:varchar(191);index;not null"`
	Code      string    `gorm:"type:varchar(16);not null"`
	Role      string    `gorm:"type:varchar(16);not null"`
	Payload   string    `gorm:"type:text"` // JSON profile captured at send time
	ExpiresAt time.Time `gorm:"not null"`
	CreatedAt time.Time
}

// TableName keeps the table name used by existing deployments.
func (OneTimeCode) TableName() string { return "email_otps" }

// Expired reports whether the code is past its expiry at now.
func (c *OneTimeCode) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

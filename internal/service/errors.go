package service

import "errors"

// Kind classifies an Error for transport mapping.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindConflict
	KindAuth
	KindForbidden
	KindNotFound
	KindTooManyRequests
	KindDelivery
)

// Error is a domain failure with a client-facing message.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

func newError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Validation returns a KindValidation error with msg.
func Validation(msg string) *Error { return newError(KindValidation, msg) }

// Forbidden returns a KindForbidden error with msg.
func Forbidden(msg string) *Error { return newError(KindForbidden, msg) }

// Auth returns a KindAuth error with msg.
func Auth(msg string) *Error { return newError(KindAuth, msg) }

// NotFound returns a KindNotFound error with msg.
func NotFound(msg string) *Error { return newError(KindNotFound, msg) }

var (
	ErrAlreadyRegistered  = newError(KindConflict, "Email already registered")
	ErrCodeNotFound       = newError(KindValidation, "No OTP found. Please request a new one.")
	ErrCodeMismatch       = newError(KindValidation, "Invalid OTP")
	ErrCodeExpired        = newError(KindValidation, "OTP expired. Please request a new one.")
	ErrRoleMismatch       = newError(KindValidation, "Role mismatch")
	ErrInvalidRole        = newError(KindValidation, "Invalid role")
	ErrDuplicateDomain    = newError(KindConflict, "Domain already exists")
	ErrInvalidCredentials = newError(KindAuth, "Invalid credentials")
	ErrUserNotFound       = newError(KindAuth, "User not found")
	ErrAccountRejected    = newError(KindForbidden, "Your account has been rejected")
	ErrAccountPending     = newError(KindForbidden, "Your request is still pending approval")
	ErrRequestNotFound    = newError(KindNotFound, "Request not found")
	ErrJobNotFound        = newError(KindNotFound, "Job not found")
	ErrApplicationMissing = newError(KindNotFound, "Application not found")
	ErrReportNotFound     = newError(KindNotFound, "Report not found")
	ErrHRNotFound         = newError(KindNotFound, "HR not found")
	ErrAlreadyApplied     = newError(KindConflict, "Already applied")
	ErrRoleForbidden      = newError(KindForbidden, "Forbidden")
	ErrStudentsOnlyApply  = newError(KindForbidden, "Only students can apply for jobs")
	ErrStudentsOnlyReport = newError(KindForbidden, "Only students can report jobs")
	ErrInvalidStatus      = newError(KindValidation, "Status must be pending, accepted or rejected")
	ErrTooManyRequests    = newError(KindTooManyRequests, "Please wait before requesting another code")
	ErrDelivery           = newError(KindDelivery, "Failed to send OTP email")
)

// KindOf returns the Kind of err, or 0 when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

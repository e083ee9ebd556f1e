package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Aman-1206/Joblink/internal/config"

	"gopkg.in/gomail.v2"
)

// ErrNotConfigured is returned when SMTP settings are missing outside
// development mode.
var ErrNotConfigured = errors.New("email config missing")

// EmailNotifier sends registration codes over SMTP.
type EmailNotifier struct {
	cfg     *config.EmailConfig
	logger  *slog.Logger
	devMode bool
	ttl     time.Duration
	dial    func(m *gomail.Message) error
}

// NewEmailNotifier creates an EmailNotifier. In devMode a missing SMTP
// configuration logs the code instead of failing.
func NewEmailNotifier(cfg *config.EmailConfig, logger *slog.Logger, devMode bool, ttl time.Duration) *EmailNotifier {
	n := &EmailNotifier{
		cfg:     cfg,
		logger:  logger,
		devMode: devMode,
		ttl:     ttl,
	}
	n.dial = func(m *gomail.Message) error {
		d := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass)
		return d.DialAndSend(m)
	}
	return n
}

func (n *EmailNotifier) configured() bool {
	return n.cfg != nil && n.cfg.SMTPHost != "" && n.cfg.SMTPUser != "" && n.cfg.SMTPPass != ""
}

// SendCode mails code to toEmail.
func (n *EmailNotifier) SendCode(ctx context.Context, toEmail, code, role string) error {
	if strings.TrimSpace(toEmail) == "" {
		return fmt.Errorf("empty recipient")
	}
	if !n.configured() {
		if !n.devMode {
			return ErrNotConfigured
		}
		if n.logger != nil {
			n.logger.Warn("smtp not configured, logging verification code",
				slog.String("to", toEmail), slog.String("code", code), slog.String("role", role))
		}
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	from := n.cfg.FromEmail
	if from == "" {
		from = n.cfg.SMTPUser
	}

	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "JobLink - Email Verification Code")
	m.SetBody("text/html", buildCodeBody(code, role, n.ttl))

	if err := n.dial(m); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	if n.logger != nil {
		n.logger.Info("verification email sent", slog.String("to", toEmail))
	}
	return nil
}

func buildCodeBody(code, role string, ttl time.Duration) string {
	account := "student"
	if role == "hr" {
		account = "HR"
	}
	minutes := int(ttl.Minutes())
	if minutes <= 0 {
		minutes = 10
	}
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif;">
  <div style="max-width: 520px; margin: 0 auto; padding: 16px;">
    <h2>JobLink email verification</h2>
    <p>Use this code to finish creating your %s account:</p>
    <div style="font-size: 28px; font-weight: bold; letter-spacing: 3px;">%s</div>
    <p>The code expires in %d minutes.</p>
  </div>
</body>
</html>`, account, code, minutes)
}

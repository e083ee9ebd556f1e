package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Aman-1206/Joblink/internal/config"

	"gopkg.in/gomail.v2"
)

func TestSendCode_DevModeWithoutSMTP(t *testing.T) {
	n := NewEmailNotifier(&config.EmailConfig{}, nil, true, 10*time.Minute)
	if err := n.SendCode(context.Background(), "a@b.io", "123456", "student"); err != nil {
		t.Fatalf("expected dev mode to succeed, got %v", err)
	}
}

func TestSendCode_MissingSMTP(t *testing.T) {
	n := NewEmailNotifier(&config.EmailConfig{}, nil, false, 10*time.Minute)
	err := n.SendCode(context.Background(), "a@b.io", "123456", "student")
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestSendCode_DialFailure(t *testing.T) {
	cfg := &config.EmailConfig{SMTPHost: "smtp.test", SMTPPort: 587, SMTPUser: "u", SMTPPass: "p", FromEmail: "no-reply@joblink.test"}
	n := NewEmailNotifier(cfg, nil, false, 10*time.Minute)

	var sent *gomail.Message
	n.dial = func(m *gomail.Message) error {
		sent = m
		return errors.New("connection refused")
	}

	err := n.SendCode(context.Background(), "hr@acme.io", "654321", "hr")
	if err == nil || !strings.Contains(err.Error(), "connection refused") {
		t.Fatalf("expected wrapped dial error, got %v", err)
	}
	if sent == nil || sent.GetHeader("To")[0] != "hr@acme.io" {
		t.Fatalf("expected message addressed to hr@acme.io")
	}
}

func TestBuildCodeBody(t *testing.T) {
	body := buildCodeBody("111222", "hr", 15*time.Minute)
	if !strings.Contains(body, "111222") || !strings.Contains(body, "HR account") || !strings.Contains(body, "15 minutes") {
		t.Fatalf("unexpected body: %s", body)
	}
}

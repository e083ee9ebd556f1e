package token

import (
	"testing"
	"time"
)

func TestIssueParseRoundTrip(t *testing.T) {
	iss := NewIssuer("secret", time.Hour)

	raw, err := iss.Issue(42, "hr")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, err := iss.Parse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != 42 || claims.Role != "hr" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	raw, err := NewIssuer("one", time.Hour).Issue(1, "student")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := NewIssuer("two", time.Hour).Parse(raw); err != ErrInvalid {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func TestParseRejectsExpired(t *testing.T) {
	iss := NewIssuer("secret", time.Minute)
	start := time.Now()
	iss.now = func() time.Time { return start }

	raw, err := iss.Issue(7, "admin")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	iss.now = func() time.Time { return start.Add(2 * time.Minute) }
	if _, err := iss.Parse(raw); err != ErrInvalid {
		t.Fatalf("expected ErrInvalid for expired token, got %v", err)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	if _, err := NewIssuer("secret", 0).Parse("not-a-token"); err != ErrInvalid {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/Aman-1206/Joblink/internal/model"

	"golang.org/x/crypto/bcrypt"
)

// DefaultDomains is the company domain allowlist installed on first start.
var DefaultDomains = []model.CompanyDomain{
	{Domain: "google.com", CompanyName: "Google"},
	{Domain: "apple.com", CompanyName: "Apple"},
	{Domain: "microsoft.com", CompanyName: "Microsoft"},
	{Domain: "amazon.com", CompanyName: "Amazon"},
	{Domain: "meta.com", CompanyName: "Meta"},
	{Domain: "netflix.com", CompanyName: "Netflix"},
	{Domain: "tesla.com", CompanyName: "Tesla"},
	{Domain: "nvidia.com", CompanyName: "NVIDIA"},
	{Domain: "adobe.com", CompanyName: "Adobe"},
	{Domain: "salesforce.com", CompanyName: "Salesforce"},
	{Domain: "oracle.com", CompanyName: "Oracle"},
	{Domain: "ibm.com", CompanyName: "IBM"},
	{Domain: "intel.com", CompanyName: "Intel"},
	{Domain: "spotify.com", CompanyName: "Spotify"},
	{Domain: "uber.com", CompanyName: "Uber"},
	{Domain: "airbnb.com", CompanyName: "Airbnb"},
	{Domain: "stripe.com", CompanyName: "Stripe"},
	{Domain: "slack.com", CompanyName: "Slack"},
	{Domain: "zoom.us", CompanyName: "Zoom"},
	{Domain: "linkedin.com", CompanyName: "LinkedIn"},
	{Domain: "twitter.com", CompanyName: "Twitter/X"},
	{Domain: "github.com", CompanyName: "GitHub"},
	{Domain: "dropbox.com", CompanyName: "Dropbox"},
	{Domain: "paypal.com", CompanyName: "PayPal"},
	{Domain: "vmware.com", CompanyName: "VMware"},
	{Domain: "cisco.com", CompanyName: "Cisco"},
	{Domain: "qualcomm.com", CompanyName: "Qualcomm"},
	{Domain: "broadcom.com", CompanyName: "Broadcom"},
	{Domain: "atlassian.com", CompanyName: "Atlassian"},
	{Domain: "shopify.com", CompanyName: "Shopify"},
}

// Seed installs the default domain allowlist and an admin account.
// Existing rows are left untouched, so it is safe to call on every start.
func Seed(ctx context.Context, s Store, adminEmail, adminPassword string) error {
	for _, d := range DefaultDomains {
		d := d
		if _, err := s.DomainByName(ctx, d.Domain); err == nil {
			continue
		} else if !errors.Is(err, ErrNotFound) {
			return err
		}
		if err := s.CreateDomain(ctx, &d); err != nil && !errors.Is(err, ErrDuplicate) {
			return fmt.Errorf("seed domain %s: %w", d.Domain, err)
		}
	}

	if adminEmail == "" || adminPassword == "" {
		return nil
	}
	_, err := s.UserByEmail(ctx, adminEmail)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrNotFound) {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	admin := &model.User{
		Email:        adminEmail,
		PasswordHash: string(hash),
		Role:         model.RoleAdmin,
		Status:       model.StatusActive,
		FullName:     "Admin",
	}
	if err := s.CreateUser(ctx, admin); err != nil && !errors.Is(err, ErrDuplicate) {
		return fmt.Errorf("seed admin: %w", err)
	}
	return nil
}

package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Aman-1206/Joblink/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryUniqueKeys(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	require.NoError(t, s.CreateUser(ctx, &model.User{Email: "a@b.io", Role: model.RoleStudent}))
	assert.ErrorIs(t, s.CreateUser(ctx, &model.User{Email: "a@b.io", Role: model.RoleHR}), ErrDuplicate)

	require.NoError(t, s.CreateDomain(ctx, &model.CompanyDomain{Domain: "acme.io", CompanyName: "Acme"}))
	assert.ErrorIs(t, s.CreateDomain(ctx, &model.CompanyDomain{Domain: "acme.io", CompanyName: "Other"}), ErrDuplicate)

	require.NoError(t, s.CreateApplication(ctx, &model.Application{JobID: 1, UserID: 1}))
	assert.ErrorIs(t, s.CreateApplication(ctx, &model.Application{JobID: 1, UserID: 1}), ErrDuplicate)

	require.NoError(t, s.SaveJob(ctx, &model.SavedJob{JobID: 1, UserID: 1}))
	assert.ErrorIs(t, s.SaveJob(ctx, &model.SavedJob{JobID: 1, UserID: 1}), ErrDuplicate)
}

func TestMemoryEmailTakenIncludesPending(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	taken, err := s.EmailTaken(ctx, "hr@corp.io")
	require.NoError(t, err)
	assert.False(t, taken)

	require.NoError(t, s.CreatePending(ctx, &model.PendingHrApproval{Email: "hr@corp.io"}))
	taken, err = s.EmailTaken(ctx, "hr@corp.io")
	require.NoError(t, err)
	assert.True(t, taken)
}

func TestMemoryReplaceCodeKeepsOne(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	require.NoError(t, s.ReplaceCode(ctx, &model.OneTimeCode{Email: "a@b.io", Code: "111111"}))
	require.NoError(t, s.ReplaceCode(ctx, &model.OneTimeCode{Email: "a@b.io", Code: "222222"}))
	require.NoError(t, s.ReplaceCode(ctx, &model.OneTimeCode{Email: "c@d.io", Code: "333333"}))

	c, err := s.LatestCode(ctx, "a@b.io")
	require.NoError(t, err)
	assert.Equal(t, "222222", c.Code)

	n := 0
	for _, code := range s.data.codes {
		if code.Email == "a@b.io" {
			n++
		}
	}
	assert.Equal(t, 1, n)
}

func TestMemoryPurgeExpiredCodes(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, s.ReplaceCode(ctx, &model.OneTimeCode{Email: "old@b.io", ExpiresAt: now.Add(-time.Minute)}))
	require.NoError(t, s.ReplaceCode(ctx, &model.OneTimeCode{Email: "new@b.io", ExpiresAt: now.Add(time.Minute)}))

	n, err := s.PurgeExpiredCodes(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = s.LatestCode(ctx, "old@b.io")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.LatestCode(ctx, "new@b.io")
	assert.NoError(t, err)
}

func TestMemoryTxRollsBack(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	boom := errors.New("boom")

	err := s.Tx(ctx, func(tx Store) error {
		if err := tx.CreateUser(ctx, &model.User{Email: "a@b.io"}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = s.UserByEmail(ctx, "a@b.io")
	assert.ErrorIs(t, err, ErrNotFound)

	err = s.Tx(ctx, func(tx Store) error {
		return tx.CreateUser(ctx, &model.User{Email: "a@b.io"})
	})
	require.NoError(t, err)
	_, err = s.UserByEmail(ctx, "a@b.io")
	assert.NoError(t, err)
}

func TestMemoryDeleteJobCascades(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	hr := &model.User{Email: "hr@acme.io", Role: model.RoleHR, CompanyName: "Acme"}
	require.NoError(t, s.CreateUser(ctx, hr))
	job := &model.Job{HRID: hr.ID, Title: "Go dev", CompanyName: "Acme"}
	other := &model.Job{HRID: hr.ID, Title: "Rust dev", CompanyName: "Acme"}
	require.NoError(t, s.CreateJob(ctx, job))
	require.NoError(t, s.CreateJob(ctx, other))

	require.NoError(t, s.CreateApplication(ctx, &model.Application{JobID: job.ID, UserID: 10}))
	require.NoError(t, s.CreateApplication(ctx, &model.Application{JobID: other.ID, UserID: 10}))
	require.NoError(t, s.CreateReport(ctx, &model.JobReport{JobID: job.ID, UserID: 10}))
	require.NoError(t, s.SaveJob(ctx, &model.SavedJob{JobID: job.ID, UserID: 10}))

	view, err := s.JobViewByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), view.ApplicationCount)
	assert.Equal(t, "Acme", view.HRCompany)

	require.NoError(t, s.DeleteJob(ctx, job.ID))
	assert.ErrorIs(t, s.DeleteJob(ctx, job.ID), ErrNotFound)

	_, err = s.JobByID(ctx, job.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	reports, err := s.ListReports(ctx)
	require.NoError(t, err)
	assert.Empty(t, reports)
	ids, err := s.SavedJobIDs(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, ids)

	exists, err := s.ApplicationExists(ctx, other.ID, 10)
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = s.ApplicationExists(ctx, job.ID, 10)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestMemoryAnalytics(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	users := []model.User{
		{Email: "a@google.com", Role: model.RoleHR, CompanyName: "Google"},
		{Email: "b@google.com", Role: model.RoleHR, CompanyName: "Google"},
		{Email: "c@acme.io", Role: model.RoleHR, CompanyName: "Acme"},
		{Email: "s@x.io", Role: model.RoleStudent},
		{Email: "admin@x.io", Role: model.RoleAdmin},
	}
	for i := range users {
		require.NoError(t, s.CreateUser(ctx, &users[i]))
	}
	require.NoError(t, s.CreateJob(ctx, &model.Job{HRID: users[0].ID, Title: "t"}))

	a, err := s.Analytics(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.Analytics{Companies: 2, HRCount: 3, StudentCount: 1, JobCount: 1, AdminCount: 1}, *a)

	summaries, err := s.CompanySummaries(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.CompanySummary{{CompanyName: "Acme", HRCount: 1}, {CompanyName: "Google", HRCount: 2}}, summaries)
}

func TestSeedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	require.NoError(t, Seed(ctx, s, "admin@joblink.com", "admin123"))
	require.NoError(t, Seed(ctx, s, "admin@joblink.com", "admin123"))

	domains, err := s.ListDomains(ctx)
	require.NoError(t, err)
	assert.Len(t, domains, len(DefaultDomains))

	d, err := s.DomainByName(ctx, "zoom.us")
	require.NoError(t, err)
	assert.Equal(t, "Zoom", d.CompanyName)

	admins, err := s.ListUsers(ctx, model.RoleAdmin)
	require.NoError(t, err)
	require.Len(t, admins, 1)
	assert.Equal(t, "admin@joblink.com", admins[0].Email)
}

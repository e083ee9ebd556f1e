package service

import (
	"context"
	"testing"

	"github.com/Aman-1206/Joblink/internal/model"
	"github.com/Aman-1206/Joblink/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApprovePending_SecondCallNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.RegisterHR(ctx, "hr@unknown-corp.io", "pw", Profile{FullName: "Ada", CompanyName: "Unknown Corp", GSTNumber: "GST1"})
	require.NoError(t, err)
	require.True(t, res.Pending)
	pending, err := f.svc.ListPending(ctx, "")
	require.NoError(t, err)
	require.Len(t, pending, 1)

	u, err := f.svc.ApprovePending(ctx, pending[0].ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleHR, u.Role)
	assert.Equal(t, model.StatusActive, u.Status)
	assert.Equal(t, "Unknown Corp", u.CompanyName)
	assert.Equal(t, "GST1", u.GSTNumber)

	_, err = f.svc.ApprovePending(ctx, pending[0].ID)
	assert.ErrorIs(t, err, ErrRequestNotFound)

	hrs, err := f.svc.ListHRs(ctx, "")
	require.NoError(t, err)
	assert.Len(t, hrs, 1)

	left, err := f.svc.ListPending(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestApprovePending_ExistingUserCleansUp(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := &model.PendingHrApproval{Email: "dup@corp.io", PasswordHash: "x"}
	require.NoError(t, f.store.CreatePending(ctx, p))
	require.NoError(t, f.store.CreateUser(ctx, &model.User{Email: "dup@corp.io", Role: model.RoleStudent}))

	_, err := f.svc.ApprovePending(ctx, p.ID)
	assert.ErrorIs(t, err, ErrAlreadyRegistered)

	_, err = f.store.PendingByID(ctx, p.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRejectPending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := &model.PendingHrApproval{Email: "hr@corp.io", PasswordHash: "x"}
	require.NoError(t, f.store.CreatePending(ctx, p))

	require.NoError(t, f.svc.RejectPending(ctx, p.ID))
	assert.ErrorIs(t, f.svc.RejectPending(ctx, p.ID), ErrRequestNotFound)

	taken, err := f.store.EmailTaken(ctx, "hr@corp.io")
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestAddDomain(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	d, err := f.svc.AddDomain(ctx, "  WWW.Acme.IO ", " Acme ")
	require.NoError(t, err)
	assert.Equal(t, "acme.io", d.Domain)
	assert.Equal(t, "Acme", d.CompanyName)

	_, err = f.svc.AddDomain(ctx, "acme.io", "Acme Again")
	assert.ErrorIs(t, err, ErrDuplicateDomain)

	_, err = f.svc.AddDomain(ctx, " ", "Acme")
	assert.Equal(t, KindValidation, KindOf(err))

	hr := f.hr(t, "talent@acme.io")
	assert.Equal(t, "Acme", hr.CompanyName)

	domains, err := f.svc.ListDomains(ctx)
	require.NoError(t, err)
	assert.Len(t, domains, 2)
}

func TestAddAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.svc.AddAdmin(ctx, "Root@JobLink.com", "pw", "")
	require.NoError(t, err)
	assert.Equal(t, "root@joblink.com", u.Email)
	assert.Equal(t, model.RoleAdmin, u.Role)
	assert.Equal(t, "Admin", u.FullName)

	_, err = f.svc.AddAdmin(ctx, "root@joblink.com", "pw", "Other")
	assert.ErrorIs(t, err, ErrAlreadyRegistered)

	res, err := f.svc.Login(ctx, "root@joblink.com", "pw", model.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, u.ID, res.User.ID)
}

func TestVerifyGST(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	hr := f.hr(t, "hr@google.com")
	s := f.student(t, "s@b.io")

	require.NoError(t, f.svc.VerifyGST(ctx, hr.ID))
	got, err := f.svc.Me(ctx, hr.ID)
	require.NoError(t, err)
	assert.True(t, got.GSTVerified)

	assert.ErrorIs(t, f.svc.VerifyGST(ctx, s.ID), ErrHRNotFound)
	assert.ErrorIs(t, f.svc.VerifyGST(ctx, 999), ErrHRNotFound)
}

func TestDeleteJob_CascadesAndHidesJob(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	hr := f.hr(t, "hr@google.com")
	s := f.student(t, "s@b.io")
	job := f.job(t, hr.ID, "Go Developer")
	keep := f.job(t, hr.ID, "Rust Developer")

	_, err := f.svc.Apply(ctx, s.ID, ApplyInput{JobID: job.ID})
	require.NoError(t, err)
	_, err = f.svc.Apply(ctx, s.ID, ApplyInput{JobID: keep.ID})
	require.NoError(t, err)
	_, err = f.svc.Report(ctx, s.ID, ReportInput{JobID: job.ID, Reason: "spam"})
	require.NoError(t, err)
	require.NoError(t, f.svc.SaveJob(ctx, s.ID, job.ID))

	assert.ErrorIs(t, f.svc.DeleteJob(ctx, job.ID, hr.ID+100), ErrJobNotFound)
	require.NoError(t, f.svc.DeleteJob(ctx, job.ID, 0))

	_, err = f.svc.GetJob(ctx, job.ID)
	assert.ErrorIs(t, err, ErrJobNotFound)

	apps, err := f.svc.MyApplications(ctx, s.ID)
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, keep.ID, apps[0].JobID)

	reports, err := f.svc.ListReports(ctx)
	require.NoError(t, err)
	assert.Empty(t, reports)

	ids, err := f.svc.SavedJobIDs(ctx, s.ID)
	require.NoError(t, err)
	assert.Empty(t, ids)

	assert.ErrorIs(t, f.svc.DeleteJob(ctx, job.ID, 0), ErrJobNotFound)
}

func TestDismissReport(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	hr := f.hr(t, "hr@google.com")
	s := f.student(t, "s@b.io")
	job := f.job(t, hr.ID, "Go Developer")
	r, err := f.svc.Report(ctx, s.ID, ReportInput{JobID: job.ID, Reason: "fake"})
	require.NoError(t, err)

	require.NoError(t, f.svc.DismissReport(ctx, r.ID))
	assert.ErrorIs(t, f.svc.DismissReport(ctx, r.ID), ErrReportNotFound)

	_, err = f.svc.GetJob(ctx, job.ID)
	assert.NoError(t, err)
}

func TestAdminListingsSearch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	hr := f.hr(t, "hr@google.com")
	f.student(t, "asha@b.io")
	f.student(t, "ravi@b.io")
	f.job(t, hr.ID, "Backend Engineer")
	f.job(t, hr.ID, "Designer")

	students, err := f.svc.ListStudents(ctx, "ASHA")
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, "asha@b.io", students[0].Email)

	hrs, err := f.svc.ListHRs(ctx, "google")
	require.NoError(t, err)
	assert.Len(t, hrs, 1)

	jobs, err := f.svc.ListAllJobs(ctx, "engineer")
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "hr@google.com", jobs[0].HREmail)

	companies, err := f.svc.ListCompanies(ctx, "goo")
	require.NoError(t, err)
	assert.Equal(t, []model.CompanySummary{{CompanyName: "Google", HRCount: 1}}, companies)

	a, err := f.svc.Analytics(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), a.StudentCount)
	assert.Equal(t, int64(2), a.JobCount)
}

package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Aman-1206/Joblink/internal/model"
	"github.com/Aman-1206/Joblink/internal/pkg/storage"
	"github.com/Aman-1206/Joblink/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestCode_SecondRequestReplacesFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.RequestCode(ctx, "Asha@Example.com ", model.RoleStudent, nil))
	first := f.sender.last(t)
	require.NoError(t, f.svc.RequestCode(ctx, "asha@example.com", model.RoleStudent, nil))
	second := f.sender.last(t)

	require.Len(t, f.sender.sent, 2)
	assert.Equal(t, "asha@example.com", f.sender.sent[0].email)
	assert.Len(t, second, 6)

	live, err := f.store.LatestCode(ctx, "asha@example.com")
	require.NoError(t, err)
	assert.Equal(t, second, live.Code)
	assert.Equal(t, f.now.Add(10*time.Minute), live.ExpiresAt)

	if first != second {
		_, err = f.svc.VerifyAndRegister(ctx, VerifyInput{Email: "asha@example.com", Code: first, Password: "pw"})
		assert.ErrorIs(t, err, ErrCodeMismatch)
	}
	res, err := f.svc.VerifyAndRegister(ctx, VerifyInput{Email: "asha@example.com", Code: second, Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, model.RoleStudent, res.User.Role)
}

func TestRequestCode_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.svc.RequestCode(ctx, "", model.RoleStudent, nil)
	assert.Equal(t, KindValidation, KindOf(err))

	err = f.svc.RequestCode(ctx, "a@b.io", model.RoleAdmin, nil)
	assert.ErrorIs(t, err, ErrInvalidRole)
	assert.Empty(t, f.sender.sent)
}

func TestRequestCode_RejectsTakenEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.student(t, "taken@b.io")
	assert.ErrorIs(t, f.svc.RequestCode(ctx, "taken@b.io", model.RoleStudent, nil), ErrAlreadyRegistered)

	require.NoError(t, f.store.CreatePending(ctx, &model.PendingHrApproval{Email: "hr@pending.io"}))
	assert.ErrorIs(t, f.svc.RequestCode(ctx, "hr@pending.io", model.RoleHR, nil), ErrAlreadyRegistered)
	assert.Empty(t, f.sender.sent)
}

func TestRequestCode_DeliveryFailure(t *testing.T) {
	f := newFixture(t)
	cd := &fakeCooldown{}
	f.svc.cooldown = cd
	f.sender.err = errors.New("smtp down")

	err := f.svc.RequestCode(context.Background(), "a@b.io", model.RoleStudent, nil)
	assert.ErrorIs(t, err, ErrDelivery)
	assert.Equal(t, KindDelivery, KindOf(err))
	assert.Equal(t, 1, cd.resets)
}

func TestRequestCode_Cooldown(t *testing.T) {
	f := newFixture(t)
	f.svc.cooldown = &fakeCooldown{deny: true}

	err := f.svc.RequestCode(context.Background(), "a@b.io", model.RoleStudent, nil)
	assert.ErrorIs(t, err, ErrTooManyRequests)
	assert.Empty(t, f.sender.sent)
}

func TestRequestCode_CooldownErrorFailsOpen(t *testing.T) {
	f := newFixture(t)
	f.svc.cooldown = &fakeCooldown{err: errors.New("redis gone")}

	require.NoError(t, f.svc.RequestCode(context.Background(), "a@b.io", model.RoleStudent, nil))
	assert.Len(t, f.sender.sent, 1)
}

func TestVerify_ExpiredCodeLeavesNoRow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.RequestCode(ctx, "late@b.io", model.RoleStudent, nil))
	code := f.sender.last(t)
	f.now = f.now.Add(10*time.Minute + time.Second)

	_, err := f.svc.VerifyAndRegister(ctx, VerifyInput{Email: "late@b.io", Code: code, Password: "pw"})
	assert.ErrorIs(t, err, ErrCodeExpired)

	_, err = f.store.LatestCode(ctx, "late@b.io")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = f.svc.VerifyAndRegister(ctx, VerifyInput{Email: "late@b.io", Code: code, Password: "pw"})
	assert.ErrorIs(t, err, ErrCodeNotFound)
}

func TestVerify_WrongCodeKeepsRow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.RequestCode(ctx, "a@b.io", model.RoleStudent, nil))
	_, err := f.svc.VerifyAndRegister(ctx, VerifyInput{Email: "a@b.io", Code: "not-a-code", Password: "pw"})
	assert.ErrorIs(t, err, ErrCodeMismatch)

	_, err = f.store.LatestCode(ctx, "a@b.io")
	assert.NoError(t, err)
}

func TestVerify_RoleMismatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.RequestCode(ctx, "a@google.com", model.RoleHR, nil))
	_, err := f.svc.VerifyAndRegister(ctx, VerifyInput{
		Email: "a@google.com", Code: f.sender.last(t), Password: "pw", Role: model.RoleStudent,
	})
	assert.ErrorIs(t, err, ErrRoleMismatch)
}

func TestVerify_MissingFields(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.VerifyAndRegister(context.Background(), VerifyInput{Email: "a@b.io", Code: "123456"})
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestVerify_ProfilePrecedence(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	stored := &Profile{FullName: "Stored Name", Phone: "111"}
	require.NoError(t, f.svc.RequestCode(ctx, "p@b.io", model.RoleStudent, stored))

	res, err := f.svc.VerifyAndRegister(ctx, VerifyInput{
		Email: "p@b.io", Code: f.sender.last(t), Password: "pw",
		Profile: Profile{FullName: "Body Name"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Body Name", res.User.FullName)
	assert.Equal(t, "111", res.User.Phone)

	claims, err := f.tokens.Parse(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.UserID)
	assert.Equal(t, model.RoleStudent, claims.Role)
}

func TestVerify_HRAllowlistedDomainIsActive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.RequestCode(ctx, "recruiter@GOOGLE.com", model.RoleHR, nil))
	res, err := f.svc.VerifyAndRegister(ctx, VerifyInput{
		Email: "recruiter@google.com", Code: f.sender.last(t), Password: "pw", Role: model.RoleHR,
		Profile: Profile{CompanyName: "Not Google"},
	})
	require.NoError(t, err)
	assert.False(t, res.Pending)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, model.StatusActive, res.User.Status)
	assert.Equal(t, "Google", res.User.CompanyName)
}

func TestVerify_HRUnknownDomainIsPending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.RequestCode(ctx, "hr@unknown-corp.io", model.RoleHR, nil))
	res, err := f.svc.VerifyAndRegister(ctx, VerifyInput{
		Email: "hr@unknown-corp.io", Code: f.sender.last(t), Password: "pw", Role: model.RoleHR,
		Profile: Profile{FullName: "Ada", CompanyName: "Unknown Corp"},
	})
	require.NoError(t, err)
	assert.True(t, res.Pending)
	assert.Empty(t, res.Token)
	assert.Nil(t, res.User)

	_, err = f.store.UserByEmail(ctx, "hr@unknown-corp.io")
	assert.ErrorIs(t, err, store.ErrNotFound)

	pending, err := f.svc.ListPending(ctx, "")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "Ada", pending[0].FullName)
	assert.Equal(t, "Unknown Corp", pending[0].CompanyName)
}

func TestRegisterHR_DuplicatePendingIsConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.RegisterHR(ctx, "hr@small.io", "pw", Profile{})
	require.NoError(t, err)
	require.True(t, res.Pending)

	_, err = f.svc.RegisterHR(ctx, "hr@small.io", "pw", Profile{})
	assert.ErrorIs(t, err, ErrAlreadyRegistered)
}

func TestRegisterStudent_Duplicate(t *testing.T) {
	f := newFixture(t)
	f.student(t, "s@b.io")

	_, err := f.svc.RegisterStudent(context.Background(), "S@B.io", "pw", Profile{})
	assert.ErrorIs(t, err, ErrAlreadyRegistered)
	assert.Equal(t, KindConflict, KindOf(err))
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.student(t, "s@b.io")

	res, err := f.svc.Login(ctx, "s@b.io", "secret1", "")
	require.NoError(t, err)
	assert.Equal(t, u.ID, res.User.ID)
	assert.NotEmpty(t, res.Token)

	_, err = f.svc.Login(ctx, "s@b.io", "wrong", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.svc.Login(ctx, "ghost@b.io", "secret1", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.svc.Login(ctx, "s@b.io", "secret1", model.RoleHR)
	require.Error(t, err)
	assert.Equal(t, KindAuth, KindOf(err))
	assert.Equal(t, "Please login as student", err.Error())
}

func TestLogin_StatusChecks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	hash, err := f.svc.hash("pw")
	require.NoError(t, err)
	require.NoError(t, f.store.CreateUser(ctx, &model.User{
		Email: "rejected@b.io", PasswordHash: hash, Role: model.RoleHR, Status: model.StatusRejected,
	}))
	require.NoError(t, f.store.CreateUser(ctx, &model.User{
		Email: "waiting@b.io", PasswordHash: hash, Role: model.RoleHR, Status: model.StatusPending,
	}))

	_, err = f.svc.Login(ctx, "rejected@b.io", "pw", "")
	assert.ErrorIs(t, err, ErrAccountRejected)
	_, err = f.svc.Login(ctx, "waiting@b.io", "pw", "")
	assert.ErrorIs(t, err, ErrAccountPending)
}

func TestMeAndProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.student(t, "s@b.io")

	_, err := f.svc.Me(ctx, 999)
	assert.ErrorIs(t, err, ErrUserNotFound)

	name := "New Name"
	updated, err := f.svc.UpdateProfile(ctx, u.ID, &name, nil)
	require.NoError(t, err)
	assert.Equal(t, "New Name", updated.FullName)

	withPhoto, err := f.svc.SetProfilePhoto(ctx, u.ID, storage.File{Name: "me.png", Body: bytes.NewReader([]byte("img"))})
	require.NoError(t, err)
	assert.Equal(t, "/uploads/photo-1", withPhoto.ProfilePhoto)
	assert.Equal(t, []storage.Kind{storage.KindPhoto}, f.uploads.kinds)
}

func TestSetProfilePhoto_RejectedUpload(t *testing.T) {
	f := newFixture(t)
	u := f.student(t, "s@b.io")
	f.uploads.err = storage.ErrUnsupportedType

	_, err := f.svc.SetProfilePhoto(context.Background(), u.ID, storage.File{Name: "x.exe", Body: bytes.NewReader(nil)})
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestLoginExternal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.LoginExternal(ctx, "g-1", "new@gmail.com", "New User")
	require.NoError(t, err)
	assert.Equal(t, model.RoleStudent, res.User.Role)
	assert.Equal(t, "New User", res.User.FullName)
	assert.NotEmpty(t, res.Token)

	again, err := f.svc.LoginExternal(ctx, "g-1", "new@gmail.com", "New User")
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, again.User.ID)

	hr := f.hr(t, "lead@google.com")
	linked, err := f.svc.LoginExternal(ctx, "g-2", "lead@google.com", "Lead")
	require.NoError(t, err)
	assert.Equal(t, hr.ID, linked.User.ID)
	assert.Equal(t, model.RoleHR, linked.User.Role)

	byID, err := f.store.UserByExternalID(ctx, "g-2")
	require.NoError(t, err)
	assert.Equal(t, hr.ID, byID.ID)
}

func TestGenerateCode(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := generateCode(6)
		require.NoError(t, err)
		require.Len(t, code, 6)
		for _, c := range code {
			require.True(t, c >= '0' && c <= '9', "non-digit in %q", code)
		}
	}

	_, err := generateCode(0)
	assert.Error(t, err)
}

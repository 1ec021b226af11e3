package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/Abhinavraj53/Pujnam-Store/pkg/apperr"
	"github.com/Abhinavraj53/Pujnam-Store/pkg/auth"
	"github.com/Abhinavraj53/Pujnam-Store/pkg/models"
	"github.com/Abhinavraj53/Pujnam-Store/pkg/repository"
	"github.com/Abhinavraj53/Pujnam-Store/pkg/service/servicetest"
)

type authFixture struct {
	svc    *AuthService
	users  *servicetest.Users
	otps   *servicetest.OTPs
	mailer *servicetest.Mailer
	tokens *auth.TokenManager
	now    time.Time
}

func newAuthFixture(users ...models.User) *authFixture {
	f := &authFixture{
		users:  servicetest.NewUsers(users...),
		otps:   servicetest.NewOTPs(),
		mailer: &servicetest.Mailer{},
		tokens: auth.NewTokenManager("test-secret", time.Hour),
		now:    fixedNow,
	}
	f.svc = NewAuthService(f.users, f.otps, f.mailer, f.tokens, 10*time.Minute, zap.NewNop(),
		func() time.Time { return f.now })
	return f
}

func otherCode(code string) string {
	if code == "000000" {
		return "111111"
	}
	return "000000"
}

func verifiedUser(t *testing.T, email, password string) models.User {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	return models.User{ID: primitive.NewObjectID(), Email: email, Name: "Meera", Password: hash, Role: models.RoleUser, EmailVerified: true}
}

func TestRegisterAndVerify(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	err := f.svc.Register(ctx, RegisterInput{Email: " Meera@Example.com ", Password: "secret1", Name: "Meera"})
	require.NoError(t, err)

	sent := f.mailer.Last()
	assert.Equal(t, "verification", sent.Kind)
	assert.Equal(t, "meera@example.com", sent.Email)
	assert.Len(t, sent.Code, 6)

	_, err = f.users.GetByEmail(ctx, "meera@example.com")
	assert.ErrorIs(t, err, repository.ErrNotFound, "no account before verification")

	_, err = f.svc.VerifyEmail(ctx, "meera@example.com", otherCode(sent.Code))
	assert.Equal(t, apperr.CodeInvalidOTP, apperr.CodeOf(err))

	session, err := f.svc.VerifyEmail(ctx, "MEERA@example.com", sent.Code)
	require.NoError(t, err)
	assert.True(t, session.User.EmailVerified)
	assert.Equal(t, models.RoleUser, session.User.Role)

	id, err := f.tokens.Parse(session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, id)

	again, err := f.svc.VerifyEmail(ctx, "meera@example.com", "")
	require.NoError(t, err, "already verified accounts just sign in")
	assert.Equal(t, session.User.ID, again.User.ID)

	err = f.svc.Register(ctx, RegisterInput{Email: "meera@example.com", Password: "secret1", Name: "Meera"})
	assert.Equal(t, apperr.CodeEmailTaken, apperr.CodeOf(err))
}

func TestRegisterValidation(t *testing.T) {
	f := newAuthFixture()
	tests := map[string]RegisterInput{
		"no at sign":     {Email: "meera", Password: "secret1", Name: "Meera"},
		"no name":        {Email: "m@example.com", Password: "secret1"},
		"short password": {Email: "m@example.com", Password: "abc", Name: "Meera"},
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			err := f.svc.Register(context.Background(), in)
			assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))
		})
	}
}

func TestRegisterMailFailureDropsPending(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	f.mailer.Err = errors.New("smtp: 421 try later")

	err := f.svc.Register(ctx, RegisterInput{Email: "m@example.com", Password: "secret1", Name: "Meera"})
	require.Error(t, err)
	assert.Equal(t, apperr.CodeMailDelivery, apperr.CodeOf(err))
	assert.Equal(t, 502, apperr.From(err).Kind.Status())

	_, err = f.otps.GetPending(ctx, "m@example.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestVerifyExpiredCode(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	require.NoError(t, f.svc.Register(ctx, RegisterInput{Email: "m@example.com", Password: "secret1", Name: "Meera"}))
	code := f.mailer.Last().Code

	f.now = fixedNow.Add(11 * time.Minute)
	_, err := f.svc.VerifyEmail(ctx, "m@example.com", code)
	assert.Equal(t, apperr.CodeOTPExpired, apperr.CodeOf(err))

	_, err = f.svc.VerifyEmail(ctx, "m@example.com", code)
	assert.Equal(t, apperr.CodeRegistrationMissing, apperr.CodeOf(err))
}

func TestResendVerification(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	err := f.svc.ResendVerification(ctx, "m@example.com")
	assert.Equal(t, apperr.CodeRegistrationMissing, apperr.CodeOf(err))

	require.NoError(t, f.svc.Register(ctx, RegisterInput{Email: "m@example.com", Password: "secret1", Name: "Meera"}))
	f.now = fixedNow.Add(9 * time.Minute)
	require.NoError(t, f.svc.ResendVerification(ctx, "m@example.com"))

	f.now = fixedNow.Add(15 * time.Minute)
	_, err = f.svc.VerifyEmail(ctx, "m@example.com", f.mailer.Last().Code)
	require.NoError(t, err, "resend restarts the window")
}

func TestLogin(t *testing.T) {
	u := verifiedUser(t, "meera@example.com", "secret1")
	unverified := verifiedUser(t, "new@example.com", "secret1")
	unverified.EmailVerified = false
	admin := verifiedUser(t, "admin@example.com", "secret1")
	admin.EmailVerified = false
	admin.Role = models.RoleAdmin
	f := newAuthFixture(u, unverified, admin)
	ctx := context.Background()

	session, err := f.svc.Login(ctx, "Meera@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, u.ID, session.User.ID)

	user, err := f.svc.Authenticate(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, user.ID)

	_, err = f.svc.Login(ctx, "meera@example.com", "wrong-pass")
	assert.Equal(t, apperr.CodeInvalidCredentials, apperr.CodeOf(err))
	_, err = f.svc.Login(ctx, "ghost@example.com", "secret1")
	assert.Equal(t, apperr.CodeInvalidCredentials, apperr.CodeOf(err))
	assert.Equal(t, 401, apperr.From(err).Kind.Status())

	_, err = f.svc.Login(ctx, "new@example.com", "secret1")
	assert.Equal(t, apperr.CodeEmailNotVerified, apperr.CodeOf(err))
	assert.Equal(t, 403, apperr.From(err).Kind.Status())

	_, err = f.svc.Login(ctx, "admin@example.com", "secret1")
	assert.NoError(t, err, "admins skip verification")

	_, err = f.svc.Authenticate(ctx, "garbage")
	assert.Equal(t, apperr.CodeUnauthorized, apperr.CodeOf(err))

	orphan, err := f.tokens.Issue(primitive.NewObjectID())
	require.NoError(t, err)
	_, err = f.svc.Authenticate(ctx, orphan)
	assert.Equal(t, "Invalid token.", apperr.From(err).Message)
}

func TestForgotAndResetPassword(t *testing.T) {
	u := verifiedUser(t, "meera@example.com", "secret1")
	f := newAuthFixture(u)
	ctx := context.Background()

	err := f.svc.ForgotPassword(ctx, "ghost@example.com")
	assert.Equal(t, apperr.CodeUserNotFound, apperr.CodeOf(err))

	require.NoError(t, f.svc.Register(ctx, RegisterInput{Email: "pending@example.com", Password: "secret1", Name: "P"}))
	err = f.svc.ForgotPassword(ctx, "pending@example.com")
	assert.Equal(t, apperr.CodeEmailNotVerified, apperr.CodeOf(err))

	err = f.svc.ResetPassword(ctx, "meera@example.com", "123456", "newpass")
	assert.Equal(t, apperr.CodeOTPExpired, apperr.CodeOf(err), "no code issued yet")

	require.NoError(t, f.svc.ForgotPassword(ctx, "meera@example.com"))
	sent := f.mailer.Last()
	assert.Equal(t, "reset", sent.Kind)

	err = f.svc.ResetPassword(ctx, "meera@example.com", otherCode(sent.Code), "newpass")
	assert.Equal(t, apperr.CodeInvalidOTP, apperr.CodeOf(err))

	err = f.svc.ResetPassword(ctx, "meera@example.com", sent.Code, "short")
	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))

	require.NoError(t, f.svc.ResetPassword(ctx, "meera@example.com", sent.Code, "newpass"))
	_, err = f.svc.Login(ctx, "meera@example.com", "newpass")
	require.NoError(t, err)

	err = f.svc.ResetPassword(ctx, "meera@example.com", sent.Code, "another")
	assert.Equal(t, apperr.CodeOTPExpired, apperr.CodeOf(err), "codes are single use")
}

func TestChangePassword(t *testing.T) {
	u := verifiedUser(t, "meera@example.com", "secret1")
	f := newAuthFixture(u)
	ctx := context.Background()

	require.NoError(t, f.svc.RequestPasswordChange(ctx, u.ID))
	sent := f.mailer.Last()
	assert.Equal(t, "change", sent.Kind)
	assert.Equal(t, "Meera", sent.Name)

	require.NoError(t, f.svc.ChangePassword(ctx, u.ID, sent.Code, "changed1"))
	_, err := f.svc.Login(ctx, "meera@example.com", "secret1")
	assert.Equal(t, apperr.CodeInvalidCredentials, apperr.CodeOf(err))
	_, err = f.svc.Login(ctx, "meera@example.com", "changed1")
	assert.NoError(t, err)

	err = f.svc.RequestPasswordChange(ctx, primitive.NewObjectID())
	assert.Equal(t, apperr.CodeUserNotFound, apperr.CodeOf(err))
}

func TestProfileAndAddresses(t *testing.T) {
	u := verifiedUser(t, "meera@example.com", "secret1")
	f := newAuthFixture(u)
	ctx := context.Background()

	updated, err := f.svc.UpdateProfile(ctx, u.ID, repository.ProfilePatch{Name: ptr(" Meera Devi "), Phone: ptr("9999900000")})
	require.NoError(t, err)
	assert.Equal(t, "Meera Devi", updated.Name)
	_, err = f.svc.UpdateProfile(ctx, u.ID, repository.ProfilePatch{Name: ptr(" ")})
	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))

	home := AddressInput{Name: "Meera", Phone: "99999", AddressLine1: "1 Assi Ghat", City: "Varanasi", State: "UP", Pincode: "221005"}
	first, err := f.svc.AddAddress(ctx, u.ID, home)
	require.NoError(t, err)
	assert.True(t, first.IsDefault, "first address is the default")
	assert.Equal(t, "India", first.Country)
	assert.Equal(t, models.AddressHome, first.AddressType)

	work := home
	work.AddressLine1 = "Office Park"
	work.AddressType = models.AddressWork
	second, err := f.svc.AddAddress(ctx, u.ID, work)
	require.NoError(t, err)
	assert.False(t, second.IsDefault)

	list, err := f.svc.SetDefaultAddress(ctx, u.ID, second.ID.Hex())
	require.NoError(t, err)
	defaults := 0
	for _, a := range list {
		if a.IsDefault {
			defaults++
			assert.Equal(t, second.ID, a.ID)
		}
	}
	assert.Equal(t, 1, defaults)

	edited := work
	edited.City = "Sarnath"
	got, err := f.svc.UpdateAddress(ctx, u.ID, second.ID.Hex(), edited)
	require.NoError(t, err)
	assert.Equal(t, "Sarnath", got.City)
	assert.True(t, got.IsDefault, "default survives an edit")

	bad := home
	bad.Pincode = ""
	_, err = f.svc.AddAddress(ctx, u.ID, bad)
	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))

	list, err = f.svc.DeleteAddress(ctx, u.ID, first.ID.Hex())
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = f.svc.DeleteAddress(ctx, u.ID, first.ID.Hex())
	assert.Equal(t, apperr.CodeAddressNotFound, apperr.CodeOf(err))
}

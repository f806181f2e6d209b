package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alloneword/internal/credentials"
	"alloneword/internal/database/dbtest"
	"alloneword/internal/models"
	"alloneword/internal/repository"
	"alloneword/internal/validation"
)

func newAuthService(t *testing.T) (*AuthService, *fakeSES) {
	t.Helper()

	ses := &fakeSES{}
	accounts := repository.NewAccountRepository(dbtest.NewSQLite(t))
	return NewAuthService(accounts, newTestEmail(ses), time.Hour), ses
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	svc, ses := newAuthService(t)

	first, err := svc.Register(ctx, RegisterInput{Username: "owner", Email: "owner@example.com", Password: "password123", Role: "teacher"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, first.Role, "first account becomes admin")

	second, err := svc.Register(ctx, RegisterInput{Username: "mia", Password: "password123", DisplayName: "  Mia  ", Role: "student"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, second.Role)
	assert.Equal(t, "Mia", second.DisplayName)
	assert.Empty(t, second.Email)

	assert.Equal(t, []string{"Welcome to Alloneword!"}, ses.subjects(), "only accounts with an email are welcomed")

	tests := []struct {
		name    string
		in      RegisterInput
		wantErr error
		field   string
	}{
		{"duplicate username", RegisterInput{Username: "mia", Password: "password123", Role: "student"}, ErrUsernameTaken, ""},
		{"duplicate email", RegisterInput{Username: "other", Email: "owner@example.com", Password: "password123", Role: "parent"}, ErrEmailTaken, ""},
		{"admin not selectable", RegisterInput{Username: "sneaky", Password: "password123", Role: "admin"}, nil, "role"},
		{"missing role", RegisterInput{Username: "norole", Password: "password123"}, nil, "role"},
		{"short password", RegisterInput{Username: "shorty", Password: "abc", Role: "student"}, nil, "password"},
		{"bad email", RegisterInput{Username: "bademail", Email: "nope", Password: "password123", Role: "parent"}, nil, "email"},
		{"at sign in username", RegisterInput{Username: "mia@home", Password: "password123", Role: "student"}, nil, "username"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.in)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			var verrs validation.Errors
			require.True(t, errors.As(err, &verrs), "expected validation errors, got %v", err)
			assert.Contains(t, verrs, tt.field)
		})
	}
}

func TestLoginAndSessions(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthService(t)

	_, err := svc.Register(ctx, RegisterInput{Username: "teacher", Email: "t@example.com", Password: "password123", Role: "teacher"})
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "teacher", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = svc.Login(ctx, "nobody", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	session, account, err := svc.Login(ctx, "t@example.com", "password123")
	require.NoError(t, err, "email works as the login name")
	assert.Equal(t, "teacher", account.Username)

	got, err := svc.ValidateSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, account.ID, got.ID)

	_, err = svc.ValidateSession(ctx, "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	require.NoError(t, svc.Logout(ctx, session.ID))
	_, err = svc.ValidateSession(ctx, session.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestExpiredSessions(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthService(t)

	account, err := svc.Register(ctx, RegisterInput{Username: "owner", Password: "password123", Role: "teacher"})
	require.NoError(t, err)

	expired, err := svc.accounts.CreateSession(ctx, "expired-session", account.ID, time.Now().Add(-time.Minute))
	require.NoError(t, err)
	_, err = svc.accounts.CreateSession(ctx, "old-session", account.ID, time.Now().Add(-time.Hour))
	require.NoError(t, err)

	_, err = svc.ValidateSession(ctx, expired.ID)
	assert.ErrorIs(t, err, ErrSessionExpired)

	n, err := svc.CleanupExpiredSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "the validated session was already removed")
}

func TestRunSessionCleanupStops(t *testing.T) {
	svc, _ := newAuthService(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.RunSessionCleanup(ctx, 10*time.Millisecond)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("session cleanup did not stop after cancel")
	}
}

func TestEnrolStudent(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthService(t)

	_, err := svc.Register(ctx, RegisterInput{Username: "owner", Password: "password123", Role: "teacher"})
	require.NoError(t, err)

	enrolled, err := svc.EnrolStudent(ctx, " Sam ")
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, enrolled.Account.Role)
	assert.Equal(t, "Sam", enrolled.Account.DisplayName)
	assert.Len(t, enrolled.Password, credentials.TemporaryPasswordLength)

	_, account, err := svc.Login(ctx, enrolled.Account.Username, enrolled.Password)
	require.NoError(t, err, "the generated credentials sign in")
	assert.Equal(t, enrolled.Account.ID, account.ID)

	_, err = svc.EnrolStudent(ctx, "x")
	assert.Error(t, err, "names need at least two characters")
}

func TestOAuthLogin(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthService(t)

	_, err := svc.Register(ctx, RegisterInput{Username: "owner", Password: "password123", Role: "teacher"})
	require.NoError(t, err)
	parent, err := svc.Register(ctx, RegisterInput{Username: "dad", Email: "dad@example.com", Password: "password123", Role: "parent"})
	require.NoError(t, err)

	t.Run("links an existing email", func(t *testing.T) {
		_, account, err := svc.OAuthLogin(ctx, OAuthIdentity{Provider: "google", Subject: "g-1", Email: "dad@example.com", Name: "Dad"})
		require.NoError(t, err)
		assert.Equal(t, parent.ID, account.ID)
		assert.Equal(t, models.RoleParent, account.Role, "linking keeps the role")

		_, again, err := svc.OAuthLogin(ctx, OAuthIdentity{Provider: "google", Subject: "g-1"})
		require.NoError(t, err, "known identities sign in without an email")
		assert.Equal(t, parent.ID, again.ID)
	})

	t.Run("creates a student", func(t *testing.T) {
		_, account, err := svc.OAuthLogin(ctx, OAuthIdentity{Provider: "facebook", Subject: "f-9", Email: "kid@example.com", Name: "Kid"})
		require.NoError(t, err)
		assert.Equal(t, models.RoleStudent, account.Role)
		assert.Equal(t, "kid", account.Username)
		assert.Equal(t, "facebook", account.OAuthProvider)
	})

	t.Run("other provider already linked", func(t *testing.T) {
		_, _, err := svc.OAuthLogin(ctx, OAuthIdentity{Provider: "facebook", Subject: "f-2", Email: "dad@example.com"})
		assert.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("missing provider", func(t *testing.T) {
		_, _, err := svc.OAuthLogin(ctx, OAuthIdentity{Email: "x@example.com"})
		assert.Error(t, err)
	})
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthService(t)

	owner, err := svc.Register(ctx, RegisterInput{Username: "owner", Email: "owner@example.com", Password: "password123", Role: "teacher"})
	require.NoError(t, err)
	kid, err := svc.Register(ctx, RegisterInput{Username: "kid", Password: "password123", Role: "student"})
	require.NoError(t, err)

	updated, err := svc.UpdateProfile(ctx, kid, ProfileInput{DisplayName: "  Mia ", Email: "mia@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "Mia", updated.DisplayName)
	assert.Equal(t, "mia@example.com", updated.Email)

	stored, err := svc.accounts.GetByID(ctx, kid.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mia", stored.DisplayName)
	assert.Equal(t, models.RoleStudent, stored.Role, "profile changes never touch the role")

	_, err = svc.UpdateProfile(ctx, stored, ProfileInput{Email: owner.Email})
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, err = svc.UpdateProfile(ctx, stored, ProfileInput{Email: "not-an-email"})
	var verrs validation.Errors
	assert.True(t, errors.As(err, &verrs), "expected validation errors, got %v", err)
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthService(t)

	kid, err := svc.Register(ctx, RegisterInput{Username: "kid", Password: "password123", Role: "student"})
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, kid, PasswordInput{Current: "wrong-password", New: "newpassword1"})
	assert.ErrorIs(t, err, ErrWrongPassword)

	err = svc.ChangePassword(ctx, kid, PasswordInput{Current: "password123", New: "short"})
	var verrs validation.Errors
	assert.True(t, errors.As(err, &verrs), "expected validation errors, got %v", err)

	require.NoError(t, svc.ChangePassword(ctx, kid, PasswordInput{Current: "password123", New: "newpassword1"}))

	_, err = svc.Authenticate(ctx, "kid", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Authenticate(ctx, "kid", "newpassword1")
	assert.NoError(t, err)
}

func TestRemoveStudent(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthService(t)

	owner, err := svc.Register(ctx, RegisterInput{Username: "owner", Password: "password123", Role: "teacher"})
	require.NoError(t, err)
	kid, err := svc.Register(ctx, RegisterInput{Username: "kid", Password: "password123", Role: "student"})
	require.NoError(t, err)
	session, _, err := svc.Login(ctx, "kid", "password123")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.RemoveStudent(ctx, owner.ID), ErrNotStudent)
	assert.ErrorIs(t, svc.RemoveStudent(ctx, 999), ErrAccountNotFound)

	require.NoError(t, svc.RemoveStudent(ctx, kid.ID))

	gone, err := svc.accounts.GetByID(ctx, kid.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	_, err = svc.ValidateSession(ctx, session.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound, "sessions go with the account")
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"alloneword/internal/credentials"
	"alloneword/internal/models"
	"alloneword/internal/repository"
	"alloneword/internal/security"
	"alloneword/internal/validation"
)

// AuthService handles authentication business logic
type AuthService struct {
	accounts        *repository.AccountRepository
	email           *EmailService
	sessionDuration time.Duration
}

// NewAuthService creates a new auth service
func NewAuthService(accounts *repository.AccountRepository, email *EmailService, sessionDuration time.Duration) *AuthService {
	return &AuthService{
		accounts:        accounts,
		email:           email,
		sessionDuration: sessionDuration,
	}
}

// RegisterInput is the public registration form
type RegisterInput struct {
	Username    string `json:"username" validate:"required,min=3,max=40,excludesall= @"`
	Email       string `json:"email" validate:"omitempty,email"`
	Password    string `json:"password" validate:"required,min=8"`
	DisplayName string `json:"display_name" validate:"max=80"`
	Role        string `json:"role" validate:"self_register_role"`
}

// Register creates a new account. Admin cannot be chosen, but the very first
// account becomes admin.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.Account, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	in.DisplayName = strings.TrimSpace(in.DisplayName)

	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	if err := s.checkAvailable(ctx, in.Username, in.Email); err != nil {
		return nil, err
	}

	passwordHash, err := security.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account, err := s.accounts.Create(ctx, &models.Account{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: passwordHash,
		DisplayName:  in.DisplayName,
		Role:         models.Role(in.Role),
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, ErrUsernameTaken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	if account.Email != "" {
		if err := s.email.SendWelcomeEmail(ctx, account.Email, account.Name()); err != nil {
			slog.Warn("failed to send welcome email", "account_id", account.ID, "error", err)
		}
	}

	return account, nil
}

func (s *AuthService) checkAvailable(ctx context.Context, username, email string) error {
	existing, err := s.accounts.GetByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("failed to check existing account: %w", err)
	}
	if existing != nil {
		return ErrUsernameTaken
	}

	if email == "" {
		return nil
	}
	existing, err = s.accounts.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to check existing account: %w", err)
	}
	if existing != nil {
		return ErrEmailTaken
	}
	return nil
}

// EnrolledStudent carries the one-time credentials of a teacher-enrolled student
type EnrolledStudent struct {
	Account  *models.Account
	Password string
}

// EnrolStudent creates a student account with a generated username and
// temporary password. The password is only returned here.
func (s *AuthService) EnrolStudent(ctx context.Context, displayName string) (*EnrolledStudent, error) {
	displayName = strings.TrimSpace(displayName)
	if err := validation.ValidateName(displayName); err != nil {
		return nil, err
	}

	password, err := credentials.GenerateTemporaryPassword()
	if err != nil {
		return nil, fmt.Errorf("failed to generate password: %w", err)
	}
	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	// Generated names can collide, so retry a few times on a duplicate.
	for i := 0; i < 5; i++ {
		username, err := credentials.GenerateStudentUsername()
		if err != nil {
			return nil, fmt.Errorf("failed to generate username: %w", err)
		}

		account, err := s.accounts.Create(ctx, &models.Account{
			Username:     username,
			PasswordHash: passwordHash,
			DisplayName:  displayName,
			Role:         models.RoleStudent,
		})
		if errors.Is(err, repository.ErrDuplicate) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create student: %w", err)
		}
		return &EnrolledStudent{Account: account, Password: password}, nil
	}

	return nil, fmt.Errorf("failed to find a free username: %w", ErrUsernameTaken)
}

// Authenticate checks a username (or email) and password without creating a session
func (s *AuthService) Authenticate(ctx context.Context, login, password string) (*models.Account, error) {
	login = strings.TrimSpace(login)

	var (
		account *models.Account
		err     error
	)
	if strings.Contains(login, "@") {
		account, err = s.accounts.GetByEmail(ctx, login)
	} else {
		account, err = s.accounts.GetByUsername(ctx, login)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil || !security.CheckPassword(password, account.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return account, nil
}

// Login authenticates an account and creates a session
func (s *AuthService) Login(ctx context.Context, login, password string) (*models.Session, *models.Account, error) {
	account, err := s.Authenticate(ctx, login, password)
	if err != nil {
		return nil, nil, err
	}

	session, err := s.newSession(ctx, account.ID)
	if err != nil {
		return nil, nil, err
	}
	return session, account, nil
}

func (s *AuthService) newSession(ctx context.Context, accountID int64) (*models.Session, error) {
	session, err := s.accounts.CreateSession(ctx, security.GenerateSessionID(), accountID, time.Now().Add(s.sessionDuration))
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}

// ValidateSession checks if a session is valid and returns the associated account
func (s *AuthService) ValidateSession(ctx context.Context, sessionID string) (*models.Account, error) {
	session, err := s.accounts.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	if session.IsExpired() {
		_ = s.accounts.DeleteSession(ctx, sessionID)
		return nil, ErrSessionExpired
	}

	account, err := s.accounts.GetByID(ctx, session.AccountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return nil, ErrSessionNotFound
	}

	return account, nil
}

// Logout invalidates a session
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if err := s.accounts.DeleteSession(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to logout: %w", err)
	}
	return nil
}

// CleanupExpiredSessions removes expired sessions from the database
func (s *AuthService) CleanupExpiredSessions(ctx context.Context) (int64, error) {
	n, err := s.accounts.DeleteExpiredSessions(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup sessions: %w", err)
	}
	return n, nil
}

// RunSessionCleanup removes expired sessions every interval until ctx is done
func (s *AuthService) RunSessionCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.CleanupExpiredSessions(ctx)
			if err != nil {
				slog.Warn("session cleanup failed", "error", err)
				continue
			}
			if n > 0 {
				slog.Info("removed expired sessions", "count", n)
			}
		}
	}
}

// OAuthIdentity is what a provider tells us about the person signing in
type OAuthIdentity struct {
	Provider string
	Subject  string
	Email    string
	Name     string
}

// OAuthLogin signs in the account linked to an OAuth identity. An account with
// the same email is linked on first use, otherwise a student account is created.
func (s *AuthService) OAuthLogin(ctx context.Context, id OAuthIdentity) (*models.Session, *models.Account, error) {
	if id.Provider == "" || id.Subject == "" {
		return nil, nil, errors.New("missing oauth provider information")
	}

	account, err := s.accounts.GetByOAuth(ctx, id.Provider, id.Subject)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to lookup oauth account: %w", err)
	}

	if account == nil {
		account, err = s.linkOrCreateOAuth(ctx, id)
		if err != nil {
			return nil, nil, err
		}
	}

	session, err := s.newSession(ctx, account.ID)
	if err != nil {
		return nil, nil, err
	}
	return session, account, nil
}

func (s *AuthService) linkOrCreateOAuth(ctx context.Context, id OAuthIdentity) (*models.Account, error) {
	if err := validation.ValidateEmail(id.Email); err != nil {
		return nil, err
	}

	existing, err := s.accounts.GetByEmail(ctx, id.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing account: %w", err)
	}
	if existing != nil {
		if existing.OAuthProvider != "" && existing.OAuthProvider != id.Provider {
			return nil, ErrEmailTaken
		}
		if err := s.accounts.LinkOAuth(ctx, existing.ID, id.Provider, id.Subject); err != nil {
			return nil, fmt.Errorf("failed to link oauth provider: %w", err)
		}
		return existing, nil
	}

	// Nobody knows this password; the account signs in through the provider.
	randomPasswordHash, err := security.HashPassword(security.GenerateSessionID())
	if err != nil {
		return nil, fmt.Errorf("failed to generate oauth password hash: %w", err)
	}

	username := strings.Split(id.Email, "@")[0]
	if taken, _ := s.accounts.GetByUsername(ctx, username); taken != nil {
		username = id.Email
	}

	account, err := s.accounts.Create(ctx, &models.Account{
		Username:      username,
		Email:         id.Email,
		PasswordHash:  randomPasswordHash,
		DisplayName:   id.Name,
		Role:          models.RoleStudent,
		OAuthProvider: id.Provider,
		OAuthSubject:  id.Subject,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create oauth account: %w", err)
	}

	if err := s.email.SendWelcomeEmail(ctx, account.Email, account.Name()); err != nil {
		slog.Warn("failed to send welcome email", "account_id", account.ID, "error", err)
	}
	return account, nil
}

// ProfileInput is the account settings form. Roles are fixed at creation, so
// there is no role field.
type ProfileInput struct {
	DisplayName string `json:"display_name" validate:"max=80"`
	Email       string `json:"email" validate:"omitempty,email"`
}

// UpdateProfile changes the display name and email of account
func (s *AuthService) UpdateProfile(ctx context.Context, account *models.Account, in ProfileInput) (*models.Account, error) {
	in.DisplayName = strings.TrimSpace(in.DisplayName)
	in.Email = strings.TrimSpace(in.Email)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	if in.Email != "" && !strings.EqualFold(in.Email, account.Email) {
		existing, err := s.accounts.GetByEmail(ctx, in.Email)
		if err != nil {
			return nil, fmt.Errorf("failed to check existing account: %w", err)
		}
		if existing != nil && existing.ID != account.ID {
			return nil, ErrEmailTaken
		}
	}

	err := s.accounts.UpdateProfile(ctx, account.ID, in.DisplayName, in.Email)
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, err
	}

	updated := *account
	updated.DisplayName = in.DisplayName
	updated.Email = in.Email
	return &updated, nil
}

// PasswordInput is the change password form
type PasswordInput struct {
	Current string `json:"current_password" validate:"required"`
	New     string `json:"new_password" validate:"required,min=8"`
}

// ChangePassword sets a new password once the current one checks out
func (s *AuthService) ChangePassword(ctx context.Context, account *models.Account, in PasswordInput) error {
	if err := validation.Struct(in); err != nil {
		return err
	}
	if !security.CheckPassword(in.Current, account.PasswordHash) {
		return ErrWrongPassword
	}

	passwordHash, err := security.HashPassword(in.New)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return s.accounts.UpdatePassword(ctx, account.ID, passwordHash)
}

// RemoveStudent deletes a student account. Its attempts, awards, comments,
// likes and sessions go with it.
func (s *AuthService) RemoveStudent(ctx context.Context, studentID int64) error {
	account, err := s.accounts.GetByID(ctx, studentID)
	if err != nil {
		return fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return ErrAccountNotFound
	}
	if !account.IsStudent() {
		return ErrNotStudent
	}

	if err := s.accounts.Delete(ctx, studentID); err != nil {
		return err
	}
	slog.Info("student removed", "account_id", studentID, "username", account.Username)
	return nil
}

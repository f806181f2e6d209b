package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"alloneword/internal/database"
	"alloneword/internal/models"
)

// AccountRepository handles database operations for accounts and sessions.
// No method writes the role column after insert.
type AccountRepository struct {
	db database.DBTX
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db database.DBTX) *AccountRepository {
	return &AccountRepository{db: db}
}

const accountColumns = `id, username, COALESCE(email, ''), password_hash, display_name, role, parent_id,
	COALESCE(oauth_provider, ''), COALESCE(oauth_subject, ''), created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*models.Account, error) {
	a := &models.Account{}
	var parentID sql.NullInt64
	var role string
	err := row.Scan(
		&a.ID,
		&a.Username,
		&a.Email,
		&a.PasswordHash,
		&a.DisplayName,
		&role,
		&parentID,
		&a.OAuthProvider,
		&a.OAuthSubject,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.Role = models.Role(role)
	a.ParentID = int64Ptr(parentID)
	return a, nil
}

// Create inserts a new account. The first account ever created becomes an admin.
// The count and insert share a transaction holding the settings row lock, so
// concurrent first registrations cannot both see an empty table.
func (r *AccountRepository) Create(ctx context.Context, a *models.Account) (*models.Account, error) {
	created := *a
	now := time.Now().UTC()
	query := `
		INSERT INTO accounts (username, email, password_hash, display_name, role, parent_id, oauth_provider, oauth_subject, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var id int64
	err := database.InTx(ctx, r.db, func(tx database.DBTX) error {
		if _, err := database.LockRow(ctx, tx, "site_settings", 1); err != nil {
			return err
		}

		count, err := NewAccountRepository(tx).Count(ctx)
		if err != nil {
			return err
		}
		if count == 0 {
			created.Role = models.RoleAdmin
		}

		id, err = tx.ExecReturningID(ctx, query,
			created.Username,
			nullString(created.Email),
			created.PasswordHash,
			created.DisplayName,
			string(created.Role),
			nullInt64(created.ParentID),
			nullString(created.OAuthProvider),
			nullString(created.OAuthSubject),
			now,
			now,
		)
		return err
	})
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	created.ID = id
	created.CreatedAt = now
	created.UpdatedAt = now
	return &created, nil
}

// Count returns the number of accounts
func (r *AccountRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM accounts").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count accounts: %w", err)
	}
	return count, nil
}

func (r *AccountRepository) getOne(ctx context.Context, where string, args ...any) (*models.Account, error) {
	query := "SELECT " + accountColumns + " FROM accounts WHERE " + where
	a, err := scanAccount(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return a, nil
}

// GetByID retrieves an account by ID
func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	return r.getOne(ctx, "id = ?", id)
}

// GetByUsername retrieves an account by username
func (r *AccountRepository) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	return r.getOne(ctx, "username = ?", username)
}

// GetByEmail retrieves an account by email address
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	return r.getOne(ctx, "email = ?", email)
}

// GetByOAuth retrieves the account linked to an OAuth identity
func (r *AccountRepository) GetByOAuth(ctx context.Context, provider, subject string) (*models.Account, error) {
	return r.getOne(ctx, "oauth_provider = ? AND oauth_subject = ?", provider, subject)
}

func (r *AccountRepository) list(ctx context.Context, where string, args ...any) ([]models.Account, error) {
	query := "SELECT " + accountColumns + " FROM accounts WHERE " + where + " ORDER BY username"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, *a)
	}
	return accounts, rows.Err()
}

// ListByRole returns accounts with the given role
func (r *AccountRepository) ListByRole(ctx context.Context, role models.Role) ([]models.Account, error) {
	return r.list(ctx, "role = ?", string(role))
}

// ListChildren returns the students linked to a parent
func (r *AccountRepository) ListChildren(ctx context.Context, parentID int64) ([]models.Account, error) {
	return r.list(ctx, "parent_id = ? AND role = ?", parentID, string(models.RoleStudent))
}

// UpdateProfile changes the display name and email of an account
func (r *AccountRepository) UpdateProfile(ctx context.Context, id int64, displayName, email string) error {
	query := "UPDATE accounts SET display_name = ?, email = ?, updated_at = ? WHERE id = ?"
	_, err := r.db.ExecContext(ctx, query, displayName, nullString(email), time.Now().UTC(), id)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to update account: %w", err)
	}
	return nil
}

// UpdatePassword replaces an account's password hash
func (r *AccountRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	query := "UPDATE accounts SET password_hash = ?, updated_at = ? WHERE id = ?"
	if _, err := r.db.ExecContext(ctx, query, passwordHash, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// LinkOAuth attaches an OAuth identity to an existing account
func (r *AccountRepository) LinkOAuth(ctx context.Context, id int64, provider, subject string) error {
	query := "UPDATE accounts SET oauth_provider = ?, oauth_subject = ?, updated_at = ? WHERE id = ?"
	if _, err := r.db.ExecContext(ctx, query, provider, subject, time.Now().UTC(), id); err != nil {
		if database.IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to link oauth identity: %w", err)
	}
	return nil
}

// SetParent links a student to a parent, or unlinks when parentID is nil
func (r *AccountRepository) SetParent(ctx context.Context, studentID int64, parentID *int64) error {
	query := "UPDATE accounts SET parent_id = ?, updated_at = ? WHERE id = ?"
	result, err := r.db.ExecContext(ctx, query, nullInt64(parentID), time.Now().UTC(), studentID)
	if err != nil {
		return fmt.Errorf("failed to set parent: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an account. Attempts, awards and sessions cascade.
func (r *AccountRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM accounts WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	return nil
}

// CreateSession creates a new session for an account
func (r *AccountRepository) CreateSession(ctx context.Context, sessionID string, accountID int64, expiresAt time.Time) (*models.Session, error) {
	now := time.Now().UTC()
	query := "INSERT INTO sessions (id, account_id, expires_at, created_at) VALUES (?, ?, ?, ?)"
	if _, err := r.db.ExecContext(ctx, query, sessionID, accountID, expiresAt.UTC(), now); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &models.Session{
		ID:        sessionID,
		AccountID: accountID,
		ExpiresAt: expiresAt,
		CreatedAt: now,
	}, nil
}

// GetSession retrieves a session by ID
func (r *AccountRepository) GetSession(ctx context.Context, sessionID string) (*models.Session, error) {
	query := "SELECT id, account_id, expires_at, created_at FROM sessions WHERE id = ?"
	s := &models.Session{}
	err := r.db.QueryRowContext(ctx, query, sessionID).Scan(&s.ID, &s.AccountID, &s.ExpiresAt, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return s, nil
}

// DeleteSession removes a session
func (r *AccountRepository) DeleteSession(ctx context.Context, sessionID string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteExpiredSessions removes expired sessions and returns how many were removed
func (r *AccountRepository) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM sessions WHERE expires_at < ?", time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	n, _ := result.RowsAffected()
	return n, nil
}

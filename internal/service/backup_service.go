package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"alloneword/internal/database"
)

// BackupVersion is written into every export and checked on import
const BackupVersion = "2"

// BackupData is the complete database export. Sessions and the bad words
// list are not included.
type BackupData struct {
	Version      string          `json:"version"`
	ExportedAt   time.Time       `json:"exported_at"`
	DatabaseType string          `json:"database_type"`
	Settings     *SettingsBackup `json:"settings"`
	Accounts     []AccountBackup `json:"accounts"`
	Phrases      []PhraseBackup  `json:"phrases"`
	Attempts     []AttemptBackup `json:"attempts"`
	Awards       []AwardBackup   `json:"rank_awards"`
	Comments     []CommentBackup `json:"comments"`
	Likes        []LikeBackup    `json:"likes"`
	Examples     []ExampleBackup `json:"examples"`
	Lessons      []LessonBackup  `json:"lessons"`
}

type SettingsBackup struct {
	OrgName      string    `json:"org_name"`
	ABN          string    `json:"abn"`
	ContactEmail string    `json:"contact_email"`
	Phone        string    `json:"phone"`
	FooterNote   string    `json:"footer_note"`
	BannerText   string    `json:"banner_text"`
	BannerImage  string    `json:"banner_image"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type AccountBackup struct {
	ID            int64     `json:"id"`
	Username      string    `json:"username"`
	Email         *string   `json:"email"`
	PasswordHash  string    `json:"password_hash"`
	DisplayName   string    `json:"display_name"`
	Role          string    `json:"role"`
	ParentID      *int64    `json:"parent_id"`
	OAuthProvider *string   `json:"oauth_provider"`
	OAuthSubject  *string   `json:"oauth_subject"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type PhraseBackup struct {
	ID        int64     `json:"id"`
	Text      string    `json:"phrase_text"`
	Audio     *string   `json:"audio"`
	AcaraCode *string   `json:"acara_code"`
	CreatedBy *int64    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type AttemptBackup struct {
	ID          int64     `json:"id"`
	AccountID   int64     `json:"account_id"`
	PhraseID    int64     `json:"phrase_id"`
	IsCorrect   bool      `json:"is_correct"`
	TimeTaken   int       `json:"time_taken"`
	AttemptedAt time.Time `json:"attempted_at"`
}

type AwardBackup struct {
	ID        int64     `json:"id"`
	AccountID int64     `json:"account_id"`
	Belt      string    `json:"belt"`
	AwardedAt time.Time `json:"awarded_at"`
}

type CommentBackup struct {
	ID        int64     `json:"id"`
	AccountID int64     `json:"account_id"`
	PhraseID  int64     `json:"phrase_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

type LikeBackup struct {
	ID        int64     `json:"id"`
	AccountID int64     `json:"account_id"`
	PhraseID  int64     `json:"phrase_id"`
	CreatedAt time.Time `json:"created_at"`
}

type ExampleBackup struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Image        *string   `json:"image"`
	Summary      string    `json:"summary"`
	Content      string    `json:"content"`
	LinkPhraseID *int64    `json:"link_phrase_id"`
	ExternalURL  *string   `json:"external_url"`
	CreatedAt    time.Time `json:"created_at"`
}

type LessonBackup struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Audio       *string   `json:"audio"`
	CreatedBy   *int64    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// Tables in foreign key order. Import clears them in reverse.
var backupTables = []string{"accounts", "phrases", "attempts", "rank_awards", "comments", "likes", "examples", "lessons"}

// BackupService handles database backup and restore operations
type BackupService struct {
	db *database.DB
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB) *BackupService {
	return &BackupService{db: db}
}

// Export writes a complete backup of the database to outputPath
func (s *BackupService) Export(ctx context.Context, outputPath string) error {
	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create backup file: %w", err)
	}
	defer f.Close()

	if err := s.ExportToWriter(ctx, f); err != nil {
		return err
	}
	return f.Close()
}

// ExportToWriter writes a complete backup as indented JSON
func (s *BackupService) ExportToWriter(ctx context.Context, w io.Writer) error {
	slog.Info("starting database export")

	backup, err := s.collect(ctx)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(backup); err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}

	slog.Info("database export complete",
		"accounts", len(backup.Accounts),
		"phrases", len(backup.Phrases),
		"attempts", len(backup.Attempts),
		"awards", len(backup.Awards))
	return nil
}

// queryAll runs query and scans every row with scan
func queryAll[T any](ctx context.Context, db database.DBTX, query string, scan func(*sql.Rows, *T) error) ([]T, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		var v T
		if err := scan(rows, &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func nullStringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

func nullInt64Ptr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	return &n.Int64
}

func (s *BackupService) collect(ctx context.Context) (*BackupData, error) {
	backup := &BackupData{
		Version:      BackupVersion,
		ExportedAt:   time.Now().UTC(),
		DatabaseType: s.db.Dialect.DriverName(),
	}

	var st SettingsBackup
	err := s.db.QueryRowContext(ctx, `SELECT org_name, abn, contact_email, phone, footer_note, banner_text, banner_image, updated_at FROM site_settings WHERE id = 1`).
		Scan(&st.OrgName, &st.ABN, &st.ContactEmail, &st.Phone, &st.FooterNote, &st.BannerText, &st.BannerImage, &st.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to export settings: %w", err)
	}
	backup.Settings = &st

	backup.Accounts, err = queryAll(ctx, s.db, `SELECT id, username, email, password_hash, display_name, role, parent_id, oauth_provider, oauth_subject, created_at, updated_at FROM accounts ORDER BY id`,
		func(rows *sql.Rows, a *AccountBackup) error {
			var email, provider, subject sql.NullString
			var parentID sql.NullInt64
			if err := rows.Scan(&a.ID, &a.Username, &email, &a.PasswordHash, &a.DisplayName, &a.Role, &parentID, &provider, &subject, &a.CreatedAt, &a.UpdatedAt); err != nil {
				return err
			}
			a.Email, a.OAuthProvider, a.OAuthSubject = nullStringPtr(email), nullStringPtr(provider), nullStringPtr(subject)
			a.ParentID = nullInt64Ptr(parentID)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("failed to export accounts: %w", err)
	}

	backup.Phrases, err = queryAll(ctx, s.db, `SELECT id, phrase_text, audio, acara_code, created_by, created_at, updated_at FROM phrases ORDER BY id`,
		func(rows *sql.Rows, p *PhraseBackup) error {
			var audio, acara sql.NullString
			var createdBy sql.NullInt64
			if err := rows.Scan(&p.ID, &p.Text, &audio, &acara, &createdBy, &p.CreatedAt, &p.UpdatedAt); err != nil {
				return err
			}
			p.Audio, p.AcaraCode, p.CreatedBy = nullStringPtr(audio), nullStringPtr(acara), nullInt64Ptr(createdBy)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("failed to export phrases: %w", err)
	}

	backup.Attempts, err = queryAll(ctx, s.db, `SELECT id, account_id, phrase_id, is_correct, time_taken, attempted_at FROM attempts ORDER BY id`,
		func(rows *sql.Rows, a *AttemptBackup) error {
			return rows.Scan(&a.ID, &a.AccountID, &a.PhraseID, &a.IsCorrect, &a.TimeTaken, &a.AttemptedAt)
		})
	if err != nil {
		return nil, fmt.Errorf("failed to export attempts: %w", err)
	}

	backup.Awards, err = queryAll(ctx, s.db, `SELECT id, account_id, belt, awarded_at FROM rank_awards ORDER BY id`,
		func(rows *sql.Rows, a *AwardBackup) error {
			return rows.Scan(&a.ID, &a.AccountID, &a.Belt, &a.AwardedAt)
		})
	if err != nil {
		return nil, fmt.Errorf("failed to export awards: %w", err)
	}

	backup.Comments, err = queryAll(ctx, s.db, `SELECT id, account_id, phrase_id, body, created_at FROM comments ORDER BY id`,
		func(rows *sql.Rows, c *CommentBackup) error {
			return rows.Scan(&c.ID, &c.AccountID, &c.PhraseID, &c.Body, &c.CreatedAt)
		})
	if err != nil {
		return nil, fmt.Errorf("failed to export comments: %w", err)
	}

	backup.Likes, err = queryAll(ctx, s.db, `SELECT id, account_id, phrase_id, created_at FROM likes ORDER BY id`,
		func(rows *sql.Rows, l *LikeBackup) error {
			return rows.Scan(&l.ID, &l.AccountID, &l.PhraseID, &l.CreatedAt)
		})
	if err != nil {
		return nil, fmt.Errorf("failed to export likes: %w", err)
	}

	backup.Examples, err = queryAll(ctx, s.db, `SELECT id, title, image, summary, content, link_phrase_id, external_url, created_at FROM examples ORDER BY id`,
		func(rows *sql.Rows, e *ExampleBackup) error {
			var image, url sql.NullString
			var link sql.NullInt64
			if err := rows.Scan(&e.ID, &e.Title, &image, &e.Summary, &e.Content, &link, &url, &e.CreatedAt); err != nil {
				return err
			}
			e.Image, e.ExternalURL, e.LinkPhraseID = nullStringPtr(image), nullStringPtr(url), nullInt64Ptr(link)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("failed to export examples: %w", err)
	}

	backup.Lessons, err = queryAll(ctx, s.db, `SELECT id, title, description, audio, created_by, created_at FROM lessons ORDER BY id`,
		func(rows *sql.Rows, l *LessonBackup) error {
			var audio sql.NullString
			var createdBy sql.NullInt64
			if err := rows.Scan(&l.ID, &l.Title, &l.Description, &audio, &createdBy, &l.CreatedAt); err != nil {
				return err
			}
			l.Audio, l.CreatedBy = nullStringPtr(audio), nullInt64Ptr(createdBy)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("failed to export lessons: %w", err)
	}

	return backup, nil
}

// Import replaces the database contents with the backup at inputPath
func (s *BackupService) Import(ctx context.Context, inputPath string) error {
	f, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open backup file: %w", err)
	}
	defer f.Close()

	return s.ImportFromReader(ctx, f)
}

// ImportFromReader replaces the database contents with a backup. Everything
// happens in one transaction, so a failed import leaves the database unchanged.
func (s *BackupService) ImportFromReader(ctx context.Context, r io.Reader) error {
	var backup BackupData
	if err := json.NewDecoder(r).Decode(&backup); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}
	if backup.Version != BackupVersion {
		return fmt.Errorf("unsupported backup version %q", backup.Version)
	}

	slog.Info("starting database import", "exported_at", backup.ExportedAt, "source", backup.DatabaseType)

	err := s.db.WithTx(ctx, func(tx *database.Tx) error {
		if err := clearTables(ctx, tx); err != nil {
			return err
		}
		if err := importRows(ctx, tx, &backup); err != nil {
			return err
		}
		return resetSequences(ctx, tx)
	})
	if err != nil {
		return err
	}

	slog.Info("database import complete", "accounts", len(backup.Accounts), "attempts", len(backup.Attempts))
	return nil
}

func clearTables(ctx context.Context, tx *database.Tx) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM sessions"); err != nil {
		return fmt.Errorf("failed to clear sessions: %w", err)
	}
	for i := len(backupTables) - 1; i >= 0; i-- {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+backupTables[i]); err != nil {
			return fmt.Errorf("failed to clear %s: %w", backupTables[i], err)
		}
	}
	return nil
}

func importRows(ctx context.Context, tx *database.Tx, b *BackupData) error {
	exec := func(what string, id int64, query string, args ...any) error {
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to import %s %d: %w", what, id, err)
		}
		return nil
	}

	if st := b.Settings; st != nil {
		err := exec("settings", 1, `UPDATE site_settings SET org_name = ?, abn = ?, contact_email = ?, phone = ?, footer_note = ?, banner_text = ?, banner_image = ?, updated_at = ? WHERE id = 1`,
			st.OrgName, st.ABN, st.ContactEmail, st.Phone, st.FooterNote, st.BannerText, st.BannerImage, st.UpdatedAt)
		if err != nil {
			return err
		}
	}

	// Parents may have higher IDs than their children, so links are set after every account exists.
	for _, a := range b.Accounts {
		err := exec("account", a.ID, `INSERT INTO accounts (id, username, email, password_hash, display_name, role, oauth_provider, oauth_subject, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			a.ID, a.Username, a.Email, a.PasswordHash, a.DisplayName, a.Role, a.OAuthProvider, a.OAuthSubject, a.CreatedAt, a.UpdatedAt)
		if err != nil {
			return err
		}
	}
	for _, a := range b.Accounts {
		if a.ParentID == nil {
			continue
		}
		if err := exec("parent link", a.ID, `UPDATE accounts SET parent_id = ? WHERE id = ?`, *a.ParentID, a.ID); err != nil {
			return err
		}
	}

	for _, p := range b.Phrases {
		err := exec("phrase", p.ID, `INSERT INTO phrases (id, phrase_text, audio, acara_code, created_by, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.Text, p.Audio, p.AcaraCode, p.CreatedBy, p.CreatedAt, p.UpdatedAt)
		if err != nil {
			return err
		}
	}
	for _, a := range b.Attempts {
		err := exec("attempt", a.ID, `INSERT INTO attempts (id, account_id, phrase_id, is_correct, time_taken, attempted_at) VALUES (?, ?, ?, ?, ?, ?)`,
			a.ID, a.AccountID, a.PhraseID, a.IsCorrect, a.TimeTaken, a.AttemptedAt)
		if err != nil {
			return err
		}
	}
	for _, a := range b.Awards {
		err := exec("award", a.ID, `INSERT INTO rank_awards (id, account_id, belt, awarded_at) VALUES (?, ?, ?, ?)`,
			a.ID, a.AccountID, a.Belt, a.AwardedAt)
		if err != nil {
			return err
		}
	}
	for _, c := range b.Comments {
		err := exec("comment", c.ID, `INSERT INTO comments (id, account_id, phrase_id, body, created_at) VALUES (?, ?, ?, ?, ?)`,
			c.ID, c.AccountID, c.PhraseID, c.Body, c.CreatedAt)
		if err != nil {
			return err
		}
	}
	for _, l := range b.Likes {
		err := exec("like", l.ID, `INSERT INTO likes (id, account_id, phrase_id, created_at) VALUES (?, ?, ?, ?)`,
			l.ID, l.AccountID, l.PhraseID, l.CreatedAt)
		if err != nil {
			return err
		}
	}
	for _, e := range b.Examples {
		err := exec("example", e.ID, `INSERT INTO examples (id, title, image, summary, content, link_phrase_id, external_url, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			e.ID, e.Title, e.Image, e.Summary, e.Content, e.LinkPhraseID, e.ExternalURL, e.CreatedAt)
		if err != nil {
			return err
		}
	}
	for _, l := range b.Lessons {
		err := exec("lesson", l.ID, `INSERT INTO lessons (id, title, description, audio, created_by, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
			l.ID, l.Title, l.Description, l.Audio, l.CreatedBy, l.CreatedAt)
		if err != nil {
			return err
		}
	}
	return nil
}

// resetSequences moves postgres identity sequences past the imported IDs.
// SQLite and MySQL advance their counters on explicit inserts.
func resetSequences(ctx context.Context, tx *database.Tx) error {
	if tx.GetDialect().DriverName() != "postgres" {
		return nil
	}
	for _, table := range backupTables {
		query := fmt.Sprintf("SELECT setval(pg_get_serial_sequence('%s', 'id'), COALESCE((SELECT MAX(id) FROM %s), 0) + 1, false)", table, table)
		if _, err := tx.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to reset %s sequence: %w", table, err)
		}
	}
	return nil
}

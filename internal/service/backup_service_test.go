package service

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alloneword/internal/database/dbtest"
	"alloneword/internal/models"
	"alloneword/internal/repository"
)

func TestBackupRoundTrip(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	parent := env.createAccount(t, "mum", "mum@example.com", models.RoleParent)
	student := env.createAccount(t, "kid", "", models.RoleStudent)
	require.NoError(t, env.accounts.SetParent(ctx, student.ID, &parent.ID))
	phrase := env.createPhrase(t, "backup")

	practice := NewPracticeService(env.db, disabledEmail())
	for i := 0; i < 5; i++ {
		_, err := practice.SubmitAttempt(ctx, student, phrase.ID, correct(true))
		require.NoError(t, err)
	}
	_, err := NewEngagementService(env.db).AddComment(ctx, student, phrase.ID, CommentInput{Body: "saved"})
	require.NoError(t, err)
	_, err = repository.NewEngagementRepository(env.db).AddLike(ctx, parent.ID, phrase.ID)
	require.NoError(t, err)
	_, err = NewContentService(repository.NewContentRepository(env.db)).CreateExample(ctx, ExampleInput{Title: "Ex", LinkPhraseID: &phrase.ID})
	require.NoError(t, err)
	require.NoError(t, repository.NewSettingsRepository(env.db).Update(ctx, &models.SiteSettings{OrgName: "Backup School"}))

	var buf bytes.Buffer
	require.NoError(t, NewBackupService(env.db).ExportToWriter(ctx, &buf))

	var exported BackupData
	require.NoError(t, json.Unmarshal(buf.Bytes(), &exported))
	assert.Equal(t, BackupVersion, exported.Version)
	assert.Len(t, exported.Accounts, 3)
	assert.Len(t, exported.Attempts, 5)
	assert.Len(t, exported.Awards, 2)

	// Restore into a fresh database that already has rows of its own.
	target := dbtest.NewSQLite(t)
	stray := repository.NewAccountRepository(target)
	_, err = stray.Create(ctx, &models.Account{Username: "stray", PasswordHash: "x", Role: models.RoleStudent})
	require.NoError(t, err)

	require.NoError(t, NewBackupService(target).ImportFromReader(ctx, bytes.NewReader(buf.Bytes())))

	accounts := repository.NewAccountRepository(target)
	restored, err := accounts.GetByUsername(ctx, "kid")
	require.NoError(t, err)
	require.NotNil(t, restored)
	assert.Equal(t, student.ID, restored.ID)
	require.NotNil(t, restored.ParentID)
	assert.Equal(t, parent.ID, *restored.ParentID)

	gone, err := accounts.GetByUsername(ctx, "stray")
	require.NoError(t, err)
	assert.Nil(t, gone, "import replaces existing rows")

	count, err := repository.NewAttemptRepository(target).CountCorrect(ctx, student.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, count)

	settings, err := repository.NewSettingsRepository(target).Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Backup School", settings.OrgName)

	stats, err := repository.NewPhraseRepository(target).GetWithStats(ctx, phrase.ID, parent.ID)
	require.NoError(t, err)
	require.NotNil(t, stats)
	assert.Equal(t, 1, stats.CommentCount)
	assert.True(t, stats.LikedByMe)

	// New rows continue after the imported IDs.
	next, err := accounts.Create(ctx, &models.Account{Username: "new", PasswordHash: "x", Role: models.RoleStudent})
	require.NoError(t, err)
	assert.Greater(t, next.ID, student.ID)
}

func TestBackupFileExport(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	path := filepath.Join(t.TempDir(), "backup.json")

	svc := NewBackupService(env.db)
	require.NoError(t, svc.Export(ctx, path))
	require.NoError(t, svc.Import(ctx, path))

	admin, err := env.accounts.GetByUsername(ctx, "admin")
	require.NoError(t, err)
	require.NotNil(t, admin)
	assert.Equal(t, models.RoleAdmin, admin.Role)
}

func TestImportRejectsBadBackups(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	svc := NewBackupService(env.db)

	assert.Error(t, svc.ImportFromReader(ctx, strings.NewReader("not json")))
	assert.Error(t, svc.ImportFromReader(ctx, strings.NewReader(`{"version":"1"}`)))

	// A backup that fails halfway leaves the database untouched.
	broken := `{"version":"2","accounts":[{"id":5,"username":"a","password_hash":"x","role":"student"}],
		"attempts":[{"id":1,"account_id":5,"phrase_id":77,"is_correct":true,"time_taken":1}]}`
	assert.Error(t, svc.ImportFromReader(ctx, strings.NewReader(broken)))

	admin, err := env.accounts.GetByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.NotNil(t, admin)
}

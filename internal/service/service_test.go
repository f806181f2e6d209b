package service

import (
	"context"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/stretchr/testify/require"

	"alloneword/internal/database"
	"alloneword/internal/database/dbtest"
	"alloneword/internal/models"
	"alloneword/internal/repository"
	"alloneword/internal/security"
)

// fakeSES records every email instead of sending it
type fakeSES struct {
	mu   sync.Mutex
	sent []*sesv2.SendEmailInput
}

func (f *fakeSES) SendEmail(_ context.Context, in *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, in)
	return &sesv2.SendEmailOutput{MessageId: aws.String("test-message")}, nil
}

func (f *fakeSES) subjects() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, in := range f.sent {
		out = append(out, *in.Content.Simple.Subject.Data)
	}
	return out
}

func newTestEmail(client sesAPI) *EmailService {
	return &EmailService{
		client:     client,
		fromEmail:  "noreply@alloneword.test",
		fromName:   "Alloneword",
		appBaseURL: "http://alloneword.test",
		enabled:    true,
	}
}

func disabledEmail() *EmailService {
	return &EmailService{}
}

// testEnv is a migrated database with an admin already created, so accounts
// made by the tests keep the role they ask for
type testEnv struct {
	db       *database.DB
	accounts *repository.AccountRepository
	admin    *models.Account
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvOn(t, dbtest.NewSQLite(t))
}

func newTestEnvOn(t *testing.T, db *database.DB) *testEnv {
	t.Helper()

	env := &testEnv{db: db, accounts: repository.NewAccountRepository(db)}
	env.admin = env.createAccount(t, "admin", "admin@alloneword.test", models.RoleAdmin)
	return env
}

func (e *testEnv) createAccount(t *testing.T, username, email string, role models.Role) *models.Account {
	t.Helper()

	hash, err := security.HashPassword("password123")
	require.NoError(t, err)

	a, err := e.accounts.Create(context.Background(), &models.Account{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	})
	require.NoError(t, err)
	return a
}

func (e *testEnv) createPhrase(t *testing.T, text string) *models.Phrase {
	t.Helper()

	p, err := repository.NewPhraseRepository(e.db).Create(context.Background(), &models.Phrase{Text: text, CreatedBy: &e.admin.ID})
	require.NoError(t, err)
	return p
}

func ptr[T any](v T) *T {
	return &v
}

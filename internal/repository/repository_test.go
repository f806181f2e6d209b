package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alloneword/internal/database"
	"alloneword/internal/database/dbtest"
	"alloneword/internal/models"
	"alloneword/internal/rank"
)

func createAccount(t *testing.T, repo *AccountRepository, username string, role models.Role) *models.Account {
	t.Helper()
	a, err := repo.Create(context.Background(), &models.Account{Username: username, PasswordHash: "hash", Role: role})
	require.NoError(t, err)
	return a
}

func createPhrase(t *testing.T, db database.DBTX, text string) *models.Phrase {
	t.Helper()
	p, err := NewPhraseRepository(db).Create(context.Background(), &models.Phrase{Text: text})
	require.NoError(t, err)
	return p
}

func TestAccountRepository(t *testing.T) {
	db := dbtest.NewSQLite(t)
	ctx := context.Background()
	repo := NewAccountRepository(db)

	first := createAccount(t, repo, "first", models.RoleTeacher)
	assert.Equal(t, models.RoleAdmin, first.Role, "first account becomes admin")

	student := createAccount(t, repo, "mia", models.RoleStudent)
	assert.Equal(t, models.RoleStudent, student.Role)

	_, err := repo.Create(ctx, &models.Account{Username: "mia", PasswordHash: "x", Role: models.RoleStudent})
	assert.ErrorIs(t, err, ErrDuplicate)

	got, err := repo.GetByUsername(ctx, "mia")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, student.ID, got.ID)
	assert.Empty(t, got.Email)
	assert.Nil(t, got.ParentID)

	missing, err := repo.GetByID(ctx, 9999)
	require.NoError(t, err)
	assert.Nil(t, missing)

	// Two accounts without email must not collide on the unique index.
	createAccount(t, repo, "noah", models.RoleStudent)

	require.NoError(t, repo.UpdateProfile(ctx, student.ID, "Mia", "mia@example.com"))
	byEmail, err := repo.GetByEmail(ctx, "mia@example.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, "Mia", byEmail.Name())

	students, err := repo.ListByRole(ctx, models.RoleStudent)
	require.NoError(t, err)
	assert.Len(t, students, 2)

	require.NoError(t, repo.LinkOAuth(ctx, student.ID, "google", "sub-1"))
	byOAuth, err := repo.GetByOAuth(ctx, "google", "sub-1")
	require.NoError(t, err)
	require.NotNil(t, byOAuth)
	assert.Equal(t, student.ID, byOAuth.ID)
}

func TestParentLinks(t *testing.T) {
	db := dbtest.NewSQLite(t)
	ctx := context.Background()
	repo := NewAccountRepository(db)

	createAccount(t, repo, "admin", models.RoleAdmin)
	parent := createAccount(t, repo, "mum", models.RoleParent)
	child := createAccount(t, repo, "mia", models.RoleStudent)

	require.NoError(t, repo.SetParent(ctx, child.ID, &parent.ID))

	children, err := repo.ListChildren(ctx, parent.ID)
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, child.ID, children[0].ID)

	err = repo.SetParent(ctx, child.ID, &child.ID)
	assert.Error(t, err, "storage rejects a self link")

	require.NoError(t, repo.SetParent(ctx, child.ID, nil))
	children, err = repo.ListChildren(ctx, parent.ID)
	require.NoError(t, err)
	assert.Empty(t, children)

	assert.ErrorIs(t, repo.SetParent(ctx, 9999, &parent.ID), ErrNotFound)

	// Deleting the parent clears the link instead of deleting the child.
	require.NoError(t, repo.SetParent(ctx, child.ID, &parent.ID))
	require.NoError(t, repo.Delete(ctx, parent.ID))
	got, err := repo.GetByID(ctx, child.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Nil(t, got.ParentID)
}

func TestSessions(t *testing.T) {
	db := dbtest.NewSQLite(t)
	ctx := context.Background()
	repo := NewAccountRepository(db)
	a := createAccount(t, repo, "mia", models.RoleStudent)

	_, err := repo.CreateSession(ctx, "live", a.ID, time.Now().Add(time.Hour))
	require.NoError(t, err)
	_, err = repo.CreateSession(ctx, "stale", a.ID, time.Now().Add(-time.Hour))
	require.NoError(t, err)

	s, err := repo.GetSession(ctx, "live")
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.False(t, s.IsExpired())

	n, err := repo.DeleteExpiredSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	gone, err := repo.GetSession(ctx, "stale")
	require.NoError(t, err)
	assert.Nil(t, gone)

	require.NoError(t, repo.DeleteSession(ctx, "live"))
	gone, err = repo.GetSession(ctx, "live")
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestPhraseRepository(t *testing.T) {
	db := dbtest.NewSQLite(t)
	ctx := context.Background()
	accounts := NewAccountRepository(db)
	teacher := createAccount(t, accounts, "teach", models.RoleTeacher)
	student := createAccount(t, accounts, "mia", models.RoleStudent)

	repo := NewPhraseRepository(db)
	p, err := repo.Create(ctx, &models.Phrase{Text: "Good morning", AcaraCode: "AC9E1LA01", CreatedBy: &teacher.ID})
	require.NoError(t, err)

	exists, err := repo.Exists(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.Exists(ctx, p.ID+100)
	require.NoError(t, err)
	assert.False(t, exists)

	p.Text = "Good afternoon"
	p.Audio = "phrase_good_afternoon.mp3"
	require.NoError(t, repo.Update(ctx, p))

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Good afternoon", got.Text)
	assert.Equal(t, "AC9E1LA01", got.AcaraCode)
	require.NotNil(t, got.CreatedBy)
	assert.Equal(t, teacher.ID, *got.CreatedBy)

	engagement := NewEngagementRepository(db)
	_, err = engagement.AddLike(ctx, student.ID, p.ID)
	require.NoError(t, err)
	_, err = engagement.CreateComment(ctx, &models.Comment{AccountID: student.ID, PhraseID: p.ID, Body: "tricky"})
	require.NoError(t, err)

	list, err := repo.ListWithStats(ctx, student.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 1, list[0].LikesCount)
	assert.Equal(t, 1, list[0].CommentCount)
	assert.True(t, list[0].LikedByMe)
	assert.Equal(t, "teach", list[0].CreatorName)

	other, err := repo.GetWithStats(ctx, p.ID, teacher.ID)
	require.NoError(t, err)
	require.NotNil(t, other)
	assert.False(t, other.LikedByMe)

	assert.ErrorIs(t, repo.Update(ctx, &models.Phrase{ID: 9999, Text: "x"}), ErrNotFound)

	require.NoError(t, repo.Delete(ctx, p.ID))
	gone, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestAttemptsAndAwards(t *testing.T) {
	db := dbtest.NewSQLite(t)
	ctx := context.Background()
	accounts := NewAccountRepository(db)
	createAccount(t, accounts, "admin", models.RoleAdmin)
	mia := createAccount(t, accounts, "mia", models.RoleStudent)
	noah := createAccount(t, accounts, "noah", models.RoleStudent)
	createAccount(t, accounts, "idle", models.RoleStudent)
	p := createPhrase(t, db, "Hello")

	repo := NewAttemptRepository(db)
	for i := 0; i < 3; i++ {
		_, err := repo.Create(ctx, &models.Attempt{AccountID: mia.ID, PhraseID: p.ID, IsCorrect: true, TimeTaken: 4})
		require.NoError(t, err)
	}
	_, err := repo.Create(ctx, &models.Attempt{AccountID: mia.ID, PhraseID: p.ID, IsCorrect: false, TimeTaken: 9})
	require.NoError(t, err)
	_, err = repo.Create(ctx, &models.Attempt{AccountID: noah.ID, PhraseID: p.ID, IsCorrect: true, TimeTaken: 2})
	require.NoError(t, err)

	correct, err := repo.CountCorrect(ctx, mia.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, correct)

	total, correct, err := repo.Totals(ctx, mia.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	assert.Equal(t, 3, correct)

	counts, err := repo.CorrectCounts(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []rank.Count{{Username: "mia", Correct: 3}, {Username: "noah", Correct: 1}}, counts)

	recent, err := repo.ListSince(ctx, mia.ID, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Len(t, recent, 4)

	_, err = repo.Create(ctx, &models.Attempt{AccountID: mia.ID, PhraseID: p.ID, TimeTaken: -1})
	assert.Error(t, err, "negative time_taken is rejected by storage")

	created, err := repo.AwardBelt(ctx, mia.ID, "White")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.AwardBelt(ctx, mia.ID, "White")
	require.NoError(t, err)
	assert.False(t, created, "second award of the same belt is a no-op")

	exists, err := repo.AwardExists(ctx, mia.ID, "White")
	require.NoError(t, err)
	assert.True(t, exists)

	awards, err := repo.ListAwards(ctx, mia.ID)
	require.NoError(t, err)
	require.Len(t, awards, 1)
	assert.Equal(t, "White", awards[0].Belt)
}

func awardRace(t *testing.T, db *database.DB) {
	t.Helper()
	ctx := context.Background()
	a := createAccount(t, NewAccountRepository(db), "racer", models.RoleStudent)

	const workers = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := db.WithTx(ctx, func(tx *database.Tx) error {
				ok, err := NewAttemptRepository(tx).AwardBelt(ctx, a.ID, "Yellow")
				if ok {
					mu.Lock()
					created++
					mu.Unlock()
				}
				return err
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	var rows int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM rank_awards WHERE account_id = ?", a.ID).Scan(&rows))
	assert.Equal(t, 1, rows)
}

func TestConcurrentAwardsSQLite(t *testing.T) {
	awardRace(t, dbtest.NewSQLite(t))
}

func TestConcurrentAwardsPostgres(t *testing.T) {
	awardRace(t, dbtest.NewPostgres(t))
}

// firstAccountRace registers several accounts at once on an empty database.
// Exactly one of them may become admin.
func firstAccountRace(t *testing.T, db *database.DB) {
	t.Helper()

	ctx := context.Background()
	repo := NewAccountRepository(db)

	const n = 8
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Create(ctx, &models.Account{
				Username:     fmt.Sprintf("early-%d", i),
				PasswordHash: "hash",
				Role:         models.RoleStudent,
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	admins, err := repo.ListByRole(ctx, models.RoleAdmin)
	require.NoError(t, err)
	assert.Len(t, admins, 1)

	students, err := repo.ListByRole(ctx, models.RoleStudent)
	require.NoError(t, err)
	assert.Len(t, students, n-1)
}

func TestConcurrentFirstAccountsSQLite(t *testing.T) {
	firstAccountRace(t, dbtest.NewSQLite(t))
}

func TestConcurrentFirstAccountsPostgres(t *testing.T) {
	firstAccountRace(t, dbtest.NewPostgres(t))
}

func TestEngagementRepository(t *testing.T) {
	db := dbtest.NewSQLite(t)
	ctx := context.Background()
	mia := createAccount(t, NewAccountRepository(db), "mia", models.RoleStudent)
	p := createPhrase(t, db, "Thank you")

	repo := NewEngagementRepository(db)

	added, err := repo.AddLike(ctx, mia.ID, p.ID)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = repo.AddLike(ctx, mia.ID, p.ID)
	require.NoError(t, err)
	assert.False(t, added)

	n, err := repo.CountLikes(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	removed, err := repo.RemoveLike(ctx, mia.ID, p.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.RemoveLike(ctx, mia.ID, p.ID)
	require.NoError(t, err)
	assert.False(t, removed)

	c, err := repo.CreateComment(ctx, &models.Comment{AccountID: mia.ID, PhraseID: p.ID, Body: "easy"})
	require.NoError(t, err)

	comments, err := repo.ListComments(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "mia", comments[0].AuthorName)

	got, err := repo.GetComment(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, p.ID, got.PhraseID)
	assert.Equal(t, "mia", got.AuthorName)

	require.NoError(t, repo.DeleteComment(ctx, c.ID))
	comments, err = repo.ListComments(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)

	got, err = repo.GetComment(ctx, c.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestContentRepository(t *testing.T) {
	db := dbtest.NewSQLite(t)
	ctx := context.Background()
	p := createPhrase(t, db, "Goodbye")
	repo := NewContentRepository(db)

	e, err := repo.CreateExample(ctx, &models.Example{Title: "Greetings", Summary: "s", LinkPhraseID: &p.ID})
	require.NoError(t, err)

	_, err = repo.CreateExample(ctx, &models.Example{Title: "Broken", LinkPhraseID: ptr(int64(9999))})
	assert.ErrorIs(t, err, ErrNotFound)

	e.ExternalURL = "https://example.com"
	require.NoError(t, repo.UpdateExample(ctx, e))

	got, err := repo.GetExample(ctx, e.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "https://example.com", got.ExternalURL)
	require.NotNil(t, got.LinkPhraseID)
	assert.Equal(t, p.ID, *got.LinkPhraseID)

	// Removing the phrase keeps the example but drops the link.
	require.NoError(t, NewPhraseRepository(db).Delete(ctx, p.ID))
	got, err = repo.GetExample(ctx, e.ID)
	require.NoError(t, err)
	assert.Nil(t, got.LinkPhraseID)

	l, err := repo.CreateLesson(ctx, &models.Lesson{Title: "Week 1", Description: "d"})
	require.NoError(t, err)
	l.Audio = "lesson1.mp3"
	require.NoError(t, repo.UpdateLesson(ctx, l))

	lessons, err := repo.ListLessons(ctx)
	require.NoError(t, err)
	require.Len(t, lessons, 1)
	assert.Equal(t, "lesson1.mp3", lessons[0].Audio)

	require.NoError(t, repo.DeleteLesson(ctx, l.ID))
	require.NoError(t, repo.DeleteExample(ctx, e.ID))
	examples, err := repo.ListExamples(ctx)
	require.NoError(t, err)
	assert.Empty(t, examples)
}

func TestSettingsRepository(t *testing.T) {
	db := dbtest.NewSQLite(t)
	ctx := context.Background()
	repo := NewSettingsRepository(db)

	s, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultOrgName, s.OrgName)

	s.OrgName = "Hilltop Primary"
	s.ContactEmail = "office@hilltop.edu.au"
	require.NoError(t, repo.Update(ctx, s))

	s, err = repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Hilltop Primary", s.OrgName)
	assert.Equal(t, "office@hilltop.edu.au", s.ContactEmail)
}

func ptr[T any](v T) *T { return &v }

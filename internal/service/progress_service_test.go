package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alloneword/internal/models"
	"alloneword/internal/repository"
)

func TestCanView(t *testing.T) {
	parentID := int64(10)
	student := &models.Account{ID: 1, Role: models.RoleStudent, ParentID: &parentID}

	tests := []struct {
		name   string
		viewer *models.Account
		want   bool
	}{
		{"admin", &models.Account{ID: 2, Role: models.RoleAdmin}, true},
		{"teacher", &models.Account{ID: 3, Role: models.RoleTeacher}, true},
		{"self", &models.Account{ID: 1, Role: models.RoleStudent}, true},
		{"other student", &models.Account{ID: 4, Role: models.RoleStudent}, false},
		{"linked parent", &models.Account{ID: 10, Role: models.RoleParent}, true},
		{"other parent", &models.Account{ID: 11, Role: models.RoleParent}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanView(tt.viewer, student); got != tt.want {
				t.Errorf("CanView() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProgressStatsAndDashboards(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	attempts := repository.NewAttemptRepository(env.db)
	svc := NewProgressService(env.accounts, attempts)

	parent := env.createAccount(t, "dad", "", models.RoleParent)
	linked := env.createAccount(t, "linked", "", models.RoleStudent)
	other := env.createAccount(t, "other", "", models.RoleStudent)
	require.NoError(t, env.accounts.SetParent(ctx, linked.ID, &parent.ID))

	phrase := env.createPhrase(t, "progress")
	for i := 0; i < 6; i++ {
		_, err := attempts.Create(ctx, &models.Attempt{AccountID: linked.ID, PhraseID: phrase.ID, IsCorrect: i != 0, TimeTaken: 2})
		require.NoError(t, err)
	}
	_, err := attempts.AwardBelt(ctx, linked.ID, "Yellow")
	require.NoError(t, err)

	stats, err := svc.Stats(ctx, linked)
	require.NoError(t, err)
	assert.Equal(t, 6, stats.TotalAttempts)
	assert.Equal(t, 5, stats.CorrectCount)
	assert.Equal(t, "Yellow", stats.Belt)
	assert.Len(t, stats.Awards, 1)

	all, err := svc.AllStudents(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	children, err := svc.Children(ctx, parent.ID)
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, "linked", children[0].Account.Username)

	_, err = svc.Student(ctx, parent, other.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.Student(ctx, parent, parent.ID)
	assert.ErrorIs(t, err, ErrAccountNotFound, "only students have progress pages")
	got, err := svc.Student(ctx, parent, linked.ID)
	require.NoError(t, err)
	assert.Equal(t, linked.ID, got.ID)
}

func TestDaily(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	attempts := repository.NewAttemptRepository(env.db)
	svc := NewProgressService(env.accounts, attempts)

	student := env.createAccount(t, "kid", "", models.RoleStudent)
	phrase := env.createPhrase(t, "daily")
	for i := 0; i < 3; i++ {
		_, err := attempts.Create(ctx, &models.Attempt{AccountID: student.ID, PhraseID: phrase.ID, IsCorrect: i < 2, TimeTaken: 1})
		require.NoError(t, err)
	}

	now := time.Now().UTC()
	chart, err := svc.Daily(ctx, student.ID, 7, now)
	require.NoError(t, err)

	require.Len(t, chart.Labels, 7)
	assert.Equal(t, now.Format(time.DateOnly), chart.Labels[6])
	assert.Equal(t, now.AddDate(0, 0, -6).Format(time.DateOnly), chart.Labels[0])
	assert.Equal(t, []int{0, 0, 0, 0, 0, 0, 3}, chart.Attempts)
	assert.Equal(t, []int{0, 0, 0, 0, 0, 0, 2}, chart.Correct)

	chart, err = svc.Daily(ctx, student.ID, 0, now)
	require.NoError(t, err)
	assert.Len(t, chart.Labels, 1, "at least one day is charted")
}

package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alloneword/internal/models"
)

func TestLinkService(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	ses := &fakeSES{}
	svc := NewLinkService(env.accounts, newTestEmail(ses))

	parent := env.createAccount(t, "mum", "mum@example.com", models.RoleParent)
	student := env.createAccount(t, "kid", "", models.RoleStudent)
	teacher := env.createAccount(t, "teach", "", models.RoleTeacher)

	tests := []struct {
		name      string
		studentID int64
		parentID  int64
		wantErr   error
	}{
		{"self link", student.ID, student.ID, ErrSelfLink},
		{"missing parent", student.ID, 999, ErrAccountNotFound},
		{"child is not a student", teacher.ID, parent.ID, ErrNotStudent},
		{"parent is not a parent", student.ID, teacher.ID, ErrNotParent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, svc.Link(ctx, tt.studentID, tt.parentID), tt.wantErr)
		})
	}

	require.NoError(t, svc.Link(ctx, student.ID, parent.ID))
	got, err := env.accounts.GetByID(ctx, student.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ParentID)
	assert.Equal(t, parent.ID, *got.ParentID)
	assert.Equal(t, []string{"You can now follow kid's progress"}, ses.subjects())

	overview, err := svc.Overview(ctx)
	require.NoError(t, err)
	assert.Len(t, overview.Students, 1)
	assert.Len(t, overview.Parents, 1)

	require.NoError(t, svc.Unlink(ctx, student.ID))
	got, err = env.accounts.GetByID(ctx, student.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ParentID)

	assert.ErrorIs(t, svc.Unlink(ctx, parent.ID), ErrAccountNotFound)
}

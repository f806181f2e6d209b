package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alloneword/internal/models"
)

func TestAddComment(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	svc := NewEngagementService(env.db)

	_, err := env.db.LoadBadWords(ctx, strings.NewReader("darn\nheck\n"))
	require.NoError(t, err)

	student := env.createAccount(t, "kid", "", models.RoleStudent)
	phrase := env.createPhrase(t, "comment here")

	c, err := svc.AddComment(ctx, student, phrase.ID, CommentInput{Body: "  I always mix this one up  "})
	require.NoError(t, err)
	assert.Equal(t, "I always mix this one up", c.Body)
	assert.Equal(t, "kid", c.AuthorName)

	_, err = svc.AddComment(ctx, student, phrase.ID, CommentInput{Body: "Oh HECK, not again"})
	assert.ErrorIs(t, err, ErrCommentRejected)

	_, err = svc.AddComment(ctx, student, phrase.ID, CommentInput{Body: "   "})
	assert.Error(t, err)

	_, err = svc.AddComment(ctx, student, phrase.ID+50, CommentInput{Body: "hello"})
	assert.ErrorIs(t, err, ErrPhraseNotFound)

	second, err := svc.AddComment(ctx, student, phrase.ID, CommentInput{Body: "got it now"})
	require.NoError(t, err)

	comments, err := svc.Comments(ctx, phrase.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2, "rejected comments are not stored")
	assert.Equal(t, second.ID, comments[0].ID, "newest first")
}

func TestDeleteComment(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	svc := NewEngagementService(env.db)

	ann := env.createAccount(t, "ann", "", models.RoleStudent)
	bob := env.createAccount(t, "bob", "", models.RoleStudent)
	teacher := env.createAccount(t, "miss-t", "", models.RoleTeacher)
	phrase := env.createPhrase(t, "talk about it")
	other := env.createPhrase(t, "somewhere else")

	first, err := svc.AddComment(ctx, ann, phrase.ID, CommentInput{Body: "first"})
	require.NoError(t, err)
	second, err := svc.AddComment(ctx, ann, phrase.ID, CommentInput{Body: "second"})
	require.NoError(t, err)

	tests := []struct {
		name      string
		actor     *models.Account
		phraseID  int64
		commentID int64
		wantErr   error
	}{
		{"someone else's comment", bob, phrase.ID, first.ID, ErrForbidden},
		{"wrong phrase", ann, other.ID, first.ID, ErrNotFound},
		{"unknown comment", ann, phrase.ID, 999, ErrNotFound},
		{"own comment", ann, phrase.ID, first.ID, nil},
		{"staff removes any comment", teacher, phrase.ID, second.ID, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.DeleteComment(ctx, tt.actor, tt.phraseID, tt.commentID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}

	comments, err := svc.Comments(ctx, phrase.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestToggleLike(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	svc := NewEngagementService(env.db)

	ann := env.createAccount(t, "ann", "", models.RoleStudent)
	bob := env.createAccount(t, "bob", "", models.RoleStudent)
	phrase := env.createPhrase(t, "likeable")

	res, err := svc.ToggleLike(ctx, ann, phrase.ID)
	require.NoError(t, err)
	assert.Equal(t, LikeResult{Liked: true, LikesCount: 1}, *res)

	res, err = svc.ToggleLike(ctx, bob, phrase.ID)
	require.NoError(t, err)
	assert.Equal(t, LikeResult{Liked: true, LikesCount: 2}, *res)

	res, err = svc.ToggleLike(ctx, ann, phrase.ID)
	require.NoError(t, err)
	assert.Equal(t, LikeResult{Liked: false, LikesCount: 1}, *res)

	_, err = svc.ToggleLike(ctx, ann, phrase.ID+50)
	assert.ErrorIs(t, err, ErrPhraseNotFound)
}

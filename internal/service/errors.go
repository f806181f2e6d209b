package service

import "errors"

var (
	ErrUsernameTaken      = errors.New("username already taken")
	ErrEmailTaken         = errors.New("email already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionExpired     = errors.New("session expired")

	ErrAccountNotFound = errors.New("account not found")
	ErrPhraseNotFound  = errors.New("phrase not found")
	ErrNotFound        = errors.New("not found")

	ErrWrongPassword = errors.New("current password is incorrect")
	ErrSelfLink      = errors.New("an account cannot be linked to itself")
	ErrNotStudent    = errors.New("account is not a student")
	ErrNotParent     = errors.New("linked parent must be a parent")
	ErrForbidden     = errors.New("not allowed")

	ErrCommentRejected = errors.New("comment contains words that are not allowed")
)

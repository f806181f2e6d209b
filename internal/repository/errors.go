package repository

import "errors"

var (
	// ErrDuplicate is returned when an insert or update hits a unique constraint
	ErrDuplicate = errors.New("record already exists")

	// ErrNotFound is returned by updates that matched no row
	ErrNotFound = errors.New("record not found")
)

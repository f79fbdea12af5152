package rulerdb

import "errors"

var (
	// ErrNotFound is returned when a user or player record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrNoRowsAffected is returned when a conditional update matched nothing.
	ErrNoRowsAffected = errors.New("no rows affected")
)

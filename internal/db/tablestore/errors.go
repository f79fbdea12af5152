package tablestore

import "errors"

var (
	// ErrNotFound is returned by Get when no row matches.
	ErrNotFound = errors.New("tablestore: row not found")

	// ErrInvalidIdentifier is returned when a table or column name is not a
	// plain SQL identifier.
	ErrInvalidIdentifier = errors.New("tablestore: invalid identifier")

	// ErrEmptyValues is returned by Insert/Update/CreateTable when nothing was given.
	ErrEmptyValues = errors.New("tablestore: no columns given")

	// ErrUnsupportedDriver is returned by Open for an unknown backend.
	ErrUnsupportedDriver = errors.New("tablestore: unsupported driver")

	// ErrColumnMissing is returned by Row helpers for an absent column.
	ErrColumnMissing = errors.New("tablestore: column missing")

	// ErrColumnType is returned by Row helpers when a value cannot be converted.
	ErrColumnType = errors.New("tablestore: unexpected column type")
)

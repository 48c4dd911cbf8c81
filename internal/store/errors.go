package store

import "errors"

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// ErrExists is returned when creating a record that already exists.
var ErrExists = errors.New("already exists")

// ErrMalformed is returned when a stored document cannot be parsed.
var ErrMalformed = errors.New("malformed document")

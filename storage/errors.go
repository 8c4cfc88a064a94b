package storage

import (
	"errors"
)

var (
	// ErrNotFound is returned when a key is absent. Both the badger and the
	// pebble backends translate their own not-found errors into it.
	ErrNotFound = errors.New("key not found")

	ErrAlreadyExists = errors.New("key already exists")
	ErrDataMismatch  = errors.New("data for key is different")
)

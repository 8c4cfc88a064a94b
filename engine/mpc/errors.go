package mpc

import (
	"errors"
)

var (
	// ErrNoActiveEpoch is returned for operations that need an epoch between
	// EndEpoch and the next StartEpoch.
	ErrNoActiveEpoch = errors.New("no active epoch")

	// ErrEpochActive is returned by StartEpoch while the previous epoch has
	// not been ended.
	ErrEpochActive = errors.New("epoch already active")

	// ErrEpochMismatch is returned by EndEpoch for a counter other than the
	// active epoch's.
	ErrEpochMismatch = errors.New("epoch counter mismatch")

	// ErrMaliciousSender marks messages dropped because their sender was
	// confirmed malicious.
	ErrMaliciousSender = errors.New("sender confirmed malicious")

	// ErrAdvancePanicked wraps a panic recovered from an advance call.
	ErrAdvancePanicked = errors.New("advance panicked")
)

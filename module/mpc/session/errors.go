package session

import (
	"errors"
)

var (
	// ErrEpochEnded is returned by every epoch-scoped operation once the epoch
	// the caller holds a handle to has been closed.
	ErrEpochEnded = errors.New("epoch ended")

	// ErrUnknownProtocol is returned when creating a session of an invalid kind.
	ErrUnknownProtocol = errors.New("unknown protocol kind")
)

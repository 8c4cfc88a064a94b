package storage

import (
	"github.com/dwallet-labs/dwallet-network-sub008/model/mpc"
)

// MPCOutputs is the durable sink for session outputs a quorum agreed on.
type MPCOutputs interface {
	// Store persists the output of the session. Storing the same output twice
	// is a no-op; storing a different output for a stored session returns
	// ErrDataMismatch.
	Store(sessionID mpc.SessionIdentifier, output []byte) error

	// ByID returns the stored output of the session, or ErrNotFound.
	ByID(sessionID mpc.SessionIdentifier) ([]byte, error)

	// Exists returns true if an output is stored for the session.
	Exists(sessionID mpc.SessionIdentifier) (bool, error)
}

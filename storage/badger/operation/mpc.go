package operation

import (
	"github.com/dgraph-io/badger/v2"

	"github.com/dwallet-labs/dwallet-network-sub008/model/mpc"
)

// InsertMPCOutput stores the agreed output of a session. Inserting the same
// output again is a no-op.
func InsertMPCOutput(sessionID mpc.SessionIdentifier, output []byte) func(*badger.Txn) error {
	return insertIdempotent(makePrefix(codeMPCOutput, sessionID), output)
}

// RetrieveMPCOutput retrieves the output of a session.
func RetrieveMPCOutput(sessionID mpc.SessionIdentifier, output *[]byte) func(*badger.Txn) error {
	return retrieve(makePrefix(codeMPCOutput, sessionID), output)
}

// CheckMPCOutput checks whether an output is stored for the session.
func CheckMPCOutput(sessionID mpc.SessionIdentifier, found *bool) func(*badger.Txn) error {
	return exists(makePrefix(codeMPCOutput, sessionID), found)
}

// RemoveMPCOutput removes the output of a session.
func RemoveMPCOutput(sessionID mpc.SessionIdentifier) func(*badger.Txn) error {
	return remove(makePrefix(codeMPCOutput, sessionID))
}

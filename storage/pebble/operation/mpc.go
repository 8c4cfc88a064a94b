package operation

import (
	"github.com/cockroachdb/pebble"

	"github.com/dwallet-labs/dwallet-network-sub008/model/mpc"
)

func InsertMPCOutput(sessionID mpc.SessionIdentifier, output []byte) func(ReaderWriter) error {
	return insertIdempotent(makeKey(codeMPCOutput, sessionID), output)
}

func RetrieveMPCOutput(sessionID mpc.SessionIdentifier, output *[]byte) func(pebble.Reader) error {
	return retrieve(makeKey(codeMPCOutput, sessionID), output)
}

func CheckMPCOutput(sessionID mpc.SessionIdentifier, found *bool) func(pebble.Reader) error {
	return exists(makeKey(codeMPCOutput, sessionID), found)
}

func RemoveMPCOutput(sessionID mpc.SessionIdentifier) func(pebble.Writer) error {
	return remove(makeKey(codeMPCOutput, sessionID))
}

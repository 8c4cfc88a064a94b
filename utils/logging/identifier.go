package logging

import (
	"github.com/rs/zerolog"

	"github.com/dwallet-labs/dwallet-network-sub008/model/mpc"
)

// Session returns a log context that tags every event with the session
// identifier and protocol kind.
func Session(log zerolog.Logger, id mpc.SessionIdentifier, kind mpc.ProtocolKind) zerolog.Logger {
	return log.With().
		Hex("session_id", id[:]).
		Str("protocol", kind.String()).
		Logger()
}

// IDs returns the hex encodings of the given authority identifiers, for use
// with zerolog's Strs.
func IDs(ids []mpc.AuthorityID) []string {
	ss := make([]string, 0, len(ids))
	for _, id := range ids {
		ss = append(ss, id.String())
	}
	return ss
}

package party

import (
	"github.com/dwallet-labs/dwallet-network-sub008/model/mpc"
)

// Input is what a Backend round function receives. Inbound holds the decoded
// bodies of the previous round's messages, keyed by sender; it is empty for
// the first round.
type Input struct {
	SessionID  mpc.SessionIdentifier
	Kind       mpc.ProtocolKind
	Round      uint64
	Public     []byte
	Inbound    map[mpc.AuthorityID][]byte
	Private    []byte
	NetworkKey []byte
	Committee  *mpc.Committee
}

// Result is what a Backend round function returns. Exactly one of Message,
// the final outputs (Final set), or Malicious is meaningful. Private is the
// new private state of the party and is threaded into the next round.
type Result struct {
	Message       []byte
	Final         bool
	PublicOutput  []byte
	PrivateOutput []byte
	Malicious     []mpc.AuthorityID
	Private       []byte
}

// Backend is the cryptographic math of the protocols, consumed as a black box.
// Implementations must be safe for concurrent use across sessions and must not
// keep per-session state outside of Result.Private.
type Backend interface {
	// DKG runs a round of the first or second DKG step of a dWallet.
	DKG(in Input) (Result, error)
	// Presign runs a round of the first or second presign step.
	Presign(in Input) (Result, error)
	// Sign runs a round of the signing protocol.
	Sign(in Input) (Result, error)
	// NetworkDKG runs a round of the network key generation.
	NetworkDKG(in Input) (Result, error)
	// ShareVerification verifies or publishes an encrypted share. It completes
	// in a single local round.
	ShareVerification(in Input) (Result, error)
}

// Package transcript implements a deterministic, non-cryptographic party
// backend. Every message and output is a BLAKE3 transcript of the session
// inputs, so honest validators agree on outputs and any deviating message is
// detected. It is used by tests and by development nodes.
package transcript

import (
	"encoding/binary"
	"fmt"

	"github.com/zeebo/blake3"

	"github.com/dwallet-labs/dwallet-network-sub008/model/mpc"
	"github.com/dwallet-labs/dwallet-network-sub008/module/mpc/party"
)

const (
	messageContext = "dwallet-network 2024-06 transcript message"
	outputContext  = "dwallet-network 2024-06 transcript output"
	stateContext   = "dwallet-network 2024-06 transcript state"
)

// messageRounds is the number of rounds in which parties exchange messages
// before the output can be computed.
var messageRounds = map[mpc.ProtocolKind]uint64{
	mpc.DKGFirstRound:              1,
	mpc.DKGSecondRound:             2,
	mpc.PresignFirstRound:          1,
	mpc.PresignSecondRound:         2,
	mpc.Sign:                       1,
	mpc.NetworkDKG:                 3,
	mpc.EncryptedShareVerification: 0,
	mpc.MakeSharePublic:            0,
}

// MessageRounds returns the number of message rounds of the protocol kind.
func MessageRounds(kind mpc.ProtocolKind) uint64 {
	return messageRounds[kind]
}

type Backend struct {
	self mpc.AuthorityID
}

var _ party.Backend = (*Backend)(nil)

// New returns a backend acting as the given authority.
func New(self mpc.AuthorityID) *Backend {
	return &Backend{self: self}
}

func (b *Backend) DKG(in party.Input) (party.Result, error)               { return b.round(in) }
func (b *Backend) Presign(in party.Input) (party.Result, error)           { return b.round(in) }
func (b *Backend) Sign(in party.Input) (party.Result, error)              { return b.round(in) }
func (b *Backend) NetworkDKG(in party.Input) (party.Result, error)        { return b.round(in) }
func (b *Backend) ShareVerification(in party.Input) (party.Result, error) { return b.round(in) }

func (b *Backend) round(in party.Input) (party.Result, error) {
	rounds, ok := messageRounds[in.Kind]
	if !ok {
		return party.Result{}, fmt.Errorf("transcript backend does not support %s: %w", in.Kind, party.ErrUnsupportedKind)
	}
	if len(in.Public) == 0 && in.Kind != mpc.NetworkDKG {
		return party.Result{}, fmt.Errorf("empty public input: %w", party.ErrInvalidPublicInput)
	}
	if in.Round > rounds {
		return party.Result{}, fmt.Errorf("round %d beyond last round %d", in.Round, rounds)
	}

	if in.Round > 0 {
		var accused []mpc.AuthorityID
		for sender, body := range in.Inbound {
			if string(body) != string(Message(in.SessionID, in.Kind, in.Round-1, in.Public, sender)) {
				accused = append(accused, sender)
			}
		}
		if len(accused) > 0 {
			return party.Result{Malicious: accused, Private: in.Private}, nil
		}
	}

	private := nextState(in)
	if in.Round == rounds {
		return party.Result{
			Final:         true,
			PublicOutput:  Output(in.SessionID, in.Kind, in.Public, in.NetworkKey),
			PrivateOutput: privateOutput(b.self, private),
			Private:       private,
		}, nil
	}
	return party.Result{
		Message: Message(in.SessionID, in.Kind, in.Round, in.Public, b.self),
		Private: private,
	}, nil
}

// Message returns the body an honest sender publishes in the given round.
func Message(sessionID mpc.SessionIdentifier, kind mpc.ProtocolKind, round uint64, public []byte, sender mpc.AuthorityID) []byte {
	h := blake3.NewDeriveKey(messageContext)
	writeHeader(h, sessionID, kind, round)
	_, _ = h.Write(sender[:])
	writeBytes(h, public)
	return h.Sum(nil)
}

// Output returns the public output honest validators compute for a session.
func Output(sessionID mpc.SessionIdentifier, kind mpc.ProtocolKind, public []byte, networkKey []byte) []byte {
	h := blake3.NewDeriveKey(outputContext)
	writeHeader(h, sessionID, kind, messageRounds[kind])
	writeBytes(h, public)
	writeBytes(h, networkKey)
	return h.Sum(nil)
}

func nextState(in party.Input) []byte {
	h := blake3.NewDeriveKey(stateContext)
	writeHeader(h, in.SessionID, in.Kind, in.Round)
	writeBytes(h, in.Private)
	if in.Committee == nil {
		return h.Sum(nil)
	}
	for _, sender := range in.Committee.Authorities().IDs() {
		body, ok := in.Inbound[sender]
		if !ok {
			continue
		}
		_, _ = h.Write(sender[:])
		writeBytes(h, body)
	}
	return h.Sum(nil)
}

func privateOutput(self mpc.AuthorityID, state []byte) []byte {
	h := blake3.NewDeriveKey(stateContext)
	_, _ = h.Write(self[:])
	writeBytes(h, state)
	return h.Sum(nil)
}

func writeHeader(h *blake3.Hasher, sessionID mpc.SessionIdentifier, kind mpc.ProtocolKind, round uint64) {
	_, _ = h.Write(sessionID[:])
	_, _ = h.Write([]byte{byte(kind)})
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], round)
	_, _ = h.Write(buf[:])
}

func writeBytes(h *blake3.Hasher, data []byte) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(len(data)))
	_, _ = h.Write(buf[:])
	_, _ = h.Write(data)
}

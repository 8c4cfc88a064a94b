package mpc

import (
	"fmt"
)

// SessionRequest is an on-chain event asking the network to start an MPC
// session. Events are delivered at least once; the session identifier is the
// deduplication key.
type SessionRequest interface {
	// SessionIdentifier returns the deterministic identifier of the requested session.
	SessionIdentifier() SessionIdentifier
	// SessionKind returns the protocol the session runs.
	SessionKind() ProtocolKind
	// SessionEpoch returns the epoch the event was emitted in.
	SessionEpoch() uint64
	// PublicInput returns the protocol-specific public input.
	PublicInput() []byte
}

// StartSessionEvent holds the fields shared by every session-creation event.
type StartSessionEvent struct {
	// EventID is the chain-assigned unique identifier of the originating event.
	EventID []byte
	Epoch   uint64
	Input   []byte
}

func (e StartSessionEvent) SessionEpoch() uint64 { return e.Epoch }
func (e StartSessionEvent) PublicInput() []byte  { return e.Input }

func (e StartSessionEvent) identifier(kind ProtocolKind) SessionIdentifier {
	return DeriveSessionIdentifier(e.Epoch, kind.String(), e.EventID)
}

type StartDKGFirstRoundEvent struct{ StartSessionEvent }

func (e StartDKGFirstRoundEvent) SessionKind() ProtocolKind { return DKGFirstRound }
func (e StartDKGFirstRoundEvent) SessionIdentifier() SessionIdentifier {
	return e.identifier(DKGFirstRound)
}

type StartDKGSecondRoundEvent struct{ StartSessionEvent }

func (e StartDKGSecondRoundEvent) SessionKind() ProtocolKind { return DKGSecondRound }
func (e StartDKGSecondRoundEvent) SessionIdentifier() SessionIdentifier {
	return e.identifier(DKGSecondRound)
}

type StartPresignFirstRoundEvent struct{ StartSessionEvent }

func (e StartPresignFirstRoundEvent) SessionKind() ProtocolKind { return PresignFirstRound }
func (e StartPresignFirstRoundEvent) SessionIdentifier() SessionIdentifier {
	return e.identifier(PresignFirstRound)
}

type StartPresignSecondRoundEvent struct{ StartSessionEvent }

func (e StartPresignSecondRoundEvent) SessionKind() ProtocolKind { return PresignSecondRound }
func (e StartPresignSecondRoundEvent) SessionIdentifier() SessionIdentifier {
	return e.identifier(PresignSecondRound)
}

type StartSignEvent struct{ StartSessionEvent }

func (e StartSignEvent) SessionKind() ProtocolKind { return Sign }
func (e StartSignEvent) SessionIdentifier() SessionIdentifier {
	return e.identifier(Sign)
}

type StartNetworkDKGEvent struct{ StartSessionEvent }

func (e StartNetworkDKGEvent) SessionKind() ProtocolKind { return NetworkDKG }
func (e StartNetworkDKGEvent) SessionIdentifier() SessionIdentifier {
	return e.identifier(NetworkDKG)
}

type StartEncryptedShareVerificationEvent struct{ StartSessionEvent }

func (e StartEncryptedShareVerificationEvent) SessionKind() ProtocolKind {
	return EncryptedShareVerification
}
func (e StartEncryptedShareVerificationEvent) SessionIdentifier() SessionIdentifier {
	return e.identifier(EncryptedShareVerification)
}

type StartMakeSharePublicEvent struct{ StartSessionEvent }

func (e StartMakeSharePublicEvent) SessionKind() ProtocolKind { return MakeSharePublic }
func (e StartMakeSharePublicEvent) SessionIdentifier() SessionIdentifier {
	return e.identifier(MakeSharePublic)
}

// NewSessionRequest wraps the shared event fields into the creation event of
// the given protocol kind.
func NewSessionRequest(kind ProtocolKind, base StartSessionEvent) (SessionRequest, error) {
	switch kind {
	case DKGFirstRound:
		return StartDKGFirstRoundEvent{StartSessionEvent: base}, nil
	case DKGSecondRound:
		return StartDKGSecondRoundEvent{StartSessionEvent: base}, nil
	case PresignFirstRound:
		return StartPresignFirstRoundEvent{StartSessionEvent: base}, nil
	case PresignSecondRound:
		return StartPresignSecondRoundEvent{StartSessionEvent: base}, nil
	case Sign:
		return StartSignEvent{StartSessionEvent: base}, nil
	case NetworkDKG:
		return StartNetworkDKGEvent{StartSessionEvent: base}, nil
	case EncryptedShareVerification:
		return StartEncryptedShareVerificationEvent{StartSessionEvent: base}, nil
	case MakeSharePublic:
		return StartMakeSharePublicEvent{StartSessionEvent: base}, nil
	default:
		return nil, fmt.Errorf("no creation event for protocol kind %d", kind)
	}
}

var (
	_ SessionRequest = StartDKGFirstRoundEvent{}
	_ SessionRequest = StartDKGSecondRoundEvent{}
	_ SessionRequest = StartPresignFirstRoundEvent{}
	_ SessionRequest = StartPresignSecondRoundEvent{}
	_ SessionRequest = StartSignEvent{}
	_ SessionRequest = StartNetworkDKGEvent{}
	_ SessionRequest = StartEncryptedShareVerificationEvent{}
	_ SessionRequest = StartMakeSharePublicEvent{}
)

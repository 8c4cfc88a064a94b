package mpc

import (
	"fmt"
)

// ProtocolKind determines which cryptographic party a session binds to.
type ProtocolKind uint8

const (
	DKGFirstRound ProtocolKind = iota + 1
	DKGSecondRound
	PresignFirstRound
	PresignSecondRound
	Sign
	NetworkDKG
	EncryptedShareVerification
	MakeSharePublic
)

// AllProtocolKinds lists every supported protocol kind.
var AllProtocolKinds = []ProtocolKind{
	DKGFirstRound,
	DKGSecondRound,
	PresignFirstRound,
	PresignSecondRound,
	Sign,
	NetworkDKG,
	EncryptedShareVerification,
	MakeSharePublic,
}

func (k ProtocolKind) String() string {
	switch k {
	case DKGFirstRound:
		return "dkg_first_round"
	case DKGSecondRound:
		return "dkg_second_round"
	case PresignFirstRound:
		return "presign_first_round"
	case PresignSecondRound:
		return "presign_second_round"
	case Sign:
		return "sign"
	case NetworkDKG:
		return "network_dkg"
	case EncryptedShareVerification:
		return "encrypted_share_verification"
	case MakeSharePublic:
		return "make_share_public"
	default:
		return fmt.Sprintf("unknown_protocol_%d", uint8(k))
	}
}

// ParseProtocolKind is the inverse of ProtocolKind.String.
func ParseProtocolKind(s string) (ProtocolKind, error) {
	for _, k := range AllProtocolKinds {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown protocol kind %q", s)
}

// Valid returns true for the known protocol kinds.
func (k ProtocolKind) Valid() bool {
	return k >= DKGFirstRound && k <= MakeSharePublic
}

// IsMultiRound returns true if sessions of this kind exchange messages with
// peers before producing an output. Share verification kinds are computed
// locally from the public input alone.
func (k ProtocolKind) IsMultiRound() bool {
	switch k {
	case EncryptedShareVerification, MakeSharePublic:
		return false
	default:
		return true
	}
}

// RequiresNetworkKey returns true if the protocol consumes the network
// decryption key produced by the network DKG.
func (k ProtocolKind) RequiresNetworkKey() bool {
	switch k {
	case NetworkDKG, MakeSharePublic:
		return false
	default:
		return true
	}
}

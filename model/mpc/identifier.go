package mpc

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"
)

// sessionIDContext is the BLAKE3 key-derivation context for session identifiers.
// Changing it changes every session identifier on the network.
const sessionIDContext = "dwallet-network 2024-06 mpc session identifier"

// IdentifierLen is the byte length of session and authority identifiers.
const IdentifierLen = 32

// SessionIdentifier uniquely identifies a protocol instance. It is derived
// deterministically from the originating on-chain event, so that every
// validator computes the same value without coordination.
type SessionIdentifier [IdentifierLen]byte

// ZeroSessionID is the zero value, never produced by DeriveSessionIdentifier.
var ZeroSessionID SessionIdentifier

// DeriveSessionIdentifier computes the identifier of the session started by the
// event of the given type and id in the given epoch.
func DeriveSessionIdentifier(epoch uint64, eventType string, eventID []byte) SessionIdentifier {
	h := blake3.NewDeriveKey(sessionIDContext)
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], epoch)
	_, _ = h.Write(buf[:])
	binary.BigEndian.PutUint64(buf[:], uint64(len(eventType)))
	_, _ = h.Write(buf[:])
	_, _ = h.Write([]byte(eventType))
	_, _ = h.Write(eventID)

	var id SessionIdentifier
	copy(id[:], h.Sum(nil))
	return id
}

// ParseSessionIdentifier decodes a hex-encoded session identifier.
func ParseSessionIdentifier(s string) (SessionIdentifier, error) {
	var id SessionIdentifier
	b, err := hex.DecodeString(s)
	if err != nil {
		return id, fmt.Errorf("could not decode session identifier: %w", err)
	}
	if len(b) != IdentifierLen {
		return id, fmt.Errorf("invalid session identifier length: got %d, want %d", len(b), IdentifierLen)
	}
	copy(id[:], b)
	return id, nil
}

// String returns the hex encoding of the identifier.
func (id SessionIdentifier) String() string {
	return hex.EncodeToString(id[:])
}

// AuthorityID identifies a validator (an authority of the committee).
type AuthorityID [IdentifierLen]byte

// HexToAuthorityID decodes a hex-encoded authority identifier.
func HexToAuthorityID(s string) (AuthorityID, error) {
	var id AuthorityID
	b, err := hex.DecodeString(s)
	if err != nil {
		return id, fmt.Errorf("could not decode authority id: %w", err)
	}
	if len(b) != IdentifierLen {
		return id, fmt.Errorf("invalid authority id length: got %d, want %d", len(b), IdentifierLen)
	}
	copy(id[:], b)
	return id, nil
}

func (id AuthorityID) String() string {
	return hex.EncodeToString(id[:])
}

// Digest is a BLAKE3-256 digest, used for output agreement.
type Digest [32]byte

// DigestOf returns the BLAKE3-256 digest of the given bytes.
func DigestOf(data []byte) Digest {
	return blake3.Sum256(data)
}

func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

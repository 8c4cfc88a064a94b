package party

import (
	"fmt"

	"github.com/dwallet-labs/dwallet-network-sub008/model/mpc"
)

// AdvanceRequest carries everything a party needs to produce the outcome of
// round Round. For Round 0 Messages is empty; otherwise it holds the round
// payloads of Round-1, keyed by sender. Committee is set only for protocols
// that depend on the committee of the epoch, such as the network DKG.
type AdvanceRequest struct {
	SessionID    mpc.SessionIdentifier
	Kind         mpc.ProtocolKind
	Round        uint64
	PublicInput  []byte
	Messages     map[mpc.AuthorityID][]byte
	PrivateState []byte
	Committee    *mpc.Committee
	NetworkKey   []byte
}

// AdvanceFunc advances a party by one round. It returns the outcome and the
// new private state.
type AdvanceFunc func(AdvanceRequest) (Outcome, []byte, error)

// ThresholdFunc returns the stake a round needs before the party can advance.
type ThresholdFunc func(*mpc.Committee) uint64

// Capability binds a protocol kind to its advance function.
type Capability struct {
	Kind       mpc.ProtocolKind
	MultiRound bool
	Threshold  ThresholdFunc
	Advance    AdvanceFunc
}

// QuorumThreshold is the default ThresholdFunc.
func QuorumThreshold(committee *mpc.Committee) uint64 {
	return committee.QuorumThreshold()
}

// TotalStakeThreshold requires messages from the whole committee.
func TotalStakeThreshold(committee *mpc.Committee) uint64 {
	return committee.TotalStake()
}

// Table maps every protocol kind to its capability. It is immutable once built.
type Table struct {
	capabilities map[mpc.ProtocolKind]Capability
}

// TableOption customizes a Table built with NewTable.
type TableOption func(map[mpc.ProtocolKind]Capability)

// WithThreshold overrides the round threshold of a protocol kind.
func WithThreshold(kind mpc.ProtocolKind, threshold ThresholdFunc) TableOption {
	return func(caps map[mpc.ProtocolKind]Capability) {
		c, ok := caps[kind]
		if !ok {
			return
		}
		c.Threshold = threshold
		caps[kind] = c
	}
}

// WithAdvance replaces the advance function of a protocol kind.
func WithAdvance(kind mpc.ProtocolKind, advance AdvanceFunc) TableOption {
	return func(caps map[mpc.ProtocolKind]Capability) {
		c, ok := caps[kind]
		if !ok {
			c = Capability{Kind: kind, MultiRound: kind.IsMultiRound(), Threshold: QuorumThreshold}
		}
		c.Advance = advance
		caps[kind] = c
	}
}

// NewTable builds the capability table with an adapter around backend for
// every protocol kind.
func NewTable(backend Backend, opts ...TableOption) *Table {
	caps := make(map[mpc.ProtocolKind]Capability, len(mpc.AllProtocolKinds))
	for _, kind := range mpc.AllProtocolKinds {
		caps[kind] = Capability{
			Kind:       kind,
			MultiRound: kind.IsMultiRound(),
			Threshold:  QuorumThreshold,
			Advance:    newAdapter(kind, roundFunc(backend, kind)).advance,
		}
	}
	for _, apply := range opts {
		apply(caps)
	}
	return &Table{capabilities: caps}
}

// Lookup returns the capability of the given kind.
func (t *Table) Lookup(kind mpc.ProtocolKind) (Capability, error) {
	c, ok := t.capabilities[kind]
	if !ok {
		return Capability{}, fmt.Errorf("no capability for %s: %w", kind, ErrUnsupportedKind)
	}
	return c, nil
}

func roundFunc(backend Backend, kind mpc.ProtocolKind) func(Input) (Result, error) {
	switch kind {
	case mpc.DKGFirstRound, mpc.DKGSecondRound:
		return backend.DKG
	case mpc.PresignFirstRound, mpc.PresignSecondRound:
		return backend.Presign
	case mpc.Sign:
		return backend.Sign
	case mpc.NetworkDKG:
		return backend.NetworkDKG
	case mpc.EncryptedShareVerification, mpc.MakeSharePublic:
		return backend.ShareVerification
	default:
		return func(Input) (Result, error) {
			return Result{}, fmt.Errorf("no backend round function for %s: %w", kind, ErrUnsupportedKind)
		}
	}
}

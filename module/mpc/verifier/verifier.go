package verifier

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"

	"github.com/dwallet-labs/dwallet-network-sub008/model/mpc"
	"github.com/dwallet-labs/dwallet-network-sub008/storage"
)

// DefaultPersistedCacheSize is the number of persisted session ids kept in
// memory to short-circuit storage lookups.
const DefaultPersistedCacheSize = 10_000

var (
	// ErrUnknownAuthority is returned for digests from outside the committee.
	ErrUnknownAuthority = errors.New("authority is not a committee member")

	// ErrNotAgreed is returned by Persist before a quorum agreed on an output.
	ErrNotAgreed = errors.New("no agreed output for session")

	// ErrNoLocalOutput is returned by Persist when this node has not computed
	// the session output yet.
	ErrNoLocalOutput = errors.New("no local output for session")

	// ErrLocalOutputDiverged is returned by Persist when the local output
	// differs from the one the quorum agreed on.
	ErrLocalOutputDiverged = errors.New("local output differs from agreed output")
)

// AgreementStatus is the result of counting one peer digest.
type AgreementStatus int

const (
	WaitingForAgreement AgreementStatus = iota
	// AgreementReached is returned exactly once per session, for the digest
	// that first brought one output to the quorum threshold.
	AgreementReached
	AlreadyAgreed
	// Discarded is returned for digests of sessions forgotten without persisting.
	Discarded
)

func (s AgreementStatus) String() string {
	switch s {
	case WaitingForAgreement:
		return "waiting_for_agreement"
	case AgreementReached:
		return "agreement_reached"
	case AlreadyAgreed:
		return "already_agreed"
	case Discarded:
		return "discarded"
	default:
		return fmt.Sprintf("unknown_agreement_status_%d", int(s))
	}
}

type outputs struct {
	local       []byte
	localDigest mpc.Digest
	hasLocal    bool

	votes  map[mpc.AuthorityID]mpc.Digest
	stakes map[mpc.Digest]uint64

	agreed       bool
	agreedDigest mpc.Digest
}

// Verifier collects the output digests validators broadcast for each session
// and detects when a quorum of stake agrees on one output. Agreed outputs are
// written once to the durable sink.
type Verifier struct {
	log       zerolog.Logger
	committee *mpc.Committee
	threshold uint64
	sink      storage.MPCOutputs

	mu        sync.Mutex
	sessions  map[mpc.SessionIdentifier]*outputs
	persisted *lru.Cache[mpc.SessionIdentifier, mpc.Digest]
	forgotten *lru.Cache[mpc.SessionIdentifier, struct{}]
}

// New returns a verifier requiring the committee's quorum threshold of
// identical digests.
func New(log zerolog.Logger, committee *mpc.Committee, sink storage.MPCOutputs, cacheSize int) (*Verifier, error) {
	persisted, err := lru.New[mpc.SessionIdentifier, mpc.Digest](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("could not create persisted cache: %w", err)
	}
	forgotten, err := lru.New[mpc.SessionIdentifier, struct{}](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("could not create forgotten cache: %w", err)
	}
	return &Verifier{
		log: log.With().
			Str("component", "outputs_verifier").
			Uint64("epoch", committee.Epoch()).
			Logger(),
		committee: committee,
		threshold: committee.QuorumThreshold(),
		sink:      sink,
		sessions:  make(map[mpc.SessionIdentifier]*outputs),
		persisted: persisted,
		forgotten: forgotten,
	}, nil
}

func (v *Verifier) session(sessionID mpc.SessionIdentifier) *outputs {
	o, ok := v.sessions[sessionID]
	if !ok {
		o = &outputs{
			votes:  make(map[mpc.AuthorityID]mpc.Digest),
			stakes: make(map[mpc.Digest]uint64),
		}
		v.sessions[sessionID] = o
	}
	return o
}

// isPersisted consults the cache first and falls back to the sink.
func (v *Verifier) isPersisted(sessionID mpc.SessionIdentifier) (bool, error) {
	if v.persisted.Contains(sessionID) {
		return true, nil
	}
	found, err := v.sink.Exists(sessionID)
	if err != nil {
		return false, fmt.Errorf("could not check stored output: %w", err)
	}
	if found {
		v.persisted.Add(sessionID, mpc.Digest{})
	}
	return found, nil
}

// SubmitLocalOutput records the output this node computed for the session and
// returns its digest. first is false if an output was already recorded or is
// already durable, in which case the caller must not broadcast the digest again.
func (v *Verifier) SubmitLocalOutput(sessionID mpc.SessionIdentifier, output []byte) (mpc.Digest, bool, error) {
	digest := mpc.DigestOf(output)

	v.mu.Lock()
	defer v.mu.Unlock()

	persisted, err := v.isPersisted(sessionID)
	if err != nil {
		return digest, false, err
	}
	if persisted || v.forgotten.Contains(sessionID) {
		return digest, false, nil
	}

	o := v.session(sessionID)
	if o.hasLocal {
		if o.localDigest != digest {
			v.log.Error().
				Hex("session_id", sessionID[:]).
				Str("recorded", o.localDigest.String()).
				Str("submitted", digest.String()).
				Msg("conflicting local outputs, keeping the first")
		}
		return o.localDigest, false, nil
	}

	o.local = output
	o.localDigest = digest
	o.hasLocal = true
	return digest, true, nil
}

// SubmitPeerOutput counts the digest authority broadcast for the session. Only
// the first digest of each authority is counted. Once agreement is reached,
// the authorities whose digest differs from the agreed one are returned as
// divergent; each divergent authority is returned once.
func (v *Verifier) SubmitPeerOutput(sessionID mpc.SessionIdentifier, authority mpc.AuthorityID, digest mpc.Digest) (AgreementStatus, []mpc.AuthorityID, error) {
	stake := v.committee.StakeOf(authority)
	if stake == 0 {
		return WaitingForAgreement, nil, fmt.Errorf("output digest from %s: %w", authority, ErrUnknownAuthority)
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	agreedDigest, persisted := v.persisted.Get(sessionID)
	if persisted {
		if agreedDigest != (mpc.Digest{}) && digest != agreedDigest {
			return AlreadyAgreed, []mpc.AuthorityID{authority}, nil
		}
		return AlreadyAgreed, nil, nil
	}
	if v.forgotten.Contains(sessionID) {
		return Discarded, nil, nil
	}

	o := v.session(sessionID)
	if _, voted := o.votes[authority]; voted {
		if o.agreed {
			return AlreadyAgreed, nil, nil
		}
		return WaitingForAgreement, nil, nil
	}
	o.votes[authority] = digest

	if o.agreed {
		if digest != o.agreedDigest {
			return AlreadyAgreed, []mpc.AuthorityID{authority}, nil
		}
		return AlreadyAgreed, nil, nil
	}

	o.stakes[digest] += stake
	if o.stakes[digest] < v.threshold {
		return WaitingForAgreement, nil, nil
	}

	o.agreed = true
	o.agreedDigest = digest

	var divergent []mpc.AuthorityID
	for id, d := range o.votes {
		if d != digest {
			divergent = append(divergent, id)
		}
	}
	sort.Slice(divergent, func(i, j int) bool { return bytes.Compare(divergent[i][:], divergent[j][:]) < 0 })

	v.log.Info().
		Hex("session_id", sessionID[:]).
		Str("digest", digest.String()).
		Int("divergent", len(divergent)).
		Msg("output agreement reached")

	return AgreementReached, divergent, nil
}

// Ready returns true once a quorum agreed on the session output and the
// local output is known, so Persist can be called.
func (v *Verifier) Ready(sessionID mpc.SessionIdentifier) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	o, ok := v.sessions[sessionID]
	return ok && o.agreed && o.hasLocal
}

// Persist writes the agreed local output to the durable sink and forgets the
// in-memory state of the session. Persisting a session twice is a no-op.
func (v *Verifier) Persist(sessionID mpc.SessionIdentifier) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.persisted.Contains(sessionID) {
		return nil
	}
	o, ok := v.sessions[sessionID]
	if !ok || !o.agreed {
		return fmt.Errorf("session %v: %w", sessionID, ErrNotAgreed)
	}
	if !o.hasLocal {
		return fmt.Errorf("session %v: %w", sessionID, ErrNoLocalOutput)
	}
	if o.localDigest != o.agreedDigest {
		return fmt.Errorf("session %v: local %v, agreed %v: %w", sessionID, o.localDigest, o.agreedDigest, ErrLocalOutputDiverged)
	}

	err := v.sink.Store(sessionID, o.local)
	if err != nil {
		return fmt.Errorf("could not persist output of session %v: %w", sessionID, err)
	}
	v.persisted.Add(sessionID, o.agreedDigest)
	delete(v.sessions, sessionID)
	return nil
}

// Forget drops the in-memory state of the session without persisting. Later
// outputs and digests of the session are discarded.
func (v *Verifier) Forget(sessionID mpc.SessionIdentifier) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.sessions, sessionID)
	v.forgotten.Add(sessionID, struct{}{})
}

// Len returns the number of sessions with pending agreement state.
func (v *Verifier) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.sessions)
}

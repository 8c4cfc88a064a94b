package session

import (
	"sort"
	"sync"

	"go.uber.org/atomic"

	"github.com/dwallet-labs/dwallet-network-sub008/model/mpc"
)

// Attempt identifies the inputs an advance was run with. A session is not
// advanced twice with the same attempt: the outcome would be the same.
type Attempt struct {
	Round            uint64
	Inputs           mpc.Digest
	MaliciousVersion uint64
}

// Session is the unit of orchestration: one protocol instance of one kind.
//
// Status, round messages and private state are mutated only by the
// orchestration loop. At most one advance is in flight at a time, enforced by
// TryAcquire/Release.
type Session struct {
	ID             mpc.SessionIdentifier
	Kind           mpc.ProtocolKind
	Epoch          uint64
	SequenceNumber uint64
	PublicInput    []byte

	RequiresNetworkKey              bool
	RequiresActiveCommitteeSnapshot bool

	inFlight *atomic.Bool

	mu           sync.RWMutex
	status       mpc.SessionStatus
	messages     map[uint64]map[mpc.AuthorityID][]byte
	privateState []byte
	lastAttempt  *Attempt
}

// Option configures a session at creation.
type Option func(*Session)

// WithActiveCommitteeSnapshot marks the session as depending on the committee
// snapshot of the epoch it was created in. Only such sessions are handed the
// committee when they advance.
func WithActiveCommitteeSnapshot() Option {
	return func(s *Session) {
		s.RequiresActiveCommitteeSnapshot = true
	}
}

// WithPrivateState sets the initial private state of the party.
func WithPrivateState(state []byte) Option {
	return func(s *Session) {
		s.privateState = state
	}
}

func newSession(id mpc.SessionIdentifier, kind mpc.ProtocolKind, epoch uint64, seq uint64, publicInput []byte, status mpc.SessionStatus) *Session {
	return &Session{
		ID:                 id,
		Kind:               kind,
		Epoch:              epoch,
		SequenceNumber:     seq,
		PublicInput:        publicInput,
		RequiresNetworkKey: kind.RequiresNetworkKey(),
		inFlight:           atomic.NewBool(false),
		status:             status,
		messages:           make(map[uint64]map[mpc.AuthorityID][]byte),
	}
}

// Status returns the current status.
func (s *Session) Status() mpc.SessionStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Transition moves the session to the given status. It returns an
// mpc.InvalidTransitionError if the move is not forward.
func (s *Session) Transition(to mpc.SessionStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := mpc.CanTransition(s.status, to)
	if err != nil {
		return err
	}
	s.status = to
	if to.IsTerminal() {
		// no round input is consulted after a terminal status
		s.messages = make(map[uint64]map[mpc.AuthorityID][]byte)
		s.privateState = nil
	} else if to.Code == mpc.StatusActive {
		for round := range s.messages {
			if round < to.Round {
				delete(s.messages, round)
			}
		}
	}
	return nil
}

// StoreMessage stores the sender's message for the round, replacing a
// previous message of the same sender and round. Messages for a round the
// session already moved past, or sent to a terminal session, are discarded.
// It returns true if the message was stored.
func (s *Session) StoreMessage(sender mpc.AuthorityID, round uint64, payload []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status.IsTerminal() {
		return false
	}
	if s.status.Code == mpc.StatusActive && round < s.status.Round {
		return false
	}
	byRound, ok := s.messages[round]
	if !ok {
		byRound = make(map[mpc.AuthorityID][]byte)
		s.messages[round] = byRound
	}
	byRound[sender] = payload
	return true
}

// Messages returns a copy of the messages received for the round, excluding
// senders for which exclude returns true. exclude may be nil.
func (s *Session) Messages(round uint64, exclude func(mpc.AuthorityID) bool) map[mpc.AuthorityID][]byte {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[mpc.AuthorityID][]byte, len(s.messages[round]))
	for sender, payload := range s.messages[round] {
		if exclude != nil && exclude(sender) {
			continue
		}
		out[sender] = payload
	}
	return out
}

// MessageCount returns the number of distinct senders for the round.
func (s *Session) MessageCount(round uint64) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages[round])
}

// PrivateState returns the party state threaded between advances.
func (s *Session) PrivateState() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.privateState
}

// SetPrivateState replaces the party state. Ignored for terminal sessions.
func (s *Session) SetPrivateState(state []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status.IsTerminal() {
		return
	}
	s.privateState = state
}

// TryAcquire marks an advance as in flight. It returns false if one already is.
func (s *Session) TryAcquire() bool {
	return s.inFlight.CompareAndSwap(false, true)
}

// Release marks the in-flight advance as completed.
func (s *Session) Release() {
	s.inFlight.Store(false)
}

// InFlight returns true while an advance is running.
func (s *Session) InFlight() bool {
	return s.inFlight.Load()
}

// RecordAttempt remembers the inputs of an advance that did not move the session.
func (s *Session) RecordAttempt(a Attempt) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastAttempt = &a
}

// Attempted returns true if the last recorded attempt had the given inputs.
func (s *Session) Attempted(a Attempt) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastAttempt != nil && *s.lastAttempt == a
}

// InputDigest digests the given round messages in sender order. Two sets of
// messages with identical senders and payloads have the same digest.
func InputDigest(messages map[mpc.AuthorityID][]byte) mpc.Digest {
	senders := make([]mpc.AuthorityID, 0, len(messages))
	for sender := range messages {
		senders = append(senders, sender)
	}
	sort.Slice(senders, func(i, j int) bool {
		return string(senders[i][:]) < string(senders[j][:])
	})
	buf := make([]byte, 0, len(senders)*(2*mpc.IdentifierLen))
	for _, sender := range senders {
		payloadDigest := mpc.DigestOf(messages[sender])
		buf = append(buf, sender[:]...)
		buf = append(buf, payloadDigest[:]...)
	}
	return mpc.DigestOf(buf)
}

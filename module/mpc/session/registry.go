package session

import (
	"fmt"
	"sort"
	"sync"

	"github.com/dwallet-labs/dwallet-network-sub008/engine/common/fifoqueue"
	"github.com/dwallet-labs/dwallet-network-sub008/model/mpc"
)

// Registry owns the sessions of one epoch and bounds how many run at once.
// Sessions created beyond the bound wait as Pending and are promoted in
// sequence-number order as running sessions terminate.
type Registry struct {
	mu           sync.RWMutex
	epoch        EpochHandle
	maxActive    int
	sessions     map[mpc.SessionIdentifier]*Session
	pending      *fifoqueue.FifoQueue[*Session]
	nextSequence uint64
}

// NewRegistry returns an empty registry for the epoch. maxActive must be positive.
func NewRegistry(epoch EpochHandle, maxActive int) (*Registry, error) {
	if maxActive < 1 {
		return nil, fmt.Errorf("max active sessions must be positive, got %d", maxActive)
	}
	pending, err := fifoqueue.NewFifoQueue[*Session]()
	if err != nil {
		return nil, fmt.Errorf("could not create pending queue: %w", err)
	}
	return &Registry{
		epoch:     epoch,
		maxActive: maxActive,
		sessions:  make(map[mpc.SessionIdentifier]*Session),
		pending:   pending,
	}, nil
}

// Epoch returns the handle of the epoch the registry belongs to.
func (r *Registry) Epoch() EpochHandle {
	return r.epoch
}

// Create admits a new session. Creating an id that already exists is a no-op:
// the existing session is returned with created set to false, and neither its
// status nor its buffered messages change.
func (r *Registry) Create(id mpc.SessionIdentifier, kind mpc.ProtocolKind, publicInput []byte, opts ...Option) (s *Session, created bool, err error) {
	if err := r.epoch.Check(); err != nil {
		return nil, false, err
	}
	if !kind.Valid() {
		return nil, false, fmt.Errorf("cannot create session %s: %w", id, ErrUnknownProtocol)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.sessions[id]; ok {
		return existing, false, nil
	}

	status := mpc.FirstExecution()
	if r.lenActive() >= r.maxActive || r.queued() {
		status = mpc.Pending()
	}
	s = newSession(id, kind, r.epoch.Counter, r.nextSequence, publicInput, status)
	for _, apply := range opts {
		apply(s)
	}
	r.nextSequence++
	r.sessions[id] = s
	if status.Code == mpc.StatusPending {
		r.pending.Push(s)
	}
	return s, true, nil
}

// Get returns the session with the given id.
func (r *Registry) Get(id mpc.SessionIdentifier) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Remove drops the session. It returns false if the session was unknown.
// A removed Pending session is skipped when promoting.
func (r *Registry) Remove(id mpc.SessionIdentifier) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.sessions[id]
	delete(r.sessions, id)
	return ok
}

// queued reports whether a Pending session waits for a slot. Entries of
// removed or already promoted sessions are dropped from the head of the queue.
func (r *Registry) queued() bool {
	for {
		s, ok := r.pending.Front()
		if !ok {
			return false
		}
		if current, ok := r.sessions[s.ID]; ok && current == s && s.Status().Code == mpc.StatusPending {
			return true
		}
		r.pending.Pop()
	}
}

// LenActive returns the number of sessions occupying a concurrency slot.
func (r *Registry) LenActive() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lenActive()
}

func (r *Registry) lenActive() int {
	active := 0
	for _, s := range r.sessions {
		if s.Status().IsRunning() {
			active++
		}
	}
	return active
}

// Len returns the number of sessions in the registry, in any status.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Pending returns the number of sessions waiting for a concurrency slot.
func (r *Registry) Pending() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	pending := 0
	for _, s := range r.sessions {
		if s.Status().Code == mpc.StatusPending {
			pending++
		}
	}
	return pending
}

// Sessions returns all sessions ordered by sequence number.
func (r *Registry) Sessions() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		all = append(all, s)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].SequenceNumber < all[j].SequenceNumber
	})
	return all
}

// PromotePending moves Pending sessions to FirstExecution, oldest first, while
// capacity allows. It returns the promoted sessions.
func (r *Registry) PromotePending() ([]*Session, error) {
	if err := r.epoch.Check(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var promoted []*Session
	active := r.lenActive()
	for active < r.maxActive {
		s, ok := r.pending.Pop()
		if !ok {
			break
		}
		if current, ok := r.sessions[s.ID]; !ok || current != s {
			continue
		}
		err := s.Transition(mpc.FirstExecution())
		if err != nil {
			// failed while waiting, nothing to promote
			continue
		}
		promoted = append(promoted, s)
		active++
	}
	return promoted, nil
}

// Clear drops every session and returns how many were dropped.
func (r *Registry) Clear() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := len(r.sessions)
	r.sessions = make(map[mpc.SessionIdentifier]*Session)
	for {
		if _, ok := r.pending.Pop(); !ok {
			break
		}
	}
	return n
}

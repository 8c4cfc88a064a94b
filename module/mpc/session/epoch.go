package session

import (
	"fmt"

	"go.uber.org/atomic"
)

type epochState struct {
	ended *atomic.Bool
}

// EpochHandle refers to the per-epoch state by value. Holders check liveness
// on every access rather than relying on the state being collected; a handle
// to an ended epoch reports ErrEpochEnded.
type EpochHandle struct {
	Counter uint64
	state   *epochState
}

// NewEpochHandle opens the epoch with the given counter.
func NewEpochHandle(counter uint64) EpochHandle {
	return EpochHandle{
		Counter: counter,
		state:   &epochState{ended: atomic.NewBool(false)},
	}
}

// Check returns ErrEpochEnded if the epoch has been closed.
func (h EpochHandle) Check() error {
	if h.state == nil || h.state.ended.Load() {
		return fmt.Errorf("epoch %d: %w", h.Counter, ErrEpochEnded)
	}
	return nil
}

// End closes the epoch for every copy of the handle. It returns false if the
// epoch was already closed.
func (h EpochHandle) End() bool {
	if h.state == nil {
		return false
	}
	return h.state.ended.CompareAndSwap(false, true)
}

package mpc

import (
	"fmt"
	"math"
)

// StatusCode is the discriminant of SessionStatus.
type StatusCode uint8

const (
	StatusPending StatusCode = iota
	StatusFirstExecution
	StatusActive
	StatusFinished
	StatusFailed
)

func (c StatusCode) String() string {
	switch c {
	case StatusPending:
		return "pending"
	case StatusFirstExecution:
		return "first_execution"
	case StatusActive:
		return "active"
	case StatusFinished:
		return "finished"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("unknown_status_%d", uint8(c))
	}
}

// SessionStatus is the state of a session:
//
//	Pending -> FirstExecution -> Active(round) -> {Finished | Failed}
//
// Transitions are forward-only; Finished and Failed are terminal.
type SessionStatus struct {
	Code StatusCode
	// Round is meaningful only for StatusActive: the round for which this
	// validator has published its message and is waiting for peers.
	Round uint64
	// PublicOutput and PrivateOutput are set only for StatusFinished.
	PublicOutput  []byte
	PrivateOutput []byte
}

// Pending returns the status of an admitted but concurrency-limited session.
func Pending() SessionStatus {
	return SessionStatus{Code: StatusPending}
}

// FirstExecution returns the status of a session eligible to advance without
// any peer input.
func FirstExecution() SessionStatus {
	return SessionStatus{Code: StatusFirstExecution}
}

// Active returns the status of a session waiting for peer messages of round.
func Active(round uint64) SessionStatus {
	return SessionStatus{Code: StatusActive, Round: round}
}

// Finished returns a terminal status carrying the session outputs.
func Finished(public, private []byte) SessionStatus {
	return SessionStatus{Code: StatusFinished, PublicOutput: public, PrivateOutput: private}
}

// Failed returns the terminal failure status.
func Failed() SessionStatus {
	return SessionStatus{Code: StatusFailed}
}

// IsTerminal returns true for Finished and Failed.
func (s SessionStatus) IsTerminal() bool {
	return s.Code == StatusFinished || s.Code == StatusFailed
}

// IsRunning returns true for statuses that occupy a concurrency slot.
func (s SessionStatus) IsRunning() bool {
	return s.Code == StatusFirstExecution || s.Code == StatusActive
}

func (s SessionStatus) String() string {
	if s.Code == StatusActive {
		return fmt.Sprintf("active(%d)", s.Round)
	}
	return s.Code.String()
}

// CanTransition returns nil if moving from `from` to `to` is a valid forward
// transition, and an InvalidTransitionError otherwise. A session runs
// Pending -> FirstExecution -> Active(0) -> Active(1) -> ... one round at a
// time and ends in Finished or Failed. It can only finish once it executed,
// and it can fail from any non-terminal status.
func CanTransition(from, to SessionStatus) error {
	var ok bool
	switch from.Code {
	case StatusPending:
		ok = to.Code == StatusFirstExecution || to.Code == StatusFailed
	case StatusFirstExecution:
		ok = (to.Code == StatusActive && to.Round == 0) || to.IsTerminal()
	case StatusActive:
		ok = (to.Code == StatusActive && from.Round < math.MaxUint64 && to.Round == from.Round+1) || to.IsTerminal()
	}
	if !ok {
		return NewInvalidTransitionError(from, to)
	}
	return nil
}

// InvalidTransitionError is returned when a status change would move a session
// backwards, skip a status, or leave a terminal status.
type InvalidTransitionError struct {
	From SessionStatus
	To   SessionStatus
}

func NewInvalidTransitionError(from, to SessionStatus) InvalidTransitionError {
	return InvalidTransitionError{From: from, To: to}
}

func (e InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid session status transition from %s to %s", e.From, e.To)
}

package party

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/dwallet-labs/dwallet-network-sub008/model/mpc"
)

var (
	// ErrInvalidPublicInput is returned when the public input of a session
	// cannot be used by its protocol. It is fatal for the session.
	ErrInvalidPublicInput = errors.New("invalid public input")

	// ErrDependencyUnavailable is returned when a dependency of the protocol,
	// such as the network key, is not available yet. The advance should be
	// retried later; the session must not be failed.
	ErrDependencyUnavailable = errors.New("dependency unavailable")

	// ErrUnsupportedKind is returned when no capability is registered for a
	// protocol kind.
	ErrUnsupportedKind = errors.New("unsupported protocol kind")
)

// MalformedPayloadError collects the senders whose round payloads could not
// be decoded or did not match the expected protocol and round.
type MalformedPayloadError struct {
	Senders []mpc.AuthorityID
	err     *multierror.Error
}

func (e *MalformedPayloadError) add(sender mpc.AuthorityID, err error) {
	e.Senders = append(e.Senders, sender)
	e.err = multierror.Append(e.err, fmt.Errorf("payload from %s: %w", sender, err))
}

func (e *MalformedPayloadError) empty() bool {
	return len(e.Senders) == 0
}

func (e *MalformedPayloadError) Error() string {
	return fmt.Sprintf("%d malformed payloads: %s", len(e.Senders), e.err.Error())
}

func (e *MalformedPayloadError) Unwrap() error {
	return e.err.ErrorOrNil()
}

// IsMalformedPayloadError returns true if err is or wraps a MalformedPayloadError.
func IsMalformedPayloadError(err error) bool {
	var target *MalformedPayloadError
	return errors.As(err, &target)
}

// IsDependencyUnavailable returns true if the advance failed on a dependency
// that may become available later.
func IsDependencyUnavailable(err error) bool {
	return errors.Is(err, ErrDependencyUnavailable)
}

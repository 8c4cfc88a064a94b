package module

import (
	"errors"

	"github.com/dwallet-labs/dwallet-network-sub008/module/irrecoverable"
)

// ErrMultipleStartup is returned when Start is called on a component that was
// already started.
var ErrMultipleStartup = errors.New("component may only be started once")

// ReadyDoneAware provides an interface to wait for module startup and shutdown.
// Modules implementing it support a single start-stop cycle.
type ReadyDoneAware interface {
	// Ready returns a channel that is closed once startup has completed.
	// This is an idempotent method.
	Ready() <-chan struct{}

	// Done returns a channel that is closed once shutdown has completed.
	// This is an idempotent method.
	Done() <-chan struct{}
}

// Startable provides an interface to start a component. Once started, the
// component can be stopped by cancelling the given context.
type Startable interface {
	// Start starts the component. Any irrecoverable error encountered while
	// running is thrown on the given context.
	Start(irrecoverable.SignalerContext)
}

package engine

// Notifier is a concurrency primitive for informing a worker routine about
// the arrival of new work. A Notifier holds at most one pending notification:
// notifying while a notification is pending is a no-op, so the consumer must
// drain all available work after every notification.
//
// Notifier is safe to pass by value since it only wraps a channel.
type Notifier struct {
	// The 1-element buffer covers the window in which the consumer has found
	// its queue empty but not yet returned to listening on the channel. A
	// notification arriving in that window is kept until the consumer listens
	// again.
	notifier chan struct{}
}

// NewNotifier instantiates a Notifier.
func NewNotifier() Notifier {
	return Notifier{make(chan struct{}, 1)}
}

// Notify sends a notification without blocking.
func (n Notifier) Notify() {
	select {
	case n.notifier <- struct{}{}:
	default:
	}
}

// Channel returns a channel for receiving notifications.
func (n Notifier) Channel() <-chan struct{} {
	return n.notifier
}

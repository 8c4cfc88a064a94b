package irrecoverable

import (
	"context"
	"log"
	"os"
	"runtime"
	"sync"
)

// Signaler sends irrecoverable errors to an error channel. It delivers at most
// one error; later throws only terminate the calling goroutine.
type Signaler struct {
	errChan chan error
	once    sync.Once
}

func NewSignaler() (*Signaler, <-chan error) {
	errChan := make(chan error, 1)
	return &Signaler{errChan: errChan}, errChan
}

// Throw is a narrow drop-in replacement for panic, log.Fatal, log.Panic, etc
// anywhere there's something connected to the error channel. It terminates the
// calling goroutine.
func (s *Signaler) Throw(err error) {
	defer runtime.Goexit()
	s.once.Do(func() {
		s.errChan <- err
	})
}

// SignalerContext is a context.Context that can also throw irrecoverable
// errors. It can only be built with WithSignaler.
type SignalerContext interface {
	context.Context
	Throw(err error)
	sealed()
}

type signalerCtx struct {
	context.Context
	*Signaler
}

func (sc signalerCtx) sealed() {}

// WithSignaler returns a SignalerContext derived from parent, and the channel
// on which a thrown error is delivered.
func WithSignaler(parent context.Context) (SignalerContext, <-chan error) {
	sig, errChan := NewSignaler()
	return &signalerCtx{parent, sig}, errChan
}

// Throw throws the error on the context if it is a SignalerContext, and
// crashes the process otherwise.
func Throw(ctx context.Context, err error) {
	signalerAbleContext, ok := ctx.(SignalerContext)
	if ok {
		signalerAbleContext.Throw(err)
	}
	log.Printf("irrecoverable error signaler not found for context, unhandled irrecoverable error: %v", err)
	os.Exit(1)
}

// WithSignallerAndCancel returns a cancellable SignalerContext and its error
// channel.
func WithSignallerAndCancel(ctx context.Context) (SignalerContext, context.CancelFunc, <-chan error) {
	parent, cancel := context.WithCancel(ctx)
	signalerCtx, errCh := WithSignaler(parent)
	return signalerCtx, cancel, errCh
}

package util

import (
	"context"
	"sync"

	"github.com/dwallet-labs/dwallet-network-sub008/module"
)

// AllReady calls Ready on all input components and returns a channel that is
// closed when all input components are ready.
func AllReady(components ...module.ReadyDoneAware) <-chan struct{} {
	readyChans := make([]<-chan struct{}, len(components))
	for i, c := range components {
		readyChans[i] = c.Ready()
	}
	return AllClosed(readyChans...)
}

// AllDone calls Done on all input components and returns a channel that is
// closed when all input components are done.
func AllDone(components ...module.ReadyDoneAware) <-chan struct{} {
	doneChans := make([]<-chan struct{}, len(components))
	for i, c := range components {
		doneChans[i] = c.Done()
	}
	return AllClosed(doneChans...)
}

// AllClosed returns a channel that is closed when all input channels are closed.
func AllClosed(channels ...<-chan struct{}) <-chan struct{} {
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(len(channels))
	for _, ch := range channels {
		go func(ch <-chan struct{}) {
			<-ch
			wg.Done()
		}(ch)
	}
	go func() {
		wg.Wait()
		close(done)
	}()
	return done
}

// WaitClosed waits for either the channel to be closed or the context to be
// cancelled. If both happen at once, the closed channel wins and nil is
// returned; otherwise the context error is returned.
func WaitClosed(ctx context.Context, ch <-chan struct{}) error {
	select {
	case <-ctx.Done():
		select {
		case <-ch:
			return nil
		default:
		}
		return ctx.Err()
	case <-ch:
		return nil
	}
}

// CheckClosed returns true if the channel was closed (or signalled).
func CheckClosed(done <-chan struct{}) bool {
	select {
	case <-done:
		return true
	default:
		return false
	}
}

// WaitError waits for either an error on errChan or for done to be closed.
// An error available on errChan always takes precedence over done, since done
// may have closed as a consequence of that error.
func WaitError(errChan <-chan error, done <-chan struct{}) error {
	select {
	case err := <-errChan:
		return err
	case <-done:
		select {
		case err := <-errChan:
			return err
		default:
		}
		return nil
	}
}

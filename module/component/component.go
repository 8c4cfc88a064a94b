package component

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/atomic"

	"github.com/dwallet-labs/dwallet-network-sub008/module"
	"github.com/dwallet-labs/dwallet-network-sub008/module/irrecoverable"
	"github.com/dwallet-labs/dwallet-network-sub008/module/util"
)

// ErrComponentShutdown is returned by a component which has already been shut down.
var ErrComponentShutdown = fmt.Errorf("component has already shut down")

// Component can be started once and exposes channels that close when startup
// and shutdown have completed. Once Start has been called, Done must close
// eventually, either after a graceful shutdown or an irrecoverable error.
type Component interface {
	module.Startable
	module.ReadyDoneAware
}

// ReadyFunc is called by a ComponentWorker once it is ready.
type ReadyFunc func()

// ComponentWorker is a worker routine of a component. It must call ready once
// it has finished its startup, and return once ctx is cancelled. Irrecoverable
// errors are thrown on ctx.
type ComponentWorker func(ctx irrecoverable.SignalerContext, ready ReadyFunc)

// ComponentManagerBuilder builds a ComponentManager from a set of workers.
type ComponentManagerBuilder interface {
	// AddWorker adds a worker routine for the ComponentManager
	AddWorker(ComponentWorker) ComponentManagerBuilder

	// Build builds and returns a new ComponentManager instance
	Build() *ComponentManager
}

type componentManagerBuilderImpl struct {
	workers []ComponentWorker
}

func NewComponentManagerBuilder() ComponentManagerBuilder {
	return &componentManagerBuilderImpl{}
}

// AddWorker is not concurrency-safe.
func (c *componentManagerBuilderImpl) AddWorker(worker ComponentWorker) ComponentManagerBuilder {
	c.workers = append(c.workers, worker)
	return c
}

func (c *componentManagerBuilderImpl) Build() *ComponentManager {
	return &ComponentManager{
		started:        atomic.NewBool(false),
		ready:          make(chan struct{}),
		done:           make(chan struct{}),
		workersDone:    make(chan struct{}),
		shutdownSignal: make(chan struct{}),
		workers:        c.workers,
	}
}

var _ Component = (*ComponentManager)(nil)

// ComponentManager runs the worker routines of a component and implements
// the Component interface on their behalf.
//
// Ready closes when every worker has called its ReadyFunc; Done closes after
// every worker has returned. Shutdown is triggered by cancelling the context
// given to Start. An error thrown by any worker cancels the remaining workers
// and is rethrown on the parent context.
type ComponentManager struct {
	started        *atomic.Bool
	ready          chan struct{}
	done           chan struct{}
	workersDone    chan struct{}
	shutdownSignal chan struct{}

	workers []ComponentWorker
}

// Start launches all worker routines. It panics if called more than once.
func (c *ComponentManager) Start(parent irrecoverable.SignalerContext) {
	if !c.started.CompareAndSwap(false, true) {
		panic(module.ErrMultipleStartup)
	}

	ctx, cancel := context.WithCancel(parent)
	signalerCtx, errChan := irrecoverable.WithSignaler(ctx)

	go func() {
		<-ctx.Done()
		close(c.shutdownSignal)
	}()

	go func() {
		// done closes only after the error reached the parent, so that an
		// observer of Done never misses a thrown error
		defer func() {
			<-c.workersDone
			close(c.done)
		}()

		if err := util.WaitError(errChan, c.workersDone); err != nil {
			cancel()
			parent.Throw(err)
		}
	}()

	var workersReady sync.WaitGroup
	var workersDone sync.WaitGroup
	workersReady.Add(len(c.workers))
	workersDone.Add(len(c.workers))

	for _, worker := range c.workers {
		worker := worker
		go func() {
			defer workersDone.Done()
			var readyOnce sync.Once
			worker(signalerCtx, func() {
				readyOnce.Do(workersReady.Done)
			})
		}()
	}

	go func() {
		workersReady.Wait()
		close(c.ready)
	}()
	go func() {
		workersDone.Wait()
		close(c.workersDone)
	}()
}

// Ready returns a channel which is closed once all workers are ready. If a
// worker exits before calling its ReadyFunc, the channel never closes.
func (c *ComponentManager) Ready() <-chan struct{} {
	return c.ready
}

// Done returns a channel which is closed once all workers have returned.
func (c *ComponentManager) Done() <-chan struct{} {
	return c.done
}

// ShutdownSignal returns a channel that is closed when shutdown has commenced,
// either because the context was cancelled or a worker threw an error.
func (c *ComponentManager) ShutdownSignal() <-chan struct{} {
	return c.shutdownSignal
}

package mpc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gammazero/workerpool"
	"github.com/rs/zerolog"

	"github.com/dwallet-labs/dwallet-network-sub008/engine"
	"github.com/dwallet-labs/dwallet-network-sub008/engine/common/fifoqueue"
	mpcmodel "github.com/dwallet-labs/dwallet-network-sub008/model/mpc"
	"github.com/dwallet-labs/dwallet-network-sub008/module"
	"github.com/dwallet-labs/dwallet-network-sub008/module/component"
	"github.com/dwallet-labs/dwallet-network-sub008/module/irrecoverable"
	"github.com/dwallet-labs/dwallet-network-sub008/module/metrics"
)

// ErrEngineStopped is returned by commands issued after the engine shut down.
var ErrEngineStopped = errors.New("mpc engine stopped")

// command runs fn on the processing loop, in order with the inbound messages.
type command struct {
	fn   func(*Manager) error
	done chan error
}

// Engine is the MPC orchestration engine. Consensus output, session requests
// and epoch commands are queued into a single inbound queue and applied in
// order by one processing loop, which owns the Manager. Advance calls run on a
// bounded worker pool; their results are applied by the processing loop. A
// separate worker submits the produced payloads to consensus.
type Engine struct {
	*component.ComponentManager
	log          zerolog.Logger
	me           mpcmodel.AuthorityID
	metrics      module.EngineMetrics
	mpcMetrics   module.MPCMetrics
	manager      *Manager
	submitter    module.ConsensusSubmitter
	workers      int
	tickInterval time.Duration

	inbound          *engine.FifoMessageStore
	messageHandler   *engine.MessageHandler
	outbound         *fifoqueue.FifoQueue[[]byte]
	outboundNotifier engine.Notifier
	results          chan *Result
}

func New(
	log zerolog.Logger,
	engineMetrics module.EngineMetrics,
	mpcMetrics module.MPCMetrics,
	submitter module.ConsensusSubmitter,
	manager *Manager,
) (*Engine, error) {
	config := manager.config

	inbound, err := engine.NewFifoMessageStore(config.InboundQueueCapacity)
	if err != nil {
		return nil, fmt.Errorf("failed to create queue for inbound messages: %w", err)
	}
	outbound, err := fifoqueue.NewFifoQueue[[]byte](fifoqueue.WithCapacity(config.OutboundQueueCapacity))
	if err != nil {
		return nil, fmt.Errorf("failed to create queue for outbound payloads: %w", err)
	}

	e := &Engine{
		log:              log.With().Str("engine", metrics.EngineMPC).Logger(),
		me:               manager.me,
		metrics:          engineMetrics,
		mpcMetrics:       mpcMetrics,
		manager:          manager,
		submitter:        submitter,
		workers:          config.WorkerPoolSize,
		tickInterval:     config.TickInterval,
		inbound:          inbound,
		outbound:         outbound,
		outboundNotifier: engine.NewNotifier(),
		results:          make(chan *Result, config.WorkerPoolSize),
	}

	// all inputs share one queue, so they are applied in arrival order
	e.messageHandler = engine.NewMessageHandler(
		e.log,
		engine.NewNotifier(),
		e.pattern(metrics.MessageRoundMessage, func(p interface{}) bool { _, ok := p.(*mpcmodel.RoundMessage); return ok }),
		e.pattern(metrics.MessageMaliciousReport, func(p interface{}) bool { _, ok := p.(*mpcmodel.MaliciousReportMessage); return ok }),
		e.pattern(metrics.MessageOutputDigest, func(p interface{}) bool { _, ok := p.(*mpcmodel.OutputDigestMessage); return ok }),
		e.pattern(metrics.MessageEndOfPublish, func(p interface{}) bool { _, ok := p.(*mpcmodel.EndOfPublishMessage); return ok }),
		e.pattern(metrics.MessageSessionRequest, func(p interface{}) bool { _, ok := p.(mpcmodel.SessionRequest); return ok }),
		engine.Pattern{
			Match: func(msg *engine.Message) bool { _, ok := msg.Payload.(*command); return ok },
			Store: e.inbound,
		},
	)

	e.ComponentManager = component.NewComponentManagerBuilder().
		AddWorker(e.processingLoop).
		AddWorker(e.submissionLoop).
		Build()

	return e, nil
}

func (e *Engine) pattern(label string, match func(interface{}) bool) engine.Pattern {
	return engine.Pattern{
		Match: func(msg *engine.Message) bool {
			ok := match(msg.Payload)
			if ok {
				e.metrics.MessageReceived(metrics.EngineMPC, label)
			}
			return ok
		},
		Store: e.inbound,
	}
}

// ProcessConsensusOutput queues a payload delivered by consensus. Payloads
// that cannot be decoded are dropped and reported as engine.InvalidInputError.
func (e *Engine) ProcessConsensusOutput(sender mpcmodel.AuthorityID, payload []byte) error {
	msg, err := mpcmodel.DecodeConsensusMessage(payload)
	if err != nil {
		e.metrics.InboundMessageDropped(metrics.EngineMPC, metrics.MessageUnknown)
		return engine.NewInvalidInputErrorf("could not decode consensus payload from %v: %w", sender, err)
	}
	return e.messageHandler.Process(sender, msg)
}

// SubmitSessionRequest queues a session-creation event observed on chain.
func (e *Engine) SubmitSessionRequest(event mpcmodel.SessionRequest) error {
	return e.messageHandler.Process(e.me, event)
}

// StartEpoch starts the epoch of the committee. It blocks until the command
// was applied.
func (e *Engine) StartEpoch(ctx context.Context, committee *mpcmodel.Committee) error {
	return e.Query(ctx, func(m *Manager) error {
		return m.StartEpoch(committee)
	})
}

// EndEpoch ends the active epoch and returns the number of dropped sessions.
func (e *Engine) EndEpoch(ctx context.Context, counter uint64) (int, error) {
	var dropped int
	err := e.Query(ctx, func(m *Manager) error {
		var err error
		dropped, err = m.EndEpoch(counter)
		return err
	})
	return dropped, err
}

// EndOfPublish stops admitting sessions for the active epoch and announces it.
func (e *Engine) EndOfPublish(ctx context.Context) error {
	return e.Query(ctx, func(m *Manager) error {
		return m.EndOfPublish()
	})
}

// SetNetworkKey sets the network key handed to sessions that need it.
func (e *Engine) SetNetworkKey(ctx context.Context, key []byte) error {
	return e.Query(ctx, func(m *Manager) error {
		m.SetNetworkKey(key)
		return nil
	})
}

// Query runs fn on the processing loop, after every input queued before it,
// and returns its error. fn must not retain the manager.
func (e *Engine) Query(ctx context.Context, fn func(*Manager) error) error {
	cmd := &command{fn: fn, done: make(chan error, 1)}
	err := e.messageHandler.Process(e.me, cmd)
	if err != nil {
		return fmt.Errorf("could not queue command: %w", err)
	}
	select {
	case err := <-cmd.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-e.ShutdownSignal():
		return ErrEngineStopped
	}
}

// processingLoop applies queued inputs and advance results, and schedules
// ready sessions on the worker pool.
func (e *Engine) processingLoop(ctx irrecoverable.SignalerContext, ready component.ReadyFunc) {
	pool := workerpool.New(e.workers)
	defer pool.StopWait()
	ticker := time.NewTicker(e.tickInterval)
	defer ticker.Stop()

	ready()

	doneSignal := ctx.Done()
	newMessageSignal := e.messageHandler.GetNotifier()
	for {
		select {
		case <-doneSignal:
			return
		case <-newMessageSignal:
			err := e.processQueuedMessages() // no errors expected during normal operations
			if err != nil {
				ctx.Throw(err)
				return
			}
		case res := <-e.results:
			err := e.manager.ApplyResult(res)
			if err != nil {
				ctx.Throw(fmt.Errorf("could not apply advance result: %w", err))
				return
			}
		case <-ticker.C:
		}

		e.schedule(ctx, pool)
		e.flush()
	}
}

// processQueuedMessages processes any available messages until the queue is
// empty. All returned errors are exceptions.
func (e *Engine) processQueuedMessages() error {
	for {
		msg, ok := e.inbound.Get()
		if !ok {
			return nil
		}
		err := e.handle(msg)
		if err != nil {
			return err
		}
	}
}

func (e *Engine) handle(msg *engine.Message) error {
	var label string
	var err error
	switch payload := msg.Payload.(type) {
	case *command:
		payload.done <- payload.fn(e.manager)
		return nil
	case mpcmodel.SessionRequest:
		label = metrics.MessageSessionRequest
		err = e.manager.HandleSessionRequest(payload)
	default:
		label = payloadLabel(payload)
		err = e.manager.HandleConsensusMessage(msg.OriginID, payload)
	}

	switch {
	case err == nil:
		e.metrics.MessageHandled(metrics.EngineMPC, label)
		return nil
	case engine.IsInvalidInputError(err) || engine.IsOutdatedInputError(err):
		e.metrics.InboundMessageDropped(metrics.EngineMPC, label)
		e.log.Warn().Err(err).Hex("origin_id", msg.OriginID[:]).Str("message", label).Msg("dropped inbound message")
		return nil
	case errors.Is(err, ErrMaliciousSender):
		e.metrics.InboundMessageDropped(metrics.EngineMPC, label)
		e.log.Debug().Err(err).Str("message", label).Msg("dropped message of malicious sender")
		return nil
	default:
		return fmt.Errorf("could not handle %s from %v: %w", label, msg.OriginID, err)
	}
}

// schedule hands every ready session to the worker pool.
func (e *Engine) schedule(ctx context.Context, pool *workerpool.WorkerPool) {
	for _, job := range e.manager.ReadySessions() {
		job := job
		pool.Submit(func() {
			res := job.Run()
			select {
			case e.results <- res:
			case <-ctx.Done():
			}
		})
	}
	running, pending := e.manager.Stats()
	e.mpcMetrics.SessionsInFlight(running, pending)
}

// flush moves the payloads produced by the manager to the outbound queue.
func (e *Engine) flush() {
	payloads := e.manager.TakeOutbound()
	if len(payloads) == 0 {
		return
	}
	for _, payload := range payloads {
		if !e.outbound.Push(payload) {
			e.log.Error().Str("message", messageLabel(payload)).Msg("outbound queue full, dropping payload")
		}
	}
	e.outboundNotifier.Notify()
}

// submissionLoop submits queued payloads to consensus.
func (e *Engine) submissionLoop(ctx irrecoverable.SignalerContext, ready component.ReadyFunc) {
	ready()

	doneSignal := ctx.Done()
	notifier := e.outboundNotifier.Channel()
	for {
		select {
		case <-doneSignal:
			return
		case <-notifier:
			e.submitQueued(ctx)
		}
	}
}

func (e *Engine) submitQueued(ctx context.Context) {
	for {
		payload, ok := e.outbound.Pop()
		if !ok {
			return
		}
		err := e.submitter.SubmitToConsensus(ctx, [][]byte{payload})
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			e.log.Error().Err(err).Str("message", messageLabel(payload)).Msg("could not submit payload to consensus")
			continue
		}
		e.metrics.MessageSent(metrics.EngineMPC, messageLabel(payload))
	}
}

func payloadLabel(payload interface{}) string {
	switch payload.(type) {
	case *mpcmodel.RoundMessage:
		return metrics.MessageRoundMessage
	case *mpcmodel.MaliciousReportMessage:
		return metrics.MessageMaliciousReport
	case *mpcmodel.OutputDigestMessage:
		return metrics.MessageOutputDigest
	case *mpcmodel.EndOfPublishMessage:
		return metrics.MessageEndOfPublish
	default:
		return metrics.MessageUnknown
	}
}

func messageLabel(payload []byte) string {
	if len(payload) == 0 {
		return metrics.MessageUnknown
	}
	switch payload[0] {
	case mpcmodel.CodeRoundMessage:
		return metrics.MessageRoundMessage
	case mpcmodel.CodeMaliciousReport:
		return metrics.MessageMaliciousReport
	case mpcmodel.CodeOutputDigest:
		return metrics.MessageOutputDigest
	case mpcmodel.CodeEndOfPublish:
		return metrics.MessageEndOfPublish
	default:
		return metrics.MessageUnknown
	}
}

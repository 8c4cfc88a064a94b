// Package consensus provides an in-process total-order broadcast for
// development nodes and tests. Every payload submitted by any member is
// delivered to every subscriber, in one global order.
package consensus

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/dwallet-labs/dwallet-network-sub008/engine"
	"github.com/dwallet-labs/dwallet-network-sub008/model/mpc"
	"github.com/dwallet-labs/dwallet-network-sub008/module"
)

// ErrClosed is returned by submissions after the hub was closed.
var ErrClosed = errors.New("loopback consensus closed")

// Consumer receives the ordered consensus output.
type Consumer interface {
	ProcessConsensusOutput(sender mpc.AuthorityID, payload []byte) error
}

// Hub sequences the submissions of its members.
type Hub struct {
	log       zerolog.Logger
	mu        sync.Mutex
	consumers []Consumer
	sequence  uint64
	closed    bool
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		log: log.With().Str("component", "loopback_consensus").Logger(),
	}
}

// Subscribe registers a consumer of the consensus output. Payloads
// submitted before the call are not replayed.
func (h *Hub) Subscribe(consumer Consumer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.consumers = append(h.consumers, consumer)
}

// Submitter returns the submission endpoint of the given member.
func (h *Hub) Submitter(sender mpc.AuthorityID) module.ConsensusSubmitter {
	return &submitter{hub: h, sender: sender}
}

// Sequence returns the number of payloads delivered so far.
func (h *Hub) Sequence() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sequence
}

// Close stops accepting submissions.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
}

func (h *Hub) deliver(ctx context.Context, sender mpc.AuthorityID, payloads [][]byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, payload := range payloads {
		if h.closed {
			return ErrClosed
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		h.sequence++
		for _, consumer := range h.consumers {
			err := consumer.ProcessConsensusOutput(sender, payload)
			if engine.IsInvalidInputError(err) {
				h.log.Warn().Err(err).Uint64("sequence", h.sequence).Msg("consumer rejected consensus output")
				continue
			}
			if err != nil {
				return fmt.Errorf("could not deliver consensus output %d: %w", h.sequence, err)
			}
		}
	}
	return nil
}

type submitter struct {
	hub    *Hub
	sender mpc.AuthorityID
}

func (s *submitter) SubmitToConsensus(ctx context.Context, payloads [][]byte) error {
	return s.hub.deliver(ctx, s.sender, payloads)
}

package module

import (
	"context"
)

// ConsensusSubmitter publishes payloads through the total-order broadcast
// layer. Every honest validator eventually receives each submitted payload, in
// the same order, via the engine's consensus output handler.
type ConsensusSubmitter interface {
	// SubmitToConsensus submits the payloads in order. An error means none or
	// only a prefix of the payloads may have been accepted; resubmitting is safe
	// since receivers deduplicate.
	SubmitToConsensus(ctx context.Context, payloads [][]byte) error
}

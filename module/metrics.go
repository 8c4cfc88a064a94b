package module

import (
	"time"

	"github.com/dwallet-labs/dwallet-network-sub008/model/mpc"
)

// EngineMetrics tracks messages flowing through an engine's inbound queue.
type EngineMetrics interface {
	// MessageReceived is called when the engine accepts a message for processing.
	MessageReceived(engine string, message string)
	// MessageHandled is called once the engine has processed the message.
	MessageHandled(engine string, message string)
	// InboundMessageDropped is called when a message is discarded without
	// being processed.
	InboundMessageDropped(engine string, message string)
	// MessageSent is called for every payload submitted to consensus.
	MessageSent(engine string, message string)
}

// MPCMetrics tracks the lifecycle of MPC sessions.
type MPCMetrics interface {
	// SessionCreated is called when a session is admitted to the registry.
	SessionCreated(kind mpc.ProtocolKind)
	// SessionAdvanced records the duration of one advance call.
	SessionAdvanced(kind mpc.ProtocolKind, duration time.Duration)
	// SessionFinished is called when a session produces its final output.
	SessionFinished(kind mpc.ProtocolKind)
	// SessionFailed is called when a session becomes Failed.
	SessionFailed(kind mpc.ProtocolKind)
	// SessionsInFlight reports the current number of running and pending sessions.
	SessionsInFlight(running int, pending int)
	// MaliciousReportReceived is called for every accusation delivered by consensus.
	MaliciousReportReceived()
	// MaliciousAuthoritiesConfirmed reports the size of the confirmed-malicious set.
	MaliciousAuthoritiesConfirmed(count int)
	// OutputAgreed is called once a quorum agreed on a session output.
	OutputAgreed(kind mpc.ProtocolKind)
	// ConsensusSubmissionFailed is called when a submission exhausted its retries.
	ConsensusSubmissionFailed()
}

// CacheMetrics tracks the read-through caches in front of storage.
type CacheMetrics interface {
	// CacheEntries reports the number of cached items.
	CacheEntries(resource string, entries uint)
	// CacheHit is called when the queried item is found in the cache.
	CacheHit(resource string)
	// CacheNotFound is called when the queried item is in neither the cache nor the database.
	CacheNotFound(resource string)
	// CacheMiss is called when the queried item is not cached but found in the database.
	CacheMiss(resource string)
}

package metrics

import (
	"time"

	"github.com/dwallet-labs/dwallet-network-sub008/model/mpc"
	"github.com/dwallet-labs/dwallet-network-sub008/module"
)

type NoopCollector struct{}

var (
	_ module.EngineMetrics = (*NoopCollector)(nil)
	_ module.MPCMetrics    = (*NoopCollector)(nil)
	_ module.CacheMetrics  = (*NoopCollector)(nil)
)

func NewNoopCollector() *NoopCollector {
	nc := &NoopCollector{}
	return nc
}

func (nc *NoopCollector) MessageSent(engine string, message string)                     {}
func (nc *NoopCollector) MessageReceived(engine string, message string)                 {}
func (nc *NoopCollector) MessageHandled(engine string, message string)                  {}
func (nc *NoopCollector) InboundMessageDropped(engine string, message string)           {}
func (nc *NoopCollector) SessionCreated(kind mpc.ProtocolKind)                          {}
func (nc *NoopCollector) SessionAdvanced(kind mpc.ProtocolKind, duration time.Duration) {}
func (nc *NoopCollector) SessionFinished(kind mpc.ProtocolKind)                         {}
func (nc *NoopCollector) SessionFailed(kind mpc.ProtocolKind)                           {}
func (nc *NoopCollector) SessionsInFlight(running int, pending int)                     {}
func (nc *NoopCollector) MaliciousReportReceived()                                      {}
func (nc *NoopCollector) MaliciousAuthoritiesConfirmed(count int)                       {}
func (nc *NoopCollector) OutputAgreed(kind mpc.ProtocolKind)                            {}
func (nc *NoopCollector) ConsensusSubmissionFailed()                                    {}
func (nc *NoopCollector) CacheEntries(resource string, entries uint)                    {}
func (nc *NoopCollector) CacheHit(resource string)                                      {}
func (nc *NoopCollector) CacheNotFound(resource string)                                 {}
func (nc *NoopCollector) CacheMiss(resource string)                                     {}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/dwallet-labs/dwallet-network-sub008/module"
)

type CacheCollector struct {
	entries   *prometheus.GaugeVec
	hits      *prometheus.CounterVec
	notFounds *prometheus.CounterVec
	misses    *prometheus.CounterVec
}

var _ module.CacheMetrics = (*CacheCollector)(nil)

func NewCacheCollector(registerer prometheus.Registerer) *CacheCollector {
	factory := promauto.With(registerer)

	return &CacheCollector{
		entries: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespaceStorage,
			Subsystem: subsystemCache,
			Name:      "entries_total",
			Help:      "the number of entries in the cache",
		}, []string{LabelResource}),
		hits: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespaceStorage,
			Subsystem: subsystemCache,
			Name:      "hits_total",
			Help:      "the number of hits for the cache",
		}, []string{LabelResource}),
		notFounds: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespaceStorage,
			Subsystem: subsystemCache,
			Name:      "notfounds_total",
			Help:      "the number of times the queried item was not found in either cache or database",
		}, []string{LabelResource}),
		misses: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespaceStorage,
			Subsystem: subsystemCache,
			Name:      "misses_total",
			Help:      "the number of times the queried item was found in the database but not the cache",
		}, []string{LabelResource}),
	}
}

// CacheEntries records the size of the cache for the given resource.
func (cc *CacheCollector) CacheEntries(resource string, entries uint) {
	cc.entries.With(prometheus.Labels{LabelResource: resource}).Set(float64(entries))
}

func (cc *CacheCollector) CacheHit(resource string) {
	cc.hits.With(prometheus.Labels{LabelResource: resource}).Inc()
}

func (cc *CacheCollector) CacheNotFound(resource string) {
	cc.notFounds.With(prometheus.Labels{LabelResource: resource}).Inc()
}

func (cc *CacheCollector) CacheMiss(resource string) {
	cc.misses.With(prometheus.Labels{LabelResource: resource}).Inc()
}

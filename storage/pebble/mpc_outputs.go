package pebble

import (
	"errors"
	"fmt"
	"sync"

	"github.com/cockroachdb/pebble"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dwallet-labs/dwallet-network-sub008/model/mpc"
	"github.com/dwallet-labs/dwallet-network-sub008/module"
	"github.com/dwallet-labs/dwallet-network-sub008/module/metrics"
	"github.com/dwallet-labs/dwallet-network-sub008/storage"
	"github.com/dwallet-labs/dwallet-network-sub008/storage/pebble/operation"
)

// MPCOutputs implements storage.MPCOutputs on pebble.
type MPCOutputs struct {
	db      *pebble.DB
	metrics module.CacheMetrics
	// mu serializes writers so the compare-then-set in Store is atomic.
	mu    sync.Mutex
	cache *lru.Cache[mpc.SessionIdentifier, []byte]
}

var _ storage.MPCOutputs = (*MPCOutputs)(nil)

func NewMPCOutputs(collector module.CacheMetrics, db *pebble.DB, cacheSize int) (*MPCOutputs, error) {
	cache, err := lru.New[mpc.SessionIdentifier, []byte](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("could not create output cache: %w", err)
	}
	collector.CacheEntries(metrics.ResourceMPCOutput, 0)
	return &MPCOutputs{
		db:      db,
		metrics: collector,
		cache:   cache,
	}, nil
}

func (o *MPCOutputs) Store(sessionID mpc.SessionIdentifier, output []byte) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	err := operation.InsertMPCOutput(sessionID, output)(o.db)
	if err != nil {
		return fmt.Errorf("could not store output of session %v: %w", sessionID, err)
	}
	o.add(sessionID, output)
	return nil
}

func (o *MPCOutputs) ByID(sessionID mpc.SessionIdentifier) ([]byte, error) {
	output, cached := o.cache.Get(sessionID)
	if cached {
		o.metrics.CacheHit(metrics.ResourceMPCOutput)
		return output, nil
	}

	err := operation.RetrieveMPCOutput(sessionID, &output)(o.db)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			o.metrics.CacheNotFound(metrics.ResourceMPCOutput)
		}
		return nil, fmt.Errorf("could not retrieve output of session %v: %w", sessionID, err)
	}
	o.metrics.CacheMiss(metrics.ResourceMPCOutput)
	o.add(sessionID, output)
	return output, nil
}

func (o *MPCOutputs) Exists(sessionID mpc.SessionIdentifier) (bool, error) {
	if o.cache.Contains(sessionID) {
		return true, nil
	}
	var found bool
	err := operation.CheckMPCOutput(sessionID, &found)(o.db)
	if err != nil {
		return false, fmt.Errorf("could not check output of session %v: %w", sessionID, err)
	}
	return found, nil
}

// RemoveByID deletes the stored session output. Removing an unknown session
// is a no-op.
func (o *MPCOutputs) RemoveByID(sessionID mpc.SessionIdentifier) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.cache.Remove(sessionID)
	return operation.RemoveMPCOutput(sessionID)(o.db)
}

func (o *MPCOutputs) add(sessionID mpc.SessionIdentifier, output []byte) {
	evicted := o.cache.Add(sessionID, output)
	if !evicted {
		o.metrics.CacheEntries(metrics.ResourceMPCOutput, uint(o.cache.Len()))
	}
}

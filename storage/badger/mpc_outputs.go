package badger

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v2"

	"github.com/dwallet-labs/dwallet-network-sub008/model/mpc"
	"github.com/dwallet-labs/dwallet-network-sub008/module"
	"github.com/dwallet-labs/dwallet-network-sub008/module/metrics"
	"github.com/dwallet-labs/dwallet-network-sub008/storage"
	"github.com/dwallet-labs/dwallet-network-sub008/storage/badger/operation"
)

// MPCOutputs implements storage.MPCOutputs on badger.
type MPCOutputs struct {
	db    *badger.DB
	cache *Cache[mpc.SessionIdentifier, []byte]
}

var _ storage.MPCOutputs = (*MPCOutputs)(nil)

func NewMPCOutputs(collector module.CacheMetrics, db *badger.DB) *MPCOutputs {

	store := func(sessionID mpc.SessionIdentifier, output []byte) func(*badger.Txn) error {
		return operation.InsertMPCOutput(sessionID, output)
	}

	retrieve := func(sessionID mpc.SessionIdentifier) func(*badger.Txn) ([]byte, error) {
		return func(tx *badger.Txn) ([]byte, error) {
			var output []byte
			err := operation.RetrieveMPCOutput(sessionID, &output)(tx)
			return output, err
		}
	}

	return &MPCOutputs{
		db: db,
		cache: newCache[mpc.SessionIdentifier, []byte](collector, metrics.ResourceMPCOutput,
			withLimit[mpc.SessionIdentifier, []byte](1000),
			withStore(store),
			withRetrieve(retrieve),
		),
	}
}

// Store persists the session output. Expected errors:
//   - storage.ErrDataMismatch if a different output is stored for the session.
func (o *MPCOutputs) Store(sessionID mpc.SessionIdentifier, output []byte) error {
	err := o.cache.Put(o.db, sessionID, output)
	if err != nil {
		return fmt.Errorf("could not store output of session %v: %w", sessionID, err)
	}
	return nil
}

// ByID returns the stored session output. Expected errors:
//   - storage.ErrNotFound if no output is stored for the session.
func (o *MPCOutputs) ByID(sessionID mpc.SessionIdentifier) ([]byte, error) {
	tx := o.db.NewTransaction(false)
	defer tx.Discard()
	return o.cache.Get(sessionID)(tx)
}

func (o *MPCOutputs) Exists(sessionID mpc.SessionIdentifier) (bool, error) {
	if o.cache.IsCached(sessionID) {
		return true, nil
	}
	var found bool
	err := o.db.View(operation.CheckMPCOutput(sessionID, &found))
	if err != nil {
		return false, fmt.Errorf("could not check output of session %v: %w", sessionID, err)
	}
	return found, nil
}

// RemoveByID deletes the stored session output. Removing an unknown session
// is a no-op.
func (o *MPCOutputs) RemoveByID(sessionID mpc.SessionIdentifier) error {
	o.cache.Remove(sessionID)
	err := o.db.Update(operation.RemoveMPCOutput(sessionID))
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("could not remove output of session %v: %w", sessionID, err)
	}
	return nil
}

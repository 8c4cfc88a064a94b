package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/dgraph-io/badger/v2"

	"github.com/dwallet-labs/dwallet-network-sub008/module"
	"github.com/dwallet-labs/dwallet-network-sub008/storage"
	bstorage "github.com/dwallet-labs/dwallet-network-sub008/storage/badger"
	pstorage "github.com/dwallet-labs/dwallet-network-sub008/storage/pebble"
)

func nodeDir(dataDir string, index int) string {
	return filepath.Join(dataDir, fmt.Sprintf("node-%d", index))
}

// openOutputs opens the output database of the committee member with the
// given index. The returned function closes the database.
func openOutputs(config Config, index int, collector module.CacheMetrics) (storage.MPCOutputs, func() error, error) {
	dir := nodeDir(config.DataDir, index)
	switch config.DBBackend {
	case backendBadger:
		opts := badger.DefaultOptions(dir).WithLogger(nil)
		db, err := badger.Open(opts)
		if err != nil {
			return nil, nil, fmt.Errorf("could not open badger db at %s: %w", dir, err)
		}
		return bstorage.NewMPCOutputs(collector, db), db.Close, nil
	case backendPebble:
		db, err := pstorage.OpenDB(dir)
		if err != nil {
			return nil, nil, fmt.Errorf("could not open pebble db at %s: %w", dir, err)
		}
		outputs, err := pstorage.NewMPCOutputs(collector, db, config.Engine.OutputCacheSize)
		if err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("could not create pebble output store: %w", err)
		}
		return outputs, db.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown db backend %q", config.DBBackend)
	}
}

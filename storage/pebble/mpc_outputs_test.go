package pebble_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/cockroachdb/pebble"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwallet-labs/dwallet-network-sub008/module/metrics"
	"github.com/dwallet-labs/dwallet-network-sub008/storage"
	pstorage "github.com/dwallet-labs/dwallet-network-sub008/storage/pebble"
	"github.com/dwallet-labs/dwallet-network-sub008/utils/unittest"
)

func TestMPCOutputs_StoreAndRetrieve(t *testing.T) {
	unittest.RunWithPebbleDB(t, func(db *pebble.DB) {
		store, err := pstorage.NewMPCOutputs(metrics.NewNoopCollector(), db, 10)
		require.NoError(t, err)
		sessionID := unittest.SessionIDFixture()
		output := unittest.RandomBytes(64)

		_, err = store.ByID(sessionID)
		assert.True(t, errors.Is(err, storage.ErrNotFound))

		require.NoError(t, store.Store(sessionID, output))
		require.NoError(t, store.Store(sessionID, output))

		err = store.Store(sessionID, unittest.RandomBytes(64))
		assert.True(t, errors.Is(err, storage.ErrDataMismatch))

		actual, err := store.ByID(sessionID)
		require.NoError(t, err)
		assert.Equal(t, output, actual)

		found, err := store.Exists(sessionID)
		require.NoError(t, err)
		assert.True(t, found)
	})
}

// a cache smaller than the stored set falls back to the database
func TestMPCOutputs_Eviction(t *testing.T) {
	unittest.RunWithPebbleDB(t, func(db *pebble.DB) {
		store, err := pstorage.NewMPCOutputs(metrics.NewNoopCollector(), db, 2)
		require.NoError(t, err)

		sessionIDs := unittest.SessionIDListFixture(5)
		outputs := make([][]byte, len(sessionIDs))
		for i, sessionID := range sessionIDs {
			outputs[i] = unittest.RandomBytes(32)
			require.NoError(t, store.Store(sessionID, outputs[i]))
		}
		for i, sessionID := range sessionIDs {
			actual, err := store.ByID(sessionID)
			require.NoError(t, err)
			assert.Equal(t, outputs[i], actual)
		}
	})
}

// concurrent writers of the same output all succeed; exactly one of two
// conflicting outputs wins
func TestMPCOutputs_ConcurrentStore(t *testing.T) {
	unittest.RunWithPebbleDB(t, func(db *pebble.DB) {
		store, err := pstorage.NewMPCOutputs(metrics.NewNoopCollector(), db, 10)
		require.NoError(t, err)
		sessionID := unittest.SessionIDFixture()
		first := unittest.RandomBytes(32)
		second := unittest.RandomBytes(32)

		var wg sync.WaitGroup
		errs := make([]error, 2)
		for i, output := range [][]byte{first, second} {
			wg.Add(1)
			go func(i int, output []byte) {
				defer wg.Done()
				errs[i] = store.Store(sessionID, output)
			}(i, output)
		}
		wg.Wait()

		failed := 0
		for _, err := range errs {
			if err != nil {
				require.True(t, errors.Is(err, storage.ErrDataMismatch))
				failed++
			}
		}
		assert.Equal(t, 1, failed)
	})
}

func TestOpenDB(t *testing.T) {
	unittest.RunWithTempDir(t, func(dir string) {
		db, err := pstorage.OpenDB(dir)
		require.NoError(t, err)

		store, err := pstorage.NewMPCOutputs(metrics.NewNoopCollector(), db, 10)
		require.NoError(t, err)
		sessionID := unittest.SessionIDFixture()
		require.NoError(t, store.Store(sessionID, []byte("output")))
		require.NoError(t, db.Close())

		db, err = pstorage.OpenDB(dir)
		require.NoError(t, err)
		defer db.Close()

		store, err = pstorage.NewMPCOutputs(metrics.NewNoopCollector(), db, 10)
		require.NoError(t, err)
		actual, err := store.ByID(sessionID)
		require.NoError(t, err)
		assert.Equal(t, []byte("output"), actual)
	})
}

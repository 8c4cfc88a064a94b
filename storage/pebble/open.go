package pebble

import (
	"fmt"

	"github.com/cockroachdb/pebble"
)

// DefaultPebbleOptions returns the options used for the output database.
func DefaultPebbleOptions(cache *pebble.Cache) *pebble.Options {
	return &pebble.Options{
		Cache:                    cache,
		FormatMajorVersion:       pebble.FormatNewest,
		MaxConcurrentCompactions: func() int { return 2 },
	}
}

// OpenDB opens, and creates if needed, the pebble database in dir.
func OpenDB(dir string) (*pebble.DB, error) {
	cache := pebble.NewCache(1 << 20)
	defer cache.Unref()
	db, err := pebble.Open(dir, DefaultPebbleOptions(cache))
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	return db, nil
}

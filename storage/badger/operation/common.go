package operation

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v2"

	"github.com/dwallet-labs/dwallet-network-sub008/module/irrecoverable"
	"github.com/dwallet-labs/dwallet-network-sub008/storage"
)

// insert encodes the entity and stores it under the key. It returns
// storage.ErrAlreadyExists if the key is taken.
func insert(key []byte, entity interface{}) func(*badger.Txn) error {
	return func(tx *badger.Txn) error {
		_, err := tx.Get(key)
		if err == nil {
			return storage.ErrAlreadyExists
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return irrecoverable.NewExceptionf("could not check key: %w", err)
		}

		val, err := encodeEntity(entity)
		if err != nil {
			return err
		}

		err = tx.Set(key, val)
		if err != nil {
			return irrecoverable.NewExceptionf("could not store data: %w", err)
		}
		return nil
	}
}

// insertIdempotent stores the entity under the key unless an identical
// entity is stored already. An existing different entity results in
// storage.ErrDataMismatch.
func insertIdempotent(key []byte, entity interface{}) func(*badger.Txn) error {
	return func(tx *badger.Txn) error {
		val, err := encodeEntity(entity)
		if err != nil {
			return err
		}

		item, err := tx.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			err = tx.Set(key, val)
			if err != nil {
				return irrecoverable.NewExceptionf("could not store data: %w", err)
			}
			return nil
		}
		if err != nil {
			return irrecoverable.NewExceptionf("could not check key: %w", err)
		}

		existing, err := item.ValueCopy(nil)
		if err != nil {
			return irrecoverable.NewExceptionf("could not load data: %w", err)
		}
		if !bytes.Equal(existing, val) {
			return fmt.Errorf("key %x: %w", key, storage.ErrDataMismatch)
		}
		return nil
	}
}

// retrieve decodes the value under the key into entity, which must be a
// pointer. It returns storage.ErrNotFound if the key is absent.
func retrieve(key []byte, entity interface{}) func(*badger.Txn) error {
	return func(tx *badger.Txn) error {
		item, err := tx.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return storage.ErrNotFound
		}
		if err != nil {
			return irrecoverable.NewExceptionf("could not load data: %w", err)
		}

		err = item.Value(func(val []byte) error {
			return decodeValue(val, entity)
		})
		if err != nil {
			return irrecoverable.NewExceptionf("could not decode entity: %w", err)
		}
		return nil
	}
}

// exists sets keyExists to whether the key is present.
func exists(key []byte, keyExists *bool) func(*badger.Txn) error {
	return func(tx *badger.Txn) error {
		_, err := tx.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			*keyExists = false
			return nil
		}
		if err != nil {
			return irrecoverable.NewExceptionf("could not check existence: %w", err)
		}
		*keyExists = true
		return nil
	}
}

// remove deletes the key. Removing an absent key is a no-op.
func remove(key []byte) func(*badger.Txn) error {
	return func(tx *badger.Txn) error {
		err := tx.Delete(key)
		if err != nil {
			return irrecoverable.NewExceptionf("could not delete item: %w", err)
		}
		return nil
	}
}

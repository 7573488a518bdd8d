// Package idempotency remembers Idempotency-Key headers of payment
// submissions so a retried or double-clicked submission returns the payment
// created the first time instead of creating another one.
package idempotency

import (
	"errors"
	"fmt"
	"time"

	bolt "github.com/boltdb/bolt"
)

const bucketName = "payment_keys"

var (
	ErrKeyEmpty    = errors.New("idempotency key is empty")
	ErrKeyNotFound = errors.New("idempotency key not found")
)

// Registry maps a (member, key) pair to the id of the resource it created.
type Registry struct {
	db *bolt.DB
}

// Open opens (or creates) the registry file at path.
func Open(path string) (*Registry, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("bolt.Open: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))

		return err //nolint:wrapcheck
	})
	if err != nil {
		db.Close()

		return nil, fmt.Errorf("db.Update: %w", err)
	}

	return &Registry{db: db}, nil
}

func (r *Registry) Close() error {
	if err := r.db.Close(); err != nil {
		return fmt.Errorf("db.Close: %w", err)
	}

	return nil
}

// Lookup returns the resource id stored for the key.
func (r *Registry) Lookup(memberID, key string) (string, error) {
	if key == "" {
		return "", ErrKeyEmpty
	}

	var id string

	err := r.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(bucketName)).Get(compositeKey(memberID, key))
		if v == nil {
			return ErrKeyNotFound
		}

		id = string(v)

		return nil
	})
	if err != nil {
		return "", err //nolint:wrapcheck
	}

	return id, nil
}

// Remember stores id under the key. An existing entry is kept and its id is
// returned, so concurrent submissions with the same key agree on one id.
func (r *Registry) Remember(memberID, key, id string) (string, error) {
	if key == "" {
		return "", ErrKeyEmpty
	}

	stored := id

	err := r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		k := compositeKey(memberID, key)

		if v := b.Get(k); v != nil {
			stored = string(v)

			return nil
		}

		return b.Put(k, []byte(id))
	})
	if err != nil {
		return "", fmt.Errorf("db.Update: %w", err)
	}

	return stored, nil
}

// Forget removes the key if it still maps to id, releasing a key whose
// resource could not be created.
func (r *Registry) Forget(memberID, key, id string) error {
	if key == "" {
		return ErrKeyEmpty
	}

	err := r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		k := compositeKey(memberID, key)

		if v := b.Get(k); v == nil || string(v) != id {
			return nil
		}

		return b.Delete(k)
	})
	if err != nil {
		return fmt.Errorf("db.Update: %w", err)
	}

	return nil
}

// compositeKey scopes keys per member; a NUL cannot appear in either part
// coming from HTTP headers or user ids.
func compositeKey(memberID, key string) []byte {
	return []byte(memberID + "\x00" + key)
}

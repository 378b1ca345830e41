// Package badgerstore is a Badger-backed ratelimit.Store, used when
// bucket state must survive a process restart or be shared by multiple
// FileVault instances against a node-local disk.
package badgerstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/Gaganb-30/cloud-store/pkg/ratelimit"
)

// Store is a ratelimit.Store backed by an embedded Badger database.
// Bucket state is written with a TTL slightly longer than the window,
// so an idle bucket is reclaimed by Badger's own GC without a separate
// eviction sweep.
type Store struct {
	db *badger.DB
}

// Open opens (creating if absent) a Badger database at path for bucket
// storage.
func Open(path string) (*Store, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

type bucketState struct {
	Tokens     float64   `json:"tokens"`
	LastRefill time.Time `json:"lastRefill"`
}

// Allow implements ratelimit.Store with the same lazy-refill token
// bucket algorithm as the in-memory store, persisted per key.
func (s *Store) Allow(ctx context.Context, key string, limit int, window time.Duration) (ratelimit.Decision, error) {
	if limit <= 0 || window <= 0 {
		return ratelimit.Decision{Allowed: true}, nil
	}

	var decision ratelimit.Decision
	now := time.Now()
	refillRate := float64(limit) / window.Seconds()

	err := s.db.Update(func(txn *badger.Txn) error {
		state := bucketState{Tokens: float64(limit), LastRefill: now}

		item, err := txn.Get([]byte(key))
		switch {
		case err == nil:
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &state)
			}); err != nil {
				return err
			}
		case errors.Is(err, badger.ErrKeyNotFound):
			// first request for this key, seed a full bucket
		default:
			return err
		}

		elapsed := now.Sub(state.LastRefill)
		state.Tokens += elapsed.Seconds() * refillRate
		if state.Tokens > float64(limit) {
			state.Tokens = float64(limit)
		}
		state.LastRefill = now

		if state.Tokens >= 1 {
			state.Tokens--
			decision = ratelimit.Decision{Allowed: true}
		} else {
			deficit := 1 - state.Tokens
			retryAfter := time.Duration(deficit/refillRate*float64(time.Second)) + time.Millisecond
			decision = ratelimit.Decision{Allowed: false, RetryAfter: retryAfter}
		}

		encoded, err := json.Marshal(state)
		if err != nil {
			return err
		}
		return txn.SetEntry(badger.NewEntry([]byte(key), encoded).WithTTL(2 * window))
	})

	return decision, err
}

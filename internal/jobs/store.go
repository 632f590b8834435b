// FriendRec - Friend Recommendation Job Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/friendrec

package jobs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/friendrec/internal/metrics"
)

// ArtifactStore holds job inputs and outputs as opaque byte blobs.
// Implementations must be safe for concurrent use.
type ArtifactStore interface {
	// Put stores data under key, replacing any existing value.
	Put(ctx context.Context, key string, data []byte) error

	// Get returns the value for key, or ErrArtifactNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Backend names the implementation for logs and metrics.
	Backend() string

	// Close releases resources held by the store.
	Close() error
}

// StoreType selects an ArtifactStore backend.
type StoreType string

const (
	// StoreMemory keeps artifacts in process memory (default).
	StoreMemory StoreType = "memory"

	// StoreBadger keeps artifacts in a BadgerDB directory.
	StoreBadger StoreType = "badger"
)

// Artifact keys. Everything a job writes lives under its own prefix.
const artifactKeyPrefix = "artifact:"

func jobPrefix(id string) string      { return artifactKeyPrefix + id + ":" }
func inputKey(id, name string) string { return jobPrefix(id) + "input:" + name }
func resultKey(id string) string      { return jobPrefix(id) + "result" }

func ensureKey(key string) error {
	if !strings.HasPrefix(key, artifactKeyPrefix) || len(key) == len(artifactKeyPrefix) {
		return fmt.Errorf("invalid artifact key %q", key)
	}
	return nil
}

// OpenStore creates the ArtifactStore for storeType. For StoreBadger it
// opens (or creates) the database at path and drops artifacts left by a
// previous process, whose job records no longer exist. ttl, if positive,
// is applied to Badger entries as a backstop for retention.
func OpenStore(storeType StoreType, path string, ttl time.Duration) (ArtifactStore, error) {
	switch storeType {
	case StoreMemory, "":
		return NewMemoryStore(), nil
	case StoreBadger:
		opts := badger.DefaultOptions(path)
		opts.Logger = nil // Suppress BadgerDB logs

		db, err := badger.Open(opts)
		if err != nil {
			return nil, fmt.Errorf("open badger db for artifacts: %w", err)
		}
		if err := db.DropPrefix([]byte(artifactKeyPrefix)); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("drop stale artifacts: %w", err)
		}
		s := NewBadgerStore(db, ttl)
		s.owned = true
		return s, nil
	default:
		return nil, fmt.Errorf("unknown artifact store %q", storeType)
	}
}

// MemoryStore is an in-memory ArtifactStore. Values are copied on the
// way in and out.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

// Put implements ArtifactStore.
func (s *MemoryStore) Put(_ context.Context, key string, data []byte) error {
	if err := ensureKey(key); err != nil {
		return err
	}
	cp := make([]byte, len(data))
	copy(cp, data)

	s.mu.Lock()
	s.data[key] = cp
	s.mu.Unlock()
	return nil
}

// Get implements ArtifactStore.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	v, ok := s.data[key]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrArtifactNotFound
	}
	cp := make([]byte, len(v))
	copy(cp, v)
	return cp, nil
}

// Delete implements ArtifactStore.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.data, key)
	s.mu.Unlock()
	return nil
}

// Len returns the number of stored artifacts.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Backend implements ArtifactStore.
func (s *MemoryStore) Backend() string { return string(StoreMemory) }

// Close implements ArtifactStore.
func (s *MemoryStore) Close() error { return nil }

// BadgerStore is a BadgerDB-backed ArtifactStore.
type BadgerStore struct {
	db    *badger.DB
	ttl   time.Duration
	owned bool
}

// NewBadgerStore wraps an open database. The caller keeps ownership of db.
func NewBadgerStore(db *badger.DB, ttl time.Duration) *BadgerStore {
	return &BadgerStore{db: db, ttl: ttl}
}

// Put implements ArtifactStore.
func (s *BadgerStore) Put(_ context.Context, key string, data []byte) error {
	if err := ensureKey(key); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(key), data)
		if s.ttl > 0 {
			e = e.WithTTL(s.ttl)
		}
		return txn.SetEntry(e)
	})
}

// Get implements ArtifactStore.
func (s *BadgerStore) Get(_ context.Context, key string) ([]byte, error) {
	var out []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrArtifactNotFound
		}
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrArtifactNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get artifact: %w", err)
	}
	return out, nil
}

// Delete implements ArtifactStore.
func (s *BadgerStore) Delete(_ context.Context, key string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
}

// Backend implements ArtifactStore.
func (s *BadgerStore) Backend() string { return string(StoreBadger) }

// Close closes the database if the store opened it.
func (s *BadgerStore) Close() error {
	if s.owned {
		return s.db.Close()
	}
	return nil
}

// instrumentedStore records metrics for every operation.
type instrumentedStore struct {
	ArtifactStore
}

func (s instrumentedStore) Put(ctx context.Context, key string, data []byte) error {
	err := s.ArtifactStore.Put(ctx, key, data)
	if err != nil {
		metrics.RecordArtifactOp(s.Backend(), "put", err)
		return err
	}
	metrics.RecordArtifactWrite(s.Backend(), len(data))
	return nil
}

func (s instrumentedStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.ArtifactStore.Get(ctx, key)
	metrics.RecordArtifactOp(s.Backend(), "get", err)
	return data, err
}

func (s instrumentedStore) Delete(ctx context.Context, key string) error {
	err := s.ArtifactStore.Delete(ctx, key)
	metrics.RecordArtifactOp(s.Backend(), "delete", err)
	return err
}

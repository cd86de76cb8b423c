// Package store implements the local movie store and favorites index on BadgerDB.
package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dgraph-io/badger/v4"

	"github.com/libresine/libresine-server/internal/domain"
)

// EventEmitter is the interface for emitting change events.
// Store uses this to broadcast mutations without depending on the SSE
// implementation; clients re-pull the aggregated catalog on notification.
type EventEmitter interface {
	Emit(event any)
}

// NoopEmitter is a no-op implementation of EventEmitter for testing.
type NoopEmitter struct{}

// Emit implements EventEmitter.Emit as a no-op.
func (NoopEmitter) Emit(_ any) {}

// NewNoopEmitter creates a new no-op emitter for testing.
func NewNoopEmitter() EventEmitter {
	return NoopEmitter{}
}

// SearchIndexer is the interface for updating the full-text search index.
// Store uses this to keep search in sync without depending on the bleve
// implementation.
type SearchIndexer interface {
	IndexMovie(ctx context.Context, movie *domain.Movie) error
	DeleteMovie(ctx context.Context, movieID int64) error
}

// NoopSearchIndexer is a no-op implementation for testing.
type NoopSearchIndexer struct{}

// IndexMovie is a no-op.
func (NoopSearchIndexer) IndexMovie(context.Context, *domain.Movie) error { return nil }

// DeleteMovie is a no-op.
func (NoopSearchIndexer) DeleteMovie(context.Context, int64) error { return nil }

// NewNoopSearchIndexer creates a new no-op search indexer for testing.
func NewNoopSearchIndexer() SearchIndexer {
	return NoopSearchIndexer{}
}

// Store wraps a Badger database instance holding local movies and favorites.
type Store struct {
	db     *badger.DB
	logger *slog.Logger

	eventEmitter EventEmitter

	// Search indexer for keeping search in sync with store changes.
	// Set via SetSearchIndexer after store creation to avoid circular dependencies.
	searchIndexer SearchIndexer

	movieSeq    *badger.Sequence
	favoriteSeq *badger.Sequence

	// Legacy favorites are migrated at most once per process, before the
	// first favorites read.
	migrateOnce sync.Once
	migrateErr  error
}

// New creates a new Store instance with the given database path and event emitter.
// The emitter is required and used to broadcast store changes.
func New(path string, logger *slog.Logger, emitter EventEmitter) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Ensure writes are synced to disk to prevent corruption on crashes
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	movieSeq, err := db.GetSequence([]byte(movieSeqKey), 64)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open movie sequence: %w", err)
	}

	favoriteSeq, err := db.GetSequence([]byte(favoriteSeqKey), 64)
	if err != nil {
		movieSeq.Release()
		db.Close()
		return nil, fmt.Errorf("failed to open favorite sequence: %w", err)
	}

	store := &Store{
		db:            db,
		logger:        logger,
		eventEmitter:  emitter,
		searchIndexer: NewNoopSearchIndexer(),
		movieSeq:      movieSeq,
		favoriteSeq:   favoriteSeq,
	}

	if logger != nil {
		logger.Info("Badger database opened successfully", "path", path)
	}

	return store, nil
}

// Close gracefully closes the database connection.
func (s *Store) Close() error {
	if s.logger != nil {
		s.logger.Info("Closing database connection")
	}
	if err := s.movieSeq.Release(); err != nil && s.logger != nil {
		s.logger.Warn("failed to release movie sequence", "error", err)
	}
	if err := s.favoriteSeq.Release(); err != nil && s.logger != nil {
		s.logger.Warn("failed to release favorite sequence", "error", err)
	}
	return s.db.Close()
}

// SetSearchIndexer sets the search indexer for keeping search in sync.
// This is set after store creation to avoid circular dependencies
// (store needs to exist before the search index can be created).
func (s *Store) SetSearchIndexer(indexer SearchIndexer) {
	s.searchIndexer = indexer
}

// emit broadcasts a change event when an emitter is configured.
func (s *Store) emit(event any) {
	if s.eventEmitter != nil {
		s.eventEmitter.Emit(event)
	}
}

// Helper methods for database operations.

// get retrieves a value by key.
func (s *Store) get(key []byte, dest any) error {
	return s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, dest)
		})
	})
}

// set stores a value by key.
func (s *Store) set(key []byte, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
}

// exists checks if a key exists.
func (s *Store) exists(key []byte) (bool, error) {
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		return err
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/libresine/libresine-server/internal/domain"
	"github.com/libresine/libresine-server/internal/events"
)

const (
	favoritePrefix    = "favorite:"
	legacyFavoriteKey = "legacy:favorites"
)

// favoriteKey builds the storage key for a composite movie key such as
// "local-12". The storage key doubles as the uniqueness constraint: one
// favorite per movie.
func favoriteKey(movieID string) []byte {
	return fmt.Appendf(nil, "%s%s", favoritePrefix, movieID)
}

// ToggleFavorite flips the favorite state for the given composite movie
// key and returns the new state.
func (s *Store) ToggleFavorite(ctx context.Context, movieID string) (bool, error) {
	if err := s.ensureFavoritesMigrated(ctx); err != nil {
		return false, err
	}

	key := favoriteKey(movieID)
	var favorited bool

	err := s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		switch {
		case err == nil:
			favorited = false
			return txn.Delete(key)
		case errors.Is(err, badger.ErrKeyNotFound):
			favorited = true
			return s.writeFavorite(txn, movieID, time.Now().UTC())
		default:
			return err
		}
	})
	if err != nil {
		return false, fmt.Errorf("failed to toggle favorite: %w", err)
	}

	if favorited {
		s.emit(events.New(events.EventFavoriteAdded, map[string]string{"movieId": movieID}))
	} else {
		s.emit(events.New(events.EventFavoriteRemoved, map[string]string{"movieId": movieID}))
	}

	return favorited, nil
}

// IsFavorite reports whether the given composite movie key is favorited.
func (s *Store) IsFavorite(ctx context.Context, movieID string) (bool, error) {
	if err := s.ensureFavoritesMigrated(ctx); err != nil {
		return false, err
	}
	return s.exists(favoriteKey(movieID))
}

// ListFavoriteKeys returns the composite movie keys of all favorites.
func (s *Store) ListFavoriteKeys(ctx context.Context) ([]string, error) {
	if err := s.ensureFavoritesMigrated(ctx); err != nil {
		return nil, err
	}

	keys := []string{}
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(favoritePrefix)
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, string(it.Item().Key()[len(favoritePrefix):]))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}

	return keys, nil
}

// ensureFavoritesMigrated runs the legacy migration once per process,
// before the first favorites access.
func (s *Store) ensureFavoritesMigrated(ctx context.Context) error {
	s.migrateOnce.Do(func() {
		s.migrateErr = s.migrateLegacyFavorites(ctx)
	})
	return s.migrateErr
}

// migrateLegacyFavorites moves the old flat favorites list, stored as a
// single JSON array of composite keys, into per-movie entries. The legacy
// record is deleted afterwards so the migration runs at most once per
// database.
func (s *Store) migrateLegacyFavorites(_ context.Context) error {
	var legacy []string
	err := s.get([]byte(legacyFavoriteKey), &legacy)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read legacy favorites: %w", err)
	}

	now := time.Now().UTC()
	err = s.db.Update(func(txn *badger.Txn) error {
		for _, movieID := range legacy {
			if movieID == "" {
				continue
			}
			_, err := txn.Get(favoriteKey(movieID))
			if err == nil {
				continue // already migrated
			}
			if !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
			if err := s.writeFavorite(txn, movieID, now); err != nil {
				return err
			}
		}
		return txn.Delete([]byte(legacyFavoriteKey))
	})
	if err != nil {
		return fmt.Errorf("failed to migrate legacy favorites: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("Migrated legacy favorites", "count", len(legacy))
	}
	return nil
}

func (s *Store) writeFavorite(txn *badger.Txn, movieID string, addedAt time.Time) error {
	n, err := s.favoriteSeq.Next()
	if err != nil {
		return fmt.Errorf("failed to allocate favorite id: %w", err)
	}

	favorite := &domain.Favorite{
		ID:      int64(n) + 1,
		MovieID: movieID,
		AddedAt: addedAt,
	}

	data, err := json.Marshal(favorite)
	if err != nil {
		return fmt.Errorf("failed to marshal favorite: %w", err)
	}
	return txn.Set(favoriteKey(movieID), data)
}

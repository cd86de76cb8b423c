package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/libresine/libresine-server/internal/domain"
	"github.com/libresine/libresine-server/internal/events"
)

const (
	moviePrefix    = "movie:"
	movieSeqKey    = "seq:movie"
	favoriteSeqKey = "seq:favorite"
)

// movieKey builds the storage key for a movie id. Ids are zero padded so
// Badger's lexicographic iteration order matches insertion order.
func movieKey(id int64) []byte {
	return fmt.Appendf(nil, "%s%012d", moviePrefix, id)
}

// AddMovie stores a new local movie and returns it with its assigned id.
// Duplicate detection is the caller's responsibility; the store accepts
// whatever it is given.
func (s *Store) AddMovie(ctx context.Context, create *domain.CreateMovie) (*domain.Movie, error) {
	id, err := s.nextMovieID()
	if err != nil {
		return nil, fmt.Errorf("failed to allocate movie id: %w", err)
	}

	now := time.Now().UTC()
	movie := &domain.Movie{
		ID:          id,
		Name:        create.Name,
		MovieURL:    create.MovieURL,
		ImageURL:    create.ImageURL,
		Description: create.Description,
		Rating:      create.Rating,
		Genres:      create.Genres,
		Director:    create.Director,
		Actors:      create.Actors,
		StorageType: domain.StorageLocal,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if movie.Genres == nil {
		movie.Genres = []string{}
	}
	if movie.Actors == nil {
		movie.Actors = []string{}
	}

	if err := s.set(movieKey(id), movie); err != nil {
		return nil, fmt.Errorf("failed to store movie: %w", err)
	}

	s.indexMovie(ctx, movie)
	s.emit(events.New(events.EventMovieCreated, movie))

	return movie, nil
}

// GetMovie retrieves a local movie by id.
func (s *Store) GetMovie(_ context.Context, id int64) (*domain.Movie, error) {
	var movie domain.Movie
	err := s.get(movieKey(id), &movie)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrMovieNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get movie: %w", err)
	}
	return &movie, nil
}

// UpdateMovie applies a partial update to a stored movie. Absent fields
// keep their current values. Storage type and created_at never change.
func (s *Store) UpdateMovie(ctx context.Context, id int64, update *domain.UpdateMovie) (*domain.Movie, error) {
	movie, err := s.GetMovie(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		movie.Name = *update.Name
	}
	if update.MovieURL != nil {
		movie.MovieURL = *update.MovieURL
	}
	if update.ImageURL != nil {
		movie.ImageURL = *update.ImageURL
	}
	if update.Description != nil {
		movie.Description = *update.Description
	}
	if update.Rating != nil {
		movie.Rating = *update.Rating
	}
	if update.Genres != nil {
		movie.Genres = *update.Genres
	}
	if update.Director != nil {
		movie.Director = *update.Director
	}
	if update.Actors != nil {
		movie.Actors = *update.Actors
	}
	movie.UpdatedAt = time.Now().UTC()

	if err := s.set(movieKey(id), movie); err != nil {
		return nil, fmt.Errorf("failed to update movie: %w", err)
	}

	s.indexMovie(ctx, movie)
	s.emit(events.New(events.EventMovieUpdated, movie))

	return movie, nil
}

// DeleteMovie removes a local movie and its favorite entry. Deleting a
// movie that does not exist is not an error.
func (s *Store) DeleteMovie(ctx context.Context, id int64) error {
	key := movieKey(id)

	found, err := s.exists(key)
	if err != nil {
		return fmt.Errorf("failed to check movie: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete(key); err != nil {
			return err
		}
		// Orphaned favorites would surface as dead entries in the
		// favorites index, so remove the pairing here.
		return txn.Delete(favoriteKey(domain.FavoriteKey(domain.StorageLocal, id)))
	})
	if err != nil {
		return fmt.Errorf("failed to delete movie: %w", err)
	}

	if found {
		s.deindexMovie(ctx, id)
		s.emit(events.New(events.EventMovieDeleted, map[string]int64{"id": id}))
	}

	return nil
}

// ListMovies returns all local movies in insertion order.
func (s *Store) ListMovies(_ context.Context) ([]*domain.Movie, error) {
	var movies []*domain.Movie

	err := s.db.View(func(txn *badger.Txn) error {
		return forEachMovie(txn, func(movie *domain.Movie) error {
			movies = append(movies, movie)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list movies: %w", err)
	}

	return movies, nil
}

// SearchMovies returns local movies whose name, description, director or
// any actor contains the query, case-insensitively. An empty query
// matches everything.
func (s *Store) SearchMovies(ctx context.Context, query string) ([]*domain.Movie, error) {
	movies, err := s.ListMovies(ctx)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(query) == "" {
		return movies, nil
	}

	matches := make([]*domain.Movie, 0, len(movies))
	for _, movie := range movies {
		if movie.MatchesSearch(query) {
			matches = append(matches, movie)
		}
	}
	return matches, nil
}

// MovieExists reports whether a stored movie matches the given name
// (case-insensitive) and movie URL (case-sensitive). A movie with id
// excludeID is ignored, so updates don't collide with themselves.
func (s *Store) MovieExists(_ context.Context, name, movieURL string, excludeID int64) (bool, error) {
	found := false

	err := s.db.View(func(txn *badger.Txn) error {
		return forEachMovie(txn, func(movie *domain.Movie) error {
			if movie.ID == excludeID {
				return nil
			}
			if strings.EqualFold(movie.Name, name) && movie.MovieURL == movieURL {
				found = true
				return errStopIteration
			}
			return nil
		})
	})
	if err != nil && !errors.Is(err, errStopIteration) {
		return false, fmt.Errorf("failed to check movie existence: %w", err)
	}

	return found, nil
}

// BulkImportMovies stores a batch of movies in a single transaction,
// skipping candidates that already exist by name and URL. It returns the
// stored movies, or ErrEmptyImport when every candidate was a duplicate.
func (s *Store) BulkImportMovies(ctx context.Context, candidates []*domain.CreateMovie) ([]*domain.Movie, error) {
	if len(candidates) == 0 {
		return nil, ErrEmptyImport
	}

	existing, err := s.ListMovies(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(existing))
	for _, movie := range existing {
		seen[dedupeKey(movie.Name, movie.MovieURL)] = struct{}{}
	}

	now := time.Now().UTC()
	var imported []*domain.Movie
	for _, create := range candidates {
		key := dedupeKey(create.Name, create.MovieURL)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		id, err := s.nextMovieID()
		if err != nil {
			return nil, fmt.Errorf("failed to allocate movie id: %w", err)
		}

		movie := &domain.Movie{
			ID:          id,
			Name:        create.Name,
			MovieURL:    create.MovieURL,
			ImageURL:    create.ImageURL,
			Description: create.Description,
			Rating:      create.Rating,
			Genres:      create.Genres,
			Director:    create.Director,
			Actors:      create.Actors,
			StorageType: domain.StorageLocal,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if movie.Genres == nil {
			movie.Genres = []string{}
		}
		if movie.Actors == nil {
			movie.Actors = []string{}
		}
		imported = append(imported, movie)
	}

	if len(imported) == 0 {
		return nil, ErrEmptyImport
	}

	// One transaction so a failed import never leaves a partial batch.
	err = s.db.Update(func(txn *badger.Txn) error {
		for _, movie := range imported {
			data, err := json.Marshal(movie)
			if err != nil {
				return fmt.Errorf("failed to marshal movie: %w", err)
			}
			if err := txn.Set(movieKey(movie.ID), data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to import movies: %w", err)
	}

	for _, movie := range imported {
		s.indexMovie(ctx, movie)
	}
	s.emit(events.New(events.EventMoviesImported, map[string]int{"count": len(imported)}))

	if s.logger != nil {
		s.logger.Info("Bulk import complete",
			"imported", len(imported),
			"skipped", len(candidates)-len(imported))
	}

	return imported, nil
}

// nextMovieID allocates the next movie id. Sequences start at zero, ids
// start at one.
func (s *Store) nextMovieID() (int64, error) {
	n, err := s.movieSeq.Next()
	if err != nil {
		return 0, err
	}
	return int64(n) + 1, nil
}

// indexMovie keeps the search index in sync. Index failures are logged
// and never fail the write.
func (s *Store) indexMovie(ctx context.Context, movie *domain.Movie) {
	if err := s.searchIndexer.IndexMovie(ctx, movie); err != nil && s.logger != nil {
		s.logger.Warn("failed to index movie", "id", movie.ID, "error", err)
	}
}

func (s *Store) deindexMovie(ctx context.Context, id int64) {
	if err := s.searchIndexer.DeleteMovie(ctx, id); err != nil && s.logger != nil {
		s.logger.Warn("failed to remove movie from index", "id", id, "error", err)
	}
}

// errStopIteration short-circuits a prefix scan once a match is found.
var errStopIteration = errors.New("stop iteration")

// forEachMovie iterates all stored movies inside the given transaction.
func forEachMovie(txn *badger.Txn, fn func(*domain.Movie) error) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(moviePrefix)

	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Rewind(); it.Valid(); it.Next() {
		var movie domain.Movie
		err := it.Item().Value(func(val []byte) error {
			return json.Unmarshal(val, &movie)
		})
		if err != nil {
			return fmt.Errorf("failed to decode movie: %w", err)
		}
		if err := fn(&movie); err != nil {
			return err
		}
	}
	return nil
}

// dedupeKey is the duplicate identity for imports: case-insensitive name
// plus case-sensitive URL. It must match the MovieExists predicate, or a
// batch could skip records the duplicate probe never warned about.
func dedupeKey(name, movieURL string) string {
	return strings.ToLower(name) + "\x00" + movieURL
}

package store

import "errors"

// Sentinel errors returned by store operations. Callers translate these
// with errors.Is; the internal/errors package maps them onto API codes.
var (
	// ErrMovieNotFound is returned when a movie lookup or update targets
	// an id with no stored record.
	ErrMovieNotFound = errors.New("movie not found")

	// ErrEmptyImport is returned when a bulk import has no movies left
	// after duplicates are skipped.
	ErrEmptyImport = errors.New("no new movies to import")
)

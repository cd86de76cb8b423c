// Package domain contains the core entities for the LibreSine movie catalog.
package domain

import (
	"fmt"
	"strings"
	"time"
)

// StorageType identifies which store owns a movie.
type StorageType string

const (
	// StorageLocal marks movies persisted in the local store.
	StorageLocal StorageType = "local"
	// StorageRemote marks movies served by the remote movie service.
	StorageRemote StorageType = "remote"
)

// Movie represents a catalog entry. The pair (StorageType, ID) is the only
// globally unique key; IDs alone repeat across sources.
type Movie struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	MovieURL    string      `json:"movie_url"`
	ImageURL    string      `json:"image_url"`
	Description string      `json:"description"`
	Rating      float64     `json:"rating"` // 1-10, 0 means unrated
	Genres      []string    `json:"genres"`
	Director    string      `json:"director"`
	Actors      []string    `json:"actors"`
	StorageType StorageType `json:"storage_type"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// Key returns the composite identifier used by the favorites index,
// e.g. "local-12" or "remote-7".
func (m *Movie) Key() string {
	return fmt.Sprintf("%s-%d", m.StorageType, m.ID)
}

// MatchesSearch reports whether the movie matches a case-insensitive
// substring query over name, description, director, and actors.
func (m *Movie) MatchesSearch(query string) bool {
	q := strings.ToLower(query)
	if strings.Contains(strings.ToLower(m.Name), q) ||
		strings.Contains(strings.ToLower(m.Description), q) ||
		strings.Contains(strings.ToLower(m.Director), q) {
		return true
	}
	for _, actor := range m.Actors {
		if strings.Contains(strings.ToLower(actor), q) {
			return true
		}
	}
	return false
}

// HasGenre reports whether the movie carries the given genre.
func (m *Movie) HasGenre(genre string) bool {
	for _, g := range m.Genres {
		if g == genre {
			return true
		}
	}
	return false
}

// CreateMovie carries the user-settable movie fields, used for local
// creation and for import candidates after normalization.
type CreateMovie struct {
	Name        string   `json:"name"`
	MovieURL    string   `json:"movie_url"`
	ImageURL    string   `json:"image_url"`
	Description string   `json:"description"`
	Rating      float64  `json:"rating"`
	Genres      []string `json:"genres"`
	Director    string   `json:"director"`
	Actors      []string `json:"actors"`
}

// UpdateMovie carries a partial update for a local movie. Nil fields are
// left untouched.
type UpdateMovie struct {
	Name        *string   `json:"name,omitempty"`
	MovieURL    *string   `json:"movie_url,omitempty"`
	ImageURL    *string   `json:"image_url,omitempty"`
	Description *string   `json:"description,omitempty"`
	Rating      *float64  `json:"rating,omitempty"`
	Genres      *[]string `json:"genres,omitempty"`
	Director    *string   `json:"director,omitempty"`
	Actors      *[]string `json:"actors,omitempty"`
}

// MovieList is a single page of movies from the remote service.
type MovieList struct {
	Movies []Movie `json:"movies"`
	Total  int64   `json:"total"`
	Page   int     `json:"page"`
	Limit  int     `json:"limit"`
}

// ExportMovie is a movie as it appears in an export document: the
// import-relevant fields only, no identity or storage tagging.
type ExportMovie struct {
	Name        string    `json:"name"`
	MovieURL    string    `json:"movie_url"`
	ImageURL    string    `json:"image_url"`
	Description string    `json:"description"`
	Rating      float64   `json:"rating"`
	Genres      []string  `json:"genres"`
	Director    string    `json:"director"`
	Actors      []string  `json:"actors"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ExportDocument is the serialized form of the local store.
type ExportDocument struct {
	ExportDate time.Time     `json:"exportDate"`
	Version    string        `json:"version"`
	Movies     []ExportMovie `json:"movies"`
}

// ExportVersion is the current export document version.
const ExportVersion = "1.0"

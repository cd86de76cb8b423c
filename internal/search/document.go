// Package search provides full-text movie search using Bleve. It powers the
// advanced search endpoint with fuzzy matching, genre facets, and rating
// range filters; the aggregator's plain substring search stays in the store.
package search

import (
	"strconv"

	"github.com/libresine/libresine-server/internal/domain"
)

// MovieDocument is the document shape stored in the Bleve index. Only
// local movies are indexed; remote movies are searched upstream.
type MovieDocument struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Director    string   `json:"director,omitempty"`
	Actors      []string `json:"actors,omitempty"`
	Genres      []string `json:"genres,omitempty"`
	Rating      float64  `json:"rating,omitempty"`
	CreatedAt   int64    `json:"created_at"` // Unix millis
	UpdatedAt   int64    `json:"updated_at"` // Unix millis
}

// ToMap converts the document to a map with lowercase field names so they
// match the index mapping. Bleve would otherwise index Go's capitalized
// struct field names.
func (d *MovieDocument) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"id":         d.ID,
		"name":       d.Name,
		"created_at": d.CreatedAt,
		"updated_at": d.UpdatedAt,
	}

	if d.Description != "" {
		m["description"] = d.Description
	}
	if d.Director != "" {
		m["director"] = d.Director
	}
	if len(d.Actors) > 0 {
		m["actors"] = d.Actors
	}
	if len(d.Genres) > 0 {
		m["genres"] = d.Genres
	}
	if d.Rating > 0 {
		m["rating"] = d.Rating
	}

	return m
}

// MovieToDocument converts a domain movie to its index document.
func MovieToDocument(movie *domain.Movie) *MovieDocument {
	return &MovieDocument{
		ID:          strconv.FormatInt(movie.ID, 10),
		Name:        movie.Name,
		Description: movie.Description,
		Director:    movie.Director,
		Actors:      movie.Actors,
		Genres:      movie.Genres,
		Rating:      movie.Rating,
		CreatedAt:   movie.CreatedAt.UnixMilli(),
		UpdatedAt:   movie.UpdatedAt.UnixMilli(),
	}
}

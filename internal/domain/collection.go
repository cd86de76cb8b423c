package domain

import "time"

// MovieCollection is a named pointer to an external JSON feed of movies.
// Collections are owned entirely by the remote service; the server proxies
// them without keeping a local mirror.
type MovieCollection struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	IsDefault bool      `json:"is_default"`
	CreatedAt time.Time `json:"created_at"`
}

// MovieCollectionList is a single page of collections from the remote
// service.
type MovieCollectionList struct {
	Collections []MovieCollection `json:"collections"`
	Total       int64             `json:"total"`
	Page        int               `json:"page"`
	Limit       int               `json:"limit"`
}

// CreateMovieCollection is the payload for registering a collection.
type CreateMovieCollection struct {
	Name      string `json:"name"`
	URL       string `json:"url"`
	IsDefault bool   `json:"is_default,omitempty"`
}

// UpdateMovieCollection is a partial update for a collection.
type UpdateMovieCollection struct {
	Name      *string `json:"name,omitempty"`
	URL       *string `json:"url,omitempty"`
	IsDefault *bool   `json:"is_default,omitempty"`
}

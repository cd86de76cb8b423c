package domain

import (
	"fmt"
	"time"
)

// Favorite marks a movie as favorited. MovieID is the composite
// "{storage_type}-{id}" key and is unique within the index.
type Favorite struct {
	ID      int64     `json:"id"`
	MovieID string    `json:"movieId"`
	AddedAt time.Time `json:"addedAt"`
}

// FavoriteKey builds the composite favorites key for a movie.
func FavoriteKey(storage StorageType, id int64) string {
	return fmt.Sprintf("%s-%d", storage, id)
}

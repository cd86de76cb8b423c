package store

import (
	"context"
	"time"

	"github.com/libresine/libresine-server/internal/domain"
)

// ExportMovies builds an export document containing every local movie.
// Ids and storage type are stripped so the document can be imported into
// any other instance.
func (s *Store) ExportMovies(ctx context.Context) (*domain.ExportDocument, error) {
	movies, err := s.ListMovies(ctx)
	if err != nil {
		return nil, err
	}

	exported := make([]domain.ExportMovie, 0, len(movies))
	for _, movie := range movies {
		exported = append(exported, domain.ExportMovie{
			Name:        movie.Name,
			MovieURL:    movie.MovieURL,
			ImageURL:    movie.ImageURL,
			Description: movie.Description,
			Rating:      movie.Rating,
			Genres:      movie.Genres,
			Director:    movie.Director,
			Actors:      movie.Actors,
			CreatedAt:   movie.CreatedAt,
			UpdatedAt:   movie.UpdatedAt,
		})
	}

	return &domain.ExportDocument{
		ExportDate: time.Now().UTC(),
		Version:    domain.ExportVersion,
		Movies:     exported,
	}, nil
}

package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/libresine/libresine-server/internal/catalog"
	"github.com/libresine/libresine-server/internal/domain"
	domainerrors "github.com/libresine/libresine-server/internal/errors"
)

func (s *Server) registerMovieRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "list-movies",
		Method:      http.MethodGet,
		Path:        "/api/v1/movies",
		Summary:     "List movies",
		Description: "Aggregated, sorted, paginated movie list across the local store and the remote service",
		Tags:        []string{"Movies"},
	}, s.handleListMovies)

	huma.Register(s.api, huma.Operation{
		OperationID:   "create-movie",
		Method:        http.MethodPost,
		Path:          "/api/v1/movies",
		Summary:       "Create movie",
		DefaultStatus: http.StatusCreated,
		Tags:          []string{"Movies"},
	}, s.handleCreateMovie)

	huma.Register(s.api, huma.Operation{
		OperationID: "export-movies",
		Method:      http.MethodGet,
		Path:        "/api/v1/movies/export",
		Summary:     "Export movies",
		Description: "Download the local store as a portable JSON document",
		Tags:        []string{"Movies"},
	}, s.handleExportMovies)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-movie",
		Method:      http.MethodGet,
		Path:        "/api/v1/movies/{id}",
		Summary:     "Get movie",
		Tags:        []string{"Movies"},
	}, s.handleGetMovie)

	huma.Register(s.api, huma.Operation{
		OperationID: "update-movie",
		Method:      http.MethodPatch,
		Path:        "/api/v1/movies/{id}",
		Summary:     "Update movie",
		Tags:        []string{"Movies"},
	}, s.handleUpdateMovie)

	huma.Register(s.api, huma.Operation{
		OperationID:   "delete-movie",
		Method:        http.MethodDelete,
		Path:          "/api/v1/movies/{id}",
		Summary:       "Delete movie",
		DefaultStatus: http.StatusNoContent,
		Tags:          []string{"Movies"},
	}, s.handleDeleteMovie)
}

// === DTOs ===

// ListMoviesInput contains the aggregated list parameters.
type ListMoviesInput struct {
	Page   int    `query:"page" validate:"omitempty,gte=1" doc:"1-based page number"`
	Limit  int    `query:"limit" validate:"omitempty,gte=1,lte=100" doc:"Page size (default 20)"`
	Search string `query:"search" validate:"omitempty,max=200" doc:"Substring search across both sources"`
	Sort   string `query:"sort" doc:"Sort mode: name, rating, recent, created_at, favorites"`
	Genre  string `query:"genre" validate:"omitempty,max=100" doc:"Exact genre filter"`
}

// ListMoviesOutput wraps one aggregated page.
type ListMoviesOutput struct {
	Body catalog.ListResult
}

// CreateMovieRequest is the payload for creating a local movie.
type CreateMovieRequest struct {
	Name        string   `json:"name" validate:"required,max=500" doc:"Movie title"`
	MovieURL    string   `json:"movie_url" validate:"required,url" doc:"Canonical movie URL"`
	ImageURL    string   `json:"image_url" required:"false" validate:"omitempty,url" doc:"Poster image URL"`
	Description string   `json:"description,omitempty"`
	Rating      float64  `json:"rating" required:"false" validate:"omitempty,gte=1,lte=10" doc:"Rating, 1 to 10"`
	Genres      []string `json:"genres,omitempty"`
	Director    string   `json:"director,omitempty"`
	Actors      []string `json:"actors,omitempty"`
}

// CreateMovieInput wraps the create request body.
type CreateMovieInput struct {
	Body CreateMovieRequest
}

// MovieOutput wraps a single movie.
type MovieOutput struct {
	Body domain.Movie
}

// MovieIDInput identifies a local movie.
type MovieIDInput struct {
	ID int64 `path:"id" doc:"Local movie id"`
}

// UpdateMovieInput wraps a partial update.
type UpdateMovieInput struct {
	ID   int64 `path:"id" doc:"Local movie id"`
	Body domain.UpdateMovie
}

// DeleteMovieOutput is an empty 204.
type DeleteMovieOutput struct{}

// ExportMoviesOutput carries the export document as a download.
type ExportMoviesOutput struct {
	ContentDisposition string `header:"Content-Disposition"`
	Body               domain.ExportDocument
}

// === Handlers ===

func (s *Server) handleListMovies(ctx context.Context, input *ListMoviesInput) (*ListMoviesOutput, error) {
	if err := s.validator.Validate(input); err != nil {
		return nil, err
	}

	result, err := s.catalog.List(ctx, catalog.ListParams{
		Page:   input.Page,
		Limit:  input.Limit,
		Search: input.Search,
		Sort:   catalog.ParseSortMode(input.Sort),
		Genre:  input.Genre,
	})
	if err != nil {
		s.logger.Error("Failed to list movies", "error", err)
		return nil, err
	}

	return &ListMoviesOutput{Body: *result}, nil
}

func (s *Server) handleCreateMovie(ctx context.Context, input *CreateMovieInput) (*MovieOutput, error) {
	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	exists, err := s.store.MovieExists(ctx, input.Body.Name, input.Body.MovieURL, 0)
	if err != nil {
		s.logger.Error("Failed to check for duplicate movie", "error", err)
		return nil, err
	}
	if exists {
		return nil, domainerrors.Duplicate("a movie with this name and URL already exists")
	}

	movie, err := s.store.AddMovie(ctx, &domain.CreateMovie{
		Name:        input.Body.Name,
		MovieURL:    input.Body.MovieURL,
		ImageURL:    input.Body.ImageURL,
		Description: input.Body.Description,
		Rating:      input.Body.Rating,
		Genres:      input.Body.Genres,
		Director:    input.Body.Director,
		Actors:      input.Body.Actors,
	})
	if err != nil {
		s.logger.Error("Failed to create movie", "error", err)
		return nil, err
	}

	return &MovieOutput{Body: *movie}, nil
}

func (s *Server) handleGetMovie(ctx context.Context, input *MovieIDInput) (*MovieOutput, error) {
	movie, err := s.store.GetMovie(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &MovieOutput{Body: *movie}, nil
}

func (s *Server) handleUpdateMovie(ctx context.Context, input *UpdateMovieInput) (*MovieOutput, error) {
	current, err := s.store.GetMovie(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	// Duplicate check against the post-update identity, excluding the
	// movie itself.
	name := current.Name
	if input.Body.Name != nil {
		name = *input.Body.Name
	}
	movieURL := current.MovieURL
	if input.Body.MovieURL != nil {
		movieURL = *input.Body.MovieURL
	}
	exists, err := s.store.MovieExists(ctx, name, movieURL, input.ID)
	if err != nil {
		s.logger.Error("Failed to check for duplicate movie", "error", err)
		return nil, err
	}
	if exists {
		return nil, domainerrors.Duplicate("a movie with this name and URL already exists")
	}

	movie, err := s.store.UpdateMovie(ctx, input.ID, &input.Body)
	if err != nil {
		s.logger.Error("Failed to update movie", "error", err, "id", input.ID)
		return nil, err
	}

	return &MovieOutput{Body: *movie}, nil
}

func (s *Server) handleDeleteMovie(ctx context.Context, input *MovieIDInput) (*DeleteMovieOutput, error) {
	if err := s.store.DeleteMovie(ctx, input.ID); err != nil {
		s.logger.Error("Failed to delete movie", "error", err, "id", input.ID)
		return nil, err
	}
	return &DeleteMovieOutput{}, nil
}

func (s *Server) handleExportMovies(ctx context.Context, _ *struct{}) (*ExportMoviesOutput, error) {
	doc, err := s.store.ExportMovies(ctx)
	if err != nil {
		s.logger.Error("Failed to export movies", "error", err)
		return nil, err
	}

	return &ExportMoviesOutput{
		ContentDisposition: fmt.Sprintf("attachment; filename=%q", s.config.ExportFilename(time.Now())),
		Body:               *doc,
	}, nil
}

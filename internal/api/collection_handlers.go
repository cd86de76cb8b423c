package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/libresine/libresine-server/internal/domain"
)

func (s *Server) registerCollectionRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "list-collections",
		Method:      http.MethodGet,
		Path:        "/api/v1/collections",
		Summary:     "List collections",
		Description: "Proxied from the remote service; nothing is stored locally",
		Tags:        []string{"Collections"},
	}, s.handleListCollections)

	huma.Register(s.api, huma.Operation{
		OperationID:   "create-collection",
		Method:        http.MethodPost,
		Path:          "/api/v1/collections",
		Summary:       "Create collection",
		DefaultStatus: http.StatusCreated,
		Tags:          []string{"Collections"},
	}, s.handleCreateCollection)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-collection",
		Method:      http.MethodGet,
		Path:        "/api/v1/collections/{id}",
		Summary:     "Get collection",
		Tags:        []string{"Collections"},
	}, s.handleGetCollection)

	huma.Register(s.api, huma.Operation{
		OperationID: "update-collection",
		Method:      http.MethodPut,
		Path:        "/api/v1/collections/{id}",
		Summary:     "Update collection",
		Tags:        []string{"Collections"},
	}, s.handleUpdateCollection)

	huma.Register(s.api, huma.Operation{
		OperationID:   "delete-collection",
		Method:        http.MethodDelete,
		Path:          "/api/v1/collections/{id}",
		Summary:       "Delete collection",
		DefaultStatus: http.StatusNoContent,
		Tags:          []string{"Collections"},
	}, s.handleDeleteCollection)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-collection-movies",
		Method:      http.MethodGet,
		Path:        "/api/v1/collections/{id}/movies",
		Summary:     "Fetch collection feed",
		Description: "Resolves the collection's feed URL and returns the movies it serves",
		Tags:        []string{"Collections"},
	}, s.handleGetCollectionMovies)
}

// === DTOs ===

// ListCollectionsInput contains pagination for the upstream listing.
type ListCollectionsInput struct {
	Page  int `query:"page" validate:"omitempty,gte=1" doc:"1-based page number"`
	Limit int `query:"limit" validate:"omitempty,gte=1,lte=100" doc:"Page size"`
}

// ListCollectionsOutput wraps one upstream page.
type ListCollectionsOutput struct {
	Body domain.MovieCollectionList
}

// CreateCollectionRequest is the payload for registering a collection.
type CreateCollectionRequest struct {
	Name      string `json:"name" validate:"required,max=200" doc:"Collection name"`
	URL       string `json:"url" validate:"required,url" doc:"Feed URL serving a JSON movie array"`
	IsDefault bool   `json:"is_default,omitempty"`
}

// CreateCollectionInput wraps the create request body.
type CreateCollectionInput struct {
	Body CreateCollectionRequest
}

// CollectionOutput wraps a single collection.
type CollectionOutput struct {
	Body domain.MovieCollection
}

// CollectionIDInput identifies an upstream collection.
type CollectionIDInput struct {
	ID int64 `path:"id" doc:"Collection id"`
}

// UpdateCollectionInput wraps a partial update.
type UpdateCollectionInput struct {
	ID   int64 `path:"id" doc:"Collection id"`
	Body domain.UpdateMovieCollection
}

// DeleteCollectionOutput is an empty 204.
type DeleteCollectionOutput struct{}

// CollectionMoviesOutput carries the movies a collection feed serves.
type CollectionMoviesOutput struct {
	Body struct {
		Collection domain.MovieCollection `json:"collection"`
		Movies     []domain.Movie         `json:"movies"`
	}
}

// === Handlers ===

func (s *Server) handleListCollections(ctx context.Context, input *ListCollectionsInput) (*ListCollectionsOutput, error) {
	if err := s.validator.Validate(input); err != nil {
		return nil, err
	}

	list, err := s.remote.ListCollections(ctx, input.Page, input.Limit)
	if err != nil {
		s.logger.Error("Failed to list collections", "error", err)
		return nil, err
	}
	return &ListCollectionsOutput{Body: *list}, nil
}

func (s *Server) handleCreateCollection(ctx context.Context, input *CreateCollectionInput) (*CollectionOutput, error) {
	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	collection, err := s.remote.CreateCollection(ctx, &domain.CreateMovieCollection{
		Name:      input.Body.Name,
		URL:       input.Body.URL,
		IsDefault: input.Body.IsDefault,
	})
	if err != nil {
		s.logger.Error("Failed to create collection", "error", err)
		return nil, err
	}
	return &CollectionOutput{Body: *collection}, nil
}

func (s *Server) handleGetCollection(ctx context.Context, input *CollectionIDInput) (*CollectionOutput, error) {
	collection, err := s.remote.GetCollection(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &CollectionOutput{Body: *collection}, nil
}

func (s *Server) handleUpdateCollection(ctx context.Context, input *UpdateCollectionInput) (*CollectionOutput, error) {
	collection, err := s.remote.UpdateCollection(ctx, input.ID, &input.Body)
	if err != nil {
		s.logger.Error("Failed to update collection", "error", err, "id", input.ID)
		return nil, err
	}
	return &CollectionOutput{Body: *collection}, nil
}

func (s *Server) handleDeleteCollection(ctx context.Context, input *CollectionIDInput) (*DeleteCollectionOutput, error) {
	if err := s.remote.DeleteCollection(ctx, input.ID); err != nil {
		s.logger.Error("Failed to delete collection", "error", err, "id", input.ID)
		return nil, err
	}
	return &DeleteCollectionOutput{}, nil
}

// handleGetCollectionMovies resolves the collection upstream, then pulls its
// feed. Two round-trips, both rate limited by the client.
func (s *Server) handleGetCollectionMovies(ctx context.Context, input *CollectionIDInput) (*CollectionMoviesOutput, error) {
	collection, err := s.remote.GetCollection(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	movies, err := s.remote.FetchCollectionFeed(ctx, collection.URL)
	if err != nil {
		s.logger.Error("Failed to fetch collection feed", "error", err, "id", input.ID, "url", collection.URL)
		return nil, err
	}

	out := &CollectionMoviesOutput{}
	out.Body.Collection = *collection
	out.Body.Movies = movies
	return out, nil
}

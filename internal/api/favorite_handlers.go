package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerFavoriteRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "list-favorites",
		Method:      http.MethodGet,
		Path:        "/api/v1/favorites",
		Summary:     "List favorite keys",
		Tags:        []string{"Favorites"},
	}, s.handleListFavorites)

	huma.Register(s.api, huma.Operation{
		OperationID: "toggle-favorite",
		Method:      http.MethodPost,
		Path:        "/api/v1/favorites/{key}/toggle",
		Summary:     "Toggle favorite",
		Tags:        []string{"Favorites"},
	}, s.handleToggleFavorite)
}

// === DTOs ===

// ListFavoritesOutput carries composite movie keys like "local-12" or
// "remote-7".
type ListFavoritesOutput struct {
	Body struct {
		Favorites []string `json:"favorites"`
	}
}

// ToggleFavoriteInput identifies the movie by its composite key.
type ToggleFavoriteInput struct {
	Key string `path:"key" doc:"Composite movie key, e.g. local-12"`
}

// ToggleFavoriteOutput reports the state after the toggle.
type ToggleFavoriteOutput struct {
	Body struct {
		Key      string `json:"key"`
		Favorite bool   `json:"favorite"`
	}
}

// === Handlers ===

func (s *Server) handleListFavorites(ctx context.Context, _ *struct{}) (*ListFavoritesOutput, error) {
	keys, err := s.store.ListFavoriteKeys(ctx)
	if err != nil {
		s.logger.Error("Failed to list favorites", "error", err)
		return nil, err
	}

	out := &ListFavoritesOutput{}
	out.Body.Favorites = keys
	return out, nil
}

func (s *Server) handleToggleFavorite(ctx context.Context, input *ToggleFavoriteInput) (*ToggleFavoriteOutput, error) {
	favorite, err := s.store.ToggleFavorite(ctx, input.Key)
	if err != nil {
		s.logger.Error("Failed to toggle favorite", "error", err, "key", input.Key)
		return nil, err
	}

	out := &ToggleFavoriteOutput{}
	out.Body.Key = input.Key
	out.Body.Favorite = favorite
	return out, nil
}

package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/libresine/libresine-server/internal/search"
)

func (s *Server) registerSearchRoutes() {
	// The index is optional; without it the route does not exist.
	if s.search == nil {
		return
	}

	huma.Register(s.api, huma.Operation{
		OperationID: "search-movies",
		Method:      http.MethodGet,
		Path:        "/api/v1/search",
		Summary:     "Search local catalog",
		Description: "Ranked full-text search over locally stored movies",
		Tags:        []string{"Search"},
	}, s.handleSearch)
}

// === DTOs ===

// SearchInput contains parameters for searching the local catalog.
type SearchInput struct {
	Query     string  `query:"q" validate:"required,min=1,max=200" doc:"Search query"`
	Genres    string  `query:"genres" validate:"omitempty,max=200" doc:"Comma-separated exact genre names to filter by"`
	MinRating float64 `query:"min_rating" validate:"omitempty,gte=1,lte=10" doc:"Minimum rating (inclusive)"`
	MaxRating float64 `query:"max_rating" validate:"omitempty,gte=1,lte=10" doc:"Maximum rating (inclusive)"`
	Limit     int     `query:"limit" validate:"omitempty,gte=1,lte=100" doc:"Max results (default 20)"`
	Offset    int     `query:"offset" validate:"omitempty,gte=0" doc:"Pagination offset (default 0)"`
	Sort      string  `query:"sort" validate:"omitempty,oneof=relevance name rating recent" doc:"Sort order (default relevance)"`
	Facets    bool    `query:"facets" doc:"Include genre facet counts"`
	Highlight bool    `query:"highlight" doc:"Include highlighted matches"`
}

// SearchOutput wraps the search response for Huma.
type SearchOutput struct {
	Body search.Result
}

// === Handlers ===

func (s *Server) handleSearch(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	if err := s.validator.Validate(input); err != nil {
		return nil, err
	}

	params := search.DefaultParams()
	params.Query = input.Query
	params.MinRating = input.MinRating
	params.MaxRating = input.MaxRating
	params.IncludeFacets = input.Facets
	params.Highlight = input.Highlight
	if input.Limit > 0 {
		params.Limit = input.Limit
	}
	if input.Offset > 0 {
		params.Offset = input.Offset
	}
	if input.Sort != "" {
		params.SortBy = input.Sort
	}
	for _, g := range strings.Split(input.Genres, ",") {
		if g = strings.TrimSpace(g); g != "" {
			params.Genres = append(params.Genres, g)
		}
	}

	result, err := s.search.Search(ctx, params)
	if err != nil {
		s.logger.Error("Search failed", "error", err, "query", input.Query)
		return nil, err
	}

	return &SearchOutput{Body: *result}, nil
}

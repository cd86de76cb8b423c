package remote

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/libresine/libresine-server/internal/domain"
)

// ListParams are the query parameters for a remote movie page.
type ListParams struct {
	Page   int    // 1-based, defaults to 1
	Limit  int    // Defaults to the service's own default when 0
	Search string // Substring search applied upstream
	Genre  string // Exact genre filter applied upstream
}

// ListMovies fetches one page of movies from the remote service. Every
// returned movie is stamped storage_type=remote regardless of what the
// service sent, so composite keys stay trustworthy downstream.
func (c *Client) ListMovies(ctx context.Context, params ListParams) (*domain.MovieList, error) {
	query := url.Values{}
	if params.Page > 0 {
		query.Set("page", strconv.Itoa(params.Page))
	}
	if params.Limit > 0 {
		query.Set("limit", strconv.Itoa(params.Limit))
	}
	if params.Search != "" {
		query.Set("search", params.Search)
	}
	if params.Genre != "" {
		query.Set("genre", params.Genre)
	}

	var list domain.MovieList
	if err := c.getJSON(ctx, "/movies", query, &list); err != nil {
		return nil, err
	}

	for i := range list.Movies {
		list.Movies[i].StorageType = domain.StorageRemote
	}

	return &list, nil
}

// GetMovie fetches a single remote movie by id.
func (c *Client) GetMovie(ctx context.Context, id int64) (*domain.Movie, error) {
	var movie domain.Movie
	if err := c.getJSON(ctx, fmt.Sprintf("/movies/%d", id), nil, &movie); err != nil {
		return nil, err
	}

	movie.StorageType = domain.StorageRemote
	return &movie, nil
}

// Package catalog merges the local store and the remote movie service
// into one paginated, sorted movie list.
package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/libresine/libresine-server/internal/domain"
	"github.com/libresine/libresine-server/internal/remote"
	"github.com/libresine/libresine-server/internal/store"
)

// Aggregator combines local and remote movies into a single catalog view.
type Aggregator struct {
	store  *store.Store
	remote *remote.Client
	logger *slog.Logger
}

// New creates a new catalog aggregator.
func New(s *store.Store, r *remote.Client, logger *slog.Logger) *Aggregator {
	return &Aggregator{
		store:  s,
		remote: r,
		logger: logger,
	}
}

// ListParams selects a page of the aggregated catalog.
type ListParams struct {
	Page   int      // 1-based
	Limit  int      // Page size
	Search string   // Substring search across both sources
	Sort   SortMode // Ordering; defaults to name
	Genre  string   // Exact genre filter applied after the merge
}

// SourceCounts breaks the merged page's origin down per source.
type SourceCounts struct {
	Local  int `json:"local"`
	Remote int `json:"remote"`
}

// ListResult is one page of the aggregated catalog.
type ListResult struct {
	Movies       []*domain.Movie `json:"movies"`
	Total        int64           `json:"total"`
	SourceCounts SourceCounts    `json:"sourceCounts"`
	Page         int             `json:"page"`
	Limit        int             `json:"limit"`
}

const (
	defaultPage  = 1
	defaultLimit = 20
)

// List returns one page of the merged catalog. A remote failure fails the
// whole call; there is no local-only fallback, the caller reports the
// error and retries.
func (a *Aggregator) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.Page < 1 {
		params.Page = defaultPage
	}
	if params.Limit < 1 {
		params.Limit = defaultLimit
	}

	remoteList, err := a.remote.ListMovies(ctx, remote.ListParams{
		Page:   params.Page,
		Limit:  params.Limit,
		Search: params.Search,
	})
	if err != nil {
		return nil, fmt.Errorf("fetch remote movies: %w", err)
	}

	var local []*domain.Movie
	if params.Search != "" {
		local, err = a.store.SearchMovies(ctx, params.Search)
	} else {
		local, err = a.store.ListMovies(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("fetch local movies: %w", err)
	}

	// Local movies lead so a user's own entries surface before upstream
	// ones whenever the sort considers them equal.
	merged := make([]*domain.Movie, 0, len(local)+len(remoteList.Movies))
	merged = append(merged, local...)
	for i := range remoteList.Movies {
		merged = append(merged, &remoteList.Movies[i])
	}

	if params.Genre != "" {
		filtered := merged[:0]
		for _, movie := range merged {
			if movie.HasGenre(params.Genre) {
				filtered = append(filtered, movie)
			}
		}
		merged = filtered
	}

	var favorites map[string]struct{}
	if params.Sort == SortByFavorites {
		keys, err := a.store.ListFavoriteKeys(ctx)
		if err != nil {
			return nil, fmt.Errorf("fetch favorites: %w", err)
		}
		favorites = make(map[string]struct{}, len(keys))
		for _, key := range keys {
			favorites[key] = struct{}{}
		}
	}

	newSorter().Sort(merged, params.Sort, favorites)

	// Counts cover everything fetched and matched by this call, not just
	// the slice below: all local matches plus the remote page, minus any
	// genre misses.
	counts := SourceCounts{}
	for _, movie := range merged {
		if movie.StorageType == domain.StorageLocal {
			counts.Local++
		} else {
			counts.Remote++
		}
	}

	// The remote source was already paginated before the merge, so the
	// total and this window are only exact when the active remote page
	// plus all local matches cover it. Re-slicing anyway keeps the page
	// size contract; clients treat totals as approximate. This matches
	// the pagination behavior clients already depend on, so it must not
	// be "fixed" by fetching all remote pages here.
	start := (params.Page - 1) * params.Limit
	end := start + params.Limit
	if start > len(merged) {
		start = len(merged)
	}
	if end > len(merged) {
		end = len(merged)
	}
	page := merged[start:end]

	if a.logger != nil {
		a.logger.Debug("aggregated catalog page",
			"page", params.Page,
			"local", counts.Local,
			"remote", counts.Remote,
			"total", len(merged),
		)
	}

	return &ListResult{
		Movies:       page,
		Total:        int64(len(merged)),
		SourceCounts: counts,
		Page:         params.Page,
		Limit:        params.Limit,
	}, nil
}

// GetMovie resolves a movie from either source by its storage type.
func (a *Aggregator) GetMovie(ctx context.Context, storageType domain.StorageType, id int64) (*domain.Movie, error) {
	if storageType == domain.StorageRemote {
		return a.remote.GetMovie(ctx, id)
	}
	return a.store.GetMovie(ctx, id)
}

package search

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/libresine/libresine-server/internal/domain"
)

// setupTestIndex creates a temporary search index for testing.
func setupTestIndex(t *testing.T) (*MovieIndex, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "search-test-*")
	require.NoError(t, err)

	index, err := NewMovieIndex(Options{
		DataPath: tmpDir,
		Logger:   nil,
	})
	require.NoError(t, err)

	cleanup := func() {
		_ = index.Close()
		_ = os.RemoveAll(tmpDir)
	}

	return index, cleanup
}

func testMovie(id int64, name string) *domain.Movie {
	return &domain.Movie{
		ID:          id,
		Name:        name,
		StorageType: domain.StorageLocal,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
}

func TestNewMovieIndex(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestMovieIndex_IndexMovie(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	movie := testMovie(1, "The Godfather")
	movie.Director = "Francis Ford Coppola"

	require.NoError(t, index.IndexMovie(context.Background(), movie))

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}

func TestMovieIndex_DeleteMovie(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, index.IndexMovie(ctx, testMovie(1, "Heat")))
	require.NoError(t, index.DeleteMovie(ctx, 1))

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestMovieIndex_IndexMovies_Batch(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	movies := []*domain.Movie{
		testMovie(1, "Movie One"),
		testMovie(2, "Movie Two"),
		testMovie(3, "Movie Three"),
	}

	require.NoError(t, index.IndexMovies(movies))

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)
}

func TestMovieIndex_Search(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	ctx := context.Background()

	godfather := testMovie(1, "The Godfather")
	godfather.Director = "Francis Ford Coppola"
	godfather.Actors = []string{"Al Pacino", "Marlon Brando"}
	godfather.Genres = []string{"Crime", "Drama"}
	godfather.Rating = 9.2
	require.NoError(t, index.IndexMovie(ctx, godfather))

	heat := testMovie(2, "Heat")
	heat.Director = "Michael Mann"
	heat.Actors = []string{"Al Pacino", "Robert De Niro"}
	heat.Genres = []string{"Crime", "Thriller"}
	heat.Rating = 8.3
	require.NoError(t, index.IndexMovie(ctx, heat))

	t.Run("by name", func(t *testing.T) {
		params := DefaultParams()
		params.Query = "godfather"

		result, err := index.Search(ctx, params)
		require.NoError(t, err)
		require.NotEmpty(t, result.Hits)
		assert.Equal(t, int64(1), result.Hits[0].ID)
		assert.Equal(t, "The Godfather", result.Hits[0].Name)
	})

	t.Run("by actor", func(t *testing.T) {
		params := DefaultParams()
		params.Query = "pacino"

		result, err := index.Search(ctx, params)
		require.NoError(t, err)
		assert.Equal(t, uint64(2), result.Total)
	})

	t.Run("fuzzy tolerates a typo", func(t *testing.T) {
		params := DefaultParams()
		params.Query = "godfathr"

		result, err := index.Search(ctx, params)
		require.NoError(t, err)
		require.NotEmpty(t, result.Hits)
		assert.Equal(t, int64(1), result.Hits[0].ID)
	})

	t.Run("genre filter", func(t *testing.T) {
		params := DefaultParams()
		params.Genres = []string{"Thriller"}

		result, err := index.Search(ctx, params)
		require.NoError(t, err)
		require.Len(t, result.Hits, 1)
		assert.Equal(t, "Heat", result.Hits[0].Name)
	})

	t.Run("rating range", func(t *testing.T) {
		params := DefaultParams()
		params.MinRating = 9.0

		result, err := index.Search(ctx, params)
		require.NoError(t, err)
		require.Len(t, result.Hits, 1)
		assert.Equal(t, "The Godfather", result.Hits[0].Name)
	})

	t.Run("genre facets", func(t *testing.T) {
		result, err := index.Search(ctx, DefaultParams())
		require.NoError(t, err)

		counts := map[string]int{}
		for _, facet := range result.Genres {
			counts[facet.Value] = facet.Count
		}
		assert.Equal(t, 2, counts["Crime"])
		assert.Equal(t, 1, counts["Thriller"])
	})

	t.Run("empty query matches all", func(t *testing.T) {
		result, err := index.Search(ctx, DefaultParams())
		require.NoError(t, err)
		assert.Equal(t, uint64(2), result.Total)
	})
}

func TestMovieIndex_SearchSortByRating(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	ctx := context.Background()
	for i, tc := range []struct {
		name   string
		rating float64
	}{
		{"Low", 3.0},
		{"High", 9.0},
		{"Mid", 6.0},
	} {
		movie := testMovie(int64(i+1), tc.name)
		movie.Rating = tc.rating
		require.NoError(t, index.IndexMovie(ctx, movie))
	}

	params := DefaultParams()
	params.SortBy = "rating"

	result, err := index.Search(ctx, params)
	require.NoError(t, err)
	require.Len(t, result.Hits, 3)
	assert.Equal(t, "High", result.Hits[0].Name)
	assert.Equal(t, "Mid", result.Hits[1].Name)
	assert.Equal(t, "Low", result.Hits[2].Name)
}

func TestMovieIndex_Rebuild(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	require.NoError(t, index.IndexMovie(context.Background(), testMovie(1, "Heat")))
	require.NoError(t, index.Rebuild())

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/libresine/libresine-server/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := New(t.TempDir(), nil, NewNoopEmitter())
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, s.Close())
	})
	return s
}

func testCreateMovie(name, url string) *domain.CreateMovie {
	return &domain.CreateMovie{
		Name:        name,
		MovieURL:    url,
		ImageURL:    "https://img.example.com/" + name + ".jpg",
		Description: "a test movie",
		Rating:      7.5,
		Genres:      []string{"Drama"},
		Director:    "Jane Doe",
		Actors:      []string{"Alice", "Bob"},
	}
}

func TestAddMovie(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	movie, err := s.AddMovie(ctx, testCreateMovie("Heat", "https://example.com/heat"))
	require.NoError(t, err)

	assert.Equal(t, int64(1), movie.ID)
	assert.Equal(t, domain.StorageLocal, movie.StorageType)
	assert.False(t, movie.CreatedAt.IsZero())
	assert.Equal(t, movie.CreatedAt, movie.UpdatedAt)

	got, err := s.GetMovie(ctx, movie.ID)
	require.NoError(t, err)
	assert.Equal(t, "Heat", got.Name)
	assert.Equal(t, []string{"Alice", "Bob"}, got.Actors)
}

func TestAddMovieNormalizesNilSlices(t *testing.T) {
	s := newTestStore(t)

	movie, err := s.AddMovie(context.Background(), &domain.CreateMovie{
		Name:     "Sparse",
		MovieURL: "https://example.com/sparse",
	})
	require.NoError(t, err)

	assert.NotNil(t, movie.Genres)
	assert.NotNil(t, movie.Actors)
	assert.Empty(t, movie.Genres)
}

func TestAddMovieAssignsSequentialIDs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.AddMovie(ctx, testCreateMovie("First", "https://example.com/1"))
	require.NoError(t, err)
	second, err := s.AddMovie(ctx, testCreateMovie("Second", "https://example.com/2"))
	require.NoError(t, err)

	assert.Less(t, first.ID, second.ID)
}

func TestGetMovieNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetMovie(context.Background(), 999)
	assert.ErrorIs(t, err, ErrMovieNotFound)
}

func TestUpdateMovie(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	movie, err := s.AddMovie(ctx, testCreateMovie("Heat", "https://example.com/heat"))
	require.NoError(t, err)

	newName := "Heat (1995)"
	newRating := 9.0
	updated, err := s.UpdateMovie(ctx, movie.ID, &domain.UpdateMovie{
		Name:   &newName,
		Rating: &newRating,
	})
	require.NoError(t, err)

	assert.Equal(t, "Heat (1995)", updated.Name)
	assert.Equal(t, 9.0, updated.Rating)
	// Untouched fields survive a partial update.
	assert.Equal(t, "https://example.com/heat", updated.MovieURL)
	assert.Equal(t, []string{"Drama"}, updated.Genres)
	assert.Equal(t, movie.CreatedAt, updated.CreatedAt)
	assert.True(t, updated.UpdatedAt.After(movie.UpdatedAt) || updated.UpdatedAt.Equal(movie.UpdatedAt))
}

func TestUpdateMovieNotFound(t *testing.T) {
	s := newTestStore(t)

	name := "Ghost"
	_, err := s.UpdateMovie(context.Background(), 42, &domain.UpdateMovie{Name: &name})
	assert.ErrorIs(t, err, ErrMovieNotFound)
}

func TestDeleteMovie(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	movie, err := s.AddMovie(ctx, testCreateMovie("Heat", "https://example.com/heat"))
	require.NoError(t, err)

	require.NoError(t, s.DeleteMovie(ctx, movie.ID))

	_, err = s.GetMovie(ctx, movie.ID)
	assert.ErrorIs(t, err, ErrMovieNotFound)

	// Deleting again is a no-op, not an error.
	assert.NoError(t, s.DeleteMovie(ctx, movie.ID))
}

func TestDeleteMovieRemovesFavorite(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	movie, err := s.AddMovie(ctx, testCreateMovie("Heat", "https://example.com/heat"))
	require.NoError(t, err)

	favorited, err := s.ToggleFavorite(ctx, movie.Key())
	require.NoError(t, err)
	require.True(t, favorited)

	require.NoError(t, s.DeleteMovie(ctx, movie.ID))

	isFav, err := s.IsFavorite(ctx, movie.Key())
	require.NoError(t, err)
	assert.False(t, isFav)
}

func TestListMoviesInsertionOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	names := []string{"Zulu", "Alpha", "Mango"}
	for i, name := range names {
		_, err := s.AddMovie(ctx, testCreateMovie(name, "https://example.com/"+name))
		require.NoError(t, err, "movie %d", i)
	}

	movies, err := s.ListMovies(ctx)
	require.NoError(t, err)
	require.Len(t, movies, 3)
	for i, name := range names {
		assert.Equal(t, name, movies[i].Name)
	}
}

func TestSearchMovies(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.AddMovie(ctx, &domain.CreateMovie{
		Name: "The Godfather", MovieURL: "https://example.com/godfather",
		Director: "Francis Ford Coppola", Actors: []string{"Al Pacino"},
	})
	require.NoError(t, err)
	_, err = s.AddMovie(ctx, &domain.CreateMovie{
		Name: "Heat", MovieURL: "https://example.com/heat",
		Description: "A thief and a detective", Actors: []string{"Al Pacino", "Robert De Niro"},
	})
	require.NoError(t, err)

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"by name", "godfather", 1},
		{"case insensitive", "HEAT", 1},
		{"by director", "coppola", 1},
		{"by actor across movies", "pacino", 2},
		{"by description", "detective", 1},
		{"no match", "spielberg", 0},
		{"empty matches all", "", 2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := s.SearchMovies(ctx, tc.query)
			require.NoError(t, err)
			assert.Len(t, got, tc.want)
		})
	}
}

func TestMovieExists(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	movie, err := s.AddMovie(ctx, testCreateMovie("Heat", "https://example.com/heat"))
	require.NoError(t, err)

	// Name matches case-insensitively, URL case-sensitively.
	exists, err := s.MovieExists(ctx, "HEAT", "https://example.com/heat", 0)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = s.MovieExists(ctx, "Heat", "https://example.com/HEAT", 0)
	require.NoError(t, err)
	assert.False(t, exists)

	// A movie never collides with itself.
	exists, err = s.MovieExists(ctx, "Heat", "https://example.com/heat", movie.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestBulkImportMatchesExistsPredicate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// A stored name with surrounding whitespace is a distinct name, so
	// the trimmed candidate must survive the import exactly when
	// MovieExists reports no duplicate for it.
	_, err := s.AddMovie(ctx, testCreateMovie(" Alpha ", "https://example.com/alpha"))
	require.NoError(t, err)

	exists, err := s.MovieExists(ctx, "Alpha", "https://example.com/alpha", 0)
	require.NoError(t, err)
	require.False(t, exists)

	imported, err := s.BulkImportMovies(ctx, []*domain.CreateMovie{
		testCreateMovie("Alpha", "https://example.com/alpha"),
	})
	require.NoError(t, err)
	assert.Len(t, imported, 1)
}

func TestBulkImportMovies(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.AddMovie(ctx, testCreateMovie("Existing", "https://example.com/existing"))
	require.NoError(t, err)

	imported, err := s.BulkImportMovies(ctx, []*domain.CreateMovie{
		testCreateMovie("Existing", "https://example.com/existing"), // duplicate, skipped
		testCreateMovie("Fresh", "https://example.com/fresh"),
		testCreateMovie("Fresh", "https://example.com/fresh"), // duplicate within batch
		testCreateMovie("Another", "https://example.com/another"),
	})
	require.NoError(t, err)
	assert.Len(t, imported, 2)

	movies, err := s.ListMovies(ctx)
	require.NoError(t, err)
	assert.Len(t, movies, 3)
}

func TestBulkImportMoviesAllDuplicates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.AddMovie(ctx, testCreateMovie("Heat", "https://example.com/heat"))
	require.NoError(t, err)

	_, err = s.BulkImportMovies(ctx, []*domain.CreateMovie{
		testCreateMovie("heat", "https://example.com/heat"),
	})
	assert.ErrorIs(t, err, ErrEmptyImport)

	_, err = s.BulkImportMovies(ctx, nil)
	assert.ErrorIs(t, err, ErrEmptyImport)
}

func TestExportMovies(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.AddMovie(ctx, testCreateMovie("Heat", "https://example.com/heat"))
	require.NoError(t, err)

	doc, err := s.ExportMovies(ctx)
	require.NoError(t, err)

	assert.Equal(t, domain.ExportVersion, doc.Version)
	assert.False(t, doc.ExportDate.IsZero())
	require.Len(t, doc.Movies, 1)
	assert.Equal(t, "Heat", doc.Movies[0].Name)
}

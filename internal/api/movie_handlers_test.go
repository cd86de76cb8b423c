package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/libresine/libresine-server/internal/catalog"
	"github.com/libresine/libresine-server/internal/domain"
)

func createMovieBody(name, url string) map[string]any {
	return map[string]any{
		"name":      name,
		"movie_url": url,
		"rating":    7.5,
		"genres":    []string{"Drama"},
	}
}

func TestCreateMovie(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/movies", createMovieBody("Heat", "https://example.com/heat"))
	require.Equal(t, http.StatusCreated, resp.Code, "body: %s", resp.Body.String())

	envelope := decodeEnvelope[domain.Movie](t, resp)
	assert.True(t, envelope.Success)
	assert.Equal(t, int64(1), envelope.Data.ID)
	assert.Equal(t, "Heat", envelope.Data.Name)
	assert.Equal(t, domain.StorageLocal, envelope.Data.StorageType)
}

func TestCreateMovieValidation(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/movies", map[string]any{
		"name":      "",
		"movie_url": "not a url",
	})
	require.Equal(t, http.StatusBadRequest, resp.Code)

	envelope := decodeEnvelope[struct{}](t, resp)
	assert.False(t, envelope.Success)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "VALIDATION", envelope.Error.Code)
	assert.NotNil(t, envelope.Error.Details)
}

func TestCreateMovieDuplicate(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/movies", createMovieBody("Heat", "https://example.com/heat"))
	require.Equal(t, http.StatusCreated, resp.Code)

	// Same name (case-insensitive) and same URL.
	resp = ts.api.Post("/api/v1/movies", createMovieBody("HEAT", "https://example.com/heat"))
	require.Equal(t, http.StatusConflict, resp.Code)

	envelope := decodeEnvelope[struct{}](t, resp)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "DUPLICATE", envelope.Error.Code)
}

func TestGetMovie(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/movies", createMovieBody("Heat", "https://example.com/heat"))
	require.Equal(t, http.StatusCreated, resp.Code)

	resp = ts.api.Get("/api/v1/movies/1")
	require.Equal(t, http.StatusOK, resp.Code)
	envelope := decodeEnvelope[domain.Movie](t, resp)
	assert.Equal(t, "Heat", envelope.Data.Name)

	resp = ts.api.Get("/api/v1/movies/99")
	require.Equal(t, http.StatusNotFound, resp.Code)
	errEnvelope := decodeEnvelope[struct{}](t, resp)
	require.NotNil(t, errEnvelope.Error)
	assert.Equal(t, "NOT_FOUND", errEnvelope.Error.Code)
}

func TestUpdateMovie(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/movies", createMovieBody("Heat", "https://example.com/heat"))
	require.Equal(t, http.StatusCreated, resp.Code)

	resp = ts.api.Patch("/api/v1/movies/1", map[string]any{"rating": 9.0})
	require.Equal(t, http.StatusOK, resp.Code, "body: %s", resp.Body.String())

	envelope := decodeEnvelope[domain.Movie](t, resp)
	assert.Equal(t, "Heat", envelope.Data.Name)
	assert.Equal(t, 9.0, envelope.Data.Rating)
}

func TestUpdateMovieDuplicateExcludesSelf(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/movies", createMovieBody("Heat", "https://example.com/heat"))
	require.Equal(t, http.StatusCreated, resp.Code)
	resp = ts.api.Post("/api/v1/movies", createMovieBody("Ronin", "https://example.com/ronin"))
	require.Equal(t, http.StatusCreated, resp.Code)

	// Updating a movie without changing its identity is not a duplicate.
	resp = ts.api.Patch("/api/v1/movies/1", map[string]any{"description": "bank heist"})
	require.Equal(t, http.StatusOK, resp.Code, "body: %s", resp.Body.String())

	// Renaming onto another movie's identity is.
	resp = ts.api.Patch("/api/v1/movies/2", map[string]any{
		"name":      "Heat",
		"movie_url": "https://example.com/heat",
	})
	require.Equal(t, http.StatusConflict, resp.Code)
}

func TestDeleteMovie(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/movies", createMovieBody("Heat", "https://example.com/heat"))
	require.Equal(t, http.StatusCreated, resp.Code)

	resp = ts.api.Delete("/api/v1/movies/1")
	require.Equal(t, http.StatusNoContent, resp.Code)

	resp = ts.api.Get("/api/v1/movies/1")
	require.Equal(t, http.StatusNotFound, resp.Code)
}

func TestListMoviesAggregates(t *testing.T) {
	ts := setupTestServer(t)
	ts.upstream.movies = []domain.Movie{
		{ID: 1, Name: "Remote Picture", MovieURL: "https://example.com/rp"},
	}

	resp := ts.api.Post("/api/v1/movies", createMovieBody("Local Picture", "https://example.com/lp"))
	require.Equal(t, http.StatusCreated, resp.Code)

	resp = ts.api.Get("/api/v1/movies")
	require.Equal(t, http.StatusOK, resp.Code, "body: %s", resp.Body.String())

	envelope := decodeEnvelope[catalog.ListResult](t, resp)
	require.Len(t, envelope.Data.Movies, 2)
	assert.Equal(t, 1, envelope.Data.SourceCounts.Local)
	assert.Equal(t, 1, envelope.Data.SourceCounts.Remote)
	assert.Equal(t, domain.StorageRemote, envelope.Data.Movies[1].StorageType)
}

func TestListMoviesRemoteFailure(t *testing.T) {
	ts := setupTestServer(t)
	ts.upstream.srv.Close()

	resp := ts.api.Get("/api/v1/movies")
	require.Equal(t, http.StatusBadGateway, resp.Code)

	envelope := decodeEnvelope[struct{}](t, resp)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "REMOTE_SERVICE", envelope.Error.Code)
}

func TestExportMovies(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/movies", createMovieBody("Heat", "https://example.com/heat"))
	require.Equal(t, http.StatusCreated, resp.Code)

	// The export sets Content-Disposition, which humatest does not
	// surface through the envelope, so hit the router directly.
	rec := httptest.NewRecorder()
	req := httptest.NewRequestWithContext(context.Background(), http.MethodGet, "/api/v1/movies/export", nil)
	ts.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "libresine-movies-")

	envelope := decodeEnvelope[domain.ExportDocument](t, rec)
	assert.Equal(t, domain.ExportVersion, envelope.Data.Version)
	require.Len(t, envelope.Data.Movies, 1)
	assert.Equal(t, "Heat", envelope.Data.Movies[0].Name)
}

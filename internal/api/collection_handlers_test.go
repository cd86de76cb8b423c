package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/libresine/libresine-server/internal/domain"
)

func TestCollectionLifecycle(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/collections", map[string]any{
		"name": "Criterion Picks",
		"url":  ts.upstream.srv.URL + "/feed.json",
	})
	require.Equal(t, http.StatusCreated, resp.Code, "body: %s", resp.Body.String())

	created := decodeEnvelope[domain.MovieCollection](t, resp)
	assert.Equal(t, "Criterion Picks", created.Data.Name)
	require.NotZero(t, created.Data.ID)

	resp = ts.api.Get(fmt.Sprintf("/api/v1/collections/%d", created.Data.ID))
	require.Equal(t, http.StatusOK, resp.Code)
	fetched := decodeEnvelope[domain.MovieCollection](t, resp)
	assert.Equal(t, created.Data.URL, fetched.Data.URL)

	resp = ts.api.Get("/api/v1/collections")
	require.Equal(t, http.StatusOK, resp.Code)
	list := decodeEnvelope[domain.MovieCollectionList](t, resp)
	require.Len(t, list.Data.Collections, 1)

	resp = ts.api.Delete(fmt.Sprintf("/api/v1/collections/%d", created.Data.ID))
	require.Equal(t, http.StatusNoContent, resp.Code)

	resp = ts.api.Get(fmt.Sprintf("/api/v1/collections/%d", created.Data.ID))
	require.Equal(t, http.StatusNotFound, resp.Code)
}

func TestCreateCollectionValidation(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/collections", map[string]any{
		"name": "",
		"url":  "not a url",
	})
	require.Equal(t, http.StatusBadRequest, resp.Code)

	envelope := decodeEnvelope[struct{}](t, resp)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "VALIDATION", envelope.Error.Code)
}

func TestGetCollectionMovies(t *testing.T) {
	ts := setupTestServer(t)
	ts.upstream.movies = []domain.Movie{
		{ID: 1, Name: "Feed Movie", MovieURL: "https://example.com/fm"},
	}

	resp := ts.api.Post("/api/v1/collections", map[string]any{
		"name": "Feed",
		"url":  ts.upstream.srv.URL + "/feed.json",
	})
	require.Equal(t, http.StatusCreated, resp.Code)
	created := decodeEnvelope[domain.MovieCollection](t, resp)

	resp = ts.api.Get(fmt.Sprintf("/api/v1/collections/%d/movies", created.Data.ID))
	require.Equal(t, http.StatusOK, resp.Code, "body: %s", resp.Body.String())

	type feedBody struct {
		Collection domain.MovieCollection `json:"collection"`
		Movies     []domain.Movie         `json:"movies"`
	}
	envelope := decodeEnvelope[feedBody](t, resp)
	assert.Equal(t, created.Data.ID, envelope.Data.Collection.ID)
	require.Len(t, envelope.Data.Movies, 1)
	assert.Equal(t, "Feed Movie", envelope.Data.Movies[0].Name)
}

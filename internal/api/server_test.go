package api

import (
	"encoding/json/v2"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/require"

	"github.com/libresine/libresine-server/internal/catalog"
	"github.com/libresine/libresine-server/internal/config"
	"github.com/libresine/libresine-server/internal/domain"
	"github.com/libresine/libresine-server/internal/importer"
	"github.com/libresine/libresine-server/internal/remote"
	"github.com/libresine/libresine-server/internal/search"
	"github.com/libresine/libresine-server/internal/store"
)

// testEnvelope mirrors the wire envelope for decoding in tests.
type testEnvelope[T any] struct {
	Success bool           `json:"success"`
	Data    T              `json:"data"`
	Error   *EnvelopeError `json:"error"`
}

// testServer bundles the API server with its collaborators for tests.
type testServer struct {
	*Server
	api      humatest.TestAPI
	upstream *upstreamStub
}

// upstreamStub is a fake remote movie service.
type upstreamStub struct {
	srv *httptest.Server

	movies      []domain.Movie
	collections map[int64]domain.MovieCollection
	nextID      int64
}

func newUpstreamStub() *upstreamStub {
	u := &upstreamStub{
		collections: make(map[int64]domain.MovieCollection),
		nextID:      1,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/movies", func(w http.ResponseWriter, r *http.Request) {
		writeStubJSON(w, domain.MovieList{
			Movies: u.movies,
			Total:  int64(len(u.movies)),
			Page:   1,
			Limit:  20,
		})
	})
	mux.HandleFunc("GET /api/v1/movie-collections", func(w http.ResponseWriter, r *http.Request) {
		list := domain.MovieCollectionList{Collections: []domain.MovieCollection{}, Page: 1, Limit: 20}
		for _, c := range u.collections {
			list.Collections = append(list.Collections, c)
		}
		list.Total = int64(len(list.Collections))
		writeStubJSON(w, list)
	})
	mux.HandleFunc("POST /api/v1/movie-collections", func(w http.ResponseWriter, r *http.Request) {
		var create domain.CreateMovieCollection
		if err := json.UnmarshalRead(r.Body, &create); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		c := domain.MovieCollection{
			ID:        u.nextID,
			Name:      create.Name,
			URL:       create.URL,
			IsDefault: create.IsDefault,
			CreatedAt: time.Now().UTC(),
		}
		u.nextID++
		u.collections[c.ID] = c
		w.WriteHeader(http.StatusCreated)
		writeStubJSON(w, c)
	})
	mux.HandleFunc("GET /api/v1/movie-collections/{id}", func(w http.ResponseWriter, r *http.Request) {
		c, ok := u.lookupCollection(r.PathValue("id"))
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			writeStubJSON(w, map[string]string{"message": "collection not found"})
			return
		}
		writeStubJSON(w, c)
	})
	mux.HandleFunc("DELETE /api/v1/movie-collections/{id}", func(w http.ResponseWriter, r *http.Request) {
		c, ok := u.lookupCollection(r.PathValue("id"))
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		delete(u.collections, c.ID)
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /feed.json", func(w http.ResponseWriter, r *http.Request) {
		writeStubJSON(w, u.movies)
	})

	u.srv = httptest.NewServer(mux)
	return u
}

func (u *upstreamStub) lookupCollection(raw string) (domain.MovieCollection, bool) {
	var id int64
	for _, ch := range raw {
		if ch < '0' || ch > '9' {
			return domain.MovieCollection{}, false
		}
		id = id*10 + int64(ch-'0')
	}
	c, ok := u.collections[id]
	return c, ok
}

func writeStubJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.MarshalWrite(w, v)
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	upstream := newUpstreamStub()
	t.Cleanup(upstream.srv.Close)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	st, err := store.New(t.TempDir(), logger, store.NewNoopEmitter())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	idx, err := search.NewMovieIndex(search.Options{DataPath: t.TempDir(), Logger: logger})
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })
	st.SetSearchIndexer(idx)

	rc, err := remote.New(remote.Options{
		BaseURL:           upstream.srv.URL,
		Timeout:           5 * time.Second,
		RequestsPerSecond: 1000,
	}, logger)
	require.NoError(t, err)
	t.Cleanup(rc.Close)

	cfg := &config.Config{
		Server: config.ServerConfig{Name: "LibreSine"},
	}

	s := NewServer(Options{
		Store:    st,
		Catalog:  catalog.New(st, rc, logger),
		Remote:   rc,
		Importer: importer.NewManager(st, logger),
		Search:   idx,
		Config:   cfg,
		Logger:   logger,
	})
	t.Cleanup(s.Close)

	return &testServer{
		Server:   s,
		api:      humatest.Wrap(t, s.api),
		upstream: upstream,
	}
}

// decodeEnvelope unmarshals a response body into a typed envelope.
func decodeEnvelope[T any](t *testing.T, resp *httptest.ResponseRecorder) testEnvelope[T] {
	t.Helper()
	var envelope testEnvelope[T]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope), "body: %s", resp.Body.String())
	return envelope
}

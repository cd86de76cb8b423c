package remote

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/libresine/libresine-server/internal/domain"
)

// ListCollections fetches a page of movie collections.
func (c *Client) ListCollections(ctx context.Context, page, limit int) (*domain.MovieCollectionList, error) {
	query := url.Values{}
	if page > 0 {
		query.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	var list domain.MovieCollectionList
	if err := c.getJSON(ctx, "/movie-collections", query, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// GetCollection fetches a single collection by id.
func (c *Client) GetCollection(ctx context.Context, id int64) (*domain.MovieCollection, error) {
	var collection domain.MovieCollection
	if err := c.getJSON(ctx, fmt.Sprintf("/movie-collections/%d", id), nil, &collection); err != nil {
		return nil, err
	}
	return &collection, nil
}

// CreateCollection registers a new collection with the remote service.
func (c *Client) CreateCollection(ctx context.Context, create *domain.CreateMovieCollection) (*domain.MovieCollection, error) {
	body, err := c.doRequest(ctx, http.MethodPost, "/movie-collections", nil, create)
	if err != nil {
		return nil, err
	}

	var collection domain.MovieCollection
	if err := json.Unmarshal(body, &collection); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &collection, nil
}

// UpdateCollection applies a partial update to a collection.
func (c *Client) UpdateCollection(ctx context.Context, id int64, update *domain.UpdateMovieCollection) (*domain.MovieCollection, error) {
	body, err := c.doRequest(ctx, http.MethodPut, fmt.Sprintf("/movie-collections/%d", id), nil, update)
	if err != nil {
		return nil, err
	}

	var collection domain.MovieCollection
	if err := json.Unmarshal(body, &collection); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &collection, nil
}

// DeleteCollection removes a collection from the remote service.
func (c *Client) DeleteCollection(ctx context.Context, id int64) error {
	_, err := c.doRequest(ctx, http.MethodDelete, fmt.Sprintf("/movie-collections/%d", id), nil, nil)
	return err
}

// FetchCollectionFeed fetches an arbitrary collection feed URL and decodes
// it as a JSON array of movies. Feeds point anywhere, so this bypasses the
// API prefix and base URL; the rate limiter still applies per host. The
// feed's shape is taken at face value, import validation happens later.
func (c *Client) FetchCollectionFeed(ctx context.Context, feedURL string) ([]domain.Movie, error) {
	u, err := url.Parse(feedURL)
	if err != nil {
		return nil, fmt.Errorf("invalid feed URL %q: %w", feedURL, err)
	}

	if err := c.limiter.Wait(ctx, u.Host); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "LibreSine/1.0")

	if c.logger != nil {
		c.logger.Debug("collection feed request", "url", feedURL)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &Error{Status: 0, Message: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newError(resp.StatusCode, body)
	}

	var movies []domain.Movie
	if err := json.Unmarshal(body, &movies); err != nil {
		return nil, fmt.Errorf("decode feed: %w", err)
	}
	return movies, nil
}

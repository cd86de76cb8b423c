// Package events implements Server-Sent Events for broadcasting catalog changes.
//
// The local store emits a change event after every successful mutation;
// connected clients re-pull the aggregated catalog when notified. This is the
// explicit replacement for the live-query reactivity the browser shell had.
package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents the type of catalog change event.
type EventType string

const (
	// EventMovieCreated represents a local movie creation.
	EventMovieCreated EventType = "movie.created"
	// EventMovieUpdated represents a local movie update.
	EventMovieUpdated EventType = "movie.updated"
	// EventMovieDeleted represents a local movie deletion.
	EventMovieDeleted EventType = "movie.deleted"

	// EventMoviesImported represents a committed bulk import.
	EventMoviesImported EventType = "movies.imported"

	// EventFavoriteAdded represents a favorite being toggled on.
	EventFavoriteAdded EventType = "favorite.added"
	// EventFavoriteRemoved represents a favorite being toggled off.
	EventFavoriteRemoved EventType = "favorite.removed"

	// EventHeartbeat represents a connection keepalive event.
	EventHeartbeat EventType = "heartbeat"
)

// Event represents a change event to be sent to clients.
// The Data field contains the event payload as a JSON object.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
}

// New creates an event with a fresh ID and the current timestamp.
func New(eventType EventType, data any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
	}
}

// NewHeartbeatEvent creates a keepalive event.
func NewHeartbeatEvent() Event {
	return New(EventHeartbeat, nil)
}

package importer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/libresine/libresine-server/internal/domain"
	"github.com/libresine/libresine-server/internal/id"
	"github.com/libresine/libresine-server/internal/store"
)

// State is the lifecycle position of an import session.
type State string

const (
	// StateInvalid is terminal: the file failed validation.
	StateInvalid State = "invalid"
	// StateAwaitingLargeConfirm waits for the user to confirm a big batch.
	StateAwaitingLargeConfirm State = "awaiting_large_confirm"
	// StateAwaitingDuplicateConfirm waits for the user to accept known duplicates.
	StateAwaitingDuplicateConfirm State = "awaiting_duplicate_confirm"
	// StateCommitted is terminal: the batch was written to the store.
	StateCommitted State = "committed"
)

// largeImportThreshold is the batch size above which the user must
// explicitly confirm before anything is written.
const largeImportThreshold = 20

// Session is one import attempt moving through validation, confirmation
// gates, and commit.
type Session struct {
	ID        string     `json:"id"`
	State     State      `json:"state"`
	Filename  string     `json:"filename"`
	Count     int        `json:"count"`
	Errors    []string   `json:"errors,omitempty"`
	Duplicate *Duplicate `json:"duplicate,omitempty"`
	Imported  int        `json:"imported"`
	CreatedAt time.Time  `json:"createdAt"`

	movies []*domain.CreateMovie
}

// snapshot copies the session for use outside the manager's mutex. The
// Errors slice and Duplicate are never mutated after creation, so sharing
// them is fine; the pending batch stays private.
func (s *Session) snapshot() *Session {
	copied := *s
	copied.movies = nil
	return &copied
}

// ErrSessionNotFound is returned for unknown or aborted session ids.
var ErrSessionNotFound = fmt.Errorf("import session not found")

// ErrWrongState is returned when a confirm does not match the session's
// current gate.
var ErrWrongState = fmt.Errorf("import session is not awaiting this confirmation")

// Manager owns the in-memory session registry. All session transitions
// are serialized under one mutex; concurrent imports of overlapping files
// are rare enough that contention is not a concern, and serializing keeps
// the duplicate probe and the commit from interleaving.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	store  *store.Store
	logger *slog.Logger
}

// NewManager creates a new import session manager.
func NewManager(s *store.Store, logger *slog.Logger) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		store:    s,
		logger:   logger,
	}
}

// Start validates an uploaded file and opens a session for it. Invalid
// files still produce a (terminal) session so the client has one shape to
// render; small clean batches commit immediately.
func (m *Manager) Start(ctx context.Context, filename, mimeType string, data []byte) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session := &Session{
		ID:        id.MustGenerate("imp"),
		Filename:  filename,
		CreatedAt: time.Now().UTC(),
	}

	validation := ValidateFile(filename, mimeType, data)
	if !validation.Valid {
		session.State = StateInvalid
		session.Errors = validation.Errors
		m.sessions[session.ID] = session
		return session.snapshot(), nil
	}

	session.movies = validation.Movies
	session.Count = len(validation.Movies)

	if session.Count > largeImportThreshold {
		session.State = StateAwaitingLargeConfirm
		m.sessions[session.ID] = session
		return session.snapshot(), nil
	}

	if err := m.probeOrCommit(ctx, session); err != nil {
		return nil, err
	}
	m.sessions[session.ID] = session
	return session.snapshot(), nil
}

// ConfirmLarge accepts the big-batch warning. The duplicate probe runs
// only now, so the user is not asked two questions for one file upfront.
func (m *Manager) ConfirmLarge(ctx context.Context, sessionID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if session.State != StateAwaitingLargeConfirm {
		return nil, ErrWrongState
	}

	if err := m.probeOrCommit(ctx, session); err != nil {
		return nil, err
	}
	return session.snapshot(), nil
}

// ConfirmDuplicates accepts known duplicates and commits the full batch;
// the store skips exact duplicates on its own during the bulk write.
func (m *Manager) ConfirmDuplicates(ctx context.Context, sessionID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if session.State != StateAwaitingDuplicateConfirm {
		return nil, ErrWrongState
	}

	if err := m.commit(ctx, session); err != nil {
		return nil, err
	}
	return session.snapshot(), nil
}

// Abort discards a session. Aborting an unknown session is not an error;
// the client may retry an abort after a timeout.
func (m *Manager) Abort(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
}

// Get returns a copy of a session by id. Handlers marshal the result
// after the mutex is released, so the registry's own session is never
// shared.
func (m *Manager) Get(sessionID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session.snapshot(), nil
}

// probeOrCommit runs the duplicate gate and commits when it is clear.
// Callers hold the mutex.
func (m *Manager) probeOrCommit(ctx context.Context, session *Session) error {
	duplicate, err := findFirstDuplicate(ctx, m.store, session.movies)
	if err != nil {
		return fmt.Errorf("duplicate probe: %w", err)
	}
	if duplicate != nil {
		session.State = StateAwaitingDuplicateConfirm
		session.Duplicate = duplicate
		return nil
	}
	return m.commit(ctx, session)
}

// commit writes the batch. Callers hold the mutex.
func (m *Manager) commit(ctx context.Context, session *Session) error {
	imported, err := m.store.BulkImportMovies(ctx, session.movies)
	if err != nil {
		return err
	}

	session.State = StateCommitted
	session.Imported = len(imported)
	session.movies = nil

	if m.logger != nil {
		m.logger.Info("import committed",
			"session", session.ID,
			"file", session.Filename,
			"imported", session.Imported,
		)
	}
	return nil
}

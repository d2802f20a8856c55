// Package lifecycle keeps a document, its persisted metadata and its remote
// mock in lockstep. Each open document gets a Session that runs the created,
// loaded, saved, enable and disable sequences one at a time.
package lifecycle

import (
	"context"
	"sort"
	"sync"

	"github.com/prasenjit/go-mocksync/internal/document"
	"github.com/prasenjit/go-mocksync/internal/models"
)

// MockService is the remote side of a mock. *mocking.Client implements it.
type MockService interface {
	Create(ctx context.Context, mock *models.MockResource) (*models.MockResource, error)
	Get(ctx context.Context, mock *models.MockResource) (*models.MockResource, error)
	Update(ctx context.Context, mock *models.MockResource) (*models.MockResource, error)
	Delete(ctx context.Context, mock *models.MockResource) error
}

// File is the stored side of a document. *storage.Handle implements it.
type File interface {
	ID() string
	Content() string
	LoadMetadata(ctx context.Context) (models.Metadata, error)
	SaveMetadataKey(ctx context.Context, key string, value any) error
}

// Observer is told about every session state change
type Observer interface {
	Transition(event models.Event)
}

type nopObserver struct{}

func (nopObserver) Transition(models.Event) {}

// Option configures a Manager
type Option func(*Manager)

// WithObserver reports state changes of every session to o
func WithObserver(o Observer) Option {
	return func(m *Manager) {
		if o != nil {
			m.observer = o
		}
	}
}

// Manager owns the open sessions, keyed by document ID
type Manager struct {
	mu       sync.RWMutex
	service  MockService
	observer Observer
	sessions map[string]*Session
}

// NewManager creates a manager whose sessions talk to service
func NewManager(service MockService, opts ...Option) *Manager {
	m := &Manager{
		service:  service,
		observer: nopObserver{},
		sessions: make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Open returns the session for id, creating it around doc if none is open.
// An already open session keeps its own document.
func (m *Manager) Open(id string, doc document.Document) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[id]; ok {
		return s
	}

	s := &Session{
		id:       id,
		doc:      doc,
		service:  m.service,
		observer: m.observer,
		state:    models.StateIdle,
	}
	m.sessions[id] = s
	return s
}

// Session returns the open session for id
func (m *Manager) Session(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Close tears down the session for id. The remote mock is left alone.
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(m.sessions, id)
	return nil
}

// Sessions returns the IDs of all open sessions, sorted
func (m *Manager) Sessions() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

package lifecycle

import (
	"context"
	"sync"
	"time"

	"github.com/prasenjit/go-mocksync/internal/directive"
	"github.com/prasenjit/go-mocksync/internal/document"
	"github.com/prasenjit/go-mocksync/internal/models"
)

// Operation names carried by events and step errors
const (
	OpCreated = "created"
	OpLoaded  = "loaded"
	OpSaved   = "saved"
	OpEnable  = "enable"
	OpDisable = "disable"
)

// Status is a snapshot of a session
type Status struct {
	DocumentID string               `json:"documentId"`
	State      models.SessionState  `json:"state"`
	Mock       *models.MockResource `json:"mock,omitempty"`
	Err        error                `json:"-"`
	Error      string               `json:"error,omitempty"`
}

// Session is the lifecycle state of one open document.
// Operations hold the session lock until they return, so they never overlap.
type Session struct {
	mu       sync.Mutex
	id       string
	doc      document.Document
	service  MockService
	observer Observer

	file  File
	mock  *models.MockResource
	state models.SessionState
	err   error
}

// ID returns the document ID
func (s *Session) ID() string {
	return s.id
}

// Document returns the live document
func (s *Session) Document() document.Document {
	return s.doc
}

// Status returns the current state, the active mock and the last error
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{
		DocumentID: s.id,
		State:      s.state,
		Mock:       s.mock.Clone(),
		Err:        s.err,
	}
	if s.err != nil {
		st.Error = s.err.Error()
	}
	return st
}

// Mock returns a copy of the active mock, or nil
func (s *Session) Mock() *models.MockResource {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mock.Clone()
}

// FileCreated adopts a new file. No remote calls are made.
func (s *Session) FileCreated(file File) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.file = file
	s.mock = nil
	s.err = nil
	s.transition(OpCreated, models.StateIdle)
}

// FileLoaded adopts an existing file and restores its mock. A mock the service
// no longer knows leaves the session idle. When the remote raml differs from
// the file content, the content wins and is pushed with exactly one update.
func (s *Session) FileLoaded(ctx context.Context, file File) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.file = file
	s.mock = nil
	s.err = nil
	s.transition(OpLoaded, models.StateLoading)

	metadata, err := file.LoadMetadata(ctx)
	if err != nil {
		return s.fail(OpLoaded, err)
	}
	stored, err := metadata.Mock()
	if err != nil {
		return s.fail(OpLoaded, err)
	}
	if stored == nil {
		s.transition(OpLoaded, models.StateIdle)
		return nil
	}

	remote, err := s.service.Get(ctx, stored)
	if err != nil {
		return s.fail(OpLoaded, err)
	}
	if remote == nil {
		s.transition(OpLoaded, models.StateIdle)
		return nil
	}

	mock := merge(remote, stored)
	if mock.RAML != file.Content() {
		mock.RAML = file.Content()
		s.transition(OpLoaded, models.StateUpdating)
		if _, err := s.service.Update(ctx, mock); err != nil {
			return s.fail(OpLoaded, err)
		}
	}

	s.mock = mock
	s.transition(OpLoaded, models.StateActive)
	return nil
}

// FileSaved adopts the saved file and pushes its content to the active mock.
// Without an active mock nothing is sent.
func (s *Session) FileSaved(ctx context.Context, file File) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.file = file
	s.err = nil
	if s.mock == nil {
		return nil
	}

	s.mock.RAML = file.Content()
	s.transition(OpSaved, models.StateUpdating)
	if _, err := s.service.Update(ctx, s.mock); err != nil {
		return s.fail(OpSaved, err)
	}

	s.transition(OpSaved, models.StateActive)
	return nil
}

// Enable creates a mock seeded with the document text, persists its identity
// on the file, and writes its baseUrl directive into the document. The mock
// becomes active only after the directive is in place.
func (s *Session) Enable(ctx context.Context, file File) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.file = file
	s.err = nil

	s.transition(OpEnable, models.StateCreating)
	mock, err := s.service.Create(ctx, &models.MockResource{RAML: s.doc.Value()})
	if err != nil {
		return s.fail(OpEnable, err)
	}

	s.transition(OpEnable, models.StatePersisting)
	if err := file.SaveMetadataKey(ctx, models.MetadataMockKey, mock); err != nil {
		return s.fail(OpEnable, err)
	}

	s.transition(OpEnable, models.StateEditing)
	directive.Insert(s.doc, mock.BaseURL)

	s.mock = mock
	s.transition(OpEnable, models.StateActive)
	return nil
}

// Disable deletes the mock named by the file's metadata, removes its directive
// from the document, and clears the metadata key.
func (s *Session) Disable(ctx context.Context, file File) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.file = file
	s.err = nil

	s.transition(OpDisable, models.StateLoading)
	metadata, err := file.LoadMetadata(ctx)
	if err != nil {
		return s.fail(OpDisable, err)
	}
	mock, err := metadata.Mock()
	if err != nil {
		return s.fail(OpDisable, err)
	}
	if mock == nil {
		s.mock = nil
		s.transition(OpDisable, models.StateIdle)
		return s.fail(OpDisable, ErrNotMocked)
	}

	s.transition(OpDisable, models.StateDeleting)
	if err := s.service.Delete(ctx, mock); err != nil {
		return s.fail(OpDisable, err)
	}

	s.transition(OpDisable, models.StateEditing)
	directive.Remove(s.doc, mock.BaseURL)

	s.transition(OpDisable, models.StateClearing)
	if err := file.SaveMetadataKey(ctx, models.MetadataMockKey, nil); err != nil {
		return s.fail(OpDisable, err)
	}

	s.mock = nil
	s.transition(OpDisable, models.StateIdle)
	return nil
}

// merge fills identity fields the read response left out from the stored copy
func merge(remote, stored *models.MockResource) *models.MockResource {
	mock := remote.Clone()
	if mock.MockID == "" {
		mock.MockID = stored.MockID
	}
	if mock.ManageKey == "" {
		mock.ManageKey = stored.ManageKey
	}
	if mock.BaseURL == "" {
		mock.BaseURL = stored.BaseURL
	}
	return mock
}

func (s *Session) transition(op string, to models.SessionState) {
	from := s.state
	s.state = to
	s.observer.Transition(s.event(op, from, to, nil))
}

// fail records err against the current state and reports it
func (s *Session) fail(op string, err error) error {
	s.err = err
	s.observer.Transition(s.event(op, s.state, s.state, err))
	return &StepError{Op: op, State: s.state, Err: err}
}

func (s *Session) event(op string, from, to models.SessionState, err error) models.Event {
	e := models.Event{
		DocumentID: s.id,
		Operation:  op,
		From:       from,
		To:         to,
		Timestamp:  time.Now(),
	}
	if s.mock != nil {
		e.MockID = s.mock.MockID
	}
	if err != nil {
		e.Error = err.Error()
	}
	return e
}

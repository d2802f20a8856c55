// Package events records lifecycle state transitions and streams them to live
// subscribers.
package events

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/prasenjit/go-mocksync/internal/models"
)

// Service keeps the most recent events and fans them out to subscribers
type Service struct {
	mu          sync.RWMutex
	events      []*models.Event
	maxEvents   int
	subscribers map[string]chan *models.Event
}

// NewService creates an event log holding at most maxEvents
func NewService(maxEvents int) *Service {
	if maxEvents <= 0 {
		maxEvents = 1000
	}

	return &Service{
		events:      make([]*models.Event, 0),
		maxEvents:   maxEvents,
		subscribers: make(map[string]chan *models.Event),
	}
}

// Transition records a session state change
func (s *Service) Transition(event models.Event) {
	s.RecordEvent(&event)
}

// RecordEvent stores event, filling in ID and timestamp, and notifies subscribers
func (s *Service) RecordEvent(event *models.Event) {
	s.mu.Lock()

	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	s.events = append(s.events, event)
	if len(s.events) > s.maxEvents {
		s.events = s.events[len(s.events)-s.maxEvents:]
	}

	subscribers := make([]chan *models.Event, 0, len(s.subscribers))
	for _, ch := range s.subscribers {
		subscribers = append(subscribers, ch)
	}

	s.mu.Unlock()

	// Slow subscribers miss events rather than block sessions
	for _, ch := range subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}

// GetEvents returns events matching filter, newest first
func (s *Service) GetEvents(filter *models.EventFilter) []*models.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*models.Event, 0)

	for i := len(s.events) - 1; i >= 0; i-- {
		event := s.events[i]

		if filter != nil {
			if filter.DocumentID != "" && event.DocumentID != filter.DocumentID {
				continue
			}
			if filter.Operation != "" && event.Operation != filter.Operation {
				continue
			}
			if filter.FailedOnly && event.Error == "" {
				continue
			}
		}

		result = append(result, event)

		if filter != nil && filter.Limit > 0 && len(result) >= filter.Limit {
			break
		}
	}

	return result
}

// Clear removes all events
func (s *Service) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = make([]*models.Event, 0)
}

// ClearDocument removes the events of one document
func (s *Service) ClearDocument(documentID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	filtered := make([]*models.Event, 0, len(s.events))
	for _, event := range s.events {
		if event.DocumentID != documentID {
			filtered = append(filtered, event)
		}
	}
	s.events = filtered
}

// Subscribe registers a live subscriber
func (s *Service) Subscribe() (string, chan *models.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.New().String()
	ch := make(chan *models.Event, 100)
	s.subscribers[id] = ch

	return id, ch
}

// Unsubscribe removes a subscriber and closes its channel
func (s *Service) Unsubscribe(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ch, ok := s.subscribers[id]; ok {
		close(ch)
		delete(s.subscribers, id)
	}
}

// GetStats returns event log counters
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]interface{}{
		"totalEvents":       len(s.events),
		"maxEvents":         s.maxEvents,
		"activeSubscribers": len(s.subscribers),
	}
}

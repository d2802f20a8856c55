package events

import (
	"testing"
	"time"

	"github.com/prasenjit/go-mocksync/internal/models"
)

func TestNewService(t *testing.T) {
	tests := []struct {
		name        string
		maxEvents   int
		expectedMax int
	}{
		{"positive max", 500, 500},
		{"zero max defaults to 1000", 0, 1000},
		{"negative max defaults to 1000", -1, 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewService(tt.maxEvents)
			if s == nil {
				t.Fatal("NewService returned nil")
			}
			if s.maxEvents != tt.expectedMax {
				t.Errorf("Expected maxEvents %d, got %d", tt.expectedMax, s.maxEvents)
			}
		})
	}
}

func TestRecordEvent(t *testing.T) {
	s := NewService(100)

	event := &models.Event{
		DocumentID: "doc-1",
		Operation:  "enable",
		From:       models.StateIdle,
		To:         models.StateCreating,
	}

	s.RecordEvent(event)

	if event.ID == "" {
		t.Error("Expected event ID to be generated")
	}
	if event.Timestamp.IsZero() {
		t.Error("Expected timestamp to be set")
	}

	events := s.GetEvents(nil)
	if len(events) != 1 {
		t.Errorf("Expected 1 event, got %d", len(events))
	}
}

func TestRecordEvent_PreservesExisting(t *testing.T) {
	s := NewService(100)

	customTime := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	event := &models.Event{ID: "custom-id", Timestamp: customTime}

	s.RecordEvent(event)

	if event.ID != "custom-id" {
		t.Errorf("Expected ID to be preserved as 'custom-id', got %q", event.ID)
	}
	if !event.Timestamp.Equal(customTime) {
		t.Errorf("Expected timestamp to be preserved, got %v", event.Timestamp)
	}
}

func TestRecordEvent_MaxLimit(t *testing.T) {
	s := NewService(5)

	for i := 0; i < 10; i++ {
		s.RecordEvent(&models.Event{DocumentID: "doc-1"})
	}

	if events := s.GetEvents(nil); len(events) != 5 {
		t.Errorf("Expected 5 events (max limit), got %d", len(events))
	}
}

func TestTransition(t *testing.T) {
	s := NewService(100)

	s.Transition(models.Event{DocumentID: "doc-1", Operation: "loaded", To: models.StateActive})

	events := s.GetEvents(nil)
	if len(events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(events))
	}
	if events[0].ID == "" {
		t.Error("Expected event ID to be generated")
	}
	if events[0].To != models.StateActive {
		t.Errorf("Expected state 'active', got %q", events[0].To)
	}
}

func TestGetEvents_NewestFirst(t *testing.T) {
	s := NewService(100)

	s.RecordEvent(&models.Event{Operation: "enable"})
	s.RecordEvent(&models.Event{Operation: "disable"})

	events := s.GetEvents(nil)
	if events[0].Operation != "disable" {
		t.Errorf("Expected newest event first, got %q", events[0].Operation)
	}
}

func TestGetEvents_Filters(t *testing.T) {
	s := NewService(100)

	s.RecordEvent(&models.Event{DocumentID: "doc-1", Operation: "enable"})
	s.RecordEvent(&models.Event{DocumentID: "doc-2", Operation: "enable", Error: "boom"})
	s.RecordEvent(&models.Event{DocumentID: "doc-1", Operation: "disable"})
	s.RecordEvent(&models.Event{DocumentID: "doc-1", Operation: "enable", Error: "boom"})

	tests := []struct {
		name     string
		filter   *models.EventFilter
		expected int
	}{
		{"by document", &models.EventFilter{DocumentID: "doc-1"}, 3},
		{"by operation", &models.EventFilter{Operation: "enable"}, 3},
		{"failed only", &models.EventFilter{FailedOnly: true}, 2},
		{"combined", &models.EventFilter{DocumentID: "doc-1", Operation: "enable"}, 2},
		{"limit", &models.EventFilter{Limit: 1}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := len(s.GetEvents(tt.filter)); got != tt.expected {
				t.Errorf("Expected %d events, got %d", tt.expected, got)
			}
		})
	}
}

func TestClear(t *testing.T) {
	s := NewService(100)

	for i := 0; i < 5; i++ {
		s.RecordEvent(&models.Event{DocumentID: "doc-1"})
	}

	s.Clear()

	if len(s.GetEvents(nil)) != 0 {
		t.Error("Expected 0 events after clear")
	}
}

func TestClearDocument(t *testing.T) {
	s := NewService(100)

	s.RecordEvent(&models.Event{DocumentID: "doc-1"})
	s.RecordEvent(&models.Event{DocumentID: "doc-1"})
	s.RecordEvent(&models.Event{DocumentID: "doc-2"})

	s.ClearDocument("doc-1")

	events := s.GetEvents(nil)
	if len(events) != 1 {
		t.Fatalf("Expected 1 event remaining, got %d", len(events))
	}
	if events[0].DocumentID != "doc-2" {
		t.Errorf("Expected remaining event to be doc-2, got %q", events[0].DocumentID)
	}
}

func TestSubscribeUnsubscribe(t *testing.T) {
	s := NewService(100)

	id, ch := s.Subscribe()
	if id == "" {
		t.Error("Expected non-empty subscription ID")
	}
	if ch == nil {
		t.Error("Expected non-nil channel")
	}
	if s.GetStats()["activeSubscribers"].(int) != 1 {
		t.Error("Expected 1 active subscriber")
	}

	s.Unsubscribe(id)

	if s.GetStats()["activeSubscribers"].(int) != 0 {
		t.Error("Expected 0 active subscribers after unsubscribe")
	}
	if _, ok := <-ch; ok {
		t.Error("Expected channel to be closed")
	}

	// Unsubscribe non-existent (should not panic)
	s.Unsubscribe("nonexistent")
}

func TestSubscriberReceivesEvents(t *testing.T) {
	s := NewService(100)

	id, ch := s.Subscribe()
	defer s.Unsubscribe(id)

	s.RecordEvent(&models.Event{DocumentID: "doc-1"})

	select {
	case event := <-ch:
		if event.DocumentID != "doc-1" {
			t.Errorf("Expected document 'doc-1', got %q", event.DocumentID)
		}
	case <-time.After(time.Second):
		t.Error("Timed out waiting for event")
	}
}

func TestSlowSubscriberDoesNotBlock(t *testing.T) {
	s := NewService(1000)

	id, _ := s.Subscribe()
	defer s.Unsubscribe(id)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 500; i++ {
			s.RecordEvent(&models.Event{DocumentID: "doc-1"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("RecordEvent blocked on a full subscriber")
	}
}

package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// MetadataMockKey is the metadata key holding the identity of a file's mock
const MetadataMockKey = "mock"

// Metadata is the persisted key/value map attached to a file
type Metadata map[string]json.RawMessage

// Mock decodes the mock stored under MetadataMockKey.
// It returns nil when the key is absent or null.
func (m Metadata) Mock() (*MockResource, error) {
	raw, ok := m[MetadataMockKey]
	if !ok || len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var mock MockResource
	if err := json.Unmarshal(raw, &mock); err != nil {
		return nil, fmt.Errorf("invalid mock metadata: %w", err)
	}
	return &mock, nil
}

// Clone returns a shallow copy of the metadata map
func (m Metadata) Clone() Metadata {
	c := make(Metadata, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

// FileRecord represents a stored RAML document
type FileRecord struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Content   string    `json:"content"`
	Metadata  Metadata  `json:"metadata,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FileInput represents input for creating a file
type FileInput struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// FileUpdate represents input for saving a file
type FileUpdate struct {
	Name    *string `json:"name,omitempty"`
	Content *string `json:"content,omitempty"`
}

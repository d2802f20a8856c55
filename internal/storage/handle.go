package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/prasenjit/go-mocksync/internal/models"
)

// Handle is the view of one stored file that a lifecycle session works with.
// Content is the text the file had when the handle was taken.
type Handle struct {
	store   Storage
	id      string
	content string
}

// NewHandle returns a handle for file backed by store
func NewHandle(store Storage, file *models.FileRecord) *Handle {
	return &Handle{
		store:   store,
		id:      file.ID,
		content: file.Content,
	}
}

// OpenHandle loads file id from store and returns a handle for it
func OpenHandle(store Storage, id string) (*Handle, error) {
	file, err := store.GetFile(id)
	if err != nil {
		return nil, err
	}
	return NewHandle(store, file), nil
}

// ID returns the file ID
func (h *Handle) ID() string {
	return h.id
}

// Content returns the file text
func (h *Handle) Content() string {
	return h.content
}

// LoadMetadata returns the file's persisted metadata
func (h *Handle) LoadMetadata(ctx context.Context) (models.Metadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return h.store.GetMetadata(h.id)
}

// SaveMetadataKey persists value as JSON under key. A nil value clears the key.
func (h *Handle) SaveMetadataKey(ctx context.Context, key string, value any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var raw json.RawMessage
	if value != nil {
		data, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("failed to encode metadata %q: %w", key, err)
		}
		raw = data
	}

	return h.store.SetMetadataKey(h.id, key, raw)
}

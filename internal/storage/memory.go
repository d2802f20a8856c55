package storage

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/prasenjit/go-mocksync/internal/models"
)

// MemoryStorage implements Storage interface with in-memory storage
type MemoryStorage struct {
	mu    sync.RWMutex
	files map[string]*models.FileRecord
}

// NewMemoryStorage creates a new in-memory storage
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		files: make(map[string]*models.FileRecord),
	}
}

// CreateFile stores a new file, assigning an ID and timestamps when unset
func (m *MemoryStorage) CreateFile(file *models.FileRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if file.ID == "" {
		file.ID = uuid.New().String()
	}
	if _, exists := m.files[file.ID]; exists {
		return fmt.Errorf("file with ID %s already exists", file.ID)
	}

	now := time.Now()
	if file.CreatedAt.IsZero() {
		file.CreatedAt = now
	}
	if file.UpdatedAt.IsZero() {
		file.UpdatedAt = now
	}

	m.files[file.ID] = cloneFile(file)
	return nil
}

// GetFile retrieves a copy of a file by ID
func (m *MemoryStorage) GetFile(id string) (*models.FileRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	file, exists := m.files[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	return cloneFile(file), nil
}

// GetAllFiles retrieves all files sorted by name
func (m *MemoryStorage) GetAllFiles() ([]*models.FileRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	files := make([]*models.FileRecord, 0, len(m.files))
	for _, file := range m.files {
		files = append(files, cloneFile(file))
	}

	sort.Slice(files, func(i, j int) bool {
		if files[i].Name != files[j].Name {
			return files[i].Name < files[j].Name
		}
		return files[i].ID < files[j].ID
	})

	return files, nil
}

// UpdateFile replaces a file's name and content. Metadata is kept as stored.
func (m *MemoryStorage) UpdateFile(file *models.FileRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, exists := m.files[file.ID]
	if !exists {
		return fmt.Errorf("%w: %s", ErrNotFound, file.ID)
	}

	updated := cloneFile(file)
	updated.CreatedAt = existing.CreatedAt
	updated.Metadata = existing.Metadata
	updated.UpdatedAt = time.Now()
	m.files[file.ID] = updated
	file.UpdatedAt = updated.UpdatedAt
	return nil
}

// DeleteFile deletes a file
func (m *MemoryStorage) DeleteFile(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.files[id]; !exists {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	delete(m.files, id)
	return nil
}

// GetMetadata returns a copy of a file's metadata
func (m *MemoryStorage) GetMetadata(id string) (models.Metadata, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	file, exists := m.files[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	return file.Metadata.Clone(), nil
}

// SetMetadataKey stores value under key, or removes key when value is nil or JSON null
func (m *MemoryStorage) SetMetadataKey(id, key string, value json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, err := m.setMetadataKey(id, key, value)
	return err
}

func (m *MemoryStorage) setMetadataKey(id, key string, value json.RawMessage) (*models.FileRecord, error) {
	file, exists := m.files[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	metadata := file.Metadata.Clone()
	if len(value) == 0 || string(value) == "null" {
		delete(metadata, key)
	} else {
		metadata[key] = append(json.RawMessage(nil), value...)
	}
	file.Metadata = metadata
	return file, nil
}

// Close closes the storage (no-op for memory storage)
func (m *MemoryStorage) Close() error {
	return nil
}

func cloneFile(file *models.FileRecord) *models.FileRecord {
	c := *file
	c.Metadata = file.Metadata.Clone()
	return &c
}

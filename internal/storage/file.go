package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/prasenjit/go-mocksync/internal/models"
)

// FileStorage implements Storage interface with file-based persistence.
// Each file record is kept as <basePath>/files/<id>.json.
type FileStorage struct {
	mu       sync.RWMutex
	basePath string
	memory   *MemoryStorage
}

// NewFileStorage creates a new file-based storage
func NewFileStorage(basePath string) (*FileStorage, error) {
	dir := filepath.Join(basePath, "files")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	fs := &FileStorage{
		basePath: basePath,
		memory:   NewMemoryStorage(),
	}

	// Load existing data
	if err := fs.loadAll(); err != nil {
		return nil, err
	}

	return fs, nil
}

// loadAll loads all records from disk, skipping unreadable ones
func (f *FileStorage) loadAll() error {
	dir := filepath.Join(f.basePath, "files")
	entries, err := os.ReadDir(dir)
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			continue
		}

		var file models.FileRecord
		if err := json.Unmarshal(data, &file); err != nil || file.ID == "" {
			continue
		}

		f.memory.files[file.ID] = &file
	}

	return nil
}

func (f *FileStorage) path(id string) string {
	return filepath.Join(f.basePath, "files", id+".json")
}

// saveFile writes a record to disk through a temp file so readers never see a partial write
func (f *FileStorage) saveFile(file *models.FileRecord) error {
	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return err
	}

	path := f.path(file.ID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// CreateFile creates a new file
func (f *FileStorage) CreateFile(file *models.FileRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.memory.CreateFile(file); err != nil {
		return err
	}

	return f.saveFile(f.memory.files[file.ID])
}

// GetFile retrieves a file by ID
func (f *FileStorage) GetFile(id string) (*models.FileRecord, error) {
	return f.memory.GetFile(id)
}

// GetAllFiles retrieves all files
func (f *FileStorage) GetAllFiles() ([]*models.FileRecord, error) {
	return f.memory.GetAllFiles()
}

// UpdateFile updates a file
func (f *FileStorage) UpdateFile(file *models.FileRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.memory.UpdateFile(file); err != nil {
		return err
	}

	return f.saveFile(f.memory.files[file.ID])
}

// DeleteFile deletes a file
func (f *FileStorage) DeleteFile(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.memory.DeleteFile(id); err != nil {
		return err
	}

	if err := os.Remove(f.path(id)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// GetMetadata returns a file's metadata
func (f *FileStorage) GetMetadata(id string) (models.Metadata, error) {
	return f.memory.GetMetadata(id)
}

// SetMetadataKey stores or clears a metadata key and persists the record
func (f *FileStorage) SetMetadataKey(id, key string, value json.RawMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.memory.mu.Lock()
	file, err := f.memory.setMetadataKey(id, key, value)
	var snapshot *models.FileRecord
	if err == nil {
		snapshot = cloneFile(file)
	}
	f.memory.mu.Unlock()

	if err != nil {
		return err
	}
	return f.saveFile(snapshot)
}

// Close closes the storage
func (f *FileStorage) Close() error {
	return nil
}

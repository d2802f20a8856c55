package storage

import (
	"encoding/json"
	"errors"

	"github.com/prasenjit/go-mocksync/internal/models"
)

// ErrNotFound is returned when a file does not exist
var ErrNotFound = errors.New("file not found")

// Storage defines the interface for file and metadata persistence
type Storage interface {
	// File operations
	CreateFile(file *models.FileRecord) error
	GetFile(id string) (*models.FileRecord, error)
	GetAllFiles() ([]*models.FileRecord, error)
	UpdateFile(file *models.FileRecord) error
	DeleteFile(id string) error

	// Metadata operations. A nil value clears the key.
	GetMetadata(id string) (models.Metadata, error)
	SetMetadataKey(id, key string, value json.RawMessage) error

	// Utility
	Close() error
}

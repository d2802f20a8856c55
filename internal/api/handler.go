package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/prasenjit/go-mocksync/internal/document"
	"github.com/prasenjit/go-mocksync/internal/events"
	"github.com/prasenjit/go-mocksync/internal/lifecycle"
	"github.com/prasenjit/go-mocksync/internal/mocking"
	"github.com/prasenjit/go-mocksync/internal/models"
	"github.com/prasenjit/go-mocksync/internal/stats"
	"github.com/prasenjit/go-mocksync/internal/storage"
)

// Handler handles API requests
type Handler struct {
	store          storage.Storage
	manager        *lifecycle.Manager
	statsCollector *stats.Collector
	eventsService  *events.Service
	logger         *slog.Logger
}

// NewHandler creates a new API handler
func NewHandler(store storage.Storage, manager *lifecycle.Manager, statsCollector *stats.Collector, eventsService *events.Service, logger *slog.Logger) *Handler {
	return &Handler{
		store:          store,
		manager:        manager,
		statsCollector: statsCollector,
		eventsService:  eventsService,
		logger:         logger,
	}
}

// fileView is a stored file plus, when it is open, its live document and session
type fileView struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Content   string            `json:"content"`
	Metadata  models.Metadata   `json:"metadata,omitempty"`
	Document  *string           `json:"document,omitempty"`
	Session   *lifecycle.Status `json:"session,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

func (h *Handler) view(file *models.FileRecord) fileView {
	v := fileView{
		ID:        file.ID,
		Name:      file.Name,
		Content:   file.Content,
		Metadata:  file.Metadata,
		CreatedAt: file.CreatedAt,
		UpdatedAt: file.UpdatedAt,
	}
	if s, err := h.manager.Session(file.ID); err == nil {
		text := s.Document().Value()
		status := s.Status()
		v.Document = &text
		v.Session = &status
	}
	return v
}

// writeError maps lifecycle, storage and remote errors to responses
func (h *Handler) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	body := gin.H{"error": err.Error()}

	var apiErr *mocking.APIError
	switch {
	case errors.Is(err, lifecycle.ErrSessionNotFound), errors.Is(err, storage.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, lifecycle.ErrNotMocked):
		status = http.StatusConflict
	case errors.As(err, &apiErr):
		status = http.StatusBadGateway
		body["upstreamStatus"] = apiErr.StatusCode
	}

	var stepErr *lifecycle.StepError
	if errors.As(err, &stepErr) {
		body["operation"] = stepErr.Op
		body["state"] = stepErr.State
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "path", c.FullPath(), "status", status, "error", err)
	}
	c.JSON(status, body)
}

// ListFiles returns all files without their content
func (h *Handler) ListFiles(c *gin.Context) {
	files, err := h.store.GetAllFiles()
	if err != nil {
		h.writeError(c, err)
		return
	}

	result := make([]map[string]interface{}, len(files))
	for i, file := range files {
		_, openErr := h.manager.Session(file.ID)
		_, mocked := file.Metadata[models.MetadataMockKey]
		result[i] = map[string]interface{}{
			"id":        file.ID,
			"name":      file.Name,
			"open":      openErr == nil,
			"mocked":    mocked,
			"createdAt": file.CreatedAt,
			"updatedAt": file.UpdatedAt,
		}
	}

	c.JSON(http.StatusOK, result)
}

// CreateFile stores a new file and opens a session on it
func (h *Handler) CreateFile(c *gin.Context) {
	var input models.FileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	file := &models.FileRecord{Name: input.Name, Content: input.Content}
	if err := h.store.CreateFile(file); err != nil {
		h.writeError(c, err)
		return
	}

	session := h.manager.Open(file.ID, document.NewBuffer(file.Content))
	session.FileCreated(storage.NewHandle(h.store, file))

	c.JSON(http.StatusCreated, h.view(file))
}

// GetFile returns a file with its live document when open
func (h *Handler) GetFile(c *gin.Context) {
	file, err := h.store.GetFile(c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.view(file))
}

// SaveFile persists a file. Given content replaces the live document first;
// without it the live document text is saved. An active mock is then updated.
func (h *Handler) SaveFile(c *gin.Context) {
	id := c.Param("id")

	file, err := h.store.GetFile(id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	var update models.FileUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, sessionErr := h.manager.Session(id)

	if update.Name != nil {
		file.Name = *update.Name
	}
	switch {
	case update.Content != nil:
		file.Content = *update.Content
		if sessionErr == nil {
			session.Document().SetValue(file.Content)
		}
	case sessionErr == nil:
		file.Content = session.Document().Value()
	}

	if err := h.store.UpdateFile(file); err != nil {
		h.writeError(c, err)
		return
	}

	if sessionErr == nil {
		if err := session.FileSaved(c.Request.Context(), storage.NewHandle(h.store, file)); err != nil {
			h.writeError(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, h.view(file))
}

// DeleteFile closes the file's session and deletes it. A remote mock is left alone.
func (h *Handler) DeleteFile(c *gin.Context) {
	id := c.Param("id")

	if err := h.store.DeleteFile(id); err != nil {
		h.writeError(c, err)
		return
	}
	_ = h.manager.Close(id)

	c.JSON(http.StatusOK, gin.H{"message": "File deleted"})
}

// OpenFile opens a session on the stored content and restores its mock
func (h *Handler) OpenFile(c *gin.Context) {
	file, err := h.store.GetFile(c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	session := h.manager.Open(file.ID, document.NewBuffer(file.Content))
	if err := session.FileLoaded(c.Request.Context(), storage.NewHandle(h.store, file)); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.view(file))
}

// CloseFile tears down a session
func (h *Handler) CloseFile(c *gin.Context) {
	if err := h.manager.Close(c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Session closed"})
}

// GetMock returns the session status of a file
func (h *Handler) GetMock(c *gin.Context) {
	session, err := h.manager.Session(c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, session.Status())
}

// EnableMock creates a mock for an open file
func (h *Handler) EnableMock(c *gin.Context) {
	h.runMock(c, (*lifecycle.Session).Enable)
}

// DisableMock deletes the mock of an open file
func (h *Handler) DisableMock(c *gin.Context) {
	h.runMock(c, (*lifecycle.Session).Disable)
}

func (h *Handler) runMock(c *gin.Context, op func(*lifecycle.Session, context.Context, lifecycle.File) error) {
	id := c.Param("id")

	session, err := h.manager.Session(id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	handle, err := storage.OpenHandle(h.store, id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	if err := op(session, c.Request.Context(), handle); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"document": session.Document().Value(),
		"session":  session.Status(),
	})
}

// GetStats returns mocking service call statistics
func (h *Handler) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.statsCollector.GetStats())
}

// ResetStats resets all statistics
func (h *Handler) ResetStats(c *gin.Context) {
	h.statsCollector.Reset()
	c.JSON(http.StatusOK, gin.H{"message": "Statistics reset"})
}

// ListEvents returns lifecycle events, newest first
func (h *Handler) ListEvents(c *gin.Context) {
	filter := &models.EventFilter{
		DocumentID: c.Query("documentId"),
		Operation:  c.Query("operation"),
	}

	if failed := c.Query("failed"); failed != "" {
		if v, err := strconv.ParseBool(failed); err == nil {
			filter.FailedOnly = v
		}
	}
	if limit := c.Query("limit"); limit != "" {
		if v, err := strconv.Atoi(limit); err == nil {
			filter.Limit = v
		}
	}

	c.JSON(http.StatusOK, h.eventsService.GetEvents(filter))
}

// ClearEvents removes all events
func (h *Handler) ClearEvents(c *gin.Context) {
	h.eventsService.Clear()
	c.JSON(http.StatusOK, gin.H{"message": "Events cleared"})
}

// HealthCheck returns health status
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"sessions": len(h.manager.Sessions()),
		"events":   h.eventsService.GetStats(),
	})
}

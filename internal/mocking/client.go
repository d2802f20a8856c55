// Package mocking is a client for the remote mocking service that hosts one
// mock per RAML document.
package mocking

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/prasenjit/go-mocksync/internal/models"
)

const (
	// DefaultHost is the hosted mocking service
	DefaultHost = "http://mocksvc.mulesoft.com"
	// DefaultBasePath is the mock collection path on the host
	DefaultBasePath = "/mocks"
)

// Operation names reported to a Recorder.
const (
	OpCreate = "create"
	OpRead   = "read"
	OpUpdate = "update"
	OpDelete = "delete"
)

// ErrIncompleteIdentity is returned when a call needs both mockId and manageKey.
var ErrIncompleteIdentity = errors.New("mock identity requires mockId and manageKey")

// APIError represents a non-2xx response from the mocking service.
type APIError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("mocking service returned %d: %s", e.StatusCode, e.Message)
}

// Recorder receives one report per remote call.
type Recorder interface {
	RecordCall(operation string, status int, duration time.Duration, err error)
}

// Client issues create/read/update/delete calls for mock resources.
type Client struct {
	host       string
	basePath   string
	httpClient *http.Client
	recorder   Recorder
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the HTTP timeout for the client.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithRecorder reports every call to r.
func WithRecorder(r Recorder) ClientOption {
	return func(c *Client) {
		c.recorder = r
	}
}

// NewClient creates a client for the service at host + basePath.
// Empty values fall back to DefaultHost and DefaultBasePath.
func NewClient(host, basePath string, opts ...ClientOption) *Client {
	if host == "" {
		host = DefaultHost
	}
	if basePath == "" {
		basePath = DefaultBasePath
	}

	c := &Client{
		host:     strings.TrimRight(host, "/"),
		basePath: basePath,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BuildURL returns host + basePath followed by the given path segments.
// Segments are escaped; empty trailing segments are left out.
func (c *Client) BuildURL(segments ...string) string {
	for len(segments) > 0 && segments[len(segments)-1] == "" {
		segments = segments[:len(segments)-1]
	}

	var b strings.Builder
	b.WriteString(c.host)
	b.WriteString(c.basePath)
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}

// Create submits a new mock and returns it with the identity and baseUrl the
// service assigned.
func (c *Client) Create(ctx context.Context, mock *models.MockResource) (*models.MockResource, error) {
	if mock == nil {
		mock = &models.MockResource{}
	}

	var created models.MockResource
	if _, err := c.do(ctx, OpCreate, http.MethodPost, c.BuildURL(), mock, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Get fetches a mock. A mock the service no longer knows yields (nil, nil).
func (c *Client) Get(ctx context.Context, mock *models.MockResource) (*models.MockResource, error) {
	if !mock.HasIdentity() {
		return nil, ErrIncompleteIdentity
	}

	var found models.MockResource
	_, err := c.do(ctx, OpRead, http.MethodGet, c.BuildURL(mock.MockID, mock.ManageKey), nil, &found)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &found, nil
}

// Update sends the mock's raml to the service. Only raml is submitted; the
// returned resource is nil when the service sends no body.
func (c *Client) Update(ctx context.Context, mock *models.MockResource) (*models.MockResource, error) {
	if !mock.HasIdentity() {
		return nil, ErrIncompleteIdentity
	}

	var updated models.MockResource
	decoded, err := c.do(ctx, OpUpdate, http.MethodPatch, c.BuildURL(mock.MockID, mock.ManageKey), models.MockUpdate{RAML: mock.RAML}, &updated)
	if err != nil {
		return nil, err
	}
	if !decoded {
		return nil, nil
	}
	return &updated, nil
}

// Delete removes a mock from the service.
func (c *Client) Delete(ctx context.Context, mock *models.MockResource) error {
	if !mock.HasIdentity() {
		return ErrIncompleteIdentity
	}

	_, err := c.do(ctx, OpDelete, http.MethodDelete, c.BuildURL(mock.MockID, mock.ManageKey), nil, nil)
	return err
}

// do performs one request. It reports whether a response body was decoded into out.
func (c *Client) do(ctx context.Context, op, method, target string, in, out any) (decoded bool, err error) {
	start := time.Now()
	status := 0
	defer func() {
		if c.recorder != nil {
			c.recorder.RecordCall(op, status, time.Since(start), err)
		}
	}()

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return false, fmt.Errorf("failed to encode mock: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("failed to %s mock: %w", op, err)
	}
	defer func() { _ = resp.Body.Close() }()
	status = resp.StatusCode

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false, parseError(resp.StatusCode, respBody)
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return false, fmt.Errorf("failed to parse response: %w", err)
	}
	return true, nil
}

func parseError(status int, body []byte) *APIError {
	msg := http.StatusText(status)
	if gjson.ValidBytes(body) {
		for _, path := range []string{"message", "error.message", "error"} {
			if v := gjson.GetBytes(body, path); v.Exists() && v.Type == gjson.String && v.String() != "" {
				msg = v.String()
				break
			}
		}
	}

	return &APIError{
		StatusCode: status,
		Message:    msg,
		Body:       body,
	}
}

package mocking

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prasenjit/go-mocksync/internal/models"
)

const testRAML = "#%RAML 0.8\n---\ntitle: My API"

type recordedCall struct {
	op     string
	status int
	err    error
}

type fakeRecorder struct {
	mu    sync.Mutex
	calls []recordedCall
}

func (r *fakeRecorder) RecordCall(op string, status int, _ time.Duration, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, recordedCall{op: op, status: status, err: err})
}

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...ClientOption) *Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return NewClient(ts.URL, "/mocks", opts...)
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient("", "")

	assert.Equal(t, DefaultHost+DefaultBasePath, c.BuildURL())
	assert.Equal(t, 30*time.Second, c.httpClient.Timeout)
}

func TestNewClient_Options(t *testing.T) {
	hc := &http.Client{}
	c := NewClient("http://host/", "/base", WithHTTPClient(hc), WithTimeout(5*time.Second))

	assert.Same(t, hc, c.httpClient)
	assert.Equal(t, 5*time.Second, hc.Timeout)
	assert.Equal(t, "http://host/base", c.BuildURL())
}

func TestBuildURL(t *testing.T) {
	c := NewClient("http://host", "/base")

	tests := []struct {
		name     string
		segments []string
		want     string
	}{
		{"no segments", nil, "http://host/base"},
		{"one segment", []string{"path"}, "http://host/base/path"},
		{"identity", []string{"1", "2"}, "http://host/base/1/2"},
		{"empty trailing segment", []string{"1", ""}, "http://host/base/1"},
		{"escaped", []string{"a b", "k/ey"}, "http://host/base/a%20b/k%2Fey"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.BuildURL(tt.segments...))
		})
	}
}

func TestCreate(t *testing.T) {
	var gotMethod, gotPath string
	var gotBody map[string]any

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(models.MockResource{
			MockID:    "1",
			ManageKey: "2",
			BaseURL:   "http://mocksvc/mocks/1",
			RAML:      testRAML,
		})
	})

	mock, err := c.Create(context.Background(), &models.MockResource{RAML: testRAML})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/mocks", gotPath)
	assert.Equal(t, map[string]any{"raml": testRAML}, gotBody)
	assert.Equal(t, "1", mock.MockID)
	assert.Equal(t, "2", mock.ManageKey)
	assert.Equal(t, "http://mocksvc/mocks/1", mock.BaseURL)
}

func TestCreate_Failure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"raml is required"}`))
	})

	_, err := c.Create(context.Background(), &models.MockResource{})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "raml is required", apiErr.Message)
}

func TestGet(t *testing.T) {
	var gotMethod, gotPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"mockId":"1","manageKey":"2","raml":"title: x"}`))
	})

	mock, err := c.Get(context.Background(), &models.MockResource{MockID: "1", ManageKey: "2"})
	require.NoError(t, err)
	require.NotNil(t, mock)

	assert.Equal(t, http.MethodGet, gotMethod)
	assert.Equal(t, "/mocks/1/2", gotPath)
	assert.Equal(t, "1", mock.MockID)
	assert.Equal(t, "2", mock.ManageKey)
	assert.Equal(t, "title: x", mock.RAML)
}

func TestGet_NotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	mock, err := c.Get(context.Background(), &models.MockResource{MockID: "1", ManageKey: "2"})

	assert.NoError(t, err)
	assert.Nil(t, mock)
}

func TestGet_PropagatesOtherErrors(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("boom"))
	})

	mock, err := c.Get(context.Background(), &models.MockResource{MockID: "1", ManageKey: "2"})

	assert.Nil(t, mock)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, "Internal Server Error", apiErr.Message)
	assert.Equal(t, []byte("boom"), apiErr.Body)
}

func TestUpdate(t *testing.T) {
	var gotMethod, gotPath string
	var gotBody map[string]any

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte(`{"mockId":"1","manageKey":"2","baseUrl":"http://b","raml":"new"}`))
	})

	mock := &models.MockResource{MockID: "1", ManageKey: "2", BaseURL: "http://b", RAML: "new"}
	updated, err := c.Update(context.Background(), mock)
	require.NoError(t, err)

	assert.Equal(t, http.MethodPatch, gotMethod)
	assert.Equal(t, "/mocks/1/2", gotPath)
	assert.Equal(t, map[string]any{"raml": "new"}, gotBody)
	require.NotNil(t, updated)
	assert.Equal(t, "new", updated.RAML)
}

func TestUpdate_EmptyBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	updated, err := c.Update(context.Background(), &models.MockResource{MockID: "1", ManageKey: "2"})

	assert.NoError(t, err)
	assert.Nil(t, updated)
}

func TestDelete(t *testing.T) {
	var gotMethod, gotPath string
	var gotBody []byte

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ignored"))
	})

	err := c.Delete(context.Background(), &models.MockResource{MockID: "1", ManageKey: "2"})
	require.NoError(t, err)

	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/mocks/1/2", gotPath)
	assert.Empty(t, gotBody)
}

func TestIncompleteIdentity(t *testing.T) {
	called := false
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})
	ctx := context.Background()
	partial := &models.MockResource{MockID: "1"}

	_, err := c.Get(ctx, partial)
	assert.ErrorIs(t, err, ErrIncompleteIdentity)

	_, err = c.Update(ctx, partial)
	assert.ErrorIs(t, err, ErrIncompleteIdentity)

	err = c.Delete(ctx, nil)
	assert.ErrorIs(t, err, ErrIncompleteIdentity)

	assert.False(t, called)
}

func TestRecorder(t *testing.T) {
	rec := &fakeRecorder{}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"mockId":"1","manageKey":"2"}`))
	}, WithRecorder(rec))

	ctx := context.Background()
	mock := &models.MockResource{MockID: "1", ManageKey: "2"}
	_, _ = c.Get(ctx, mock)
	_ = c.Delete(ctx, mock)

	require.Len(t, rec.calls, 2)
	assert.Equal(t, OpRead, rec.calls[0].op)
	assert.Equal(t, http.StatusOK, rec.calls[0].status)
	assert.NoError(t, rec.calls[0].err)
	assert.Equal(t, OpDelete, rec.calls[1].op)
	assert.Equal(t, http.StatusBadGateway, rec.calls[1].status)
	assert.Error(t, rec.calls[1].err)
}

func TestContextCanceled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Create(ctx, &models.MockResource{RAML: testRAML})

	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestParseError_Messages(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"message field", `{"message":"bad raml"}`, "bad raml"},
		{"nested error", `{"error":{"message":"nested"}}`, "nested"},
		{"error string", `{"error":"flat"}`, "flat"},
		{"not json", `<html>`, "Conflict"},
		{"empty", ``, "Conflict"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := parseError(http.StatusConflict, []byte(tt.body))
			assert.Equal(t, tt.want, err.Message)
		})
	}
}

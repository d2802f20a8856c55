package models

// MockResource represents a mock instance hosted by the remote mocking service
type MockResource struct {
	MockID    string `json:"mockId,omitempty"`
	ManageKey string `json:"manageKey,omitempty"` // Required with MockID for every call after create
	BaseURL   string `json:"baseUrl,omitempty"`   // Endpoint the mock serves the document on
	RAML      string `json:"raml"`
}

// HasIdentity reports whether both parts of the resource identity are set
func (m *MockResource) HasIdentity() bool {
	return m != nil && m.MockID != "" && m.ManageKey != ""
}

// Clone returns a copy of the resource, or nil for a nil receiver
func (m *MockResource) Clone() *MockResource {
	if m == nil {
		return nil
	}
	c := *m
	return &c
}

// MockUpdate is the payload sent when a mock's document changes
type MockUpdate struct {
	RAML string `json:"raml"`
}

package models

import (
	"time"
)

// CallStats represents statistics for all calls made to the mocking service
type CallStats struct {
	TotalCalls    int64           `json:"totalCalls"`
	TotalErrors   int64           `json:"totalErrors"`
	NotFound      int64           `json:"notFound"`
	AvgDurationMs float64         `json:"avgDurationMs"`
	StartTime     time.Time       `json:"startTime"`
	Uptime        string          `json:"uptime"`
	Operations    []OperationStat `json:"operations"`
	RecentErrors  []ErrorStat     `json:"recentErrors"`
}

// OperationStat represents statistics for one kind of call (create, read, update, delete)
type OperationStat struct {
	Operation     string  `json:"operation"`
	TotalCalls    int64   `json:"totalCalls"`
	TotalErrors   int64   `json:"totalErrors"`
	AvgDurationMs float64 `json:"avgDurationMs"`
	MinDurationMs float64 `json:"minDurationMs"`
	MaxDurationMs float64 `json:"maxDurationMs"`
	LastStatus    int     `json:"lastStatus,omitempty"`
	LastCallTime  string  `json:"lastCallTime,omitempty"`
}

// ErrorStat represents a failed call
type ErrorStat struct {
	Timestamp  time.Time `json:"timestamp"`
	Operation  string    `json:"operation"`
	StatusCode int       `json:"statusCode,omitempty"` // Zero when no response was received
	Error      string    `json:"error"`
}

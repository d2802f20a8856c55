package stats

import (
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/prasenjit/go-mocksync/internal/models"
)

// Collector aggregates statistics about calls to the mocking service.
// It satisfies mocking.Recorder.
type Collector struct {
	mu           sync.RWMutex
	startTime    time.Time
	operations   map[string]*operationCounter
	recentErrors []models.ErrorStat
	notFound     int64
	maxErrors    int
}

type operationCounter struct {
	calls      int64
	errors     int64
	totalNs    int64
	minNs      int64
	maxNs      int64
	lastStatus int
	lastCall   time.Time
}

// NewCollector creates a new statistics collector
func NewCollector() *Collector {
	return &Collector{
		startTime:    time.Now(),
		operations:   make(map[string]*operationCounter),
		recentErrors: make([]models.ErrorStat, 0),
		maxErrors:    100,
	}
}

// RecordCall records one remote call. A 404 is counted separately and not as an error,
// since reads treat a missing mock as an empty result.
func (c *Collector) RecordCall(operation string, status int, duration time.Duration, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	op, ok := c.operations[operation]
	if !ok {
		op = &operationCounter{minNs: duration.Nanoseconds()}
		c.operations[operation] = op
	}

	ns := duration.Nanoseconds()
	op.calls++
	op.totalNs += ns
	op.lastStatus = status
	op.lastCall = time.Now()
	if ns < op.minNs {
		op.minNs = ns
	}
	if ns > op.maxNs {
		op.maxNs = ns
	}

	if status == http.StatusNotFound {
		c.notFound++
		return
	}
	if err == nil {
		return
	}

	op.errors++
	c.recentErrors = append(c.recentErrors, models.ErrorStat{
		Timestamp:  time.Now(),
		Operation:  operation,
		StatusCode: status,
		Error:      err.Error(),
	})
	if len(c.recentErrors) > c.maxErrors {
		c.recentErrors = c.recentErrors[1:]
	}
}

// GetStats returns statistics for all operations
func (c *Collector) GetStats() *models.CallStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var totalCalls, totalErrors, totalNs int64
	ops := make([]models.OperationStat, 0, len(c.operations))
	for name, op := range c.operations {
		ops = append(ops, op.toStat(name))
		totalCalls += op.calls
		totalErrors += op.errors
		totalNs += op.totalNs
	}

	sort.Slice(ops, func(i, j int) bool {
		return ops[i].Operation < ops[j].Operation
	})

	var avgMs float64
	if totalCalls > 0 {
		avgMs = float64(totalNs) / float64(totalCalls) / 1e6
	}

	errs := make([]models.ErrorStat, len(c.recentErrors))
	copy(errs, c.recentErrors)

	return &models.CallStats{
		TotalCalls:    totalCalls,
		TotalErrors:   totalErrors,
		NotFound:      c.notFound,
		AvgDurationMs: avgMs,
		StartTime:     c.startTime,
		Uptime:        formatDuration(time.Since(c.startTime)),
		Operations:    ops,
		RecentErrors:  errs,
	}
}

// GetOperationStats returns statistics for one operation, or nil if it was never called
func (c *Collector) GetOperationStats(operation string) *models.OperationStat {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if op, ok := c.operations[operation]; ok {
		stat := op.toStat(operation)
		return &stat
	}

	return nil
}

// Reset resets all statistics
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.startTime = time.Now()
	c.operations = make(map[string]*operationCounter)
	c.recentErrors = make([]models.ErrorStat, 0)
	c.notFound = 0
}

func (o *operationCounter) toStat(name string) models.OperationStat {
	var avgMs float64
	if o.calls > 0 {
		avgMs = float64(o.totalNs) / float64(o.calls) / 1e6
	}

	var last string
	if !o.lastCall.IsZero() {
		last = o.lastCall.Format(time.RFC3339)
	}

	return models.OperationStat{
		Operation:     name,
		TotalCalls:    o.calls,
		TotalErrors:   o.errors,
		AvgDurationMs: avgMs,
		MinDurationMs: float64(o.minNs) / 1e6,
		MaxDurationMs: float64(o.maxNs) / 1e6,
		LastStatus:    o.lastStatus,
		LastCallTime:  last,
	}
}

// formatDuration formats a duration in a human-readable format
func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Hour:
		return d.Round(time.Minute).String()
	case d >= time.Minute:
		return d.Round(time.Second).String()
	default:
		return d.Round(time.Millisecond).String()
	}
}

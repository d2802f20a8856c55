// Package document provides the line-addressed text model edited by the
// directive editor and owned by a lifecycle session.
package document

import (
	"strings"
	"sync"
)

// Position addresses a point in a document. Line and Ch are zero based and
// Ch is a byte offset into the line.
type Position struct {
	Line int `json:"line"`
	Ch   int `json:"ch"`
}

// Document is the editing surface consumed by the directive editor.
// Line numbers shift after edits, so callers must not cache them.
type Document interface {
	LineCount() int
	Line(n int) string
	ReplaceRange(text string, from, to Position)
	RemoveLine(n int)
	Value() string
	SetValue(content string)
}

// Buffer is an in-memory Document that keeps its content as a slice of lines.
// A Buffer always holds at least one (possibly empty) line.
type Buffer struct {
	mu    sync.RWMutex
	lines []string
}

// NewBuffer creates a buffer holding content
func NewBuffer(content string) *Buffer {
	b := &Buffer{}
	b.SetValue(content)
	return b
}

// LineCount returns the number of lines
func (b *Buffer) LineCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.lines)
}

// Line returns line n, or an empty string when n is out of range
func (b *Buffer) Line(n int) string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if n < 0 || n >= len(b.lines) {
		return ""
	}
	return b.lines[n]
}

// ReplaceRange replaces the text between from and to with text.
// Positions outside the document are clamped to it; from == to inserts.
func (b *Buffer) ReplaceRange(text string, from, to Position) {
	b.mu.Lock()
	defer b.mu.Unlock()

	from = b.clip(from)
	to = b.clip(to)
	if to.Line < from.Line || (to.Line == from.Line && to.Ch < from.Ch) {
		from, to = to, from
	}

	before := b.lines[from.Line][:from.Ch]
	after := b.lines[to.Line][to.Ch:]
	replacement := strings.Split(before+text+after, "\n")

	lines := make([]string, 0, len(b.lines)-(to.Line-from.Line+1)+len(replacement))
	lines = append(lines, b.lines[:from.Line]...)
	lines = append(lines, replacement...)
	lines = append(lines, b.lines[to.Line+1:]...)
	b.lines = lines
}

// RemoveLine deletes line n together with its line break.
// Removing the only line leaves a single empty line.
func (b *Buffer) RemoveLine(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if n < 0 || n >= len(b.lines) {
		return
	}

	b.lines = append(b.lines[:n], b.lines[n+1:]...)
	if len(b.lines) == 0 {
		b.lines = []string{""}
	}
}

// Value returns the full text
func (b *Buffer) Value() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return strings.Join(b.lines, "\n")
}

// SetValue replaces the full text
func (b *Buffer) SetValue(content string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines = strings.Split(content, "\n")
}

func (b *Buffer) clip(pos Position) Position {
	last := len(b.lines) - 1
	if pos.Line < 0 {
		return Position{}
	}
	if pos.Line > last {
		return Position{Line: last, Ch: len(b.lines[last])}
	}
	if pos.Ch < 0 {
		pos.Ch = 0
	}
	if pos.Ch > len(b.lines[pos.Line]) {
		pos.Ch = len(b.lines[pos.Line])
	}
	return pos
}

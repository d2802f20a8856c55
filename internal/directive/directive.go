// Package directive keeps the single "baseUrl: <url>" line of a RAML document
// in shape: it finds where the directive belongs, supersedes an existing one by
// commenting it out, and reverses that when the directive is removed.
package directive

import (
	"strings"

	"github.com/prasenjit/go-mocksync/internal/document"
)

const (
	// Prefix starts every active directive line
	Prefix = "baseUrl: "
	// CommentPrefix marks a superseded directive
	CommentPrefix = "# "
	// DocumentStart is the YAML document start marker
	DocumentStart = "---"
)

// InsertionPoint is where a new directive line goes
type InsertionPoint struct {
	Line        int
	LineIsEmpty bool // Line is empty, synthetic, or past the end of the document
}

// Line returns the directive line for url
func Line(url string) string {
	return Prefix + url
}

// IsDirective reports whether line is an active directive. Indented keys do not count.
func IsDirective(line string) bool {
	return strings.HasPrefix(line, Prefix)
}

// IsCommented reports whether line is a superseded directive
func IsCommented(line string) bool {
	return strings.HasPrefix(line, CommentPrefix) && IsDirective(line[len(CommentPrefix):])
}

func isHeader(line string) bool {
	trimmed := strings.TrimSpace(line)
	return strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, DocumentStart)
}

// Locate finds the insertion point for a new directive.
//
// An active directive anywhere in the document is commented out in place and
// the point is the line right after it. Without one, the point is the first
// line after the leading run of comment and document-start lines.
func Locate(doc document.Document) InsertionPoint {
	count := doc.LineCount()
	if count == 0 {
		return InsertionPoint{Line: 0, LineIsEmpty: true}
	}

	header := 0
	inHeader := true
	for n := 0; n < count; n++ {
		line := doc.Line(n)

		if IsDirective(line) {
			doc.ReplaceRange(CommentPrefix, document.Position{Line: n}, document.Position{Line: n})
			return InsertionPoint{Line: n + 1, LineIsEmpty: true}
		}

		if inHeader && isHeader(line) {
			header = n + 1
			continue
		}
		inHeader = false
	}

	if header >= count {
		return InsertionPoint{Line: header, LineIsEmpty: true}
	}
	return InsertionPoint{Line: header, LineIsEmpty: len(doc.Line(header)) == 0}
}

// Insert writes "baseUrl: <url>" on its own line at the point Locate reports,
// superseding any active directive. The line count grows by exactly one.
func Insert(doc document.Document, url string) InsertionPoint {
	point := Locate(doc)
	text := Line(url)

	count := doc.LineCount()
	switch {
	case count == 0:
		doc.SetValue(text)
	case point.Line < count:
		at := document.Position{Line: point.Line}
		doc.ReplaceRange(text+"\n", at, at)
	default:
		// Past the last line: break the last line first so nothing is joined to it.
		last := count - 1
		at := document.Position{Line: last, Ch: len(doc.Line(last))}
		doc.ReplaceRange("\n"+text, at, at)
	}

	return point
}

// Remove deletes the "baseUrl: <url>" line and restores the directive it
// superseded, if that one sits directly above it. Returns false when no line matched.
func Remove(doc document.Document, url string) bool {
	target := Line(url)

	for n := 0; n < doc.LineCount(); n++ {
		if doc.Line(n) != target {
			continue
		}

		doc.RemoveLine(n)

		// Line 0 has no predecessor to restore.
		if n > 0 && IsCommented(doc.Line(n-1)) {
			prev := n - 1
			doc.ReplaceRange("", document.Position{Line: prev}, document.Position{Line: prev, Ch: len(CommentPrefix)})
		}
		return true
	}

	return false
}

// Active returns the line numbers of all active directives
func Active(doc document.Document) []int {
	var lines []int
	for n := 0; n < doc.LineCount(); n++ {
		if IsDirective(doc.Line(n)) {
			lines = append(lines, n)
		}
	}
	return lines
}

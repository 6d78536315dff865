// Package storage defines the saved-document records shared by the
// persistence adapters.
package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a document id has no saved row.
var ErrNotFound = errors.New("document not found")

// Document is one saved document: its serialized content plus the
// readouts captured when it was saved.
type Document struct {
	ID        string
	Title     string
	Content   string
	Pages     int
	Words     int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Summary lists a saved document without its content.
type Summary struct {
	ID        string
	Title     string
	Pages     int
	Words     int
	Size      int64
	UpdatedAt time.Time
}

package cache

import (
	"sync"

	"csspeek.dev/cpls/internal/documents"
	"csspeek.dev/cpls/internal/stylesheet"
)

// Origin records how an entry entered the cache
type Origin int

const (
	// Opened entries come from document sync and go away on close
	Opened Origin = iota
	// Disk entries were read from the file system
	Disk
)

func (o Origin) String() string {
	if o == Disk {
		return "disk"
	}
	return "opened"
}

// Entry is one stylesheet document with its lazily computed symbols.
// An entry is never updated with new content; a change installs a new entry,
// which drops the memoized symbols with the old one.
type Entry struct {
	doc    *documents.Document
	origin Origin
	// Path is the file system path of a disk entry, empty otherwise
	path string

	mu       sync.Mutex
	computed bool
	symbols  []stylesheet.Symbol
	names    []string
}

// NewEntry creates an entry for a document
func NewEntry(doc *documents.Document, origin Origin) *Entry {
	return &Entry{doc: doc, origin: origin}
}

// Document returns the entry's document snapshot
func (e *Entry) Document() *documents.Document {
	return e.doc
}

// Origin returns how the entry entered the cache
func (e *Entry) Origin() Origin {
	return e.origin
}

// Path returns the file the entry was read from, if any
func (e *Entry) Path() string {
	return e.path
}

// Computed reports whether the entry's symbols have been computed
func (e *Entry) Computed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.computed
}

// Package cache holds the stylesheet documents queries run against, with
// their symbol lists memoized per document version.
package cache

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"

	"csspeek.dev/cpls/internal/documents"
	"csspeek.dev/cpls/internal/stylesheet"
	"csspeek.dev/cpls/internal/uriutil"
)

// Resolver computes the effective names of an ordered symbol list
type Resolver func(symbols []stylesheet.Symbol) []string

// File is a stylesheet on disk
type File struct {
	URI    string `json:"uri"`
	FSPath string `json:"fsPath"`
}

// Cache maps stylesheet URIs to entries
type Cache struct {
	entries  map[string]*Entry
	registry *stylesheet.Registry
	mu       sync.RWMutex
}

// New creates an empty cache that parses with the given registry
func New(registry *stylesheet.Registry) *Cache {
	return &Cache{
		entries:  make(map[string]*Entry),
		registry: registry,
	}
}

// Registry returns the language services the cache parses with
func (c *Cache) Registry() *stylesheet.Registry {
	return c.registry
}

// Get returns the entry for a URI, or nil
func (c *Cache) Get(uri string) *Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.entries[uri]
}

// Put installs an entry, replacing any entry for the same URI
func (c *Cache) Put(uri string, entry *Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[uri] = entry
}

// Delete removes the entry for a URI
func (c *Cache) Delete(uri string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, uri)
}

// Len returns the number of entries
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// All returns every entry ordered by URI
func (c *Cache) All() []*Entry {
	c.mu.RLock()
	uris := make([]string, 0, len(c.entries))
	for uri := range c.entries {
		uris = append(uris, uri)
	}
	sort.Strings(uris)

	entries := make([]*Entry, 0, len(uris))
	for _, uri := range uris {
		entries = append(entries, c.entries[uri])
	}
	c.mu.RUnlock()
	return entries
}

// Symbols returns the entry's symbols, parsing the document on first use.
// Empty results are memoized; errors are not.
func (c *Cache) Symbols(entry *Entry) ([]stylesheet.Symbol, error) {
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return c.symbolsLocked(entry)
}

func (c *Cache) symbolsLocked(entry *Entry) ([]stylesheet.Symbol, error) {
	if entry.computed {
		return entry.symbols, nil
	}

	doc := entry.doc
	service := c.registry.For(doc.LanguageID())
	if service == nil {
		return nil, fmt.Errorf("no stylesheet service for %s", doc.LanguageID())
	}

	sheet, err := service.Parse(doc)
	if err != nil {
		return nil, err
	}

	entry.symbols = service.FindDocumentSymbols(doc, sheet)
	entry.computed = true
	entry.names = nil
	return entry.symbols, nil
}

// Names returns the effective names of the entry's symbols, index-aligned
// with Symbols. They are computed with resolve once per entry.
func (c *Cache) Names(entry *Entry, resolve Resolver) ([]string, error) {
	entry.mu.Lock()
	defer entry.mu.Unlock()

	symbols, err := c.symbolsLocked(entry)
	if err != nil {
		return nil, err
	}
	if entry.names == nil {
		entry.names = resolve(symbols)
	}
	return entry.names, nil
}

// Load reads a stylesheet from disk and installs it as a disk entry.
// The language ID is taken from the file extension.
func (c *Cache) Load(file File) (*Entry, error) {
	path := file.FSPath
	uri := file.URI
	if path == "" {
		path = uriutil.URIToPath(uri)
	}
	if uri == "" {
		uri = uriutil.PathToURI(path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read stylesheet %s: %w", path, err)
	}

	doc := documents.NewDocument(uri, documents.LanguageIDFromPath(path), 0, string(content))
	entry := NewEntry(doc, Disk)
	entry.path = path
	c.Put(uri, entry)
	return entry, nil
}

// Seed loads every file, continuing past failures.
// Returns the number of files loaded and the joined errors.
func (c *Cache) Seed(files []File) (int, error) {
	var errs []error
	loaded := 0
	for _, file := range files {
		if _, err := c.Load(file); err != nil {
			errs = append(errs, err)
			continue
		}
		loaded++
	}
	return loaded, errors.Join(errs...)
}

// Close drops every entry and releases parser resources
func (c *Cache) Close() {
	c.mu.Lock()
	c.entries = make(map[string]*Entry)
	c.mu.Unlock()

	if c.registry != nil {
		c.registry.Close()
	}
}

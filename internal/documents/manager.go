package documents

import (
	"fmt"
	"strings"
	"sync"

	"csspeek.dev/cpls/internal/position"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Manager tracks the documents the client has open
type Manager struct {
	documents map[string]*Document
	mu        sync.RWMutex
}

// NewManager creates a new document manager
func NewManager() *Manager {
	return &Manager{
		documents: make(map[string]*Document),
	}
}

// Get retrieves a document by URI
func (m *Manager) Get(uri string) *Document {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.documents[uri]
}

// IsOpen reports whether the client has the document open
func (m *Manager) IsOpen(uri string) bool {
	return m.Get(uri) != nil
}

// GetAll returns all managed documents
func (m *Manager) GetAll() []*Document {
	m.mu.RLock()
	defer m.mu.RUnlock()

	docs := make([]*Document, 0, len(m.documents))
	for _, doc := range m.documents {
		docs = append(docs, doc)
	}
	return docs
}

// DidOpen handles the textDocument/didOpen notification
func (m *Manager) DidOpen(uri, languageID string, version int, content string) (*Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc := NewDocument(uri, languageID, version, content)
	m.documents[uri] = doc
	return doc, nil
}

// DidClose handles the textDocument/didClose notification
func (m *Manager) DidClose(uri string) (*Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, exists := m.documents[uri]
	if !exists {
		return nil, fmt.Errorf("document not found: %s", uri)
	}

	delete(m.documents, uri)
	return doc, nil
}

// DidChange handles the textDocument/didChange notification.
// The stored snapshot is replaced, and the new snapshot is returned.
func (m *Manager) DidChange(uri string, version int, changes []protocol.TextDocumentContentChangeEvent) (*Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, exists := m.documents[uri]
	if !exists {
		return nil, fmt.Errorf("document not found: %s", uri)
	}

	content := doc.Content()
	for _, change := range changes {
		// No range means the change carries the full document
		if change.Range == nil {
			content = change.Text
			continue
		}

		var err error
		content, err = applyIncrementalChange(content, *change.Range, change.Text)
		if err != nil {
			return nil, fmt.Errorf("failed to apply changes: %w", err)
		}
	}

	next, err := doc.WithContent(content, version)
	if err != nil {
		return nil, fmt.Errorf("failed to set document content: %w", err)
	}
	m.documents[uri] = next
	return next, nil
}

// applyIncrementalChange replaces the text covered by changeRange.
// Positions use UTF-16 code units; a range starting one line past the last
// line at column 0 appends to the end of the document.
func applyIncrementalChange(content string, changeRange protocol.Range, text string) (string, error) {
	ix := position.NewIndex(content)
	lineCount := ix.LineCount()

	if int(changeRange.Start.Line) > lineCount {
		return "", fmt.Errorf("start line %d out of bounds (total lines: %d)", changeRange.Start.Line, lineCount)
	}
	if int(changeRange.End.Line) > lineCount {
		return "", fmt.Errorf("end line %d out of bounds (total lines: %d)", changeRange.End.Line, lineCount)
	}

	start := ix.Offset(changeRange.Start)
	end := ix.Offset(changeRange.End)
	if end < start {
		return "", fmt.Errorf("invalid range: end %d:%d precedes start %d:%d",
			changeRange.End.Line, changeRange.End.Character, changeRange.Start.Line, changeRange.Start.Character)
	}

	var result strings.Builder
	result.Grow(len(content) - (end - start) + len(text))
	result.WriteString(content[:start])
	result.WriteString(text)
	result.WriteString(content[end:])
	return result.String(), nil
}

package documents

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Document is an immutable snapshot of a text document at one version.
// Edits produce a new Document; holders of an older snapshot keep seeing
// the content they were given.
type Document struct {
	uri        string
	languageID string
	content    string
	version    int
}

// NewDocument creates a new document
func NewDocument(uri, languageID string, version int, content string) *Document {
	return &Document{
		uri:        uri,
		languageID: languageID,
		version:    version,
		content:    content,
	}
}

// URI returns the document's URI
func (d *Document) URI() string {
	return d.uri
}

// LanguageID returns the document's language identifier
func (d *Document) LanguageID() string {
	return d.languageID
}

// Version returns the document's version
func (d *Document) Version() int {
	return d.version
}

// Content returns the document's content
func (d *Document) Content() string {
	return d.content
}

// WithContent returns a new snapshot with the given content and version.
// Returns an error if the version is older than this snapshot's version.
func (d *Document) WithContent(content string, version int) (*Document, error) {
	if version < d.version {
		return nil, fmt.Errorf("rejected stale update: document version is %d but update version is %d", d.version, version)
	}
	return NewDocument(d.uri, d.languageID, version, content), nil
}

// extensionLanguages maps extensions whose language ID differs from the
// extension itself
var extensionLanguages = map[string]string{
	"htm":   "html",
	"xhtml": "html",
	"js":    "javascript",
	"mjs":   "javascript",
	"cjs":   "javascript",
	"jsx":   "javascriptreact",
	"ts":    "typescript",
	"mts":   "typescript",
	"cts":   "typescript",
	"tsx":   "typescriptreact",
}

// LanguageIDFromPath infers a language identifier from a file extension:
// styles/site.scss -> "scss", app.tsx -> "typescriptreact". Other
// extensions are returned lowercased, and files without one yield "".
func LanguageIDFromPath(path string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if id, ok := extensionLanguages[ext]; ok {
		return id
	}
	return ext
}

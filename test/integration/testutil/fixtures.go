package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"csspeek.dev/cpls/internal/uriutil"
	"csspeek.dev/cpls/lsp"
	"csspeek.dev/cpls/lsp/methods/lifecycle"
	"csspeek.dev/cpls/lsp/methods/textDocument"
	"csspeek.dev/cpls/lsp/types"
	"github.com/stretchr/testify/require"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// NewTestServer creates a new LSP server for testing
func NewTestServer(t *testing.T) *lsp.Server {
	t.Helper()
	server, err := lsp.NewServer()
	require.NoError(t, err, "Failed to create test server")
	t.Cleanup(func() { _ = server.Close() })
	return server
}

// WriteFile writes content under dir, creating parent directories, and
// returns the file's URI
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return uriutil.PathToURI(path)
}

// Initialize runs initialize with root as the workspace and returns the
// warnings it raised
func Initialize(t *testing.T, server *lsp.Server, root string, options any) []error {
	t.Helper()
	rootURI := uriutil.PathToURI(root)
	req := types.NewRequestContext(server, &glsp.Context{})
	result, err := lifecycle.Initialize(req, &protocol.InitializeParams{
		RootURI:               &rootURI,
		InitializationOptions: options,
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	return req.Warnings()
}

// OpenDocument sends didOpen for a document with the given language
func OpenDocument(t *testing.T, server *lsp.Server, uri, languageID, text string) {
	t.Helper()
	req := types.NewRequestContext(server, nil)
	err := textDocument.DidOpen(req, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{
			URI:        uri,
			LanguageID: languageID,
			Version:    1,
			Text:       text,
		},
	})
	require.NoError(t, err, "Failed to open %s", uri)
}

// ChangeDocument replaces the whole text of an open document
func ChangeDocument(t *testing.T, server *lsp.Server, uri, text string, version int32) {
	t.Helper()
	req := types.NewRequestContext(server, nil)
	err := textDocument.DidChange(req, &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: uri},
			Version:                version,
		},
		ContentChanges: []any{protocol.TextDocumentContentChangeEventWhole{Text: text}},
	})
	require.NoError(t, err, "Failed to change %s", uri)
}

// CloseDocument sends didClose for a document
func CloseDocument(t *testing.T, server *lsp.Server, uri string) []error {
	t.Helper()
	req := types.NewRequestContext(server, nil)
	err := textDocument.DidClose(req, &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	})
	require.NoError(t, err, "Failed to close %s", uri)
	return req.Warnings()
}

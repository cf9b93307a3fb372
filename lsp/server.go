package lsp

import (
	"sync"

	"csspeek.dev/cpls/internal/cache"
	"csspeek.dev/cpls/internal/documents"
	"csspeek.dev/cpls/internal/stylesheet"
	"csspeek.dev/cpls/lsp/methods/lifecycle"
	"csspeek.dev/cpls/lsp/methods/textDocument"
	"csspeek.dev/cpls/lsp/methods/textDocument/definition"
	"csspeek.dev/cpls/lsp/methods/workspace"
	"csspeek.dev/cpls/lsp/types"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"
)

// Verify that Server implements ServerContext interface
var _ types.ServerContext = (*Server)(nil)

// Server represents the CSS Peek Language Server
type Server struct {
	documents    *documents.Manager
	stylesheets  *cache.Cache
	glspServer   *server.Server
	context      *glsp.Context
	rootURI      string               // Workspace root URI
	rootPath     string               // Workspace root path (file system)
	config       types.ServerConfig   // Effective configuration
	fileConfig   *types.ConfigOverlay // package.json or .csspeekrc settings
	clientConfig *types.ConfigOverlay // Settings sent by the client
	linkSupport  bool                 // Client accepts LocationLink definitions
	configMu     sync.RWMutex         // Protects root, config, context, and linkSupport
	diskFiles    map[string]string    // Stylesheets known on disk: URI -> path
	diskFilesMu  sync.RWMutex
}

// NewServer creates a new CSS Peek LSP server
func NewServer() (*Server, error) {
	s := &Server{
		documents:   documents.NewManager(),
		stylesheets: cache.New(stylesheet.DefaultRegistry()),
		config:      types.DefaultConfig(),
		diskFiles:   make(map[string]string),
	}

	handler := protocol.Handler{
		Initialize:                      method(s, "initialize", lifecycle.Initialize),
		Initialized:                     notify(s, "initialized", lifecycle.Initialized),
		Shutdown:                        noParam(s, "shutdown", lifecycle.Shutdown),
		SetTrace:                        notify(s, "$/setTrace", lifecycle.SetTrace),
		WorkspaceDidChangeConfiguration: notify(s, "workspace/didChangeConfiguration", workspace.DidChangeConfiguration),
		WorkspaceDidChangeWatchedFiles:  notify(s, "workspace/didChangeWatchedFiles", workspace.DidChangeWatchedFiles),
		WorkspaceSymbol:                 method(s, "workspace/symbol", workspace.Symbol),
		TextDocumentDidOpen:             notify(s, "textDocument/didOpen", textDocument.DidOpen),
		TextDocumentDidChange:           notify(s, "textDocument/didChange", textDocument.DidChange),
		TextDocumentDidClose:            notify(s, "textDocument/didClose", textDocument.DidClose),
		TextDocumentDefinition:          method(s, "textDocument/definition", definition.Definition),
	}

	s.glspServer = server.NewServer(&handler, lifecycle.ServerName, false)

	return s, nil
}

// RunStdio starts the LSP server using stdio transport
func (s *Server) RunStdio() error {
	return s.glspServer.RunStdio()
}

// Close drops cached stylesheets and releases parser pools.
// It is safe to call Close multiple times.
func (s *Server) Close() error {
	s.stylesheets.Close()
	return nil
}

// ServerContext interface implementation

// Document returns the document with the given URI
func (s *Server) Document(uri string) *documents.Document {
	return s.documents.Get(uri)
}

// DocumentManager returns the document manager
func (s *Server) DocumentManager() *documents.Manager {
	return s.documents
}

// Stylesheets returns the stylesheet symbol cache
func (s *Server) Stylesheets() *cache.Cache {
	return s.stylesheets
}

// RootURI returns the workspace root URI
func (s *Server) RootURI() string {
	s.configMu.RLock()
	defer s.configMu.RUnlock()
	return s.rootURI
}

// RootPath returns the workspace root path
func (s *Server) RootPath() string {
	s.configMu.RLock()
	defer s.configMu.RUnlock()
	return s.rootPath
}

// SetRootURI sets the workspace root URI
func (s *Server) SetRootURI(uri string) {
	s.configMu.Lock()
	defer s.configMu.Unlock()
	s.rootURI = uri
}

// SetRootPath sets the workspace root path
func (s *Server) SetRootPath(path string) {
	s.configMu.Lock()
	defer s.configMu.Unlock()
	s.rootPath = path
}

// LinkSupport reports whether the client accepts LocationLink results
func (s *Server) LinkSupport() bool {
	s.configMu.RLock()
	defer s.configMu.RUnlock()
	return s.linkSupport
}

// SetLinkSupport records the client's definition link capability
func (s *Server) SetLinkSupport(supported bool) {
	s.configMu.Lock()
	defer s.configMu.Unlock()
	s.linkSupport = supported
}

// GLSPContext returns the GLSP context
func (s *Server) GLSPContext() *glsp.Context {
	s.configMu.RLock()
	defer s.configMu.RUnlock()
	return s.context
}

// SetGLSPContext sets the GLSP context
func (s *Server) SetGLSPContext(ctx *glsp.Context) {
	s.configMu.Lock()
	defer s.configMu.Unlock()
	s.context = ctx
}

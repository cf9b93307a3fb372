package testutil

import (
	"sync"

	"csspeek.dev/cpls/internal/cache"
	"csspeek.dev/cpls/internal/documents"
	"csspeek.dev/cpls/internal/stylesheet"
	"csspeek.dev/cpls/internal/uriutil"
	"csspeek.dev/cpls/lsp/types"
	"github.com/tliron/glsp"
)

// MockServerContext implements types.ServerContext for testing.
// Documents and stylesheets are real; workspace loading is configurable
// via callback functions.
type MockServerContext struct {
	docs         *documents.Manager
	stylesheets  *cache.Cache
	rootURI      string
	rootPath     string
	config       types.ServerConfig
	fileConfig   *types.ConfigOverlay
	clientConfig *types.ConfigOverlay
	linkSupport  bool
	diskFiles    map[string]string
	glspContext  *glsp.Context
	mu           sync.Mutex

	// Optional callbacks for custom behavior in tests
	LoadStylesheetsFunc     func([]cache.File) error
	LoadWorkspaceConfigFunc func() (*types.ConfigOverlay, error)
	RegisterWatchersFunc    func(*glsp.Context) error

	// Tracking for tests that need to verify methods were called
	LoadedStylesheets      [][]cache.File
	RegisterWatchersCalled bool
	Closed                 bool
}

// NewMockServerContext creates a new mock server context with default behavior
func NewMockServerContext() *MockServerContext {
	return NewMockServerContextWithRegistry(stylesheet.DefaultRegistry())
}

// NewMockServerContextWithRegistry creates a mock whose cache uses the
// given language services
func NewMockServerContextWithRegistry(registry *stylesheet.Registry) *MockServerContext {
	return &MockServerContext{
		docs:        documents.NewManager(),
		stylesheets: cache.New(registry),
		config:      types.DefaultConfig(),
		diskFiles:   make(map[string]string),
	}
}

// Document returns the document with the given URI
func (m *MockServerContext) Document(uri string) *documents.Document {
	return m.docs.Get(uri)
}

// DocumentManager returns the document manager
func (m *MockServerContext) DocumentManager() *documents.Manager {
	return m.docs
}

// Stylesheets returns the stylesheet cache
func (m *MockServerContext) Stylesheets() *cache.Cache {
	return m.stylesheets
}

// RootURI returns the workspace root URI
func (m *MockServerContext) RootURI() string {
	return m.rootURI
}

// RootPath returns the workspace root path
func (m *MockServerContext) RootPath() string {
	return m.rootPath
}

// SetRootURI sets the workspace root URI
func (m *MockServerContext) SetRootURI(uri string) {
	m.rootURI = uri
}

// SetRootPath sets the workspace root path
func (m *MockServerContext) SetRootPath(path string) {
	m.rootPath = path
}

// GetConfig returns the server configuration
func (m *MockServerContext) GetConfig() types.ServerConfig {
	return m.config
}

// SetConfig sets the server configuration
func (m *MockServerContext) SetConfig(config types.ServerConfig) {
	m.config = config
}

// SetClientConfig layers client settings over the file configuration
func (m *MockServerContext) SetClientConfig(overlay *types.ConfigOverlay) {
	m.clientConfig = overlay
	m.config = types.DefaultConfig().Apply(m.fileConfig).Apply(m.clientConfig)
}

// ClientConfig returns the last client settings
func (m *MockServerContext) ClientConfig() *types.ConfigOverlay {
	return m.clientConfig
}

// LoadWorkspaceConfig applies the overlay returned by LoadWorkspaceConfigFunc
func (m *MockServerContext) LoadWorkspaceConfig() error {
	if m.LoadWorkspaceConfigFunc == nil {
		return nil
	}
	overlay, err := m.LoadWorkspaceConfigFunc()
	if err != nil {
		return err
	}
	m.fileConfig = overlay
	m.config = types.DefaultConfig().Apply(m.fileConfig).Apply(m.clientConfig)
	return nil
}

// LinkSupport reports the recorded client link capability
func (m *MockServerContext) LinkSupport() bool {
	return m.linkSupport
}

// SetLinkSupport records the client link capability
func (m *MockServerContext) SetLinkSupport(supported bool) {
	m.linkSupport = supported
}

// LoadStylesheets records the call, then seeds the cache from files
// unless LoadStylesheetsFunc is set
func (m *MockServerContext) LoadStylesheets(files []cache.File) error {
	m.mu.Lock()
	m.LoadedStylesheets = append(m.LoadedStylesheets, files)
	m.mu.Unlock()

	if m.LoadStylesheetsFunc != nil {
		return m.LoadStylesheetsFunc(files)
	}

	_, err := m.stylesheets.Seed(files)
	for _, file := range files {
		uri := file.URI
		if uri == "" {
			uri = uriutil.PathToURI(file.FSPath)
		}
		if entry := m.stylesheets.Get(uri); entry != nil {
			m.mu.Lock()
			m.diskFiles[uri] = entry.Path()
			m.mu.Unlock()
		}
	}
	return err
}

// IsDiskStylesheet reports whether uri was loaded from disk
func (m *MockServerContext) IsDiskStylesheet(uri string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.diskFiles[uri]
	return ok
}

// ForgetDiskStylesheet stops tracking a disk stylesheet
func (m *MockServerContext) ForgetDiskStylesheet(uri string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.diskFiles, uri)
}

// RegisterFileWatchers registers file watchers with the client
func (m *MockServerContext) RegisterFileWatchers(ctx *glsp.Context) error {
	m.RegisterWatchersCalled = true
	if m.RegisterWatchersFunc != nil {
		return m.RegisterWatchersFunc(ctx)
	}
	return nil
}

// GLSPContext returns the GLSP context
func (m *MockServerContext) GLSPContext() *glsp.Context {
	return m.glspContext
}

// SetGLSPContext sets the GLSP context
func (m *MockServerContext) SetGLSPContext(ctx *glsp.Context) {
	m.glspContext = ctx
}

// Close records the call and closes the stylesheet cache
func (m *MockServerContext) Close() error {
	m.Closed = true
	m.stylesheets.Close()
	return nil
}

// Verify interface satisfaction at compile time
var _ types.ServerContext = (*MockServerContext)(nil)

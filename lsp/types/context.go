package types

import (
	"csspeek.dev/cpls/internal/cache"
	"csspeek.dev/cpls/internal/documents"
	"github.com/tliron/glsp"
)

// ServerContext provides all dependencies needed for LSP handlers.
// Handlers depend on this interface so tests can supply a mock.
type ServerContext interface {
	// Document operations
	Document(uri string) *documents.Document
	DocumentManager() *documents.Manager

	// Stylesheets queries run against
	Stylesheets() *cache.Cache

	// Workspace operations
	RootURI() string
	RootPath() string
	SetRootURI(uri string)
	SetRootPath(path string)

	// Configuration
	GetConfig() ServerConfig
	SetConfig(config ServerConfig)
	// SetClientConfig applies client settings over the workspace file
	// configuration and the defaults
	SetClientConfig(overlay *ConfigOverlay)
	LoadWorkspaceConfig() error

	// Client capabilities
	LinkSupport() bool
	SetLinkSupport(supported bool)

	// Stylesheet loading. LoadStylesheets seeds the cache from files, or
	// discovers stylesheets under the root when files is nil.
	LoadStylesheets(files []cache.File) error
	IsDiskStylesheet(uri string) bool
	ForgetDiskStylesheet(uri string)
	RegisterFileWatchers(ctx *glsp.Context) error

	// LSP context
	GLSPContext() *glsp.Context
	SetGLSPContext(ctx *glsp.Context)

	Close() error
}

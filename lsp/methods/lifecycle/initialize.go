package lifecycle

import (
	"encoding/json"
	"fmt"

	"csspeek.dev/cpls/internal/cache"
	"csspeek.dev/cpls/internal/log"
	"csspeek.dev/cpls/internal/uriutil"
	"csspeek.dev/cpls/internal/version"
	"csspeek.dev/cpls/lsp/types"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// ServerName is reported to the client in serverInfo
const ServerName = "css-peek-language-server"

// InitializationOptions is the payload clients may send with initialize
type InitializationOptions struct {
	// Stylesheets to seed the cache with. When absent they are discovered.
	Stylesheets []cache.File `json:"stylesheets"`
	// Settings applied before the first didChangeConfiguration
	Settings *types.ConfigOverlay `json:"cssPeek"`
}

// parseInitializationOptions converts the raw options via a JSON round-trip
func parseInitializationOptions(raw any) (*InitializationOptions, error) {
	opts := &InitializationOptions{}
	if raw == nil {
		return opts, nil
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return opts, fmt.Errorf("failed to marshal initializationOptions: %w", err)
	}
	if err := json.Unmarshal(data, opts); err != nil {
		return &InitializationOptions{}, fmt.Errorf("failed to parse initializationOptions: %w", err)
	}
	return opts, nil
}

// clientLinkSupport reads textDocument.definition.linkSupport
func clientLinkSupport(caps protocol.ClientCapabilities) bool {
	if caps.TextDocument == nil || caps.TextDocument.Definition == nil {
		return false
	}
	linkSupport := caps.TextDocument.Definition.LinkSupport
	return linkSupport != nil && *linkSupport
}

// Initialize handles the LSP initialize request
func Initialize(req *types.RequestContext, params *protocol.InitializeParams) (any, error) {
	clientName := "unknown"
	if params.ClientInfo != nil {
		clientName = params.ClientInfo.Name
	}
	log.Info("Initializing for client: %s", clientName)

	// Store the workspace root
	if params.RootURI != nil {
		req.Server.SetRootURI(*params.RootURI)
		req.Server.SetRootPath(uriutil.URIToPath(*params.RootURI))
		log.Info("Workspace root: %s", req.Server.RootPath())
	} else if params.RootPath != nil {
		req.Server.SetRootPath(*params.RootPath)
		req.Server.SetRootURI(uriutil.PathToURI(*params.RootPath))
		log.Info("Workspace root (from rootPath): %s", req.Server.RootPath())
	}

	req.Server.SetLinkSupport(clientLinkSupport(params.Capabilities))

	opts, err := parseInitializationOptions(params.InitializationOptions)
	if err != nil {
		req.AddWarning(err)
	}

	if err := req.Server.LoadWorkspaceConfig(); err != nil {
		req.AddWarning(fmt.Errorf("failed to load workspace configuration: %w", err))
	}
	if opts.Settings != nil {
		req.Server.SetClientConfig(opts.Settings)
	}

	// Seeding failures never fail initialization
	if err := req.Server.LoadStylesheets(opts.Stylesheets); err != nil {
		req.AddWarning(fmt.Errorf("failed to load stylesheets: %w", err))
	}

	syncKind := protocol.TextDocumentSyncKindFull
	return protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: protocol.TextDocumentSyncOptions{
				OpenClose: boolPtr(true),
				Change:    &syncKind,
			},
			DefinitionProvider:      true,
			WorkspaceSymbolProvider: true,
		},
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    ServerName,
			Version: strPtr(version.GetVersion()),
		},
	}, nil
}

func boolPtr(b bool) *bool {
	return &b
}

func strPtr(s string) *string {
	return &s
}

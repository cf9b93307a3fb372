package lifecycle

import (
	"fmt"

	"csspeek.dev/cpls/internal/log"
	"csspeek.dev/cpls/lsp/types"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Initialized handles the LSP initialized notification
func Initialized(req *types.RequestContext, params *protocol.InitializedParams) error {
	log.Info("Server initialized")

	// Store context for later client notifications
	req.Server.SetGLSPContext(req.GLSP)

	if err := req.Server.RegisterFileWatchers(req.GLSP); err != nil {
		// Not fatal: stylesheets just won't refresh from disk
		req.AddWarning(fmt.Errorf("failed to register file watchers: %w", err))
	}

	return nil
}

package lifecycle

import (
	"csspeek.dev/cpls/internal/log"
	"csspeek.dev/cpls/lsp/types"
)

// Shutdown handles the LSP shutdown request
func Shutdown(req *types.RequestContext) error {
	log.Info("Server shutting down")
	return req.Server.Close()
}

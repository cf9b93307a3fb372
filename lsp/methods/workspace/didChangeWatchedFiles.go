package workspace

import (
	"csspeek.dev/cpls/internal/cache"
	"csspeek.dev/cpls/internal/documents"
	"csspeek.dev/cpls/internal/log"
	"csspeek.dev/cpls/internal/uriutil"
	"csspeek.dev/cpls/lsp/types"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// DidChangeWatchedFiles handles the workspace/didChangeWatchedFiles notification.
// Stylesheets open in the editor are left alone: their buffer is the
// source of truth until they are closed.
func DidChangeWatchedFiles(req *types.RequestContext, params *protocol.DidChangeWatchedFilesParams) error {
	log.Debug("Watched files changed: %d files", len(params.Changes))

	stylesheets := req.Server.Stylesheets()
	var reload []cache.File

	for _, change := range params.Changes {
		uri := change.URI
		path := uriutil.URIToPath(uri)
		if !types.IsStylesheetLanguage(documents.LanguageIDFromPath(path)) {
			continue
		}
		log.Debug("Stylesheet change: %s (type: %d)", path, change.Type)

		open := req.Server.DocumentManager().IsOpen(uri)

		if change.Type == protocol.FileChangeTypeDeleted {
			req.Server.ForgetDiskStylesheet(uri)
			if !open {
				stylesheets.Delete(uri)
			}
			continue
		}

		if open {
			continue
		}
		reload = append(reload, cache.File{URI: uri, FSPath: path})
	}

	if len(reload) > 0 {
		// LoadStylesheets joins per-file errors; one bad file doesn't block the rest
		if err := req.Server.LoadStylesheets(reload); err != nil {
			req.AddWarning(err)
		}
	}
	return nil
}

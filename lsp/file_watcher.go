package lsp

import (
	"csspeek.dev/cpls/internal/log"
	"csspeek.dev/cpls/lsp/types"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// fileWatcherID identifies our watcher registration with the client
const fileWatcherID = "css-peek-stylesheet-watcher"

// stylesheetWatchers builds one watcher per stylesheet glob
func stylesheetWatchers() []protocol.FileSystemWatcher {
	watchers := make([]protocol.FileSystemWatcher, 0, len(types.StylesheetPatterns))
	for _, pattern := range types.StylesheetPatterns {
		watchers = append(watchers, protocol.FileSystemWatcher{GlobPattern: pattern})
	}
	return watchers
}

// RegisterFileWatchers asks the client to report stylesheet changes
func (s *Server) RegisterFileWatchers(context *glsp.Context) error {
	// An empty context (created with &glsp.Context{}) has no Call
	if context == nil || context.Call == nil {
		log.Info("Skipping file watcher registration (no client context)")
		return nil
	}

	watchers := stylesheetWatchers()
	params := protocol.RegistrationParams{
		Registrations: []protocol.Registration{
			{
				ID:     fileWatcherID,
				Method: "workspace/didChangeWatchedFiles",
				RegisterOptions: protocol.DidChangeWatchedFilesRegistrationOptions{
					Watchers: watchers,
				},
			},
		},
	}

	// client/registerCapability is a request. Calling it synchronously from a
	// handler would deadlock: the reply is read by the loop we are blocking.
	go func(ctx *glsp.Context) {
		var result any
		ctx.Call("client/registerCapability", params, &result)
		log.Info("File watcher registration completed")
	}(context)

	log.Info("Sent file watcher registration request (%d watchers)", len(watchers))
	return nil
}

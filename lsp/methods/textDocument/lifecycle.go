package textDocument

import (
	"csspeek.dev/cpls/internal/cache"
	"csspeek.dev/cpls/internal/documents"
	"csspeek.dev/cpls/internal/log"
	"csspeek.dev/cpls/internal/uriutil"
	"csspeek.dev/cpls/lsp/types"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// DidOpen handles the textDocument/didOpen notification
func DidOpen(req *types.RequestContext, params *protocol.DidOpenTextDocumentParams) error {
	log.Debug("Document opened: %s (language: %s, version: %d)",
		params.TextDocument.URI, params.TextDocument.LanguageID, int(params.TextDocument.Version))

	doc, err := req.Server.DocumentManager().DidOpen(params.TextDocument.URI, params.TextDocument.LanguageID,
		int(params.TextDocument.Version), params.TextDocument.Text)
	if err != nil {
		return err
	}

	syncStylesheet(req.Server, doc)
	return nil
}

// DidChange handles the textDocument/didChange notification
func DidChange(req *types.RequestContext, params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI
	version := int(params.TextDocument.Version)

	log.Debug("Document changed: %s (version: %d, changes: %d)", uri, version, len(params.ContentChanges))

	// Convert any[] to proper type, filtering out invalid entries
	changes := make([]protocol.TextDocumentContentChangeEvent, 0, len(params.ContentChanges))
	for _, change := range params.ContentChanges {
		switch c := change.(type) {
		case protocol.TextDocumentContentChangeEvent:
			changes = append(changes, c)
		case protocol.TextDocumentContentChangeEventWhole:
			changes = append(changes, protocol.TextDocumentContentChangeEvent{Text: c.Text})
		}
	}

	doc, err := req.Server.DocumentManager().DidChange(uri, version, changes)
	if err != nil {
		return err
	}

	syncStylesheet(req.Server, doc)
	return nil
}

// DidClose handles the textDocument/didClose notification.
// A stylesheet that exists on disk goes back to its saved contents;
// any other stylesheet is dropped from the cache.
func DidClose(req *types.RequestContext, params *protocol.DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI

	log.Debug("Document closed: %s", uri)

	if _, err := req.Server.DocumentManager().DidClose(uri); err != nil {
		return err
	}

	stylesheets := req.Server.Stylesheets()
	entry := stylesheets.Get(uri)
	if entry == nil || entry.Origin() != cache.Opened {
		return nil
	}

	if !req.Server.IsDiskStylesheet(uri) {
		stylesheets.Delete(uri)
		return nil
	}

	if _, err := stylesheets.Load(cache.File{URI: uri}); err != nil {
		// The file is gone; so is the stylesheet
		stylesheets.Delete(uri)
		req.Server.ForgetDiskStylesheet(uri)
		req.AddWarning(err)
	}
	return nil
}

// syncStylesheet installs a fresh cache entry for an open stylesheet
func syncStylesheet(server types.ServerContext, doc *documents.Document) {
	if !types.IsStylesheetLanguage(doc.LanguageID()) {
		return
	}
	if server.GetConfig().Excludes(uriutil.URIToPath(doc.URI()), server.RootPath()) {
		log.Debug("Stylesheet excluded from peeking: %s", doc.URI())
		return
	}
	server.Stylesheets().Put(doc.URI(), cache.NewEntry(doc, cache.Opened))
}

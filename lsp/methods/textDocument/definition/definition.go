package definition

import (
	"csspeek.dev/cpls/internal/log"
	"csspeek.dev/cpls/internal/peek"
	"csspeek.dev/cpls/internal/selector"
	"csspeek.dev/cpls/lsp/types"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Definition returns the stylesheet rules for the selector under the cursor.
// The result is null when there is nothing to look up, and otherwise a
// possibly empty list of locations.
func Definition(req *types.RequestContext, params *protocol.DefinitionParams) (any, error) {
	uri := params.TextDocument.URI
	position := params.Position

	log.Debug("Definition requested: %s at line %d, char %d", uri, position.Line, position.Character)

	doc := req.Server.Document(uri)
	if doc == nil {
		return nil, nil
	}

	cfg := req.Server.GetConfig()
	if !cfg.PeeksFrom(doc.LanguageID()) {
		return nil, nil
	}

	occurrence, ok := selector.At(doc.Content(), position, selector.Options{SupportTags: cfg.SupportTags})
	if !ok {
		return nil, nil
	}

	locations := peek.FindDefinition(occurrence.Selector, req.Server.Stylesheets())
	log.Debug("Found %d definitions for %s", len(locations), occurrence.Selector)

	// LocationLinks carry the selector range, so the client can underline it
	if req.Server.LinkSupport() {
		return toLinks(locations, occurrence.Range), nil
	}
	return locations, nil
}

func toLinks(locations []protocol.Location, origin protocol.Range) []protocol.LocationLink {
	links := make([]protocol.LocationLink, 0, len(locations))
	for _, loc := range locations {
		links = append(links, protocol.LocationLink{
			OriginSelectionRange: &origin,
			TargetURI:            loc.URI,
			TargetRange:          loc.Range,
			TargetSelectionRange: loc.Range,
		})
	}
	return links
}

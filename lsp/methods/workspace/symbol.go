package workspace

import (
	"csspeek.dev/cpls/internal/log"
	"csspeek.dev/cpls/internal/peek"
	"csspeek.dev/cpls/lsp/types"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Symbol handles the workspace/symbol request
func Symbol(req *types.RequestContext, params *protocol.WorkspaceSymbolParams) ([]protocol.SymbolInformation, error) {
	symbols := peek.SearchWorkspace(params.Query, req.Server.Stylesheets())
	log.Debug("Workspace symbol query %q matched %d symbols", params.Query, len(symbols))

	results := make([]protocol.SymbolInformation, 0, len(symbols))
	for _, symbol := range symbols {
		info := protocol.SymbolInformation{
			Name:     symbol.Name,
			Kind:     symbol.Kind,
			Location: symbol.Location,
		}
		if symbol.ContainerName != "" {
			container := symbol.ContainerName
			info.ContainerName = &container
		}
		results = append(results, info)
	}
	return results, nil
}

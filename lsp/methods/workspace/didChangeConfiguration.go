package workspace

import (
	"encoding/json"
	"fmt"

	"csspeek.dev/cpls/internal/log"
	"csspeek.dev/cpls/lsp/types"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// DidChangeConfiguration handles the workspace/didChangeConfiguration notification.
// Malformed settings leave the client layer empty, so the workspace files
// and defaults apply.
func DidChangeConfiguration(req *types.RequestContext, params *protocol.DidChangeConfigurationParams) error {
	log.Info("Configuration changed")

	overlay, err := parseConfiguration(params.Settings)
	if err != nil {
		req.AddWarning(fmt.Errorf("failed to parse configuration, using defaults: %w", err))
		overlay = nil
	}

	req.Server.SetClientConfig(overlay)
	log.Debug("New configuration: %+v", req.Server.GetConfig())
	return nil
}

// parseConfiguration extracts the cssPeek section from the settings
func parseConfiguration(settings any) (*types.ConfigOverlay, error) {
	if settings == nil {
		return nil, nil
	}

	// Settings come as a nested object: { "cssPeek": { ... } }
	settingsMap, ok := settings.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("settings is not a map")
	}

	section, exists := settingsMap[types.ConfigSection]
	if !exists || section == nil {
		return nil, nil
	}

	// Convert to JSON and back to parse into struct
	jsonBytes, err := json.Marshal(section)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal settings: %w", err)
	}

	var overlay types.ConfigOverlay
	if err := json.Unmarshal(jsonBytes, &overlay); err != nil {
		return nil, fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	return &overlay, nil
}

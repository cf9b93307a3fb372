package lsp

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"csspeek.dev/cpls/lsp/types"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// rcFiles are the dedicated config files, in lookup order
var rcFiles = []string{".csspeekrc.yaml", ".csspeekrc.yml"}

// readPackageJsonFile reads and parses package.json from the given root path.
// Returns nil if the file doesn't exist.
func readPackageJsonFile(rootPath string) (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(filepath.Join(rootPath, "package.json")) //nolint:gosec // G304: workspace package.json
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read package.json: %w", err)
	}

	// Parse as JSONC (allows comments and trailing commas)
	var pkgJSON map[string]json.RawMessage
	if err := json.Unmarshal(jsonc.ToJSON(data), &pkgJSON); err != nil {
		return nil, fmt.Errorf("failed to parse package.json: %w", err)
	}
	return pkgJSON, nil
}

// readPackageJsonConfig returns the cssPeek field of package.json, or nil
func readPackageJsonConfig(rootPath string) (*types.ConfigOverlay, error) {
	pkgJSON, err := readPackageJsonFile(rootPath)
	if err != nil || pkgJSON == nil {
		return nil, err
	}

	raw, ok := pkgJSON[types.ConfigSection]
	if !ok {
		return nil, nil
	}

	var overlay types.ConfigOverlay
	if err := json.Unmarshal(raw, &overlay); err != nil {
		return nil, fmt.Errorf("package.json %s must be an object: %w", types.ConfigSection, err)
	}
	return &overlay, nil
}

// readRCConfig returns the first .csspeekrc file found in rootPath, or nil
func readRCConfig(rootPath string) (*types.ConfigOverlay, error) {
	for _, name := range rcFiles {
		path := filepath.Join(rootPath, name)
		data, err := os.ReadFile(path) //nolint:gosec // G304: workspace config file
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}

		var overlay types.ConfigOverlay
		if err := yaml.Unmarshal(data, &overlay); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}
		return &overlay, nil
	}
	return nil, nil
}

// ReadWorkspaceConfig reads cssPeek configuration from package.json,
// falling back to .csspeekrc.yaml or .csspeekrc.yml.
// Returns nil if no configuration exists (not an error).
func ReadWorkspaceConfig(rootPath string) (*types.ConfigOverlay, error) {
	if rootPath == "" {
		return nil, nil
	}

	overlay, err := readPackageJsonConfig(rootPath)
	if err != nil || overlay != nil {
		return overlay, err
	}
	return readRCConfig(rootPath)
}

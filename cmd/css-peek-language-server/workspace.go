package main

import (
	"fmt"
	"path/filepath"

	"csspeek.dev/cpls/internal/cache"
	"csspeek.dev/cpls/internal/log"
	"csspeek.dev/cpls/internal/stylesheet"
	"csspeek.dev/cpls/lsp"
	"csspeek.dev/cpls/lsp/types"
)

// workspace is a stylesheet cache loaded from disk for one-shot queries
type workspace struct {
	config      types.ServerConfig
	stylesheets *cache.Cache
}

// openWorkspace reads the workspace configuration under root and loads
// every stylesheet it does not exclude. Unreadable stylesheets are logged.
func openWorkspace(root string) (*workspace, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("invalid root %s: %w", root, err)
	}

	overlay, err := lsp.ReadWorkspaceConfig(abs)
	if err != nil {
		return nil, err
	}
	config := types.DefaultConfig().Apply(overlay)

	files, err := lsp.DiscoverStylesheets(abs, config)
	if err != nil {
		return nil, err
	}

	stylesheets := cache.New(stylesheet.DefaultRegistry())
	loaded, err := stylesheets.Seed(files)
	if err != nil {
		log.Warn("Some stylesheets could not be loaded: %v", err)
	}
	log.Debug("Loaded %d stylesheets from %s", loaded, abs)

	return &workspace{config: config, stylesheets: stylesheets}, nil
}

func (w *workspace) Close() {
	w.stylesheets.Close()
}

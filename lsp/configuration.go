package lsp

import (
	"csspeek.dev/cpls/internal/log"
	"csspeek.dev/cpls/lsp/types"
)

// GetConfig returns the current server configuration
func (s *Server) GetConfig() types.ServerConfig {
	s.configMu.RLock()
	defer s.configMu.RUnlock()
	return s.config
}

// SetConfig replaces the server configuration outright
func (s *Server) SetConfig(config types.ServerConfig) {
	s.configMu.Lock()
	defer s.configMu.Unlock()
	s.config = config
}

// SetClientConfig records the settings the client sent.
// Client settings take precedence over workspace files.
func (s *Server) SetClientConfig(overlay *types.ConfigOverlay) {
	s.configMu.Lock()
	defer s.configMu.Unlock()
	s.clientConfig = overlay
	s.config = s.layeredConfigLocked()
}

// LoadWorkspaceConfig reads package.json or .csspeekrc under the root
// and layers it beneath the client settings
func (s *Server) LoadWorkspaceConfig() error {
	overlay, err := ReadWorkspaceConfig(s.RootPath())
	if err != nil {
		return err
	}
	if overlay != nil {
		log.Info("Loaded workspace configuration from %s", s.RootPath())
	}

	s.configMu.Lock()
	defer s.configMu.Unlock()
	s.fileConfig = overlay
	s.config = s.layeredConfigLocked()
	return nil
}

func (s *Server) layeredConfigLocked() types.ServerConfig {
	return types.DefaultConfig().Apply(s.fileConfig).Apply(s.clientConfig)
}

package stylesheet

import (
	"sync"

	"csspeek.dev/cpls/internal/log"
	"csspeek.dev/cpls/internal/parser"
)

// FallbackLanguage is used for documents without a dedicated service
const FallbackLanguage = "css"

// Registry maps language IDs to services
type Registry struct {
	services map[string]Service
	mu       sync.RWMutex
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{services: make(map[string]Service)}
}

// DefaultRegistry creates a registry with a tree-sitter service for every
// language the parsers know
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, id := range parser.Languages() {
		dialect, _ := parser.DialectFor(id)
		r.Register(id, TreeSitterService{Dialect: dialect})
	}
	return r
}

// Register installs the service for a language ID, replacing any previous one
func (r *Registry) Register(languageID string, service Service) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.services[languageID] = service
}

// Supported reports whether a language ID has its own service
func (r *Registry) Supported(languageID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.services[languageID]
	return ok
}

// For returns the service for a language ID, falling back to the css
// service. Returns nil when neither is registered.
func (r *Registry) For(languageID string) Service {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if service, ok := r.services[languageID]; ok {
		return service
	}
	log.Debug("Document type is %s, using css instead", languageID)
	return r.services[FallbackLanguage]
}

// Close releases parser resources held by the default services
func (r *Registry) Close() {
	parser.ClosePools()
}

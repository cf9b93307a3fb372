package types

import (
	"github.com/tliron/glsp"
)

// RequestContext carries everything one LSP method call needs
type RequestContext struct {
	Server   ServerContext // documents, stylesheets, config
	GLSP     *glsp.Context // Notify and Call, nil outside a live connection
	warnings []error
}

// NewRequestContext creates a new request context
func NewRequestContext(server ServerContext, glsp *glsp.Context) *RequestContext {
	return &RequestContext{
		Server: server,
		GLSP:   glsp,
	}
}

// AddWarning records a non-fatal problem.
// Middleware logs warnings after the handler succeeds.
func (r *RequestContext) AddWarning(err error) {
	if err != nil {
		r.warnings = append(r.warnings, err)
	}
}

// Warnings returns the warnings recorded during this request
func (r *RequestContext) Warnings() []error {
	return r.warnings
}

// HasWarnings returns true if any warnings were recorded
func (r *RequestContext) HasWarnings() bool {
	return len(r.warnings) > 0
}

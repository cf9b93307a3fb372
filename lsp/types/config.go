package types

import (
	"path/filepath"
	"slices"
	"strings"

	"csspeek.dev/cpls/internal/collections"
	"github.com/bmatcuk/doublestar/v4"
)

// ConfigSection is the settings key the server reads
const ConfigSection = "cssPeek"

// ServerConfig represents the server configuration
type ServerConfig struct {
	// SupportTags enables definitions for tag names, such as div
	SupportTags bool `json:"supportTags" yaml:"supportTags"`

	// PeekFromLanguages are the language IDs definition requests may come from
	PeekFromLanguages []string `json:"peekFromLanguages" yaml:"peekFromLanguages"`

	// PeekToExclude are glob patterns for stylesheets that are never searched
	PeekToExclude []string `json:"peekToExclude" yaml:"peekToExclude"`
}

// DefaultConfig returns the default server configuration
func DefaultConfig() ServerConfig {
	return ServerConfig{
		SupportTags:       true,
		PeekFromLanguages: []string{"html"},
		PeekToExclude: []string{
			"**/node_modules/**",
			"**/bower_components/**",
		},
	}
}

// PeeksFrom reports whether definitions may be requested from a language
func (c ServerConfig) PeeksFrom(languageID string) bool {
	return slices.Contains(c.PeekFromLanguages, languageID)
}

// Excludes reports whether a stylesheet path matches a peekToExclude pattern.
// Relative paths are matched as given; absolute paths are matched relative to
// root when they are inside it, and without their leading slash otherwise.
func (c ServerConfig) Excludes(path, root string) bool {
	rel := path
	if filepath.IsAbs(path) {
		rel = strings.TrimPrefix(filepath.ToSlash(path), "/")
		if root != "" {
			if r, err := filepath.Rel(root, path); err == nil && !strings.HasPrefix(r, "..") {
				rel = r
			}
		}
	}
	rel = filepath.ToSlash(rel)

	for _, pattern := range c.PeekToExclude {
		if matched, err := doublestar.Match(pattern, rel); err == nil && matched {
			return true
		}
	}
	return false
}

// ConfigOverlay holds the settings one configuration source sets.
// Nil fields leave the underlying value unchanged.
type ConfigOverlay struct {
	SupportTags       *bool    `json:"supportTags,omitempty" yaml:"supportTags"`
	PeekFromLanguages []string `json:"peekFromLanguages,omitempty" yaml:"peekFromLanguages"`
	PeekToExclude     []string `json:"peekToExclude,omitempty" yaml:"peekToExclude"`
}

// Apply returns c with the overlay's settings
func (c ServerConfig) Apply(o *ConfigOverlay) ServerConfig {
	if o == nil {
		return c
	}
	if o.SupportTags != nil {
		c.SupportTags = *o.SupportTags
	}
	if o.PeekFromLanguages != nil {
		c.PeekFromLanguages = slices.Clone(o.PeekFromLanguages)
	}
	if o.PeekToExclude != nil {
		c.PeekToExclude = slices.Clone(o.PeekToExclude)
	}
	return c
}

// StylesheetPatterns are the globs discovery and file watching look for
var StylesheetPatterns = []string{
	"**/*.css",
	"**/*.scss",
	"**/*.less",
}

var stylesheetLanguages = collections.NewSet("css", "scss", "less")

// IsStylesheetLanguage reports whether documents of a language are
// definition targets
func IsStylesheetLanguage(languageID string) bool {
	return stylesheetLanguages.Has(languageID)
}

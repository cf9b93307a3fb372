// Package peek finds the stylesheet symbols a selector refers to.
package peek

import (
	"csspeek.dev/cpls/internal/cache"
	"csspeek.dev/cpls/internal/log"
	"csspeek.dev/cpls/internal/selector"
	"csspeek.dev/cpls/internal/stylesheet"
)

// Match scans every cache entry for symbols whose effective name matches the
// pattern. Results are in entry order, then declaration order. Entries whose
// symbols are not computed yet are skipped without parsing when their text
// cannot contain a match; entries that fail to parse are logged and skipped.
func Match(pattern *Pattern, c *cache.Cache) []stylesheet.Symbol {
	var results []stylesheet.Symbol

	for _, entry := range c.All() {
		doc := entry.Document()
		if !entry.Computed() && !pattern.MayMatch(doc.Content()) {
			continue
		}

		symbols, err := c.Symbols(entry)
		if err != nil {
			log.Warn("Failed to read symbols from %s: %v", doc.URI(), err)
			continue
		}

		names, err := c.Names(entry, ResolveNames)
		if err != nil {
			log.Warn("Failed to resolve symbols in %s: %v", doc.URI(), err)
			continue
		}

		for i, name := range names {
			if pattern.Matches(name) {
				results = append(results, symbols[i])
			}
		}
	}

	return results
}

// FindSymbols returns the symbols that define a selector
func FindSymbols(sel selector.Selector, c *cache.Cache) []stylesheet.Symbol {
	pattern, err := Compile(sel)
	if err != nil {
		log.Warn("Cannot match %s: %v", sel, err)
		return nil
	}
	return Match(pattern, c)
}

package peek

import (
	"csspeek.dev/cpls/internal/cache"
	"csspeek.dev/cpls/internal/position"
	"csspeek.dev/cpls/internal/selector"
	"csspeek.dev/cpls/internal/stylesheet"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// MinQueryLength is the shortest workspace query that is searched, in
// UTF-16 code units
const MinQueryLength = 2

// FindDefinition returns the locations of every symbol defining sel.
// The result is empty, not nil, when nothing matches.
func FindDefinition(sel selector.Selector, c *cache.Cache) []protocol.Location {
	symbols := FindSymbols(sel, c)
	locations := make([]protocol.Location, 0, len(symbols))
	for _, symbol := range symbols {
		locations = append(locations, symbol.Location)
	}
	return locations
}

// SearchWorkspace reads query as a class, an id, and a tag in turn and
// returns every match. A symbol matching more than one reading is listed
// once per reading. Queries shorter than MinQueryLength return nothing.
func SearchWorkspace(query string, c *cache.Cache) []stylesheet.Symbol {
	if position.StringLengthUTF16(query) < MinQueryLength {
		return []stylesheet.Symbol{}
	}

	results := []stylesheet.Symbol{}
	for _, kind := range selector.Kinds {
		results = append(results, FindSymbols(selector.Selector{Kind: kind, Value: query}, c)...)
	}
	return results
}

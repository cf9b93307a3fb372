package peek

import (
	"strings"

	"csspeek.dev/cpls/internal/stylesheet"
)

// ResolveNames returns the effective name of every symbol.
// A name starting with & is its parent's effective name followed by the text
// after the marker. The parent is the nearest preceding symbol named in the
// symbol's container, or the symbol just before it when the container names
// none; [".btn", "&:hover", "&.active"] under .btn resolves to
// [".btn", ".btn:hover", ".btn.active"]. An & name with no predecessor keeps
// its raw name.
func ResolveNames(symbols []stylesheet.Symbol) []string {
	r := resolver{
		symbols: symbols,
		names:   make([]string, len(symbols)),
		done:    make([]bool, len(symbols)),
	}
	for i := range symbols {
		r.resolve(i)
	}
	return r.names
}

type resolver struct {
	symbols []stylesheet.Symbol
	names   []string
	done    []bool
}

func (r *resolver) resolve(i int) string {
	if r.done[i] {
		return r.names[i]
	}

	name := r.symbols[i].Name
	if i > 0 && strings.HasPrefix(name, nestingMarker) {
		name = r.resolve(r.parent(i)) + strings.TrimPrefix(name, nestingMarker)
	}

	r.names[i] = name
	r.done[i] = true
	return name
}

// parent returns the index whose name i's & refers to
func (r *resolver) parent(i int) int {
	container := r.symbols[i].ContainerName
	if container == "" {
		return i - 1
	}

	selectors := strings.Split(container, ",")
	for j := i - 1; j >= 0; j-- {
		for _, sel := range selectors {
			if strings.TrimSpace(sel) == r.symbols[j].Name {
				return j
			}
		}
	}
	return i - 1
}

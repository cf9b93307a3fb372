// Package selector finds the class, id, or tag reference under a cursor in
// markup.
package selector

import (
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Kind is the kind of selector a token denotes
type Kind string

const (
	Class Kind = "class"
	ID    Kind = "id"
	Tag   Kind = "tag"
)

// Kinds lists every kind in workspace search order
var Kinds = []Kind{Class, ID, Tag}

// Selector is a class, id, or tag reference. Value is never empty.
type Selector struct {
	Kind  Kind
	Value string
}

func (s Selector) String() string {
	switch s.Kind {
	case Class:
		return "." + s.Value
	case ID:
		return "#" + s.Value
	default:
		return s.Value
	}
}

// Occurrence is a selector found in a document
type Occurrence struct {
	Selector
	// Range covers the token the selector was read from
	Range protocol.Range
}

// Options controls which tokens are recognized
type Options struct {
	SupportTags bool
}

// forbidden are characters that mark a token as a template expression or
// markup fragment rather than a literal name
const forbidden = `{}<>()$"'`

func usable(value string) bool {
	return value != "" && !strings.ContainsAny(value, forbidden)
}

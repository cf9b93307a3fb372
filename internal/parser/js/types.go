package js

import protocol "github.com/tliron/glsp/protocol_3_16"

// Segment is literal template text between ${...} substitutions
type Segment struct {
	Content string
	// Start is where Content begins in the script, in UTF-16 columns
	Start protocol.Position
}

// Template is a css`...` or html`...` tagged template literal
type Template struct {
	// Tag is "css" or "html"
	Tag      string
	Segments []Segment
}

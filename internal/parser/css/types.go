package css

import protocol "github.com/tliron/glsp/protocol_3_16"

// ItemKind identifies the stylesheet construct an Item was taken from
type ItemKind int

const (
	// RuleSelector is one selector from a rule set's selector list
	RuleSelector ItemKind = iota
	// Keyframes is an @keyframes block
	Keyframes
)

// Item is a named construct found in a stylesheet.
// Items are listed in declaration order: a rule's selectors come before the
// rules nested inside it.
type Item struct {
	Kind ItemKind
	// Name is the selector text with whitespace collapsed, or "@keyframes name"
	Name string
	// Container is the enclosing rule's selector list, empty at top level
	Container string
	Range     protocol.Range
}

// Outline is the result of parsing a stylesheet
type Outline struct {
	Items []Item
}

// Offset shifts every item by the position where the parsed text starts
// inside a larger document. On the first line of the region the column is
// shifted as well; later lines keep their columns.
func (o *Outline) Offset(start protocol.Position) {
	for i := range o.Items {
		o.Items[i].Range.Start = offsetPosition(o.Items[i].Range.Start, start)
		o.Items[i].Range.End = offsetPosition(o.Items[i].Range.End, start)
	}
}

func offsetPosition(pos, start protocol.Position) protocol.Position {
	if pos.Line == 0 {
		pos.Character += start.Character
	}
	pos.Line += start.Line
	return pos
}

package position

import (
	"sort"
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Index maps between byte offsets in a text and LSP positions.
// Lines are split on '\n'; a trailing '\r' stays part of its line.
type Index struct {
	text       string
	lineStarts []int
}

// NewIndex builds a line index for text.
func NewIndex(text string) *Index {
	starts := make([]int, 1, strings.Count(text, "\n")+1)
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &Index{text: text, lineStarts: starts}
}

// LineCount returns the number of lines in the text.
func (ix *Index) LineCount() int {
	return len(ix.lineStarts)
}

// Line returns the content of the given zero-based line without its newline.
func (ix *Index) Line(line int) string {
	if line < 0 || line >= len(ix.lineStarts) {
		return ""
	}
	start := ix.lineStarts[line]
	end := len(ix.text)
	if line+1 < len(ix.lineStarts) {
		end = ix.lineStarts[line+1] - 1
	}
	return ix.text[start:end]
}

// Offset converts an LSP position into a byte offset.
// Lines past the end clamp to len(text); columns past the end of a line clamp
// to the end of that line.
func (ix *Index) Offset(pos protocol.Position) int {
	line := int(pos.Line)
	if line >= len(ix.lineStarts) {
		return len(ix.text)
	}
	return ix.lineStarts[line] + UTF16ToByteOffset(ix.Line(line), int(pos.Character))
}

// Position converts a byte offset into an LSP position.
func (ix *Index) Position(offset int) protocol.Position {
	if offset < 0 {
		offset = 0
	}
	if offset > len(ix.text) {
		offset = len(ix.text)
	}
	line := sort.Search(len(ix.lineStarts), func(i int) bool {
		return ix.lineStarts[i] > offset
	}) - 1
	return ix.Point(line, offset-ix.lineStarts[line])
}

// Point converts a (row, byte column) pair, as reported by tree-sitter, into
// an LSP position.
func (ix *Index) Point(row, byteCol int) protocol.Position {
	return protocol.Position{
		Line:      clampUint32(row),
		Character: clampUint32(ByteOffsetToUTF16(ix.Line(row), byteCol)),
	}
}

// Range converts a byte range into an LSP range.
func (ix *Index) Range(start, end int) protocol.Range {
	return protocol.Range{Start: ix.Position(start), End: ix.Position(end)}
}

package position

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUTF16ToByteOffset(t *testing.T) {
	tests := []struct {
		name string
		line string
		col  int
		want int
	}{
		{name: "ascii selector", line: `<a class="btn">`, col: 10, want: 10},
		{name: "past end clamps", line: ".btn", col: 40, want: 4},
		{name: "negative clamps", line: ".btn", col: -1, want: 0},
		// 🎨 is 2 UTF-16 units and 4 bytes
		{name: "after astral rune", line: "🎨 .btn", col: 3, want: 5},
		{name: "inside surrogate pair", line: ".a🎨b", col: 3, want: 2},
		// 标 is 1 UTF-16 unit and 3 bytes
		{name: "after bmp rune", line: ".标签 {}", col: 3, want: 7},
		{name: "invalid byte is one unit", line: "\xff.btn", col: 2, want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UTF16ToByteOffset(tt.line, tt.col))
		})
	}
}

func TestByteOffsetToUTF16(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		offset int
		want   int
	}{
		{name: "ascii", line: "#main {}", offset: 5, want: 5},
		{name: "past end clamps", line: "#main", offset: 99, want: 5},
		{name: "astral rune", line: "/* 🎨 */ .x", offset: 11, want: 9},
		{name: "bmp rune", line: ".标签", offset: 7, want: 3},
		{name: "mid rune stops before it", line: ".标", offset: 2, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ByteOffsetToUTF16(tt.line, tt.offset))
		})
	}
}

func TestStringLengthUTF16(t *testing.T) {
	assert.Equal(t, 0, StringLengthUTF16(""))
	assert.Equal(t, 3, StringLengthUTF16("btn"))
	assert.Equal(t, 2, StringLengthUTF16("𝒜"))
	assert.Equal(t, 1, StringLengthUTF16("é"))
}

// Every rune boundary survives the trip through UTF-16 columns
func TestUTF16RoundTrip(t *testing.T) {
	line := ".a🎨 标 #b"
	for offset := range line {
		col := ByteOffsetToUTF16(line, offset)
		assert.Equal(t, offset, UTF16ToByteOffset(line, col), "offset %d", offset)
	}
}

package selector

import (
	"strings"

	"csspeek.dev/cpls/internal/position"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"golang.org/x/net/html"
)

// At returns the selector under pos in markup text.
// The text is only tokenized far enough to find the tag containing the
// cursor; the tag itself is scanned lexically, so malformed markup elsewhere
// does not matter. Positions use UTF-16 columns.
func At(text string, pos protocol.Position, opts Options) (Occurrence, bool) {
	index := position.NewIndex(text)
	cursor := index.Offset(pos)

	start, raw, ok := tagAt(text, cursor)
	if !ok {
		return Occurrence{}, false
	}

	span, sel, ok := scanTag(raw, cursor-start, opts)
	if !ok {
		return Occurrence{}, false
	}

	return Occurrence{
		Selector: sel,
		Range:    index.Range(start+span.start, start+span.end),
	}, true
}

// tagAt returns the byte offset and raw text of the start or end tag that
// contains cursor
func tagAt(text string, cursor int) (int, string, bool) {
	z := html.NewTokenizer(strings.NewReader(text))
	offset := 0
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return 0, "", false
		}

		raw := z.Raw()
		start := offset
		offset += len(raw)

		if cursor < start {
			return 0, "", false
		}
		if cursor >= offset {
			continue
		}

		switch tt {
		case html.StartTagToken, html.SelfClosingTagToken, html.EndTagToken:
			return start, string(raw), true
		default:
			return 0, "", false
		}
	}
}

type span struct {
	start, end int
}

func (s span) contains(offset int) bool {
	return s.start <= offset && offset <= s.end
}

// scanTag finds the selector at cursor inside the raw text of one tag
func scanTag(raw string, cursor int, opts Options) (span, Selector, bool) {
	s := scanner{src: raw, pos: 1}

	end := s.peek() == '/'
	if end {
		s.pos++
	}

	name := s.readWhile(func(c byte) bool { return !isSpace(c) && c != '/' && c != '>' })
	if name.contains(cursor) {
		value := raw[name.start:name.end]
		if !opts.SupportTags || !usable(value) {
			return span{}, Selector{}, false
		}
		return name, Selector{Kind: Tag, Value: value}, true
	}
	if end {
		return span{}, Selector{}, false
	}

	for s.pos < len(raw) {
		s.skipWhile(func(c byte) bool { return isSpace(c) || c == '/' })
		if s.pos >= len(raw) || raw[s.pos] == '>' {
			break
		}

		attr := s.readWhile(func(c byte) bool { return !isSpace(c) && c != '=' && c != '>' && c != '/' })
		if attr.start == attr.end {
			s.pos++
			continue
		}

		s.skipWhile(isSpace)
		if s.peek() != '=' {
			continue
		}
		s.pos++
		s.skipWhile(isSpace)

		value := s.readValue()
		if !value.contains(cursor) {
			if value.start > cursor {
				break
			}
			continue
		}

		switch strings.ToLower(raw[attr.start:attr.end]) {
		case "class", "classname":
			return classAt(raw, value, cursor)
		case "id":
			return idAt(raw, value)
		}
		break
	}

	return span{}, Selector{}, false
}

// classAt picks the whitespace-separated class name under cursor
func classAt(raw string, value span, cursor int) (span, Selector, bool) {
	i := value.start
	for i < value.end {
		for i < value.end && isSpace(raw[i]) {
			i++
		}
		tok := span{start: i}
		for i < value.end && !isSpace(raw[i]) {
			i++
		}
		tok.end = i

		if tok.start < tok.end && tok.contains(cursor) {
			name := raw[tok.start:tok.end]
			if !usable(name) {
				return span{}, Selector{}, false
			}
			return tok, Selector{Kind: Class, Value: name}, true
		}
	}
	return span{}, Selector{}, false
}

func idAt(raw string, value span) (span, Selector, bool) {
	for value.start < value.end && isSpace(raw[value.start]) {
		value.start++
	}
	for value.end > value.start && isSpace(raw[value.end-1]) {
		value.end--
	}

	id := raw[value.start:value.end]
	if !usable(id) {
		return span{}, Selector{}, false
	}
	return value, Selector{Kind: ID, Value: id}, true
}

type scanner struct {
	src string
	pos int
}

func (s *scanner) peek() byte {
	if s.pos >= len(s.src) {
		return 0
	}
	return s.src[s.pos]
}

func (s *scanner) skipWhile(keep func(byte) bool) {
	for s.pos < len(s.src) && keep(s.src[s.pos]) {
		s.pos++
	}
}

func (s *scanner) readWhile(keep func(byte) bool) span {
	start := s.pos
	s.skipWhile(keep)
	return span{start: start, end: s.pos}
}

// readValue reads an attribute value and returns the span inside its quotes
func (s *scanner) readValue() span {
	if q := s.peek(); q == '"' || q == '\'' {
		s.pos++
		v := s.readWhile(func(c byte) bool { return c != q })
		if s.pos < len(s.src) {
			s.pos++
		}
		return v
	}
	return s.readWhile(func(c byte) bool { return !isSpace(c) && c != '>' })
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

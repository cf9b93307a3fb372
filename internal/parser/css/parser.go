package css

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	"csspeek.dev/cpls/internal/position"
	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_css "github.com/tree-sitter/tree-sitter-css/bindings/go"
)

// Parser extracts selector outlines from CSS with tree-sitter.
// The same grammar serves SCSS and LESS sources. Dialect syntax it cannot
// read (a leading &-suffix, $variables, @use, mixin bodies) ends up in ERROR
// nodes or inside a neighbouring rule's selectors, so selector text is read
// from the source between the previous statement and the rule's block.
type Parser struct {
	parser *sitter.Parser
}

var cssLang = sitter.NewLanguage(tree_sitter_css.Language())

// parserPool is a pool of reusable CSS parsers
var parserPool = sync.Pool{
	New: func() any {
		parser := sitter.NewParser()
		if err := parser.SetLanguage(cssLang); err != nil {
			panic(fmt.Sprintf("failed to set CSS language: %v", err))
		}
		return &Parser{parser: parser}
	},
}

// AcquireParser gets a parser from the pool
func AcquireParser() *Parser {
	p := parserPool.Get().(*Parser)
	p.parser.Reset()
	return p
}

// ReleaseParser returns a parser to the pool
func ReleaseParser(p *Parser) {
	if p != nil {
		parserPool.Put(p)
	}
}

// Close closes the parser and releases its resources
func (p *Parser) Close() {
	if p.parser != nil {
		p.parser.Close()
	}
}

// ClosePool closes all parsers in the pool
func ClosePool() {
	for range 100 {
		if p, ok := parserPool.Get().(*Parser); ok && p != nil {
			p.Close()
		}
	}
}

// Parse parses CSS source and returns its selector outline
func (p *Parser) Parse(source string) (*Outline, error) {
	src := []byte(source)
	tree := p.parser.Parse(src, nil)
	if tree == nil {
		return nil, fmt.Errorf("failed to parse CSS")
	}
	defer tree.Close()

	w := walker{src: src, index: position.NewIndex(source)}
	w.walk(tree.RootNode(), "")

	return &Outline{Items: w.items}, nil
}

type walker struct {
	src   []byte
	index *position.Index
	items []Item
}

func (w *walker) walk(node *sitter.Node, container string) {
	if node == nil {
		return
	}

	// from is where the statement being read may start: just after the
	// last child that ended a statement or opened a block
	from := node.StartByte()
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		switch child.Kind() {
		case "rule_set":
			w.ruleSet(child, from, container)
		case "keyframes_statement":
			w.keyframes(child, container)
		default:
			w.walk(child, container)
		}
		if w.terminates(child) {
			from = child.EndByte()
		}
	}
}

// terminates reports whether a node's text ends a statement or opens a block
func (w *walker) terminates(node *sitter.Node) bool {
	end := node.EndByte()
	if end <= node.StartByte() {
		return false
	}
	switch w.src[end-1] {
	case ';', '{', '}':
		return true
	}
	return false
}

// ruleSet records one item per selector, then descends into the block so
// nested rules follow their parent.
func (w *walker) ruleSet(node *sitter.Node, from uint, container string) {
	var selectors, block *sitter.Node
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		switch child.Kind() {
		case "selectors":
			selectors = child
		case "block":
			block = child
		}
	}

	var end uint
	switch {
	case block != nil:
		end = block.StartByte()
	case selectors != nil:
		end = selectors.EndByte()
	default:
		return
	}

	var names []string
	for _, sel := range splitSelectors(w.src, int(from), int(end)) { //nolint:gosec // G115: byte offsets are bounded by source size
		start, stop, ok := trimSelector(w.src, sel.start, sel.end)
		if !ok {
			continue
		}
		name := collapseSpace(stripComments(string(w.src[start:stop])))
		if name == "" || isAtRulePrelude(name) {
			continue
		}
		names = append(names, name)
		w.items = append(w.items, Item{
			Kind:      RuleSelector,
			Name:      name,
			Container: container,
			Range:     w.index.Range(start, stop),
		})
	}

	if block == nil {
		return
	}
	nested := container
	if len(names) > 0 {
		nested = strings.Join(names, ", ")
	}
	w.walk(block, nested)
}

func (w *walker) keyframes(node *sitter.Node, container string) {
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child.Kind() != "keyframes_name" {
			continue
		}
		w.items = append(w.items, Item{
			Kind:      Keyframes,
			Name:      "@keyframes " + w.text(child),
			Container: container,
			Range:     w.index.Range(int(node.StartByte()), int(node.EndByte())), //nolint:gosec // G115: byte offsets are bounded by source size
		})
		return
	}
}

func (w *walker) text(node *sitter.Node) string {
	return string(w.src[node.StartByte():node.EndByte()])
}

type span struct {
	start, end int
}

// splitSelectors splits src[from:to] into the selectors of one selector
// list. Anything before the last top-level ; { or } belongs to an earlier
// statement and is dropped. Strings, comments, escapes, interpolations and
// bracketed arguments are skipped whole.
func splitSelectors(src []byte, from, to int) []span {
	var spans []span
	start := from
	depth := 0
	for i := from; i < to; {
		c := src[i]
		switch {
		case c == '\\':
			i += 2
			continue
		case c == '"' || c == '\'':
			i = skipString(src, i, to)
			continue
		case c == '/' && i+1 < to && src[i+1] == '*':
			i = skipBlockComment(src, i, to)
			continue
		case c == '/' && i+1 < to && src[i+1] == '/' && depth == 0:
			i = skipLine(src, i, to)
			continue
		case (c == '#' || c == '@' || c == '$') && i+1 < to && src[i+1] == '{':
			i = skipInterpolation(src, i+1, to)
			continue
		case c == '(' || c == '[':
			depth++
		case c == ')' || c == ']':
			if depth > 0 {
				depth--
			}
		case depth == 0 && (c == ';' || c == '{' || c == '}'):
			spans = spans[:0]
			start = i + 1
		case depth == 0 && c == ',':
			spans = append(spans, span{start, i})
			start = i + 1
		}
		i++
	}
	return append(spans, span{start, to})
}

// trimSelector narrows src[start:end] to the selector text, without
// surrounding whitespace or comments
func trimSelector(src []byte, start, end int) (int, int, bool) {
leading:
	for start < end {
		switch {
		case isSpace(src[start]):
			start++
		case bytes.HasPrefix(src[start:end], []byte("/*")):
			start = skipBlockComment(src, start, end)
		case bytes.HasPrefix(src[start:end], []byte("//")):
			start = skipLine(src, start, end)
		default:
			break leading
		}
	}
	for start < end {
		switch {
		case isSpace(src[end-1]):
			end--
		case bytes.HasSuffix(src[start:end], []byte("*/")):
			open := bytes.LastIndex(src[start:end-2], []byte("/*"))
			if open < 0 {
				return start, end, true
			}
			end = start + open
		default:
			return start, end, true
		}
	}
	return start, end, false
}

func skipString(src []byte, i, to int) int {
	quote := src[i]
	for i++; i < to; i++ {
		switch src[i] {
		case '\\':
			i++
		case quote, '\n':
			return i + 1
		}
	}
	return to
}

func skipBlockComment(src []byte, i, to int) int {
	if end := bytes.Index(src[i+2:to], []byte("*/")); end >= 0 {
		return i + 2 + end + 2
	}
	return to
}

func skipLine(src []byte, i, to int) int {
	if end := bytes.IndexByte(src[i:to], '\n'); end >= 0 {
		return i + end
	}
	return to
}

// skipInterpolation skips the braces opened at src[open]
func skipInterpolation(src []byte, open, to int) int {
	depth := 0
	for i := open; i < to; i++ {
		switch src[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return to
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

// isAtRulePrelude reports whether text read as a selector is the head of an
// at-rule the grammar did not recognize, such as @mixin name(...). LESS
// @{var} interpolation is still a selector.
func isAtRulePrelude(name string) bool {
	return len(name) > 1 && name[0] == '@' && name[1] != '{'
}

// stripComments removes block comments from a selector
func stripComments(s string) string {
	for {
		open := strings.Index(s, "/*")
		if open < 0 {
			return s
		}
		end := strings.Index(s[open+2:], "*/")
		if end < 0 {
			return s[:open]
		}
		s = s[:open] + " " + s[open+2+end+2:]
	}
}

// collapseSpace trims s and replaces each run of whitespace with one space
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

package js

import (
	"fmt"
	"sync"

	"csspeek.dev/cpls/internal/log"
	"csspeek.dev/cpls/internal/parser/css"
	htmlparser "csspeek.dev/cpls/internal/parser/html"
	"csspeek.dev/cpls/internal/position"
	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
)

// Parser finds stylesheets embedded in JS/TS tagged template literals
type Parser struct {
	parser        *sitter.Parser
	templateQuery *sitter.Query
	genericQuery  *sitter.Query // css<Type>`...`, which the grammar reads as a binary_expression
}

var jsLang = sitter.NewLanguage(tree_sitter_javascript.Language())

// parserPool is a pool of reusable JS parsers
var parserPool = sync.Pool{
	New: func() any {
		parser := sitter.NewParser()
		if err := parser.SetLanguage(jsLang); err != nil {
			panic(fmt.Sprintf("failed to set JS language: %v", err))
		}

		templateQuery, qerr := sitter.NewQuery(jsLang, `
			(call_expression
				function: (identifier) @tag
				arguments: (template_string) @template)
		`)
		if qerr != nil {
			panic(fmt.Sprintf("failed to compile template query: %v", qerr))
		}

		genericQuery, qerr := sitter.NewQuery(jsLang, `
			(binary_expression
				left: (binary_expression
					left: (identifier) @tag)
				right: (template_string) @template)
		`)
		if qerr != nil {
			panic(fmt.Sprintf("failed to compile generic query: %v", qerr))
		}

		return &Parser{
			parser:        parser,
			templateQuery: templateQuery,
			genericQuery:  genericQuery,
		}
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
	if p.templateQuery != nil {
		p.templateQuery.Close()
	}
	if p.genericQuery != nil {
		p.genericQuery.Close()
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

// Templates returns the css and html tagged templates in source.
// Plain tagged templates are listed before the generic css<Type> form.
func (p *Parser) Templates(source string) []Template {
	src := []byte(source)
	tree := p.parser.Parse(src, nil)
	if tree == nil {
		return nil
	}
	defer tree.Close()

	index := position.NewIndex(source)
	root := tree.RootNode()

	var templates []Template
	for _, query := range []*sitter.Query{p.templateQuery, p.genericQuery} {
		templates = collectTemplates(query, root, src, index, templates)
	}
	return templates
}

func collectTemplates(query *sitter.Query, root *sitter.Node, src []byte, index *position.Index, templates []Template) []Template {
	cursor := sitter.NewQueryCursor()
	defer cursor.Close()

	matches := cursor.Matches(query, root, src)
	for match := matches.Next(); match != nil; match = matches.Next() {
		var tag string
		var node *sitter.Node

		for _, capture := range match.Captures {
			switch query.CaptureNames()[capture.Index] {
			case "tag":
				tag = string(src[capture.Node.StartByte():capture.Node.EndByte()])
			case "template":
				captured := capture.Node
				node = &captured
			}
		}

		if node == nil || (tag != "css" && tag != "html") {
			continue
		}

		if segments := splitSegments(node, src, index); len(segments) > 0 {
			templates = append(templates, Template{Tag: tag, Segments: segments})
		}
	}
	return templates
}

// splitSegments returns the string_fragment children of a template_string
func splitSegments(node *sitter.Node, src []byte, index *position.Index) []Segment {
	var segments []Segment
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child.Kind() != "string_fragment" {
			continue
		}
		segments = append(segments, Segment{
			Content: string(src[child.StartByte():child.EndByte()]),
			Start:   index.Position(int(child.StartByte())), //nolint:gosec // G115: byte offsets are bounded by source size
		})
	}
	return segments
}

// ParseCSS outlines the stylesheets in css`...` templates and in <style>
// elements of html`...` templates. Ranges are in script coordinates.
func (p *Parser) ParseCSS(source string) (*css.Outline, error) {
	result := &css.Outline{}

	templates := p.Templates(source)
	if len(templates) == 0 {
		return result, nil
	}

	cssParser := css.AcquireParser()
	defer css.ReleaseParser(cssParser)

	for _, tmpl := range templates {
		for _, seg := range tmpl.Segments {
			var outline *css.Outline
			var err error
			if tmpl.Tag == "css" {
				outline, err = cssParser.Parse(seg.Content)
			} else {
				outline, err = parseHTMLSegment(seg.Content)
			}
			if err != nil {
				log.Debug("Failed to parse %s template segment at %d:%d: %v",
					tmpl.Tag, seg.Start.Line, seg.Start.Character, err)
				continue
			}
			outline.Offset(seg.Start)
			result.Items = append(result.Items, outline.Items...)
		}
	}
	return result, nil
}

func parseHTMLSegment(content string) (*css.Outline, error) {
	htmlParser := htmlparser.AcquireParser()
	defer htmlparser.ReleaseParser(htmlParser)
	return htmlParser.ParseCSS(content)
}

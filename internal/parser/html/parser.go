package html

import (
	"fmt"
	"sync"

	"csspeek.dev/cpls/internal/parser/css"
	"csspeek.dev/cpls/internal/position"
	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_html "github.com/tree-sitter/tree-sitter-html/bindings/go"
)

// Parser finds <style> elements in HTML
type Parser struct {
	parser     *sitter.Parser
	styleQuery *sitter.Query
}

var htmlLang = sitter.NewLanguage(tree_sitter_html.Language())

// parserPool is a pool of reusable HTML parsers
var parserPool = sync.Pool{
	New: func() any {
		parser := sitter.NewParser()
		if err := parser.SetLanguage(htmlLang); err != nil {
			panic(fmt.Sprintf("failed to set HTML language: %v", err))
		}

		styleQuery, qerr := sitter.NewQuery(htmlLang, `(style_element (raw_text) @css)`)
		if qerr != nil {
			panic(fmt.Sprintf("failed to compile style query: %v", qerr))
		}

		return &Parser{
			parser:     parser,
			styleQuery: styleQuery,
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
	if p.styleQuery != nil {
		p.styleQuery.Close()
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

// StyleRegions returns the contents of every <style> element in source order
func (p *Parser) StyleRegions(source string) []StyleRegion {
	src := []byte(source)
	tree := p.parser.Parse(src, nil)
	if tree == nil {
		return nil
	}
	defer tree.Close()

	index := position.NewIndex(source)

	cursor := sitter.NewQueryCursor()
	defer cursor.Close()

	var regions []StyleRegion
	matches := cursor.Matches(p.styleQuery, tree.RootNode(), src)
	for match := matches.Next(); match != nil; match = matches.Next() {
		for _, capture := range match.Captures {
			node := capture.Node
			regions = append(regions, StyleRegion{
				Content: string(src[node.StartByte():node.EndByte()]),
				Start:   index.Position(int(node.StartByte())), //nolint:gosec // G115: byte offsets are bounded by source size
			})
		}
	}
	return regions
}

// ParseCSS outlines the stylesheets embedded in HTML, with ranges in
// document coordinates. A region that fails to parse is skipped.
func (p *Parser) ParseCSS(source string) (*css.Outline, error) {
	result := &css.Outline{}

	regions := p.StyleRegions(source)
	if len(regions) == 0 {
		return result, nil
	}

	cssParser := css.AcquireParser()
	defer css.ReleaseParser(cssParser)

	for _, region := range regions {
		outline, err := cssParser.Parse(region.Content)
		if err != nil {
			continue
		}
		outline.Offset(region.Start)
		result.Items = append(result.Items, outline.Items...)
	}
	return result, nil
}

// Package stylesheet turns stylesheet documents into ordered symbol lists.
package stylesheet

import (
	"fmt"

	"csspeek.dev/cpls/internal/documents"
	"csspeek.dev/cpls/internal/parser"
	"csspeek.dev/cpls/internal/parser/css"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Symbol is a named, located construct in a stylesheet, usually one rule
// selector. Name may start with the & nesting marker.
type Symbol struct {
	Name          string
	Kind          protocol.SymbolKind
	Location      protocol.Location
	ContainerName string
}

// Stylesheet is a parsed stylesheet document
type Stylesheet struct {
	Outline *css.Outline
}

// Service parses one family of stylesheet languages.
// FindDocumentSymbols must return symbols in declaration order.
type Service interface {
	Parse(doc *documents.Document) (*Stylesheet, error)
	FindDocumentSymbols(doc *documents.Document, sheet *Stylesheet) []Symbol
}

// TreeSitterService reads documents with one of the tree-sitter dialects
type TreeSitterService struct {
	Dialect parser.Dialect
}

// Parse implements Service
func (s TreeSitterService) Parse(doc *documents.Document) (*Stylesheet, error) {
	outline, err := parser.Parse(doc.Content(), s.Dialect)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", doc.URI(), err)
	}
	return &Stylesheet{Outline: outline}, nil
}

// FindDocumentSymbols implements Service
func (s TreeSitterService) FindDocumentSymbols(doc *documents.Document, sheet *Stylesheet) []Symbol {
	if sheet == nil || sheet.Outline == nil {
		return nil
	}

	symbols := make([]Symbol, 0, len(sheet.Outline.Items))
	for _, item := range sheet.Outline.Items {
		kind := protocol.SymbolKindClass
		if item.Kind == css.Keyframes {
			kind = protocol.SymbolKindFunction
		}
		symbols = append(symbols, Symbol{
			Name: item.Name,
			Kind: kind,
			Location: protocol.Location{
				URI:   doc.URI(),
				Range: item.Range,
			},
			ContainerName: item.Container,
		})
	}
	return symbols
}

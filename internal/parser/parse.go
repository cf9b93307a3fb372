package parser

import (
	"fmt"

	"csspeek.dev/cpls/internal/parser/css"
	"csspeek.dev/cpls/internal/parser/html"
	"csspeek.dev/cpls/internal/parser/js"
)

// Dialect names the grammar a document is read with
type Dialect string

const (
	// CSS reads the whole document as a stylesheet (css, scss, less)
	CSS Dialect = "css"
	// HTML reads the contents of <style> elements
	HTML Dialect = "html"
	// JS reads css`...` and html`...` tagged templates
	JS Dialect = "js"
)

// dialects maps language IDs to the grammar they are read with
var dialects = map[string]Dialect{
	"css":             CSS,
	"scss":            CSS,
	"less":            CSS,
	"html":            HTML,
	"javascript":      JS,
	"javascriptreact": JS,
	"typescript":      JS,
	"typescriptreact": JS,
}

// DialectFor returns the dialect for a language ID
func DialectFor(languageID string) (Dialect, bool) {
	d, ok := dialects[languageID]
	return d, ok
}

// Languages returns every language ID with a dialect
func Languages() []string {
	ids := make([]string, 0, len(dialects))
	for id := range dialects {
		ids = append(ids, id)
	}
	return ids
}

// Parse outlines content with the given dialect
func Parse(content string, dialect Dialect) (*css.Outline, error) {
	switch dialect {
	case CSS:
		p := css.AcquireParser()
		defer css.ReleaseParser(p)
		return p.Parse(content)

	case HTML:
		p := html.AcquireParser()
		defer html.ReleaseParser(p)
		return p.ParseCSS(content)

	case JS:
		p := js.AcquireParser()
		defer js.ReleaseParser(p)
		return p.ParseCSS(content)

	default:
		return nil, fmt.Errorf("unknown dialect %q", dialect)
	}
}

// ClosePools releases the pooled parsers of every dialect
func ClosePools() {
	css.ClosePool()
	html.ClosePool()
	js.ClosePool()
}

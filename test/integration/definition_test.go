package integration_test

import (
	"path/filepath"
	"strings"
	"testing"

	"csspeek.dev/cpls/lsp"
	"csspeek.dev/cpls/lsp/methods/textDocument/definition"
	"csspeek.dev/cpls/lsp/types"
	"csspeek.dev/cpls/test/integration/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

const pageHTML = `<main id="layout">
  <nav class="menu">
    <a class="menu-item active">Home</a>
  </nav>
</main>
`

// definitionAt requests a definition and expects a location list
func definitionAt(t *testing.T, server *lsp.Server, uri string, line, char uint32) []protocol.Location {
	t.Helper()
	req := types.NewRequestContext(server, nil)
	result, err := definition.Definition(req, &protocol.DefinitionParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: uri},
			Position:     protocol.Position{Line: line, Character: char},
		},
	})
	require.NoError(t, err)
	if result == nil {
		return nil
	}
	locations, ok := result.([]protocol.Location)
	require.True(t, ok, "expected []protocol.Location, got %T", result)
	return locations
}

func uris(locations []protocol.Location) []string {
	out := make([]string, 0, len(locations))
	for _, loc := range locations {
		out = append(out, loc.URI)
	}
	return out
}

// TestDefinition_DiscoveredStylesheets tests go-to-definition against
// stylesheets found on disk during initialize
func TestDefinition_DiscoveredStylesheets(t *testing.T) {
	root := t.TempDir()
	siteURI := testutil.WriteFile(t, root, "css/site.css", `#layout { display: grid; }
.menu a:hover { color: red; }
`)
	navURI := testutil.WriteFile(t, root, "scss/nav.scss", `.menu {
  display: flex;
  &-item { padding: 0; }
  .active { font-weight: bold; }
}
`)
	testutil.WriteFile(t, root, "node_modules/vendor/vendor.css", ".menu { display: none; }\n")
	pageURI := testutil.WriteFile(t, root, "index.html", pageHTML)

	server := testutil.NewTestServer(t)
	warnings := testutil.Initialize(t, server, root, nil)
	assert.Empty(t, warnings)
	assert.Equal(t, 2, server.Stylesheets().Len(), "node_modules is excluded")

	testutil.OpenDocument(t, server, pageURI, "html", pageHTML)

	t.Run("id", func(t *testing.T) {
		locations := definitionAt(t, server, pageURI, 0, 12)
		require.Len(t, locations, 1)
		assert.Equal(t, siteURI, locations[0].URI)
		assert.Equal(t, uint32(0), locations[0].Range.Start.Line)
	})

	t.Run("class on a parent rule", func(t *testing.T) {
		locations := definitionAt(t, server, pageURI, 1, 15)
		require.Len(t, locations, 1)
		assert.Equal(t, navURI, locations[0].URI)
		assert.Equal(t, uint32(0), locations[0].Range.Start.Line)
	})

	t.Run("nested suffix rule", func(t *testing.T) {
		locations := definitionAt(t, server, pageURI, 2, 16)
		require.Len(t, locations, 1)
		assert.Equal(t, navURI, locations[0].URI)
		assert.Equal(t, uint32(2), locations[0].Range.Start.Line)
	})

	t.Run("nested descendant rule", func(t *testing.T) {
		locations := definitionAt(t, server, pageURI, 2, 26)
		require.Len(t, locations, 1)
		assert.Equal(t, uint32(3), locations[0].Range.Start.Line)
	})

	t.Run("tag in a compound selector", func(t *testing.T) {
		locations := definitionAt(t, server, pageURI, 2, 5)
		require.Len(t, locations, 1)
		assert.Equal(t, siteURI, locations[0].URI)
		assert.Equal(t, uint32(1), locations[0].Range.Start.Line)
	})

	t.Run("unknown tag", func(t *testing.T) {
		locations := definitionAt(t, server, pageURI, 0, 2)
		assert.NotNil(t, locations)
		assert.Empty(t, locations)
	})

	t.Run("text content", func(t *testing.T) {
		assert.Nil(t, definitionAt(t, server, pageURI, 2, 34))
	})
}

// TestDefinition_OpenStylesheetWins tests that an open buffer replaces the
// disk copy of a stylesheet until it is closed
func TestDefinition_OpenStylesheetWins(t *testing.T) {
	root := t.TempDir()
	siteURI := testutil.WriteFile(t, root, "site.css", "#layout {}\n")
	pageURI := testutil.WriteFile(t, root, "index.html", pageHTML)

	server := testutil.NewTestServer(t)
	testutil.Initialize(t, server, root, nil)
	testutil.OpenDocument(t, server, pageURI, "html", pageHTML)

	require.Len(t, definitionAt(t, server, pageURI, 1, 15), 0)

	testutil.OpenDocument(t, server, siteURI, "css", "#layout {}\n")
	testutil.ChangeDocument(t, server, siteURI, "#layout {}\n\n.menu {}\n", 2)

	locations := definitionAt(t, server, pageURI, 1, 15)
	require.Len(t, locations, 1)
	assert.Equal(t, uint32(2), locations[0].Range.Start.Line)

	// Closing without saving falls back to the file on disk
	assert.Empty(t, testutil.CloseDocument(t, server, siteURI))
	assert.Empty(t, definitionAt(t, server, pageURI, 1, 15))
	assert.Len(t, definitionAt(t, server, pageURI, 0, 12), 1)
}

// TestDefinition_UnsavedStylesheet tests that a stylesheet never written to
// disk is forgotten when its buffer closes
func TestDefinition_UnsavedStylesheet(t *testing.T) {
	root := t.TempDir()
	pageURI := testutil.WriteFile(t, root, "index.html", pageHTML)
	scratchURI := "untitled:Untitled-1"

	server := testutil.NewTestServer(t)
	testutil.Initialize(t, server, root, nil)
	testutil.OpenDocument(t, server, pageURI, "html", pageHTML)
	testutil.OpenDocument(t, server, scratchURI, "scss", ".menu { color: red; }")

	assert.Equal(t, []string{scratchURI}, uris(definitionAt(t, server, pageURI, 1, 15)))

	testutil.CloseDocument(t, server, scratchURI)
	assert.Empty(t, definitionAt(t, server, pageURI, 1, 15))
	assert.Nil(t, server.Stylesheets().Get(scratchURI))
}

// TestDefinition_SeededStylesheets tests initialize with an explicit list
func TestDefinition_SeededStylesheets(t *testing.T) {
	root := t.TempDir()
	seededURI := testutil.WriteFile(t, root, "a.css", ".menu {}\n")
	testutil.WriteFile(t, root, "b.css", "#layout {}\n")
	pageURI := testutil.WriteFile(t, root, "index.html", pageHTML)

	server := testutil.NewTestServer(t)
	warnings := testutil.Initialize(t, server, root, map[string]any{
		"stylesheets": []map[string]any{
			{"fsPath": filepath.Join(root, "a.css")},
			{"fsPath": filepath.Join(root, "missing.css")},
		},
	})
	require.Len(t, warnings, 1)
	assert.True(t, strings.Contains(warnings[0].Error(), "missing.css"))

	testutil.OpenDocument(t, server, pageURI, "html", pageHTML)
	assert.Equal(t, []string{seededURI}, uris(definitionAt(t, server, pageURI, 1, 15)))
	assert.Empty(t, definitionAt(t, server, pageURI, 0, 12), "b.css was not seeded")
}

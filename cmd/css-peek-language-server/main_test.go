package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"csspeek.dev/cpls/internal/stylesheet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func fixtureWorkspace(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "styles/site.css", ".btn { color: red; }\n#main { margin: 0; }\n")
	writeFile(t, root, "node_modules/lib/lib.css", ".btn { color: blue; }\n")
	writeFile(t, root, "index.html", `<main id="main"><a class="btn">Go</a></main>`)
	return root
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "css-peek-language-server "))

	out, err = execute(t, "version", "--json")
	require.NoError(t, err)
	var info map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Contains(t, info, "version")
}

func TestInvalidLogLevel(t *testing.T) {
	_, err := execute(t, "--log-level", "loud", "version")
	assert.Error(t, err)
}

func TestSymbolsCommand(t *testing.T) {
	root := fixtureWorkspace(t)

	out, err := execute(t, "symbols", "btn", "--root", root, "--json")
	require.NoError(t, err)

	var symbols []stylesheet.Symbol
	require.NoError(t, json.Unmarshal([]byte(out), &symbols))
	require.Len(t, symbols, 1, "node_modules is excluded by default")
	assert.Equal(t, ".btn", symbols[0].Name)
	assert.True(t, strings.HasSuffix(symbols[0].Location.URI, "styles/site.css"))

	out, err = execute(t, "symbols", "btn", "--root", root)
	require.NoError(t, err)
	assert.Contains(t, out, "styles/site.css:1:1\t.btn")
}

func TestSymbolsCommandShortQuery(t *testing.T) {
	root := fixtureWorkspace(t)

	out, err := execute(t, "symbols", "b", "--root", root)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestDefinitionCommand(t *testing.T) {
	root := fixtureWorkspace(t)
	markup := filepath.Join(root, "index.html")

	tests := []struct {
		name     string
		char     string
		wantLine uint32
	}{
		{name: "id", char: "11", wantLine: 1},
		{name: "class", char: "28", wantLine: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, "definition", markup, "0", tt.char, "--root", root, "--json")
			require.NoError(t, err)

			var locations []protocol.Location
			require.NoError(t, json.Unmarshal([]byte(out), &locations))
			require.Len(t, locations, 1)
			assert.True(t, strings.HasSuffix(locations[0].URI, "styles/site.css"))
			assert.Equal(t, tt.wantLine, locations[0].Range.Start.Line)
		})
	}
}

func TestDefinitionCommandErrors(t *testing.T) {
	root := fixtureWorkspace(t)
	markup := filepath.Join(root, "index.html")

	t.Run("bad line", func(t *testing.T) {
		_, err := execute(t, "definition", markup, "-1", "0", "--root", root)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid line")
	})

	t.Run("no selector", func(t *testing.T) {
		_, err := execute(t, "definition", markup, "0", "32", "--root", root)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no selector")
	})

	t.Run("language not peeked", func(t *testing.T) {
		_, err := execute(t, "definition", markup, "0", "11", "--root", root, "--language", "vue")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "peekFromLanguages")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := execute(t, "definition", filepath.Join(root, "nope.html"), "0", "0", "--root", root)
		assert.Error(t, err)
	})
}

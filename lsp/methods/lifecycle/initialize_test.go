package lifecycle

import (
	"errors"
	"testing"

	"csspeek.dev/cpls/internal/cache"
	"csspeek.dev/cpls/lsp/testutil"
	"csspeek.dev/cpls/lsp/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func initialize(t *testing.T, ctx *testutil.MockServerContext, params *protocol.InitializeParams) (protocol.InitializeResult, *types.RequestContext) {
	t.Helper()
	req := types.NewRequestContext(ctx, &glsp.Context{})
	result, err := Initialize(req, params)
	require.NoError(t, err)
	initResult, ok := result.(protocol.InitializeResult)
	require.True(t, ok, "result should be an InitializeResult")
	return initResult, req
}

func TestInitialize(t *testing.T) {
	t.Run("sets root URI from params.RootURI", func(t *testing.T) {
		ctx := testutil.NewMockServerContext()
		rootURI := "file:///workspace"

		initialize(t, ctx, &protocol.InitializeParams{RootURI: &rootURI})

		assert.Equal(t, "file:///workspace", ctx.RootURI())
		assert.Equal(t, "/workspace", ctx.RootPath())
	})

	t.Run("sets root path from params.RootPath", func(t *testing.T) {
		ctx := testutil.NewMockServerContext()
		rootPath := "/workspace"

		initialize(t, ctx, &protocol.InitializeParams{RootPath: &rootPath})

		assert.Equal(t, "/workspace", ctx.RootPath())
		assert.Equal(t, "file:///workspace", ctx.RootURI())
	})

	t.Run("returns server capabilities", func(t *testing.T) {
		ctx := testutil.NewMockServerContext()

		result, _ := initialize(t, ctx, &protocol.InitializeParams{})

		require.NotNil(t, result.ServerInfo)
		assert.Equal(t, "css-peek-language-server", result.ServerInfo.Name)
		require.NotNil(t, result.ServerInfo.Version)

		caps := result.Capabilities
		assert.Equal(t, true, caps.DefinitionProvider)
		assert.Equal(t, true, caps.WorkspaceSymbolProvider)
		assert.Nil(t, caps.HoverProvider)
		assert.Nil(t, caps.CompletionProvider)

		sync, ok := caps.TextDocumentSync.(protocol.TextDocumentSyncOptions)
		require.True(t, ok)
		require.NotNil(t, sync.Change)
		assert.Equal(t, protocol.TextDocumentSyncKindFull, *sync.Change)
		require.NotNil(t, sync.OpenClose)
		assert.True(t, *sync.OpenClose)
	})

	t.Run("records definition link support", func(t *testing.T) {
		supported := true
		params := &protocol.InitializeParams{
			Capabilities: protocol.ClientCapabilities{
				TextDocument: &protocol.TextDocumentClientCapabilities{
					Definition: &protocol.DefinitionClientCapabilities{LinkSupport: &supported},
				},
			},
		}

		ctx := testutil.NewMockServerContext()
		initialize(t, ctx, params)
		assert.True(t, ctx.LinkSupport())

		ctx = testutil.NewMockServerContext()
		initialize(t, ctx, &protocol.InitializeParams{})
		assert.False(t, ctx.LinkSupport())
	})

	t.Run("seeds stylesheets from initializationOptions", func(t *testing.T) {
		ctx := testutil.NewMockServerContext()
		ctx.LoadStylesheetsFunc = func([]cache.File) error { return nil }

		initialize(t, ctx, &protocol.InitializeParams{
			InitializationOptions: map[string]any{
				"stylesheets": []any{
					map[string]any{"uri": "file:///ws/a.css", "fsPath": "/ws/a.css"},
					map[string]any{"uri": "file:///ws/b.scss", "fsPath": "/ws/b.scss"},
				},
			},
		})

		require.Len(t, ctx.LoadedStylesheets, 1)
		assert.Equal(t, []cache.File{
			{URI: "file:///ws/a.css", FSPath: "/ws/a.css"},
			{URI: "file:///ws/b.scss", FSPath: "/ws/b.scss"},
		}, ctx.LoadedStylesheets[0])
	})

	t.Run("discovers stylesheets without initializationOptions", func(t *testing.T) {
		ctx := testutil.NewMockServerContext()
		ctx.LoadStylesheetsFunc = func([]cache.File) error { return nil }

		initialize(t, ctx, &protocol.InitializeParams{})

		require.Len(t, ctx.LoadedStylesheets, 1)
		assert.Nil(t, ctx.LoadedStylesheets[0])
	})

	t.Run("applies settings from initializationOptions", func(t *testing.T) {
		ctx := testutil.NewMockServerContext()
		ctx.LoadStylesheetsFunc = func([]cache.File) error { return nil }

		initialize(t, ctx, &protocol.InitializeParams{
			InitializationOptions: map[string]any{
				"cssPeek": map[string]any{"peekFromLanguages": []any{"html", "vue"}},
			},
		})

		assert.Equal(t, []string{"html", "vue"}, ctx.GetConfig().PeekFromLanguages)
		assert.True(t, ctx.GetConfig().SupportTags)
	})

	t.Run("loading failures become warnings", func(t *testing.T) {
		ctx := testutil.NewMockServerContext()
		ctx.LoadStylesheetsFunc = func([]cache.File) error { return errors.New("unreadable") }
		ctx.LoadWorkspaceConfigFunc = func() (*types.ConfigOverlay, error) { return nil, errors.New("bad yaml") }

		_, req := initialize(t, ctx, &protocol.InitializeParams{
			InitializationOptions: "not an object",
		})

		assert.Len(t, req.Warnings(), 3)
	})
}

func TestParseInitializationOptions(t *testing.T) {
	opts, err := parseInitializationOptions(nil)
	require.NoError(t, err)
	assert.Nil(t, opts.Stylesheets)
	assert.Nil(t, opts.Settings)

	opts, err = parseInitializationOptions(map[string]any{"stylesheets": []any{}})
	require.NoError(t, err)
	assert.NotNil(t, opts.Stylesheets)
	assert.Empty(t, opts.Stylesheets)

	opts, err = parseInitializationOptions(map[string]any{"stylesheets": "nope"})
	require.Error(t, err)
	assert.Nil(t, opts.Stylesheets)
}

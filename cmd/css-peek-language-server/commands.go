package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"csspeek.dev/cpls/internal/documents"
	"csspeek.dev/cpls/internal/log"
	"csspeek.dev/cpls/internal/peek"
	"csspeek.dev/cpls/internal/selector"
	"csspeek.dev/cpls/internal/version"
	"csspeek.dev/cpls/lsp"
	"github.com/spf13/cobra"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

type options struct {
	logLevel string
	root     string
	language string
	json     bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "css-peek-language-server",
		Short: "Go to definition for CSS classes, ids, and tags",
		Long: `css-peek-language-server answers textDocument/definition and
workspace/symbol requests for class, id, and tag selectors used in markup,
pointing at the rules that define them in css, scss, and less stylesheets.

Run without a subcommand to serve LSP over stdio.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := log.ParseLevel(opts.logLevel)
			if err != nil {
				return err
			}
			log.SetLevel(level)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStdio()
		},
	}
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info",
		"Minimum log level: debug, info, warn, or error")

	symbolsCmd := &cobra.Command{
		Use:   "symbols <query>",
		Short: "Search the workspace stylesheets for a class, id, or tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSymbols(cmd.OutOrStdout(), opts, args[0])
		},
	}
	symbolsCmd.Flags().StringVar(&opts.root, "root", ".", "Workspace root to search")
	symbolsCmd.Flags().BoolVar(&opts.json, "json", false, "Print results as JSON")

	definitionCmd := &cobra.Command{
		Use:   "definition <file> <line> <character>",
		Short: "Find the rules defining the selector at a position (zero-based)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			line, err := parsePosition("line", args[1])
			if err != nil {
				return err
			}
			char, err := parsePosition("character", args[2])
			if err != nil {
				return err
			}
			pos := protocol.Position{Line: line, Character: char}
			return runDefinition(cmd.OutOrStdout(), opts, args[0], pos)
		},
	}
	definitionCmd.Flags().StringVar(&opts.root, "root", ".", "Workspace root to search")
	definitionCmd.Flags().StringVar(&opts.language, "language", "",
		"Language ID of the file (default: from its extension)")
	definitionCmd.Flags().BoolVar(&opts.json, "json", false, "Print results as JSON")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.json {
				return writeJSON(cmd.OutOrStdout(), version.Get())
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", cmd.Root().Name(), version.Get())
			return err
		},
	}
	versionCmd.Flags().BoolVar(&opts.json, "json", false, "Print build information as JSON")

	rootCmd.AddCommand(symbolsCmd, definitionCmd, versionCmd)
	return rootCmd
}

func runStdio() error {
	server, err := lsp.NewServer()
	if err != nil {
		return fmt.Errorf("failed to create LSP server: %w", err)
	}
	defer func() { _ = server.Close() }()

	// Run with stdio transport (for VSCode and other editors)
	if err := server.RunStdio(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func parsePosition(name, value string) (uint32, error) {
	n, err := strconv.ParseUint(value, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: must be a non-negative integer", name, value)
	}
	return uint32(n), nil
}

func runSymbols(out io.Writer, opts *options, query string) error {
	ws, err := openWorkspace(opts.root)
	if err != nil {
		return err
	}
	defer ws.Close()

	symbols := peek.SearchWorkspace(query, ws.stylesheets)
	if opts.json {
		return writeJSON(out, symbols)
	}
	for _, symbol := range symbols {
		if _, err := fmt.Fprintf(out, "%s\t%s\n", formatLocation(symbol.Location), symbol.Name); err != nil {
			return err
		}
	}
	return nil
}

func runDefinition(out io.Writer, opts *options, file string, pos protocol.Position) error {
	content, err := os.ReadFile(file) //nolint:gosec // G304: file named on the command line
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", file, err)
	}

	ws, err := openWorkspace(opts.root)
	if err != nil {
		return err
	}
	defer ws.Close()

	languageID := opts.language
	if languageID == "" {
		languageID = documents.LanguageIDFromPath(file)
	}
	if !ws.config.PeeksFrom(languageID) {
		return fmt.Errorf("%s files are not in peekFromLanguages %v", languageID, ws.config.PeekFromLanguages)
	}

	occurrence, ok := selector.At(string(content), pos, selector.Options{SupportTags: ws.config.SupportTags})
	if !ok {
		return fmt.Errorf("no selector at %d:%d", pos.Line, pos.Character)
	}

	locations := peek.FindDefinition(occurrence.Selector, ws.stylesheets)
	if opts.json {
		return writeJSON(out, locations)
	}
	for _, loc := range locations {
		if _, err := fmt.Fprintf(out, "%s\t%s\n", formatLocation(loc), occurrence.Selector); err != nil {
			return err
		}
	}
	return nil
}

// formatLocation prints a location as uri:line:character, one-based like
// compiler diagnostics
func formatLocation(loc protocol.Location) string {
	return fmt.Sprintf("%s:%d:%d", loc.URI, loc.Range.Start.Line+1, loc.Range.Start.Character+1)
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

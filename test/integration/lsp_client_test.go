package integration_test

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// LSPClient is a test client that communicates with an LSP server via stdio
type LSPClient struct {
	cmd       *exec.Cmd
	stdin     io.WriteCloser
	stdout    io.ReadCloser
	reader    *bufio.Reader
	msgID     int
	responses map[int]chan json.RawMessage
	mu        sync.Mutex
	t         *testing.T
}

// NewLSPClient creates a new LSP test client
func NewLSPClient(t *testing.T) *LSPClient {
	t.Helper()

	cwd, err := os.Getwd()
	require.NoError(t, err)
	projectRoot := filepath.Join(cwd, "..", "..")

	// Build with -cover so integration runs count toward coverage
	binary := filepath.Join(t.TempDir(), "css-peek-language-server")
	cmd := exec.Command("go", "build", "-cover", "-o", binary, "./cmd/css-peek-language-server")
	cmd.Dir = projectRoot
	output, buildErr := cmd.CombinedOutput()
	require.NoError(t, buildErr, "Failed to build server: %s", string(output))

	coverDir := filepath.Join(projectRoot, "coverage", "integration")
	require.NoError(t, os.MkdirAll(coverDir, 0o755))

	serverCmd := exec.Command(binary, "--log-level", "debug")
	serverCmd.Env = append(os.Environ(),
		fmt.Sprintf("GOCOVERDIR=%s", coverDir),
	)
	stdin, err := serverCmd.StdinPipe()
	require.NoError(t, err)
	stdout, err := serverCmd.StdoutPipe()
	require.NoError(t, err)
	stderr, err := serverCmd.StderrPipe()
	require.NoError(t, err)

	// Start the server
	err = serverCmd.Start()
	require.NoError(t, err)

	// Log server stderr in background
	go func() {
		scanner := bufio.NewScanner(stderr)
		for scanner.Scan() {
			t.Logf("[SERVER] %s", scanner.Text())
		}
	}()

	client := &LSPClient{
		cmd:       serverCmd,
		stdin:     stdin,
		stdout:    stdout,
		reader:    bufio.NewReader(stdout),
		responses: make(map[int]chan json.RawMessage),
		t:         t,
	}

	// Start reading responses in background
	go client.readResponses()

	return client
}

// Close shuts down the LSP client
func (c *LSPClient) Close() {
	c.Shutdown()
	c.stdin.Close()
	c.stdout.Close()
	c.cmd.Wait()
}

// sendRequest sends a JSON-RPC request and returns the message ID
func (c *LSPClient) sendRequest(method string, params any) int {
	c.mu.Lock()
	c.msgID++
	id := c.msgID
	c.responses[id] = make(chan json.RawMessage, 1)
	c.mu.Unlock()

	request := map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"method":  method,
		"params":  params,
	}

	c.sendMessage(request)
	return id
}

// sendNotification sends a JSON-RPC notification (no response expected)
func (c *LSPClient) sendNotification(method string, params any) {
	notification := map[string]any{
		"jsonrpc": "2.0",
		"method":  method,
		"params":  params,
	}

	c.sendMessage(notification)
}

// sendMessage sends a JSON-RPC message
func (c *LSPClient) sendMessage(msg any) {
	data, err := json.Marshal(msg)
	require.NoError(c.t, err)

	c.t.Logf("Sending: %s", string(data))

	header := fmt.Sprintf("Content-Length: %d\r\n\r\n", len(data))
	_, err = c.stdin.Write([]byte(header))
	require.NoError(c.t, err)
	_, err = c.stdin.Write(data)
	require.NoError(c.t, err)
}

// waitForResponse waits for a response to a request
func (c *LSPClient) waitForResponse(id int, timeout time.Duration) (json.RawMessage, error) {
	c.mu.Lock()
	ch, ok := c.responses[id]
	c.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("no response channel for message ID %d", id)
	}

	select {
	case response := <-ch:
		return response, nil
	case <-time.After(timeout):
		return nil, fmt.Errorf("timeout waiting for response to message %d", id)
	}
}

// readResponses reads responses from the server in a background goroutine
func (c *LSPClient) readResponses() {
	for {
		// Read Content-Length header
		line, err := c.reader.ReadString('\n')
		if err != nil {
			c.t.Logf("Error reading header: %v", err)
			return // Connection closed
		}

		var contentLength int
		_, err = fmt.Sscanf(line, "Content-Length: %d", &contentLength)
		if err != nil {
			c.t.Logf("Error parsing Content-Length: %v, line: %q", err, line)
			continue
		}

		// Read empty line
		c.reader.ReadString('\n')

		// Read JSON content
		content := make([]byte, contentLength)
		_, err = io.ReadFull(c.reader, content)
		if err != nil {
			c.t.Logf("Error reading content: %v", err)
			return
		}

		c.t.Logf("Received: %s", string(content))

		// Parse response/request
		var message struct {
			ID     *int            `json:"id"`
			Method *string         `json:"method"`
			Result json.RawMessage `json:"result"`
			Error  json.RawMessage `json:"error"`
		}
		err = json.Unmarshal(content, &message)
		if err != nil {
			c.t.Logf("Error unmarshaling message: %v", err)
			continue
		}

		// Handle server requests (like client/registerCapability)
		if message.Method != nil {
			c.t.Logf("Received server request: %s (id: %v)", *message.Method, message.ID)
			// Send empty success response for all server requests
			// Use a goroutine to avoid blocking the read loop
			if message.ID != nil {
				msgID := *message.ID // Capture for goroutine
				go func() {
					response := map[string]any{
						"jsonrpc": "2.0",
						"id":      msgID,
						"result":  nil,
					}
					c.sendMessage(response)
				}()
			}
			continue
		}

		// Route to response channel
		if message.ID != nil {
			c.mu.Lock()
			if ch, ok := c.responses[*message.ID]; ok {
				if message.Error != nil {
					c.t.Logf("Received error response for ID %d: %s", *message.ID, string(message.Error))
					ch <- message.Error
				} else {
					if len(message.Result) == 0 || string(message.Result) == "null" {
						c.t.Logf("Received null/empty result for ID %d", *message.ID)
					}
					ch <- message.Result
				}
			} else {
				c.t.Logf("No response channel for message ID %d", *message.ID)
			}
			c.mu.Unlock()
		}
	}
}

// Initialize sends the initialize request
func (c *LSPClient) Initialize(rootURI string, options any) error {
	params := map[string]any{
		"rootUri":               rootURI,
		"initializationOptions": options,
		"capabilities": map[string]any{
			"workspace": map[string]any{
				"didChangeWatchedFiles": map[string]any{
					"dynamicRegistration": true,
				},
			},
		},
	}

	id := c.sendRequest("initialize", params)
	_, err := c.waitForResponse(id, 5*time.Second)
	if err != nil {
		return err
	}

	// Send initialized notification
	c.sendNotification("initialized", map[string]any{})

	// Give server time to process initialized, load stylesheets, and register file watchers
	// Note: The server will send a client/registerCapability request which we'll respond to
	// We need to wait for that full exchange to complete
	time.Sleep(500 * time.Millisecond)

	return nil
}

// Shutdown sends the shutdown request
func (c *LSPClient) Shutdown() {
	id := c.sendRequest("shutdown", nil)
	c.waitForResponse(id, 2*time.Second)
	c.sendNotification("exit", nil)
}

// DidOpenTextDocument sends a didOpen notification
func (c *LSPClient) DidOpenTextDocument(uri, languageID, text string) {
	params := map[string]any{
		"textDocument": map[string]any{
			"uri":        uri,
			"languageId": languageID,
			"version":    1,
			"text":       text,
		},
	}
	c.sendNotification("textDocument/didOpen", params)
}

// DidChangeConfiguration sends a didChangeConfiguration notification
func (c *LSPClient) DidChangeConfiguration(settings map[string]any) {
	c.sendNotification("workspace/didChangeConfiguration", map[string]any{
		"settings": settings,
	})
}

// DidChangeWatchedFiles sends a didChangeWatchedFiles notification
func (c *LSPClient) DidChangeWatchedFiles(changes ...protocol.FileEvent) {
	c.sendNotification("workspace/didChangeWatchedFiles", map[string]any{
		"changes": changes,
	})
}

// Definition sends a definition request and decodes a location list.
// A null result is returned as nil.
func (c *LSPClient) Definition(uri string, line, character int) ([]protocol.Location, error) {
	params := map[string]any{
		"textDocument": map[string]any{
			"uri": uri,
		},
		"position": map[string]any{
			"line":      line,
			"character": character,
		},
	}

	id := c.sendRequest("textDocument/definition", params)
	response, err := c.waitForResponse(id, 2*time.Second)
	if err != nil {
		return nil, err
	}

	if string(response) == "null" {
		return nil, nil
	}

	var locations []protocol.Location
	if err := json.Unmarshal(response, &locations); err != nil {
		return nil, err
	}
	return locations, nil
}

// WorkspaceSymbol sends a workspace/symbol request
func (c *LSPClient) WorkspaceSymbol(query string) ([]protocol.SymbolInformation, error) {
	id := c.sendRequest("workspace/symbol", map[string]any{"query": query})
	response, err := c.waitForResponse(id, 2*time.Second)
	if err != nil {
		return nil, err
	}

	var symbols []protocol.SymbolInformation
	if err := json.Unmarshal(response, &symbols); err != nil {
		return nil, err
	}
	return symbols, nil
}

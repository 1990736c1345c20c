package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

// MCPTool wraps a tool served by an MCP server. The wrapped tool is exposed
// under its qualified name (mcp__<server>__<leaf>) so the dispatcher can
// attribute it to its server.
type MCPTool struct {
	session      *mcp.ClientSession
	tool         *mcp.Tool
	server       string
	cachedSchema *jsonschema.Schema
}

// NewMCPTool creates a new MCP tool wrapper for the given server namespace
func NewMCPTool(session *mcp.ClientSession, tool *mcp.Tool, server string) *MCPTool {
	return &MCPTool{
		session: session,
		tool:    tool,
		server:  server,
	}
}

// Server returns the name of the MCP server that provides this tool
func (m *MCPTool) Server() string {
	return m.server
}

// GetSchema returns the tool's schema under its qualified name.
// The conversion from the wire schema happens once and is cached.
func (m *MCPTool) GetSchema() *jsonschema.Schema {
	if m.cachedSchema != nil {
		return m.cachedSchema
	}

	var schema *jsonschema.Schema
	if m.tool.InputSchema != nil {
		if raw, err := json.Marshal(m.tool.InputSchema); err == nil {
			schema = &jsonschema.Schema{}
			if err := json.Unmarshal(raw, schema); err != nil {
				schema = nil
			}
		}
	}
	if schema == nil {
		schema = &jsonschema.Schema{Type: "object"}
	}

	schema.Title = QualifiedName(m.server, m.tool.Name)
	if schema.Description == "" {
		schema.Description = m.tool.Description
	}

	m.cachedSchema = schema
	return schema
}

// Execute runs the MCP tool with the given arguments
func (m *MCPTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	zap.S().Debugf("calling %s %v", QualifiedName(m.server, m.tool.Name), args)

	// Some servers reject a null arguments object
	if args == nil {
		args = make(map[string]any)
	}

	result, err := m.session.CallTool(ctx, &mcp.CallToolParams{
		Name:      m.tool.Name,
		Arguments: args,
	})
	if err != nil {
		return "", fmt.Errorf("MCP tool execution failed: %v", err)
	}

	if result.IsError {
		if len(result.Content) > 0 {
			content, _ := json.Marshal(result.Content)
			return "", fmt.Errorf("tool returned error: %s", string(content))
		}
		return "", fmt.Errorf("tool returned error without content")
	}

	if len(result.Content) == 0 {
		return "", nil
	}

	output, err := json.Marshal(result.Content)
	if err != nil {
		return "", fmt.Errorf("failed to marshal tool result: %v", err)
	}
	return string(output), nil
}

// MCPConfig represents the JSON configuration for an MCP server
type MCPConfig struct {
	// Local/stdio transport fields
	Command string            `json:"command,omitempty"`
	Args    []string          `json:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty"`

	// Remote transport fields
	URL       string            `json:"url,omitempty"`
	Transport string            `json:"transport,omitempty"` // "stdio" | "sse" | "streamable"
	Headers   map[string]string `json:"headers,omitempty"`
	Timeout   string            `json:"timeout,omitempty"`
}

// MCPServersConfig is the multi-server config file format
type MCPServersConfig struct {
	MCPServers map[string]MCPConfig `json:"mcpServers"`
}

// LoadMCPConfigFile parses a config file and returns server configs keyed by
// server name. Requires mcpServers format: {"mcpServers": {"name": {...}}}
func LoadMCPConfigFile(jsonFile string) (map[string]MCPConfig, error) {
	data, err := os.ReadFile(jsonFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read MCP config file %s: %v", jsonFile, err)
	}

	var multiConfig MCPServersConfig
	if err := json.Unmarshal(data, &multiConfig); err != nil {
		return nil, fmt.Errorf("failed to parse MCP config: %v", err)
	}

	if len(multiConfig.MCPServers) == 0 {
		return nil, fmt.Errorf("no servers defined in mcpServers (use format: {\"mcpServers\": {\"name\": {...}}})")
	}

	return multiConfig.MCPServers, nil
}

// headerRoundTripper wraps an http.RoundTripper to inject custom headers
type headerRoundTripper struct {
	base    http.RoundTripper
	headers map[string]string
}

func (h *headerRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	for k, v := range h.headers {
		req.Header.Set(k, v)
	}
	return h.base.RoundTrip(req)
}

func httpClientWithTimeout(headers map[string]string, timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &headerRoundTripper{
			base:    http.DefaultTransport,
			headers: headers,
		},
	}
}

// MCPClient manages the connection to a single MCP server
type MCPClient struct {
	session *mcp.ClientSession
	client  *mcp.Client
	server  string
}

// NewMCPClient connects to the named server defined in a JSON config
func NewMCPClient(name string, config *MCPConfig) (*MCPClient, error) {
	ctx := context.Background()

	client := mcp.NewClient(&mcp.Implementation{
		Name:    "dispatch",
		Version: "1.0.0",
	}, nil)

	// Default 30s for remote transports
	timeout := 30 * time.Second
	if config.Timeout != "" {
		if t, err := time.ParseDuration(config.Timeout); err == nil {
			timeout = t
		}
	}

	var transport mcp.Transport

	switch config.Transport {
	case "sse":
		if config.URL == "" {
			return nil, fmt.Errorf("SSE transport requires a URL")
		}
		zap.S().Debugf("connecting to MCP server %s via SSE: %s", name, config.URL)
		transport = &mcp.SSEClientTransport{
			Endpoint:   config.URL,
			HTTPClient: httpClientWithTimeout(config.Headers, timeout),
		}

	case "streamable":
		if config.URL == "" {
			return nil, fmt.Errorf("streamable transport requires a URL")
		}
		zap.S().Debugf("connecting to MCP server %s via streamable HTTP: %s", name, config.URL)
		transport = &mcp.StreamableClientTransport{
			Endpoint:   config.URL,
			HTTPClient: httpClientWithTimeout(config.Headers, timeout),
		}

	case "stdio", "":
		if config.Command == "" {
			return nil, fmt.Errorf("stdio transport requires a command")
		}

		cmd := exec.Command(config.Command, config.Args...)
		if len(config.Env) > 0 {
			cmd.Env = os.Environ()
			for key, value := range config.Env {
				cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", key, value))
			}
		}
		cmd.Stderr = os.Stderr

		zap.S().Debugf("connecting to MCP server %s: %s %v", name, config.Command, config.Args)
		transport = &mcp.CommandTransport{Command: cmd}

	default:
		return nil, fmt.Errorf("unknown transport type: %s (supported: stdio, sse, streamable)", config.Transport)
	}

	session, err := client.Connect(ctx, transport, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MCP server %s: %v", name, err)
	}

	return &MCPClient{
		session: session,
		client:  client,
		server:  name,
	}, nil
}

// Server returns the server name this client is connected to
func (c *MCPClient) Server() string {
	return c.server
}

// ListTools returns all tools available from the MCP server, wrapped under
// their qualified names
func (c *MCPClient) ListTools() ([]Tool, error) {
	ctx := context.Background()

	var tools []Tool
	for tool, err := range c.session.Tools(ctx, nil) {
		if err != nil {
			return nil, fmt.Errorf("error listing tools: %v", err)
		}
		if tool != nil {
			zap.S().Debugf("loaded MCP tool: %s - %s", QualifiedName(c.server, tool.Name), tool.Description)
			tools = append(tools, NewMCPTool(c.session, tool, c.server))
		}
	}

	return tools, nil
}

// Close closes the MCP client connection
func (c *MCPClient) Close() error {
	if c.session != nil {
		return c.session.Close()
	}
	return nil
}

// ConnectAll connects to every server in a config file and returns the
// pooled tools plus the list of connected server names. Servers that fail to
// connect are skipped with a warning so one bad server doesn't take down the
// whole pool.
func ConnectAll(jsonFile string) ([]Tool, []string, []*MCPClient, error) {
	configs, err := LoadMCPConfigFile(jsonFile)
	if err != nil {
		return nil, nil, nil, err
	}

	var pool []Tool
	var connected []string
	var clients []*MCPClient

	for name, config := range configs {
		client, err := NewMCPClient(name, &config)
		if err != nil {
			zap.S().Warnf("skipping MCP server %s: %v", name, err)
			continue
		}
		serverTools, err := client.ListTools()
		if err != nil {
			zap.S().Warnf("skipping MCP server %s: %v", name, err)
			client.Close()
			continue
		}
		pool = append(pool, serverTools...)
		connected = append(connected, name)
		clients = append(clients, client)
	}

	return pool, connected, clients, nil
}

// FormatServersForDisplay renders a server config map as display lines
func FormatServersForDisplay(configs map[string]MCPConfig) []string {
	lines := make([]string, 0, len(configs))
	for name, config := range configs {
		switch config.Transport {
		case "sse", "streamable":
			lines = append(lines, fmt.Sprintf("%s → %s (%s)", name, config.URL, config.Transport))
		default:
			parts := append([]string{config.Command}, config.Args...)
			lines = append(lines, fmt.Sprintf("%s → %s", name, strings.Join(parts, " ")))
		}
	}
	return lines
}

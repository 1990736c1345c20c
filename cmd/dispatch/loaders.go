package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/urfave/cli/v3"

	"github.com/alexschlessinger/dispatch/dispatch"
	"github.com/alexschlessinger/dispatch/tools"
)

// declaredTool is a tool known only by name and description, loaded from a
// JSON pool file. It carries enough for arbitration but cannot execute.
type declaredTool struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (d *declaredTool) GetSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Title:       d.Name,
		Description: d.Description,
		Type:        "object",
	}
}

func (d *declaredTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	return "", fmt.Errorf("tool %s is declared only, not executable", d.Name)
}

// loadPool assembles the tool pool from --file and/or --mcp, and returns
// the connected MCP server names alongside it.
func loadPool(cmd *cli.Command) ([]tools.Tool, []string, error) {
	var pool []tools.Tool
	var connected []string

	if path := cmd.String("file"); path != "" {
		declared, err := loadDeclaredTools(path)
		if err != nil {
			return nil, nil, err
		}
		pool = append(pool, declared...)
	}

	if path := cmd.String("mcp"); path != "" {
		mcpTools, servers, clients, err := tools.ConnectAll(path)
		if err != nil {
			return nil, nil, err
		}
		// Clients stay open for the lifetime of the command; the process
		// exit tears them down.
		_ = clients
		pool = append(pool, mcpTools...)
		connected = append(connected, servers...)
	}

	if len(pool) == 0 {
		return nil, nil, fmt.Errorf("no tools to analyze (use --file or --mcp)")
	}

	return pool, connected, nil
}

func loadDeclaredTools(path string) ([]tools.Tool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tools file %s: %w", path, err)
	}

	var declared []declaredTool
	if err := json.Unmarshal(data, &declared); err != nil {
		return nil, fmt.Errorf("failed to parse tools file %s: %w", path, err)
	}

	pool := make([]tools.Tool, len(declared))
	for i := range declared {
		pool[i] = &declared[i]
	}
	return pool, nil
}

// callFile is one entry of an exec batch file. Arguments may be a JSON
// object or a pre-encoded string.
type callFile struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

func loadCalls(path string) ([]dispatch.Call, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read calls file %s: %w", path, err)
	}

	var entries []callFile
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse calls file %s: %w", path, err)
	}

	calls := make([]dispatch.Call, len(entries))
	for i, entry := range entries {
		args := string(entry.Arguments)
		// Allow "arguments" to be a JSON-encoded string as providers send it
		var quoted string
		if err := json.Unmarshal(entry.Arguments, &quoted); err == nil {
			args = quoted
		}
		calls[i] = dispatch.Call{ID: entry.ID, Name: entry.Name, Arguments: args}
	}
	return calls, nil
}

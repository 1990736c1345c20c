package tools

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func TestMCPToolQualifiedNaming(t *testing.T) {
	wrapped := NewMCPTool(nil, &mcp.Tool{
		Name:        "get_time",
		Description: "Get the current time",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"timezone": {Type: "string"},
			},
		},
	}, "time")

	schema := wrapped.GetSchema()
	if schema.Title != "mcp__time__get_time" {
		t.Errorf("Title = %q, want mcp__time__get_time", schema.Title)
	}
	if schema.Description != "Get the current time" {
		t.Errorf("Description = %q", schema.Description)
	}
	if _, ok := schema.Properties["timezone"]; !ok {
		t.Error("wire schema properties should survive the wrapping")
	}

	if Name(wrapped) != "mcp__time__get_time" {
		t.Errorf("Name = %q", Name(wrapped))
	}
	if wrapped.Server() != "time" {
		t.Errorf("Server = %q, want time", wrapped.Server())
	}

	// The converted schema is cached.
	if wrapped.GetSchema() != schema {
		t.Error("repeated GetSchema should return the cached schema")
	}
}

func TestMCPToolNilInputSchema(t *testing.T) {
	wrapped := NewMCPTool(nil, &mcp.Tool{Name: "ping"}, "probe")

	schema := wrapped.GetSchema()
	if schema.Type != "object" {
		t.Errorf("fallback schema type = %q, want object", schema.Type)
	}
	if schema.Title != "mcp__probe__ping" {
		t.Errorf("Title = %q", schema.Title)
	}
}

func TestLoadMCPConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "servers.json")
	content := `{"mcpServers": {"time": {"command": "uvx", "args": ["mcp-server-time"]}}}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	configs, err := LoadMCPConfigFile(path)
	if err != nil {
		t.Fatalf("LoadMCPConfigFile: %v", err)
	}
	config, ok := configs["time"]
	if !ok {
		t.Fatal("time server missing from parsed config")
	}
	if config.Command != "uvx" {
		t.Errorf("command = %q, want uvx", config.Command)
	}
}

func TestLoadMCPConfigFileRejectsEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.json")
	if err := os.WriteFile(path, []byte(`{"mcpServers": {}}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadMCPConfigFile(path); err == nil {
		t.Error("expected error for a config with no servers")
	}

	if _, err := LoadMCPConfigFile(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected error for a missing file")
	}
}

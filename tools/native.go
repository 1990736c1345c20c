package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	gjs "github.com/google/jsonschema-go/jsonschema"
	"github.com/invopop/jsonschema"
)

// Built-in tools that ship with the dispatcher. Schemas are reflected from
// the argument structs rather than written out by hand.

// reflectSchema builds a tool schema from an args struct
func reflectSchema(name, description string, args any) *gjs.Schema {
	reflector := &jsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
	}

	raw, err := json.Marshal(reflector.Reflect(args))
	if err != nil {
		// Reflection only fails on unmarshalable Go types, which would be a
		// bug in the tool definition itself.
		panic(fmt.Sprintf("cannot reflect schema for %s: %v", name, err))
	}

	schema := &gjs.Schema{}
	if err := json.Unmarshal(raw, schema); err != nil {
		panic(fmt.Sprintf("cannot convert schema for %s: %v", name, err))
	}

	schema.Title = name
	schema.Description = description
	if schema.Type == "" {
		schema.Type = "object"
	}
	return schema
}

type readFileArgs struct {
	Path string `json:"path" jsonschema:"description=Path of the file to read"`
}

// ReadFileTool reads a file from the local filesystem
type ReadFileTool struct {
	schema *gjs.Schema
}

func (t *ReadFileTool) GetSchema() *gjs.Schema {
	if t.schema == nil {
		t.schema = reflectSchema("read_file", "Read the contents of a file from the local filesystem", readFileArgs{})
	}
	return t.schema
}

func (t *ReadFileTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	path, ok := args["path"].(string)
	if !ok || path == "" {
		return "", fmt.Errorf("path must be a non-empty string")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("cannot read %s: %v", path, err)
	}
	return string(data), nil
}

type writeFileArgs struct {
	Path    string `json:"path" jsonschema:"description=Path of the file to write"`
	Content string `json:"content" jsonschema:"description=Content to write to the file"`
}

// WriteFileTool writes a file to the local filesystem
type WriteFileTool struct {
	schema *gjs.Schema
}

func (t *WriteFileTool) GetSchema() *gjs.Schema {
	if t.schema == nil {
		t.schema = reflectSchema("write_file", "Write content to a file on the local filesystem", writeFileArgs{})
	}
	return t.schema
}

func (t *WriteFileTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	path, ok := args["path"].(string)
	if !ok || path == "" {
		return "", fmt.Errorf("path must be a non-empty string")
	}
	content, ok := args["content"].(string)
	if !ok {
		return "", fmt.Errorf("content must be a string")
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("cannot write %s: %v", path, err)
	}
	return fmt.Sprintf("wrote %d bytes to %s", len(content), path), nil
}

type listDirArgs struct {
	Path string `json:"path" jsonschema:"description=Directory to list"`
}

// ListDirTool lists the entries of a directory
type ListDirTool struct {
	schema *gjs.Schema
}

func (t *ListDirTool) GetSchema() *gjs.Schema {
	if t.schema == nil {
		t.schema = reflectSchema("list_directory", "List the entries of a directory on the local filesystem", listDirArgs{})
	}
	return t.schema
}

func (t *ListDirTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	path, ok := args["path"].(string)
	if !ok || path == "" {
		path = "."
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return "", fmt.Errorf("cannot list %s: %v", path, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() {
			name += "/"
		}
		names = append(names, name)
	}
	return strings.Join(names, "\n"), nil
}

// Builtins returns the standard built-in tool set
func Builtins() []Tool {
	return []Tool{
		&ReadFileTool{},
		&WriteFileTool{},
		&ListDirTool{},
	}
}

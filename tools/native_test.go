package tools

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestBuiltinsSchemas(t *testing.T) {
	for _, tool := range Builtins() {
		schema := tool.GetSchema()
		if schema == nil {
			t.Fatal("builtin tool returned nil schema")
		}
		if schema.Title == "" {
			t.Error("builtin schema missing title")
		}
		if schema.Type != "object" {
			t.Errorf("%s schema type = %q, want object", schema.Title, schema.Type)
		}
		if len(schema.Properties) == 0 {
			t.Errorf("%s schema has no properties", schema.Title)
		}
	}
}

func TestReadWriteRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "note.txt")

	write := &WriteFileTool{}
	out, err := write.Execute(context.Background(), map[string]any{
		"path":    path,
		"content": "hello from dispatch",
	})
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if !strings.Contains(out, "19 bytes") {
		t.Errorf("write output = %q, want byte count", out)
	}

	read := &ReadFileTool{}
	out, err = read.Execute(context.Background(), map[string]any{"path": path})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if out != "hello from dispatch" {
		t.Errorf("read output = %q", out)
	}
}

func TestReadFileErrors(t *testing.T) {
	read := &ReadFileTool{}

	if _, err := read.Execute(context.Background(), map[string]any{}); err == nil {
		t.Error("expected error for missing path")
	}
	if _, err := read.Execute(context.Background(), map[string]any{"path": "/nonexistent/nope"}); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestListDirectory(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0755); err != nil {
		t.Fatal(err)
	}

	list := &ListDirTool{}
	out, err := list.Execute(context.Background(), map[string]any{"path": dir})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "a.txt") {
		t.Errorf("listing missing a.txt: %q", out)
	}
	if !strings.Contains(out, "sub/") {
		t.Errorf("directories should carry a trailing slash: %q", out)
	}
}

func TestNameAndDescriptionFromSchema(t *testing.T) {
	read := &ReadFileTool{}
	if Name(read) != "read_file" {
		t.Errorf("Name = %q, want read_file", Name(read))
	}
	if Description(read) == "" {
		t.Error("builtin should carry a description")
	}
}

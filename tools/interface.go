package tools

import (
	"context"

	"github.com/google/jsonschema-go/jsonschema"
)

// Tool is the generic interface for all tools
type Tool interface {
	GetSchema() *jsonschema.Schema
	Execute(ctx context.Context, args map[string]any) (string, error)
}

// Name returns the tool's name, taken from the schema title
func Name(t Tool) string {
	if schema := t.GetSchema(); schema != nil {
		return schema.Title
	}
	return ""
}

// Description returns the tool's free-text description from its schema
func Description(t Tool) string {
	if schema := t.GetSchema(); schema != nil {
		return schema.Description
	}
	return ""
}

// ContextualTool is a tool that needs external context to execute
type ContextualTool interface {
	Tool
	SetContext(ctx any)
}

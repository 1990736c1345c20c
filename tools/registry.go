package tools

import (
	"sort"

	"go.uber.org/zap"
)

// ToolRegistry manages available tools by name
type ToolRegistry struct {
	tools map[string]Tool
}

// NewToolRegistry creates a new tool registry from a list of tools
func NewToolRegistry(tools []Tool) *ToolRegistry {
	registry := &ToolRegistry{
		tools: make(map[string]Tool),
	}
	for _, tool := range tools {
		registry.Register(tool)
	}
	return registry
}

// Register adds a tool to the registry
func (r *ToolRegistry) Register(tool Tool) {
	name := Name(tool)
	zap.S().Debugf("registered tool: %s", name)
	r.tools[name] = tool
}

// Get retrieves a tool by name
func (r *ToolRegistry) Get(name string) (Tool, bool) {
	tool, ok := r.tools[name]
	return tool, ok
}

// Remove removes a tool by name from the registry
func (r *ToolRegistry) Remove(name string) {
	if _, ok := r.tools[name]; ok {
		delete(r.tools, name)
		zap.S().Debugf("removed tool: %s", name)
	}
}

// All returns all tools sorted by name for deterministic iteration
func (r *ToolRegistry) All() []Tool {
	tools := make([]Tool, 0, len(r.tools))
	for _, name := range r.Names() {
		tools = append(tools, r.tools[name])
	}
	return tools
}

// Names returns all registered tool names in sorted order
func (r *ToolRegistry) Names() []string {
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"go.uber.org/zap"
)

// ShellTool wraps an external command/script as a tool. The command must
// print its schema when invoked with --schema and execute a call when
// invoked with --execute <json-args>. Shell tools always classify as
// sequential in the dispatcher since an arbitrary process may mutate state.
type ShellTool struct {
	Command string
	schema  *jsonschema.Schema
}

// NewShellTool creates a new shell tool from a command
func NewShellTool(command string) (*ShellTool, error) {
	tool := &ShellTool{Command: command}

	schemaJSON, err := tool.runCommand("--schema")
	if err != nil {
		return nil, fmt.Errorf("failed to get schema from %s: %v", command, err)
	}

	tool.schema = &jsonschema.Schema{}
	if err := json.Unmarshal([]byte(schemaJSON), tool.schema); err != nil {
		return nil, fmt.Errorf("failed to parse schema from %s: %v", command, err)
	}

	return tool, nil
}

// GetSchema returns the tool's schema
func (s *ShellTool) GetSchema() *jsonschema.Schema {
	return s.schema
}

// Execute runs the tool with the given arguments
func (s *ShellTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	argsJSON, err := json.Marshal(args)
	if err != nil {
		return "", fmt.Errorf("failed to marshal arguments: %v", err)
	}

	cmd := exec.CommandContext(ctx, s.Command, "--execute", string(argsJSON))
	output, err := cmd.CombinedOutput()

	if cmd.ProcessState != nil {
		zap.S().Debugw("shell_tool_completed",
			"tool_name", Name(s),
			"user_time", cmd.ProcessState.UserTime(),
			"system_time", cmd.ProcessState.SystemTime(),
			"exit_code", cmd.ProcessState.ExitCode())
	}

	result := strings.TrimSpace(string(output))
	if err != nil {
		return result, fmt.Errorf("tool execution failed: %v (output: %s)", err, result)
	}

	return result, nil
}

func (s *ShellTool) runCommand(arg string) (string, error) {
	output, err := exec.Command(s.Command, arg).Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(output)), nil
}

// LoadShellTools loads shell tools from the given file paths. A path that
// fails to load is skipped so the remaining tools still come up.
func LoadShellTools(paths []string) []Tool {
	var tools []Tool
	for _, path := range paths {
		shellTool, err := NewShellTool(path)
		if err != nil {
			zap.S().Debugw("tool_load_failed", "path", path, "error", err)
			continue
		}
		tools = append(tools, shellTool)
	}
	return tools
}

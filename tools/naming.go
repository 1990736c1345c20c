package tools

import "strings"

// MCPPrefix marks tools sourced from an external MCP server. Such tools use
// a three-part naming convention, mcp__<server>__<leaf>, so the originating
// server stays attributable after tools from many sources are pooled.
const MCPPrefix = "mcp__"

// QualifiedName builds the pooled name for a tool served by an MCP server.
func QualifiedName(server, leaf string) string {
	return MCPPrefix + server + "__" + leaf
}

// SplitName breaks a pooled tool name into its server and leaf parts.
// isMCP reports whether the name carries the MCP prefix at all. A name with
// the prefix but an empty server segment still reports isMCP=true; callers
// must not treat it as a built-in.
func SplitName(name string) (server, leaf string, isMCP bool) {
	if !strings.HasPrefix(name, MCPPrefix) {
		return "", name, false
	}
	rest := name[len(MCPPrefix):]
	if i := strings.Index(rest, "__"); i >= 0 {
		return rest[:i], rest[i+2:], true
	}
	return rest, "", true
}

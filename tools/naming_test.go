package tools

import "testing"

func TestQualifiedName(t *testing.T) {
	if got := QualifiedName("github", "create_issue"); got != "mcp__github__create_issue" {
		t.Errorf("QualifiedName = %q", got)
	}
}

func TestSplitName(t *testing.T) {
	tests := []struct {
		name   string
		server string
		leaf   string
		isMCP  bool
	}{
		{"mcp__github__create_issue", "github", "create_issue", true},
		{"mcp__zai-web-search__web_search", "zai-web-search", "web_search", true},
		{"mcp__server__leaf__with__underscores", "server", "leaf__with__underscores", true},
		{"mcp____orphan", "", "orphan", true},
		{"mcp__dangling", "dangling", "", true},
		{"read_file", "", "read_file", false},
		{"", "", "", false},
	}

	for _, tt := range tests {
		server, leaf, isMCP := SplitName(tt.name)
		if server != tt.server || leaf != tt.leaf || isMCP != tt.isMCP {
			t.Errorf("SplitName(%q) = (%q, %q, %v), want (%q, %q, %v)",
				tt.name, server, leaf, isMCP, tt.server, tt.leaf, tt.isMCP)
		}
	}
}

func TestSplitNameRoundTrip(t *testing.T) {
	server, leaf, isMCP := SplitName(QualifiedName("figma", "get_file"))
	if !isMCP || server != "figma" || leaf != "get_file" {
		t.Errorf("round trip = (%q, %q, %v)", server, leaf, isMCP)
	}
}

package capability

import "strings"

// Priority orders competing sources of the same capability. The numeric
// values are contract points: arbitration thresholds are expressed as gaps
// between them, so the spacing matters as much as the ordering.
type Priority int

const (
	// PriorityNativeAPI is a capability the active model provider implements
	// server-side. It outranks every tool-based implementation.
	PriorityNativeAPI Priority = 100
	// PriorityProviderMCP is an MCP server operated by a model provider.
	PriorityProviderMCP Priority = 80
	// PriorityDomainSpecific is a specialised server that owns its domain
	// (e.g. figma for design).
	PriorityDomainSpecific Priority = 60
	// PriorityOfficialMCP is an official reference server.
	PriorityOfficialMCP Priority = 40
	// PriorityCommunityMCP is the default for servers the registry does not
	// know, and for malformed MCP names.
	PriorityCommunityMCP Priority = 20
	// PriorityGeneralMCP is a general-purpose server covering many
	// capabilities shallowly.
	PriorityGeneralMCP Priority = 10
	// PriorityBuiltinTool is a locally built-in tool.
	PriorityBuiltinTool Priority = 5
)

// AffinityBoost is added to a server's priority when the active provider
// appears in the server's affinity list.
const AffinityBoost Priority = 10

// SupersedeThreshold is the minimum priority gap before a lower-priority
// tool's capability counts as covered by a higher-priority alternative.
const SupersedeThreshold Priority = 15

// ServerEntry describes a known MCP server
type ServerEntry struct {
	Name         string
	Priority     Priority
	Capabilities TagSet
	// Affinity lists provider names this server is operated by or tuned
	// for. When the active provider matches, the server's priority gets
	// AffinityBoost added.
	Affinity []string
	Official bool
}

// Registry is the static table of known MCP servers. Lookups are
// case-insensitive and delimiter-aware: "github-enterprise" resolves to the
// "github" entry, but "auto" does not resolve to "automatosx".
type Registry struct {
	entries map[string]*ServerEntry
}

// NewRegistry creates a registry seeded with the built-in server table
func NewRegistry() *Registry {
	r := &Registry{entries: make(map[string]*ServerEntry)}
	for _, entry := range builtinServers() {
		r.Add(entry)
	}
	return r
}

// NewEmptyRegistry creates a registry with no entries
func NewEmptyRegistry() *Registry {
	return &Registry{entries: make(map[string]*ServerEntry)}
}

// Add inserts or replaces a server entry, keyed case-insensitively
func (r *Registry) Add(entry ServerEntry) {
	if entry.Capabilities == nil {
		entry.Capabilities = NewTagSet()
	}
	r.entries[strings.ToLower(entry.Name)] = &entry
}

// Lookup resolves a server name to its registry entry. Exact
// case-insensitive matches win; otherwise the longest registry key that the
// name is a delimiter-variant of is used. Returns nil when nothing matches.
func (r *Registry) Lookup(server string) *ServerEntry {
	key := strings.ToLower(server)
	if entry, ok := r.entries[key]; ok {
		return entry
	}

	var best *ServerEntry
	bestLen := -1
	for name, entry := range r.entries {
		if IsVariant(key, name) && len(name) > bestLen {
			best = entry
			bestLen = len(name)
		}
	}
	return best
}

// Entries returns all registered entries
func (r *Registry) Entries() []*ServerEntry {
	entries := make([]*ServerEntry, 0, len(r.entries))
	for _, entry := range r.entries {
		entries = append(entries, entry)
	}
	return entries
}

// IsVariant reports whether name is the base itself or a delimiter-suffixed
// variant of it (base + "-" or "_" + suffix). A shared prefix without a
// delimiter is not a variant: "github-enterprise" is a variant of "github",
// "auto" is not a variant of "automatosx" and "automatosx" is not a variant
// of "auto". Comparison is case-insensitive.
func IsVariant(name, base string) bool {
	name = strings.ToLower(name)
	base = strings.ToLower(base)
	if name == base {
		return true
	}
	if len(name) <= len(base) || !strings.HasPrefix(name, base) {
		return false
	}
	switch name[len(base)] {
	case '-', '_':
		return true
	}
	return false
}

// builtinServers is the shipped server table. Configuration can add to it
// or override individual entries.
func builtinServers() []ServerEntry {
	return []ServerEntry{
		{
			Name:         "zai-web-search",
			Priority:     PriorityProviderMCP,
			Capabilities: NewTagSet(TagWebSearch),
			Affinity:     []string{"glm", "zai", "z-ai", "zhipu"},
		},
		{
			Name:         "figma",
			Priority:     PriorityDomainSpecific,
			Capabilities: NewTagSet(TagDesignFigma),
			Official:     true,
		},
		{
			Name:         "vercel",
			Priority:     PriorityDomainSpecific,
			Capabilities: NewTagSet(TagDeployment),
			Official:     true,
		},
		{
			Name:         "netlify",
			Priority:     PriorityDomainSpecific,
			Capabilities: NewTagSet(TagDeployment),
			Official:     true,
		},
		{
			Name:         "supabase",
			Priority:     PriorityDomainSpecific,
			Capabilities: NewTagSet(TagDatabase),
			Official:     true,
		},
		{
			Name:         "github",
			Priority:     PriorityOfficialMCP,
			Capabilities: NewTagSet(TagGitOperations),
			Official:     true,
		},
		{
			Name:         "postgres",
			Priority:     PriorityOfficialMCP,
			Capabilities: NewTagSet(TagDatabase),
			Official:     true,
		},
		{
			Name:         "puppeteer",
			Priority:     PriorityOfficialMCP,
			Capabilities: NewTagSet(TagTesting),
			Official:     true,
		},
		{
			Name:         "playwright",
			Priority:     PriorityOfficialMCP,
			Capabilities: NewTagSet(TagTesting),
			Official:     true,
		},
		{
			Name:         "memory",
			Priority:     PriorityOfficialMCP,
			Capabilities: NewTagSet(TagMemory),
			Official:     true,
		},
		{
			Name:         "filesystem",
			Priority:     PriorityOfficialMCP,
			Capabilities: NewTagSet(TagFileOperations),
			Official:     true,
		},
		{
			Name:         "fetch",
			Priority:     PriorityOfficialMCP,
			Capabilities: NewTagSet(TagWebFetch),
			Official:     true,
		},
		{
			Name:         "sentry",
			Priority:     PriorityOfficialMCP,
			Capabilities: NewTagSet(TagMonitoring),
			Official:     true,
		},
		{
			Name:         "brave-search",
			Priority:     PriorityCommunityMCP,
			Capabilities: NewTagSet(TagWebSearch),
		},
		{
			Name:         "mem0",
			Priority:     PriorityCommunityMCP,
			Capabilities: NewTagSet(TagMemory),
		},
		{
			Name:         "automatosx",
			Priority:     PriorityGeneralMCP,
			Capabilities: NewTagSet(TagMemory, TagAgentDelegation, TagWebSearch),
		},
	}
}

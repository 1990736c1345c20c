package capability

import (
	"sync"

	"go.uber.org/zap"

	"github.com/alexschlessinger/dispatch/tools"
)

// ToolMetadata is the derived, cached view of a tool: which server it came
// from (if any), how preferred that source is, and what the tool does.
type ToolMetadata struct {
	Name   string
	Server string // empty for built-ins and malformed MCP names
	// Priority is the effective tier value, including any affinity boost
	// for the active provider.
	Priority Priority
	// Capabilities is the union of registry-declared and classifier-inferred
	// tags. The classifier always runs, so a server's specialised tool can
	// surface a tag its registry entry doesn't enumerate.
	Capabilities TagSet
}

// record keeps the base tier and affinity list alongside the metadata so a
// provider swap can recompute the boost without rebuilding the metadata.
type record struct {
	meta     *ToolMetadata
	base     Priority
	affinity []string
}

// Analyzer derives and memoizes per-tool metadata. Metadata for a given tool
// name is computed once; repeated lookups return the same pointer.
type Analyzer struct {
	registry   *Registry
	classifier *Classifier
	mu         sync.Mutex
	provider   string
	cache      map[string]*record
}

// NewAnalyzer creates an analyzer over the given registry for the named
// active provider. A nil classifier uses the built-in rules.
func NewAnalyzer(registry *Registry, classifier *Classifier, provider string) *Analyzer {
	if classifier == nil {
		classifier = NewClassifier()
	}
	return &Analyzer{
		registry:   registry,
		classifier: classifier,
		provider:   provider,
		cache:      make(map[string]*record),
	}
}

// Provider returns the active provider name
func (a *Analyzer) Provider() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.provider
}

// SetProvider hot-swaps the active provider. Cached metadata survives; only
// the affinity boosts are recomputed, in place, so previously returned
// pointers stay valid.
func (a *Analyzer) SetProvider(provider string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if provider == a.provider {
		return
	}
	a.provider = provider
	for _, rec := range a.cache {
		rec.meta.Priority = rec.base
		if matchesAffinity(provider, rec.affinity) {
			rec.meta.Priority += AffinityBoost
		}
	}
	zap.S().Debugf("analyzer provider switched to %s", provider)
}

// Analyze derives metadata for a tool by name and description
func (a *Analyzer) Analyze(name, description string) *ToolMetadata {
	a.mu.Lock()
	defer a.mu.Unlock()

	if rec, ok := a.cache[name]; ok {
		return rec.meta
	}

	server, _, isMCP := tools.SplitName(name)

	base := PriorityBuiltinTool
	declared := NewTagSet()
	var affinity []string
	serverName := ""

	switch {
	case !isMCP:
		// Locally built-in tool.
	case server == "":
		// MCP prefix with an empty server segment. The tool came from some
		// server, we just can't tell which, so it degrades to community
		// tier rather than being misattributed as a built-in.
		base = PriorityCommunityMCP
	default:
		serverName = server
		if entry := a.registry.Lookup(server); entry != nil {
			base = entry.Priority
			declared = entry.Capabilities
			affinity = entry.Affinity
		} else {
			base = PriorityCommunityMCP
		}
	}

	meta := &ToolMetadata{
		Name:         name,
		Server:       serverName,
		Priority:     base,
		Capabilities: declared.Union(a.classifier.Infer(name, description)),
	}
	if matchesAffinity(a.provider, affinity) {
		meta.Priority += AffinityBoost
	}

	a.cache[name] = &record{meta: meta, base: base, affinity: affinity}
	return meta
}

// AnalyzeTool derives metadata for a tool value
func (a *Analyzer) AnalyzeTool(t tools.Tool) *ToolMetadata {
	return a.Analyze(tools.Name(t), tools.Description(t))
}

// matchesAffinity reports whether the provider name matches any entry of the
// affinity list, exactly or as a delimiter variant ("glm-4" matches "glm").
func matchesAffinity(provider string, affinity []string) bool {
	if provider == "" {
		return false
	}
	for _, name := range affinity {
		if IsVariant(provider, name) {
			return true
		}
	}
	return false
}

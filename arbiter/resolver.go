// Package arbiter decides, per turn, which tools from a pooled set are worth
// exposing to the model. Tools whose every capability is available from a
// sufficiently better source are hidden; everything else is kept.
package arbiter

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/alexschlessinger/dispatch/capability"
	"github.com/alexschlessinger/dispatch/tools"
)

// Provider describes the active model provider: its name (used for affinity
// boosts) and the capabilities it implements server-side.
type Provider struct {
	Name   string
	Native capability.TagSet
}

// NativeToolName is the name under which a provider-native capability
// appears in arbitration results.
func NativeToolName(tag capability.Tag) string {
	return "native_" + string(tag)
}

// HiddenTool pairs a hidden tool with the reason it was hidden
type HiddenTool struct {
	Tool   tools.Tool
	Reason string
}

// Candidate is one source of a capability: either a real tool or the
// provider's native implementation.
type Candidate struct {
	Name     string
	Tool     tools.Tool // nil for the synthetic native entry
	Priority capability.Priority
	Native   bool
}

// Resolver arbitrates between competing tool sources for the active
// provider. It is constructed once per provider configuration; swapping the
// provider with UpdateProvider keeps the analyzer's metadata cache warm.
type Resolver struct {
	registry *capability.Registry
	analyzer *capability.Analyzer

	mu       sync.Mutex
	provider Provider
}

// New creates a resolver over the given registry for the active provider.
// A nil classifier uses the built-in rules.
func New(registry *capability.Registry, classifier *capability.Classifier, provider Provider) *Resolver {
	if provider.Native == nil {
		provider.Native = capability.NewTagSet()
	}
	return &Resolver{
		registry: registry,
		analyzer: capability.NewAnalyzer(registry, classifier, provider.Name),
		provider: provider,
	}
}

// Analyzer exposes the resolver's metadata analyzer
func (r *Resolver) Analyzer() *capability.Analyzer {
	return r.analyzer
}

// UpdateProvider hot-swaps the active provider. Tool metadata computed so
// far is kept; only affinity boosts are re-derived.
func (r *Resolver) UpdateProvider(provider Provider) {
	if provider.Native == nil {
		provider.Native = capability.NewTagSet()
	}
	r.mu.Lock()
	r.provider = provider
	r.mu.Unlock()
	r.analyzer.SetProvider(provider.Name)
}

func (r *Resolver) activeProvider() Provider {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.provider
}

// ShouldHide reports whether the tool should be hidden from the model given
// the full exposed tool set, and why. A tool is hidden only when every one
// of its capabilities is covered by another source whose priority exceeds
// the tool's by at least the supersede threshold. Tools with no inferred
// capabilities are never hidden.
func (r *Resolver) ShouldHide(tool tools.Tool, all []tools.Tool) (string, bool) {
	meta := r.analyzer.AnalyzeTool(tool)
	if len(meta.Capabilities) == 0 {
		return "", false
	}

	var covered []string
	for _, tag := range meta.Capabilities.Tags() {
		name, priority, ok := r.bestOtherSource(tool, all, tag)
		if !ok || priority < meta.Priority+capability.SupersedeThreshold {
			// At least one capability survives, so the tool stays. This is
			// what keeps a general-purpose server alive when only one of
			// its many capabilities is outclassed.
			return "", false
		}
		covered = append(covered, fmt.Sprintf("%s via %s (%d)", tag, name, priority))
	}

	return fmt.Sprintf("all capabilities covered by higher-priority sources: %s", strings.Join(covered, ", ")), true
}

// bestOtherSource finds the highest-priority source of a capability other
// than the tool itself, including the provider's native implementation.
func (r *Resolver) bestOtherSource(tool tools.Tool, all []tools.Tool, tag capability.Tag) (string, capability.Priority, bool) {
	var name string
	var best capability.Priority
	found := false

	if r.activeProvider().Native.Has(tag) {
		name = NativeToolName(tag)
		best = capability.PriorityNativeAPI
		found = true
	}

	self := tools.Name(tool)
	for _, other := range all {
		if tools.Name(other) == self {
			continue
		}
		meta := r.analyzer.AnalyzeTool(other)
		if !meta.Capabilities.Has(tag) {
			continue
		}
		if !found || meta.Priority > best {
			name = meta.Name
			best = meta.Priority
			found = true
		}
	}

	return name, best, found
}

// FilterTools partitions the exposed tool set into the tools to show the
// model and the tools to hide, with reasons.
func (r *Resolver) FilterTools(all []tools.Tool) (filtered []tools.Tool, hidden []HiddenTool) {
	for _, tool := range all {
		if reason, hide := r.ShouldHide(tool, all); hide {
			zap.S().Debugf("hiding tool %s: %s", tools.Name(tool), reason)
			hidden = append(hidden, HiddenTool{Tool: tool, Reason: reason})
			continue
		}
		filtered = append(filtered, tool)
	}
	return filtered, hidden
}

// ToolsForCapability returns every source of a capability, best first.
// The provider's native implementation, when present, is always the first
// entry. Equal priorities keep their input order.
func (r *Resolver) ToolsForCapability(all []tools.Tool, tag capability.Tag) []Candidate {
	var candidates []Candidate

	if r.activeProvider().Native.Has(tag) {
		candidates = append(candidates, Candidate{
			Name:     NativeToolName(tag),
			Priority: capability.PriorityNativeAPI,
			Native:   true,
		})
	}

	for _, tool := range all {
		meta := r.analyzer.AnalyzeTool(tool)
		if !meta.Capabilities.Has(tag) {
			continue
		}
		candidates = append(candidates, Candidate{
			Name:     meta.Name,
			Tool:     tool,
			Priority: meta.Priority,
		})
	}

	// Stable sort keeps equal priorities in input order.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Priority > candidates[j].Priority
	})

	return candidates
}

// FindHighestPriorityTool returns the best source for a capability, or nil
// when nothing provides it. With a native-capable provider this is always
// the synthetic native entry.
func (r *Resolver) FindHighestPriorityTool(all []tools.Tool, tag capability.Tag) *Candidate {
	candidates := r.ToolsForCapability(all, tag)
	if len(candidates) == 0 {
		return nil
	}
	return &candidates[0]
}

// CapabilityGuidance renders textual hints about the connected MCP servers.
// Only servers that match a registry entry produce guidance, and affinity
// hints appear only when the active provider actually has the affinity.
// An empty connected list yields no guidance at all.
func (r *Resolver) CapabilityGuidance(connected []string) []string {
	if len(connected) == 0 {
		return nil
	}

	provider := r.activeProvider()

	var lines []string
	for _, server := range connected {
		entry := r.registry.Lookup(server)
		if entry == nil {
			continue
		}
		caps := strings.Join(entry.Capabilities.Strings(), ", ")
		lines = append(lines, fmt.Sprintf("%s provides %s (priority %d)", server, caps, entry.Priority))

		for _, affinity := range entry.Affinity {
			if capability.IsVariant(provider.Name, affinity) {
				lines = append(lines, fmt.Sprintf("%s is the preferred %s source for provider %s (+%d priority)",
					server, caps, provider.Name, capability.AffinityBoost))
				break
			}
		}
	}
	return lines
}

// Package capability infers what a tool does from its name and description,
// attributes MCP-served tools to their servers, and assigns each tool a
// priority so competing implementations of the same capability can be
// arbitrated.
package capability

import "sort"

// Tag is a coarse label describing what a tool does. Tools from different
// sources that carry the same tag are competing implementations of the same
// capability.
type Tag string

const (
	TagWebSearch       Tag = "web-search"
	TagWebFetch        Tag = "web-fetch"
	TagVision          Tag = "vision"
	TagMemory          Tag = "memory"
	TagAgentDelegation Tag = "agent-delegation"
	TagDesignFigma     Tag = "design-figma"
	TagDesignGeneral   Tag = "design-general"
	TagGitOperations   Tag = "git-operations"
	TagDatabase        Tag = "database"
	TagFileOperations  Tag = "file-operations"
	TagDeployment      Tag = "deployment"
	TagTesting         Tag = "testing"
	TagMonitoring      Tag = "monitoring"
)

// TagSet is an unordered set of capability tags
type TagSet map[Tag]struct{}

// NewTagSet builds a set from the given tags
func NewTagSet(tags ...Tag) TagSet {
	set := make(TagSet, len(tags))
	for _, tag := range tags {
		set[tag] = struct{}{}
	}
	return set
}

// Has reports whether the set contains the tag
func (s TagSet) Has(tag Tag) bool {
	_, ok := s[tag]
	return ok
}

// Add inserts a tag into the set
func (s TagSet) Add(tag Tag) {
	s[tag] = struct{}{}
}

// Union returns a new set containing the tags of both sets
func (s TagSet) Union(other TagSet) TagSet {
	out := make(TagSet, len(s)+len(other))
	for tag := range s {
		out[tag] = struct{}{}
	}
	for tag := range other {
		out[tag] = struct{}{}
	}
	return out
}

// Tags returns the set's tags in sorted order
func (s TagSet) Tags() []Tag {
	tags := make([]Tag, 0, len(s))
	for tag := range s {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	return tags
}

// Strings returns the set's tags as sorted strings
func (s TagSet) Strings() []string {
	tags := s.Tags()
	out := make([]string, len(tags))
	for i, tag := range tags {
		out[i] = string(tag)
	}
	return out
}

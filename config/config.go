// Package config layers user overrides from a YAML file over the shipped
// defaults: extra registry servers, extra classifier exclusions, and
// concurrency classifications for tool names.
package config

import (
	"fmt"
	"os"
	"strings"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"

	"github.com/alexschlessinger/dispatch/capability"
	"github.com/alexschlessinger/dispatch/dispatch"
)

// ServerConfig describes one registry server override
type ServerConfig struct {
	Priority     string   `yaml:"priority"`
	Capabilities []string `yaml:"capabilities"`
	Affinity     []string `yaml:"affinity,omitempty"`
	Official     bool     `yaml:"official,omitempty"`
}

// Config is the on-disk override format
type Config struct {
	// Servers adds to or overrides the built-in server registry,
	// keyed by server name.
	Servers map[string]ServerConfig `yaml:"servers,omitempty"`

	// Exclusions adds classifier exclusion substrings per capability tag.
	Exclusions map[string][]string `yaml:"exclusions,omitempty"`

	// Parallel and Sequential classify tool names for the executor.
	Parallel   []string `yaml:"parallel,omitempty"`
	Sequential []string `yaml:"sequential,omitempty"`

	// MaxConcurrency bounds the parallel worker pool.
	MaxConcurrency int `yaml:"maxConcurrency,omitempty"`
}

// tierNames maps the tier names accepted in config files to priorities
var tierNames = map[string]capability.Priority{
	"provider":  capability.PriorityProviderMCP,
	"domain":    capability.PriorityDomainSpecific,
	"official":  capability.PriorityOfficialMCP,
	"community": capability.PriorityCommunityMCP,
	"general":   capability.PriorityGeneralMCP,
	"builtin":   capability.PriorityBuiltinTool,
}

// Default returns the shipped configuration
func Default() *Config {
	return &Config{
		MaxConcurrency: dispatch.DefaultConfig().MaxConcurrency,
	}
}

// Load reads a config file and merges it over the defaults; fields the user
// file sets win. A missing file just yields the defaults.
func Load(path string) (*Config, error) {
	defaults := Default()
	if path == "" {
		return defaults, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaults, nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var user Config
	if err := yaml.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	// mergo fills only zero-valued fields, so user settings take
	// precedence over defaults.
	if err := mergo.Merge(&user, defaults); err != nil {
		return nil, fmt.Errorf("failed to merge config: %w", err)
	}

	return &user, nil
}

// ParsePriority resolves a tier name ("official", "community", ...) to its
// priority value. Unknown names degrade to community tier.
func ParsePriority(name string) capability.Priority {
	if priority, ok := tierNames[strings.ToLower(name)]; ok {
		return priority
	}
	return capability.PriorityCommunityMCP
}

// Registry builds the server registry: built-in table plus overrides
func (c *Config) Registry() *capability.Registry {
	registry := capability.NewRegistry()
	for name, sc := range c.Servers {
		caps := capability.NewTagSet()
		for _, tag := range sc.Capabilities {
			caps.Add(capability.Tag(tag))
		}
		registry.Add(capability.ServerEntry{
			Name:         name,
			Priority:     ParsePriority(sc.Priority),
			Capabilities: caps,
			Affinity:     sc.Affinity,
			Official:     sc.Official,
		})
	}
	return registry
}

// Classifier builds the capability classifier with configured exclusions
func (c *Config) Classifier() *capability.Classifier {
	classifier := capability.NewClassifier()
	for tag, substrings := range c.Exclusions {
		classifier.Exclude(capability.Tag(tag), substrings...)
	}
	return classifier
}

// SafetyTable builds the executor safety table with configured
// classifications layered over the defaults
func (c *Config) SafetyTable() *dispatch.SafetyTable {
	table := dispatch.NewSafetyTable()
	table.MarkParallel(c.Parallel...)
	table.MarkSequential(c.Sequential...)
	return table
}

// ExecConfig builds the executor configuration
func (c *Config) ExecConfig() dispatch.Config {
	cfg := dispatch.DefaultConfig()
	if c.MaxConcurrency > 0 {
		cfg.MaxConcurrency = c.MaxConcurrency
	}
	return cfg
}

package capability

import (
	"strings"
	"unicode"
)

// The classifier is a declarative table, one rule per tag, evaluated
// uniformly. Each rule lists positive patterns and the exclusions that
// suppress its known false positives, so adding a tag never changes the
// behavior of another.
//
// Matching semantics:
//   - words match whole tokens of the name, where tokens are split on any
//     non-alphanumeric rune. Underscores and hyphens separate tokens, so
//     "analyze_vision" carries the token "vision" but "division" does not.
//   - name and exclude patterns are plain substring checks against the
//     lowercased name. Exclusions are deliberately substrings, not word
//     boundaries: "_" is a word character in tool names, and a boundary
//     check would fail to suppress names like "web_search_file".
//   - desc and descExclude patterns are substring checks against the
//     lowercased description.
type rule struct {
	words       []string
	name        []string
	desc        []string
	exclude     []string
	descExclude []string
}

var rules = map[Tag]rule{
	TagWebSearch: {
		words:   []string{"websearch"},
		name:    []string{"web_search", "web-search", "search_web"},
		desc:    []string{"search the web", "web search", "search the internet", "internet search"},
		exclude: []string{"search_file", "file_web", "grep", "glob", "code_search", "search_code"},
	},
	TagWebFetch: {
		words: []string{"webfetch"},
		name:  []string{"web_fetch", "web-fetch", "fetch_url", "url_fetch", "fetch_page", "http_get"},
		desc:  []string{"fetch a url", "fetch web", "download a web page", "retrieve a web page", "fetch the contents of a url"},
	},
	TagVision: {
		words:   []string{"vision"},
		name:    []string{"image_analysis", "analyze_image", "describe_image", "image_recognition", "detect_objects"},
		desc:    []string{"image analysis", "vision analysis", "ai vision", "computer vision", "analyze images", "describe images", "visual content"},
		exclude: []string{"division", "revision", "provision"},
	},
	TagMemory: {
		words:       []string{"memory", "memories", "memorize", "remember", "recall"},
		name:        []string{"knowledge_graph", "store_memory", "save_memory", "search_memory"},
		desc:        []string{"knowledge graph", "store memories", "remember information", "persistent memory", "long-term memory", "recall information"},
		exclude:     []string{"memory_usage", "memory_monitor", "memory_profil", "system_memory", "process_memory", "free_memory", "heap_memory"},
		descExclude: []string{"system memory", "process memory", "memory usage", "ram usage"},
	},
	TagAgentDelegation: {
		words:   []string{"agent", "subagent", "delegate"},
		name:    []string{"spawn_agent", "run_agent", "create_agent", "launch_agent", "agent_task", "task_agent", "delegate_task", "dispatch_agent"},
		desc:    []string{"delegate to", "spawn an agent", "sub-agent", "subagent", "launch agents", "agent orchestration", "delegate tasks"},
		exclude: []string{"user_agent", "user-agent", "useragent", "reagent"},
	},
	TagDesignFigma: {
		words: []string{"figma"},
		desc:  []string{"figma"},
	},
	TagDesignGeneral: {
		words:   []string{"design"},
		name:    []string{"design_system", "design_token", "design_component", "style_guide", "storybook"},
		desc:    []string{"design system", "design tokens", "ui design", "design component"},
		exclude: []string{"redesign", "designated", "figma"},
	},
	TagGitOperations: {
		words:   []string{"git", "github", "gitlab"},
		name:    []string{"git_commit", "git_push", "git_diff", "create_pull_request", "merge_branch", "clone_repo"},
		desc:    []string{"git repository", "pull request", "version control", "commit changes", "git branch"},
		exclude: []string{"digit", "legit"},
	},
	TagDatabase: {
		words: []string{"postgres", "postgresql", "mysql", "sqlite", "mongodb", "redis", "database", "sql"},
		name:  []string{"execute_sql", "run_sql", "sql_query", "db_query", "query_database", "database_schema", "list_tables"},
		desc:  []string{"sql query", "execute sql", "run sql", "database schema", "relational database", "database table", "query the database"},
	},
	TagFileOperations: {
		name:    []string{"read_file", "write_file", "edit_file", "delete_file", "create_file", "move_file", "copy_file", "list_dir", "list_directory"},
		desc:    []string{"read a file", "write a file", "write to a file", "edit a file", "contents of a file", "local filesystem", "file system"},
		exclude: []string{"profile"},
	},
	TagDeployment: {
		words:   []string{"vercel", "netlify", "heroku", "deploy", "deployment"},
		name:    []string{"deploy_", "deployment_", "rollout"},
		desc:    []string{"deploy to production", "deploy your", "deployment", "ship to production"},
		exclude: []string{"employe"},
	},
	TagTesting: {
		words:   []string{"puppeteer", "playwright", "cypress", "selenium", "jest", "vitest", "mocha", "test", "tests", "testing", "e2e"},
		name:    []string{"run_test", "test_runner", "unit_test", "browser_test"},
		desc:    []string{"run tests", "browser automation", "end-to-end", "unit test", "test suite", "automated testing"},
		exclude: []string{"protest", "contest"},
	},
	TagMonitoring: {
		words: []string{"monitor", "monitoring", "metrics", "uptime", "observability", "healthcheck", "sentry", "datadog", "grafana", "prometheus"},
		name:  []string{"health_check", "memory_usage", "cpu_usage", "disk_usage", "system_stats"},
		desc:  []string{"system metrics", "health check", "resource usage", "cpu usage", "system health"},
	},
}

// Classifier infers capability tags from a tool's name and description.
// The zero classifier uses only the built-in rule table; additional
// exclusions can be layered on from configuration.
type Classifier struct {
	extraExclude map[Tag][]string
}

// NewClassifier creates a classifier with the built-in rules
func NewClassifier() *Classifier {
	return &Classifier{extraExclude: make(map[Tag][]string)}
}

// Exclude adds extra exclusion substrings for a tag
func (c *Classifier) Exclude(tag Tag, substrings ...string) {
	for _, s := range substrings {
		c.extraExclude[tag] = append(c.extraExclude[tag], strings.ToLower(s))
	}
}

// Infer returns the set of capability tags matched by the tool's name and
// description. A tool may carry zero, one, or several tags.
func (c *Classifier) Infer(name, description string) TagSet {
	lowName := strings.ToLower(name)
	lowDesc := strings.ToLower(description)

	tokens := make(map[string]bool)
	for _, token := range tokenize(lowName) {
		tokens[token] = true
	}

	set := NewTagSet()
	for tag, r := range rules {
		if !c.ruleMatches(tag, r, lowName, lowDesc, tokens) {
			continue
		}
		set.Add(tag)
	}

	// The two design tags are mutually exclusive; figma-specific wins.
	if set.Has(TagDesignFigma) {
		delete(set, TagDesignGeneral)
	}

	return set
}

func (c *Classifier) ruleMatches(tag Tag, r rule, lowName, lowDesc string, tokens map[string]bool) bool {
	matched := false
	for _, word := range r.words {
		if tokens[word] {
			matched = true
			break
		}
	}
	if !matched {
		for _, pattern := range r.name {
			if strings.Contains(lowName, pattern) {
				matched = true
				break
			}
		}
	}
	if !matched {
		for _, pattern := range r.desc {
			if lowDesc != "" && strings.Contains(lowDesc, pattern) {
				matched = true
				break
			}
		}
	}
	if !matched {
		return false
	}

	for _, pattern := range r.exclude {
		if strings.Contains(lowName, pattern) {
			return false
		}
	}
	for _, pattern := range r.descExclude {
		if lowDesc != "" && strings.Contains(lowDesc, pattern) {
			return false
		}
	}
	for _, pattern := range c.extraExclude[tag] {
		if strings.Contains(lowName, pattern) || (lowDesc != "" && strings.Contains(lowDesc, pattern)) {
			return false
		}
	}
	return true
}

func tokenize(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

var defaultClassifier = NewClassifier()

// Infer classifies with the built-in rule table only
func Infer(name, description string) TagSet {
	return defaultClassifier.Infer(name, description)
}

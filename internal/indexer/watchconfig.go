package indexer

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// WatchConfig holds the whitelist/blacklist glob filters the indexer
// consults before touching a file.
type WatchConfig struct {
	Whitelist []string `json:"whitelist"`
	Blacklist []string `json:"blacklist"`
}

// DefaultWatchConfig allows every Markdown file, excluding the repo's
// own metadata directory and common editor/OS scratch files.
func DefaultWatchConfig() *WatchConfig {
	return &WatchConfig{
		Whitelist: []string{"*.md"},
		Blacklist: []string{
			".git/**",
			".memexia/**",
			"*.tmp",
			"*.bak",
			".DS_Store",
		},
	}
}

// LoadWatchConfig reads a WatchConfig from path, falling back to the
// default configuration if the file is missing or malformed.
func LoadWatchConfig(path string) *WatchConfig {
	content, err := os.ReadFile(path)
	if err != nil {
		return DefaultWatchConfig()
	}
	var cfg WatchConfig
	if err := json.Unmarshal(content, &cfg); err != nil {
		return DefaultWatchConfig()
	}
	return &cfg
}

// Save writes the config as indented JSON to path.
func (c *WatchConfig) Save(path string) error {
	content, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, content, 0o644)
}

// IsAllowed reports whether path should be indexed: it must not match
// the blacklist, and if the whitelist is non-empty it must match one
// of its patterns.
func (c *WatchConfig) IsAllowed(path string) bool {
	if c.IsBlacklisted(path) {
		return false
	}
	if len(c.Whitelist) == 0 {
		return true
	}
	return c.IsWhitelisted(path)
}

// IsWhitelisted reports whether path matches any whitelist pattern,
// tried against both the full path and the bare file name.
func (c *WatchConfig) IsWhitelisted(path string) bool {
	fileName := filepath.Base(path)
	for _, pattern := range c.Whitelist {
		if matchesPattern(pattern, path) || matchesPattern(pattern, fileName) {
			return true
		}
	}
	return false
}

// IsBlacklisted reports whether path matches any blacklist pattern.
// Patterns containing a path separator are matched against the full
// path; separator-free patterns are matched only against the file
// name, so a bare "*.bak" pattern cannot accidentally exclude a
// directory that happens to share the name.
func (c *WatchConfig) IsBlacklisted(path string) bool {
	fileName := filepath.Base(path)
	for _, pattern := range c.Blacklist {
		if strings.ContainsAny(pattern, "/\\") {
			if matchesPattern(pattern, path) {
				return true
			}
		} else if matchesPattern(pattern, fileName) {
			return true
		}
	}
	return false
}

func (c *WatchConfig) AddWhitelist(pattern string) { c.Whitelist = append(c.Whitelist, pattern) }
func (c *WatchConfig) AddBlacklist(pattern string) { c.Blacklist = append(c.Blacklist, pattern) }
func (c *WatchConfig) ClearWhitelist()             { c.Whitelist = nil }
func (c *WatchConfig) ClearBlacklist()             { c.Blacklist = nil }

// matchesPattern compiles pattern to a regexp and matches it against text.
func matchesPattern(pattern, text string) bool {
	re, err := regexp.Compile(globToRegex(pattern))
	if err != nil {
		return false
	}
	return re.MatchString(text)
}

// globToRegex translates a glob pattern into an anchored regular
// expression with explicit, separator-sensitive semantics: "*" matches
// any run of non-separator characters, "**" matches any run including
// separators, "?" matches exactly one character, and every other regex
// metacharacter is escaped to a literal.
func globToRegex(pattern string) string {
	var sb strings.Builder
	sb.WriteByte('^')
	runes := []rune(pattern)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		switch c {
		case '*':
			if i+1 < len(runes) && runes[i+1] == '*' {
				sb.WriteString(".*")
				i++
			} else {
				sb.WriteString("[^/]*")
			}
		case '?':
			sb.WriteByte('.')
		case '.', '+', '(', ')', '[', ']', '{', '}', '|', '^', '$', '\\':
			sb.WriteByte('\\')
			sb.WriteRune(c)
		default:
			sb.WriteRune(c)
		}
	}
	sb.WriteByte('$')
	return sb.String()
}

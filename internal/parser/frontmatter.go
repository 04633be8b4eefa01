// Package parser implements the pure Markdown-to-ParsedDoc function
// (C2): YAML frontmatter extraction, wiki-link and hashtag extraction,
// title resolution, and content stripping.
package parser

import (
	"strings"

	"github.com/chenxu233/memexia/internal/graph"
	"gopkg.in/yaml.v3"
)

// Frontmatter is the recognised subset of a document's YAML header.
type Frontmatter struct {
	Title    string
	NodeType graph.NodeType
	Tags     []string
	Summary  string
}

// frontmatterYAML mirrors Frontmatter for unmarshalling; unknown keys
// are ignored by yaml.v3 by default.
type frontmatterYAML struct {
	Title   string   `yaml:"title"`
	Type    string   `yaml:"type"`
	Tags    []string `yaml:"tags"`
	Summary string   `yaml:"summary"`
}

// hasFrontmatter reports whether content opens with a `---` delimiter.
func hasFrontmatter(content string) bool {
	return strings.HasPrefix(strings.TrimLeft(content, " \t\r\n"), "---")
}

// extractFrontmatter splits a leading `---`-delimited YAML block from
// the rest of the document, returning the raw YAML text (without the
// delimiters) and the remaining body. If no closing delimiter is
// found, the whole content is treated as body with no frontmatter.
func extractFrontmatter(content string) (yamlText string, body string, ok bool) {
	trimmed := strings.TrimLeft(content, " \t\r\n")
	if !strings.HasPrefix(trimmed, "---") {
		return "", content, false
	}
	rest := trimmed[3:]
	rest = strings.TrimPrefix(rest, "\n")
	end := strings.Index(rest, "---")
	if end < 0 {
		return "", content, false
	}
	yamlText = rest[:end]
	body = rest[end+3:]
	return yamlText, body, true
}

// parseFrontmatter parses the YAML frontmatter block, if present.
// Absence of the block, or a malformed block, yields no frontmatter
// rather than an error: a document with a broken header still parses,
// it simply carries no metadata.
func parseFrontmatter(content string) (*Frontmatter, string) {
	if !hasFrontmatter(content) {
		return nil, content
	}
	yamlText, body, ok := extractFrontmatter(content)
	if !ok {
		return nil, content
	}

	var raw frontmatterYAML
	if err := yaml.Unmarshal([]byte(yamlText), &raw); err != nil {
		return nil, content
	}

	fm := &Frontmatter{
		Title:    strings.TrimSpace(raw.Title),
		NodeType: graph.ParseNodeType(raw.Type),
		Tags:     raw.Tags,
		Summary:  raw.Summary,
	}
	return fm, body
}

package parser

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/chenxu233/memexia/internal/graph"
)

// hashtagPattern matches #tag anchored at start-of-line or after whitespace,
// per spec.md §4.2: `#[A-Za-z0-9_][A-Za-z0-9_-]*`.
var hashtagPattern = regexp.MustCompile(`(?:^|\s)#([A-Za-z0-9_][A-Za-z0-9_-]*)`)

// h1Pattern matches the first `# ` heading in the document body.
var h1Pattern = regexp.MustCompile(`(?m)^#\s+(.+)$`)

// ParsedDoc is the pure output of parsing one Markdown document.
type ParsedDoc struct {
	FileName    string
	Frontmatter *Frontmatter
	Links       []WikiLink
	Tags        []string
	Title       string
	Body        string
}

// ParseMarkdown is the C2 entry point: a pure, deterministic function
// from (content, fileName) to a ParsedDoc.
func ParseMarkdown(content, fileName string) *ParsedDoc {
	fm, rest := parseFrontmatter(content)
	links := ParseWikiLinks(rest)
	tags := extractHashtags(rest)
	title := resolveTitle(fm, rest, fileName)
	body := RemoveWikiLinks(rest)

	return &ParsedDoc{
		FileName:    fileName,
		Frontmatter: fm,
		Links:       links,
		Tags:        tags,
		Title:       title,
		Body:        strings.TrimSpace(body),
	}
}

// extractHashtags collects unique hashtags in first-seen order.
func extractHashtags(content string) []string {
	seen := make(map[string]bool)
	var tags []string
	for _, match := range hashtagPattern.FindAllStringSubmatch(content, -1) {
		tag := match[1]
		if !seen[tag] {
			seen[tag] = true
			tags = append(tags, tag)
		}
	}
	return tags
}

// resolveTitle applies frontmatter title > first H1 > file stem.
func resolveTitle(fm *Frontmatter, body, fileName string) string {
	if fm != nil && fm.Title != "" {
		return fm.Title
	}
	if m := h1Pattern.FindStringSubmatch(body); m != nil {
		return strings.TrimSpace(m[1])
	}
	base := filepath.Base(fileName)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ToNode converts a ParsedDoc into a graph.Node, with id built from
// relPath (the repository-relative path this document was loaded from).
func (d *ParsedDoc) ToNode(relPath string) *graph.Node {
	nodeType := graph.Concept
	var tags []string
	var summary string
	if d.Frontmatter != nil {
		nodeType = d.Frontmatter.NodeType
		tags = append(tags, d.Frontmatter.Tags...)
		summary = d.Frontmatter.Summary
	}
	for _, tag := range d.Tags {
		if !containsString(tags, tag) {
			tags = append(tags, tag)
		}
	}

	n := graph.NewNode(graph.FileNodeID(relPath), nodeType, d.Title)
	n.Content = d.Body
	n.Tags = tags
	if summary != "" {
		n.Metadata = map[string]any{"summary": summary}
	}
	return n
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

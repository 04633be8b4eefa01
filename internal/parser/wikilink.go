package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/chenxu233/memexia/internal/graph"
)

// WikiLink is one parsed `[[target|rel:strength:desc]]` occurrence.
type WikiLink struct {
	Target      string
	Relation    graph.RelationType
	Strength    float64
	Description string
}

// wikiLinkPattern matches [[target]] or [[target|rest]], non-greedy,
// with at most one '|' and no ']' inside - spec.md §4.2's grammar.
var wikiLinkPattern = regexp.MustCompile(`\[\[([^\]|]+(?:\|[^\]|]+)?)\]\]`)

// anyWikiLinkPattern matches any [[...]] span for stripping, including
// forms parseLinkBody would reject (e.g. multiple pipes).
var anyWikiLinkPattern = regexp.MustCompile(`\[\[[^\]]+\]\]`)

// displayWikiLinkPattern captures target|displayText for the preview helper.
var displayWikiLinkPattern = regexp.MustCompile(`\[\[([^\]|]+)\|([^\]|]+)\]\]`)

// ParseWikiLinks extracts every wiki link from content in left-to-right
// document order, duplicates preserved.
func ParseWikiLinks(content string) []WikiLink {
	var links []WikiLink
	for _, match := range wikiLinkPattern.FindAllStringSubmatch(content, -1) {
		if link, ok := parseLinkBody(match[1]); ok {
			links = append(links, link)
		}
	}
	return links
}

// parseLinkBody parses the text between [[ ]], e.g. "target|rel:0.8:desc".
func parseLinkBody(body string) (WikiLink, bool) {
	parts := strings.SplitN(body, "|", 2)
	target := strings.TrimSpace(parts[0])
	if target == "" {
		return WikiLink{}, false
	}

	link := WikiLink{
		Target:   target,
		Relation: graph.RelatedTo,
		Strength: 1.0,
	}
	if len(parts) < 2 || parts[1] == "" {
		return link, true
	}

	afterPipe := parts[1]
	colonPos := strings.IndexByte(afterPipe, ':')
	if colonPos < 0 {
		link.Relation = graph.ParseRelationType(afterPipe)
		return link, true
	}

	link.Relation = graph.ParseRelationType(afterPipe[:colonPos])
	afterColon := afterPipe[colonPos+1:]
	descColon := strings.IndexByte(afterColon, ':')
	var strengthText string
	if descColon < 0 {
		strengthText = afterColon
	} else {
		strengthText = afterColon[:descColon]
		link.Description = afterColon[descColon+1:]
	}
	if s, err := strconv.ParseFloat(strengthText, 64); err == nil {
		link.Strength = clampStrength(s)
	}
	return link, true
}

func clampStrength(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// ToEdge converts a WikiLink into an Edge originating at from. The
// target is resolved to a file-node IRI; strength and description are
// only set when they differ from the link's defaults, matching the
// N-Quads fidelity shim's trigger condition in internal/graph.
func (l WikiLink) ToEdge(from string) *graph.Edge {
	to := graph.FileNodeID(l.Target)
	edge := &graph.Edge{
		ID:         graph.EdgeID(from, to),
		From:       from,
		To:         to,
		Relation:   l.Relation,
		Strength:   1.0,
		Confidence: 1.0,
		Source:     graph.Explicit,
	}
	if l.Strength != 1.0 {
		edge.UpdateStrength(l.Strength)
	}
	if l.Description != "" {
		edge.Description = l.Description
	}
	return edge
}

// RemoveWikiLinks strips every wiki-link span from content entirely.
func RemoveWikiLinks(content string) string {
	return anyWikiLinkPattern.ReplaceAllString(content, "")
}

// ReplaceWikiLinksWithText renders content for human-facing previews (not
// the committed body): `[[target|text]]` becomes `text`, bare `[[target]]`
// is dropped, matching what a reader would see rendered.
func ReplaceWikiLinksWithText(content string) string {
	replaced := displayWikiLinkPattern.ReplaceAllString(content, "$2")
	return anyWikiLinkPattern.ReplaceAllString(replaced, "")
}

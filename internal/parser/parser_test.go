package parser

import (
	"testing"

	"github.com/chenxu233/memexia/internal/graph"
	"github.com/stretchr/testify/assert"
)

func TestParseFrontmatterBasic(t *testing.T) {
	content := "---\ntitle: Free Will\ntype: Concept\ntags: [philosophy, mind]\nsummary: A short discussion\n---\n\n# Free Will\n\nFree will is..."
	fm, body := parseFrontmatter(content)
	assert.NotNil(t, fm)
	assert.Equal(t, "Free Will", fm.Title)
	assert.Equal(t, graph.Concept, fm.NodeType)
	assert.Equal(t, []string{"philosophy", "mind"}, fm.Tags)
	assert.Equal(t, "A short discussion", fm.Summary)
	assert.Contains(t, body, "Free will is...")
}

func TestParseFrontmatterMissing(t *testing.T) {
	fm, body := parseFrontmatter("# Title\n\ncontent")
	assert.Nil(t, fm)
	assert.Equal(t, "# Title\n\ncontent", body)
}

func TestParseFrontmatterUnknownType(t *testing.T) {
	content := "---\ntitle: Test\ntype: UnknownType\n---\n\nbody"
	fm, _ := parseFrontmatter(content)
	assert.Equal(t, graph.Concept, fm.NodeType)
}

func TestParseLinkBasic(t *testing.T) {
	link, ok := parseLinkBody("Target")
	assert.True(t, ok)
	assert.Equal(t, "Target", link.Target)
	assert.Equal(t, graph.RelatedTo, link.Relation)
	assert.Equal(t, 1.0, link.Strength)
	assert.Empty(t, link.Description)
}

func TestParseLinkWithStrengthAndDescription(t *testing.T) {
	link, ok := parseLinkBody("Target|Refines:0.9:a tighter definition")
	assert.True(t, ok)
	assert.Equal(t, graph.Refines, link.Relation)
	assert.Equal(t, 0.9, link.Strength)
	assert.Equal(t, "a tighter definition", link.Description)
}

func TestParseLinkUnderscoreSynonym(t *testing.T) {
	link, _ := parseLinkBody("Target|Part_Of")
	assert.Equal(t, graph.PartOf, link.Relation)
}

func TestStrengthClamping(t *testing.T) {
	over, _ := parseLinkBody("Target|Supports:1.5")
	assert.Equal(t, 1.0, over.Strength)

	under, _ := parseLinkBody("Target|Supports:-0.5")
	assert.Equal(t, 0.0, under.Strength)
}

func TestParseWikiLinksMultiple(t *testing.T) {
	content := "See [[Target1]] and [[Target2|Contradicts]].\n\nAlso [[Target3|Supports:0.8:evidence]] here."
	links := ParseWikiLinks(content)
	assert.Len(t, links, 3)
	assert.Equal(t, "Target1", links[0].Target)
	assert.Equal(t, "Target2", links[1].Target)
	assert.Equal(t, "Target3", links[2].Target)
}

func TestRemoveWikiLinks(t *testing.T) {
	content := "text [[Target1]] more [[Target2]] end"
	assert.Equal(t, "text  more  end", RemoveWikiLinks(content))
}

func TestReplaceWikiLinksWithText(t *testing.T) {
	content := "text [[Target|Shown]] more [[Target2]] end"
	assert.Equal(t, "text Shown more  end", ReplaceWikiLinksWithText(content))
}

func TestWikiLinkToEdge(t *testing.T) {
	link := WikiLink{Target: "Target Node", Relation: graph.Supports, Strength: 0.85, Description: "supporting evidence"}
	edge := link.ToEdge("source-node")
	assert.Equal(t, "source-node", edge.From)
	assert.Equal(t, graph.FileNodeID("Target Node"), edge.To)
	assert.Equal(t, graph.Supports, edge.Relation)
	assert.Equal(t, 0.85, edge.Strength)
}

func TestExtractHashtagsDeduplicates(t *testing.T) {
	tags := extractHashtags("word #philosophy and #philosophy again, also #mind-body")
	assert.Equal(t, []string{"philosophy", "mind-body"}, tags)
}

func TestResolveTitlePrecedence(t *testing.T) {
	fm := &Frontmatter{Title: "From Frontmatter"}
	assert.Equal(t, "From Frontmatter", resolveTitle(fm, "# Heading", "notes.md"))
	assert.Equal(t, "Heading", resolveTitle(nil, "# Heading", "notes.md"))
	assert.Equal(t, "notes", resolveTitle(nil, "no heading here", "notes.md"))
}

func TestParseMarkdownEndToEnd(t *testing.T) {
	content := "---\ntitle: Determinism\ntags: [philosophy]\n---\n\n# Determinism\n\nRelated to [[Free Will|Contradicts:0.7:tension]]. #metaphysics"
	doc := ParseMarkdown(content, "determinism.md")

	assert.Equal(t, "Determinism", doc.Title)
	assert.Len(t, doc.Links, 1)
	assert.Equal(t, "Free Will", doc.Links[0].Target)
	assert.Contains(t, doc.Tags, "metaphysics")
	assert.NotContains(t, doc.Body, "[[")

	node := doc.ToNode("determinism.md")
	assert.Equal(t, graph.FileNodeID("determinism.md"), node.ID)
	assert.Contains(t, node.Tags, "philosophy")
	assert.Contains(t, node.Tags, "metaphysics")
}

func TestPatternClampOnConsecutiveLinks(t *testing.T) {
	links := ParseWikiLinks("[[T|Supports:-0.5]][[T|Supports:1.5]]")
	assert.Len(t, links, 2)
	assert.Equal(t, 0.0, links[0].Strength)
	assert.Equal(t, 1.0, links[1].Strength)
}

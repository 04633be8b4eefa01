package indexer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/chenxu233/memexia/internal/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, relPath, content string) string {
	t.Helper()
	full := filepath.Join(root, relPath)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	return full
}

func TestIndexFileCreatesNodeAndEdges(t *testing.T) {
	root := t.TempDir()
	store := graph.NewMemStore()
	idx := New(store, root)

	path := writeFile(t, root, "free_will.md", "# Free Will\n\nSee [[Determinism|Contradicts:0.6]].")
	result, err := idx.IndexFile(path)
	require.NoError(t, err)
	assert.Equal(t, ResultIndexed, result.Kind)
	assert.Equal(t, 1, result.NodeCount)
	assert.Equal(t, 1, result.EdgeCount)

	node, ok, err := store.GetNode(graph.FileNodeID("free_will.md"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Free Will", node.Title)

	_, ok, err = store.GetNode(graph.FileNodeID("Determinism"))
	require.NoError(t, err)
	assert.True(t, ok, "dangling link target should get a placeholder node")
}

func TestIndexFileSkipsNonMarkdown(t *testing.T) {
	root := t.TempDir()
	store := graph.NewMemStore()
	idx := New(store, root)

	path := writeFile(t, root, "notes.txt", "not markdown")
	result, err := idx.IndexFile(path)
	require.NoError(t, err)
	assert.Equal(t, ResultSkipped, result.Kind)
}

func TestIndexAllAggregatesSummary(t *testing.T) {
	root := t.TempDir()
	store := graph.NewMemStore()
	idx := New(store, root)

	writeFile(t, root, "a.md", "# A\n\n[[B]]")
	writeFile(t, root, "b.md", "# B\n\ncontent")
	writeFile(t, root, "ignore.tmp", "scratch")

	summary, err := idx.IndexAll(root)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.FilesIndexed)
	assert.GreaterOrEqual(t, summary.FilesSkipped, 1)
	assert.Empty(t, summary.Errors)
}

func TestReindexAllRemovesStaleNodes(t *testing.T) {
	root := t.TempDir()
	store := graph.NewMemStore()
	idx := New(store, root)

	writeFile(t, root, "a.md", "# A")
	_, err := idx.IndexAll(root)
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(root, "a.md")))
	writeFile(t, root, "b.md", "# B")

	summary, err := idx.ReindexAll(root)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.FilesIndexed)

	_, ok, err := store.GetNode(graph.FileNodeID("a.md"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHandleEventDeletedRemovesNode(t *testing.T) {
	root := t.TempDir()
	store := graph.NewMemStore()
	idx := New(store, root)

	path := writeFile(t, root, "a.md", "# A")
	_, err := idx.IndexFile(path)
	require.NoError(t, err)

	result, err := idx.HandleEvent(FileEvent{Kind: EventDeleted, Path: path})
	require.NoError(t, err)
	assert.Equal(t, ResultDeleted, result.Kind)

	_, ok, err := store.GetNode(graph.FileNodeID("a.md"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHandleEventRenamed(t *testing.T) {
	root := t.TempDir()
	store := graph.NewMemStore()
	idx := New(store, root)

	oldPath := writeFile(t, root, "old.md", "# Old")
	_, err := idx.IndexFile(oldPath)
	require.NoError(t, err)

	newPath := writeFile(t, root, "new.md", "# New")
	result, err := idx.HandleEvent(FileEvent{Kind: EventRenamed, From: oldPath, Path: newPath})
	require.NoError(t, err)
	assert.Equal(t, ResultIndexed, result.Kind)

	_, ok, err := store.GetNode(graph.FileNodeID("old.md"))
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = store.GetNode(graph.FileNodeID("new.md"))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestWatchConfigGlobSemantics(t *testing.T) {
	cfg := DefaultWatchConfig()
	assert.True(t, cfg.IsAllowed("notes/test.md"))
	assert.False(t, cfg.IsAllowed(".git/config"))
	assert.False(t, cfg.IsAllowed("notes/tmp.md.tmp"))

	cfg.ClearWhitelist()
	cfg.AddWhitelist("notes/*.md")
	assert.True(t, cfg.IsAllowed("notes/test.md"))
	assert.False(t, cfg.IsAllowed("notes/sub/test.md"), "single * must not cross a path separator")

	cfg.ClearWhitelist()
	cfg.AddWhitelist("docs/**")
	assert.True(t, cfg.IsAllowed("docs/guide.md"))
	assert.True(t, cfg.IsAllowed("docs/a/b/guide.md"), "** must cross path separators")
}

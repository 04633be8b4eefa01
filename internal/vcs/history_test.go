package vcs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraphHistorySnapshotRoundtrip(t *testing.T) {
	root := t.TempDir()
	h, err := InitGraphHistory(root)
	require.NoError(t, err)
	defer h.Close()

	nquads := "<urn:memexia:file:a.md> <memexia:title> \"A\" .\n"
	hash, err := h.Snapshot(nquads)
	require.NoError(t, err)
	assert.Len(t, hash, 64)

	snap, err := h.GetSnapshot(hash)
	require.NoError(t, err)
	assert.Equal(t, nquads, snap.NQuads)
}

func TestGraphHistoryRecordAndLookupCommitLink(t *testing.T) {
	root := t.TempDir()
	h, err := InitGraphHistory(root)
	require.NoError(t, err)
	defer h.Close()

	require.NoError(t, h.Record("commit1", "graphhash1"))

	hash, ok, err := h.GetCommitGraphHash("commit1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "graphhash1", hash)

	_, ok, err = h.GetCommitGraphHash("nonexistent")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGraphHistoryGetHistoryOrdering(t *testing.T) {
	root := t.TempDir()
	h, err := InitGraphHistory(root)
	require.NoError(t, err)
	defer h.Close()

	require.NoError(t, h.Record("c1", "g1"))
	require.NoError(t, h.Record("c2", "g2"))
	require.NoError(t, h.Record("c3", "g3"))

	entries, err := h.GetHistory(2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "c3", entries[0].CommitHash)
	assert.Equal(t, "c2", entries[1].CommitHash)
}

func TestGraphHistoryDiff(t *testing.T) {
	root := t.TempDir()
	h, err := InitGraphHistory(root)
	require.NoError(t, err)
	defer h.Close()

	oldHash, err := h.Snapshot("a .\nb .\n")
	require.NoError(t, err)
	newHash, err := h.Snapshot("a .\nc .\n")
	require.NoError(t, err)

	delta, err := h.Diff(oldHash, newHash)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"c ."}, delta.AddedLines)
	assert.ElementsMatch(t, []string{"b ."}, delta.RemovedLines)
	assert.False(t, delta.IsEmpty())

	added, removed := delta.Stats()
	assert.Equal(t, 1, added)
	assert.Equal(t, 1, removed)
}

func TestGraphHistoryNodeSnapshots(t *testing.T) {
	root := t.TempDir()
	h, err := InitGraphHistory(root)
	require.NoError(t, err)
	defer h.Close()

	nodeID := "urn:memexia:file:test.md"
	hash1, err := h.SnapshotNode(nodeID, "version one", "c1")
	require.NoError(t, err)
	_, err = h.SnapshotNode(nodeID, "version two", "c2")
	require.NoError(t, err)

	history, err := h.GetNodeHistory(nodeID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "c1", history[0].CommitHash)
	assert.Equal(t, "c2", history[1].CommitHash)

	content, ok, err := h.GetNodeSnapshot(nodeID, hash1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "version one", content)

	latest, err := h.GetLatestNodeSnapshot(nodeID)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "version two", latest.Content)
}

func TestGraphHistoryDerivationChain(t *testing.T) {
	root := t.TempDir()
	h, err := InitGraphHistory(root)
	require.NoError(t, err)
	defer h.Close()

	require.NoError(t, h.RecordDerivation("child1", "root", "c1"))
	require.NoError(t, h.RecordDerivation("child2", "child1", "c2"))

	chain, err := h.BuildDerivationChain("child2")
	require.NoError(t, err)
	require.Len(t, chain, 2)
	assert.Equal(t, "child1", chain[0].ParentID)
	assert.Equal(t, "root", chain[1].ParentID)

	derived, err := h.GetDerivedNodes("root")
	require.NoError(t, err)
	require.Len(t, derived, 1)
	assert.Equal(t, "child1", derived[0].ChildID)

	reverse, err := h.BuildReverseDerivationChain("root", 10)
	require.NoError(t, err)
	require.Len(t, reverse, 2)
	assert.Equal(t, "child1", reverse[0].ChildID)
	assert.Equal(t, "child2", reverse[1].ChildID)
}

func TestGraphHistorySanitizesNodeIDForPath(t *testing.T) {
	root := t.TempDir()
	h, err := InitGraphHistory(root)
	require.NoError(t, err)
	defer h.Close()

	nodeID := "urn:memexia:edge:a-b"
	_, err = h.SnapshotNode(nodeID, "content", "c1")
	require.NoError(t, err)

	history, err := h.GetNodeHistory(nodeID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestRebuildAccelIndexRestoresLookups(t *testing.T) {
	root := t.TempDir()
	h, err := InitGraphHistory(root)
	require.NoError(t, err)
	defer h.Close()

	require.NoError(t, h.Record("commit1", "graph1"))
	_, err = h.SnapshotNode("node1", "content", "commit1")
	require.NoError(t, err)

	require.NoError(t, h.RebuildAccelIndex())

	hash, ok, err := h.GetCommitGraphHash("commit1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "graph1", hash)
}

package vcs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRollback(t *testing.T) (*GraphHistory, *RollbackManager) {
	t.Helper()
	root := t.TempDir()
	h, err := InitGraphHistory(root)
	require.NoError(t, err)
	t.Cleanup(func() { h.Close() })
	return h, NewRollbackManager(h)
}

func TestRollbackNode(t *testing.T) {
	h, r := newTestRollback(t)

	nodeID := "urn:memexia:node:test"
	hash1, err := h.SnapshotNode(nodeID, `{"title":"Version 1"}`, "commit1")
	require.NoError(t, err)
	_, err = h.SnapshotNode(nodeID, `{"title":"Version 2"}`, "commit2")
	require.NoError(t, err)

	content, err := r.RollbackNode(nodeID, hash1)
	require.NoError(t, err)
	assert.Equal(t, `{"title":"Version 1"}`, content)
}

func TestRollbackNodeNotFound(t *testing.T) {
	_, r := newTestRollback(t)
	_, err := r.RollbackNode("not_exists", "fake_hash")
	assert.Error(t, err)
}

func TestRollbackNodeToHistory(t *testing.T) {
	h, r := newTestRollback(t)

	nodeID := "urn:memexia:node:test"
	require.NoError(t, mustSnapshot(h, nodeID, `{"v":1}`, "commit1"))
	require.NoError(t, mustSnapshot(h, nodeID, `{"v":2}`, "commit2"))

	content, err := r.RollbackNodeToHistory(nodeID, "commit1")
	require.NoError(t, err)
	require.NotNil(t, content)
	assert.Equal(t, `{"v":1}`, *content)

	missing, err := r.RollbackNodeToHistory(nodeID, "not_exists")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func mustSnapshot(h *GraphHistory, nodeID, content, commitHash string) error {
	_, err := h.SnapshotNode(nodeID, content, commitHash)
	return err
}

func TestRollbackNodeToLatest(t *testing.T) {
	h, r := newTestRollback(t)

	nodeID := "urn:memexia:node:latest"
	require.NoError(t, mustSnapshot(h, nodeID, `{"v":1}`, "c1"))
	require.NoError(t, mustSnapshot(h, nodeID, `{"v":2}`, "c2"))

	latest, err := r.RollbackNodeToLatest(nodeID)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, `{"v":2}`, latest.Content)

	none, err := r.RollbackNodeToLatest("not_exists")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestPreviewNodeRollback(t *testing.T) {
	h, r := newTestRollback(t)

	require.NoError(t, h.RecordDerivation("child1", "root", "c1"))
	require.NoError(t, h.RecordDerivation("child2", "child1", "c2"))

	affected, err := r.PreviewNodeRollback("root")
	require.NoError(t, err)
	assert.Len(t, affected, 2)
	assert.Contains(t, affected, "child1")
	assert.Contains(t, affected, "child2")
}

func TestPreviewNodeRollbackEmpty(t *testing.T) {
	_, r := newTestRollback(t)
	affected, err := r.PreviewNodeRollback("orphan")
	require.NoError(t, err)
	assert.Empty(t, affected)
}

func TestPreviewNodeRollbackDeepChain(t *testing.T) {
	h, r := newTestRollback(t)

	parent := "root"
	for i := 1; i <= 5; i++ {
		child := "n" + string(rune('0'+i))
		require.NoError(t, h.RecordDerivation(child, parent, "c"+string(rune('0'+i))))
		parent = child
	}

	affected, err := r.PreviewNodeRollback("root")
	require.NoError(t, err)
	assert.Len(t, affected, 5)
}

func TestRollbackDerivationChainWithSnapshots(t *testing.T) {
	h, r := newTestRollback(t)

	require.NoError(t, h.RecordDerivation("B", "A", "c1"))
	require.NoError(t, h.RecordDerivation("C", "B", "c2"))

	require.NoError(t, mustSnapshot(h, "A", `{"id":"A"}`, "c1"))
	require.NoError(t, mustSnapshot(h, "B", `{"id":"B"}`, "c1"))
	require.NoError(t, mustSnapshot(h, "C", `{"id":"C"}`, "c2"))

	results, err := r.RollbackDerivationChain("C")
	require.NoError(t, err)

	var nodeIDs []string
	for _, res := range results {
		nodeIDs = append(nodeIDs, res.NodeID)
	}
	assert.Contains(t, nodeIDs, "A")
	assert.Contains(t, nodeIDs, "B")
}

func TestRollbackDerivationChainEmpty(t *testing.T) {
	_, r := newTestRollback(t)
	results, err := r.RollbackDerivationChain("orphan")
	require.NoError(t, err)
	assert.True(t, len(results) == 0 || len(results) == 1)
}

func TestRollbackResultHasChanges(t *testing.T) {
	old := "old"
	result := RollbackResult{NodeID: "test", FromContent: &old, ToContent: "new", CommitHash: "abc"}
	assert.True(t, result.HasChanges())

	same := "same"
	noChange := RollbackResult{NodeID: "test", FromContent: &same, ToContent: "same", CommitHash: "abc"}
	assert.False(t, noChange.HasChanges())

	noFrom := RollbackResult{NodeID: "test", FromContent: nil, ToContent: "new content", CommitHash: "abc"}
	assert.True(t, noFrom.HasChanges())

	emptyTo := RollbackResult{NodeID: "test", FromContent: &old, ToContent: "", CommitHash: "abc"}
	assert.True(t, emptyTo.HasChanges())
}

func TestRollbackManagerNodeExists(t *testing.T) {
	h, r := newTestRollback(t)

	assert.False(t, r.NodeExists("not_exists"))
	require.NoError(t, mustSnapshot(h, "exists", `{"id":"exists"}`, "c1"))
	assert.True(t, r.NodeExists("exists"))
}

func TestRollbackManagerGetDerivationChain(t *testing.T) {
	h, r := newTestRollback(t)

	require.NoError(t, h.RecordDerivation("child1", "root", "c1"))
	require.NoError(t, h.RecordDerivation("child2", "child1", "c2"))
	require.NoError(t, h.RecordDerivation("child3", "child2", "c3"))

	chain, err := r.GetDerivationChain("child3")
	require.NoError(t, err)
	assert.Len(t, chain, 3)
}

package repository

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/chenxu233/memexia/internal/graph"
	"github.com/chenxu233/memexia/internal/vcs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAuthor() vcs.Author {
	return vcs.Author{Name: "Test User", Email: "test@example.com"}
}

func newInitializedRepo(t *testing.T) (*Repository, string) {
	t.Helper()
	root := t.TempDir()

	repo, err := Init(root, "test-repo")
	if err != nil {
		t.Skip("git not available")
	}
	t.Cleanup(func() { repo.Close() })

	exec.Command("git", "-C", root, "config", "user.email", "test@example.com").Run()
	exec.Command("git", "-C", root, "config", "user.name", "Test User").Run()

	return repo, root
}

func writeNote(t *testing.T, root, relPath, content string) {
	t.Helper()
	full := filepath.Join(root, relPath)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

func TestInitRefusesExisting(t *testing.T) {
	root := t.TempDir()
	repo, err := Init(root, "first")
	if err != nil {
		t.Skip("git not available")
	}
	repo.Close()

	_, err = Init(root, "second")
	assert.Error(t, err)
}

func TestOpenWalksUpToRoot(t *testing.T) {
	repo, root := newInitializedRepo(t)
	defer repo.Close()

	nested := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	opened, err := Open(nested)
	require.NoError(t, err)
	defer opened.Close()
	assert.Equal(t, repo.Root(), opened.Root())
}

func TestOpenNotARepository(t *testing.T) {
	root := t.TempDir()
	_, err := Open(root)
	assert.Error(t, err)
}

func TestAddDeduplicates(t *testing.T) {
	repo, root := newInitializedRepo(t)
	defer repo.Close()

	writeNote(t, root, "note.md", "# Note")
	require.NoError(t, repo.Add([]string{filepath.Join(root, "note.md")}))
	require.NoError(t, repo.Add([]string{filepath.Join(root, "note.md")}))

	staged, err := repo.Status()
	require.NoError(t, err)
	assert.Equal(t, []string{"note.md"}, staged)
}

func TestCommitRefusesEmptyIndex(t *testing.T) {
	repo, _ := newInitializedRepo(t)
	defer repo.Close()

	_, err := repo.Commit("nothing", testAuthor())
	assert.Error(t, err)
}

func TestCommitSixStepProtocol(t *testing.T) {
	repo, root := newInitializedRepo(t)
	defer repo.Close()

	writeNote(t, root, "free_will.md", "# Free Will\n\nSee [[Determinism|Contradicts:0.6]].")
	require.NoError(t, repo.Add([]string{filepath.Join(root, "free_will.md")}))

	result, err := repo.Commit("add free will note", testAuthor())
	require.NoError(t, err)
	assert.NotEmpty(t, result.CommitID)
	assert.NotEmpty(t, result.GraphHash)
	assert.Equal(t, 1, result.FilesCommitted)
	assert.Equal(t, 1, result.NodesWritten)
	assert.Equal(t, 1, result.EdgesWritten)

	node, ok, err := repo.Store().GetNode(graph.FileNodeID("free_will.md"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Free Will", node.Title)

	staged, err := repo.Status()
	require.NoError(t, err)
	assert.Empty(t, staged, "index should be truncated after commit")

	graphHash, found, err := repo.History().GetCommitGraphHash(result.CommitID)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, result.GraphHash, graphHash)
}

func TestAmendKeepsPreviousPairingButLatestWins(t *testing.T) {
	repo, root := newInitializedRepo(t)
	defer repo.Close()

	writeNote(t, root, "a.md", "# A")
	require.NoError(t, repo.Add([]string{filepath.Join(root, "a.md")}))
	first, err := repo.Commit("first", testAuthor())
	require.NoError(t, err)

	amended, err := repo.Amend("amended message", testAuthor())
	require.NoError(t, err)
	assert.NotEqual(t, first.CommitID, amended.CommitID)

	hash, found, err := repo.History().GetCommitGraphHash(amended.CommitID)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, amended.GraphHash, hash)

	prevHash, prevFound, err := repo.History().GetCommitGraphHash(first.CommitID)
	require.NoError(t, err)
	assert.True(t, prevFound)
	assert.Equal(t, first.GraphHash, prevHash)
}

func TestLogResolvesGraphHash(t *testing.T) {
	repo, root := newInitializedRepo(t)
	defer repo.Close()

	writeNote(t, root, "a.md", "# A")
	require.NoError(t, repo.Add([]string{filepath.Join(root, "a.md")}))
	result, err := repo.Commit("first commit", testAuthor())
	require.NoError(t, err)

	log, err := repo.Log(10)
	require.NoError(t, err)
	require.Len(t, log, 1)
	assert.Equal(t, result.CommitID, log[0].Commit.OID)
	assert.Equal(t, result.GraphHash, log[0].GraphHash)
}

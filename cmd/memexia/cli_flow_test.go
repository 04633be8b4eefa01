package main

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/chenxu233/memexia/internal/repository"
	"github.com/stretchr/testify/require"
)

// TestInitAddCommitFlow exercises the same Repository path the cobra
// subcommands call into, end to end, without invoking cobra itself
// (cobra's own flag-parsing is exercised implicitly by every manual
// CLI run; this test pins the underlying sequence the subcommands share).
func TestInitAddCommitFlow(t *testing.T) {
	root := t.TempDir()

	repo, err := repository.Init(root, "flow-test")
	if err != nil {
		t.Skip("git not available")
	}
	defer repo.Close()

	exec.Command("git", "-C", root, "config", "user.email", "test@example.com").Run()
	exec.Command("git", "-C", root, "config", "user.name", "Test User").Run()

	notePath := filepath.Join(root, "idea.md")
	require.NoError(t, os.WriteFile(notePath, []byte("# Idea\n\nSee [[Other]]."), 0o644))

	require.NoError(t, repo.Add([]string{notePath}))

	author := repo.GitEngine().DefaultAuthor()
	result, err := repo.Commit("add idea", author)
	require.NoError(t, err)
	require.NotEmpty(t, result.CommitID)
	require.Equal(t, 1, result.FilesCommitted)

	staged, err := repo.Status()
	require.NoError(t, err)
	require.Empty(t, staged)
}

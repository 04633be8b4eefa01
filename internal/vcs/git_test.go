package vcs

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

func setupTestRepo(t *testing.T) *GitEngine {
	t.Helper()
	dir := t.TempDir()

	g := NewGitEngine(dir)
	if err := g.Init(); err != nil {
		t.Skip("git not available")
	}
	exec.Command("git", "-C", dir, "config", "user.email", "test@example.com").Run()
	exec.Command("git", "-C", dir, "config", "user.name", "Test User").Run()

	return g
}

func writeRepoFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestGitEngineInitAndIsRepo(t *testing.T) {
	g := setupTestRepo(t)
	if !g.IsRepo() {
		t.Fatal("expected IsRepo to report true after Init")
	}
}

func TestGitEngineCommitAndLog(t *testing.T) {
	g := setupTestRepo(t)
	author := Author{Name: "Test User", Email: "test@example.com"}

	writeRepoFile(t, g.root, "note.md", "# Note")
	if err := g.Add([]string{"note.md"}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	oid, err := g.Commit("initial commit", author)
	if err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	if oid == "" {
		t.Fatal("expected non-empty OID")
	}

	log, err := g.Log(10)
	if err != nil {
		t.Fatalf("Log() error = %v", err)
	}
	if len(log) != 1 {
		t.Fatalf("expected 1 commit, got %d", len(log))
	}
	if log[0].Message != "initial commit" {
		t.Fatalf("unexpected message: %q", log[0].Message)
	}
}

func TestGitEngineAmendKeepsOneCommit(t *testing.T) {
	g := setupTestRepo(t)
	author := Author{Name: "Test User", Email: "test@example.com"}

	writeRepoFile(t, g.root, "a.md", "# A")
	g.Add([]string{"a.md"})
	first, err := g.Commit("first message", author)
	if err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	writeRepoFile(t, g.root, "b.md", "# B")
	g.Add([]string{"b.md"})
	amended, err := g.Amend("amended message", author)
	if err != nil {
		t.Fatalf("Amend() error = %v", err)
	}
	if amended == first {
		t.Fatal("amend should produce a new OID")
	}

	log, err := g.Log(10)
	if err != nil {
		t.Fatalf("Log() error = %v", err)
	}
	if len(log) != 1 {
		t.Fatalf("expected amend to keep a single commit, got %d", len(log))
	}
	if log[0].Message != "amended message" {
		t.Fatalf("unexpected message after amend: %q", log[0].Message)
	}
}

func TestGitEngineHeadInfoNoCommits(t *testing.T) {
	g := setupTestRepo(t)
	if _, err := g.HeadInfo(); err == nil {
		t.Fatal("expected error for HeadInfo with no commits")
	}
}

func TestCommitInfoToShort(t *testing.T) {
	c := CommitInfo{OID: "abcdef1234567890", Message: "first line\nsecond line"}
	got := c.ToShort()
	if got != "abcdef1 first line" {
		t.Fatalf("unexpected short form: %q", got)
	}
}

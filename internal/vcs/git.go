// Package vcs implements the file-version engine port (C6) over the
// system git binary via os/exec, the graph-history store (C7), and the
// rollback manager (C9).
package vcs

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	memerrors "github.com/chenxu233/memexia/internal/errors"
)

// Author is a commit's name/email pair, formatted the way git expects.
type Author struct {
	Name  string
	Email string
}

func (a Author) String() string {
	return fmt.Sprintf("%s <%s>", a.Name, a.Email)
}

// CommitInfo is one entry in the file-version history.
type CommitInfo struct {
	OID       string
	Message   string
	Author    string
	Timestamp time.Time
}

// ToShort renders a 7-character OID plus the commit's first message line.
func (c CommitInfo) ToShort() string {
	oid := c.OID
	if len(oid) > 7 {
		oid = oid[:7]
	}
	return oid + " " + firstLine(c.Message)
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}
	return s
}

// GitEngine wraps the system git binary for one working tree.
type GitEngine struct {
	root string
}

// NewGitEngine returns a GitEngine rooted at dir.
func NewGitEngine(dir string) *GitEngine {
	return &GitEngine{root: dir}
}

func (g *GitEngine) run(args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = g.root
	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return "", memerrors.Wrapf(err, memerrors.IoFailure, memerrors.SeverityMedium,
				"git %s failed: %s", strings.Join(args, " "), strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", memerrors.Wrapf(err, memerrors.IoFailure, memerrors.SeverityMedium, "git %s failed", strings.Join(args, " "))
	}
	return strings.TrimSpace(string(out)), nil
}

func (g *GitEngine) runWithAuthor(author Author, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = g.root
	cmd.Env = append(cmd.Environ(),
		"GIT_AUTHOR_NAME="+author.Name,
		"GIT_AUTHOR_EMAIL="+author.Email,
		"GIT_COMMITTER_NAME="+author.Name,
		"GIT_COMMITTER_EMAIL="+author.Email,
	)
	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return "", memerrors.Wrapf(err, memerrors.IoFailure, memerrors.SeverityMedium,
				"git %s failed: %s", strings.Join(args, " "), strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", memerrors.Wrapf(err, memerrors.IoFailure, memerrors.SeverityMedium, "git %s failed", strings.Join(args, " "))
	}
	return strings.TrimSpace(string(out)), nil
}

// Init creates a new git repository at root.
func (g *GitEngine) Init() error {
	_, err := g.run("init")
	return err
}

// IsRepo reports whether root is inside a git working tree.
func (g *GitEngine) IsRepo() bool {
	cmd := exec.Command("git", "rev-parse", "--is-inside-work-tree")
	cmd.Dir = g.root
	return cmd.Run() == nil
}

// Add stages paths (relative to root).
func (g *GitEngine) Add(paths []string) error {
	args := append([]string{"add"}, paths...)
	_, err := g.run(args...)
	return err
}

// Commit creates a new commit with the given message and author,
// returning its OID.
func (g *GitEngine) Commit(message string, author Author) (string, error) {
	if _, err := g.runWithAuthor(author, "commit", "-m", message, "--allow-empty-message"); err != nil {
		return "", err
	}
	return g.run("rev-parse", "HEAD")
}

// Amend replaces HEAD with a new commit carrying the given message and
// author, keeping HEAD's parents (git's native --amend semantics).
func (g *GitEngine) Amend(message string, author Author) (string, error) {
	if _, err := g.runWithAuthor(author, "commit", "--amend", "-m", message); err != nil {
		return "", err
	}
	return g.run("rev-parse", "HEAD")
}

// Log returns up to limit commits, most recent first.
func (g *GitEngine) Log(limit int) ([]CommitInfo, error) {
	args := []string{"log", "--pretty=format:%H%x00%an <%ae>%x00%at%x00%B%x01"}
	if limit > 0 {
		args = append(args, "-n", strconv.Itoa(limit))
	}
	out, err := g.run(args...)
	if err != nil {
		return nil, err
	}
	if out == "" {
		return nil, nil
	}

	var commits []CommitInfo
	for _, entry := range strings.Split(out, "\x01") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		fields := strings.SplitN(entry, "\x00", 4)
		if len(fields) != 4 {
			continue
		}
		ts, _ := strconv.ParseInt(fields[2], 10, 64)
		commits = append(commits, CommitInfo{
			OID:       fields[0],
			Author:    fields[1],
			Timestamp: time.Unix(ts, 0).UTC(),
			Message:   strings.TrimRight(fields[3], "\n"),
		})
	}
	return commits, nil
}

// HeadInfo returns the current HEAD commit, or an error if there is none yet.
func (g *GitEngine) HeadInfo() (CommitInfo, error) {
	commits, err := g.Log(1)
	if err != nil {
		return CommitInfo{}, err
	}
	if len(commits) == 0 {
		return CommitInfo{}, memerrors.NothingToCommitErr()
	}
	return commits[0], nil
}

// DefaultAuthor reads git's configured user.name/user.email, falling
// back to a generic local identity when git has none configured.
func (g *GitEngine) DefaultAuthor() Author {
	name, errName := g.run("config", "user.name")
	email, errEmail := g.run("config", "user.email")
	if errName != nil || errEmail != nil || name == "" || email == "" {
		return Author{Name: "Memexia User", Email: "user@memexia.local"}
	}
	return Author{Name: name, Email: email}
}

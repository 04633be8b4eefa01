// Package repository implements the orchestrator (C8): it wires the
// object store (C1), parser (C2), triple-store (C3), git engine (C6),
// and graph history (C7) together under the six-step commit protocol,
// and is the stable API the CLI (and any future API server) builds on.
package repository

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	memerrors "github.com/chenxu233/memexia/internal/errors"
	"github.com/chenxu233/memexia/internal/graph"
	"github.com/chenxu233/memexia/internal/logging"
	"github.com/chenxu233/memexia/internal/objectstore"
	"github.com/chenxu233/memexia/internal/parser"
	"github.com/chenxu233/memexia/internal/vcs"
)

const repoDirName = ".memexia"

// Metadata is the repository-level record written at init time.
type Metadata struct {
	Version   string    `json:"version"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CommitResult summarises one commit(message) call.
type CommitResult struct {
	CommitID    string
	GraphHash   string
	FilesCommitted int
	NodesWritten   int
	EdgesWritten   int
}

// Repository orchestrates every core component rooted at one working
// directory.
type Repository struct {
	root    string
	objects *objectstore.Store
	store   graph.Store
	git     *vcs.GitEngine
	history *vcs.GraphHistory
}

func repoDir(root string) string { return filepath.Join(root, repoDirName) }
func indexPath(root string) string { return filepath.Join(repoDir(root), "index") }
func metadataPath(root string) string { return filepath.Join(repoDir(root), "metadata.json") }
func graphPath(root string) string { return filepath.Join(repoDir(root), "graph.nq") }

// Init creates a new repository at path, refusing if one already exists.
func Init(path, name string) (*Repository, error) {
	root, err := filepath.Abs(path)
	if err != nil {
		return nil, memerrors.IoFailureErr(err, path)
	}

	if _, err := os.Stat(repoDir(root)); err == nil {
		return nil, memerrors.AlreadyExistsErr(root)
	}

	if err := os.MkdirAll(repoDir(root), 0o755); err != nil {
		return nil, memerrors.IoFailureErr(err, root)
	}

	history, err := vcs.InitGraphHistory(root)
	if err != nil {
		return nil, err
	}

	gitEngine := vcs.NewGitEngine(root)
	if !gitEngine.IsRepo() {
		if err := gitEngine.Init(); err != nil {
			return nil, err
		}
	}

	meta := Metadata{Version: "1", Name: name, CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC()}
	if err := writeMetadata(root, meta); err != nil {
		return nil, err
	}

	store, err := graph.NewFileStore(graphPath(root))
	if err != nil {
		return nil, err
	}

	repo := &Repository{
		root:    root,
		objects: objectstore.New(repoDir(root)),
		store:   store,
		git:     gitEngine,
		history: history,
	}
	logging.Info("initialised repository", "root", root)
	return repo, nil
}

// Open walks upward from path until a directory containing the hidden
// repository directory is found.
func Open(path string) (*Repository, error) {
	start, err := filepath.Abs(path)
	if err != nil {
		return nil, memerrors.IoFailureErr(err, path)
	}

	current := start
	for {
		if _, err := os.Stat(repoDir(current)); err == nil {
			break
		}
		parent := filepath.Dir(current)
		if parent == current {
			return nil, memerrors.NotARepositoryErr(start)
		}
		current = parent
	}

	history, err := vcs.OpenGraphHistory(current)
	if err != nil {
		return nil, err
	}

	store, err := graph.NewFileStore(graphPath(current))
	if err != nil {
		return nil, err
	}

	repo := &Repository{
		root:    current,
		objects: objectstore.New(repoDir(current)),
		store:   store,
		git:     vcs.NewGitEngine(current),
		history: history,
	}
	return repo, nil
}

// Close releases the repository's held resources.
func (r *Repository) Close() error {
	return r.history.Close()
}

// Root returns the repository's absolute root directory.
func (r *Repository) Root() string { return r.root }

// Store exposes the underlying triple-store to CLI commands that read
// it (`graph show`/`graph query`) or write it (`link`, `graph node create`).
func (r *Repository) Store() graph.Store { return r.store }

func writeMetadata(root string, meta Metadata) error {
	encoded, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(metadataPath(root), encoded, 0o644); err != nil {
		return memerrors.IoFailureErr(err, metadataPath(root))
	}
	return nil
}

func readIndex(root string) ([]string, error) {
	content, err := os.ReadFile(indexPath(root))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, memerrors.IoFailureErr(err, indexPath(root))
	}
	var paths []string
	for _, line := range strings.Split(string(content), "\n") {
		if line != "" {
			paths = append(paths, line)
		}
	}
	return paths, nil
}

func writeIndex(root string, paths []string) error {
	content := strings.Join(paths, "\n")
	if len(paths) > 0 {
		content += "\n"
	}
	if err := os.WriteFile(indexPath(root), []byte(content), 0o644); err != nil {
		return memerrors.IoFailureErr(err, indexPath(root))
	}
	return nil
}

// Add appends paths to the staging index, de-duplicated, stored
// relative to the repository root.
func (r *Repository) Add(paths []string) error {
	index, err := readIndex(r.root)
	if err != nil {
		return err
	}

	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return memerrors.IoFailureErr(err, p)
		}
		rel, err := filepath.Rel(r.root, abs)
		if err != nil {
			return memerrors.New(memerrors.IoFailure, memerrors.SeverityMedium, "file is outside repository: "+p)
		}
		rel = strings.ReplaceAll(rel, "\\", "/")

		if !containsStr(index, rel) {
			index = append(index, rel)
		}
	}

	return writeIndex(r.root, index)
}

func containsStr(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Status reports the currently staged paths.
func (r *Repository) Status() ([]string, error) {
	return readIndex(r.root)
}

// Commit runs the six-step commit protocol:
//  1. read the index, refusing if empty
//  2. for each indexed file: store bytes in C1, parse, write the node
//     and its edges via C3 (creating placeholder targets as needed)
//  3. serialise the graph, hash, and store the snapshot in C7
//  4. stage the same files via C6 and create the commit
//  5. record (commit_id, graph_hash) in C7
//  6. truncate the index
func (r *Repository) Commit(message string, author vcs.Author) (*CommitResult, error) {
	index, err := readIndex(r.root)
	if err != nil {
		return nil, err
	}
	if len(index) == 0 {
		return nil, memerrors.NothingToCommitErr()
	}

	result := &CommitResult{}
	for _, relPath := range index {
		fullPath := filepath.Join(r.root, relPath)
		content, err := os.ReadFile(fullPath)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, memerrors.IoFailureErr(err, fullPath)
		}

		if _, err := r.objects.Put(content); err != nil {
			return nil, err
		}

		doc := parser.ParseMarkdown(string(content), relPath)
		node := doc.ToNode(relPath)
		if err := r.store.AddNode(node); err != nil {
			return nil, err
		}
		result.NodesWritten++

		for _, link := range doc.Links {
			targetID := graph.FileNodeID(link.Target)
			exists, err := r.store.NodeExists(targetID)
			if err != nil {
				return nil, err
			}
			if !exists {
				placeholder := graph.NewNode(targetID, graph.Concept, link.Target)
				if err := r.store.AddNode(placeholder); err != nil {
					return nil, err
				}
			}
			if err := r.store.AddEdge(link.ToEdge(node.ID)); err != nil {
				return nil, err
			}
			result.EdgesWritten++
		}
		result.FilesCommitted++
	}

	nquads, err := r.store.ExportNQuads()
	if err != nil {
		return nil, err
	}
	graphHash, err := r.history.Snapshot(nquads)
	if err != nil {
		return nil, err
	}

	if err := r.git.Add(index); err != nil {
		return nil, err
	}
	commitID, err := r.git.Commit(message, author)
	if err != nil {
		return nil, err
	}

	if err := r.history.Record(commitID, graphHash); err != nil {
		return nil, err
	}

	if err := writeIndex(r.root, nil); err != nil {
		return nil, err
	}

	result.CommitID = commitID
	result.GraphHash = graphHash
	logging.Info("commit created", "commit_id", commitID, "graph_hash", graphHash, "files", result.FilesCommitted)
	return result, nil
}

// Amend re-snapshots the graph and amends the file commit, recording
// a new (commit_id, graph_hash) pairing. The previous pairing is left
// in place; lookups scan in insertion order and keep the last match.
func (r *Repository) Amend(message string, author vcs.Author) (*CommitResult, error) {
	nquads, err := r.store.ExportNQuads()
	if err != nil {
		return nil, err
	}
	graphHash, err := r.history.Snapshot(nquads)
	if err != nil {
		return nil, err
	}

	commitID, err := r.git.Amend(message, author)
	if err != nil {
		return nil, err
	}

	if err := r.history.Record(commitID, graphHash); err != nil {
		return nil, err
	}

	return &CommitResult{CommitID: commitID, GraphHash: graphHash}, nil
}

// LogEntry is one resolved commit/graph-snapshot pairing, as reported by Log.
type LogEntry struct {
	Commit    vcs.CommitInfo
	GraphHash string
}

// Log forwards to the git engine and, for each commit, resolves the
// associated graph-snapshot hash via the history store.
func (r *Repository) Log(limit int) ([]LogEntry, error) {
	commits, err := r.git.Log(limit)
	if err != nil {
		return nil, err
	}

	entries := make([]LogEntry, 0, len(commits))
	for _, c := range commits {
		graphHash, _, err := r.history.GetCommitGraphHash(c.OID)
		if err != nil {
			return nil, err
		}
		entries = append(entries, LogEntry{Commit: c, GraphHash: graphHash})
	}
	return entries, nil
}

// History exposes the graph-history store (C7) for callers that need
// snapshot, commit-pairing or derivation access.
func (r *Repository) History() *vcs.GraphHistory { return r.history }

// GitEngine exposes the file-version engine (C6).
func (r *Repository) GitEngine() *vcs.GitEngine { return r.git }

package vcs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	memerrors "github.com/chenxu233/memexia/internal/errors"
	"github.com/chenxu233/memexia/internal/objectstore"
)

const historyDirName = ".memexia/history"

// GraphSnapshot is one full export of the triple-store at a point in time.
type GraphSnapshot struct {
	Hash      string
	NQuads    string
	Timestamp time.Time
}

type snapshotMetadata struct {
	Hash      string    `json:"hash"`
	Size      int       `json:"size"`
	Timestamp time.Time `json:"timestamp"`
}

// GraphDelta is the line-level difference between two snapshots.
type GraphDelta struct {
	AddedLines   []string
	RemovedLines []string
}

func (d GraphDelta) IsEmpty() bool { return len(d.AddedLines) == 0 && len(d.RemovedLines) == 0 }

func (d GraphDelta) Stats() (added, removed int) { return len(d.AddedLines), len(d.RemovedLines) }

// HistoryEntry pairs a git commit with the graph snapshot recorded for it.
type HistoryEntry struct {
	CommitHash string
	GraphHash  string
	Snapshot   *GraphSnapshot
}

// NodeHistoryEntry is one version of a single node's content.
type NodeHistoryEntry struct {
	Hash       string    `json:"hash"`
	Timestamp  time.Time `json:"timestamp"`
	CommitHash string    `json:"commit_hash"`
}

// NodeSnapshot is a node's content at one historical version.
type NodeSnapshot struct {
	NodeID     string
	Hash       string
	Content    string
	Timestamp  time.Time
	CommitHash string
}

// DerivationRecord is one parent-to-child derivation edge, persisted.
type DerivationRecord struct {
	ChildID    string    `json:"child_id"`
	ParentID   string    `json:"parent_id"`
	Timestamp  time.Time `json:"timestamp"`
	CommitHash string    `json:"commit_hash"`
}

// DerivationEntry is a DerivationRecord returned from a query.
type DerivationEntry = DerivationRecord

// GraphHistory tracks graph snapshots, per-node version history, and
// derivation chains on disk under <root>/.memexia/history, with an
// optional bbolt-backed acceleration index layered on top.
type GraphHistory struct {
	root            string
	snapshotsDir    string
	nodesDir        string
	derivationsDir  string
	snapshots       *objectstore.Store
	accel           *accelIndex
}

// InitGraphHistory creates the on-disk layout for a new repository.
func InitGraphHistory(repoRoot string) (*GraphHistory, error) {
	return openOrInitGraphHistory(repoRoot)
}

// OpenGraphHistory opens an existing (or lazily creates a missing)
// history directory.
func OpenGraphHistory(repoRoot string) (*GraphHistory, error) {
	return openOrInitGraphHistory(repoRoot)
}

func openOrInitGraphHistory(repoRoot string) (*GraphHistory, error) {
	historyDir := filepath.Join(repoRoot, historyDirName)
	snapshotsDir := filepath.Join(historyDir, "snapshots")
	nodesDir := filepath.Join(historyDir, "nodes")
	derivationsDir := filepath.Join(historyDir, "derivations")

	for _, dir := range []string{snapshotsDir, nodesDir, derivationsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, memerrors.IoFailureErr(err, dir)
		}
	}

	accel, err := openAccelIndex(filepath.Join(historyDir, "index.bolt"))
	if err != nil {
		accel = nil // acceleration index is never load-bearing, fall back to flat files
	}

	return &GraphHistory{
		root:           historyDir,
		snapshotsDir:   snapshotsDir,
		nodesDir:       nodesDir,
		derivationsDir: derivationsDir,
		snapshots:      objectstore.New(snapshotsDir),
		accel:          accel,
	}, nil
}

// Close releases the acceleration index, if one was opened.
func (h *GraphHistory) Close() error {
	if h.accel != nil {
		return h.accel.Close()
	}
	return nil
}

// Snapshot hashes nquads and stores it, returning the snapshot hash.
func (h *GraphHistory) Snapshot(nquads string) (string, error) {
	hash := objectstore.HashContent([]byte(nquads))
	if err := h.storeSnapshot(hash, nquads); err != nil {
		return "", err
	}
	return hash, nil
}

func (h *GraphHistory) storeSnapshot(hash, nquads string) error {
	if _, err := h.snapshots.Put([]byte(nquads)); err != nil {
		return err
	}
	meta := snapshotMetadata{Hash: hash, Size: len(nquads), Timestamp: time.Now().UTC()}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	dir, file := hash[:2], hash[2:]
	metaPath := filepath.Join(h.snapshotsDir, "objects", dir, file+".meta")
	if err := os.WriteFile(metaPath, metaJSON, 0o644); err != nil {
		return memerrors.IoFailureErr(err, metaPath)
	}
	return nil
}

// GetSnapshot returns the stored snapshot for hash.
func (h *GraphHistory) GetSnapshot(hash string) (*GraphSnapshot, error) {
	nquads, err := h.snapshots.Get(hash)
	if err != nil {
		return nil, memerrors.New(memerrors.StoreFailure, memerrors.SeverityMedium,
			fmt.Sprintf("snapshot not found: %s", hash))
	}

	dir, file := hash[:2], hash[2:]
	metaPath := filepath.Join(h.snapshotsDir, "objects", dir, file+".meta")
	meta := snapshotMetadata{Hash: hash, Size: len(nquads), Timestamp: time.Now().UTC()}
	if content, err := os.ReadFile(metaPath); err == nil {
		_ = json.Unmarshal(content, &meta)
	}

	return &GraphSnapshot{Hash: meta.Hash, NQuads: string(nquads), Timestamp: meta.Timestamp}, nil
}

// Record links a git commit hash to a graph snapshot hash, appending
// to the authoritative flat commit-links log and best-effort updating
// the acceleration index.
func (h *GraphHistory) Record(commitHash, graphHash string) error {
	linkFile := filepath.Join(h.root, "commit-links")
	f, err := os.OpenFile(linkFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return memerrors.IoFailureErr(err, linkFile)
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "%s -> %s\n", commitHash, graphHash); err != nil {
		return memerrors.IoFailureErr(err, linkFile)
	}

	if h.accel != nil {
		_ = h.accel.putCommitLink(commitHash, graphHash)
	}
	return nil
}

// GetCommitGraphHash looks up the graph snapshot hash recorded for a
// commit, preferring the acceleration index and falling back to a
// full scan of the flat commit-links log.
func (h *GraphHistory) GetCommitGraphHash(commitHash string) (string, bool, error) {
	if h.accel != nil {
		if hash, ok := h.accel.getCommitLink(commitHash); ok {
			return hash, true, nil
		}
	}

	linkFile := filepath.Join(h.root, "commit-links")
	content, err := os.ReadFile(linkFile)
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, memerrors.IoFailureErr(err, linkFile)
	}

	found := false
	var graphHash string
	for _, line := range strings.Split(string(content), "\n") {
		cHash, gHash, ok := strings.Cut(line, " -> ")
		if ok && strings.TrimSpace(cHash) == commitHash {
			graphHash = strings.TrimSpace(gHash)
			found = true
		}
	}
	return graphHash, found, nil
}

// GetHistory returns the most recent limit commit/graph-hash pairs,
// newest first, with their snapshots resolved where available.
func (h *GraphHistory) GetHistory(limit int) ([]HistoryEntry, error) {
	linkFile := filepath.Join(h.root, "commit-links")
	content, err := os.ReadFile(linkFile)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, memerrors.IoFailureErr(err, linkFile)
	}

	lines := strings.Split(strings.TrimRight(string(content), "\n"), "\n")
	var entries []HistoryEntry
	for i := len(lines) - 1; i >= 0 && len(entries) < limit; i-- {
		cHash, gHash, ok := strings.Cut(lines[i], " -> ")
		if !ok {
			continue
		}
		cHash, gHash = strings.TrimSpace(cHash), strings.TrimSpace(gHash)
		snap, _ := h.GetSnapshot(gHash)
		entries = append(entries, HistoryEntry{CommitHash: cHash, GraphHash: gHash, Snapshot: snap})
	}
	return entries, nil
}

// Diff computes the set of N-Quads lines added and removed between
// two snapshots.
func (h *GraphHistory) Diff(oldHash, newHash string) (GraphDelta, error) {
	oldSnap, err := h.GetSnapshot(oldHash)
	if err != nil {
		return GraphDelta{}, err
	}
	newSnap, err := h.GetSnapshot(newHash)
	if err != nil {
		return GraphDelta{}, err
	}

	oldLines := lineSet(oldSnap.NQuads)
	newLines := lineSet(newSnap.NQuads)

	var added, removed []string
	for line := range newLines {
		if !oldLines[line] {
			added = append(added, line)
		}
	}
	for line := range oldLines {
		if !newLines[line] {
			removed = append(removed, line)
		}
	}
	return GraphDelta{AddedLines: added, RemovedLines: removed}, nil
}

func lineSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, line := range strings.Split(s, "\n") {
		if line != "" {
			set[line] = true
		}
	}
	return set
}

func sanitizeNodeIDForPath(nodeID string) string {
	return strings.ReplaceAll(nodeID, ":", "_")
}

// SnapshotNode records one version of a single node's content,
// returning the content's hash.
func (h *GraphHistory) SnapshotNode(nodeID, content, commitHash string) (string, error) {
	hash := objectstore.HashContent([]byte(content))
	if err := h.storeNodeSnapshot(nodeID, hash, content, commitHash); err != nil {
		return "", err
	}
	return hash, nil
}

func (h *GraphHistory) storeNodeSnapshot(nodeID, hash, content, commitHash string) error {
	nodeDir := filepath.Join(h.nodesDir, sanitizeNodeIDForPath(nodeID))
	if err := os.MkdirAll(nodeDir, 0o755); err != nil {
		return memerrors.IoFailureErr(err, nodeDir)
	}

	if err := os.WriteFile(filepath.Join(nodeDir, hash), []byte(content), 0o644); err != nil {
		return memerrors.IoFailureErr(err, nodeDir)
	}

	historyFile := filepath.Join(nodeDir, "history.json")
	var history []NodeHistoryEntry
	if existing, err := os.ReadFile(historyFile); err == nil {
		_ = json.Unmarshal(existing, &history)
	}
	history = append(history, NodeHistoryEntry{Hash: hash, Timestamp: time.Now().UTC(), CommitHash: commitHash})

	encoded, err := json.Marshal(history)
	if err != nil {
		return err
	}
	if err := os.WriteFile(historyFile, encoded, 0o644); err != nil {
		return memerrors.IoFailureErr(err, historyFile)
	}

	if h.accel != nil {
		_ = h.accel.putNodeHistory(sanitizeNodeIDForPath(nodeID), history)
	}
	return nil
}

// GetNodeHistory returns every recorded version of a node, oldest first.
func (h *GraphHistory) GetNodeHistory(nodeID string) ([]NodeHistoryEntry, error) {
	if h.accel != nil {
		if entries, ok := h.accel.getNodeHistory(sanitizeNodeIDForPath(nodeID)); ok {
			return entries, nil
		}
	}

	historyFile := filepath.Join(h.nodesDir, sanitizeNodeIDForPath(nodeID), "history.json")
	content, err := os.ReadFile(historyFile)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, memerrors.IoFailureErr(err, historyFile)
	}

	var history []NodeHistoryEntry
	if err := json.Unmarshal(content, &history); err != nil {
		return nil, memerrors.ParseFailureErr(err, historyFile)
	}
	return history, nil
}

// GetNodeSnapshot returns the stored content for one specific version
// of a node.
func (h *GraphHistory) GetNodeSnapshot(nodeID, hash string) (string, bool, error) {
	path := filepath.Join(h.nodesDir, sanitizeNodeIDForPath(nodeID), hash)
	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, memerrors.IoFailureErr(err, path)
	}
	return string(content), true, nil
}

// GetLatestNodeSnapshot returns a node's most recently recorded version.
func (h *GraphHistory) GetLatestNodeSnapshot(nodeID string) (*NodeSnapshot, error) {
	history, err := h.GetNodeHistory(nodeID)
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return nil, nil
	}
	latest := history[len(history)-1]
	content, ok, err := h.GetNodeSnapshot(nodeID, latest.Hash)
	if err != nil || !ok {
		return nil, err
	}
	return &NodeSnapshot{
		NodeID:     nodeID,
		Hash:       latest.Hash,
		Content:    content,
		Timestamp:  latest.Timestamp,
		CommitHash: latest.CommitHash,
	}, nil
}

func (h *GraphHistory) loadDerivations() ([]DerivationRecord, error) {
	path := filepath.Join(h.derivationsDir, "derivations.json")
	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, memerrors.IoFailureErr(err, path)
	}
	var records []DerivationRecord
	if err := json.Unmarshal(content, &records); err != nil {
		return nil, memerrors.ParseFailureErr(err, path)
	}
	return records, nil
}

func (h *GraphHistory) saveDerivations(records []DerivationRecord) error {
	path := filepath.Join(h.derivationsDir, "derivations.json")
	encoded, err := json.Marshal(records)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		return memerrors.IoFailureErr(err, path)
	}
	return nil
}

// RecordDerivation records that childID was derived from parentID.
func (h *GraphHistory) RecordDerivation(childID, parentID, commitHash string) error {
	records, err := h.loadDerivations()
	if err != nil {
		return err
	}
	records = append(records, DerivationRecord{
		ChildID: childID, ParentID: parentID, Timestamp: time.Now().UTC(), CommitHash: commitHash,
	})
	return h.saveDerivations(records)
}

// GetDerivations returns every record where nodeID is the child,
// i.e. its direct derivation sources.
func (h *GraphHistory) GetDerivations(nodeID string) ([]DerivationEntry, error) {
	records, err := h.loadDerivations()
	if err != nil {
		return nil, err
	}
	var out []DerivationEntry
	for _, r := range records {
		if r.ChildID == nodeID {
			out = append(out, r)
		}
	}
	return out, nil
}

// GetDerivedNodes returns every record where nodeID is the parent,
// i.e. nodes directly derived from it.
func (h *GraphHistory) GetDerivedNodes(nodeID string) ([]DerivationEntry, error) {
	records, err := h.loadDerivations()
	if err != nil {
		return nil, err
	}
	var out []DerivationEntry
	for _, r := range records {
		if r.ParentID == nodeID {
			out = append(out, r)
		}
	}
	return out, nil
}

// BuildDerivationChain walks upward from nodeID through its first
// recorded parent at each step, stopping at a root or a cycle.
func (h *GraphHistory) BuildDerivationChain(nodeID string) ([]DerivationEntry, error) {
	var chain []DerivationEntry
	current := nodeID
	visited := map[string]bool{}

	for !visited[current] {
		visited[current] = true
		parents, err := h.GetDerivations(current)
		if err != nil {
			return nil, err
		}
		if len(parents) == 0 {
			break
		}
		chain = append(chain, parents[0])
		current = parents[0].ParentID
	}
	return chain, nil
}

// BuildReverseDerivationChain walks downward from rootID through its
// first recorded child at each step, up to limit hops.
func (h *GraphHistory) BuildReverseDerivationChain(rootID string, limit int) ([]DerivationEntry, error) {
	var chain []DerivationEntry
	current := rootID
	visited := map[string]bool{}

	for depth := 0; depth < limit; depth++ {
		if visited[current] {
			break
		}
		visited[current] = true
		children, err := h.GetDerivedNodes(current)
		if err != nil {
			return nil, err
		}
		if len(children) == 0 {
			break
		}
		chain = append(chain, children[0])
		current = children[0].ChildID
	}
	return chain, nil
}

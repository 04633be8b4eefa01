// Package indexer drives the parser (C2) against the triple-store (C3)
// for one file, a full tree, or a file-system event stream, honoring a
// WatchConfig allow/deny filter.
package indexer

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/chenxu233/memexia/internal/graph"
	"github.com/chenxu233/memexia/internal/logging"
	"github.com/chenxu233/memexia/internal/parser"
	"golang.org/x/sync/errgroup"
)

// maxConcurrentParses bounds how many files index_all/reindex_all
// parse at once, so a directory with thousands of notes does not spawn
// an unbounded number of goroutines against a single in-process store.
const maxConcurrentParses = 8

// IndexResultKind distinguishes the outcome shapes of index_file.
type IndexResultKind int

const (
	ResultIndexed IndexResultKind = iota
	ResultSkipped
	ResultDeleted
)

// IndexResult is the outcome of indexing one file.
type IndexResult struct {
	Kind      IndexResultKind
	Path      string
	NodeCount int
	EdgeCount int
	NodeID    string
}

// IndexError pairs a file path with the error encountered indexing it.
type IndexError struct {
	Path  string
	Error string
}

// IndexSummary aggregates the outcome of index_all/reindex_all.
type IndexSummary struct {
	FilesIndexed int
	FilesSkipped int
	FilesDeleted int
	NodesCreated int
	EdgesCreated int
	Errors       []IndexError
}

func (s *IndexSummary) add(r IndexResult) {
	switch r.Kind {
	case ResultIndexed:
		s.FilesIndexed++
		s.NodesCreated += r.NodeCount
		s.EdgesCreated += r.EdgeCount
	case ResultSkipped:
		s.FilesSkipped++
	case ResultDeleted:
		s.FilesDeleted++
	}
}

// EventKind is the file-system event variety handle_event dispatches on.
type EventKind int

const (
	EventCreated EventKind = iota
	EventModified
	EventDeleted
	EventRenamed
)

// FileEvent is one file-system change, as reported by a watcher.
type FileEvent struct {
	Kind EventKind
	Path string // absolute path for Created/Modified/Deleted, new path for Renamed
	From string // only set for Renamed
}

// Indexer ties a WatchConfig filter to a triple-store (C3) instance
// rooted at Root.
type Indexer struct {
	Store  graph.Store
	Config *WatchConfig
	Root   string

	mu sync.Mutex // serialises writer access to Store across concurrent index_all workers
}

// New constructs an Indexer with the default watch configuration.
func New(store graph.Store, root string) *Indexer {
	return &Indexer{Store: store, Config: DefaultWatchConfig(), Root: root}
}

// relativePath returns path relative to i.Root, slash-normalised.
func (idx *Indexer) relativePath(path string) string {
	rel, err := filepath.Rel(idx.Root, path)
	if err != nil {
		rel = path
	}
	return strings.ReplaceAll(rel, "\\", "/")
}

// IndexFile parses and writes a single file, per spec.md §4.5.
func (idx *Indexer) IndexFile(path string) (IndexResult, error) {
	relPath := idx.relativePath(path)
	if !idx.Config.IsAllowed(relPath) || filepath.Ext(path) != ".md" {
		return IndexResult{Kind: ResultSkipped, Path: relPath}, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return IndexResult{}, err
	}

	doc := parser.ParseMarkdown(string(content), relPath)
	node := doc.ToNode(relPath)

	idx.mu.Lock()
	defer idx.mu.Unlock()

	if err := idx.Store.AddNode(node); err != nil {
		return IndexResult{}, err
	}

	edgeCount := 0
	for _, link := range doc.Links {
		targetID := graph.FileNodeID(link.Target)
		exists, err := idx.Store.NodeExists(targetID)
		if err != nil {
			return IndexResult{}, err
		}
		if !exists {
			placeholder := graph.NewNode(targetID, graph.Concept, link.Target)
			if err := idx.Store.AddNode(placeholder); err != nil {
				return IndexResult{}, err
			}
		}
		edge := link.ToEdge(node.ID)
		if err := idx.Store.AddEdge(edge); err != nil {
			return IndexResult{}, err
		}
		edgeCount++
	}

	return IndexResult{Kind: ResultIndexed, Path: relPath, NodeCount: 1, EdgeCount: edgeCount}, nil
}

// IndexAll walks root, indexing every eligible file with bounded
// concurrency; per-file errors are collected rather than fatal.
func (idx *Indexer) IndexAll(root string) (*IndexSummary, error) {
	summary := &IndexSummary{}
	var mu sync.Mutex

	var paths []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return summary, err
	}

	g := new(errgroup.Group)
	g.SetLimit(maxConcurrentParses)
	for _, path := range paths {
		path := path
		g.Go(func() error {
			result, err := idx.IndexFile(path)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				summary.Errors = append(summary.Errors, IndexError{Path: path, Error: err.Error()})
				logging.Warn("index_file failed", "path", path, "error", err)
				return nil
			}
			summary.add(result)
			return nil
		})
	}
	_ = g.Wait()
	return summary, nil
}

// ReindexAll deletes every file-backed node, then runs IndexAll,
// the canonical way to repair dangling edges left by prior partial
// indexing runs.
func (idx *Indexer) ReindexAll(root string) (*IndexSummary, error) {
	nodes, err := idx.Store.ListNodes()
	if err != nil {
		return nil, err
	}
	for _, n := range nodes {
		if graph.IsFileNodeID(n.ID) {
			if err := idx.Store.DeleteNode(n.ID); err != nil {
				return nil, err
			}
		}
	}
	return idx.IndexAll(root)
}

// HandleEvent dispatches a single file-system event.
func (idx *Indexer) HandleEvent(ev FileEvent) (IndexResult, error) {
	switch ev.Kind {
	case EventCreated, EventModified:
		return idx.IndexFile(ev.Path)
	case EventDeleted:
		return idx.deleteByPath(ev.Path)
	case EventRenamed:
		if _, err := idx.deleteByPath(ev.From); err != nil {
			return IndexResult{}, err
		}
		return idx.IndexFile(ev.Path)
	default:
		return IndexResult{Kind: ResultSkipped}, nil
	}
}

func (idx *Indexer) deleteByPath(path string) (IndexResult, error) {
	relPath := idx.relativePath(path)
	nodeID := graph.FileNodeID(relPath)

	idx.mu.Lock()
	defer idx.mu.Unlock()

	exists, err := idx.Store.NodeExists(nodeID)
	if err != nil {
		return IndexResult{}, err
	}
	if exists {
		if err := idx.Store.DeleteNode(nodeID); err != nil {
			return IndexResult{}, err
		}
	}
	return IndexResult{Kind: ResultDeleted, NodeID: nodeID}, nil
}

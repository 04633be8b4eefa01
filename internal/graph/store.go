package graph

import (
	"os"
	"sort"
	"sync"
	"time"

	memerrors "github.com/chenxu233/memexia/internal/errors"
)

const (
	predType      = "rdf:type"
	predTitle     = "memexia:title"
	predContent   = "memexia:content"
	predTag       = "memexia:tag"
	predCreatedAt = "memexia:createdAt"
	predUpdatedAt = "memexia:updatedAt"
)

var relationByLowercase = func() map[string]RelationType {
	m := make(map[string]RelationType)
	for r := Contains; r <= Simultaneous; r++ {
		m[r.Lowercase()] = r
	}
	return m
}()

func isEdgePredicate(pred string) (RelationType, bool) {
	r, ok := relationByLowercase[pred]
	return r, ok
}

// memStore is the in-process quad index backing the Store port. Writes
// are serialised through mu; reads take the read lock, so multiple
// concurrent readers are safe while a single writer holds exclusive
// access, per spec.md §5.
type memStore struct {
	mu    sync.RWMutex
	quads []Quad
	path  string // graph.nq snapshot path; empty disables persistence
}

// NewMemStore constructs an empty quad index with no disk backing,
// for callers (mainly tests) that don't need persistence across
// process boundaries.
func NewMemStore() Store {
	return &memStore{}
}

// NewFileStore opens the quad index backed by the N-Quads snapshot at
// path, loading any existing content and creating an empty file if
// none exists yet (spec: "graph.nq, reserved, created empty on init").
// Every mutating call persists the full quad set back to path before
// returning.
func NewFileStore(path string) (Store, error) {
	s := &memStore{path: path}
	content, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		if werr := os.WriteFile(path, nil, 0o644); werr != nil {
			return nil, memerrors.IoFailureErr(werr, path)
		}
	case err != nil:
		return nil, memerrors.IoFailureErr(err, path)
	default:
		s.quads = decodeQuads(string(content))
	}
	return s, nil
}

// persistLocked writes the current quad set to disk. Caller must hold mu.
func (s *memStore) persistLocked() error {
	if s.path == "" {
		return nil
	}
	if err := os.WriteFile(s.path, []byte(encodeQuads(s.quads)), 0o644); err != nil {
		return memerrors.IoFailureErr(err, s.path)
	}
	return nil
}

func (s *memStore) AddNode(n *Node) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeSubjectLocked(n.ID)

	s.quads = append(s.quads,
		Quad{Subject: n.ID, Predicate: predType, Object: Predicate(n.NodeType.String())},
		Quad{Subject: n.ID, Predicate: predTitle, Object: n.Title, IsLiteral: true},
	)
	if n.Content != "" {
		s.quads = append(s.quads, Quad{Subject: n.ID, Predicate: predContent, Object: n.Content, IsLiteral: true})
	}
	for _, tag := range n.Tags {
		s.quads = append(s.quads, Quad{Subject: n.ID, Predicate: predTag, Object: tag, IsLiteral: true})
	}
	created := n.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	updated := n.UpdatedAt
	if updated.IsZero() {
		updated = created
	}
	s.quads = append(s.quads,
		Quad{Subject: n.ID, Predicate: predCreatedAt, Object: created.Format(time.RFC3339), IsLiteral: true},
		Quad{Subject: n.ID, Predicate: predUpdatedAt, Object: updated.Format(time.RFC3339), IsLiteral: true},
	)
	return s.persistLocked()
}

// removeSubjectLocked removes every quad whose subject is id. Caller holds mu.
func (s *memStore) removeSubjectLocked(id string) {
	kept := s.quads[:0]
	for _, q := range s.quads {
		if q.Subject != id {
			kept = append(kept, q)
		}
	}
	s.quads = kept
}

func (s *memStore) GetNode(id string) (*Node, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getNodeLocked(id)
}

func (s *memStore) getNodeLocked(id string) (*Node, bool, error) {
	var n *Node
	for _, q := range s.quads {
		if q.Subject != id {
			continue
		}
		if n == nil {
			n = &Node{ID: id}
		}
		switch q.Predicate {
		case predType:
			typeName := q.Object
			if len(typeName) > len(predicateNamespace) {
				typeName = typeName[len(predicateNamespace):]
			}
			n.NodeType = ParseNodeType(typeName)
		case predTitle:
			n.Title = q.Object
		case predContent:
			n.Content = q.Object
		case predTag:
			n.Tags = append(n.Tags, q.Object)
		case predCreatedAt:
			if t, err := time.Parse(time.RFC3339, q.Object); err == nil {
				n.CreatedAt = t
			}
		case predUpdatedAt:
			if t, err := time.Parse(time.RFC3339, q.Object); err == nil {
				n.UpdatedAt = t
			}
		}
	}
	if n == nil {
		return nil, false, nil
	}
	return n, true, nil
}

func (s *memStore) DeleteNode(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeSubjectLocked(id)
	return s.persistLocked()
}

func (s *memStore) ListNodes() ([]*Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]bool)
	var ids []string
	for _, q := range s.quads {
		if q.Predicate == predType && !seen[q.Subject] {
			seen[q.Subject] = true
			ids = append(ids, q.Subject)
		}
	}
	sort.Strings(ids)
	nodes := make([]*Node, 0, len(ids))
	for _, id := range ids {
		n, ok, _ := s.getNodeLocked(id)
		if ok {
			nodes = append(nodes, n)
		}
	}
	return nodes, nil
}

func (s *memStore) NodeExists(id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, q := range s.quads {
		if q.Subject == id && q.Predicate == predType {
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) AddEdge(e *Edge) error {
	if e.From == "" || e.To == "" {
		return memerrors.InvalidIRIErr(e.From + " -> " + e.To)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeEdgeLocked(EdgeID(e.From, e.To))
	object, isLiteral := encodeEdgeObject(e)
	s.quads = append(s.quads, Quad{
		Subject:   e.From,
		Predicate: Predicate(e.Relation.Lowercase()),
		Object:    object,
		IsLiteral: isLiteral,
	})
	return s.persistLocked()
}

func (s *memStore) removeEdgeLocked(id string) bool {
	removed := false
	kept := s.quads[:0]
	for _, q := range s.quads {
		_, isEdge := isEdgePredicate(trimPredicate(q.Predicate))
		if isEdge {
			to, _, _ := decodeEdgeObject(q.Object, q.IsLiteral)
			if EdgeID(q.Subject, to) == id {
				removed = true
				continue
			}
		}
		kept = append(kept, q)
	}
	s.quads = kept
	return removed
}

func trimPredicate(p string) string {
	if len(p) > len(predicateNamespace) && p[:len(predicateNamespace)] == predicateNamespace {
		return p[len(predicateNamespace):]
	}
	return p
}

func (s *memStore) edgeFromQuad(q Quad) (*Edge, bool) {
	rel, isEdge := isEdgePredicate(trimPredicate(q.Predicate))
	if !isEdge {
		return nil, false
	}
	to, strength, desc := decodeEdgeObject(q.Object, q.IsLiteral)
	return &Edge{
		ID:          EdgeID(q.Subject, to),
		From:        q.Subject,
		To:          to,
		Relation:    rel,
		Strength:    strength,
		Confidence:  1.0,
		Description: desc,
		Source:      Explicit,
	}, true
}

func (s *memStore) GetEdge(id string) (*Edge, bool, error) {
	if _, _, ok := ParseEdgeID(id); !ok {
		return nil, false, memerrors.InvalidEdgeIDErr(id)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, q := range s.quads {
		e, ok := s.edgeFromQuad(q)
		if ok && e.ID == id {
			return e, true, nil
		}
	}
	return nil, false, nil
}

func (s *memStore) DeleteEdge(id string) error {
	if _, _, ok := ParseEdgeID(id); !ok {
		return memerrors.InvalidEdgeIDErr(id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeEdgeLocked(id)
	return s.persistLocked()
}

func (s *memStore) ListEdges() ([]*Edge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var edges []*Edge
	for _, q := range s.quads {
		if e, ok := s.edgeFromQuad(q); ok {
			edges = append(edges, e)
		}
	}
	return edges, nil
}

func (s *memStore) EdgeExists(id string) (bool, error) {
	e, ok, err := s.GetEdge(id)
	return ok && e != nil, err
}

func (s *memStore) GetEdgesForNode(nodeID string, dir EdgeDirection) ([]*Edge, error) {
	all, err := s.ListEdges()
	if err != nil {
		return nil, err
	}
	var out []*Edge
	for _, e := range all {
		switch dir {
		case Outgoing:
			if e.From == nodeID {
				out = append(out, e)
			}
		case Incoming:
			if e.To == nodeID {
				out = append(out, e)
			}
		case Both:
			if e.From == nodeID || e.To == nodeID {
				out = append(out, e)
			}
		}
	}
	return out, nil
}

func (s *memStore) QueryEdges(filter EdgeFilter) ([]*Edge, error) {
	all, err := s.ListEdges()
	if err != nil {
		return nil, err
	}
	var out []*Edge
	for _, e := range all {
		if filter.From != "" && e.From != filter.From {
			continue
		}
		if filter.To != "" && e.To != filter.To {
			continue
		}
		if filter.HasRelation && e.Relation != filter.Relation {
			continue
		}
		if e.Strength < filter.MinStrength {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (s *memStore) Stats() (Stats, error) {
	nodes, err := s.ListNodes()
	if err != nil {
		return Stats{}, err
	}
	edges, err := s.ListEdges()
	if err != nil {
		return Stats{}, err
	}
	st := Stats{
		NodeCount:      len(nodes),
		EdgeCount:      len(edges),
		NodeTypeCounts: make(map[NodeType]int),
		RelationCounts: make(map[RelationType]int),
	}
	for _, n := range nodes {
		st.NodeTypeCounts[n.NodeType]++
	}
	for _, e := range edges {
		st.RelationCounts[e.Relation]++
	}
	return st, nil
}

// FindPath runs breadth-first search over outgoing edges, tie-breaking
// by edge enumeration order, returning the first shortest path found.
func (s *memStore) FindPath(source, target string) ([]string, bool, error) {
	if source == target {
		return []string{source}, true, nil
	}
	adjacency := make(map[string][]string)
	edges, err := s.ListEdges()
	if err != nil {
		return nil, false, err
	}
	for _, e := range edges {
		adjacency[e.From] = append(adjacency[e.From], e.To)
	}

	type frame struct {
		node string
		path []string
	}
	visited := map[string]bool{source: true}
	queue := []frame{{node: source, path: []string{source}}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range adjacency[cur.node] {
			if next == target {
				return append(append([]string{}, cur.path...), next), true, nil
			}
			if !visited[next] {
				visited[next] = true
				queue = append(queue, frame{node: next, path: append(append([]string{}, cur.path...), next)})
			}
		}
	}
	return nil, false, nil
}

func (s *memStore) Query(sparql string) (QueryResult, error) {
	return evaluateSPARQL(sparql, s)
}

func (s *memStore) ExportNQuads() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return encodeQuads(s.quads), nil
}

func (s *memStore) ImportNQuads(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quads = decodeQuads(text)
	return s.persistLocked()
}

func (s *memStore) Close() error {
	return nil
}

// snapshotQuads returns a copy of the live quads for the SPARQL evaluator.
func (s *memStore) snapshotQuads() []Quad {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Quad, len(s.quads))
	copy(out, s.quads)
	return out
}

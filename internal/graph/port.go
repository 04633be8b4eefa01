package graph

// QueryResult is the outcome of a SPARQL SELECT/ASK query: a list of
// variable-name to string-value bindings, one map per solution row.
type QueryResult struct {
	Bindings []map[string]string
}

func (r QueryResult) Empty() bool { return len(r.Bindings) == 0 }
func (r QueryResult) Len() int    { return len(r.Bindings) }

// Store is the triple-store port (C3): the capability set every other
// component depends on. Implementations must allow concurrent readers
// while serialising writers internally (spec.md §4.3/§5).
type Store interface {
	AddNode(n *Node) error
	GetNode(id string) (*Node, bool, error)
	DeleteNode(id string) error
	ListNodes() ([]*Node, error)
	NodeExists(id string) (bool, error)

	AddEdge(e *Edge) error
	GetEdge(id string) (*Edge, bool, error)
	DeleteEdge(id string) error
	ListEdges() ([]*Edge, error)
	EdgeExists(id string) (bool, error)
	GetEdgesForNode(nodeID string, dir EdgeDirection) ([]*Edge, error)
	QueryEdges(filter EdgeFilter) ([]*Edge, error)

	Query(sparql string) (QueryResult, error)
	Stats() (Stats, error)
	FindPath(source, target string) ([]string, bool, error)

	ExportNQuads() (string, error)
	ImportNQuads(text string) error

	Close() error
}

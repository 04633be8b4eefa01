package vcs

import (
	"fmt"

	memerrors "github.com/chenxu233/memexia/internal/errors"
)

// RollbackResult describes one node's content before and after a
// rollback step.
type RollbackResult struct {
	NodeID     string
	FromContent *string
	ToContent  string
	CommitHash string
}

// HasChanges reports whether the rollback actually altered content.
func (r RollbackResult) HasChanges() bool {
	if r.FromContent != nil {
		return *r.FromContent != r.ToContent
	}
	return r.ToContent != ""
}

// RollbackManager reverts individual nodes, or whole derivation
// chains, to a prior recorded version.
type RollbackManager struct {
	history *GraphHistory
}

// NewRollbackManager wraps an already-open GraphHistory.
func NewRollbackManager(history *GraphHistory) *RollbackManager {
	return &RollbackManager{history: history}
}

// RollbackNode returns the content a node had at a specific snapshot hash.
func (r *RollbackManager) RollbackNode(nodeID, targetHash string) (string, error) {
	content, ok, err := r.history.GetNodeSnapshot(nodeID, targetHash)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", memerrors.New(memerrors.StoreFailure, memerrors.SeverityMedium,
			fmt.Sprintf("node snapshot not found: %s@%s", nodeID, targetHash))
	}
	return content, nil
}

// RollbackNodeToLatest returns a node's most recently recorded snapshot.
func (r *RollbackManager) RollbackNodeToLatest(nodeID string) (*NodeSnapshot, error) {
	return r.history.GetLatestNodeSnapshot(nodeID)
}

// RollbackNodeToHistory returns the content a node had at the version
// recorded alongside a specific commit, or nil if no such version exists.
func (r *RollbackManager) RollbackNodeToHistory(nodeID, commitHash string) (*string, error) {
	history, err := r.history.GetNodeHistory(nodeID)
	if err != nil {
		return nil, err
	}
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].CommitHash == commitHash {
			content, ok, err := r.history.GetNodeSnapshot(nodeID, history[i].Hash)
			if err != nil || !ok {
				return nil, err
			}
			return &content, nil
		}
	}
	return nil, nil
}

// PreviewNodeRollback returns every node transitively derived from
// nodeID, i.e. the nodes a rollback of nodeID could affect.
func (r *RollbackManager) PreviewNodeRollback(nodeID string) ([]string, error) {
	var affected []string
	visited := map[string]bool{}
	if err := r.collectDerivedNodes(nodeID, &affected, visited); err != nil {
		return nil, err
	}
	return affected, nil
}

func (r *RollbackManager) collectDerivedNodes(nodeID string, affected *[]string, visited map[string]bool) error {
	if visited[nodeID] {
		return nil
	}
	visited[nodeID] = true

	derived, err := r.history.GetDerivedNodes(nodeID)
	if err != nil {
		return err
	}
	for _, entry := range derived {
		if !containsStr(*affected, entry.ChildID) {
			*affected = append(*affected, entry.ChildID)
			if err := r.collectDerivedNodes(entry.ChildID, affected, visited); err != nil {
				return err
			}
		}
	}
	return nil
}

func containsStr(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// RollbackDerivationChain rolls a leaf node's entire derivation chain
// back to the root's latest recorded snapshot, returning one
// RollbackResult per node along the chain, root first.
func (r *RollbackManager) RollbackDerivationChain(leafNodeID string) ([]RollbackResult, error) {
	var results []RollbackResult

	chain, err := r.history.BuildDerivationChain(leafNodeID)
	if err != nil {
		return nil, err
	}

	rootID := leafNodeID
	if len(chain) > 0 {
		rootID = chain[len(chain)-1].ParentID
	}

	rootSnapshot, err := r.history.GetLatestNodeSnapshot(rootID)
	if err != nil {
		return nil, err
	}
	if rootSnapshot == nil {
		return results, nil
	}

	results = append(results, RollbackResult{
		NodeID:     rootID,
		FromContent: nil,
		ToContent:  rootSnapshot.Content,
		CommitHash: rootSnapshot.CommitHash,
	})

	for _, entry := range chain {
		nodeHistory, err := r.history.GetNodeHistory(entry.ChildID)
		if err != nil {
			return nil, err
		}

		var historical *string
		for _, h := range nodeHistory {
			if h.CommitHash == entry.CommitHash {
				content, ok, err := r.history.GetNodeSnapshot(entry.ChildID, h.Hash)
				if err == nil && ok {
					historical = &content
				}
				break
			}
		}

		toContent := ""
		if historical != nil {
			toContent = *historical
		}
		results = append(results, RollbackResult{
			NodeID:     entry.ChildID,
			FromContent: historical,
			ToContent:  toContent,
			CommitHash: entry.CommitHash,
		})
	}

	return results, nil
}

// GetNodeHistory delegates to the underlying GraphHistory.
func (r *RollbackManager) GetNodeHistory(nodeID string) ([]NodeHistoryEntry, error) {
	return r.history.GetNodeHistory(nodeID)
}

// GetDerivationChain delegates to the underlying GraphHistory.
func (r *RollbackManager) GetDerivationChain(nodeID string) ([]DerivationEntry, error) {
	return r.history.BuildDerivationChain(nodeID)
}

// NodeExists reports whether a node has any recorded snapshot.
func (r *RollbackManager) NodeExists(nodeID string) bool {
	snap, err := r.history.GetLatestNodeSnapshot(nodeID)
	return err == nil && snap != nil
}

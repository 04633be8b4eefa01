package vcs

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	bucketCommitLinks = []byte("commit-links")
	bucketNodeHistory = []byte("node-history")
)

// osReadDirNames lists the immediate subdirectory names under dir,
// used during rebuild to enumerate per-node history directories.
func osReadDirNames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// readNodeHistoryFile loads history.json from a node's sanitized
// history directory. The directory name is the sanitized node ID, so
// the acceleration index is keyed on it directly during a rebuild
// rather than attempting to reverse the (lossy) sanitization.
func readNodeHistoryFile(nodesDir, safeID string) ([]NodeHistoryEntry, error) {
	content, err := os.ReadFile(filepath.Join(nodesDir, safeID, "history.json"))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var history []NodeHistoryEntry
	if err := json.Unmarshal(content, &history); err != nil {
		return nil, err
	}
	return history, nil
}

// accelIndex is a rebuildable bbolt-backed cache over the authoritative
// flat-file commit-links log and node-history JSON files. It is never
// consulted as the source of truth for writes; reads fall back to the
// flat files whenever the index is missing, unopenable, or simply
// doesn't have an entry yet.
type accelIndex struct {
	db *bolt.DB
}

func openAccelIndex(path string) (*accelIndex, error) {
	db, err := bolt.Open(path, 0o644, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketCommitLinks); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(bucketNodeHistory)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &accelIndex{db: db}, nil
}

func (a *accelIndex) Close() error {
	return a.db.Close()
}

func (a *accelIndex) putCommitLink(commitHash, graphHash string) error {
	return a.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketCommitLinks).Put([]byte(commitHash), []byte(graphHash))
	})
}

func (a *accelIndex) getCommitLink(commitHash string) (string, bool) {
	var hash string
	var ok bool
	_ = a.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketCommitLinks).Get([]byte(commitHash))
		if v != nil {
			hash, ok = string(v), true
		}
		return nil
	})
	return hash, ok
}

func (a *accelIndex) putNodeHistory(nodeID string, history []NodeHistoryEntry) error {
	encoded, err := json.Marshal(history)
	if err != nil {
		return err
	}
	return a.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketNodeHistory).Put([]byte(nodeID), encoded)
	})
}

func (a *accelIndex) getNodeHistory(nodeID string) ([]NodeHistoryEntry, bool) {
	var history []NodeHistoryEntry
	var ok bool
	_ = a.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketNodeHistory).Get([]byte(nodeID))
		if v != nil {
			if err := json.Unmarshal(v, &history); err == nil {
				ok = true
			}
		}
		return nil
	})
	return history, ok
}

// RebuildAccelIndex drops and repopulates the acceleration index from
// the authoritative flat-file commit-links log and node-history files.
// It runs only when called explicitly; opening a history does not rebuild
// the index.
func (h *GraphHistory) RebuildAccelIndex() error {
	if h.accel == nil {
		return nil
	}

	err := h.accel.db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketCommitLinks, bucketNodeHistory} {
			if err := tx.DeleteBucket(bucket); err != nil && err != bolt.ErrBucketNotFound {
				return err
			}
			if _, err := tx.CreateBucket(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	entries, err := h.GetHistory(maxRebuildEntries)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := h.accel.putCommitLink(e.CommitHash, e.GraphHash); err != nil {
			return err
		}
	}

	nodeDirs, err := osReadDirNames(h.nodesDir)
	if err != nil {
		return err
	}
	for _, safeID := range nodeDirs {
		history, err := readNodeHistoryFile(h.nodesDir, safeID)
		if err != nil || history == nil {
			continue
		}
		if err := h.accel.putNodeHistory(safeID, history); err != nil {
			return err
		}
	}
	return nil
}

const maxRebuildEntries = 1 << 30

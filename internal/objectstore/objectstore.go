// Package objectstore is the content-addressed blob store (C1): every
// committed file's raw bytes are written once under a SHA-256 path and
// never modified afterwards.
package objectstore

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"

	memerrors "github.com/chenxu233/memexia/internal/errors"
)

const objectsDirName = "objects"

// Store writes and reads content-addressed blobs under root/objects,
// using the same two-character fan-out directory scheme git uses.
type Store struct {
	root string
}

// New returns a Store rooted at dir (typically <repo>/.memexia).
func New(dir string) *Store {
	return &Store{root: dir}
}

// HashContent returns the lowercase hex SHA-256 digest of content.
func HashContent(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

func (s *Store) objectPath(hash string) (dir, path string, err error) {
	if len(hash) < 2 {
		return "", "", memerrors.New(memerrors.IoFailure, memerrors.SeverityMedium, "invalid object hash: "+hash)
	}
	dir = filepath.Join(s.root, objectsDirName, hash[:2])
	path = filepath.Join(dir, hash[2:])
	return dir, path, nil
}

// Put writes content to the store and returns its hash. Writes are
// idempotent: if an object with this hash already exists, Put does
// not touch the file again.
func (s *Store) Put(content []byte) (string, error) {
	hash := HashContent(content)
	dir, path, err := s.objectPath(hash)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", memerrors.IoFailureErr(err, dir)
	}
	if _, err := os.Stat(path); err == nil {
		return hash, nil
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", memerrors.IoFailureErr(err, path)
	}
	return hash, nil
}

// Get reads back the object with the given hash.
func (s *Store) Get(hash string) ([]byte, error) {
	_, path, err := s.objectPath(hash)
	if err != nil {
		return nil, err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, memerrors.IoFailureErr(err, path)
	}
	return content, nil
}

// Has reports whether an object with the given hash is already stored.
func (s *Store) Has(hash string) (bool, error) {
	_, path, err := s.objectPath(hash)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, memerrors.IoFailureErr(err, path)
	}
	return true, nil
}

package objectstore

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPutGetRoundtrip(t *testing.T) {
	dir := t.TempDir()
	store := New(filepath.Join(dir, ".memexia"))

	hash, err := store.Put([]byte("hello memexia"))
	if err != nil {
		t.Fatal(err)
	}
	if len(hash) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(hash))
	}

	content, err := store.Get(hash)
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != "hello memexia" {
		t.Fatalf("unexpected content: %q", content)
	}
}

func TestPutIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	store := New(filepath.Join(dir, ".memexia"))

	h1, err := store.Put([]byte("same content"))
	if err != nil {
		t.Fatal(err)
	}
	h2, err := store.Put([]byte("same content"))
	if err != nil {
		t.Fatal(err)
	}
	if h1 != h2 {
		t.Fatalf("expected stable hash, got %s and %s", h1, h2)
	}
}

func TestFanOutLayout(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, ".memexia")
	store := New(root)

	hash, err := store.Put([]byte("layout check"))
	if err != nil {
		t.Fatal(err)
	}

	expected := filepath.Join(root, objectsDirName, hash[:2], hash[2:])
	if _, err := os.Stat(expected); err != nil {
		t.Fatalf("expected object at %s: %v", expected, err)
	}
}

func TestHasReportsExistence(t *testing.T) {
	dir := t.TempDir()
	store := New(filepath.Join(dir, ".memexia"))

	hash := HashContent([]byte("not written yet"))
	exists, err := store.Has(hash)
	if err != nil {
		t.Fatal(err)
	}
	if exists {
		t.Fatal("expected object to not exist")
	}

	if _, err := store.Put([]byte("not written yet")); err != nil {
		t.Fatal(err)
	}
	exists, err = store.Has(hash)
	if err != nil {
		t.Fatal(err)
	}
	if !exists {
		t.Fatal("expected object to exist after Put")
	}
}

func TestGetMissingObjectErrors(t *testing.T) {
	dir := t.TempDir()
	store := New(filepath.Join(dir, ".memexia"))

	if _, err := store.Get("0000000000000000000000000000000000000000000000000000000000000000"); err == nil {
		t.Fatal("expected error reading nonexistent object")
	}
}

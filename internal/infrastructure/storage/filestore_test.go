package storage

import (
	"context"
	"testing"
)

func TestFileStore_SaveAndLoad(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	ref, err := store.Save(context.Background(), "app-1_id", []byte("image-bytes"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if ref == "" {
		t.Fatal("expected a non-empty ref")
	}

	data, err := store.Load(context.Background(), ref)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(data) != "image-bytes" {
		t.Errorf("roundtrip mismatch: %q", data)
	}
}

func TestFileStore_LoadUnknownRef(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	if _, err := store.Load(context.Background(), "missing.bin"); err == nil {
		t.Fatal("expected error for unknown ref")
	}
}

func TestFileStore_StripsPathComponents(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	ref, err := store.Save(context.Background(), "../../etc/passwd", []byte("x"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	// The ref must stay inside the store directory.
	if _, err := store.Load(context.Background(), ref); err != nil {
		t.Fatalf("load: %v", err)
	}
}

package session

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMemStore_SetGetRemove(t *testing.T) {
	store := NewMemStore()

	if _, ok := store.Get(KeyEmail); ok {
		t.Fatal("expected empty store to report absent key")
	}

	store.Set(KeyEmail, "a@b.com")
	if v, ok := store.Get(KeyEmail); !ok || v != "a@b.com" {
		t.Errorf("Get(email) = %q, %v; want a@b.com, true", v, ok)
	}

	store.Remove(KeyEmail)
	if _, ok := store.Get(KeyEmail); ok {
		t.Error("expected key to be absent after Remove")
	}

	// Removing an absent key is a no-op
	store.Remove(KeyEmail)
}

func TestMemStore_Clear(t *testing.T) {
	store := NewMemStore()
	store.Set(KeyCustomerID, "7")
	store.Set(KeyEmail, "a@b.com")

	store.Clear()

	for _, key := range KnownKeys {
		if _, ok := store.Get(key); ok {
			t.Errorf("key %s still present after Clear", key)
		}
	}
}

func TestFileStore_PersistsAcrossLoads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")

	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	store.Set(KeyCustomerID, "42")
	store.Set(KeyUserRole, "ADMIN")

	// Reload from disk, simulating a new CLI invocation
	reloaded, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if v, ok := reloaded.Get(KeyCustomerID); !ok || v != "42" {
		t.Errorf("Get(customerId) = %q, %v; want 42, true", v, ok)
	}
	if v, ok := reloaded.Get(KeyUserRole); !ok || v != "ADMIN" {
		t.Errorf("Get(userRole) = %q, %v; want ADMIN, true", v, ok)
	}
}

func TestFileStore_MissingFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does-not-exist", "session.json")

	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := store.Get(KeyEmail); ok {
		t.Error("expected missing file to yield an empty store")
	}
}

func TestFileStore_CorruptFileErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := NewFileStore(path); err == nil {
		t.Error("expected error for corrupt session file")
	}
}

func TestFileStore_ClearRemovesEverything(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")

	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, key := range KnownKeys {
		store.Set(key, "x")
	}

	store.Clear()

	reloaded, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, key := range KnownKeys {
		if _, ok := reloaded.Get(key); ok {
			t.Errorf("key %s survived Clear", key)
		}
	}
}

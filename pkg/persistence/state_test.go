package persistence

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestStore(t *testing.T) {
	t.Run("LoadNonExistent", func(t *testing.T) {
		store := NewStore(filepath.Join(t.TempDir(), "nonexistent.json"))

		got, err := store.Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if got != nil {
			t.Errorf("Load() = %v, want nil for non-existent file", got)
		}
	})

	t.Run("SaveAndLoad", func(t *testing.T) {
		store := NewStore(filepath.Join(t.TempDir(), "sub", "state.json"))
		cid := uuid.New()
		connected := time.Now().Add(-time.Minute).Truncate(time.Second)

		if err := store.Save(&ComponentState{CID: cid, Scope: "stage", UID: "6574:80000001", ConnectedAt: connected}); err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		got, err := store.Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if got.Version != StateVersion {
			t.Errorf("Version = %d, want %d", got.Version, StateVersion)
		}
		if got.CID != cid {
			t.Errorf("CID = %s, want %s", got.CID, cid)
		}
		if got.Scope != "stage" || got.UID != "6574:80000001" {
			t.Errorf("Scope, UID = %q, %q", got.Scope, got.UID)
		}
		if !got.ConnectedAt.Equal(connected) {
			t.Errorf("ConnectedAt = %v, want %v", got.ConnectedAt, connected)
		}
		if got.SavedAt.IsZero() {
			t.Error("SavedAt not set")
		}
	})

	t.Run("NoTempFilesLeft", func(t *testing.T) {
		dir := t.TempDir()
		store := NewStore(filepath.Join(dir, "state.json"))
		for range 3 {
			if err := store.Save(&ComponentState{CID: uuid.New()}); err != nil {
				t.Fatalf("Save() error = %v", err)
			}
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatal(err)
		}
		if len(entries) != 1 {
			t.Errorf("directory has %d entries, want 1", len(entries))
		}
	})

	t.Run("CorruptFile", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "state.json")
		if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := NewStore(path).Load(); err == nil {
			t.Error("Load() succeeded on corrupt file")
		}
	})

	t.Run("FutureVersion", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "state.json")
		if err := os.WriteFile(path, []byte(`{"version": 99}`), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := NewStore(path).Load(); err == nil {
			t.Error("Load() accepted a newer format version")
		}
	})

	t.Run("Clear", func(t *testing.T) {
		store := NewStore(filepath.Join(t.TempDir(), "state.json"))
		if err := store.Save(&ComponentState{}); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		if err := store.Clear(); err != nil {
			t.Fatalf("Clear() error = %v", err)
		}
		if err := store.Clear(); err != nil {
			t.Fatalf("second Clear() error = %v", err)
		}
		got, _ := store.Load()
		if got != nil {
			t.Error("state still present after Clear()")
		}
	})
}

func TestStoreCID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	first, err := NewStore(path).CID()
	if err != nil {
		t.Fatalf("CID() error = %v", err)
	}
	if first == uuid.Nil {
		t.Fatal("CID() returned the nil UUID")
	}

	// A new store over the same file sees the generated CID.
	second, err := NewStore(path).CID()
	if err != nil {
		t.Fatalf("CID() error = %v", err)
	}
	if second != first {
		t.Errorf("CID() = %s after restart, want %s", second, first)
	}
}

func TestStoreUpdate(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "state.json"))
	cid, err := store.CID()
	if err != nil {
		t.Fatal(err)
	}

	err = store.Update(func(s *ComponentState) {
		s.Scope = "default"
		s.UID = "6574:80000002"
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatal(err)
	}
	if got.CID != cid {
		t.Errorf("Update() lost the CID: %s, want %s", got.CID, cid)
	}
	if got.UID != "6574:80000002" {
		t.Errorf("UID = %q", got.UID)
	}
}

func TestStoreUpdateCreatesFile(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "state.json"))
	if err := store.Update(func(s *ComponentState) { s.Scope = "x" }); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	got, err := store.Load()
	if err != nil || got == nil {
		t.Fatalf("Load() = %v, %v", got, err)
	}
	if got.Scope != "x" {
		t.Errorf("Scope = %q", got.Scope)
	}
}

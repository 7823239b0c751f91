package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func newTestCollections(t *testing.T) *Collections {
	t.Helper()
	cols, err := NewCollections(t.TempDir(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewCollections: %v", err)
	}
	return cols
}

func TestCollectionsSaveLoad(t *testing.T) {
	cols := newTestCollections(t)

	records := map[string]json.RawMessage{
		"a": json.RawMessage(`{"id":"a","n":1}`),
		"b": json.RawMessage(`{"id":"b","n":2}`),
	}
	if err := cols.Save("things", records); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded := cols.Load("things")
	if len(loaded) != 2 {
		t.Fatalf("Load returned %d records, want 2", len(loaded))
	}
	if _, ok := loaded["a"]; !ok {
		t.Fatal("record a missing after round trip")
	}
}

func TestCollectionsLoadMissingFile(t *testing.T) {
	cols := newTestCollections(t)

	loaded := cols.Load("nope")
	if loaded == nil || len(loaded) != 0 {
		t.Fatalf("Load of a missing collection = %v, want empty map", loaded)
	}
}

func TestCollectionsLoadCorruptFile(t *testing.T) {
	cols := newTestCollections(t)

	path := filepath.Join(cols.Dir(), "broken.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	loaded := cols.Load("broken")
	if len(loaded) != 0 {
		t.Fatalf("Load of a corrupt collection = %d records, want 0", len(loaded))
	}
}

func TestCollectionsSaveLeavesNoTempFiles(t *testing.T) {
	cols := newTestCollections(t)

	if err := cols.Save("things", map[string]json.RawMessage{}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	entries, err := os.ReadDir(cols.Dir())
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Fatalf("temp file %s left behind", e.Name())
		}
	}
}

func TestRandomID(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := randomID(10)
		if len(id) != 10 {
			t.Fatalf("randomID length = %d", len(id))
		}
		for _, r := range id {
			if !strings.ContainsRune(idAlphabet, r) {
				t.Fatalf("id %q contains %q outside the alphabet", id, r)
			}
		}
		seen[id] = true
	}
	if len(seen) < 90 {
		t.Fatalf("only %d distinct ids out of 100", len(seen))
	}
}

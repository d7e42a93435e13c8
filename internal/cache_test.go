package internal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iksnae/thread-harvest/testutil"
)

func TestNewSnapshotCache(t *testing.T) {
	cacheDir := testutil.CreateTempDir(t)
	sc := NewSnapshotCache(cacheDir)
	if sc.GetCacheDir() != cacheDir {
		t.Errorf("GetCacheDir() = %q, want %q", sc.GetCacheDir(), cacheDir)
	}
	if want := filepath.Join(cacheDir, "snapshots.yaml"); sc.GetIndexPath() != want {
		t.Errorf("GetIndexPath() = %q, want %q", sc.GetIndexPath(), want)
	}
	if want := filepath.Join(cacheDir, "snapshot_abc123.html"); sc.GetSnapshotPath("abc123") != want {
		t.Errorf("GetSnapshotPath() = %q, want %q", sc.GetSnapshotPath("abc123"), want)
	}
}

func TestSnapshotCache_EnsureCacheDir(t *testing.T) {
	cacheDir := filepath.Join(testutil.CreateTempDir(t), "nested", "snapshots")
	sc := NewSnapshotCache(cacheDir)

	if err := sc.EnsureCacheDir(); err != nil {
		t.Fatalf("EnsureCacheDir() error = %v", err)
	}
	if _, err := os.Stat(cacheDir); err != nil {
		t.Errorf("cache directory was not created: %v", err)
	}
}

func TestSnapshotCache_LoadIndexMissing(t *testing.T) {
	sc := NewSnapshotCache(filepath.Join(testutil.CreateTempDir(t), "missing"))

	index, err := sc.LoadIndex()
	if err != nil {
		t.Fatalf("LoadIndex() error = %v", err)
	}
	if len(index.Snapshots) != 0 {
		t.Errorf("LoadIndex() returned %d snapshots, want 0", len(index.Snapshots))
	}
	if index.Version != snapshotCacheVersion {
		t.Errorf("Version = %q, want %q", index.Version, snapshotCacheVersion)
	}
}

func TestSnapshotCache_LoadIndexCorrupt(t *testing.T) {
	cacheDir := testutil.CreateTempDir(t)
	sc := NewSnapshotCache(cacheDir)
	testutil.WriteFile(t, sc.GetIndexPath(), []byte("snapshots: [unclosed"))

	if _, err := sc.LoadIndex(); err == nil {
		t.Error("LoadIndex() expected error for corrupt index")
	}
}

func TestSnapshotCache_SaveAndLoad(t *testing.T) {
	sc := NewSnapshotCache(testutil.CreateTempDir(t))
	page, err := NewPageFromString(testutil.ThreadPageHTML("Deploy thread",
		testutil.FixtureMessage{Key: "m1", Author: "Alice", Body: "Hello"},
	), "https://chat.example.test/thread/1")
	if err != nil {
		t.Fatalf("NewPageFromString() error = %v", err)
	}

	if err := sc.SaveSnapshot("t1", page, 1); err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}
	// Saving again replaces the entry
	if err := sc.SaveSnapshot("t1", page, 1); err != nil {
		t.Fatalf("SaveSnapshot() second call error = %v", err)
	}

	index, err := sc.LoadIndex()
	if err != nil {
		t.Fatalf("LoadIndex() error = %v", err)
	}
	if len(index.Snapshots) != 1 {
		t.Fatalf("index has %d entries, want 1", len(index.Snapshots))
	}
	entry := index.Snapshots[0]
	if entry.ID != "t1" || entry.URL != page.URL || entry.Title != "Deploy thread" || entry.MessageCount != 1 {
		t.Errorf("unexpected index entry %+v", entry)
	}

	loaded, err := sc.LoadSnapshot("t1")
	if err != nil {
		t.Fatalf("LoadSnapshot() error = %v", err)
	}
	if loaded.URL != page.URL {
		t.Errorf("loaded URL = %q, want %q", loaded.URL, page.URL)
	}
	if loaded.Title != "Deploy thread" {
		t.Errorf("loaded Title = %q", loaded.Title)
	}
	if !strings.Contains(loaded.Doc.Find(`[data-item-key="m1"]`).Text(), "Hello") {
		t.Error("loaded snapshot lost the message element")
	}
}

func TestSnapshotCache_LoadMissingSnapshot(t *testing.T) {
	sc := NewSnapshotCache(testutil.CreateTempDir(t))
	_, err := sc.LoadSnapshot("nope")
	if err == nil {
		t.Fatal("LoadSnapshot() expected error")
	}
	if _, ok := err.(*SnapshotError); !ok {
		t.Errorf("LoadSnapshot() error type = %T, want *SnapshotError", err)
	}
}

func TestSnapshotCache_DeleteAndClear(t *testing.T) {
	sc := NewSnapshotCache(testutil.CreateTempDir(t))
	page, err := NewPageFromString("<html><head><title>x</title></head><body></body></html>", "")
	if err != nil {
		t.Fatalf("NewPageFromString() error = %v", err)
	}
	for _, id := range []string{"a", "b"} {
		if err := sc.SaveSnapshot(id, page, 0); err != nil {
			t.Fatalf("SaveSnapshot(%s) error = %v", id, err)
		}
	}

	if err := sc.DeleteSnapshot("a"); err != nil {
		t.Fatalf("DeleteSnapshot() error = %v", err)
	}
	if err := sc.DeleteSnapshot("missing"); err != nil {
		t.Errorf("DeleteSnapshot() of unknown id error = %v", err)
	}
	if _, err := os.Stat(sc.GetSnapshotPath("a")); !os.IsNotExist(err) {
		t.Error("snapshot file a should be removed")
	}
	index, _ := sc.LoadIndex()
	if len(index.Snapshots) != 1 || index.Snapshots[0].ID != "b" {
		t.Errorf("index after delete = %+v", index.Snapshots)
	}

	if err := sc.ClearCache(); err != nil {
		t.Fatalf("ClearCache() error = %v", err)
	}
	if _, err := os.Stat(sc.GetSnapshotPath("b")); !os.IsNotExist(err) {
		t.Error("snapshot file b should be removed")
	}
	if _, err := os.Stat(sc.GetIndexPath()); !os.IsNotExist(err) {
		t.Error("index should be removed")
	}
}

package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/PuerkitoBio/goquery"
	"gopkg.in/yaml.v3"
)

const snapshotCacheVersion = "1.0"

// SnapshotCache keeps captured page snapshots on disk so harvests can be
// re-parsed offline, e.g. after the selector cascades change
type SnapshotCache struct {
	cacheDir string
}

// SnapshotIndexEntry describes one cached snapshot
type SnapshotIndexEntry struct {
	ID           string    `yaml:"id"`
	URL          string    `yaml:"url,omitempty"`
	Title        string    `yaml:"title,omitempty"`
	CapturedAt   time.Time `yaml:"captured_at"`
	MessageCount int       `yaml:"message_count"`
}

// SnapshotIndex is the YAML index of all cached snapshots
type SnapshotIndex struct {
	Version   string               `yaml:"version"`
	UpdatedAt time.Time            `yaml:"updated_at"`
	Snapshots []SnapshotIndexEntry `yaml:"snapshots"`
}

// NewSnapshotCache creates a new snapshot cache rooted at cacheDir
func NewSnapshotCache(cacheDir string) *SnapshotCache {
	return &SnapshotCache{cacheDir: cacheDir}
}

// EnsureCacheDir ensures the cache directory exists
func (sc *SnapshotCache) EnsureCacheDir() error {
	return os.MkdirAll(sc.cacheDir, 0755)
}

// GetCacheDir returns the cache directory path
func (sc *SnapshotCache) GetCacheDir() string {
	return sc.cacheDir
}

// GetIndexPath returns the path to the snapshot index YAML file
func (sc *SnapshotCache) GetIndexPath() string {
	return filepath.Join(sc.cacheDir, "snapshots.yaml")
}

// GetSnapshotPath returns the path to a snapshot's HTML file
func (sc *SnapshotCache) GetSnapshotPath(id string) string {
	return filepath.Join(sc.cacheDir, fmt.Sprintf("snapshot_%s.html", id))
}

// LoadIndex loads the snapshot index. A missing index is empty.
func (sc *SnapshotCache) LoadIndex() (*SnapshotIndex, error) {
	data, err := os.ReadFile(sc.GetIndexPath())
	if os.IsNotExist(err) {
		return &SnapshotIndex{Version: snapshotCacheVersion}, nil
	}
	if err != nil {
		return nil, err
	}

	var index SnapshotIndex
	if err := yaml.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("failed to unmarshal index: %w", err)
	}
	return &index, nil
}

// SaveIndex saves the snapshot index
func (sc *SnapshotCache) SaveIndex(index *SnapshotIndex) error {
	if err := sc.EnsureCacheDir(); err != nil {
		return err
	}
	data, err := yaml.Marshal(index)
	if err != nil {
		return fmt.Errorf("failed to marshal index: %w", err)
	}
	return os.WriteFile(sc.GetIndexPath(), data, 0644)
}

// SaveSnapshot writes the page HTML for thread id and records it in the
// index, replacing an earlier snapshot of the same thread
func (sc *SnapshotCache) SaveSnapshot(id string, p *Page, messageCount int) error {
	if err := sc.EnsureCacheDir(); err != nil {
		return err
	}

	doc, err := goquery.OuterHtml(p.Doc.Selection)
	if err != nil {
		return fmt.Errorf("failed to render snapshot: %w", err)
	}
	if err := os.WriteFile(sc.GetSnapshotPath(id), []byte(doc), 0644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}

	index, err := sc.LoadIndex()
	if err != nil {
		LogWarn("Snapshot index unreadable, starting a new one: %v", err)
		index = &SnapshotIndex{Version: snapshotCacheVersion}
	}

	entry := SnapshotIndexEntry{
		ID:           id,
		URL:          p.URL,
		Title:        p.Title,
		CapturedAt:   time.Now().UTC(),
		MessageCount: messageCount,
	}
	found := false
	for i := range index.Snapshots {
		if index.Snapshots[i].ID == id {
			index.Snapshots[i] = entry
			found = true
			break
		}
	}
	if !found {
		index.Snapshots = append(index.Snapshots, entry)
	}
	sort.SliceStable(index.Snapshots, func(i, j int) bool {
		return index.Snapshots[i].CapturedAt.After(index.Snapshots[j].CapturedAt)
	})
	index.UpdatedAt = entry.CapturedAt
	return sc.SaveIndex(index)
}

// LoadSnapshot parses a cached snapshot back into a Page
func (sc *SnapshotCache) LoadSnapshot(id string) (*Page, error) {
	index, err := sc.LoadIndex()
	if err != nil {
		return nil, err
	}
	pageURL := ""
	for _, entry := range index.Snapshots {
		if entry.ID == id {
			pageURL = entry.URL
			break
		}
	}

	path := sc.GetSnapshotPath(id)
	f, err := os.Open(path)
	if err != nil {
		return nil, &SnapshotError{Source: path, Op: "decode", Err: err}
	}
	defer f.Close()
	return NewPageFromHTML(f, pageURL)
}

// ClearCache removes every snapshot and the index
func (sc *SnapshotCache) ClearCache() error {
	index, err := sc.LoadIndex()
	if err == nil {
		for _, entry := range index.Snapshots {
			_ = os.Remove(sc.GetSnapshotPath(entry.ID))
		}
	}
	if err := os.Remove(sc.GetIndexPath()); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// DeleteSnapshot removes one snapshot and its index entry. Missing snapshots
// are not an error.
func (sc *SnapshotCache) DeleteSnapshot(id string) error {
	index, err := sc.LoadIndex()
	if err != nil {
		return err
	}
	kept := index.Snapshots[:0]
	for _, entry := range index.Snapshots {
		if entry.ID != id {
			kept = append(kept, entry)
		}
	}
	index.Snapshots = kept
	if err := os.Remove(sc.GetSnapshotPath(id)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return sc.SaveIndex(index)
}

package internal

// Deduplicator remembers the fingerprints of messages already accumulated
type Deduplicator struct {
	seen map[string]bool
}

// NewDeduplicator creates a new Deduplicator
func NewDeduplicator() *Deduplicator {
	return &Deduplicator{seen: make(map[string]bool)}
}

// Add records key and reports whether it was new
func (d *Deduplicator) Add(key string) bool {
	if d.seen[key] {
		return false
	}
	d.seen[key] = true
	return true
}

// Seen reports whether key has been recorded
func (d *Deduplicator) Seen(key string) bool {
	return d.seen[key]
}

// Len returns the number of recorded keys
func (d *Deduplicator) Len() int {
	return len(d.seen)
}

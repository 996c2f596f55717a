package registry

import (
	"sync"

	"github.com/kunalpal97/ar-indoor-nav/pkg/core"
)

// Registry holds every marker placed in the current session, in placement order.
// It only grows during a session; Reset discards it wholesale on teardown.
// Records are not deduplicated: several may share a projected position.
type Registry struct {
	mu      sync.RWMutex
	records []*core.MarkerRecord
}

// New creates an empty Registry
func New() *Registry {
	return &Registry{
		records: make([]*core.MarkerRecord, 0),
	}
}

// Append adds a record and returns the new length
func (r *Registry) Append(rec *core.MarkerRecord) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
	return len(r.records)
}

// Len returns the number of placed markers
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

// NextSeq is the sequence number the next appended record will get
func (r *Registry) NextSeq() int {
	return r.Len()
}

// Get returns the record at placement index seq
func (r *Registry) Get(seq int) (*core.MarkerRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if seq < 0 || seq >= len(r.records) {
		return nil, false
	}
	return r.records[seq], true
}

// FindByAnchor returns the record owning the anchor with the given ID
func (r *Registry) FindByAnchor(anchorID string) (*core.MarkerRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, rec := range r.records {
		if rec.AnchorID() == anchorID {
			return rec, true
		}
	}
	return nil, false
}

// All returns a copy of the record list in placement order
func (r *Registry) All() []*core.MarkerRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*core.MarkerRecord, len(r.records))
	copy(out, r.records)
	return out
}

// Snapshots returns a point-in-time view of every record
func (r *Registry) Snapshots() []core.MarkerSnapshot {
	recs := r.All()
	out := make([]core.MarkerSnapshot, len(recs))
	for i, rec := range recs {
		out[i] = rec.Snapshot()
	}
	return out
}

// CountByState tallies records per attachment state
func (r *Registry) CountByState() map[core.AttachmentState]int {
	counts := map[core.AttachmentState]int{}
	for _, rec := range r.All() {
		counts[rec.State()]++
	}
	return counts
}

// Reset drops every record and returns the dropped list so the caller can release
// anchors. Only session teardown calls this.
func (r *Registry) Reset() []*core.MarkerRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	dropped := r.records
	r.records = make([]*core.MarkerRecord, 0)
	return dropped
}

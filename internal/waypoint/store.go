package waypoint

import (
	"strings"
	"sync"
	"time"

	"github.com/kunalpal97/ar-indoor-nav/pkg/core"
)

// NoWaypoints is the text shown when the latest result is empty.
const NoWaypoints = "No waypoints returned."

// Store holds the most recent waypoint list. Set replaces the list wholesale;
// there is no merging. Readers always get a private copy.
type Store struct {
	mu         sync.RWMutex
	waypoints  []core.Waypoint
	generation uint64
	updatedAt  time.Time
}

// NewStore creates a store holding the empty list
func NewStore() *Store {
	return &Store{waypoints: []core.Waypoint{}}
}

// Set replaces the stored list and returns the new generation
func (s *Store) Set(wps []core.Waypoint) uint64 {
	cp := make([]core.Waypoint, len(wps))
	copy(cp, wps)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.waypoints = cp
	s.generation++
	s.updatedAt = time.Now()
	return s.generation
}

// Get returns a copy of the current list
func (s *Store) Get() []core.Waypoint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cp := make([]core.Waypoint, len(s.waypoints))
	copy(cp, s.waypoints)
	return cp
}

// Generation counts successful Sets; zero means nothing was ever stored.
func (s *Store) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// UpdatedAt returns the time of the last Set
func (s *Store) UpdatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updatedAt
}

// Format renders waypoints one per line.
func Format(wps []core.Waypoint) string {
	if len(wps) == 0 {
		return NoWaypoints
	}
	lines := make([]string, len(wps))
	for i, w := range wps {
		lines[i] = w.String()
	}
	return strings.Join(lines, "\n")
}

// internal/storage/memory/memory.go
package memory

import (
	"sync"
	"time"

	"github.com/kunalpal97/ar-indoor-nav/internal/config"
	"github.com/kunalpal97/ar-indoor-nav/pkg/core"
)

// Backend keeps the session journal in memory and exports it to JSON at session end
type Backend struct {
	cfg        config.MemoryConfig
	appVersion string
	session    *core.Session

	placements  []core.PlacementEvent
	attachments []core.AttachmentEvent
	uploads     []core.UploadEvent

	lastExportPath string
	mu             sync.RWMutex
}

// New creates a new memory backend
func New(cfg config.MemoryConfig, appVersion string) *Backend {
	return &Backend{
		cfg:        cfg,
		appVersion: appVersion,
	}
}

// Init initializes the backend
func (b *Backend) Init() error {
	return nil
}

// Close cleans up resources
func (b *Backend) Close() error {
	return nil
}

// StartSession begins journaling a new session, discarding any previous one
func (b *Backend) StartSession(s *core.Session) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	cp := *s
	b.session = &cp
	b.placements = nil
	b.attachments = nil
	b.uploads = nil
	b.lastExportPath = ""

	return nil
}

// EndSession stamps the end time and exports the journal
func (b *Backend) EndSession() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.session == nil {
		return nil
	}
	if b.session.EndedAt.IsZero() {
		b.session.EndedAt = time.Now()
	}
	return b.exportJSON()
}

// RecordPlacement appends a placement attempt
func (b *Backend) RecordPlacement(e *core.PlacementEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.placements = append(b.placements, *e)
	return nil
}

// RecordAttachment appends an attachment resolution
func (b *Backend) RecordAttachment(e *core.AttachmentEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.attachments = append(b.attachments, *e)
	return nil
}

// RecordUpload appends an upload result
func (b *Backend) RecordUpload(e *core.UploadEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.uploads = append(b.uploads, *e)
	return nil
}

// Session returns a copy of the current session, if any
func (b *Backend) Session() (core.Session, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.session == nil {
		return core.Session{}, false
	}
	return *b.session, true
}

// Counts returns how many placements, attachments and uploads were journaled
func (b *Backend) Counts() (placements, attachments, uploads int) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.placements), len(b.attachments), len(b.uploads)
}

// GetExportedFilePath returns the path of the last export, "" before the first
func (b *Backend) GetExportedFilePath() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastExportPath
}

// internal/storage/storage.go
package storage

import "github.com/kunalpal97/ar-indoor-nav/pkg/core"

// Backend is the interface all journal implementations must satisfy.
// Record methods are called from the event loop and must not block on I/O.
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Session management
	StartSession(s *core.Session) error
	EndSession() error

	// Event recording
	RecordPlacement(e *core.PlacementEvent) error
	RecordAttachment(e *core.AttachmentEvent) error
	RecordUpload(e *core.UploadEvent) error
}

// Exportable is an optional interface for backends that write a file at session end.
type Exportable interface {
	GetExportedFilePath() string
}

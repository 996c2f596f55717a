// Package gormstore implements the storage.Backend interface using GORM with
// internal queues and a background DB writer goroutine. It serves both the
// SQLite and Postgres journals.
package gormstore

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kunalpal97/ar-indoor-nav/internal/database"
	"github.com/kunalpal97/ar-indoor-nav/internal/model"
	"github.com/kunalpal97/ar-indoor-nav/internal/model/convert"
	"github.com/kunalpal97/ar-indoor-nav/internal/queue"
	"github.com/kunalpal97/ar-indoor-nav/pkg/core"
	"gorm.io/gorm"
)

// DefaultFlushInterval is used when Dependencies.FlushInterval is zero.
const DefaultFlushInterval = 2 * time.Second

// queueLimit bounds each write queue while the database is unreachable.
const queueLimit = 10000

// ErrNoSession is returned by Record methods called outside a session.
var ErrNoSession = errors.New("no active session")

// Dependencies holds all dependencies for the GORM storage backend.
type Dependencies struct {
	DB            *gorm.DB
	Logger        *slog.Logger
	FlushInterval time.Duration
}

// queues holds all the write queues for batch DB insertion.
type queues struct {
	Placements  *queue.Queue[model.Placement]
	Attachments *queue.Queue[model.Attachment]
	Uploads     *queue.Queue[model.Upload]
}

func newQueues() *queues {
	return &queues{
		Placements:  queue.NewBounded[model.Placement](queueLimit),
		Attachments: queue.NewBounded[model.Attachment](queueLimit),
		Uploads:     queue.NewBounded[model.Upload](queueLimit),
	}
}

// Backend implements storage.Backend using GORM with queue-based batch writes.
type Backend struct {
	deps      Dependencies
	queues    *queues
	sessionID atomic.Uint64
	session   *model.Session

	flushMu  sync.Mutex
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// New creates a new GORM storage backend.
func New(deps Dependencies) *Backend {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.FlushInterval <= 0 {
		deps.FlushInterval = DefaultFlushInterval
	}
	return &Backend{
		deps:   deps,
		queues: newQueues(),
	}
}

// Init runs schema migration and starts the DB writer goroutine.
func (b *Backend) Init() error {
	if b.deps.DB == nil {
		return errors.New("gormstore: no database")
	}
	if err := database.Setup(b.deps.DB); err != nil {
		return fmt.Errorf("failed to setup DB: %w", err)
	}

	b.stopChan = make(chan struct{})
	b.startDBWriter()
	return nil
}

// Close stops the DB writer goroutine after a final flush.
func (b *Backend) Close() error {
	if b.stopChan == nil {
		return nil
	}
	close(b.stopChan)
	b.wg.Wait()
	b.stopChan = nil
	return b.Flush()
}

// StartSession inserts the session row synchronously so events can reference it.
func (b *Backend) StartSession(s *core.Session) error {
	row := convert.CoreToSession(*s)
	if err := b.deps.DB.Create(&row).Error; err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	b.session = &row
	b.sessionID.Store(uint64(row.ID))
	b.deps.Logger.Info("journal session started", "session", s.ID, "rowID", row.ID)
	return nil
}

// EndSession flushes queued events and stamps the session end time.
func (b *Backend) EndSession() error {
	if b.session == nil {
		return nil
	}
	if err := b.Flush(); err != nil {
		return err
	}
	err := b.deps.DB.Model(&model.Session{}).
		Where("id = ?", b.session.ID).
		Update("ended_at", time.Now()).Error
	if err != nil {
		return fmt.Errorf("failed to end session: %w", err)
	}
	b.session = nil
	b.sessionID.Store(0)
	return nil
}

// SessionRowID returns the database ID of the current session, 0 outside a session.
func (b *Backend) SessionRowID() uint {
	return uint(b.sessionID.Load())
}

// RecordPlacement converts and queues a placement.
func (b *Backend) RecordPlacement(e *core.PlacementEvent) error {
	id := b.SessionRowID()
	if id == 0 {
		return ErrNoSession
	}
	row, err := convert.CoreToPlacement(id, *e)
	if err != nil {
		return err
	}
	b.queues.Placements.Push(row)
	return nil
}

// RecordAttachment converts and queues an attachment resolution.
func (b *Backend) RecordAttachment(e *core.AttachmentEvent) error {
	id := b.SessionRowID()
	if id == 0 {
		return ErrNoSession
	}
	b.queues.Attachments.Push(convert.CoreToAttachment(id, *e))
	return nil
}

// RecordUpload converts and queues an upload.
func (b *Backend) RecordUpload(e *core.UploadEvent) error {
	id := b.SessionRowID()
	if id == 0 {
		return ErrNoSession
	}
	row, err := convert.CoreToUpload(id, *e)
	if err != nil {
		return err
	}
	b.queues.Uploads.Push(row)
	return nil
}

// Pending returns the number of queued, unwritten rows.
func (b *Backend) Pending() int {
	return b.queues.Placements.Len() + b.queues.Attachments.Len() + b.queues.Uploads.Len()
}

// Flush writes every queued row now. Failed batches are requeued and the
// first error is returned.
func (b *Backend) Flush() error {
	b.flushMu.Lock()
	defer b.flushMu.Unlock()

	return errors.Join(
		writeQueue(b.deps.DB, b.queues.Placements, "placements"),
		writeQueue(b.deps.DB, b.queues.Attachments, "attachments"),
		writeQueue(b.deps.DB, b.queues.Uploads, "uploads"),
	)
}

// writeQueue writes all items from a queue to the database in a transaction.
func writeQueue[T any](db *gorm.DB, q *queue.Queue[T], name string) error {
	if q.Empty() {
		return nil
	}

	items := q.GetAndEmpty()
	tx := db.Begin()
	if err := tx.Create(&items).Error; err != nil {
		tx.Rollback()
		q.Requeue(items)
		return fmt.Errorf("error creating %s: %w", name, err)
	}

	if err := tx.Commit().Error; err != nil {
		q.Requeue(items)
		return fmt.Errorf("error committing %s: %w", name, err)
	}
	return nil
}

// startDBWriter starts the background goroutine that periodically drains queues into the DB.
func (b *Backend) startDBWriter() {
	stop := b.stopChan
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		ticker := time.NewTicker(b.deps.FlushInterval)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if err := b.Flush(); err != nil {
					b.deps.Logger.Error("journal flush failed", "error", err, "pending", b.Pending())
				}
			}
		}
	}()
}

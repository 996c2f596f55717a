package websocket

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/kunalpal97/ar-indoor-nav/pkg/core"
	"github.com/kunalpal97/ar-indoor-nav/pkg/streaming"
)

// Config holds WebSocket backend configuration.
type Config struct {
	URL        string
	Secret     string
	AppVersion string
	Logger     *slog.Logger
}

// Backend streams the session journal over WebSocket. Record methods never
// block: messages are queued for the write loop and dropped when it falls behind.
type Backend struct {
	conn    *connection
	cfg     Config
	seq     atomic.Uint64
	session atomic.Pointer[core.Session]
}

// New creates a new WebSocket storage backend.
func New(cfg Config) *Backend {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Backend{
		conn: newConnection(cfg.Logger),
		cfg:  cfg,
	}
}

// Init connects to the WebSocket server.
func (b *Backend) Init() error {
	if b.cfg.URL == "" {
		return fmt.Errorf("websocket URL not configured")
	}
	return b.conn.dial(b.cfg.URL, b.cfg.Secret)
}

// Close disconnects from the WebSocket server.
func (b *Backend) Close() error {
	return b.conn.close()
}

// Dropped returns how many messages were discarded instead of sent.
func (b *Backend) Dropped() uint64 {
	return b.conn.dropped.Load()
}

// marshalEnvelope builds a JSON-encoded Envelope from a message type and payload.
func marshalEnvelope(msgType string, seq uint64, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", msgType, err)
	}
	env := streaming.Envelope{Type: msgType, Seq: seq, SentAt: time.Now().UTC(), Payload: raw}
	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshal %s envelope: %w", msgType, err)
	}
	return data, nil
}

// sendEnvelope marshals the payload into an Envelope and pushes it
// to the write loop (fire-and-forget).
func (b *Backend) sendEnvelope(msgType string, payload any) error {
	data, err := marshalEnvelope(msgType, b.seq.Add(1), payload)
	if err != nil {
		return err
	}
	b.conn.send(data)
	return nil
}

// StartSession sends the session and waits for server ack.
func (b *Backend) StartSession(s *core.Session) error {
	cp := *s
	b.session.Store(&cp)
	b.seq.Store(0)

	data, err := marshalEnvelope(streaming.TypeStartSession, b.seq.Add(1),
		streaming.StartSessionPayload{Session: &cp, AppVersion: b.cfg.AppVersion})
	if err != nil {
		return err
	}

	// Cache for reconnect replay.
	b.conn.mu.Lock()
	b.conn.cachedStart = data
	b.conn.mu.Unlock()

	return b.conn.sendAndWait(data, streaming.TypeStartSession, ackTimeout)
}

// EndSession sends end_session and waits for server ack.
func (b *Backend) EndSession() error {
	s := b.session.Swap(nil)
	if s == nil {
		return nil
	}

	seq := b.seq.Add(1)
	data, err := marshalEnvelope(streaming.TypeEndSession, seq, streaming.EndSessionPayload{
		SessionID: s.ID,
		EndedAt:   time.Now().UTC(),
		Sent:      seq,
	})
	if err == nil {
		err = b.conn.sendAndWait(data, streaming.TypeEndSession, ackTimeout)
	}

	// Clear cached state regardless of error.
	b.conn.mu.Lock()
	b.conn.cachedStart = nil
	b.conn.mu.Unlock()

	return err
}

func (b *Backend) RecordPlacement(e *core.PlacementEvent) error {
	return b.sendEnvelope(streaming.TypePlacement, e)
}

func (b *Backend) RecordAttachment(e *core.AttachmentEvent) error {
	return b.sendEnvelope(streaming.TypeAttachment, e)
}

func (b *Backend) RecordUpload(e *core.UploadEvent) error {
	return b.sendEnvelope(streaming.TypeUpload, e)
}

// Package streaming defines the JSON protocol used to stream a session journal
// over WebSocket.
package streaming

import (
	"encoding/json"
	"time"

	"github.com/kunalpal97/ar-indoor-nav/pkg/core"
)

// Message type constants matching the streaming protocol.
const (
	TypeStartSession = "start_session"
	TypeEndSession   = "end_session"
	TypePlacement    = "placement"
	TypeAttachment   = "attachment"
	TypeUpload       = "upload"
	TypeAck          = "ack"
)

// Envelope wraps all messages sent over the WebSocket. Seq increases by one per
// message sent in a session, so a receiver can detect messages dropped under load.
type Envelope struct {
	Type    string          `json:"type"`
	Seq     uint64          `json:"seq"`
	SentAt  time.Time       `json:"sentAt"`
	Payload json.RawMessage `json:"payload"`
}

// AckMessage is the server's acknowledgement response.
type AckMessage struct {
	Type string `json:"type"` // always "ack"
	For  string `json:"for"`  // the message type being acknowledged
}

// StartSessionPayload carries the session being journaled.
type StartSessionPayload struct {
	Session    *core.Session `json:"session"`
	AppVersion string        `json:"appVersion"`
}

// EndSessionPayload closes a session. Sent is the number of envelopes the
// client handed to its writer, including this one.
type EndSessionPayload struct {
	SessionID string    `json:"sessionId"`
	EndedAt   time.Time `json:"endedAt"`
	Sent      uint64    `json:"sent"`
}

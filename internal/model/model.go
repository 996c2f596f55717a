package model

import (
	"time"

	geom "github.com/peterstace/simplefeatures/geom"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&JournalInfo{},
	&Session{},
	&Placement{},
	&Attachment{},
	&Upload{},
}

// SchemaVersion is written to JournalInfo on first setup.
const SchemaVersion = 1

////////////////////////
// SYSTEM MODELS
////////////////////////

// JournalInfo describes the journal database itself
type JournalInfo struct {
	gorm.Model
	AppName       string `json:"appName" gorm:"size:64"`
	SchemaVersion int    `json:"schemaVersion"`
}

func (*JournalInfo) TableName() string {
	return "journal_infos"
}

////////////////////////
// SESSION MODELS
////////////////////////

// Session is one AR session
type Session struct {
	gorm.Model
	SessionUUID string    `json:"sessionId" gorm:"size:36;uniqueIndex"`
	Device      string    `json:"device" gorm:"size:127"`
	StartedAt   time.Time `json:"startedAt" gorm:"index:idx_session_start"`
	EndedAt     time.Time `json:"endedAt"`
	Placements  []Placement
	Attachments []Attachment
	Uploads     []Upload
}

func (*Session) TableName() string {
	return "sessions"
}

// Placement is one placement attempt. Seq is -1 for rejected attempts.
type Placement struct {
	ID        uint      `json:"id" gorm:"primarykey;autoIncrement;"`
	Time      time.Time `json:"time" gorm:"index:idx_placement_time"`
	SessionID uint      `json:"sessionId" gorm:"index:idx_placement_session_id"`
	Seq       int       `json:"seq"`
	AnchorID  string    `json:"anchorId" gorm:"size:36"`
	// Target and Camera positions, floor plane in XY
	Target    geom.Point `json:"target"`
	Camera    geom.Point `json:"camera"`
	ErrorKind string     `json:"errorKind" gorm:"size:32"`
	Error     string     `json:"error" gorm:"size:255"`
}

func (*Placement) TableName() string {
	return "placements"
}

// Attachment is the resolution of one marker's model attachment
type Attachment struct {
	ID        uint      `json:"id" gorm:"primarykey;autoIncrement;"`
	Time      time.Time `json:"time" gorm:"index:idx_attachment_time"`
	SessionID uint      `json:"sessionId" gorm:"index:idx_attachment_session_id"`
	Seq       int       `json:"seq"`
	AnchorID  string    `json:"anchorId" gorm:"size:36"`
	State     string    `json:"state" gorm:"size:16"`
	ErrorKind string    `json:"errorKind" gorm:"size:32"`
	Error     string    `json:"error" gorm:"size:255"`
}

func (*Attachment) TableName() string {
	return "attachments"
}

// Upload is one recognition-service upload
type Upload struct {
	ID            uint           `json:"id" gorm:"primarykey;autoIncrement;"`
	Time          time.Time      `json:"time" gorm:"index:idx_upload_time"`
	SessionID     uint           `json:"sessionId" gorm:"index:idx_upload_session_id"`
	StatusCode    int            `json:"statusCode"`
	Message       string         `json:"message" gorm:"size:255"`
	WaypointCount int            `json:"waypointCount"`
	Waypoints     datatypes.JSON `json:"waypoints"`
	// Path joins the waypoints in list order
	Path  geom.LineString `json:"path"`
	Error string          `json:"error" gorm:"size:255"`
}

func (*Upload) TableName() string {
	return "uploads"
}

package model

import "time"

type AuditAction string

const (
	AuditUpload   AuditAction = "version.upload"
	AuditActivate AuditAction = "version.activate"
	AuditDelete   AuditAction = "version.delete"
)

type AuditStatus string

const (
	AuditSuccess AuditStatus = "success"
	AuditFailure AuditStatus = "failure"
)

type AuditActor struct {
	UserID   string `json:"user_id,omitempty"`
	Username string `json:"username,omitempty"`
	Role     string `json:"role,omitempty"`
	IP       string `json:"ip,omitempty"`
}

// AuditEntry records one attempted mutation of a category's versions.
// VersionID is empty when an upload failed before a version existed.
type AuditEntry struct {
	Action     AuditAction `json:"action"`
	OccurredAt time.Time   `json:"occurred_at"`
	Actor      AuditActor  `json:"actor"`
	Status     AuditStatus `json:"status"`
	Category   Category    `json:"category"`
	VersionID  string      `json:"version_id,omitempty"`
	FileName   string      `json:"file_name,omitempty"`
	Error      string      `json:"error,omitempty"`
}

type AuditQuery struct {
	Category Category
	Action   AuditAction
	ActorID  string
	Status   AuditStatus
	From     time.Time
	To       time.Time
	Page     int
	Limit    int
}

package model

import "time"

// Event is one decoded Cowrie log record. Fields holds the full decoded
// JSON object; the typed fields are extracted from it at parse time and are
// zero-valued when absent. Events are immutable once produced.
type Event struct {
	Timestamp time.Time
	EventID   string
	SrcIP     string
	Session   string
	Username  string
	Password  string
	Input     string
	URL       string
	Fields    map[string]any
}

// Cowrie event IDs the analytics engine keys on. The set is open: unknown
// IDs still count in the event-type histogram under their raw tag.
const (
	EventLoginSuccess   = "cowrie.login.success"
	EventLoginFailed    = "cowrie.login.failed"
	EventSessionConnect = "cowrie.session.connect"
	EventSessionClosed  = "cowrie.session.closed"
	EventCommandInput   = "cowrie.command.input"
	EventFileDownload   = "cowrie.session.file_download"
	EventFileUpload     = "cowrie.session.file_upload"
)

package models

// EventType is the kind of an audit log entry.
type EventType string

const (
	EventPinCheckSuccess EventType = "PIN_CHECK_SUCCESS"
	// EventPinCheckFailed carries the tries remaining, which is negative
	// once the account has been blocked.
	EventPinCheckFailed EventType = "PIN_CHECK_FAILED"
	// EventPinCheckBlocked carries the lockout duration in seconds.
	EventPinCheckBlocked EventType = "PIN_CHECK_BLOCKED"
	EventSession         EventType = "IRMA_SESSION"
	EventEnabled         EventType = "IRMA_ENABLED"
	EventBlocked         EventType = "IRMA_BLOCKED"
)

// LogEntry is one immutable audit event. Time is Unix seconds; entries with
// equal Time are ordered by ID.
type LogEntry struct {
	ID        int64     `json:"id"`
	AccountID string    `json:"-"`
	Event     EventType `json:"event"`
	Param     *int64    `json:"param,omitempty"`
	Time      int64     `json:"time"`
}

// LogPage is one page of an account's log, newest first. Prev and Next are
// the before cursors of the neighbouring pages, nil at either end.
type LogPage struct {
	Entries []LogEntry `json:"entries"`
	Prev    *int64     `json:"previous,omitempty"`
	Next    *int64     `json:"next,omitempty"`
}

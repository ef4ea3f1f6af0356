package storage

import (
	"fmt"
	"time"
)

// ChatTurn is one persisted request/response pair.
type ChatTurn struct {
	ID        int64
	UserID    *int64 // nil when the caller sent no user id
	Message   string
	Response  string
	Timestamp time.Time
}

// Document is one persisted upload with its extracted or fallback text.
type Document struct {
	ID         int64
	Filename   string
	Content    string
	UploadedAt time.Time
}

// Error is a persistence failure: store unavailable, or a read or write that
// did not complete.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}

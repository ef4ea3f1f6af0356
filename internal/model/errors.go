package model

import "fmt"

// BackendError is an upstream inference failure: transport error, non-success
// status, unreadable body, or an explicit error field in the payload.
type BackendError struct {
	Backend string
	Status  int    // HTTP status when the upstream answered, 0 otherwise
	Detail  string // upstream body or error value, for diagnostics
	Err     error
}

func (e *BackendError) Error() string {
	switch {
	case e.Status != 0 && e.Detail != "":
		return fmt.Sprintf("%s backend returned %d: %s", e.Backend, e.Status, e.Detail)
	case e.Status != 0 && e.Err == nil:
		return fmt.Sprintf("%s backend returned %d", e.Backend, e.Status)
	case e.Detail != "":
		return fmt.Sprintf("%s backend error: %s", e.Backend, e.Detail)
	default:
		return fmt.Sprintf("%s backend error: %v", e.Backend, e.Err)
	}
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

package service

import "fmt"

// BackendError marks a storage failure that is not the caller's fault. The
// HTTP layer logs Err and answers with a generic message.
type BackendError struct {
	Op  string
	Err error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

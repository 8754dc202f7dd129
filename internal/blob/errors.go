package blob

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means the store answered 404 or 410.
	ErrNotFound = errors.New("blob not found")
	// ErrInvalidRequest means the store answered 400.
	ErrInvalidRequest = errors.New("invalid blob request")
	// ErrSizeUnknown means a probe succeeded without a usable content length.
	ErrSizeUnknown = errors.New("blob size unknown")
	// ErrUnexpected covers any other status and transport failures.
	ErrUnexpected = errors.New("unexpected blob store response")
	// ErrRejected means the store did not accept a delete.
	ErrRejected    = errors.New("blob delete rejected")
	ErrInvalidPath = errors.New("invalid blob path")
)

// UnexpectedStatusError carries a status code nobody expected.
type UnexpectedStatusError struct {
	Op         string
	StatusCode int
}

func (e *UnexpectedStatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d", e.Op, e.StatusCode)
}

func (e *UnexpectedStatusError) Is(target error) bool {
	return target == ErrUnexpected
}

// RejectedError is returned by Deleter.Delete for anything but 202.
// StatusCode is zero when the request never reached the store.
type RejectedError struct {
	StatusCode int
	Err        error
}

func (e *RejectedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("delete rejected: %v", e.Err)
	}
	return fmt.Sprintf("delete rejected: status %d", e.StatusCode)
}

func (e *RejectedError) Unwrap() error {
	return e.Err
}

func (e *RejectedError) Is(target error) bool {
	return target == ErrRejected
}

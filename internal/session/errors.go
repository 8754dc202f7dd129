package session

import (
	"errors"
	"fmt"

	"github.com/ambryfs/ambryfs-go/internal/blob"
)

var (
	ErrFetchFailed   = errors.New("fetch failed")
	ErrUnknownHandle = errors.New("unknown file handle")
	ErrInvalidRange  = errors.New("invalid read range")
)

// ReadError reports the fetch failure that put a session into StateFailed.
// The same error is returned by every later read on that handle.
type ReadError struct {
	Handle HandleID
	Path   blob.Path
	Err    error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("handle %d (%s): fetch failed: %v", e.Handle, e.Path, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

func (e *ReadError) Is(target error) bool {
	return target == ErrFetchFailed
}

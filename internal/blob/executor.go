package blob

import (
	"context"
	"net/http"

	"github.com/ambryfs/ambryfs-go/internal/transport"
)

// Executor runs one request against the blob store. *transport.Adapter
// implements it.
type Executor interface {
	Execute(ctx context.Context, method, blobPath string, opts transport.Options) (*transport.Response, error)
}

var _ Executor = (*transport.Adapter)(nil)

// statusError maps a non-success status to the package errors.
func statusError(op string, status int) error {
	switch status {
	case http.StatusNotFound, http.StatusGone:
		return ErrNotFound
	case http.StatusBadRequest:
		return ErrInvalidRequest
	default:
		return &UnexpectedStatusError{Op: op, StatusCode: status}
	}
}

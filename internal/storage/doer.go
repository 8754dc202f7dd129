package storage

import (
	"context"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/ambryfs/ambryfs-go/internal/transport"
)

// Doer answers blob store requests from a Backend, producing the status
// codes the HTTP store would: 200 for HEAD/GET, 202 for DELETE, 404 for a
// missing blob, 400 for an empty id and 500 for backend failures.
type Doer struct {
	backend Backend
}

var _ transport.Doer = (*Doer)(nil)

// NewDoer wraps backend.
func NewDoer(backend Backend) *Doer {
	return &Doer{backend: backend}
}

// Do implements transport.Doer
func (d *Doer) Do(ctx context.Context, req *transport.Request) (*transport.Response, error) {
	id := req.BlobPath
	if id == "" {
		return status(http.StatusBadRequest), nil
	}

	switch req.Method {
	case transport.MethodHead:
		size, err := d.backend.Stat(ctx, id)
		if err != nil {
			return d.failure(req, err), nil
		}
		return &transport.Response{StatusCode: http.StatusOK, ContentLength: size}, nil

	case transport.MethodGet:
		data, err := d.backend.Get(ctx, id)
		if err != nil {
			return d.failure(req, err), nil
		}
		resp := &transport.Response{StatusCode: http.StatusOK, ContentLength: int64(len(data))}
		if !req.NoBody {
			resp.Body = data
		}
		return resp, nil

	case transport.MethodDelete:
		if err := d.backend.Delete(ctx, id); err != nil {
			return d.failure(req, err), nil
		}
		return &transport.Response{StatusCode: http.StatusAccepted, ContentLength: 0}, nil

	default:
		return status(http.StatusMethodNotAllowed), nil
	}
}

func (d *Doer) failure(req *transport.Request, err error) *transport.Response {
	if errors.Is(err, ErrNotFound) {
		return status(http.StatusNotFound)
	}
	logrus.WithFields(logrus.Fields{
		"method": req.Method,
		"blob":   req.BlobPath,
	}).WithError(err).Warn("backend request failed")
	return status(http.StatusInternalServerError)
}

func status(code int) *transport.Response {
	return &transport.Response{StatusCode: code, ContentLength: -1}
}

package blob

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/ambryfs/ambryfs-go/internal/transport"
)

// Kind is the file type a blob is exposed as
type Kind int

const (
	KindAbsent Kind = iota
	KindRegular
)

func (k Kind) String() string {
	if k == KindRegular {
		return "regular"
	}
	return "absent"
}

// Attributes are derived from a single probe and never cached.
type Attributes struct {
	Exists bool
	Size   uint64
	Kind   Kind
}

// Resolver answers existence and size questions with a HEAD probe.
type Resolver struct {
	exec Executor
}

// NewResolver creates a resolver.
func NewResolver(exec Executor) *Resolver {
	return &Resolver{exec: exec}
}

// Probe issues a body-suppressed request for path. A missing blob is
// reported as Attributes with Exists false and a nil error.
func (r *Resolver) Probe(ctx context.Context, path Path) (*Attributes, error) {
	// An issued probe runs to completion even if the caller is interrupted.
	resp, err := r.exec.Execute(context.WithoutCancel(ctx), transport.MethodHead, path.String(), transport.Options{NoBody: true})
	if err != nil {
		return nil, fmt.Errorf("probe %s: %w: %w", path, ErrUnexpected, err)
	}

	log := logrus.WithFields(logrus.Fields{"blob": path, "status": resp.StatusCode})
	switch resp.StatusCode {
	case http.StatusOK:
		if resp.ContentLength < 0 {
			return nil, fmt.Errorf("probe %s: %w", path, ErrSizeUnknown)
		}
		log.WithField("size", resp.ContentLength).Debug("blob exists")
		return &Attributes{Exists: true, Size: uint64(resp.ContentLength), Kind: KindRegular}, nil
	case http.StatusNotFound, http.StatusGone:
		log.Debug("blob absent")
		return &Attributes{Kind: KindAbsent}, nil
	default:
		return nil, fmt.Errorf("probe %s: %w", path, statusError("probe", resp.StatusCode))
	}
}

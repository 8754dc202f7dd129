package blob

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/ambryfs/ambryfs-go/internal/transport"
)

// Fetcher downloads a whole blob.
type Fetcher struct {
	exec Executor
}

// NewFetcher creates a fetcher.
func NewFetcher(exec Executor) *Fetcher {
	return &Fetcher{exec: exec}
}

// Fetch returns the full body of path. The returned slice is owned by the caller.
func (f *Fetcher) Fetch(ctx context.Context, path Path) ([]byte, error) {
	resp, err := f.exec.Execute(ctx, transport.MethodGet, path.String(), transport.Options{})
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w: %w", path, ErrUnexpected, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: %w", path, statusError("fetch", resp.StatusCode))
	}

	body := resp.Body
	if body == nil {
		body = []byte{}
	}
	if resp.ContentLength >= 0 && resp.ContentLength != int64(len(body)) {
		logrus.WithFields(logrus.Fields{
			"blob":           path,
			"content_length": resp.ContentLength,
			"received":       len(body),
		}).Warn("body length differs from declared length, using received bytes")
	}
	return body, nil
}

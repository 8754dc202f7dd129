package blob

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/ambryfs/ambryfs-go/internal/transport"
)

// Deleter forwards unlink to the store as DELETE.
type Deleter struct {
	exec Executor
}

// NewDeleter creates a deleter.
func NewDeleter(exec Executor) *Deleter {
	return &Deleter{exec: exec}
}

// Delete removes path from the store. Only 202 Accepted counts as success.
func (d *Deleter) Delete(ctx context.Context, path Path) error {
	// An issued delete runs to completion even if the caller is interrupted.
	resp, err := d.exec.Execute(context.WithoutCancel(ctx), transport.MethodDelete, path.String(), transport.Options{})
	if err != nil {
		return fmt.Errorf("delete %s: %w", path, &RejectedError{Err: err})
	}
	if resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("delete %s: %w", path, &RejectedError{StatusCode: resp.StatusCode})
	}
	logrus.WithField("blob", path).Info("blob deleted")
	return nil
}

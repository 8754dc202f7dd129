package fuse

import (
	"context"
	"os"
	"time"
)

// Chmod is refused; the store keeps no mode bits.
func (fs *Filesystem) Chmod(ctx context.Context, path string, mode os.FileMode) error {
	return fs.fail("chmod", path, ErrReadOnly)
}

// Chown is refused; the store keeps no ownership.
func (fs *Filesystem) Chown(ctx context.Context, path string, uid, gid uint32) error {
	return fs.fail("chown", path, ErrReadOnly)
}

// Utimens is refused; blob times cannot be set.
func (fs *Filesystem) Utimens(ctx context.Context, path string, atime, mtime time.Time) error {
	return fs.fail("utimens", path, ErrReadOnly)
}

// Truncate is refused; blobs are immutable.
func (fs *Filesystem) Truncate(ctx context.Context, path string, size uint64) error {
	return fs.fail("truncate", path, ErrReadOnly)
}

package fuse

import (
	"context"
	"errors"
	"net/http"
	"os"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ambryfs/ambryfs-go/internal/blob"
	"github.com/ambryfs/ambryfs-go/internal/session"
)

// ErrReadOnly is returned for every operation that would add or change data.
var ErrReadOnly = errors.New("filesystem is read-only")

// Attr represents file attributes
type Attr struct {
	Mode  os.FileMode
	Size  uint64
	Nlink uint32
	Mtime time.Time
	Uid   uint32
	Gid   uint32
}

// DirEntry represents a directory entry
type DirEntry struct {
	Name  string
	IsDir bool
}

// Statfs represents filesystem statistics
type Statfs struct {
	Bsize   uint64 // Block size
	Blocks  uint64 // Total blocks
	Bfree   uint64 // Free blocks
	Bavail  uint64 // Available blocks
	Files   uint64 // Total inodes
	Ffree   uint64 // Free inodes
	Namelen uint32 // Max filename length
}

// Filesystem dispatches filesystem operations to the blob components and
// converts their results into errno values.
type Filesystem struct {
	resolver  *blob.Resolver
	sessions  *session.Manager
	deleter   *blob.Deleter
	mountTime time.Time
	uid       uint32
	gid       uint32
}

// NewFilesystem creates a filesystem whose resolver, fetcher and deleter all
// go through exec.
func NewFilesystem(exec blob.Executor) *Filesystem {
	return NewFilesystemWithComponents(
		blob.NewResolver(exec),
		session.NewManager(blob.NewFetcher(exec)),
		blob.NewDeleter(exec),
	)
}

// NewFilesystemWithComponents creates a filesystem from prebuilt components
func NewFilesystemWithComponents(resolver *blob.Resolver, sessions *session.Manager, deleter *blob.Deleter) *Filesystem {
	return &Filesystem{
		resolver:  resolver,
		sessions:  sessions,
		deleter:   deleter,
		mountTime: time.Now(),
		uid:       uint32(os.Getuid()),
		gid:       uint32(os.Getgid()),
	}
}

// Sessions exposes the session manager, mainly for shutdown and tests.
func (fs *Filesystem) Sessions() *session.Manager {
	return fs.sessions
}

func isRoot(path string) bool {
	return path == "" || path == "/"
}

// fail logs err and converts it into the errno handed back to the kernel.
func (fs *Filesystem) fail(op, path string, err error) error {
	errno := Errno(err)
	log := logrus.WithFields(logrus.Fields{"op": op, "path": path, "errno": errno}).WithError(err)
	if errno == syscall.EIO {
		log.Warn("operation failed")
	} else {
		log.Debug("operation failed")
	}
	return errno
}

// GetAttr retrieves file attributes. The root is a synthetic directory;
// everything else is probed on every call.
func (fs *Filesystem) GetAttr(ctx context.Context, path string) (*Attr, error) {
	if isRoot(path) {
		return &Attr{
			Mode:  os.ModeDir | 0755,
			Nlink: 2,
			Mtime: fs.mountTime,
			Uid:   fs.uid,
			Gid:   fs.gid,
		}, nil
	}

	p, err := blob.ParsePath(path)
	if err != nil {
		return nil, fs.fail("getattr", path, err)
	}
	attrs, err := fs.resolver.Probe(ctx, p)
	if err != nil {
		return nil, fs.fail("getattr", path, err)
	}
	if !attrs.Exists {
		return nil, fs.fail("getattr", path, blob.ErrNotFound)
	}

	return &Attr{
		Mode:  0644,
		Size:  attrs.Size,
		Nlink: 1,
		Mtime: fs.mountTime,
		Uid:   fs.uid,
		Gid:   fs.gid,
	}, nil
}

// Open allocates a read session. Existence is not checked here; a missing
// blob surfaces on the first read.
func (fs *Filesystem) Open(ctx context.Context, path string) (session.HandleID, error) {
	p, err := blob.ParsePath(path)
	if err != nil {
		return 0, fs.fail("open", path, err)
	}
	return fs.sessions.Open(p), nil
}

// Read serves size bytes at offset from the session behind handle.
func (fs *Filesystem) Read(ctx context.Context, path string, handle session.HandleID, offset int64, size int) ([]byte, error) {
	data, err := fs.sessions.Read(ctx, handle, offset, size)
	if err != nil {
		return nil, fs.fail("read", path, err)
	}
	return data, nil
}

// Release drops the session behind handle. It never fails.
func (fs *Filesystem) Release(ctx context.Context, handle session.HandleID) error {
	fs.sessions.Close(handle)
	return nil
}

// Unlink deletes the blob behind path from the store.
func (fs *Filesystem) Unlink(ctx context.Context, path string) error {
	p, err := blob.ParsePath(path)
	if err != nil {
		return fs.fail("unlink", path, err)
	}
	if err := fs.deleter.Delete(ctx, p); err != nil {
		return fs.fail("unlink", path, err)
	}
	return nil
}

// Create is refused; blobs cannot be created through the mount.
func (fs *Filesystem) Create(ctx context.Context, path string, mode os.FileMode) error {
	return fs.fail("create", path, ErrReadOnly)
}

// Write is refused; blobs are immutable.
func (fs *Filesystem) Write(ctx context.Context, path string, data []byte, offset int64) error {
	return fs.fail("write", path, ErrReadOnly)
}

// ReadDir lists a directory. The store has no listing API, so the root is
// always empty.
func (fs *Filesystem) ReadDir(ctx context.Context, path string) ([]DirEntry, error) {
	if !isRoot(path) {
		return nil, fs.fail("readdir", path, blob.ErrInvalidPath)
	}
	return []DirEntry{}, nil
}

// Statfs returns filesystem statistics
func (fs *Filesystem) Statfs(ctx context.Context) (*Statfs, error) {
	return &Statfs{
		Bsize:   4096,
		Namelen: 255,
	}, nil
}

// Errno maps an error from the blob or session layers to the errno reported
// to the kernel. A nil error maps to 0.
func Errno(err error) syscall.Errno {
	if err == nil {
		return 0
	}

	// No unwrapping: a wrapped ECONNREFUSED is still an I/O error.
	if errno, ok := err.(syscall.Errno); ok {
		return errno
	}

	var rejected *blob.RejectedError
	switch {
	case errors.Is(err, ErrReadOnly):
		return syscall.EROFS
	case errors.Is(err, session.ErrUnknownHandle), errors.Is(err, session.ErrInvalidRange):
		return syscall.EINVAL
	case errors.Is(err, blob.ErrNotFound), errors.Is(err, blob.ErrInvalidPath):
		return syscall.ENOENT
	case errors.Is(err, blob.ErrInvalidRequest):
		return syscall.EINVAL
	case errors.As(err, &rejected):
		if rejected.StatusCode == http.StatusNotFound || rejected.StatusCode == http.StatusGone {
			return syscall.ENOENT
		}
		return syscall.EIO
	default:
		return syscall.EIO
	}
}

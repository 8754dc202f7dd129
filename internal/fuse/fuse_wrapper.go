package fuse

import (
	"context"
	"fmt"
	"os"
	"syscall"

	"bazil.org/fuse"
	"bazil.org/fuse/fs"
	"github.com/sirupsen/logrus"

	"github.com/ambryfs/ambryfs-go/internal/session"
)

// FuseFS implements the fuse.FS interface
type FuseFS struct {
	filesystem *Filesystem
}

var _ fs.FS = (*FuseFS)(nil)
var _ fs.FSStatfser = (*FuseFS)(nil)

// NewFuseFS wraps filesystem for serving with bazil.org/fuse.
func NewFuseFS(filesystem *Filesystem) *FuseFS {
	return &FuseFS{filesystem: filesystem}
}

// Root returns the root directory
func (f *FuseFS) Root() (fs.Node, error) {
	return &Dir{filesystem: f.filesystem}, nil
}

// Statfs returns filesystem statistics
func (f *FuseFS) Statfs(ctx context.Context, req *fuse.StatfsRequest, resp *fuse.StatfsResponse) error {
	statfs, err := f.filesystem.Statfs(ctx)
	if err != nil {
		return err
	}
	resp.Blocks = statfs.Blocks
	resp.Bfree = statfs.Bfree
	resp.Bavail = statfs.Bavail
	resp.Files = statfs.Files
	resp.Ffree = statfs.Ffree
	resp.Bsize = uint32(statfs.Bsize)
	resp.Namelen = statfs.Namelen
	resp.Frsize = uint32(statfs.Bsize)
	return nil
}

// Dir is the root directory. The namespace is flat, so it is the only one.
type Dir struct {
	filesystem *Filesystem
}

var _ fs.Node = (*Dir)(nil)
var _ fs.NodeStringLookuper = (*Dir)(nil)
var _ fs.HandleReadDirAller = (*Dir)(nil)
var _ fs.NodeMkdirer = (*Dir)(nil)
var _ fs.NodeCreater = (*Dir)(nil)
var _ fs.NodeRemover = (*Dir)(nil)
var _ fs.NodeSetattrer = (*Dir)(nil)

// Attr returns directory attributes
func (d *Dir) Attr(ctx context.Context, a *fuse.Attr) error {
	attr, err := d.filesystem.GetAttr(ctx, "/")
	if err != nil {
		return err
	}
	fillAttr(a, attr)
	return nil
}

// Lookup probes the store for name
func (d *Dir) Lookup(ctx context.Context, name string) (fs.Node, error) {
	path := "/" + name
	if _, err := d.filesystem.GetAttr(ctx, path); err != nil {
		return nil, err
	}
	return &File{filesystem: d.filesystem, path: path}, nil
}

// ReadDirAll reads all directory entries
func (d *Dir) ReadDirAll(ctx context.Context) ([]fuse.Dirent, error) {
	entries, err := d.filesystem.ReadDir(ctx, "/")
	if err != nil {
		return nil, err
	}

	dirents := make([]fuse.Dirent, 0, len(entries))
	for _, entry := range entries {
		dirent := fuse.Dirent{Name: entry.Name, Type: fuse.DT_File}
		if entry.IsDir {
			dirent.Type = fuse.DT_Dir
		}
		dirents = append(dirents, dirent)
	}
	return dirents, nil
}

func (d *Dir) Mkdir(ctx context.Context, req *fuse.MkdirRequest) (fs.Node, error) {
	return nil, d.filesystem.fail("mkdir", "/"+req.Name, ErrReadOnly)
}

func (d *Dir) Create(ctx context.Context, req *fuse.CreateRequest, resp *fuse.CreateResponse) (fs.Node, fs.Handle, error) {
	return nil, nil, d.filesystem.Create(ctx, "/"+req.Name, req.Mode)
}

func (d *Dir) Setattr(ctx context.Context, req *fuse.SetattrRequest, resp *fuse.SetattrResponse) error {
	return setattr(ctx, d.filesystem, "/", req)
}

// Remove forwards unlink to the store. There are no subdirectories to rmdir.
func (d *Dir) Remove(ctx context.Context, req *fuse.RemoveRequest) error {
	if req.Dir {
		return syscall.ENOENT
	}
	return d.filesystem.Unlink(ctx, "/"+req.Name)
}

// File is a blob seen as a regular file
type File struct {
	filesystem *Filesystem
	path       string
}

var _ fs.Node = (*File)(nil)
var _ fs.NodeOpener = (*File)(nil)
var _ fs.NodeSetattrer = (*File)(nil)

// Attr probes the store; nothing is cached.
func (f *File) Attr(ctx context.Context, a *fuse.Attr) error {
	attr, err := f.filesystem.GetAttr(ctx, f.path)
	if err != nil {
		return err
	}
	fillAttr(a, attr)
	return nil
}

// Open allocates a read session for the file
func (f *File) Open(ctx context.Context, req *fuse.OpenRequest, resp *fuse.OpenResponse) (fs.Handle, error) {
	id, err := f.filesystem.Open(ctx, f.path)
	if err != nil {
		return nil, err
	}
	return &Handle{filesystem: f.filesystem, path: f.path, id: id}, nil
}

func (f *File) Setattr(ctx context.Context, req *fuse.SetattrRequest, resp *fuse.SetattrResponse) error {
	return setattr(ctx, f.filesystem, f.path, req)
}

// Handle is an open file, backed by one read session
type Handle struct {
	filesystem *Filesystem
	path       string
	id         session.HandleID
}

var _ fs.HandleReader = (*Handle)(nil)
var _ fs.HandleWriter = (*Handle)(nil)
var _ fs.HandleReleaser = (*Handle)(nil)

// Read reads file data
func (h *Handle) Read(ctx context.Context, req *fuse.ReadRequest, resp *fuse.ReadResponse) error {
	data, err := h.filesystem.Read(ctx, h.path, h.id, req.Offset, req.Size)
	if err != nil {
		return err
	}
	resp.Data = data
	return nil
}

func (h *Handle) Write(ctx context.Context, req *fuse.WriteRequest, resp *fuse.WriteResponse) error {
	return h.filesystem.Write(ctx, h.path, req.Data, req.Offset)
}

// Release drops the session's buffer
func (h *Handle) Release(ctx context.Context, req *fuse.ReleaseRequest) error {
	return h.filesystem.Release(ctx, h.id)
}

// setattr refuses every attribute change. Requests that change nothing,
// such as a bare handle flush, succeed.
func setattr(ctx context.Context, filesystem *Filesystem, path string, req *fuse.SetattrRequest) error {
	switch {
	case req.Valid.Size():
		return filesystem.Truncate(ctx, path, req.Size)
	case req.Valid.Mode():
		return filesystem.Chmod(ctx, path, req.Mode)
	case req.Valid.Uid() || req.Valid.Gid():
		return filesystem.Chown(ctx, path, req.Uid, req.Gid)
	case req.Valid.Atime() || req.Valid.Mtime() || req.Valid.AtimeNow() || req.Valid.MtimeNow():
		return filesystem.Utimens(ctx, path, req.Atime, req.Mtime)
	}
	return nil
}

func fillAttr(a *fuse.Attr, attr *Attr) {
	// Zero validity keeps the kernel from caching what the store says.
	a.Valid = 0
	a.Mode = attr.Mode
	a.Size = attr.Size
	a.Nlink = attr.Nlink
	a.Mtime = attr.Mtime
	a.Ctime = attr.Mtime
	a.Atime = attr.Mtime
	a.Uid = attr.Uid
	a.Gid = attr.Gid
	if !attr.Mode.IsDir() {
		a.Blocks = (attr.Size + 511) / 512
	}
}

// MountOptions contains options for mounting the filesystem
type MountOptions struct {
	AllowOther bool // Let users other than the mounter access the mount
	Debug      bool // Log every FUSE message at trace level
}

// Mount mounts filesystem at mountpoint and serves it until the mount goes
// away or ctx is done. All open sessions are closed before returning.
func Mount(ctx context.Context, mountpoint string, filesystem *Filesystem, options MountOptions) error {
	if info, err := os.Stat(mountpoint); err != nil {
		return fmt.Errorf("mountpoint %s: %w", mountpoint, err)
	} else if !info.IsDir() {
		return fmt.Errorf("mountpoint %s: %w", mountpoint, syscall.ENOTDIR)
	}

	mountOpts := []fuse.MountOption{
		fuse.FSName("ambryfs"),
		fuse.Subtype("ambryfs-go"),
	}
	if options.AllowOther {
		mountOpts = append(mountOpts, fuse.AllowOther())
	}

	c, err := fuse.Mount(mountpoint, mountOpts...)
	if err != nil {
		return fmt.Errorf("mount %s: %w", mountpoint, err)
	}
	defer c.Close()
	defer filesystem.Sessions().CloseAll()

	log := logrus.WithField("mountpoint", mountpoint)
	log.Info("mounted filesystem")

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			log.Info("unmounting")
			if err := fuse.Unmount(mountpoint); err != nil {
				log.WithError(err).Warn("unmount failed")
			}
		case <-done:
		}
	}()

	config := &fs.Config{}
	if options.Debug {
		config.Debug = func(msg interface{}) {
			logrus.WithField("component", "fuse").Trace(msg)
		}
	}

	if err := fs.New(c, config).Serve(NewFuseFS(filesystem)); err != nil {
		return fmt.Errorf("serve %s: %w", mountpoint, err)
	}
	log.Info("filesystem unmounted")
	return nil
}

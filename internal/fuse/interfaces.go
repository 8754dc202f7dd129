package fuse

// This file documents the bazil.org/fuse/fs interfaces implemented by ambryfs

/*
FUSE Interfaces

The mount is a single flat directory. Every name in it is a blob id; there
are no subdirectories, symlinks or extended attributes. Anything that would
add or change data answers EROFS, except unlink which is forwarded to the
store as DELETE.

For more information, see: https://pkg.go.dev/bazil.org/fuse/fs
*/

// ============================================================================
// Filesystem-Level Interfaces
// ============================================================================

/*
FS Interface - Root filesystem node
Implemented by: FuseFS

The root is synthetic; it never touches the store.

FSStatfser Interface - Filesystem statistics
Implemented by: FuseFS

The store exposes no capacity, so only Bsize and Namelen are set.
*/

// ============================================================================
// Directory Interfaces
// ============================================================================

/*
Node Interface
Implemented by: Dir, File

Dir reports os.ModeDir|0755 with two links. File probes the store with HEAD
on every call and reports 0644, one link and the probed size. Attr validity
is zero so the kernel asks again next time.

NodeStringLookuper Interface
Implemented by: Dir

Lookup probes the store. 404 and 410 become ENOENT.

HandleReadDirAller Interface
Implemented by: Dir

The store has no listing API; the root always reads as empty. Blobs are
still reachable by name.

NodeCreater, NodeMkdirer Interfaces
Implemented by: Dir

Always EROFS. Nothing is sent to the store.

NodeRemover Interface
Implemented by: Dir

unlink sends DELETE. Only 202 Accepted counts as success; 404/410 become
ENOENT and any other answer EIO. rmdir is ENOENT since no directories exist.
*/

// ============================================================================
// File and Handle Interfaces
// ============================================================================

/*
NodeOpener Interface
Implemented by: File

Open allocates a read session and returns it as a Handle. The store is not
contacted until the first read.

NodeSetattrer Interface
Implemented by: File

Always EROFS, so truncate and chmod fail loudly instead of being ignored.

HandleReader Interface
Implemented by: Handle

The first read on a handle fetches the whole blob with GET; later reads are
served from that buffer. A failed fetch is remembered and every later read
on the handle fails the same way.

HandleWriter Interface
Implemented by: Handle

Always EROFS.

HandleReleaser Interface
Implemented by: Handle

Drops the session and its buffer.
*/

package session

import (
	"sync"
	"time"

	"github.com/ambryfs/ambryfs-go/internal/blob"
)

// HandleID identifies one open file. IDs are never reused by a Manager.
type HandleID uint64

// State is the fetch progress of a session
type State int

const (
	StateEmpty State = iota
	StateFetched
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateFetched:
		return "fetched"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Session is the read state owned by one handle: the full blob body,
// fetched on first read and served until the handle is closed.
type Session struct {
	mu         sync.Mutex // serializes reads and the fetch on this handle
	id         HandleID
	path       blob.Path
	buf        []byte
	length     uint64
	state      State
	err        error // sticky fetch failure
	closed     bool
	openedAt   time.Time
	lastAccess time.Time
}

// Info is a snapshot of a session
type Info struct {
	Handle     HandleID
	Path       blob.Path
	State      State
	Length     uint64
	OpenedAt   time.Time
	LastAccess time.Time
}

func (s *Session) info() *Info {
	return &Info{
		Handle:     s.id,
		Path:       s.path,
		State:      s.state,
		Length:     s.length,
		OpenedAt:   s.openedAt,
		LastAccess: s.lastAccess,
	}
}

// release drops the buffer. Callers hold s.mu.
func (s *Session) release() {
	s.buf = nil
	s.closed = true
}

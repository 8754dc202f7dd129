package session

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ambryfs/ambryfs-go/internal/blob"
)

// Fetcher downloads a whole blob. *blob.Fetcher implements it.
type Fetcher interface {
	Fetch(ctx context.Context, path blob.Path) ([]byte, error)
}

var _ Fetcher = (*blob.Fetcher)(nil)

// Manager owns the handle table. Each open handle gets its own Session;
// sessions are never shared between handles, even for the same path.
type Manager struct {
	mu       sync.RWMutex
	sessions map[HandleID]*Session
	next     HandleID

	fetcher Fetcher
	fetches atomic.Uint64
}

// NewManager creates a session manager that fetches through fetcher.
func NewManager(fetcher Fetcher) *Manager {
	return &Manager{
		sessions: make(map[HandleID]*Session),
		fetcher:  fetcher,
	}
}

// Open allocates a session for path. Nothing is fetched until the first Read.
func (m *Manager) Open(path blob.Path) HandleID {
	now := time.Now()

	m.mu.Lock()
	m.next++
	id := m.next
	m.sessions[id] = &Session{
		id:         id,
		path:       path,
		state:      StateEmpty,
		openedAt:   now,
		lastAccess: now,
	}
	open := len(m.sessions)
	m.mu.Unlock()

	logrus.WithFields(logrus.Fields{"handle": id, "blob": path, "open_sessions": open}).Debug("session opened")
	return id
}

func (m *Manager) get(h HandleID) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[h]
	return s, ok
}

// Read returns up to maxLength bytes starting at offset. The first read on a
// handle fetches the whole blob; later reads are served from that buffer.
// Reading at or past the end returns an empty slice and no error.
func (m *Manager) Read(ctx context.Context, h HandleID, offset int64, maxLength int) ([]byte, error) {
	if offset < 0 || maxLength < 0 {
		return nil, fmt.Errorf("%w: offset %d length %d", ErrInvalidRange, offset, maxLength)
	}

	s, ok := m.get(h)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownHandle, h)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, fmt.Errorf("%w: %d", ErrUnknownHandle, h)
	}
	s.lastAccess = time.Now()

	switch s.state {
	case StateFailed:
		return nil, s.err
	case StateEmpty:
		if err := m.fetch(ctx, s); err != nil {
			return nil, err
		}
	}

	if uint64(offset) >= s.length {
		return []byte{}, nil
	}
	n := s.length - uint64(offset)
	if uint64(maxLength) < n {
		n = uint64(maxLength)
	}
	out := make([]byte, n)
	copy(out, s.buf[offset:uint64(offset)+n])
	return out, nil
}

// fetch moves s out of StateEmpty. Callers hold s.mu.
func (m *Manager) fetch(ctx context.Context, s *Session) error {
	log := logrus.WithFields(logrus.Fields{"handle": s.id, "blob": s.path})
	m.fetches.Add(1)

	// A fetch that has been issued runs to completion even if the
	// originating request is interrupted.
	body, err := m.fetcher.Fetch(context.WithoutCancel(ctx), s.path)
	if err != nil {
		s.state = StateFailed
		s.err = &ReadError{Handle: s.id, Path: s.path, Err: err}
		log.WithError(err).Warn("session fetch failed")
		return s.err
	}

	s.buf = body
	s.length = uint64(len(body))
	s.state = StateFetched
	log.WithField("length", s.length).Debug("session fetched")
	return nil
}

// Close releases the session for h. Closing an unknown or already closed
// handle is a no-op.
func (m *Manager) Close(h HandleID) {
	m.mu.Lock()
	s, ok := m.sessions[h]
	delete(m.sessions, h)
	m.mu.Unlock()
	if !ok {
		return
	}

	s.mu.Lock()
	info := s.info()
	s.release()
	s.mu.Unlock()

	now := time.Now()
	logrus.WithFields(logrus.Fields{
		"handle":   h,
		"blob":     info.Path,
		"state":    info.State,
		"length":   info.Length,
		"open_for": now.Sub(info.OpenedAt),
		"idle_for": now.Sub(info.LastAccess),
	}).Debug("session closed")
}

// CloseAll releases every session.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[HandleID]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.mu.Lock()
		s.release()
		s.mu.Unlock()
	}
}

// GetInfo returns a snapshot of the session for h.
func (m *Manager) GetInfo(h HandleID) (*Info, bool) {
	s, ok := m.get(h)
	if !ok {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.info(), true
}

// Len returns the number of open sessions
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Fetches returns how many fetches have been issued since creation.
func (m *Manager) Fetches() uint64 {
	return m.fetches.Load()
}

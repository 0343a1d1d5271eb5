package pipeline

import (
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/dgallion1/docdraft/internal/parser"
)

var (
	// ErrSessionNotFound is returned for unknown or expired sessions.
	ErrSessionNotFound = eris.New("session not found")
	// ErrDuplicateFile is returned when a session already holds a file of the same name.
	ErrDuplicateFile = eris.New("file already uploaded")
)

// Session is a set of uploaded files staged in a temporary directory.
type Session struct {
	mu sync.Mutex

	ID        string    `json:"session_id"`
	Dir       string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	paths []string
	infos []string
}

// AddFile stores an upload under its base name. info may be empty. A name
// already present in the session is rejected and the stored file is kept.
func (s *Session) AddFile(name string, r io.Reader, info string) (string, error) {
	name = filepath.Base(name)
	if name == "." || name == string(filepath.Separator) {
		return "", eris.New("empty file name")
	}
	if !parser.IsSupportedExtension(name) {
		return "", eris.Wrapf(parser.ErrUnsupported, "%s", name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.Dir, name)
	for _, p := range s.paths {
		if p == path {
			return "", eris.Wrapf(ErrDuplicateFile, "%s", name)
		}
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", eris.Wrapf(err, "create %s", name)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", eris.Wrapf(err, "write %s", name)
	}
	if err := f.Close(); err != nil {
		return "", eris.Wrapf(err, "close %s", name)
	}

	s.paths = append(s.paths, path)
	s.infos = append(s.infos, info)
	s.UpdatedAt = time.Now()
	return path, nil
}

// Files returns the stored paths and their infos, index-aligned.
func (s *Session) Files() (paths, infos []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.paths...), append([]string(nil), s.infos...)
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.UpdatedAt = now
}

func (s *Session) lastUsed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.UpdatedAt
}

// SessionStore is a thread-safe in-memory session registry with TTL
// eviction. Expired sessions are removed lazily on access.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	baseDir  string
	now      func() time.Time
}

// NewSessionStore creates a registry whose temp dirs live under baseDir
// (the system temp dir when empty).
func NewSessionStore(ttl time.Duration, baseDir string) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		baseDir:  baseDir,
		now:      time.Now,
	}
}

// Create registers a new session with its own temp dir.
func (s *SessionStore) Create() (*Session, error) {
	id := uuid.NewString()
	dir, err := os.MkdirTemp(s.baseDir, "docdraft-"+id[:8]+"-")
	if err != nil {
		return nil, eris.Wrap(err, "create session dir")
	}
	now := s.now()
	sess := &Session{ID: id, Dir: dir, CreatedAt: now, UpdatedAt: now}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictLocked()
	s.sessions[id] = sess
	return sess, nil
}

// Get returns a live session and refreshes its TTL.
func (s *SessionStore) Get(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictLocked()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	sess.touch(s.now())
	return sess, nil
}

// Delete removes a session and its temp dir.
func (s *SessionStore) Delete(id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	return eris.Wrap(os.RemoveAll(sess.Dir), "remove session dir")
}

// Len returns the number of registered sessions.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *SessionStore) evictLocked() {
	now := s.now()
	for id, sess := range s.sessions {
		if now.Sub(sess.lastUsed()) > s.ttl {
			os.RemoveAll(sess.Dir)
			delete(s.sessions, id)
		}
	}
}

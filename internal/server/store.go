package server

import (
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"go-call-tracker/internal/runner"
)

// ErrNoSession is returned by Store.Get for an unknown or evicted session id.
var ErrNoSession = errors.New("no such session")

// Store keeps the most recently used traces by session id. Once full, adding
// a trace evicts the least recently read or written one.
type Store struct {
	traces *lru.Cache[uuid.UUID, *runner.Trace]
}

// NewStore returns an empty store holding at most size traces.
func NewStore(size int) (*Store, error) {
	if size <= 0 {
		return nil, errors.Newf("store size must be positive, got %d", size)
	}
	c, err := lru.New[uuid.UUID, *runner.Trace](size)
	if err != nil {
		return nil, errors.Wrap(err, "creating trace cache")
	}
	return &Store{traces: c}, nil
}

// Put stores t under t.ID.
func (s *Store) Put(t *runner.Trace) {
	s.traces.Add(t.ID, t)
}

// Get returns the trace stored under id.
func (s *Store) Get(id string) (*runner.Trace, error) {
	key, err := uuid.Parse(id)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid session id %q", id)
	}
	t, ok := s.traces.Get(key)
	if !ok {
		return nil, errors.Wrapf(ErrNoSession, "%s", id)
	}
	return t, nil
}

// Len returns the number of stored traces.
func (s *Store) Len() int {
	return s.traces.Len()
}

package memory

import (
	"sync/atomic"

	"github.com/askcampus/askcampus/internal/core/ports"
)

// Store holds the active Snapshot behind an atomic pointer. Readers grab the
// current snapshot once and run their whole query against it; Swap installs
// a replacement without disturbing readers that already hold the old one.
type Store struct {
	current atomic.Pointer[Snapshot]
}

func NewStore() *Store {
	s := &Store{}
	s.current.Store(Build(nil, ""))
	return s
}

func (s *Store) Snapshot() ports.IndexSnapshot {
	return s.current.Load()
}

func (s *Store) Swap(snapshot *Snapshot) {
	if snapshot == nil {
		return
	}
	s.current.Store(snapshot)
}

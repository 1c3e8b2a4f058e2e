package resource

import (
	"errors"
	"sync"
)

var (
	ErrClosed            = errors.New("resource table closed")
	ErrOutstandingBorrow = errors.New("cannot drop resource with outstanding borrows")
)

// slots stores entries by handle with a free list for reuse.
type slots struct {
	entries  []entry
	freeList []Handle
	mu       sync.RWMutex
	closed   bool
}

type entry struct {
	value   any
	borrows uint32
	kind    Kind
	valid   bool
}

func newSlots() *slots {
	return &slots{
		entries:  make([]entry, 0, 16),
		freeList: make([]Handle, 0, 8),
	}
}

// lookup returns the live entry for handle. Callers hold mu.
func (s *slots) lookup(handle Handle) *entry {
	if handle == 0 || int(handle) > len(s.entries) {
		return nil
	}
	e := &s.entries[handle-1]
	if !e.valid {
		return nil
	}
	return e
}

func (s *slots) create(kind Kind, value any) (Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrClosed
	}

	e := entry{kind: kind, value: value, valid: true}
	if n := len(s.freeList); n > 0 {
		handle := s.freeList[n-1]
		s.freeList = s.freeList[:n-1]
		s.entries[handle-1] = e
		return handle, nil
	}
	s.entries = append(s.entries, e)
	return Handle(len(s.entries)), nil
}

func (s *slots) get(handle Handle) (any, Kind, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e := s.lookup(handle)
	if e == nil {
		return nil, 0, false
	}
	return e.value, e.kind, true
}

func (s *slots) drop(handle Handle) (any, Kind, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.lookup(handle)
	if e == nil {
		return nil, 0, errInvalidHandle
	}
	if e.borrows > 0 {
		return nil, 0, ErrOutstandingBorrow
	}
	value, kind := e.value, e.kind
	*e = entry{}
	s.freeList = append(s.freeList, handle)
	return value, kind, nil
}

func (s *slots) borrow(handle Handle, delta int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.lookup(handle)
	if e == nil {
		return false
	}
	if delta < 0 {
		if e.borrows == 0 {
			return false
		}
		e.borrows--
		return true
	}
	e.borrows++
	return true
}

func (s *slots) len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries) - len(s.freeList)
}

func (s *slots) handles() []Handle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Handle
	for i, e := range s.entries {
		if e.valid {
			out = append(out, Handle(i+1))
		}
	}
	return out
}

// close marks the table closed and returns every live value.
func (s *slots) close() []any {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	var values []any
	for _, e := range s.entries {
		if e.valid {
			values = append(values, e.value)
		}
	}
	s.entries = nil
	s.freeList = nil
	return values
}

var errInvalidHandle = errors.New("invalid resource handle")

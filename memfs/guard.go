package memfs

import (
	"fmt"
	"sync"
	"sync/atomic"
)

var invariantsCheck atomic.Bool

// EnableInvariantsCheck makes every guard run its node's invariant check on
// acquire and release. Intended for tests.
func EnableInvariantsCheck() {
	invariantsCheck.Store(true)
}

// guard enforces single-writer/multi-reader access to one node's mutable state.
// It never blocks: a conflicting acquire panics.
type guard struct {
	mu    sync.RWMutex
	name  string
	check func()
}

func newGuard(name string, check func()) guard {
	return guard{name: name, check: check}
}

func (g *guard) shared() (release func()) {
	if !g.mu.TryRLock() {
		panic(fmt.Sprintf("memfs: %s is exclusively held", g.name))
	}
	g.runCheck()
	return func() {
		g.runCheck()
		g.mu.RUnlock()
	}
}

func (g *guard) exclusive() (release func()) {
	if !g.mu.TryLock() {
		panic(fmt.Sprintf("memfs: %s is already in use", g.name))
	}
	g.runCheck()
	return func() {
		g.runCheck()
		g.mu.Unlock()
	}
}

func (g *guard) runCheck() {
	if g.check != nil && invariantsCheck.Load() {
		g.check()
	}
}

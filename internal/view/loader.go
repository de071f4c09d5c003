package view

import "sync"

// Loader tracks the load in flight for a view. Starting a new load supersedes
// the previous one; results of superseded loads must be dropped.
type Loader struct {
	mu      sync.Mutex
	gen     uint64
	pending bool
}

// Begin starts a load and returns its token.
func (l *Loader) Begin() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.gen++
	l.pending = true
	return l.gen
}

// Finish ends the load identified by token and reports whether it is still
// the current one. apply runs under the loader lock only when it is.
func (l *Loader) Finish(token uint64, apply func()) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if token != l.gen {
		return false
	}
	l.pending = false
	if apply != nil {
		apply()
	}
	return true
}

func (l *Loader) Pending() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pending
}

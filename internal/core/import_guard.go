package core

// import_guard.go implements the busy flag and concurrency cap for imports.
//
// Each owner may run one import at a time; a second attempt fails at once
// with ErrImportInProgress rather than queueing. Across owners a semaphore
// caps parallel imports; when every slot is taken new imports wait up to
// maxWait before failing with ErrTooManyImports.
//
// A semaphore.Weighted holds the slots; the active counter only feeds
// status reporting.

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
)

// DefaultMaxConcurrentImports is the default limit for parallel imports.
const DefaultMaxConcurrentImports = 4

// DefaultMaxWaitTime is how long to wait for a slot before rejecting.
const DefaultMaxWaitTime = 10 * time.Second

// ImportGuard tracks running imports per owner and limits them globally.
type ImportGuard struct {
	slots   *semaphore.Weighted
	size    int64
	active  atomic.Int64
	maxWait time.Duration

	mu   sync.Mutex
	busy map[string]struct{}
}

// NewImportGuard creates a guard allowing maxConcurrent imports at once.
func NewImportGuard(maxConcurrent int, maxWait time.Duration) *ImportGuard {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentImports
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}

	return &ImportGuard{
		slots:   semaphore.NewWeighted(int64(maxConcurrent)),
		size:    int64(maxConcurrent),
		maxWait: maxWait,
		busy:    make(map[string]struct{}),
	}
}

// Acquire marks owner busy and takes a slot.
// The caller MUST call the returned release func exactly once on success.
func (g *ImportGuard) Acquire(ctx context.Context, owner string) (release func(), err error) {
	g.mu.Lock()
	if _, running := g.busy[owner]; running {
		g.mu.Unlock()
		return nil, ErrImportInProgress
	}
	g.busy[owner] = struct{}{}
	g.mu.Unlock()

	waitCtx, cancel := context.WithTimeout(ctx, g.maxWait)
	defer cancel()

	if err := g.slots.Acquire(waitCtx, 1); err != nil {
		g.clear(owner)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, ErrTooManyImports
	}
	g.active.Add(1)

	var once sync.Once
	return func() {
		once.Do(func() {
			g.active.Add(-1)
			g.slots.Release(1)
			g.clear(owner)
		})
	}, nil
}

func (g *ImportGuard) clear(owner string) {
	g.mu.Lock()
	delete(g.busy, owner)
	g.mu.Unlock()
}

// Busy reports whether owner has an import running.
func (g *ImportGuard) Busy(owner string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.busy[owner]
	return ok
}

// ActiveCount returns the number of imports holding a slot.
func (g *ImportGuard) ActiveCount() int {
	return int(g.active.Load())
}

// WaitForDrain blocks until no import holds a slot or ctx is done.
// Imports arriving meanwhile queue behind it. Used for graceful shutdown.
func (g *ImportGuard) WaitForDrain(ctx context.Context) error {
	if err := g.slots.Acquire(ctx, g.size); err != nil {
		return err
	}
	g.slots.Release(g.size)
	return nil
}

// ImportGuardStatus is a snapshot of the guard's state.
type ImportGuardStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"max_concurrent"`
}

// Status returns the current guard state for monitoring.
func (g *ImportGuard) Status() ImportGuardStatus {
	active := g.ActiveCount()
	return ImportGuardStatus{
		Active:        active,
		Available:     int(g.size) - active,
		MaxConcurrent: int(g.size),
	}
}

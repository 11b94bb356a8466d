package serial

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/semaphore"
)

// ErrPortBusy means another operation (upload or monitor session)
// already holds exclusive access to the port.
var ErrPortBusy = errors.New("serial port busy")

// ErrPermissionDenied means the OS refused access to the serial device
// node. Retrying without a permission fix cannot succeed, so it is
// surfaced immediately and never retried.
var ErrPermissionDenied = errors.New("serial port permission denied")

// PortLocks provides per-port mutual exclusion. A serial port is the
// only contended resource in the system: an upload and a monitor session
// must never interleave on the same device, while unrelated ports must
// never block each other. Locks are keyed by device path and created on
// first use.
type PortLocks struct {
	mu   sync.Mutex
	sems map[string]*semaphore.Weighted
}

// NewPortLocks returns an empty lock map.
func NewPortLocks() *PortLocks {
	return &PortLocks{sems: make(map[string]*semaphore.Weighted)}
}

func (l *PortLocks) sem(port string) *semaphore.Weighted {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.sems[port]
	if !ok {
		s = semaphore.NewWeighted(1)
		l.sems[port] = s
	}
	return s
}

// TryAcquire takes the port lock without blocking and reports whether it
// succeeded.
func (l *PortLocks) TryAcquire(port string) bool {
	return l.sem(port).TryAcquire(1)
}

// Acquire blocks until the port lock is available or the context is
// done. A context ending while waiting surfaces as ErrPortBusy wrapping
// the context error.
func (l *PortLocks) Acquire(ctx context.Context, port string) error {
	if err := l.sem(port).Acquire(ctx, 1); err != nil {
		return errors.Join(ErrPortBusy, err)
	}
	return nil
}

// Release gives the port lock back. Must follow a successful acquire.
func (l *PortLocks) Release(port string) {
	l.sem(port).Release(1)
}

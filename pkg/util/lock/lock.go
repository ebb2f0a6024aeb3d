package lock

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

var ErrTimeout = errors.New("lock timeout")

// Mutex is a mutual exclusion lock which can give up waiting.
// The zero value is not usable, create it with NewMutex.
type Mutex struct {
	sem chan struct{}
}

func NewMutex() *Mutex {
	return &Mutex{
		sem: make(chan struct{}, 1),
	}
}

// Lock waits for the lock at most timeout or until the context is done.
// Non-positive timeout means a single attempt.
func (a *Mutex) Lock(ctx context.Context, timeout time.Duration) error {
	select {
	case a.sem <- struct{}{}:
		return nil
	default:
	}
	if timeout <= 0 {
		return ErrTimeout
	}
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case a.sem <- struct{}{}:
		return nil
	case <-t.C:
		return ErrTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *Mutex) Unlock() {
	select {
	case <-a.sem:
	default:
		panic("lock: unlock of unlocked mutex")
	}
}

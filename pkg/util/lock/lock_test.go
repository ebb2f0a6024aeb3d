package lock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMutex_Lock1(t *testing.T) {
	defer goleak.VerifyNone(t)
	l := NewMutex()
	require.NoError(t, l.Lock(context.Background(), time.Millisecond))
	require.ErrorIs(t, l.Lock(context.Background(), time.Millisecond), ErrTimeout)
}

func TestMutex_Lock2(t *testing.T) {
	l := NewMutex()
	require.NoError(t, l.Lock(context.Background(), time.Millisecond))
	l.Unlock()
	require.NoError(t, l.Lock(context.Background(), 0))
}

func TestMutex_LockWaits(t *testing.T) {
	defer goleak.VerifyNone(t)
	l := NewMutex()
	require.NoError(t, l.Lock(context.Background(), time.Millisecond))
	done := make(chan struct{})
	go func() {
		defer close(done)
		time.Sleep(10 * time.Millisecond)
		l.Unlock()
	}()
	require.NoError(t, l.Lock(context.Background(), 5*time.Second))
	<-done
}

func TestMutex_LockCanceled(t *testing.T) {
	l := NewMutex()
	require.NoError(t, l.Lock(context.Background(), 0))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, l.Lock(ctx, time.Minute), context.Canceled)
}

func TestMutex_UnlockUnlocked(t *testing.T) {
	require.Panics(t, func() { NewMutex().Unlock() })
}

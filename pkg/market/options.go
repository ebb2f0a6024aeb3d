package market

import (
	"log/slog"
	"time"
)

const DefaultLockTimeout = 5 * time.Second

type Option func(*Ledger)

// WithLockTimeout sets how long an operation waits for the previous one to finish
// before failing with errs.ErrLedgerBusy.
func WithLockTimeout(d time.Duration) Option {
	return func(l *Ledger) {
		l.lockTimeout = d
	}
}

func WithNotifier(n Notifier) Option {
	return func(l *Ledger) {
		if n != nil {
			l.notifier = n
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithClock replaces the source of event timestamps.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		if now != nil {
			l.now = now
		}
	}
}

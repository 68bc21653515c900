package source

import (
	"sync"
	"time"
)

// quotaWindow tracks one fixed window (hour or day)
type quotaWindow struct {
	count   int
	resetAt time.Time // Zero until the cap is first hit
}

// quotaLimiter enforces per-adapter hourly/daily request caps. Windows
// reset lazily on the next request after the deadline passes; there is
// no background timer. The limiter is local to one process and makes
// no attempt to coordinate across processes.
type quotaLimiter struct {
	mu      sync.Mutex
	server  string
	perHour int // 0 = uncapped
	perDay  int
	hour    quotaWindow
	day     quotaWindow
	now     func() time.Time
}

func newQuotaLimiter(server string, perHour, perDay int) *quotaLimiter {
	return &quotaLimiter{
		server:  server,
		perHour: perHour,
		perDay:  perDay,
		now:     time.Now,
	}
}

// Acquire checks both windows and records the request. Returns a
// *RateLimitError carrying the reset deadline when a cap is exhausted;
// in that case the request is not counted.
func (l *quotaLimiter) Acquire() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.hour.maybeReset(now)
	l.day.maybeReset(now)

	if err := l.hour.check(now, l.perHour, time.Hour, l.server, "hour"); err != nil {
		return err
	}
	if err := l.day.check(now, l.perDay, 24*time.Hour, l.server, "day"); err != nil {
		return err
	}

	l.hour.count++
	l.day.count++
	return nil
}

// Remaining returns how many requests are left in the tighter window
// and the earliest pending reset deadline. The remaining pointer is nil
// when both windows are uncapped.
func (l *quotaLimiter) Remaining() (*int, *time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.hour.maybeReset(now)
	l.day.maybeReset(now)

	var remaining *int
	if l.perHour > 0 {
		r := l.perHour - l.hour.count
		if r < 0 {
			r = 0
		}
		remaining = &r
	}
	if l.perDay > 0 {
		r := l.perDay - l.day.count
		if r < 0 {
			r = 0
		}
		if remaining == nil || r < *remaining {
			remaining = &r
		}
	}

	var resetAt *time.Time
	for _, w := range []quotaWindow{l.hour, l.day} {
		if !w.resetAt.IsZero() {
			if resetAt == nil || w.resetAt.Before(*resetAt) {
				t := w.resetAt
				resetAt = &t
			}
		}
	}

	return remaining, resetAt
}

func (w *quotaWindow) maybeReset(now time.Time) {
	if !w.resetAt.IsZero() && !now.Before(w.resetAt) {
		w.count = 0
		w.resetAt = time.Time{}
	}
}

func (w *quotaWindow) check(now time.Time, limit int, span time.Duration, server, window string) error {
	if limit <= 0 || w.count < limit {
		return nil
	}
	if w.resetAt.IsZero() {
		w.resetAt = now.Add(span)
	}
	return &RateLimitError{
		Server:  server,
		Window:  window,
		Limit:   limit,
		ResetAt: w.resetAt,
	}
}

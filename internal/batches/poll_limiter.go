package batches

import (
	"math"
	"sync"
	"time"
)

const pollLimitWindow = 1 * time.Second

// pollLimiter throttles progress polls per (client, job).
type pollLimiter struct {
	mu      sync.Mutex
	lastHit map[string]time.Time
	now     func() time.Time
	window  time.Duration
}

func newPollLimiter(window time.Duration, now func() time.Time) *pollLimiter {
	if now == nil {
		now = time.Now
	}
	if window <= 0 {
		window = pollLimitWindow
	}
	return &pollLimiter{
		lastHit: make(map[string]time.Time),
		now:     now,
		window:  window,
	}
}

func (l *pollLimiter) Allow(clientID, jobID string) bool {
	if l == nil {
		return true
	}
	key := clientID + "|" + jobID
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()
	if last, ok := l.lastHit[key]; ok {
		if now.Sub(last) < l.window {
			return false
		}
	}
	l.lastHit[key] = now
	l.pruneLocked(now)
	return true
}

// pruneLocked drops entries old enough to never block again.
func (l *pollLimiter) pruneLocked(now time.Time) {
	if len(l.lastHit) < 1024 {
		return
	}
	for key, last := range l.lastHit {
		if now.Sub(last) >= l.window {
			delete(l.lastHit, key)
		}
	}
}

func (l *pollLimiter) RetryAfterSeconds() int {
	if l == nil {
		return int(pollLimitWindow.Seconds())
	}
	return int(math.Ceil(l.window.Seconds()))
}

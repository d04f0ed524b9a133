// retry.go re-runs kv writes that trip over a transient lock. The
// busy_timeout pragma absorbs most contention at the connection level,
// but WAL mode can still surface a busy or locked report under
// concurrent writers, and for this single-table workload those are the
// only errors that resolve on retry.
package storage

import (
	"math/rand"
	"strings"
	"time"
)

// retryPolicy is the backoff schedule for write retries.
type retryPolicy struct {
	attempts int
	base     time.Duration
	cap      time.Duration
}

// writeRetry is applied to every kv write.
var writeRetry = retryPolicy{
	attempts: 3,
	base:     50 * time.Millisecond,
	cap:      500 * time.Millisecond,
}

// lockErrMarkers match SQLITE_BUSY (5) and SQLITE_LOCKED (6), the two
// results a kv upsert or delete can hit that clear on their own.
// Constraint, schema and I/O failures are permanent here and retrying
// them would only mask the bug.
var lockErrMarkers = []string{
	"SQLITE_BUSY",
	"SQLITE_LOCKED",
	"database is locked",
	"database table is locked",
}

func isLockErr(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, marker := range lockErrMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// run executes fn, sleeping between attempts on lock errors. Any other
// error returns immediately.
func (p retryPolicy) run(fn func() error) error {
	var lastErr error
	for attempt := 0; attempt <= p.attempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !isLockErr(lastErr) {
			return lastErr
		}
		if attempt < p.attempts {
			time.Sleep(p.delay(attempt))
		}
	}
	return lastErr
}

// delay doubles the base per attempt up to the cap, with jitter in
// [0, base) so stacked writers do not wake in lockstep.
func (p retryPolicy) delay(attempt int) time.Duration {
	d := p.base << uint(attempt)
	if d > p.cap {
		d = p.cap
	}
	return d + time.Duration(rand.Int63n(int64(p.base)))
}

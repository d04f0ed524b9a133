package audio

import (
	"sync"
	"time"
)

// defaultDebounce is the window within which rapid track selections
// collapse to a single load of the last pick.
const defaultDebounce = 500 * time.Millisecond

// loader debounces track loads. Each selection bumps a generation
// counter; when the window elapses only the newest generation fires,
// and anything superseded in the meantime is silently discarded. The
// pending timer is an explicit handle, cancelled on every new
// selection rather than left to race.
type loader struct {
	mu      sync.Mutex
	window  time.Duration
	gen     uint64
	pending *time.Timer
	fire    func(url string, gen uint64)
}

func newLoader(window time.Duration, fire func(url string, gen uint64)) *loader {
	if window <= 0 {
		window = defaultDebounce
	}
	return &loader{window: window, fire: fire}
}

// request schedules url for loading after the debounce window,
// superseding any selection still waiting.
func (l *loader) request(url string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.gen++
	gen := l.gen
	if l.pending != nil {
		l.pending.Stop()
	}
	l.pending = time.AfterFunc(l.window, func() {
		l.mu.Lock()
		current := l.gen == gen
		l.mu.Unlock()
		if current {
			l.fire(url, gen)
		}
	})
}

// current reports whether gen is still the newest request, for guards
// on completion callbacks arriving after a newer selection.
func (l *loader) current(gen uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.gen == gen
}

// cancel drops any pending request.
func (l *loader) cancel() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.pending != nil {
		l.pending.Stop()
		l.pending = nil
	}
	l.gen++
}

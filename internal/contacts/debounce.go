package contacts

import (
	"context"
	"sync"
	"time"

	"github.com/and161185/phonebook/internal/model"
)

// SearchDebounce is how long free-text input must stay idle before a search
// fetch fires. Debouncing only thins out in-flight requests; response
// ordering is still enforced by the fetch sequence guard.
const SearchDebounce = 500 * time.Millisecond

type debouncer struct {
	mu    sync.Mutex
	timer *time.Timer
}

// schedule (re)arms the timer; a pending fire is cancelled first.
func (d *debouncer) schedule(delay time.Duration, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(delay, fn)
}

// stop cancels a pending fire, if any.
func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// SetSearchTerm records the term (resetting to page 1) and schedules a fetch
// after SearchDebounce of inactivity. Each call rearms the timer, so only the
// final term of a burst reaches the network.
func (s *Store) SetSearchTerm(ctx context.Context, term string) {
	s.SetQuery(model.QueryPatch{SearchTerm: &term})
	s.search.schedule(SearchDebounce, func() {
		// The fetch snapshots the query at fire time; a newer fetch issued
		// meanwhile wins via the sequence guard.
		_ = s.Fetch(ctx)
	})
}

// Close cancels any pending debounced fetch. Call on consumer teardown so a
// dangling timer cannot fire into a dead store.
func (s *Store) Close() {
	s.search.stop()
}

package contacts

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func searchRequests(f *fakeContactServer) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var hits []string
	for _, r := range f.requests {
		if strings.Contains(r, "/contact/search/") {
			hits = append(hits, r)
		}
	}
	return hits
}

func TestSetSearchTerm_DebouncesBursts(t *testing.T) {
	t.Parallel()

	f := newFakeContactServer()
	s := newTestStore(t, f)
	ctx := context.Background()

	// Three keystrokes in quick succession; only the last survives the window.
	s.SetSearchTerm(ctx, "a")
	s.SetSearchTerm(ctx, "al")
	s.SetSearchTerm(ctx, "ali")

	require.Eventually(t, func() bool {
		return len(searchRequests(f)) >= 1
	}, 2*time.Second, 20*time.Millisecond)
	// Let any extra (buggy) fires land before counting.
	time.Sleep(2 * SearchDebounce)

	reqs := searchRequests(f)
	require.Len(t, reqs, 1, "a burst of keystrokes costs one request")
	assert.Contains(t, reqs[0], "/contact/search/ali")

	st := s.Snapshot()
	assert.Equal(t, "ali", st.Query.SearchTerm)
	assert.Equal(t, 1, st.Query.Page, "a new search starts on page 1")
}

func TestClose_CancelsPendingSearch(t *testing.T) {
	t.Parallel()

	f := newFakeContactServer()
	s := newTestStore(t, f)

	s.SetSearchTerm(context.Background(), "ali")
	s.Close()

	time.Sleep(2 * SearchDebounce)
	assert.Empty(t, searchRequests(f), "teardown must cancel the dangling fetch")
}

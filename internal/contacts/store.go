// Package contacts owns the paginated, filterable, searchable contact list:
// its query, loading status, and mutation-triggered refreshes. Responses of
// superseded fetches are discarded so the list always reflects the newest
// query.
package contacts

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/and161185/phonebook/internal/api"
	"github.com/and161185/phonebook/internal/model"
	"github.com/and161185/phonebook/internal/session"
)

// Status is the list lifecycle state.
type Status int

const (
	Idle Status = iota
	Loading
	Ready
	Failed
)

func (s Status) String() string {
	switch s {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "error"
	default:
		return "idle"
	}
}

// State is a point-in-time snapshot of the list. Items are replaced wholesale
// on every fetch; an error state never shows stale items.
type State struct {
	Items      []model.Contact
	Query      model.Query
	TotalCount int
	TotalPages int
	Status     Status
	Err        string
}

// Store is the contacts query state container.
type Store struct {
	api  *api.Client
	sess *session.Store
	log  *zap.Logger

	mu    sync.Mutex
	state State
	// fetchSeq tags each fetch; a response is applied only while its tag is
	// still the newest, so an older in-flight response can never overwrite a
	// newer request's result.
	fetchSeq uint64

	search debouncer
}

// New creates an idle store over the default query (page 1, limit 10).
func New(client *api.Client, sess *session.Store, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Store{api: client, sess: sess, log: log, state: State{Query: model.DefaultQuery()}}
	return s
}

// Snapshot returns the current list state by value. The items slice is copied
// so callers cannot mutate store state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	st.Items = append([]model.Contact(nil), s.state.Items...)
	return st
}

// SetQuery merges the patch into the current query without fetching. Any
// change other than a pure page change resets the page to 1.
func (s *Store) SetQuery(p model.QueryPatch) model.Query {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Query = p.Apply(s.state.Query)
	return s.state.Query
}

// Fetch loads the page described by the current query through the auth-retry
// policy. Endpoint precedence: search, then label filter, then the plain
// list; search and label combine when both are set and the server intersects
// them. Success replaces the list wholesale; failure clears it.
func (s *Store) Fetch(ctx context.Context) error {
	s.mu.Lock()
	s.fetchSeq++
	seq := s.fetchSeq
	q := s.state.Query
	s.state.Status = Loading
	s.state.Err = ""
	s.mu.Unlock()

	page, err := session.Do(ctx, s.sess, func(ctx context.Context) (*model.Page, error) {
		return s.fetchPage(ctx, q)
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.fetchSeq {
		// A newer fetch has been issued; this response is stale either way.
		s.log.Debug("discarding stale fetch response",
			zap.Uint64("seq", seq), zap.Uint64("latest", s.fetchSeq))
		return nil
	}

	if err != nil {
		s.state.Items = nil
		s.state.TotalCount = 0
		s.state.TotalPages = 1
		s.state.Status = Failed
		s.state.Err = err.Error()
		return err
	}

	s.state.Items = page.Contacts
	s.state.TotalCount = page.TotalCount
	s.state.TotalPages = page.TotalPages
	if s.state.TotalPages < 1 {
		s.state.TotalPages = 1
	}
	if page.CurrentPage > 0 {
		s.state.Query.Page = page.CurrentPage
	}
	if page.Limit > 0 {
		s.state.Query.Limit = page.Limit
	}
	s.state.Status = Ready
	return nil
}

// fetchPage resolves the endpoint for the query and performs the call.
func (s *Store) fetchPage(ctx context.Context, q model.Query) (*model.Page, error) {
	switch {
	case q.SearchTerm != "":
		return s.api.SearchContacts(ctx, q.SearchTerm, q.Label, q.Page, q.Limit)
	case q.Filtered():
		return s.api.ContactsByLabel(ctx, q.Label, q.Page, q.Limit)
	default:
		return s.api.ListContacts(ctx, q.Page, q.Limit)
	}
}

// Create validates the input, registers the contact and re-fetches the
// current view so the visible page reflects the server.
func (s *Store) Create(ctx context.Context, in model.ContactInput) (*model.Contact, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	created, err := session.Do(ctx, s.sess, func(ctx context.Context) (*model.Contact, error) {
		return s.api.CreateContact(ctx, in)
	})
	if err != nil {
		s.recordError(err)
		return nil, err
	}
	if ferr := s.Fetch(ctx); ferr != nil {
		s.log.Warn("refresh after create failed", zap.Error(ferr))
	}
	return created, nil
}

// Update validates id and input, updates the contact and re-fetches the
// current view, keeping the user's place (same page, filter and search).
func (s *Store) Update(ctx context.Context, id string, in model.ContactInput) (*model.Contact, error) {
	if err := model.ValidateContactID(id); err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	updated, err := session.Do(ctx, s.sess, func(ctx context.Context) (*model.Contact, error) {
		return s.api.UpdateContact(ctx, id, in)
	})
	if err != nil {
		s.recordError(err)
		return nil, err
	}

	s.mu.Lock()
	for i := range s.state.Items {
		if s.state.Items[i].ID == updated.ID {
			s.state.Items[i] = *updated
		}
	}
	s.mu.Unlock()

	if ferr := s.Fetch(ctx); ferr != nil {
		s.log.Warn("refresh after update failed", zap.Error(ferr))
	}
	return updated, nil
}

// Remove deletes the contact, drops it from the local list immediately and
// then re-fetches the current view for consistency.
func (s *Store) Remove(ctx context.Context, id string) error {
	if err := model.ValidateContactID(id); err != nil {
		return err
	}
	err := session.DoVoid(ctx, s.sess, func(ctx context.Context) error {
		return s.api.DeleteContact(ctx, id)
	})
	if err != nil {
		s.recordError(err)
		return err
	}

	// Optimistic local removal ahead of the confirmatory re-fetch.
	s.mu.Lock()
	kept := s.state.Items[:0]
	for _, c := range s.state.Items {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	if removed := len(s.state.Items) - len(kept); removed > 0 {
		s.state.TotalCount -= removed
	}
	s.state.Items = kept
	s.mu.Unlock()

	if ferr := s.Fetch(ctx); ferr != nil {
		s.log.Warn("refresh after delete failed", zap.Error(ferr))
	}
	return nil
}

// ToggleBookmark flips the bookmarked flag of one contact and applies only
// that flag from the server's returned copy; other fields and rows are left
// alone.
func (s *Store) ToggleBookmark(ctx context.Context, id string) (*model.Contact, error) {
	if err := model.ValidateContactID(id); err != nil {
		return nil, err
	}
	updated, err := session.Do(ctx, s.sess, func(ctx context.Context) (*model.Contact, error) {
		return s.api.ToggleBookmark(ctx, id)
	})
	if err != nil {
		s.recordError(err)
		return nil, err
	}

	s.mu.Lock()
	for i := range s.state.Items {
		if s.state.Items[i].ID == updated.ID {
			s.state.Items[i].Bookmarked = updated.Bookmarked
		}
	}
	s.state.Err = ""
	s.mu.Unlock()
	return updated, nil
}

func (s *Store) recordError(err error) {
	s.mu.Lock()
	s.state.Err = err.Error()
	s.mu.Unlock()
}

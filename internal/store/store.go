// Package store is the session-scoped controller over the transaction
// list: the single source of truth the views read, mediating between the
// demo-mode local adapter or the remote table backend and the UI.
package store

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/Cherval/me-my-cal/internal/core"
	applog "github.com/Cherval/me-my-cal/internal/log"
	"github.com/Cherval/me-my-cal/internal/localstore"
	"github.com/Cherval/me-my-cal/internal/realtime"
	"github.com/Cherval/me-my-cal/internal/records"
)

const (
	Unauthenticated State = iota
	Ready
)

type (
	// State is the session state. Demo mode, once entered, never reverts
	// to Unauthenticated within a session.
	State int

	// SessionSource resolves the current user identity, if any.
	SessionSource interface {
		Resume(ctx context.Context) (userID string, ok bool)
	}

	// Subscriber delivers change notifications until the context ends.
	Subscriber interface {
		SubscribeChanges(ctx context.Context, handler func(*realtime.ChangeEvent)) error
	}

	// Errors holds the last error message per operation class. Empty
	// strings mean the last operation of that class succeeded.
	Errors struct {
		Fetch  string
		Add    string
		Delete string
		Update string
	}
)

var ErrUnauthenticated = errors.New("unauthenticated")

// Store owns the canonical in-memory transaction list for one session.
// Every mutation goes through it; after each successful remote write it
// re-fetches rather than patching the list in place.
type Store struct {
	mu      sync.Mutex
	demo    bool
	state   State
	userID  string
	list    []core.Transaction
	loading bool
	errs    Errors

	records   records.Store
	feed      Subscriber
	local     *localstore.Adapter
	session   SessionSource
	cancelSub context.CancelFunc
	logger    *slog.Logger
}

// NewRemote builds a store backed by the remote table backend.
func NewRemote(recs records.Store, feed Subscriber, session SessionSource) *Store {
	return &Store{
		records: recs,
		feed:    feed,
		session: session,
		logger:  applog.WithComponent(applog.ComponentStore),
	}
}

// NewDemo builds a local-only store. The demo flag is fixed for the
// lifetime of the store; no network calls ever happen on it.
func NewDemo(local *localstore.Adapter) *Store {
	return &Store{
		demo:   true,
		local:  local,
		logger: applog.WithComponent(applog.ComponentDemo),
	}
}

// Initialize resumes an existing session. With a session present the
// store becomes Ready and performs an initial Fetch; otherwise it stays
// Unauthenticated and the login surface is shown.
func (s *Store) Initialize(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.demo {
		s.enterDemoLocked()
		return
	}

	userID, ok := s.session.Resume(ctx)
	if !ok {
		s.state = Unauthenticated
		return
	}
	s.userID = userID
	s.state = Ready
	s.fetchLocked(ctx)
}

// EnterDemoMode loads the local list and marks the session ready. Only
// meaningful on a demo store.
func (s *Store) EnterDemoMode() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.demo {
		return
	}
	s.enterDemoLocked()
}

func (s *Store) enterDemoLocked() {
	list := s.local.Load()
	core.SortByCreatedAtDesc(list)
	s.list = list
	s.state = Ready
}

// SessionChanged handles a session-change notification. Losing the
// session while not in demo mode drops the UI back to the login surface.
func (s *Store) SessionChanged(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if active || s.demo {
		return
	}
	s.state = Unauthenticated
	s.userID = ""
	s.list = nil
}

// Fetch refreshes the working list. Remote read errors fail closed: the
// error is surfaced and the visible list cleared, so stale or partial
// data is never shown.
func (s *Store) Fetch(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetchLocked(ctx)
}

func (s *Store) fetchLocked(ctx context.Context) {
	if s.demo {
		list := s.local.Load()
		core.SortByCreatedAtDesc(list)
		s.list = list
		s.errs.Fetch = ""
		return
	}

	s.loading = true
	defer func() { s.loading = false }()

	list, err := s.records.ListByUser(ctx, s.userID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Fetch failed", "user_id", s.userID, "error", err)
		s.errs.Fetch = err.Error()
		s.list = nil
		return
	}
	s.errs.Fetch = ""
	s.list = list
}

// Subscribe registers for change notifications; every notification
// triggers a full Fetch. No incremental merge: correctness over
// efficiency at these data volumes. No-op in demo mode.
func (s *Store) Subscribe(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.demo || s.feed == nil || s.cancelSub != nil {
		return
	}

	subCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancelSub = cancel
	go func() {
		err := s.feed.SubscribeChanges(subCtx, func(ev *realtime.ChangeEvent) {
			s.Fetch(subCtx)
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Error("Change subscription ended", "error", err)
		}
	}()
}

// Add appends a new transaction. The amount must already be validated by
// the entry form; the store re-checks only that it is positive.
func (s *Store) Add(ctx context.Context, e core.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.demo {
		rec := e.Record(uuid.NewString(), core.DemoUserID, core.NowCreatedAt())
		list := s.local.Load()
		list = append([]core.Transaction{rec}, list...)
		s.persistDemoLocked(ctx, list)
		s.errs.Add = ""
		return nil
	}

	userID, ok := s.session.Resume(ctx)
	if !ok {
		s.errs.Add = ErrUnauthenticated.Error()
		return ErrUnauthenticated
	}
	if _, err := s.records.Insert(ctx, userID, e); err != nil {
		s.errs.Add = err.Error()
		return err
	}
	s.errs.Add = ""
	s.fetchLocked(ctx)
	return nil
}

// Delete removes a transaction by id. In demo mode a missing id is a
// silent no-op; in remote mode a failed delete leaves the list untouched.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.demo {
		list := s.local.Load()
		kept := make([]core.Transaction, 0, len(list))
		for _, t := range list {
			if t.ID != id {
				kept = append(kept, t)
			}
		}
		s.persistDemoLocked(ctx, kept)
		s.errs.Delete = ""
		return nil
	}

	if err := s.records.Delete(ctx, id); err != nil {
		s.errs.Delete = err.Error()
		return err
	}
	s.errs.Delete = ""
	s.fetchLocked(ctx)
	return nil
}

// Update applies a partial patch by id. A patch that touches created_at
// re-sorts the list, since it changes the display order key.
func (s *Store) Update(ctx context.Context, id string, p core.Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.demo {
		list := s.local.Load()
		for i := range list {
			if list[i].ID == id {
				p.Apply(&list[i])
			}
		}
		if p.TouchesCreatedAt() {
			core.SortByCreatedAtDesc(list)
		}
		s.persistDemoLocked(ctx, list)
		s.errs.Update = ""
		return nil
	}

	if err := s.records.Update(ctx, id, p); err != nil {
		s.errs.Update = err.Error()
		return err
	}
	s.errs.Update = ""
	s.fetchLocked(ctx)
	return nil
}

// persistDemoLocked saves the list and makes it the working set. A failed
// local write is logged but never surfaced: the session keeps operating
// on the in-memory list.
func (s *Store) persistDemoLocked(ctx context.Context, list []core.Transaction) {
	if err := s.local.Save(list); err != nil {
		s.logger.WarnContext(ctx, "Demo persistence failed", "error", err)
	}
	s.list = list
}

// SignOut drops the session. Demo sessions ignore it.
func (s *Store) SignOut() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.demo {
		return
	}
	if s.cancelSub != nil {
		s.cancelSub()
		s.cancelSub = nil
	}
	s.state = Unauthenticated
	s.userID = ""
	s.list = nil
}

// Close cancels the change subscription.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelSub != nil {
		s.cancelSub()
		s.cancelSub = nil
	}
}

// Transactions returns a copy of the working list.
func (s *Store) Transactions() []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, len(s.list))
	copy(out, s.list)
	return out
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Store) IsDemo() bool {
	return s.demo
}

func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *Store) Errors() Errors {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errs
}

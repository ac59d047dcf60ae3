package store

import (
	"context"
	"errors"
	"testing"

	"github.com/Cherval/me-my-cal/internal/core"
	"github.com/Cherval/me-my-cal/internal/localstore"
)

type fakeRecords struct {
	rows      []core.Transaction
	listErr   error
	insertErr error
	updateErr error
	deleteErr error
	inserts   int
}

func (f *fakeRecords) ListByUser(_ context.Context, userID string) ([]core.Transaction, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]core.Transaction, 0, len(f.rows))
	for _, t := range f.rows {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeRecords) Insert(_ context.Context, userID string, e core.Entry) (core.Transaction, error) {
	if f.insertErr != nil {
		return core.Transaction{}, f.insertErr
	}
	f.inserts++
	t := e.Record("srv-1", userID, core.NowCreatedAt())
	f.rows = append([]core.Transaction{t}, f.rows...)
	return t, nil
}

func (f *fakeRecords) Update(_ context.Context, id string, p core.Patch) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	for i := range f.rows {
		if f.rows[i].ID == id {
			p.Apply(&f.rows[i])
		}
	}
	return nil
}

func (f *fakeRecords) Delete(_ context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	kept := f.rows[:0]
	for _, t := range f.rows {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	f.rows = kept
	return nil
}

type fakeSession struct {
	userID string
	active bool
}

func (f fakeSession) Resume(context.Context) (string, bool) {
	return f.userID, f.active
}

func newDemoStore(t *testing.T) *Store {
	t.Helper()
	s := NewDemo(localstore.NewAdapter(localstore.NewKV(t.TempDir())))
	s.EnterDemoMode()
	return s
}

func TestDemoAddScenario(t *testing.T) {
	s := newDemoStore(t)
	ctx := context.Background()

	before := core.Aggregate(s.Transactions())

	err := s.Add(ctx, core.Entry{
		Type:     core.Expense,
		Amount:   core.Money{Satang: 15000},
		Category: "อาหาร/เครื่องดื่ม",
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	list := s.Transactions()
	if len(list) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(list))
	}
	front := list[0]
	if front.Category != "อาหาร/เครื่องดื่ม" || front.Type != core.Expense {
		t.Fatalf("front entry wrong: %+v", front)
	}
	if front.ID == "" || front.UserID != core.DemoUserID || front.CreatedAt == "" {
		t.Fatalf("demo add must assign id, owner and timestamp: %+v", front)
	}

	after := core.Aggregate(list)
	if after.Expense.Satang-before.Expense.Satang != 15000 {
		t.Fatalf("aggregate expense should grow by 15000 satang")
	}

	// A second entry is prepended.
	if err := s.Add(ctx, core.Entry{Type: core.Income, Amount: core.Money{Satang: 100}}); err != nil {
		t.Fatalf("second add: %v", err)
	}
	list = s.Transactions()
	if len(list) != 2 || list[0].Type != core.Income {
		t.Fatalf("new entry should be at the front: %+v", list)
	}
}

func TestDemoPersistsAcrossStores(t *testing.T) {
	dir := t.TempDir()
	adapter := localstore.NewAdapter(localstore.NewKV(dir))

	s := NewDemo(adapter)
	s.EnterDemoMode()
	if err := s.Add(context.Background(), core.Entry{Type: core.Expense, Amount: core.Money{Satang: 500}}); err != nil {
		t.Fatalf("add: %v", err)
	}

	// A fresh store over the same storage sees the saved list.
	again := NewDemo(localstore.NewAdapter(localstore.NewKV(dir)))
	again.EnterDemoMode()
	if got := again.Transactions(); len(got) != 1 || got[0].Amount.Satang != 500 {
		t.Fatalf("list not persisted: %+v", got)
	}
}

func TestDemoDeleteNonexistentIsNoOp(t *testing.T) {
	s := newDemoStore(t)
	ctx := context.Background()

	_ = s.Add(ctx, core.Entry{Type: core.Expense, Amount: core.Money{Satang: 100}})
	before := s.Transactions()

	if err := s.Delete(ctx, "no-such-id"); err != nil {
		t.Fatalf("delete of unknown id should not error: %v", err)
	}
	after := s.Transactions()
	if len(after) != len(before) {
		t.Fatalf("list changed: %d -> %d", len(before), len(after))
	}
	if s.Errors().Delete != "" {
		t.Fatalf("no error should be recorded: %q", s.Errors().Delete)
	}
}

func TestDemoUpdateCreatedAtResorts(t *testing.T) {
	s := newDemoStore(t)
	ctx := context.Background()

	_ = s.Add(ctx, core.Entry{Type: core.Expense, Amount: core.Money{Satang: 1}, Category: "old"})
	_ = s.Add(ctx, core.Entry{Type: core.Expense, Amount: core.Money{Satang: 2}, Category: "new"})

	list := s.Transactions()
	if list[0].Category != "new" {
		t.Fatalf("precondition: newest first, got %+v", list)
	}

	// Move the older record into the future; it must rise to the front.
	future := "2099-01-01T00:00:00.000Z"
	oldID := list[1].ID
	if err := s.Update(ctx, oldID, core.Patch{CreatedAt: &future}); err != nil {
		t.Fatalf("update: %v", err)
	}

	list = s.Transactions()
	if list[0].ID != oldID {
		t.Fatalf("patched record should sort to the front: %+v", list)
	}
}

func TestRemoteAddUnauthenticated(t *testing.T) {
	recs := &fakeRecords{}
	s := NewRemote(recs, nil, fakeSession{active: false})

	err := s.Add(context.Background(), core.Entry{Type: core.Expense, Amount: core.Money{Satang: 100}})
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if recs.inserts != 0 {
		t.Fatalf("no write should happen without a user")
	}
	if len(s.Transactions()) != 0 {
		t.Fatalf("list must not be mutated")
	}
	if s.Errors().Add == "" {
		t.Fatalf("add error should be recorded")
	}
}

func TestRemoteFetchFailClosed(t *testing.T) {
	recs := &fakeRecords{rows: []core.Transaction{{ID: "1", UserID: "u"}}}
	s := NewRemote(recs, nil, fakeSession{userID: "u", active: true})
	ctx := context.Background()

	s.Initialize(ctx)
	if s.State() != Ready {
		t.Fatalf("expected Ready after resume")
	}
	if len(s.Transactions()) != 1 {
		t.Fatalf("initial fetch should load the list")
	}

	recs.listErr = errors.New("backend unavailable")
	s.Fetch(ctx)
	if len(s.Transactions()) != 0 {
		t.Fatalf("fetch error must clear the visible list")
	}
	if s.Errors().Fetch == "" {
		t.Fatalf("fetch error should be recorded")
	}

	// Recovery clears the error.
	recs.listErr = nil
	s.Fetch(ctx)
	if s.Errors().Fetch != "" || len(s.Transactions()) != 1 {
		t.Fatalf("fetch should recover: errs=%q len=%d", s.Errors().Fetch, len(s.Transactions()))
	}
}

func TestRemoteFetchIdempotent(t *testing.T) {
	recs := &fakeRecords{rows: []core.Transaction{
		{ID: "1", UserID: "u", CreatedAt: "2025-02-01T00:00:00Z"},
		{ID: "2", UserID: "u", CreatedAt: "2025-01-01T00:00:00Z"},
	}}
	s := NewRemote(recs, nil, fakeSession{userID: "u", active: true})
	ctx := context.Background()

	s.Initialize(ctx)
	first := s.Transactions()
	s.Fetch(ctx)
	second := s.Transactions()

	if len(first) != len(second) {
		t.Fatalf("repeated fetch changed the list size")
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Fatalf("repeated fetch changed the order: %v vs %v", first, second)
		}
	}
}

func TestRemoteWriteErrorsLeaveListUntouched(t *testing.T) {
	recs := &fakeRecords{rows: []core.Transaction{{ID: "1", UserID: "u"}}}
	s := NewRemote(recs, nil, fakeSession{userID: "u", active: true})
	ctx := context.Background()
	s.Initialize(ctx)

	recs.deleteErr = errors.New("denied")
	if err := s.Delete(ctx, "1"); err == nil {
		t.Fatalf("expected delete error")
	}
	if len(s.Transactions()) != 1 {
		t.Fatalf("failed delete must leave the list unchanged")
	}
	if s.Errors().Delete == "" {
		t.Fatalf("delete error should be recorded")
	}

	recs.updateErr = errors.New("denied")
	cat := "x"
	if err := s.Update(ctx, "1", core.Patch{Category: &cat}); err == nil {
		t.Fatalf("expected update error")
	}
	if got := s.Transactions(); len(got) != 1 || got[0].Category != "" {
		t.Fatalf("failed update must leave the list unchanged: %+v", got)
	}
}

func TestSessionStateMachine(t *testing.T) {
	// No session: stays unauthenticated.
	s := NewRemote(&fakeRecords{}, nil, fakeSession{active: false})
	s.Initialize(context.Background())
	if s.State() != Unauthenticated {
		t.Fatalf("expected Unauthenticated without a session")
	}

	// Active session: ready; losing it drops back.
	s = NewRemote(&fakeRecords{}, nil, fakeSession{userID: "u", active: true})
	s.Initialize(context.Background())
	if s.State() != Ready {
		t.Fatalf("expected Ready with a session")
	}
	s.SessionChanged(false)
	if s.State() != Unauthenticated {
		t.Fatalf("lost session should drop to Unauthenticated")
	}

	// Demo mode never reverts.
	d := newDemoStore(t)
	if d.State() != Ready {
		t.Fatalf("demo store should be Ready")
	}
	d.SessionChanged(false)
	d.SignOut()
	if d.State() != Ready {
		t.Fatalf("demo session must never drop to Unauthenticated")
	}
}

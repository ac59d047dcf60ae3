package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Cherval/me-my-cal/internal/core"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestInsertAndListOrdering(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	u, err := repo.CreateUser(ctx, "me@example.com", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	for _, e := range []core.Entry{
		{Type: core.Expense, Amount: core.Money{Satang: 15000}, Category: "อาหาร/เครื่องดื่ม"},
		{Type: core.Income, Amount: core.Money{Satang: 5000000}, Category: "เงินเดือน"},
	} {
		if _, err := repo.Insert(ctx, u.ID, e); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	list, err := repo.ListByUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(list))
	}
	for _, tr := range list {
		if tr.ID == "" || tr.CreatedAt == "" {
			t.Fatalf("backend should assign id and created_at: %+v", tr)
		}
		if tr.UserID != u.ID {
			t.Fatalf("row not scoped to user: %+v", tr)
		}
	}
	// Newest first.
	if list[0].CreatedAt < list[1].CreatedAt {
		t.Fatalf("rows not ordered by created_at descending")
	}

	// Rows belonging to other users stay invisible.
	other, err := repo.ListByUser(ctx, "someone-else")
	if err != nil {
		t.Fatalf("list other: %v", err)
	}
	if len(other) != 0 {
		t.Fatalf("expected no rows for other user, got %d", len(other))
	}
}

func TestInsertRejectsInvalidEntry(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	if _, err := repo.Insert(ctx, "u", core.Entry{Type: core.Expense, Amount: core.Money{Satang: 0}}); err == nil {
		t.Fatalf("expected error for zero amount")
	}
	if _, err := repo.Insert(ctx, "u", core.Entry{Type: "transfer", Amount: core.Money{Satang: 1}}); err == nil {
		t.Fatalf("expected error for invalid type")
	}
}

func TestUpdatePartialPatch(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	u, _ := repo.CreateUser(ctx, "me@example.com", "hash")
	note := "with receipt"
	created, err := repo.Insert(ctx, u.ID, core.Entry{
		Type: core.Expense, Amount: core.Money{Satang: 100}, Category: "x", Note: note,
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	amount := core.Money{Satang: 250}
	clearNote := ""
	if err := repo.Update(ctx, created.ID, core.Patch{Amount: &amount, Note: &clearNote}); err != nil {
		t.Fatalf("update: %v", err)
	}

	list, _ := repo.ListByUser(ctx, u.ID)
	if len(list) != 1 {
		t.Fatalf("expected 1 row, got %d", len(list))
	}
	got := list[0]
	if got.Amount.Satang != 250 {
		t.Fatalf("amount not patched: %+v", got)
	}
	if got.Note != nil {
		t.Fatalf("empty patch value should null the column: %+v", got)
	}
	if got.Category != "x" {
		t.Fatalf("untouched column changed: %+v", got)
	}

	// Empty patch is a no-op, not an error.
	if err := repo.Update(ctx, created.ID, core.Patch{}); err != nil {
		t.Fatalf("empty patch: %v", err)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	u, _ := repo.CreateUser(ctx, "me@example.com", "hash")
	created, _ := repo.Insert(ctx, u.ID, core.Entry{Type: core.Income, Amount: core.Money{Satang: 1}})

	if err := repo.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.Delete(ctx, created.ID); err != nil {
		t.Fatalf("second delete should not fail: %v", err)
	}
	if err := repo.Delete(ctx, "never-existed"); err != nil {
		t.Fatalf("deleting unknown id should not fail: %v", err)
	}

	list, _ := repo.ListByUser(ctx, u.ID)
	if len(list) != 0 {
		t.Fatalf("expected empty list after delete, got %d", len(list))
	}
}

func TestUserLookup(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	u, err := repo.CreateUser(ctx, "  Me@Example.COM ", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if u.Email != "me@example.com" {
		t.Fatalf("email should be normalized, got %q", u.Email)
	}

	byEmail, err := repo.UserByEmail(ctx, "ME@example.com")
	if err != nil {
		t.Fatalf("by email: %v", err)
	}
	if byEmail.ID != u.ID {
		t.Fatalf("lookup returned wrong user")
	}

	if _, err := repo.UserByEmail(ctx, "nobody@example.com"); err != ErrUserNotFound {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := repo.UserByID(ctx, "missing"); err != ErrUserNotFound {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

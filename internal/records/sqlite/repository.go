// Package sqlite implements the records ports over a SQLite database,
// standing in for the hosted table backend.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Cherval/me-my-cal/internal/core"
	applog "github.com/Cherval/me-my-cal/internal/log"
	"github.com/Cherval/me-my-cal/internal/records"

	_ "modernc.org/sqlite"
)

var ErrUserNotFound = errors.New("user not found")

type Repository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{
		db:     db,
		logger: applog.WithComponent(applog.ComponentRecords),
	}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

const transactionColumns = `id, user_id, type, amount_satang, category, note, emoji, method, bank, party, item, location, created_at`

// ListByUser implements records.Lister.
func (r *Repository) ListByUser(ctx context.Context, userID string) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE user_id = ? ORDER BY created_at DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	list := make([]core.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		list = append(list, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return list, nil
}

// Insert implements records.Inserter. The repository assigns id and
// created_at, like the hosted backend would.
func (r *Repository) Insert(ctx context.Context, userID string, e core.Entry) (core.Transaction, error) {
	if err := e.Validate(); err != nil {
		return core.Transaction{}, err
	}
	t := e.Record(uuid.NewString(), userID, core.NowCreatedAt())

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (`+transactionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, string(t.Type), t.Amount.Satang, t.Category,
		nullable(t.Note), nullable(t.Emoji), nullable(t.Method), nullable(t.Bank),
		nullable(t.Party), nullable(t.Item), nullable(t.Location), t.CreatedAt)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}

	r.logger.InfoContext(ctx, "Transaction saved",
		"id", t.ID,
		"user_id", t.UserID,
		"type", t.Type,
		"amount_satang", t.Amount.Satang)

	return t, nil
}

// Update implements records.Updater. Only the fields present in the patch
// are written. An empty patch is a no-op.
func (r *Repository) Update(ctx context.Context, id string, p core.Patch) error {
	sets := make([]string, 0, 11)
	args := make([]any, 0, 12)

	add := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}
	addOpt := func(col string, v *string) {
		if v == nil {
			return
		}
		if *v == "" {
			add(col, nil)
			return
		}
		add(col, *v)
	}

	if p.Type != nil {
		add("type", string(*p.Type))
	}
	if p.Amount != nil {
		add("amount_satang", p.Amount.Satang)
	}
	if p.Category != nil {
		add("category", *p.Category)
	}
	addOpt("note", p.Note)
	addOpt("emoji", p.Emoji)
	addOpt("method", p.Method)
	addOpt("bank", p.Bank)
	addOpt("party", p.Party)
	addOpt("item", p.Item)
	addOpt("location", p.Location)
	if p.CreatedAt != nil {
		add("created_at", *p.CreatedAt)
	}

	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)

	_, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return nil
}

// Delete implements records.Deleter.
func (r *Repository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return nil
}

// CreateUser inserts an account row with an already-hashed password.
func (r *Repository) CreateUser(ctx context.Context, email, passwordHash string) (records.User, error) {
	u := records.User{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		u.ID, u.Email, u.PasswordHash, u.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return records.User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// UserByEmail implements records.UserStore.
func (r *Repository) UserByEmail(ctx context.Context, email string) (records.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, created_at FROM users WHERE email = ?`,
		strings.ToLower(strings.TrimSpace(email))))
}

// UserByID implements records.UserStore.
func (r *Repository) UserByID(ctx context.Context, id string) (records.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, created_at FROM users WHERE id = ?`, id))
}

func (r *Repository) scanUser(row *sql.Row) (records.User, error) {
	var u records.User
	var createdAt string
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return records.User{}, ErrUserNotFound
	}
	if err != nil {
		return records.User{}, fmt.Errorf("scan user: %w", err)
	}
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		u.CreatedAt = t
	}
	return u, nil
}

func scanTransaction(rows *sql.Rows) (core.Transaction, error) {
	var (
		t      core.Transaction
		typ    string
		satang int64
		note, emoji, method, bank, party, item, location sql.NullString
	)
	err := rows.Scan(&t.ID, &t.UserID, &typ, &satang, &t.Category,
		&note, &emoji, &method, &bank, &party, &item, &location, &t.CreatedAt)
	if err != nil {
		return core.Transaction{}, err
	}
	t.Type = core.TransactionType(typ)
	t.Amount = core.Money{Satang: satang}
	t.Note = fromNull(note)
	t.Emoji = fromNull(emoji)
	t.Method = fromNull(method)
	t.Bank = fromNull(bank)
	t.Party = fromNull(party)
	t.Item = fromNull(item)
	t.Location = fromNull(location)
	return t, nil
}

func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func fromNull(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

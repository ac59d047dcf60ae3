// Package records defines the ports the transaction store uses to talk to
// the remote table backend, mirroring the five operations the hosted
// service exposes: select-all-ordered, insert-one, update-one-by-id,
// delete-one-by-id and the change subscription (see package realtime).
package records

import (
	"context"
	"time"

	"github.com/Cherval/me-my-cal/internal/core"
)

type (
	// Lister returns every transaction owned by the user, ordered by
	// created_at descending.
	Lister interface {
		ListByUser(ctx context.Context, userID string) ([]core.Transaction, error)
	}

	// Inserter creates a row scoped to the user. The backend assigns the
	// id and created_at; callers re-fetch to obtain the canonical row.
	Inserter interface {
		Insert(ctx context.Context, userID string, e core.Entry) (core.Transaction, error)
	}

	// Updater applies a partial patch to the row with the given id.
	Updater interface {
		Update(ctx context.Context, id string, p core.Patch) error
	}

	// Deleter removes the row with the given id. Deleting an id that does
	// not exist is not an error.
	Deleter interface {
		Delete(ctx context.Context, id string) error
	}

	// Store bundles the full table surface.
	Store interface {
		Lister
		Inserter
		Updater
		Deleter
	}
)

// User is an account row in the backing store.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// UserStore is the account lookup surface needed by the auth layer.
type UserStore interface {
	UserByEmail(ctx context.Context, email string) (User, error)
	UserByID(ctx context.Context, id string) (User, error)
}

// Package services orchestrates remote-mode writes: persist to the table
// backend first, then broadcast a change event so every live session
// re-fetches.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Cherval/me-my-cal/internal/core"
	applog "github.com/Cherval/me-my-cal/internal/log"
	"github.com/Cherval/me-my-cal/internal/realtime"
	"github.com/Cherval/me-my-cal/internal/records"
	"github.com/Cherval/me-my-cal/internal/records/sqlite"
)

// TransactionService implements records.Store over the sqlite repository,
// publishing a change event after each successful write. Publishing is
// fire-and-forget: the write already succeeded, and a missed notification
// only delays the next refresh.
type TransactionService struct {
	repo   *sqlite.Repository
	feed   *realtime.Client
	logger *slog.Logger
}

var _ records.Store = (*TransactionService)(nil)

func NewTransactionService(repo *sqlite.Repository, feed *realtime.Client) *TransactionService {
	return &TransactionService{
		repo:   repo,
		feed:   feed,
		logger: applog.WithComponent(applog.ComponentApp),
	}
}

// ListByUser implements records.Lister.
func (s *TransactionService) ListByUser(ctx context.Context, userID string) ([]core.Transaction, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Insert implements records.Inserter.
func (s *TransactionService) Insert(ctx context.Context, userID string, e core.Entry) (core.Transaction, error) {
	t, err := s.repo.Insert(ctx, userID, e)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}
	s.publish(ctx, realtime.OpInsert, t.ID)
	return t, nil
}

// Update implements records.Updater.
func (s *TransactionService) Update(ctx context.Context, id string, p core.Patch) error {
	if err := s.repo.Update(ctx, id, p); err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	s.publish(ctx, realtime.OpUpdate, id)
	return nil
}

// Delete implements records.Deleter.
func (s *TransactionService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	s.publish(ctx, realtime.OpDelete, id)
	return nil
}

func (s *TransactionService) publish(ctx context.Context, op, id string) {
	if s.feed == nil {
		return
	}
	if err := s.feed.PublishChange(ctx, op, id); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish change event",
			"op", op, "id", id, "error", err)
	}
}

// Close closes both the storage and the change feed.
func (s *TransactionService) Close() error {
	var errs []error

	if s.repo != nil {
		if err := s.repo.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if s.feed != nil {
		if err := s.feed.Close(); err != nil {
			errs = append(errs, fmt.Errorf("realtime: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close transaction service: %v", errs)
	}
	return nil
}

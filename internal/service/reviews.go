package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jask/pocketledger/internal/model"
	"github.com/jask/pocketledger/internal/store"
)

// Reviews tracks which months the user has reviewed.
type Reviews struct {
	Store *store.Store
	Clock Clock
}

// Complete marks (month, year) reviewed and clears the reminder for that
// month only. Reminders for other months stay visible.
func (r *Reviews) Complete(ctx context.Context, userID string, month, year int) error {
	if month < 1 || month > 12 {
		return fmt.Errorf("review month %d: %w", month, ErrInvalid)
	}
	now := r.Clock.now()
	return r.Store.Update(ctx, func(c *store.Collections) error {
		status := c.Review(userID, month, year)
		if status == nil {
			c.Reviews = append(c.Reviews, model.MonthlyReviewStatus{ID: uuid.NewString(), UserID: userID, Month: month, Year: year})
			status = &c.Reviews[len(c.Reviews)-1]
		}
		status.IsCompleted = true
		status.CompletedAt = &now
		removeRelated(c, userID, model.ActionMonthlyFinanceReview, status.ID)
		return nil
	})
}

// CompleteItem completes the review a monthlyFinanceReview item points at.
func (r *Reviews) CompleteItem(ctx context.Context, item model.ActionItem) error {
	var month, year int
	r.Store.View(func(c *store.Collections) {
		for _, s := range c.Reviews {
			if s.ID == item.Related() {
				month, year = s.Month, s.Year
			}
		}
	})
	if month == 0 {
		return fmt.Errorf("review for item %s: %w", item.ID, ErrNotFound)
	}
	return r.Complete(ctx, item.UserID, month, year)
}

// IsCompleted reports whether (month, year) has been reviewed.
func (r *Reviews) IsCompleted(userID string, month, year int) bool {
	done := false
	r.Store.View(func(c *store.Collections) {
		if s := c.Review(userID, month, year); s != nil {
			done = s.IsCompleted
		}
	})
	return done
}

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jask/pocketledger/internal/model"
	"github.com/jask/pocketledger/internal/store"
)

// Transfers runs the approval flow of scheduled transfers. No money moves
// until an occurrence is confirmed.
type Transfers struct {
	Store *store.Store
	Clock Clock
}

// Schedule inserts st or replaces the schedule with the same id. A new
// schedule that is already due gets a pendingTransfer item straight away.
func (t *Transfers) Schedule(ctx context.Context, st model.ScheduledTransfer) (model.ScheduledTransfer, error) {
	st.ID = newID(st.ID)
	now := t.Clock.now()
	currency := t.Store.Currency()
	err := t.Store.Update(ctx, func(c *store.Collections) error {
		if existing := c.ScheduledTransfer(st.ID); existing != nil {
			*existing = st
			return nil
		}
		c.ScheduledTransfers = append(c.ScheduledTransfers, st)
		if !st.IsCompleted && model.DaysBetween(st.ScheduledDate, now) >= 0 {
			title, msg := transferItemText(c, st, moneyIn(currency))
			createActionItem(c, model.ActionItem{
				ID:              uuid.NewString(),
				UserID:          st.UserID,
				Type:            model.ActionPendingTransfer,
				Priority:        model.PriorityMedium,
				Title:           title,
				Message:         msg,
				CreatedAt:       now,
				RelatedEntityID: strPtr(st.ID),
			})
		}
		return nil
	})
	return st, err
}

// Confirm moves the money for the current occurrence and returns the
// completed transfer. Recurring schedules advance to their next occurrence.
func (t *Transfers) Confirm(ctx context.Context, id string) (model.Transfer, error) {
	now := t.Clock.now()
	var done model.Transfer
	err := t.Store.Update(ctx, func(c *store.Collections) error {
		st, err := openSchedule(c, id)
		if err != nil {
			return fmt.Errorf("confirm transfer %s: %w", id, err)
		}
		done = model.Transfer{
			ID:            uuid.NewString(),
			UserID:        st.UserID,
			FromAccountID: st.FromAccountID,
			ToAccountID:   st.ToAccountID,
			Amount:        st.Amount,
			Date:          now,
		}
		if st.Notes != nil {
			done.Notes = *st.Notes
		}
		c.Transfers = append(c.Transfers, done)
		applyTransfer(c, done)
		advanceSchedule(st, now)
		removeRelated(c, st.UserID, model.ActionPendingTransfer, st.ID)
		return nil
	})
	return done, err
}

// Decline skips the current occurrence. One-time schedules are cancelled for good.
func (t *Transfers) Decline(ctx context.Context, id string) error {
	now := t.Clock.now()
	return t.Store.Update(ctx, func(c *store.Collections) error {
		st, err := openSchedule(c, id)
		if err != nil {
			return fmt.Errorf("decline transfer %s: %w", id, err)
		}
		advanceSchedule(st, now)
		removeRelated(c, st.UserID, model.ActionPendingTransfer, st.ID)
		return nil
	})
}

// Delete removes the schedule and its pending items.
func (t *Transfers) Delete(ctx context.Context, id string) error {
	return t.Store.Update(ctx, func(c *store.Collections) error {
		st := c.ScheduledTransfer(id)
		if st == nil {
			return nil
		}
		userID := st.UserID
		c.ScheduledTransfers = store.Remove(c.ScheduledTransfers, id, func(s model.ScheduledTransfer) string { return s.ID })
		removeRelated(c, userID, model.ActionPendingTransfer, id)
		return nil
	})
}

// Pending lists the user's schedules that are due today.
func (t *Transfers) Pending(userID string) []model.ScheduledTransfer {
	now := t.Clock.now()
	var out []model.ScheduledTransfer
	t.Store.View(func(c *store.Collections) {
		for _, st := range c.ScheduledTransfers {
			if st.UserID == userID && st.IsDue(now) {
				out = append(out, st)
			}
		}
	})
	return out
}

func openSchedule(c *store.Collections, id string) (*model.ScheduledTransfer, error) {
	st := c.ScheduledTransfer(id)
	if st == nil {
		return nil, ErrNotFound
	}
	if st.IsCompleted {
		return nil, ErrCompleted
	}
	return st, nil
}

func advanceSchedule(st *model.ScheduledTransfer, now time.Time) {
	if st.IsRecurring() {
		st.ScheduledDate = st.ScheduledDate.AddDate(0, 0, *st.RecurrenceDays)
		return
	}
	st.IsCompleted = true
	st.CompletedDate = &now
}

package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jask/pocketledger/internal/model"
	"github.com/jask/pocketledger/internal/store"
)

// Subscriptions manages recurring charges.
type Subscriptions struct {
	Store *store.Store
	Clock Clock
}

// Save inserts sub or replaces the subscription with the same id.
func (s *Subscriptions) Save(ctx context.Context, sub model.Subscription) (model.Subscription, error) {
	sub.ID = newID(sub.ID)
	err := s.Store.Update(ctx, func(c *store.Collections) error {
		if existing := c.Subscription(sub.ID); existing != nil {
			*existing = sub
			return nil
		}
		c.Subscriptions = append(c.Subscriptions, sub)
		return nil
	})
	return sub, err
}

// Delete removes the subscription. Expenses already charged are kept.
func (s *Subscriptions) Delete(ctx context.Context, id string) error {
	return s.Store.Update(ctx, func(c *store.Collections) error {
		sub := c.Subscription(id)
		if sub == nil {
			return nil
		}
		userID := sub.UserID
		c.Subscriptions = store.Remove(c.Subscriptions, id, func(v model.Subscription) string { return v.ID })
		removeRelated(c, userID, model.ActionSubscriptionDue, id)
		return nil
	})
}

// RecordPayment charges the current billing period as an expense and moves
// the billing date one cycle on.
func (s *Subscriptions) RecordPayment(ctx context.Context, id string) (model.Expense, error) {
	now := s.Clock.now()
	var charged model.Expense
	err := s.Store.Update(ctx, func(c *store.Collections) error {
		sub := c.Subscription(id)
		if sub == nil {
			return fmt.Errorf("record payment %s: %w", id, ErrNotFound)
		}
		charged = model.Expense{
			ID:             uuid.NewString(),
			UserID:         sub.UserID,
			Amount:         sub.Amount,
			Date:           now,
			Description:    sub.Name,
			CategoryName:   sub.CategoryName,
			AccountID:      sub.AccountID,
			IsSubscription: true,
			SubscriptionID: strPtr(sub.ID),
		}
		sub.NextBillingDate = sub.NextAfter(sub.NextBillingDate)
		userID := sub.UserID
		c.Expenses = append(c.Expenses, charged)
		applyExpense(c, charged, now)
		removeRelated(c, userID, model.ActionSubscriptionDue, id)
		return nil
	})
	return charged, err
}

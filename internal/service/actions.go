package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jask/pocketledger/internal/model"
	"github.com/jask/pocketledger/internal/store"
)

// friendBalanceThreshold is the amount above which an outstanding balance is surfaced.
var friendBalanceThreshold = decimal.NewFromInt(50)

// ActionEngine derives action items from the current entity state. Each
// Generate pass is idempotent: items are deduplicated on (user, type, related id).
type ActionEngine struct {
	Store *store.Store
	Clock Clock
}

// Generate re-evaluates every rule for userID and stores any new items.
func (a *ActionEngine) Generate(ctx context.Context, userID string) error {
	now := a.Clock.now()
	currency := a.Store.Currency()
	return a.Store.Update(ctx, func(c *store.Collections) error {
		generate(c, userID, now, currency)
		return nil
	})
}

// Items returns the user's visible items, highest priority first. Items of
// equal priority keep their creation order.
func (a *ActionEngine) Items(userID string) []model.ActionItem {
	var out []model.ActionItem
	a.Store.View(func(c *store.Collections) {
		for _, it := range c.ActionItems {
			if it.UserID == userID && !it.IsDismissed {
				out = append(out, it)
			}
		}
	})
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority.Rank() > out[j].Priority.Rank()
	})
	return out
}

// Dismiss hides an item until a rule recreates it.
func (a *ActionEngine) Dismiss(ctx context.Context, itemID string) error {
	return a.Store.Update(ctx, func(c *store.Collections) error {
		it := c.ActionItem(itemID)
		if it == nil {
			return fmt.Errorf("dismiss %s: %w", itemID, ErrNotFound)
		}
		it.IsDismissed = true
		return nil
	})
}

// Create stores item under the deduplication policy. It reports whether the
// item was inserted.
func (a *ActionEngine) Create(ctx context.Context, item model.ActionItem) (bool, error) {
	if !item.Type.Valid() {
		return false, fmt.Errorf("action type %q: %w", item.Type, ErrInvalid)
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = a.Clock.now()
	}
	var created bool
	err := a.Store.Update(ctx, func(c *store.Collections) error {
		created = createActionItem(c, item)
		return nil
	})
	return created && err == nil, err
}

// createActionItem appends item unless an equivalent visible item exists.
// Monthly review items always replace the previous one for the same status.
func createActionItem(c *store.Collections, item model.ActionItem) bool {
	related := item.Related()
	if item.Type == model.ActionMonthlyFinanceReview {
		removeRelated(c, item.UserID, item.Type, related)
	} else {
		for _, existing := range c.ActionItems {
			if !existing.IsDismissed && existing.Matches(item.UserID, item.Type, related) {
				return false
			}
		}
	}
	item.ID = newID(item.ID)
	c.ActionItems = append(c.ActionItems, item)
	return true
}

func generate(c *store.Collections, userID string, now time.Time, currency string) {
	emit := func(t model.ActionType, p model.Priority, related, title, msg string) {
		createActionItem(c, model.ActionItem{
			ID:              uuid.NewString(),
			UserID:          userID,
			Type:            t,
			Priority:        p,
			Title:           title,
			Message:         msg,
			CreatedAt:       now,
			RelatedEntityID: strPtr(related),
		})
	}
	money := moneyIn(currency)

	for _, s := range c.Salaries {
		if s.UserID != userID || !s.IsActive {
			continue
		}
		switch {
		case s.IsOverdue(now):
			emit(model.ActionSalaryPending, model.PriorityHigh, s.ID, "Salary overdue",
				fmt.Sprintf("Expected %s on %s. Confirm once it arrives.", money(s.Amount), s.NextExpectedDate.Format("Jan 2")))
		case s.IsDueSoon(now):
			emit(model.ActionSalaryPending, model.PriorityMedium, s.ID, "Salary due soon",
				fmt.Sprintf("%s expected on %s.", money(s.Amount), s.NextExpectedDate.Format("Jan 2")))
		}
	}

	for _, s := range c.Subscriptions {
		if s.UserID != userID || !s.IsActive || !s.IsDueSoon(now) {
			continue
		}
		emit(model.ActionSubscriptionDue, model.PriorityMedium, s.ID, s.Name+" renews soon",
			fmt.Sprintf("%s will be charged on %s.", money(s.Amount), s.NextBillingDate.Format("Jan 2")))
	}

	month, year := int(now.Month()), now.Year()
	for _, b := range c.Budgets {
		if b.UserID != userID || b.Month != month || b.Year != year || !b.Spent.GreaterThan(b.MonthlyLimit) {
			continue
		}
		emit(model.ActionOverspending, model.PriorityHigh, b.ID, "Over budget: "+b.Name,
			fmt.Sprintf("You are %s over your %s limit.", money(b.Overage()), money(b.MonthlyLimit)))
	}

	for _, b := range c.Balances {
		if b.UserID != userID || !b.Amount.GreaterThan(friendBalanceThreshold) {
			continue
		}
		emit(model.ActionFriendBalance, model.PriorityLow, b.ID, b.PersonName+" owes you",
			fmt.Sprintf("%s outstanding since %s.", money(b.Amount), b.LastUpdated.Format("Jan 2")))
	}

	for _, st := range c.ScheduledTransfers {
		if st.UserID != userID || !st.IsDue(now) {
			continue
		}
		title, msg := transferItemText(c, st, money)
		emit(model.ActionPendingTransfer, model.PriorityMedium, st.ID, title, msg)
	}

	left := model.DaysUntilMonthEnd(now)
	if left == 7 || left == 3 || left == 0 {
		if r := ensureReview(c, userID, month, year); !r.IsCompleted {
			emit(model.ActionMonthlyFinanceReview, model.PriorityHigh, r.ID, "Monthly review", upcomingReviewText(left, now))
		}
	}
	pm, py := model.PreviousMonth(month, year)
	if r := ensureReview(c, userID, pm, py); !r.IsCompleted {
		name := time.Month(pm).String()
		emit(model.ActionMonthlyFinanceReview, model.PriorityHigh, r.ID, "Review overdue",
			fmt.Sprintf("%s %d has not been reviewed yet.", name, py))
	}

	for _, acct := range c.Accounts {
		if acct.UserID != userID || acct.CreditUsageWarning == nil {
			continue
		}
		pct, ok := acct.CreditUsage()
		if !ok || pct.LessThan(*acct.CreditUsageWarning) {
			continue
		}
		emit(model.ActionCreditCardUsage, model.PriorityHigh, acct.ID, acct.Name+" credit usage",
			fmt.Sprintf("%s%% of the %s limit is used.", pct.Round(0).String(), money(*acct.CreditLimit)))
	}
}

// ensureReview returns the status row for the month, creating it on first use.
// The row must not be retained across further appends to c.Reviews.
func ensureReview(c *store.Collections, userID string, month, year int) model.MonthlyReviewStatus {
	if r := c.Review(userID, month, year); r != nil {
		return *r
	}
	r := model.MonthlyReviewStatus{ID: uuid.NewString(), UserID: userID, Month: month, Year: year}
	c.Reviews = append(c.Reviews, r)
	return r
}

func upcomingReviewText(left int, now time.Time) string {
	switch left {
	case 0:
		return fmt.Sprintf("%s ends today. Review your spending.", now.Month())
	case 1:
		return fmt.Sprintf("%s ends tomorrow. Review your spending.", now.Month())
	default:
		return fmt.Sprintf("%s ends in %d days. Review your spending.", now.Month(), left)
	}
}

func transferItemText(c *store.Collections, st model.ScheduledTransfer, money func(decimal.Decimal) string) (string, string) {
	name := func(id string) string {
		if a := c.Account(id); a != nil {
			return a.Name
		}
		return "unknown account"
	}
	return "Transfer awaiting approval",
		fmt.Sprintf("Move %s from %s to %s.", money(st.Amount), name(st.FromAccountID), name(st.ToAccountID))
}

package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jask/pocketledger/internal/model"
	"github.com/jask/pocketledger/internal/store"
)

// ReconciliationCategory is the category name of balance-correction expenses.
const ReconciliationCategory = "Reconciliation"

// reconcileTolerance absorbs rounding noise; smaller differences are treated as matching.
var reconcileTolerance = decimal.New(1, -2)

// Ledger keeps account balances, budget spend and balances owed in step with
// expenses, transfers, repayments and reconciliations. References to missing
// accounts or categories skip that side effect.
type Ledger struct {
	Store *store.Store
	Clock Clock
}

// SaveExpense inserts e, or replaces the expense with the same id after
// reversing its previous effects. Reconciliation expenses cannot be replaced.
func (l *Ledger) SaveExpense(ctx context.Context, e model.Expense) (model.Expense, error) {
	e.ID = newID(e.ID)
	e.SplitParticipants = append([]model.SplitParticipant(nil), e.SplitParticipants...)
	for i := range e.SplitParticipants {
		e.SplitParticipants[i].ID = newID(e.SplitParticipants[i].ID)
	}
	now := l.Clock.now()
	if e.Date.IsZero() {
		e.Date = now
	}
	// stored keeps its own participants slice
	stored := e
	stored.SplitParticipants = append([]model.SplitParticipant(nil), e.SplitParticipants...)
	err := l.Store.Update(ctx, func(c *store.Collections) error {
		if old := c.Expense(e.ID); old != nil {
			if isReconciliation(*old) {
				return fmt.Errorf("edit expense %s: %w", e.ID, ErrReconciliation)
			}
			reverseExpense(c, *old, now)
			*c.Expense(e.ID) = stored
		} else {
			c.Expenses = append(c.Expenses, stored)
		}
		applyExpense(c, stored, now)
		return nil
	})
	return e, err
}

// DeleteExpense reverses every effect of the expense, balances owed included,
// and removes it. Deleting an unknown id is a no-op. Reconciliation expenses
// are rejected with ErrReconciliation.
func (l *Ledger) DeleteExpense(ctx context.Context, id string) error {
	now := l.Clock.now()
	return l.Store.Update(ctx, func(c *store.Collections) error {
		old := c.Expense(id)
		if old == nil {
			return nil
		}
		if isReconciliation(*old) {
			return fmt.Errorf("delete expense %s: %w", id, ErrReconciliation)
		}
		reverseExpense(c, *old, now)
		c.Expenses = store.Remove(c.Expenses, id, func(e model.Expense) string { return e.ID })
		return nil
	})
}

// RecordTransfer logs a completed transfer and moves the money immediately.
func (l *Ledger) RecordTransfer(ctx context.Context, t model.Transfer) (model.Transfer, error) {
	t.ID = newID(t.ID)
	if t.Date.IsZero() {
		t.Date = l.Clock.now()
	}
	t.IsPending = false
	err := l.Store.Update(ctx, func(c *store.Collections) error {
		c.Transfers = append(c.Transfers, t)
		applyTransfer(c, t)
		return nil
	})
	return t, err
}

// RecordRepayment logs r and reduces what the person owes, dropping the
// balance once it is paid off. Names match case-insensitively; an unknown
// name only logs the repayment.
func (l *Ledger) RecordRepayment(ctx context.Context, r model.Repayment) (model.Repayment, error) {
	r.ID = newID(r.ID)
	now := l.Clock.now()
	if r.Date.IsZero() {
		r.Date = now
	}
	err := l.Store.Update(ctx, func(c *store.Collections) error {
		c.Repayments = append(c.Repayments, r)
		if b := c.Balance(r.UserID, r.PersonName); b != nil {
			reduceBalance(c, b, r.Amount, now)
		}
		return nil
	})
	return r, err
}

// SettleUpBalance repays the full outstanding balance for personName and
// dismisses the friend-balance reminder for it. It returns nil when nothing is owed.
func (l *Ledger) SettleUpBalance(ctx context.Context, userID, personName string) (*model.Repayment, error) {
	now := l.Clock.now()
	var settled *model.Repayment
	err := l.Store.Update(ctx, func(c *store.Collections) error {
		b := c.Balance(userID, personName)
		if b == nil {
			return nil
		}
		r := model.Repayment{
			ID:         uuid.NewString(),
			UserID:     userID,
			PersonName: b.PersonName,
			Amount:     b.Amount,
			Date:       now,
			Notes:      "Settled up",
		}
		c.Repayments = append(c.Repayments, r)
		balanceID := b.ID
		c.RemoveBalance(balanceID)
		for i := range c.ActionItems {
			if c.ActionItems[i].Matches(userID, model.ActionFriendBalance, balanceID) {
				c.ActionItems[i].IsDismissed = true
			}
		}
		settled = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return settled, nil
}

// ReconcileAccount sets the account balance to actual, recording the
// difference as a Reconciliation expense. Differences within one cent are
// ignored and nil is returned.
func (l *Ledger) ReconcileAccount(ctx context.Context, accountID string, actual decimal.Decimal, notes string) (*model.Expense, error) {
	now := l.Clock.now()
	var created *model.Expense
	err := l.Store.Update(ctx, func(c *store.Collections) error {
		acct := c.Account(accountID)
		if acct == nil {
			return nil
		}
		diff := actual.Sub(acct.Balance)
		if diff.Abs().LessThanOrEqual(reconcileTolerance) {
			return nil
		}
		direction := "increased"
		if diff.IsNegative() {
			direction = "decreased"
		}
		desc := fmt.Sprintf("Balance %s by %s", direction, diff.Abs().StringFixed(2))
		if n := strings.TrimSpace(notes); n != "" {
			desc += ": " + n
		}
		e := model.Expense{
			ID:           uuid.NewString(),
			UserID:       acct.UserID,
			Amount:       diff.Abs(),
			Date:         now,
			Description:  desc,
			CategoryName: ReconciliationCategory,
			AccountID:    acct.ID,
		}
		c.Expenses = append(c.Expenses, e)
		acct.Balance = actual
		created = &e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Balances lists what people owe userID.
func (l *Ledger) Balances(userID string) []model.BalanceOwed {
	var out []model.BalanceOwed
	l.Store.View(func(c *store.Collections) {
		for _, b := range c.Balances {
			if b.UserID == userID {
				out = append(out, b)
			}
		}
	})
	return out
}

func applyExpense(c *store.Collections, e model.Expense, now time.Time) {
	share := e.UserShare()
	if acct := c.Account(e.AccountID); acct != nil {
		acct.Balance = acct.Balance.Sub(share)
	}
	if cat := c.Budget(e.UserID, e.CategoryName, int(e.Date.Month()), e.Date.Year()); cat != nil {
		cat.Spent = cat.Spent.Add(share)
	}
	for _, p := range e.SplitParticipants {
		if p.IsCurrentUser || !p.Amount.IsPositive() {
			continue
		}
		if b := c.Balance(e.UserID, p.Name); b != nil {
			b.Amount = b.Amount.Add(p.Amount)
			b.LastUpdated = now
			continue
		}
		c.Balances = append(c.Balances, model.BalanceOwed{
			ID:          uuid.NewString(),
			UserID:      e.UserID,
			PersonName:  p.Name,
			Amount:      p.Amount,
			LastUpdated: now,
			IsOwedToMe:  true,
		})
	}
}

func reverseExpense(c *store.Collections, e model.Expense, now time.Time) {
	share := e.UserShare()
	if acct := c.Account(e.AccountID); acct != nil {
		acct.Balance = acct.Balance.Add(share)
	}
	if cat := c.Budget(e.UserID, e.CategoryName, int(e.Date.Month()), e.Date.Year()); cat != nil {
		cat.Spent = cat.Spent.Sub(share)
	}
	for _, p := range e.SplitParticipants {
		if p.IsCurrentUser || !p.Amount.IsPositive() {
			continue
		}
		if b := c.Balance(e.UserID, p.Name); b != nil {
			reduceBalance(c, b, p.Amount, now)
		}
	}
}

func applyTransfer(c *store.Collections, t model.Transfer) {
	if from := c.Account(t.FromAccountID); from != nil {
		from.Balance = from.Balance.Sub(t.Amount)
	}
	if to := c.Account(t.ToAccountID); to != nil {
		to.Balance = to.Balance.Add(t.Amount)
	}
}

func reduceBalance(c *store.Collections, b *model.BalanceOwed, amount decimal.Decimal, now time.Time) {
	b.Amount = b.Amount.Sub(amount)
	b.LastUpdated = now
	if !b.Amount.IsPositive() {
		c.RemoveBalance(b.ID)
	}
}

// maxNameDistance is the largest normalized edit distance at which
// SuggestPerson offers a name.
const maxNameDistance = 0.34

// SuggestPerson returns the existing balance name closest to name when no
// balance matches it exactly. It never changes a balance.
func (l *Ledger) SuggestPerson(userID, name string) (string, bool) {
	want := strings.ToUpper(strings.TrimSpace(name))
	if want == "" {
		return "", false
	}
	var (
		best  string
		found bool
	)
	l.Store.View(func(c *store.Collections) {
		if c.Balance(userID, name) != nil {
			return
		}
		bestScore := maxNameDistance
		for _, b := range c.Balances {
			if b.UserID != userID || !b.IsOwedToMe {
				continue
			}
			have := strings.ToUpper(strings.TrimSpace(b.PersonName))
			longest := len(have)
			if len(want) > longest {
				longest = len(want)
			}
			score := float64(levenshtein.ComputeDistance(want, have)) / float64(longest)
			if score < bestScore {
				best, bestScore, found = b.PersonName, score, true
			}
		}
	})
	return best, found
}

func isReconciliation(e model.Expense) bool {
	return e.CategoryName == ReconciliationCategory
}

package store

import (
	"strings"

	"github.com/jask/pocketledger/internal/model"
)

// Collections holds every entity collection in insertion order.
// Lookup helpers return pointers into the slices so callers can mutate in place.
type Collections struct {
	Accounts           []model.Account
	Expenses           []model.Expense
	Budgets            []model.BudgetCategory
	Subscriptions      []model.Subscription
	Balances           []model.BalanceOwed
	Repayments         []model.Repayment
	Transfers          []model.Transfer
	ScheduledTransfers []model.ScheduledTransfer
	Salaries           []model.SalaryIncome
	Incomes            []model.IncomeTransaction
	ActionItems        []model.ActionItem
	IOUs               []model.FriendIOU
	Reviews            []model.MonthlyReviewStatus
}

func (c *Collections) clone() Collections {
	out := Collections{
		Accounts:           append([]model.Account(nil), c.Accounts...),
		Expenses:           append([]model.Expense(nil), c.Expenses...),
		Budgets:            append([]model.BudgetCategory(nil), c.Budgets...),
		Subscriptions:      append([]model.Subscription(nil), c.Subscriptions...),
		Balances:           append([]model.BalanceOwed(nil), c.Balances...),
		Repayments:         append([]model.Repayment(nil), c.Repayments...),
		Transfers:          append([]model.Transfer(nil), c.Transfers...),
		ScheduledTransfers: append([]model.ScheduledTransfer(nil), c.ScheduledTransfers...),
		Salaries:           append([]model.SalaryIncome(nil), c.Salaries...),
		Incomes:            append([]model.IncomeTransaction(nil), c.Incomes...),
		ActionItems:        append([]model.ActionItem(nil), c.ActionItems...),
		IOUs:               append([]model.FriendIOU(nil), c.IOUs...),
		Reviews:            append([]model.MonthlyReviewStatus(nil), c.Reviews...),
	}
	for i := range out.Expenses {
		out.Expenses[i].SplitParticipants = append([]model.SplitParticipant(nil), out.Expenses[i].SplitParticipants...)
	}
	return out
}

func (c *Collections) Account(id string) *model.Account {
	for i := range c.Accounts {
		if c.Accounts[i].ID == id {
			return &c.Accounts[i]
		}
	}
	return nil
}

func (c *Collections) Expense(id string) *model.Expense {
	for i := range c.Expenses {
		if c.Expenses[i].ID == id {
			return &c.Expenses[i]
		}
	}
	return nil
}

// Budget finds the category for (userID, name, month, year).
func (c *Collections) Budget(userID, name string, month, year int) *model.BudgetCategory {
	for i := range c.Budgets {
		b := &c.Budgets[i]
		if b.UserID == userID && b.Name == name && b.Month == month && b.Year == year {
			return b
		}
	}
	return nil
}

func (c *Collections) Subscription(id string) *model.Subscription {
	for i := range c.Subscriptions {
		if c.Subscriptions[i].ID == id {
			return &c.Subscriptions[i]
		}
	}
	return nil
}

// Balance finds the balance owed to the user by personName, ignoring case.
func (c *Collections) Balance(userID, personName string) *model.BalanceOwed {
	for i := range c.Balances {
		b := &c.Balances[i]
		if b.UserID == userID && b.IsOwedToMe && strings.EqualFold(strings.TrimSpace(b.PersonName), strings.TrimSpace(personName)) {
			return b
		}
	}
	return nil
}

// RemoveBalance drops the balance row with id.
func (c *Collections) RemoveBalance(id string) {
	c.Balances = filter(c.Balances, func(b model.BalanceOwed) bool { return b.ID != id })
}

func (c *Collections) ScheduledTransfer(id string) *model.ScheduledTransfer {
	for i := range c.ScheduledTransfers {
		if c.ScheduledTransfers[i].ID == id {
			return &c.ScheduledTransfers[i]
		}
	}
	return nil
}

func (c *Collections) Salary(id string) *model.SalaryIncome {
	for i := range c.Salaries {
		if c.Salaries[i].ID == id {
			return &c.Salaries[i]
		}
	}
	return nil
}

func (c *Collections) ActionItem(id string) *model.ActionItem {
	for i := range c.ActionItems {
		if c.ActionItems[i].ID == id {
			return &c.ActionItems[i]
		}
	}
	return nil
}

// RemoveActionItems drops every item matched by drop.
func (c *Collections) RemoveActionItems(drop func(model.ActionItem) bool) {
	c.ActionItems = filter(c.ActionItems, func(a model.ActionItem) bool { return !drop(a) })
}

func (c *Collections) IOU(id string) *model.FriendIOU {
	for i := range c.IOUs {
		if c.IOUs[i].ID == id {
			return &c.IOUs[i]
		}
	}
	return nil
}

// Review finds the status row for (userID, month, year).
func (c *Collections) Review(userID string, month, year int) *model.MonthlyReviewStatus {
	for i := range c.Reviews {
		r := &c.Reviews[i]
		if r.UserID == userID && r.Month == month && r.Year == year {
			return r
		}
	}
	return nil
}

func filter[T any](in []T, keep func(T) bool) []T {
	out := in[:0]
	for _, v := range in {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}

// Remove deletes the element of in whose id matches.
func Remove[T any](in []T, id string, idOf func(T) string) []T {
	return filter(in, func(v T) bool { return idOf(v) != id })
}

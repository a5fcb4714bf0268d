package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jask/pocketledger/internal/model"
	"github.com/jask/pocketledger/internal/store"
)

// Income tracks expected salary deposits.
type Income struct {
	Store *store.Store
	Clock Clock
}

// SaveSalary inserts s or replaces the salary with the same id.
func (i *Income) SaveSalary(ctx context.Context, s model.SalaryIncome) (model.SalaryIncome, error) {
	s.ID = newID(s.ID)
	err := i.Store.Update(ctx, func(c *store.Collections) error {
		if existing := c.Salary(s.ID); existing != nil {
			*existing = s
			return nil
		}
		c.Salaries = append(c.Salaries, s)
		return nil
	})
	return s, err
}

// DeleteSalary removes the salary and its pending reminders.
func (i *Income) DeleteSalary(ctx context.Context, id string) error {
	return i.Store.Update(ctx, func(c *store.Collections) error {
		s := c.Salary(id)
		if s == nil {
			return nil
		}
		userID := s.UserID
		c.Salaries = store.Remove(c.Salaries, id, func(s model.SalaryIncome) string { return s.ID })
		removeRelated(c, userID, model.ActionSalaryPending, id)
		return nil
	})
}

// ConfirmDeposit records that amount arrived for the salary. The deposit
// account is credited and the next expected date moves one pay period on.
// A zero amount means the expected amount.
func (i *Income) ConfirmDeposit(ctx context.Context, salaryID string, amount decimal.Decimal) (model.IncomeTransaction, error) {
	now := i.Clock.now()
	var tx model.IncomeTransaction
	err := i.Store.Update(ctx, func(c *store.Collections) error {
		s := c.Salary(salaryID)
		if s == nil {
			return fmt.Errorf("confirm deposit %s: %w", salaryID, ErrNotFound)
		}
		if amount.IsZero() {
			amount = s.Amount
		}
		tx = model.IncomeTransaction{
			ID:        uuid.NewString(),
			UserID:    s.UserID,
			SalaryID:  s.ID,
			Amount:    amount,
			AccountID: s.AccountID,
			Date:      now,
		}
		c.Incomes = append(c.Incomes, tx)
		if acct := c.Account(s.AccountID); acct != nil {
			acct.Balance = acct.Balance.Add(amount)
		}
		s.NextExpectedDate = s.NextAfter(s.NextExpectedDate)
		removeRelated(c, s.UserID, model.ActionSalaryPending, s.ID)
		return nil
	})
	return tx, err
}

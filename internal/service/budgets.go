package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jask/pocketledger/internal/model"
	"github.com/jask/pocketledger/internal/store"
)

// Budgets manages monthly category limits.
type Budgets struct {
	Store *store.Store
}

// Save upserts the category keyed by (userId, name, month, year). Spend
// already recorded against an existing category is preserved.
func (b *Budgets) Save(ctx context.Context, cat model.BudgetCategory) (model.BudgetCategory, error) {
	cat.Name = strings.TrimSpace(cat.Name)
	err := b.Store.Update(ctx, func(c *store.Collections) error {
		if existing := c.Budget(cat.UserID, cat.Name, cat.Month, cat.Year); existing != nil {
			existing.MonthlyLimit = cat.MonthlyLimit
			cat = *existing
			return nil
		}
		cat.ID = newID(cat.ID)
		c.Budgets = append(c.Budgets, cat)
		return nil
	})
	return cat, err
}

// Delete removes the category.
func (b *Budgets) Delete(ctx context.Context, id string) error {
	return b.Store.Update(ctx, func(c *store.Collections) error {
		c.Budgets = store.Remove(c.Budgets, id, func(v model.BudgetCategory) string { return v.ID })
		removeRelatedAny(c, model.ActionOverspending, id)
		return nil
	})
}

// Month lists the user's categories for (month, year).
func (b *Budgets) Month(userID string, month, year int) []model.BudgetCategory {
	var out []model.BudgetCategory
	b.Store.View(func(c *store.Collections) {
		for _, cat := range c.Budgets {
			if cat.UserID == userID && cat.Month == month && cat.Year == year {
				out = append(out, cat)
			}
		}
	})
	return out
}

// Rollover copies the previous month's limits into (month, year) with no
// spend. Categories that already exist for the month are left alone. It
// returns the number of categories created.
func (b *Budgets) Rollover(ctx context.Context, userID string, month, year int) (int, error) {
	pm, py := model.PreviousMonth(month, year)
	created := 0
	err := b.Store.Update(ctx, func(c *store.Collections) error {
		var prev []model.BudgetCategory
		for _, cat := range c.Budgets {
			if cat.UserID == userID && cat.Month == pm && cat.Year == py {
				prev = append(prev, cat)
			}
		}
		for _, cat := range prev {
			if c.Budget(userID, cat.Name, month, year) != nil {
				continue
			}
			c.Budgets = append(c.Budgets, model.BudgetCategory{
				ID:           uuid.NewString(),
				UserID:       userID,
				Name:         cat.Name,
				MonthlyLimit: cat.MonthlyLimit,
				Month:        month,
				Year:         year,
				Spent:        decimal.Zero,
			})
			created++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}

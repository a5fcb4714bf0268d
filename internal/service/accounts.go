package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/jask/pocketledger/internal/model"
	"github.com/jask/pocketledger/internal/store"
)

// Accounts is plain account CRUD. Deleting an account leaves the expenses and
// transfers that reference it untouched.
type Accounts struct {
	Store *store.Store
}

func (a *Accounts) Save(ctx context.Context, acct model.Account) (model.Account, error) {
	acct.ID = newID(acct.ID)
	acct.Name = strings.TrimSpace(acct.Name)
	switch acct.Type {
	case model.AccountChecking, model.AccountSavings, model.AccountCreditCard:
	default:
		return acct, fmt.Errorf("account type %q: %w", acct.Type, ErrInvalid)
	}
	err := a.Store.Update(ctx, func(c *store.Collections) error {
		if existing := c.Account(acct.ID); existing != nil {
			*existing = acct
			return nil
		}
		c.Accounts = append(c.Accounts, acct)
		return nil
	})
	return acct, err
}

func (a *Accounts) Delete(ctx context.Context, id string) error {
	return a.Store.Update(ctx, func(c *store.Collections) error {
		c.Accounts = store.Remove(c.Accounts, id, func(v model.Account) string { return v.ID })
		removeRelatedAny(c, model.ActionCreditCardUsage, id)
		return nil
	})
}

// List returns the user's accounts in creation order.
func (a *Accounts) List(userID string) []model.Account {
	var out []model.Account
	a.Store.View(func(c *store.Collections) {
		for _, acct := range c.Accounts {
			if acct.UserID == userID {
				out = append(out, acct)
			}
		}
	})
	return out
}

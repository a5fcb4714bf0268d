package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jask/pocketledger/internal/blobstore"
	"github.com/jask/pocketledger/internal/model"
	"github.com/jask/pocketledger/internal/store"
)

const testUser = "u1"

// testClock is a settable clock shared by every service in a fixture.
type testClock struct{ now time.Time }

func (c *testClock) Clock() Clock { return func() time.Time { return c.now } }

func (c *testClock) set(y int, m time.Month, d int) {
	c.now = time.Date(y, m, d, 9, 30, 0, 0, time.UTC)
}

type fixture struct {
	ctx   context.Context
	store *store.Store
	clock *testClock

	ledger    *Ledger
	engine    *ActionEngine
	transfers *Transfers
	income    *Income
	subs      *Subscriptions
	budgets   *Budgets
	reviews   *Reviews
	friends   *Friends
	accounts  *Accounts
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	s := store.New(blobstore.NewMemory())
	require.NoError(t, s.Load(ctx))
	clk := &testClock{}
	clk.set(2026, time.March, 10)
	c := clk.Clock()
	return &fixture{
		ctx:       ctx,
		store:     s,
		clock:     clk,
		ledger:    &Ledger{Store: s, Clock: c},
		engine:    &ActionEngine{Store: s, Clock: c},
		transfers: &Transfers{Store: s, Clock: c},
		income:    &Income{Store: s, Clock: c},
		subs:      &Subscriptions{Store: s, Clock: c},
		budgets:   &Budgets{Store: s},
		reviews:   &Reviews{Store: s, Clock: c},
		friends:   &Friends{Store: s, Clock: c},
		accounts:  &Accounts{Store: s},
	}
}

func (f *fixture) account(t *testing.T, name string, balance string) model.Account {
	t.Helper()
	acct, err := f.accounts.Save(f.ctx, model.Account{UserID: testUser, Name: name, Type: model.AccountChecking, Balance: dec(balance)})
	require.NoError(t, err)
	return acct
}

func (f *fixture) balanceOf(id string) decimal.Decimal {
	var out decimal.Decimal
	f.store.View(func(c *store.Collections) {
		if a := c.Account(id); a != nil {
			out = a.Balance
		}
	})
	return out
}

func (f *fixture) itemsOfType(typ model.ActionType) []model.ActionItem {
	var out []model.ActionItem
	for _, it := range f.engine.Items(testUser) {
		if it.Type == typ {
			out = append(out, it)
		}
	}
	return out
}

func (f *fixture) snapshot() store.Collections {
	var out store.Collections
	f.store.View(func(c *store.Collections) { out = *c })
	return out
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func requireDec(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, dec(want).Equal(got), "want %s, got %s", want, got)
}

func intPtr(n int) *int { return &n }

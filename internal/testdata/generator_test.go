package testdata

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/pocketledger/internal/blobstore"
	"github.com/jask/pocketledger/internal/model"
	"github.com/jask/pocketledger/internal/service"
	"github.com/jask/pocketledger/internal/store"
)

func TestSeedPopulatesEveryRule(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := store.New(blobstore.NewMemory())
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	clock := service.Clock(func() time.Time { return now })

	svc := Services{
		Accounts:      &service.Accounts{Store: s},
		Budgets:       &service.Budgets{Store: s},
		Ledger:        &service.Ledger{Store: s, Clock: clock},
		Subscriptions: &service.Subscriptions{Store: s, Clock: clock},
		Income:        &service.Income{Store: s, Clock: clock},
		Transfers:     &service.Transfers{Store: s, Clock: clock},
		Friends:       &service.Friends{Store: s, Clock: clock},
	}
	require.NoError(t, Seed(ctx, svc, "u1", now))

	s.View(func(c *store.Collections) {
		require.Len(t, c.Accounts, 3)
		require.Len(t, c.Budgets, 4)
		require.Len(t, c.Expenses, 16)
		require.Len(t, c.Balances, 1)
		require.Len(t, c.IOUs, 1)
	})

	engine := &service.ActionEngine{Store: s, Clock: clock}
	require.NoError(t, engine.Generate(ctx, "u1"))
	types := map[model.ActionType]bool{}
	for _, it := range engine.Items("u1") {
		types[it.Type] = true
	}
	for _, want := range []model.ActionType{
		model.ActionSalaryPending, model.ActionSubscriptionDue, model.ActionFriendBalance,
		model.ActionPendingTransfer, model.ActionMonthlyFinanceReview, model.ActionCreditCardUsage,
	} {
		require.Truef(t, types[want], "missing %s", want)
	}
}

// Package testdata seeds a store with sample data through the services.
package testdata

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jask/pocketledger/internal/model"
	"github.com/jask/pocketledger/internal/service"
)

// Services bundles the services used by Seed.
type Services struct {
	Accounts      *service.Accounts
	Budgets       *service.Budgets
	Ledger        *service.Ledger
	Subscriptions *service.Subscriptions
	Income        *service.Income
	Transfers     *service.Transfers
	Friends       *service.Friends
}

// Seed creates sample accounts, budgets, expenses and recurring items for
// userID, dated around now.
func Seed(ctx context.Context, s Services, userID string, now time.Time) error {
	rng := rand.New(rand.NewSource(now.UnixNano()))
	day := model.DayOf(now)
	month, year := int(now.Month()), now.Year()

	limit, warn := decimal.NewFromInt(2000), decimal.NewFromInt(80)
	everyday, err := s.Accounts.Save(ctx, model.Account{UserID: userID, Name: "Everyday", Type: model.AccountChecking, Balance: decimal.NewFromInt(2400)})
	if err != nil {
		return err
	}
	savings, err := s.Accounts.Save(ctx, model.Account{UserID: userID, Name: "Savings", Type: model.AccountSavings, Balance: decimal.NewFromInt(8000)})
	if err != nil {
		return err
	}
	if _, err := s.Accounts.Save(ctx, model.Account{
		UserID: userID, Name: "Visa", Type: model.AccountCreditCard, Balance: decimal.NewFromInt(-1650),
		CreditLimit: &limit, CreditUsageWarning: &warn,
	}); err != nil {
		return err
	}

	budgets := map[string]int64{"Groceries": 600, "Dining": 250, "Transport": 150, "Streaming": 40}
	for _, name := range []string{"Groceries", "Dining", "Transport", "Streaming"} {
		if _, err := s.Budgets.Save(ctx, model.BudgetCategory{
			UserID: userID, Name: name, MonthlyLimit: decimal.NewFromInt(budgets[name]), Month: month, Year: year,
		}); err != nil {
			return fmt.Errorf("seed budget %s: %w", name, err)
		}
	}

	descs := []struct{ desc, category string }{
		{"WOOLWORTHS", "Groceries"},
		{"ALDI", "Groceries"},
		{"UBER EATS* SUSHI", "Dining"},
		{"CAFE", "Dining"},
		{"MYKI TOPUP", "Transport"},
	}
	for i := 0; i < 15; i++ {
		pick := descs[rng.Intn(len(descs))]
		cents := int64(rng.Intn(6000) + 500)
		if _, err := s.Ledger.SaveExpense(ctx, model.Expense{
			UserID:       userID,
			Amount:       decimal.New(cents, -2),
			Date:         day.AddDate(0, 0, -rng.Intn(10)),
			Description:  pick.desc,
			CategoryName: pick.category,
			AccountID:    everyday.ID,
		}); err != nil {
			return err
		}
	}
	if _, err := s.Ledger.SaveExpense(ctx, model.Expense{
		UserID: userID, Amount: decimal.NewFromInt(120), Date: day, Description: "Dinner with Sam",
		CategoryName: "Dining", AccountID: everyday.ID,
		SplitParticipants: []model.SplitParticipant{
			{Name: "You", Amount: decimal.NewFromInt(60), IsCurrentUser: true},
			{Name: "Sam", Amount: decimal.NewFromInt(60)},
		},
	}); err != nil {
		return err
	}

	if _, err := s.Subscriptions.Save(ctx, model.Subscription{
		UserID: userID, Name: "Music", Amount: decimal.RequireFromString("11.99"), BillingCycle: model.CycleMonthly,
		NextBillingDate: day.AddDate(0, 0, 3), CategoryName: "Streaming", AccountID: everyday.ID, IsActive: true,
	}); err != nil {
		return err
	}
	if _, err := s.Income.SaveSalary(ctx, model.SalaryIncome{
		UserID: userID, Amount: decimal.NewFromInt(3200), Frequency: model.FrequencyBiweekly,
		NextExpectedDate: day.AddDate(0, 0, 2), AccountID: everyday.ID, IsActive: true,
	}); err != nil {
		return err
	}
	notes := "Weekly savings"
	if _, err := s.Transfers.Schedule(ctx, model.ScheduledTransfer{
		UserID: userID, FromAccountID: everyday.ID, ToAccountID: savings.ID, Amount: decimal.NewFromInt(100),
		ScheduledDate: day, RecurrenceDays: intPtr(7), Notes: &notes,
	}); err != nil {
		return err
	}
	if _, err := s.Friends.Save(ctx, model.FriendIOU{
		UserID: userID, PersonName: "Alex", Amount: decimal.NewFromInt(20), Direction: model.YouOwe,
		Notes: "Concert tickets", Date: day.AddDate(0, 0, -5),
	}); err != nil {
		return err
	}
	return nil
}

func intPtr(n int) *int { return &n }

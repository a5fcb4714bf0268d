package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType is the kind of account a balance is held in.
type AccountType string

const (
	AccountChecking   AccountType = "checking"
	AccountSavings    AccountType = "savings"
	AccountCreditCard AccountType = "creditCard"
)

// Account represents a user account. Credit-card balances go negative as they are used.
type Account struct {
	ID                 string           `json:"id"`
	UserID             string           `json:"userId"`
	Name               string           `json:"name"`
	Type               AccountType      `json:"type"`
	Balance            decimal.Decimal  `json:"balance"`
	CreditLimit        *decimal.Decimal `json:"creditLimit,omitempty"`
	CreditUsageWarning *decimal.Decimal `json:"creditUsageWarning,omitempty"` // percent of limit
}

// CreditUsage returns used credit as a percentage of the limit. ok is false
// for non credit-card accounts or when no positive limit is set.
func (a Account) CreditUsage() (pct decimal.Decimal, ok bool) {
	if a.Type != AccountCreditCard || a.CreditLimit == nil || !a.CreditLimit.IsPositive() {
		return decimal.Zero, false
	}
	used := a.Balance.Neg()
	if used.IsNegative() {
		used = decimal.Zero
	}
	return used.Div(*a.CreditLimit).Mul(decimal.NewFromInt(100)), true
}

// BudgetCategory is a monthly spending limit for a named category.
type BudgetCategory struct {
	ID           string          `json:"id"`
	UserID       string          `json:"userId"`
	Name         string          `json:"name"`
	MonthlyLimit decimal.Decimal `json:"monthlyLimit"`
	Month        int             `json:"month"`
	Year         int             `json:"year"`
	Spent        decimal.Decimal `json:"spent"`
}

// Overage is how far spent exceeds the limit, or zero.
func (b BudgetCategory) Overage() decimal.Decimal {
	if b.Spent.GreaterThan(b.MonthlyLimit) {
		return b.Spent.Sub(b.MonthlyLimit)
	}
	return decimal.Zero
}

// SplitParticipant is one person's share of a split expense.
type SplitParticipant struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Amount        decimal.Decimal `json:"amount"`
	IsCurrentUser bool            `json:"isCurrentUser"`
}

// Expense is a single spend against an account.
type Expense struct {
	ID                string             `json:"id"`
	UserID            string             `json:"userId"`
	Amount            decimal.Decimal    `json:"amount"`
	Date              time.Time          `json:"date"`
	Description       string             `json:"description"`
	CategoryName      string             `json:"categoryName"`
	AccountID         string             `json:"accountId"`
	IsSubscription    bool               `json:"isSubscription"`
	SubscriptionID    *string            `json:"subscriptionId,omitempty"`
	SplitParticipants []SplitParticipant `json:"splitParticipants"`
	IsPending         bool               `json:"isPending"`
}

// UserShare is the part of the expense the current user pays.
func (e Expense) UserShare() decimal.Decimal {
	if len(e.SplitParticipants) == 0 {
		return e.Amount
	}
	for _, p := range e.SplitParticipants {
		if p.IsCurrentUser {
			return p.Amount
		}
	}
	return decimal.Zero
}

// OwedByOthers sums the shares of every participant except the current user.
func (e Expense) OwedByOthers() decimal.Decimal {
	total := decimal.Zero
	for _, p := range e.SplitParticipants {
		if !p.IsCurrentUser {
			total = total.Add(p.Amount)
		}
	}
	return total
}

// BalanceOwed tracks money a person owes the user (or the reverse).
type BalanceOwed struct {
	ID          string          `json:"id"`
	UserID      string          `json:"userId"`
	PersonName  string          `json:"personName"`
	Amount      decimal.Decimal `json:"amount"`
	LastUpdated time.Time       `json:"lastUpdated"`
	IsOwedToMe  bool            `json:"isOwedToMe"`
}

// Repayment is an append-only record of money paid back.
type Repayment struct {
	ID         string          `json:"id"`
	UserID     string          `json:"userId"`
	PersonName string          `json:"personName"`
	Amount     decimal.Decimal `json:"amount"`
	Date       time.Time       `json:"date"`
	Notes      string          `json:"notes"`
}

// Transfer is a completed movement of money between two accounts.
type Transfer struct {
	ID            string          `json:"id"`
	UserID        string          `json:"userId"`
	FromAccountID string          `json:"fromAccountId"`
	ToAccountID   string          `json:"toAccountId"`
	Amount        decimal.Decimal `json:"amount"`
	Date          time.Time       `json:"date"`
	Notes         string          `json:"notes"`
	IsPending     bool            `json:"isPending"`
}

// ScheduledTransfer waits for explicit approval before any money moves.
type ScheduledTransfer struct {
	ID             string          `json:"id"`
	UserID         string          `json:"userId"`
	FromAccountID  string          `json:"fromAccountId"`
	ToAccountID    string          `json:"toAccountId"`
	Amount         decimal.Decimal `json:"amount"`
	ScheduledDate  time.Time       `json:"scheduledDate"`
	RecurrenceDays *int            `json:"recurrenceDays,omitempty"`
	Notes          *string         `json:"notes,omitempty"`
	IsCompleted    bool            `json:"isCompleted"`
	CompletedDate  *time.Time      `json:"completedDate,omitempty"`
}

// IsRecurring reports whether the transfer repeats every RecurrenceDays.
func (s ScheduledTransfer) IsRecurring() bool {
	return s.RecurrenceDays != nil && *s.RecurrenceDays > 0
}

// IsDue reports whether an occurrence falls on today. One-time transfers stay
// due once their day has passed; recurring ones only on exact multiples of the
// interval.
func (s ScheduledTransfer) IsDue(today time.Time) bool {
	if s.IsCompleted {
		return false
	}
	elapsed := DaysBetween(s.ScheduledDate, today)
	if elapsed < 0 {
		return false
	}
	if !s.IsRecurring() {
		return true
	}
	return elapsed%*s.RecurrenceDays == 0
}

// SalaryFrequency is how often a salary is paid.
type SalaryFrequency string

const (
	FrequencyWeekly      SalaryFrequency = "weekly"
	FrequencyBiweekly    SalaryFrequency = "biweekly"
	FrequencyMonthly     SalaryFrequency = "monthly"
	FrequencySemimonthly SalaryFrequency = "semimonthly"
	FrequencyCustom      SalaryFrequency = "custom"
)

// SalaryIncome is an expected recurring deposit.
type SalaryIncome struct {
	ID                string          `json:"id"`
	UserID            string          `json:"userId"`
	Amount            decimal.Decimal `json:"amount"`
	Frequency         SalaryFrequency `json:"frequency"`
	NextExpectedDate  time.Time       `json:"nextExpectedDate"`
	AccountID         string          `json:"accountId"`
	CustomDayInterval *int            `json:"customDayInterval,omitempty"`
	IsActive          bool            `json:"isActive"`
}

// IsDueSoon is true from three days before the expected date up to the day itself.
func (s SalaryIncome) IsDueSoon(today time.Time) bool {
	d := daysUntil(s.NextExpectedDate, today)
	return d >= 0 && d <= 3
}

// IsOverdue is true once the expected day has passed.
func (s SalaryIncome) IsOverdue(today time.Time) bool {
	return daysUntil(s.NextExpectedDate, today) < 0
}

// NextAfter returns the expected date that follows date.
func (s SalaryIncome) NextAfter(date time.Time) time.Time {
	switch s.Frequency {
	case FrequencyWeekly:
		return date.AddDate(0, 0, 7)
	case FrequencyBiweekly:
		return date.AddDate(0, 0, 14)
	case FrequencySemimonthly:
		return date.AddDate(0, 0, 15)
	case FrequencyCustom:
		if s.CustomDayInterval != nil && *s.CustomDayInterval > 0 {
			return date.AddDate(0, 0, *s.CustomDayInterval)
		}
		return date.AddDate(0, 1, 0)
	default:
		return AddMonthsClamped(date, 1)
	}
}

// IncomeTransaction records a confirmed salary deposit.
type IncomeTransaction struct {
	ID        string          `json:"id"`
	UserID    string          `json:"userId"`
	SalaryID  string          `json:"salaryId"`
	Amount    decimal.Decimal `json:"amount"`
	AccountID string          `json:"accountId"`
	Date      time.Time       `json:"date"`
}

// BillingCycle is how often a subscription charges.
type BillingCycle string

const (
	CycleWeekly    BillingCycle = "weekly"
	CycleMonthly   BillingCycle = "monthly"
	CycleQuarterly BillingCycle = "quarterly"
	CycleYearly    BillingCycle = "yearly"
)

// Subscription is a recurring charge.
type Subscription struct {
	ID              string          `json:"id"`
	UserID          string          `json:"userId"`
	Name            string          `json:"name"`
	Amount          decimal.Decimal `json:"amount"`
	BillingCycle    BillingCycle    `json:"billingCycle"`
	NextBillingDate time.Time       `json:"nextBillingDate"`
	CategoryName    string          `json:"categoryName"`
	AccountID       string          `json:"accountId"`
	IsActive        bool            `json:"isActive"`
}

// IsDueSoon is true within a week of the next billing date.
func (s Subscription) IsDueSoon(today time.Time) bool {
	d := daysUntil(s.NextBillingDate, today)
	return d >= 0 && d <= 7
}

// NextAfter returns the billing date following date.
func (s Subscription) NextAfter(date time.Time) time.Time {
	switch s.BillingCycle {
	case CycleWeekly:
		return date.AddDate(0, 0, 7)
	case CycleQuarterly:
		return AddMonthsClamped(date, 3)
	case CycleYearly:
		return AddMonthsClamped(date, 12)
	default:
		return AddMonthsClamped(date, 1)
	}
}

// IOUDirection says who owes whom on a FriendIOU.
type IOUDirection string

const (
	OwedToYou IOUDirection = "owedToYou"
	YouOwe    IOUDirection = "youOwe"
)

// FriendIOU is a manually tracked debt, independent of expense splits.
type FriendIOU struct {
	ID          string          `json:"id"`
	UserID      string          `json:"userId"`
	PersonName  string          `json:"personName"`
	Amount      decimal.Decimal `json:"amount"`
	Direction   IOUDirection    `json:"direction"`
	Notes       string          `json:"notes"`
	Date        time.Time       `json:"date"`
	IsSettled   bool            `json:"isSettled"`
	SettledDate *time.Time      `json:"settledDate,omitempty"`
}

// MonthlyReviewStatus tracks whether a month has been reviewed.
type MonthlyReviewStatus struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	Month       int        `json:"month"`
	Year        int        `json:"year"`
	IsCompleted bool       `json:"isCompleted"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

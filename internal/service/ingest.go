package service

import (
	"bufio"
	"context"
	"crypto/sha256"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jask/pocketledger/internal/model"
	"github.com/jask/pocketledger/internal/store"
)

// ImportService loads expenses from bank CSV exports. Rows are applied
// through the same effects as Ledger.SaveExpense; re-importing a file skips
// rows that were already imported.
type ImportService struct {
	Store *store.Store
	Clock Clock
}

type ImportResult struct {
	Imported int
	Skipped  int
	Errors   []error
}

type importRow struct {
	date        time.Time
	description string
	amount      decimal.Decimal
	category    string
	account     string
}

// ImportCSV reads rows of: date, description, amount, category, account.
// Dates are YYYY-MM-DD in tz. Amounts may carry a sign; the absolute value is spent.
func (s *ImportService) ImportCSV(ctx context.Context, userID string, r io.Reader, tz *time.Location) (ImportResult, error) {
	res := ImportResult{}
	var rows []importRow
	err := readCSV(r, &res, func(line int, rec []string) {
		if len(rec) < 5 { // date, description, amount, category, account
			res.Errors = append(res.Errors, fmt.Errorf("line %d: expected 5 columns", line))
			return
		}
		date, err := parseLocalDate(rec[0], tz)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("line %d date: %w", line, err))
			return
		}
		amount, err := parseAmount(rec[2])
		if err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("line %d amount: %w", line, err))
			return
		}
		rows = append(rows, importRow{
			date:        date,
			description: strings.TrimSpace(rec[1]),
			amount:      amount.Abs(),
			category:    strings.TrimSpace(rec[3]),
			account:     strings.TrimSpace(rec[4]),
		})
	})
	if err != nil {
		return res, err
	}
	return res, s.apply(ctx, userID, rows, &res)
}

// ImportANZSimple ingests an ANZ export with no headers: date, amount,
// description. Debits become uncategorised expenses; credits are skipped.
func (s *ImportService) ImportANZSimple(ctx context.Context, userID string, r io.Reader, accountName string, tz *time.Location) (ImportResult, error) {
	if strings.TrimSpace(accountName) == "" {
		accountName = "ANZ"
	}
	res := ImportResult{}
	var rows []importRow
	err := readCSV(r, &res, func(line int, rec []string) {
		if len(rec) < 3 {
			res.Errors = append(res.Errors, fmt.Errorf("line %d: expected 3 columns (date, amount, description)", line))
			return
		}
		date, err := parseANZDate(rec[0], tz)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("line %d date: %w", line, err))
			return
		}
		amount, err := parseAmount(rec[1])
		if err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("line %d amount: %w", line, err))
			return
		}
		if !amount.IsNegative() {
			res.Skipped++
			return
		}
		rows = append(rows, importRow{
			date:        date,
			description: strings.TrimSpace(rec[2]),
			amount:      amount.Abs(),
			account:     accountName,
		})
	})
	if err != nil {
		return res, err
	}
	return res, s.apply(ctx, userID, rows, &res)
}

func (s *ImportService) apply(ctx context.Context, userID string, rows []importRow, res *ImportResult) error {
	if len(rows) == 0 {
		return nil
	}
	now := s.Clock.now()
	imported, skipped := 0, 0
	err := s.Store.Update(ctx, func(c *store.Collections) error {
		for _, row := range rows {
			acct, err := accountForName(c, userID, row.account)
			if err != nil {
				return err
			}
			id := importedExpenseID(acct.ID, row)
			if c.Expense(id) != nil {
				skipped++
				continue
			}
			e := model.Expense{
				ID:           id,
				UserID:       userID,
				Amount:       row.amount,
				Date:         row.date,
				Description:  row.description,
				CategoryName: row.category,
				AccountID:    acct.ID,
			}
			c.Expenses = append(c.Expenses, e)
			applyExpense(c, e, now)
			imported++
		}
		return nil
	})
	if err != nil {
		return err
	}
	res.Imported += imported
	res.Skipped += skipped
	return nil
}

func readCSV(r io.Reader, res *ImportResult, row func(line int, rec []string)) error {
	csvr := csv.NewReader(bufio.NewReader(r))
	csvr.TrimLeadingSpace = true
	csvr.FieldsPerRecord = -1
	line := 0
	for {
		line++
		rec, err := csvr.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				res.Errors = append(res.Errors, fmt.Errorf("line %d: %w", line, err))
				continue
			}
			return err
		}
		row(line, rec)
	}
}

func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	s = strings.TrimPrefix(s, "+")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsZero() {
		return decimal.Zero, errors.New("amount is zero")
	}
	return d.Round(2), nil
}

func importedExpenseID(accountID string, row importRow) string {
	joined := strings.Join([]string{accountID, row.date.Format(time.DateOnly), row.amount.StringFixed(2), row.description}, "|")
	sum := sha256.Sum256([]byte(joined))
	return uuid.NewSHA1(uuid.NameSpaceOID, sum[:]).String()
}

func parseLocalDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	return time.ParseInLocation(time.DateOnly, strings.TrimSpace(s), loc)
}

func parseANZDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	layout := "2/01/2006" // day/month/year (supports single-digit day)
	return time.ParseInLocation(layout, strings.TrimSpace(s), loc)
}

// accountForName finds the user's account by name, creating a checking
// account with a stable id when none exists.
func accountForName(c *store.Collections, userID, name string) (model.Account, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Account{}, errors.New("account name required")
	}
	for _, acct := range c.Accounts {
		if acct.UserID == userID && strings.EqualFold(acct.Name, name) {
			return acct, nil
		}
	}
	acct := model.Account{
		ID:      deterministicAccountID(userID, name),
		UserID:  userID,
		Name:    name,
		Type:    model.AccountChecking,
		Balance: decimal.Zero,
	}
	c.Accounts = append(c.Accounts, acct)
	return acct, nil
}

func deterministicAccountID(userID, name string) string {
	key := userID + "/" + strings.ToLower(name)
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(key)).String()
}

package service

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/pocketledger/internal/blobstore"
	"github.com/jask/pocketledger/internal/database"
	"github.com/jask/pocketledger/internal/model"
	"github.com/jask/pocketledger/internal/store"
)

func setupImportTest(t *testing.T) (*ImportService, *sql.DB, context.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")
	migrations, err := filepath.Abs("../database/migrations")
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(dbPath, migrations))

	db, err := database.Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	s := store.New(blobstore.NewSQLite(db))
	require.NoError(t, s.Load(ctx))
	now := func() time.Time { return time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC) }
	return &ImportService{Store: s, Clock: now}, db, ctx
}

func TestImportCSV_HappyPath(t *testing.T) {
	t.Parallel()
	svc, db, ctx := setupImportTest(t)
	require.NoError(t, svc.Store.Update(ctx, func(c *store.Collections) error {
		c.Budgets = append(c.Budgets, model.BudgetCategory{ID: "g", UserID: testUser, Name: "Groceries", MonthlyLimit: dec("500"), Month: 3, Year: 2026})
		return nil
	}))

	data := "2026-03-01,WOOLWORTHS 123,-45.67,Groceries,Everyday\n" +
		"2026-03-03,FUEL,+60.00,Transport,Card"

	res, err := svc.ImportCSV(ctx, testUser, strings.NewReader(data), time.UTC)
	require.NoError(t, err)
	require.Empty(t, res.Errors)
	require.Equal(t, 2, res.Imported)
	require.Equal(t, 0, res.Skipped)

	reloaded := store.New(blobstore.NewSQLite(db))
	require.NoError(t, reloaded.Load(ctx))
	reloaded.View(func(c *store.Collections) {
		require.Len(t, c.Expenses, 2)
		require.Len(t, c.Accounts, 2)
		require.Equal(t, "Everyday", c.Accounts[0].Name)
		require.Equal(t, model.AccountChecking, c.Accounts[0].Type)
		requireDec(t, "-45.67", c.Accounts[0].Balance)
		requireDec(t, "-60", c.Accounts[1].Balance)
		requireDec(t, "45.67", c.Budgets[0].Spent)
	})
}

func TestImportCSV_ErrorsAndSkips(t *testing.T) {
	t.Parallel()
	svc, _, ctx := setupImportTest(t)

	data := "2026-03-01,WOOLWORTHS 123,-45.67,Groceries,Everyday\n" + // ok
		"not-a-date,BAD,10.00,Groceries,Everyday\n" + // bad date
		"2026-03-02,ZERO,0,Groceries,Everyday\n" + // zero amount
		"2026-03-02,SHORT,1.00\n" // missing columns

	res, err := svc.ImportCSV(ctx, testUser, strings.NewReader(data), time.UTC)
	require.NoError(t, err)
	require.Equal(t, 1, res.Imported)
	require.Len(t, res.Errors, 3)

	// the same file again only skips
	res, err = svc.ImportCSV(ctx, testUser, strings.NewReader(data), time.UTC)
	require.NoError(t, err)
	require.Equal(t, 0, res.Imported)
	require.Equal(t, 1, res.Skipped)

	svc.Store.View(func(c *store.Collections) {
		require.Len(t, c.Expenses, 1)
		requireDec(t, "-45.67", c.Accounts[0].Balance)
	})
}

func TestImportANZSimple(t *testing.T) {
	t.Parallel()
	svc, _, ctx := setupImportTest(t)
	require.NoError(t, svc.Store.Update(ctx, func(c *store.Collections) error {
		c.Accounts = append(c.Accounts, model.Account{ID: "anz", UserID: testUser, Name: "anz", Type: model.AccountChecking, Balance: dec("1000")})
		return nil
	}))

	data := "1/03/2026,-12.50,COFFEE\n" +
		"2/03/2026,2500.00,SALARY\n" +
		"13/03/2026,\"-1,020.00\",RENT"

	res, err := svc.ImportANZSimple(ctx, testUser, strings.NewReader(data), "", time.UTC)
	require.NoError(t, err)
	require.Empty(t, res.Errors)
	require.Equal(t, 2, res.Imported)
	require.Equal(t, 1, res.Skipped)

	svc.Store.View(func(c *store.Collections) {
		require.Len(t, c.Accounts, 1, "existing account matched by name")
		requireDec(t, "-32.50", c.Accounts[0].Balance)
		require.Equal(t, time.Date(2026, 3, 13, 0, 0, 0, 0, time.UTC), c.Expenses[1].Date)
	})
}

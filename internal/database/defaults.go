package database

import (
	"context"
	"database/sql"
	"strings"

	"github.com/jask/pocketledger/internal/database/repository"
)

// CurrencyKey is the blob key holding the active currency code.
const CurrencyKey = "currencyCode"

// SeedDefaults ensures a currency code exists for new databases.
// It is idempotent and safe to run on every startup.
func SeedDefaults(ctx context.Context, db *sql.DB, currency string) error {
	repo := repository.NewBlobRepo(db)
	existing, err := repo.Get(ctx, CurrencyKey)
	if err != nil {
		return err
	}
	if existing != nil && len(existing.Data) > 0 {
		return nil
	}
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		currency = "USD"
	}
	return repo.Upsert(ctx, repository.Blob{Key: CurrencyKey, Data: []byte(currency)})
}

package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jask/pocketledger/internal/store"
)

// MaintenanceService houses destructive/ops actions.
type MaintenanceService struct {
	Store *store.Store
	// DB is the SQLite handle when the local blob store is in use; nil otherwise.
	DB *sql.DB
}

// Reset wipes all user data. The currency setting and the schema are kept so
// the app can continue running.
func (s *MaintenanceService) Reset(ctx context.Context) error {
	if s.Store == nil {
		return fmt.Errorf("maintenance: store not configured")
	}
	if err := s.Store.Reset(ctx); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	if s.DB != nil {
		_, _ = s.DB.ExecContext(ctx, "VACUUM")
	}
	return nil
}

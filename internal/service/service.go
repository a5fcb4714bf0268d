package service

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jask/pocketledger/internal/model"
	"github.com/jask/pocketledger/internal/store"
)

var (
	// ErrNotFound is returned when an id-addressed operation names a missing entity.
	ErrNotFound = errors.New("not found")
	// ErrCompleted is returned when confirming or declining a finished scheduled transfer.
	ErrCompleted = errors.New("already completed")
	// ErrInvalid is returned for entities that break a model invariant.
	ErrInvalid = errors.New("invalid")
	// ErrReconciliation is returned when editing or deleting a balance correction.
	ErrReconciliation = errors.New("reconciliation expenses are final")
)

// Clock returns the current time. A nil Clock means time.Now.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}

// InLocation returns a Clock reporting wall time in loc.
func InLocation(loc *time.Location) Clock {
	if loc == nil {
		loc = time.Local
	}
	return func() time.Time { return time.Now().In(loc) }
}

func newID(id string) string {
	if id == "" {
		return uuid.NewString()
	}
	return id
}

// removeRelated drops every action item for (userID, t, related).
func removeRelated(c *store.Collections, userID string, t model.ActionType, related string) {
	c.RemoveActionItems(func(a model.ActionItem) bool { return a.Matches(userID, t, related) })
}

func strPtr(s string) *string { return &s }

// moneyIn formats amounts with two decimals and the currency code.
func moneyIn(currency string) func(decimal.Decimal) string {
	return func(d decimal.Decimal) string { return d.StringFixed(2) + " " + currency }
}

// removeRelatedAny drops items of type t pointing at related, for any user.
func removeRelatedAny(c *store.Collections, t model.ActionType, related string) {
	c.RemoveActionItems(func(a model.ActionItem) bool { return a.Type == t && a.Related() == related })
}

// Package store owns every entity collection and persists them through a blob store.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/jask/pocketledger/internal/blobstore"
)

// Collection keys as persisted in the blob store.
const (
	KeyAccounts           = "accounts"
	KeyExpenses           = "expenses"
	KeyBudgets            = "budgetCategories"
	KeySubscriptions      = "subscriptions"
	KeyBalances           = "balancesOwed"
	KeyRepayments         = "repayments"
	KeyTransfers          = "transfers"
	KeyScheduledTransfers = "scheduledTransfers"
	KeySalaries           = "salaryIncomes"
	KeyIncomes            = "incomeTransactions"
	KeyActionItems        = "actionItems"
	KeyIOUs               = "friendIOUs"
	KeyReviews            = "monthlyReviewStatuses"
	KeyCurrency           = "currencyCode"
)

// StorageError wraps a blob store failure.
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Observer is notified after every committed change.
type Observer func(ctx context.Context, snapshot Collections)

// Store is the entity store. All access goes through View and Update, which
// serialize on a single mutex.
type Store struct {
	mu        sync.Mutex
	blobs     blobstore.Store
	data      Collections
	currency  string
	observers []Observer
}

// New returns an empty store backed by blobs. Call Load to read persisted state.
func New(blobs blobstore.Store) *Store {
	return &Store{blobs: blobs, currency: "USD"}
}

// binding pairs a collection key with its slice inside Collections.
type binding struct {
	key string
	ptr any
}

func (c *Collections) bindings() []binding {
	return []binding{
		{KeyAccounts, &c.Accounts},
		{KeyExpenses, &c.Expenses},
		{KeyBudgets, &c.Budgets},
		{KeySubscriptions, &c.Subscriptions},
		{KeyBalances, &c.Balances},
		{KeyRepayments, &c.Repayments},
		{KeyTransfers, &c.Transfers},
		{KeyScheduledTransfers, &c.ScheduledTransfers},
		{KeySalaries, &c.Salaries},
		{KeyIncomes, &c.Incomes},
		{KeyActionItems, &c.ActionItems},
		{KeyIOUs, &c.IOUs},
		{KeyReviews, &c.Reviews},
	}
}

// Load replaces in-memory state with whatever the blob store holds.
// Keys that were never saved load as empty collections.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var next Collections
	for _, b := range next.bindings() {
		data, ok, err := s.blobs.Load(ctx, b.key)
		if err != nil {
			return &StorageError{Op: "load", Key: b.key, Err: err}
		}
		if !ok || len(data) == 0 {
			continue
		}
		if err := json.Unmarshal(data, b.ptr); err != nil {
			return &StorageError{Op: "decode", Key: b.key, Err: err}
		}
	}
	code, ok, err := s.blobs.Load(ctx, KeyCurrency)
	if err != nil {
		return &StorageError{Op: "load", Key: KeyCurrency, Err: err}
	}
	if ok && len(code) > 0 {
		s.currency = string(code)
	}
	s.data = next
	return nil
}

// View runs fn with read access to the collections.
func (s *Store) View(fn func(c *Collections)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.data)
}

// Update runs fn against the live collections, then persists every collection.
// If fn or the write fails, the collections are restored to their state before
// the call. Observers run after the lock is released.
func (s *Store) Update(ctx context.Context, fn func(c *Collections) error) error {
	s.mu.Lock()
	before := s.data.clone()
	if err := fn(&s.data); err != nil {
		s.data = before
		s.mu.Unlock()
		return err
	}
	if err := s.persist(ctx); err != nil {
		s.data = before
		s.mu.Unlock()
		return err
	}
	snapshot := s.data.clone()
	observers := append([]Observer(nil), s.observers...)
	s.mu.Unlock()

	for _, o := range observers {
		o(ctx, snapshot)
	}
	return nil
}

func (s *Store) persist(ctx context.Context) error {
	encoded := make(map[string][]byte, 13)
	for _, b := range s.data.bindings() {
		data, err := json.Marshal(b.ptr)
		if err != nil {
			return &StorageError{Op: "encode", Key: b.key, Err: err}
		}
		if string(data) == "null" {
			data = []byte("[]")
		}
		encoded[b.key] = data
	}
	if batcher, ok := s.blobs.(blobstore.Batcher); ok {
		if err := batcher.SaveBatch(ctx, encoded); err != nil {
			return &StorageError{Op: "save", Key: "*", Err: err}
		}
		return nil
	}
	for _, b := range s.data.bindings() {
		if err := s.blobs.Save(ctx, b.key, encoded[b.key]); err != nil {
			return &StorageError{Op: "save", Key: b.key, Err: err}
		}
	}
	return nil
}

// Observe registers o; observers are called in registration order.
func (s *Store) Observe(o Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, o)
}

// Currency returns the active currency code.
func (s *Store) Currency() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currency
}

// SetCurrency persists a new currency code.
func (s *Store) SetCurrency(ctx context.Context, code string) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return fmt.Errorf("currency code required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.blobs.Save(ctx, KeyCurrency, []byte(code)); err != nil {
		return &StorageError{Op: "save", Key: KeyCurrency, Err: err}
	}
	s.currency = code
	return nil
}

// Reset wipes every collection and persists the empty state.
func (s *Store) Reset(ctx context.Context) error {
	return s.Update(ctx, func(c *Collections) error {
		*c = Collections{}
		return nil
	})
}

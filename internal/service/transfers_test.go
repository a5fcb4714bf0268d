package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/pocketledger/internal/model"
)

func TestRecurringTransferConfirmAdvances(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	from := f.account(t, "Everyday", "500")
	to := f.account(t, "Savings", "0")
	d := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	st, err := f.transfers.Schedule(f.ctx, model.ScheduledTransfer{
		UserID: testUser, FromAccountID: from.ID, ToAccountID: to.ID, Amount: dec("100"),
		ScheduledDate: d, RecurrenceDays: intPtr(7),
	})
	require.NoError(t, err)
	pending := f.itemsOfType(model.ActionPendingTransfer)
	require.Len(t, pending, 1, "a schedule due today is surfaced immediately")
	require.Equal(t, st.ID, pending[0].Related())
	requireDec(t, "500", f.balanceOf(from.ID))

	tr, err := f.transfers.Confirm(f.ctx, st.ID)
	require.NoError(t, err)
	requireDec(t, "100", tr.Amount)
	require.Equal(t, f.clock.now, tr.Date)
	require.False(t, tr.IsPending)
	requireDec(t, "400", f.balanceOf(from.ID))
	requireDec(t, "100", f.balanceOf(to.ID))

	snap := f.snapshot()
	require.Len(t, snap.Transfers, 1)
	require.Len(t, snap.ScheduledTransfers, 1)
	require.Equal(t, d.AddDate(0, 0, 7), snap.ScheduledTransfers[0].ScheduledDate)
	require.False(t, snap.ScheduledTransfers[0].IsCompleted)
	require.Empty(t, f.itemsOfType(model.ActionPendingTransfer))
	require.Empty(t, f.transfers.Pending(testUser))
}

func TestOneTimeTransferConfirmCompletes(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	from := f.account(t, "Everyday", "500")
	to := f.account(t, "Savings", "0")

	st, err := f.transfers.Schedule(f.ctx, model.ScheduledTransfer{
		UserID: testUser, FromAccountID: from.ID, ToAccountID: to.ID, Amount: dec("50"),
		ScheduledDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), Notes: strPtr("rent buffer"),
	})
	require.NoError(t, err)
	require.Len(t, f.transfers.Pending(testUser), 1)

	tr, err := f.transfers.Confirm(f.ctx, st.ID)
	require.NoError(t, err)
	require.Equal(t, "rent buffer", tr.Notes)

	got := f.snapshot().ScheduledTransfers[0]
	require.True(t, got.IsCompleted)
	require.NotNil(t, got.CompletedDate)
	require.Equal(t, f.clock.now, *got.CompletedDate)

	_, err = f.transfers.Confirm(f.ctx, st.ID)
	require.ErrorIs(t, err, ErrCompleted)
	requireDec(t, "450", f.balanceOf(from.ID))
}

func TestDeclineNeverMovesMoney(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	from := f.account(t, "Everyday", "500")
	to := f.account(t, "Savings", "0")
	d := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	weekly, err := f.transfers.Schedule(f.ctx, model.ScheduledTransfer{UserID: testUser, FromAccountID: from.ID, ToAccountID: to.ID, Amount: dec("20"), ScheduledDate: d, RecurrenceDays: intPtr(14)})
	require.NoError(t, err)
	once, err := f.transfers.Schedule(f.ctx, model.ScheduledTransfer{UserID: testUser, FromAccountID: from.ID, ToAccountID: to.ID, Amount: dec("30"), ScheduledDate: d})
	require.NoError(t, err)
	require.Len(t, f.itemsOfType(model.ActionPendingTransfer), 2)

	require.NoError(t, f.transfers.Decline(f.ctx, weekly.ID))
	require.NoError(t, f.transfers.Decline(f.ctx, once.ID))

	snap := f.snapshot()
	require.Empty(t, snap.Transfers)
	require.Equal(t, d.AddDate(0, 0, 14), snap.ScheduledTransfers[0].ScheduledDate)
	require.False(t, snap.ScheduledTransfers[0].IsCompleted)
	require.True(t, snap.ScheduledTransfers[1].IsCompleted)
	requireDec(t, "500", f.balanceOf(from.ID))
	requireDec(t, "0", f.balanceOf(to.ID))
	require.Empty(t, f.itemsOfType(model.ActionPendingTransfer))

	require.ErrorIs(t, f.transfers.Decline(f.ctx, once.ID), ErrCompleted)
	require.ErrorIs(t, f.transfers.Decline(f.ctx, "missing"), ErrNotFound)
	_, err = f.transfers.Confirm(f.ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestFutureScheduleWaitsForRuleEngine(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	st, err := f.transfers.Schedule(f.ctx, model.ScheduledTransfer{UserID: testUser, Amount: dec("5"), ScheduledDate: time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC)})
	require.NoError(t, err)
	require.Empty(t, f.itemsOfType(model.ActionPendingTransfer))

	f.clock.set(2026, time.March, 12)
	require.NoError(t, f.engine.Generate(f.ctx, testUser))
	require.Len(t, f.itemsOfType(model.ActionPendingTransfer), 1)

	// replacing an existing schedule does not create another item
	st.Amount = dec("6")
	_, err = f.transfers.Schedule(f.ctx, st)
	require.NoError(t, err)
	require.Len(t, f.itemsOfType(model.ActionPendingTransfer), 1)

	require.NoError(t, f.transfers.Delete(f.ctx, st.ID))
	require.Empty(t, f.snapshot().ScheduledTransfers)
	require.Empty(t, f.itemsOfType(model.ActionPendingTransfer))
}

package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jask/pocketledger/internal/model"
	"github.com/jask/pocketledger/internal/store"
)

// Friends keeps manually tracked IOUs. Settled IOUs are kept for history.
type Friends struct {
	Store *store.Store
	Clock Clock
}

// Outstanding sums unsettled IOUs per direction.
type Outstanding struct {
	OwedToYou decimal.Decimal
	YouOwe    decimal.Decimal
}

// Net is positive when friends owe the user overall.
func (o Outstanding) Net() decimal.Decimal { return o.OwedToYou.Sub(o.YouOwe) }

// Save inserts iou or replaces the one with the same id.
func (f *Friends) Save(ctx context.Context, iou model.FriendIOU) (model.FriendIOU, error) {
	iou.ID = newID(iou.ID)
	iou.PersonName = strings.TrimSpace(iou.PersonName)
	if iou.Direction != model.OwedToYou && iou.Direction != model.YouOwe {
		return iou, fmt.Errorf("iou direction %q: %w", iou.Direction, ErrInvalid)
	}
	if iou.Date.IsZero() {
		iou.Date = f.Clock.now()
	}
	err := f.Store.Update(ctx, func(c *store.Collections) error {
		if existing := c.IOU(iou.ID); existing != nil {
			*existing = iou
			return nil
		}
		c.IOUs = append(c.IOUs, iou)
		return nil
	})
	return iou, err
}

// Settle marks the IOU paid.
func (f *Friends) Settle(ctx context.Context, id string) error {
	now := f.Clock.now()
	return f.Store.Update(ctx, func(c *store.Collections) error {
		iou := c.IOU(id)
		if iou == nil {
			return fmt.Errorf("settle iou %s: %w", id, ErrNotFound)
		}
		if iou.IsSettled {
			return nil
		}
		iou.IsSettled = true
		iou.SettledDate = &now
		return nil
	})
}

func (f *Friends) Delete(ctx context.Context, id string) error {
	return f.Store.Update(ctx, func(c *store.Collections) error {
		c.IOUs = store.Remove(c.IOUs, id, func(v model.FriendIOU) string { return v.ID })
		return nil
	})
}

// Outstanding totals the user's unsettled IOUs.
func (f *Friends) Outstanding(userID string) Outstanding {
	out := Outstanding{OwedToYou: decimal.Zero, YouOwe: decimal.Zero}
	f.Store.View(func(c *store.Collections) {
		for _, iou := range c.IOUs {
			if iou.UserID != userID || iou.IsSettled {
				continue
			}
			switch iou.Direction {
			case model.OwedToYou:
				out.OwedToYou = out.OwedToYou.Add(iou.Amount)
			case model.YouOwe:
				out.YouOwe = out.YouOwe.Add(iou.Amount)
			}
		}
	})
	return out
}

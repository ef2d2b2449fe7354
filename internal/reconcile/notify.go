package reconcile

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"
)

const alertTitle = "Homestock Reminder"

// CheckCritical counts low-stock and expired items across the user's
// whole inventory. Read-only.
func (e *Engine) CheckCritical(ctx context.Context, userID int) (lowStock, expired int, err error) {
	if userID <= 0 {
		return 0, 0, ErrNotAuthenticated
	}

	categories, err := e.store.ListCategories(ctx, userID)
	if err != nil {
		return 0, 0, fmt.Errorf("list categories: %w", err)
	}

	now := e.now()
	for _, category := range categories {
		items, err := e.store.ListCategoryItems(ctx, category.ID)
		if err != nil {
			return 0, 0, fmt.Errorf("list items in category %q: %w", category.Name, err)
		}
		for _, item := range items {
			status := Classify(item.Amount, item.MinStock, item.ExpiryDate, now)
			if status.LowStock {
				lowStock++
			}
			if status.Expired {
				expired++
			}
		}
	}

	return lowStock, expired, nil
}

// NotifyCritical sends an alert if the user has critical items and was
// not notified within minInterval. The last-notified timestamp only
// advances on successful delivery.
func (e *Engine) NotifyCritical(ctx context.Context, userID int, state NotifyState, notifier Notifier, minInterval time.Duration) error {
	last, err := state.LastNotified(ctx, userID)
	if err != nil {
		return fmt.Errorf("read last-notified: %w", err)
	}

	now := e.now()
	if !last.IsZero() && now.Sub(last) < minInterval {
		log.Printf("reconcile: user %d recently notified, skipping check", userID)
		return nil
	}

	lowStock, expired, err := e.CheckCritical(ctx, userID)
	if err != nil {
		return err
	}
	if lowStock == 0 && expired == 0 {
		return nil
	}

	body := alertBody(lowStock, expired)
	if err := notifier.Notify(ctx, userID, alertTitle, body); err != nil {
		return fmt.Errorf("deliver alert: %w", err)
	}

	if err := state.SetLastNotified(ctx, userID, now); err != nil {
		return fmt.Errorf("record last-notified: %w", err)
	}
	return nil
}

func alertBody(lowStock, expired int) string {
	var parts []string
	if lowStock > 0 {
		parts = append(parts, fmt.Sprintf("%d low stock", lowStock))
	}
	if expired > 0 {
		parts = append(parts, fmt.Sprintf("%d expired", expired))
	}
	return fmt.Sprintf("You have %s items. Check your inventory!", strings.Join(parts, " and "))
}

package reconcile

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/clearhaven/homestock/internal/models"
)

func TestCheckCriticalCounts(t *testing.T) {
	store := newFakeStore()
	food := store.addCategory(7, "Food")
	store.addItem(food.ID, models.InventoryItem{
		Name: "Milk", Amount: 1, MinStock: 5, ExpiryDate: "N/A",
	})
	store.addItem(food.ID, models.InventoryItem{
		Name: "Yogurt", Amount: 8, MinStock: 2, ExpiryDate: "01/01/2020",
	})
	store.addItem(food.ID, models.InventoryItem{
		Name: "Rice", Amount: 8, MinStock: 2, ExpiryDate: "N/A",
	})

	engine := newTestEngine(store)
	lowStock, expired, err := engine.CheckCritical(context.Background(), 7)
	if err != nil {
		t.Fatalf("CheckCritical failed: %v", err)
	}
	if lowStock != 1 || expired != 1 {
		t.Errorf("counts = (%d, %d), want (1, 1)", lowStock, expired)
	}
}

func TestNotifyCriticalSendsAlert(t *testing.T) {
	store := newFakeStore()
	food := store.addCategory(7, "Food")
	store.addItem(food.ID, models.InventoryItem{
		Name: "Milk", Amount: 1, MinStock: 5, ExpiryDate: "N/A",
	})
	store.addItem(food.ID, models.InventoryItem{
		Name: "Yogurt", Amount: 8, MinStock: 2, ExpiryDate: "01/01/2020",
	})
	notifier := &fakeNotifier{}

	engine := newTestEngine(store)
	if err := engine.NotifyCritical(context.Background(), 7, store, notifier, time.Hour); err != nil {
		t.Fatalf("NotifyCritical failed: %v", err)
	}

	if notifier.count() != 1 {
		t.Fatalf("notifier called %d times, want 1", notifier.count())
	}
	body := notifier.bodies[0]
	if !strings.Contains(body, "1 low stock") || !strings.Contains(body, "1 expired") {
		t.Errorf("alert body missing counts: %q", body)
	}
	last, _ := store.LastNotified(context.Background(), 7)
	if !last.Equal(testNow) {
		t.Errorf("last-notified = %v, want %v", last, testNow)
	}
}

func TestNotifyCriticalGatesOnRecentAlert(t *testing.T) {
	store := newFakeStore()
	food := store.addCategory(7, "Food")
	store.addItem(food.ID, models.InventoryItem{
		Name: "Milk", Amount: 1, MinStock: 5, ExpiryDate: "N/A",
	})
	store.lastNotified[7] = testNow.Add(-10 * time.Minute)
	notifier := &fakeNotifier{}

	engine := newTestEngine(store)
	if err := engine.NotifyCritical(context.Background(), 7, store, notifier, time.Hour); err != nil {
		t.Fatalf("NotifyCritical failed: %v", err)
	}
	if notifier.count() != 0 {
		t.Errorf("notifier called %d times, want 0 while gated", notifier.count())
	}

	// Outside the window the same state alerts again.
	store.lastNotified[7] = testNow.Add(-2 * time.Hour)
	if err := engine.NotifyCritical(context.Background(), 7, store, notifier, time.Hour); err != nil {
		t.Fatalf("NotifyCritical failed: %v", err)
	}
	if notifier.count() != 1 {
		t.Errorf("notifier called %d times, want 1 after window elapsed", notifier.count())
	}
}

func TestNotifyCriticalQuietWhenHealthy(t *testing.T) {
	store := newFakeStore()
	food := store.addCategory(7, "Food")
	store.addItem(food.ID, models.InventoryItem{
		Name: "Rice", Amount: 8, MinStock: 2, ExpiryDate: "N/A",
	})
	notifier := &fakeNotifier{}

	engine := newTestEngine(store)
	if err := engine.NotifyCritical(context.Background(), 7, store, notifier, time.Hour); err != nil {
		t.Fatalf("NotifyCritical failed: %v", err)
	}
	if notifier.count() != 0 {
		t.Error("no alert expected for a healthy inventory")
	}
	if last, _ := store.LastNotified(context.Background(), 7); !last.IsZero() {
		t.Error("last-notified should not advance without an alert")
	}
}

func TestAlertBody(t *testing.T) {
	tests := []struct {
		lowStock, expired int
		want              string
	}{
		{3, 2, "You have 3 low stock and 2 expired items. Check your inventory!"},
		{1, 0, "You have 1 low stock items. Check your inventory!"},
		{0, 4, "You have 4 expired items. Check your inventory!"},
	}
	for _, tt := range tests {
		if got := alertBody(tt.lowStock, tt.expired); got != tt.want {
			t.Errorf("alertBody(%d, %d) = %q, want %q", tt.lowStock, tt.expired, got, tt.want)
		}
	}
}

func TestSchedulerLifecycle(t *testing.T) {
	store := newFakeStore()
	store.userIDs = []int{7}
	food := store.addCategory(7, "Food")
	store.addItem(food.ID, models.InventoryItem{
		Name: "Milk", Amount: 1, MinStock: 5, ExpiryDate: "N/A", Shop: "Walmart",
	})

	engine := newTestEngine(store)
	sched := NewScheduler(engine, store, store, &fakeNotifier{}, SchedulerConfig{
		CheckInterval:      time.Millisecond,
		RegenerateInterval: time.Millisecond,
		RenotifyInterval:   time.Hour,
	})

	if err := sched.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := sched.Start(context.Background()); err == nil {
		t.Error("second Start should fail while running")
	}

	time.Sleep(20 * time.Millisecond)
	sched.Stop()

	store.mu.Lock()
	creates := store.createListCalls
	store.mu.Unlock()
	if creates == 0 {
		t.Error("regeneration pass never ran")
	}

	// Stop is safe to call twice and Start works again afterwards.
	sched.Stop()
	if err := sched.Start(context.Background()); err != nil {
		t.Fatalf("restart failed: %v", err)
	}
	sched.Stop()
}

package reconcile

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/clearhaven/homestock/internal/models"
)

func newTestEngine(store *fakeStore) *Engine {
	e := NewEngine(store)
	e.now = func() time.Time { return testNow }
	return e
}

func TestAggregateNeededAmount(t *testing.T) {
	store := newFakeStore()
	food := store.addCategory(7, "Food")
	store.addItem(food.ID, models.InventoryItem{
		Name: "Milk", Amount: 1, MinStock: 5, ExpiryDate: "N/A", Shop: "Walmart",
	})

	engine := newTestEngine(store)
	buckets, err := engine.Aggregate(context.Background(), 7)
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}

	items := buckets["Walmart"]
	if len(items) != 1 {
		t.Fatalf("expected 1 item for Walmart, got %d", len(items))
	}
	if items[0].Amount != 4 {
		t.Errorf("needed amount = %d, want 4", items[0].Amount)
	}
	if items[0].Category != "Food" {
		t.Errorf("category = %q, want Food", items[0].Category)
	}
}

func TestAggregateExpiredItem(t *testing.T) {
	store := newFakeStore()
	meds := store.addCategory(7, "Medicine")
	store.addItem(meds.ID, models.InventoryItem{
		Name: "Aspirin", Amount: 20, MinStock: 5, ExpiryDate: "01/01/2020", Shop: "CVS",
	})

	engine := newTestEngine(store)
	buckets, err := engine.Aggregate(context.Background(), 7)
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}

	items := buckets["CVS"]
	if len(items) != 1 {
		t.Fatalf("expected expired item to be bucketed, got %d items", len(items))
	}
	// Well stocked, so nothing extra is needed; the entry flags the expiry.
	if items[0].Amount != 0 {
		t.Errorf("needed amount for expired-but-stocked item = %d, want 0", items[0].Amount)
	}
}

func TestAggregateExcludesShoplessAndHealthy(t *testing.T) {
	store := newFakeStore()
	food := store.addCategory(7, "Food")
	store.addItem(food.ID, models.InventoryItem{
		Name: "Flour", Amount: 0, MinStock: 2, ExpiryDate: "N/A", Shop: "",
	})
	store.addItem(food.ID, models.InventoryItem{
		Name: "Rice", Amount: 10, MinStock: 2, ExpiryDate: "N/A", Shop: "Walmart",
	})

	engine := newTestEngine(store)
	buckets, err := engine.Aggregate(context.Background(), 7)
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	if len(buckets) != 0 {
		t.Errorf("expected no buckets, got %v", buckets)
	}
}

func TestAggregateRequiresUser(t *testing.T) {
	engine := newTestEngine(newFakeStore())
	if _, err := engine.Aggregate(context.Background(), 0); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("expected ErrNotAuthenticated, got %v", err)
	}
}

func TestRunCreatesListPerShop(t *testing.T) {
	store := newFakeStore()
	food := store.addCategory(7, "Food")
	store.addItem(food.ID, models.InventoryItem{
		Name: "Milk", Amount: 1, MinStock: 5, ExpiryDate: "N/A", Shop: "Walmart",
	})
	store.addItem(food.ID, models.InventoryItem{
		Name: "Aspirin", Amount: 0, MinStock: 1, ExpiryDate: "N/A", Shop: "CVS",
	})

	engine := newTestEngine(store)
	result, err := engine.Run(context.Background(), 7)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(result.Shops) != 2 {
		t.Fatalf("expected 2 shop results, got %d", len(result.Shops))
	}
	// Shops come back sorted.
	if result.Shops[0].Shop != "CVS" || result.Shops[1].Shop != "Walmart" {
		t.Errorf("unexpected shop order: %+v", result.Shops)
	}
	for _, sr := range result.Shops {
		if !sr.Created {
			t.Errorf("shop %q: expected a new list", sr.Shop)
		}
		if sr.Added != 1 {
			t.Errorf("shop %q: added = %d, want 1", sr.Shop, sr.Added)
		}
	}
	if store.createListCalls != 2 {
		t.Errorf("createListCalls = %d, want 2", store.createListCalls)
	}

	lists, _ := store.FindShoppingListsByName(context.Background(), 7, "Walmart")
	if len(lists) != 1 {
		t.Fatalf("expected one Walmart list, got %d", len(lists))
	}
	if lists[0].Manual {
		t.Error("generated list should not be marked manual")
	}
}

func TestRunMergesCaseInsensitively(t *testing.T) {
	store := newFakeStore()
	food := store.addCategory(7, "Food")
	store.addItem(food.ID, models.InventoryItem{
		Name: "milk", Amount: 1, MinStock: 5, ExpiryDate: "N/A", Shop: "Walmart",
	})
	store.CreateShoppingList(context.Background(), 7, "Walmart", false, []models.NewListItem{
		{Name: "Milk", Amount: 2, Shop: "Walmart", Category: "Food"},
	})
	store.createListCalls = 0

	engine := newTestEngine(store)
	result, err := engine.Run(context.Background(), 7)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	sr := result.Shops[0]
	if sr.Created || sr.Added != 0 || sr.Skipped != 1 {
		t.Errorf("expected pure skip, got %+v", sr)
	}
	if store.appendCalls != 0 {
		t.Errorf("appendCalls = %d, want 0", store.appendCalls)
	}

	lists, _ := store.FindShoppingListsByName(context.Background(), 7, "Walmart")
	if len(lists[0].Items) != 1 {
		t.Errorf("list has %d items, want 1", len(lists[0].Items))
	}
}

func TestRunIsIdempotent(t *testing.T) {
	store := newFakeStore()
	food := store.addCategory(7, "Food")
	store.addItem(food.ID, models.InventoryItem{
		Name: "Milk", Amount: 1, MinStock: 5, ExpiryDate: "N/A", Shop: "Walmart",
	})

	engine := newTestEngine(store)
	if _, err := engine.Run(context.Background(), 7); err != nil {
		t.Fatalf("first Run failed: %v", err)
	}
	creates, appends := store.createListCalls, store.appendCalls

	result, err := engine.Run(context.Background(), 7)
	if err != nil {
		t.Fatalf("second Run failed: %v", err)
	}
	if store.createListCalls != creates || store.appendCalls != appends {
		t.Errorf("second run wrote: creates %d->%d, appends %d->%d",
			creates, store.createListCalls, appends, store.appendCalls)
	}
	if result.Shops[0].Skipped != 1 {
		t.Errorf("second run skipped = %d, want 1", result.Shops[0].Skipped)
	}
}

func TestRunIsolatesShopFailures(t *testing.T) {
	store := newFakeStore()
	food := store.addCategory(7, "Food")
	store.addItem(food.ID, models.InventoryItem{
		Name: "Milk", Amount: 1, MinStock: 5, ExpiryDate: "N/A", Shop: "Walmart",
	})
	store.addItem(food.ID, models.InventoryItem{
		Name: "Aspirin", Amount: 0, MinStock: 1, ExpiryDate: "N/A", Shop: "CVS",
	})
	store.failFindLists["CVS"] = errors.New("connection reset")

	engine := newTestEngine(store)
	result, err := engine.Run(context.Background(), 7)
	if err != nil {
		t.Fatalf("Run should not fail outright: %v", err)
	}

	var cvs, walmart ShopResult
	for _, sr := range result.Shops {
		switch sr.Shop {
		case "CVS":
			cvs = sr
		case "Walmart":
			walmart = sr
		}
	}
	if cvs.Error == "" {
		t.Error("expected an error recorded for CVS")
	}
	if walmart.Error != "" || !walmart.Created {
		t.Errorf("Walmart should have succeeded: %+v", walmart)
	}
}

func TestRunDedupesWithinBucket(t *testing.T) {
	store := newFakeStore()
	food := store.addCategory(7, "Food")
	drinks := store.addCategory(7, "Drinks")
	store.addItem(food.ID, models.InventoryItem{
		Name: "Milk", Amount: 1, MinStock: 5, ExpiryDate: "N/A", Shop: "Walmart",
	})
	store.addItem(drinks.ID, models.InventoryItem{
		Name: "milk", Amount: 0, MinStock: 2, ExpiryDate: "N/A", Shop: "Walmart",
	})

	engine := newTestEngine(store)
	if _, err := engine.Run(context.Background(), 7); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	lists, _ := store.FindShoppingListsByName(context.Background(), 7, "Walmart")
	if len(lists[0].Items) != 1 {
		t.Errorf("new list has %d items, want 1 after dedupe", len(lists[0].Items))
	}
}

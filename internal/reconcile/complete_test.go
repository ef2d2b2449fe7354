package reconcile

import (
	"context"
	"errors"
	"testing"

	"github.com/clearhaven/homestock/internal/models"
)

func TestCompleteAdditiveMerge(t *testing.T) {
	store := newFakeStore()
	food := store.addCategory(7, "Food")
	store.addItem(food.ID, models.InventoryItem{
		Name: "Eggs", Amount: 0, MinStock: 6, ExpiryDate: "N/A", Shop: "Walmart",
	})
	listID, _ := store.CreateShoppingList(context.Background(), 7, "Walmart", false, []models.NewListItem{
		{Name: "eggs", Amount: 12, Category: "Food"},
	})

	engine := newTestEngine(store)
	result, err := engine.Complete(context.Background(), 7, listID)
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	if len(result.Updated) != 1 || result.Updated[0] != "eggs" {
		t.Errorf("updated = %v, want [eggs]", result.Updated)
	}
	if !result.Deleted {
		t.Error("list should be deleted")
	}

	item := store.findItem(food.ID, "Eggs")
	if item == nil || item.Amount != 12 {
		t.Fatalf("expected Eggs amount 12 after merge, got %+v", item)
	}
	if _, err := store.GetShoppingListByID(context.Background(), listID, 7); err == nil {
		t.Error("completed list should be gone")
	}
}

func TestCompleteCreatesMissingItem(t *testing.T) {
	store := newFakeStore()
	food := store.addCategory(7, "Food")
	listID, _ := store.CreateShoppingList(context.Background(), 7, "Walmart", false, []models.NewListItem{
		{Name: "Butter", Amount: 2, MinStock: 1, ExpiryDate: "N/A", Shop: "Walmart", Category: "Food"},
	})

	engine := newTestEngine(store)
	result, err := engine.Complete(context.Background(), 7, listID)
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	if len(result.Created) != 1 || result.Created[0] != "Butter" {
		t.Errorf("created = %v, want [Butter]", result.Created)
	}
	item := store.findItem(food.ID, "Butter")
	if item == nil {
		t.Fatal("Butter was not created in inventory")
	}
	if item.Amount != 2 || item.Shop != "Walmart" {
		t.Errorf("created item fields wrong: %+v", item)
	}
	if item.LowStock || item.Expired {
		t.Errorf("new item should start with clear status flags: %+v", item)
	}
}

func TestCompleteSkipsUnknownCategoryButDeletes(t *testing.T) {
	store := newFakeStore()
	store.addCategory(7, "Food")
	listID, _ := store.CreateShoppingList(context.Background(), 7, "Walmart", false, []models.NewListItem{
		{Name: "Screws", Amount: 50, Category: "Hardware"},
		{Name: "Butter", Amount: 1, Category: "Food"},
	})

	engine := newTestEngine(store)
	result, err := engine.Complete(context.Background(), 7, listID)
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	if len(result.SkippedNoCategory) != 1 || result.SkippedNoCategory[0] != "Screws" {
		t.Errorf("skipped = %v, want [Screws]", result.SkippedNoCategory)
	}
	if len(result.Created) != 1 {
		t.Errorf("created = %v, want just Butter", result.Created)
	}
	if !result.Deleted {
		t.Error("list deletion must not depend on per-item outcomes")
	}
	if store.createItemCalls != 1 {
		t.Errorf("createItemCalls = %d, want 1", store.createItemCalls)
	}
}

func TestCompleteContinuesPastItemFailure(t *testing.T) {
	store := newFakeStore()
	food := store.addCategory(7, "Food")
	eggs := store.addItem(food.ID, models.InventoryItem{
		Name: "Eggs", Amount: 0, MinStock: 6, ExpiryDate: "N/A",
	})
	milk := store.addItem(food.ID, models.InventoryItem{
		Name: "Milk", Amount: 1, MinStock: 5, ExpiryDate: "N/A",
	})
	store.failItemUpdate[eggs.ID] = errors.New("deadlock detected")

	listID, _ := store.CreateShoppingList(context.Background(), 7, "Walmart", false, []models.NewListItem{
		{Name: "Eggs", Amount: 12, Category: "Food"},
		{Name: "Milk", Amount: 4, Category: "Food"},
	})

	engine := newTestEngine(store)
	result, err := engine.Complete(context.Background(), 7, listID)
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	if len(result.Failed) != 1 || result.Failed[0] != "Eggs" {
		t.Errorf("failed = %v, want [Eggs]", result.Failed)
	}
	if len(result.Updated) != 1 || result.Updated[0] != "Milk" {
		t.Errorf("updated = %v, want [Milk]", result.Updated)
	}
	if milk.Amount != 5 {
		t.Errorf("Milk amount = %d, want 5", milk.Amount)
	}
	if !result.Deleted {
		t.Error("list should still be deleted")
	}
}

func TestCompleteMergesDuplicateLineItems(t *testing.T) {
	store := newFakeStore()
	food := store.addCategory(7, "Food")
	listID, _ := store.CreateShoppingList(context.Background(), 7, "Walmart", false, []models.NewListItem{
		{Name: "Milk", Amount: 2, Category: "Food"},
		{Name: "milk", Amount: 3, Category: "Food"},
	})

	engine := newTestEngine(store)
	result, err := engine.Complete(context.Background(), 7, listID)
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	if len(result.Created) != 1 || len(result.Updated) != 1 {
		t.Errorf("expected one create then one merge, got created=%v updated=%v", result.Created, result.Updated)
	}
	if len(store.items[food.ID]) != 1 {
		t.Fatalf("expected a single inventory item, got %d", len(store.items[food.ID]))
	}
	if got := store.items[food.ID][0].Amount; got != 5 {
		t.Errorf("merged amount = %d, want 5", got)
	}
}

func TestCompleteUnknownList(t *testing.T) {
	engine := newTestEngine(newFakeStore())
	if _, err := engine.Complete(context.Background(), 7, 999); err == nil {
		t.Error("expected error for missing list")
	}
}

func TestCompleteRequiresUser(t *testing.T) {
	engine := newTestEngine(newFakeStore())
	if _, err := engine.Complete(context.Background(), 0, 1); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("expected ErrNotAuthenticated, got %v", err)
	}
}

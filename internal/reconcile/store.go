package reconcile

import (
	"context"
	"time"

	"github.com/clearhaven/homestock/internal/models"
)

// Store is the data access surface the engine needs. The engine never
// caches between invocations; every pass re-reads current state.
type Store interface {
	ListCategories(ctx context.Context, userID int) ([]*models.Category, error)
	ListCategoryItems(ctx context.Context, categoryID int) ([]*models.InventoryItem, error)

	FindShoppingListsByName(ctx context.Context, userID int, name string) ([]*models.ShoppingListWithItems, error)
	GetShoppingListByID(ctx context.Context, listID, userID int) (*models.ShoppingListWithItems, error)
	CreateShoppingList(ctx context.Context, userID int, name string, manual bool, items []models.NewListItem) (int, error)
	AppendItemsToShoppingList(ctx context.Context, listID int, items []models.NewListItem) error
	DeleteShoppingList(ctx context.Context, listID, userID int) error

	UpdateItemAmount(ctx context.Context, itemID, newAmount int) error
	CreateItem(ctx context.Context, categoryID int, fields *models.ItemFields) (int, error)
}

// Notifier delivers a user-facing alert. Implementations live outside the
// engine; delivery failures are logged, never fatal.
type Notifier interface {
	Notify(ctx context.Context, userID int, title, body string) error
}

// NotifyState persists the last-notified timestamp that gates repeat
// alerts for a user.
type NotifyState interface {
	LastNotified(ctx context.Context, userID int) (time.Time, error)
	SetLastNotified(ctx context.Context, userID int, t time.Time) error
}

// UserSource enumerates the users the scheduler runs periodic passes for.
type UserSource interface {
	ListUserIDs(ctx context.Context) ([]int, error)
}

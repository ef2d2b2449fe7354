package reconcile

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/clearhaven/homestock/internal/models"
)

var errNotFound = errors.New("not found")

// fakeStore is an in-memory Store, NotifyState and UserSource used by the
// engine tests. Individual operations can be rigged to fail.
type fakeStore struct {
	mu sync.Mutex

	categories []*models.Category
	items      map[int][]*models.InventoryItem         // by category id
	lists      map[int]*models.ShoppingListWithItems   // by list id
	nextID     int

	failFindLists  map[string]error // by list name
	failItemUpdate map[int]error    // by item id

	createListCalls int
	appendCalls     int
	updateCalls     int
	createItemCalls int
	deleteCalls     int

	lastNotified map[int]time.Time
	userIDs      []int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		items:          make(map[int][]*models.InventoryItem),
		lists:          make(map[int]*models.ShoppingListWithItems),
		failFindLists:  make(map[string]error),
		failItemUpdate: make(map[int]error),
		lastNotified:   make(map[int]time.Time),
		nextID:         1,
	}
}

func (f *fakeStore) id() int {
	id := f.nextID
	f.nextID++
	return id
}

func (f *fakeStore) addCategory(userID int, name string) *models.Category {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := &models.Category{ID: f.id(), UserID: userID, Name: name}
	f.categories = append(f.categories, c)
	return c
}

func (f *fakeStore) addItem(categoryID int, item models.InventoryItem) *models.InventoryItem {
	f.mu.Lock()
	defer f.mu.Unlock()
	item.ID = f.id()
	item.CategoryID = categoryID
	f.items[categoryID] = append(f.items[categoryID], &item)
	return f.items[categoryID][len(f.items[categoryID])-1]
}

func (f *fakeStore) findItem(categoryID int, name string) *models.InventoryItem {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, item := range f.items[categoryID] {
		if NormalizeName(item.Name) == NormalizeName(name) {
			return item
		}
	}
	return nil
}

func (f *fakeStore) ListCategories(ctx context.Context, userID int) ([]*models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Category
	for _, c := range f.categories {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeStore) ListCategoryItems(ctx context.Context, categoryID int) ([]*models.InventoryItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*models.InventoryItem(nil), f.items[categoryID]...), nil
}

func (f *fakeStore) FindShoppingListsByName(ctx context.Context, userID int, name string) ([]*models.ShoppingListWithItems, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failFindLists[name]; err != nil {
		return nil, err
	}
	var out []*models.ShoppingListWithItems
	for _, l := range f.lists {
		if l.UserID == userID && l.Name == name {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeStore) GetShoppingListByID(ctx context.Context, listID, userID int) (*models.ShoppingListWithItems, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.lists[listID]
	if !ok || l.UserID != userID {
		return nil, errNotFound
	}
	snapshot := *l
	snapshot.Items = append([]models.ShoppingListItem(nil), l.Items...)
	return &snapshot, nil
}

func (f *fakeStore) CreateShoppingList(ctx context.Context, userID int, name string, manual bool, items []models.NewListItem) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createListCalls++
	l := &models.ShoppingListWithItems{
		ShoppingList: models.ShoppingList{ID: f.id(), UserID: userID, Name: name, Manual: manual},
	}
	for _, item := range items {
		l.Items = append(l.Items, models.ShoppingListItem{
			ID: f.id(), ListID: l.ID,
			Name: item.Name, Amount: item.Amount, MinStock: item.MinStock,
			ExpiryDate: item.ExpiryDate, Shop: item.Shop, Notes: item.Notes,
			Price: item.Price, Category: item.Category,
		})
	}
	l.ItemCount = len(l.Items)
	f.lists[l.ID] = l
	return l.ID, nil
}

func (f *fakeStore) AppendItemsToShoppingList(ctx context.Context, listID int, items []models.NewListItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.appendCalls++
	l, ok := f.lists[listID]
	if !ok {
		return errNotFound
	}
	for _, item := range items {
		l.Items = append(l.Items, models.ShoppingListItem{
			ID: f.id(), ListID: listID,
			Name: item.Name, Amount: item.Amount, MinStock: item.MinStock,
			ExpiryDate: item.ExpiryDate, Shop: item.Shop, Notes: item.Notes,
			Price: item.Price, Category: item.Category,
		})
	}
	l.ItemCount = len(l.Items)
	return nil
}

func (f *fakeStore) DeleteShoppingList(ctx context.Context, listID, userID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls++
	l, ok := f.lists[listID]
	if !ok || l.UserID != userID {
		return errNotFound
	}
	delete(f.lists, listID)
	return nil
}

func (f *fakeStore) UpdateItemAmount(ctx context.Context, itemID, newAmount int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failItemUpdate[itemID]; err != nil {
		return err
	}
	f.updateCalls++
	for _, items := range f.items {
		for _, item := range items {
			if item.ID == itemID {
				item.Amount = newAmount
				return nil
			}
		}
	}
	return errNotFound
}

func (f *fakeStore) CreateItem(ctx context.Context, categoryID int, fields *models.ItemFields) (int, error) {
	f.mu.Lock()
	f.createItemCalls++
	f.mu.Unlock()
	item := f.addItem(categoryID, models.InventoryItem{
		Name:       fields.Name,
		Amount:     fields.Amount,
		MinStock:   fields.MinStock,
		ExpiryDate: fields.ExpiryDate,
		Shop:       fields.Shop,
		Notes:      fields.Notes,
		Price:      fields.Price,
	})
	return item.ID, nil
}

func (f *fakeStore) LastNotified(ctx context.Context, userID int) (time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastNotified[userID], nil
}

func (f *fakeStore) SetLastNotified(ctx context.Context, userID int, t time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastNotified[userID] = t
	return nil
}

func (f *fakeStore) ListUserIDs(ctx context.Context) ([]int, error) {
	return f.userIDs, nil
}

// fakeNotifier records delivered alerts.
type fakeNotifier struct {
	mu     sync.Mutex
	titles []string
	bodies []string
}

func (n *fakeNotifier) Notify(ctx context.Context, userID int, title, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.titles = append(n.titles, title)
	n.bodies = append(n.bodies, body)
	return nil
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.bodies)
}

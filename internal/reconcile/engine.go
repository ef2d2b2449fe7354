package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/clearhaven/homestock/internal/models"
)

var ErrNotAuthenticated = errors.New("no authenticated user")

// Engine owns the reconciliation passes: deriving shopping-list deltas
// from inventory state and folding completed lists back in.
//
// The only state held between invocations is the singleflight group that
// coalesces concurrent passes; all inventory state is re-read per run.
type Engine struct {
	store Store
	group singleflight.Group
	now   func() time.Time
}

// NewEngine creates an engine backed by the given store.
func NewEngine(store Store) *Engine {
	return &Engine{
		store: store,
		now:   time.Now,
	}
}

// ShopResult reports the outcome of reconciling one shop bucket.
type ShopResult struct {
	Shop    string `json:"shop"`
	ListID  int    `json:"list_id,omitempty"`
	Created bool   `json:"created"`
	Added   int    `json:"added"`
	Skipped int    `json:"skipped"` // items already on the list
	Error   string `json:"error,omitempty"`
}

// RunResult reports the outcome of a full aggregate-and-reconcile pass.
type RunResult struct {
	Shops []ShopResult `json:"shops"`
	// Coalesced is true when this call shared the result of a pass that
	// was already in flight for the same user.
	Coalesced bool `json:"coalesced"`
}

// Aggregate scans the user's whole inventory and buckets items needing
// replenishment by shop. It performs no writes. Items without a shop are
// excluded; expired items ride along with needed amount 0 unless they are
// also low on stock.
func (e *Engine) Aggregate(ctx context.Context, userID int) (map[string][]models.NewListItem, error) {
	if userID <= 0 {
		return nil, ErrNotAuthenticated
	}

	categories, err := e.store.ListCategories(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	now := e.now()
	buckets := make(map[string][]models.NewListItem)

	for _, category := range categories {
		items, err := e.store.ListCategoryItems(ctx, category.ID)
		if err != nil {
			return nil, fmt.Errorf("list items in category %q: %w", category.Name, err)
		}
		if len(items) == 0 {
			log.Printf("reconcile: no items in category %q, skipping", category.Name)
			continue
		}

		for _, item := range items {
			if item.Shop == "" {
				log.Printf("reconcile: item %q has no shop, excluded from aggregation", item.Name)
				continue
			}

			status := Classify(item.Amount, item.MinStock, item.ExpiryDate, now)
			if !status.LowStock && !status.Expired {
				continue
			}

			needed := 0
			if status.LowStock {
				needed = item.MinStock - item.Amount
				if needed < 0 {
					needed = 0
				}
			}

			buckets[item.Shop] = append(buckets[item.Shop], models.NewListItem{
				Name:       item.Name,
				Amount:     needed,
				MinStock:   item.MinStock,
				ExpiryDate: item.ExpiryDate,
				Shop:       item.Shop,
				Notes:      item.Notes,
				Price:      item.Price,
				Category:   category.Name,
			})
		}
	}

	return buckets, nil
}

// Run executes a full pass for one user: aggregate, then reconcile each
// shop bucket independently. Concurrent calls for the same user are
// coalesced into a single pass. One shop's failure never blocks the rest.
func (e *Engine) Run(ctx context.Context, userID int) (*RunResult, error) {
	if userID <= 0 {
		return nil, ErrNotAuthenticated
	}

	v, err, shared := e.group.Do(fmt.Sprintf("run:%d", userID), func() (interface{}, error) {
		return e.runLocked(ctx, userID)
	})
	if err != nil {
		return nil, err
	}

	result := v.(*RunResult)
	if shared {
		coalesced := *result
		coalesced.Coalesced = true
		return &coalesced, nil
	}
	return result, nil
}

func (e *Engine) runLocked(ctx context.Context, userID int) (*RunResult, error) {
	buckets, err := e.Aggregate(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Deterministic shop order keeps logs and results stable.
	shops := make([]string, 0, len(buckets))
	for shop := range buckets {
		shops = append(shops, shop)
	}
	sort.Strings(shops)

	result := &RunResult{}
	for _, shop := range shops {
		sr, err := e.reconcileShop(ctx, userID, shop, buckets[shop])
		if err != nil {
			log.Printf("reconcile: shop %q failed for user %d: %v", shop, userID, err)
			sr.Error = err.Error()
		}
		result.Shops = append(result.Shops, sr)
	}

	return result, nil
}

// reconcileShop creates the shop's list or merges new items into it.
// The merge is an additive union keyed by normalized name: existing
// entries are never updated in place, and re-running with unchanged
// inventory produces no further writes.
func (e *Engine) reconcileShop(ctx context.Context, userID int, shop string, needed []models.NewListItem) (ShopResult, error) {
	sr := ShopResult{Shop: shop}

	existing, err := e.store.FindShoppingListsByName(ctx, userID, shop)
	if err != nil {
		return sr, fmt.Errorf("find lists named %q: %w", shop, err)
	}

	if len(existing) == 0 {
		listID, err := e.store.CreateShoppingList(ctx, userID, shop, false, dedupeByName(needed))
		if err != nil {
			return sr, fmt.Errorf("create list %q: %w", shop, err)
		}
		sr.ListID = listID
		sr.Created = true
		sr.Added = len(dedupeByName(needed))
		return sr, nil
	}

	list := existing[0]
	sr.ListID = list.ID

	present := make(map[string]bool, len(list.Items))
	for _, item := range list.Items {
		present[NormalizeName(item.Name)] = true
	}

	var fresh []models.NewListItem
	for _, item := range needed {
		key := NormalizeName(item.Name)
		if present[key] {
			sr.Skipped++
			continue
		}
		present[key] = true
		fresh = append(fresh, item)
	}

	if len(fresh) == 0 {
		return sr, nil
	}

	if err := e.store.AppendItemsToShoppingList(ctx, list.ID, fresh); err != nil {
		return sr, fmt.Errorf("append to list %q: %w", shop, err)
	}
	sr.Added = len(fresh)
	return sr, nil
}

// dedupeByName drops later duplicates within a single aggregation bucket
// so a freshly created list honors the unique-name invariant.
func dedupeByName(items []models.NewListItem) []models.NewListItem {
	seen := make(map[string]bool, len(items))
	out := make([]models.NewListItem, 0, len(items))
	for _, item := range items {
		key := NormalizeName(item.Name)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, item)
	}
	return out
}

package reconcile

import (
	"context"
	"fmt"
	"log"

	"github.com/clearhaven/homestock/internal/models"
)

// CompletionResult reports what happened to each line item of a completed
// shopping list. SkippedNoCategory lists purchases that were discarded
// because their category name no longer matches any inventory category;
// the list is deleted regardless, so callers can surface the loss.
type CompletionResult struct {
	Updated           []string `json:"updated"`
	Created           []string `json:"created"`
	SkippedNoCategory []string `json:"skipped_no_category,omitempty"`
	Failed            []string `json:"failed,omitempty"`
	Deleted           bool     `json:"deleted"`
}

// Complete folds a finished shopping list back into inventory: each line
// item either tops up the matching inventory item (additive, matched by
// normalized name) or becomes a new item in its category. Line items are
// processed independently; a single failure or category miss never stops
// the rest, and the list is deleted once all items have been visited.
// Calls for the same list are serialized.
func (e *Engine) Complete(ctx context.Context, userID, listID int) (*CompletionResult, error) {
	if userID <= 0 {
		return nil, ErrNotAuthenticated
	}

	v, err, _ := e.group.Do(fmt.Sprintf("complete:%d", listID), func() (interface{}, error) {
		return e.completeLocked(ctx, userID, listID)
	})
	if err != nil {
		return nil, err
	}
	return v.(*CompletionResult), nil
}

func (e *Engine) completeLocked(ctx context.Context, userID, listID int) (*CompletionResult, error) {
	list, err := e.store.GetShoppingListByID(ctx, listID, userID)
	if err != nil {
		return nil, fmt.Errorf("load list %d: %w", listID, err)
	}

	categories, err := e.store.ListCategories(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	// Exact-name category lookup, as entered by the user.
	categoryIDs := make(map[string]int, len(categories))
	for _, c := range categories {
		categoryIDs[c.Name] = c.ID
	}

	// Normalized-name index per category, built lazily once and kept in
	// step with our own writes so duplicate line items merge correctly.
	indexes := make(map[int]map[string]*models.InventoryItem)

	result := &CompletionResult{}
	for _, item := range list.Items {
		categoryID, ok := categoryIDs[item.Category]
		if !ok {
			log.Printf("reconcile: category %q not found, skipping purchased item %q", item.Category, item.Name)
			result.SkippedNoCategory = append(result.SkippedNoCategory, item.Name)
			continue
		}

		index, ok := indexes[categoryID]
		if !ok {
			index, err = e.loadItemIndex(ctx, categoryID)
			if err != nil {
				log.Printf("reconcile: failed to index category %q: %v", item.Category, err)
				result.Failed = append(result.Failed, item.Name)
				continue
			}
			indexes[categoryID] = index
		}

		key := NormalizeName(item.Name)
		if existing, ok := index[key]; ok {
			newAmount := existing.Amount + item.Amount
			if err := e.store.UpdateItemAmount(ctx, existing.ID, newAmount); err != nil {
				log.Printf("reconcile: failed to update %q: %v", item.Name, err)
				result.Failed = append(result.Failed, item.Name)
				continue
			}
			existing.Amount = newAmount
			result.Updated = append(result.Updated, item.Name)
			continue
		}

		fields := &models.ItemFields{
			Name:       item.Name,
			Amount:     item.Amount,
			MinStock:   item.MinStock,
			ExpiryDate: item.ExpiryDate,
			Shop:       item.Shop,
			Notes:      item.Notes,
			Price:      item.Price,
		}
		itemID, err := e.store.CreateItem(ctx, categoryID, fields)
		if err != nil {
			log.Printf("reconcile: failed to create %q: %v", item.Name, err)
			result.Failed = append(result.Failed, item.Name)
			continue
		}
		index[key] = &models.InventoryItem{
			ID:         itemID,
			CategoryID: categoryID,
			Name:       item.Name,
			Amount:     item.Amount,
			MinStock:   item.MinStock,
			ExpiryDate: item.ExpiryDate,
			Shop:       item.Shop,
			Notes:      item.Notes,
			Price:      item.Price,
		}
		result.Created = append(result.Created, item.Name)
	}

	// Deletion is unconditional on per-item outcomes: a skipped or failed
	// line item does not keep the completed list around.
	if err := e.store.DeleteShoppingList(ctx, listID, userID); err != nil {
		return result, fmt.Errorf("delete list %d: %w", listID, err)
	}
	result.Deleted = true

	return result, nil
}

func (e *Engine) loadItemIndex(ctx context.Context, categoryID int) (map[string]*models.InventoryItem, error) {
	items, err := e.store.ListCategoryItems(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	index := make(map[string]*models.InventoryItem, len(items))
	for _, item := range items {
		index[NormalizeName(item.Name)] = item
	}
	return index, nil
}

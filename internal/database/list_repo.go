package database

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/clearhaven/homestock/internal/models"
)

var (
	ErrListNotFound     = errors.New("shopping list not found")
	ErrListItemNotFound = errors.New("list item not found")
	ErrNotListOwner     = errors.New("not the owner of this list")
)

// ListShoppingLists returns all shopping lists for a user, items included
func (db *DB) ListShoppingLists(ctx context.Context, userID int) ([]*models.ShoppingListWithItems, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, user_id, name, manual, created_at, updated_at
		FROM shopping_lists
		WHERE user_id = $1
		ORDER BY updated_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lists []*models.ShoppingListWithItems
	for rows.Next() {
		l := &models.ShoppingListWithItems{}
		err := rows.Scan(&l.ID, &l.UserID, &l.Name, &l.Manual, &l.CreatedAt, &l.UpdatedAt)
		if err != nil {
			return nil, err
		}
		lists = append(lists, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, l := range lists {
		items, err := db.listListItems(ctx, l.ID)
		if err != nil {
			return nil, err
		}
		l.Items = items
		l.ItemCount = len(items)
	}

	return lists, nil
}

// GetShoppingListByID retrieves a shopping list with all its items
func (db *DB) GetShoppingListByID(ctx context.Context, id int, userID int) (*models.ShoppingListWithItems, error) {
	list := &models.ShoppingListWithItems{}
	err := db.Pool.QueryRow(ctx, `
		SELECT id, user_id, name, manual, created_at, updated_at
		FROM shopping_lists
		WHERE id = $1
	`, id).Scan(&list.ID, &list.UserID, &list.Name, &list.Manual, &list.CreatedAt, &list.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrListNotFound
		}
		return nil, err
	}

	// Check ownership
	if list.UserID != userID {
		return nil, ErrNotListOwner
	}

	items, err := db.listListItems(ctx, id)
	if err != nil {
		return nil, err
	}
	list.Items = items
	list.ItemCount = len(items)

	return list, nil
}

// FindShoppingListsByName returns the user's lists with an exact name
// match. The reconciler uses the shop name as the list name, so this is
// how a regeneration pass finds the list to merge into.
func (db *DB) FindShoppingListsByName(ctx context.Context, userID int, name string) ([]*models.ShoppingListWithItems, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, user_id, name, manual, created_at, updated_at
		FROM shopping_lists
		WHERE user_id = $1 AND name = $2
		ORDER BY created_at ASC
	`, userID, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lists []*models.ShoppingListWithItems
	for rows.Next() {
		l := &models.ShoppingListWithItems{}
		err := rows.Scan(&l.ID, &l.UserID, &l.Name, &l.Manual, &l.CreatedAt, &l.UpdatedAt)
		if err != nil {
			return nil, err
		}
		lists = append(lists, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, l := range lists {
		items, err := db.listListItems(ctx, l.ID)
		if err != nil {
			return nil, err
		}
		l.Items = items
		l.ItemCount = len(items)
	}

	return lists, nil
}

// CreateShoppingList creates a list and its initial items in one transaction
func (db *DB) CreateShoppingList(ctx context.Context, userID int, name string, manual bool, items []models.NewListItem) (int, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	var listID int
	err = tx.QueryRow(ctx, `
		INSERT INTO shopping_lists (user_id, name, manual, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING id
	`, userID, name, manual).Scan(&listID)
	if err != nil {
		return 0, err
	}

	for i, item := range items {
		_, err := tx.Exec(ctx, `
			INSERT INTO shopping_list_items (list_id, name, amount, min_stock, expiry_date, shop, notes, price, category_name, position, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		`, listID, item.Name, item.Amount, item.MinStock, orExpiryNone(item.ExpiryDate), item.Shop, item.Notes, item.Price, item.Category, i)
		if err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}

	return listID, nil
}

// AppendItemsToShoppingList adds items to the end of an existing list
func (db *DB) AppendItemsToShoppingList(ctx context.Context, listID int, items []models.NewListItem) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var next int
	err = tx.QueryRow(ctx, `
		SELECT COALESCE(MAX(position), -1) + 1 FROM shopping_list_items WHERE list_id = $1
	`, listID).Scan(&next)
	if err != nil {
		return err
	}

	for i, item := range items {
		_, err := tx.Exec(ctx, `
			INSERT INTO shopping_list_items (list_id, name, amount, min_stock, expiry_date, shop, notes, price, category_name, position, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		`, listID, item.Name, item.Amount, item.MinStock, orExpiryNone(item.ExpiryDate), item.Shop, item.Notes, item.Price, item.Category, next+i)
		if err != nil {
			return err
		}
	}

	_, err = tx.Exec(ctx, `UPDATE shopping_lists SET updated_at = NOW() WHERE id = $1`, listID)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// UpdateShoppingList renames a shopping list
func (db *DB) UpdateShoppingList(ctx context.Context, id int, userID int, name string) (*models.ShoppingList, error) {
	list := &models.ShoppingList{}

	err := db.Pool.QueryRow(ctx, `
		UPDATE shopping_lists
		SET name = $3, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING id, user_id, name, manual, created_at, updated_at
	`, id, userID, name).Scan(
		&list.ID, &list.UserID, &list.Name, &list.Manual, &list.CreatedAt, &list.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrListNotFound
		}
		return nil, err
	}

	return list, nil
}

// DeleteShoppingList deletes a shopping list and its items
func (db *DB) DeleteShoppingList(ctx context.Context, id int, userID int) error {
	result, err := db.Pool.Exec(ctx, `
		DELETE FROM shopping_lists WHERE id = $1 AND user_id = $2
	`, id, userID)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return ErrListNotFound
	}

	return nil
}

// RemoveItemFromList removes a single item from a shopping list
func (db *DB) RemoveItemFromList(ctx context.Context, listID int, itemID int, userID int) error {
	// Verify list ownership
	var ownerID int
	err := db.Pool.QueryRow(ctx, `SELECT user_id FROM shopping_lists WHERE id = $1`, listID).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrListNotFound
		}
		return err
	}
	if ownerID != userID {
		return ErrNotListOwner
	}

	result, err := db.Pool.Exec(ctx, `
		DELETE FROM shopping_list_items WHERE list_id = $1 AND id = $2
	`, listID, itemID)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return ErrListItemNotFound
	}

	// Update list's updated_at
	_, _ = db.Pool.Exec(ctx, `UPDATE shopping_lists SET updated_at = NOW() WHERE id = $1`, listID)

	return nil
}

func (db *DB) listListItems(ctx context.Context, listID int) ([]models.ShoppingListItem, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, list_id, name, amount, min_stock, expiry_date, shop, notes, price, category_name, created_at
		FROM shopping_list_items
		WHERE list_id = $1
		ORDER BY position ASC, id ASC
	`, listID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.ShoppingListItem{}
	for rows.Next() {
		item := models.ShoppingListItem{}
		err := rows.Scan(
			&item.ID, &item.ListID, &item.Name, &item.Amount, &item.MinStock,
			&item.ExpiryDate, &item.Shop, &item.Notes, &item.Price, &item.Category,
			&item.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

func orExpiryNone(expiry string) string {
	if expiry == "" {
		return models.ExpiryNone
	}
	return expiry
}

package database

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/clearhaven/homestock/internal/models"
)

var (
	ErrItemNotFound = errors.New("inventory item not found")
	ErrNotItemOwner = errors.New("not the owner of this item")
)

const itemColumns = `
	id, category_id, name, amount, min_stock, expiry_date, shop, notes,
	price, is_low_stock, is_expired, photo_key, created_at, updated_at`

func scanItem(row pgx.Row) (*models.InventoryItem, error) {
	item := &models.InventoryItem{}
	err := row.Scan(
		&item.ID,
		&item.CategoryID,
		&item.Name,
		&item.Amount,
		&item.MinStock,
		&item.ExpiryDate,
		&item.Shop,
		&item.Notes,
		&item.Price,
		&item.LowStock,
		&item.Expired,
		&item.PhotoKey,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return item, nil
}

// ListCategoryItems returns all items in a category
func (db *DB) ListCategoryItems(ctx context.Context, categoryID int) ([]*models.InventoryItem, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT `+itemColumns+`
		FROM inventory_items
		WHERE category_id = $1
		ORDER BY name ASC
	`, categoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.InventoryItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

// GetItemByID retrieves an item and verifies ownership via its category
func (db *DB) GetItemByID(ctx context.Context, id int, userID int) (*models.InventoryItem, error) {
	item := &models.InventoryItem{}
	var ownerID int

	err := db.Pool.QueryRow(ctx, `
		SELECT
			i.id, i.category_id, i.name, i.amount, i.min_stock, i.expiry_date,
			i.shop, i.notes, i.price, i.is_low_stock, i.is_expired, i.photo_key,
			i.created_at, i.updated_at, c.user_id
		FROM inventory_items i
		JOIN categories c ON i.category_id = c.id
		WHERE i.id = $1
	`, id).Scan(
		&item.ID,
		&item.CategoryID,
		&item.Name,
		&item.Amount,
		&item.MinStock,
		&item.ExpiryDate,
		&item.Shop,
		&item.Notes,
		&item.Price,
		&item.LowStock,
		&item.Expired,
		&item.PhotoKey,
		&item.CreatedAt,
		&item.UpdatedAt,
		&ownerID,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}

	if ownerID != userID {
		return nil, ErrNotItemOwner
	}

	return item, nil
}

// CreateItem inserts a new inventory item. The stored status flags start
// false; authoritative values are derived on read.
func (db *DB) CreateItem(ctx context.Context, categoryID int, fields *models.ItemFields) (int, error) {
	expiryDate := fields.ExpiryDate
	if expiryDate == "" {
		expiryDate = models.ExpiryNone
	}

	var id int
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO inventory_items (category_id, name, amount, min_stock, expiry_date, shop, notes, price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING id
	`, categoryID, fields.Name, fields.Amount, fields.MinStock, expiryDate, fields.Shop, fields.Notes, fields.Price).Scan(&id)

	if err != nil {
		return 0, err
	}

	return id, nil
}

// UpdateItem updates an inventory item's writable fields
func (db *DB) UpdateItem(ctx context.Context, id int, userID int, req *models.UpdateItemRequest) (*models.InventoryItem, error) {
	// Verify ownership first; the update itself is keyed on item id only
	if _, err := db.GetItemByID(ctx, id, userID); err != nil {
		return nil, err
	}

	item, err := scanItem(db.Pool.QueryRow(ctx, `
		UPDATE inventory_items
		SET name = COALESCE($2, name),
		    amount = COALESCE($3, amount),
		    min_stock = COALESCE($4, min_stock),
		    expiry_date = COALESCE($5, expiry_date),
		    shop = COALESCE($6, shop),
		    notes = COALESCE($7, notes),
		    price = COALESCE($8, price),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING `+itemColumns+`
	`, id, req.Name, req.Amount, req.MinStock, req.ExpiryDate, req.Shop, req.Notes, req.Price))

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}

	return item, nil
}

// UpdateItemAmount sets an item's stock level. Used by the completion
// pass to fold purchased quantities back into inventory.
func (db *DB) UpdateItemAmount(ctx context.Context, itemID int, newAmount int) error {
	result, err := db.Pool.Exec(ctx, `
		UPDATE inventory_items SET amount = $2, updated_at = NOW() WHERE id = $1
	`, itemID, newAmount)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return ErrItemNotFound
	}

	return nil
}

// SetItemStatusFlags records the derived status snapshot on the row
func (db *DB) SetItemStatusFlags(ctx context.Context, itemID int, lowStock, expired bool) error {
	_, err := db.Pool.Exec(ctx, `
		UPDATE inventory_items SET is_low_stock = $2, is_expired = $3 WHERE id = $1
	`, itemID, lowStock, expired)
	return err
}

// SetItemPhotoKey attaches or clears an item's photo object key
func (db *DB) SetItemPhotoKey(ctx context.Context, itemID int, userID int, photoKey *string) error {
	if _, err := db.GetItemByID(ctx, itemID, userID); err != nil {
		return err
	}

	_, err := db.Pool.Exec(ctx, `
		UPDATE inventory_items SET photo_key = $2, updated_at = NOW() WHERE id = $1
	`, itemID, photoKey)
	return err
}

// DeleteItem deletes an inventory item
func (db *DB) DeleteItem(ctx context.Context, id int, userID int) error {
	if _, err := db.GetItemByID(ctx, id, userID); err != nil {
		return err
	}

	result, err := db.Pool.Exec(ctx, `
		DELETE FROM inventory_items WHERE id = $1
	`, id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return ErrItemNotFound
	}

	return nil
}

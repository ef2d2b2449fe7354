package database

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/clearhaven/homestock/internal/models"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrCategoryExists   = errors.New("category already exists")
	ErrNotCategoryOwner = errors.New("not the owner of this category")
)

// ListCategories returns all categories for a user
func (db *DB) ListCategories(ctx context.Context, userID int) ([]*models.Category, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, user_id, name, created_at
		FROM categories
		WHERE user_id = $1
		ORDER BY name ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []*models.Category
	for rows.Next() {
		c := &models.Category{}
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.CreatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}

	return categories, rows.Err()
}

// GetCategoryByID retrieves a category and verifies ownership
func (db *DB) GetCategoryByID(ctx context.Context, id int, userID int) (*models.Category, error) {
	c := &models.Category{}

	err := db.Pool.QueryRow(ctx, `
		SELECT id, user_id, name, created_at
		FROM categories
		WHERE id = $1
	`, id).Scan(&c.ID, &c.UserID, &c.Name, &c.CreatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}

	if c.UserID != userID {
		return nil, ErrNotCategoryOwner
	}

	return c, nil
}

// CreateCategory creates a new category for a user
func (db *DB) CreateCategory(ctx context.Context, userID int, name string) (*models.Category, error) {
	c := &models.Category{}

	err := db.Pool.QueryRow(ctx, `
		INSERT INTO categories (user_id, name, created_at)
		VALUES ($1, $2, NOW())
		RETURNING id, user_id, name, created_at
	`, userID, name).Scan(&c.ID, &c.UserID, &c.Name, &c.CreatedAt)

	if err != nil {
		if err.Error() == `ERROR: duplicate key value violates unique constraint "unique_user_category" (SQLSTATE 23505)` {
			return nil, ErrCategoryExists
		}
		return nil, err
	}

	return c, nil
}

// UpdateCategory renames a category
func (db *DB) UpdateCategory(ctx context.Context, id int, userID int, name string) (*models.Category, error) {
	c := &models.Category{}

	err := db.Pool.QueryRow(ctx, `
		UPDATE categories
		SET name = $3
		WHERE id = $1 AND user_id = $2
		RETURNING id, user_id, name, created_at
	`, id, userID, name).Scan(&c.ID, &c.UserID, &c.Name, &c.CreatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		if err.Error() == `ERROR: duplicate key value violates unique constraint "unique_user_category" (SQLSTATE 23505)` {
			return nil, ErrCategoryExists
		}
		return nil, err
	}

	return c, nil
}

// DeleteCategory deletes a category and all its items
func (db *DB) DeleteCategory(ctx context.Context, id int, userID int) error {
	result, err := db.Pool.Exec(ctx, `
		DELETE FROM categories WHERE id = $1 AND user_id = $2
	`, id, userID)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return ErrCategoryNotFound
	}

	return nil
}

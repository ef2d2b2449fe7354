package models

import (
	"time"
)

// Category groups inventory items (e.g. Food, Hygiene, Cleaning).
// Category names are unique per user and serve as the join key when a
// completed shopping list is folded back into inventory.
type Category struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// CategoryStats is a category with derived inventory counters for the dashboard
type CategoryStats struct {
	Category
	TotalItems    int `json:"total_items"`
	LowStockCount int `json:"low_stock_count"`
	ExpiredCount  int `json:"expired_count"`
}

// InventorySummary aggregates counters across all categories
type InventorySummary struct {
	TotalItems    int `json:"total_items"`
	LowStockCount int `json:"low_stock_count"`
	ExpiredCount  int `json:"expired_count"`
}

// CreateCategoryRequest is the request body for creating a category
type CreateCategoryRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

// UpdateCategoryRequest is the request body for renaming a category
type UpdateCategoryRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

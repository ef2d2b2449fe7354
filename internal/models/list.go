package models

import (
	"time"
)

// ShoppingList is a per-user list of items to buy. Generated lists are
// named after the shop they were bucketed for; manual lists carry a
// user-chosen name.
type ShoppingList struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	Name      string    `json:"name"`
	Manual    bool      `json:"manual"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ShoppingListItem is a snapshot of an inventory item taken at
// aggregation time. Amount is the needed quantity, not current stock.
// Category carries the owning category's name so completion can join the
// purchase back to inventory.
type ShoppingListItem struct {
	ID         int       `json:"id"`
	ListID     int       `json:"list_id"`
	Name       string    `json:"name"`
	Amount     int       `json:"amount"`
	MinStock   int       `json:"min_stock"`
	ExpiryDate string    `json:"expiry_date"`
	Shop       string    `json:"shop"`
	Notes      string    `json:"notes"`
	Price      float64   `json:"price"`
	Category   string    `json:"category"`
	CreatedAt  time.Time `json:"created_at"`
}

// ShoppingListWithItems includes the list and its items
type ShoppingListWithItems struct {
	ShoppingList
	Items     []ShoppingListItem `json:"items"`
	ItemCount int                `json:"item_count"`
}

// NewListItem carries the writable attributes of a shopping list item
type NewListItem struct {
	Name       string  `json:"name" validate:"required,min=1,max=255"`
	Amount     int     `json:"amount" validate:"min=0"`
	MinStock   int     `json:"min_stock" validate:"min=0"`
	ExpiryDate string  `json:"expiry_date"`
	Shop       string  `json:"shop"`
	Notes      string  `json:"notes"`
	Price      float64 `json:"price" validate:"min=0"`
	Category   string  `json:"category"`
}

// CreateListRequest is the request body for creating a manual list
type CreateListRequest struct {
	Name  string        `json:"name" validate:"required,min=1,max=255"`
	Items []NewListItem `json:"items" validate:"dive"`
}

// UpdateListRequest is the request body for renaming a list
type UpdateListRequest struct {
	Name string `json:"name" validate:"required,min=1,max=255"`
}

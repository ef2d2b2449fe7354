package models

import (
	"time"
)

// ExpiryNone is the sentinel users may enter when an item has no expiry date.
// The classifier treats it (and any unparseable value) as "not expired".
const ExpiryNone = "N/A"

// InventoryItem is a stocked item owned by a category.
//
// ExpiryDate is stored raw: either a DD/MM/YYYY string, an RFC 3339
// timestamp, or a sentinel like "N/A". Parsing happens at classification
// time so that malformed dates never block a write.
//
// LowStock and Expired are the stored baseline flags; the authoritative
// values are derived on read from Amount/MinStock/ExpiryDate.
type InventoryItem struct {
	ID         int     `json:"id"`
	CategoryID int     `json:"category_id"`
	Name       string  `json:"name"`
	Amount     int     `json:"amount"`
	MinStock   int     `json:"min_stock"`
	ExpiryDate string  `json:"expiry_date"`
	Shop       string  `json:"shop"`
	Notes      string  `json:"notes"`
	Price      float64 `json:"price"`
	LowStock   bool    `json:"is_low_stock"`
	Expired    bool    `json:"is_expired"`
	PhotoKey   *string `json:"photo_key,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ItemFields carries the writable attributes of an inventory item.
// Used both by the create endpoint and by the completion reconciler when
// a purchased line item has no inventory counterpart yet.
type ItemFields struct {
	Name       string  `json:"name" validate:"required,min=1,max=255"`
	Amount     int     `json:"amount" validate:"min=0"`
	MinStock   int     `json:"min_stock" validate:"min=0"`
	ExpiryDate string  `json:"expiry_date"`
	Shop       string  `json:"shop" validate:"max=255"`
	Notes      string  `json:"notes"`
	Price      float64 `json:"price" validate:"min=0"`
}

// UpdateItemRequest is the request body for editing an item
type UpdateItemRequest struct {
	Name       *string  `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Amount     *int     `json:"amount,omitempty" validate:"omitempty,min=0"`
	MinStock   *int     `json:"min_stock,omitempty" validate:"omitempty,min=0"`
	ExpiryDate *string  `json:"expiry_date,omitempty"`
	Shop       *string  `json:"shop,omitempty" validate:"omitempty,max=255"`
	Notes      *string  `json:"notes,omitempty"`
	Price      *float64 `json:"price,omitempty" validate:"omitempty,min=0"`
}

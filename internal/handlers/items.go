package handlers

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/clearhaven/homestock/internal/database"
	"github.com/clearhaven/homestock/internal/models"
	"github.com/clearhaven/homestock/internal/reconcile"
)

// applyStatus overwrites the stored status flags with values derived
// from the item's current amount, threshold and expiry date.
func applyStatus(item *models.InventoryItem, now time.Time) {
	status := reconcile.Classify(item.Amount, item.MinStock, item.ExpiryDate, now)
	item.LowStock = status.LowStock
	item.Expired = status.Expired
}

// ListCategoryItems returns all items in a category
func (h *Handler) ListCategoryItems(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return Error(c, fiber.StatusUnauthorized, err.Error())
	}

	categoryID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid category id")
	}

	// Verify ownership before touching items
	if _, err := h.db.GetCategoryByID(c.Context(), categoryID, userID); err != nil {
		if errors.Is(err, database.ErrCategoryNotFound) {
			return Error(c, fiber.StatusNotFound, "category not found")
		}
		if errors.Is(err, database.ErrNotCategoryOwner) {
			return Error(c, fiber.StatusForbidden, "you do not own this category")
		}
		return Error(c, fiber.StatusInternalServerError, "failed to get category")
	}

	items, err := h.db.ListCategoryItems(c.Context(), categoryID)
	if err != nil {
		return Error(c, fiber.StatusInternalServerError, "failed to list items")
	}

	now := time.Now()
	for _, item := range items {
		applyStatus(item, now)
	}

	return Success(c, items)
}

// GetItem returns a single inventory item
func (h *Handler) GetItem(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return Error(c, fiber.StatusUnauthorized, err.Error())
	}

	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid item id")
	}

	item, err := h.db.GetItemByID(c.Context(), id, userID)
	if err != nil {
		if errors.Is(err, database.ErrItemNotFound) {
			return Error(c, fiber.StatusNotFound, "item not found")
		}
		if errors.Is(err, database.ErrNotItemOwner) {
			return Error(c, fiber.StatusForbidden, "you do not own this item")
		}
		return Error(c, fiber.StatusInternalServerError, "failed to get item")
	}

	applyStatus(item, time.Now())
	return Success(c, item)
}

// CreateItem adds an item to a category
func (h *Handler) CreateItem(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return Error(c, fiber.StatusUnauthorized, err.Error())
	}

	categoryID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid category id")
	}

	if _, err := h.db.GetCategoryByID(c.Context(), categoryID, userID); err != nil {
		if errors.Is(err, database.ErrCategoryNotFound) {
			return Error(c, fiber.StatusNotFound, "category not found")
		}
		if errors.Is(err, database.ErrNotCategoryOwner) {
			return Error(c, fiber.StatusForbidden, "you do not own this category")
		}
		return Error(c, fiber.StatusInternalServerError, "failed to get category")
	}

	var req models.ItemFields
	if err := c.BodyParser(&req); err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.validate.Struct(&req); err != nil {
		return Error(c, fiber.StatusBadRequest, h.validationMessage(err))
	}

	itemID, err := h.db.CreateItem(c.Context(), categoryID, &req)
	if err != nil {
		return Error(c, fiber.StatusInternalServerError, "failed to create item")
	}

	item, err := h.db.GetItemByID(c.Context(), itemID, userID)
	if err != nil {
		return Error(c, fiber.StatusInternalServerError, "failed to load created item")
	}

	applyStatus(item, time.Now())
	return Created(c, item)
}

// UpdateItem edits an inventory item
func (h *Handler) UpdateItem(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return Error(c, fiber.StatusUnauthorized, err.Error())
	}

	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid item id")
	}

	var req models.UpdateItemRequest
	if err := c.BodyParser(&req); err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.validate.Struct(&req); err != nil {
		return Error(c, fiber.StatusBadRequest, h.validationMessage(err))
	}

	item, err := h.db.UpdateItem(c.Context(), id, userID, &req)
	if err != nil {
		if errors.Is(err, database.ErrItemNotFound) {
			return Error(c, fiber.StatusNotFound, "item not found")
		}
		if errors.Is(err, database.ErrNotItemOwner) {
			return Error(c, fiber.StatusForbidden, "you do not own this item")
		}
		return Error(c, fiber.StatusInternalServerError, "failed to update item")
	}

	applyStatus(item, time.Now())
	return Success(c, item)
}

// DeleteItem removes an item from inventory
func (h *Handler) DeleteItem(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return Error(c, fiber.StatusUnauthorized, err.Error())
	}

	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid item id")
	}

	if err := h.db.DeleteItem(c.Context(), id, userID); err != nil {
		if errors.Is(err, database.ErrItemNotFound) {
			return Error(c, fiber.StatusNotFound, "item not found")
		}
		if errors.Is(err, database.ErrNotItemOwner) {
			return Error(c, fiber.StatusForbidden, "you do not own this item")
		}
		return Error(c, fiber.StatusInternalServerError, "failed to delete item")
	}

	return Success(c, fiber.Map{"deleted": true})
}

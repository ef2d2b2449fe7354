package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/clearhaven/homestock/internal/database"
	"github.com/clearhaven/homestock/internal/models"
)

// ListShoppingLists returns all shopping lists for the current user
func (h *Handler) ListShoppingLists(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return Error(c, fiber.StatusUnauthorized, err.Error())
	}

	lists, err := h.db.ListShoppingLists(c.Context(), userID)
	if err != nil {
		return Error(c, fiber.StatusInternalServerError, "failed to list shopping lists")
	}

	return Success(c, lists)
}

// GetShoppingList returns a single shopping list with items
func (h *Handler) GetShoppingList(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return Error(c, fiber.StatusUnauthorized, err.Error())
	}

	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid list id")
	}

	list, err := h.db.GetShoppingListByID(c.Context(), id, userID)
	if err != nil {
		if errors.Is(err, database.ErrListNotFound) {
			return Error(c, fiber.StatusNotFound, "shopping list not found")
		}
		if errors.Is(err, database.ErrNotListOwner) {
			return Error(c, fiber.StatusForbidden, "you do not own this list")
		}
		return Error(c, fiber.StatusInternalServerError, "failed to get shopping list")
	}

	return Success(c, list)
}

// CreateShoppingList creates a manual shopping list
func (h *Handler) CreateShoppingList(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return Error(c, fiber.StatusUnauthorized, err.Error())
	}

	var req models.CreateListRequest
	if err := c.BodyParser(&req); err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.validate.Struct(&req); err != nil {
		return Error(c, fiber.StatusBadRequest, h.validationMessage(err))
	}

	listID, err := h.db.CreateShoppingList(c.Context(), userID, req.Name, true, req.Items)
	if err != nil {
		return Error(c, fiber.StatusInternalServerError, "failed to create shopping list")
	}

	list, err := h.db.GetShoppingListByID(c.Context(), listID, userID)
	if err != nil {
		return Error(c, fiber.StatusInternalServerError, "failed to load created list")
	}

	return Created(c, list)
}

// UpdateShoppingList renames a shopping list
func (h *Handler) UpdateShoppingList(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return Error(c, fiber.StatusUnauthorized, err.Error())
	}

	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid list id")
	}

	var req models.UpdateListRequest
	if err := c.BodyParser(&req); err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.validate.Struct(&req); err != nil {
		return Error(c, fiber.StatusBadRequest, h.validationMessage(err))
	}

	list, err := h.db.UpdateShoppingList(c.Context(), id, userID, req.Name)
	if err != nil {
		if errors.Is(err, database.ErrListNotFound) {
			return Error(c, fiber.StatusNotFound, "shopping list not found")
		}
		return Error(c, fiber.StatusInternalServerError, "failed to update shopping list")
	}

	return Success(c, list)
}

// DeleteShoppingList deletes a shopping list without completing it
func (h *Handler) DeleteShoppingList(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return Error(c, fiber.StatusUnauthorized, err.Error())
	}

	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid list id")
	}

	if err := h.db.DeleteShoppingList(c.Context(), id, userID); err != nil {
		if errors.Is(err, database.ErrListNotFound) {
			return Error(c, fiber.StatusNotFound, "shopping list not found")
		}
		return Error(c, fiber.StatusInternalServerError, "failed to delete shopping list")
	}

	return Success(c, fiber.Map{"deleted": true})
}

// AddListItems appends items to an existing list
func (h *Handler) AddListItems(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return Error(c, fiber.StatusUnauthorized, err.Error())
	}

	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid list id")
	}

	var req struct {
		Items []models.NewListItem `json:"items" validate:"required,min=1,dive"`
	}
	if err := c.BodyParser(&req); err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.validate.Struct(&req); err != nil {
		return Error(c, fiber.StatusBadRequest, h.validationMessage(err))
	}

	// Verify ownership
	if _, err := h.db.GetShoppingListByID(c.Context(), id, userID); err != nil {
		if errors.Is(err, database.ErrListNotFound) {
			return Error(c, fiber.StatusNotFound, "shopping list not found")
		}
		if errors.Is(err, database.ErrNotListOwner) {
			return Error(c, fiber.StatusForbidden, "you do not own this list")
		}
		return Error(c, fiber.StatusInternalServerError, "failed to get shopping list")
	}

	if err := h.db.AppendItemsToShoppingList(c.Context(), id, req.Items); err != nil {
		return Error(c, fiber.StatusInternalServerError, "failed to add items")
	}

	list, err := h.db.GetShoppingListByID(c.Context(), id, userID)
	if err != nil {
		return Error(c, fiber.StatusInternalServerError, "failed to load updated list")
	}

	return Success(c, list)
}

// RemoveListItem removes a single item from a list
func (h *Handler) RemoveListItem(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return Error(c, fiber.StatusUnauthorized, err.Error())
	}

	listID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid list id")
	}

	itemID, err := strconv.Atoi(c.Params("itemId"))
	if err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid item id")
	}

	if err := h.db.RemoveItemFromList(c.Context(), listID, itemID, userID); err != nil {
		if errors.Is(err, database.ErrListNotFound) {
			return Error(c, fiber.StatusNotFound, "shopping list not found")
		}
		if errors.Is(err, database.ErrListItemNotFound) {
			return Error(c, fiber.StatusNotFound, "list item not found")
		}
		if errors.Is(err, database.ErrNotListOwner) {
			return Error(c, fiber.StatusForbidden, "you do not own this list")
		}
		return Error(c, fiber.StatusInternalServerError, "failed to remove item")
	}

	return Success(c, fiber.Map{"deleted": true})
}

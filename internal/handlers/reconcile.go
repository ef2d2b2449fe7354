package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/clearhaven/homestock/internal/database"
	"github.com/clearhaven/homestock/internal/reconcile"
)

// RunReconciliation triggers an immediate aggregate-and-reconcile pass
// for the current user. If a periodic pass is already in flight the call
// shares its result instead of starting another.
func (h *Handler) RunReconciliation(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return Error(c, fiber.StatusUnauthorized, err.Error())
	}

	result, err := h.engine.Run(c.Context(), userID)
	if err != nil {
		if errors.Is(err, reconcile.ErrNotAuthenticated) {
			return Error(c, fiber.StatusUnauthorized, "user not authenticated")
		}
		return Error(c, fiber.StatusInternalServerError, "reconciliation failed")
	}

	return Success(c, result)
}

// CompleteShoppingList folds a finished list back into inventory and
// deletes it
func (h *Handler) CompleteShoppingList(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return Error(c, fiber.StatusUnauthorized, err.Error())
	}

	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid list id")
	}

	result, err := h.engine.Complete(c.Context(), userID, id)
	if err != nil {
		if errors.Is(err, database.ErrListNotFound) {
			return Error(c, fiber.StatusNotFound, "shopping list not found")
		}
		if errors.Is(err, database.ErrNotListOwner) {
			return Error(c, fiber.StatusForbidden, "you do not own this list")
		}
		return Error(c, fiber.StatusInternalServerError, "failed to complete shopping list")
	}

	return Success(c, result)
}

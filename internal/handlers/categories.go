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

// ListCategories returns the user's categories with derived inventory
// counters for the dashboard
func (h *Handler) ListCategories(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return Error(c, fiber.StatusUnauthorized, err.Error())
	}

	categories, err := h.db.ListCategories(c.Context(), userID)
	if err != nil {
		return Error(c, fiber.StatusInternalServerError, "failed to list categories")
	}

	now := time.Now()
	stats := []models.CategoryStats{}
	for _, category := range categories {
		cs := models.CategoryStats{Category: *category}

		items, err := h.db.ListCategoryItems(c.Context(), category.ID)
		if err != nil {
			return Error(c, fiber.StatusInternalServerError, "failed to list category items")
		}

		cs.TotalItems = len(items)
		for _, item := range items {
			status := reconcile.Classify(item.Amount, item.MinStock, item.ExpiryDate, now)
			if status.LowStock {
				cs.LowStockCount++
			}
			if status.Expired {
				cs.ExpiredCount++
			}
		}
		stats = append(stats, cs)
	}

	return Success(c, stats)
}

// GetInventorySummary returns aggregate counters across all categories
func (h *Handler) GetInventorySummary(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return Error(c, fiber.StatusUnauthorized, err.Error())
	}

	lowStock, expired, err := h.engine.CheckCritical(c.Context(), userID)
	if err != nil {
		return Error(c, fiber.StatusInternalServerError, "failed to summarize inventory")
	}

	var total int
	categories, err := h.db.ListCategories(c.Context(), userID)
	if err != nil {
		return Error(c, fiber.StatusInternalServerError, "failed to list categories")
	}
	for _, category := range categories {
		items, err := h.db.ListCategoryItems(c.Context(), category.ID)
		if err != nil {
			return Error(c, fiber.StatusInternalServerError, "failed to list category items")
		}
		total += len(items)
	}

	return Success(c, models.InventorySummary{
		TotalItems:    total,
		LowStockCount: lowStock,
		ExpiredCount:  expired,
	})
}

// CreateCategory creates a new category
func (h *Handler) CreateCategory(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return Error(c, fiber.StatusUnauthorized, err.Error())
	}

	var req models.CreateCategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.validate.Struct(&req); err != nil {
		return Error(c, fiber.StatusBadRequest, h.validationMessage(err))
	}

	category, err := h.db.CreateCategory(c.Context(), userID, req.Name)
	if err != nil {
		if errors.Is(err, database.ErrCategoryExists) {
			return Error(c, fiber.StatusConflict, "category already exists")
		}
		return Error(c, fiber.StatusInternalServerError, "failed to create category")
	}

	return Created(c, category)
}

// UpdateCategory renames a category
func (h *Handler) UpdateCategory(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return Error(c, fiber.StatusUnauthorized, err.Error())
	}

	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid category id")
	}

	var req models.UpdateCategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.validate.Struct(&req); err != nil {
		return Error(c, fiber.StatusBadRequest, h.validationMessage(err))
	}

	category, err := h.db.UpdateCategory(c.Context(), id, userID, req.Name)
	if err != nil {
		if errors.Is(err, database.ErrCategoryNotFound) {
			return Error(c, fiber.StatusNotFound, "category not found")
		}
		if errors.Is(err, database.ErrCategoryExists) {
			return Error(c, fiber.StatusConflict, "category already exists")
		}
		return Error(c, fiber.StatusInternalServerError, "failed to update category")
	}

	return Success(c, category)
}

// DeleteCategory deletes a category and its items
func (h *Handler) DeleteCategory(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return Error(c, fiber.StatusUnauthorized, err.Error())
	}

	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid category id")
	}

	if err := h.db.DeleteCategory(c.Context(), id, userID); err != nil {
		if errors.Is(err, database.ErrCategoryNotFound) {
			return Error(c, fiber.StatusNotFound, "category not found")
		}
		return Error(c, fiber.StatusInternalServerError, "failed to delete category")
	}

	return Success(c, fiber.Map{"deleted": true})
}

package handlers

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/clearhaven/homestock/internal/database"
)

const maxPhotoSize = 10 << 20 // 10 MB

var allowedPhotoTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// UploadItemPhoto attaches a photo to an inventory item
func (h *Handler) UploadItemPhoto(c *fiber.Ctx) error {
	if h.storage == nil {
		return Error(c, fiber.StatusServiceUnavailable, "photo storage not configured")
	}

	userID, err := getUserID(c)
	if err != nil {
		return Error(c, fiber.StatusUnauthorized, err.Error())
	}

	itemID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid item id")
	}

	item, err := h.db.GetItemByID(c.Context(), itemID, userID)
	if err != nil {
		if errors.Is(err, database.ErrItemNotFound) {
			return Error(c, fiber.StatusNotFound, "item not found")
		}
		if errors.Is(err, database.ErrNotItemOwner) {
			return Error(c, fiber.StatusForbidden, "you do not own this item")
		}
		return Error(c, fiber.StatusInternalServerError, "failed to get item")
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		return Error(c, fiber.StatusBadRequest, "photo file is required")
	}

	if fileHeader.Size > maxPhotoSize {
		return Error(c, fiber.StatusRequestEntityTooLarge, "photo exceeds 10MB limit")
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if !allowedPhotoTypes[contentType] {
		return Error(c, fiber.StatusUnsupportedMediaType, "photo must be JPEG, PNG or WebP")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return Error(c, fiber.StatusInternalServerError, "failed to read photo")
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	key := fmt.Sprintf("items/%d/%s%s", itemID, uuid.New().String(), ext)

	if _, err := h.storage.Upload(c.Context(), key, file, fileHeader.Size, contentType); err != nil {
		return Error(c, fiber.StatusInternalServerError, "failed to store photo")
	}

	// Replace any previous photo
	if item.PhotoKey != nil {
		_ = h.storage.Delete(c.Context(), *item.PhotoKey)
	}

	if err := h.db.SetItemPhotoKey(c.Context(), itemID, userID, &key); err != nil {
		return Error(c, fiber.StatusInternalServerError, "failed to save photo reference")
	}

	return Success(c, fiber.Map{"photo_key": key})
}

// GetItemPhoto streams an item's photo
func (h *Handler) GetItemPhoto(c *fiber.Ctx) error {
	if h.storage == nil {
		return Error(c, fiber.StatusServiceUnavailable, "photo storage not configured")
	}

	userID, err := getUserID(c)
	if err != nil {
		return Error(c, fiber.StatusUnauthorized, err.Error())
	}

	itemID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid item id")
	}

	item, err := h.db.GetItemByID(c.Context(), itemID, userID)
	if err != nil {
		if errors.Is(err, database.ErrItemNotFound) {
			return Error(c, fiber.StatusNotFound, "item not found")
		}
		if errors.Is(err, database.ErrNotItemOwner) {
			return Error(c, fiber.StatusForbidden, "you do not own this item")
		}
		return Error(c, fiber.StatusInternalServerError, "failed to get item")
	}

	if item.PhotoKey == nil {
		return Error(c, fiber.StatusNotFound, "item has no photo")
	}

	obj, err := h.storage.Download(c.Context(), *item.PhotoKey)
	if err != nil {
		return Error(c, fiber.StatusInternalServerError, "failed to fetch photo")
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return Error(c, fiber.StatusInternalServerError, "failed to read photo")
	}

	return c.Send(data)
}

// DeleteItemPhoto removes an item's photo
func (h *Handler) DeleteItemPhoto(c *fiber.Ctx) error {
	if h.storage == nil {
		return Error(c, fiber.StatusServiceUnavailable, "photo storage not configured")
	}

	userID, err := getUserID(c)
	if err != nil {
		return Error(c, fiber.StatusUnauthorized, err.Error())
	}

	itemID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid item id")
	}

	item, err := h.db.GetItemByID(c.Context(), itemID, userID)
	if err != nil {
		if errors.Is(err, database.ErrItemNotFound) {
			return Error(c, fiber.StatusNotFound, "item not found")
		}
		if errors.Is(err, database.ErrNotItemOwner) {
			return Error(c, fiber.StatusForbidden, "you do not own this item")
		}
		return Error(c, fiber.StatusInternalServerError, "failed to get item")
	}

	if item.PhotoKey == nil {
		return Error(c, fiber.StatusNotFound, "item has no photo")
	}

	if err := h.storage.Delete(c.Context(), *item.PhotoKey); err != nil {
		return Error(c, fiber.StatusInternalServerError, "failed to delete photo")
	}

	if err := h.db.SetItemPhotoKey(c.Context(), itemID, userID, nil); err != nil {
		return Error(c, fiber.StatusInternalServerError, "failed to clear photo reference")
	}

	return Success(c, fiber.Map{"deleted": true})
}

package handlers

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/clearhaven/homestock/internal/config"
	"github.com/clearhaven/homestock/internal/database"
	"github.com/clearhaven/homestock/internal/reconcile"
	"github.com/clearhaven/homestock/internal/services"
)

// Handler holds all handler dependencies
type Handler struct {
	db       *database.DB
	cfg      *config.Config
	engine   *reconcile.Engine
	storage  *services.StorageService
	validate *validator.Validate
}

// New creates a new Handler instance. storage may be nil when no S3
// backend is configured; the photo endpoints then return 503.
func New(db *database.DB, cfg *config.Config, engine *reconcile.Engine, storage *services.StorageService) *Handler {
	return &Handler{
		db:       db,
		cfg:      cfg,
		engine:   engine,
		storage:  storage,
		validate: validator.New(),
	}
}

// ErrorHandler is a custom error handler for Fiber
func ErrorHandler(c *fiber.Ctx, err error) error {
	// Default to 500
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	// Check if it's a Fiber error
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"error": message,
	})
}

// APIResponse is a standard API response structure
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Success returns a successful response
func Success(c *fiber.Ctx, data interface{}) error {
	return c.JSON(APIResponse{
		Success: true,
		Data:    data,
	})
}

// Created returns a 201 response with the created resource
func Created(c *fiber.Ctx, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(APIResponse{
		Success: true,
		Data:    data,
	})
}

// Error returns an error response
func Error(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(APIResponse{
		Success: false,
		Error:   message,
	})
}

// getUserID extracts user ID from context set by the auth middleware
func getUserID(c *fiber.Ctx) (int, error) {
	userID, ok := c.Locals("user_id").(int)
	if !ok || userID == 0 {
		return 0, errors.New("user not authenticated")
	}
	return userID, nil
}

// validationMessage flattens validator errors into a readable string
func (h *Handler) validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid request body"
	}

	var parts []string
	for _, fe := range verrs {
		parts = append(parts, strings.ToLower(fe.Field())+" failed on "+fe.Tag())
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

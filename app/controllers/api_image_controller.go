package controllers

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/revivapix/RevivaPix/internal/pkg/billing"
	"github.com/revivapix/RevivaPix/internal/pkg/restore"
	"github.com/revivapix/RevivaPix/internal/pkg/upload"
	"github.com/revivapix/RevivaPix/internal/pkg/usercontext"
)

// MaxUploadBytes caps the size of an uploaded original.
const MaxUploadBytes = 20 << 20

// ImageController exposes the restoration endpoints.
type ImageController struct {
	restore *restore.Service
}

// NewImageController creates an image controller
func NewImageController(svc *restore.Service) *ImageController {
	return &ImageController{restore: svc}
}

// HandleRestore accepts one image upload and runs a restoration for it
func (ic *ImageController) HandleRestore(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_request", "message": "An image file is required"})
	}
	if fileHeader.Size > MaxUploadBytes {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{"error": "file_too_large", "message": "Image exceeds the upload limit"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to read upload"})
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, MaxUploadBytes+1))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to read upload"})
	}
	if len(data) > MaxUploadBytes {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{"error": "file_too_large", "message": "Image exceeds the upload limit"})
	}

	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	contentType, err := upload.ValidateImageBySniff(fileHeader.Filename, head)
	if err != nil {
		return c.Status(fiber.StatusUnsupportedMediaType).JSON(fiber.Map{"error": "unsupported_type", "message": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Context(), 3*time.Minute)
	defer cancel()

	result, err := ic.restore.Restore(ctx, userCtx.UserID, fileHeader.Filename, data, contentType)
	if err != nil {
		if errors.Is(err, billing.ErrInsufficientCredits) {
			return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{"error": "insufficient_credits", "message": "Not enough credits for a restoration"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "restoration_failed", "message": "Failed to restore the image"})
	}

	return c.JSON(result)
}

// HandleDownload streams the restored result of one of the caller's jobs
func (ic *ImageController) HandleDownload(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	ctx, cancel := context.WithTimeout(c.Context(), 30*time.Second)
	defer cancel()

	data, contentType, err := ic.restore.Download(ctx, userCtx.UserID, c.Params("uuid"))
	if err != nil {
		switch {
		case errors.Is(err, restore.ErrJobNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Restoration not found"})
		case errors.Is(err, restore.ErrResultNotReady):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "result_not_ready", "message": "Restoration has no result yet"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to fetch restoration"})
		}
	}

	c.Set(fiber.HeaderContentType, contentType)
	return c.Send(data)
}

// HandleDelete removes one of the caller's jobs and its stored artifacts
func (ic *ImageController) HandleDelete(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	ctx, cancel := context.WithTimeout(c.Context(), 30*time.Second)
	defer cancel()

	if err := ic.restore.Delete(ctx, userCtx.UserID, c.Params("uuid")); err != nil {
		if errors.Is(err, restore.ErrJobNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Restoration not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to delete restoration"})
	}
	return c.JSON(fiber.Map{"ok": true})
}

// HandleHistory returns the caller's restoration jobs
func (ic *ImageController) HandleHistory(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	offset := c.QueryInt("offset", 0)
	limit := c.QueryInt("limit", 20)
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	images, err := ic.restore.History(userCtx.UserID, offset, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load history"})
	}
	return c.JSON(fiber.Map{"images": images})
}

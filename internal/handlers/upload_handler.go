package handlers

import (
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// extensionToMIME maps common image extensions to their MIME type, used when
// the upload does not declare a usable content type.
var extensionToMIME = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".heic": "image/heic",
	".heif": "image/heif",
	".avif": "image/avif",
	".gif":  "image/gif",
}

// mimeToExtension picks the canonical extension for a stored file.
var mimeToExtension = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/heic": ".heic",
	"image/heif": ".heif",
	"image/avif": ".avif",
	"image/gif":  ".gif",
}

// UploadHandler stores card imagery and hands back a URL the catalog can
// reference. Accepted kinds cover common web formats plus iPhone HEIC/HEIF.
type UploadHandler struct {
	dir string
}

// NewUploadHandler creates a new UploadHandler writing into dir.
func NewUploadHandler(dir string) *UploadHandler {
	return &UploadHandler{
		dir: dir,
	}
}

// RegisterRoutes registers the upload route with the Fiber app.
func (h *UploadHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/upload", h.HandleUpload)
}

// HandleUpload accepts a multipart image, validates its media type and writes
// it under the upload directory.
func (h *UploadHandler) HandleUpload(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "A file is required in the 'file' form field",
		})
	}

	// Prefer the declared content type; fall back to the filename extension.
	// Multipart clients often declare application/octet-stream for anything,
	// so that counts as undeclared.
	mime := strings.TrimSpace(strings.Split(file.Header.Get("Content-Type"), ";")[0])
	if mime == "" || mime == "application/octet-stream" {
		ext := strings.ToLower(filepath.Ext(file.Filename))
		if mapped, ok := extensionToMIME[ext]; ok {
			mime = mapped
		} else {
			mime = "application/octet-stream"
		}
	}

	ext, allowed := mimeToExtension[mime]
	if !allowed {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": fmt.Sprintf("Unsupported file type: %s", mime),
		})
	}

	if err := os.MkdirAll(h.dir, 0o755); err != nil {
		log.Printf("Error creating upload directory %s: %v", h.dir, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not store file",
			"error":   err.Error(),
		})
	}

	filename := fmt.Sprintf("%s-%s%s",
		strconv.FormatInt(time.Now().UnixMilli(), 10),
		strconv.FormatInt(rand.Int63(), 36),
		ext,
	)
	if err := c.SaveFile(file, filepath.Join(h.dir, filename)); err != nil {
		log.Printf("Error saving uploaded file %s: %v", filename, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not store file",
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"url": "/uploads/" + filename,
	})
}

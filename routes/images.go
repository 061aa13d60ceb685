package routes

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/AVMG20/hostgoblin/imagestore"

	"github.com/gofiber/fiber/v2"
)

var errInvalidImagePath = errors.New("invalid image path")

// UploadImage - POST /api/images
func uploadImage(c *fiber.Ctx) error {
	file, err := c.FormFile("image")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to get uploaded file",
		})
	}

	f, err := file.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to read uploaded file",
		})
	}
	data, err := io.ReadAll(f)
	f.Close()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to read uploaded file",
		})
	}

	image, err := images.Save(data, file.Filename, file.Header.Get("Content-Type"))
	if err != nil {
		if errors.Is(err, imagestore.ErrInvalidMediaType) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"errors": fiber.Map{"image": "File must be an image"},
			})
		}
		log.Error().Err(err).Msg("upload image")
		return storageError(c, "Failed to upload image. Please try again.")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":        image.ID,
		"file_name": image.FileName,
		"width":     image.Width,
		"height":    image.Height,
		"url":       imagestore.URLFor(image, imagestore.SizeSmall),
		"paths": fiber.Map{
			"original": image.OriginalPath,
			"small":    image.SmallPath,
			"medium":   image.MediumPath,
			"large":    image.LargePath,
		},
	})
}

// ServeImage - GET /api/images/*
func serveImage(c *fiber.Ctx) error {
	rel := c.Params("*")
	if rel == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Image path is required",
		})
	}

	full, err := resolveImagePath(images.Root(), rel)
	if err != nil {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Invalid path",
		})
	}

	data, err := os.ReadFile(full)
	if err != nil {
		if os.IsNotExist(err) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Image not found",
			})
		}
		log.Error().Err(err).Str("path", full).Msg("serve image")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to read image",
		})
	}

	c.Set(fiber.HeaderContentType, contentTypeFor(filepath.Ext(full)))
	c.Set(fiber.HeaderCacheControl, "public, max-age=31536000, immutable")
	return c.Send(data)
}

// resolveImagePath joins rel onto root and rejects anything escaping it.
func resolveImagePath(root, rel string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}

	full, err := filepath.Abs(filepath.Join(absRoot, filepath.FromSlash(rel)))
	if err != nil {
		return "", err
	}

	if full != absRoot && !strings.HasPrefix(full, absRoot+string(os.PathSeparator)) {
		return "", errInvalidImagePath
	}
	return full, nil
}

func contentTypeFor(ext string) string {
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".svg":
		return "image/svg+xml"
	default:
		return "application/octet-stream"
	}
}

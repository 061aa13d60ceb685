package routes

import (
	"github.com/AVMG20/hostgoblin/db"
	"github.com/AVMG20/hostgoblin/listquery"
	"github.com/AVMG20/hostgoblin/models"

	"github.com/gofiber/fiber/v2"
)

// maxTreeDepth caps the parent-chain walk so pre-existing bad data fails
// closed instead of looping.
const maxTreeDepth = 512

type CategoryForm struct {
	Name        string `json:"name" validate:"required,max=255"`
	Slug        string `json:"slug" validate:"required,max=255"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	ImageID     *uint  `json:"image_id"`
	ParentID    *uint  `json:"parent_id"`
	SortOrder   int    `json:"sort_order"`
	IsActive    bool   `json:"is_active"`
}

func (f *CategoryForm) apply(category *models.Category) {
	category.Name = f.Name
	category.Slug = f.Slug
	category.Description = f.Description
	category.Icon = f.Icon
	category.ImageID = f.ImageID
	category.ParentID = f.ParentID
	category.SortOrder = f.SortOrder
	category.IsActive = f.IsActive
}

// ListCategories - GET /api/admin/categories
func listCategories(c *fiber.Ctx) error {
	opts := listquery.ParseOptions(c)
	opts.SearchableColumns = []string{"id", "name", "slug", "description"}
	opts.DefaultSort = "created_at"
	opts.Preloads = []string{"Image"}

	rows, total, err := listquery.Query[models.Category](db.DB, opts)
	if err != nil {
		log.Error().Err(err).Msg("list categories")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get categories",
		})
	}

	return c.JSON(fiber.Map{
		"data":     rows,
		"total":    total,
		"page":     opts.Page,
		"per_page": opts.PerPage,
	})
}

// CreateCategory - POST /api/admin/categories
func createCategory(c *fiber.Ctx) error {
	form := new(CategoryForm)
	if err := c.BodyParser(form); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to parse request body",
		})
	}

	if errs := validateForm(form); errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": errs})
	}
	if errs, err := checkCategoryReferences(form, 0); err != nil {
		log.Error().Err(err).Msg("create category")
		return storageError(c, "Failed to create category. Please try again.")
	} else if errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": errs})
	}

	category := new(models.Category)
	form.apply(category)

	if err := db.DB.Create(category).Error; err != nil {
		log.Error().Err(err).Msg("create category")
		return storageError(c, "Failed to create category. Please try again.")
	}

	hub.Publish("list:categories", "detail:category:"+category.Slug, "home")

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"data":     category,
		"location": "/admin/categories",
	})
}

// GetCategory - GET /api/admin/categories/:id
func getCategory(c *fiber.Ctx) error {
	id := c.Params("id")
	var category models.Category

	if err := db.DB.Preload("Image").First(&category, id).Error; err != nil {
		if isNotFound(err) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Category not found",
			})
		}
		log.Error().Err(err).Msg("get category")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get category",
		})
	}

	return c.JSON(category)
}

// UpdateCategory - PUT /api/admin/categories/:id
func updateCategory(c *fiber.Ctx) error {
	id := c.Params("id")

	var existing models.Category
	if err := db.DB.First(&existing, id).Error; err != nil {
		if isNotFound(err) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Category not found",
			})
		}
		log.Error().Err(err).Msg("find category")
		return storageError(c, "Failed to update category. Please try again.")
	}

	form := new(CategoryForm)
	if err := c.BodyParser(form); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to parse request body",
		})
	}

	if errs := validateForm(form); errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": errs})
	}
	if errs, err := checkCategoryReferences(form, existing.ID); err != nil {
		log.Error().Err(err).Msg("update category")
		return storageError(c, "Failed to update category. Please try again.")
	} else if errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": errs})
	}

	// Replacing or clearing the image detaches and removes the old one
	// first. The reference is cleared before the image is deleted so a
	// failure attaching the new image leaves the category imageless
	// rather than pointing at a removed row.
	if existing.ImageID != nil && (form.ImageID == nil || *form.ImageID != *existing.ImageID) {
		oldImageID := *existing.ImageID
		if err := db.DB.Model(&existing).Update("image_id", nil).Error; err != nil {
			log.Error().Err(err).Msg("detach category image")
			return storageError(c, "Failed to update category. Please try again.")
		}
		existing.ImageID = nil
		if err := images.Delete(oldImageID); err != nil {
			log.Warn().Err(err).Uint("image_id", oldImageID).Msg("failed to delete replaced category image")
		}
	}

	oldSlug := existing.Slug
	form.apply(&existing)

	if err := db.DB.Save(&existing).Error; err != nil {
		log.Error().Err(err).Msg("update category")
		return storageError(c, "Failed to update category. Please try again.")
	}

	keys := []string{"list:categories", "detail:category:" + existing.Slug, "home"}
	if oldSlug != existing.Slug {
		keys = append(keys, "detail:category:"+oldSlug)
	}
	hub.Publish(keys...)

	return c.JSON(fiber.Map{
		"data":     existing,
		"location": "/admin/categories",
	})
}

// DeleteCategory - DELETE /api/admin/categories/:id
func deleteCategory(c *fiber.Ctx) error {
	id := c.Params("id")

	var category models.Category
	if err := db.DB.First(&category, id).Error; err != nil {
		if isNotFound(err) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Category not found",
			})
		}
		log.Error().Err(err).Msg("find category")
		return storageError(c, "Failed to delete category. Please try again.")
	}

	// Best-effort: a failing image delete never blocks the category delete.
	if category.ImageID != nil {
		if err := images.Delete(*category.ImageID); err != nil {
			log.Warn().Err(err).Uint("image_id", *category.ImageID).Msg("failed to delete category image")
		}
	}

	if err := db.DB.Delete(&category).Error; err != nil {
		log.Error().Err(err).Msg("delete category")
		return storageError(c, "Failed to delete category. Please try again.")
	}

	hub.Publish("list:categories", "detail:category:"+category.Slug, "home")

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Category deleted successfully",
	})
}

// checkCategoryReferences validates slug uniqueness, the parent reference,
// and the cycle guard. It returns field errors for the caller to surface,
// or a real error on storage failure.
func checkCategoryReferences(form *CategoryForm, id uint) (map[string]string, error) {
	taken, err := slugTaken[models.Category](form.Slug, id)
	if err != nil {
		return nil, err
	}
	if taken {
		return map[string]string{"slug": "Category with this slug already exists"}, nil
	}

	if form.ParentID != nil {
		var parent models.Category
		if err := db.DB.First(&parent, *form.ParentID).Error; err != nil {
			if isNotFound(err) {
				return map[string]string{"parent_id": "Parent category not found"}, nil
			}
			return nil, err
		}

		cycle, err := wouldCreateCycle(id, form.ParentID)
		if err != nil {
			return nil, err
		}
		if cycle {
			return map[string]string{"parent_id": "Category cannot be its own ancestor"}, nil
		}
	}

	return nil, nil
}

// wouldCreateCycle walks the stored parent chain from parentID and reports
// whether it reaches the category being saved.
func wouldCreateCycle(id uint, parentID *uint) (bool, error) {
	if id == 0 {
		return false, nil
	}

	current := parentID
	for depth := 0; current != nil; depth++ {
		if *current == id || depth > maxTreeDepth {
			return true, nil
		}

		var parent models.Category
		if err := db.DB.Select("id", "parent_id").First(&parent, *current).Error; err != nil {
			if isNotFound(err) {
				return false, nil
			}
			return false, err
		}
		current = parent.ParentID
	}

	return false, nil
}

func storageError(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": message,
	})
}

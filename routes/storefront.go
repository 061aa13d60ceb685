package routes

import (
	"github.com/AVMG20/hostgoblin/db"
	"github.com/AVMG20/hostgoblin/models"

	"github.com/gofiber/fiber/v2"
)

// PublicCategories - GET /api/categories
func publicCategories(c *fiber.Ctx) error {
	var categories []models.Category
	if err := db.DB.Preload("Image").Where("is_active = ?", true).
		Order("sort_order, name").Find(&categories).Error; err != nil {
		log.Error().Err(err).Msg("public categories")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get categories",
		})
	}

	return c.JSON(fiber.Map{
		"categories": models.BuildCategoryTree(categories),
	})
}

// PublicCategory - GET /api/categories/:slug
//
// A category with active children aggregates the children's products; a
// leaf category lists its own.
func publicCategory(c *fiber.Ctx) error {
	slug := c.Params("slug")

	var category models.Category
	if err := db.DB.Preload("Image").
		Where("slug = ? AND is_active = ?", slug, true).
		First(&category).Error; err != nil {
		if isNotFound(err) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Category not found",
			})
		}
		log.Error().Err(err).Msg("public category")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get category",
		})
	}

	var children []models.Category
	if err := db.DB.Where("parent_id = ? AND is_active = ?", category.ID, true).
		Order("sort_order, name").Find(&children).Error; err != nil {
		log.Error().Err(err).Msg("public category children")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get category",
		})
	}

	query := db.DB.Preload("Features", featureOrder).Where("is_active = ?", true)
	if len(children) > 0 {
		ids := make([]uint, len(children))
		for i, child := range children {
			ids[i] = child.ID
		}
		query = query.Where("category_id IN ?", ids)
	} else {
		query = query.Where("category_id = ?", category.ID)
	}

	var products []models.Product
	if err := query.Order("sort_order, name").Find(&products).Error; err != nil {
		log.Error().Err(err).Msg("public category products")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get products",
		})
	}

	return c.JSON(fiber.Map{
		"category": category,
		"children": children,
		"products": products,
	})
}

// PublicProduct - GET /api/products/:slug
func publicProduct(c *fiber.Ctx) error {
	slug := c.Params("slug")

	var product models.Product
	if err := db.DB.Preload("Category").Preload("Features", featureOrder).
		Where("slug = ? AND is_active = ?", slug, true).
		First(&product).Error; err != nil {
		if isNotFound(err) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Product not found",
			})
		}
		log.Error().Err(err).Msg("public product")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get product",
		})
	}

	return c.JSON(product)
}

// PublicPosts - GET /api/posts
func publicPosts(c *fiber.Ctx) error {
	var posts []models.Post
	if err := db.DB.Where("published = ?", true).
		Order("created_at desc").Find(&posts).Error; err != nil {
		log.Error().Err(err).Msg("public posts")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get posts",
		})
	}

	return c.JSON(fiber.Map{"posts": posts})
}

// PublicPost - GET /api/posts/:slug
func publicPost(c *fiber.Ctx) error {
	slug := c.Params("slug")

	var post models.Post
	if err := db.DB.Where("slug = ? AND published = ?", slug, true).
		First(&post).Error; err != nil {
		if isNotFound(err) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Post not found",
			})
		}
		log.Error().Err(err).Msg("public post")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get post",
		})
	}

	return c.JSON(post)
}

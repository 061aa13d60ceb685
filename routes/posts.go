package routes

import (
	"github.com/AVMG20/hostgoblin/db"
	"github.com/AVMG20/hostgoblin/listquery"
	"github.com/AVMG20/hostgoblin/models"

	"github.com/gofiber/fiber/v2"
)

type PostForm struct {
	Title     string `json:"title" validate:"required,max=255"`
	Content   string `json:"content" validate:"required"`
	Slug      string `json:"slug" validate:"required,max=255"`
	Published bool   `json:"published"`
}

func (f *PostForm) apply(post *models.Post) {
	post.Title = f.Title
	post.Content = f.Content
	post.Slug = f.Slug
	post.Published = f.Published
}

// ListPosts - GET /api/admin/posts
func listPosts(c *fiber.Ctx) error {
	opts := listquery.ParseOptions(c)
	opts.SearchableColumns = []string{"id", "title", "slug", "content"}
	opts.DefaultSort = "created_at"

	rows, total, err := listquery.Query[models.Post](db.DB, opts)
	if err != nil {
		log.Error().Err(err).Msg("list posts")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get posts",
		})
	}

	return c.JSON(fiber.Map{
		"data":     rows,
		"total":    total,
		"page":     opts.Page,
		"per_page": opts.PerPage,
	})
}

// CreatePost - POST /api/admin/posts
func createPost(c *fiber.Ctx) error {
	form := new(PostForm)
	if err := c.BodyParser(form); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to parse request body",
		})
	}

	if errs := validateForm(form); errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": errs})
	}

	taken, err := slugTaken[models.Post](form.Slug, 0)
	if err != nil {
		log.Error().Err(err).Msg("create post")
		return storageError(c, "Failed to create post. Please try again.")
	}
	if taken {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"errors": fiber.Map{"slug": "Post with this slug already exists"},
		})
	}

	post := new(models.Post)
	form.apply(post)

	if err := db.DB.Create(post).Error; err != nil {
		log.Error().Err(err).Msg("create post")
		return storageError(c, "Failed to create post. Please try again.")
	}

	hub.Publish("list:posts", "detail:post:"+post.Slug)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"data":     post,
		"location": "/admin/posts",
	})
}

// GetPost - GET /api/admin/posts/:id
func getPost(c *fiber.Ctx) error {
	id := c.Params("id")
	var post models.Post

	if err := db.DB.First(&post, id).Error; err != nil {
		if isNotFound(err) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Post not found",
			})
		}
		log.Error().Err(err).Msg("get post")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get post",
		})
	}

	return c.JSON(post)
}

// UpdatePost - PUT /api/admin/posts/:id
func updatePost(c *fiber.Ctx) error {
	id := c.Params("id")

	var existing models.Post
	if err := db.DB.First(&existing, id).Error; err != nil {
		if isNotFound(err) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Post not found",
			})
		}
		log.Error().Err(err).Msg("find post")
		return storageError(c, "Failed to update post. Please try again.")
	}

	form := new(PostForm)
	if err := c.BodyParser(form); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to parse request body",
		})
	}

	if errs := validateForm(form); errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": errs})
	}

	taken, err := slugTaken[models.Post](form.Slug, existing.ID)
	if err != nil {
		log.Error().Err(err).Msg("update post")
		return storageError(c, "Failed to update post. Please try again.")
	}
	if taken {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"errors": fiber.Map{"slug": "Post with this slug already exists"},
		})
	}

	oldSlug := existing.Slug
	form.apply(&existing)

	if err := db.DB.Save(&existing).Error; err != nil {
		log.Error().Err(err).Msg("update post")
		return storageError(c, "Failed to update post. Please try again.")
	}

	keys := []string{"list:posts", "detail:post:" + existing.Slug}
	if oldSlug != existing.Slug {
		keys = append(keys, "detail:post:"+oldSlug)
	}
	hub.Publish(keys...)

	return c.JSON(fiber.Map{
		"data":     existing,
		"location": "/admin/posts",
	})
}

// DeletePost - DELETE /api/admin/posts/:id
func deletePost(c *fiber.Ctx) error {
	id := c.Params("id")

	var post models.Post
	if err := db.DB.First(&post, id).Error; err != nil {
		if isNotFound(err) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Post not found",
			})
		}
		log.Error().Err(err).Msg("find post")
		return storageError(c, "Failed to delete post. Please try again.")
	}

	if err := db.DB.Delete(&post).Error; err != nil {
		log.Error().Err(err).Msg("delete post")
		return storageError(c, "Failed to delete post. Please try again.")
	}

	hub.Publish("list:posts", "detail:post:"+post.Slug)

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Post deleted successfully",
	})
}

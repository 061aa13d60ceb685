package routes

import (
	"github.com/AVMG20/hostgoblin/db"
	"github.com/AVMG20/hostgoblin/listquery"
	"github.com/AVMG20/hostgoblin/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
)

type ProductForm struct {
	Name              string         `json:"name" validate:"required,max=255"`
	Slug              string         `json:"slug" validate:"required,max=255"`
	Description       string         `json:"description"`
	CategoryID        uint           `json:"category_id" validate:"required"`
	RAMMb             *int           `json:"ram_mb" validate:"omitempty,gte=0"`
	CPUCores          *int           `json:"cpu_cores" validate:"omitempty,gte=0"`
	DiskGb            *int           `json:"disk_gb" validate:"omitempty,gte=0"`
	Bandwidth         *int           `json:"bandwidth" validate:"omitempty,gte=0"`
	CustomLimits      datatypes.JSON `json:"custom_limits"`
	PricePerHour      int64          `json:"price_per_hour" validate:"gte=0"`
	IsActive          bool           `json:"is_active"`
	IsPopular         bool           `json:"is_popular"`
	SortOrder         int            `json:"sort_order"`
	IntegrationType   string         `json:"integration_type"`
	IntegrationConfig datatypes.JSON `json:"integration_config"`
	Features          []string       `json:"features"`
}

func (f *ProductForm) apply(product *models.Product) {
	product.Name = f.Name
	product.Slug = f.Slug
	product.Description = f.Description
	product.CategoryID = f.CategoryID
	product.RAMMb = f.RAMMb
	product.CPUCores = f.CPUCores
	product.DiskGb = f.DiskGb
	product.Bandwidth = f.Bandwidth
	product.CustomLimits = f.CustomLimits
	product.PricePerHour = f.PricePerHour
	product.IsActive = f.IsActive
	product.IsPopular = f.IsPopular
	product.SortOrder = f.SortOrder
	product.IntegrationType = f.IntegrationType
	product.IntegrationConfig = f.IntegrationConfig
}

// ListProducts - GET /api/admin/products
func listProducts(c *fiber.Ctx) error {
	opts := listquery.ParseOptions(c)
	opts.SearchableColumns = []string{"id", "name", "slug", "description"}
	opts.DefaultSort = "created_at"
	opts.Preloads = []string{"Category"}

	rows, total, err := listquery.Query[models.Product](db.DB, opts)
	if err != nil {
		log.Error().Err(err).Msg("list products")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get products",
		})
	}

	return c.JSON(fiber.Map{
		"data":     rows,
		"total":    total,
		"page":     opts.Page,
		"per_page": opts.PerPage,
	})
}

// CreateProduct - POST /api/admin/products
func createProduct(c *fiber.Ctx) error {
	form := new(ProductForm)
	if err := c.BodyParser(form); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to parse request body",
		})
	}

	if errs := validateForm(form); errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": errs})
	}
	if errs, err := checkProductReferences(form, 0); err != nil {
		log.Error().Err(err).Msg("create product")
		return storageError(c, "Failed to create product. Please try again.")
	} else if errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": errs})
	}

	product := new(models.Product)
	form.apply(product)

	if err := db.DB.Create(product).Error; err != nil {
		log.Error().Err(err).Msg("create product")
		return storageError(c, "Failed to create product. Please try again.")
	}

	if err := replaceFeatures(product.ID, form.Features); err != nil {
		log.Error().Err(err).Msg("create product features")
		return storageError(c, "Failed to create product. Please try again.")
	}

	if err := db.DB.Preload("Features", featureOrder).First(product, product.ID).Error; err != nil {
		log.Error().Err(err).Msg("reload product")
		return storageError(c, "Failed to create product. Please try again.")
	}

	hub.Publish("list:products", "detail:product:"+product.Slug, "home")

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"data":     product,
		"location": "/admin/products",
	})
}

// GetProduct - GET /api/admin/products/:id
func getProduct(c *fiber.Ctx) error {
	id := c.Params("id")
	var product models.Product

	if err := db.DB.Preload("Category").Preload("Features", featureOrder).First(&product, id).Error; err != nil {
		if isNotFound(err) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Product not found",
			})
		}
		log.Error().Err(err).Msg("get product")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get product",
		})
	}

	return c.JSON(product)
}

// UpdateProduct - PUT /api/admin/products/:id
func updateProduct(c *fiber.Ctx) error {
	id := c.Params("id")

	var existing models.Product
	if err := db.DB.First(&existing, id).Error; err != nil {
		if isNotFound(err) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Product not found",
			})
		}
		log.Error().Err(err).Msg("find product")
		return storageError(c, "Failed to update product. Please try again.")
	}

	form := new(ProductForm)
	if err := c.BodyParser(form); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to parse request body",
		})
	}

	if errs := validateForm(form); errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": errs})
	}
	if errs, err := checkProductReferences(form, existing.ID); err != nil {
		log.Error().Err(err).Msg("update product")
		return storageError(c, "Failed to update product. Please try again.")
	} else if errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": errs})
	}

	oldSlug := existing.Slug
	form.apply(&existing)

	if err := db.DB.Save(&existing).Error; err != nil {
		log.Error().Err(err).Msg("update product")
		return storageError(c, "Failed to update product. Please try again.")
	}

	if err := replaceFeatures(existing.ID, form.Features); err != nil {
		log.Error().Err(err).Msg("update product features")
		return storageError(c, "Failed to update product. Please try again.")
	}

	if err := db.DB.Preload("Features", featureOrder).First(&existing, existing.ID).Error; err != nil {
		log.Error().Err(err).Msg("reload product")
		return storageError(c, "Failed to update product. Please try again.")
	}

	keys := []string{"list:products", "detail:product:" + existing.Slug, "home"}
	if oldSlug != existing.Slug {
		keys = append(keys, "detail:product:"+oldSlug)
	}
	hub.Publish(keys...)

	return c.JSON(fiber.Map{
		"data":     existing,
		"location": "/admin/products",
	})
}

// DeleteProduct - DELETE /api/admin/products/:id
func deleteProduct(c *fiber.Ctx) error {
	id := c.Params("id")

	var product models.Product
	if err := db.DB.First(&product, id).Error; err != nil {
		if isNotFound(err) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Product not found",
			})
		}
		log.Error().Err(err).Msg("find product")
		return storageError(c, "Failed to delete product. Please try again.")
	}

	if err := db.DB.Where("product_id = ?", product.ID).Delete(&models.ProductFeature{}).Error; err != nil {
		log.Error().Err(err).Msg("delete product features")
		return storageError(c, "Failed to delete product. Please try again.")
	}
	if err := db.DB.Delete(&product).Error; err != nil {
		log.Error().Err(err).Msg("delete product")
		return storageError(c, "Failed to delete product. Please try again.")
	}

	hub.Publish("list:products", "detail:product:"+product.Slug, "home")

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Product deleted successfully",
	})
}

func checkProductReferences(form *ProductForm, id uint) (map[string]string, error) {
	taken, err := slugTaken[models.Product](form.Slug, id)
	if err != nil {
		return nil, err
	}
	if taken {
		return map[string]string{"slug": "Product with this slug already exists"}, nil
	}

	var category models.Category
	if err := db.DB.First(&category, form.CategoryID).Error; err != nil {
		if isNotFound(err) {
			return map[string]string{"category_id": "Category not found"}, nil
		}
		return nil, err
	}

	return nil, nil
}

// replaceFeatures swaps out the product's feature rows wholesale, keeping
// submission order as sort order.
func replaceFeatures(productID uint, features []string) error {
	if err := db.DB.Where("product_id = ?", productID).Delete(&models.ProductFeature{}).Error; err != nil {
		return err
	}

	for i, feature := range features {
		if feature == "" {
			continue
		}
		row := models.ProductFeature{ProductID: productID, Feature: feature, SortOrder: i}
		if err := db.DB.Create(&row).Error; err != nil {
			return err
		}
	}
	return nil
}

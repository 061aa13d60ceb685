package routes

import (
	"errors"
	"net/http"

	"github.com/AVMG20/hostgoblin/db"
	"github.com/AVMG20/hostgoblin/imagestore"
	"github.com/AVMG20/hostgoblin/revalidate"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Adjust this for production
	},
}

var (
	images *imagestore.Store
	hub    *revalidate.Hub
	log    zerolog.Logger
)

func SetupRoutes(app *fiber.App, store *imagestore.Store, revalidateHub *revalidate.Hub, logger zerolog.Logger) {
	images = store
	hub = revalidateHub
	log = logger

	// Presentation-layer subscription for invalidation keys
	app.Get("/ws/revalidate", adaptor.HTTPHandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn().Err(err).Msg("websocket upgrade failed")
			return
		}
		hub.Attach(conn)
	}))

	// Image upload and serving
	app.Post("/api/images", uploadImage)
	app.Get("/api/images/*", serveImage)

	api := app.Group("/api")

	// Public storefront routes
	api.Get("/categories", publicCategories)
	api.Get("/categories/:slug", publicCategory)
	api.Get("/products/:slug", publicProduct)
	api.Get("/posts", publicPosts)
	api.Get("/posts/:slug", publicPost)

	admin := api.Group("/admin")

	// Category routes
	categories := admin.Group("/categories")
	categories.Get("/", listCategories)
	categories.Post("/", createCategory)
	categories.Get("/:id", getCategory)
	categories.Put("/:id", updateCategory)
	categories.Delete("/:id", deleteCategory)

	// Product routes
	products := admin.Group("/products")
	products.Get("/", listProducts)
	products.Post("/", createProduct)
	products.Get("/:id", getProduct)
	products.Put("/:id", updateProduct)
	products.Delete("/:id", deleteProduct)

	// Post routes
	posts := admin.Group("/posts")
	posts.Get("/", listPosts)
	posts.Post("/", createPost)
	posts.Get("/:id", getPost)
	posts.Put("/:id", updatePost)
	posts.Delete("/:id", deletePost)
}

// slugTaken checks slug uniqueness for T, ignoring excludeID when updating.
func slugTaken[T any](slug string, excludeID uint) (bool, error) {
	var count int64
	q := db.DB.Model(new(T)).Where("slug = ?", slug)
	if excludeID != 0 {
		q = q.Where("id != ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// featureOrder keeps preloaded product features in display order.
func featureOrder(tx *gorm.DB) *gorm.DB {
	return tx.Order("sort_order")
}

package routes

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AVMG20/hostgoblin/db"
	"github.com/AVMG20/hostgoblin/imagestore"
	"github.com/AVMG20/hostgoblin/models"
	"github.com/AVMG20/hostgoblin/revalidate"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testEnv struct {
	app   *fiber.App
	db    *gorm.DB
	store *imagestore.Store
	hub   *revalidate.Hub
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	// One connection so the list engine's concurrent reads share the db.
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, gdb.AutoMigrate(
		&models.Image{}, &models.Category{}, &models.Product{},
		&models.ProductFeature{}, &models.Post{},
	))
	db.DB = gdb

	store := imagestore.New(gdb, t.TempDir(), zerolog.Nop())
	hub := revalidate.NewHub(zerolog.Nop())

	app := fiber.New()
	SetupRoutes(app, store, hub, zerolog.Nop())

	return &testEnv{app: app, db: gdb, store: store, hub: hub}
}

func (e *testEnv) request(t *testing.T, method, target string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, target, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	resp.Body.Close()
	return body
}

func fieldError(t *testing.T, body map[string]any, field string) string {
	t.Helper()

	errs, ok := body["errors"].(map[string]any)
	require.True(t, ok, "expected errors map, got %v", body)
	msg, _ := errs[field].(string)
	return msg
}

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

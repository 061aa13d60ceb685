package db

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/AVMG20/hostgoblin/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var DB *gorm.DB

// Init opens the SQLite database at path and migrates the schema. In-memory
// paths skip the directory handling used for on-disk databases.
func Init(path string) error {
	if !strings.Contains(path, ":memory:") {
		dir := filepath.Dir(path)
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("create database directory: %w", err)
			}
		}
	}

	var err error
	DB, err = gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	if err := DB.AutoMigrate(
		&models.Image{}, &models.Category{}, &models.Product{},
		&models.ProductFeature{}, &models.Post{},
	); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}

	return nil
}

// Package imagestore owns uploaded images: validation, the fixed-size
// derivative pipeline, the on-disk layout, and the metadata table.
package imagestore

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/AVMG20/hostgoblin/models"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

var (
	ErrInvalidMediaType = errors.New("file must be an image")
	ErrNotFound         = errors.New("image not found")
)

// PublicPrefix is the path convention stored on image rows; ServePrefix is
// the route the serving endpoint is mounted on.
const (
	PublicPrefix = "/storage/image"
	ServePrefix  = "/api/images"
)

var sizes = []struct {
	name   string
	width  int
	height int
}{
	{"small", 150, 150},
	{"medium", 400, 400},
	{"large", 800, 800},
}

type Store struct {
	db   *gorm.DB
	root string
	log  zerolog.Logger
}

func New(gdb *gorm.DB, root string, log zerolog.Logger) *Store {
	return &Store{db: gdb, root: root, log: log}
}

// Root returns the storage root directory.
func (s *Store) Root() string {
	return s.root
}

// Save validates the upload, writes the original plus the three derivative
// sizes, and inserts the metadata row. The row is the visibility boundary:
// it is written only once all four files exist, and on any file failure
// whatever was already written is best-effort removed before returning.
func (s *Store) Save(data []byte, originalName, mimeType string) (*models.Image, error) {
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, ErrInvalidMediaType
	}

	// A declared image type that does not decode is still bad input, not a
	// storage failure.
	src, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMediaType, err)
	}

	if err := s.ensureDirs(); err != nil {
		return nil, err
	}

	fileName := generateFileName(originalName)

	var written []string
	cleanup := func() {
		for _, p := range written {
			if err := os.Remove(p); err != nil {
				s.log.Warn().Err(err).Str("path", p).Msg("failed to clean up image file")
			}
		}
	}

	originalFile := filepath.Join(s.root, "original", fileName)
	if err := os.WriteFile(originalFile, data, 0644); err != nil {
		return nil, fmt.Errorf("write original: %w", err)
	}
	written = append(written, originalFile)

	for _, size := range sizes {
		thumb := imaging.Fill(src, size.width, size.height, imaging.Center, imaging.Lanczos)
		sizeFile := filepath.Join(s.root, size.name, size.name+"-"+fileName)

		f, err := os.Create(sizeFile)
		if err != nil {
			cleanup()
			return nil, fmt.Errorf("write %s derivative: %w", size.name, err)
		}
		written = append(written, sizeFile)

		err = imaging.Encode(f, thumb, imaging.JPEG, imaging.JPEGQuality(85))
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			cleanup()
			return nil, fmt.Errorf("write %s derivative: %w", size.name, err)
		}
	}

	bounds := src.Bounds()
	image := &models.Image{
		OriginalName: originalName,
		FileName:     fileName,
		MimeType:     mimeType,
		Size:         int64(len(data)),
		Width:        bounds.Dx(),
		Height:       bounds.Dy(),
		OriginalPath: path.Join(PublicPrefix, "original", fileName),
		SmallPath:    path.Join(PublicPrefix, "small", "small-"+fileName),
		MediumPath:   path.Join(PublicPrefix, "medium", "medium-"+fileName),
		LargePath:    path.Join(PublicPrefix, "large", "large-"+fileName),
	}

	if err := s.db.Create(image).Error; err != nil {
		cleanup()
		return nil, fmt.Errorf("save image record: %w", err)
	}

	return image, nil
}

// Get looks up an image row by id.
func (s *Store) Get(id uint) (*models.Image, error) {
	var image models.Image
	if err := s.db.First(&image, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get image: %w", err)
	}
	return &image, nil
}

// Delete unlinks the image's four files best-effort (failures are logged,
// never propagated) and then removes the metadata row. The row goes away
// even when files were already missing.
func (s *Store) Delete(id uint) error {
	image, err := s.Get(id)
	if err != nil {
		return err
	}

	for _, p := range []string{image.OriginalPath, image.SmallPath, image.MediumPath, image.LargePath} {
		if p == "" {
			continue
		}
		full := s.diskPath(p)
		if err := os.Remove(full); err != nil {
			s.log.Warn().Err(err).Str("path", full).Msg("failed to delete image file")
		}
	}

	if err := s.db.Delete(&models.Image{}, image.ID).Error; err != nil {
		return fmt.Errorf("delete image record: %w", err)
	}

	return nil
}

func (s *Store) ensureDirs() error {
	for _, dir := range []string{"original", "small", "medium", "large"} {
		if err := os.MkdirAll(filepath.Join(s.root, dir), 0755); err != nil {
			return fmt.Errorf("create storage directory: %w", err)
		}
	}
	return nil
}

// diskPath maps a stored public path back to its location under the root.
func (s *Store) diskPath(publicPath string) string {
	rel := strings.TrimPrefix(publicPath, PublicPrefix+"/")
	return filepath.Join(s.root, filepath.FromSlash(rel))
}

// generateFileName keeps the original extension and prefixes a timestamp
// plus a random id. Collisions are avoided probabilistically, not
// guaranteed.
func generateFileName(originalName string) string {
	ext := filepath.Ext(originalName)
	return fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), uuid.New().String(), ext)
}

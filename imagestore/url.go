package imagestore

import (
	"strings"

	"github.com/AVMG20/hostgoblin/models"
)

type Size string

const (
	SizeSmall    Size = "small"
	SizeMedium   Size = "medium"
	SizeLarge    Size = "large"
	SizeOriginal Size = "original"
)

// URLFor maps a requested size to the image's serving URL. A missing
// derivative falls back to the original, and the internal storage path
// convention is rewritten to the public serving route.
func URLFor(image *models.Image, size Size) string {
	var p string
	switch size {
	case SizeSmall:
		p = image.SmallPath
	case SizeMedium:
		p = image.MediumPath
	case SizeLarge:
		p = image.LargePath
	default:
		p = image.OriginalPath
	}

	if p == "" {
		p = image.OriginalPath
	}

	if strings.HasPrefix(p, PublicPrefix+"/") {
		return ServePrefix + strings.TrimPrefix(p, PublicPrefix)
	}
	return p
}

package models

import "time"

// Category is a node in the catalog tree. ParentID is nil for roots. The
// entity never stores its own child list; tree views are built at read time
// from the flat set (see BuildCategoryTree).
type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `json:"name"`
	Slug        string    `gorm:"uniqueIndex" json:"slug"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	ImageID     *uint     `json:"image_id"`
	Image       *Image    `gorm:"foreignKey:ImageID" json:"image,omitempty"`
	ParentID    *uint     `json:"parent_id"`
	SortOrder   int       `gorm:"default:0" json:"sort_order"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

package models

import (
	"time"

	"gorm.io/datatypes"
)

// Product is a purchasable hosting plan. PricePerHour is stored in integer
// minor units. Resource limits are optional; anything beyond the fixed
// columns goes into CustomLimits.
type Product struct {
	ID                uint             `gorm:"primaryKey" json:"id"`
	Name              string           `json:"name"`
	Slug              string           `gorm:"uniqueIndex" json:"slug"`
	Description       string           `json:"description"`
	CategoryID        uint             `json:"category_id"`
	Category          *Category        `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	RAMMb             *int             `json:"ram_mb"`
	CPUCores          *int             `json:"cpu_cores"`
	DiskGb            *int             `json:"disk_gb"`
	Bandwidth         *int             `json:"bandwidth"`
	CustomLimits      datatypes.JSON   `json:"custom_limits"`
	PricePerHour      int64            `json:"price_per_hour"`
	IsActive          bool             `json:"is_active"`
	IsPopular         bool             `json:"is_popular"`
	SortOrder         int              `gorm:"default:0" json:"sort_order"`
	IntegrationType   string           `json:"integration_type"`
	IntegrationConfig datatypes.JSON   `json:"integration_config"`
	Features          []ProductFeature `gorm:"foreignKey:ProductID" json:"features,omitempty"`
	CreatedAt         time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

// ProductFeature is one marketing bullet point on a product. The set is
// replaced wholesale whenever the product is updated.
type ProductFeature struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	ProductID uint   `json:"product_id"`
	Feature   string `json:"feature"`
	SortOrder int    `gorm:"default:0" json:"sort_order"`
}

package model

import (
	"time"

	"gorm.io/gorm"
)

// Category groups currency products within a business
type Category struct {
	ID         uint           `json:"id" gorm:"primarykey"`
	Name       string         `json:"name" gorm:"type:varchar(255);not null"`
	IconURL    string         `json:"icon_url" gorm:"type:varchar(500)"`
	BusinessID uint           `json:"business_id" gorm:"index;not null"`
	IsActive   bool           `json:"is_active" gorm:"default:true"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// Collection is a themed grouping of point products. A nil BusinessID marks
// a global collection created by the platform administrator.
type Collection struct {
	ID          uint           `json:"id" gorm:"primarykey"`
	Name        string         `json:"name" gorm:"type:varchar(255);not null"`
	Description string         `json:"description" gorm:"type:text"`
	ImageURL    string         `json:"image_url" gorm:"type:varchar(500)"`
	BusinessID  *uint          `json:"business_id" gorm:"index"`
	IsActive    bool           `json:"is_active" gorm:"default:true"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// SetProduct is a catalog template entry inside a CollectionSet
type SetProduct struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Description string `json:"description"`
	PricePoint  int    `json:"price_point"`
	ImageURL    string `json:"image_url"`
}

// CollectionSet is an admin-curated template of point products that
// businesses order as a unit; delivery confirmation materializes it into a
// Collection with stocked PointProducts.
type CollectionSet struct {
	ID          uint           `json:"id" gorm:"primarykey"`
	Name        string         `json:"name" gorm:"type:varchar(255);not null"`
	Description string         `json:"description" gorm:"type:text"`
	Category    string         `json:"category" gorm:"type:varchar(100)"`
	ImageURL    string         `json:"image_url" gorm:"type:varchar(500)"`
	Products    []SetProduct   `json:"products" gorm:"serializer:json"`
	TotalItems  int            `json:"total_items" gorm:"not null"`
	IsActive    bool           `json:"is_active" gorm:"default:true"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// OptionChoice is a single selectable choice inside a product option group
type OptionChoice struct {
	Name          string  `json:"name"`
	PriceModifier float64 `json:"price_modifier"`
}

// ProductOption is a per-item option group (e.g. sugar level, milk type)
type ProductOption struct {
	Name    string         `json:"name"`
	Choices []OptionChoice `json:"choices"`
}

// CurrencyProduct is a product priced in real-world currency. EarnedPoints
// is the per-unit loyalty reward used by the kiosk earn policy.
type CurrencyProduct struct {
	ID           uint            `json:"id" gorm:"primarykey"`
	Name         string          `json:"name" gorm:"type:varchar(255);not null"`
	Description  string          `json:"description" gorm:"type:text"`
	CategoryID   uint            `json:"category_id" gorm:"index;not null"`
	CategoryName string          `json:"category_name" gorm:"type:varchar(255)"`
	Price        float64         `json:"price" gorm:"not null"`
	EarnedPoints int             `json:"earned_points" gorm:"default:0"`
	Stock        int             `json:"stock" gorm:"default:0"`
	ImageURL     string          `json:"image_url" gorm:"type:varchar(500)"`
	BusinessID   uint            `json:"business_id" gorm:"index;not null"`
	IsActive     bool            `json:"is_active" gorm:"default:true"`
	Options      []ProductOption `json:"options" gorm:"serializer:json"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	DeletedAt    gorm.DeletedAt  `json:"deleted_at,omitempty" gorm:"index"`
}

// PointProduct is a collectible product priced in loyalty points. A nil
// BusinessID with IsGlobal set marks an admin-created template product.
type PointProduct struct {
	ID             uint           `json:"id" gorm:"primarykey"`
	Name           string         `json:"name" gorm:"type:varchar(255);not null"`
	Description    string         `json:"description" gorm:"type:text"`
	CollectionID   uint           `json:"collection_id" gorm:"index"`
	CollectionName string         `json:"collection_name" gorm:"type:varchar(255)"`
	PricePoint     int            `json:"price_point" gorm:"not null"`
	Stock          int            `json:"stock" gorm:"default:0"`
	ImageURL       string         `json:"image_url" gorm:"type:varchar(500)"`
	BusinessID     *uint          `json:"business_id" gorm:"index"`
	IsGlobal       bool           `json:"is_global" gorm:"default:false;index"`
	IsActive       bool           `json:"is_active" gorm:"default:true"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

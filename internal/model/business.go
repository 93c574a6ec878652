package model

import (
	"time"

	"gorm.io/gorm"
)

// Business represents a tenant on the platform. Each business owns its
// categories, collections, products, orders and the loyalty ledgers scoped
// to it.
type Business struct {
	ID                uint           `json:"id" gorm:"primarykey"`
	Name              string         `json:"name" gorm:"type:varchar(255);not null"`
	Email             string         `json:"email" gorm:"type:varchar(255);unique;not null"`
	Password          string         `json:"-" gorm:"type:varchar(255);not null"`
	Description       string         `json:"description" gorm:"type:text"`
	Address           string         `json:"address" gorm:"type:varchar(500)"`
	Phone             string         `json:"phone" gorm:"type:varchar(50)"`
	LogoURL           string         `json:"logo_url" gorm:"type:varchar(500)"`
	CoverImageURL     string         `json:"cover_image_url" gorm:"type:varchar(500)"`
	ThemeColor        string         `json:"theme_color" gorm:"type:varchar(20);default:'#667eea'"`
	SecondaryColor    string         `json:"secondary_color" gorm:"type:varchar(20);default:'#764ba2'"`
	NotificationSound string         `json:"notification_sound" gorm:"type:varchar(20);default:'beep'"`
	IsActive          bool           `json:"is_active" gorm:"default:true"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// AdminUser represents a platform administrator account
type AdminUser struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	Name      string    `json:"name" gorm:"type:varchar(255);not null"`
	Email     string    `json:"email" gorm:"type:varchar(255);unique;not null"`
	Password  string    `json:"-" gorm:"type:varchar(255);not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

package model

import (
	"time"
)

// Customer represents an end user authenticated through an external identity
// provider. TotalPoints is a denormalized display counter across all
// businesses; the per-business LedgerEntry rows are the source of truth.
type Customer struct {
	ID          uint      `json:"id" gorm:"primarykey"`
	Name        string    `json:"name" gorm:"type:varchar(255);not null"`
	Email       string    `json:"email" gorm:"type:varchar(255);unique;not null"`
	Phone       string    `json:"phone" gorm:"type:varchar(50)"`
	AvatarURL   string    `json:"avatar_url" gorm:"type:varchar(500)"`
	Provider    string    `json:"provider" gorm:"type:varchar(20);not null;index:idx_customer_provider"`
	ProviderID  string    `json:"provider_id" gorm:"type:varchar(255);not null;index:idx_customer_provider"`
	TotalPoints int       `json:"total_points" gorm:"default:0"`
	IsActive    bool      `json:"is_active" gorm:"default:true"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

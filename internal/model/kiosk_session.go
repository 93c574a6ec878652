package model

import (
	"time"
)

// KioskSession pairs a kiosk screen with a customer's mobile device through
// a short-lived QR code. CustomerID is set when the mobile app scans the
// code and links the session.
type KioskSession struct {
	ID         uint      `json:"id" gorm:"primarykey"`
	BusinessID uint      `json:"business_id" gorm:"index;not null"`
	QRCode     string    `json:"qr_code" gorm:"type:varchar(100);uniqueIndex;not null"`
	CustomerID *uint     `json:"customer_id"`
	IsActive   bool      `json:"is_active" gorm:"default:true"`
	ExpiresAt  time.Time `json:"expires_at" gorm:"not null"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

package model

import (
	"time"
)

// Audit log levels
const (
	AuditLevelInfo    = "info"
	AuditLevelWarning = "warning"
	AuditLevelError   = "error"
	AuditLevelSuccess = "success"
)

// Audit log categories
const (
	AuditCategoryAuth       = "auth"
	AuditCategoryBusiness   = "business"
	AuditCategoryCollection = "collection"
	AuditCategoryShipment   = "shipment"
	AuditCategoryOrder      = "order"
	AuditCategoryLoyalty    = "loyalty"
	AuditCategorySystem     = "system"
)

// AuditLog is a persisted audit trail record. Writes are fire-and-forget;
// a failed insert never propagates to the operation that produced it.
type AuditLog struct {
	ID         uint                   `json:"id" gorm:"primarykey"`
	Level      string                 `json:"level" gorm:"type:varchar(20);default:'info';index:idx_audit_level_created"`
	Category   string                 `json:"category" gorm:"type:varchar(20);default:'system';index:idx_audit_category_created"`
	Message    string                 `json:"message" gorm:"type:text;not null"`
	CustomerID *uint                  `json:"customer_id" gorm:"index"`
	BusinessID *uint                  `json:"business_id" gorm:"index"`
	Metadata   map[string]interface{} `json:"metadata" gorm:"serializer:json"`
	IPAddress  string                 `json:"ip_address" gorm:"type:varchar(50)"`
	UserAgent  string                 `json:"user_agent" gorm:"type:varchar(500)"`
	CreatedAt  time.Time              `json:"created_at" gorm:"index:idx_audit_level_created;index:idx_audit_category_created"`
}

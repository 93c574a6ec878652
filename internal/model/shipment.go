package model

import (
	"time"
)

// Shipment types: admin-initiated deliveries and business-initiated restock
// requests share one record kind distinguished by Type.
const (
	ShipmentTypeAdmin   = "admin"
	ShipmentTypeRestock = "restock"
)

// Shipment statuses form a state machine parallel to but independent of the
// order machine.
const (
	ShipmentStatusPending   = "pending"
	ShipmentStatusInTransit = "in_transit"
	ShipmentStatusDelivered = "delivered"
	ShipmentStatusCancelled = "cancelled"
)

// ShipmentItem is a manifest line of a shipment
type ShipmentItem struct {
	ProductID   string `json:"product_id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
	Quantity    int    `json:"quantity"`
	PricePoint  int    `json:"price_point"`
}

// Shipment records movement of point products between the administrator and
// a business. Confirming delivery increments the receiving business's point
// product stock.
type Shipment struct {
	ID                  uint           `json:"id" gorm:"primarykey"`
	Type                string         `json:"type" gorm:"type:varchar(20);default:'admin';index"`
	CollectionSetID     *uint          `json:"collection_set_id" gorm:"index"`
	CollectionSetName   string         `json:"collection_set_name" gorm:"type:varchar(255)"`
	BusinessID          uint           `json:"business_id" gorm:"index:idx_shipment_business;not null"`
	BusinessName        string         `json:"business_name" gorm:"type:varchar(255)"`
	BusinessAddress     string         `json:"business_address" gorm:"type:varchar(500)"`
	BusinessPhone       string         `json:"business_phone" gorm:"type:varchar(50)"`
	Status              string         `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	TrackingNumber      string         `json:"tracking_number" gorm:"type:varchar(100)"`
	ShippingCompany     string         `json:"shipping_company" gorm:"type:varchar(100)"`
	TotalItems          int            `json:"total_items" gorm:"not null"`
	Products            []ShipmentItem `json:"products" gorm:"serializer:json"`
	Notes               string         `json:"notes" gorm:"type:text"`
	ShippedAt           *time.Time     `json:"shipped_at"`
	DeliveredAt         *time.Time     `json:"delivered_at"`
	EstimatedDeliveryAt *time.Time     `json:"estimated_delivery_at"`
	CreatedAt           time.Time      `json:"created_at" gorm:"index:idx_shipment_business"`
	UpdatedAt           time.Time      `json:"updated_at"`
}

package model

import (
	"time"
)

// OrderItem is a line item snapshot taken at order creation. Unit prices and
// points are copied from the live product record at that moment and are
// never recomputed afterwards, so receipts stay accurate when catalog prices
// change.
type OrderItem struct {
	ProductID    uint    `json:"product_id"`
	ProductName  string  `json:"product_name"`
	Quantity     int     `json:"quantity"`
	UnitPrice    float64 `json:"unit_price"`
	UnitPoint    int     `json:"unit_point"`
	CollectionID uint    `json:"collection_id,omitempty"`
	Note         string  `json:"note,omitempty"`
}

// CurrencyOrder is an order priced and paid in currency. CustomerID is nil
// for kiosk guest orders. PointsEarned is computed once at creation and
// credited to the ledger only when the order completes.
type CurrencyOrder struct {
	ID            uint        `json:"id" gorm:"primarykey"`
	BusinessID    uint        `json:"business_id" gorm:"index:idx_currency_order_business;not null"`
	CustomerID    *uint       `json:"customer_id" gorm:"index:idx_currency_order_customer"`
	Items         []OrderItem `json:"items" gorm:"serializer:json"`
	TotalAmount   float64     `json:"total_amount" gorm:"not null"`
	PaymentMethod string      `json:"payment_method" gorm:"type:varchar(20);not null"`
	Status        string      `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	PointsEarned  int         `json:"points_earned" gorm:"default:0"`
	Source        string      `json:"source" gorm:"type:varchar(20);default:'mobile'"`
	CreatedAt     time.Time   `json:"created_at" gorm:"index:idx_currency_order_business;index:idx_currency_order_customer"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// PointOrder is an order paid entirely in loyalty points. The total is
// debited from the customer's ledger at creation time as a reservation and
// refunded in full if the order is cancelled. Point orders never earn
// further points.
type PointOrder struct {
	ID         uint        `json:"id" gorm:"primarykey"`
	BusinessID uint        `json:"business_id" gorm:"index:idx_point_order_business;not null"`
	CustomerID uint        `json:"customer_id" gorm:"index:idx_point_order_customer;not null"`
	Items      []OrderItem `json:"items" gorm:"serializer:json"`
	TotalPoint int         `json:"total_point" gorm:"not null"`
	Status     string      `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	Source     string      `json:"source" gorm:"type:varchar(20);default:'mobile'"`
	CreatedAt  time.Time   `json:"created_at" gorm:"index:idx_point_order_business;index:idx_point_order_customer"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

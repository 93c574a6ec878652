package model

import (
	"time"
)

// LedgerEntry holds the loyalty point balance for one (customer, business)
// pair. The balance is never negative after a committed operation; a debit
// below zero fails the whole triggering operation.
type LedgerEntry struct {
	ID         uint      `json:"id" gorm:"primarykey"`
	CustomerID uint      `json:"customer_id" gorm:"uniqueIndex:idx_ledger_customer_business;not null"`
	BusinessID uint      `json:"business_id" gorm:"uniqueIndex:idx_ledger_customer_business;not null"`
	Points     int       `json:"points" gorm:"default:0"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// CollectionProgress tracks a customer's progress toward completing a
// collection. CurrentCount only ever grows; IsCompleted flips true exactly
// once, when CurrentCount first reaches TargetCount, and CompletedAt is
// stamped at that moment and never cleared.
type CollectionProgress struct {
	ID           uint       `json:"id" gorm:"primarykey"`
	CustomerID   uint       `json:"customer_id" gorm:"uniqueIndex:idx_progress_customer_collection;index;not null"`
	CollectionID uint       `json:"collection_id" gorm:"uniqueIndex:idx_progress_customer_collection;not null"`
	CurrentCount int        `json:"current_count" gorm:"default:0"`
	TargetCount  int        `json:"target_count" gorm:"not null"`
	IsCompleted  bool       `json:"is_completed" gorm:"default:false"`
	CompletedAt  *time.Time `json:"completed_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Package gorms implements the order engine's persistence ports on top of
// GORM/PostgreSQL. Atomically maps to a database transaction; ledger and
// progress rows are locked FOR UPDATE so concurrent transitions serialize on
// the balance they touch.
package gorms

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"loyalty-platform/internal/model"
	"loyalty-platform/internal/order"
)

// Store adapts a *gorm.DB to the engine's port set.
type Store struct {
	db *gorm.DB
}

// NewStore wraps the given database handle.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

var _ order.Store = (*Store)(nil)

func (s *Store) Businesses() order.BusinessStore { return businessStore{s.db} }
func (s *Store) Orders() order.OrderStore        { return orderStore{s.db} }
func (s *Store) Ledger() order.LedgerStore       { return ledgerStore{s.db} }
func (s *Store) Catalog() order.CatalogStore     { return catalogStore{s.db} }
func (s *Store) Progress() order.ProgressStore   { return progressStore{s.db} }

// Atomically runs fn inside a database transaction. Nested calls reuse the
// surrounding transaction through gorm's savepoint support.
func (s *Store) Atomically(ctx context.Context, fn func(order.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

type businessStore struct{ db *gorm.DB }

func (s businessStore) Get(ctx context.Context, id uint) (*model.Business, error) {
	var b model.Business
	if err := s.db.WithContext(ctx).First(&b, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &order.NotFoundError{Resource: "business", ID: id}
		}
		return nil, err
	}
	return &b, nil
}

type orderStore struct{ db *gorm.DB }

func (s orderStore) CreateCurrency(ctx context.Context, o *model.CurrencyOrder) error {
	return s.db.WithContext(ctx).Create(o).Error
}

func (s orderStore) CreatePoint(ctx context.Context, o *model.PointOrder) error {
	return s.db.WithContext(ctx).Create(o).Error
}

func (s orderStore) Get(ctx context.Context, kind order.Kind, id, businessID uint) (*order.Ref, error) {
	q := s.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"})
	if businessID != 0 {
		q = q.Where("business_id = ?", businessID)
	}
	if kind == order.KindCurrency {
		var o model.CurrencyOrder
		if err := q.First(&o, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, &order.NotFoundError{Resource: "currency order", ID: id}
			}
			return nil, err
		}
		return &order.Ref{Kind: order.KindCurrency, Currency: &o}, nil
	}
	var o model.PointOrder
	if err := q.First(&o, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &order.NotFoundError{Resource: "point order", ID: id}
		}
		return nil, err
	}
	return &order.Ref{Kind: order.KindPoint, Point: &o}, nil
}

func (s orderStore) UpdateStatus(ctx context.Context, ref *order.Ref) error {
	if ref.Kind == order.KindCurrency {
		return s.db.WithContext(ctx).Model(ref.Currency).Update("status", ref.Currency.Status).Error
	}
	return s.db.WithContext(ctx).Model(ref.Point).Update("status", ref.Point.Status).Error
}

type ledgerStore struct{ db *gorm.DB }

// Get locks the ledger row for the rest of the transaction, creating a
// zero-balance row on first contact so later credits and debits always have
// a row to lock.
func (s ledgerStore) Get(ctx context.Context, customerID, businessID uint) (*model.LedgerEntry, error) {
	var entry model.LedgerEntry
	err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("customer_id = ? AND business_id = ?", customerID, businessID).
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		entry = model.LedgerEntry{CustomerID: customerID, BusinessID: businessID}
		if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
			return nil, err
		}
		return &entry, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (s ledgerStore) Credit(ctx context.Context, customerID, businessID uint, amount int) (*model.LedgerEntry, error) {
	entry, err := s.Get(ctx, customerID, businessID)
	if err != nil {
		return nil, err
	}
	entry.Points += amount
	if err := s.db.WithContext(ctx).Model(entry).Update("points", entry.Points).Error; err != nil {
		return nil, err
	}
	if err := s.adjustTotal(ctx, customerID, amount); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s ledgerStore) Debit(ctx context.Context, customerID, businessID uint, amount int) (*model.LedgerEntry, error) {
	entry, err := s.Get(ctx, customerID, businessID)
	if err != nil {
		return nil, err
	}
	if entry.Points < amount {
		return nil, &order.InsufficientPointsError{Required: amount, Available: entry.Points}
	}
	entry.Points -= amount
	if err := s.db.WithContext(ctx).Model(entry).Update("points", entry.Points).Error; err != nil {
		return nil, err
	}
	if err := s.adjustTotal(ctx, customerID, -amount); err != nil {
		return nil, err
	}
	return entry, nil
}

// adjustTotal keeps the denormalized per-customer total in step with the
// per-business ledger rows.
func (s ledgerStore) adjustTotal(ctx context.Context, customerID uint, delta int) error {
	return s.db.WithContext(ctx).Model(&model.Customer{}).
		Where("id = ?", customerID).
		UpdateColumn("total_points", gorm.Expr("total_points + ?", delta)).Error
}

type catalogStore struct{ db *gorm.DB }

func (s catalogStore) GetCurrencyProduct(ctx context.Context, id uint) (*model.CurrencyProduct, error) {
	var p model.CurrencyProduct
	if err := s.db.WithContext(ctx).First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &order.NotFoundError{Resource: "currency product", ID: id}
		}
		return nil, err
	}
	return &p, nil
}

func (s catalogStore) GetPointProduct(ctx context.Context, id uint) (*model.PointProduct, error) {
	var p model.PointProduct
	if err := s.db.WithContext(ctx).First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &order.NotFoundError{Resource: "point product", ID: id}
		}
		return nil, err
	}
	return &p, nil
}

// Stock decrements are guarded at the SQL level; the WHERE clause rejects
// the update when stock would go below zero, regardless of concurrent
// writers.
func (s catalogStore) DecrementCurrencyStock(ctx context.Context, id uint, qty int) error {
	return s.decrement(ctx, &model.CurrencyProduct{}, "currency product", id, qty)
}

func (s catalogStore) DecrementPointStock(ctx context.Context, id uint, qty int) error {
	return s.decrement(ctx, &model.PointProduct{}, "point product", id, qty)
}

func (s catalogStore) decrement(ctx context.Context, m interface{}, resource string, id uint, qty int) error {
	res := s.db.WithContext(ctx).Model(m).
		Where("id = ? AND stock >= ?", id, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var stocks []int
		if err := s.db.WithContext(ctx).Model(m).Where("id = ?", id).Pluck("stock", &stocks).Error; err != nil {
			return err
		}
		if len(stocks) == 0 {
			return &order.NotFoundError{Resource: resource, ID: id}
		}
		return &order.InsufficientStockError{ProductID: id, Requested: qty, Available: stocks[0]}
	}
	return nil
}

func (s catalogStore) IncrementPointStock(ctx context.Context, id uint, qty int) error {
	res := s.db.WithContext(ctx).Model(&model.PointProduct{}).
		Where("id = ?", id).
		UpdateColumn("stock", gorm.Expr("stock + ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return &order.NotFoundError{Resource: "point product", ID: id}
	}
	return nil
}

func (s catalogStore) CountActivePointProducts(ctx context.Context, collectionID uint) (int, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&model.PointProduct{}).
		Where("collection_id = ? AND is_active = ?", collectionID, true).
		Count(&n).Error
	return int(n), err
}

type progressStore struct{ db *gorm.DB }

func (s progressStore) Ensure(ctx context.Context, customerID, collectionID uint, targetCount int) (*model.CollectionProgress, error) {
	var p model.CollectionProgress
	err := s.db.WithContext(ctx).
		Where(model.CollectionProgress{CustomerID: customerID, CollectionID: collectionID}).
		Attrs(model.CollectionProgress{TargetCount: targetCount}).
		FirstOrCreate(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s progressStore) Increment(ctx context.Context, customerID, collectionID uint, amount int) (*model.CollectionProgress, error) {
	var p model.CollectionProgress
	err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("customer_id = ? AND collection_id = ?", customerID, collectionID).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &order.NotFoundError{Resource: "collection progress", ID: collectionID}
		}
		return nil, err
	}
	p.CurrentCount += amount
	if !p.IsCompleted && p.CurrentCount >= p.TargetCount {
		p.IsCompleted = true
		now := time.Now()
		p.CompletedAt = &now
	}
	if err := s.db.WithContext(ctx).Save(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// Package memory provides a mutex-guarded in-memory implementation of the
// order engine's persistence ports. It backs tests and local development;
// production deployments use the gorm-backed store.
package memory

import (
	"context"
	"sync"
	"time"

	"loyalty-platform/internal/model"
	"loyalty-platform/internal/order"
)

type ledgerKey struct {
	customerID uint
	businessID uint
}

type progressKey struct {
	customerID   uint
	collectionID uint
}

// data holds the raw tables. Methods on data never lock; the owning Store
// serializes access.
type data struct {
	businesses       map[uint]*model.Business
	currencyProducts map[uint]*model.CurrencyProduct
	pointProducts    map[uint]*model.PointProduct
	currencyOrders   map[uint]*model.CurrencyOrder
	pointOrders      map[uint]*model.PointOrder
	ledger           map[ledgerKey]*model.LedgerEntry
	progress         map[progressKey]*model.CollectionProgress

	nextCurrencyOrderID uint
	nextPointOrderID    uint
	nextLedgerID        uint
	nextProgressID      uint
}

func newData() *data {
	return &data{
		businesses:       make(map[uint]*model.Business),
		currencyProducts: make(map[uint]*model.CurrencyProduct),
		pointProducts:    make(map[uint]*model.PointProduct),
		currencyOrders:   make(map[uint]*model.CurrencyOrder),
		pointOrders:      make(map[uint]*model.PointOrder),
		ledger:           make(map[ledgerKey]*model.LedgerEntry),
		progress:         make(map[progressKey]*model.CollectionProgress),
	}
}

// clone copies every table so Atomically can roll the state back on error.
func (d *data) clone() *data {
	c := &data{
		businesses:          make(map[uint]*model.Business, len(d.businesses)),
		currencyProducts:    make(map[uint]*model.CurrencyProduct, len(d.currencyProducts)),
		pointProducts:       make(map[uint]*model.PointProduct, len(d.pointProducts)),
		currencyOrders:      make(map[uint]*model.CurrencyOrder, len(d.currencyOrders)),
		pointOrders:         make(map[uint]*model.PointOrder, len(d.pointOrders)),
		ledger:              make(map[ledgerKey]*model.LedgerEntry, len(d.ledger)),
		progress:            make(map[progressKey]*model.CollectionProgress, len(d.progress)),
		nextCurrencyOrderID: d.nextCurrencyOrderID,
		nextPointOrderID:    d.nextPointOrderID,
		nextLedgerID:        d.nextLedgerID,
		nextProgressID:      d.nextProgressID,
	}
	for k, v := range d.businesses {
		cp := *v
		c.businesses[k] = &cp
	}
	for k, v := range d.currencyProducts {
		cp := *v
		c.currencyProducts[k] = &cp
	}
	for k, v := range d.pointProducts {
		cp := *v
		c.pointProducts[k] = &cp
	}
	for k, v := range d.currencyOrders {
		cp := *v
		c.currencyOrders[k] = &cp
	}
	for k, v := range d.pointOrders {
		cp := *v
		c.pointOrders[k] = &cp
	}
	for k, v := range d.ledger {
		cp := *v
		c.ledger[k] = &cp
	}
	for k, v := range d.progress {
		cp := *v
		c.progress[k] = &cp
	}
	return c
}

func (d *data) restore(from *data) {
	*d = *from
}

// Store is the lock-owning entry point. Direct port calls lock per
// operation; Atomically holds the lock for the whole function and restores a
// snapshot if it fails.
type Store struct {
	mu sync.Mutex
	d  *data
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{d: newData()}
}

var _ order.Store = (*Store)(nil)

func (s *Store) Businesses() order.BusinessStore { return businessStore{s} }
func (s *Store) Orders() order.OrderStore        { return orderStore{s} }
func (s *Store) Ledger() order.LedgerStore       { return ledgerStore{s} }
func (s *Store) Catalog() order.CatalogStore     { return catalogStore{s} }
func (s *Store) Progress() order.ProgressStore   { return progressStore{s} }

// Atomically serializes fn against all other operations and rolls the whole
// store back when fn returns an error.
func (s *Store) Atomically(ctx context.Context, fn func(order.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := s.d.clone()
	if err := fn(&txStore{d: s.d}); err != nil {
		s.d.restore(snapshot)
		return err
	}
	return nil
}

// Seed helpers for tests and local bootstrap.

// AddBusiness inserts a business record.
func (s *Store) AddBusiness(b *model.Business) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *b
	s.d.businesses[b.ID] = &cp
}

// AddCurrencyProduct inserts a currency product record.
func (s *Store) AddCurrencyProduct(p *model.CurrencyProduct) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.d.currencyProducts[p.ID] = &cp
}

// AddPointProduct inserts a point product record.
func (s *Store) AddPointProduct(p *model.PointProduct) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.d.pointProducts[p.ID] = &cp
}

// SetBalance fixes a customer's point balance at a business.
func (s *Store) SetBalance(customerID, businessID uint, points int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.d.ledgerGet(customerID, businessID).Points = points
}

// txStore shares the owning store's data without locking; the surrounding
// Atomically already holds the lock. Nested Atomically calls flatten into
// the outer scope.
type txStore struct {
	d *data
}

var _ order.Store = (*txStore)(nil)

func (t *txStore) Businesses() order.BusinessStore { return txBusinessStore{t.d} }
func (t *txStore) Orders() order.OrderStore        { return txOrderStore{t.d} }
func (t *txStore) Ledger() order.LedgerStore       { return txLedgerStore{t.d} }
func (t *txStore) Catalog() order.CatalogStore     { return txCatalogStore{t.d} }
func (t *txStore) Progress() order.ProgressStore   { return txProgressStore{t.d} }

func (t *txStore) Atomically(ctx context.Context, fn func(order.Store) error) error {
	return fn(t)
}

// Unlocked data operations.

func (d *data) getBusiness(id uint) (*model.Business, error) {
	b, ok := d.businesses[id]
	if !ok {
		return nil, &order.NotFoundError{Resource: "business", ID: id}
	}
	cp := *b
	return &cp, nil
}

func (d *data) createCurrencyOrder(o *model.CurrencyOrder) error {
	d.nextCurrencyOrderID++
	o.ID = d.nextCurrencyOrderID
	now := time.Now()
	o.CreatedAt = now
	o.UpdatedAt = now
	cp := *o
	d.currencyOrders[o.ID] = &cp
	return nil
}

func (d *data) createPointOrder(o *model.PointOrder) error {
	d.nextPointOrderID++
	o.ID = d.nextPointOrderID
	now := time.Now()
	o.CreatedAt = now
	o.UpdatedAt = now
	cp := *o
	d.pointOrders[o.ID] = &cp
	return nil
}

func (d *data) getOrder(kind order.Kind, id, businessID uint) (*order.Ref, error) {
	if kind == order.KindCurrency {
		o, ok := d.currencyOrders[id]
		if !ok || (businessID != 0 && o.BusinessID != businessID) {
			return nil, &order.NotFoundError{Resource: "currency order", ID: id}
		}
		cp := *o
		return &order.Ref{Kind: order.KindCurrency, Currency: &cp}, nil
	}
	o, ok := d.pointOrders[id]
	if !ok || (businessID != 0 && o.BusinessID != businessID) {
		return nil, &order.NotFoundError{Resource: "point order", ID: id}
	}
	cp := *o
	return &order.Ref{Kind: order.KindPoint, Point: &cp}, nil
}

func (d *data) updateOrderStatus(ref *order.Ref) error {
	if ref.Kind == order.KindCurrency {
		o, ok := d.currencyOrders[ref.Currency.ID]
		if !ok {
			return &order.NotFoundError{Resource: "currency order", ID: ref.Currency.ID}
		}
		o.Status = ref.Currency.Status
		o.UpdatedAt = time.Now()
		return nil
	}
	o, ok := d.pointOrders[ref.Point.ID]
	if !ok {
		return &order.NotFoundError{Resource: "point order", ID: ref.Point.ID}
	}
	o.Status = ref.Point.Status
	o.UpdatedAt = time.Now()
	return nil
}

func (d *data) ledgerGet(customerID, businessID uint) *model.LedgerEntry {
	key := ledgerKey{customerID, businessID}
	entry, ok := d.ledger[key]
	if !ok {
		d.nextLedgerID++
		entry = &model.LedgerEntry{
			ID:         d.nextLedgerID,
			CustomerID: customerID,
			BusinessID: businessID,
			CreatedAt:  time.Now(),
		}
		d.ledger[key] = entry
	}
	return entry
}

func (d *data) ledgerCredit(customerID, businessID uint, amount int) (*model.LedgerEntry, error) {
	entry := d.ledgerGet(customerID, businessID)
	entry.Points += amount
	entry.UpdatedAt = time.Now()
	cp := *entry
	return &cp, nil
}

func (d *data) ledgerDebit(customerID, businessID uint, amount int) (*model.LedgerEntry, error) {
	entry := d.ledgerGet(customerID, businessID)
	if entry.Points < amount {
		return nil, &order.InsufficientPointsError{Required: amount, Available: entry.Points}
	}
	entry.Points -= amount
	entry.UpdatedAt = time.Now()
	cp := *entry
	return &cp, nil
}

func (d *data) getCurrencyProduct(id uint) (*model.CurrencyProduct, error) {
	p, ok := d.currencyProducts[id]
	if !ok {
		return nil, &order.NotFoundError{Resource: "currency product", ID: id}
	}
	cp := *p
	return &cp, nil
}

func (d *data) getPointProduct(id uint) (*model.PointProduct, error) {
	p, ok := d.pointProducts[id]
	if !ok {
		return nil, &order.NotFoundError{Resource: "point product", ID: id}
	}
	cp := *p
	return &cp, nil
}

func (d *data) decrementCurrencyStock(id uint, qty int) error {
	p, ok := d.currencyProducts[id]
	if !ok {
		return &order.NotFoundError{Resource: "currency product", ID: id}
	}
	if p.Stock < qty {
		return &order.InsufficientStockError{ProductID: id, Requested: qty, Available: p.Stock}
	}
	p.Stock -= qty
	return nil
}

func (d *data) decrementPointStock(id uint, qty int) error {
	p, ok := d.pointProducts[id]
	if !ok {
		return &order.NotFoundError{Resource: "point product", ID: id}
	}
	if p.Stock < qty {
		return &order.InsufficientStockError{ProductID: id, Requested: qty, Available: p.Stock}
	}
	p.Stock -= qty
	return nil
}

func (d *data) incrementPointStock(id uint, qty int) error {
	p, ok := d.pointProducts[id]
	if !ok {
		return &order.NotFoundError{Resource: "point product", ID: id}
	}
	p.Stock += qty
	return nil
}

func (d *data) countActivePointProducts(collectionID uint) (int, error) {
	n := 0
	for _, p := range d.pointProducts {
		if p.CollectionID == collectionID && p.IsActive {
			n++
		}
	}
	return n, nil
}

func (d *data) progressEnsure(customerID, collectionID uint, targetCount int) (*model.CollectionProgress, error) {
	key := progressKey{customerID, collectionID}
	p, ok := d.progress[key]
	if !ok {
		d.nextProgressID++
		p = &model.CollectionProgress{
			ID:           d.nextProgressID,
			CustomerID:   customerID,
			CollectionID: collectionID,
			TargetCount:  targetCount,
			CreatedAt:    time.Now(),
		}
		d.progress[key] = p
	}
	cp := *p
	return &cp, nil
}

func (d *data) progressIncrement(customerID, collectionID uint, amount int) (*model.CollectionProgress, error) {
	key := progressKey{customerID, collectionID}
	p, ok := d.progress[key]
	if !ok {
		return nil, &order.NotFoundError{Resource: "collection progress", ID: collectionID}
	}
	p.CurrentCount += amount
	p.UpdatedAt = time.Now()
	if !p.IsCompleted && p.CurrentCount >= p.TargetCount {
		p.IsCompleted = true
		now := time.Now()
		p.CompletedAt = &now
	}
	cp := *p
	return &cp, nil
}

// Locked wrappers used outside Atomically.

type businessStore struct{ s *Store }

func (b businessStore) Get(ctx context.Context, id uint) (*model.Business, error) {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	return b.s.d.getBusiness(id)
}

type orderStore struct{ s *Store }

func (o orderStore) CreateCurrency(ctx context.Context, m *model.CurrencyOrder) error {
	o.s.mu.Lock()
	defer o.s.mu.Unlock()
	return o.s.d.createCurrencyOrder(m)
}

func (o orderStore) CreatePoint(ctx context.Context, m *model.PointOrder) error {
	o.s.mu.Lock()
	defer o.s.mu.Unlock()
	return o.s.d.createPointOrder(m)
}

func (o orderStore) Get(ctx context.Context, kind order.Kind, id, businessID uint) (*order.Ref, error) {
	o.s.mu.Lock()
	defer o.s.mu.Unlock()
	return o.s.d.getOrder(kind, id, businessID)
}

func (o orderStore) UpdateStatus(ctx context.Context, ref *order.Ref) error {
	o.s.mu.Lock()
	defer o.s.mu.Unlock()
	return o.s.d.updateOrderStatus(ref)
}

type ledgerStore struct{ s *Store }

func (l ledgerStore) Get(ctx context.Context, customerID, businessID uint) (*model.LedgerEntry, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	cp := *l.s.d.ledgerGet(customerID, businessID)
	return &cp, nil
}

func (l ledgerStore) Credit(ctx context.Context, customerID, businessID uint, amount int) (*model.LedgerEntry, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	return l.s.d.ledgerCredit(customerID, businessID, amount)
}

func (l ledgerStore) Debit(ctx context.Context, customerID, businessID uint, amount int) (*model.LedgerEntry, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	return l.s.d.ledgerDebit(customerID, businessID, amount)
}

type catalogStore struct{ s *Store }

func (c catalogStore) GetCurrencyProduct(ctx context.Context, id uint) (*model.CurrencyProduct, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	return c.s.d.getCurrencyProduct(id)
}

func (c catalogStore) GetPointProduct(ctx context.Context, id uint) (*model.PointProduct, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	return c.s.d.getPointProduct(id)
}

func (c catalogStore) DecrementCurrencyStock(ctx context.Context, id uint, qty int) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	return c.s.d.decrementCurrencyStock(id, qty)
}

func (c catalogStore) DecrementPointStock(ctx context.Context, id uint, qty int) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	return c.s.d.decrementPointStock(id, qty)
}

func (c catalogStore) IncrementPointStock(ctx context.Context, id uint, qty int) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	return c.s.d.incrementPointStock(id, qty)
}

func (c catalogStore) CountActivePointProducts(ctx context.Context, collectionID uint) (int, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	return c.s.d.countActivePointProducts(collectionID)
}

type progressStore struct{ s *Store }

func (p progressStore) Ensure(ctx context.Context, customerID, collectionID uint, targetCount int) (*model.CollectionProgress, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	return p.s.d.progressEnsure(customerID, collectionID, targetCount)
}

func (p progressStore) Increment(ctx context.Context, customerID, collectionID uint, amount int) (*model.CollectionProgress, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	return p.s.d.progressIncrement(customerID, collectionID, amount)
}

// Unlocked wrappers used inside Atomically.

type txBusinessStore struct{ d *data }

func (b txBusinessStore) Get(ctx context.Context, id uint) (*model.Business, error) {
	return b.d.getBusiness(id)
}

type txOrderStore struct{ d *data }

func (o txOrderStore) CreateCurrency(ctx context.Context, m *model.CurrencyOrder) error {
	return o.d.createCurrencyOrder(m)
}

func (o txOrderStore) CreatePoint(ctx context.Context, m *model.PointOrder) error {
	return o.d.createPointOrder(m)
}

func (o txOrderStore) Get(ctx context.Context, kind order.Kind, id, businessID uint) (*order.Ref, error) {
	return o.d.getOrder(kind, id, businessID)
}

func (o txOrderStore) UpdateStatus(ctx context.Context, ref *order.Ref) error {
	return o.d.updateOrderStatus(ref)
}

type txLedgerStore struct{ d *data }

func (l txLedgerStore) Get(ctx context.Context, customerID, businessID uint) (*model.LedgerEntry, error) {
	cp := *l.d.ledgerGet(customerID, businessID)
	return &cp, nil
}

func (l txLedgerStore) Credit(ctx context.Context, customerID, businessID uint, amount int) (*model.LedgerEntry, error) {
	return l.d.ledgerCredit(customerID, businessID, amount)
}

func (l txLedgerStore) Debit(ctx context.Context, customerID, businessID uint, amount int) (*model.LedgerEntry, error) {
	return l.d.ledgerDebit(customerID, businessID, amount)
}

type txCatalogStore struct{ d *data }

func (c txCatalogStore) GetCurrencyProduct(ctx context.Context, id uint) (*model.CurrencyProduct, error) {
	return c.d.getCurrencyProduct(id)
}

func (c txCatalogStore) GetPointProduct(ctx context.Context, id uint) (*model.PointProduct, error) {
	return c.d.getPointProduct(id)
}

func (c txCatalogStore) DecrementCurrencyStock(ctx context.Context, id uint, qty int) error {
	return c.d.decrementCurrencyStock(id, qty)
}

func (c txCatalogStore) DecrementPointStock(ctx context.Context, id uint, qty int) error {
	return c.d.decrementPointStock(id, qty)
}

func (c txCatalogStore) IncrementPointStock(ctx context.Context, id uint, qty int) error {
	return c.d.incrementPointStock(id, qty)
}

func (c txCatalogStore) CountActivePointProducts(ctx context.Context, collectionID uint) (int, error) {
	return c.d.countActivePointProducts(collectionID)
}

type txProgressStore struct{ d *data }

func (p txProgressStore) Ensure(ctx context.Context, customerID, collectionID uint, targetCount int) (*model.CollectionProgress, error) {
	return p.d.progressEnsure(customerID, collectionID, targetCount)
}

func (p txProgressStore) Increment(ctx context.Context, customerID, collectionID uint, amount int) (*model.CollectionProgress, error) {
	return p.d.progressIncrement(customerID, collectionID, amount)
}

package order

import (
	"context"

	"loyalty-platform/internal/model"
)

// LineItem is the caller-supplied input for one order line. Prices and
// points are never taken from the caller; they are snapshotted from the
// live product records inside the engine.
type LineItem struct {
	ProductID uint   `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Note      string `json:"note,omitempty"`
}

// Ref is a tagged union over the two persisted order kinds. Exactly one of
// Currency and Point is set, matching Kind.
type Ref struct {
	Kind     Kind
	Currency *model.CurrencyOrder
	Point    *model.PointOrder
}

// ID returns the order's primary key.
func (r *Ref) ID() uint {
	if r.Kind == KindCurrency {
		return r.Currency.ID
	}
	return r.Point.ID
}

// BusinessID returns the owning business.
func (r *Ref) BusinessID() uint {
	if r.Kind == KindCurrency {
		return r.Currency.BusinessID
	}
	return r.Point.BusinessID
}

// CustomerID returns the ordering customer, nil for kiosk guest orders.
func (r *Ref) CustomerID() *uint {
	if r.Kind == KindCurrency {
		return r.Currency.CustomerID
	}
	id := r.Point.CustomerID
	return &id
}

// Status returns the current order status.
func (r *Ref) Status() Status {
	if r.Kind == KindCurrency {
		return Status(r.Currency.Status)
	}
	return Status(r.Point.Status)
}

// Items returns the snapshotted line items.
func (r *Ref) Items() []model.OrderItem {
	if r.Kind == KindCurrency {
		return r.Currency.Items
	}
	return r.Point.Items
}

// Unwrap returns the concrete order record for serialization.
func (r *Ref) Unwrap() interface{} {
	if r.Kind == KindCurrency {
		return r.Currency
	}
	return r.Point
}

func (r *Ref) setStatus(s Status) {
	if r.Kind == KindCurrency {
		r.Currency.Status = string(s)
	} else {
		r.Point.Status = string(s)
	}
}

// BusinessStore resolves the tenant an order belongs to.
type BusinessStore interface {
	Get(ctx context.Context, id uint) (*model.Business, error)
}

// OrderStore persists orders of both kinds.
type OrderStore interface {
	CreateCurrency(ctx context.Context, o *model.CurrencyOrder) error
	CreatePoint(ctx context.Context, o *model.PointOrder) error
	// Get loads an order scoped to a business; businessID 0 skips the scope
	// check (platform administrator access).
	Get(ctx context.Context, kind Kind, id, businessID uint) (*Ref, error)
	UpdateStatus(ctx context.Context, ref *Ref) error
}

// LedgerStore holds one point balance per (customer, business) pair.
type LedgerStore interface {
	// Get returns the ledger entry, lazily materializing a zero-balance row.
	Get(ctx context.Context, customerID, businessID uint) (*model.LedgerEntry, error)
	// Credit adds amount, creating the entry if absent. Always succeeds for
	// amount >= 0.
	Credit(ctx context.Context, customerID, businessID uint, amount int) (*model.LedgerEntry, error)
	// Debit subtracts amount, failing with InsufficientPointsError if the
	// balance is lower. No partial deduction.
	Debit(ctx context.Context, customerID, businessID uint, amount int) (*model.LedgerEntry, error)
}

// CatalogStore is the stock-relevant slice of the product catalog.
type CatalogStore interface {
	GetCurrencyProduct(ctx context.Context, id uint) (*model.CurrencyProduct, error)
	GetPointProduct(ctx context.Context, id uint) (*model.PointProduct, error)
	// Decrement operations fail with InsufficientStockError below the floor.
	DecrementCurrencyStock(ctx context.Context, id uint, qty int) error
	DecrementPointStock(ctx context.Context, id uint, qty int) error
	// IncrementPointStock is shared with shipment delivery confirmation.
	IncrementPointStock(ctx context.Context, id uint, qty int) error
	// CountActivePointProducts counts live active products in a collection;
	// it seeds the collection-progress target.
	CountActivePointProducts(ctx context.Context, collectionID uint) (int, error)
}

// ProgressStore tracks per-customer collection completion.
type ProgressStore interface {
	// Ensure returns existing progress or creates one with the given target.
	Ensure(ctx context.Context, customerID, collectionID uint, targetCount int) (*model.CollectionProgress, error)
	// Increment adds to the current count and evaluates completion exactly
	// once; incrementing an already-completed progress only grows the count.
	Increment(ctx context.Context, customerID, collectionID uint, amount int) (*model.CollectionProgress, error)
}

// Store aggregates the engine's persistence ports. Atomically runs fn
// against a store whose writes commit or roll back as a unit, so a
// transition's order, ledger, stock and progress writes cannot partially
// apply.
type Store interface {
	Businesses() BusinessStore
	Orders() OrderStore
	Ledger() LedgerStore
	Catalog() CatalogStore
	Progress() ProgressStore
	Atomically(ctx context.Context, fn func(Store) error) error
}

// Notifier pushes lifecycle events to dashboard and device channels.
// Best-effort: implementations must never block the calling operation.
type Notifier interface {
	Emit(channel, event string, payload map[string]interface{})
}

// AuditEntry is one audit-trail record.
type AuditEntry struct {
	Level      string
	Category   string
	Message    string
	BusinessID *uint
	CustomerID *uint
	Metadata   map[string]interface{}
}

// Auditor records audit entries. Fire-and-forget: failures are swallowed by
// the implementation and never surface to the caller.
type Auditor interface {
	Record(ctx context.Context, e AuditEntry)
}

package order

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"loyalty-platform/internal/model"
)

// Config holds the point-earning policy the engine applies to currency
// orders. Customer-initiated orders earn a flat percentage of the total;
// the kiosk path sums the per-product earned-points field when
// KioskPerProductEarn is set. Both policies are intentional and selected by
// order source, never silently unified.
type Config struct {
	EarnRatePercent     int
	KioskPerProductEarn bool
}

// Engine owns the canonical order state machine for both order kinds and
// applies every ledger, stock and progress side effect exactly once per
// transition. All multi-record writes run inside a single Store.Atomically
// scope keyed by the order.
type Engine struct {
	store    Store
	notifier Notifier
	auditor  Auditor
	cfg      Config
	log      *zap.Logger
}

// NewEngine creates an order lifecycle engine.
func NewEngine(store Store, notifier Notifier, auditor Auditor, cfg Config, log *zap.Logger) *Engine {
	if cfg.EarnRatePercent <= 0 {
		cfg.EarnRatePercent = 10
	}
	return &Engine{
		store:    store,
		notifier: notifier,
		auditor:  auditor,
		cfg:      cfg,
		log:      log,
	}
}

// CreateCurrencyOrderInput carries the inputs for a currency order.
// CustomerID is nil for kiosk guest orders.
type CreateCurrencyOrderInput struct {
	BusinessID    uint
	CustomerID    *uint
	Items         []LineItem
	PaymentMethod string
	Source        Source
}

// CreatePointOrderInput carries the inputs for a point order. A customer is
// always required: points can only be spent from an identified ledger.
type CreatePointOrderInput struct {
	BusinessID uint
	CustomerID uint
	Items      []LineItem
	Source     Source
}

// TransitionResult reports the outcome of a status transition.
type TransitionResult struct {
	Order *Ref
	// Changed is false when the order was already in the requested status
	// and the call was a no-op. Callers recording per-transition metrics
	// must skip recording when nothing changed.
	Changed bool
	// ProgressUpdates holds the collection-progress rows touched by a
	// point-order completion, for caller convenience.
	ProgressUpdates []*model.CollectionProgress
	// CollectionsCompleted counts the progress rows this transition flipped
	// to completed.
	CollectionsCompleted int
	// Anomaly is set when a compensating deduction could not fully apply
	// and was skipped. The transition itself still committed.
	Anomaly bool
}

// CreateCurrencyOrder validates the cart against the live catalog, snapshots
// unit prices, computes the points the order will earn on completion, and
// persists the order. No loyalty points are credited here; crediting happens
// only on the transition to completed. The kiosk path additionally
// decrements stock at creation, since kiosk orders are fulfilled in person
// immediately; the mobile path leaves stock to a later staff step.
func (e *Engine) CreateCurrencyOrder(ctx context.Context, in CreateCurrencyOrderInput) (*model.CurrencyOrder, error) {
	if len(in.Items) == 0 {
		return nil, &ValidationError{Reason: "at least one line item is required"}
	}

	var created *model.CurrencyOrder
	err := e.store.Atomically(ctx, func(s Store) error {
		if _, err := s.Businesses().Get(ctx, in.BusinessID); err != nil {
			return err
		}

		var (
			items       []model.OrderItem
			total       float64
			productEarn int
		)
		for _, item := range in.Items {
			if item.Quantity <= 0 {
				return &ValidationError{Reason: fmt.Sprintf("quantity must be positive for product %d", item.ProductID)}
			}
			product, err := s.Catalog().GetCurrencyProduct(ctx, item.ProductID)
			if err != nil {
				return err
			}
			if product.BusinessID != in.BusinessID {
				return &ValidationError{Reason: fmt.Sprintf("product %d does not belong to business %d", product.ID, in.BusinessID)}
			}
			if !product.IsActive {
				return &ValidationError{Reason: fmt.Sprintf("product %d is not active", product.ID)}
			}

			items = append(items, model.OrderItem{
				ProductID:   product.ID,
				ProductName: product.Name,
				Quantity:    item.Quantity,
				UnitPrice:   product.Price,
				Note:        item.Note,
			})
			total += product.Price * float64(item.Quantity)
			productEarn += product.EarnedPoints * item.Quantity
		}

		pointsEarned := e.pointsEarned(total, productEarn, in.Source)

		status := StatusReceived
		if in.Source == SourceKiosk {
			status = StatusPending
			for _, item := range in.Items {
				if err := s.Catalog().DecrementCurrencyStock(ctx, item.ProductID, item.Quantity); err != nil {
					return err
				}
			}
		}

		created = &model.CurrencyOrder{
			BusinessID:    in.BusinessID,
			CustomerID:    in.CustomerID,
			Items:         items,
			TotalAmount:   total,
			PaymentMethod: in.PaymentMethod,
			Status:        string(status),
			PointsEarned:  pointsEarned,
			Source:        string(in.Source),
		}
		return s.Orders().CreateCurrency(ctx, created)
	})
	if err != nil {
		return nil, err
	}

	e.log.Info("currency order created",
		zap.Uint("order_id", created.ID),
		zap.Uint("business_id", created.BusinessID),
		zap.Float64("total", created.TotalAmount),
		zap.Int("points_earned", created.PointsEarned),
		zap.String("source", created.Source))

	bid := created.BusinessID
	e.auditor.Record(ctx, AuditEntry{
		Level:      model.AuditLevelInfo,
		Category:   model.AuditCategoryOrder,
		Message:    fmt.Sprintf("Currency order created: %.2f", created.TotalAmount),
		BusinessID: &bid,
		CustomerID: created.CustomerID,
		Metadata: map[string]interface{}{
			"order_id":      created.ID,
			"order_kind":    string(KindCurrency),
			"total_amount":  created.TotalAmount,
			"points_earned": created.PointsEarned,
			"item_count":    len(created.Items),
			"source":        created.Source,
		},
	})
	e.notifier.Emit(businessChannel(created.BusinessID), "new-order", map[string]interface{}{
		"order_id":   created.ID,
		"order_kind": string(KindCurrency),
		"total":      created.TotalAmount,
		"item_count": len(created.Items),
		"source":     created.Source,
	})

	return created, nil
}

// CreatePointOrder validates the cart, snapshots unit points, and atomically
// debits the customer's ledger, decrements stock and persists the order.
// The debit at creation is a reservation; cancelling the order refunds it in
// full. Point orders never earn further points.
func (e *Engine) CreatePointOrder(ctx context.Context, in CreatePointOrderInput) (*model.PointOrder, error) {
	if len(in.Items) == 0 {
		return nil, &ValidationError{Reason: "at least one line item is required"}
	}
	if in.CustomerID == 0 {
		return nil, &ValidationError{Reason: "point orders require a customer"}
	}

	var created *model.PointOrder
	err := e.store.Atomically(ctx, func(s Store) error {
		if _, err := s.Businesses().Get(ctx, in.BusinessID); err != nil {
			return err
		}

		var (
			items []model.OrderItem
			total int
		)
		for _, item := range in.Items {
			if item.Quantity <= 0 {
				return &ValidationError{Reason: fmt.Sprintf("quantity must be positive for product %d", item.ProductID)}
			}
			product, err := s.Catalog().GetPointProduct(ctx, item.ProductID)
			if err != nil {
				return err
			}
			owned := product.BusinessID != nil && *product.BusinessID == in.BusinessID
			if !owned && !product.IsGlobal {
				return &ValidationError{Reason: fmt.Sprintf("product %d does not belong to business %d", product.ID, in.BusinessID)}
			}
			if !product.IsActive {
				return &ValidationError{Reason: fmt.Sprintf("product %d is not active", product.ID)}
			}

			items = append(items, model.OrderItem{
				ProductID:    product.ID,
				ProductName:  product.Name,
				Quantity:     item.Quantity,
				UnitPoint:    product.PricePoint,
				CollectionID: product.CollectionID,
				Note:         item.Note,
			})
			total += product.PricePoint * item.Quantity
		}

		if _, err := s.Ledger().Debit(ctx, in.CustomerID, in.BusinessID, total); err != nil {
			return err
		}
		for _, item := range in.Items {
			if err := s.Catalog().DecrementPointStock(ctx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}

		status := StatusReceived
		if in.Source == SourceKiosk {
			status = StatusPending
		}

		created = &model.PointOrder{
			BusinessID: in.BusinessID,
			CustomerID: in.CustomerID,
			Items:      items,
			TotalPoint: total,
			Status:     string(status),
			Source:     string(in.Source),
		}
		return s.Orders().CreatePoint(ctx, created)
	})
	if err != nil {
		return nil, err
	}

	e.log.Info("point order created",
		zap.Uint("order_id", created.ID),
		zap.Uint("business_id", created.BusinessID),
		zap.Uint("customer_id", created.CustomerID),
		zap.Int("total_point", created.TotalPoint),
		zap.String("source", created.Source))

	bid, cid := created.BusinessID, created.CustomerID
	e.auditor.Record(ctx, AuditEntry{
		Level:      model.AuditLevelInfo,
		Category:   model.AuditCategoryOrder,
		Message:    fmt.Sprintf("Point order created: %d points", created.TotalPoint),
		BusinessID: &bid,
		CustomerID: &cid,
		Metadata: map[string]interface{}{
			"order_id":    created.ID,
			"order_kind":  string(KindPoint),
			"total_point": created.TotalPoint,
			"item_count":  len(created.Items),
			"source":      created.Source,
		},
	})
	e.notifier.Emit(businessChannel(created.BusinessID), "new-order", map[string]interface{}{
		"order_id":   created.ID,
		"order_kind": string(KindPoint),
		"total":      created.TotalPoint,
		"item_count": len(created.Items),
		"source":     created.Source,
	})

	return created, nil
}

// TransitionStatus moves an order to newStatus and applies the compensating
// side effects keyed on the (old, new) pair. Re-applying the current status
// is a no-op so duplicate client retries stay safe. The order write and its
// ledger/progress side effects commit as one unit; a compensation that
// cannot fully apply (insufficient balance on a reversal) is recorded as an
// anomaly and skipped rather than blocking the status change.
func (e *Engine) TransitionStatus(ctx context.Context, kind Kind, orderID, businessID uint, newStatus Status) (*TransitionResult, error) {
	if !newStatus.Valid() {
		return nil, &ValidationError{Reason: fmt.Sprintf("unknown status %q", newStatus)}
	}

	result := &TransitionResult{}
	var (
		oldStatus Status
		audit     *AuditEntry
	)
	err := e.store.Atomically(ctx, func(s Store) error {
		ref, err := s.Orders().Get(ctx, kind, orderID, businessID)
		if err != nil {
			return err
		}
		result.Order = ref
		oldStatus = ref.Status()

		if oldStatus == newStatus {
			return nil
		}
		if !CanTransition(oldStatus, newStatus) {
			return &InvalidTransitionError{From: oldStatus, To: newStatus}
		}

		ref.setStatus(newStatus)
		if err := s.Orders().UpdateStatus(ctx, ref); err != nil {
			return err
		}
		result.Changed = true

		audit, err = e.applySideEffects(ctx, s, ref, oldStatus, newStatus, result)
		return err
	})
	if err != nil {
		return nil, err
	}
	if !result.Changed {
		return result, nil
	}

	e.log.Info("order status updated",
		zap.Uint("order_id", orderID),
		zap.String("order_kind", string(kind)),
		zap.String("old_status", string(oldStatus)),
		zap.String("new_status", string(newStatus)),
		zap.Bool("anomaly", result.Anomaly))

	if audit != nil {
		e.auditor.Record(ctx, *audit)
	}
	e.notifier.Emit(businessChannel(result.Order.BusinessID()), "order-status-updated", map[string]interface{}{
		"order_id":   orderID,
		"order_kind": string(kind),
		"old_status": string(oldStatus),
		"new_status": string(newStatus),
	})

	return result, nil
}

// applySideEffects performs the ledger and progress writes for one
// transition and builds the audit record carrying before/after values.
func (e *Engine) applySideEffects(ctx context.Context, s Store, ref *Ref, oldStatus, newStatus Status, result *TransitionResult) (*AuditEntry, error) {
	bid := ref.BusinessID()
	level := model.AuditLevelInfo
	category := model.AuditCategoryOrder
	message := fmt.Sprintf("Order status updated: %s", newStatus)
	metadata := map[string]interface{}{
		"order_id":   ref.ID(),
		"order_kind": string(ref.Kind),
		"old_status": string(oldStatus),
		"new_status": string(newStatus),
	}

	switch {
	case newStatus == StatusCancelled && ref.Kind == KindPoint:
		// Refund the debit taken at creation.
		total := ref.Point.TotalPoint
		if total > 0 {
			before, err := s.Ledger().Get(ctx, ref.Point.CustomerID, bid)
			if err != nil {
				return nil, err
			}
			after, err := s.Ledger().Credit(ctx, ref.Point.CustomerID, bid, total)
			if err != nil {
				return nil, err
			}
			level = model.AuditLevelWarning
			category = model.AuditCategoryLoyalty
			message = fmt.Sprintf("Point order cancelled, %d points refunded", total)
			metadata["points_refunded"] = total
			metadata["points_before"] = before.Points
			metadata["points_after"] = after.Points
		}

	case newStatus == StatusCancelled && ref.Kind == KindCurrency:
		level = model.AuditLevelWarning
		metadata["refund_amount"] = ref.Currency.TotalAmount
		metadata["payment_method"] = ref.Currency.PaymentMethod
		message = fmt.Sprintf("Currency order cancelled, %.2f to refund", ref.Currency.TotalAmount)

		// Points were credited only if the order had completed. Deduct them
		// back when the balance allows; otherwise record the shortfall and
		// let the cancellation stand. The balance is never driven negative.
		earned := ref.Currency.PointsEarned
		if oldStatus == StatusCompleted && earned > 0 && ref.Currency.CustomerID != nil {
			cid := *ref.Currency.CustomerID
			entry, err := s.Ledger().Get(ctx, cid, bid)
			if err != nil {
				return nil, err
			}
			if entry.Points >= earned {
				after, err := s.Ledger().Debit(ctx, cid, bid, earned)
				if err != nil {
					return nil, err
				}
				category = model.AuditCategoryLoyalty
				message = fmt.Sprintf("Currency order cancelled, %d earned points deducted", earned)
				metadata["points_deducted"] = earned
				metadata["points_before"] = entry.Points
				metadata["points_after"] = after.Points
			} else {
				result.Anomaly = true
				level = model.AuditLevelError
				category = model.AuditCategoryLoyalty
				message = fmt.Sprintf("Currency order cancelled but balance %d is below the %d earned points; deduction skipped", entry.Points, earned)
				metadata["points_to_deduct"] = earned
				metadata["points_available"] = entry.Points
				e.log.Warn("earned-point deduction skipped on cancellation",
					zap.Uint("order_id", ref.ID()),
					zap.Uint("customer_id", cid),
					zap.Int("points_to_deduct", earned),
					zap.Int("points_available", entry.Points))
			}
		}

	case newStatus == StatusCompleted && ref.Kind == KindCurrency:
		earned := ref.Currency.PointsEarned
		if earned > 0 && ref.Currency.CustomerID != nil {
			cid := *ref.Currency.CustomerID
			before, err := s.Ledger().Get(ctx, cid, bid)
			if err != nil {
				return nil, err
			}
			after, err := s.Ledger().Credit(ctx, cid, bid, earned)
			if err != nil {
				return nil, err
			}
			level = model.AuditLevelSuccess
			category = model.AuditCategoryLoyalty
			message = fmt.Sprintf("Currency order completed, %d points earned", earned)
			metadata["points_earned"] = earned
			metadata["points_before"] = before.Points
			metadata["points_after"] = after.Points
		}

	case newStatus == StatusCompleted && ref.Kind == KindPoint:
		updates, completed, counts, err := e.applyCollectionProgress(ctx, s, ref)
		if err != nil {
			return nil, err
		}
		result.ProgressUpdates = updates
		result.CollectionsCompleted = completed
		level = model.AuditLevelSuccess
		category = model.AuditCategoryCollection
		message = "Point order completed, collections updated"
		metadata["collections_updated"] = len(updates)
		detail := make([]map[string]interface{}, 0, len(updates))
		for _, p := range updates {
			detail = append(detail, map[string]interface{}{
				"collection_id": p.CollectionID,
				"count_before":  p.CurrentCount - counts[p.CollectionID],
				"count_after":   p.CurrentCount,
				"target_count":  p.TargetCount,
				"is_completed":  p.IsCompleted,
			})
		}
		metadata["collections"] = detail
	}

	cid := ref.CustomerID()
	return &AuditEntry{
		Level:      level,
		Category:   category,
		Message:    message,
		BusinessID: &bid,
		CustomerID: cid,
		Metadata:   metadata,
	}, nil
}

// applyCollectionProgress increments the customer's progress for every
// distinct collection referenced by the order's items, by that collection's
// own summed quantity. Progress rows are created on first contact with a
// target defaulted from the collection's live active-product count, or 10
// when that count is zero.
func (e *Engine) applyCollectionProgress(ctx context.Context, s Store, ref *Ref) ([]*model.CollectionProgress, int, map[uint]int, error) {
	customerID := ref.Point.CustomerID

	counts := make(map[uint]int)
	var collections []uint
	for _, item := range ref.Point.Items {
		if item.CollectionID == 0 {
			continue
		}
		if _, seen := counts[item.CollectionID]; !seen {
			collections = append(collections, item.CollectionID)
		}
		counts[item.CollectionID] += item.Quantity
	}

	var updates []*model.CollectionProgress
	completed := 0
	for _, collectionID := range collections {
		target, err := s.Catalog().CountActivePointProducts(ctx, collectionID)
		if err != nil {
			return nil, 0, nil, err
		}
		if target == 0 {
			target = 10
		}
		if _, err := s.Progress().Ensure(ctx, customerID, collectionID, target); err != nil {
			return nil, 0, nil, err
		}
		progress, err := s.Progress().Increment(ctx, customerID, collectionID, counts[collectionID])
		if err != nil {
			return nil, 0, nil, err
		}
		if progress.IsCompleted && progress.CurrentCount-counts[collectionID] < progress.TargetCount {
			completed++
		}
		updates = append(updates, progress)
	}
	return updates, completed, counts, nil
}

// pointsEarned selects the earn policy by entry surface.
func (e *Engine) pointsEarned(total float64, productEarn int, source Source) int {
	if source == SourceKiosk && e.cfg.KioskPerProductEarn {
		return productEarn
	}
	return int(total * float64(e.cfg.EarnRatePercent) / 100)
}

func businessChannel(businessID uint) string {
	return fmt.Sprintf("business:%d", businessID)
}

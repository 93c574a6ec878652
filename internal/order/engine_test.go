package order_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"loyalty-platform/internal/model"
	"loyalty-platform/internal/order"
	"loyalty-platform/internal/store/memory"
)

type capturedEvent struct {
	channel string
	event   string
	payload map[string]interface{}
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []capturedEvent
}

func (f *fakeNotifier) Emit(channel, event string, payload map[string]interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, capturedEvent{channel: channel, event: event, payload: payload})
}

func (f *fakeNotifier) all() []capturedEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]capturedEvent(nil), f.events...)
}

type fakeAuditor struct {
	mu      sync.Mutex
	entries []order.AuditEntry
}

func (f *fakeAuditor) Record(ctx context.Context, e order.AuditEntry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, e)
}

func (f *fakeAuditor) all() []order.AuditEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]order.AuditEntry(nil), f.entries...)
}

type testEnv struct {
	engine   *order.Engine
	store    *memory.Store
	notifier *fakeNotifier
	auditor  *fakeAuditor
}

const testBusinessID = uint(1)

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	st := memory.NewStore()
	n := &fakeNotifier{}
	a := &fakeAuditor{}
	eng := order.NewEngine(st, n, a, order.Config{EarnRatePercent: 10, KioskPerProductEarn: true}, zap.NewNop())

	st.AddBusiness(&model.Business{ID: testBusinessID, Name: "Bean There", IsActive: true})
	st.AddCurrencyProduct(&model.CurrencyProduct{ID: 1, Name: "Latte", Price: 120, EarnedPoints: 2, Stock: 50, BusinessID: testBusinessID, IsActive: true})
	st.AddCurrencyProduct(&model.CurrencyProduct{ID: 2, Name: "Croissant", Price: 55, EarnedPoints: 1, Stock: 4, BusinessID: testBusinessID, IsActive: true})

	bid := testBusinessID
	st.AddPointProduct(&model.PointProduct{ID: 10, Name: "Sticker", CollectionID: 7, PricePoint: 30, Stock: 20, BusinessID: &bid, IsActive: true})
	st.AddPointProduct(&model.PointProduct{ID: 11, Name: "Pin", CollectionID: 7, PricePoint: 45, Stock: 20, BusinessID: &bid, IsActive: true})
	st.AddPointProduct(&model.PointProduct{ID: 12, Name: "Patch", CollectionID: 7, PricePoint: 60, Stock: 20, BusinessID: &bid, IsActive: true})
	st.AddPointProduct(&model.PointProduct{ID: 13, Name: "Mug", CollectionID: 8, PricePoint: 40, Stock: 20, BusinessID: &bid, IsActive: true})

	return &testEnv{engine: eng, store: st, notifier: n, auditor: a}
}

func (env *testEnv) balance(t *testing.T, customerID uint) int {
	t.Helper()
	entry, err := env.store.Ledger().Get(context.Background(), customerID, testBusinessID)
	require.NoError(t, err)
	return entry.Points
}

func TestCreateCurrencyOrderMobile(t *testing.T) {
	env := newTestEnv(t)
	customerID := uint(42)

	created, err := env.engine.CreateCurrencyOrder(context.Background(), order.CreateCurrencyOrderInput{
		BusinessID:    testBusinessID,
		CustomerID:    &customerID,
		Items:         []order.LineItem{{ProductID: 1, Quantity: 2}, {ProductID: 2, Quantity: 1}},
		PaymentMethod: "card",
		Source:        order.SourceMobile,
	})
	require.NoError(t, err)

	// 2x120 + 55 = 295, flat 10% floors to 29
	assert.Equal(t, 295.0, created.TotalAmount)
	assert.Equal(t, 29, created.PointsEarned)
	assert.Equal(t, string(order.StatusReceived), created.Status)

	// No crediting before completion, no stock movement on the mobile path
	assert.Equal(t, 0, env.balance(t, customerID))
	p, err := env.store.Catalog().GetCurrencyProduct(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 50, p.Stock)

	events := env.notifier.all()
	require.Len(t, events, 1)
	assert.Equal(t, "business:1", events[0].channel)
	assert.Equal(t, "new-order", events[0].event)
}

func TestCreateCurrencyOrderKiosk(t *testing.T) {
	env := newTestEnv(t)

	created, err := env.engine.CreateCurrencyOrder(context.Background(), order.CreateCurrencyOrderInput{
		BusinessID:    testBusinessID,
		Items:         []order.LineItem{{ProductID: 1, Quantity: 3}, {ProductID: 2, Quantity: 2}},
		PaymentMethod: "cash",
		Source:        order.SourceKiosk,
	})
	require.NoError(t, err)

	// Per-product earn: 3x2 + 2x1 = 8, not the flat percentage
	assert.Equal(t, 8, created.PointsEarned)
	assert.Equal(t, string(order.StatusPending), created.Status)
	assert.Nil(t, created.CustomerID)

	// Kiosk orders consume stock at creation
	p1, err := env.store.Catalog().GetCurrencyProduct(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 47, p1.Stock)
	p2, err := env.store.Catalog().GetCurrencyProduct(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 2, p2.Stock)
}

func TestCreateCurrencyOrderKioskInsufficientStock(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.engine.CreateCurrencyOrder(context.Background(), order.CreateCurrencyOrderInput{
		BusinessID:    testBusinessID,
		Items:         []order.LineItem{{ProductID: 1, Quantity: 1}, {ProductID: 2, Quantity: 5}},
		PaymentMethod: "cash",
		Source:        order.SourceKiosk,
	})
	var stockErr *order.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, uint(2), stockErr.ProductID)
	assert.Equal(t, 5, stockErr.Requested)
	assert.Equal(t, 4, stockErr.Available)

	// The whole creation rolled back, including the first item's decrement
	p1, err := env.store.Catalog().GetCurrencyProduct(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 50, p1.Stock)
}

func TestCreateCurrencyOrderValidation(t *testing.T) {
	env := newTestEnv(t)
	customerID := uint(42)

	cases := []struct {
		name  string
		items []order.LineItem
	}{
		{"empty cart", nil},
		{"zero quantity", []order.LineItem{{ProductID: 1, Quantity: 0}}},
		{"negative quantity", []order.LineItem{{ProductID: 1, Quantity: -2}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.engine.CreateCurrencyOrder(context.Background(), order.CreateCurrencyOrderInput{
				BusinessID: testBusinessID,
				CustomerID: &customerID,
				Items:      tc.items,
				Source:     order.SourceMobile,
			})
			var validationErr *order.ValidationError
			assert.ErrorAs(t, err, &validationErr)
		})
	}
}

func TestPointOrderDebitAndRefundRoundtrip(t *testing.T) {
	env := newTestEnv(t)
	customerID := uint(7)
	env.store.SetBalance(customerID, testBusinessID, 200)

	created, err := env.engine.CreatePointOrder(context.Background(), order.CreatePointOrderInput{
		BusinessID: testBusinessID,
		CustomerID: customerID,
		Items:      []order.LineItem{{ProductID: 10, Quantity: 2}, {ProductID: 11, Quantity: 1}},
		Source:     order.SourceMobile,
	})
	require.NoError(t, err)

	// Debited at creation: 2x30 + 45 = 105
	assert.Equal(t, 105, created.TotalPoint)
	assert.Equal(t, 95, env.balance(t, customerID))

	p, err := env.store.Catalog().GetPointProduct(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 18, p.Stock)

	// Cancelling refunds the full reservation
	result, err := env.engine.TransitionStatus(context.Background(), order.KindPoint, created.ID, testBusinessID, order.StatusCancelled)
	require.NoError(t, err)
	assert.False(t, result.Anomaly)
	assert.Equal(t, 200, env.balance(t, customerID))
}

func TestPointOrderInsufficientBalance(t *testing.T) {
	env := newTestEnv(t)
	customerID := uint(7)
	env.store.SetBalance(customerID, testBusinessID, 100)

	_, err := env.engine.CreatePointOrder(context.Background(), order.CreatePointOrderInput{
		BusinessID: testBusinessID,
		CustomerID: customerID,
		Items:      []order.LineItem{{ProductID: 10, Quantity: 2}, {ProductID: 11, Quantity: 1}},
		Source:     order.SourceMobile,
	})
	var pointsErr *order.InsufficientPointsError
	require.ErrorAs(t, err, &pointsErr)
	assert.Equal(t, 105, pointsErr.Required)
	assert.Equal(t, 100, pointsErr.Available)

	// No partial deduction, no stock movement
	assert.Equal(t, 100, env.balance(t, customerID))
	p, err := env.store.Catalog().GetPointProduct(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 20, p.Stock)
}

func TestPointOrderExactBalanceBoundary(t *testing.T) {
	env := newTestEnv(t)
	customerID := uint(7)
	env.store.SetBalance(customerID, testBusinessID, 60)

	created, err := env.engine.CreatePointOrder(context.Background(), order.CreatePointOrderInput{
		BusinessID: testBusinessID,
		CustomerID: customerID,
		Items:      []order.LineItem{{ProductID: 10, Quantity: 2}},
		Source:     order.SourceMobile,
	})
	require.NoError(t, err)
	assert.Equal(t, 60, created.TotalPoint)
	assert.Equal(t, 0, env.balance(t, customerID))
}

func TestCurrencyOrderCompletionCreditsPoints(t *testing.T) {
	env := newTestEnv(t)
	customerID := uint(42)

	created, err := env.engine.CreateCurrencyOrder(context.Background(), order.CreateCurrencyOrderInput{
		BusinessID:    testBusinessID,
		CustomerID:    &customerID,
		Items:         []order.LineItem{{ProductID: 1, Quantity: 2}},
		PaymentMethod: "card",
		Source:        order.SourceMobile,
	})
	require.NoError(t, err)
	assert.Equal(t, 24, created.PointsEarned)

	_, err = env.engine.TransitionStatus(context.Background(), order.KindCurrency, created.ID, testBusinessID, order.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, 24, env.balance(t, customerID))
}

func TestGuestOrderCompletionCreditsNothing(t *testing.T) {
	env := newTestEnv(t)

	created, err := env.engine.CreateCurrencyOrder(context.Background(), order.CreateCurrencyOrderInput{
		BusinessID:    testBusinessID,
		Items:         []order.LineItem{{ProductID: 1, Quantity: 1}},
		PaymentMethod: "cash",
		Source:        order.SourceKiosk,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, created.PointsEarned)

	result, err := env.engine.TransitionStatus(context.Background(), order.KindCurrency, created.ID, testBusinessID, order.StatusCompleted)
	require.NoError(t, err)
	assert.False(t, result.Anomaly)
}

func TestCancelAfterCompletionDeductsEarnedPoints(t *testing.T) {
	env := newTestEnv(t)
	customerID := uint(42)

	created, err := env.engine.CreateCurrencyOrder(context.Background(), order.CreateCurrencyOrderInput{
		BusinessID:    testBusinessID,
		CustomerID:    &customerID,
		Items:         []order.LineItem{{ProductID: 1, Quantity: 2}},
		PaymentMethod: "card",
		Source:        order.SourceMobile,
	})
	require.NoError(t, err)

	_, err = env.engine.TransitionStatus(context.Background(), order.KindCurrency, created.ID, testBusinessID, order.StatusCompleted)
	require.NoError(t, err)
	require.Equal(t, 24, env.balance(t, customerID))

	result, err := env.engine.TransitionStatus(context.Background(), order.KindCurrency, created.ID, testBusinessID, order.StatusCancelled)
	require.NoError(t, err)
	assert.False(t, result.Anomaly)
	assert.Equal(t, 0, env.balance(t, customerID))
}

func TestCancelAfterCompletionSkipsDeductionOnShortBalance(t *testing.T) {
	env := newTestEnv(t)
	customerID := uint(42)

	created, err := env.engine.CreateCurrencyOrder(context.Background(), order.CreateCurrencyOrderInput{
		BusinessID:    testBusinessID,
		CustomerID:    &customerID,
		Items:         []order.LineItem{{ProductID: 1, Quantity: 2}},
		PaymentMethod: "card",
		Source:        order.SourceMobile,
	})
	require.NoError(t, err)

	_, err = env.engine.TransitionStatus(context.Background(), order.KindCurrency, created.ID, testBusinessID, order.StatusCompleted)
	require.NoError(t, err)

	// The customer spent most of the credited points elsewhere
	env.store.SetBalance(customerID, testBusinessID, 5)

	result, err := env.engine.TransitionStatus(context.Background(), order.KindCurrency, created.ID, testBusinessID, order.StatusCancelled)
	require.NoError(t, err)
	assert.True(t, result.Anomaly)

	// The deduction was skipped entirely; no partial clawback, never negative
	assert.Equal(t, 5, env.balance(t, customerID))

	// The cancellation itself committed
	ref, err := env.store.Orders().Get(context.Background(), order.KindCurrency, created.ID, testBusinessID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusCancelled, ref.Status())

	// The skip leaves an error-level anomaly record
	var found bool
	for _, e := range env.auditor.all() {
		if e.Level == model.AuditLevelError && e.Category == model.AuditCategoryLoyalty {
			found = true
		}
	}
	assert.True(t, found)
}

func TestSameStatusIsNoOp(t *testing.T) {
	env := newTestEnv(t)
	customerID := uint(7)
	env.store.SetBalance(customerID, testBusinessID, 200)

	created, err := env.engine.CreatePointOrder(context.Background(), order.CreatePointOrderInput{
		BusinessID: testBusinessID,
		CustomerID: customerID,
		Items:      []order.LineItem{{ProductID: 10, Quantity: 1}},
		Source:     order.SourceMobile,
	})
	require.NoError(t, err)

	eventsBefore := len(env.notifier.all())
	result, err := env.engine.TransitionStatus(context.Background(), order.KindPoint, created.ID, testBusinessID, order.StatusReceived)
	require.NoError(t, err)
	assert.Equal(t, order.StatusReceived, result.Order.Status())
	assert.False(t, result.Changed)

	// No side effects, no duplicate notification
	assert.Equal(t, 170, env.balance(t, customerID))
	assert.Equal(t, eventsBefore, len(env.notifier.all()))
}

func TestRepeatedCompletionReportsNoChange(t *testing.T) {
	env := newTestEnv(t)
	customerID := uint(42)

	created, err := env.engine.CreateCurrencyOrder(context.Background(), order.CreateCurrencyOrderInput{
		BusinessID:    testBusinessID,
		CustomerID:    &customerID,
		Items:         []order.LineItem{{ProductID: 1, Quantity: 2}},
		PaymentMethod: "card",
		Source:        order.SourceMobile,
	})
	require.NoError(t, err)

	first, err := env.engine.TransitionStatus(context.Background(), order.KindCurrency, created.ID, testBusinessID, order.StatusCompleted)
	require.NoError(t, err)
	assert.True(t, first.Changed)
	require.Equal(t, 24, env.balance(t, customerID))

	// A duplicate client retry must report no change so callers don't
	// re-count the transition
	second, err := env.engine.TransitionStatus(context.Background(), order.KindCurrency, created.ID, testBusinessID, order.StatusCompleted)
	require.NoError(t, err)
	assert.False(t, second.Changed)
	assert.Equal(t, 24, env.balance(t, customerID))
}

func TestTerminalStatesRejectTransitions(t *testing.T) {
	env := newTestEnv(t)
	customerID := uint(7)
	env.store.SetBalance(customerID, testBusinessID, 200)

	created, err := env.engine.CreatePointOrder(context.Background(), order.CreatePointOrderInput{
		BusinessID: testBusinessID,
		CustomerID: customerID,
		Items:      []order.LineItem{{ProductID: 10, Quantity: 1}},
		Source:     order.SourceMobile,
	})
	require.NoError(t, err)

	_, err = env.engine.TransitionStatus(context.Background(), order.KindPoint, created.ID, testBusinessID, order.StatusCancelled)
	require.NoError(t, err)
	require.Equal(t, 200, env.balance(t, customerID))

	// Cancelled is final; re-cancelling is also not a repeatable side effect
	var transitionErr *order.InvalidTransitionError
	_, err = env.engine.TransitionStatus(context.Background(), order.KindPoint, created.ID, testBusinessID, order.StatusPreparing)
	require.ErrorAs(t, err, &transitionErr)

	// The refund must not have been applied twice
	assert.Equal(t, 200, env.balance(t, customerID))
}

func TestBackwardTransitionRejected(t *testing.T) {
	env := newTestEnv(t)
	customerID := uint(42)

	created, err := env.engine.CreateCurrencyOrder(context.Background(), order.CreateCurrencyOrderInput{
		BusinessID:    testBusinessID,
		CustomerID:    &customerID,
		Items:         []order.LineItem{{ProductID: 1, Quantity: 1}},
		PaymentMethod: "card",
		Source:        order.SourceMobile,
	})
	require.NoError(t, err)

	_, err = env.engine.TransitionStatus(context.Background(), order.KindCurrency, created.ID, testBusinessID, order.StatusReady)
	require.NoError(t, err)

	var transitionErr *order.InvalidTransitionError
	_, err = env.engine.TransitionStatus(context.Background(), order.KindCurrency, created.ID, testBusinessID, order.StatusReceived)
	assert.ErrorAs(t, err, &transitionErr)
}

func TestPointOrderCompletionAdvancesCollections(t *testing.T) {
	env := newTestEnv(t)
	customerID := uint(7)
	env.store.SetBalance(customerID, testBusinessID, 500)

	// Three units from collection 7 and two from collection 8: each
	// collection advances by its own summed quantity, not the order total.
	created, err := env.engine.CreatePointOrder(context.Background(), order.CreatePointOrderInput{
		BusinessID: testBusinessID,
		CustomerID: customerID,
		Items: []order.LineItem{
			{ProductID: 10, Quantity: 2},
			{ProductID: 11, Quantity: 1},
			{ProductID: 13, Quantity: 2},
		},
		Source: order.SourceMobile,
	})
	require.NoError(t, err)

	result, err := env.engine.TransitionStatus(context.Background(), order.KindPoint, created.ID, testBusinessID, order.StatusCompleted)
	require.NoError(t, err)
	require.Len(t, result.ProgressUpdates, 2)

	byCollection := map[uint]*model.CollectionProgress{}
	for _, p := range result.ProgressUpdates {
		byCollection[p.CollectionID] = p
	}
	require.Contains(t, byCollection, uint(7))
	require.Contains(t, byCollection, uint(8))

	// Collection 7 has three active products, so the target is 3 and the
	// order completes it in one go.
	assert.Equal(t, 3, byCollection[7].CurrentCount)
	assert.Equal(t, 3, byCollection[7].TargetCount)
	assert.True(t, byCollection[7].IsCompleted)
	assert.NotNil(t, byCollection[7].CompletedAt)

	// Collection 8 has one active product.
	assert.Equal(t, 2, byCollection[8].CurrentCount)
	assert.Equal(t, 1, byCollection[8].TargetCount)
	assert.True(t, byCollection[8].IsCompleted)
}

func TestPointOrderCompletionAuditCarriesProgressCounts(t *testing.T) {
	env := newTestEnv(t)
	customerID := uint(7)
	env.store.SetBalance(customerID, testBusinessID, 200)

	created, err := env.engine.CreatePointOrder(context.Background(), order.CreatePointOrderInput{
		BusinessID: testBusinessID,
		CustomerID: customerID,
		Items: []order.LineItem{
			{ProductID: 10, Quantity: 2},
			{ProductID: 13, Quantity: 1},
		},
		Source: order.SourceMobile,
	})
	require.NoError(t, err)

	_, err = env.engine.TransitionStatus(context.Background(), order.KindPoint, created.ID, testBusinessID, order.StatusCompleted)
	require.NoError(t, err)

	var entry *order.AuditEntry
	for _, e := range env.auditor.all() {
		if e.Category == model.AuditCategoryCollection {
			e := e
			entry = &e
		}
	}
	require.NotNil(t, entry)

	detail, ok := entry.Metadata["collections"].([]map[string]interface{})
	require.True(t, ok)
	require.Len(t, detail, 2)

	byCollection := map[uint]map[string]interface{}{}
	for _, d := range detail {
		byCollection[d["collection_id"].(uint)] = d
	}

	// Collection 7 advanced 0 -> 2 toward its 3 active products
	require.Contains(t, byCollection, uint(7))
	assert.Equal(t, 0, byCollection[7]["count_before"])
	assert.Equal(t, 2, byCollection[7]["count_after"])
	assert.Equal(t, 3, byCollection[7]["target_count"])
	assert.Equal(t, false, byCollection[7]["is_completed"])

	// Collection 8 advanced 0 -> 1 and completed against its single product
	require.Contains(t, byCollection, uint(8))
	assert.Equal(t, 0, byCollection[8]["count_before"])
	assert.Equal(t, 1, byCollection[8]["count_after"])
	assert.Equal(t, 1, byCollection[8]["target_count"])
	assert.Equal(t, true, byCollection[8]["is_completed"])
}

func TestCollectionTargetDefaultsWhenCountIsZero(t *testing.T) {
	env := newTestEnv(t)
	customerID := uint(7)
	env.store.SetBalance(customerID, testBusinessID, 500)

	created, err := env.engine.CreatePointOrder(context.Background(), order.CreatePointOrderInput{
		BusinessID: testBusinessID,
		CustomerID: customerID,
		Items:      []order.LineItem{{ProductID: 13, Quantity: 2}},
		Source:     order.SourceMobile,
	})
	require.NoError(t, err)

	// The collection's only product is retired before the order completes;
	// the live count is zero so the target falls back to 10.
	bid := testBusinessID
	env.store.AddPointProduct(&model.PointProduct{ID: 13, Name: "Mug", CollectionID: 8, PricePoint: 40, Stock: 18, BusinessID: &bid, IsActive: false})

	result, err := env.engine.TransitionStatus(context.Background(), order.KindPoint, created.ID, testBusinessID, order.StatusCompleted)
	require.NoError(t, err)
	require.Len(t, result.ProgressUpdates, 1)
	assert.Equal(t, 2, result.ProgressUpdates[0].CurrentCount)
	assert.Equal(t, 10, result.ProgressUpdates[0].TargetCount)
	assert.False(t, result.ProgressUpdates[0].IsCompleted)
}

func TestPointOrderFromOtherBusinessRejected(t *testing.T) {
	env := newTestEnv(t)
	other := uint(2)
	env.store.AddBusiness(&model.Business{ID: other, Name: "Other", IsActive: true})
	env.store.SetBalance(7, other, 500)

	_, err := env.engine.CreatePointOrder(context.Background(), order.CreatePointOrderInput{
		BusinessID: other,
		CustomerID: 7,
		Items:      []order.LineItem{{ProductID: 10, Quantity: 1}},
		Source:     order.SourceMobile,
	})
	var validationErr *order.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestGlobalPointProductOrderableByAnyBusiness(t *testing.T) {
	env := newTestEnv(t)
	other := uint(2)
	env.store.AddBusiness(&model.Business{ID: other, Name: "Other", IsActive: true})
	env.store.AddPointProduct(&model.PointProduct{ID: 20, Name: "Tote", CollectionID: 9, PricePoint: 25, Stock: 5, IsGlobal: true, IsActive: true})
	env.store.SetBalance(7, other, 100)

	created, err := env.engine.CreatePointOrder(context.Background(), order.CreatePointOrderInput{
		BusinessID: other,
		CustomerID: 7,
		Items:      []order.LineItem{{ProductID: 20, Quantity: 1}},
		Source:     order.SourceMobile,
	})
	require.NoError(t, err)
	assert.Equal(t, 25, created.TotalPoint)
}

func TestOrderScopedToBusiness(t *testing.T) {
	env := newTestEnv(t)
	customerID := uint(42)

	created, err := env.engine.CreateCurrencyOrder(context.Background(), order.CreateCurrencyOrderInput{
		BusinessID:    testBusinessID,
		CustomerID:    &customerID,
		Items:         []order.LineItem{{ProductID: 1, Quantity: 1}},
		PaymentMethod: "card",
		Source:        order.SourceMobile,
	})
	require.NoError(t, err)

	// Another business cannot touch the order
	var notFoundErr *order.NotFoundError
	_, err = env.engine.TransitionStatus(context.Background(), order.KindCurrency, created.ID, 99, order.StatusCompleted)
	assert.ErrorAs(t, err, &notFoundErr)
}

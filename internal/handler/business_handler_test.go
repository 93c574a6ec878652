package handler

import (
	"context"
	"net/http"
	"strconv"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loyalty-platform/internal/model"
	"loyalty-platform/internal/order"
	"loyalty-platform/internal/store/memory"
	"loyalty-platform/prometheus"
)

func patchOrderStatus(t *testing.T, businessID uint, kind string, orderID uint, status string) int {
	t.Helper()
	c, rec := newTestContext(t, http.MethodPatch, "/api/business/orders/"+kind+"/status", `{"status":"`+status+`"}`)
	c.Set("actor_id", businessID)
	c.SetParamNames("kind", "id")
	c.SetParamValues(kind, strconv.FormatUint(uint64(orderID), 10))
	require.NoError(t, UpdateOrderStatus(c))
	return rec.Code
}

func TestUpdateOrderStatusRetryRecordsMetricsOnce(t *testing.T) {
	st := memory.NewStore()
	st.AddBusiness(&model.Business{ID: 1, Name: "Bean There", IsActive: true})
	st.AddCurrencyProduct(&model.CurrencyProduct{ID: 1, Name: "Latte", Price: 100, EarnedPoints: 2, Stock: 10, BusinessID: 1, IsActive: true})
	wireHandlers(t, st)

	customerID := uint(42)
	created, err := engine.CreateCurrencyOrder(context.Background(), order.CreateCurrencyOrderInput{
		BusinessID:    1,
		CustomerID:    &customerID,
		Items:         []order.LineItem{{ProductID: 1, Quantity: 1}},
		PaymentMethod: "card",
		Source:        order.SourceMobile,
	})
	require.NoError(t, err)
	require.Equal(t, 10, created.PointsEarned)

	issuedBefore := testutil.ToFloat64(prometheus.PointsIssuedCounter)

	code := patchOrderStatus(t, 1, "currency", created.ID, "completed")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, issuedBefore+10, testutil.ToFloat64(prometheus.PointsIssuedCounter))

	entry, err := st.Ledger().Get(context.Background(), customerID, 1)
	require.NoError(t, err)
	require.Equal(t, 10, entry.Points)

	// A duplicate retry is an engine no-op; the ledger stays put and the
	// counter must not move again
	code = patchOrderStatus(t, 1, "currency", created.ID, "completed")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, issuedBefore+10, testutil.ToFloat64(prometheus.PointsIssuedCounter))

	entry, err = st.Ledger().Get(context.Background(), customerID, 1)
	require.NoError(t, err)
	assert.Equal(t, 10, entry.Points)
}

func TestUpdateOrderStatusRejectsUnknownKind(t *testing.T) {
	st := memory.NewStore()
	wireHandlers(t, st)

	c, rec := newTestContext(t, http.MethodPatch, "/api/business/orders/gift/status", `{"status":"completed"}`)
	c.Set("actor_id", uint(1))
	c.SetParamNames("kind", "id")
	c.SetParamValues("gift", "1")
	require.NoError(t, UpdateOrderStatus(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loyalty-platform/internal/model"
	"loyalty-platform/internal/order"
)

func TestAtomicallyRollsBackOnError(t *testing.T) {
	st := NewStore()
	st.AddCurrencyProduct(&model.CurrencyProduct{ID: 1, Name: "Latte", Stock: 10, BusinessID: 1, IsActive: true})
	st.SetBalance(7, 1, 100)

	sentinel := errors.New("boom")
	err := st.Atomically(context.Background(), func(s order.Store) error {
		if err := s.Catalog().DecrementCurrencyStock(context.Background(), 1, 5); err != nil {
			return err
		}
		if _, err := s.Ledger().Debit(context.Background(), 7, 1, 50); err != nil {
			return err
		}
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)

	p, err := st.Catalog().GetCurrencyProduct(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 10, p.Stock)
	entry, err := st.Ledger().Get(context.Background(), 7, 1)
	require.NoError(t, err)
	assert.Equal(t, 100, entry.Points)
}

func TestAtomicallyCommitsOnSuccess(t *testing.T) {
	st := NewStore()
	st.SetBalance(7, 1, 100)

	err := st.Atomically(context.Background(), func(s order.Store) error {
		_, err := s.Ledger().Debit(context.Background(), 7, 1, 40)
		return err
	})
	require.NoError(t, err)

	entry, err := st.Ledger().Get(context.Background(), 7, 1)
	require.NoError(t, err)
	assert.Equal(t, 60, entry.Points)
}

func TestLedgerLazyMaterialization(t *testing.T) {
	st := NewStore()

	entry, err := st.Ledger().Get(context.Background(), 3, 9)
	require.NoError(t, err)
	assert.Equal(t, 0, entry.Points)

	after, err := st.Ledger().Credit(context.Background(), 3, 9, 15)
	require.NoError(t, err)
	assert.Equal(t, 15, after.Points)
}

func TestLedgerDebitBelowBalance(t *testing.T) {
	st := NewStore()
	st.SetBalance(3, 9, 10)

	var pointsErr *order.InsufficientPointsError
	_, err := st.Ledger().Debit(context.Background(), 3, 9, 11)
	require.ErrorAs(t, err, &pointsErr)
	assert.Equal(t, 11, pointsErr.Required)
	assert.Equal(t, 10, pointsErr.Available)

	entry, err := st.Ledger().Get(context.Background(), 3, 9)
	require.NoError(t, err)
	assert.Equal(t, 10, entry.Points)
}

func TestStockFloor(t *testing.T) {
	st := NewStore()
	bid := uint(1)
	st.AddPointProduct(&model.PointProduct{ID: 5, Name: "Pin", Stock: 3, BusinessID: &bid, IsActive: true})

	var stockErr *order.InsufficientStockError
	err := st.Catalog().DecrementPointStock(context.Background(), 5, 4)
	require.ErrorAs(t, err, &stockErr)

	require.NoError(t, st.Catalog().DecrementPointStock(context.Background(), 5, 3))
	p, err := st.Catalog().GetPointProduct(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, 0, p.Stock)

	require.NoError(t, st.Catalog().IncrementPointStock(context.Background(), 5, 7))
	p, err = st.Catalog().GetPointProduct(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, 7, p.Stock)
}

func TestProgressCompletionFlipsOnce(t *testing.T) {
	st := NewStore()

	_, err := st.Progress().Ensure(context.Background(), 7, 4, 3)
	require.NoError(t, err)

	p, err := st.Progress().Increment(context.Background(), 7, 4, 2)
	require.NoError(t, err)
	assert.False(t, p.IsCompleted)
	assert.Nil(t, p.CompletedAt)

	p, err = st.Progress().Increment(context.Background(), 7, 4, 1)
	require.NoError(t, err)
	assert.True(t, p.IsCompleted)
	require.NotNil(t, p.CompletedAt)
	first := *p.CompletedAt

	// Further increments grow the count but never restamp completion
	p, err = st.Progress().Increment(context.Background(), 7, 4, 5)
	require.NoError(t, err)
	assert.Equal(t, 8, p.CurrentCount)
	assert.True(t, p.IsCompleted)
	require.NotNil(t, p.CompletedAt)
	assert.Equal(t, first, *p.CompletedAt)
}

func TestEnsureKeepsExistingTarget(t *testing.T) {
	st := NewStore()

	p, err := st.Progress().Ensure(context.Background(), 7, 4, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, p.TargetCount)

	// A later Ensure with a different live count does not rewrite the row
	p, err = st.Progress().Ensure(context.Background(), 7, 4, 10)
	require.NoError(t, err)
	assert.Equal(t, 3, p.TargetCount)
}

func TestOrderBusinessScope(t *testing.T) {
	st := NewStore()
	o := &model.CurrencyOrder{BusinessID: 1, TotalAmount: 50, Status: "pending"}
	require.NoError(t, st.Orders().CreateCurrency(context.Background(), o))

	_, err := st.Orders().Get(context.Background(), order.KindCurrency, o.ID, 1)
	require.NoError(t, err)

	var notFoundErr *order.NotFoundError
	_, err = st.Orders().Get(context.Background(), order.KindCurrency, o.ID, 2)
	require.ErrorAs(t, err, &notFoundErr)

	// Scope 0 is the administrator view
	_, err = st.Orders().Get(context.Background(), order.KindCurrency, o.ID, 0)
	assert.NoError(t, err)
}

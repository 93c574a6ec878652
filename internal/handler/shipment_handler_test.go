package handler

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loyalty-platform/internal/model"
	"loyalty-platform/internal/store/memory"
)

func adminShipmentStatus(t *testing.T, shipmentID uint, status string) (int, error) {
	t.Helper()
	c, rec := newTestContext(t, http.MethodPatch, "/api/admin/shipments/status", `{"status":"`+status+`"}`)
	c.SetParamNames("id")
	c.SetParamValues(strconv.FormatUint(uint64(shipmentID), 10))
	err := UpdateShipmentStatus(c)
	return rec.Code, err
}

func TestAdminDeliveryAppliesRestock(t *testing.T) {
	db := openTestDB(t)
	wireHandlers(t, memory.NewStore())

	bid := uint(1)
	require.NoError(t, db.Create(&model.Business{ID: 1, Name: "Bean There", Email: "bean@example.com", Password: "x", IsActive: true}).Error)
	require.NoError(t, db.Create(&model.PointProduct{ID: 5, Name: "Mug", PricePoint: 40, Stock: 3, BusinessID: &bid, IsActive: true}).Error)
	require.NoError(t, db.Create(&model.Shipment{
		ID:         1,
		Type:       model.ShipmentTypeRestock,
		BusinessID: 1,
		Status:     model.ShipmentStatusPending,
		TotalItems: 7,
		Products:   []model.ShipmentItem{{ProductID: "5", Name: "Mug", Quantity: 7, PricePoint: 40}},
	}).Error)

	code, err := adminShipmentStatus(t, 1, model.ShipmentStatusInTransit)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, code)

	// Admin marks the shipment delivered: the restock applies right here,
	// not on a later business confirmation
	code, err = adminShipmentStatus(t, 1, model.ShipmentStatusDelivered)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, code)

	var product model.PointProduct
	require.NoError(t, db.First(&product, 5).Error)
	assert.Equal(t, 10, product.Stock)

	var shipment model.Shipment
	require.NoError(t, db.First(&shipment, 1).Error)
	assert.Equal(t, model.ShipmentStatusDelivered, shipment.Status)
	assert.NotNil(t, shipment.DeliveredAt)

	// The business-side confirmation sees it already delivered and leaves
	// stock alone
	c, rec := newTestContext(t, http.MethodPost, "/api/business/shipments/1/confirm", "")
	c.Set("actor_id", uint(1))
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, ConfirmShipmentDelivery(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, db.First(&product, 5).Error)
	assert.Equal(t, 10, product.Stock)
}

func TestAdminDeliveryMaterializesCollectionSet(t *testing.T) {
	db := openTestDB(t)
	wireHandlers(t, memory.NewStore())

	require.NoError(t, db.Create(&model.Business{ID: 1, Name: "Bean There", Email: "bean@example.com", Password: "x", IsActive: true}).Error)
	require.NoError(t, db.Create(&model.Shipment{
		ID:                1,
		Type:              model.ShipmentTypeAdmin,
		BusinessID:        1,
		CollectionSetName: "Summer Series",
		Status:            model.ShipmentStatusInTransit,
		TotalItems:        5,
		Products: []model.ShipmentItem{
			{Name: "Sticker", Quantity: 3, PricePoint: 30},
			{Name: "Pin", Quantity: 2, PricePoint: 45},
		},
	}).Error)

	code, err := adminShipmentStatus(t, 1, model.ShipmentStatusDelivered)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, code)

	var collection model.Collection
	require.NoError(t, db.Where("name = ?", "Summer Series").First(&collection).Error)
	require.NotNil(t, collection.BusinessID)
	assert.Equal(t, uint(1), *collection.BusinessID)

	var products []model.PointProduct
	require.NoError(t, db.Where("collection_id = ?", collection.ID).Order("name").Find(&products).Error)
	require.Len(t, products, 2)
	assert.Equal(t, "Pin", products[0].Name)
	assert.Equal(t, 2, products[0].Stock)
	assert.Equal(t, "Sticker", products[1].Name)
	assert.Equal(t, 3, products[1].Stock)
}

func TestAdminShipmentCannotBeDeliveredFromPending(t *testing.T) {
	db := openTestDB(t)
	wireHandlers(t, memory.NewStore())

	require.NoError(t, db.Create(&model.Business{ID: 1, Name: "Bean There", Email: "bean@example.com", Password: "x", IsActive: true}).Error)
	require.NoError(t, db.Create(&model.Shipment{
		ID:         1,
		Type:       model.ShipmentTypeRestock,
		BusinessID: 1,
		Status:     model.ShipmentStatusPending,
		TotalItems: 1,
		Products:   []model.ShipmentItem{{ProductID: "5", Name: "Mug", Quantity: 1, PricePoint: 40}},
	}).Error)

	code, err := adminShipmentStatus(t, 1, model.ShipmentStatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, code)
}

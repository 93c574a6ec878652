package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"loyalty-platform/internal/model"
	"loyalty-platform/internal/order"
	"loyalty-platform/pkg/database"
	"loyalty-platform/pkg/logger"
	"loyalty-platform/prometheus"
)

// MobileOrderRequest defines the payload for a customer-initiated order of
// either kind
type MobileOrderRequest struct {
	BusinessID    uint             `json:"business_id" validate:"required"`
	Items         []order.LineItem `json:"items" validate:"required,min=1"`
	PaymentMethod string           `json:"payment_method"`
}

// GetCustomerProfile handles retrieving the authenticated customer's profile
func GetCustomerProfile(c echo.Context) error {
	var customer model.Customer
	if err := database.GetDB().First(&customer, actorID(c)).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Customer not found"})
	}
	return c.JSON(http.StatusOK, customer)
}

// UpdateCustomerProfileRequest defines the editable customer profile fields
type UpdateCustomerProfileRequest struct {
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	AvatarURL string `json:"avatar_url"`
}

// UpdateCustomerProfile handles the customer editing their own profile.
// Identity fields (email, provider) stay owned by the OAuth provider.
func UpdateCustomerProfile(c echo.Context) error {
	log := logger.FromContext(c)

	var req UpdateCustomerProfileRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	var customer model.Customer
	if err := database.GetDB().First(&customer, actorID(c)).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Customer not found"})
	}

	if req.Name != "" {
		customer.Name = req.Name
	}
	if req.Phone != "" {
		customer.Phone = req.Phone
	}
	if req.AvatarURL != "" {
		customer.AvatarURL = req.AvatarURL
	}
	if err := database.GetDB().Save(&customer).Error; err != nil {
		log.Error("Failed to update customer profile", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update profile"})
	}
	return c.JSON(http.StatusOK, customer)
}

// ListActiveBusinesses handles the customer-facing business directory
func ListActiveBusinesses(c echo.Context) error {
	log := logger.FromContext(c)

	var businesses []model.Business
	if err := database.GetDB().Where("is_active = ?", true).Order("name").Find(&businesses).Error; err != nil {
		log.Error("Failed to list businesses", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve businesses"})
	}
	return c.JSON(http.StatusOK, businesses)
}

// GetBusinessMenu handles retrieving a business's full customer-facing menu:
// categories, currency products, collections and redeemable point products
func GetBusinessMenu(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	db := database.GetDB()
	var business model.Business
	if err := db.Where("is_active = ?", true).First(&business, id).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Business not found"})
	}

	var categories []model.Category
	if err := db.Where("business_id = ? AND is_active = ?", business.ID, true).Order("name").Find(&categories).Error; err != nil {
		log.Error("Failed to load categories", zap.Error(err))
	}
	var products []model.CurrencyProduct
	if err := db.Where("business_id = ? AND is_active = ?", business.ID, true).Order("name").Find(&products).Error; err != nil {
		log.Error("Failed to load products", zap.Error(err))
	}
	var collections []model.Collection
	if err := db.Where("(business_id = ? OR business_id IS NULL) AND is_active = ?", business.ID, true).Find(&collections).Error; err != nil {
		log.Error("Failed to load collections", zap.Error(err))
	}
	var pointProducts []model.PointProduct
	if err := db.Where("(business_id = ? OR is_global = ?) AND is_active = ?", business.ID, true, true).Order("name").Find(&pointProducts).Error; err != nil {
		log.Error("Failed to load point products", zap.Error(err))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"business":       business,
		"categories":     categories,
		"products":       products,
		"collections":    collections,
		"point_products": pointProducts,
	})
}

// CreateMobileOrder handles a customer placing a currency order from the
// mobile app
func CreateMobileOrder(c echo.Context) error {
	log := logger.FromContext(c)

	var req MobileOrderRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	customerID := actorID(c)
	created, err := engine.CreateCurrencyOrder(c.Request().Context(), order.CreateCurrencyOrderInput{
		BusinessID:    req.BusinessID,
		CustomerID:    &customerID,
		Items:         req.Items,
		PaymentMethod: req.PaymentMethod,
		Source:        order.SourceMobile,
	})
	if err != nil {
		return orderErrorResponse(c, err)
	}

	prometheus.RecordOrderCreated(string(order.KindCurrency), string(order.SourceMobile))
	return c.JSON(http.StatusCreated, created)
}

// CreateMobilePointOrder handles a customer redeeming points from the mobile
// app
func CreateMobilePointOrder(c echo.Context) error {
	log := logger.FromContext(c)

	var req MobileOrderRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	created, err := engine.CreatePointOrder(c.Request().Context(), order.CreatePointOrderInput{
		BusinessID: req.BusinessID,
		CustomerID: actorID(c),
		Items:      req.Items,
		Source:     order.SourceMobile,
	})
	if err != nil {
		return orderErrorResponse(c, err)
	}

	prometheus.RecordOrderCreated(string(order.KindPoint), string(order.SourceMobile))
	prometheus.PointsRedeemedCounter.Add(float64(created.TotalPoint))
	for _, item := range created.Items {
		prometheus.RecordStockDecrement(string(order.KindPoint), item.Quantity)
	}
	return c.JSON(http.StatusCreated, created)
}

// OrderHistory handles retrieving the customer's orders of both kinds
func OrderHistory(c echo.Context) error {
	log := logger.FromContext(c)
	customerID := actorID(c)

	var currencyOrders []model.CurrencyOrder
	if err := database.GetDB().Where("customer_id = ?", customerID).Order("created_at DESC").Limit(100).Find(&currencyOrders).Error; err != nil {
		log.Error("Failed to list currency orders", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve orders"})
	}
	var pointOrders []model.PointOrder
	if err := database.GetDB().Where("customer_id = ?", customerID).Order("created_at DESC").Limit(100).Find(&pointOrders).Error; err != nil {
		log.Error("Failed to list point orders", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve orders"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"currency_orders": currencyOrders,
		"point_orders":    pointOrders,
	})
}

// ListCustomerLedgers handles retrieving the customer's point balances
// across all businesses
func ListCustomerLedgers(c echo.Context) error {
	log := logger.FromContext(c)

	var entries []model.LedgerEntry
	if err := database.GetDB().Where("customer_id = ?", actorID(c)).Find(&entries).Error; err != nil {
		log.Error("Failed to list ledgers", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve ledgers"})
	}
	return c.JSON(http.StatusOK, entries)
}

// GetCustomerLedger handles retrieving the customer's balance at one
// business. A customer with no ledger row yet sees a zero balance, the same
// row the first debit or credit would materialize.
func GetCustomerLedger(c echo.Context) error {
	log := logger.FromContext(c)
	customerID := actorID(c)

	businessID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid business id"})
	}

	var entry model.LedgerEntry
	err = database.GetDB().
		Where("customer_id = ? AND business_id = ?", customerID, businessID).
		First(&entry).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Error("Failed to load ledger", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve ledger"})
		}
		entry = model.LedgerEntry{CustomerID: customerID, BusinessID: uint(businessID)}
	}
	return c.JSON(http.StatusOK, entry)
}

// ListCustomerProgress handles retrieving the customer's collection progress
func ListCustomerProgress(c echo.Context) error {
	log := logger.FromContext(c)

	var progress []model.CollectionProgress
	if err := database.GetDB().Where("customer_id = ?", actorID(c)).Find(&progress).Error; err != nil {
		log.Error("Failed to list collection progress", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve progress"})
	}
	return c.JSON(http.StatusOK, progress)
}

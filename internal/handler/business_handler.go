package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"loyalty-platform/internal/model"
	"loyalty-platform/internal/order"
	"loyalty-platform/pkg/database"
	"loyalty-platform/pkg/logger"
	"loyalty-platform/prometheus"
)

// BusinessProfileRequest defines the payload for profile updates
type BusinessProfileRequest struct {
	Name              string `json:"name"`
	Description       string `json:"description"`
	Address           string `json:"address"`
	Phone             string `json:"phone"`
	LogoURL           string `json:"logo_url"`
	CoverImageURL     string `json:"cover_image_url"`
	ThemeColor        string `json:"theme_color"`
	SecondaryColor    string `json:"secondary_color"`
	NotificationSound string `json:"notification_sound"`
}

// CategoryRequest defines the payload for category creation and updates
type CategoryRequest struct {
	Name     string `json:"name" validate:"required"`
	IconURL  string `json:"icon_url"`
	IsActive *bool  `json:"is_active"`
}

// CurrencyProductRequest defines the payload for currency product creation
// and updates
type CurrencyProductRequest struct {
	Name         string                `json:"name" validate:"required"`
	Description  string                `json:"description"`
	CategoryID   uint                  `json:"category_id" validate:"required"`
	Price        float64               `json:"price" validate:"required,gt=0"`
	EarnedPoints int                   `json:"earned_points"`
	Stock        int                   `json:"stock"`
	ImageURL     string                `json:"image_url"`
	IsActive     *bool                 `json:"is_active"`
	Options      []model.ProductOption `json:"options"`
}

// OrderStatusRequest defines the payload for an order status change
type OrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// RestockRequest defines the payload for a business-initiated restock
// shipment
type RestockRequest struct {
	Items []struct {
		ProductID uint `json:"product_id" validate:"required"`
		Quantity  int  `json:"quantity" validate:"required,gt=0"`
	} `json:"items" validate:"required,min=1"`
	Notes string `json:"notes"`
}

// GetBusinessProfile handles retrieving the authenticated business's profile
func GetBusinessProfile(c echo.Context) error {
	var business model.Business
	if err := database.GetDB().First(&business, actorID(c)).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Business not found"})
	}
	return c.JSON(http.StatusOK, business)
}

// UpdateBusinessProfile handles updating the authenticated business's
// profile and theme
func UpdateBusinessProfile(c echo.Context) error {
	log := logger.FromContext(c)

	var business model.Business
	if err := database.GetDB().First(&business, actorID(c)).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Business not found"})
	}

	var req BusinessProfileRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	if req.Name != "" {
		business.Name = req.Name
	}
	business.Description = req.Description
	business.Address = req.Address
	business.Phone = req.Phone
	business.LogoURL = req.LogoURL
	business.CoverImageURL = req.CoverImageURL
	if req.ThemeColor != "" {
		business.ThemeColor = req.ThemeColor
	}
	if req.SecondaryColor != "" {
		business.SecondaryColor = req.SecondaryColor
	}
	if req.NotificationSound != "" {
		business.NotificationSound = req.NotificationSound
	}

	if err := database.GetDB().Save(&business).Error; err != nil {
		log.Error("Failed to update profile", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update profile"})
	}

	log.Info("Business profile updated", zap.Uint("business_id", business.ID))
	return c.JSON(http.StatusOK, business)
}

// ListCategories handles retrieving the business's categories
func ListCategories(c echo.Context) error {
	log := logger.FromContext(c)

	var categories []model.Category
	if err := database.GetDB().Where("business_id = ?", actorID(c)).Order("name").Find(&categories).Error; err != nil {
		log.Error("Failed to list categories", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve categories"})
	}
	return c.JSON(http.StatusOK, categories)
}

// CreateCategory handles creating a category
func CreateCategory(c echo.Context) error {
	log := logger.FromContext(c)

	var req CategoryRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	category := model.Category{
		Name:       req.Name,
		IconURL:    req.IconURL,
		BusinessID: actorID(c),
		IsActive:   true,
	}
	if err := database.GetDB().Create(&category).Error; err != nil {
		log.Error("Failed to create category", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create category"})
	}

	log.Info("Category created", zap.Uint("category_id", category.ID))
	return c.JSON(http.StatusCreated, category)
}

// UpdateCategory handles updating a category
func UpdateCategory(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	var category model.Category
	if err := database.GetDB().Where("business_id = ?", actorID(c)).First(&category, id).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Category not found"})
	}

	var req CategoryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	if req.Name != "" {
		category.Name = req.Name
	}
	category.IconURL = req.IconURL
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}
	if err := database.GetDB().Save(&category).Error; err != nil {
		log.Error("Failed to update category", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update category"})
	}

	return c.JSON(http.StatusOK, category)
}

// DeleteCategory handles soft-deleting a category
func DeleteCategory(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	businessID := actorID(c)
	result := database.GetDB().Where("business_id = ?", businessID).Delete(&model.Category{}, id)
	if result.Error != nil {
		log.Error("Failed to delete category", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to delete category"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Category not found"})
	}
	auditor.Record(c.Request().Context(), order.AuditEntry{
		Level:      model.AuditLevelWarning,
		Category:   model.AuditCategoryBusiness,
		Message:    "Category deleted",
		BusinessID: &businessID,
		Metadata:   map[string]interface{}{"category_id": id},
	})
	return c.NoContent(http.StatusNoContent)
}

// ListCollectionsForBusiness handles retrieving the business's own and the
// global collections
func ListCollectionsForBusiness(c echo.Context) error {
	log := logger.FromContext(c)

	var collections []model.Collection
	err := database.GetDB().
		Where("business_id = ? OR business_id IS NULL", actorID(c)).
		Order("created_at DESC").
		Find(&collections).Error
	if err != nil {
		log.Error("Failed to list collections", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve collections"})
	}
	return c.JSON(http.StatusOK, collections)
}

// ListCurrencyProducts handles retrieving the business's currency products
func ListCurrencyProducts(c echo.Context) error {
	log := logger.FromContext(c)

	query := database.GetDB().Where("business_id = ?", actorID(c))
	if categoryID := c.QueryParam("category_id"); categoryID != "" {
		query = query.Where("category_id = ?", categoryID)
	}
	if active := c.QueryParam("is_active"); active != "" {
		if v, err := strconv.ParseBool(active); err == nil {
			query = query.Where("is_active = ?", v)
		}
	}

	var products []model.CurrencyProduct
	if err := query.Order("name").Find(&products).Error; err != nil {
		log.Error("Failed to list products", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve products"})
	}
	return c.JSON(http.StatusOK, products)
}

// CreateCurrencyProduct handles creating a currency product
func CreateCurrencyProduct(c echo.Context) error {
	log := logger.FromContext(c)

	var req CurrencyProductRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if req.Price <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "price must be positive"})
	}

	var category model.Category
	if err := database.GetDB().Where("business_id = ?", actorID(c)).First(&category, req.CategoryID).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Category not found"})
	}

	product := model.CurrencyProduct{
		Name:         req.Name,
		Description:  req.Description,
		CategoryID:   category.ID,
		CategoryName: category.Name,
		Price:        req.Price,
		EarnedPoints: req.EarnedPoints,
		Stock:        req.Stock,
		ImageURL:     req.ImageURL,
		BusinessID:   actorID(c),
		IsActive:     true,
		Options:      req.Options,
	}
	if err := database.GetDB().Create(&product).Error; err != nil {
		log.Error("Failed to create product", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create product"})
	}

	log.Info("Currency product created",
		zap.Uint("product_id", product.ID),
		zap.String("name", product.Name))
	return c.JSON(http.StatusCreated, product)
}

// UpdateCurrencyProduct handles updating a currency product
func UpdateCurrencyProduct(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	var product model.CurrencyProduct
	if err := database.GetDB().Where("business_id = ?", actorID(c)).First(&product, id).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Product not found"})
	}

	var req CurrencyProductRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	if req.Name != "" {
		product.Name = req.Name
	}
	product.Description = req.Description
	if req.Price > 0 {
		product.Price = req.Price
	}
	product.EarnedPoints = req.EarnedPoints
	product.ImageURL = req.ImageURL
	product.Options = req.Options
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}
	if req.CategoryID != 0 && req.CategoryID != product.CategoryID {
		var category model.Category
		if err := database.GetDB().Where("business_id = ?", actorID(c)).First(&category, req.CategoryID).Error; err != nil {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Category not found"})
		}
		product.CategoryID = category.ID
		product.CategoryName = category.Name
	}

	if err := database.GetDB().Save(&product).Error; err != nil {
		log.Error("Failed to update product", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update product"})
	}
	return c.JSON(http.StatusOK, product)
}

// UpdateCurrencyProductStock handles a direct stock adjustment
func UpdateCurrencyProductStock(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	var req struct {
		Stock int `json:"stock"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if req.Stock < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "stock cannot be negative"})
	}

	var product model.CurrencyProduct
	if err := database.GetDB().Where("business_id = ?", actorID(c)).First(&product, id).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Product not found"})
	}

	product.Stock = req.Stock
	if err := database.GetDB().Save(&product).Error; err != nil {
		log.Error("Failed to update stock", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update stock"})
	}

	log.Info("Product stock updated",
		zap.Uint("product_id", product.ID),
		zap.Int("stock", product.Stock))
	return c.JSON(http.StatusOK, product)
}

// DeleteCurrencyProduct handles soft-deleting a currency product
func DeleteCurrencyProduct(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	businessID := actorID(c)
	result := database.GetDB().Where("business_id = ?", businessID).Delete(&model.CurrencyProduct{}, id)
	if result.Error != nil {
		log.Error("Failed to delete product", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to delete product"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Product not found"})
	}
	auditor.Record(c.Request().Context(), order.AuditEntry{
		Level:      model.AuditLevelWarning,
		Category:   model.AuditCategoryBusiness,
		Message:    "Product deleted",
		BusinessID: &businessID,
		Metadata:   map[string]interface{}{"product_id": id},
	})
	return c.NoContent(http.StatusNoContent)
}

// ListPointProducts handles retrieving the business's redeemable products
func ListPointProducts(c echo.Context) error {
	log := logger.FromContext(c)

	query := database.GetDB().Where("business_id = ?", actorID(c))
	if collectionID := c.QueryParam("collection_id"); collectionID != "" {
		query = query.Where("collection_id = ?", collectionID)
	}

	var products []model.PointProduct
	if err := query.Order("name").Find(&products).Error; err != nil {
		log.Error("Failed to list point products", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve products"})
	}
	return c.JSON(http.StatusOK, products)
}

// ListOrders handles retrieving both order kinds for the dashboard.
// Currency and point orders are returned in separate arrays; the client
// merges them for display.
func ListOrders(c echo.Context) error {
	log := logger.FromContext(c)
	businessID := actorID(c)

	currencyQuery := database.GetDB().Where("business_id = ?", businessID)
	pointQuery := database.GetDB().Where("business_id = ?", businessID)
	if status := c.QueryParam("status"); status != "" {
		currencyQuery = currencyQuery.Where("status = ?", status)
		pointQuery = pointQuery.Where("status = ?", status)
	}
	if customerID := c.QueryParam("customer_id"); customerID != "" {
		currencyQuery = currencyQuery.Where("customer_id = ?", customerID)
		pointQuery = pointQuery.Where("customer_id = ?", customerID)
	}
	if since := c.QueryParam("since"); since != "" {
		if t, err := time.Parse("2006-01-02", since); err == nil {
			currencyQuery = currencyQuery.Where("created_at >= ?", t)
			pointQuery = pointQuery.Where("created_at >= ?", t)
		}
	}

	var currencyOrders []model.CurrencyOrder
	if err := currencyQuery.Order("created_at DESC").Limit(200).Find(&currencyOrders).Error; err != nil {
		log.Error("Failed to list currency orders", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve orders"})
	}
	var pointOrders []model.PointOrder
	if err := pointQuery.Order("created_at DESC").Limit(200).Find(&pointOrders).Error; err != nil {
		log.Error("Failed to list point orders", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve orders"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"currency_orders": currencyOrders,
		"point_orders":    pointOrders,
	})
}

// UpdateOrderStatus handles a staff-driven status change on either order
// kind. The engine applies the ledger, stock and collection side effects.
func UpdateOrderStatus(c echo.Context) error {
	log := logger.FromContext(c)

	kind := order.Kind(c.Param("kind"))
	if kind != order.KindCurrency && kind != order.KindPoint {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "order kind must be currency or point"})
	}
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}

	var req OrderStatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	result, err := engine.TransitionStatus(c.Request().Context(), kind, uint(orderID), actorID(c), order.Status(req.Status))
	if err != nil {
		return orderErrorResponse(c, err)
	}

	// Duplicate retries are engine no-ops; nothing happened, so nothing is
	// recorded.
	if result.Changed {
		prometheus.RecordOrderTransition(string(kind), req.Status)
		if result.Anomaly {
			prometheus.OrderAnomalyCounter.Inc()
		}
		switch {
		case kind == order.KindCurrency && req.Status == string(order.StatusCompleted) && result.Order.Currency.CustomerID != nil:
			prometheus.PointsIssuedCounter.Add(float64(result.Order.Currency.PointsEarned))
		case kind == order.KindPoint && req.Status == string(order.StatusCancelled):
			prometheus.PointsRefundedCounter.Add(float64(result.Order.Point.TotalPoint))
		}
		if result.CollectionsCompleted > 0 {
			prometheus.CollectionsCompletedCounter.Add(float64(result.CollectionsCompleted))
		}
	}

	log.Info("Order status updated by business",
		zap.Uint64("order_id", orderID),
		zap.String("kind", string(kind)),
		zap.String("status", req.Status))
	return c.JSON(http.StatusOK, echo.Map{
		"order":            result.Order.Unwrap(),
		"progress_updates": result.ProgressUpdates,
		"anomaly":          result.Anomaly,
	})
}

// ListCustomers handles retrieving the customers holding a ledger at this
// business
func ListCustomers(c echo.Context) error {
	log := logger.FromContext(c)
	businessID := actorID(c)

	var entries []model.LedgerEntry
	if err := database.GetDB().Where("business_id = ?", businessID).Find(&entries).Error; err != nil {
		log.Error("Failed to list ledger entries", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve customers"})
	}

	ids := make([]uint, 0, len(entries))
	balances := make(map[uint]int, len(entries))
	for _, e := range entries {
		ids = append(ids, e.CustomerID)
		balances[e.CustomerID] = e.Points
	}

	var customers []model.Customer
	if len(ids) > 0 {
		if err := database.GetDB().Where("id IN ?", ids).Find(&customers).Error; err != nil {
			log.Error("Failed to list customers", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve customers"})
		}
	}

	type customerWithBalance struct {
		model.Customer
		Balance int `json:"balance"`
	}
	out := make([]customerWithBalance, 0, len(customers))
	for _, cu := range customers {
		out = append(out, customerWithBalance{Customer: cu, Balance: balances[cu.ID]})
	}
	return c.JSON(http.StatusOK, out)
}

// GetCustomer handles retrieving one customer's ledger and collection
// progress at this business
func GetCustomer(c echo.Context) error {
	log := logger.FromContext(c)
	businessID := actorID(c)
	id := c.Param("id")

	var customer model.Customer
	if err := database.GetDB().First(&customer, id).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Customer not found"})
	}

	var entry model.LedgerEntry
	database.GetDB().Where("customer_id = ? AND business_id = ?", customer.ID, businessID).First(&entry)

	var progress []model.CollectionProgress
	if err := database.GetDB().Where("customer_id = ?", customer.ID).Find(&progress).Error; err != nil {
		log.Error("Failed to load collection progress", zap.Error(err))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"customer": customer,
		"balance":  entry.Points,
		"progress": progress,
	})
}

// ListBusinessShipments handles retrieving the business's incoming shipments
func ListBusinessShipments(c echo.Context) error {
	log := logger.FromContext(c)

	query := database.GetDB().Where("business_id = ?", actorID(c))
	if status := c.QueryParam("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var shipments []model.Shipment
	if err := query.Order("created_at DESC").Find(&shipments).Error; err != nil {
		log.Error("Failed to list shipments", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve shipments"})
	}
	return c.JSON(http.StatusOK, shipments)
}

// ConfirmShipmentDelivery handles the business confirming receipt of a
// shipment. An admin shipment materializes its collection set into a live
// collection with stocked point products; a restock shipment tops up the
// existing products.
func ConfirmShipmentDelivery(c echo.Context) error {
	log := logger.FromContext(c)
	businessID := actorID(c)
	id := c.Param("id")

	var shipment model.Shipment
	if err := database.GetDB().Where("business_id = ?", businessID).First(&shipment, id).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Shipment not found"})
	}
	if shipment.Status == model.ShipmentStatusDelivered {
		return c.JSON(http.StatusOK, shipment)
	}
	if shipment.Status == model.ShipmentStatusCancelled {
		return c.JSON(http.StatusConflict, echo.Map{"error": "shipment is cancelled"})
	}

	err := database.GetDB().Transaction(func(tx *gorm.DB) error {
		if err := applyShipmentDelivery(tx, &shipment); err != nil {
			return err
		}
		now := time.Now()
		shipment.Status = model.ShipmentStatusDelivered
		shipment.DeliveredAt = &now
		return tx.Save(&shipment).Error
	})
	if err != nil {
		log.Error("Failed to confirm delivery", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to confirm delivery"})
	}

	log.Info("Shipment delivery confirmed",
		zap.Uint("shipment_id", shipment.ID),
		zap.String("type", shipment.Type))
	auditor.Record(c.Request().Context(), order.AuditEntry{
		Level:      model.AuditLevelSuccess,
		Category:   model.AuditCategoryShipment,
		Message:    "Shipment delivery confirmed",
		BusinessID: &businessID,
		Metadata:   map[string]interface{}{"shipment_id": shipment.ID, "type": shipment.Type},
	})
	return c.JSON(http.StatusOK, shipment)
}

// CreateRestockRequest handles a business requesting more stock of its
// existing point products
func CreateRestockRequest(c echo.Context) error {
	log := logger.FromContext(c)
	businessID := actorID(c)

	var req RestockRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if len(req.Items) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "at least one item is required"})
	}

	db := database.GetDB()
	var business model.Business
	if err := db.First(&business, businessID).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Business not found"})
	}

	products := make([]model.ShipmentItem, 0, len(req.Items))
	total := 0
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "quantity must be positive"})
		}
		var product model.PointProduct
		if err := db.Where("business_id = ?", businessID).First(&product, item.ProductID).Error; err != nil {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Point product not found"})
		}
		products = append(products, model.ShipmentItem{
			ProductID:  strconv.FormatUint(uint64(product.ID), 10),
			Name:       product.Name,
			ImageURL:   product.ImageURL,
			Quantity:   item.Quantity,
			PricePoint: product.PricePoint,
		})
		total += item.Quantity
	}

	shipment := model.Shipment{
		Type:            model.ShipmentTypeRestock,
		BusinessID:      business.ID,
		BusinessName:    business.Name,
		BusinessAddress: business.Address,
		BusinessPhone:   business.Phone,
		Status:          model.ShipmentStatusPending,
		TotalItems:      total,
		Products:        products,
		Notes:           req.Notes,
	}
	if err := db.Create(&shipment).Error; err != nil {
		log.Error("Failed to create restock request", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create restock request"})
	}

	log.Info("Restock request created",
		zap.Uint("shipment_id", shipment.ID),
		zap.Int("total_items", total))
	auditor.Record(c.Request().Context(), order.AuditEntry{
		Level:      model.AuditLevelInfo,
		Category:   model.AuditCategoryShipment,
		Message:    "Restock requested",
		BusinessID: &businessID,
		Metadata:   map[string]interface{}{"shipment_id": shipment.ID, "total_items": total},
	})
	return c.JSON(http.StatusCreated, shipment)
}

// ListBusinessLogs handles the business browsing its own audit trail.
// Scoped to the authenticated business, paginated with limit/offset.
func ListBusinessLogs(c echo.Context) error {
	log := logger.FromContext(c)

	query := database.GetDB().Where("business_id = ?", actorID(c))
	if level := c.QueryParam("level"); level != "" {
		query = query.Where("level = ?", level)
	}
	if category := c.QueryParam("category"); category != "" {
		query = query.Where("category = ?", category)
	}

	limit := 50
	if raw := c.QueryParam("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 && v <= 500 {
			limit = v
		}
	}
	offset := 0
	if raw := c.QueryParam("offset"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
			offset = v
		}
	}

	var logs []model.AuditLog
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&logs).Error; err != nil {
		log.Error("Failed to list logs", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve logs"})
	}
	return c.JSON(http.StatusOK, logs)
}

// BusinessAnalytics handles the dashboard revenue and redemption summary
func BusinessAnalytics(c echo.Context) error {
	log := logger.FromContext(c)
	businessID := actorID(c)
	db := database.GetDB()

	days := 30
	if raw := c.QueryParam("days"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 && v <= 365 {
			days = v
		}
	}
	since := time.Now().AddDate(0, 0, -days)

	var revenue float64
	if err := db.Model(&model.CurrencyOrder{}).
		Where("business_id = ? AND status = ? AND created_at >= ?", businessID, string(order.StatusCompleted), since).
		Select("COALESCE(SUM(total_amount), 0)").Scan(&revenue).Error; err != nil {
		log.Error("Failed to sum revenue", zap.Error(err))
	}

	var pointsRedeemed int64
	if err := db.Model(&model.PointOrder{}).
		Where("business_id = ? AND status = ? AND created_at >= ?", businessID, string(order.StatusCompleted), since).
		Select("COALESCE(SUM(total_point), 0)").Scan(&pointsRedeemed).Error; err != nil {
		log.Error("Failed to sum redeemed points", zap.Error(err))
	}

	var pointsIssued int64
	if err := db.Model(&model.CurrencyOrder{}).
		Where("business_id = ? AND status = ? AND created_at >= ?", businessID, string(order.StatusCompleted), since).
		Select("COALESCE(SUM(points_earned), 0)").Scan(&pointsIssued).Error; err != nil {
		log.Error("Failed to sum issued points", zap.Error(err))
	}

	var orderCount int64
	db.Model(&model.CurrencyOrder{}).
		Where("business_id = ? AND created_at >= ?", businessID, since).
		Count(&orderCount)

	return c.JSON(http.StatusOK, echo.Map{
		"days":            days,
		"revenue":         revenue,
		"orders":          orderCount,
		"points_issued":   pointsIssued,
		"points_redeemed": pointsRedeemed,
	})
}

// GenerateKioskQR handles creating a pairing session for a kiosk device
func GenerateKioskQR(c echo.Context) error {
	log := logger.FromContext(c)
	businessID := actorID(c)

	session := model.KioskSession{
		BusinessID: businessID,
		QRCode:     uuid.New().String(),
		IsActive:   true,
		ExpiresAt:  time.Now().Add(cfg.Kiosk.SessionTTL),
	}
	if err := database.GetDB().Create(&session).Error; err != nil {
		log.Error("Failed to create kiosk session", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create session"})
	}

	prometheus.KioskSessionsCounter.Inc()
	log.Info("Kiosk session created",
		zap.Uint("session_id", session.ID),
		zap.Uint("business_id", businessID))
	return c.JSON(http.StatusCreated, session)
}

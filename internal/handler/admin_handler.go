package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"loyalty-platform/internal/model"
	"loyalty-platform/internal/order"
	"loyalty-platform/pkg/database"
	"loyalty-platform/pkg/logger"
)

// BusinessRequest defines the payload for business creation and updates
type BusinessRequest struct {
	Name        string `json:"name" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password"`
	Description string `json:"description"`
	Address     string `json:"address"`
	Phone       string `json:"phone"`
}

// CollectionSetRequest defines the payload for collection set creation and
// updates
type CollectionSetRequest struct {
	Name        string             `json:"name" validate:"required"`
	Description string             `json:"description"`
	Category    string             `json:"category"`
	ImageURL    string             `json:"image_url"`
	Products    []model.SetProduct `json:"products" validate:"required,min=1"`
}

// GlobalCollectionRequest defines the payload for platform-wide collection
// creation and updates
type GlobalCollectionRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	IsActive    *bool  `json:"is_active"`
}

// GlobalPointProductRequest defines the payload for platform-wide point
// product creation and updates
type GlobalPointProductRequest struct {
	Name         string `json:"name" validate:"required"`
	Description  string `json:"description"`
	CollectionID uint   `json:"collection_id"`
	PricePoint   int    `json:"price_point" validate:"required,gt=0"`
	Stock        *int   `json:"stock"`
	ImageURL     string `json:"image_url"`
	IsActive     *bool  `json:"is_active"`
}

// ShipmentRequest defines the payload for an admin-initiated shipment
type ShipmentRequest struct {
	BusinessID      uint   `json:"business_id" validate:"required"`
	CollectionSetID uint   `json:"collection_set_id" validate:"required"`
	Quantity        int    `json:"quantity" validate:"required,gt=0"`
	TrackingNumber  string `json:"tracking_number"`
	ShippingCompany string `json:"shipping_company"`
	Notes           string `json:"notes"`
}

// ListBusinesses handles retrieving all businesses for the admin dashboard
func ListBusinesses(c echo.Context) error {
	log := logger.FromContext(c)

	var businesses []model.Business
	if err := database.GetDB().Order("created_at DESC").Find(&businesses).Error; err != nil {
		log.Error("Failed to list businesses", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve businesses"})
	}

	return c.JSON(http.StatusOK, businesses)
}

// CreateBusiness handles onboarding a new business tenant
func CreateBusiness(c echo.Context) error {
	log := logger.FromContext(c)

	var req BusinessRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password is required"})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}

	business := model.Business{
		Name:        req.Name,
		Email:       req.Email,
		Password:    string(hashed),
		Description: req.Description,
		Address:     req.Address,
		Phone:       req.Phone,
		IsActive:    true,
	}
	if err := database.GetDB().Create(&business).Error; err != nil {
		log.Error("Failed to create business", zap.Error(err))
		return c.JSON(http.StatusConflict, echo.Map{"error": "business with this email already exists"})
	}

	log.Info("Business created",
		zap.Uint("business_id", business.ID),
		zap.String("name", business.Name))
	auditor.Record(c.Request().Context(), order.AuditEntry{
		Level:      model.AuditLevelSuccess,
		Category:   model.AuditCategoryBusiness,
		Message:    "Business created: " + business.Name,
		BusinessID: &business.ID,
	})
	return c.JSON(http.StatusCreated, business)
}

// UpdateBusiness handles updating a business's profile fields
func UpdateBusiness(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	var business model.Business
	if err := database.GetDB().First(&business, id).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Business not found"})
	}

	var req BusinessRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	business.Name = req.Name
	business.Description = req.Description
	business.Address = req.Address
	business.Phone = req.Phone
	if err := database.GetDB().Save(&business).Error; err != nil {
		log.Error("Failed to update business", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update business"})
	}

	log.Info("Business updated", zap.Uint("business_id", business.ID))
	return c.JSON(http.StatusOK, business)
}

// SetBusinessActive handles activating or deactivating a business.
// Deactivation takes effect on the business's next request even though its
// token stays syntactically valid.
func SetBusinessActive(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	var req struct {
		IsActive bool `json:"is_active"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	var business model.Business
	if err := database.GetDB().First(&business, id).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Business not found"})
	}

	business.IsActive = req.IsActive
	if err := database.GetDB().Save(&business).Error; err != nil {
		log.Error("Failed to update business state", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update business"})
	}

	level := model.AuditLevelInfo
	message := "Business activated: " + business.Name
	if !req.IsActive {
		level = model.AuditLevelWarning
		message = "Business deactivated: " + business.Name
	}
	log.Info("Business active state changed",
		zap.Uint("business_id", business.ID),
		zap.Bool("is_active", req.IsActive))
	auditor.Record(c.Request().Context(), order.AuditEntry{
		Level:      level,
		Category:   model.AuditCategoryBusiness,
		Message:    message,
		BusinessID: &business.ID,
	})
	return c.JSON(http.StatusOK, business)
}

// ListCollectionSets handles retrieving all collection set templates
func ListCollectionSets(c echo.Context) error {
	log := logger.FromContext(c)

	var sets []model.CollectionSet
	query := database.GetDB()
	if active := c.QueryParam("is_active"); active != "" {
		if v, err := strconv.ParseBool(active); err == nil {
			query = query.Where("is_active = ?", v)
		}
	}
	if err := query.Order("created_at DESC").Find(&sets).Error; err != nil {
		log.Error("Failed to list collection sets", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve collection sets"})
	}

	return c.JSON(http.StatusOK, sets)
}

// CreateCollectionSet handles creating a collection set template
func CreateCollectionSet(c echo.Context) error {
	log := logger.FromContext(c)

	var req CollectionSetRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if len(req.Products) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "at least one product is required"})
	}

	set := model.CollectionSet{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		ImageURL:    req.ImageURL,
		Products:    req.Products,
		TotalItems:  len(req.Products),
		IsActive:    true,
	}
	if err := database.GetDB().Create(&set).Error; err != nil {
		log.Error("Failed to create collection set", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create collection set"})
	}

	log.Info("Collection set created",
		zap.Uint("set_id", set.ID),
		zap.String("name", set.Name),
		zap.Int("total_items", set.TotalItems))
	auditor.Record(c.Request().Context(), order.AuditEntry{
		Level:    model.AuditLevelSuccess,
		Category: model.AuditCategoryCollection,
		Message:  "Collection set created: " + set.Name,
		Metadata: map[string]interface{}{"set_id": set.ID, "total_items": set.TotalItems},
	})
	return c.JSON(http.StatusCreated, set)
}

// UpdateCollectionSet handles updating a collection set template
func UpdateCollectionSet(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	var set model.CollectionSet
	if err := database.GetDB().First(&set, id).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Collection set not found"})
	}

	var req CollectionSetRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	set.Name = req.Name
	set.Description = req.Description
	set.Category = req.Category
	set.ImageURL = req.ImageURL
	if len(req.Products) > 0 {
		set.Products = req.Products
		set.TotalItems = len(req.Products)
	}
	if err := database.GetDB().Save(&set).Error; err != nil {
		log.Error("Failed to update collection set", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update collection set"})
	}

	log.Info("Collection set updated", zap.Uint("set_id", set.ID))
	return c.JSON(http.StatusOK, set)
}

// DeleteCollectionSet handles retiring a collection set template. Shipments
// that already reference it keep their manifest snapshot.
func DeleteCollectionSet(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	result := database.GetDB().Delete(&model.CollectionSet{}, id)
	if result.Error != nil {
		log.Error("Failed to delete collection set", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to delete collection set"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Collection set not found"})
	}

	log.Info("Collection set deleted", zap.String("set_id", id))
	return c.NoContent(http.StatusNoContent)
}

// ListGlobalCollections handles retrieving the platform-wide collections
// every business can redeem against
func ListGlobalCollections(c echo.Context) error {
	log := logger.FromContext(c)

	var collections []model.Collection
	if err := database.GetDB().Where("business_id IS NULL").Order("created_at DESC").Find(&collections).Error; err != nil {
		log.Error("Failed to list global collections", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve collections"})
	}
	return c.JSON(http.StatusOK, collections)
}

// CreateGlobalCollection handles creating a platform-wide collection
func CreateGlobalCollection(c echo.Context) error {
	log := logger.FromContext(c)

	var req GlobalCollectionRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	collection := model.Collection{
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		IsActive:    true,
	}
	if err := database.GetDB().Create(&collection).Error; err != nil {
		log.Error("Failed to create global collection", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create collection"})
	}

	log.Info("Global collection created",
		zap.Uint("collection_id", collection.ID),
		zap.String("name", collection.Name))
	auditor.Record(c.Request().Context(), order.AuditEntry{
		Level:    model.AuditLevelSuccess,
		Category: model.AuditCategoryCollection,
		Message:  "Global collection created: " + collection.Name,
		Metadata: map[string]interface{}{"collection_id": collection.ID},
	})
	return c.JSON(http.StatusCreated, collection)
}

// UpdateGlobalCollection handles editing or retiring a platform-wide
// collection
func UpdateGlobalCollection(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	var collection model.Collection
	if err := database.GetDB().Where("business_id IS NULL").First(&collection, id).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Collection not found"})
	}

	var req GlobalCollectionRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	if req.Name != "" {
		collection.Name = req.Name
	}
	collection.Description = req.Description
	collection.ImageURL = req.ImageURL
	if req.IsActive != nil {
		collection.IsActive = *req.IsActive
	}
	if err := database.GetDB().Save(&collection).Error; err != nil {
		log.Error("Failed to update global collection", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update collection"})
	}

	log.Info("Global collection updated", zap.Uint("collection_id", collection.ID))
	return c.JSON(http.StatusOK, collection)
}

// ListGlobalPointProducts handles retrieving the platform-wide redeemable
// products
func ListGlobalPointProducts(c echo.Context) error {
	log := logger.FromContext(c)

	var products []model.PointProduct
	if err := database.GetDB().Where("is_global = ?", true).Order("created_at DESC").Find(&products).Error; err != nil {
		log.Error("Failed to list global point products", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve products"})
	}
	return c.JSON(http.StatusOK, products)
}

// CreateGlobalPointProduct handles creating a point product redeemable at
// every business
func CreateGlobalPointProduct(c echo.Context) error {
	log := logger.FromContext(c)

	var req GlobalPointProductRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	if req.PricePoint <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "price_point must be positive"})
	}

	product := model.PointProduct{
		Name:         req.Name,
		Description:  req.Description,
		CollectionID: req.CollectionID,
		PricePoint:   req.PricePoint,
		ImageURL:     req.ImageURL,
		IsGlobal:     true,
		IsActive:     true,
	}
	if req.Stock != nil {
		if *req.Stock < 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "stock cannot be negative"})
		}
		product.Stock = *req.Stock
	}
	if req.CollectionID != 0 {
		var collection model.Collection
		if err := database.GetDB().Where("business_id IS NULL").First(&collection, req.CollectionID).Error; err != nil {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Collection not found"})
		}
		product.CollectionName = collection.Name
	}
	if err := database.GetDB().Create(&product).Error; err != nil {
		log.Error("Failed to create global point product", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create product"})
	}

	log.Info("Global point product created",
		zap.Uint("product_id", product.ID),
		zap.String("name", product.Name),
		zap.Int("price_point", product.PricePoint))
	auditor.Record(c.Request().Context(), order.AuditEntry{
		Level:    model.AuditLevelSuccess,
		Category: model.AuditCategoryCollection,
		Message:  "Global point product created: " + product.Name,
		Metadata: map[string]interface{}{"product_id": product.ID, "price_point": product.PricePoint},
	})
	return c.JSON(http.StatusCreated, product)
}

// UpdateGlobalPointProduct handles editing a platform-wide point product,
// including stock top-ups and retirement
func UpdateGlobalPointProduct(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	var product model.PointProduct
	if err := database.GetDB().Where("is_global = ?", true).First(&product, id).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Product not found"})
	}

	var req GlobalPointProductRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	if req.Name != "" {
		product.Name = req.Name
	}
	product.Description = req.Description
	product.ImageURL = req.ImageURL
	if req.PricePoint > 0 {
		product.PricePoint = req.PricePoint
	}
	if req.Stock != nil {
		if *req.Stock < 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "stock cannot be negative"})
		}
		product.Stock = *req.Stock
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}
	if err := database.GetDB().Save(&product).Error; err != nil {
		log.Error("Failed to update global point product", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update product"})
	}

	log.Info("Global point product updated", zap.Uint("product_id", product.ID))
	return c.JSON(http.StatusOK, product)
}

// CreateShipment handles dispatching a collection set to a business
func CreateShipment(c echo.Context) error {
	log := logger.FromContext(c)

	var req ShipmentRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if req.Quantity <= 0 {
		req.Quantity = 1
	}

	db := database.GetDB()
	var business model.Business
	if err := db.First(&business, req.BusinessID).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Business not found"})
	}
	var set model.CollectionSet
	if err := db.First(&set, req.CollectionSetID).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Collection set not found"})
	}

	// Snapshot the manifest and the recipient so later template or profile
	// edits do not rewrite shipment history.
	products := make([]model.ShipmentItem, 0, len(set.Products))
	total := 0
	for _, p := range set.Products {
		products = append(products, model.ShipmentItem{
			ProductID:   p.ProductID,
			Name:        p.ProductName,
			Description: p.Description,
			ImageURL:    p.ImageURL,
			Quantity:    req.Quantity,
			PricePoint:  p.PricePoint,
		})
		total += req.Quantity
	}

	shipment := model.Shipment{
		Type:              model.ShipmentTypeAdmin,
		CollectionSetID:   &set.ID,
		CollectionSetName: set.Name,
		BusinessID:        business.ID,
		BusinessName:      business.Name,
		BusinessAddress:   business.Address,
		BusinessPhone:     business.Phone,
		Status:            model.ShipmentStatusPending,
		TrackingNumber:    req.TrackingNumber,
		ShippingCompany:   req.ShippingCompany,
		TotalItems:        total,
		Products:          products,
		Notes:             req.Notes,
	}
	if err := db.Create(&shipment).Error; err != nil {
		log.Error("Failed to create shipment", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create shipment"})
	}

	log.Info("Shipment created",
		zap.Uint("shipment_id", shipment.ID),
		zap.Uint("business_id", business.ID),
		zap.Uint("set_id", set.ID))
	auditor.Record(c.Request().Context(), order.AuditEntry{
		Level:      model.AuditLevelInfo,
		Category:   model.AuditCategoryShipment,
		Message:    "Shipment dispatched: " + set.Name,
		BusinessID: &business.ID,
		Metadata:   map[string]interface{}{"shipment_id": shipment.ID, "total_items": total},
	})
	return c.JSON(http.StatusCreated, shipment)
}

// ListShipments handles retrieving all shipments for the admin dashboard
func ListShipments(c echo.Context) error {
	log := logger.FromContext(c)

	query := database.GetDB()
	if status := c.QueryParam("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if shipType := c.QueryParam("type"); shipType != "" {
		query = query.Where("type = ?", shipType)
	}

	var shipments []model.Shipment
	if err := query.Order("created_at DESC").Find(&shipments).Error; err != nil {
		log.Error("Failed to list shipments", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve shipments"})
	}

	return c.JSON(http.StatusOK, shipments)
}

// UpdateShipmentStatus handles advancing a shipment through its state
// machine. Marking a shipment delivered applies its stock effects in the
// same transaction: a restock shipment tops up the business's point
// products, an admin shipment materializes its collection set. The
// business-side confirmation then sees the shipment already delivered.
func UpdateShipmentStatus(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	var req struct {
		Status string `json:"status" validate:"required"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	var shipment model.Shipment
	if err := database.GetDB().First(&shipment, id).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Shipment not found"})
	}

	if !canShipmentTransition(shipment.Status, req.Status) {
		return c.JSON(http.StatusConflict, echo.Map{
			"error":       "invalid shipment status transition",
			"from_status": shipment.Status,
			"to_status":   req.Status,
		})
	}

	now := time.Now()
	shipment.Status = req.Status
	switch req.Status {
	case model.ShipmentStatusInTransit:
		shipment.ShippedAt = &now
	case model.ShipmentStatusDelivered:
		shipment.DeliveredAt = &now
	}
	err := database.GetDB().Transaction(func(tx *gorm.DB) error {
		if req.Status == model.ShipmentStatusDelivered {
			if err := applyShipmentDelivery(tx, &shipment); err != nil {
				return err
			}
		}
		return tx.Save(&shipment).Error
	})
	if err != nil {
		log.Error("Failed to update shipment", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update shipment"})
	}

	log.Info("Shipment status updated",
		zap.Uint("shipment_id", shipment.ID),
		zap.String("status", shipment.Status))
	auditor.Record(c.Request().Context(), order.AuditEntry{
		Level:      model.AuditLevelInfo,
		Category:   model.AuditCategoryShipment,
		Message:    "Shipment status updated: " + shipment.Status,
		BusinessID: &shipment.BusinessID,
		Metadata:   map[string]interface{}{"shipment_id": shipment.ID, "status": shipment.Status},
	})
	return c.JSON(http.StatusOK, shipment)
}

func canShipmentTransition(from, to string) bool {
	switch from {
	case model.ShipmentStatusPending:
		return to == model.ShipmentStatusInTransit || to == model.ShipmentStatusCancelled
	case model.ShipmentStatusInTransit:
		return to == model.ShipmentStatusDelivered || to == model.ShipmentStatusCancelled
	default:
		return false
	}
}

// SystemStats handles the admin dashboard overview counters
func SystemStats(c echo.Context) error {
	log := logger.FromContext(c)
	db := database.GetDB()

	var (
		businesses     int64
		customers      int64
		currencyOrders int64
		pointOrders    int64
		totalPoints    int64
	)
	db.Model(&model.Business{}).Count(&businesses)
	db.Model(&model.Customer{}).Count(&customers)
	db.Model(&model.CurrencyOrder{}).Count(&currencyOrders)
	db.Model(&model.PointOrder{}).Count(&pointOrders)
	if err := db.Model(&model.LedgerEntry{}).Select("COALESCE(SUM(points), 0)").Scan(&totalPoints).Error; err != nil {
		log.Error("Failed to sum outstanding points", zap.Error(err))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"businesses":         businesses,
		"customers":          customers,
		"currency_orders":    currencyOrders,
		"point_orders":       pointOrders,
		"outstanding_points": totalPoints,
	})
}

// ListAuditLogs handles retrieving the audit trail with optional filters
func ListAuditLogs(c echo.Context) error {
	log := logger.FromContext(c)

	query := database.GetDB()
	if level := c.QueryParam("level"); level != "" {
		query = query.Where("level = ?", level)
	}
	if category := c.QueryParam("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if businessID := c.QueryParam("business_id"); businessID != "" {
		query = query.Where("business_id = ?", businessID)
	}

	limit := 100
	if raw := c.QueryParam("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 && v <= 1000 {
			limit = v
		}
	}

	var logs []model.AuditLog
	if err := query.Order("created_at DESC").Limit(limit).Find(&logs).Error; err != nil {
		log.Error("Failed to list audit logs", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve logs"})
	}

	return c.JSON(http.StatusOK, logs)
}

package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"loyalty-platform/internal/model"
	"loyalty-platform/internal/notify"
	"loyalty-platform/internal/order"
	"loyalty-platform/pkg/database"
	"loyalty-platform/pkg/logger"
	"loyalty-platform/prometheus"
)

// KioskOrderRequest defines the payload for a kiosk-placed order. The
// session code carries the optional linked customer.
type KioskOrderRequest struct {
	QRCode        string           `json:"qr_code" validate:"required"`
	Items         []order.LineItem `json:"items" validate:"required,min=1"`
	PaymentMethod string           `json:"payment_method"`
}

// GetKioskSession handles a kiosk polling its session state
func GetKioskSession(c echo.Context) error {
	code := c.Param("code")

	session, err := activeSession(code)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found or expired"})
	}
	return c.JSON(http.StatusOK, session)
}

// CloseKioskSession handles the kiosk retiring its pairing session, usually
// after checkout. Closing an already-closed or expired session is a no-op.
func CloseKioskSession(c echo.Context) error {
	log := logger.FromContext(c)
	code := c.Param("code")

	err := database.GetDB().
		Model(&model.KioskSession{}).
		Where("qr_code = ?", code).
		Update("is_active", false).Error
	if err != nil {
		log.Error("Failed to close session", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to close session"})
	}
	return c.NoContent(http.StatusNoContent)
}

// LinkKioskSession handles the mobile app scanning a kiosk QR code. The
// authenticated customer is attached to the session and the kiosk is
// notified on its pairing channel.
func LinkKioskSession(c echo.Context) error {
	log := logger.FromContext(c)
	code := c.Param("code")
	customerID := actorID(c)

	session, err := activeSession(code)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found or expired"})
	}
	if session.CustomerID != nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": "session is already linked"})
	}

	session.CustomerID = &customerID
	if err := database.GetDB().Save(session).Error; err != nil {
		log.Error("Failed to link session", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to link session"})
	}

	var customer model.Customer
	if err := database.GetDB().First(&customer, customerID).Error; err == nil {
		hub.Emit(notify.QRChannel(code), "session-linked", map[string]interface{}{
			"customer_id":   customer.ID,
			"customer_name": customer.Name,
			"avatar_url":    customer.AvatarURL,
		})
	}

	log.Info("Kiosk session linked",
		zap.Uint("session_id", session.ID),
		zap.Uint("customer_id", customerID))
	return c.JSON(http.StatusOK, session)
}

// KioskSessionEvents streams pairing events to the kiosk screen
func KioskSessionEvents(c echo.Context) error {
	code := c.Param("code")
	if _, err := activeSession(code); err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found or expired"})
	}
	return hub.ServeSSE(c, notify.QRChannel(code))
}

// CreateKioskOrder handles a walk-up currency order placed on the kiosk.
// A linked session attributes the order to the customer so completion
// credits their points; an unlinked session places a guest order.
func CreateKioskOrder(c echo.Context) error {
	log := logger.FromContext(c)

	var req KioskOrderRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	session, err := activeSession(req.QRCode)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found or expired"})
	}

	created, err := engine.CreateCurrencyOrder(c.Request().Context(), order.CreateCurrencyOrderInput{
		BusinessID:    session.BusinessID,
		CustomerID:    session.CustomerID,
		Items:         req.Items,
		PaymentMethod: req.PaymentMethod,
		Source:        order.SourceKiosk,
	})
	if err != nil {
		return orderErrorResponse(c, err)
	}

	prometheus.RecordOrderCreated(string(order.KindCurrency), string(order.SourceKiosk))
	for _, item := range created.Items {
		prometheus.RecordStockDecrement(string(order.KindCurrency), item.Quantity)
	}
	return c.JSON(http.StatusCreated, created)
}

// CreateKioskPointOrder handles a point redemption on the kiosk; the session
// must be linked to a customer
func CreateKioskPointOrder(c echo.Context) error {
	log := logger.FromContext(c)

	var req KioskOrderRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	session, err := activeSession(req.QRCode)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found or expired"})
	}
	if session.CustomerID == nil {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "session is not linked to a customer"})
	}

	created, err := engine.CreatePointOrder(c.Request().Context(), order.CreatePointOrderInput{
		BusinessID: session.BusinessID,
		CustomerID: *session.CustomerID,
		Items:      req.Items,
		Source:     order.SourceKiosk,
	})
	if err != nil {
		return orderErrorResponse(c, err)
	}

	prometheus.RecordOrderCreated(string(order.KindPoint), string(order.SourceKiosk))
	prometheus.PointsRedeemedCounter.Add(float64(created.TotalPoint))
	for _, item := range created.Items {
		prometheus.RecordStockDecrement(string(order.KindPoint), item.Quantity)
	}
	return c.JSON(http.StatusCreated, created)
}

func activeSession(code string) (*model.KioskSession, error) {
	var session model.KioskSession
	err := database.GetDB().
		Where("qr_code = ? AND is_active = ? AND expires_at > ?", code, true, time.Now()).
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

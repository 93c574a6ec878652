package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"loyalty-platform/internal/notify"
	"loyalty-platform/internal/order"
	"loyalty-platform/pkg/config"
	"loyalty-platform/pkg/logger"
	"loyalty-platform/pkg/oauth"
	"loyalty-platform/prometheus"
)

var (
	engine      *order.Engine
	hub         *notify.Hub
	oauthClient *oauth.Client
	auditor     order.Auditor
	cfg         *config.Config
)

// Init wires the handler package's shared dependencies. Call once at
// startup, before registering routes.
func Init(e *order.Engine, h *notify.Hub, oc *oauth.Client, a order.Auditor, c *config.Config) {
	engine = e
	hub = h
	oauthClient = oc
	auditor = a
	cfg = c
}

// orderErrorResponse maps the engine's error taxonomy onto HTTP statuses.
// Shortfall details are surfaced so clients can explain the rejection.
func orderErrorResponse(c echo.Context, err error) error {
	log := logger.FromContext(c)

	var validationErr *order.ValidationError
	var notFoundErr *order.NotFoundError
	var pointsErr *order.InsufficientPointsError
	var stockErr *order.InsufficientStockError
	var transitionErr *order.InvalidTransitionError

	switch {
	case errors.As(err, &validationErr):
		prometheus.RecordValidationFailure("invalid_input")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": validationErr.Reason})
	case errors.As(err, &notFoundErr):
		return c.JSON(http.StatusNotFound, echo.Map{"error": notFoundErr.Error()})
	case errors.As(err, &pointsErr):
		prometheus.RecordValidationFailure("insufficient_points")
		return c.JSON(http.StatusConflict, echo.Map{
			"error":     "insufficient points",
			"required":  pointsErr.Required,
			"available": pointsErr.Available,
		})
	case errors.As(err, &stockErr):
		prometheus.RecordValidationFailure("insufficient_stock")
		return c.JSON(http.StatusConflict, echo.Map{
			"error":      "insufficient stock",
			"product_id": stockErr.ProductID,
			"requested":  stockErr.Requested,
			"available":  stockErr.Available,
		})
	case errors.As(err, &transitionErr):
		return c.JSON(http.StatusConflict, echo.Map{
			"error":       "invalid status transition",
			"from_status": string(transitionErr.From),
			"to_status":   string(transitionErr.To),
		})
	}

	log.Error("Order operation failed", zap.Error(err))
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
}

func actorID(c echo.Context) uint {
	id, _ := c.Get("actor_id").(uint)
	return id
}

package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"loyalty-platform/internal/model"
	"loyalty-platform/internal/order"
	"loyalty-platform/pkg/database"
	"loyalty-platform/pkg/jwtutil"
	"loyalty-platform/pkg/logger"
	"loyalty-platform/pkg/oauth"
)

// LoginRequest defines the credential login payload for admins and
// businesses
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// OAuthLoginRequest defines the provider-token login payload for customers
type OAuthLoginRequest struct {
	Provider string `json:"provider" validate:"required,oneof=google apple"`
	Token    string `json:"token" validate:"required"`
}

// AdminLogin authenticates a platform administrator
func AdminLogin(c echo.Context) error {
	log := logger.FromContext(c)

	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	var admin model.AdminUser
	result := database.GetDB().Where("email = ?", req.Email).First(&admin)
	if result.Error != nil {
		log.Warn("Admin login with unknown email", zap.String("email", req.Email))
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid email or password"})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(req.Password)); err != nil {
		log.Warn("Admin login with wrong password", zap.String("email", req.Email))
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid email or password"})
	}

	token, err := jwtutil.GenerateToken(admin.Email, admin.ID, jwtutil.RoleAdmin)
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to generate token"})
	}

	log.Info("Admin logged in", zap.Uint("admin_id", admin.ID))
	recordAuthAudit(c, "Admin logged in", nil, nil)
	return c.JSON(http.StatusOK, echo.Map{
		"token": token,
		"admin": admin,
	})
}

// BusinessLogin authenticates a business account
func BusinessLogin(c echo.Context) error {
	log := logger.FromContext(c)

	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	var business model.Business
	result := database.GetDB().Where("email = ?", req.Email).First(&business)
	if result.Error != nil {
		log.Warn("Business login with unknown email", zap.String("email", req.Email))
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid email or password"})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(business.Password), []byte(req.Password)); err != nil {
		log.Warn("Business login with wrong password", zap.String("email", req.Email))
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid email or password"})
	}

	if !business.IsActive {
		log.Warn("Deactivated business attempted login", zap.Uint("business_id", business.ID))
		return c.JSON(http.StatusForbidden, echo.Map{"error": "account is deactivated"})
	}

	token, err := jwtutil.GenerateToken(business.Email, business.ID, jwtutil.RoleBusiness)
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to generate token"})
	}

	log.Info("Business logged in", zap.Uint("business_id", business.ID))
	recordAuthAudit(c, "Business logged in", &business.ID, nil)
	return c.JSON(http.StatusOK, echo.Map{
		"token":    token,
		"business": business,
	})
}

// CustomerOAuthLogin authenticates a customer with a Google or Apple token,
// creating the account on first login
func CustomerOAuthLogin(c echo.Context) error {
	log := logger.FromContext(c)

	var req OAuthLoginRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	var (
		identity *oauth.Identity
		err      error
	)
	switch req.Provider {
	case "google":
		identity, err = oauthClient.VerifyGoogleToken(req.Token)
	case "apple":
		identity, err = oauthClient.VerifyAppleToken(req.Token)
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unsupported provider"})
	}
	if err != nil {
		log.Warn("OAuth token verification failed",
			zap.String("provider", req.Provider),
			zap.Error(err))
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid provider token"})
	}

	db := database.GetDB()
	var customer model.Customer
	result := db.Where("provider = ? AND provider_id = ?", identity.Provider, identity.ProviderID).First(&customer)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		customer = model.Customer{
			Name:       identity.Name,
			Email:      identity.Email,
			AvatarURL:  identity.AvatarURL,
			Provider:   identity.Provider,
			ProviderID: identity.ProviderID,
			IsActive:   true,
		}
		if err := db.Create(&customer).Error; err != nil {
			log.Error("Failed to create customer", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create account"})
		}
		log.Info("Customer account created",
			zap.Uint("customer_id", customer.ID),
			zap.String("provider", identity.Provider))
	} else if result.Error != nil {
		log.Error("Failed to look up customer", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}

	if !customer.IsActive {
		log.Warn("Deactivated customer attempted login", zap.Uint("customer_id", customer.ID))
		return c.JSON(http.StatusForbidden, echo.Map{"error": "account is deactivated"})
	}

	token, err := jwtutil.GenerateToken(customer.Email, customer.ID, jwtutil.RoleUser)
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to generate token"})
	}

	log.Info("Customer logged in", zap.Uint("customer_id", customer.ID))
	recordAuthAudit(c, "Customer logged in", nil, &customer.ID)
	return c.JSON(http.StatusOK, echo.Map{
		"token":    token,
		"customer": customer,
	})
}

func recordAuthAudit(c echo.Context, message string, businessID, customerID *uint) {
	auditor.Record(c.Request().Context(), order.AuditEntry{
		Level:      model.AuditLevelInfo,
		Category:   model.AuditCategoryAuth,
		Message:    message,
		BusinessID: businessID,
		CustomerID: customerID,
		Metadata: map[string]interface{}{
			"ip_address": c.RealIP(),
			"user_agent": c.Request().UserAgent(),
		},
	})
}

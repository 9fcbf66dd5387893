package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/thinhchuht/ResiBuy-sub001/middleware"
	"github.com/thinhchuht/ResiBuy-sub001/models"
	"github.com/thinhchuht/ResiBuy-sub001/pkg/apperrors"
	"github.com/thinhchuht/ResiBuy-sub001/services"
)

// VNPayController exposes the online payment path: URL creation, the gateway
// callback, and token verification/invalidation for the browser.
type VNPayController struct {
	Service *services.CheckoutService
	Logger  *zap.Logger
}

// NewVNPayController creates a new VNPayController.
func NewVNPayController(service *services.CheckoutService, logger *zap.Logger) *VNPayController {
	return &VNPayController{Service: service, Logger: logger}
}

// CreatePayment handles POST /vnpay/create-payment.
func (vc *VNPayController) CreatePayment(c *gin.Context) {
	var req models.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.ErrBadRequest.Wrap(err))
		return
	}

	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.Error(apperrors.ErrUnauthorized.Wrap(err))
		return
	}
	req.UserID = userID

	paymentURL, err := vc.Service.CreatePaymentURL(c.Request.Context(), &req, c.ClientIP())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"paymentUrl": paymentURL})
}

// PaymentCallback handles GET /vnpay/payment-callback. The gateway never gets
// JSON back, only a redirect to one of the two front-end routes.
func (vc *VNPayController) PaymentCallback(c *gin.Context) {
	redirectURL := vc.Service.HandleCallback(c.Request.Context(), c.Request.URL.Query())
	c.Redirect(http.StatusFound, redirectURL)
}

// VerifyToken handles GET /vnpay/verify-payment-token.
func (vc *VNPayController) VerifyToken(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusOK, gin.H{"isValid": false})
		return
	}

	valid, err := vc.Service.VerifyToken(c.Request.Context(), token)
	if err != nil {
		vc.Logger.Error("Token verification failed", zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"isValid": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{"isValid": valid})
}

// InvalidateToken handles POST /vnpay/invalidate-payment-token.
func (vc *VNPayController) InvalidateToken(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusOK, gin.H{"success": false})
		return
	}

	if err := vc.Service.InvalidateToken(c.Request.Context(), token); err != nil {
		vc.Logger.Error("Token invalidation failed", zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"success": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

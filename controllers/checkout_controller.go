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

// CheckoutController exposes the cash checkout path and explicit cancellation.
type CheckoutController struct {
	Service *services.CheckoutService
	Logger  *zap.Logger
}

// NewCheckoutController creates a new CheckoutController.
func NewCheckoutController(service *services.CheckoutService, logger *zap.Logger) *CheckoutController {
	return &CheckoutController{Service: service, Logger: logger}
}

// Checkout handles POST /checkout.
func (cc *CheckoutController) Checkout(c *gin.Context) {
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

	if err := cc.Service.Checkout(c.Request.Context(), &req); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Cancel handles POST /checkout/cancel.
func (cc *CheckoutController) Cancel(c *gin.Context) {
	var req struct {
		CartID string `json:"cart_id" binding:"required,uuid"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.ErrBadRequest.Wrap(err))
		return
	}

	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.Error(apperrors.ErrUnauthorized.Wrap(err))
		return
	}

	if err := cc.Service.CancelCheckout(c.Request.Context(), req.CartID, userID); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

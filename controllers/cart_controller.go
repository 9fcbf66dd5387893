package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/thinhchuht/ResiBuy-sub001/middleware"
	"github.com/thinhchuht/ResiBuy-sub001/models"
	"github.com/thinhchuht/ResiBuy-sub001/pkg/apperrors"
	"github.com/thinhchuht/ResiBuy-sub001/repository"
)

// CartController exposes read access to the cart row so clients can inspect
// the checkout flag and expiry.
type CartController struct {
	Repo   repository.CartRepository
	Logger *zap.Logger
}

// NewCartController creates a new CartController.
func NewCartController(repo repository.CartRepository, logger *zap.Logger) *CartController {
	return &CartController{Repo: repo, Logger: logger}
}

// GetMyCart handles GET /carts/me. Every user owns exactly one cart; it is
// created the first time the user asks for it.
func (cc *CartController) GetMyCart(c *gin.Context) {
	rawUserID, err := middleware.GetUserID(c)
	if err != nil {
		c.Error(apperrors.ErrUnauthorized.Wrap(err))
		return
	}
	userID, err := uuid.Parse(rawUserID)
	if err != nil {
		c.Error(apperrors.ErrBadRequest.Wrap(err))
		return
	}

	cart, err := cc.Repo.FindByUserID(c.Request.Context(), userID)
	if err != nil {
		cc.Logger.Error("Failed to load cart", zap.String("user_id", rawUserID), zap.Error(err))
		c.Error(apperrors.ErrInternalServer.Wrap(err))
		return
	}
	if cart == nil {
		cart = &models.Cart{ID: uuid.New(), UserID: userID, ConcurrencyStamp: uuid.New()}
		if err := cc.Repo.Create(c.Request.Context(), cart); err != nil {
			cc.Logger.Error("Failed to create cart", zap.String("user_id", rawUserID), zap.Error(err))
			c.Error(apperrors.ErrInternalServer.Wrap(err))
			return
		}
		cc.Logger.Info("Cart created", zap.String("cart_id", cart.ID.String()), zap.String("user_id", rawUserID))
	}

	c.JSON(http.StatusOK, cart)
}

// GetCart handles GET /carts/:id.
func (cc *CartController) GetCart(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.Error(apperrors.ErrBadRequest.Wrap(err))
		return
	}

	cart, err := cc.Repo.FindByID(c.Request.Context(), id)
	if err != nil {
		cc.Logger.Error("Failed to load cart", zap.String("cart_id", id.String()), zap.Error(err))
		c.Error(apperrors.ErrInternalServer.Wrap(err))
		return
	}
	if cart == nil {
		c.Error(apperrors.ErrCartNotFound)
		return
	}

	c.JSON(http.StatusOK, cart)
}

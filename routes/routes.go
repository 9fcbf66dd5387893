package routes

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/thinhchuht/ResiBuy-sub001/controllers"
	"github.com/thinhchuht/ResiBuy-sub001/middleware"
)

// Register wires all endpoints. The gateway callback and token endpoints stay
// outside the auth group: the gateway and a just-redirected browser carry no
// user header.
func Register(
	r *gin.Engine,
	checkout *controllers.CheckoutController,
	vnpay *controllers.VNPayController,
	cart *controllers.CartController,
	voucher *controllers.VoucherController,
	health gin.HandlerFunc,
) {
	r.GET("/healthz", health)

	r.GET("/vnpay/payment-callback", vnpay.PaymentCallback)
	r.GET("/vnpay/verify-payment-token", vnpay.VerifyToken)
	r.POST("/vnpay/invalidate-payment-token", vnpay.InvalidateToken)

	authed := r.Group("/")
	authed.Use(middleware.AuthMiddleware())
	{
		authed.GET("/carts/me", cart.GetMyCart)
		authed.GET("/carts/:id", cart.GetCart)
		authed.GET("/vouchers", voucher.ListActive)

		// Lock churn is bounded per IP on the two initiation endpoints.
		limited := authed.Group("/")
		limited.Use(middleware.RateLimitMiddleware(rate.Limit(5), 10))
		{
			limited.POST("/checkout", checkout.Checkout)
			limited.POST("/vnpay/create-payment", vnpay.CreatePayment)
		}

		authed.POST("/checkout/cancel", checkout.Cancel)
	}
}

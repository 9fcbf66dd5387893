package models

import "time"

// CheckoutItem is a single cart line in a checkout request.
type CheckoutItem struct {
	ProductID string  `json:"product_id" binding:"required"`
	Quantity  int     `json:"quantity" binding:"required,gt=0"`
	Price     float64 `json:"price" binding:"gte=0"`
}

// CheckoutRequest is the full payload a client submits to check out a cart. The
// same payload is parked in the session store for online payments and carried on
// the checkout event for the order pipeline.
type CheckoutRequest struct {
	CartID      string         `json:"cart_id" binding:"required,uuid"`
	UserID      string         `json:"user_id"`
	Items       []CheckoutItem `json:"items" binding:"required,min=1,dive"`
	VoucherIDs  []string       `json:"voucher_ids"`
	AddressID   string         `json:"address_id" binding:"required"`
	GrandTotal  float64        `json:"grand_total" binding:"required,gt=0"`
	PaymentNote string         `json:"payment_note"`
	PaymentType string         `json:"payment_type"` // "cash" or "vnpay"
}

// CheckoutEvent is the message published to the checkout topic once a checkout
// is locked, validated and (for online payments) settled by the gateway. The
// order-materialization consumer owns everything after this point.
type CheckoutEvent struct {
	Event     string          `json:"event"` // "checkout.completed"
	PaymentID string          `json:"payment_id,omitempty"`
	Checkout  CheckoutRequest `json:"checkout"`
	Timestamp time.Time       `json:"timestamp"`
}

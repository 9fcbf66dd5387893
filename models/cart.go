package models

import (
	"time"

	"github.com/google/uuid"
)

// Cart is the persistent cart row. Checkout exclusivity is enforced through the
// ConcurrencyStamp: every successful write replaces the stamp, and writers must
// present the stamp they read for the update to apply.
type Cart struct {
	ID                  uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID              uuid.UUID  `gorm:"type:uuid;index;not null" json:"user_id"`
	IsCheckingOut       bool       `gorm:"not null;default:false" json:"is_checking_out"`
	ExpiredCheckoutTime *time.Time `json:"expired_checkout_time,omitempty"`
	ConcurrencyStamp    uuid.UUID  `gorm:"type:uuid;not null" json:"-"`
	CreatedAt           time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// CheckoutLocked reports whether the cart currently holds a live checkout lock.
// An expired lock counts as released; reclaiming it is the next writer's job.
func (c *Cart) CheckoutLocked(now time.Time) bool {
	return c.IsCheckingOut && c.ExpiredCheckoutTime != nil && c.ExpiredCheckoutTime.After(now)
}

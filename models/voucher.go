package models

import (
	"time"

	"github.com/google/uuid"
)

// Voucher is a store promotion a checkout may reference. The gate here only
// reads it; consumption (decrementing quantity) happens in the order pipeline.
type Voucher struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	StoreID   uuid.UUID `gorm:"type:uuid;index" json:"store_id"`
	Code      string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"code"`
	Quantity  int       `gorm:"not null;default:0" json:"quantity"`
	UsedCount int       `gorm:"not null;default:0" json:"used_count"`
	StartDate time.Time `gorm:"not null" json:"start_date"`
	EndDate   time.Time `gorm:"not null" json:"end_date"`
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Usable reports whether the voucher can still back a new checkout at the
// given instant.
func (v *Voucher) Usable(now time.Time) bool {
	if !v.IsActive {
		return false
	}
	if now.Before(v.StartDate) || now.After(v.EndDate) {
		return false
	}
	if v.Quantity > 0 && v.UsedCount >= v.Quantity {
		return false
	}
	return true
}

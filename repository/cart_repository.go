package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/thinhchuht/ResiBuy-sub001/models"
)

// CartRepository defines cart data access. UpdateCheckoutState is the
// compare-and-swap primitive the checkout lock is built on.
type CartRepository interface {
	Create(ctx context.Context, cart *models.Cart) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Cart, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	// UpdateCheckoutState writes the checkout flag and expiry, guarded by the
	// concurrency stamp read beforehand. It returns false when no row matched,
	// meaning a concurrent writer replaced the stamp first.
	UpdateCheckoutState(ctx context.Context, cartID, expectedStamp uuid.UUID, isCheckingOut bool, expiredAt *time.Time) (bool, error)
}

// GormCartRepository implements CartRepository using GORM.
type GormCartRepository struct {
	db *gorm.DB
}

// NewGormCartRepository creates a new GormCartRepository.
func NewGormCartRepository(db *gorm.DB) CartRepository {
	return &GormCartRepository{db: db}
}

// Create inserts a new cart row.
func (r *GormCartRepository) Create(ctx context.Context, cart *models.Cart) error {
	if cart.ID == uuid.Nil {
		cart.ID = uuid.New()
	}
	if cart.ConcurrencyStamp == uuid.Nil {
		cart.ConcurrencyStamp = uuid.New()
	}
	return r.db.WithContext(ctx).Create(cart).Error
}

// FindByID retrieves a cart by its id.
func (r *GormCartRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).First(&cart, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// FindByUserID retrieves the cart belonging to a user.
func (r *GormCartRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).First(&cart, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// UpdateCheckoutState performs a single conditional UPDATE keyed on the
// concurrency stamp. Zero rows affected means the stamp went stale.
func (r *GormCartRepository) UpdateCheckoutState(ctx context.Context, cartID, expectedStamp uuid.UUID, isCheckingOut bool, expiredAt *time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Cart{}).
		Where("id = ? AND concurrency_stamp = ?", cartID, expectedStamp).
		Updates(map[string]interface{}{
			"is_checking_out":       isCheckingOut,
			"expired_checkout_time": expiredAt,
			"concurrency_stamp":     uuid.New(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

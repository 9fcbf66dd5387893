package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/thinhchuht/ResiBuy-sub001/models"
)

// VoucherRepository defines voucher data access.
type VoucherRepository interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Voucher, error)
	FindActive(ctx context.Context, page, limit int) ([]models.Voucher, int64, error)
}

// GormVoucherRepository implements VoucherRepository using GORM.
type GormVoucherRepository struct {
	db *gorm.DB
}

// NewGormVoucherRepository creates a new GormVoucherRepository.
func NewGormVoucherRepository(db *gorm.DB) VoucherRepository {
	return &GormVoucherRepository{db: db}
}

// FindByIDs retrieves vouchers by id in one batch. Missing ids are simply
// absent from the result; the caller decides what that means.
func (r *GormVoucherRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Voucher, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var vouchers []models.Voucher
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&vouchers).Error
	if err != nil {
		return nil, err
	}
	return vouchers, nil
}

// FindActive retrieves paginated active vouchers.
func (r *GormVoucherRepository) FindActive(ctx context.Context, page, limit int) ([]models.Voucher, int64, error) {
	var vouchers []models.Voucher
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Voucher{}).Where("is_active = ?", true)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.
		Offset(offset).
		Limit(limit).
		Order("created_at DESC").
		Find(&vouchers).Error; err != nil {
		return nil, 0, err
	}

	return vouchers, total, nil
}

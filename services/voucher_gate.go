package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/thinhchuht/ResiBuy-sub001/models"
	"github.com/thinhchuht/ResiBuy-sub001/pkg/apperrors"
	"github.com/thinhchuht/ResiBuy-sub001/repository"
)

// VoucherGate confirms every voucher on a pending checkout is usable before
// the cart is locked. The check is advisory: authoritative consumption happens
// in the order pipeline, this gate just avoids locking a doomed checkout.
type VoucherGate struct {
	repo repository.VoucherRepository
	now  func() time.Time
}

// NewVoucherGate creates a new VoucherGate.
func NewVoucherGate(repo repository.VoucherRepository) *VoucherGate {
	return &VoucherGate{repo: repo, now: time.Now}
}

// CheckActive batch-loads the referenced vouchers and fails fast on the first
// one that is missing, inactive, out of date range, or exhausted.
func (g *VoucherGate) CheckActive(ctx context.Context, voucherIDs []string) error {
	if len(voucherIDs) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(voucherIDs))
	for _, raw := range voucherIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return apperrors.ErrVoucherNotUsable.WithMessage("Voucher id %q is not valid", raw)
		}
		ids = append(ids, id)
	}

	vouchers, err := g.repo.FindByIDs(ctx, ids)
	if err != nil {
		return apperrors.ErrInternalServer.Wrap(err)
	}

	byID := make(map[uuid.UUID]*models.Voucher, len(vouchers))
	for i := range vouchers {
		byID[vouchers[i].ID] = &vouchers[i]
	}

	now := g.now()
	for _, id := range ids {
		v, found := byID[id]
		if !found {
			return apperrors.ErrVoucherNotUsable.WithMessage("Voucher %s not found", id)
		}
		if !v.Usable(now) {
			return apperrors.ErrVoucherNotUsable.WithMessage("Voucher %s is inactive, expired or exhausted", v.Code)
		}
	}

	return nil
}

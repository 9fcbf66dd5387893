package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/thinhchuht/ResiBuy-sub001/pkg/apperrors"
	"github.com/thinhchuht/ResiBuy-sub001/repository"
)

// LockHandle is the proof of a successfully acquired checkout lock.
type LockHandle struct {
	CartID    uuid.UUID
	ExpiresAt time.Time
}

// CartLock arbitrates concurrent checkout attempts over a cart. Exclusivity
// rests entirely on the cart row's concurrency stamp: of two racing writers,
// exactly one update matches the stamp it read.
type CartLock struct {
	repo   repository.CartRepository
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
}

// NewCartLock creates a new CartLock with the given hold TTL.
func NewCartLock(repo repository.CartRepository, ttl time.Duration, logger *zap.Logger) *CartLock {
	return &CartLock{
		repo:   repo,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

// TryAcquire locks the cart for one checkout attempt. A live lock held by
// another request returns ErrCartCheckingOut; losing the stamp race returns
// ErrConcurrentModification, and the caller must restart from validation
// because the cart may have changed underneath it. An expired lock is
// reclaimed by the same conditional update, no cleanup pass needed.
func (l *CartLock) TryAcquire(ctx context.Context, cartID uuid.UUID) (*LockHandle, error) {
	cart, err := l.repo.FindByID(ctx, cartID)
	if err != nil {
		return nil, apperrors.ErrInternalServer.Wrap(err)
	}
	if cart == nil {
		return nil, apperrors.ErrCartNotFound
	}

	now := l.now()
	if cart.CheckoutLocked(now) {
		return nil, apperrors.ErrCartCheckingOut
	}

	expiresAt := now.Add(l.ttl)
	ok, err := l.repo.UpdateCheckoutState(ctx, cart.ID, cart.ConcurrencyStamp, true, &expiresAt)
	if err != nil {
		return nil, apperrors.ErrInternalServer.Wrap(err)
	}
	if !ok {
		l.logger.Warn("Cart lock lost stamp race", zap.String("cart_id", cartID.String()))
		return nil, apperrors.ErrConcurrentModification
	}

	return &LockHandle{CartID: cart.ID, ExpiresAt: expiresAt}, nil
}

// ReleaseOwned releases the lock only when the cart belongs to userID. It
// backs explicit client cancellation, where the caller is not the process
// that acquired the lock and must prove ownership first.
func (l *CartLock) ReleaseOwned(ctx context.Context, cartID, userID uuid.UUID) error {
	cart, err := l.repo.FindByID(ctx, cartID)
	if err != nil {
		return apperrors.ErrInternalServer.Wrap(err)
	}
	if cart == nil {
		return apperrors.ErrCartNotFound
	}
	if cart.UserID != userID {
		l.logger.Warn("Cart lock release denied for non-owner",
			zap.String("cart_id", cartID.String()),
			zap.String("user_id", userID.String()))
		return apperrors.ErrForbidden
	}
	return l.Release(ctx, cartID)
}

// Release clears the checkout flag. Retries absorb stamp races with readers
// that touched the row between our read and write; the row's logical state
// (unlocking) is the same whichever attempt lands.
func (l *CartLock) Release(ctx context.Context, cartID uuid.UUID) error {
	for attempt := 0; attempt < 3; attempt++ {
		cart, err := l.repo.FindByID(ctx, cartID)
		if err != nil {
			return apperrors.ErrInternalServer.Wrap(err)
		}
		if cart == nil {
			return apperrors.ErrCartNotFound
		}
		if !cart.IsCheckingOut {
			return nil
		}

		ok, err := l.repo.UpdateCheckoutState(ctx, cart.ID, cart.ConcurrencyStamp, false, nil)
		if err != nil {
			return apperrors.ErrInternalServer.Wrap(err)
		}
		if ok {
			return nil
		}
	}

	l.logger.Warn("Cart lock release kept losing stamp races", zap.String("cart_id", cartID.String()))
	return apperrors.ErrConcurrentModification
}

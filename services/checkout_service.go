package services

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/thinhchuht/ResiBuy-sub001/models"
	"github.com/thinhchuht/ResiBuy-sub001/pkg/apperrors"
)

// EventPublisher hands a finalized checkout to the order pipeline.
type EventPublisher interface {
	PublishCheckout(ctx context.Context, event models.CheckoutEvent) error
}

// PaymentGateway is the outward-facing slice of the VNPay client the checkout
// flow needs.
type PaymentGateway interface {
	BuildPaymentURL(amount float64, txnRef, orderInfo, clientIP string) string
	ValidateCallback(params url.Values) bool
	IsSuccess(params url.Values) bool
	TxnRef(params url.Values) string
}

// CheckoutService orchestrates the two checkout paths: cash checkouts publish
// directly, online checkouts bridge through the gateway redirect and its
// asynchronous callback. Validation always runs before the lock so invalid
// requests never hold the cart.
type CheckoutService struct {
	lock      *CartLock
	gate      *VoucherGate
	sessions  *CheckoutSessionStore
	tokens    *TokenBroker
	gateway   PaymentGateway
	publisher EventPublisher
	logger    *zap.Logger

	successURL string
	failureURL string
}

// NewCheckoutService wires the checkout orchestration.
func NewCheckoutService(
	lock *CartLock,
	gate *VoucherGate,
	sessions *CheckoutSessionStore,
	tokens *TokenBroker,
	gateway PaymentGateway,
	publisher EventPublisher,
	successURL, failureURL string,
	logger *zap.Logger,
) *CheckoutService {
	return &CheckoutService{
		lock:       lock,
		gate:       gate,
		sessions:   sessions,
		tokens:     tokens,
		gateway:    gateway,
		publisher:  publisher,
		logger:     logger,
		successURL: successURL,
		failureURL: failureURL,
	}
}

// Checkout runs the cash path: validate vouchers, lock the cart, publish the
// event. A publish failure releases the lock before surfacing the error, so a
// dead broker never wedges the cart until TTL.
func (s *CheckoutService) Checkout(ctx context.Context, req *models.CheckoutRequest) error {
	if err := s.gate.CheckActive(ctx, req.VoucherIDs); err != nil {
		return err
	}

	cartID, err := uuid.Parse(req.CartID)
	if err != nil {
		return apperrors.ErrBadRequest.Wrap(err)
	}

	if _, err := s.lock.TryAcquire(ctx, cartID); err != nil {
		return err
	}

	event := models.CheckoutEvent{
		Event:     "checkout.completed",
		Checkout:  *req,
		Timestamp: time.Now().UTC(),
	}

	if err := s.publisher.PublishCheckout(ctx, event); err != nil {
		if relErr := s.lock.Release(ctx, cartID); relErr != nil {
			s.logger.Error("Failed to release cart lock after publish failure",
				zap.String("cart_id", req.CartID),
				zap.Error(relErr),
			)
		}
		return apperrors.ErrPublishFailed.Wrap(err)
	}

	if err := s.lock.Release(ctx, cartID); err != nil {
		// The event is already on its way; the lock will lapse at TTL.
		s.logger.Warn("Cart lock release failed after publish",
			zap.String("cart_id", req.CartID),
			zap.Error(err),
		)
	}

	return nil
}

// CreatePaymentURL runs the front half of the online path: validate, lock,
// park the payload and hand back the signed gateway URL.
func (s *CheckoutService) CreatePaymentURL(ctx context.Context, req *models.CheckoutRequest, clientIP string) (string, error) {
	if err := s.gate.CheckActive(ctx, req.VoucherIDs); err != nil {
		return "", err
	}

	cartID, err := uuid.Parse(req.CartID)
	if err != nil {
		return "", apperrors.ErrBadRequest.Wrap(err)
	}

	if _, err := s.lock.TryAcquire(ctx, cartID); err != nil {
		return "", err
	}

	paymentID := uuid.NewString()
	if err := s.sessions.Put(ctx, paymentID, req); err != nil {
		if relErr := s.lock.Release(ctx, cartID); relErr != nil {
			s.logger.Error("Failed to release cart lock after session store failure",
				zap.String("cart_id", req.CartID),
				zap.Error(relErr),
			)
		}
		return "", apperrors.ErrInternalServer.Wrap(err)
	}

	orderInfo := fmt.Sprintf("Thanh toan don hang cho gio %s", req.CartID)
	paymentURL := s.gateway.BuildPaymentURL(req.GrandTotal, paymentID, orderInfo, clientIP)

	s.logger.Info("Payment URL created",
		zap.String("cart_id", req.CartID),
		zap.String("payment_id", paymentID),
	)
	return paymentURL, nil
}

// HandleCallback runs the back half of the online path. It always produces a
// redirect URL to exactly one of the two front-end routes, each carrying a
// fresh token; the browser never sees gateway response codes, and a missing
// session looks identical to a bad signature.
func (s *CheckoutService) HandleCallback(ctx context.Context, params url.Values) string {
	if !s.gateway.ValidateCallback(params) {
		s.logger.Warn("Callback signature invalid")
		return s.redirect(ctx, s.failureURL)
	}

	paymentID := s.gateway.TxnRef(params)
	req, err := s.sessions.Get(ctx, paymentID)
	if err != nil {
		s.logger.Warn("Callback for unknown or expired session",
			zap.String("payment_id", paymentID),
			zap.Error(err),
		)
		return s.redirect(ctx, s.failureURL)
	}

	cartID, err := uuid.Parse(req.CartID)
	if err != nil {
		s.logger.Error("Session payload carries invalid cart id",
			zap.String("payment_id", paymentID),
			zap.String("cart_id", req.CartID),
		)
		return s.redirect(ctx, s.failureURL)
	}

	if !s.gateway.IsSuccess(params) {
		// The gateway declined; free the cart so the user can retry at once.
		if relErr := s.lock.Release(ctx, cartID); relErr != nil {
			s.logger.Warn("Failed to release cart lock after gateway decline",
				zap.String("cart_id", req.CartID),
				zap.Error(relErr),
			)
		}
		s.logger.Info("Gateway declined payment", zap.String("payment_id", paymentID))
		return s.redirect(ctx, s.failureURL)
	}

	event := models.CheckoutEvent{
		Event:     "checkout.completed",
		PaymentID: paymentID,
		Checkout:  *req,
		Timestamp: time.Now().UTC(),
	}

	if err := s.publisher.PublishCheckout(ctx, event); err != nil {
		if relErr := s.lock.Release(ctx, cartID); relErr != nil {
			s.logger.Error("Failed to release cart lock after publish failure",
				zap.String("cart_id", req.CartID),
				zap.Error(relErr),
			)
		}
		return s.redirect(ctx, s.failureURL)
	}

	if err := s.sessions.Remove(ctx, paymentID); err != nil {
		s.logger.Warn("Failed to remove consumed checkout session",
			zap.String("payment_id", paymentID),
			zap.Error(err),
		)
	}
	if err := s.lock.Release(ctx, cartID); err != nil {
		s.logger.Warn("Cart lock release failed after publish",
			zap.String("cart_id", req.CartID),
			zap.Error(err),
		)
	}

	s.logger.Info("Checkout settled",
		zap.String("cart_id", req.CartID),
		zap.String("payment_id", paymentID),
	)
	return s.redirect(ctx, s.successURL)
}

// VerifyToken reports whether a payment token is still valid.
func (s *CheckoutService) VerifyToken(ctx context.Context, token string) (bool, error) {
	return s.tokens.Verify(ctx, token)
}

// InvalidateToken removes a consumed payment token.
func (s *CheckoutService) InvalidateToken(ctx context.Context, token string) error {
	return s.tokens.Invalidate(ctx, token)
}

// CancelCheckout releases the cart lock on explicit client cancellation.
// Only the cart's owner may cancel; anyone else could otherwise break a
// stranger's in-flight checkout.
func (s *CheckoutService) CancelCheckout(ctx context.Context, rawCartID, rawUserID string) error {
	cartID, err := uuid.Parse(rawCartID)
	if err != nil {
		return apperrors.ErrBadRequest.Wrap(err)
	}
	userID, err := uuid.Parse(rawUserID)
	if err != nil {
		return apperrors.ErrBadRequest.Wrap(err)
	}
	return s.lock.ReleaseOwned(ctx, cartID, userID)
}

// redirect issues a fresh token and appends it to the front-end route. Token
// issuance failing must not strand the browser at the gateway, so the
// redirect still happens, just tokenless.
func (s *CheckoutService) redirect(ctx context.Context, base string) string {
	token, err := s.tokens.Issue(ctx)
	if err != nil {
		s.logger.Error("Failed to issue payment token", zap.Error(err))
		return base
	}
	return base + "?token=" + url.QueryEscape(token)
}

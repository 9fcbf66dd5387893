package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/thinhchuht/ResiBuy-sub001/models"
	"github.com/thinhchuht/ResiBuy-sub001/pkg/apperrors"
)

const sessionKeyPrefix = "checkout:session:"

// CheckoutSessionStore parks the full checkout payload between the redirect to
// the gateway and its asynchronous callback, keyed by the opaque payment id
// the gateway round-trips.
type CheckoutSessionStore struct {
	cache Cache
	ttl   time.Duration
}

// NewCheckoutSessionStore creates a new CheckoutSessionStore. The TTL should
// not be shorter than the gateway's own session timeout.
func NewCheckoutSessionStore(cache Cache, ttl time.Duration) *CheckoutSessionStore {
	return &CheckoutSessionStore{cache: cache, ttl: ttl}
}

// Put stores the payload under the payment id.
func (s *CheckoutSessionStore) Put(ctx context.Context, paymentID string, payload *models.CheckoutRequest) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, sessionKeyPrefix+paymentID, data, s.ttl)
}

// Get reads the payload back. An expired or unknown payment id returns
// ErrSessionNotFound.
func (s *CheckoutSessionStore) Get(ctx context.Context, paymentID string) (*models.CheckoutRequest, error) {
	data, found, err := s.cache.Get(ctx, sessionKeyPrefix+paymentID)
	if err != nil {
		return nil, apperrors.ErrInternalServer.Wrap(err)
	}
	if !found {
		return nil, apperrors.ErrSessionNotFound
	}

	var payload models.CheckoutRequest
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, apperrors.ErrInternalServer.Wrap(err)
	}
	return &payload, nil
}

// Remove invalidates the session so a stale payment id cannot replay a
// finished checkout.
func (s *CheckoutSessionStore) Remove(ctx context.Context, paymentID string) error {
	return s.cache.Del(ctx, sessionKeyPrefix+paymentID)
}

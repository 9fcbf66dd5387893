package services

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const tokenKeyPrefix = "checkout:ptoken:"

// TokenBroker issues the short-lived tokens the browser presents to the
// verification endpoint after a gateway round trip. The token carries no
// meaning beyond "a checkout outcome was recorded recently"; gateway response
// details never reach the browser.
type TokenBroker struct {
	cache Cache
	ttl   time.Duration
	now   func() time.Time
}

// NewTokenBroker creates a new TokenBroker.
func NewTokenBroker(cache Cache, ttl time.Duration) *TokenBroker {
	return &TokenBroker{cache: cache, ttl: ttl, now: time.Now}
}

// Issue creates a fresh token valid for the broker's TTL.
func (b *TokenBroker) Issue(ctx context.Context) (string, error) {
	token := uuid.NewString()
	expiresAt := b.now().Add(b.ttl)

	if err := b.cache.Set(ctx, tokenKeyPrefix+token, []byte(expiresAt.Format(time.RFC3339Nano)), b.ttl); err != nil {
		return "", err
	}
	return token, nil
}

// Verify reports whether the token exists and has not expired. Verification
// does not consume the token, so the browser may poll.
func (b *TokenBroker) Verify(ctx context.Context, token string) (bool, error) {
	data, found, err := b.cache.Get(ctx, tokenKeyPrefix+token)
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}

	expiresAt, err := time.Parse(time.RFC3339Nano, string(data))
	if err != nil {
		return false, nil
	}
	return b.now().Before(expiresAt), nil
}

// Invalidate removes the token once the client has consumed the outcome.
func (b *TokenBroker) Invalidate(ctx context.Context, token string) error {
	return b.cache.Del(ctx, tokenKeyPrefix+token)
}

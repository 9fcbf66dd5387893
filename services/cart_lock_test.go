package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/thinhchuht/ResiBuy-sub001/models"
	"github.com/thinhchuht/ResiBuy-sub001/pkg/apperrors"
)

func newTestLock(repo *mockCartRepo, ttl time.Duration) *CartLock {
	logger, _ := zap.NewDevelopment()
	return NewCartLock(repo, ttl, logger)
}

func seedCart(repo *mockCartRepo) uuid.UUID {
	id := uuid.New()
	repo.seed(&models.Cart{ID: id, UserID: uuid.New()})
	return id
}

func TestTryAcquire_Success(t *testing.T) {
	repo := newMockCartRepo()
	lock := newTestLock(repo, 15*time.Minute)
	cartID := seedCart(repo)

	handle, err := lock.TryAcquire(context.Background(), cartID)
	require.NoError(t, err)
	require.NotNil(t, handle)
	assert.Equal(t, cartID, handle.CartID)

	stored := repo.get(cartID)
	assert.True(t, stored.IsCheckingOut)
	require.NotNil(t, stored.ExpiredCheckoutTime)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), *stored.ExpiredCheckoutTime, time.Minute)
}

func TestTryAcquire_SecondAttemptConflicts(t *testing.T) {
	repo := newMockCartRepo()
	lock := newTestLock(repo, 15*time.Minute)
	cartID := seedCart(repo)

	_, err := lock.TryAcquire(context.Background(), cartID)
	require.NoError(t, err)

	_, err = lock.TryAcquire(context.Background(), cartID)
	assert.ErrorIs(t, err, apperrors.ErrCartCheckingOut)
}

func TestTryAcquire_CartNotFound(t *testing.T) {
	repo := newMockCartRepo()
	lock := newTestLock(repo, 15*time.Minute)

	_, err := lock.TryAcquire(context.Background(), uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrCartNotFound)
}

func TestTryAcquire_StampRace(t *testing.T) {
	repo := newMockCartRepo()
	lock := newTestLock(repo, 15*time.Minute)
	cartID := seedCart(repo)

	// A concurrent writer replaces the stamp between our read and write.
	raced := false
	repo.onFind = func(_ *models.Cart) {
		if !raced {
			raced = true
			repo.mu.Lock()
			repo.carts[cartID].ConcurrencyStamp = uuid.New()
			repo.mu.Unlock()
		}
	}

	_, err := lock.TryAcquire(context.Background(), cartID)
	assert.ErrorIs(t, err, apperrors.ErrConcurrentModification)
}

func TestTryAcquire_ConcurrentPairs(t *testing.T) {
	repo := newMockCartRepo()
	lock := newTestLock(repo, 15*time.Minute)
	cartID := seedCart(repo)

	const attempts = 16
	var wg sync.WaitGroup
	errs := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = lock.TryAcquire(context.Background(), cartID)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		isConflict := err == apperrors.ErrCartCheckingOut || err == apperrors.ErrConcurrentModification
		assert.True(t, isConflict, "unexpected error: %v", err)
	}
	assert.Equal(t, 1, succeeded, "exactly one concurrent attempt must win")
}

func TestTryAcquire_ExpiredLockIsReclaimable(t *testing.T) {
	repo := newMockCartRepo()
	lock := newTestLock(repo, 15*time.Minute)
	cartID := seedCart(repo)

	_, err := lock.TryAcquire(context.Background(), cartID)
	require.NoError(t, err)

	// No explicit release; the next acquisition simply happens after the TTL.
	lock.now = func() time.Time { return time.Now().Add(16 * time.Minute) }

	handle, err := lock.TryAcquire(context.Background(), cartID)
	require.NoError(t, err)
	assert.NotNil(t, handle)
}

func TestRelease_ClearsLock(t *testing.T) {
	repo := newMockCartRepo()
	lock := newTestLock(repo, 15*time.Minute)
	cartID := seedCart(repo)

	_, err := lock.TryAcquire(context.Background(), cartID)
	require.NoError(t, err)

	require.NoError(t, lock.Release(context.Background(), cartID))

	stored := repo.get(cartID)
	assert.False(t, stored.IsCheckingOut)
	assert.Nil(t, stored.ExpiredCheckoutTime)

	// Cart is immediately lockable again.
	_, err = lock.TryAcquire(context.Background(), cartID)
	assert.NoError(t, err)
}

func TestRelease_IdempotentOnUnlockedCart(t *testing.T) {
	repo := newMockCartRepo()
	lock := newTestLock(repo, 15*time.Minute)
	cartID := seedCart(repo)

	assert.NoError(t, lock.Release(context.Background(), cartID))
}

func TestReleaseOwned_OwnerUnlocks(t *testing.T) {
	repo := newMockCartRepo()
	lock := newTestLock(repo, 15*time.Minute)

	owner := uuid.New()
	cartID := uuid.New()
	repo.seed(&models.Cart{ID: cartID, UserID: owner})

	_, err := lock.TryAcquire(context.Background(), cartID)
	require.NoError(t, err)

	require.NoError(t, lock.ReleaseOwned(context.Background(), cartID, owner))
	assert.False(t, repo.get(cartID).IsCheckingOut)
}

func TestReleaseOwned_StrangerForbidden(t *testing.T) {
	repo := newMockCartRepo()
	lock := newTestLock(repo, 15*time.Minute)

	cartID := uuid.New()
	repo.seed(&models.Cart{ID: cartID, UserID: uuid.New()})

	_, err := lock.TryAcquire(context.Background(), cartID)
	require.NoError(t, err)

	err = lock.ReleaseOwned(context.Background(), cartID, uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	assert.True(t, repo.get(cartID).IsCheckingOut)
}

func TestReleaseOwned_MissingCart(t *testing.T) {
	repo := newMockCartRepo()
	lock := newTestLock(repo, 15*time.Minute)

	err := lock.ReleaseOwned(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrCartNotFound)
}

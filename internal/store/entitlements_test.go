package store

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"craftmarket/internal/market"
)

func TestGrant_Idempotent(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()
	author := createTestUser(t, s, "author")
	buyer := createTestUser(t, s, "buyer")
	pkg := createTestPackage(t, s, author.ID, "Once", 4.99)

	first, created, err := s.Grant(ctx, buyer.ID, pkg.ID)
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := s.Grant(ctx, buyer.ID, pkg.ID)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID, "re-grant returns the existing record")
}

func TestGrant_UnknownPackage(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	buyer := createTestUser(t, s, "buyer")

	_, _, err := s.Grant(context.Background(), buyer.ID, 999)
	assert.ErrorIs(t, err, market.ErrNotFound)
}

func TestGrant_ConcurrentExactlyOnce(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()
	author := createTestUser(t, s, "author")
	buyer := createTestUser(t, s, "buyer")
	pkg := createTestPackage(t, s, author.ID, "Raced", 4.99)

	const callers = 25
	var wg sync.WaitGroup
	var createdCount int64
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, created, err := s.Grant(ctx, buyer.ID, pkg.ID)
			assert.NoError(t, err)
			if created {
				atomic.AddInt64(&createdCount, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), createdCount)

	var rows int
	require.NoError(t, s.DB.Get(&rows,
		`SELECT COUNT(*) FROM purchases WHERE user_id = ? AND package_id = ?`, buyer.ID, pkg.ID))
	assert.Equal(t, 1, rows)
}

func TestOwns(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()
	author := createTestUser(t, s, "author")
	buyer := createTestUser(t, s, "buyer")
	pkg := createTestPackage(t, s, author.ID, "Owned", 1)

	owned, err := s.Owns(ctx, author.ID, pkg.ID)
	require.NoError(t, err)
	assert.True(t, owned, "authorship grants ownership")

	owned, err = s.Owns(ctx, buyer.ID, pkg.ID)
	require.NoError(t, err)
	assert.False(t, owned)

	grantTestPurchase(t, s, buyer.ID, pkg.ID)
	owned, err = s.Owns(ctx, buyer.ID, pkg.ID)
	require.NoError(t, err)
	assert.True(t, owned)

	_, err = s.Owns(ctx, buyer.ID, 999)
	assert.ErrorIs(t, err, market.ErrNotFound)
}

func TestListPurchases(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()
	author := createTestUser(t, s, "author")
	buyer := createTestUser(t, s, "buyer")
	a := createTestPackage(t, s, author.ID, "A", 1)
	b := createTestPackage(t, s, author.ID, "B", 2)

	none, err := s.ListPurchases(ctx, buyer.ID)
	require.NoError(t, err)
	assert.Empty(t, none)

	grantTestPurchase(t, s, buyer.ID, a.ID)
	grantTestPurchase(t, s, buyer.ID, b.ID)

	purchases, err := s.ListPurchases(ctx, buyer.ID)
	require.NoError(t, err)
	assert.Len(t, purchases, 2)
	for _, p := range purchases {
		assert.Equal(t, buyer.ID, p.UserID)
	}
}

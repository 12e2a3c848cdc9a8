package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"craftmarket/internal/market"
)

func TestCreateUser_FieldValidation(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	_, err := s.CreateUser(context.Background(), "  ", "not-an-email", "hash")
	ve, ok := market.AsValidation(err)
	require.True(t, ok)
	assert.Contains(t, ve.Fields, "username")
	assert.Contains(t, ve.Fields, "email")
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.CreateUser(ctx, "steve", "steve@example.com", "hash")
	require.NoError(t, err)

	_, err = s.CreateUser(ctx, "steve", "other@example.com", "hash")
	ve, ok := market.AsValidation(err)
	require.True(t, ok)
	assert.Contains(t, ve.Fields, "username")

	_, err = s.CreateUser(ctx, "steve2", "steve@example.com", "hash")
	ve, ok = market.AsValidation(err)
	require.True(t, ok)
	assert.Contains(t, ve.Fields, "email")
}

func TestUpdateProfile(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()
	u := createTestUser(t, s, "alex")

	updated, err := s.UpdateProfile(ctx, u.ID, "alexandra", "alexandra@example.com")
	require.NoError(t, err)
	assert.Equal(t, "alexandra", updated.Username)
	assert.Equal(t, "alexandra@example.com", updated.Email)

	other := createTestUser(t, s, "taken")
	_, err = s.UpdateProfile(ctx, other.ID, "alexandra", "taken@example.com")
	ve, ok := market.AsValidation(err)
	require.True(t, ok)
	assert.Contains(t, ve.Fields, "username")
}

func TestUpdatePassword(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()
	u := createTestUser(t, s, "sam")

	require.NoError(t, s.UpdatePassword(ctx, u.ID, "new-hash"))

	reloaded, err := s.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", reloaded.Password)

	assert.ErrorIs(t, s.UpdatePassword(ctx, 999, "hash"), market.ErrNotFound)
}

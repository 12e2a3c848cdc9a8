package store

import (
	"context"
	"database/sql"
	"errors"

	"craftmarket/internal/market"
	"craftmarket/internal/models"
)

// Grant records an entitlement for (userID, packageID). It is idempotent:
// under concurrent duplicate requests the UNIQUE constraint guarantees a
// single row, and the existing record is returned with created == false.
// Payment confirmation must happen before calling Grant, never inside it.
func (s *Store) Grant(ctx context.Context, userID, packageID int64) (*models.Purchase, bool, error) {
	var exists int
	err := s.DB.GetContext(ctx, &exists, `SELECT 1 FROM packages WHERE id = ?`, packageID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, market.ErrNotFound
	}
	if err != nil {
		return nil, false, err
	}

	res, err := s.DB.ExecContext(ctx,
		`INSERT INTO purchases (user_id, package_id) VALUES (?, ?)
		 ON CONFLICT (user_id, package_id) DO NOTHING`,
		userID, packageID)
	if err != nil {
		return nil, false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, false, err
	}

	var p models.Purchase
	err = s.DB.GetContext(ctx, &p,
		`SELECT id, user_id, package_id, purchased_at FROM purchases
		 WHERE user_id = ? AND package_id = ?`, userID, packageID)
	if err != nil {
		return nil, false, err
	}
	return &p, n == 1, nil
}

// Owns reports whether the user may download and manage the package: either a
// purchase exists or the user authored it.
func (s *Store) Owns(ctx context.Context, userID, packageID int64) (bool, error) {
	return owns(ctx, s.DB, userID, packageID)
}

type getter interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

func owns(ctx context.Context, q getter, userID, packageID int64) (bool, error) {
	var authorID int64
	err := q.GetContext(ctx, &authorID, `SELECT author_id FROM packages WHERE id = ?`, packageID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, market.ErrNotFound
	}
	if err != nil {
		return false, err
	}
	if authorID == userID {
		return true, nil
	}
	return hasPurchase(ctx, q, userID, packageID)
}

// hasPurchase is the strict entitlement check used by the review gate:
// authorship alone does not count.
func hasPurchase(ctx context.Context, q getter, userID, packageID int64) (bool, error) {
	var n int
	err := q.GetContext(ctx, &n,
		`SELECT 1 FROM purchases WHERE user_id = ? AND package_id = ? LIMIT 1`,
		userID, packageID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) ListPurchases(ctx context.Context, userID int64) ([]models.Purchase, error) {
	purchases := []models.Purchase{}
	err := s.DB.SelectContext(ctx, &purchases,
		`SELECT id, user_id, package_id, purchased_at FROM purchases
		 WHERE user_id = ? ORDER BY purchased_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	return purchases, nil
}

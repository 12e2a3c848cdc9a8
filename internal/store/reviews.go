package store

import (
	"context"
	"strings"

	"craftmarket/internal/market"
	"craftmarket/internal/models"
)

// SubmitReview appends a review and recomputes the package rating aggregate
// in the same transaction, so the aggregate always reflects exactly the
// current review set. The review gate is a purchase, not authorship: authors
// cannot review their own package.
func (s *Store) SubmitReview(ctx context.Context, userID, packageID int64, rating int, comment string) (*models.Review, error) {
	ve := market.NewValidationError()
	if rating < 1 || rating > 5 {
		ve.Add("rating", "must be an integer between 1 and 5")
	}
	if strings.TrimSpace(comment) == "" {
		ve.Add("comment", "must not be empty")
	}
	if ve.Any() {
		return nil, ve
	}

	tx, err := s.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	entitled, err := hasPurchase(ctx, tx, userID, packageID)
	if err != nil {
		return nil, err
	}
	if !entitled {
		// distinguish a missing package from a missing entitlement
		if _, err := owns(ctx, tx, userID, packageID); err != nil {
			return nil, err
		}
		return nil, market.ErrNotEntitled
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO reviews (user_id, package_id, rating, comment) VALUES (?, ?, ?, ?)`,
		userID, packageID, rating, comment)
	if err != nil {
		if isUniqueViolation(err, "reviews.user_id") || isUniqueViolation(err, "reviews.package_id") {
			return nil, market.ErrDuplicateReview
		}
		return nil, err
	}
	reviewID, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE packages SET
			average_rating = (SELECT AVG(rating) FROM reviews WHERE package_id = ?),
			review_count   = (SELECT COUNT(*) FROM reviews WHERE package_id = ?)
		 WHERE id = ?`,
		packageID, packageID, packageID)
	if err != nil {
		return nil, err
	}

	var r models.Review
	err = tx.GetContext(ctx, &r,
		`SELECT r.id, r.user_id, u.username, r.package_id, r.rating, r.comment,
			r.helpful_count, r.created_at
		 FROM reviews r JOIN users u ON u.id = r.user_id WHERE r.id = ?`, reviewID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &r, nil
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"craftmarket/internal/market"
	"craftmarket/internal/models"
)

func validateAccountFields(ve *market.ValidationError, username, email string) {
	if strings.TrimSpace(username) == "" {
		ve.Add("username", "must not be empty")
	}
	if !strings.Contains(email, "@") {
		ve.Add("email", "must be a valid email address")
	}
}

func (s *Store) CreateUser(ctx context.Context, username, email, passwordHash string) (*models.User, error) {
	ve := market.NewValidationError()
	validateAccountFields(ve, username, email)
	if ve.Any() {
		return nil, ve
	}

	res, err := s.DB.ExecContext(ctx,
		`INSERT INTO users (username, email, password_hash) VALUES (?, ?, ?)`,
		username, email, passwordHash)
	if err != nil {
		if isUniqueViolation(err, "users.username") {
			ve.Add("username", "already taken")
			return nil, ve
		}
		if isUniqueViolation(err, "users.email") {
			ve.Add("email", "already registered")
			return nil, ve
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return s.GetUserByID(ctx, id)
}

func (s *Store) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	var u models.User
	err := s.DB.GetContext(ctx, &u,
		`SELECT id, username, email, password_hash, created_at FROM users WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, market.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	err := s.DB.GetContext(ctx, &u,
		`SELECT id, username, email, password_hash, created_at FROM users WHERE username = ?`, username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, market.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateProfile changes username and email. Uniqueness collisions surface as
// field-level validation errors, same as at registration.
func (s *Store) UpdateProfile(ctx context.Context, userID int64, username, email string) (*models.User, error) {
	ve := market.NewValidationError()
	validateAccountFields(ve, username, email)
	if ve.Any() {
		return nil, ve
	}

	res, err := s.DB.ExecContext(ctx,
		`UPDATE users SET username = ?, email = ? WHERE id = ?`, username, email, userID)
	if err != nil {
		if isUniqueViolation(err, "users.username") {
			ve.Add("username", "already taken")
			return nil, ve
		}
		if isUniqueViolation(err, "users.email") {
			ve.Add("email", "already registered")
			return nil, ve
		}
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, market.ErrNotFound
	}
	return s.GetUserByID(ctx, userID)
}

func (s *Store) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	res, err := s.DB.ExecContext(ctx,
		`UPDATE users SET password_hash = ? WHERE id = ?`, passwordHash, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return market.ErrNotFound
	}
	return nil
}

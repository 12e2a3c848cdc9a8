package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/jmoiron/sqlx"

	"craftmarket/internal/market"
	"craftmarket/internal/models"
)

// ListFilter narrows and orders the catalog listing. An empty or "All"
// category means unfiltered; an empty sort defaults to newest.
type ListFilter struct {
	Category string
	Sort     string
	Query    string
}

const packageColumns = `id, name, description, category, price, author_id, features,
	requirements, thumbnail_key, download_count, average_rating, review_count, created_at`

func (s *Store) ListPackages(ctx context.Context, f ListFilter) ([]models.Package, error) {
	q := `SELECT ` + packageColumns + ` FROM packages`
	var clauses []string
	var args []interface{}

	if f.Category != "" && f.Category != "All" {
		clauses = append(clauses, "category = ?")
		args = append(args, f.Category)
	}
	if f.Query != "" {
		like := "%" + f.Query + "%"
		clauses = append(clauses, "(name LIKE ? OR description LIKE ?)")
		args = append(args, like, like)
	}
	if len(clauses) > 0 {
		q += " WHERE " + strings.Join(clauses, " AND ")
	}

	switch f.Sort {
	case models.SortPopular:
		q += " ORDER BY download_count DESC, id"
	case models.SortPriceLow:
		q += " ORDER BY price ASC, id"
	case models.SortPriceHigh:
		q += " ORDER BY price DESC, id"
	case models.SortRating:
		// packages with no reviews sort after every reviewed package
		q += " ORDER BY (review_count > 0) DESC, average_rating DESC, id"
	default:
		q += " ORDER BY created_at DESC, id DESC"
	}

	pkgs := []models.Package{}
	if err := s.DB.SelectContext(ctx, &pkgs, q, args...); err != nil {
		return nil, err
	}
	return pkgs, nil
}

func (s *Store) ListPackagesByAuthor(ctx context.Context, authorID int64) ([]models.Package, error) {
	pkgs := []models.Package{}
	err := s.DB.SelectContext(ctx, &pkgs,
		`SELECT `+packageColumns+` FROM packages WHERE author_id = ? ORDER BY created_at DESC, id DESC`,
		authorID)
	if err != nil {
		return nil, err
	}
	return pkgs, nil
}

// GetPackage returns the eager detail view: versions newest-first, reviews
// newest-first with reviewer usernames, and the resolved latest version.
// viewerID 0 means anonymous; otherwise Owned reflects the viewer's
// entitlement.
func (s *Store) GetPackage(ctx context.Context, id, viewerID int64) (*models.PackageDetail, error) {
	var d models.PackageDetail
	err := s.DB.GetContext(ctx, &d.Package,
		`SELECT `+packageColumns+` FROM packages WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, market.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := s.DB.GetContext(ctx, &d.AuthorName,
		`SELECT username FROM users WHERE id = ?`, d.AuthorID); err != nil {
		return nil, err
	}

	d.Versions = []models.Version{}
	err = s.DB.SelectContext(ctx, &d.Versions,
		`SELECT id, package_id, version_number, changelog, minecraft_version, blob_key,
			download_count, released_at
		 FROM versions WHERE package_id = ? ORDER BY released_at DESC, id DESC`, id)
	if err != nil {
		return nil, err
	}

	d.Reviews = []models.Review{}
	err = s.DB.SelectContext(ctx, &d.Reviews,
		`SELECT r.id, r.user_id, u.username, r.package_id, r.rating, r.comment,
			r.helpful_count, r.created_at
		 FROM reviews r JOIN users u ON u.id = r.user_id
		 WHERE r.package_id = ? ORDER BY r.created_at DESC, r.id DESC`, id)
	if err != nil {
		return nil, err
	}

	if latest := latestVersion(d.Versions); latest != nil {
		v := *latest
		d.LatestVersion = &v
	}

	if viewerID != 0 {
		owned, err := s.Owns(ctx, viewerID, id)
		if err != nil {
			return nil, err
		}
		d.Owned = owned
	}
	return &d, nil
}

// latestVersion picks the version with the greatest release date. Equal
// release dates are broken by the higher semver, then by the higher id
// (creation order), so the choice is deterministic.
func latestVersion(versions []models.Version) *models.Version {
	var latest *models.Version
	for i := range versions {
		v := &versions[i]
		if latest == nil || versionLess(latest, v) {
			latest = v
		}
	}
	return latest
}

func versionLess(a, b *models.Version) bool {
	if !a.ReleasedAt.Equal(b.ReleasedAt) {
		return a.ReleasedAt.Before(b.ReleasedAt)
	}
	av, aerr := semver.NewVersion(a.VersionNumber)
	bv, berr := semver.NewVersion(b.VersionNumber)
	if aerr == nil && berr == nil && !av.Equal(bv) {
		return av.LessThan(bv)
	}
	return a.ID < b.ID
}

// CreatePackageInput carries everything needed to publish a package together
// with its first version. The blob keys reference already-uploaded objects.
type CreatePackageInput struct {
	Name         string
	Description  string
	Category     string
	Price        float64
	Features     string
	Requirements string
	ThumbnailKey string
	Version      VersionInput
}

type VersionInput struct {
	VersionNumber    string
	Changelog        string
	MinecraftVersion string
	BlobKey          string
	// ReleasedAt defaults to the upload time when zero. "Latest" is decided
	// by this field, not by upload order.
	ReleasedAt time.Time
}

func validateVersionInput(ve *market.ValidationError, in VersionInput) {
	if in.VersionNumber == "" {
		ve.Add("version", "must not be empty")
	} else if _, err := semver.NewVersion(in.VersionNumber); err != nil {
		ve.Add("version", "must be a valid semantic version")
	}
	if in.BlobKey == "" {
		ve.Add("pluginFile", "a plugin artifact is required")
	}
}

func (s *Store) CreatePackage(ctx context.Context, authorID int64, in CreatePackageInput) (*models.Package, error) {
	ve := market.NewValidationError()
	if strings.TrimSpace(in.Name) == "" {
		ve.Add("name", "must not be empty")
	}
	if in.Price < 0 {
		ve.Add("price", "must not be negative")
	}
	if !models.ValidCategory(in.Category) {
		ve.Add("category", "must be one of the known categories")
	}
	if in.ThumbnailKey == "" {
		ve.Add("thumbnailFile", "a thumbnail image is required")
	}
	validateVersionInput(ve, in.Version)
	if ve.Any() {
		return nil, ve
	}

	tx, err := s.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO packages (name, description, category, price, author_id, features, requirements, thumbnail_key)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		in.Name, in.Description, in.Category, in.Price, authorID, in.Features, in.Requirements, in.ThumbnailKey)
	if err != nil {
		return nil, err
	}
	pkgID, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	if _, err := insertVersion(ctx, tx, pkgID, in.Version); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	var p models.Package
	if err := s.DB.GetContext(ctx, &p, `SELECT `+packageColumns+` FROM packages WHERE id = ?`, pkgID); err != nil {
		return nil, err
	}
	return &p, nil
}

// AddVersion appends a version to an existing package. Only the package
// author may do this.
func (s *Store) AddVersion(ctx context.Context, packageID, callerID int64, in VersionInput) (*models.Version, error) {
	var authorID int64
	err := s.DB.GetContext(ctx, &authorID, `SELECT author_id FROM packages WHERE id = ?`, packageID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, market.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if authorID != callerID {
		return nil, market.ErrNotAuthor
	}

	ve := market.NewValidationError()
	validateVersionInput(ve, in)
	if ve.Any() {
		return nil, ve
	}

	id, err := insertVersion(ctx, s.DB, packageID, in)
	if err != nil {
		if isUniqueViolation(err, "versions.version_number") {
			ve.Add("version", "this version already exists")
			return nil, ve
		}
		return nil, err
	}

	var v models.Version
	err = s.DB.GetContext(ctx, &v,
		`SELECT id, package_id, version_number, changelog, minecraft_version, blob_key,
			download_count, released_at
		 FROM versions WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func insertVersion(ctx context.Context, e sqlx.ExtContext, packageID int64, in VersionInput) (int64, error) {
	releasedAt := in.ReleasedAt
	if releasedAt.IsZero() {
		releasedAt = time.Now().UTC()
	}
	res, err := e.ExecContext(ctx,
		`INSERT INTO versions (package_id, version_number, changelog, minecraft_version, blob_key, released_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		packageID, in.VersionNumber, in.Changelog, in.MinecraftVersion, in.BlobKey, releasedAt)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

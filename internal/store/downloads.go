package store

import (
	"context"

	"craftmarket/internal/market"
	"craftmarket/internal/models"
)

// RequestDownload is the single choke point for serving a package artifact.
// It resolves the package, checks the caller's entitlement, picks the
// requested version (or the latest one), and bumps both download counters in
// one transaction before handing back the version with its blob reference.
func (s *Store) RequestDownload(ctx context.Context, userID, packageID int64, versionNumber string) (*models.Version, error) {
	tx, err := s.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	ok, err := owns(ctx, tx, userID, packageID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, market.ErrNotEntitled
	}

	versions := []models.Version{}
	err = tx.SelectContext(ctx, &versions,
		`SELECT id, package_id, version_number, changelog, minecraft_version, blob_key,
			download_count, released_at
		 FROM versions WHERE package_id = ?`, packageID)
	if err != nil {
		return nil, err
	}

	var chosen *models.Version
	if versionNumber != "" {
		for i := range versions {
			if versions[i].VersionNumber == versionNumber {
				chosen = &versions[i]
				break
			}
		}
	} else {
		chosen = latestVersion(versions)
	}
	if chosen == nil {
		return nil, market.ErrNotFound
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE versions SET download_count = download_count + 1 WHERE id = ?`, chosen.ID); err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE packages SET download_count = download_count + 1 WHERE id = ?`, packageID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	chosen.DownloadCount++
	return chosen, nil
}

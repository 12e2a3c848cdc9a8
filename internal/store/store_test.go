package store

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"craftmarket/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := sqlx.Open("sqlite3", ":memory:?_busy_timeout=5000&_foreign_keys=on")
	require.NoError(t, err)
	// a single connection keeps the in-memory database alive and serializes
	// writers the way the file-backed database does
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	s := New(db)
	require.NoError(t, s.Migrate())
	return s
}

func createTestUser(t *testing.T, s *Store, username string) *models.User {
	t.Helper()
	u, err := s.CreateUser(context.Background(), username, username+"@example.com", "hash-"+username)
	require.NoError(t, err)
	return u
}

func createTestPackage(t *testing.T, s *Store, authorID int64, name string, price float64) *models.Package {
	t.Helper()
	p, err := s.CreatePackage(context.Background(), authorID, CreatePackageInput{
		Name:         name,
		Description:  "test plugin",
		Category:     string(models.CategoryUtility),
		Price:        price,
		ThumbnailKey: "thumbnails/" + name + ".png",
		Version: VersionInput{
			VersionNumber: "1.0.0",
			BlobKey:       "plugins/" + name + "-1.0.0.jar",
		},
	})
	require.NoError(t, err)
	return p
}

func grantTestPurchase(t *testing.T, s *Store, userID, packageID int64) {
	t.Helper()
	_, created, err := s.Grant(context.Background(), userID, packageID)
	require.NoError(t, err)
	require.True(t, created)
}

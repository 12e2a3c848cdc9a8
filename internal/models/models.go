package models

import "time"

// Category is the fixed set of plugin categories. Filtering is exact-match;
// an empty or "All" filter means unfiltered.
type Category string

const (
	CategoryAdminTools      Category = "Admin Tools"
	CategoryEconomy         Category = "Economy"
	CategoryGameMechanics   Category = "Game Mechanics"
	CategoryAntiGriefing    Category = "Anti-Griefing"
	CategoryChat            Category = "Chat"
	CategoryMinigames       Category = "Minigames"
	CategoryWorldManagement Category = "World Management"
	CategoryUtility         Category = "Utility"
	CategoryOther           Category = "Other"
)

var Categories = []Category{
	CategoryAdminTools,
	CategoryEconomy,
	CategoryGameMechanics,
	CategoryAntiGriefing,
	CategoryChat,
	CategoryMinigames,
	CategoryWorldManagement,
	CategoryUtility,
	CategoryOther,
}

func ValidCategory(c string) bool {
	for _, known := range Categories {
		if string(known) == c {
			return true
		}
	}
	return false
}

// Sort options accepted by the catalog list operation.
const (
	SortNewest    = "newest"
	SortPopular   = "popular"
	SortPriceLow  = "price-low"
	SortPriceHigh = "price-high"
	SortRating    = "rating"
)

type User struct {
	ID        int64     `db:"id" json:"id"`
	Username  string    `db:"username" json:"username"`
	Email     string    `db:"email" json:"email"`
	Password  string    `db:"password_hash" json:"-"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

type Package struct {
	ID            int64     `db:"id" json:"id"`
	Name          string    `db:"name" json:"name"`
	Description   string    `db:"description" json:"description"`
	Category      Category  `db:"category" json:"category"`
	Price         float64   `db:"price" json:"price"`
	AuthorID      int64     `db:"author_id" json:"authorId"`
	Features      string    `db:"features" json:"features"`
	Requirements  string    `db:"requirements" json:"requirements"`
	ThumbnailKey  string    `db:"thumbnail_key" json:"thumbnailKey"`
	DownloadCount int64     `db:"download_count" json:"downloadCount"`
	AverageRating float64   `db:"average_rating" json:"averageRating"`
	ReviewCount   int64     `db:"review_count" json:"reviewCount"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
}

// Version is immutable once released except for its download counter.
type Version struct {
	ID               int64     `db:"id" json:"id"`
	PackageID        int64     `db:"package_id" json:"packageId"`
	VersionNumber    string    `db:"version_number" json:"versionNumber"`
	Changelog        string    `db:"changelog" json:"changelog"`
	MinecraftVersion string    `db:"minecraft_version" json:"minecraftVersion"`
	BlobKey          string    `db:"blob_key" json:"-"`
	DownloadCount    int64     `db:"download_count" json:"downloadCount"`
	ReleasedAt       time.Time `db:"released_at" json:"releaseDate"`
}

type Purchase struct {
	ID          int64     `db:"id" json:"id"`
	UserID      int64     `db:"user_id" json:"userId"`
	PackageID   int64     `db:"package_id" json:"packageId"`
	PurchasedAt time.Time `db:"purchased_at" json:"purchasedAt"`
}

type Review struct {
	ID           int64     `db:"id" json:"id"`
	UserID       int64     `db:"user_id" json:"userId"`
	Username     string    `db:"username" json:"username"`
	PackageID    int64     `db:"package_id" json:"packageId"`
	Rating       int       `db:"rating" json:"rating"`
	Comment      string    `db:"comment" json:"comment"`
	HelpfulCount int64     `db:"helpful_count" json:"helpfulCount"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

// PackageDetail is the eager detail view: the package plus its full version
// history and review set. LatestVersion is the version with the greatest
// release date (ties broken by higher semver, then creation order).
type PackageDetail struct {
	Package
	AuthorName    string    `json:"authorName"`
	Versions      []Version `json:"versions"`
	Reviews       []Review  `json:"reviews"`
	LatestVersion *Version  `json:"latestVersion,omitempty"`
	Owned         bool      `json:"owned"`
}

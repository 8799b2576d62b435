package listings

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound  = errors.New("listing not found")
	ErrForbidden = errors.New("listing belongs to another contractor")
)

// Category is a service category a listing belongs to. Cohort ranking
// for best_of_year runs within one category.
type Category struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// Listing is a contractor's service listing
type Listing struct {
	ID           uuid.UUID `db:"id" json:"id"`
	ContractorID uuid.UUID `db:"contractor_id" json:"contractor_id"`
	CategoryID   string    `db:"category_id" json:"category_id"`
	Title        string    `db:"title" json:"title"`
	Description  string    `db:"description" json:"description"`
	ServiceArea  string    `db:"service_area" json:"service_area"`
	PriceMin     float64   `db:"price_min" json:"price_min"`
	PriceMax     float64   `db:"price_max" json:"price_max"`
	RatingValue  float64   `db:"rating_value" json:"rating_value"`
	ReviewCount  int       `db:"review_count" json:"review_count"`
	VerifiedPro  bool      `db:"verified_pro" json:"verified_pro"`
	Badges       []string  `db:"-" json:"badges"`
	Active       bool      `db:"active" json:"active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// CreateListingRequest carries the contractor-supplied listing fields
type CreateListingRequest struct {
	CategoryID  string  `json:"category_id" binding:"required"`
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description"`
	ServiceArea string  `json:"service_area"`
	PriceMin    float64 `json:"price_min" binding:"gte=0"`
	PriceMax    float64 `json:"price_max" binding:"gte=0"`
}

// UpdateListingRequest carries the editable listing fields
type UpdateListingRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	ServiceArea string  `json:"service_area"`
	PriceMin    float64 `json:"price_min"`
	PriceMax    float64 `json:"price_max"`
	Active      *bool   `json:"active"`
}

// BrowseFilter narrows a listing browse or search
type BrowseFilter struct {
	CategoryID   string  `form:"category"`
	Query        string  `form:"q"`
	MinRating    float64 `form:"min_rating"`
	VerifiedOnly bool    `form:"verified_only"`
	SortBy       string  `form:"sort"`
	Page         int     `form:"page"`
	PageSize     int     `form:"page_size"`
}

// Normalize clamps pagination to sane bounds
func (f *BrowseFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 || f.PageSize > 100 {
		f.PageSize = 20
	}
}

// BrowseResult is one page of listings with the total match count
type BrowseResult struct {
	Listings []Listing `json:"listings"`
	Total    int       `json:"total"`
	Page     int       `json:"page"`
	PageSize int       `json:"page_size"`
}

// Bookmark is a user's saved listing
type Bookmark struct {
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	ListingID uuid.UUID `db:"listing_id" json:"listing_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

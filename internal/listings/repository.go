package listings

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Repository defines data access for listings, categories and bookmarks
type Repository interface {
	GetListing(ctx context.Context, id uuid.UUID) (*Listing, error)
	CreateListing(ctx context.Context, listing *Listing) error
	UpdateListing(ctx context.Context, listing *Listing) error
	ListByContractor(ctx context.Context, contractorID uuid.UUID) ([]Listing, error)
	Browse(ctx context.Context, filter BrowseFilter) (*BrowseResult, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]Listing, error)
	UpdateRatingAggregate(ctx context.Context, listingID uuid.UUID, ratingValue float64, reviewCount int) error
	ListCategories(ctx context.Context) ([]Category, error)
	ToggleBookmark(ctx context.Context, userID, listingID uuid.UUID) (bool, error)
	ListBookmarked(ctx context.Context, userID uuid.UUID) ([]Listing, error)
}

type PostgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type listingRow struct {
	Listing
	BadgeArray pq.StringArray `db:"badges"`
}

func (row listingRow) toListing() Listing {
	l := row.Listing
	l.Badges = []string(row.BadgeArray)
	if l.Badges == nil {
		l.Badges = []string{}
	}
	return l
}

const listingColumns = `
	id, contractor_id, category_id, title, description, service_area,
	price_min, price_max, rating_value, review_count, verified_pro,
	badges, active, created_at, updated_at`

func (r *PostgresRepository) GetListing(ctx context.Context, id uuid.UUID) (*Listing, error) {
	var row listingRow
	query := `SELECT ` + listingColumns + ` FROM listings WHERE id = $1`

	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get listing: %w", err)
	}
	listing := row.toListing()
	return &listing, nil
}

func (r *PostgresRepository) CreateListing(ctx context.Context, listing *Listing) error {
	query := `
		INSERT INTO listings (
			id, contractor_id, category_id, title, description, service_area,
			price_min, price_max, rating_value, review_count, verified_pro,
			badges, active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 0, 0, $9, $10, true, NOW(), NOW())`

	_, err := r.db.ExecContext(ctx, query,
		listing.ID, listing.ContractorID, listing.CategoryID, listing.Title,
		listing.Description, listing.ServiceArea, listing.PriceMin, listing.PriceMax,
		listing.VerifiedPro, pq.StringArray(listing.Badges))
	if err != nil {
		return fmt.Errorf("failed to create listing: %w", err)
	}
	return nil
}

func (r *PostgresRepository) UpdateListing(ctx context.Context, listing *Listing) error {
	query := `
		UPDATE listings
		SET title = $2, description = $3, service_area = $4,
		    price_min = $5, price_max = $6, active = $7, updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query,
		listing.ID, listing.Title, listing.Description, listing.ServiceArea,
		listing.PriceMin, listing.PriceMax, listing.Active)
	if err != nil {
		return fmt.Errorf("failed to update listing: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) ListByContractor(ctx context.Context, contractorID uuid.UUID) ([]Listing, error) {
	rows := []listingRow{}
	query := `SELECT ` + listingColumns + `
		FROM listings
		WHERE contractor_id = $1
		ORDER BY created_at DESC`

	if err := r.db.SelectContext(ctx, &rows, query, contractorID); err != nil {
		return nil, fmt.Errorf("failed to list contractor listings: %w", err)
	}
	return toListings(rows), nil
}

// Browse filters and pages active listings in SQL. This is also the
// fallback path when the search index is unavailable.
func (r *PostgresRepository) Browse(ctx context.Context, filter BrowseFilter) (*BrowseResult, error) {
	filter.Normalize()

	where := []string{"active = true"}
	args := []interface{}{}

	if filter.CategoryID != "" {
		args = append(args, filter.CategoryID)
		where = append(where, fmt.Sprintf("category_id = $%d", len(args)))
	}
	if filter.MinRating > 0 {
		args = append(args, filter.MinRating)
		where = append(where, fmt.Sprintf("rating_value >= $%d", len(args)))
	}
	if filter.VerifiedOnly {
		where = append(where, "verified_pro = true")
	}
	if filter.Query != "" {
		args = append(args, "%"+filter.Query+"%")
		where = append(where, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
	}
	whereClause := strings.Join(where, " AND ")

	var total int
	countQuery := `SELECT COUNT(*) FROM listings WHERE ` + whereClause
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, fmt.Errorf("failed to count listings: %w", err)
	}

	orderBy := "rating_value DESC, review_count DESC"
	switch filter.SortBy {
	case "newest":
		orderBy = "created_at DESC"
	case "price":
		orderBy = "price_min ASC"
	case "reviews":
		orderBy = "review_count DESC"
	}

	args = append(args, filter.PageSize, (filter.Page-1)*filter.PageSize)
	query := fmt.Sprintf(`SELECT %s FROM listings WHERE %s ORDER BY %s LIMIT $%d OFFSET $%d`,
		listingColumns, whereClause, orderBy, len(args)-1, len(args))

	rows := []listingRow{}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to browse listings: %w", err)
	}

	return &BrowseResult{
		Listings: toListings(rows),
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}, nil
}

func (r *PostgresRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]Listing, error) {
	if len(ids) == 0 {
		return []Listing{}, nil
	}
	strIDs := make([]string, len(ids))
	for i, id := range ids {
		strIDs[i] = id.String()
	}

	rows := []listingRow{}
	query := `SELECT ` + listingColumns + ` FROM listings WHERE id = ANY($1)`
	if err := r.db.SelectContext(ctx, &rows, query, pq.StringArray(strIDs)); err != nil {
		return nil, fmt.Errorf("failed to get listings by ids: %w", err)
	}
	return toListings(rows), nil
}

func (r *PostgresRepository) UpdateRatingAggregate(ctx context.Context, listingID uuid.UUID, ratingValue float64, reviewCount int) error {
	query := `
		UPDATE listings
		SET rating_value = $2, review_count = $3, updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, listingID, ratingValue, reviewCount)
	if err != nil {
		return fmt.Errorf("failed to update rating aggregate: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) ListCategories(ctx context.Context) ([]Category, error) {
	categories := []Category{}
	query := `SELECT id, name FROM categories ORDER BY name ASC`
	if err := r.db.SelectContext(ctx, &categories, query); err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// ToggleBookmark flips a user's bookmark and reports the new state
func (r *PostgresRepository) ToggleBookmark(ctx context.Context, userID, listingID uuid.UUID) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM bookmarks WHERE user_id = $1 AND listing_id = $2`, userID, listingID)
	if err != nil {
		return false, fmt.Errorf("failed to toggle bookmark: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows > 0 {
		return false, nil
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO bookmarks (user_id, listing_id, created_at) VALUES ($1, $2, NOW())`,
		userID, listingID)
	if err != nil {
		return false, fmt.Errorf("failed to create bookmark: %w", err)
	}
	return true, nil
}

func (r *PostgresRepository) ListBookmarked(ctx context.Context, userID uuid.UUID) ([]Listing, error) {
	rows := []listingRow{}
	query := `
		SELECT l.id, l.contractor_id, l.category_id, l.title, l.description,
		       l.service_area, l.price_min, l.price_max, l.rating_value,
		       l.review_count, l.verified_pro, l.badges, l.active,
		       l.created_at, l.updated_at
		FROM listings l
		JOIN bookmarks b ON b.listing_id = l.id
		WHERE b.user_id = $1
		ORDER BY b.created_at DESC`

	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list bookmarked listings: %w", err)
	}
	return toListings(rows), nil
}

func toListings(rows []listingRow) []Listing {
	out := make([]Listing, len(rows))
	for i, row := range rows {
		out[i] = row.toListing()
	}
	return out
}

package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"subliBack/internal/models"
)

var (
	ErrListingNotFound = errors.New("listing not found")
)

type ListingRepository struct {
	DB *sql.DB
}

const listingColumns = `id, title, city, neighborhood, price, available_from, available_to, description, phone, images, user_id, status, admin_note, is_boosted, expires_at, created_at, updated_at`

func scanListing(row interface{ Scan(...any) error }) (models.Listing, error) {
	var (
		l          models.Listing
		imagesJSON []byte
	)
	err := row.Scan(
		&l.ID,
		&l.Title,
		&l.City,
		&l.Neighborhood,
		&l.Price,
		&l.AvailableFrom,
		&l.AvailableTo,
		&l.Description,
		&l.Phone,
		&imagesJSON,
		&l.UserID,
		&l.Status,
		&l.AdminNote,
		&l.IsBoosted,
		&l.ExpiresAt,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	if err != nil {
		return models.Listing{}, err
	}
	if len(imagesJSON) > 0 {
		if err := json.Unmarshal(imagesJSON, &l.Images); err != nil {
			return models.Listing{}, fmt.Errorf("decode images: %w", err)
		}
	}
	if l.Images == nil {
		l.Images = []string{}
	}
	return l, nil
}

func (r *ListingRepository) CreateListing(ctx context.Context, listing models.Listing) (models.Listing, error) {
	query := `
        INSERT INTO listings (title, city, neighborhood, price, available_from, available_to, description, phone, images, user_id, status, admin_note, is_boosted, expires_at, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `

	imagesJSON, err := json.Marshal(listing.Images)
	if err != nil {
		return models.Listing{}, err
	}

	result, err := r.DB.ExecContext(ctx, query,
		listing.Title,
		listing.City,
		listing.Neighborhood,
		listing.Price,
		listing.AvailableFrom,
		listing.AvailableTo,
		listing.Description,
		listing.Phone,
		string(imagesJSON),
		listing.UserID,
		listing.Status,
		listing.AdminNote,
		listing.IsBoosted,
		listing.ExpiresAt,
		listing.CreatedAt,
	)
	if err != nil {
		return models.Listing{}, err
	}

	lastID, err := result.LastInsertId()
	if err != nil {
		return models.Listing{}, err
	}
	listing.ID = int(lastID)
	return listing, nil
}

func (r *ListingRepository) GetListingByID(ctx context.Context, id int) (models.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE id = ?`

	listing, err := scanListing(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Listing{}, ErrListingNotFound
		}
		return models.Listing{}, err
	}
	return listing, nil
}

// GetPublicListings returns approved, unexpired listings, boosted first, then
// newest first. The total count ignores pagination.
func (r *ListingRepository) GetPublicListings(ctx context.Context, filter models.ListingFilterRequest, now time.Time, limit, offset int) ([]models.Listing, int, error) {
	where := []string{"status = ?", "expires_at > ?"}
	args := []any{models.ListingStatusApproved, now}

	if filter.City != "" {
		where = append(where, "city = ?")
		args = append(args, filter.City)
	}
	if filter.PriceFrom > 0 {
		where = append(where, "price >= ?")
		args = append(args, filter.PriceFrom)
	}
	if filter.PriceTo > 0 {
		where = append(where, "price <= ?")
		args = append(args, filter.PriceTo)
	}
	if filter.Search != "" {
		where = append(where, "(title LIKE ? OR description LIKE ?)")
		pattern := "%" + filter.Search + "%"
		args = append(args, pattern, pattern)
	}

	whereClause := strings.Join(where, " AND ")

	var total int
	countQuery := `SELECT COUNT(*) FROM listings WHERE ` + whereClause
	if err := r.DB.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + listingColumns + ` FROM listings WHERE ` + whereClause +
		` ORDER BY is_boosted DESC, created_at DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	listings := []models.Listing{}
	for rows.Next() {
		listing, err := scanListing(rows)
		if err != nil {
			return nil, 0, err
		}
		listings = append(listings, listing)
	}
	return listings, total, rows.Err()
}

// GetListingsByUserID returns everything the owner has, regardless of status
// or expiry, so pending/rejected/expired listings stay manageable.
func (r *ListingRepository) GetListingsByUserID(ctx context.Context, userID int) ([]models.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE user_id = ? ORDER BY created_at DESC`

	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	listings := []models.Listing{}
	for rows.Next() {
		listing, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, listing)
	}
	return listings, rows.Err()
}

func (r *ListingRepository) GetAllListings(ctx context.Context, filter models.AdminListingFilter) ([]models.Listing, error) {
	where := []string{"1 = 1"}
	args := []any{}

	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.Search != "" {
		where = append(where, "(title LIKE ? OR city LIKE ? OR description LIKE ?)")
		pattern := "%" + filter.Search + "%"
		args = append(args, pattern, pattern, pattern)
	}

	query := `SELECT ` + listingColumns + ` FROM listings WHERE ` + strings.Join(where, " AND ") +
		` ORDER BY created_at DESC`

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	listings := []models.Listing{}
	for rows.Next() {
		listing, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, listing)
	}
	return listings, rows.Err()
}

// UpdateFields rewrites the owner-editable fields together with the
// moderation pair. Status and admin_note always travel in one statement so a
// failed write cannot leave them inconsistent.
func (r *ListingRepository) UpdateFields(ctx context.Context, id int, upd models.ListingUpdate, status, adminNote string) error {
	imagesJSON, err := json.Marshal(upd.Images)
	if err != nil {
		return err
	}

	query := `
        UPDATE listings
        SET title = ?, city = ?, neighborhood = ?, price = ?, available_from = ?, available_to = ?, description = ?, phone = ?, images = ?, status = ?, admin_note = ?, updated_at = NOW()
        WHERE id = ?
    `
	_, err = r.DB.ExecContext(ctx, query,
		upd.Title,
		upd.City,
		upd.Neighborhood,
		upd.Price,
		upd.AvailableFrom,
		upd.AvailableTo,
		upd.Description,
		upd.Phone,
		string(imagesJSON),
		status,
		adminNote,
		id,
	)
	return err
}

// UpdateModeration writes the status/admin_note pair in one statement.
// Existence is checked by callers; a same-value update must stay a success so
// that re-approving an approved listing is idempotent.
func (r *ListingRepository) UpdateModeration(ctx context.Context, id int, status, adminNote string) error {
	query := `UPDATE listings SET status = ?, admin_note = ?, updated_at = NOW() WHERE id = ?`
	_, err := r.DB.ExecContext(ctx, query, status, adminNote, id)
	return err
}

func (r *ListingRepository) DeleteListing(ctx context.Context, id int) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM listings WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrListingNotFound
	}
	return nil
}

// ExtendExpiry moves expires_at forward. The new deadline is computed by the
// caller; the repository only persists it.
func (r *ListingRepository) ExtendExpiry(ctx context.Context, id int, until time.Time) error {
	_, err := r.DB.ExecContext(ctx, `UPDATE listings SET expires_at = ?, updated_at = NOW() WHERE id = ?`, until, id)
	return err
}

func (r *ListingRepository) SetBoosted(ctx context.Context, id int, boosted bool) error {
	_, err := r.DB.ExecContext(ctx, `UPDATE listings SET is_boosted = ?, updated_at = NOW() WHERE id = ?`, boosted, id)
	return err
}

// ClearExpiredBoosts drops the boost flag on every listing whose expiry has
// passed. Status is never touched here; expired listings simply fall out of
// the public query. Re-running is a no-op.
func (r *ListingRepository) ClearExpiredBoosts(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.DB.ExecContext(ctx,
		`UPDATE listings SET is_boosted = 0 WHERE is_boosted = 1 AND expires_at <= ?`, now)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

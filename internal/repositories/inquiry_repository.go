package repositories

import (
	"context"
	"database/sql"
	"errors"

	"subliBack/internal/models"
)

var (
	ErrInquiryNotFound = errors.New("inquiry not found")
)

type InquiryRepository struct {
	DB *sql.DB
}

func (r *InquiryRepository) CreateInquiry(ctx context.Context, inquiry models.Inquiry) (models.Inquiry, error) {
	query := `
        INSERT INTO inquiries (listing_id, owner_id, name, email, message, created_at)
        VALUES (?, ?, ?, ?, ?, ?)
    `
	result, err := r.DB.ExecContext(ctx, query,
		inquiry.ListingID,
		inquiry.OwnerID,
		inquiry.Name,
		inquiry.Email,
		inquiry.Message,
		inquiry.CreatedAt,
	)
	if err != nil {
		return models.Inquiry{}, err
	}

	lastID, err := result.LastInsertId()
	if err != nil {
		return models.Inquiry{}, err
	}
	inquiry.ID = int(lastID)
	return inquiry, nil
}

// GetInquiriesByOwnerID returns inquiries addressed to one lister, newest
// first, joined with the listing title for display.
func (r *InquiryRepository) GetInquiriesByOwnerID(ctx context.Context, ownerID int) ([]models.Inquiry, error) {
	query := `
        SELECT i.id, i.listing_id, i.owner_id, i.name, i.email, i.message, i.created_at, COALESCE(l.title, '')
        FROM inquiries i
        LEFT JOIN listings l ON l.id = i.listing_id
        WHERE i.owner_id = ?
        ORDER BY i.created_at DESC
    `
	return r.queryInquiries(ctx, query, ownerID)
}

func (r *InquiryRepository) GetAllInquiries(ctx context.Context) ([]models.Inquiry, error) {
	query := `
        SELECT i.id, i.listing_id, i.owner_id, i.name, i.email, i.message, i.created_at, COALESCE(l.title, '')
        FROM inquiries i
        LEFT JOIN listings l ON l.id = i.listing_id
        ORDER BY i.created_at DESC
    `
	return r.queryInquiries(ctx, query)
}

func (r *InquiryRepository) queryInquiries(ctx context.Context, query string, args ...any) ([]models.Inquiry, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	inquiries := []models.Inquiry{}
	for rows.Next() {
		var inquiry models.Inquiry
		err := rows.Scan(
			&inquiry.ID,
			&inquiry.ListingID,
			&inquiry.OwnerID,
			&inquiry.Name,
			&inquiry.Email,
			&inquiry.Message,
			&inquiry.CreatedAt,
			&inquiry.ListingTitle,
		)
		if err != nil {
			return nil, err
		}
		inquiries = append(inquiries, inquiry)
	}
	return inquiries, rows.Err()
}

func (r *InquiryRepository) DeleteInquiry(ctx context.Context, id int) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM inquiries WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrInquiryNotFound
	}
	return nil
}

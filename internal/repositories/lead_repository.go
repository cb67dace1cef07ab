package repositories

import (
	"context"
	"database/sql"
	"errors"

	"subliBack/internal/models"
)

var (
	ErrLeadNotFound = errors.New("lead not found")
)

type LeadRepository struct {
	DB *sql.DB
}

func (r *LeadRepository) CreateLead(ctx context.Context, lead models.Lead) (models.Lead, error) {
	query := `INSERT INTO leads (name, email, message, created_at) VALUES (?, ?, ?, ?)`

	result, err := r.DB.ExecContext(ctx, query, lead.Name, lead.Email, lead.Message, lead.CreatedAt)
	if err != nil {
		return models.Lead{}, err
	}

	lastID, err := result.LastInsertId()
	if err != nil {
		return models.Lead{}, err
	}
	lead.ID = int(lastID)
	return lead, nil
}

func (r *LeadRepository) GetAllLeads(ctx context.Context) ([]models.Lead, error) {
	query := `SELECT id, name, email, message, created_at FROM leads ORDER BY created_at DESC`

	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	leads := []models.Lead{}
	for rows.Next() {
		var lead models.Lead
		if err := rows.Scan(&lead.ID, &lead.Name, &lead.Email, &lead.Message, &lead.CreatedAt); err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}
	return leads, rows.Err()
}

func (r *LeadRepository) DeleteLead(ctx context.Context, id int) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM leads WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrLeadNotFound
	}
	return nil
}

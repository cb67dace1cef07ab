package services

import (
	"context"
	"strings"
	"time"

	"subliBack/internal/models"
)

type LeadStore interface {
	CreateLead(ctx context.Context, lead models.Lead) (models.Lead, error)
	GetAllLeads(ctx context.Context) ([]models.Lead, error)
	DeleteLead(ctx context.Context, id int) error
}

type LeadService struct {
	LeadRepo LeadStore
}

func (s *LeadService) CreateLead(ctx context.Context, lead models.Lead, now time.Time) (models.Lead, error) {
	if strings.TrimSpace(lead.Name) == "" || strings.TrimSpace(lead.Email) == "" || strings.TrimSpace(lead.Message) == "" {
		return models.Lead{}, models.ErrValidation
	}
	lead.CreatedAt = now
	return s.LeadRepo.CreateLead(ctx, lead)
}

func (s *LeadService) GetAllLeads(ctx context.Context) ([]models.Lead, error) {
	return s.LeadRepo.GetAllLeads(ctx)
}

func (s *LeadService) DeleteLead(ctx context.Context, id int) error {
	return s.LeadRepo.DeleteLead(ctx, id)
}

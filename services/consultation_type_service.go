package services

import (
	"context"
	"fmt"

	"github.com/evercare/scheduling/models"
	"github.com/evercare/scheduling/repositories"
)

// ConsultationTypeService is the catalog behind consultation type
// resolution: duration and caregiver requirement per type.
type ConsultationTypeService struct {
	catalog repositories.ConsultationTypeRepository
}

func NewConsultationTypeService(catalog repositories.ConsultationTypeRepository) *ConsultationTypeService {
	return &ConsultationTypeService{catalog: catalog}
}

func (s *ConsultationTypeService) Create(ctx context.Context, t *models.ConsultationType) (*models.ConsultationType, error) {
	if t.DefaultDurationMinutes <= 0 {
		return nil, fmt.Errorf("%w: default duration must be positive", models.ErrValidation)
	}
	if t.Name == "" {
		return nil, fmt.Errorf("%w: name is required", models.ErrValidation)
	}
	if err := s.catalog.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *ConsultationTypeService) Get(ctx context.Context, id string) (*models.ConsultationType, error) {
	return s.catalog.FindByID(ctx, id)
}

func (s *ConsultationTypeService) List(ctx context.Context, activeOnly bool) ([]models.ConsultationType, error) {
	if activeOnly {
		return s.catalog.FindActive(ctx)
	}
	return s.catalog.FindAll(ctx)
}

func (s *ConsultationTypeService) Update(ctx context.Context, id string, patch *models.ConsultationType) (*models.ConsultationType, error) {
	existing, err := s.catalog.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Name != "" {
		existing.Name = patch.Name
	}
	if patch.Description != "" {
		existing.Description = patch.Description
	}
	if patch.DefaultDurationMinutes > 0 {
		existing.DefaultDurationMinutes = patch.DefaultDurationMinutes
	}
	if patch.EnvironmentPreset != "" {
		existing.EnvironmentPreset = patch.EnvironmentPreset
	}
	existing.RequiresCaregiver = patch.RequiresCaregiver
	existing.Active = patch.Active
	if err := s.catalog.Save(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *ConsultationTypeService) Delete(ctx context.Context, id string) error {
	t, err := s.catalog.FindByID(ctx, id)
	if err != nil {
		return err
	}
	return s.catalog.Delete(ctx, t)
}

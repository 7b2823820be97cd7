package services

import (
	"context"
	"fmt"

	"github.com/stwalsh4118/homefinder/api/internal/logger"
	"github.com/stwalsh4118/homefinder/api/internal/models"
	"github.com/stwalsh4118/homefinder/api/internal/repository"
)

// PropertyTypeService exposes the read-only catalogue of property types.
type PropertyTypeService interface {
	// List returns all types ordered by name.
	List(ctx context.Context) ([]models.PropertyType, error)
}

type propertyTypeService struct {
	repo repository.PropertyTypeRepository
	log  *logger.Logger
}

// NewPropertyTypeService creates a new instance of PropertyTypeService.
func NewPropertyTypeService(repo repository.PropertyTypeRepository, log *logger.Logger) PropertyTypeService {
	return &propertyTypeService{repo: repo, log: log}
}

func (s *propertyTypeService) List(ctx context.Context) ([]models.PropertyType, error) {
	types, err := s.repo.List(ctx)
	if err != nil {
		s.log.Error("Failed to list property types", err, nil)
		return nil, fmt.Errorf("failed to list property types: %w", err)
	}
	return types, nil
}

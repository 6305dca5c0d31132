package service

import (
	"context"

	"github.com/spec-kit/genius-car/internal/domain"
	"github.com/spec-kit/genius-car/internal/repository"
)

// CatalogService serves the read-only service catalog.
type CatalogService struct {
	services repository.ServiceRepository
}

// NewCatalogService builds the service.
func NewCatalogService(services repository.ServiceRepository) *CatalogService {
	return &CatalogService{services: services}
}

// ListServices returns catalog entries matching the filter, sorted by price.
func (s *CatalogService) ListServices(ctx context.Context, filter domain.ServiceFilter) ([]domain.Service, error) {
	return s.services.List(ctx, filter)
}

// GetService returns nil when the id is unknown.
func (s *CatalogService) GetService(ctx context.Context, id string) (*domain.Service, error) {
	return s.services.GetByID(ctx, id)
}

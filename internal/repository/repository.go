package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/spec-kit/genius-car/internal/domain"
)

var (
	// ErrStoreUnavailable is returned when the backing store was never configured.
	ErrStoreUnavailable = errors.New("document store unavailable")
	// ErrInvalidID is returned for identifiers that are not UUIDs.
	ErrInvalidID = errors.New("invalid document id")
)

// ServiceRepository reads the service catalog.
type ServiceRepository interface {
	List(ctx context.Context, filter domain.ServiceFilter) ([]domain.Service, error)
	// GetByID returns nil without error when no service has the id.
	GetByID(ctx context.Context, id string) (*domain.Service, error)
}

// OrderRepository persists customer orders.
type OrderRepository interface {
	List(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error)
	Create(ctx context.Context, doc domain.Document) (domain.InsertResult, error)
	UpdateStatus(ctx context.Context, id string, status any) (domain.UpdateResult, error)
	Delete(ctx context.Context, id string) (domain.DeleteResult, error)
}

// ServiceSeeder loads catalog entries into stores that have no migrations.
type ServiceSeeder interface {
	SeedServices(ctx context.Context, services []domain.Service) error
}

// Store bundles the repositories backed by one document store.
type Store struct {
	Services ServiceRepository
	Orders   OrderRepository
	Seeder   ServiceSeeder
}

// parseID validates id and returns its canonical form.
func parseID(id string) (string, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", fmt.Errorf("%w %q: %v", ErrInvalidID, id, err)
	}
	return parsed.String(), nil
}

func newID() string {
	return uuid.NewString()
}

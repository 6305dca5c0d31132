package repository

import (
	"context"
	"encoding/json"
	"reflect"
	"sync"

	"github.com/spec-kit/genius-car/internal/domain"
)

// NewMemoryStore returns repositories held in process memory. Orders are
// listed in insertion order.
func NewMemoryStore() Store {
	m := &memoryStore{
		services: make(map[string]domain.Document),
		orders:   make(map[string]domain.Document),
	}
	return Store{
		Services: &memoryServiceRepository{m},
		Orders:   &memoryOrderRepository{m},
		Seeder:   &memoryServiceRepository{m},
	}
}

type memoryStore struct {
	mu       sync.RWMutex
	services map[string]domain.Document
	orders   map[string]domain.Document
	orderIDs []string
}

type memoryServiceRepository struct {
	*memoryStore
}

func (r *memoryServiceRepository) List(_ context.Context, filter domain.ServiceFilter) ([]domain.Service, error) {
	r.mu.RLock()
	services := make([]domain.Service, 0, len(r.services))
	for id, doc := range r.services {
		services = append(services, domain.Service{ID: id, Doc: doc.Clone()})
	}
	r.mu.RUnlock()

	// map iteration is random; fix the order of equal prices by id
	sortByID(services)
	return filterAndSortServices(services, filter), nil
}

func (r *memoryServiceRepository) GetByID(_ context.Context, id string) (*domain.Service, error) {
	key, err := parseID(id)
	if err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.services[key]
	if !ok {
		return nil, nil
	}
	return &domain.Service{ID: key, Doc: doc.Clone()}, nil
}

// SeedServices stores catalog entries, replacing any with the same id.
func (r *memoryServiceRepository) SeedServices(_ context.Context, services []domain.Service) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range services {
		key, err := parseID(services[i].ID)
		if err != nil {
			return err
		}
		r.services[key] = services[i].Doc.Clone()
	}
	return nil
}

type memoryOrderRepository struct {
	*memoryStore
}

func (r *memoryOrderRepository) List(_ context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orders := make([]domain.Order, 0)
	for _, id := range r.orderIDs {
		order := domain.Order{ID: id, Doc: r.orders[id].Clone()}
		if filter.Matches(&order) {
			orders = append(orders, order)
		}
	}
	return orders, nil
}

func (r *memoryOrderRepository) Create(_ context.Context, doc domain.Document) (domain.InsertResult, error) {
	stored, err := deepCopy(doc)
	if err != nil {
		return domain.InsertResult{}, err
	}
	id := newID()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[id] = stored
	r.orderIDs = append(r.orderIDs, id)
	return domain.InsertResult{Acknowledged: true, InsertedID: id}, nil
}

func (r *memoryOrderRepository) UpdateStatus(_ context.Context, id string, status any) (domain.UpdateResult, error) {
	key, err := parseID(id)
	if err != nil {
		return domain.UpdateResult{}, err
	}
	normalized, err := normalizeJSON(status)
	if err != nil {
		return domain.UpdateResult{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	result := domain.UpdateResult{Acknowledged: true}
	doc, ok := r.orders[key]
	if !ok {
		return result, nil
	}
	result.MatchedCount = 1
	if current, ok := doc[domain.OrderFieldStatus]; ok && reflect.DeepEqual(current, normalized) {
		return result, nil
	}
	doc[domain.OrderFieldStatus] = normalized
	result.ModifiedCount = 1
	return result, nil
}

func (r *memoryOrderRepository) Delete(_ context.Context, id string) (domain.DeleteResult, error) {
	key, err := parseID(id)
	if err != nil {
		return domain.DeleteResult{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[key]; !ok {
		return domain.DeleteResult{Acknowledged: true}, nil
	}
	delete(r.orders, key)
	for i, oid := range r.orderIDs {
		if oid == key {
			r.orderIDs = append(r.orderIDs[:i], r.orderIDs[i+1:]...)
			break
		}
	}
	return domain.DeleteResult{Acknowledged: true, DeletedCount: 1}, nil
}

// deepCopy detaches doc from the caller by round-tripping it through JSON,
// which also gives stored values the same shape as decoded documents.
func deepCopy(doc domain.Document) (domain.Document, error) {
	raw, err := json.Marshal(doc.Clone())
	if err != nil {
		return nil, err
	}
	var out domain.Document
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/genius-car/internal/domain"
)

// NewRedisStore returns repositories keeping JSON documents in Redis.
//
// Layout, relative to prefix:
//
//	services           set of service ids
//	services:<id>      service document
//	orders             set of order ids
//	orders:<id>        order document
//	orders:owner:<e>   set of order ids whose customerEmail is e
func NewRedisStore(client *redis.Client, prefix string) Store {
	keys := redisKeys{prefix: prefix}
	services := &redisServiceRepository{client: client, keys: keys}
	return Store{
		Services: services,
		Orders:   &redisOrderRepository{client: client, keys: keys},
		Seeder:   services,
	}
}

type redisKeys struct {
	prefix string
}

func (k redisKeys) services() string { return k.prefix + ":services" }
func (k redisKeys) service(id string) string { return k.prefix + ":services:" + id }
func (k redisKeys) orders() string { return k.prefix + ":orders" }
func (k redisKeys) order(id string) string { return k.prefix + ":orders:" + id }
func (k redisKeys) ownerIndex(e string) string { return k.prefix + ":orders:owner:" + e }

type redisServiceRepository struct {
	client *redis.Client
	keys   redisKeys
}

func (r *redisServiceRepository) List(ctx context.Context, filter domain.ServiceFilter) ([]domain.Service, error) {
	if r.client == nil {
		return nil, ErrStoreUnavailable
	}
	ids, err := r.client.SMembers(ctx, r.keys.services()).Result()
	if err != nil {
		return nil, err
	}
	raws, err := mget(ctx, r.client, ids, r.keys.service)
	if err != nil {
		return nil, err
	}

	services := make([]domain.Service, 0, len(raws))
	for i, raw := range raws {
		if raw == nil {
			continue
		}
		svc := domain.Service{ID: ids[i]}
		if err := json.Unmarshal(raw, &svc.Doc); err != nil {
			return nil, fmt.Errorf("decode service %s: %w", ids[i], err)
		}
		services = append(services, svc)
	}
	return filterAndSortServices(services, filter), nil
}

func (r *redisServiceRepository) GetByID(ctx context.Context, id string) (*domain.Service, error) {
	if r.client == nil {
		return nil, ErrStoreUnavailable
	}
	key, err := parseID(id)
	if err != nil {
		return nil, err
	}

	raw, err := r.client.Get(ctx, r.keys.service(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	svc := &domain.Service{ID: key}
	if err := json.Unmarshal(raw, &svc.Doc); err != nil {
		return nil, fmt.Errorf("decode service %s: %w", key, err)
	}
	return svc, nil
}

// SeedServices writes catalog entries, replacing any with the same id.
func (r *redisServiceRepository) SeedServices(ctx context.Context, services []domain.Service) error {
	if r.client == nil {
		return ErrStoreUnavailable
	}
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for i := range services {
			id, err := parseID(services[i].ID)
			if err != nil {
				return err
			}
			raw, err := json.Marshal(services[i].Doc.Clone())
			if err != nil {
				return err
			}
			pipe.Set(ctx, r.keys.service(id), raw, 0)
			pipe.SAdd(ctx, r.keys.services(), id)
		}
		return nil
	})
	return err
}

type redisOrderRepository struct {
	client *redis.Client
	keys   redisKeys
}

func (r *redisOrderRepository) List(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	if r.client == nil {
		return nil, ErrStoreUnavailable
	}
	setKey := r.keys.orders()
	if filter.CustomerEmail != nil {
		setKey = r.keys.ownerIndex(*filter.CustomerEmail)
	}
	ids, err := r.client.SMembers(ctx, setKey).Result()
	if err != nil {
		return nil, err
	}
	raws, err := mget(ctx, r.client, ids, r.keys.order)
	if err != nil {
		return nil, err
	}

	orders := make([]domain.Order, 0, len(raws))
	for i, raw := range raws {
		if raw == nil {
			continue
		}
		order := domain.Order{ID: ids[i]}
		if err := json.Unmarshal(raw, &order.Doc); err != nil {
			return nil, fmt.Errorf("decode order %s: %w", ids[i], err)
		}
		if filter.Matches(&order) {
			orders = append(orders, order)
		}
	}
	return orders, nil
}

func (r *redisOrderRepository) Create(ctx context.Context, doc domain.Document) (domain.InsertResult, error) {
	if r.client == nil {
		return domain.InsertResult{}, ErrStoreUnavailable
	}
	stored := doc.Clone()
	raw, err := json.Marshal(stored)
	if err != nil {
		return domain.InsertResult{}, err
	}

	id := newID()
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.keys.order(id), raw, 0)
		pipe.SAdd(ctx, r.keys.orders(), id)
		if email, ok := stored.String(domain.OrderFieldCustomerEmail); ok {
			pipe.SAdd(ctx, r.keys.ownerIndex(email), id)
		}
		return nil
	})
	if err != nil {
		return domain.InsertResult{}, err
	}
	return domain.InsertResult{Acknowledged: true, InsertedID: id}, nil
}

// UpdateStatus rewrites the document under WATCH. A concurrent write to the
// same order aborts the transaction with redis.TxFailedErr.
func (r *redisOrderRepository) UpdateStatus(ctx context.Context, id string, status any) (domain.UpdateResult, error) {
	if r.client == nil {
		return domain.UpdateResult{}, ErrStoreUnavailable
	}
	key, err := parseID(id)
	if err != nil {
		return domain.UpdateResult{}, err
	}
	docKey := r.keys.order(key)
	result := domain.UpdateResult{Acknowledged: true}

	err = r.client.Watch(ctx, func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, docKey).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		if err != nil {
			return err
		}
		var doc domain.Document
		if err := json.Unmarshal(raw, &doc); err != nil {
			return fmt.Errorf("decode order %s: %w", key, err)
		}
		result.MatchedCount = 1

		normalized, err := normalizeJSON(status)
		if err != nil {
			return err
		}
		if current, ok := doc[domain.OrderFieldStatus]; ok && reflect.DeepEqual(current, normalized) {
			return nil
		}
		doc[domain.OrderFieldStatus] = normalized
		updated, err := json.Marshal(doc)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, docKey, updated, 0)
			return nil
		})
		if err != nil {
			return err
		}
		result.ModifiedCount = 1
		return nil
	}, docKey)
	if err != nil {
		return domain.UpdateResult{}, err
	}
	return result, nil
}

func (r *redisOrderRepository) Delete(ctx context.Context, id string) (domain.DeleteResult, error) {
	if r.client == nil {
		return domain.DeleteResult{}, ErrStoreUnavailable
	}
	key, err := parseID(id)
	if err != nil {
		return domain.DeleteResult{}, err
	}
	docKey := r.keys.order(key)

	raw, err := r.client.Get(ctx, docKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.DeleteResult{Acknowledged: true}, nil
	}
	if err != nil {
		return domain.DeleteResult{}, err
	}
	var doc domain.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return domain.DeleteResult{}, fmt.Errorf("decode order %s: %w", key, err)
	}

	var del *redis.IntCmd
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, docKey)
		pipe.SRem(ctx, r.keys.orders(), key)
		if email, ok := doc.String(domain.OrderFieldCustomerEmail); ok {
			pipe.SRem(ctx, r.keys.ownerIndex(email), key)
		}
		return nil
	})
	if err != nil {
		return domain.DeleteResult{}, err
	}
	return domain.DeleteResult{Acknowledged: true, DeletedCount: del.Val()}, nil
}

// mget fetches documents for ids; missing keys come back as nil entries.
func mget(ctx context.Context, client *redis.Client, ids []string, key func(string) string) ([][]byte, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = key(id)
	}
	vals, err := client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	out := make([][]byte, len(vals))
	for i, v := range vals {
		if s, ok := v.(string); ok {
			out[i] = []byte(s)
		}
	}
	return out, nil
}

// normalizeJSON converts v to the shape json.Unmarshal would produce so it
// can be compared with decoded document values.
func normalizeJSON(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/genius-car/internal/domain"
)

// NewPostgresStore returns repositories over JSONB document tables.
func NewPostgresStore(pool *pgxpool.Pool) Store {
	return Store{
		Services: &pgServiceRepository{pool: pool},
		Orders:   &pgOrderRepository{pool: pool},
	}
}

type pgServiceRepository struct {
	pool *pgxpool.Pool
}

const (
	serviceSearchClause = `
        WHERE to_tsvector('english', coalesce(doc->>'name', '') || ' ' || coalesce(doc->>'description', ''))
              @@ replace(plainto_tsquery('english', $1)::text, '&', '|')::tsquery`

	// updateOrderStatusQuery reports whether the stored status differed from
	// the new one; an order without a status counts as changed.
	updateOrderStatusQuery = `
        WITH target AS (
            SELECT id, (doc->'status') IS DISTINCT FROM $2::jsonb AS changed
            FROM orders WHERE id=$1 FOR UPDATE
        )
        UPDATE orders o SET doc = jsonb_set(o.doc, '{status}', $2::jsonb, true), updated_at=NOW()
        FROM target WHERE o.id = target.id
        RETURNING target.changed`
)

// serviceListQuery builds the catalog query. Search terms are OR-ed: the
// conjunctions plainto_tsquery produces are rewritten into disjunctions.
func serviceListQuery(filter domain.ServiceFilter) (string, []any) {
	query := `SELECT id::text, doc FROM services`
	args := []any{}
	if filter.Search != "" {
		query += serviceSearchClause
		args = append(args, filter.Search)
	}
	if filter.Descending() {
		query += ` ORDER BY (doc->>'price')::numeric DESC NULLS LAST, id`
	} else {
		query += ` ORDER BY (doc->>'price')::numeric ASC NULLS FIRST, id`
	}
	return query, args
}

func (r *pgServiceRepository) List(ctx context.Context, filter domain.ServiceFilter) ([]domain.Service, error) {
	if r.pool == nil {
		return nil, ErrStoreUnavailable
	}

	query, args := serviceListQuery(filter)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	services := make([]domain.Service, 0)
	for rows.Next() {
		var (
			svc domain.Service
			raw []byte
		)
		if err := rows.Scan(&svc.ID, &raw); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &svc.Doc); err != nil {
			return nil, fmt.Errorf("decode service %s: %w", svc.ID, err)
		}
		services = append(services, svc)
	}
	return services, rows.Err()
}

func (r *pgServiceRepository) GetByID(ctx context.Context, id string) (*domain.Service, error) {
	if r.pool == nil {
		return nil, ErrStoreUnavailable
	}
	uid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	const query = `SELECT id::text, doc FROM services WHERE id=$1`

	var (
		svc domain.Service
		raw []byte
	)
	if err := r.pool.QueryRow(ctx, query, uid).Scan(&svc.ID, &raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(raw, &svc.Doc); err != nil {
		return nil, fmt.Errorf("decode service %s: %w", svc.ID, err)
	}
	return &svc, nil
}

type pgOrderRepository struct {
	pool *pgxpool.Pool
}

// orderListQuery matches the owner only against string customerEmail
// values, so a numeric 5 never matches the email "5".
func orderListQuery(filter domain.OrderFilter) (string, []any) {
	query := `SELECT id::text, doc FROM orders`
	args := []any{}
	if filter.CustomerEmail != nil {
		query += ` WHERE doc->>'customerEmail' = $1 AND jsonb_typeof(doc->'customerEmail') = 'string'`
		args = append(args, *filter.CustomerEmail)
	}
	query += ` ORDER BY created_at, id`
	return query, args
}

func (r *pgOrderRepository) List(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	if r.pool == nil {
		return nil, ErrStoreUnavailable
	}

	query, args := orderListQuery(filter)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]domain.Order, 0)
	for rows.Next() {
		var (
			order domain.Order
			raw   []byte
		)
		if err := rows.Scan(&order.ID, &raw); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &order.Doc); err != nil {
			return nil, fmt.Errorf("decode order %s: %w", order.ID, err)
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

func (r *pgOrderRepository) Create(ctx context.Context, doc domain.Document) (domain.InsertResult, error) {
	if r.pool == nil {
		return domain.InsertResult{}, ErrStoreUnavailable
	}
	raw, err := json.Marshal(doc.Clone())
	if err != nil {
		return domain.InsertResult{}, err
	}

	const query = `INSERT INTO orders (id, doc) VALUES ($1, $2::jsonb) RETURNING id::text`

	var id string
	if err := r.pool.QueryRow(ctx, query, newID(), string(raw)).Scan(&id); err != nil {
		return domain.InsertResult{}, err
	}
	return domain.InsertResult{Acknowledged: true, InsertedID: id}, nil
}

func (r *pgOrderRepository) UpdateStatus(ctx context.Context, id string, status any) (domain.UpdateResult, error) {
	if r.pool == nil {
		return domain.UpdateResult{}, ErrStoreUnavailable
	}
	uid, err := parseID(id)
	if err != nil {
		return domain.UpdateResult{}, err
	}
	raw, err := json.Marshal(status)
	if err != nil {
		return domain.UpdateResult{}, err
	}

	result := domain.UpdateResult{Acknowledged: true}
	var changed bool
	if err := r.pool.QueryRow(ctx, updateOrderStatusQuery, uid, string(raw)).Scan(&changed); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return result, nil
		}
		return domain.UpdateResult{}, err
	}
	result.MatchedCount = 1
	if changed {
		result.ModifiedCount = 1
	}
	return result, nil
}

func (r *pgOrderRepository) Delete(ctx context.Context, id string) (domain.DeleteResult, error) {
	if r.pool == nil {
		return domain.DeleteResult{}, ErrStoreUnavailable
	}
	uid, err := parseID(id)
	if err != nil {
		return domain.DeleteResult{}, err
	}

	cmd, err := r.pool.Exec(ctx, `DELETE FROM orders WHERE id=$1`, uid)
	if err != nil {
		return domain.DeleteResult{}, err
	}
	return domain.DeleteResult{Acknowledged: true, DeletedCount: cmd.RowsAffected()}, nil
}

package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/saturnino-fabrica-de-software/compras/internal/domain"
)

type OrderRepository struct {
	pool PgxPool
}

func NewOrderRepository(pool PgxPool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	query := `
		INSERT INTO orders (id, name, quantity, reason, department, status, item_link, created_by, created_by_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.pool.Exec(ctx, query,
		order.ID,
		order.Name,
		order.Quantity,
		order.Reason,
		order.Department,
		order.Status,
		order.ItemLink,
		order.CreatedBy,
		order.CreatedByName,
		order.CreatedAt,
		order.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("create order: %w", err)
	}

	return nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := `
		SELECT id, name, quantity, reason, department, status, item_link, created_by, created_by_name, created_at, updated_at
		FROM orders
		WHERE id = $1
	`

	var order domain.Order
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&order.ID,
		&order.Name,
		&order.Quantity,
		&order.Reason,
		&order.Department,
		&order.Status,
		&order.ItemLink,
		&order.CreatedBy,
		&order.CreatedByName,
		&order.CreatedAt,
		&order.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get order by id: %w", err)
	}

	return &order, nil
}

func (r *OrderRepository) Update(ctx context.Context, order *domain.Order) error {
	query := `
		UPDATE orders
		SET name = $2, quantity = $3, reason = $4, department = $5, status = $6, item_link = $7, updated_at = $8
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		order.ID,
		order.Name,
		order.Quantity,
		order.Reason,
		order.Department,
		order.Status,
		order.ItemLink,
		order.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}

	return nil
}

func (r *OrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `
		DELETE FROM orders
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}

	return nil
}

// ListByStatus returns orders newest-first, optionally filtered by status.
func (r *OrderRepository) ListByStatus(ctx context.Context, status *domain.OrderStatus) ([]domain.Order, error) {
	query := `
		SELECT id, name, quantity, reason, department, status, item_link, created_by, created_by_name, created_at, updated_at
		FROM orders
	`
	args := []any{}
	if status != nil {
		query += ` WHERE status = $1`
		args = append(args, *status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var order domain.Order
		err := rows.Scan(
			&order.ID,
			&order.Name,
			&order.Quantity,
			&order.Reason,
			&order.Department,
			&order.Status,
			&order.ItemLink,
			&order.CreatedBy,
			&order.CreatedByName,
			&order.CreatedAt,
			&order.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return orders, nil
}

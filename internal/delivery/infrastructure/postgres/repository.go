package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Carl0sL0pez03/backend-ecommerce/internal/order/domain"
)

// Repository is the postgres-backed delivery-assignment store: one row per
// ordered item, keyed orderID_productID so a replayed assignment overwrites
// instead of duplicating.
type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

func (r *Repository) EnsureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS deliveries (
		delivery_id TEXT PRIMARY KEY,
		order_id TEXT NOT NULL,
		product_id TEXT NOT NULL,
		quantity INT NOT NULL,
		delivered_at TIMESTAMPTZ NOT NULL
	)`)
	return err
}

func (r *Repository) AssignToCustomer(ctx context.Context, orderID string, items []domain.OrderItem) error {
	for _, item := range items {
		_, err := r.pool.Exec(ctx, `INSERT INTO deliveries (delivery_id, order_id, product_id, quantity, delivered_at)
			VALUES ($1,$2,$3,$4,$5)
			ON CONFLICT (delivery_id) DO UPDATE SET quantity=$4, delivered_at=$5`,
			orderID+"_"+item.ProductID, orderID, item.ProductID, item.Quantity, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("assign delivery for %s: %w", item.ProductID, err)
		}
	}
	return nil
}

package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Carl0sL0pez03/backend-ecommerce/internal/order/domain"
)

// Repository is the postgres-backed product stock store.
type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

func (r *Repository) EnsureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS products (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		price BIGINT NOT NULL DEFAULT 0,
		stock INT NOT NULL DEFAULT 0,
		url_img TEXT NOT NULL DEFAULT ''
	)`)
	return err
}

// DecreaseStock decrements stock one item at a time. Items already
// decremented stay decremented when a later item fails; the orchestrator
// explicitly does not require cross-item atomicity.
func (r *Repository) DecreaseStock(ctx context.Context, items []domain.OrderItem) error {
	for _, item := range items {
		ct, err := r.pool.Exec(ctx, `UPDATE products SET stock = stock - $2 WHERE id = $1`,
			item.ProductID, item.Quantity)
		if err != nil {
			return fmt.Errorf("decrease stock for %s: %w", item.ProductID, err)
		}
		if ct.RowsAffected() == 0 {
			return fmt.Errorf("decrease stock: product %s not found", item.ProductID)
		}
	}
	return nil
}

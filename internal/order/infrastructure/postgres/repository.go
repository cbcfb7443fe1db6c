package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Carl0sL0pez03/backend-ecommerce/internal/order/domain"
	"github.com/Carl0sL0pez03/backend-ecommerce/pkg/outbox"
	"github.com/Carl0sL0pez03/backend-ecommerce/pkg/tracing"
)

// Repository is the postgres-backed transaction ledger. Every write also
// appends a lifecycle event to the outbox table in the same database
// transaction, so a committed status change always has a publishable event.
type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

func (r *Repository) EnsureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS transactions (
			id TEXT PRIMARY KEY,
			customer JSONB NOT NULL,
			payment JSONB NOT NULL,
			items JSONB NOT NULL,
			total BIGINT NOT NULL,
			status TEXT NOT NULL,
			result JSONB,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		);
		CREATE TABLE IF NOT EXISTS outbox (
			id BIGSERIAL PRIMARY KEY,
			aggregate_type TEXT NOT NULL,
			aggregate_id TEXT NOT NULL,
			type TEXT NOT NULL,
			payload JSONB NOT NULL,
			traceparent TEXT,
			status TEXT NOT NULL DEFAULT 'pending',
			relay_id TEXT,
			lease_until TIMESTAMPTZ,
			retry_count INT NOT NULL DEFAULT 0,
			last_error TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	return err
}

func (r *Repository) Create(ctx context.Context, t domain.Transaction) error {
	customer, err := json.Marshal(t.Customer)
	if err != nil {
		return err
	}
	payment, err := json.Marshal(t.Payment)
	if err != nil {
		return err
	}
	items, err := json.Marshal(t.Items)
	if err != nil {
		return err
	}
	event, err := json.Marshal(domain.TransactionCreated{
		TransactionID: t.ID,
		Total:         t.Total,
		Items:         t.Items,
	})
	if err != nil {
		return err
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	_, err = tx.Exec(ctx, `INSERT INTO transactions (id, customer, payment, items, total, status, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		t.ID, customer, payment, items, t.Total, t.Status, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return err
	}

	if err = r.appendEvent(ctx, tx, t.ID, "TransactionCreated", event); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *Repository) UpdateStatus(ctx context.Context, id string, status domain.Status, result json.RawMessage) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	ct, err := tx.Exec(ctx, `UPDATE transactions SET status=$2, result=$3, updated_at=$4 WHERE id=$1`,
		id, status, resultParam(result), time.Now().UTC())
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("transaction %s not found", id)
	}

	var eventType string
	var event []byte
	switch status {
	case domain.StatusCompleted:
		eventType = "TransactionCompleted"
		event, err = json.Marshal(domain.TransactionCompleted{TransactionID: id})
	case domain.StatusFailed:
		eventType = "TransactionFailed"
		event, err = json.Marshal(domain.TransactionFailed{TransactionID: id})
	}
	if err != nil {
		return err
	}
	if eventType != "" {
		if err = r.appendEvent(ctx, tx, id, eventType, event); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *Repository) appendEvent(ctx context.Context, tx pgx.Tx, id, eventType string, payload []byte) error {
	_, err := tx.Exec(ctx, `INSERT INTO outbox (aggregate_type, aggregate_id, type, payload, traceparent, status)
		VALUES ($1,$2,$3,$4,$5,'pending')`,
		"transaction", id, eventType, payload, tracing.Traceparent(ctx))
	return err
}

// resultParam normalizes the opaque diagnostic blob for the jsonb column.
// Provider payloads pass through untouched; non-JSON bytes are stored as a
// JSON string so the column never rejects them.
func resultParam(result json.RawMessage) any {
	if len(result) == 0 {
		return nil
	}
	if json.Valid(result) {
		return result
	}
	b, _ := json.Marshal(string(result))
	return json.RawMessage(b)
}

// OutboxStore is the relay's view of the outbox table: lock a batch under a
// lease, then mark each event sent or failed.
type OutboxStore struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewOutboxStore(log *slog.Logger, pool *pgxpool.Pool) *OutboxStore {
	return &OutboxStore{log: log, pool: pool}
}

func (s *OutboxStore) LockBatch(ctx context.Context, relayID string, batchSize int, lease time.Duration) ([]outbox.Event, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	rows, err := tx.Query(ctx, `
		SELECT id, aggregate_type, aggregate_id, type, payload, COALESCE(traceparent, ''), created_at
		FROM outbox
		WHERE status = 'pending'
		ORDER BY id
		FOR UPDATE SKIP LOCKED
		LIMIT $1
	`, batchSize)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []outbox.Event
	for rows.Next() {
		var ev outbox.Event
		if err := rows.Scan(&ev.ID, &ev.AggregateType, &ev.AggregateID, &ev.Type, &ev.Payload, &ev.Traceparent, &ev.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, tx.Commit(ctx)
	}

	ids := make([]int64, 0, len(events))
	for _, ev := range events {
		ids = append(ids, ev.ID)
	}
	_, err = tx.Exec(ctx, `UPDATE outbox SET status='in_progress', relay_id=$1, lease_until=now() + $2::interval WHERE id = ANY($3)`,
		relayID, lease.String(), ids)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return events, nil
}

func (s *OutboxStore) MarkSent(ctx context.Context, ids []int64) error {
	_, err := s.pool.Exec(ctx, `UPDATE outbox SET status='sent' WHERE id = ANY($1)`, ids)
	return err
}

func (s *OutboxStore) MarkFailed(ctx context.Context, id int64, errMsg string) error {
	_, err := s.pool.Exec(ctx, `UPDATE outbox SET status='pending', last_error=$2, retry_count=retry_count+1 WHERE id=$1`, id, errMsg)
	return err
}

func (s *OutboxStore) ExtendLease(ctx context.Context, relayID string, ids []int64, lease time.Duration) error {
	_, err := s.pool.Exec(ctx, `UPDATE outbox SET lease_until=now() + $1::interval WHERE id = ANY($2) AND relay_id=$3`,
		lease.String(), ids, relayID)
	return err
}

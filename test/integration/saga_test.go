package integration

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carl0sL0pez03/backend-ecommerce/internal/order/domain"
	orderkafka "github.com/Carl0sL0pez03/backend-ecommerce/internal/order/infrastructure/kafka"
	orderpg "github.com/Carl0sL0pez03/backend-ecommerce/internal/order/infrastructure/postgres"
	"github.com/Carl0sL0pez03/backend-ecommerce/pkg/outbox"
)

const testTopic = "transaction.events"

// TestLedgerOutboxRoundTrip commits a transaction through the ledger, lets
// the relay drain the outbox, and reads the lifecycle events back off kafka.
func TestLedgerOutboxRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("requires docker")
	}

	ctx := context.Background()
	env, err := Setup(ctx)
	require.NoError(t, err)
	defer env.Teardown(ctx)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	pool, err := pgxpool.New(ctx, env.PGURL)
	require.NoError(t, err)
	defer pool.Close()

	ledger := orderpg.NewRepository(log, pool)
	require.NoError(t, ledger.EnsureSchema(ctx))

	id := uuid.NewString()
	tx := domain.NewTransaction(id, domain.OrderRequest{
		Customer: domain.Customer{Name: "Ada", Email: "ada@example.com", Address: "1 Main St", City: "Bogota"},
		Payment:  domain.PaymentCard{CardNumber: "4111 1111 1111 1234", Expiry: "12/29", CVC: "123"},
		Items:    []domain.OrderItem{{ProductID: "p1", Quantity: 2}},
		Total:    5000,
	})
	require.NoError(t, ledger.Create(ctx, tx))
	require.NoError(t, ledger.UpdateStatus(ctx, id, domain.StatusCompleted, json.RawMessage(`{"status":"APPROVED"}`)))

	conn, err := kafkago.Dial("tcp", env.KAddr[0])
	require.NoError(t, err)
	require.NoError(t, conn.CreateTopics(kafkago.TopicConfig{Topic: testTopic, NumPartitions: 1, ReplicationFactor: 1}))
	require.NoError(t, conn.Close())

	writer := orderkafka.NewWriter(env.KAddr)
	defer writer.Close()

	store := orderpg.NewOutboxStore(log, pool)
	relay := outbox.NewRelay(log, store, outbox.NewDispatcher(log, writer, testTopic), "test-relay")

	relayCtx, stopRelay := context.WithCancel(ctx)
	defer stopRelay()
	go func() { _ = relay.Run(relayCtx) }()

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers: env.KAddr,
		Topic:   testTopic,
		GroupID: "integration-test",
	})
	defer reader.Close()

	types := map[string]bool{}
	readCtx, cancelRead := context.WithTimeout(ctx, 60*time.Second)
	defer cancelRead()
	for len(types) < 2 {
		msg, err := reader.ReadMessage(readCtx)
		require.NoError(t, err)
		assert.Equal(t, id, string(msg.Key))
		for _, h := range msg.Headers {
			if h.Key == "event_type" {
				types[string(h.Value)] = true
			}
		}
	}
	assert.True(t, types["TransactionCreated"])
	assert.True(t, types["TransactionCompleted"])
}

package kafka

import (
	"context"

	"github.com/segmentio/kafka-go"
)

type Writer struct {
	*kafka.Writer
}

// NewWriter builds the producer for transaction lifecycle events. Messages
// are keyed by transaction id, so the hash balancer keeps every event of one
// transaction on the same partition, in order.
func NewWriter(brokers []string) *Writer {
	return &Writer{
		Writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
		},
	}
}

func (w *Writer) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	return w.Writer.WriteMessages(ctx, msgs...)
}

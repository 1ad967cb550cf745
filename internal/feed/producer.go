package feed

import (
	"context"
	"encoding/json"
	"time"

	"github.com/IBM/sarama"

	"seatly/internal/bookings"
	"seatly/internal/shared/config"
	"seatly/pkg/logger"
)

// ActivityRecord is the wire format published to the booking feed.
type ActivityRecord struct {
	Kind        string    `json:"kind"` // booking.created | booking.canceled | event.ended
	BookingID   string    `json:"booking_id,omitempty"`
	EventID     string    `json:"event_id"`
	UserID      string    `json:"user_id,omitempty"`
	SeatNumbers []string  `json:"seat_numbers,omitempty"`
	TotalPrice  string    `json:"total_price,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// Producer streams booking activity to Kafka, best effort. A nil
// Producer is a valid no-op.
type Producer struct {
	producer sarama.SyncProducer
	topic    string
	log      *logger.Logger
}

// NewProducer connects to the brokers. Returns nil without error when
// the feed is disabled.
func NewProducer(cfg config.FeedConfig, log *logger.Logger) (*Producer, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	saramaCfg := sarama.NewConfig()
	saramaCfg.Producer.Return.Successes = true
	saramaCfg.Producer.RequiredAcks = sarama.WaitForLocal
	saramaCfg.Producer.Retry.Max = 3
	saramaCfg.Producer.Compression = sarama.CompressionSnappy

	producer, err := sarama.NewSyncProducer(cfg.Brokers, saramaCfg)
	if err != nil {
		return nil, err
	}

	log.Info("booking feed producer connected", "brokers", cfg.Brokers, "topic", cfg.Topic)
	return &Producer{producer: producer, topic: cfg.Topic, log: log}, nil
}

func (p *Producer) BookingCreated(ctx context.Context, b *bookings.Booking) {
	p.publish(ctx, "booking.created", b)
}

func (p *Producer) BookingCanceled(ctx context.Context, b *bookings.Booking) {
	p.publish(ctx, "booking.canceled", b)
}

// EventEnded records a lifecycle transition to ENDED.
func (p *Producer) EventEnded(ctx context.Context, eventID string) {
	p.send(ctx, ActivityRecord{
		Kind:       "event.ended",
		EventID:    eventID,
		OccurredAt: time.Now(),
	})
}

func (p *Producer) publish(ctx context.Context, kind string, b *bookings.Booking) {
	p.send(ctx, ActivityRecord{
		Kind:        kind,
		BookingID:   b.ID.String(),
		EventID:     b.EventID.String(),
		UserID:      b.UserID.String(),
		SeatNumbers: b.SeatNumbers,
		TotalPrice:  b.TotalPrice.String(),
		OccurredAt:  time.Now(),
	})
}

func (p *Producer) send(ctx context.Context, record ActivityRecord) {
	if p == nil {
		return
	}

	payload, err := json.Marshal(record)
	if err != nil {
		p.log.ErrorWithContext(ctx, "feed record marshal failed", err, map[string]interface{}{
			"booking_id": record.BookingID,
		})
		return
	}

	// Keyed by event so one event's activity stays ordered per partition.
	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(record.EventID),
		Value: sarama.ByteEncoder(payload),
	}
	if _, _, err := p.producer.SendMessage(msg); err != nil {
		p.log.ErrorWithContext(ctx, "feed publish failed", err, map[string]interface{}{
			"kind":     record.Kind,
			"event_id": record.EventID,
		})
	}
}

func (p *Producer) Close() error {
	if p == nil {
		return nil
	}
	return p.producer.Close()
}
